package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hooklab/content-intelligence-service/internal/config"
	"github.com/hooklab/content-intelligence-service/internal/corpus"
	"github.com/hooklab/content-intelligence-service/internal/generator"
	"github.com/hooklab/content-intelligence-service/internal/ingestion"
	"github.com/hooklab/content-intelligence-service/internal/lexicon"
	"github.com/hooklab/content-intelligence-service/internal/logging"
	"github.com/hooklab/content-intelligence-service/internal/models"
	"github.com/hooklab/content-intelligence-service/internal/rng"
	"github.com/hooklab/content-intelligence-service/internal/scheduler"
	"github.com/hooklab/content-intelligence-service/internal/scoring"
	"github.com/hooklab/content-intelligence-service/internal/server"
	"github.com/hooklab/content-intelligence-service/internal/storage"
	"github.com/hooklab/content-intelligence-service/internal/variation"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}
	logging.Init(logging.Config{Level: cfg.Logging.Level, Format: cfg.Logging.Format})

	lex := lexicon.Default()
	if cfg.Engine.LexiconPath != "" {
		lex, err = lexicon.LoadFile(cfg.Engine.LexiconPath)
		if err != nil {
			logging.Fatal().Err(err).Str("path", cfg.Engine.LexiconPath).Msg("failed to load lexicon")
		}
	}

	// Initialize storage
	store, err := storage.NewStorage(cfg.Storage)
	if err != nil {
		logging.Fatal().Err(err).Str("type", cfg.Storage.Type).Msg("failed to initialize storage")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	corpusStore := corpus.New(store, corpus.WithLexicon(lex))
	corpusStore.Initialize(ctx)
	defer func() {
		if err := corpusStore.Close(); err != nil {
			logging.Error().Err(err).Msg("failed to close storage")
		}
	}()

	// Engines share one random source so a configured seed reproduces a run
	random := rng.New(cfg.Engine.Seed)
	model := scoring.New(lex, scoring.WithSource(corpusStore))
	corpusStore.OnAdd(func(posts []models.Post) { model.TrainModel(posts) })
	templates := generator.New(lex, model, generator.WithCorpus(corpusStore), generator.WithRand(random))
	variations := variation.New(model, variation.WithRand(random))

	sched := scheduler.New(time.UTC)
	training := scheduler.TrainingJob(corpusStore, model, templates)
	if err := sched.RunNow(scheduler.TrainingJobName, training); err != nil {
		logging.Warn().Err(err).Msg("initial training failed")
	}
	if cfg.Engine.TrainSchedule != "" {
		if err := sched.AddJob(scheduler.TrainingJobName, cfg.Engine.TrainSchedule, training); err != nil {
			logging.Fatal().Err(err).Msg("failed to schedule retraining")
		}
	}
	sched.Start()

	svc := server.Services{
		Corpus:     corpusStore,
		Model:      model,
		Generator:  templates,
		Variations: variations,
		Jobs:       sched,
	}

	var ingestor *ingestion.Service
	if cfg.Ingestion.Enabled {
		ingestor = ingestion.NewService(cfg.Ingestion, store, corpusStore)
		svc.Ingestion = ingestor
	}

	// Initialize HTTP server for API endpoints
	httpServer := server.NewServer(cfg.Server, svc)

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	// Start HTTP server
	go func() {
		if err := httpServer.Start(); err != nil {
			logging.Error().Err(err).Msg("HTTP server error")
			sigChan <- syscall.SIGTERM
		}
	}()

	// Start ingestion service
	if ingestor != nil {
		go func() {
			logging.Info().Str("endpoint", cfg.Ingestion.APIEndpoint).Dur("interval", cfg.Ingestion.Interval).Msg("starting data ingestion service")
			if err := ingestor.Start(ctx); err != nil && ctx.Err() == nil {
				logging.Error().Err(err).Msg("ingestion service error")
			}
		}()
	}

	// Wait for shutdown signal
	<-sigChan
	logging.Info().Msg("shutdown signal received, gracefully shutting down")

	// Create shutdown context with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// Shutdown services
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("HTTP server shutdown error")
	}

	cancel() // Cancel ingestion context

	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
		logging.Warn().Msg("timed out waiting for scheduled jobs")
	}
	logging.Info().Msg("shutdown complete")
}
