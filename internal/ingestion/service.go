// Package ingestion polls the scraper endpoint and feeds its records into
// the corpus.
package ingestion

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/hooklab/content-intelligence-service/internal/config"
	"github.com/hooklab/content-intelligence-service/internal/logging"
	"github.com/hooklab/content-intelligence-service/internal/metrics"
	"github.com/hooklab/content-intelligence-service/internal/models"
	"github.com/hooklab/content-intelligence-service/internal/storage"
)

// PostSink accepts scored posts; *corpus.Store implements it
type PostSink interface {
	AddPosts(ctx context.Context, posts []models.Post) (int, error)
}

// Service handles data ingestion from the scraper
type Service struct {
	config     config.IngestionConfig
	storage    storage.Storage
	sink       PostSink
	httpClient *http.Client
	backoff    time.Duration
	now        func() time.Time
	log        zerolog.Logger
}

// NewService creates a new ingestion service. Status is tracked in store and
// accepted posts go to sink.
func NewService(cfg config.IngestionConfig, store storage.Storage, sink PostSink) *Service {
	return &Service{
		config:  cfg,
		storage: store,
		sink:    sink,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
		backoff: time.Second,
		now:     time.Now,
		log:     logging.With().Str("component", "ingestion").Logger(),
	}
}

// Start ingests once, then again on every interval until ctx is done. Failed
// runs are logged and retried on the next tick. A zero interval ingests once.
func (s *Service) Start(ctx context.Context) error {
	if err := s.IngestData(ctx); err != nil {
		s.log.Error().Err(err).Msg("initial ingestion failed")
	}
	if s.config.Interval <= 0 {
		return nil
	}

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.IngestData(ctx); err != nil {
				s.log.Error().Err(err).Msg("ingestion failed")
			}
		}
	}
}

// IngestData fetches records from the scraper and adds them to the corpus
func (s *Service) IngestData(ctx context.Context) error {
	started := s.now().UTC()
	status, err := s.storage.GetIngestionStatus(ctx)
	if err != nil || status == nil {
		status = &models.IngestionStatus{Status: models.StatusNeverRun}
	}
	status.Status = models.StatusRunning
	status.LastAttempt = started
	status.ErrorMessage = ""
	s.updateStatus(ctx, *status)

	raw, err := s.fetchPosts(ctx)
	if err != nil {
		return s.fail(ctx, *status, fmt.Errorf("failed to fetch posts: %w", err))
	}

	posts, skipped := s.transformPosts(raw)

	added, err := s.sink.AddPosts(ctx, posts)
	if err != nil {
		return s.fail(ctx, *status, fmt.Errorf("failed to store posts: %w", err))
	}

	status.Status = models.StatusSuccess
	status.LastSuccessfulRun = s.now().UTC()
	status.RecordsIngested = added
	status.RecordsSkipped = skipped
	s.updateStatus(ctx, *status)

	metrics.RecordIngestion(added, skipped, len(posts)-added, nil)
	s.log.Info().
		Int("fetched", len(raw)).
		Int("ingested", added).
		Int("skipped", skipped).
		Int("duplicates", len(posts)-added).
		Dur("duration", time.Since(started)).
		Msg("ingestion completed")
	return nil
}

// Status returns the last recorded ingestion status
func (s *Service) Status(ctx context.Context) (*models.IngestionStatus, error) {
	return s.storage.GetIngestionStatus(ctx)
}

func (s *Service) fail(ctx context.Context, status models.IngestionStatus, err error) error {
	status.Status = models.StatusFailure
	status.ErrorMessage = err.Error()
	status.RecordsIngested = 0
	status.RecordsSkipped = 0
	s.updateStatus(ctx, status)
	metrics.RecordIngestion(0, 0, 0, err)
	return err
}

func (s *Service) updateStatus(ctx context.Context, status models.IngestionStatus) {
	if err := s.storage.UpdateIngestionStatus(ctx, status); err != nil {
		s.log.Warn().Err(err).Str("status", status.Status).Msg("failed to update ingestion status")
	}
}

// fetchPosts fetches records from the scraper with retry logic
func (s *Service) fetchPosts(ctx context.Context) ([]models.RawPost, error) {
	var lastErr error

	for attempt := 0; attempt < s.config.RetryCount; attempt++ {
		posts, err := s.fetchPostsOnce(ctx)
		if err == nil {
			return posts, nil
		}

		lastErr = err
		s.log.Debug().Err(err).Int("attempt", attempt+1).Msg("scraper request failed")
		if attempt < s.config.RetryCount-1 {
			// linear backoff
			waitTime := time.Duration(attempt+1) * s.backoff
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(waitTime):
			}
		}
	}

	return nil, fmt.Errorf("failed after %d attempts: %w", s.config.RetryCount, lastErr)
}

// fetchPostsOnce performs a single fetch attempt
func (s *Service) fetchPostsOnce(ctx context.Context) ([]models.RawPost, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.APIEndpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	var posts []models.RawPost
	if err := json.Unmarshal(body, &posts); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return posts, nil
}

// transformPosts converts scraper records to corpus posts. Records without an
// id or with negative counts are skipped.
func (s *Service) transformPosts(raw []models.RawPost) ([]models.Post, int) {
	posts := make([]models.Post, 0, len(raw))
	skipped := 0

	for _, r := range raw {
		if reason := invalid(r); reason != "" {
			skipped++
			s.log.Warn().Str("id", r.ID).Str("reason", reason).Msg("skipping scraper record")
			continue
		}

		hook := strings.TrimSpace(r.Hook)
		if hook == "" {
			hook = firstSentence(r.Caption)
		}
		posts = append(posts, models.Post{
			ID:          r.ID,
			Author:      strings.TrimPrefix(strings.TrimSpace(r.Author), "@"),
			Caption:     r.Caption,
			Hook:        hook,
			Transcript:  r.Transcript,
			Views:       r.Views,
			Likes:       r.Likes,
			Comments:    r.Comments,
			Shares:      r.Shares,
			UploadDate:  r.UploadDate,
			ContentType: strings.ToLower(strings.TrimSpace(r.ContentType)),
			PostURL:     r.PostURL,
			Hashtags:    r.Hashtags,
			Mentions:    r.Mentions,
			ViralScore:  r.ViralScore,
		})
	}

	return posts, skipped
}

func invalid(r models.RawPost) string {
	switch {
	case strings.TrimSpace(r.ID) == "":
		return "missing id"
	case r.Views < 0 || r.Likes < 0 || r.Comments < 0 || r.Shares < 0:
		return "negative count"
	case r.ViralScore < 0:
		return "negative viral score"
	default:
		return ""
	}
}

// firstSentence is the fallback hook for records that arrive without one
func firstSentence(caption string) string {
	caption = strings.TrimSpace(caption)
	if i := strings.IndexAny(caption, ".!?\n"); i >= 0 {
		return strings.TrimSpace(caption[:i+1])
	}
	return caption
}
