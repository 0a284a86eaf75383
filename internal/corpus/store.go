// Package corpus owns the in-memory post corpus and its persisted document.
//
// A Store is created with New, loaded with Initialize and released with
// Close. AddPosts is the only writer; it runs the whole
// dedupe, score, rank, truncate, aggregate and persist sequence under the
// write lock, so concurrent readers always observe a consistent snapshot.
package corpus

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hooklab/content-intelligence-service/internal/lexicon"
	"github.com/hooklab/content-intelligence-service/internal/logging"
	"github.com/hooklab/content-intelligence-service/internal/metrics"
	"github.com/hooklab/content-intelligence-service/internal/models"
	"github.com/hooklab/content-intelligence-service/internal/patterns"
	"github.com/hooklab/content-intelligence-service/internal/storage"
)

// MaxPosts caps the corpus; the lowest viral scores are dropped first
const MaxPosts = 10000

// Store is the scored post corpus
type Store struct {
	store    storage.Storage
	lex      *lexicon.Lexicon
	now      func() time.Time
	maxPosts int
	log      zerolog.Logger

	mu       sync.RWMutex
	posts    []models.Post
	ids      map[string]struct{}
	stats    models.DatabaseStats
	patterns []models.PatternStat
	onAdd    []func([]models.Post)
}

// Option configures a Store
type Option func(*Store)

// WithLexicon replaces the embedded lexicon used for suggestions
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(s *Store) { s.lex = lex }
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithMaxPosts overrides MaxPosts
func WithMaxPosts(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.maxPosts = n
		}
	}
}

// New creates an empty store persisting to store. Call Initialize to load
// the persisted document.
func New(store storage.Storage, opts ...Option) *Store {
	s := &Store{
		store:    store,
		lex:      lexicon.Default(),
		now:      time.Now,
		maxPosts: MaxPosts,
		log:      logging.With().Str("component", "corpus").Logger(),
		ids:      make(map[string]struct{}),
		stats:    emptyStats(),
		patterns: []models.PatternStat{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Initialize loads the persisted document. Load failures never propagate:
// the store starts empty and the failure is logged.
func (s *Store) Initialize(ctx context.Context) {
	doc, err := s.store.LoadCorpus(ctx)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		s.log.Info().Msg("no persisted corpus, starting empty")
		return
	case err != nil:
		s.log.Warn().Err(err).Msg("failed to load corpus, starting empty")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.posts = s.posts[:0]
	s.ids = make(map[string]struct{}, len(doc.Posts))
	for _, p := range doc.Posts {
		if _, dup := s.ids[p.ID]; dup {
			continue
		}
		p.ViralScore = models.ClampScore(p.ViralScore)
		s.ids[p.ID] = struct{}{}
		s.posts = append(s.posts, p)
	}
	s.rank()

	if doc.Stats != nil {
		s.stats = *doc.Stats
		if s.stats.ContentTypes == nil {
			s.stats.ContentTypes = map[string]int{}
		}
	} else {
		s.stats = computeStats(s.posts, doc.LastSaved)
	}
	if doc.Patterns != nil {
		s.patterns = doc.Patterns
	} else {
		s.patterns = patterns.Aggregate(s.posts, patterns.MinCorpusSupport)
	}

	metrics.CorpusPosts.Set(float64(len(s.posts)))
	s.log.Info().
		Int("posts", len(s.posts)).
		Int("patterns", len(s.patterns)).
		Time("last_saved", doc.LastSaved).
		Msg("corpus loaded")
}

// Close releases the storage backend
func (s *Store) Close() error {
	return s.store.Close()
}

// AddPosts merges posts into the corpus and persists the result. It returns
// the number of posts accepted; posts whose id is already present are
// ignored. A persistence failure is returned after the in-memory corpus has
// been updated.
func (s *Store) AddPosts(ctx context.Context, posts []models.Post) (int, error) {
	accepted, listeners, err := s.addPosts(ctx, posts)
	for _, fn := range listeners {
		fn(accepted)
	}
	return len(accepted), err
}

// OnAdd registers fn to receive the posts accepted by every later AddPosts
// call. fn runs after the store lock is released.
func (s *Store) OnAdd(fn func([]models.Post)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onAdd = append(s.onAdd, fn)
}

func (s *Store) addPosts(ctx context.Context, posts []models.Post) ([]models.Post, []func([]models.Post), error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var accepted []models.Post
	for _, p := range posts {
		if _, dup := s.ids[p.ID]; dup {
			continue
		}
		p.Normalize()
		s.ids[p.ID] = struct{}{}
		s.posts = append(s.posts, p)
		accepted = append(accepted, p)
	}
	added := len(accepted)
	if added == 0 {
		return nil, nil, nil
	}
	listeners := s.onAdd

	s.rank()
	dropped := s.truncate()

	now := s.now().UTC().Truncate(models.TimePrecision)
	s.stats = computeStats(s.posts, now)
	s.patterns = patterns.Aggregate(s.posts, patterns.MinCorpusSupport)
	metrics.RecordCorpusMutation(len(s.posts), added, dropped)

	s.log.Debug().
		Int("added", added).
		Int("dropped", dropped).
		Int("size", len(s.posts)).
		Msg("posts added")

	if err := s.persist(ctx, now); err != nil {
		return accepted, listeners, err
	}
	return accepted, listeners, nil
}

// rank sorts by viral score descending; must be called with mu held
func (s *Store) rank() {
	sort.SliceStable(s.posts, func(i, j int) bool {
		return s.posts[i].ViralScore > s.posts[j].ViralScore
	})
}

// truncate enforces maxPosts after rank; must be called with mu held
func (s *Store) truncate() int {
	if len(s.posts) <= s.maxPosts {
		return 0
	}
	dropped := len(s.posts) - s.maxPosts
	for _, p := range s.posts[s.maxPosts:] {
		delete(s.ids, p.ID)
	}
	s.posts = s.posts[:s.maxPosts:s.maxPosts]
	return dropped
}

// persist writes the current document; must be called with mu held
func (s *Store) persist(ctx context.Context, now time.Time) error {
	start := time.Now()
	err := s.store.SaveCorpus(ctx, s.document(now))
	metrics.RecordPersist(time.Since(start), err)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to persist corpus")
		return fmt.Errorf("failed to persist corpus: %w", err)
	}
	return nil
}

// document builds the persisted shape; must be called with mu held
func (s *Store) document(savedAt time.Time) *models.CorpusDocument {
	stats := s.stats
	return &models.CorpusDocument{
		Posts:     append([]models.Post(nil), s.posts...),
		Stats:     &stats,
		Patterns:  append([]models.PatternStat(nil), s.patterns...),
		LastSaved: savedAt,
	}
}

// ExportDatabase persists the full state. An empty path writes to the
// configured backend; otherwise the document is written as JSON to path.
func (s *Store) ExportDatabase(ctx context.Context, path string) (*models.CorpusDocument, error) {
	s.mu.RLock()
	doc := s.document(s.now().UTC().Truncate(models.TimePrecision))
	s.mu.RUnlock()

	if path == "" {
		if err := s.store.SaveCorpus(ctx, doc); err != nil {
			return nil, fmt.Errorf("failed to export corpus: %w", err)
		}
		return doc, nil
	}
	if err := storage.WriteJSONFile(path, doc); err != nil {
		return nil, fmt.Errorf("failed to export corpus: %w", err)
	}
	s.log.Info().Str("path", path).Int("posts", len(doc.Posts)).Msg("corpus exported")
	return doc, nil
}

// Len is the number of posts in the corpus
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.posts)
}

// Posts returns a copy of the corpus in rank order
func (s *Store) Posts() []models.Post {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Post(nil), s.posts...)
}

// Patterns returns a copy of the corpus pattern statistics
func (s *Store) Patterns() []models.PatternStat {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.PatternStat(nil), s.patterns...)
}

// GetStats returns the aggregate snapshot; zero-valued for an empty corpus
func (s *Store) GetStats() models.DatabaseStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := s.stats
	stats.ContentTypes = make(map[string]int, len(s.stats.ContentTypes))
	for k, v := range s.stats.ContentTypes {
		stats.ContentTypes[k] = v
	}
	return stats
}

func emptyStats() models.DatabaseStats {
	return models.DatabaseStats{ContentTypes: map[string]int{}}
}

func computeStats(posts []models.Post, updated time.Time) models.DatabaseStats {
	stats := emptyStats()
	stats.LastUpdated = updated
	if len(posts) == 0 {
		return stats
	}

	creators := make(map[string]struct{})
	var engagement float64
	for i, p := range posts {
		creators[p.Author] = struct{}{}
		engagement += p.EngagementRate
		stats.ContentTypes[p.ContentType]++
		if i == 0 || p.UploadDate.Before(stats.DateRange.Earliest) {
			stats.DateRange.Earliest = p.UploadDate
		}
		if i == 0 || p.UploadDate.After(stats.DateRange.Latest) {
			stats.DateRange.Latest = p.UploadDate
		}
	}

	stats.TotalPosts = len(posts)
	stats.UniqueCreators = len(creators)
	stats.AvgEngagement = engagement / float64(len(posts))
	return stats
}
