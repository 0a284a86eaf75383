package corpus

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/hooklab/content-intelligence-service/internal/config"
	"github.com/hooklab/content-intelligence-service/internal/models"
	"github.com/hooklab/content-intelligence-service/internal/storage"
)

var testNow = time.Date(2025, time.April, 2, 9, 0, 0, 0, time.UTC)

// MockStorage is a mock implementation of the Storage interface
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) LoadCorpus(ctx context.Context) (*models.CorpusDocument, error) {
	args := m.Called(ctx)
	doc, _ := args.Get(0).(*models.CorpusDocument)
	return doc, args.Error(1)
}

func (m *MockStorage) SaveCorpus(ctx context.Context, doc *models.CorpusDocument) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *MockStorage) UpdateIngestionStatus(ctx context.Context, status models.IngestionStatus) error {
	args := m.Called(ctx, status)
	return args.Error(0)
}

func (m *MockStorage) GetIngestionStatus(ctx context.Context) (*models.IngestionStatus, error) {
	args := m.Called(ctx)
	status, _ := args.Get(0).(*models.IngestionStatus)
	return status, args.Error(1)
}

func (m *MockStorage) Close() error {
	args := m.Called()
	return args.Error(0)
}

func newFileStore(t *testing.T, opts ...Option) (*Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "corpus.json")
	backend, err := storage.NewFileStorage(config.StorageConfig{Path: path})
	require.NoError(t, err)
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	s := New(backend, opts...)
	s.Initialize(context.Background())
	return s, path
}

func post(id, author, contentType, hook string, views, likes int, score float64) models.Post {
	return models.Post{
		ID:          id,
		Author:      author,
		Hook:        hook,
		Caption:     hook + " full caption",
		Views:       views,
		Likes:       likes,
		ContentType: contentType,
		Hashtags:    []string{"#" + contentType, "#GrowthTips"},
		UploadDate:  testNow.AddDate(0, 0, -len(id)),
		ViralScore:  score,
	}
}

func TestAddPosts_DedupeAndScore(t *testing.T) {
	s, _ := newFileStore(t)
	ctx := context.Background()

	added, err := s.AddPosts(ctx, []models.Post{
		post("a", "alice", "business", "Why this works?", 1000, 100, 0),
		post("b", "bob", "fitness", "Lift heavy", 1000, 10, 250),
		post("a", "alice", "business", "duplicate in batch", 1, 1, 0),
	})
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	added, err = s.AddPosts(ctx, []models.Post{post("b", "bob", "fitness", "again", 5, 5, 10)})
	require.NoError(t, err)
	assert.Zero(t, added, "re-adding an existing id is a no-op")

	posts := s.Posts()
	require.Len(t, posts, 2)
	seen := map[string]bool{}
	for _, p := range posts {
		assert.False(t, seen[p.ID])
		seen[p.ID] = true
		assert.GreaterOrEqual(t, p.ViralScore, 0.0)
		assert.LessOrEqual(t, p.ViralScore, 100.0)
	}
	assert.Equal(t, "b", posts[0].ID, "supplied score is clamped to 100 and ranks first")
	assert.Equal(t, 100.0, posts[0].ViralScore)
	assert.InDelta(t, 10.0, posts[1].EngagementRate, 1e-9)
}

func TestAddPosts_TruncatesLowestScores(t *testing.T) {
	s, _ := newFileStore(t, WithMaxPosts(5))

	var batch []models.Post
	for i := 0; i < 8; i++ {
		batch = append(batch, post(fmt.Sprintf("p%d", i), "alice", "tech", "hook", 100, 1, float64(10+i*10)))
	}
	_, err := s.AddPosts(context.Background(), batch)
	require.NoError(t, err)

	posts := s.Posts()
	require.Len(t, posts, 5)
	assert.Equal(t, 80.0, posts[0].ViralScore)
	assert.Equal(t, 40.0, posts[4].ViralScore)
	assert.Equal(t, 5, s.GetStats().TotalPosts)

	// a dropped id may come back once it outranks the tail
	added, err := s.AddPosts(context.Background(), []models.Post{post("p0", "alice", "tech", "hook", 100, 1, 95)})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
	assert.Equal(t, "p0", s.Posts()[0].ID)
}

func TestAddPosts_DefaultCap(t *testing.T) {
	s, _ := newFileStore(t)

	batch := make([]models.Post, MaxPosts+25)
	for i := range batch {
		batch[i] = models.Post{ID: fmt.Sprintf("id-%d", i), ViralScore: float64(i%100) + 0.5}
	}
	_, err := s.AddPosts(context.Background(), batch)
	require.NoError(t, err)

	posts := s.Posts()
	assert.Len(t, posts, MaxPosts)
	assert.GreaterOrEqual(t, posts[len(posts)-1].ViralScore, 0.5)
}

func TestAddPosts_PersistFailureSurfaces(t *testing.T) {
	backend := new(MockStorage)
	backend.On("SaveCorpus", mock.Anything, mock.Anything).Return(errors.New("disk full"))
	s := New(backend, WithClock(func() time.Time { return testNow }))

	added, err := s.AddPosts(context.Background(), []models.Post{post("a", "alice", "tech", "hook", 10, 1, 50)})

	assert.Equal(t, 1, added)
	assert.ErrorContains(t, err, "failed to persist corpus")
	assert.ErrorContains(t, err, "disk full")
	backend.AssertExpectations(t)
}

func TestAddPosts_NotifiesListeners(t *testing.T) {
	s, _ := newFileStore(t)
	var got [][]models.Post
	s.OnAdd(func(posts []models.Post) {
		// the lock is released before listeners run
		assert.Equal(t, len(posts), s.Len()-countBefore(got))
		got = append(got, posts)
	})
	ctx := context.Background()

	_, err := s.AddPosts(ctx, []models.Post{post("a", "alice", "tech", "x", 100, 10, 0)})
	require.NoError(t, err)
	_, err = s.AddPosts(ctx, []models.Post{post("a", "alice", "tech", "x", 100, 10, 0)})
	require.NoError(t, err)

	require.Len(t, got, 1, "duplicates are not reported")
	require.Len(t, got[0], 1)
	assert.Equal(t, "a", got[0][0].ID)
	assert.InDelta(t, 10.0, got[0][0].EngagementRate, 1e-9, "listeners see normalized posts")
}

func countBefore(batches [][]models.Post) int {
	n := 0
	for _, b := range batches {
		n += len(b)
	}
	return n
}

func TestInitialize_LoadFailureStartsEmpty(t *testing.T) {
	backend := new(MockStorage)
	backend.On("LoadCorpus", mock.Anything).Return(nil, errors.New("corrupt"))
	s := New(backend)

	s.Initialize(context.Background())

	assert.Zero(t, s.Len())
	assert.Equal(t, 0, s.GetStats().TotalPosts)
	backend.AssertExpectations(t)
}

func TestRoundTrip(t *testing.T) {
	s, path := newFileStore(t)
	ctx := context.Background()

	var batch []models.Post
	for i := 0; i < 12; i++ {
		batch = append(batch, post(fmt.Sprintf("r%02d", i), fmt.Sprintf("creator%d", i%3), "food", "What is the secret sauce?", 1000+i, 50+i, 0))
	}
	_, err := s.AddPosts(ctx, batch)
	require.NoError(t, err)

	backend, err := storage.NewFileStorage(config.StorageConfig{Path: path})
	require.NoError(t, err)
	reloaded := New(backend)
	reloaded.Initialize(ctx)

	assert.Equal(t, s.Posts(), reloaded.Posts())
	assert.Equal(t, s.GetStats(), reloaded.GetStats())
	assert.Equal(t, s.Patterns(), reloaded.Patterns())
}

func TestGetStats(t *testing.T) {
	s, _ := newFileStore(t)

	empty := s.GetStats()
	assert.Zero(t, empty.TotalPosts)
	assert.NotNil(t, empty.ContentTypes)

	_, err := s.AddPosts(context.Background(), []models.Post{
		post("a", "alice", "tech", "x", 100, 10, 0),
		post("bb", "alice", "tech", "y", 100, 20, 0),
		post("ccc", "bob", "food", "z", 100, 30, 0),
	})
	require.NoError(t, err)

	stats := s.GetStats()
	assert.Equal(t, 3, stats.TotalPosts)
	assert.Equal(t, 2, stats.UniqueCreators)
	assert.InDelta(t, 20.0, stats.AvgEngagement, 1e-9)
	assert.Equal(t, map[string]int{"tech": 2, "food": 1}, stats.ContentTypes)
	assert.Equal(t, testNow.AddDate(0, 0, -3), stats.DateRange.Earliest)
	assert.Equal(t, testNow.AddDate(0, 0, -1), stats.DateRange.Latest)
	assert.Equal(t, testNow, stats.LastUpdated)
}

func TestExportDatabase(t *testing.T) {
	s, _ := newFileStore(t)
	_, err := s.AddPosts(context.Background(), []models.Post{post("a", "alice", "tech", "x", 100, 10, 0)})
	require.NoError(t, err)

	out := filepath.Join(t.TempDir(), "export.json")
	doc, err := s.ExportDatabase(context.Background(), out)
	require.NoError(t, err)
	assert.Len(t, doc.Posts, 1)
	assert.FileExists(t, out)

	_, err = s.ExportDatabase(context.Background(), filepath.Join(t.TempDir(), "missing", "export.json"))
	assert.Error(t, err)
}
