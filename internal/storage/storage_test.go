package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooklab/content-intelligence-service/internal/config"
	"github.com/hooklab/content-intelligence-service/internal/models"
)

func sampleDocument(n int) *models.CorpusDocument {
	base := time.Date(2025, time.February, 1, 12, 0, 0, 0, time.UTC)
	doc := &models.CorpusDocument{
		Patterns: []models.PatternStat{{
			Tag:            models.TagQuestion,
			Examples:       []string{"Why?"},
			AvgEngagement:  7.5,
			Frequency:      5,
			Consistency:    0.8,
			ViralPotential: 1.5,
		}},
		LastSaved: base.Add(time.Hour),
	}
	for i := 0; i < n; i++ {
		doc.Posts = append(doc.Posts, models.Post{
			ID:             fmt.Sprintf("post-%d", i),
			Author:         "creator",
			Caption:        "caption",
			Hook:           "Why does this work?",
			Views:          1000,
			Likes:          100,
			EngagementRate: 10,
			UploadDate:     base.AddDate(0, 0, i),
			ContentType:    "business",
			Hashtags:       []string{"#growth"},
			Mentions:       []string{},
			ViralScore:     float64(90 - i),
		})
	}
	doc.Stats = &models.DatabaseStats{
		TotalPosts:     n,
		UniqueCreators: 1,
		AvgEngagement:  10,
		ContentTypes:   map[string]int{"business": n},
		DateRange:      models.DateRange{Earliest: base, Latest: base.AddDate(0, 0, n-1)},
		LastUpdated:    base,
	}
	return doc
}

// exerciseStorage runs the shared contract against any backend
func exerciseStorage(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.LoadCorpus(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	status, err := s.GetIngestionStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StatusNeverRun, status.Status)

	doc := sampleDocument(3)
	require.NoError(t, s.SaveCorpus(ctx, doc))

	loaded, err := s.LoadCorpus(ctx)
	require.NoError(t, err)
	assert.Equal(t, doc.Posts, loaded.Posts)
	assert.Equal(t, doc.Stats, loaded.Stats)
	assert.Equal(t, doc.Patterns, loaded.Patterns)
	assert.True(t, doc.LastSaved.Equal(loaded.LastSaved))

	// a second save replaces the first
	require.NoError(t, s.SaveCorpus(ctx, sampleDocument(1)))
	loaded, err = s.LoadCorpus(ctx)
	require.NoError(t, err)
	assert.Len(t, loaded.Posts, 1)

	want := models.IngestionStatus{
		LastSuccessfulRun: time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC),
		LastAttempt:       time.Date(2025, time.March, 1, 8, 0, 0, 0, time.UTC),
		Status:            models.StatusSuccess,
		RecordsIngested:   12,
		RecordsSkipped:    1,
	}
	require.NoError(t, s.UpdateIngestionStatus(ctx, want))
	status, err = s.GetIngestionStatus(ctx)
	require.NoError(t, err)
	assert.Equal(t, want.Status, status.Status)
	assert.Equal(t, want.RecordsIngested, status.RecordsIngested)
	assert.Equal(t, want.RecordsSkipped, status.RecordsSkipped)
	assert.True(t, want.LastSuccessfulRun.Equal(status.LastSuccessfulRun))
}

func TestNewStorage_Unsupported(t *testing.T) {
	_, err := NewStorage(config.StorageConfig{Type: "cassandra"})
	assert.ErrorIs(t, err, ErrUnsupported)
}

func TestNewStorage_File(t *testing.T) {
	s, err := NewStorage(config.StorageConfig{Type: config.StorageFile, Path: filepath.Join(t.TempDir(), "corpus.json")})
	require.NoError(t, err)
	defer s.Close()

	assert.IsType(t, &FileStorage{}, s)
}

func TestFileStorage(t *testing.T) {
	s, err := NewFileStorage(config.StorageConfig{Path: filepath.Join(t.TempDir(), "nested", "corpus.json")})
	require.NoError(t, err)
	defer s.Close()

	exerciseStorage(t, s)
}

func TestFileStorage_DocumentShape(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")
	s, err := NewFileStorage(config.StorageConfig{Path: path})
	require.NoError(t, err)

	require.NoError(t, s.SaveCorpus(context.Background(), sampleDocument(1)))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	for _, field := range []string{`"posts"`, `"stats"`, `"patterns"`, `"lastSaved"`, `"viralScore"`, `"engagementRate"`} {
		assert.Contains(t, string(raw), field)
	}
}

func TestFileStorage_CorruptDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))
	s, err := NewFileStorage(config.StorageConfig{Path: path})
	require.NoError(t, err)

	_, err = s.LoadCorpus(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestWriteJSONFile_Failure(t *testing.T) {
	dir := t.TempDir()
	err := WriteJSONFile(filepath.Join(dir, "missing", "out.json"), sampleDocument(1))
	assert.Error(t, err)
}

func TestSQLiteStorage(t *testing.T) {
	s, err := NewSQLiteStorage(config.StorageConfig{Path: ":memory:", Key: "corpus"})
	require.NoError(t, err)
	defer s.Close()

	exerciseStorage(t, s)
}

func TestCodec_Compression(t *testing.T) {
	doc := sampleDocument(20)

	plain, err := encode(doc, false)
	require.NoError(t, err)
	packed, err := encode(doc, true)
	require.NoError(t, err)
	assert.Less(t, len(packed), len(plain))

	var fromPlain, fromPacked models.CorpusDocument
	require.NoError(t, decode(plain, &fromPlain))
	require.NoError(t, decode(packed, &fromPacked))
	assert.Equal(t, fromPlain.Posts, fromPacked.Posts)
}
