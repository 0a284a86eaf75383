package corpus

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooklab/content-intelligence-service/internal/models"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	s, _ := newFileStore(t)
	_, err := s.AddPosts(context.Background(), []models.Post{
		post("a", "Alice", "business", "I really love my morning routine", 1000, 150, 92),
		post("bb", "bob", "business", "Why pricing is hard?", 1000, 40, 75),
		post("ccc", "carol", "fitness", "Never skip leg day", 1000, 80, 88),
		post("dddd", "dave", "business", "Low scorer", 1000, 5, 20),
		post("eeeee", "@alice", "tech", "The secret API", 1000, 60, 71),
	})
	require.NoError(t, err)
	return s
}

func TestSearchPosts_NoFilter(t *testing.T) {
	s := seededStore(t)

	for _, limit := range []int{1, 3, 5, 10} {
		got := s.SearchPosts(SearchFilter{}, limit)
		want := limit
		if want > 5 {
			want = 5
		}
		assert.Len(t, got, want)
	}
	assert.Len(t, s.SearchPosts(SearchFilter{}, 0), 5)
}

func TestSearchPosts_Filters(t *testing.T) {
	s := seededStore(t)

	tests := []struct {
		name   string
		filter SearchFilter
		want   []string
	}{
		{"content type", SearchFilter{ContentTypes: []string{"Business"}}, []string{"a", "bb", "dddd"}},
		{"min viral score", SearchFilter{MinViralScore: 80}, []string{"a", "ccc"}},
		{"min engagement", SearchFilter{MinEngagement: 7}, []string{"a", "ccc"}},
		{"creator", SearchFilter{Creators: []string{"@ALICE"}}, []string{"a", "eeeee"}},
		{"hashtag", SearchFilter{Hashtag: "growth"}, []string{"a", "ccc", "bb", "eeeee", "dddd"}},
		{"keyword", SearchFilter{Keyword: "PRICING"}, []string{"bb"}},
		{"date range", SearchFilter{From: testNow.AddDate(0, 0, -3), To: testNow.AddDate(0, 0, -2)}, []string{"bb", "ccc"}},
		{"and", SearchFilter{ContentTypes: []string{"business"}, MinViralScore: 80}, []string{"a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ids []string
			for _, p := range s.SearchPosts(tt.filter, 0) {
				ids = append(ids, p.ID)
			}
			assert.ElementsMatch(t, tt.want, ids)
		})
	}
}

func TestSearchPosts_PreservesRank(t *testing.T) {
	s := seededStore(t)

	got := s.SearchPosts(SearchFilter{}, 0)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].ViralScore, got[i].ViralScore)
	}
}

func TestGetContentSuggestions(t *testing.T) {
	s := seededStore(t)

	got := s.GetContentSuggestions(models.NicheBusiness, 5)

	require.Len(t, got, 2)
	assert.Equal(t, "You truly love your morning routine", got[0].Hook)
	assert.Equal(t, "I really love my morning routine", got[0].OriginalHook)
	assert.Equal(t, "Inspired by @Alice (150 likes)", got[0].Provenance)
	assert.Equal(t, "bb", got[1].SourcePostID)

	assert.Len(t, s.GetContentSuggestions(models.NicheBusiness, 1), 1)
	assert.Empty(t, s.GetContentSuggestions(models.NicheTravel, 3))
}

func TestGetViralTrends(t *testing.T) {
	s, _ := newFileStore(t)

	empty := s.GetViralTrends()
	assert.Empty(t, empty.TopPatterns)
	assert.Empty(t, empty.ContentTypes)
	assert.Empty(t, empty.Insights)

	var batch []models.Post
	for i := 0; i < 20; i++ {
		p := post(fmt.Sprintf("q%02d", i), fmt.Sprintf("creator%d", i%4), "fitness", "Why is this so effective?", 100, 60, 80)
		p.UploadDate = testNow.AddDate(0, 0, -i)
		batch = append(batch, p)
	}
	batch = append(batch, post("x", "solo", "food", "plain", 100, 1, 10))
	_, err := s.AddPosts(context.Background(), batch)
	require.NoError(t, err)

	trends := s.GetViralTrends()

	require.NotEmpty(t, trends.TopPatterns)
	for _, p := range trends.TopPatterns {
		assert.Greater(t, p.ViralPotential, 50.0)
	}
	require.Len(t, trends.ContentTypes, 2)
	assert.Equal(t, "fitness", trends.ContentTypes[0].ContentType)
	assert.Len(t, trends.TopCreators, 4, "solo has fewer than 3 posts")
	assert.Contains(t, trends.Insights[0], "Fitness content")
	assert.Contains(t, trends.Insights[len(trends.Insights)-1], "posts per day")
}
