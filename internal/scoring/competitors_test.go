package scoring

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooklab/content-intelligence-service/internal/lexicon"
	"github.com/hooklab/content-intelligence-service/internal/models"
)

func competitorPost(id, author string, at time.Time, engagement, score float64, hook string) models.Post {
	return models.Post{
		ID:             id,
		Author:         author,
		Hook:           hook,
		UploadDate:     at,
		EngagementRate: engagement,
		ViralScore:     score,
	}
}

func TestAnalyzeCompetitors(t *testing.T) {
	monday9 := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	friday18 := time.Date(2025, time.March, 14, 18, 0, 0, 0, time.UTC)
	sunday7 := time.Date(2025, time.March, 16, 7, 0, 0, 0, time.UTC)

	var posts []models.Post
	for i := 0; i < 4; i++ {
		posts = append(posts, competitorPost(fmt.Sprintf("a%d", i), "Alice", monday9.AddDate(0, 0, -7*i), 4, 60, "Why does this work?"))
	}
	for i := 0; i < 3; i++ {
		posts = append(posts, competitorPost(fmt.Sprintf("b%d", i), "bob", friday18.AddDate(0, 0, -7*i), 12, 85, fmt.Sprintf("How I made %d sales?", i)))
	}
	posts = append(posts,
		competitorPost("b-top", "bob", sunday7, 20, 95, "The secret nobody shares"),
		competitorPost("c0", "carol", monday9, 50, 99, "not requested"),
	)

	a := AnalyzeCompetitors(posts, []string{"@alice", "BOB"})

	assert.Equal(t, 8, a.PostsAnalyzed)

	require.Len(t, a.BestWindows, 2)
	assert.Equal(t, time.Friday, a.BestWindows[0].Weekday)
	assert.Equal(t, 18, a.BestWindows[0].Hour)
	assert.Equal(t, time.Monday, a.BestWindows[1].Weekday)

	// mean bucket size is 8/3, so the single sunday post is a gap
	require.Len(t, a.GapOpportunities, 1)
	assert.Equal(t, "Sunday 07:00", a.GapOpportunities[0].String())

	require.Len(t, a.CreatorInsights, 2)
	assert.Equal(t, "bob", a.CreatorInsights[0].Creator)
	assert.Equal(t, "The secret nobody shares", a.CreatorInsights[0].TopHook)
	assert.InDelta(t, 87.5, a.CreatorInsights[0].AvgViralScore, 1e-9)

	for _, p := range a.StructuralPatterns {
		assert.GreaterOrEqual(t, p.Frequency, 3)
	}
}

func TestAnalyzeCompetitors_PatternsRankedByEngagement(t *testing.T) {
	at := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	var posts []models.Post
	for i := 0; i < 20; i++ {
		posts = append(posts, competitorPost(fmt.Sprintf("q%d", i), "dana", at, 9, 60, "Why does this work?"))
	}
	for i := 0; i < 3; i++ {
		posts = append(posts, competitorPost(fmt.Sprintf("n%d", i), "dana", at, 12, 60, "Top 5 picks"))
	}

	a := AnalyzeCompetitors(posts, []string{"dana"})

	require.NotEmpty(t, a.StructuralPatterns)
	// numerical is the rarest tag but engages best
	assert.Equal(t, models.TagNumerical, a.StructuralPatterns[0].Tag)
	for i := 1; i < len(a.StructuralPatterns); i++ {
		assert.GreaterOrEqual(t, a.StructuralPatterns[i-1].AvgEngagement, a.StructuralPatterns[i].AvgEngagement)
	}
}

func TestAnalyzeCompetitors_CreatorSpellingsShareInsight(t *testing.T) {
	at := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	posts := []models.Post{
		competitorPost("a", "@Alice", at, 5, 50, "a"),
		competitorPost("b", "alice", at, 5, 70, "b"),
	}

	a := AnalyzeCompetitors(posts, []string{"alice"})

	require.Len(t, a.CreatorInsights, 1)
	assert.Equal(t, "alice", a.CreatorInsights[0].Creator)
	assert.Equal(t, 2, a.CreatorInsights[0].Posts)
	assert.InDelta(t, 60, a.CreatorInsights[0].AvgViralScore, 1e-9)
	assert.Equal(t, "b", a.CreatorInsights[0].TopHook)
}

func TestAnalyzeCompetitors_NoMatches(t *testing.T) {
	a := AnalyzeCompetitors(nil, []string{"nobody"})

	assert.Zero(t, a.PostsAnalyzed)
	assert.Empty(t, a.BestWindows)
	assert.Empty(t, a.GapOpportunities)
	assert.Empty(t, a.CreatorInsights)
}

func TestModel_AnalyzeCompetitorPatterns(t *testing.T) {
	m := newTestModel()
	m.TrainModel(makePosts(4, "dana", "fitness", 75))

	a := m.AnalyzeCompetitorPatterns([]string{"Dana"})

	assert.Equal(t, 4, a.PostsAnalyzed)
	require.Len(t, a.CreatorInsights, 1)
	assert.Equal(t, 4, a.CreatorInsights[0].Posts)
}

type staticSource []models.Post

func (s staticSource) Posts() []models.Post { return s }

func TestModel_AnalyzeCompetitorPatterns_ReadsSource(t *testing.T) {
	m := New(lexicon.Default(), WithClock(func() time.Time { return fixedNow }), WithSource(staticSource(makePosts(3, "erin", "food", 65))))

	// nothing trained; the source alone is analyzed
	a := m.AnalyzeCompetitorPatterns([]string{"erin"})

	assert.Zero(t, m.ReferenceSize())
	assert.Equal(t, 3, a.PostsAnalyzed)
	require.Len(t, a.CreatorInsights, 1)
	assert.Equal(t, "erin", a.CreatorInsights[0].Creator)
}
