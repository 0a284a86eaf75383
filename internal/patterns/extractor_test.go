package patterns

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooklab/content-intelligence-service/internal/models"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		hook string
		want []models.PatternTag
	}{
		{"What is the secret?", []models.PatternTag{models.TagQuestion, models.TagInterrogative, models.TagInsider, models.TagShort}},
		{"The 3 mistakes you should avoid", []models.PatternTag{models.TagDefinitive, models.TagInstructional, models.TagCautionary, models.TagNumerical, models.TagShort}},
		{"Never skip this if you want success", []models.PatternTag{models.TagAbsolute, models.TagAspirational, models.TagShort}},
		{"Sunsets", []models.PatternTag{models.TagGeneral, models.TagShort}},
		{"", []models.PatternTag{models.TagGeneral, models.TagShort}},
	}

	for _, tt := range tests {
		t.Run(tt.hook, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.hook))
		})
	}
}

func TestClassify_InterrogativeNeedsWholeWord(t *testing.T) {
	assert.NotContains(t, Classify("Whatever happens, keep going"), models.TagInterrogative)
	assert.Contains(t, Classify("how to start"), models.TagInterrogative)
}

func TestLengthBucket(t *testing.T) {
	assert.Equal(t, models.TagShort, LengthBucket(strings.Repeat("a", 39)))
	assert.Equal(t, models.TagMedium, LengthBucket(strings.Repeat("a", 40)))
	assert.Equal(t, models.TagMedium, LengthBucket(strings.Repeat("a", 80)))
	assert.Equal(t, models.TagLong, LengthBucket(strings.Repeat("a", 81)))
}

func post(id, hook string, rate float64) models.Post {
	return models.Post{ID: id, Hook: hook, EngagementRate: rate}
}

func TestAggregate_QuestionScenario(t *testing.T) {
	posts := []models.Post{
		post("1", "Is this real?", 5),
		post("2", "Can you guess?", 10),
		post("3", "Are you ready?", 15),
		post("4", "Plain statement here", 2),
		post("5", "Would you try it?", 20),
		post("6", "Another plain line", 3),
		post("7", "Do you agree?", 30),
	}

	stats := Aggregate(posts, MinCorpusSupport)

	var question *models.PatternStat
	for i := range stats {
		if stats[i].Tag == models.TagQuestion {
			question = &stats[i]
		}
	}
	require.NotNil(t, question)
	assert.Equal(t, 5, question.Frequency)
	assert.InDelta(t, (5.0+10+15+20+30)/5, question.AvgEngagement, 1e-9)
	assert.LessOrEqual(t, len(question.Examples), 5)
}

func TestAggregate_RespectsMinimumSupport(t *testing.T) {
	var posts []models.Post
	for i := 0; i < 12; i++ {
		hook := "Plain hook"
		if i%4 == 0 {
			hook = "Why now?"
		}
		posts = append(posts, post(fmt.Sprint(i), hook, float64(i)))
	}

	for _, minCount := range []int{MinCreatorSupport, MinCorpusSupport} {
		for _, s := range Aggregate(posts, minCount) {
			assert.GreaterOrEqual(t, s.Frequency, minCount, "tag %s", s.Tag)
		}
	}

	tags := map[models.PatternTag]bool{}
	for _, s := range Aggregate(posts, MinCreatorSupport) {
		tags[s.Tag] = true
	}
	assert.True(t, tags[models.TagQuestion])
	assert.False(t, func() bool {
		for _, s := range Aggregate(posts, MinCorpusSupport) {
			if s.Tag == models.TagQuestion {
				return true
			}
		}
		return false
	}())
}

func TestAggregate_ViralPotential(t *testing.T) {
	var posts []models.Post
	for i := 0; i < 20; i++ {
		posts = append(posts, post(fmt.Sprint(i), "Same rate", 10))
	}

	stats := Aggregate(posts, MinCorpusSupport)
	require.NotEmpty(t, stats)
	// identical rates: consistency 1, frequency factor 1
	assert.Equal(t, 10.0, stats[0].ViralPotential)
	assert.Equal(t, 1.0, stats[0].Consistency)
}

func TestAggregate_SortedDescending(t *testing.T) {
	var posts []models.Post
	for i := 0; i < 6; i++ {
		posts = append(posts, post(fmt.Sprintf("q%d", i), "Why?", 20))
		posts = append(posts, post(fmt.Sprintf("n%d", i), "Top 5 picks", 4))
	}

	stats := Aggregate(posts, MinCorpusSupport)
	for i := 1; i < len(stats); i++ {
		assert.GreaterOrEqual(t, stats[i-1].ViralPotential, stats[i].ViralPotential)
	}
}

func TestAggregate_Empty(t *testing.T) {
	assert.Empty(t, Aggregate(nil, MinCorpusSupport))
}
