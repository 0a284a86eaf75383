package models

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeEngagementRate(t *testing.T) {
	assert.Equal(t, 0.0, ComputeEngagementRate(10, 5, 5, 0))
	assert.InDelta(t, 20.0, ComputeEngagementRate(10, 5, 5, 100), 1e-9)
}

func TestPost_Normalize(t *testing.T) {
	p := Post{Views: 1000, Likes: 80, Comments: 15, Shares: 5, EngagementRate: 999}
	p.Normalize()

	assert.InDelta(t, 10.0, p.EngagementRate, 1e-9)
	assert.Greater(t, p.ViralScore, 0.0)
	assert.LessOrEqual(t, p.ViralScore, MaxViralScore)

	supplied := Post{Views: 10, ViralScore: 250}
	supplied.Normalize()
	assert.Equal(t, MaxViralScore, supplied.ViralScore)
}

func TestPost_NormalizeTruncatesUploadDate(t *testing.T) {
	p := Post{UploadDate: time.Date(2025, time.May, 1, 12, 0, 0, 123456789, time.UTC)}
	p.Normalize()

	assert.Equal(t, time.Date(2025, time.May, 1, 12, 0, 0, 123000000, time.UTC), p.UploadDate)
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0.0, ClampScore(-5))
	assert.Equal(t, 0.0, ClampScore(math.NaN()))
	assert.Equal(t, 42.0, ClampScore(42))
	assert.Equal(t, 100.0, ClampScore(101))
}

func TestParseNiche(t *testing.T) {
	assert.Equal(t, NicheFitness, ParseNiche(" Fitness "))
	assert.Equal(t, DefaultNiche, ParseNiche("underwater-basket-weaving"))
	assert.Equal(t, DefaultNiche, ParseNiche(""))
}

func TestTemplate_AppliesTo(t *testing.T) {
	tmpl := Template{ApplicableNiches: []Niche{NicheTech, NicheBusiness}}
	assert.True(t, tmpl.AppliesTo(NicheTech))
	assert.False(t, tmpl.AppliesTo(NicheFood))
}
