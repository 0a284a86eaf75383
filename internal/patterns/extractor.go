// Package patterns classifies hooks into structural tags and aggregates
// tag-level engagement statistics over a set of posts.
package patterns

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/hooklab/content-intelligence-service/internal/models"
)

const (
	// MinCorpusSupport is the member count a tag needs in corpus-wide mining
	MinCorpusSupport = 5
	// MinCreatorSupport is the member count a tag needs in single-creator mining
	MinCreatorSupport = 3

	maxExamples     = 5
	frequencyTarget = 20.0
	epsilon         = 1e-9

	shortHookChars = 40
	longHookChars  = 80
)

var (
	interrogativeStarts = []string{"what", "how", "why"}
	instructionalTerms  = []string{"you need", "you should", "you must"}
	insiderTerms        = []string{"secret", "trick", "hack"}
	absoluteTerms       = []string{"never", "always", "every"}
	aspirationalTerms   = []string{"win", "success", "achieve"}
	cautionaryTerms     = []string{"mistake", "wrong", "fail"}
)

// Classify returns the structural tags of hook. The result always contains a
// length bucket, and contains TagGeneral when no content rule matched.
func Classify(hook string) []models.PatternTag {
	lower := strings.ToLower(strings.TrimSpace(hook))
	var tags []models.PatternTag

	if strings.Contains(lower, "?") {
		tags = append(tags, models.TagQuestion)
	}
	if startsWithWord(lower, interrogativeStarts) {
		tags = append(tags, models.TagInterrogative)
	}
	if strings.HasPrefix(lower, "the ") {
		tags = append(tags, models.TagDefinitive)
	}
	if containsAny(lower, instructionalTerms) {
		tags = append(tags, models.TagInstructional)
	}
	if containsAny(lower, insiderTerms) {
		tags = append(tags, models.TagInsider)
	}
	if containsAny(lower, absoluteTerms) {
		tags = append(tags, models.TagAbsolute)
	}
	if containsAny(lower, aspirationalTerms) {
		tags = append(tags, models.TagAspirational)
	}
	if containsAny(lower, cautionaryTerms) {
		tags = append(tags, models.TagCautionary)
	}
	if strings.IndexFunc(lower, unicode.IsDigit) >= 0 {
		tags = append(tags, models.TagNumerical)
	}
	if len(tags) == 0 {
		tags = append(tags, models.TagGeneral)
	}

	return append(tags, LengthBucket(hook))
}

// LengthBucket buckets a hook by character count
func LengthBucket(hook string) models.PatternTag {
	n := len([]rune(strings.TrimSpace(hook)))
	switch {
	case n < shortHookChars:
		return models.TagShort
	case n <= longHookChars:
		return models.TagMedium
	default:
		return models.TagLong
	}
}

// HasTag reports whether hook is classified with tag
func HasTag(hook string, tag models.PatternTag) bool {
	for _, t := range Classify(hook) {
		if t == tag {
			return true
		}
	}
	return false
}

// Aggregate groups posts by tag and returns the groups with at least minCount
// members, sorted by viral potential descending.
func Aggregate(posts []models.Post, minCount int) []models.PatternStat {
	type group struct {
		rates    []float64
		examples []string
	}

	groups := make(map[models.PatternTag]*group)
	var order []models.PatternTag

	for _, p := range posts {
		for _, tag := range Classify(p.Hook) {
			g, ok := groups[tag]
			if !ok {
				g = &group{}
				groups[tag] = g
				order = append(order, tag)
			}
			g.rates = append(g.rates, p.EngagementRate)
			if len(g.examples) < maxExamples && p.Hook != "" {
				g.examples = append(g.examples, p.Hook)
			}
		}
	}

	stats := make([]models.PatternStat, 0, len(order))
	for _, tag := range order {
		g := groups[tag]
		count := len(g.rates)
		if count < minCount {
			continue
		}

		avg := mean(g.rates)
		consistency := 1 - stdev(g.rates, avg)/math.Max(avg, epsilon)
		consistency = math.Max(0, math.Min(1, consistency))
		frequencyFactor := math.Min(float64(count)/frequencyTarget, 1)

		stats = append(stats, models.PatternStat{
			Tag:            tag,
			Examples:       g.examples,
			AvgEngagement:  avg,
			Frequency:      count,
			Consistency:    consistency,
			ViralPotential: round2(avg * consistency * frequencyFactor),
		})
	}

	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].ViralPotential > stats[j].ViralPotential
	})
	return stats
}

func startsWithWord(s string, words []string) bool {
	for _, w := range words {
		if s == w || strings.HasPrefix(s, w+" ") || strings.HasPrefix(s, w+"'") {
			return true
		}
	}
	return false
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdev is the population standard deviation
func stdev(values []float64, avg float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sq float64
	for _, v := range values {
		sq += (v - avg) * (v - avg)
	}
	return math.Sqrt(sq / float64(len(values)))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
