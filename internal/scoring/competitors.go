package scoring

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hooklab/content-intelligence-service/internal/models"
	"github.com/hooklab/content-intelligence-service/internal/patterns"
)

const (
	minWindowPosts = 3
	gapRatio       = 0.5
)

// PostingWindow is a (weekday, hour) bucket of competitor posts
type PostingWindow struct {
	Weekday       time.Weekday `json:"weekday"`
	Hour          int          `json:"hour"`
	Posts         int          `json:"posts"`
	AvgEngagement float64      `json:"avgEngagement"`
}

// CreatorInsight summarizes one competitor
type CreatorInsight struct {
	Creator       string  `json:"creator"`
	Posts         int     `json:"posts"`
	AvgViralScore float64 `json:"avgViralScore"`
	TopHook       string  `json:"topHook"`
}

// CompetitorAnalysis is the output of AnalyzeCompetitorPatterns
type CompetitorAnalysis struct {
	PostsAnalyzed      int                  `json:"postsAnalyzed"`
	BestWindows        []PostingWindow      `json:"bestWindows"`
	StructuralPatterns []models.PatternStat `json:"structuralPatterns"`
	GapOpportunities   []PostingWindow      `json:"gapOpportunities"`
	CreatorInsights    []CreatorInsight     `json:"creatorInsights"`
}

// AnalyzeCompetitorPatterns runs AnalyzeCompetitors over the live corpus
// when the model has a source, and over the reference corpus otherwise
func (m *Model) AnalyzeCompetitorPatterns(creatorIDs []string) CompetitorAnalysis {
	if m.source != nil {
		return AnalyzeCompetitors(m.source.Posts(), creatorIDs)
	}
	return AnalyzeCompetitors(m.referenceSnapshot(), creatorIDs)
}

// AnalyzeCompetitors studies the posts authored by creatorIDs. Creator ids
// match authors case-insensitively, with or without a leading "@".
func AnalyzeCompetitors(posts []models.Post, creatorIDs []string) CompetitorAnalysis {
	wanted := make(map[string]struct{}, len(creatorIDs))
	for _, id := range creatorIDs {
		wanted[normalizeCreator(id)] = struct{}{}
	}

	var subset []models.Post
	for _, p := range posts {
		if _, ok := wanted[normalizeCreator(p.Author)]; ok {
			subset = append(subset, p)
		}
	}

	analysis := CompetitorAnalysis{
		PostsAnalyzed:      len(subset),
		BestWindows:        []PostingWindow{},
		GapOpportunities:   []PostingWindow{},
		StructuralPatterns: patterns.Aggregate(subset, patterns.MinCreatorSupport),
		CreatorInsights:    creatorInsights(subset),
	}
	sort.SliceStable(analysis.StructuralPatterns, func(i, j int) bool {
		return analysis.StructuralPatterns[i].AvgEngagement > analysis.StructuralPatterns[j].AvgEngagement
	})
	if len(subset) == 0 {
		return analysis
	}

	windows := bucketWindows(subset)
	var total int
	for _, w := range windows {
		total += w.Posts
	}
	mean := float64(total) / float64(len(windows))

	for _, w := range windows {
		if w.Posts >= minWindowPosts {
			analysis.BestWindows = append(analysis.BestWindows, w)
		}
		if float64(w.Posts) < mean*gapRatio {
			analysis.GapOpportunities = append(analysis.GapOpportunities, w)
		}
	}
	sort.SliceStable(analysis.BestWindows, func(i, j int) bool {
		return analysis.BestWindows[i].AvgEngagement > analysis.BestWindows[j].AvgEngagement
	})
	sort.SliceStable(analysis.GapOpportunities, func(i, j int) bool {
		return analysis.GapOpportunities[i].AvgEngagement > analysis.GapOpportunities[j].AvgEngagement
	})

	return analysis
}

// bucketWindows groups posts by weekday and hour in a deterministic order
func bucketWindows(posts []models.Post) []PostingWindow {
	type key struct {
		day  time.Weekday
		hour int
	}
	sums := make(map[key]float64)
	counts := make(map[key]int)
	var order []key
	for _, p := range posts {
		k := key{p.UploadDate.Weekday(), p.UploadDate.Hour()}
		if _, seen := counts[k]; !seen {
			order = append(order, k)
		}
		counts[k]++
		sums[k] += p.EngagementRate
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].day != order[j].day {
			return order[i].day < order[j].day
		}
		return order[i].hour < order[j].hour
	})

	out := make([]PostingWindow, 0, len(order))
	for _, k := range order {
		out = append(out, PostingWindow{
			Weekday:       k.day,
			Hour:          k.hour,
			Posts:         counts[k],
			AvgEngagement: sums[k] / float64(counts[k]),
		})
	}
	return out
}

// creatorInsights groups by normalized creator, so "@Alice" and "alice"
// share one row named "alice"
func creatorInsights(posts []models.Post) []CreatorInsight {
	byCreator := make(map[string]*CreatorInsight)
	best := make(map[string]float64)
	var order []string
	for _, p := range posts {
		name := normalizeCreator(p.Author)
		c, ok := byCreator[name]
		if !ok {
			c = &CreatorInsight{Creator: name}
			byCreator[name] = c
			order = append(order, name)
			best[name] = -1
		}
		c.Posts++
		c.AvgViralScore += p.ViralScore
		if p.ViralScore > best[name] {
			best[name] = p.ViralScore
			c.TopHook = p.Hook
		}
	}

	out := make([]CreatorInsight, 0, len(order))
	for _, name := range order {
		c := byCreator[name]
		c.AvgViralScore /= float64(c.Posts)
		out = append(out, *c)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AvgViralScore > out[j].AvgViralScore })
	return out
}

func normalizeCreator(id string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(id), "@"))
}

// String renders the window as "Tuesday 18:00"
func (w PostingWindow) String() string {
	return fmt.Sprintf("%s %02d:00", w.Weekday, w.Hour)
}
