package corpus

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/hooklab/content-intelligence-service/internal/models"
	"github.com/hooklab/content-intelligence-service/internal/textutil"
)

const (
	trendPotentialAbove = 50.0
	suggestionMinScore  = 70.0
	minCreatorPosts     = 3
	maxTrendingCreators = 10
	maxTrendingPatterns = 10
)

// SearchFilter selects posts; every set field must match
type SearchFilter struct {
	ContentTypes  []string  `json:"contentTypes,omitempty"`
	MinViralScore float64   `json:"minViralScore,omitempty"`
	MinEngagement float64   `json:"minEngagement,omitempty"`
	From          time.Time `json:"from,omitempty"`
	To            time.Time `json:"to,omitempty"`
	Creators      []string  `json:"creators,omitempty"`
	Hashtag       string    `json:"hashtag,omitempty"`
	Keyword       string    `json:"keyword,omitempty"`
}

// matcher is a SearchFilter with its text fields normalized once
type matcher struct {
	SearchFilter
	contentTypes map[string]struct{}
	creators     map[string]struct{}
	hashtag      string
	keyword      string
}

func newMatcher(f SearchFilter) matcher {
	m := matcher{
		SearchFilter: f,
		hashtag:      strings.ToLower(strings.TrimPrefix(strings.TrimSpace(f.Hashtag), "#")),
		keyword:      strings.ToLower(strings.TrimSpace(f.Keyword)),
	}
	if len(f.ContentTypes) > 0 {
		m.contentTypes = make(map[string]struct{}, len(f.ContentTypes))
		for _, c := range f.ContentTypes {
			m.contentTypes[strings.ToLower(strings.TrimSpace(c))] = struct{}{}
		}
	}
	if len(f.Creators) > 0 {
		m.creators = make(map[string]struct{}, len(f.Creators))
		for _, c := range f.Creators {
			m.creators[normalizeCreator(c)] = struct{}{}
		}
	}
	return m
}

func (m matcher) match(p models.Post) bool {
	if m.contentTypes != nil {
		if _, ok := m.contentTypes[strings.ToLower(p.ContentType)]; !ok {
			return false
		}
	}
	if p.ViralScore < m.MinViralScore || p.EngagementRate < m.MinEngagement {
		return false
	}
	if !m.From.IsZero() && p.UploadDate.Before(m.From) {
		return false
	}
	if !m.To.IsZero() && p.UploadDate.After(m.To) {
		return false
	}
	if m.creators != nil {
		if _, ok := m.creators[normalizeCreator(p.Author)]; !ok {
			return false
		}
	}
	if m.hashtag != "" && !hasHashtag(p.Hashtags, m.hashtag) {
		return false
	}
	if m.keyword != "" &&
		!strings.Contains(strings.ToLower(p.Caption), m.keyword) &&
		!strings.Contains(strings.ToLower(p.Hook), m.keyword) {
		return false
	}
	return true
}

func hasHashtag(tags []string, needle string) bool {
	for _, tag := range tags {
		if strings.Contains(strings.ToLower(tag), needle) {
			return true
		}
	}
	return false
}

func normalizeCreator(c string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(c), "@"))
}

// SearchPosts returns matching posts in rank order. A limit of zero or less
// returns every match.
func (s *Store) SearchPosts(filter SearchFilter, limit int) []models.Post {
	m := newMatcher(filter)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []models.Post{}
	for _, p := range s.posts {
		if !m.match(p) {
			continue
		}
		out = append(out, p)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out
}

// ContentTypeRank is one row of the content-type leaderboard
type ContentTypeRank struct {
	ContentType   string  `json:"contentType"`
	Posts         int     `json:"posts"`
	AvgEngagement float64 `json:"avgEngagement"`
}

// CreatorRank is one row of the creator leaderboard
type CreatorRank struct {
	Creator       string  `json:"creator"`
	Posts         int     `json:"posts"`
	AvgViralScore float64 `json:"avgViralScore"`
}

// ViralTrends summarizes what currently performs in the corpus
type ViralTrends struct {
	TopPatterns  []models.PatternStat `json:"topPatterns"`
	ContentTypes []ContentTypeRank    `json:"contentTypes"`
	TopCreators  []CreatorRank        `json:"topCreators"`
	Insights     []string             `json:"insights"`
}

// GetViralTrends ranks patterns, content types and creators
func (s *Store) GetViralTrends() ViralTrends {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trends := ViralTrends{
		TopPatterns:  []models.PatternStat{},
		ContentTypes: rankContentTypes(s.posts),
		TopCreators:  rankCreators(s.posts),
		Insights:     []string{},
	}
	for _, p := range s.patterns {
		if p.ViralPotential > trendPotentialAbove && len(trends.TopPatterns) < maxTrendingPatterns {
			trends.TopPatterns = append(trends.TopPatterns, p)
		}
	}

	if len(trends.ContentTypes) > 0 {
		top := trends.ContentTypes[0]
		trends.Insights = append(trends.Insights, fmt.Sprintf(
			"%s content has the highest average engagement at %.1f%%", labelContentType(top.ContentType), top.AvgEngagement))
	}
	if len(trends.TopPatterns) > 0 {
		top := trends.TopPatterns[0]
		trends.Insights = append(trends.Insights, fmt.Sprintf(
			"%s hooks lead with a viral potential of %.2f across %d posts", top.Tag, top.ViralPotential, top.Frequency))
	}
	if len(trends.TopCreators) > 0 {
		top := trends.TopCreators[0]
		trends.Insights = append(trends.Insights, fmt.Sprintf(
			"@%s is the most consistent creator with an average viral score of %.1f", top.Creator, top.AvgViralScore))
	}
	if days := s.stats.DateRange.Latest.Sub(s.stats.DateRange.Earliest).Hours() / 24; days >= 1 {
		trends.Insights = append(trends.Insights, fmt.Sprintf(
			"The corpus averages %.1f posts per day", float64(len(s.posts))/math.Ceil(days)))
	}
	return trends
}

func labelContentType(c string) string {
	if c == "" {
		return "Uncategorized"
	}
	return textutil.Capitalize(c)
}

func rankContentTypes(posts []models.Post) []ContentTypeRank {
	index := make(map[string]int)
	var ranks []ContentTypeRank
	for _, p := range posts {
		i, ok := index[p.ContentType]
		if !ok {
			i = len(ranks)
			index[p.ContentType] = i
			ranks = append(ranks, ContentTypeRank{ContentType: p.ContentType})
		}
		ranks[i].Posts++
		ranks[i].AvgEngagement += p.EngagementRate
	}
	for i := range ranks {
		ranks[i].AvgEngagement /= float64(ranks[i].Posts)
	}
	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].AvgEngagement > ranks[j].AvgEngagement })
	if ranks == nil {
		return []ContentTypeRank{}
	}
	return ranks
}

func rankCreators(posts []models.Post) []CreatorRank {
	index := make(map[string]int)
	var all []CreatorRank
	for _, p := range posts {
		i, ok := index[p.Author]
		if !ok {
			i = len(all)
			index[p.Author] = i
			all = append(all, CreatorRank{Creator: p.Author})
		}
		all[i].Posts++
		all[i].AvgViralScore += p.ViralScore
	}

	ranks := []CreatorRank{}
	for _, c := range all {
		if c.Posts < minCreatorPosts {
			continue
		}
		c.AvgViralScore /= float64(c.Posts)
		ranks = append(ranks, c)
	}
	sort.SliceStable(ranks, func(i, j int) bool { return ranks[i].AvgViralScore > ranks[j].AvgViralScore })
	if len(ranks) > maxTrendingCreators {
		ranks = ranks[:maxTrendingCreators]
	}
	return ranks
}

// ContentSuggestion is a lightly varied hook from a high performer
type ContentSuggestion struct {
	Hook         string  `json:"hook"`
	OriginalHook string  `json:"originalHook"`
	SourcePostID string  `json:"sourcePostId"`
	Provenance   string  `json:"provenance"`
	ViralScore   float64 `json:"viralScore"`
}

// GetContentSuggestions varies the hooks of up to count posts in niche with
// a viral score of at least 70
func (s *Store) GetContentSuggestions(niche models.Niche, count int) []ContentSuggestion {
	subs := s.lex.Variation.Substitutions
	words := make([]string, 0, len(subs))
	for w := range subs {
		words = append(words, w)
	}
	sort.Strings(words)

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []ContentSuggestion{}
	for _, p := range s.posts {
		if len(out) >= count {
			break
		}
		if p.ViralScore < suggestionMinScore || models.Niche(strings.ToLower(p.ContentType)) != niche {
			continue
		}

		hook := p.Hook
		for _, w := range words {
			hook = textutil.ReplaceWord(hook, w, subs[w])
		}
		out = append(out, ContentSuggestion{
			Hook:         hook,
			OriginalHook: p.Hook,
			SourcePostID: p.ID,
			Provenance:   fmt.Sprintf("Inspired by @%s (%d likes)", strings.TrimPrefix(p.Author, "@"), p.Likes),
			ViralScore:   p.ViralScore,
		})
	}
	return out
}
