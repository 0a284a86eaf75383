package scoring

import (
	"math"
	"strings"
	"time"
	"unicode"

	"github.com/hooklab/content-intelligence-service/internal/lexicon"
	"github.com/hooklab/content-intelligence-service/internal/models"
	"github.com/hooklab/content-intelligence-service/internal/textutil"
)

// Factor names, also used as keys into the weight tables of the lexicon
const (
	FactorHookStrength       = "hookStrength"
	FactorEmotionalImpact    = "emotionalImpact"
	FactorContentLength      = "contentLength"
	FactorHashtagUsage       = "hashtagUsage"
	FactorEngagementElements = "engagementElements"
	FactorNicheAlignment     = "nicheAlignment"
	FactorTime               = "timeFactor"
)

// factorOrder fixes the order factors are reported in
var factorOrder = []string{
	FactorHookStrength,
	FactorEmotionalImpact,
	FactorContentLength,
	FactorHashtagUsage,
	FactorEngagementElements,
	FactorNicheAlignment,
	FactorTime,
}

// Impact classifies a factor score
type Impact string

const (
	ImpactPositive Impact = "positive"
	ImpactNeutral  Impact = "neutral"
	ImpactNegative Impact = "negative"

	positiveAbove = 70.0
	negativeBelow = 40.0
)

func classifyImpact(score float64) Impact {
	switch {
	case score > positiveAbove:
		return ImpactPositive
	case score < negativeBelow:
		return ImpactNegative
	default:
		return ImpactNeutral
	}
}

// FactorScore is one weighted component of a prediction
type FactorScore struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Weight float64 `json:"weight"`
	Impact Impact  `json:"impact"`
}

func clamp100(v float64) float64 {
	return math.Max(0, math.Min(100, v))
}

func hookStrength(lex *lexicon.Lexicon, text string) float64 {
	first := textutil.FirstLine(text)
	score := 50.0

	if strings.Contains(first, "?") {
		score += 15
	}
	if strings.IndexFunc(first, unicode.IsDigit) >= 0 {
		score += 10
	}
	score += 8 * float64(textutil.CountWords(first, lex.Scoring.PowerWords))
	if n := len([]rune(first)); n >= 20 && n <= 60 {
		score += 10
	}

	return clamp100(score)
}

func emotionalImpact(lex *lexicon.Lexicon, text string, m ContentMetrics) float64 {
	score := 40.0
	score += 7 * float64(textutil.CountWords(text, lex.Scoring.EmotionalWords))
	if textutil.CountWords(text, lex.Scoring.FirstPerson) > 0 {
		score += 12
	}
	score += math.Min(4*float64(m.ExclamationCount), 16)
	return clamp100(score)
}

func contentLength(b lexicon.Benchmark, words int) float64 {
	lo, hi := float64(b.OptimalMin), float64(b.OptimalMax)
	w := float64(words)

	switch {
	case w >= lo && w <= hi:
		return 90
	case w >= lo*0.8 && w <= hi*1.2:
		return 70
	case w < lo*0.5 || w > hi*2:
		return 30
	default:
		return 50
	}
}

func hashtagUsage(count int) float64 {
	switch {
	case count >= 5 && count <= 8:
		return 90
	case count >= 3 && count <= 10:
		return 70
	case count == 0 || count > 15:
		return 30
	default:
		return 50
	}
}

func engagementElements(m ContentMetrics) float64 {
	score := 40.0
	score += 15 * float64(m.QuestionCount)
	score += math.Min(5*float64(m.EmojiCount), 20)
	score += math.Min(8*float64(m.MentionCount), 16)
	return clamp100(score)
}

// nicheAlignment scores lexical overlap with the vocabulary of high
// performers in the niche, or 50 when there is no such vocabulary
func nicheAlignment(text string, vocab map[string]struct{}) float64 {
	if len(vocab) == 0 {
		return 50
	}
	words := textutil.WordSet(text, minVocabWordLen)
	if len(words) == 0 {
		return 30
	}
	shared := 0
	for w := range words {
		if _, ok := vocab[w]; ok {
			shared++
		}
	}
	return clamp100(30 + 70*float64(shared)/float64(len(words)))
}

func timeFactor(lex *lexicon.Lexicon, t time.Time) float64 {
	score := 45.0
	if isPeakHour(lex, t) {
		score = 85
	}
	if isWeekend(t) {
		score += 10
	}
	return clamp100(score)
}

func isPeakHour(lex *lexicon.Lexicon, t time.Time) bool {
	for _, h := range lex.Scoring.PeakHours[lexicon.DayKey(t.Weekday())] {
		if h == t.Hour() {
			return true
		}
	}
	return false
}

func isWeekend(t time.Time) bool {
	return t.Weekday() == time.Saturday || t.Weekday() == time.Sunday
}

// nicheOf maps a free-form content type to a niche without the default
// fallback, so unknown content types never pollute the default niche
func nicheOf(contentType string) models.Niche {
	return models.Niche(strings.ToLower(strings.TrimSpace(contentType)))
}
