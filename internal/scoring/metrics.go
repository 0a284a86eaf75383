package scoring

import (
	"strings"

	"github.com/hooklab/content-intelligence-service/internal/textutil"
)

const (
	readabilityBase    = 60.0
	readabilityPenalty = 20.0
	readabilityBonus   = 20.0
	longSentenceWords  = 20.0
	shortSentenceWords = 8.0
)

// ContentMetrics are the surface measurements of a draft
type ContentMetrics struct {
	WordCount           int     `json:"wordCount"`
	SentenceCount       int     `json:"sentenceCount"`
	HashtagCount        int     `json:"hashtagCount"`
	MentionCount        int     `json:"mentionCount"`
	EmojiCount          int     `json:"emojiCount"`
	QuestionCount       int     `json:"questionCount"`
	ExclamationCount    int     `json:"exclamationCount"`
	AvgWordsPerSentence float64 `json:"avgWordsPerSentence"`
	Readability         float64 `json:"readability"`
}

// ExtractMetrics measures text
func ExtractMetrics(text string) ContentMetrics {
	m := ContentMetrics{
		WordCount:        len(strings.Fields(text)),
		SentenceCount:    len(textutil.Sentences(text)),
		HashtagCount:     len(textutil.Tokens(text, "#")),
		MentionCount:     len(textutil.Tokens(text, "@")),
		EmojiCount:       textutil.CountEmoji(text),
		QuestionCount:    strings.Count(text, "?"),
		ExclamationCount: strings.Count(text, "!"),
	}

	if m.SentenceCount > 0 {
		m.AvgWordsPerSentence = float64(m.WordCount) / float64(m.SentenceCount)
	}

	m.Readability = readabilityBase
	switch {
	case m.SentenceCount == 0:
	case m.AvgWordsPerSentence > longSentenceWords:
		m.Readability -= readabilityPenalty
	case m.AvgWordsPerSentence < shortSentenceWords:
		m.Readability += readabilityBonus
	}

	return m
}
