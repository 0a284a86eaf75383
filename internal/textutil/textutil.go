// Package textutil holds the small tokenizing helpers shared by the scoring
// model, the generator and the variation engine. All analysis is keyword based.
package textutil

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// Words returns the lowercase word tokens of s. Apostrophes stay inside words;
// hashtags and mentions lose their sigil.
func Words(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

// WordSet returns the distinct words of s with at least minLen runes
func WordSet(s string, minLen int) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range Words(s) {
		if len([]rune(w)) >= minLen {
			set[w] = struct{}{}
		}
	}
	return set
}

// HasWord reports whether word appears in s as a whole token
func HasWord(s, word string) bool {
	word = strings.ToLower(word)
	for _, w := range Words(s) {
		if w == word {
			return true
		}
	}
	return false
}

// CountWords counts how many of words appear in s as whole tokens, each word
// counted once
func CountWords(s string, words []string) int {
	tokens := WordSet(s, 1)
	n := 0
	for _, w := range words {
		if _, ok := tokens[strings.ToLower(w)]; ok {
			n++
		}
	}
	return n
}

// Sentences splits s on terminal punctuation and drops empty pieces
func Sentences(s string) []string {
	var out []string
	for _, part := range sentenceSplit.Split(s, -1) {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// SplitSentences splits s into sentences keeping their terminal punctuation
func SplitSentences(s string) []string {
	var out []string
	last := 0
	for _, loc := range sentenceSplit.FindAllStringIndex(s, -1) {
		if p := strings.TrimSpace(s[last:loc[1]]); p != "" {
			out = append(out, p)
		}
		last = loc[1]
	}
	if p := strings.TrimSpace(s[last:]); p != "" {
		out = append(out, p)
	}
	return out
}

// FirstLine returns the first non-empty line of s
func FirstLine(s string) string {
	for _, line := range strings.Split(s, "\n") {
		if l := strings.TrimSpace(line); l != "" {
			return l
		}
	}
	return ""
}

// ReplaceWord replaces whole-word occurrences of from with to, case
// insensitively. A capitalized match yields a capitalized replacement.
func ReplaceWord(s, from, to string) string {
	if from == "" {
		return s
	}
	return PhrasePattern(from).ReplaceAllStringFunc(s, func(match string) string {
		if r := []rune(match); len(r) > 0 && unicode.IsUpper(r[0]) {
			return Capitalize(to)
		}
		return to
	})
}

// ReplaceFirstWord is ReplaceWord limited to the first occurrence
func ReplaceFirstWord(s, from, to string) string {
	if from == "" {
		return s
	}
	loc := PhrasePattern(from).FindStringIndex(s)
	if loc == nil {
		return s
	}
	match := s[loc[0]:loc[1]]
	if r := []rune(match); len(r) > 0 && unicode.IsUpper(r[0]) {
		to = Capitalize(to)
	}
	return s[:loc[0]] + to + s[loc[1]:]
}

// StripPhrase removes whole-phrase occurrences of phrase, case
// insensitively, together with any trailing "." or "!"
func StripPhrase(s, phrase string) string {
	if phrase == "" {
		return s
	}
	re := cachedPattern(&stripPatterns, phrase, func() string { return boundedExpr(phrase) + `[.!]*` })
	return re.ReplaceAllString(s, "")
}

// phrase -> *regexp.Regexp; phrases come from the lexicon so both stay small
var (
	phrasePatterns sync.Map
	stripPatterns  sync.Map
)

// PhrasePattern returns the cached case-insensitive pattern matching phrase
// on word boundaries. An edge that is not a word character is left unbounded.
func PhrasePattern(phrase string) *regexp.Regexp {
	return cachedPattern(&phrasePatterns, phrase, func() string { return boundedExpr(phrase) })
}

func cachedPattern(cache *sync.Map, phrase string, expr func() string) *regexp.Regexp {
	if re, ok := cache.Load(phrase); ok {
		return re.(*regexp.Regexp)
	}
	re, _ := cache.LoadOrStore(phrase, regexp.MustCompile(expr()))
	return re.(*regexp.Regexp)
}

func boundedExpr(phrase string) string {
	expr := regexp.QuoteMeta(phrase)
	if r, _ := utf8.DecodeRuneInString(phrase); isWordRune(r) {
		expr = `\b` + expr
	}
	if r, _ := utf8.DecodeLastRuneInString(phrase); isWordRune(r) {
		expr += `\b`
	}
	return `(?i)` + expr
}

// isWordRune mirrors the ASCII \w class that \b is defined against
func isWordRune(r rune) bool {
	return r == '_' || (r < utf8.RuneSelf && (unicode.IsLetter(r) || unicode.IsDigit(r)))
}

// Capitalize upper-cases the first rune of s
func Capitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Decapitalize lower-cases the first rune of s unless it is the pronoun "I"
func Decapitalize(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	if r[0] == 'I' && (len(r) == 1 || r[1] == ' ' || r[1] == '\'') {
		return s
	}
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// IsEmoji reports whether r falls in the common emoji and pictograph blocks
func IsEmoji(r rune) bool {
	return (r >= 0x1F300 && r <= 0x1FAFF) ||
		(r >= 0x2600 && r <= 0x27BF) ||
		(r >= 0x1F1E6 && r <= 0x1F1FF)
}

// CountEmoji counts emoji runes in s
func CountEmoji(s string) int {
	n := 0
	for _, r := range s {
		if IsEmoji(r) {
			n++
		}
	}
	return n
}

// Tokens returns whitespace separated tokens beginning with prefix, such as
// hashtags or mentions
func Tokens(s string, prefix string) []string {
	var out []string
	for _, f := range strings.Fields(s) {
		f = strings.TrimRight(f, ".,!?;:")
		if strings.HasPrefix(f, prefix) && len(f) > len(prefix) {
			out = append(out, f)
		}
	}
	return out
}

// TrimTerminal strips trailing sentence punctuation
func TrimTerminal(s string) string {
	return strings.TrimRight(strings.TrimSpace(s), ".!?…")
}
