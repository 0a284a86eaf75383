package variation

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/hooklab/content-intelligence-service/internal/models"
	"github.com/hooklab/content-intelligence-service/internal/patterns"
	"github.com/hooklab/content-intelligence-service/internal/textutil"
)

const (
	maxSynonymSwaps  = 2
	shortenSentences = 3
	questionChance   = 0.5
)

var (
	spaces      = regexp.MustCompile(`[ \t]{2,}`)
	danglingEnd = regexp.MustCompile(`\s+([.!?,])`)
	periodEnd   = regexp.MustCompile(`\.(\s|$)`)
	numbered    = regexp.MustCompile(`(?m)^\s*\d+[.)]`)
)

// Synonym swaps up to two dictionary words for synonyms
func (e *Engine) Synonym(content string) string {
	syn := e.lex.Generation.Synonyms
	var present []string
	for word := range syn {
		if textutil.HasWord(content, word) {
			present = append(present, word)
		}
	}
	sort.Strings(present)
	for _, word := range e.rand.Sample(present, maxSynonymSwaps) {
		content = textutil.ReplaceFirstWord(content, word, e.rand.Pick(syn[word]))
	}
	return content
}

// Structure flips the opening sentence between question and statement form,
// depending on whether it is tagged as a question
func (e *Engine) Structure(content string) string {
	first, rest := splitFirst(content)
	if first == "" {
		return content
	}
	if patterns.HasTag(first, models.TagQuestion) {
		return join(e.toStatement(first), rest)
	}
	return join(e.toQuestion(first), rest)
}

func (e *Engine) toQuestion(sentence string) string {
	if strings.Contains(sentence, "?") {
		return sentence
	}
	opener := e.rand.Pick(e.lex.Variation.QuestionOpeners)
	return opener + " " + textutil.Decapitalize(textutil.TrimTerminal(sentence)) + "?"
}

func (e *Engine) toStatement(sentence string) string {
	opener := e.rand.Pick(e.lex.Generation.StatementOpeners)
	return opener + " " + textutil.Decapitalize(textutil.TrimTerminal(sentence)) + "."
}

// Tone rewrites content with the tone's replacement table and intro
func (e *Engine) Tone(content string, tone models.Tone) string {
	lexTone := e.lex.Tone(tone)
	keys := make([]string, 0, len(lexTone.Replacements))
	for from := range lexTone.Replacements {
		keys = append(keys, from)
	}
	sort.Strings(keys)
	for _, from := range keys {
		content = textutil.ReplaceWord(content, from, lexTone.Replacements[from])
	}
	if intro := e.rand.Pick(lexTone.Intros); intro != "" {
		content = intro + " " + textutil.Decapitalize(content)
	}
	return content
}

// Niche prepends a framing clause for the niche
func (e *Engine) Niche(content string, niche models.Niche) string {
	framing := e.rand.Pick(e.lex.Niche(niche).Framing)
	if framing == "" {
		return content
	}
	return framing + " " + content
}

// Length shortens content with more than three sentences to its three
// shortest, in order, and lengthens anything else with an elaboration
func (e *Engine) Length(content string) string {
	sentences := textutil.SplitSentences(content)
	if len(sentences) <= shortenSentences {
		return strings.TrimSpace(content) + " " + e.rand.Pick(e.lex.Variation.Elaborations)
	}

	idx := make([]int, len(sentences))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool { return len(sentences[idx[a]]) < len(sentences[idx[b]]) })
	keep := idx[:shortenSentences]
	sort.Ints(keep)

	out := make([]string, len(keep))
	for i, k := range keep {
		out[i] = sentences[k]
	}
	return strings.Join(out, " ")
}

// Hook rewrites the opening sentence with one of five techniques
func (e *Engine) Hook(content string) string {
	first, rest := splitFirst(content)
	if first == "" {
		return content
	}
	v := e.lex.Variation
	switch e.rand.IntN(5) {
	case 0:
		first = e.rand.Pick(e.lex.Generation.QuestionOpeners) + " " + first
	case 1:
		first = prefix(e.rand.Pick(v.NumberFrames), first)
	case 2:
		first = prefix(e.rand.Pick(v.CuriosityGaps), first)
	case 3:
		first = e.intensify(first)
	default:
		first = prefix(e.rand.Pick(v.Controversial), first)
	}
	return join(first, rest)
}

// CTA strips weak calls to action and appends a strong one
func (e *Engine) CTA(content string) string {
	for _, weak := range e.lex.Variation.WeakCTAs {
		content = textutil.StripPhrase(content, weak)
	}
	content = tidy(content)
	cta := e.rand.Pick(e.lex.Variation.StrongCTAs)
	if content == "" {
		return cta
	}
	return content + " " + cta
}

// Emotional intensifies mild words, turns periods into exclamations and
// opens with an emotional word
func (e *Engine) Emotional(content string) string {
	content = e.intensify(content)
	content = periodEnd.ReplaceAllString(content, "!$1")

	pool := e.lex.Variation.EmotionPool
	categories := make([]string, 0, len(pool))
	for c := range pool {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	if word := e.rand.Pick(pool[e.rand.Pick(categories)]); word != "" {
		content = textutil.Capitalize(word) + "! " + content
	}
	return content
}

func (e *Engine) intensify(content string) string {
	table := e.lex.Variation.Intensity
	keys := make([]string, 0, len(table))
	for mild := range table {
		keys = append(keys, mild)
	}
	sort.Strings(keys)
	for _, mild := range keys {
		content = textutil.ReplaceWord(content, mild, table[mild])
	}
	return content
}

// Question converts declarative sentences to questions with even odds,
// always converting at least one
func (e *Engine) Question(content string) string {
	sentences := textutil.SplitSentences(content)
	converted := false
	firstDeclarative := -1
	for i, s := range sentences {
		if strings.HasSuffix(s, "?") {
			continue
		}
		if firstDeclarative < 0 {
			firstDeclarative = i
		}
		if e.rand.Chance(questionChance) {
			sentences[i] = e.toQuestion(s)
			converted = true
		}
	}
	if !converted && firstDeclarative >= 0 {
		sentences[firstDeclarative] = e.toQuestion(sentences[firstDeclarative])
	}
	return strings.Join(sentences, " ")
}

// Storytelling wraps the hook in a narrative opener and connector
func (e *Engine) Storytelling(content string) string {
	first, rest := splitFirst(content)
	v := e.lex.Variation
	return join(e.rand.Pick(v.NarrativeOpeners)+" "+e.rand.Pick(v.Connectors)+" "+first, rest)
}

// restructure renders content in the order of a formula's structure
func (e *Engine) restructure(content string, structure []string) string {
	v := e.lex.Variation
	for _, element := range structure {
		switch element {
		case "question":
			if first, rest := splitFirst(content); first != "" {
				content = join(e.toQuestion(first), rest)
			}
		case "number":
			if !hasDigit(content) {
				content = prefix(e.rand.Pick(v.NumberFrames), content)
			}
		case "emotion":
			content = e.intensify(content)
		case "list":
			if !numbered.MatchString(content) {
				content = numberSentences(content)
			}
		case "story":
			content = e.rand.Pick(v.NarrativeOpeners) + " " + content
		case "cta":
			content = e.CTA(content)
		}
	}
	return content
}

// elements reports which formula structure elements content already shows
func (e *Engine) elements(content string) map[string]bool {
	lower := strings.ToLower(content)
	emotional := textutil.CountWords(content, e.lex.Scoring.EmotionalWords)+
		textutil.CountWords(content, e.lex.Scoring.PowerWords) > 0
	return map[string]bool{
		"question": strings.Contains(content, "?"),
		"number":   hasDigit(content),
		"emotion":  emotional,
		"list":     numbered.MatchString(content),
		"story":    containsAny(lower, e.lex.Variation.StoryMarkers),
		"cta":      containsAny(lower, e.lex.Variation.CTAMarkers),
	}
}

func numberSentences(content string) string {
	sentences := textutil.SplitSentences(content)
	if len(sentences) < 2 {
		return content
	}
	lines := make([]string, len(sentences))
	for i, s := range sentences {
		lines[i] = fmt.Sprintf("%d. %s", i+1, s)
	}
	return strings.Join(lines, "\n")
}

func splitFirst(content string) (string, string) {
	sentences := textutil.SplitSentences(content)
	if len(sentences) == 0 {
		return "", ""
	}
	return sentences[0], strings.Join(sentences[1:], " ")
}

func join(first, rest string) string {
	if rest == "" {
		return first
	}
	return first + " " + rest
}

func prefix(p, s string) string {
	if p == "" {
		return s
	}
	return p + " " + textutil.Decapitalize(s)
}

func tidy(s string) string {
	s = spaces.ReplaceAllString(s, " ")
	s = danglingEnd.ReplaceAllString(s, "$1")
	return strings.TrimSpace(s)
}

func hasDigit(s string) bool {
	return strings.IndexFunc(s, unicode.IsDigit) >= 0
}

func containsAny(s string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
