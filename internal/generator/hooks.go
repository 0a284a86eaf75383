package generator

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/hooklab/content-intelligence-service/internal/metrics"
	"github.com/hooklab/content-intelligence-service/internal/models"
	"github.com/hooklab/content-intelligence-service/internal/patterns"
	"github.com/hooklab/content-intelligence-service/internal/scoring"
	"github.com/hooklab/content-intelligence-service/internal/textutil"
)

// Hook variation techniques, applied in this order
const (
	TechniqueSynonym = "synonym"
	TechniqueFrame   = "frame"
	TechniqueRemix   = "remix"
)

const (
	minRemixWordLen   = 4
	attemptsPerResult = 5
)

var techniques = []string{TechniqueSynonym, TechniqueFrame, TechniqueRemix}

// HookVariation is one rewritten hook
type HookVariation struct {
	Hook                string  `json:"hook"`
	Technique           string  `json:"technique"`
	PredictedViralScore float64 `json:"predictedViralScore"`
}

// GenerateHookVariations produces up to count distinct rewrites of hook by
// cycling synonym swap, structural framing and template remixing
func (g *TemplateGenerator) GenerateHookVariations(hook string, niche models.Niche, count int) []HookVariation {
	hook = strings.TrimSpace(hook)
	out := []HookVariation{}
	if hook == "" || count <= 0 {
		return out
	}
	niche = models.ParseNiche(string(niche))

	seen := map[string]struct{}{strings.ToLower(hook): {}}
	for i := 0; len(out) < count && i < count*attemptsPerResult; i++ {
		technique := techniques[i%len(techniques)]
		var variant string
		switch technique {
		case TechniqueSynonym:
			variant = g.synonymSwap(hook)
		case TechniqueFrame:
			variant = g.frame(hook)
		case TechniqueRemix:
			variant = g.remix(hook)
		}
		if variant == "" {
			continue
		}
		key := strings.ToLower(variant)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		out = append(out, HookVariation{
			Hook:                variant,
			Technique:           technique,
			PredictedViralScore: g.model.Predict(variant, niche, scoring.PredictOptions{}).ViralProbability,
		})
	}

	metrics.CandidatesGenerated.WithLabelValues("hook").Add(float64(len(out)))
	return out
}

// synonymSwap replaces one dictionary word of hook with a random synonym
func (g *TemplateGenerator) synonymSwap(hook string) string {
	var present []string
	for word := range g.lex.Generation.Synonyms {
		if textutil.HasWord(hook, word) {
			present = append(present, word)
		}
	}
	if len(present) == 0 {
		return ""
	}
	sort.Strings(present)
	word := present[g.rand.IntN(len(present))]
	return textutil.ReplaceFirstWord(hook, word, g.rand.Pick(g.lex.Generation.Synonyms[word]))
}

// frame prefixes a statement opener to questions and a question opener to
// everything else
func (g *TemplateGenerator) frame(hook string) string {
	openers := g.lex.Generation.QuestionOpeners
	if patterns.HasTag(hook, models.TagQuestion) {
		openers = g.lex.Generation.StatementOpeners
	}
	opener := g.rand.Pick(openers)
	if opener == "" {
		return ""
	}
	return opener + " " + hook
}

// remix swaps one long word of a random template example for the most
// salient word of hook
func (g *TemplateGenerator) remix(hook string) string {
	salient := salientWord(hook)
	if salient == "" {
		return ""
	}

	library := g.Templates()
	t := library[g.rand.IntN(len(library))]
	example := g.rand.Pick(t.Examples)
	if example == "" {
		return ""
	}

	var candidates []string
	for _, w := range strings.Fields(example) {
		w = strings.Trim(w, ".,!?:;()")
		if utf8.RuneCountInString(w) >= minRemixWordLen && !strings.EqualFold(w, salient) {
			candidates = append(candidates, w)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	return textutil.ReplaceFirstWord(example, g.rand.Pick(candidates), salient)
}

// salientWord is the longest word of at least four letters, first wins ties
func salientWord(s string) string {
	best := ""
	for _, w := range textutil.Words(s) {
		if utf8.RuneCountInString(w) >= minRemixWordLen && utf8.RuneCountInString(w) > utf8.RuneCountInString(best) {
			best = w
		}
	}
	return best
}
