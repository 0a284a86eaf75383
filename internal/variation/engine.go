// Package variation rewrites existing content with text operators and ranks
// the variants with the scoring model. Operators are plain functions of their
// input text plus the shared random source.
package variation

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hooklab/content-intelligence-service/internal/lexicon"
	"github.com/hooklab/content-intelligence-service/internal/metrics"
	"github.com/hooklab/content-intelligence-service/internal/models"
	"github.com/hooklab/content-intelligence-service/internal/rng"
	"github.com/hooklab/content-intelligence-service/internal/scoring"
	"github.com/hooklab/content-intelligence-service/internal/textutil"
)

// Type names a variation operator
type Type string

const (
	TypeSynonym      Type = "synonym"
	TypeStructure    Type = "structure"
	TypeTone         Type = "tone"
	TypeNiche        Type = "niche"
	TypeLength       Type = "length"
	TypeHook         Type = "hook"
	TypeCTA          Type = "cta"
	TypeEmotional    Type = "emotional"
	TypeQuestion     Type = "question"
	TypeStorytelling Type = "storytelling"
)

// AllTypes lists every operator
var AllTypes = []Type{
	TypeSynonym, TypeStructure, TypeTone, TypeNiche, TypeLength,
	TypeHook, TypeCTA, TypeEmotional, TypeQuestion, TypeStorytelling,
}

// confidence is the fixed trust placed in each operator's output
var confidence = map[Type]float64{
	TypeLength:       90,
	TypeSynonym:      85,
	TypeCTA:          85,
	TypeTone:         80,
	TypeNiche:        80,
	TypeStructure:    75,
	TypeHook:         70,
	TypeEmotional:    70,
	TypeQuestion:     65,
	TypeStorytelling: 60,
}

// batchMix is the operator mix used for winners
var batchMix = []Type{TypeHook, TypeEmotional, TypeCTA, TypeLength, TypeStorytelling}

var tones = []models.Tone{models.ToneProfessional, models.ToneCasual, models.ToneMotivational}

// Valid reports whether t is a known operator
func (t Type) Valid() bool {
	_, ok := confidence[t]
	return ok
}

// Request describes a GenerateVariations call. Empty Types means every
// operator; an empty Tone picks one at random per variant.
type Request struct {
	Content string       `json:"content" validate:"required"`
	Types   []Type       `json:"types,omitempty"`
	Count   int          `json:"count" validate:"min=0,max=50"`
	Niche   models.Niche `json:"niche,omitempty"`
	Tone    models.Tone  `json:"tone,omitempty"`
}

// Variation is one scored variant
type Variation struct {
	Content             string  `json:"content"`
	VariationType       Type    `json:"variationType"`
	PredictedViralScore float64 `json:"predictedViralScore"`
	PredictedEngagement float64 `json:"predictedEngagement"`
	Confidence          float64 `json:"confidence"`
}

// Engine applies operators and scores their output
type Engine struct {
	lex   *lexicon.Lexicon
	model *scoring.Model
	rand  *rng.Source
}

// Option configures an Engine
type Option func(*Engine)

// WithRand replaces the entropy-seeded random source
func WithRand(r *rng.Source) Option {
	return func(e *Engine) { e.rand = r }
}

// New creates an engine that scores with model and reads model's lexicon
func New(model *scoring.Model, opts ...Option) *Engine {
	e := &Engine{
		lex:   model.Lexicon(),
		model: model,
		rand:  rng.New(0),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Apply runs a single operator
func (e *Engine) Apply(t Type, content string, niche models.Niche, tone models.Tone) string {
	switch t {
	case TypeSynonym:
		return e.Synonym(content)
	case TypeStructure:
		return e.Structure(content)
	case TypeTone:
		if tone == "" {
			tone = tones[e.rand.IntN(len(tones))]
		}
		return e.Tone(content, tone)
	case TypeNiche:
		return e.Niche(content, niche)
	case TypeLength:
		return e.Length(content)
	case TypeHook:
		return e.Hook(content)
	case TypeCTA:
		return e.CTA(content)
	case TypeEmotional:
		return e.Emotional(content)
	case TypeQuestion:
		return e.Question(content)
	case TypeStorytelling:
		return e.Storytelling(content)
	default:
		return content
	}
}

// GenerateVariations round-robins the requested operators to produce
// req.Count variants, best predicted score first. Unknown operators are
// ignored.
func (e *Engine) GenerateVariations(req Request) []Variation {
	niche := models.ParseNiche(string(req.Niche))
	var types []Type
	for _, t := range req.Types {
		if t.Valid() {
			types = append(types, t)
		}
	}
	if len(types) == 0 {
		types = AllTypes
	}

	out := make([]Variation, 0, max(req.Count, 0))
	for i := 0; i < req.Count; i++ {
		t := types[i%len(types)]
		content := e.Apply(t, req.Content, niche, req.Tone)
		out = append(out, e.score(content, t, niche))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PredictedViralScore > out[j].PredictedViralScore
	})

	metrics.CandidatesGenerated.WithLabelValues("variation").Add(float64(len(out)))
	return out
}

func (e *Engine) score(content string, t Type, niche models.Niche) Variation {
	p := e.model.Predict(content, niche, scoring.PredictOptions{})
	return Variation{
		Content:             content,
		VariationType:       t,
		PredictedViralScore: p.ViralProbability,
		PredictedEngagement: p.ExpectedEngagementRate,
		Confidence:          confidence[t],
	}
}

// NicheAdaptation is content reframed for one niche
type NicheAdaptation struct {
	Niche               models.Niche `json:"niche"`
	Content             string       `json:"content"`
	Rationale           string       `json:"rationale"`
	PredictedViralScore float64      `json:"predictedViralScore"`
}

// AdaptToNiches reframes content once per niche
func (e *Engine) AdaptToNiches(content string, niches []models.Niche) []NicheAdaptation {
	out := make([]NicheAdaptation, 0, len(niches))
	for _, n := range niches {
		n = models.ParseNiche(string(n))
		adapted := e.Niche(content, n)
		out = append(out, NicheAdaptation{
			Niche:               n,
			Content:             adapted,
			Rationale:           fmt.Sprintf("Reframed with %s framing so the opening speaks directly to the %s audience.", n, n),
			PredictedViralScore: e.model.Predict(adapted, n, scoring.PredictOptions{}).ViralProbability,
		})
	}
	return out
}

// FormulaVariation is content rendered through one viral formula
type FormulaVariation struct {
	FormulaID           string  `json:"formulaId"`
	Name                string  `json:"name"`
	Applicability       int     `json:"applicability"`
	Content             string  `json:"content"`
	PredictedViralScore float64 `json:"predictedViralScore"`
}

// ApplyViralFormulas renders content through each formula, most applicable
// first. Applicability counts the formula's structure elements already
// present plus its vocabulary words found in content. An empty formulaIDs
// means every formula; unknown ids are skipped.
func (e *Engine) ApplyViralFormulas(content string, formulaIDs []string) []FormulaVariation {
	formulas := e.lex.Variation.Formulas
	if len(formulaIDs) > 0 {
		formulas = nil
		for _, id := range formulaIDs {
			if f, ok := e.lex.Formula(id); ok {
				formulas = append(formulas, f)
			}
		}
	}

	present := e.elements(content)
	out := make([]FormulaVariation, 0, len(formulas))
	for _, f := range formulas {
		applicability := textutil.CountWords(content, f.Variables)
		for _, element := range f.Structure {
			if present[element] {
				applicability++
			}
		}
		out = append(out, FormulaVariation{FormulaID: f.ID, Name: f.Name, Applicability: applicability})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Applicability > out[j].Applicability })

	for i := range out {
		f, _ := e.lex.Formula(out[i].FormulaID)
		out[i].Content = e.restructure(content, f.Structure)
		out[i].PredictedViralScore = e.model.Predict(out[i].Content, models.DefaultNiche, scoring.PredictOptions{}).ViralProbability
	}
	return out
}

// ABTest is a labelled pair of variants
type ABTest struct {
	Name           string  `json:"name"`
	Hypothesis     string  `json:"hypothesis"`
	VariantA       string  `json:"variantA"`
	VariantB       string  `json:"variantB"`
	ScoreA         float64 `json:"scoreA"`
	ScoreB         float64 `json:"scoreB"`
	ExpectedWinner string  `json:"expectedWinner"`
}

// GenerateABTestVariations builds the hook style, emotional intensity and
// length tests. Variant A is always the expected winner.
func (e *Engine) GenerateABTestVariations(content string) []ABTest {
	first, rest := splitFirst(content)
	if first == "" {
		first = content
	}

	tests := []ABTest{
		{
			Name:       "Hook style",
			Hypothesis: "A question hook earns more engagement than a statement hook.",
			VariantA:   join(e.toQuestion(first), rest),
			VariantB:   join(e.toStatement(first), rest),
		},
		{
			Name:       "Emotional intensity",
			Hypothesis: "Emotionally charged wording outperforms neutral wording.",
			VariantA:   e.Emotional(content),
			VariantB:   content,
		},
		{
			Name:       "Length",
			Hypothesis: "Concise content holds attention better than longer content.",
			VariantA:   e.concise(content),
			VariantB:   strings.TrimSpace(content) + " " + e.rand.Pick(e.lex.Variation.Elaborations),
		},
	}
	for i := range tests {
		tests[i].ScoreA = e.model.Predict(tests[i].VariantA, models.DefaultNiche, scoring.PredictOptions{}).ViralProbability
		tests[i].ScoreB = e.model.Predict(tests[i].VariantB, models.DefaultNiche, scoring.PredictOptions{}).ViralProbability
		tests[i].ExpectedWinner = "A"
	}
	return tests
}

// concise shortens content, leaving content with few sentences unchanged
func (e *Engine) concise(content string) string {
	if len(textutil.SplitSentences(content)) <= shortenSentences {
		return strings.TrimSpace(content)
	}
	return e.Length(content)
}

// BatchResult holds the variants generated for one winning post
type BatchResult struct {
	PostID     string      `json:"postId"`
	Original   string      `json:"original"`
	Variations []Variation `json:"variations"`
	Best       *Variation  `json:"best,omitempty"`
}

// BatchGenerateFromWinners generates perPost variants for each post with a
// fixed operator mix and keeps the best of them
func (e *Engine) BatchGenerateFromWinners(posts []models.Post, perPost int) []BatchResult {
	out := make([]BatchResult, 0, len(posts))
	for _, p := range posts {
		content := p.Caption
		if strings.TrimSpace(content) == "" {
			content = p.Hook
		}
		variations := e.GenerateVariations(Request{
			Content: content,
			Types:   batchMix,
			Count:   perPost,
			Niche:   models.ParseNiche(p.ContentType),
		})
		result := BatchResult{PostID: p.ID, Original: content, Variations: variations}
		if len(variations) > 0 {
			best := variations[0]
			result.Best = &best
		}
		out = append(out, result)
	}
	return out
}
