// Package generator renders new hooks and captions from the template library
// and niche vocabulary, and ranks them with the scoring model.
package generator

import (
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/hooklab/content-intelligence-service/internal/corpus"
	"github.com/hooklab/content-intelligence-service/internal/lexicon"
	"github.com/hooklab/content-intelligence-service/internal/logging"
	"github.com/hooklab/content-intelligence-service/internal/metrics"
	"github.com/hooklab/content-intelligence-service/internal/models"
	"github.com/hooklab/content-intelligence-service/internal/rng"
	"github.com/hooklab/content-intelligence-service/internal/scoring"
	"github.com/hooklab/content-intelligence-service/internal/textutil"
)

const (
	maxTemplatesPerRequest = 8
	nicheHashtagCount      = 6
	generalHashtagCount    = 2
	intensifierChance      = 0.5
	maxLibrarySize         = 20
)

var placeholder = regexp.MustCompile(`\[([a-z]+)\]`)

// Request describes one generation call
type Request struct {
	Niche           models.Niche         `json:"niche" validate:"required"`
	Tone            models.Tone          `json:"tone,omitempty"`
	Length          models.ContentLength `json:"length,omitempty"`
	Count           int                  `json:"count" validate:"min=0,max=8"`
	IncludeHashtags bool                 `json:"includeHashtags"`
	Theme           string               `json:"theme,omitempty"`
}

// TemplateGenerator produces scored candidates from the template library. The
// library and the reference corpus change only through TrainOnViralData.
type TemplateGenerator struct {
	lex    *lexicon.Lexicon
	model  *scoring.Model
	corpus *corpus.Store
	rand   *rng.Source
	now    func() time.Time
	log    zerolog.Logger

	mu        sync.RWMutex
	library   []models.Template
	reference []models.Post
	refIDs    map[string]struct{}
}

// Option configures a TemplateGenerator
type Option func(*TemplateGenerator)

// WithCorpus gives the generator access to corpus hooks for inspiration
func WithCorpus(c *corpus.Store) Option {
	return func(g *TemplateGenerator) { g.corpus = c }
}

// WithRand replaces the entropy-seeded random source
func WithRand(r *rng.Source) Option {
	return func(g *TemplateGenerator) { g.rand = r }
}

// WithClock replaces time.Now for calendar dates
func WithClock(now func() time.Time) Option {
	return func(g *TemplateGenerator) { g.now = now }
}

// New creates a generator seeded with the lexicon's template library
func New(lex *lexicon.Lexicon, model *scoring.Model, opts ...Option) *TemplateGenerator {
	g := &TemplateGenerator{
		lex:     lex,
		model:   model,
		rand:    rng.New(0),
		now:     time.Now,
		log:     logging.With().Str("component", "generator").Logger(),
		library: append([]models.Template(nil), lex.Generation.Templates...),
		refIDs:  make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(g)
	}
	sortByBaseline(g.library)
	return g
}

// Templates returns a copy of the current library, best baseline first
func (g *TemplateGenerator) Templates() []models.Template {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return append([]models.Template(nil), g.library...)
}

// GenerateContent renders up to req.Count candidates from the best templates
// for the niche, sorted by predicted viral score descending
func (g *TemplateGenerator) GenerateContent(req Request) []models.GeneratedCandidate {
	niche := models.ParseNiche(string(req.Niche))
	tone := models.ParseTone(string(req.Tone))
	length := models.ParseLength(string(req.Length))

	templates := g.applicable(niche)
	if req.Count < len(templates) {
		templates = templates[:max(req.Count, 0)]
	}

	out := make([]models.GeneratedCandidate, 0, len(templates))
	for _, t := range templates {
		out = append(out, g.render(t, niche, tone, length, req.Theme, req.IncludeHashtags))
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].PredictedViralScore > out[j].PredictedViralScore
	})

	metrics.CandidatesGenerated.WithLabelValues("template").Add(float64(len(out)))
	return out
}

// applicable returns the top templates for niche by baseline
func (g *TemplateGenerator) applicable(niche models.Niche) []models.Template {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var out []models.Template
	for _, t := range g.library {
		if t.AppliesTo(niche) {
			out = append(out, t)
			if len(out) == maxTemplatesPerRequest {
				break
			}
		}
	}
	return out
}

func (g *TemplateGenerator) render(t models.Template, niche models.Niche, tone models.Tone, length models.ContentLength, theme string, hashtags bool) models.GeneratedCandidate {
	hook := g.fill(t.PatternString, niche, theme)
	if g.rand.Chance(intensifierChance) {
		if word := g.rand.Pick(g.lex.Generation.Intensifiers[tone]); word != "" {
			hook = textutil.Capitalize(word) + ": " + hook
		}
	}

	sections := g.sections(t, niche, length, theme, hook)
	texts := make([]string, len(sections))
	for i, s := range sections {
		texts[i] = s.Text
	}
	caption := strings.Join(texts, "\n\n")

	var tags []string
	if hashtags {
		tags = append(g.rand.Sample(g.lex.Niche(niche).Hashtags, nicheHashtagCount),
			g.rand.Sample(g.lex.Generation.GeneralHashtags, generalHashtagCount)...)
	}

	scored := caption
	if len(tags) > 0 {
		scored += "\n\n" + strings.Join(tags, " ")
	}
	prediction := g.model.Predict(scored, niche, scoring.PredictOptions{})

	return models.GeneratedCandidate{
		Hook:                hook,
		Caption:             caption,
		Hashtags:            tags,
		Sections:            sections,
		PredictedViralScore: prediction.ViralProbability,
		PredictedEngagement: prediction.ExpectedEngagementRate,
		Source:              t.ID,
		Confidence:          prediction.Confidence,
	}
}

// sections renders the template structure. Short captions keep one body
// section; long captions gain an extra insight.
func (g *TemplateGenerator) sections(t models.Template, niche models.Niche, length models.ContentLength, theme, hook string) []models.RenderedSection {
	var out []models.RenderedSection
	body := 0
	for _, kind := range t.StructureSections {
		switch kind {
		case models.SectionHook:
			out = append(out, models.RenderedSection{Kind: kind, Text: hook})
		case models.SectionCTA:
			if length == models.LengthLong {
				if extra := g.filler(niche, models.SectionInsight, theme); extra != "" {
					out = append(out, models.RenderedSection{Kind: models.SectionInsight, Text: extra})
				}
			}
			out = append(out, models.RenderedSection{Kind: kind, Text: g.rand.Pick(g.lex.Niche(niche).CTAs)})
		default:
			if length == models.LengthShort && body > 0 {
				continue
			}
			if text := g.filler(niche, kind, theme); text != "" {
				out = append(out, models.RenderedSection{Kind: kind, Text: text})
				body++
			}
		}
	}
	return out
}

func (g *TemplateGenerator) filler(niche models.Niche, kind models.SectionKind, theme string) string {
	text := g.rand.Pick(g.lex.Fillers(niche, kind))
	if text == "" {
		return ""
	}
	return textutil.Capitalize(g.fill(text, niche, theme))
}

// fill replaces bracket placeholders with niche vocabulary. A theme, when
// given, stands in for the topic.
func (g *TemplateGenerator) fill(pattern string, niche models.Niche, theme string) string {
	vocab := g.lex.Niche(niche).Vocabulary
	fallback := g.lex.Niche(models.DefaultNiche).Vocabulary
	return placeholder.ReplaceAllStringFunc(pattern, func(m string) string {
		key := placeholder.FindStringSubmatch(m)[1]
		if key == "topic" && theme != "" {
			return strings.ToLower(theme)
		}
		if word := g.rand.Pick(vocab[key]); word != "" {
			return word
		}
		if word := g.rand.Pick(fallback[key]); word != "" {
			return word
		}
		return key
	})
}

func sortByBaseline(templates []models.Template) {
	sort.SliceStable(templates, func(i, j int) bool {
		return templates[i].BaselineEngagement > templates[j].BaselineEngagement
	})
}
