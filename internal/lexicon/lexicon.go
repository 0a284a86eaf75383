// Package lexicon loads the word lists, niche benchmarks and template library
// shared by the scoring model, the template generator and the variation engine.
//
// The default tables ship embedded as lexicon.yaml. A replacement file can be
// supplied with LoadFile to extend vocabulary without rebuilding.
package lexicon

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/hooklab/content-intelligence-service/internal/models"
)

//go:embed lexicon.yaml
var defaultAsset []byte

// allNiches is the template shorthand for "every known niche"
const allNiches models.Niche = "all"

// Benchmark holds the engagement profile of a niche
type Benchmark struct {
	AvgEngagement          float64 `yaml:"avg_engagement"`
	TopPerformerEngagement float64 `yaml:"top_performer_engagement"`
	OptimalMin             int     `yaml:"optimal_min"`
	OptimalMax             int     `yaml:"optimal_max"`
}

// Niche holds everything keyed by a single niche
type Niche struct {
	Benchmark  Benchmark                       `yaml:"benchmark"`
	Vocabulary map[string][]string             `yaml:"vocabulary"`
	Fillers    map[models.SectionKind][]string `yaml:"fillers"`
	CTAs       []string                        `yaml:"ctas"`
	Hashtags   []string                        `yaml:"hashtags"`
	Themes     []string                        `yaml:"themes"`
	Framing    []string                        `yaml:"framing"`
}

// Scoring holds the word lists and constants used by the scoring model
type Scoring struct {
	PowerWords      []string           `yaml:"power_words"`
	EmotionalWords  []string           `yaml:"emotional_words"`
	FirstPerson     []string           `yaml:"first_person"`
	Weights         map[string]float64 `yaml:"weights"`
	Correlations    map[string]float64 `yaml:"correlations"`
	PeakHours       map[string][]int   `yaml:"peak_hours"`
	CandidateHours  map[string][]int   `yaml:"candidate_hours"`
	PositiveNote    string             `yaml:"positive_note"`
	Recommendations map[string]string  `yaml:"recommendations"`
}

// Generation holds the template library and its supporting vocabulary
type Generation struct {
	GeneralHashtags  []string                        `yaml:"general_hashtags"`
	DefaultFillers   map[models.SectionKind][]string `yaml:"default_fillers"`
	Intensifiers     map[models.Tone][]string        `yaml:"intensifiers"`
	Templates        []models.Template               `yaml:"templates"`
	Synonyms         map[string][]string             `yaml:"synonyms"`
	StatementOpeners []string                        `yaml:"statement_openers"`
	QuestionOpeners  []string                        `yaml:"question_openers"`
	DayTone          map[string]models.Tone          `yaml:"day_tone"`
	DayLength        map[string]models.ContentLength `yaml:"day_length"`
	PostingTimes     map[string]string               `yaml:"posting_times"`
}

// Tone is the lexicon used to shift text toward a tone
type Tone struct {
	Intros       []string          `yaml:"intros"`
	Replacements map[string]string `yaml:"replacements"`
}

// Formula is a named viral structure with its expected elements and vocabulary
type Formula struct {
	ID        string   `yaml:"id" json:"id"`
	Name      string   `yaml:"name" json:"name"`
	Structure []string `yaml:"structure" json:"structure"`
	Variables []string `yaml:"variables" json:"variables"`
}

// Variation holds the operator pools of the variation engine
type Variation struct {
	Elaborations     []string            `yaml:"elaborations"`
	NumberFrames     []string            `yaml:"number_frames"`
	CuriosityGaps    []string            `yaml:"curiosity_gaps"`
	Controversial    []string            `yaml:"controversial"`
	Intensity        map[string]string   `yaml:"intensity"`
	EmotionPool      map[string][]string `yaml:"emotion_pool"`
	WeakCTAs         []string            `yaml:"weak_ctas"`
	StrongCTAs       []string            `yaml:"strong_ctas"`
	QuestionOpeners  []string            `yaml:"question_openers"`
	NarrativeOpeners []string            `yaml:"narrative_openers"`
	Connectors       []string            `yaml:"connectors"`
	StoryMarkers     []string            `yaml:"story_markers"`
	CTAMarkers       []string            `yaml:"cta_markers"`
	Substitutions    map[string]string   `yaml:"substitutions"`
	Formulas         []Formula           `yaml:"formulas"`
}

// Lexicon is the full set of data assets
type Lexicon struct {
	Scoring    Scoring                `yaml:"scoring"`
	Niches     map[models.Niche]Niche `yaml:"niches"`
	Generation Generation             `yaml:"generation"`
	Tones      map[models.Tone]Tone   `yaml:"tones"`
	Variation  Variation              `yaml:"variation"`
}

var (
	defaultOnce sync.Once
	defaultLex  *Lexicon
)

// Default returns the embedded lexicon. It panics if the embedded asset is
// invalid, which can only happen with a broken build.
func Default() *Lexicon {
	defaultOnce.Do(func() {
		lex, err := Parse(defaultAsset)
		if err != nil {
			panic(fmt.Sprintf("lexicon: embedded asset is invalid: %v", err))
		}
		defaultLex = lex
	})
	return defaultLex
}

// LoadFile reads a lexicon from path
func LoadFile(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes and validates a lexicon document
func Parse(data []byte) (*Lexicon, error) {
	var lex Lexicon
	if err := yaml.Unmarshal(data, &lex); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon: %w", err)
	}
	lex.expandTemplateNiches()
	if err := lex.validate(); err != nil {
		return nil, err
	}
	return &lex, nil
}

func (l *Lexicon) expandTemplateNiches() {
	for i, t := range l.Generation.Templates {
		for _, n := range t.ApplicableNiches {
			if n == allNiches {
				l.Generation.Templates[i].ApplicableNiches = append([]models.Niche(nil), models.AllNiches...)
				break
			}
		}
	}
}

func (l *Lexicon) validate() error {
	if _, ok := l.Niches[models.DefaultNiche]; !ok {
		return fmt.Errorf("lexicon is missing the default niche %q", models.DefaultNiche)
	}
	for name, n := range l.Niches {
		if len(n.Hashtags) < 6 {
			return fmt.Errorf("niche %q needs at least 6 hashtags, has %d", name, len(n.Hashtags))
		}
		if n.Benchmark.OptimalMin <= 0 || n.Benchmark.OptimalMax < n.Benchmark.OptimalMin {
			return fmt.Errorf("niche %q has an invalid optimal word range", name)
		}
	}
	if len(l.Generation.GeneralHashtags) < 2 {
		return fmt.Errorf("lexicon needs at least 2 general hashtags")
	}
	if len(l.Generation.Templates) == 0 {
		return fmt.Errorf("lexicon has no templates")
	}
	return nil
}

// Niche returns the tables for n, falling back to the default niche
func (l *Lexicon) Niche(n models.Niche) Niche {
	if entry, ok := l.Niches[n]; ok {
		return entry
	}
	return l.Niches[models.DefaultNiche]
}

// Benchmark returns the engagement profile for n
func (l *Lexicon) Benchmark(n models.Niche) Benchmark {
	return l.Niche(n).Benchmark
}

// Tone returns the tone lexicon for t, falling back to casual
func (l *Lexicon) Tone(t models.Tone) Tone {
	if entry, ok := l.Tones[t]; ok {
		return entry
	}
	return l.Tones[models.ToneCasual]
}

// Fillers returns niche-specific filler sentences for a section, or the
// default pool when the niche has none
func (l *Lexicon) Fillers(n models.Niche, kind models.SectionKind) []string {
	if fillers := l.Niche(n).Fillers[kind]; len(fillers) > 0 {
		return fillers
	}
	return l.Generation.DefaultFillers[kind]
}

// Formula looks up a viral formula by id
func (l *Lexicon) Formula(id string) (Formula, bool) {
	for _, f := range l.Variation.Formulas {
		if f.ID == id {
			return f, true
		}
	}
	return Formula{}, false
}

// DayKey is the lowercase weekday name used to key per-day tables
func DayKey(d time.Weekday) string {
	return strings.ToLower(d.String())
}
