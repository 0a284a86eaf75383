// Package scoring implements the heuristic viral-probability model.
//
// Predict combines six keyword and structure factors (seven when a schedule
// time is given) into a weighted score, then derives engagement, view, like
// and comment estimates from per-niche benchmarks. The constants are fixed
// heuristics, not fitted values.
package scoring

import (
	"math"
	"sync"
	"time"

	"github.com/hooklab/content-intelligence-service/internal/lexicon"
	"github.com/hooklab/content-intelligence-service/internal/logging"
	"github.com/hooklab/content-intelligence-service/internal/models"
	"github.com/hooklab/content-intelligence-service/internal/textutil"
)

const (
	// DefaultFollowerCount is assumed when a prediction has no follower count
	DefaultFollowerCount = 10000

	// TrainingThreshold is the reference corpus size at which correlation
	// weights replace the default weights
	TrainingThreshold = 100

	highPerformerScore = 70.0
	minVocabWordLen    = 3

	boostMultiplier   = 1.2
	penaltyMultiplier = 0.8
	boostFactorCount  = 4
	penaltyCount      = 2

	reachRate        = 0.1
	viralBoostAbove  = 70.0
	commentLikeRatio = 0.05

	confidenceBase    = 70.0
	confidenceMin     = 30.0
	confidenceMax     = 95.0
	lowVarianceLimit  = 200.0
	extremeLow        = 20.0
	extremeHigh       = 80.0
	recommendBelow    = 50.0
	positiveNoteAbove = 75.0
	largeCorpus       = 1000
	mediumCorpus      = 500
	smallCorpus       = 100
)

// PredictOptions are the optional inputs of a prediction
type PredictOptions struct {
	ScheduledTime *time.Time
	FollowerCount int
}

// PredictionResult is the output of Predict
type PredictionResult struct {
	ViralProbability       float64        `json:"viralProbability"`
	Factors                []FactorScore  `json:"factors"`
	Metrics                ContentMetrics `json:"metrics"`
	ExpectedEngagementRate float64        `json:"expectedEngagementRate"`
	ExpectedViews          int            `json:"expectedViews"`
	ExpectedLikes          int            `json:"expectedLikes"`
	ExpectedComments       int            `json:"expectedComments"`
	Confidence             float64        `json:"confidence"`
	Recommendations        []string       `json:"recommendations"`
}

// Factor returns the named factor score, if present
func (r PredictionResult) Factor(name string) (FactorScore, bool) {
	for _, f := range r.Factors {
		if f.Name == name {
			return f, true
		}
	}
	return FactorScore{}, false
}

// TrainingSummary reports the outcome of TrainModel
type TrainingSummary struct {
	ReferenceSize  int                `json:"referenceSize"`
	Added          int                `json:"added"`
	WeightsUpdated bool               `json:"weightsUpdated"`
	Weights        map[string]float64 `json:"weights"`
}

// PostSource supplies the live corpus; *corpus.Store implements it
type PostSource interface {
	Posts() []models.Post
}

// Model is the scoring model. Its only mutable state is the reference corpus
// and the factor weights, both replaced by TrainModel.
type Model struct {
	lex    *lexicon.Lexicon
	now    func() time.Time
	source PostSource

	mu         sync.RWMutex
	weights    map[string]float64
	reference  []models.Post
	refIDs     map[string]struct{}
	nicheVocab map[models.Niche]map[string]struct{}
}

// Option configures a Model
type Option func(*Model)

// WithClock replaces time.Now, used for "now" comparisons and posting windows
func WithClock(now func() time.Time) Option {
	return func(m *Model) { m.now = now }
}

// WithSource makes competitor analysis read the live corpus instead of the
// reference corpus
func WithSource(src PostSource) Option {
	return func(m *Model) { m.source = src }
}

// New creates a model with the default weights of lex
func New(lex *lexicon.Lexicon, opts ...Option) *Model {
	m := &Model{
		lex:        lex,
		now:        time.Now,
		weights:    copyWeights(lex.Scoring.Weights),
		refIDs:     make(map[string]struct{}),
		nicheVocab: make(map[models.Niche]map[string]struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Lexicon returns the lexicon the model scores with
func (m *Model) Lexicon() *lexicon.Lexicon {
	return m.lex
}

// ReferenceSize is the number of posts the model has been trained on
func (m *Model) ReferenceSize() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.reference)
}

// Weights returns a copy of the current factor weights
func (m *Model) Weights() map[string]float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return copyWeights(m.weights)
}

// Predict scores text for niche. It never fails: unknown niches use the
// default benchmark and missing options get neutral defaults.
func (m *Model) Predict(text string, niche models.Niche, opts PredictOptions) PredictionResult {
	m.mu.RLock()
	weights := m.weights
	vocab := m.nicheVocab[niche]
	refSize := len(m.reference)
	m.mu.RUnlock()

	bench := m.lex.Benchmark(niche)
	metrics := ExtractMetrics(text)

	raw := map[string]float64{
		FactorHookStrength:       hookStrength(m.lex, text),
		FactorEmotionalImpact:    emotionalImpact(m.lex, text, metrics),
		FactorContentLength:      contentLength(bench, metrics.WordCount),
		FactorHashtagUsage:       hashtagUsage(metrics.HashtagCount),
		FactorEngagementElements: engagementElements(metrics),
		FactorNicheAlignment:     nicheAlignment(text, vocab),
	}
	if opts.ScheduledTime != nil {
		raw[FactorTime] = timeFactor(m.lex, *opts.ScheduledTime)
	}

	var totalWeight float64
	for name := range raw {
		totalWeight += weights[name]
	}

	factors := make([]FactorScore, 0, len(raw))
	var weighted float64
	positives, negatives := 0, 0
	for _, name := range factorOrder {
		score, ok := raw[name]
		if !ok {
			continue
		}
		w := 0.0
		if totalWeight > 0 {
			w = weights[name] / totalWeight
		}
		impact := classifyImpact(score)
		switch impact {
		case ImpactPositive:
			positives++
		case ImpactNegative:
			negatives++
		}
		weighted += score * w
		factors = append(factors, FactorScore{Name: name, Score: score, Weight: w, Impact: impact})
	}

	probability := weighted
	if positives >= boostFactorCount {
		probability *= boostMultiplier
	}
	if negatives >= penaltyCount {
		probability *= penaltyMultiplier
	}
	probability = clamp100(probability)

	result := PredictionResult{
		ViralProbability: probability,
		Factors:          factors,
		Metrics:          metrics,
		Confidence:       confidence(factors, refSize),
		Recommendations:  m.recommendations(factors),
	}
	m.estimate(&result, bench, opts.FollowerCount)
	return result
}

func (m *Model) estimate(r *PredictionResult, bench lexicon.Benchmark, followers int) {
	if followers <= 0 {
		followers = DefaultFollowerCount
	}

	r.ExpectedEngagementRate = math.Min(bench.AvgEngagement*(r.ViralProbability/50), bench.TopPerformerEngagement)

	viralBoost := 1.0
	if r.ViralProbability > viralBoostAbove {
		viralBoost = r.ViralProbability / 100 * 5
	}
	views := float64(followers) * reachRate * viralBoost
	likes := views * r.ExpectedEngagementRate / 100

	r.ExpectedViews = int(math.Round(views))
	r.ExpectedLikes = int(math.Round(likes))
	r.ExpectedComments = int(math.Round(likes * commentLikeRatio))
}

func confidence(factors []FactorScore, refSize int) float64 {
	c := confidenceBase
	switch {
	case refSize > largeCorpus:
		c += 20
	case refSize > mediumCorpus:
		c += 10
	case refSize < smallCorpus:
		c -= 20
	}

	if len(factors) > 0 {
		var sum float64
		for _, f := range factors {
			sum += f.Score
		}
		avg := sum / float64(len(factors))
		var variance float64
		for _, f := range factors {
			variance += (f.Score - avg) * (f.Score - avg)
		}
		variance /= float64(len(factors))
		if variance < lowVarianceLimit {
			c += 10
		}
	}

	for _, f := range factors {
		if f.Score < extremeLow || f.Score > extremeHigh {
			c += 3
		}
	}

	return math.Max(confidenceMin, math.Min(confidenceMax, c))
}

func (m *Model) recommendations(factors []FactorScore) []string {
	var recs []string
	strong := false
	for _, f := range factors {
		if f.Score > positiveNoteAbove {
			strong = true
		}
		if f.Score < recommendBelow {
			if rec, ok := m.lex.Scoring.Recommendations[f.Name]; ok {
				recs = append(recs, rec)
			}
		}
	}
	if strong && m.lex.Scoring.PositiveNote != "" {
		recs = append([]string{m.lex.Scoring.PositiveNote}, recs...)
	}
	return recs
}

// TrainModel merges newPosts into the reference corpus. Once the corpus holds
// TrainingThreshold posts, the correlation table replaces the default weights.
func (m *Model) TrainModel(newPosts []models.Post) TrainingSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	added := 0
	for _, p := range newPosts {
		if _, dup := m.refIDs[p.ID]; dup {
			continue
		}
		m.refIDs[p.ID] = struct{}{}
		m.reference = append(m.reference, p)
		added++
	}
	m.rebuildVocabulary()

	updated := false
	if len(m.reference) >= TrainingThreshold {
		m.weights = normalize(m.lex.Scoring.Correlations)
		updated = true
	}

	logging.Debug().
		Int("added", added).
		Int("reference_size", len(m.reference)).
		Bool("weights_updated", updated).
		Msg("scoring model trained")

	return TrainingSummary{
		ReferenceSize:  len(m.reference),
		Added:          added,
		WeightsUpdated: updated,
		Weights:        copyWeights(m.weights),
	}
}

// rebuildVocabulary caches the vocabulary of high performers per niche.
// Must be called with mu held.
func (m *Model) rebuildVocabulary() {
	vocab := make(map[models.Niche]map[string]struct{})
	for _, p := range m.reference {
		if p.ViralScore <= highPerformerScore {
			continue
		}
		niche := nicheOf(p.ContentType)
		set, ok := vocab[niche]
		if !ok {
			set = make(map[string]struct{})
			vocab[niche] = set
		}
		for w := range textutil.WordSet(p.Caption+" "+p.Hook, minVocabWordLen) {
			set[w] = struct{}{}
		}
	}
	m.nicheVocab = vocab
}

// referenceSnapshot returns a copy of the reference corpus
func (m *Model) referenceSnapshot() []models.Post {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]models.Post, len(m.reference))
	copy(out, m.reference)
	return out
}

func normalize(weights map[string]float64) map[string]float64 {
	var sum float64
	for _, w := range weights {
		sum += w
	}
	out := make(map[string]float64, len(weights))
	for name, w := range weights {
		if sum > 0 {
			out[name] = w / sum
		}
	}
	return out
}

func copyWeights(w map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(w))
	for k, v := range w {
		out[k] = v
	}
	return out
}
