package variation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hooklab/content-intelligence-service/internal/lexicon"
	"github.com/hooklab/content-intelligence-service/internal/models"
	"github.com/hooklab/content-intelligence-service/internal/rng"
	"github.com/hooklab/content-intelligence-service/internal/scoring"
)

const sample = "Most people get protein wrong. This is a good fix. Eat more at breakfast. Track it for a week. Let me know what you think."

func newTestEngine() *Engine {
	return New(scoring.New(lexicon.Default()), WithRand(rng.New(99)))
}

func hasAnyPrefix(s string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}

func TestGenerateVariations_RequestedTypes(t *testing.T) {
	e := newTestEngine()
	requested := []Type{TypeHook, TypeCTA, TypeLength, TypeEmotional, TypeStorytelling}

	got := e.GenerateVariations(Request{Content: sample, Types: requested, Count: 10, Niche: models.NicheFitness})

	require.Len(t, got, 10)
	counts := map[Type]int{}
	for i, v := range got {
		assert.Contains(t, requested, v.VariationType)
		assert.Equal(t, confidence[v.VariationType], v.Confidence)
		assert.GreaterOrEqual(t, v.PredictedViralScore, 0.0)
		assert.LessOrEqual(t, v.PredictedViralScore, 100.0)
		if i > 0 {
			assert.GreaterOrEqual(t, got[i-1].PredictedViralScore, v.PredictedViralScore)
		}
		counts[v.VariationType]++
	}
	for _, typ := range requested {
		assert.Equal(t, 2, counts[typ], "round robin gives %s two slots", typ)
	}
}

func TestGenerateVariations_Defaults(t *testing.T) {
	e := newTestEngine()

	got := e.GenerateVariations(Request{Content: sample, Types: []Type{"bogus"}, Count: len(AllTypes)})
	require.Len(t, got, len(AllTypes))
	var seen []Type
	for _, v := range got {
		seen = append(seen, v.VariationType)
	}
	assert.ElementsMatch(t, AllTypes, seen)

	assert.Empty(t, e.GenerateVariations(Request{Content: sample, Count: 0}))
}

func TestConfidenceTable(t *testing.T) {
	assert.Len(t, confidence, len(AllTypes))
	assert.Equal(t, 90.0, confidence[TypeLength])
	assert.Equal(t, 60.0, confidence[TypeStorytelling])
	for _, typ := range AllTypes {
		assert.True(t, typ.Valid())
	}
	assert.False(t, Type("rewrite").Valid())
}

func TestLength(t *testing.T) {
	e := newTestEngine()

	short := e.Length(sample)
	assert.Equal(t, "This is a good fix. Eat more at breakfast. Track it for a week.", short)

	long := e.Length("One sentence only.")
	assert.True(t, strings.HasPrefix(long, "One sentence only. "))
	assert.Contains(t, e.lex.Variation.Elaborations, strings.TrimPrefix(long, "One sentence only. "))
}

func TestCTA(t *testing.T) {
	e := newTestEngine()

	got := e.CTA("Great tips for you. Let me know what you think! Link in bio.")

	assert.NotContains(t, strings.ToLower(got), "let me know")
	assert.NotContains(t, strings.ToLower(got), "link in bio")
	assert.True(t, strings.HasPrefix(got, "Great tips for you. "))
	assert.Contains(t, e.lex.Variation.StrongCTAs, strings.TrimPrefix(got, "Great tips for you. "))

	assert.Contains(t, e.lex.Variation.StrongCTAs, e.CTA("hope this helps"))
}

func TestCTA_KeepsWordsContainingWeakPhrase(t *testing.T) {
	lex := *lexicon.Default()
	lex.Variation.WeakCTAs = []string{"more"}
	e := New(scoring.New(&lex), WithRand(rng.New(99)))

	got := e.CTA("Furthermore, sleep matters. Read more!")

	require.True(t, strings.HasPrefix(got, "Furthermore, sleep matters. Read "), got)
	assert.Contains(t, lex.Variation.StrongCTAs, strings.TrimPrefix(got, "Furthermore, sleep matters. Read "))
}

func TestEmotional(t *testing.T) {
	e := newTestEngine()

	got := e.Emotional("This is a good idea. It works.")

	assert.Contains(t, got, "incredible idea!")
	assert.True(t, strings.HasSuffix(got, "It works!"))
	assert.NotContains(t, got, ".")
}

func TestStructure(t *testing.T) {
	e := newTestEngine()

	statement := e.Structure("Why do diets fail? Here is the answer.")
	assert.True(t, hasAnyPrefix(statement, e.lex.Generation.StatementOpeners))
	assert.Contains(t, statement, "why do diets fail.")

	question := e.Structure("Diets fail for one reason. Here is the answer.")
	assert.True(t, hasAnyPrefix(question, e.lex.Variation.QuestionOpeners))
	assert.Contains(t, question, "diets fail for one reason?")

	assert.Equal(t, "", e.Structure(""))
}

func TestTone(t *testing.T) {
	e := newTestEngine()

	got := e.Tone("This stuff is awesome", models.ToneProfessional)

	assert.True(t, hasAnyPrefix(got, e.lex.Tones[models.ToneProfessional].Intros))
	assert.Contains(t, got, "this material is excellent")
}

func TestNicheAndStorytelling(t *testing.T) {
	e := newTestEngine()

	assert.True(t, hasAnyPrefix(e.Niche(sample, models.NicheFitness), e.lex.Niches[models.NicheFitness].Framing))
	assert.True(t, hasAnyPrefix(e.Niche(sample, "unknown"), e.lex.Niches[models.DefaultNiche].Framing))

	story := e.Storytelling(sample)
	assert.True(t, hasAnyPrefix(story, e.lex.Variation.NarrativeOpeners))
	assert.Contains(t, story, "Most people get protein wrong.")
}

func TestQuestion_ConvertsAtLeastOne(t *testing.T) {
	e := newTestEngine()

	for i := 0; i < 10; i++ {
		assert.Contains(t, e.Question("Protein matters. Sleep matters."), "?")
	}
	assert.Equal(t, "Already a question?", e.Question("Already a question?"))
}

func TestHook_AlwaysRewritesOpening(t *testing.T) {
	e := newTestEngine()
	content := "This is a good hook. The rest stays."

	for i := 0; i < 20; i++ {
		got := e.Hook(content)
		assert.NotEqual(t, content, got)
		assert.True(t, strings.HasSuffix(got, "The rest stays."))
	}
}

func TestAdaptToNiches(t *testing.T) {
	e := newTestEngine()
	niches := []models.Niche{models.NicheFitness, models.NicheFood, models.NicheFinance}

	got := e.AdaptToNiches(sample, niches)

	require.Len(t, got, 3)
	for i, a := range got {
		assert.Equal(t, niches[i], a.Niche)
		assert.Contains(t, a.Rationale, string(niches[i]))
		assert.True(t, strings.HasSuffix(a.Content, sample))
		assert.True(t, hasAnyPrefix(a.Content, e.lex.Niches[niches[i]].Framing))
	}
}

func TestApplyViralFormulas(t *testing.T) {
	e := newTestEngine()
	content := "5 tips I learned the hard way. Comment below."

	got := e.ApplyViralFormulas(content, nil)

	require.Len(t, got, len(e.lex.Variation.Formulas))
	assert.Equal(t, "listicle", got[0].FormulaID)
	assert.Equal(t, 3, got[0].Applicability)
	for i := 1; i < len(got); i++ {
		assert.GreaterOrEqual(t, got[i-1].Applicability, got[i].Applicability)
	}
	assert.Contains(t, got[0].Content, "1. 5 tips")

	filtered := e.ApplyViralFormulas(content, []string{"curiosity", "missing"})
	require.Len(t, filtered, 1)
	assert.Equal(t, "curiosity", filtered[0].FormulaID)
	assert.Contains(t, filtered[0].Content, "?")
}

func TestGenerateABTestVariations(t *testing.T) {
	e := newTestEngine()

	got := e.GenerateABTestVariations(sample)

	require.Len(t, got, 3)
	assert.Equal(t, []string{"Hook style", "Emotional intensity", "Length"}, []string{got[0].Name, got[1].Name, got[2].Name})
	for _, ab := range got {
		assert.Equal(t, "A", ab.ExpectedWinner)
		assert.NotEmpty(t, ab.Hypothesis)
		assert.NotEqual(t, ab.VariantA, ab.VariantB)
	}
	assert.Contains(t, got[0].VariantA, "?")
	assert.Equal(t, sample, got[1].VariantB)
	assert.Less(t, len(got[2].VariantA), len(got[2].VariantB))
}

func TestBatchGenerateFromWinners(t *testing.T) {
	e := newTestEngine()
	posts := []models.Post{
		{ID: "1", Caption: sample, ContentType: "fitness"},
		{ID: "2", Hook: "Budget like this.", ContentType: "finance"},
	}

	got := e.BatchGenerateFromWinners(posts, 4)

	require.Len(t, got, 2)
	for _, r := range got {
		require.Len(t, r.Variations, 4)
		require.NotNil(t, r.Best)
		assert.Equal(t, r.Variations[0], *r.Best)
		for _, v := range r.Variations {
			assert.Contains(t, batchMix, v.VariationType)
		}
	}
	assert.Equal(t, "Budget like this.", got[1].Original)

	empty := e.BatchGenerateFromWinners(posts[:1], 0)
	assert.Nil(t, empty[0].Best)
}
