package models

import "strings"

// Niche is the content category used to select benchmarks and vocabulary
type Niche string

const (
	NicheBusiness  Niche = "business"
	NicheFitness   Niche = "fitness"
	NicheLifestyle Niche = "lifestyle"
	NicheTech      Niche = "tech"
	NicheFood      Niche = "food"
	NicheTravel    Niche = "travel"
	NicheFashion   Niche = "fashion"
	NicheEducation Niche = "education"
	NicheFinance   Niche = "finance"
	NicheBeauty    Niche = "beauty"

	// DefaultNiche is used whenever a niche is unknown
	DefaultNiche = NicheBusiness
)

// AllNiches lists every supported niche
var AllNiches = []Niche{
	NicheBusiness, NicheFitness, NicheLifestyle, NicheTech, NicheFood,
	NicheTravel, NicheFashion, NicheEducation, NicheFinance, NicheBeauty,
}

// ParseNiche maps free-form content types onto a known niche, falling back to
// DefaultNiche
func ParseNiche(s string) Niche {
	n := Niche(strings.ToLower(strings.TrimSpace(s)))
	if n.Valid() {
		return n
	}
	return DefaultNiche
}

// Valid reports whether n is a known niche
func (n Niche) Valid() bool {
	for _, known := range AllNiches {
		if n == known {
			return true
		}
	}
	return false
}

// PatternTag is a structural classification applied to a hook
type PatternTag string

const (
	TagQuestion      PatternTag = "question"
	TagInterrogative PatternTag = "interrogative"
	TagDefinitive    PatternTag = "definitive"
	TagInstructional PatternTag = "instructional"
	TagInsider       PatternTag = "insider"
	TagAbsolute      PatternTag = "absolute"
	TagAspirational  PatternTag = "aspirational"
	TagCautionary    PatternTag = "cautionary"
	TagNumerical     PatternTag = "numerical"
	TagShort         PatternTag = "short"
	TagMedium        PatternTag = "medium"
	TagLong          PatternTag = "long"
	TagGeneral       PatternTag = "general"
)

// SectionKind names one structural section of a template
type SectionKind string

const (
	SectionHook     SectionKind = "hook"
	SectionProblem  SectionKind = "problem"
	SectionStory    SectionKind = "story"
	SectionTip      SectionKind = "tip"
	SectionList     SectionKind = "list"
	SectionProof    SectionKind = "proof"
	SectionInsight  SectionKind = "insight"
	SectionSolution SectionKind = "solution"
	SectionCTA      SectionKind = "cta"
)

// Tone controls the lexicon used by generation and tone shifting
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneCasual       Tone = "casual"
	ToneMotivational Tone = "motivational"
)

// ParseTone falls back to ToneCasual for unknown values
func ParseTone(s string) Tone {
	switch t := Tone(strings.ToLower(strings.TrimSpace(s))); t {
	case ToneProfessional, ToneCasual, ToneMotivational:
		return t
	default:
		return ToneCasual
	}
}

// ContentLength is a coarse target length for generated captions
type ContentLength string

const (
	LengthShort  ContentLength = "short"
	LengthMedium ContentLength = "medium"
	LengthLong   ContentLength = "long"
)

// ParseLength falls back to LengthMedium for unknown values
func ParseLength(s string) ContentLength {
	switch l := ContentLength(strings.ToLower(strings.TrimSpace(s))); l {
	case LengthShort, LengthMedium, LengthLong:
		return l
	default:
		return LengthMedium
	}
}
