package models

import (
	"math"
	"time"
)

// MaxViralScore is the upper bound of every viral score and probability
const MaxViralScore = 100.0

// Post represents a scored social-media item in the corpus
type Post struct {
	ID             string    `json:"id" bson:"id"`
	Author         string    `json:"author" bson:"author"`
	Caption        string    `json:"caption" bson:"caption"`
	Hook           string    `json:"hook" bson:"hook"`
	Transcript     string    `json:"transcript,omitempty" bson:"transcript,omitempty"`
	Views          int       `json:"views" bson:"views"`
	Likes          int       `json:"likes" bson:"likes"`
	Comments       int       `json:"comments" bson:"comments"`
	Shares         int       `json:"shares" bson:"shares"`
	EngagementRate float64   `json:"engagementRate" bson:"engagementRate"`
	UploadDate     time.Time `json:"uploadDate" bson:"uploadDate"`
	ContentType    string    `json:"contentType" bson:"contentType"`
	PostURL        string    `json:"postUrl" bson:"postUrl"`
	Hashtags       []string  `json:"hashtags" bson:"hashtags"`
	Mentions       []string  `json:"mentions" bson:"mentions"`
	ViralScore     float64   `json:"viralScore" bson:"viralScore"`
}

// ComputeEngagementRate returns (likes+comments+shares)/views as a percentage,
// or 0 when the post has no views
func ComputeEngagementRate(likes, comments, shares, views int) float64 {
	if views <= 0 {
		return 0
	}
	return float64(likes+comments+shares) / float64(views) * 100
}

// DeriveViralScore estimates a viral score from reach and engagement for posts
// that arrive without one
func DeriveViralScore(engagementRate float64, views int) float64 {
	reach := math.Min(math.Log10(float64(views)+1)*6, 40)
	return ClampScore(engagementRate*4 + reach)
}

// ClampScore bounds v to [0, 100]
func ClampScore(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > MaxViralScore {
		return MaxViralScore
	}
	return v
}

// TimePrecision is the finest timestamp resolution every storage backend
// keeps; BSON datetimes stop at milliseconds
const TimePrecision = time.Millisecond

// Normalize recomputes the derived fields of a post and truncates its upload
// date to TimePrecision
func (p *Post) Normalize() {
	p.UploadDate = p.UploadDate.Truncate(TimePrecision)
	p.EngagementRate = ComputeEngagementRate(p.Likes, p.Comments, p.Shares, p.Views)
	if p.ViralScore > 0 {
		p.ViralScore = ClampScore(p.ViralScore)
	} else {
		p.ViralScore = DeriveViralScore(p.EngagementRate, p.Views)
	}
}

// PatternStat aggregates posts sharing a structural tag
type PatternStat struct {
	Tag            PatternTag `json:"tag" bson:"tag"`
	Examples       []string   `json:"examples" bson:"examples"`
	AvgEngagement  float64    `json:"avgEngagement" bson:"avgEngagement"`
	Frequency      int        `json:"frequency" bson:"frequency"`
	Consistency    float64    `json:"consistency" bson:"consistency"`
	ViralPotential float64    `json:"viralPotential" bson:"viralPotential"`
}

// DateRange is an inclusive time span
type DateRange struct {
	Earliest time.Time `json:"earliest" bson:"earliest"`
	Latest   time.Time `json:"latest" bson:"latest"`
}

// DatabaseStats is the aggregate snapshot of the corpus
type DatabaseStats struct {
	TotalPosts     int            `json:"totalPosts" bson:"totalPosts"`
	UniqueCreators int            `json:"uniqueCreators" bson:"uniqueCreators"`
	AvgEngagement  float64        `json:"avgEngagement" bson:"avgEngagement"`
	ContentTypes   map[string]int `json:"contentTypes" bson:"contentTypes"`
	DateRange      DateRange      `json:"dateRange" bson:"dateRange"`
	LastUpdated    time.Time      `json:"lastUpdated" bson:"lastUpdated"`
}

// CorpusDocument is the persisted shape of the corpus
type CorpusDocument struct {
	Posts     []Post         `json:"posts" bson:"posts"`
	Stats     *DatabaseStats `json:"stats" bson:"stats"`
	Patterns  []PatternStat  `json:"patterns" bson:"patterns"`
	LastSaved time.Time      `json:"lastSaved" bson:"lastSaved"`
}

// Template is a generation blueprint
type Template struct {
	ID                 string        `json:"id" yaml:"id"`
	Name               string        `json:"name" yaml:"name"`
	PatternString      string        `json:"patternString" yaml:"pattern"`
	StructureSections  []SectionKind `json:"structureSections" yaml:"sections"`
	Examples           []string      `json:"examples" yaml:"examples"`
	BaselineEngagement float64       `json:"baselineEngagement" yaml:"baseline"`
	ApplicableNiches   []Niche       `json:"applicableNiches" yaml:"niches"`
}

// AppliesTo reports whether the template may be used for niche
func (t Template) AppliesTo(niche Niche) bool {
	for _, n := range t.ApplicableNiches {
		if n == niche {
			return true
		}
	}
	return false
}

// RenderedSection is one ordered section of a generated caption
type RenderedSection struct {
	Kind SectionKind `json:"kind"`
	Text string      `json:"text"`
}

// GeneratedCandidate is the output of generation
type GeneratedCandidate struct {
	Hook                string            `json:"hook"`
	Caption             string            `json:"caption"`
	Hashtags            []string          `json:"hashtags"`
	Sections            []RenderedSection `json:"sections"`
	PredictedViralScore float64           `json:"predictedViralScore"`
	PredictedEngagement float64           `json:"predictedEngagement"`
	Source              string            `json:"source"`
	Confidence          float64           `json:"confidence"`
}
