package generator

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/hooklab/content-intelligence-service/internal/models"
)

const (
	viralEngagementAbove = 15.0
	maxTemplateExamples  = 10
)

var learnedSections = []models.SectionKind{
	models.SectionHook, models.SectionStory, models.SectionTip, models.SectionCTA,
}

// TrainingResult reports the outcome of TrainOnViralData
type TrainingResult struct {
	PostsMerged   int    `json:"postsMerged"`
	TemplateAdded bool   `json:"templateAdded"`
	TemplateID    string `json:"templateId,omitempty"`
	LibrarySize   int    `json:"librarySize"`
	ReferenceSize int    `json:"referenceSize"`
}

// TrainOnViralData merges newPosts into the reference corpus. New posts with
// an engagement rate above 15% are folded into one learned template, and the
// library keeps its best 20 templates by baseline.
func (g *TemplateGenerator) TrainOnViralData(newPosts []models.Post) TrainingResult {
	g.mu.Lock()
	defer g.mu.Unlock()

	var viral []models.Post
	merged := 0
	for _, p := range newPosts {
		if _, dup := g.refIDs[p.ID]; dup {
			continue
		}
		g.refIDs[p.ID] = struct{}{}
		g.reference = append(g.reference, p)
		merged++
		if p.EngagementRate > viralEngagementAbove {
			viral = append(viral, p)
		}
	}

	result := TrainingResult{PostsMerged: merged}
	if t, ok := learnTemplate(viral); ok {
		g.library = append(g.library, t)
		sortByBaseline(g.library)
		if len(g.library) > maxLibrarySize {
			g.library = g.library[:maxLibrarySize]
		}
		for _, kept := range g.library {
			if kept.ID == t.ID {
				result.TemplateAdded = true
				result.TemplateID = t.ID
				break
			}
		}
	}
	result.LibrarySize = len(g.library)
	result.ReferenceSize = len(g.reference)

	g.log.Info().
		Int("merged", result.PostsMerged).
		Int("viral", len(viral)).
		Bool("template_added", result.TemplateAdded).
		Int("library_size", result.LibrarySize).
		Msg("template library trained")
	return result
}

// learnTemplate builds one template from viral posts, best engagement first
func learnTemplate(viral []models.Post) (models.Template, bool) {
	var hooks []string
	var total float64
	niches := map[models.Niche]struct{}{}

	sorted := append([]models.Post(nil), viral...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].EngagementRate > sorted[j].EngagementRate })
	for _, p := range sorted {
		total += p.EngagementRate
		niches[models.ParseNiche(p.ContentType)] = struct{}{}
		if p.Hook != "" && len(hooks) < maxTemplateExamples {
			hooks = append(hooks, p.Hook)
		}
	}
	if len(hooks) == 0 {
		return models.Template{}, false
	}

	applicable := make([]models.Niche, 0, len(niches))
	for _, n := range models.AllNiches {
		if _, ok := niches[n]; ok {
			applicable = append(applicable, n)
		}
	}

	return models.Template{
		ID:                 uuid.NewString(),
		Name:               fmt.Sprintf("Learned from %d viral posts", len(sorted)),
		PatternString:      hooks[0],
		StructureSections:  append([]models.SectionKind(nil), learnedSections...),
		Examples:           hooks,
		BaselineEngagement: total / float64(len(sorted)),
		ApplicableNiches:   applicable,
	}, true
}
