package scheduler

import (
	"context"

	"github.com/hooklab/content-intelligence-service/internal/generator"
	"github.com/hooklab/content-intelligence-service/internal/logging"
	"github.com/hooklab/content-intelligence-service/internal/metrics"
	"github.com/hooklab/content-intelligence-service/internal/models"
	"github.com/hooklab/content-intelligence-service/internal/scoring"
)

// TrainingJobName is the name the retraining job is registered under
const TrainingJobName = "retrain"

// PostSource supplies the corpus snapshot to train on
type PostSource interface {
	Posts() []models.Post
}

// ModelTrainer is implemented by *scoring.Model
type ModelTrainer interface {
	TrainModel(newPosts []models.Post) scoring.TrainingSummary
}

// TemplateTrainer is implemented by *generator.TemplateGenerator
type TemplateTrainer interface {
	TrainOnViralData(newPosts []models.Post) generator.TrainingResult
}

// TrainingJob feeds the corpus into the scoring model and the template
// library. Both trainers ignore posts they have already seen.
func TrainingJob(source PostSource, model ModelTrainer, templates TemplateTrainer) Job {
	return func(ctx context.Context) error {
		if err := ctx.Err(); err != nil {
			metrics.RecordTraining(0, err)
			return err
		}

		posts := source.Posts()
		summary := model.TrainModel(posts)
		result := templates.TrainOnViralData(posts)
		metrics.RecordTraining(result.LibrarySize, nil)

		logging.Info().
			Int("corpus_posts", len(posts)).
			Int("reference_size", summary.ReferenceSize).
			Bool("weights_updated", summary.WeightsUpdated).
			Bool("template_added", result.TemplateAdded).
			Int("library_size", result.LibrarySize).
			Msg("retraining completed")
		return nil
	}
}
