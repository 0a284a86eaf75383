package scoring

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hooklab/content-intelligence-service/internal/lexicon"
	"github.com/hooklab/content-intelligence-service/internal/models"
)

const (
	horizonDays     = 7
	alternativeSlot = 5
)

// PostingSlot is one evaluated publishing time
type PostingSlot struct {
	Time          time.Time `json:"time"`
	Score         float64   `json:"score"`
	Justification string    `json:"justification"`
}

// PostingTimeResult is the output of FindOptimalPostingTime
type PostingTimeResult struct {
	Best         PostingSlot   `json:"best"`
	CurrentScore float64       `json:"currentScore"`
	Improvement  float64       `json:"improvement"`
	Alternatives []PostingSlot `json:"alternatives"`
}

// FindOptimalPostingTime evaluates text at every candidate hour of the next
// seven days and returns the best slot with up to five runners-up. Slots that
// are already in the past are skipped.
func (m *Model) FindOptimalPostingTime(text string, niche models.Niche) PostingTimeResult {
	now := m.now()
	current := m.Predict(text, niche, PredictOptions{ScheduledTime: &now})

	start := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	var slots []PostingSlot
	for d := 0; d < horizonDays; d++ {
		day := start.AddDate(0, 0, d)
		for _, hour := range m.lex.Scoring.CandidateHours[lexicon.DayKey(day.Weekday())] {
			at := day.Add(time.Duration(hour) * time.Hour)
			if !at.After(now) {
				continue
			}
			p := m.Predict(text, niche, PredictOptions{ScheduledTime: &at})
			slots = append(slots, PostingSlot{
				Time:          at,
				Score:         p.ViralProbability,
				Justification: m.justify(at),
			})
		}
	}

	result := PostingTimeResult{CurrentScore: current.ViralProbability}
	if len(slots) == 0 {
		result.Best = PostingSlot{Time: now, Score: current.ViralProbability, Justification: m.justify(now)}
		return result
	}

	// earlier slots win ties
	sort.SliceStable(slots, func(i, j int) bool { return slots[i].Score > slots[j].Score })

	result.Best = slots[0]
	result.Improvement = slots[0].Score - current.ViralProbability
	rest := slots[1:]
	if len(rest) > alternativeSlot {
		rest = rest[:alternativeSlot]
	}
	result.Alternatives = append([]PostingSlot(nil), rest...)
	return result
}

func (m *Model) justify(t time.Time) string {
	parts := []string{fmt.Sprintf("%s %s", t.Weekday(), partOfDay(t.Hour()))}
	if isPeakHour(m.lex, t) {
		parts = append(parts, "peak engagement hour")
	} else {
		parts = append(parts, "off-peak hour")
	}
	if isWeekend(t) {
		parts = append(parts, "weekend audience")
	}
	return strings.Join(parts, ", ")
}

func partOfDay(hour int) string {
	switch {
	case hour < 5:
		return "late night"
	case hour < 12:
		return "morning"
	case hour < 17:
		return "afternoon"
	case hour < 21:
		return "evening"
	default:
		return "night"
	}
}
