package generator

import (
	"time"

	"github.com/hooklab/content-intelligence-service/internal/corpus"
	"github.com/hooklab/content-intelligence-service/internal/lexicon"
	"github.com/hooklab/content-intelligence-service/internal/models"
)

// MaxCalendarDays bounds a single calendar request
const MaxCalendarDays = 90

// CalendarEntry is one planned post
type CalendarEntry struct {
	Date        time.Time                  `json:"date"`
	Day         string                     `json:"day"`
	Theme       string                     `json:"theme"`
	Tone        models.Tone                `json:"tone"`
	Length      models.ContentLength       `json:"length"`
	PostingTime string                     `json:"postingTime"`
	Inspiration string                     `json:"inspiration,omitempty"`
	Content     *models.GeneratedCandidate `json:"content,omitempty"`
}

// GenerateContentCalendar plans one post per day for the days after today.
// Themes rotate through the niche list; tone and length follow the weekday.
func (g *TemplateGenerator) GenerateContentCalendar(niche models.Niche, days int) []CalendarEntry {
	niche = models.ParseNiche(string(niche))
	days = min(max(days, 0), MaxCalendarDays)

	themes := g.lex.Niche(niche).Themes
	inspiration := g.Inspiration(niche, days)

	now := g.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	out := make([]CalendarEntry, 0, days)
	for i := 0; i < days; i++ {
		date := today.AddDate(0, 0, i+1)
		day := lexicon.DayKey(date.Weekday())

		entry := CalendarEntry{
			Date:        date,
			Day:         date.Weekday().String(),
			Tone:        models.ParseTone(string(g.lex.Generation.DayTone[day])),
			Length:      models.ParseLength(string(g.lex.Generation.DayLength[day])),
			PostingTime: g.lex.Generation.PostingTimes[day],
		}
		if len(themes) > 0 {
			entry.Theme = themes[i%len(themes)]
		}
		if len(inspiration) > 0 {
			entry.Inspiration = inspiration[i%len(inspiration)]
		}

		content := g.GenerateContent(Request{
			Niche:           niche,
			Tone:            entry.Tone,
			Length:          entry.Length,
			Count:           1,
			IncludeHashtags: true,
			Theme:           entry.Theme,
		})
		if len(content) > 0 {
			entry.Content = &content[0]
		}
		out = append(out, entry)
	}
	return out
}

// Inspiration returns up to n of the best corpus hooks in niche. It is empty
// when the generator has no corpus.
func (g *TemplateGenerator) Inspiration(niche models.Niche, n int) []string {
	out := []string{}
	if g.corpus == nil || n <= 0 {
		return out
	}
	posts := g.corpus.SearchPosts(corpus.SearchFilter{ContentTypes: []string{string(niche)}}, 0)
	for _, p := range posts {
		if p.Hook == "" {
			continue
		}
		out = append(out, p.Hook)
		if len(out) == n {
			break
		}
	}
	return out
}
