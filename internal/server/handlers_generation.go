package server

import (
	"net/http"

	"github.com/hooklab/content-intelligence-service/internal/corpus"
	"github.com/hooklab/content-intelligence-service/internal/generator"
	"github.com/hooklab/content-intelligence-service/internal/models"
	"github.com/hooklab/content-intelligence-service/internal/variation"
)

const (
	defaultGenerateCount  = 3
	defaultHookVariations = 5
	defaultCalendarDays   = 7
	defaultBatchWinners   = 5
	defaultBatchPerPost   = 3
	winnerMinViralScore   = 70
)

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req generator.Request
	if !decode(w, r, &req) {
		return
	}
	if req.Count == 0 {
		req.Count = defaultGenerateCount
	}
	candidates := s.svc.Generator.GenerateContent(req)
	respondJSON(w, http.StatusOK, map[string]any{
		"candidates": candidates,
		"count":      len(candidates),
	})
}

type hookVariationsRequest struct {
	Hook  string       `json:"hook" validate:"required"`
	Niche models.Niche `json:"niche,omitempty"`
	Count int          `json:"count" validate:"min=0,max=20"`
}

func (s *Server) handleHookVariations(w http.ResponseWriter, r *http.Request) {
	var req hookVariationsRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Count == 0 {
		req.Count = defaultHookVariations
	}

	variations := s.svc.Generator.GenerateHookVariations(req.Hook, models.ParseNiche(string(req.Niche)), req.Count)
	respondJSON(w, http.StatusOK, map[string]any{
		"original":   req.Hook,
		"variations": variations,
	})
}

type calendarRequest struct {
	Niche models.Niche `json:"niche,omitempty"`
	Days  int          `json:"days" validate:"min=0,max=90"`
}

func (s *Server) handleCalendar(w http.ResponseWriter, r *http.Request) {
	var req calendarRequest
	if !decode(w, r, &req) {
		return
	}
	if req.Days == 0 {
		req.Days = defaultCalendarDays
	}

	niche := models.ParseNiche(string(req.Niche))
	respondJSON(w, http.StatusOK, map[string]any{
		"niche":   niche,
		"entries": s.svc.Generator.GenerateContentCalendar(niche, req.Days),
	})
}

func (s *Server) handleVariations(w http.ResponseWriter, r *http.Request) {
	var req variation.Request
	if !decode(w, r, &req) {
		return
	}
	for _, t := range req.Types {
		if !t.Valid() {
			respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "unknown variation type "+string(t), nil)
			return
		}
	}

	variations := s.svc.Variations.GenerateVariations(req)
	respondJSON(w, http.StatusOK, map[string]any{
		"original":   req.Content,
		"variations": variations,
	})
}

type adaptRequest struct {
	Content string         `json:"content" validate:"required"`
	Niches  []models.Niche `json:"niches" validate:"max=10"`
}

func (s *Server) handleAdaptNiches(w http.ResponseWriter, r *http.Request) {
	var req adaptRequest
	if !decode(w, r, &req) {
		return
	}
	if len(req.Niches) == 0 {
		req.Niches = models.AllNiches
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"adaptations": s.svc.Variations.AdaptToNiches(req.Content, req.Niches),
	})
}

type formulasRequest struct {
	Content    string   `json:"content" validate:"required"`
	FormulaIDs []string `json:"formulaIds,omitempty"`
}

func (s *Server) handleFormulas(w http.ResponseWriter, r *http.Request) {
	var req formulasRequest
	if !decode(w, r, &req) {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"variations": s.svc.Variations.ApplyViralFormulas(req.Content, req.FormulaIDs),
	})
}

type abTestRequest struct {
	Content string `json:"content" validate:"required"`
}

func (s *Server) handleABTests(w http.ResponseWriter, r *http.Request) {
	var req abTestRequest
	if !decode(w, r, &req) {
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"tests": s.svc.Variations.GenerateABTestVariations(req.Content),
	})
}

// batchRequest names winning posts explicitly or, when Posts is empty, asks
// for the top corpus posts with a viral score of at least 70
type batchRequest struct {
	Posts   []models.Post `json:"posts,omitempty" validate:"max=50"`
	Winners int           `json:"winners" validate:"min=0,max=50"`
	PerPost int           `json:"perPost" validate:"min=0,max=10"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !decode(w, r, &req) {
		return
	}
	if req.PerPost == 0 {
		req.PerPost = defaultBatchPerPost
	}

	posts := req.Posts
	if len(posts) == 0 {
		if req.Winners == 0 {
			req.Winners = defaultBatchWinners
		}
		posts = s.svc.Corpus.SearchPosts(corpus.SearchFilter{MinViralScore: winnerMinViralScore}, req.Winners)
	}

	results := s.svc.Variations.BatchGenerateFromWinners(posts, req.PerPost)
	respondJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"count":   len(results),
	})
}
