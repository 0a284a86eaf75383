package server

import (
	"net/http"
	"path/filepath"
	"time"

	"github.com/hooklab/content-intelligence-service/internal/corpus"
	"github.com/hooklab/content-intelligence-service/internal/metrics"
	"github.com/hooklab/content-intelligence-service/internal/models"
	"github.com/hooklab/content-intelligence-service/internal/scoring"
)

const (
	defaultPostLimit       = 20
	defaultSuggestionCount = 5
)

// postsQuery holds the validated query parameters of GET /posts
type postsQuery struct {
	Limit         int     `json:"limit" validate:"min=1,max=500"`
	MinViralScore float64 `json:"minViralScore" validate:"min=0,max=100"`
	MinEngagement float64 `json:"minEngagement" validate:"min=0"`
}

// handlePosts searches the corpus
func (s *Server) handlePosts(w http.ResponseWriter, r *http.Request) {
	limit, okLimit := queryInt(r, "limit", defaultPostLimit)
	minScore, okScore := queryFloat(r, "minViralScore")
	minEngagement, okEngagement := queryFloat(r, "minEngagement")
	if !okLimit || !okScore || !okEngagement {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "limit, minViralScore and minEngagement must be numeric", nil)
		return
	}
	q := postsQuery{Limit: limit, MinViralScore: minScore, MinEngagement: minEngagement}
	if !valid(w, &q) {
		return
	}

	filter := corpus.SearchFilter{
		ContentTypes:  queryList(r, "contentType"),
		MinViralScore: q.MinViralScore,
		MinEngagement: q.MinEngagement,
		Creators:      queryList(r, "creator"),
		Hashtag:       r.URL.Query().Get("hashtag"),
		Keyword:       r.URL.Query().Get("keyword"),
	}
	for name, dst := range map[string]*time.Time{"from": &filter.From, "to": &filter.To} {
		raw := r.URL.Query().Get(name)
		if raw == "" {
			continue
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", name+" must be an RFC3339 timestamp", nil)
			return
		}
		*dst = t
	}

	posts := s.svc.Corpus.SearchPosts(filter, q.Limit)
	respondJSON(w, http.StatusOK, map[string]any{
		"posts": posts,
		"count": len(posts),
		"limit": q.Limit,
	})
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.svc.Corpus.GetStats())
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, s.svc.Corpus.GetViralTrends())
}

// handleSuggestions returns varied hooks from top performers of a niche
func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	count, ok := queryInt(r, "count", defaultSuggestionCount)
	if !ok || count < 1 || count > 50 {
		respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "count must be between 1 and 50", nil)
		return
	}
	niche := models.ParseNiche(r.URL.Query().Get("niche"))

	suggestions := s.svc.Corpus.GetContentSuggestions(niche, count)
	respondJSON(w, http.StatusOK, map[string]any{
		"niche":       niche,
		"suggestions": suggestions,
	})
}

// handleStatus handles GET requests for ingestion status
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if s.svc.Ingestion == nil {
		respondJSON(w, http.StatusOK, models.IngestionStatus{Status: models.StatusNeverRun})
		return
	}

	status, err := s.svc.Ingestion.Status(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "STATUS_UNAVAILABLE", "Failed to retrieve status", err)
		return
	}
	respondJSON(w, http.StatusOK, status)
}

func (s *Server) handleJobs(w http.ResponseWriter, r *http.Request) {
	if s.svc.Jobs == nil {
		respondJSON(w, http.StatusOK, map[string]any{"jobs": []any{}})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"jobs": s.svc.Jobs.ListJobs()})
}

type exportRequest struct {
	Path string `json:"path,omitempty"`
}

// handleExport writes the corpus to the configured backend or, when a
// relative path is given, to a file under the configured export directory
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if !decode(w, r, &req) {
		return
	}

	var path string
	if req.Path != "" {
		if s.config.ExportDir == "" {
			respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "file export is disabled", nil)
			return
		}
		if !filepath.IsLocal(req.Path) {
			respondError(w, http.StatusBadRequest, "INVALID_PARAMETER", "path must be relative to the export directory", nil)
			return
		}
		path = filepath.Join(s.config.ExportDir, req.Path)
	}

	doc, err := s.svc.Corpus.ExportDatabase(r.Context(), path)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "EXPORT_FAILED", "Failed to export corpus", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"posts":     len(doc.Posts),
		"stats":     doc.Stats,
		"lastSaved": doc.LastSaved,
	})
}

type predictRequest struct {
	Text          string       `json:"text" validate:"required"`
	Niche         models.Niche `json:"niche,omitempty"`
	ScheduledTime *time.Time   `json:"scheduledTime,omitempty"`
	FollowerCount int          `json:"followerCount" validate:"min=0"`
}

// handlePredict scores a caption
func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var req predictRequest
	if !decode(w, r, &req) {
		return
	}

	niche := models.ParseNiche(string(req.Niche))
	result := s.svc.Model.Predict(req.Text, niche, scoring.PredictOptions{
		ScheduledTime: req.ScheduledTime,
		FollowerCount: req.FollowerCount,
	})
	metrics.Predictions.WithLabelValues(string(niche)).Inc()
	respondJSON(w, http.StatusOK, result)
}

type postingTimeRequest struct {
	Text  string       `json:"text" validate:"required"`
	Niche models.Niche `json:"niche,omitempty"`
}

func (s *Server) handlePostingTime(w http.ResponseWriter, r *http.Request) {
	var req postingTimeRequest
	if !decode(w, r, &req) {
		return
	}
	respondJSON(w, http.StatusOK, s.svc.Model.FindOptimalPostingTime(req.Text, models.ParseNiche(string(req.Niche))))
}

type competitorsRequest struct {
	Creators []string `json:"creators" validate:"required,min=1,max=50,dive,required"`
}

func (s *Server) handleCompetitors(w http.ResponseWriter, r *http.Request) {
	var req competitorsRequest
	if !decode(w, r, &req) {
		return
	}
	respondJSON(w, http.StatusOK, s.svc.Model.AnalyzeCompetitorPatterns(req.Creators))
}
