package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/dkozyrev/corpusqa/internal/core/domain"
	"github.com/dkozyrev/corpusqa/internal/core/ports"
	"github.com/dkozyrev/corpusqa/internal/observability/metrics"
)

type Router struct {
	pipeline ports.AnswerPipeline
	registry ports.CorpusRegistry
	metrics  *metrics.PipelineMetrics
	service  string
}

func NewRouter(pipeline ports.AnswerPipeline, registry ports.CorpusRegistry, m *metrics.PipelineMetrics, service string) *Router {
	return &Router{
		pipeline: pipeline,
		registry: registry,
		metrics:  m,
		service:  service,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/ask", rt.ask)
	mux.HandleFunc("/v1/corpus/stats", rt.corpusStats)
	mux.HandleFunc("/v1/corpus/documents", rt.corpusDocuments)
	if rt.metrics != nil {
		mux.Handle("/metrics", rt.metrics.Handler())
	}

	return requestIDMiddleware(accessLogMiddleware(rt.metrics, rt.service, mux))
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type askRequest struct {
	Question      string        `json:"question"`
	DocumentScope []string      `json:"document_scope,omitempty"`
	History       []historyTurn `json:"history,omitempty"`
}

type historyTurn struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

type askResponse struct {
	Answer     string         `json:"answer"`
	Citations  []citationView `json:"citations"`
	Category   string         `json:"category"`
	Strategy   string         `json:"strategy"`
	Sufficient bool           `json:"sufficient"`
	Score      scoreView      `json:"score"`
	Entities   []entityView   `json:"entities,omitempty"`
	Attempts   int            `json:"attempts"`
}

type citationView struct {
	DocumentID string `json:"document_id"`
	Location   string `json:"location,omitempty"`
	Excerpt    string `json:"excerpt"`
}

type scoreView struct {
	Quality      float64 `json:"quality"`
	Completeness float64 `json:"completeness"`
	Relevance    float64 `json:"relevance"`
	Overall      float64 `json:"overall"`
}

type entityView struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

func (rt *Router) ask(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "question is required"})
		return
	}

	history := make([]domain.Turn, 0, len(req.History))
	for _, turn := range req.History {
		history = append(history, domain.Turn{Role: turn.Role, Text: turn.Text})
	}

	start := time.Now()
	result, err := rt.pipeline.Ask(r.Context(), domain.AskRequest{
		Question:      req.Question,
		DocumentScope: req.DocumentScope,
		History:       history,
	})
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": err.Error()})
		return
	}
	if rt.metrics != nil {
		rt.metrics.RecordAsk(rt.service, result, time.Since(start))
	}

	writeJSON(w, http.StatusOK, toAskResponse(result))
}

func toAskResponse(result *domain.PipelineResult) askResponse {
	citations := make([]citationView, 0, len(result.Answer.Citations))
	for _, citation := range result.Answer.Citations {
		citations = append(citations, citationView{
			DocumentID: citation.DocumentID,
			Location:   citation.Location,
			Excerpt:    citation.Excerpt,
		})
	}
	entities := make([]entityView, 0, len(result.Entities))
	for _, entity := range result.Entities {
		entities = append(entities, entityView{Name: entity.Name, Type: entity.Type})
	}

	return askResponse{
		Answer:     result.Answer.Text,
		Citations:  citations,
		Category:   string(result.Category),
		Strategy:   string(result.Strategy),
		Sufficient: result.Score.Sufficient,
		Score: scoreView{
			Quality:      result.Score.Quality,
			Completeness: result.Score.Completeness,
			Relevance:    result.Score.Relevance,
			Overall:      result.Score.Overall,
		},
		Entities: entities,
		Attempts: result.Attempts,
	}
}

func (rt *Router) corpusStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	stats, err := rt.registry.Stats(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{
		"documents": stats.Documents,
		"entities":  stats.Entities,
	})
}

func (rt *Router) corpusDocuments(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	docs, err := rt.registry.ListDocuments(r.Context())
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}
	if docs == nil {
		docs = []domain.DocumentInfo{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": docs})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
