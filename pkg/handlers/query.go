package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/StonerSensei/nlp-analytics/pkg/services"
)

// QueryHandler exposes natural-language query endpoints.
type QueryHandler struct {
	queries services.QueryService
	logger  *zap.Logger
}

// NewQueryHandler creates a QueryHandler.
func NewQueryHandler(queries services.QueryService, logger *zap.Logger) *QueryHandler {
	return &QueryHandler{queries: queries, logger: logger}
}

// RegisterRoutes registers the query handler's routes on the given mux.
func (h *QueryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/query", h.Query)
	mux.HandleFunc("POST /api/query/explain", h.Explain)
	mux.HandleFunc("POST /api/query/normalize", h.Normalize)
	mux.HandleFunc("GET /api/query/schema", h.Schema)
	mux.HandleFunc("GET /api/query/suggestions", h.Suggestions)
}

// queryBody is the wire shape of a query request. Execute is a pointer so an
// omitted field defaults to true while an explicit false is honored.
type queryBody struct {
	Question string `json:"question"`
	Execute  *bool  `json:"execute"`
	Limit    int    `json:"limit"`
}

func (b *queryBody) toRequest() *services.QueryRequest {
	execute := true
	if b.Execute != nil {
		execute = *b.Execute
	}
	return &services.QueryRequest{
		Question: strings.TrimSpace(b.Question),
		Execute:  execute,
		Limit:    b.Limit,
	}
}

// Query handles POST /api/query: generate SQL for a question and run it.
func (h *QueryHandler) Query(w http.ResponseWriter, r *http.Request) {
	var body queryBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}
	req := body.toRequest()
	if req.Question == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "question is required")
		return
	}

	resp, err := h.queries.Ask(r.Context(), req)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeOK(w, resp)
}

// Explain handles POST /api/query/explain: generate and normalize SQL for a
// question without executing it.
func (h *QueryHandler) Explain(w http.ResponseWriter, r *http.Request) {
	var body queryBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}
	req := body.toRequest()
	req.Execute = false
	if req.Question == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "question is required")
		return
	}

	resp, err := h.queries.Ask(r.Context(), req)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeOK(w, resp)
}

// normalizeBody carries raw generator output through the safety normalizer
// without involving the generator itself.
type normalizeBody struct {
	RawOutput   string   `json:"raw_generator_output"`
	KnownTables []string `json:"known_tables"`
}

// Normalize handles POST /api/query/normalize.
func (h *QueryHandler) Normalize(w http.ResponseWriter, r *http.Request) {
	var body normalizeBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "invalid JSON body")
		return
	}
	if strings.TrimSpace(body.RawOutput) == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "raw_generator_output is required")
		return
	}

	result, err := h.queries.Normalize(r.Context(), body.RawOutput, body.KnownTables)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeOK(w, result)
}

// Schema handles GET /api/query/schema.
func (h *QueryHandler) Schema(w http.ResponseWriter, r *http.Request) {
	resp, err := h.queries.Schema(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeOK(w, resp)
}

// Suggestions handles GET /api/query/suggestions.
func (h *QueryHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	suggestions, err := h.queries.Suggestions(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeOK(w, map[string]any{"suggestions": suggestions})
}

func (h *QueryHandler) writeOK(w http.ResponseWriter, data any) {
	if err := WriteJSON(w, http.StatusOK, data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *QueryHandler) writeErr(w http.ResponseWriter, err error) {
	if werr := WriteError(w, err); werr != nil {
		h.logger.Error("failed to encode error response", zap.Error(werr))
	}
}
