package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/StonerSensei/nlp-analytics/pkg/models"
)

// sink is the database surface the info endpoints read from.
type sink interface {
	ListTables(ctx context.Context) ([]models.TableInfo, error)
	Info(ctx context.Context) (*models.SinkInfo, error)
}

// DatabaseHandler exposes read-only views of the sink and its loaded tables.
type DatabaseHandler struct {
	sink   sink
	logger *zap.Logger
}

// NewDatabaseHandler creates a DatabaseHandler.
func NewDatabaseHandler(sink sink, logger *zap.Logger) *DatabaseHandler {
	return &DatabaseHandler{sink: sink, logger: logger}
}

// RegisterRoutes registers the database handler's routes on the given mux.
func (h *DatabaseHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/database/info", h.Info)
	mux.HandleFunc("GET /api/database/tables", h.ListTables)
}

// Info handles GET /api/database/info.
func (h *DatabaseHandler) Info(w http.ResponseWriter, r *http.Request) {
	info, err := h.sink.Info(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeOK(w, info)
}

// ListTables handles GET /api/database/tables.
func (h *DatabaseHandler) ListTables(w http.ResponseWriter, r *http.Request) {
	tables, err := h.sink.ListTables(r.Context())
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeOK(w, map[string]any{
		"tables": tables,
		"count":  len(tables),
	})
}

func (h *DatabaseHandler) writeOK(w http.ResponseWriter, data any) {
	if err := WriteJSON(w, http.StatusOK, data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *DatabaseHandler) writeErr(w http.ResponseWriter, err error) {
	if werr := WriteError(w, err); werr != nil {
		h.logger.Error("failed to encode error response", zap.Error(werr))
	}
}
