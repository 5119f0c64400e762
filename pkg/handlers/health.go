package handlers

import (
	"context"
	"net/http"
	"runtime"

	"go.uber.org/zap"

	"github.com/StonerSensei/nlp-analytics/pkg/config"
)

// pinger reports reachability of an external dependency.
type pinger interface {
	Ping(ctx context.Context) error
}

// HealthResponse reports overall service health plus per-dependency status.
type HealthResponse struct {
	Status    string `json:"status"` // healthy | degraded
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Database  string `json:"database"`  // up | down
	Generator string `json:"generator"` // up | down
	Model     string `json:"model"`
}

// HealthHandler handles liveness and dependency health checks.
type HealthHandler struct {
	cfg       *config.Config
	db        pinger
	generator pinger
	model     string
	logger    *zap.Logger
}

// NewHealthHandler creates a HealthHandler.
func NewHealthHandler(cfg *config.Config, db pinger, generator pinger, model string, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{cfg: cfg, db: db, generator: generator, model: model, logger: logger}
}

// RegisterRoutes registers the health handler's routes on the given mux.
func (h *HealthHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /health", h.Liveness)
	mux.HandleFunc("GET /api/health", h.Health)
}

// Liveness returns a bare "ok" for load-balancer health checks.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

// Health probes the sink and the generator. A service with a down dependency
// is degraded, not dead: analysis endpoints still work without the generator.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:    "healthy",
		Version:   h.cfg.Version,
		GoVersion: runtime.Version(),
		Database:  "up",
		Generator: "up",
		Model:     h.model,
	}

	if err := h.db.Ping(r.Context()); err != nil {
		h.logger.Warn("database health check failed", zap.Error(err))
		resp.Database = "down"
		resp.Status = "degraded"
	}
	if err := h.generator.Ping(r.Context()); err != nil {
		h.logger.Warn("generator health check failed", zap.Error(err))
		resp.Generator = "down"
		resp.Status = "degraded"
	}

	if err := WriteJSON(w, http.StatusOK, resp); err != nil {
		h.logger.Error("failed to encode health response", zap.Error(err))
	}
}
