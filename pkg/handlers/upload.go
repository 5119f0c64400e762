package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/StonerSensei/nlp-analytics/pkg/apperrors"
	"github.com/StonerSensei/nlp-analytics/pkg/database"
	"github.com/StonerSensei/nlp-analytics/pkg/models"
	"github.com/StonerSensei/nlp-analytics/pkg/services"
)

// multipartMemoryLimit caps the in-memory portion of multipart parsing;
// larger parts spill to temp files.
const multipartMemoryLimit = 32 << 20

// UploadHandler exposes file analysis and loading endpoints.
type UploadHandler struct {
	analyze        services.AnalyzeService
	upload         services.UploadService
	maxUploadBytes int64
	logger         *zap.Logger
}

// NewUploadHandler creates an UploadHandler.
func NewUploadHandler(analyze services.AnalyzeService, upload services.UploadService, maxUploadBytes int64, logger *zap.Logger) *UploadHandler {
	return &UploadHandler{
		analyze:        analyze,
		upload:         upload,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// RegisterRoutes registers the upload handler's routes on the given mux.
func (h *UploadHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/upload", h.Upload)
	mux.HandleFunc("POST /api/upload/analyze", h.Analyze)
	mux.HandleFunc("POST /api/upload/preview", h.Preview)
	mux.HandleFunc("POST /api/upload/stats", h.Stats)
	mux.HandleFunc("DELETE /api/upload/tables/{table}", h.DropTable)
}

// Analyze handles POST /api/upload/analyze: full schema inference without
// touching the sink.
func (h *UploadHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseAnalyzeForm(w, r)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	result, err := h.analyze.Analyze(req)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeOK(w, map[string]any{"success": true, "analysis": result})
}

// Preview handles POST /api/upload/preview: header detection over the raw
// leading lines.
func (h *UploadHandler) Preview(w http.ResponseWriter, r *http.Request) {
	content, _, err := h.readFile(w, r)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	result, err := h.analyze.Preview(content)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeOK(w, map[string]any{"success": true, "result": result})
}

// Stats handles POST /api/upload/stats: per-column key-suitability numbers.
func (h *UploadHandler) Stats(w http.ResponseWriter, r *http.Request) {
	req, err := h.parseAnalyzeForm(w, r)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	stats, err := h.analyze.ColumnStats(req)
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeOK(w, map[string]any{"success": true, "columns": stats})
}

// Upload handles POST /api/upload: inference plus load into the sink.
// if_exists selects fail (the default), replace, or append behavior when the
// table already exists; fail maps to 409.
func (h *UploadHandler) Upload(w http.ResponseWriter, r *http.Request) {
	analyzeReq, err := h.parseAnalyzeForm(w, r)
	if err != nil {
		h.writeErr(w, err)
		return
	}

	mode, err := database.ParseIfExists(r.FormValue("if_exists"))
	if err != nil {
		h.writeErr(w, err)
		return
	}

	result, err := h.upload.Upload(r.Context(), &services.UploadRequest{
		AnalyzeRequest: *analyzeReq,
		TableName:      r.FormValue("table_name"),
		IfExists:       mode,
	})
	if err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeOK(w, map[string]any{"success": true, "result": result})
}

// DropTable handles DELETE /api/upload/tables/{table}.
func (h *UploadHandler) DropTable(w http.ResponseWriter, r *http.Request) {
	table := r.PathValue("table")
	if table == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "validation_error", "table name is required")
		return
	}

	if err := h.upload.Drop(r.Context(), table); err != nil {
		h.writeErr(w, err)
		return
	}
	h.writeOK(w, map[string]any{"success": true, "dropped": table})
}

// parseAnalyzeForm reads the multipart form shared by the analysis endpoints:
// the file itself plus optional header_row, skip_rows, primary_key, and
// foreign_keys overrides.
func (h *UploadHandler) parseAnalyzeForm(w http.ResponseWriter, r *http.Request) (*services.AnalyzeRequest, error) {
	content, filename, err := h.readFile(w, r)
	if err != nil {
		return nil, err
	}

	req := &services.AnalyzeRequest{
		Content:  content,
		Filename: filename,
	}

	if v := r.FormValue("header_row"); v != "" {
		row, err := strconv.Atoi(v)
		if err != nil || row < 0 {
			return nil, apperrors.New(apperrors.ClassValidation, "invalid header_row %q", v)
		}
		req.HeaderRow = &row
	}

	if v := r.FormValue("skip_rows"); v != "" {
		var skips []int
		if err := json.Unmarshal([]byte(v), &skips); err != nil {
			return nil, apperrors.New(apperrors.ClassValidation,
				"invalid skip_rows %q: expected a JSON array of row indices", v)
		}
		req.SkipRows = skips
	}

	// Tri-state: an absent field means "infer", an empty value means "no
	// primary key", anything else names a column.
	values := r.MultipartForm.Value["primary_key"]
	if len(values) > 0 {
		req.PrimaryKey = models.ParsePrimaryKeyOverride(values[0], true)
	} else {
		req.PrimaryKey = models.ParsePrimaryKeyOverride("", false)
	}

	if v := r.FormValue("foreign_keys"); v != "" {
		var fks []models.ForeignKey
		if err := json.Unmarshal([]byte(v), &fks); err != nil {
			return nil, apperrors.New(apperrors.ClassValidation,
				"invalid foreign_keys %q: expected a JSON array", v)
		}
		req.ForeignKeys = fks
	}

	return req, nil
}

// readFile extracts the uploaded file's bytes, bounded by the configured
// upload cap.
func (h *UploadHandler) readFile(w http.ResponseWriter, r *http.Request) ([]byte, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemoryLimit); err != nil {
		return nil, "", apperrors.Wrap(apperrors.ClassValidation, err, "cannot parse multipart form")
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ClassValidation, err, "missing file field")
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, "", apperrors.Wrap(apperrors.ClassValidation, err, "cannot read uploaded file")
	}
	return content, header.Filename, nil
}

func (h *UploadHandler) writeOK(w http.ResponseWriter, data any) {
	if err := WriteJSON(w, http.StatusOK, data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

func (h *UploadHandler) writeErr(w http.ResponseWriter, err error) {
	if werr := WriteError(w, err); werr != nil {
		h.logger.Error("failed to encode error response", zap.Error(werr))
	}
}
