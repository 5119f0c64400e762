// Package handlers exposes the analysis, upload, and query services over
// HTTP. Field names in the JSON bodies are the stable API.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/StonerSensei/nlp-analytics/pkg/apperrors"
	"github.com/StonerSensei/nlp-analytics/pkg/database"
)

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// ErrorResponse writes a JSON error response and returns any encoding error.
// Error bodies carry the same success flag the success paths emit, so callers
// can key off one field regardless of outcome.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]any{
		"success": false,
		"error":   errorCode,
		"message": message,
	})
}

// WriteError maps a classified error onto a status code and writes the
// structured error body. Inference failures are caller problems, generator
// failures are upstream problems, and a fired statement timeout gets its own
// status so clients can tell it apart from a generation timeout.
func WriteError(w http.ResponseWriter, err error) error {
	if errors.Is(err, database.ErrTableExists) {
		return ErrorResponse(w, http.StatusConflict, "table_exists", err.Error())
	}

	class := apperrors.ClassOf(err)
	status := http.StatusInternalServerError
	switch class {
	case apperrors.ClassParse, apperrors.ClassValidation, apperrors.ClassRejectedQuery, apperrors.ClassExecution:
		status = http.StatusBadRequest
	case apperrors.ClassGeneration:
		if apperrors.ReasonOf(err) == apperrors.ReasonTimeout {
			status = http.StatusGatewayTimeout
		} else {
			status = http.StatusBadGateway
		}
	case apperrors.ClassQueryTimeout:
		status = http.StatusGatewayTimeout
	}

	code := string(class)
	if code == "" {
		code = "internal_error"
	}
	return ErrorResponse(w, status, code, err.Error())
}
