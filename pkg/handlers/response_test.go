package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StonerSensei/nlp-analytics/pkg/apperrors"
	"github.com/StonerSensei/nlp-analytics/pkg/database"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "parse error",
			err:        apperrors.New(apperrors.ClassParse, "file is empty"),
			wantStatus: http.StatusBadRequest,
			wantCode:   string(apperrors.ClassParse),
		},
		{
			name:       "validation error",
			err:        apperrors.New(apperrors.ClassValidation, "bad input"),
			wantStatus: http.StatusBadRequest,
			wantCode:   string(apperrors.ClassValidation),
		},
		{
			name:       "rejected query",
			err:        apperrors.New(apperrors.ClassRejectedQuery, "only SELECT statements are allowed"),
			wantStatus: http.StatusBadRequest,
			wantCode:   string(apperrors.ClassRejectedQuery),
		},
		{
			name:       "execution error",
			err:        apperrors.New(apperrors.ClassExecution, "relation does not exist"),
			wantStatus: http.StatusBadRequest,
			wantCode:   string(apperrors.ClassExecution),
		},
		{
			name:       "generation connection failure",
			err:        apperrors.Generation(apperrors.ReasonConnection, nil, "connection refused"),
			wantStatus: http.StatusBadGateway,
			wantCode:   string(apperrors.ClassGeneration),
		},
		{
			name:       "generation timeout",
			err:        apperrors.Generation(apperrors.ReasonTimeout, nil, "deadline exceeded"),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   string(apperrors.ClassGeneration),
		},
		{
			name:       "generation empty completion",
			err:        apperrors.Generation(apperrors.ReasonEmptyCompletion, nil, "empty completion"),
			wantStatus: http.StatusBadGateway,
			wantCode:   string(apperrors.ClassGeneration),
		},
		{
			name:       "query timeout",
			err:        apperrors.New(apperrors.ClassQueryTimeout, "statement timeout fired"),
			wantStatus: http.StatusGatewayTimeout,
			wantCode:   string(apperrors.ClassQueryTimeout),
		},
		{
			name:       "table exists",
			err:        fmt.Errorf("%w: %q", database.ErrTableExists, "billing"),
			wantStatus: http.StatusConflict,
			wantCode:   "table_exists",
		},
		{
			name:       "unclassified error",
			err:        errors.New("something broke"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			assert.NoError(t, WriteError(rec, tt.err))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantCode)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body struct {
				Success *bool  `json:"success"`
				Error   string `json:"error"`
				Message string `json:"message"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.NotNil(t, body.Success, "error body must carry the success flag")
			assert.False(t, *body.Success)
			assert.Equal(t, tt.wantCode, body.Error)
			assert.NotEmpty(t, body.Message)
		})
	}
}
