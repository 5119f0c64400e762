package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/StonerSensei/nlp-analytics/pkg/apperrors"
	"github.com/StonerSensei/nlp-analytics/pkg/models"
	"github.com/StonerSensei/nlp-analytics/pkg/services"
)

// mockQueryService records query calls with canned responses.
type mockQueryService struct {
	resp        *services.QueryResponse
	err         error
	lastReq     *services.QueryRequest
	lastRaw     string
	lastTables  []string
	suggestions []string
}

func (m *mockQueryService) Ask(_ context.Context, req *services.QueryRequest) (*services.QueryResponse, error) {
	m.lastReq = req
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

func (m *mockQueryService) Normalize(_ context.Context, raw string, knownTables []string) (*models.NormalizeResult, error) {
	m.lastRaw = raw
	m.lastTables = knownTables
	if m.err != nil {
		return nil, m.err
	}
	return &models.NormalizeResult{SafeSQL: "SELECT 1 LIMIT 100", OriginalText: raw}, nil
}

func (m *mockQueryService) Schema(context.Context) (*services.SchemaResponse, error) {
	if m.err != nil {
		return nil, m.err
	}
	return &services.SchemaResponse{Schema: `CREATE TABLE "billing" (...)`, TableCount: 1}, nil
}

func (m *mockQueryService) Suggestions(context.Context) ([]string, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.suggestions, nil
}

func newQueryTestHandler(mock *mockQueryService) *QueryHandler {
	return NewQueryHandler(mock, zap.NewNop())
}

func TestQueryEndpointDefaultsExecute(t *testing.T) {
	mock := &mockQueryService{
		resp: &services.QueryResponse{
			Question: "How many bills?",
			SQL:      `SELECT COUNT(*) FROM "billing" LIMIT 100`,
			Result:   &models.QueryRunResult{RowCount: 1},
		},
	}
	h := newQueryTestHandler(mock)

	req := httptest.NewRequest(http.MethodPost, "/api/query",
		strings.NewReader(`{"question": "How many bills?"}`))
	rec := routeRequest(h, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, mock.lastReq)
	assert.True(t, mock.lastReq.Execute, "execute should default to true")
}

func TestQueryEndpointExplicitExecuteFalse(t *testing.T) {
	mock := &mockQueryService{resp: &services.QueryResponse{SQL: "SELECT 1"}}
	h := newQueryTestHandler(mock)

	req := httptest.NewRequest(http.MethodPost, "/api/query",
		strings.NewReader(`{"question": "q", "execute": false, "limit": 5}`))
	rec := routeRequest(h, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, mock.lastReq.Execute)
	assert.Equal(t, 5, mock.lastReq.Limit)
}

func TestQueryEndpointMissingQuestion(t *testing.T) {
	h := newQueryTestHandler(&mockQueryService{})

	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader(`{}`))
	rec := routeRequest(h, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "question is required")
}

func TestQueryEndpointInvalidJSON(t *testing.T) {
	h := newQueryTestHandler(&mockQueryService{})

	req := httptest.NewRequest(http.MethodPost, "/api/query", strings.NewReader("not json"))
	rec := routeRequest(h, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestQueryEndpointRejectedQuery(t *testing.T) {
	mock := &mockQueryService{
		err: apperrors.New(apperrors.ClassRejectedQuery, "only SELECT statements are allowed"),
	}
	h := newQueryTestHandler(mock)

	req := httptest.NewRequest(http.MethodPost, "/api/query",
		strings.NewReader(`{"question": "drop everything"}`))
	rec := routeRequest(h, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "only SELECT")
}

func TestQueryEndpointGenerationTimeout(t *testing.T) {
	mock := &mockQueryService{
		err: apperrors.Generation(apperrors.ReasonTimeout, nil, "generation timed out"),
	}
	h := newQueryTestHandler(mock)

	req := httptest.NewRequest(http.MethodPost, "/api/query",
		strings.NewReader(`{"question": "slow"}`))
	rec := routeRequest(h, req)

	assert.Equal(t, http.StatusGatewayTimeout, rec.Code)
}

func TestExplainEndpointForcesExecuteFalse(t *testing.T) {
	mock := &mockQueryService{resp: &services.QueryResponse{SQL: "SELECT 1"}}
	h := newQueryTestHandler(mock)

	req := httptest.NewRequest(http.MethodPost, "/api/query/explain",
		strings.NewReader(`{"question": "q", "execute": true}`))
	rec := routeRequest(h, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, mock.lastReq.Execute)
}

func TestNormalizeEndpoint(t *testing.T) {
	mock := &mockQueryService{}
	h := newQueryTestHandler(mock)

	req := httptest.NewRequest(http.MethodPost, "/api/query/normalize",
		strings.NewReader(`{"raw_generator_output": "SELECT 1", "known_tables": ["billing"]}`))
	rec := routeRequest(h, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "SELECT 1", mock.lastRaw)
	assert.Equal(t, []string{"billing"}, mock.lastTables)

	var result models.NormalizeResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, "SELECT 1 LIMIT 100", result.SafeSQL)
}

func TestNormalizeEndpointMissingInput(t *testing.T) {
	h := newQueryTestHandler(&mockQueryService{})

	req := httptest.NewRequest(http.MethodPost, "/api/query/normalize",
		strings.NewReader(`{"raw_generator_output": "  "}`))
	rec := routeRequest(h, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSchemaEndpoint(t *testing.T) {
	h := newQueryTestHandler(&mockQueryService{})

	req := httptest.NewRequest(http.MethodGet, "/api/query/schema", nil)
	rec := routeRequest(h, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "billing")
}

func TestSuggestionsEndpoint(t *testing.T) {
	h := newQueryTestHandler(&mockQueryService{
		suggestions: []string{"Count all records in billing"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/query/suggestions", nil)
	rec := routeRequest(h, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Suggestions []string `json:"suggestions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, []string{"Count all records in billing"}, resp.Suggestions)
}
