package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/StonerSensei/nlp-analytics/pkg/apperrors"
	"github.com/StonerSensei/nlp-analytics/pkg/audit"
	"github.com/StonerSensei/nlp-analytics/pkg/config"
	"github.com/StonerSensei/nlp-analytics/pkg/llm"
	"github.com/StonerSensei/nlp-analytics/pkg/logging"
	"github.com/StonerSensei/nlp-analytics/pkg/models"
	"github.com/StonerSensei/nlp-analytics/pkg/prompts"
	"github.com/StonerSensei/nlp-analytics/pkg/retry"
	"github.com/StonerSensei/nlp-analytics/pkg/sqlsafe"
)

// Sink is the database surface the query service depends on.
type Sink interface {
	SchemaContext(ctx context.Context) (*models.SchemaContext, error)
	ListTables(ctx context.Context) ([]models.TableInfo, error)
	RunQuery(ctx context.Context, sqlText string) (*models.QueryRunResult, error)
}

// QueryRequest is one natural-language query.
type QueryRequest struct {
	Question string `json:"question"`
	// Execute runs the normalized SQL; false returns the SQL alone.
	Execute bool `json:"execute"`
	// Limit caps result rows; zero uses the configured default.
	Limit int `json:"limit"`
}

// QueryResponse carries the generated SQL, what the normalizer changed, and
// optionally the executed results.
type QueryResponse struct {
	Question     string                 `json:"question"`
	SQL          string                 `json:"sql"`
	OriginalText string                 `json:"raw_generator_output"`
	Warnings     []string               `json:"warnings"`
	Model        string                 `json:"model"`
	Result       *models.QueryRunResult `json:"results,omitempty"`
}

// SchemaResponse describes the queryable schema.
type SchemaResponse struct {
	Schema     string             `json:"schema"`
	TableCount int                `json:"table_count"`
	Tables     []models.TableInfo `json:"tables"`
}

// QueryService converts natural-language questions to bounded SELECT
// statements and executes them.
type QueryService interface {
	// Ask generates SQL for the question, normalizes it, and executes it
	// when requested.
	Ask(ctx context.Context, req *QueryRequest) (*QueryResponse, error)

	// Normalize runs the safety normalizer over raw generator output. When
	// knownTables is empty the live schema drives the rewrite rules.
	Normalize(ctx context.Context, raw string, knownTables []string) (*models.NormalizeResult, error)

	// Schema returns the generation-facing schema description.
	Schema(ctx context.Context) (*SchemaResponse, error)

	// Suggestions proposes example questions based on the loaded tables.
	Suggestions(ctx context.Context) ([]string, error)
}

type queryService struct {
	sink      Sink
	generator llm.Generator
	cfg       config.QueryConfig
	retryCfg  *retry.Config
	auditor   *audit.SecurityAuditor
	logger    *zap.Logger
}

// NewQueryService creates a query service. maxRetries bounds how often a
// timed-out generation is reattempted; other failures are never retried.
func NewQueryService(sink Sink, generator llm.Generator, cfg config.QueryConfig, maxRetries int, logger *zap.Logger) QueryService {
	retryCfg := retry.DefaultConfig()
	retryCfg.MaxRetries = maxRetries

	return &queryService{
		sink:      sink,
		generator: generator,
		cfg:       cfg,
		retryCfg:  retryCfg,
		auditor:   audit.NewSecurityAuditor(logger),
		logger:    logger.Named("query"),
	}
}

func (s *queryService) Ask(ctx context.Context, req *QueryRequest) (*QueryResponse, error) {
	schema, err := s.sink.SchemaContext(ctx)
	if err != nil {
		return nil, err
	}
	if len(schema.Tables) == 0 {
		return nil, apperrors.New(apperrors.ClassValidation,
			"no tables found in database; upload a file first")
	}

	limit := req.Limit
	if limit <= 0 {
		limit = s.cfg.DefaultRowLimit
	}

	prompt := prompts.BuildSQLGenerationPrompt(req.Question, schema.DDL,
		fmt.Sprintf("Limit results to %d rows if not specified in the question.", limit))

	completion, err := retry.DoIfRetryableWithResult(ctx, s.retryCfg, func() (*llm.Completion, error) {
		return s.generator.Generate(ctx, prompt)
	})
	if err != nil {
		return nil, err
	}

	raw := prompts.SeedCompletion(completion.Text)
	normalized, err := sqlsafe.New(limit).Normalize(raw, schema)
	if err != nil {
		if apperrors.IsClass(err, apperrors.ClassRejectedQuery) {
			s.auditor.LogQueryRejected(req.Question, err.Error())
		}
		return nil, err
	}

	if injections := injectionWarnings(normalized.Warnings); len(injections) > 0 {
		s.auditor.LogInjectionSuspected(req.Question, injections)
	}

	s.logger.Info("query normalized",
		zap.String("question", req.Question),
		zap.String("sql", logging.SanitizeQuery(normalized.SafeSQL)),
		zap.Int("warnings", len(normalized.Warnings)),
		zap.Int("completion_tokens", completion.CompletionTokens))

	resp := &QueryResponse{
		Question:     req.Question,
		SQL:          normalized.SafeSQL,
		OriginalText: normalized.OriginalText,
		Warnings:     normalized.Warnings,
		Model:        completion.Model,
	}
	if resp.Model == "" {
		resp.Model = s.generator.Model()
	}

	if req.Execute {
		result, err := s.sink.RunQuery(ctx, normalized.SafeSQL)
		if err != nil {
			return nil, err
		}
		resp.Result = result
		s.auditor.LogQueryExecuted(req.Question, result.RowCount)
	}
	return resp, nil
}

// injectionWarnings filters the normalizer's warnings down to libinjection
// findings; rewrite notices (limit injection, join repair) are not security
// events.
func injectionWarnings(warnings []string) []string {
	var out []string
	for _, w := range warnings {
		if strings.Contains(w, "SQL injection fingerprint") {
			out = append(out, w)
		}
	}
	return out
}

func (s *queryService) Normalize(ctx context.Context, raw string, knownTables []string) (*models.NormalizeResult, error) {
	var schema *models.SchemaContext
	if len(knownTables) > 0 {
		schema = &models.SchemaContext{Tables: make(map[string]map[string]models.SQLType, len(knownTables))}
		for _, t := range knownTables {
			schema.Tables[t] = nil
		}
	} else {
		var err error
		schema, err = s.sink.SchemaContext(ctx)
		if err != nil {
			return nil, err
		}
	}

	result, err := sqlsafe.New(s.cfg.DefaultRowLimit).Normalize(raw, schema)
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *queryService) Schema(ctx context.Context) (*SchemaResponse, error) {
	schema, err := s.sink.SchemaContext(ctx)
	if err != nil {
		return nil, err
	}
	tables, err := s.sink.ListTables(ctx)
	if err != nil {
		return nil, err
	}
	return &SchemaResponse{
		Schema:     schema.DDL,
		TableCount: len(tables),
		Tables:     tables,
	}, nil
}

func (s *queryService) Suggestions(ctx context.Context) ([]string, error) {
	schema, err := s.sink.SchemaContext(ctx)
	if err != nil {
		return nil, err
	}

	tables := schema.TableNames()
	sort.Strings(tables)
	if len(tables) == 0 {
		return []string{"Upload a file first to get started!"}, nil
	}

	suggestions := []string{
		fmt.Sprintf("How many records are in the %s table?", tables[0]),
		fmt.Sprintf("Show me the first 10 rows from %s", tables[0]),
	}

	for _, table := range tables {
		if len(suggestions) >= 10 {
			break
		}
		suggestions = append(suggestions, fmt.Sprintf("Count all records in %s", table))

		columns := schema.Tables[table]
		names := make([]string, 0, len(columns))
		for name := range columns {
			names = append(names, name)
		}
		sort.Strings(names)

		var stringCols, numericCols []string
		for _, name := range names {
			switch columns[name] {
			case models.TypeVarchar, models.TypeText:
				stringCols = append(stringCols, name)
			case models.TypeInteger, models.TypeBigint, models.TypeFloat:
				numericCols = append(numericCols, name)
			}
		}
		if len(stringCols) > 0 {
			suggestions = append(suggestions, fmt.Sprintf("Group %s by %s", table, stringCols[0]))
		}
		if len(numericCols) > 1 {
			suggestions = append(suggestions, fmt.Sprintf("Show %s ordered by %s descending", table, numericCols[0]))
		}
	}

	if len(suggestions) > 10 {
		suggestions = suggestions[:10]
	}
	return suggestions, nil
}
