// Package services orchestrates the inference core, the text generator, and
// the database sink into the operations the handlers expose.
package services

import (
	"strings"

	"go.uber.org/zap"

	"github.com/StonerSensei/nlp-analytics/pkg/apperrors"
	"github.com/StonerSensei/nlp-analytics/pkg/config"
	"github.com/StonerSensei/nlp-analytics/pkg/inference"
	"github.com/StonerSensei/nlp-analytics/pkg/models"
)

// sampleDataRows is how many leading rows an analyze response carries.
const sampleDataRows = 5

// AnalyzeRequest is one schema-inference request over raw file bytes.
type AnalyzeRequest struct {
	Content  []byte
	Filename string

	// HeaderRow overrides header detection when set.
	HeaderRow *int
	// SkipRows are row indices to drop; defaults to the detected skip rows
	// when HeaderRow is unset.
	SkipRows []int

	PrimaryKey models.PrimaryKeyChoice
	// ForeignKeys overrides foreign key inference entirely when non-nil.
	ForeignKeys []models.ForeignKey
}

// Analysis carries the intermediate products of one inference pass, for
// callers (the upload service) that need more than the JSON-shaped result.
type Analysis struct {
	Frame     *inference.Frame
	Profiles  []models.ColumnProfile
	Decision  models.KeyDecision
	Plan      models.TableLoadPlan
	Detection models.HeaderDetection
	Result    *models.AnalyzeResult
}

// AnalyzeService runs the inference pipeline: header location, column
// profiling, key inference, and DDL synthesis. It is pure computation with no
// sink access.
type AnalyzeService interface {
	// Preview locates the header row and returns the raw leading lines.
	Preview(content []byte) (*models.PreviewResult, error)

	// Analyze runs the full pipeline and returns the JSON-shaped result.
	Analyze(req *AnalyzeRequest) (*models.AnalyzeResult, error)

	// Run is Analyze with the intermediate products exposed.
	Run(req *AnalyzeRequest) (*Analysis, error)

	// ColumnStats profiles the file and reports per-column key-suitability
	// statistics.
	ColumnStats(req *AnalyzeRequest) ([]models.ColumnStats, error)
}

type analyzeService struct {
	cfg    config.AnalyzeConfig
	logger *zap.Logger
}

// NewAnalyzeService creates an analyze service.
func NewAnalyzeService(cfg config.AnalyzeConfig, logger *zap.Logger) AnalyzeService {
	return &analyzeService{cfg: cfg, logger: logger.Named("analyze")}
}

func (s *analyzeService) Preview(content []byte) (*models.PreviewResult, error) {
	lines := inference.SplitLines(content, s.cfg.PreviewLines)
	if len(lines) == 0 {
		return nil, apperrors.New(apperrors.ClassParse, "file is empty")
	}

	detection := inference.LocateHeader(lines, s.cfg.PreviewLines)
	return &models.PreviewResult{
		Preview:           lines,
		TotalPreviewLines: len(lines),
		HeaderDetection:   detection,
	}, nil
}

func (s *analyzeService) Analyze(req *AnalyzeRequest) (*models.AnalyzeResult, error) {
	analysis, err := s.Run(req)
	if err != nil {
		return nil, err
	}
	return analysis.Result, nil
}

func (s *analyzeService) Run(req *AnalyzeRequest) (*Analysis, error) {
	headerRow, skipRows, detection := s.resolveHeader(req)

	frame, err := inference.ParseFrame(req.Content, headerRow, skipRows)
	if err != nil {
		return nil, err
	}

	profiles := inference.ProfileColumns(frame, s.cfg.SampleSize)

	decision, err := inference.InferKeys(profiles, req.PrimaryKey)
	if err != nil {
		return nil, err
	}
	if req.ForeignKeys != nil {
		if err := validateForeignKeys(req.ForeignKeys, profiles); err != nil {
			return nil, err
		}
		decision.ForeignKeys = req.ForeignKeys
	}

	tableName := inference.SanitizeTableName(req.Filename)
	plan := inference.Synthesize(tableName, profiles, decision)

	result := &models.AnalyzeResult{
		TableName:         tableName,
		RowCount:          frame.RowCount(),
		Columns:           profiles,
		PrimaryKey:        primaryKeyName(decision, profiles, plan),
		SyntheticKeyAdded: plan.SyntheticKeyAdded,
		ForeignKeys:       decision.ForeignKeys,
		CreateSQL:         plan.CreateDDL,
		SampleData:        inference.SampleRows(frame, profiles, sampleDataRows),
	}

	s.logger.Info("file analyzed",
		zap.String("table", tableName),
		zap.Int("rows", result.RowCount),
		zap.Int("columns", len(profiles)),
		zap.Int("header_row", headerRow),
		zap.Bool("synthetic_key", plan.SyntheticKeyAdded))

	return &Analysis{
		Frame:     frame,
		Profiles:  profiles,
		Decision:  decision,
		Plan:      plan,
		Detection: detection,
		Result:    result,
	}, nil
}

func (s *analyzeService) ColumnStats(req *AnalyzeRequest) ([]models.ColumnStats, error) {
	headerRow, skipRows, _ := s.resolveHeader(req)

	frame, err := inference.ParseFrame(req.Content, headerRow, skipRows)
	if err != nil {
		return nil, err
	}

	profiles := inference.ProfileColumns(frame, s.cfg.SampleSize)
	return inference.ColumnStatistics(profiles, frame.RowCount()), nil
}

// resolveHeader applies the caller's header override or falls back to
// detection over the preview window.
func (s *analyzeService) resolveHeader(req *AnalyzeRequest) (int, []int, models.HeaderDetection) {
	if req.HeaderRow != nil {
		return *req.HeaderRow, req.SkipRows, models.HeaderDetection{
			ChosenRow:  *req.HeaderRow,
			Confidence: 100,
			SkipRows:   req.SkipRows,
			Reasoning:  "header row supplied by caller",
		}
	}

	lines := inference.SplitLines(req.Content, s.cfg.PreviewLines)
	detection := inference.LocateHeader(lines, s.cfg.PreviewLines)
	skipRows := detection.SkipRows
	if req.SkipRows != nil {
		skipRows = req.SkipRows
	}
	return detection.ChosenRow, skipRows, detection
}

// primaryKeyName reports the effective key column for the response: the named
// column, the synthesized surrogate, or nil when the caller asked for none.
func primaryKeyName(decision models.KeyDecision, profiles []models.ColumnProfile, plan models.TableLoadPlan) *string {
	if name, ok := decision.PrimaryKey.Column(); ok {
		return &name
	}
	if plan.SyntheticKeyAdded {
		name := inference.SurrogateKeyName(profiles)
		return &name
	}
	return nil
}

func validateForeignKeys(fks []models.ForeignKey, profiles []models.ColumnProfile) error {
	names := make(map[string]bool, len(profiles))
	valid := make([]string, 0, len(profiles))
	for _, p := range profiles {
		names[p.Name] = true
		valid = append(valid, p.Name)
	}

	for _, fk := range fks {
		if !names[fk.Column] {
			return apperrors.New(apperrors.ClassValidation,
				"foreign key column %q not found, valid columns: %s", fk.Column, strings.Join(valid, ", "))
		}
		if fk.ReferencesTable == "" || fk.ReferencesColumn == "" {
			return apperrors.New(apperrors.ClassValidation,
				"foreign key on %q must name a referenced table and column", fk.Column)
		}
	}
	return nil
}
