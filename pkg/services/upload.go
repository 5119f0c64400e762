package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/StonerSensei/nlp-analytics/pkg/database"
	"github.com/StonerSensei/nlp-analytics/pkg/inference"
	"github.com/StonerSensei/nlp-analytics/pkg/models"
)

// UploadRequest analyzes a file and materializes it in the sink.
type UploadRequest struct {
	AnalyzeRequest

	// TableName overrides the name derived from the filename.
	TableName string
	// IfExists selects behavior when the table already exists.
	IfExists database.IfExists
}

// UploadResult is the analyze output plus load accounting.
type UploadResult struct {
	models.AnalyzeResult
	RowsLoaded int64             `json:"rows_loaded"`
	IfExists   database.IfExists `json:"if_exists"`
}

// UploadService runs the inference pipeline and loads the result into the
// sink.
type UploadService interface {
	Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error)
	// Drop removes a previously loaded table.
	Drop(ctx context.Context, table string) error
}

type uploadService struct {
	analyze AnalyzeService
	loader  *database.Loader
	logger  *zap.Logger
}

// NewUploadService creates an upload service.
func NewUploadService(analyze AnalyzeService, loader *database.Loader, logger *zap.Logger) UploadService {
	return &uploadService{analyze: analyze, loader: loader, logger: logger.Named("upload")}
}

func (s *uploadService) Upload(ctx context.Context, req *UploadRequest) (*UploadResult, error) {
	analysis, err := s.analyze.Run(&req.AnalyzeRequest)
	if err != nil {
		return nil, err
	}

	if req.TableName != "" {
		name := inference.SanitizeTableName(req.TableName)
		analysis.Plan = inference.Synthesize(name, analysis.Profiles, analysis.Decision)
		analysis.Result.TableName = name
		analysis.Result.CreateSQL = analysis.Plan.CreateDDL
	}

	columns := make([]string, len(analysis.Plan.ColumnMapping))
	for i, m := range analysis.Plan.ColumnMapping {
		columns[i] = m.Destination
	}
	rows := inference.ConvertRows(analysis.Frame, analysis.Profiles)

	written, err := s.loader.Load(ctx, analysis.Plan, columns, rows, req.IfExists)
	if err != nil {
		return nil, err
	}

	s.logger.Info("upload complete",
		zap.String("table", analysis.Plan.TableName),
		zap.Int64("rows_loaded", written))

	return &UploadResult{
		AnalyzeResult: *analysis.Result,
		RowsLoaded:    written,
		IfExists:      req.IfExists,
	}, nil
}

func (s *uploadService) Drop(ctx context.Context, table string) error {
	return s.loader.Drop(ctx, inference.SanitizeTableName(table))
}
