package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/StonerSensei/nlp-analytics/pkg/apperrors"
	"github.com/StonerSensei/nlp-analytics/pkg/models"
)

// ErrTableExists is returned by Load in IfExistsFail mode when the target
// table is already present. Handlers map it to a conflict response.
var ErrTableExists = errors.New("table already exists")

// IfExists selects what Load does when the target table is already present.
type IfExists string

const (
	// IfExistsFail aborts the load.
	IfExistsFail IfExists = "fail"
	// IfExistsReplace drops the existing table, dependents included.
	IfExistsReplace IfExists = "replace"
	// IfExistsAppend inserts into the existing table.
	IfExistsAppend IfExists = "append"
)

// ParseIfExists validates a caller-supplied mode. An empty value defaults to
// IfExistsFail, the non-destructive choice.
func ParseIfExists(value string) (IfExists, error) {
	switch IfExists(value) {
	case "":
		return IfExistsFail, nil
	case IfExistsFail, IfExistsReplace, IfExistsAppend:
		return IfExists(value), nil
	default:
		return "", apperrors.New(apperrors.ClassValidation,
			"invalid if_exists value %q, must be one of: fail, replace, append", value)
	}
}

// Loader materializes a synthesized load plan in the sink.
type Loader struct {
	db     *DB
	logger *zap.Logger
}

// NewLoader creates a Loader.
func NewLoader(db *DB, logger *zap.Logger) *Loader {
	return &Loader{db: db, logger: logger.Named("loader")}
}

// Load creates the table from the plan's DDL and bulk-inserts the converted
// rows. columns are the destination column names in row order; rows carry
// values already converted to the profiled types, with nil for nulls. Returns
// the number of rows written.
//
// The create-and-load sequence runs in one transaction so a failed load never
// leaves behind an empty or half-filled table.
func (l *Loader) Load(ctx context.Context, plan models.TableLoadPlan, columns []string, rows [][]any, mode IfExists) (int64, error) {
	exists, err := l.db.TableExists(ctx, plan.TableName)
	if err != nil {
		return 0, err
	}
	if exists && mode == IfExistsFail {
		return 0, fmt.Errorf("%w: %q", ErrTableExists, plan.TableName)
	}

	tx, err := l.db.Begin(ctx)
	if err != nil {
		return 0, classifyExecError(err, "beginning load transaction")
	}
	defer tx.Rollback(ctx)

	if exists && mode == IfExistsReplace {
		if _, err := tx.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %q CASCADE`, plan.TableName)); err != nil {
			return 0, classifyExecError(err, fmt.Sprintf("dropping table %q", plan.TableName))
		}
	}

	// The DDL is CREATE TABLE IF NOT EXISTS, so this is a no-op in append
	// mode against a live table.
	if _, err := tx.Exec(ctx, plan.CreateDDL); err != nil {
		return 0, classifyExecError(err, fmt.Sprintf("creating table %q", plan.TableName))
	}

	written, err := tx.CopyFrom(ctx, pgx.Identifier{plan.TableName}, columns, pgx.CopyFromRows(rows))
	if err != nil {
		return 0, classifyExecError(err, fmt.Sprintf("loading rows into %q", plan.TableName))
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, classifyExecError(err, "committing load transaction")
	}

	l.logger.Info("table loaded",
		zap.String("table", plan.TableName),
		zap.Int64("rows", written),
		zap.String("if_exists", string(mode)),
		zap.Bool("synthetic_key", plan.SyntheticKeyAdded))

	return written, nil
}

// Drop removes a table and its dependents.
func (l *Loader) Drop(ctx context.Context, table string) error {
	if _, err := l.db.Exec(ctx, fmt.Sprintf(`DROP TABLE IF EXISTS %q CASCADE`, table)); err != nil {
		return classifyExecError(err, fmt.Sprintf("dropping table %q", table))
	}
	l.logger.Info("table dropped", zap.String("table", table))
	return nil
}
