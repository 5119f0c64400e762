package database

import (
	"context"

	"github.com/StonerSensei/nlp-analytics/pkg/jsonutil"
	"github.com/StonerSensei/nlp-analytics/pkg/models"
)

// RunQuery executes a normalized SELECT and collects the result set. Values
// are passed through jsonutil so non-finite floats never reach the wire.
// Failures are classified: a fired statement_timeout reports ClassQueryTimeout
// with no partial results, anything else ClassExecution with the sink's native
// error text.
func (db *DB) RunQuery(ctx context.Context, sqlText string) (*models.QueryRunResult, error) {
	rows, err := db.Query(ctx, sqlText)
	if err != nil {
		return nil, classifyExecError(err, "executing query")
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	columns := make([]string, len(fields))
	for i, f := range fields {
		columns[i] = string(f.Name)
	}

	result := &models.QueryRunResult{Columns: columns, Rows: []map[string]any{}}
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, classifyExecError(err, "reading query results")
		}
		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = jsonutil.SafeValue(values[i])
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyExecError(err, "executing query")
	}

	result.RowCount = len(result.Rows)
	return result, nil
}
