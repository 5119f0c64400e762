package database

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/StonerSensei/nlp-analytics/pkg/models"
)

// typeNames maps PostgreSQL data types back onto the inference type system.
// Anything unmapped is treated as text, the type that never lies.
var typeNames = map[string]models.SQLType{
	"integer":           models.TypeInteger,
	"bigint":            models.TypeBigint,
	"smallint":          models.TypeInteger,
	"double precision":  models.TypeFloat,
	"real":              models.TypeFloat,
	"numeric":           models.TypeFloat,
	"character varying": models.TypeVarchar,
	"text":              models.TypeText,
	"date":              models.TypeDate,
	"boolean":           models.TypeBoolean,
}

// SchemaContext introspects the public schema and builds the description
// handed to the generator prompt and to the normalizer's rewrite rules.
func (db *DB) SchemaContext(ctx context.Context) (*models.SchemaContext, error) {
	tables, err := db.tableNames(ctx)
	if err != nil {
		return nil, err
	}

	schema := &models.SchemaContext{
		Tables:      make(map[string]map[string]models.SQLType, len(tables)),
		NaturalKeys: make(map[string]string),
	}

	var ddlParts []string
	for _, table := range tables {
		columns, err := db.tableColumns(ctx, table)
		if err != nil {
			return nil, err
		}

		pk, err := db.primaryKeyColumn(ctx, table)
		if err != nil {
			return nil, err
		}
		// A primary key other than a surrogate id is the natural join column
		// for this table.
		if pk != "" && pk != "id" && pk != "row_id" {
			schema.NaturalKeys[table] = pk
		}

		colTypes := make(map[string]models.SQLType, len(columns))
		defs := make([]string, 0, len(columns))
		for _, col := range columns {
			colTypes[col.name] = col.sqlType()
			def := fmt.Sprintf("    %q %s", col.name, col.render())
			if col.name == pk {
				def += " PRIMARY KEY"
			}
			defs = append(defs, def)
		}
		schema.Tables[table] = colTypes
		ddlParts = append(ddlParts, fmt.Sprintf("CREATE TABLE %q (\n%s\n);", table, strings.Join(defs, ",\n")))
	}

	schema.DDL = strings.Join(ddlParts, "\n\n")
	return schema, nil
}

// ListTables returns the public-schema tables with their row counts.
func (db *DB) ListTables(ctx context.Context) ([]models.TableInfo, error) {
	tables, err := db.tableNames(ctx)
	if err != nil {
		return nil, err
	}

	infos := make([]models.TableInfo, 0, len(tables))
	for _, table := range tables {
		var count int64
		if err := db.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %q`, table)).Scan(&count); err != nil {
			return nil, classifyExecError(err, fmt.Sprintf("counting rows of %q", table))
		}
		infos = append(infos, models.TableInfo{Name: table, RowCount: count})
	}
	return infos, nil
}

// Info identifies the connected sink for the database info endpoint.
func (db *DB) Info(ctx context.Context) (*models.SinkInfo, error) {
	var info models.SinkInfo
	err := db.QueryRow(ctx,
		`SELECT version(), current_database(), current_user`).Scan(
		&info.Version, &info.Database, &info.User)
	if err != nil {
		return nil, classifyExecError(err, "reading database info")
	}
	return &info, nil
}

// TableExists reports whether a table is present in the public schema.
func (db *DB) TableExists(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := db.QueryRow(ctx,
		`SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`, name).Scan(&exists)
	if err != nil {
		return false, classifyExecError(err, "checking table existence")
	}
	return exists, nil
}

func (db *DB) tableNames(ctx context.Context) ([]string, error) {
	rows, err := db.Query(ctx,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = 'public' AND table_type = 'BASE TABLE'
		 ORDER BY table_name`)
	if err != nil {
		return nil, classifyExecError(err, "listing tables")
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, classifyExecError(err, "listing tables")
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, classifyExecError(err, "listing tables")
	}
	sort.Strings(names)
	return names, nil
}

type columnMeta struct {
	name      string
	dataType  string
	maxLength *int
}

func (c columnMeta) sqlType() models.SQLType {
	if t, ok := typeNames[c.dataType]; ok {
		return t
	}
	return models.TypeText
}

func (c columnMeta) render() string {
	if c.sqlType() == models.TypeVarchar && c.maxLength != nil {
		return fmt.Sprintf("VARCHAR(%d)", *c.maxLength)
	}
	return string(c.sqlType())
}

func (db *DB) tableColumns(ctx context.Context, table string) ([]columnMeta, error) {
	rows, err := db.Query(ctx,
		`SELECT column_name, data_type, character_maximum_length
		 FROM information_schema.columns
		 WHERE table_schema = 'public' AND table_name = $1
		 ORDER BY ordinal_position`, table)
	if err != nil {
		return nil, classifyExecError(err, fmt.Sprintf("reading columns of %q", table))
	}
	defer rows.Close()

	var columns []columnMeta
	for rows.Next() {
		var col columnMeta
		if err := rows.Scan(&col.name, &col.dataType, &col.maxLength); err != nil {
			return nil, classifyExecError(err, fmt.Sprintf("reading columns of %q", table))
		}
		columns = append(columns, col)
	}
	return columns, rows.Err()
}

func (db *DB) primaryKeyColumn(ctx context.Context, table string) (string, error) {
	var pk string
	err := db.QueryRow(ctx,
		`SELECT kcu.column_name
		 FROM information_schema.table_constraints tc
		 JOIN information_schema.key_column_usage kcu
		   ON tc.constraint_name = kcu.constraint_name
		  AND tc.table_schema = kcu.table_schema
		 WHERE tc.table_schema = 'public'
		   AND tc.table_name = $1
		   AND tc.constraint_type = 'PRIMARY KEY'
		 ORDER BY kcu.ordinal_position
		 LIMIT 1`, table).Scan(&pk)
	if err != nil {
		// No primary key is a normal condition, not a failure.
		if errors.Is(err, pgx.ErrNoRows) {
			return "", nil
		}
		return "", classifyExecError(err, fmt.Sprintf("reading primary key of %q", table))
	}
	return pk, nil
}
