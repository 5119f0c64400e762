package models

import "strconv"

// SQLType is a canonical column type emitted by the profiler.
type SQLType string

const (
	TypeInteger SQLType = "INTEGER"
	TypeBigint  SQLType = "BIGINT"
	TypeFloat   SQLType = "FLOAT"
	TypeVarchar SQLType = "VARCHAR"
	TypeText    SQLType = "TEXT"
	TypeDate    SQLType = "DATE"
	TypeBoolean SQLType = "BOOLEAN"
)

// ColumnProfile describes one detected column of an analyzed file.
type ColumnProfile struct {
	Name         string  `json:"name"`          // sanitized SQL identifier
	OriginalName string  `json:"original_name"` // header cell as found in the file
	SQLType      SQLType `json:"sql_type"`
	MaxLength    int     `json:"max_length,omitempty"` // VARCHAR only, rounded up the ladder

	Nullable      bool  `json:"nullable"`
	NullCount     int   `json:"null_count"`
	NonNullCount  int   `json:"non_null_count"`
	DistinctCount int   `json:"unique_count"`
	IsUnique      bool  `json:"unique"`
	SampleValues  []any `json:"sample_values"` // up to 3 non-null, JSON-safe values
}

// DDLType renders the column's type as it appears in CREATE TABLE.
func (c *ColumnProfile) DDLType() string {
	if c.SQLType == TypeVarchar && c.MaxLength > 0 {
		return "VARCHAR(" + strconv.Itoa(c.MaxLength) + ")"
	}
	return string(c.SQLType)
}

// IsNumeric reports whether the column carries a numeric type.
func (c *ColumnProfile) IsNumeric() bool {
	switch c.SQLType {
	case TypeInteger, TypeBigint, TypeFloat:
		return true
	}
	return false
}

// IsTextual reports whether the column carries a string type.
func (c *ColumnProfile) IsTextual() bool {
	return c.SQLType == TypeVarchar || c.SQLType == TypeText
}

// ColumnStats carries per-column uniqueness statistics for the stats endpoint.
type ColumnStats struct {
	Name              string  `json:"name"`
	TotalRows         int     `json:"total_rows"`
	UniqueCount       int     `json:"unique_count"`
	NullCount         int     `json:"null_count"`
	NonNullCount      int     `json:"non_null_count"`
	IsUnique          bool    `json:"is_unique"`
	HasNulls          bool    `json:"has_nulls"`
	SuitableForPK     bool    `json:"suitable_for_pk"`
	UniquenessPercent float64 `json:"uniqueness_percent"`
}
