package models

// AnalyzeResult is the full schema-inference output for one uploaded file.
type AnalyzeResult struct {
	TableName         string           `json:"table_name"`
	RowCount          int              `json:"row_count"`
	Columns           []ColumnProfile  `json:"columns"`
	PrimaryKey        *string          `json:"primary_key"` // nil when no primary key is emitted
	SyntheticKeyAdded bool             `json:"synthetic_key_added"`
	ForeignKeys       []ForeignKey     `json:"foreign_keys"`
	CreateSQL         string           `json:"create_sql"`
	SampleData        []map[string]any `json:"sample_data"` // up to 5 rows
}

// PreviewResult is the header-detection output over raw file bytes.
type PreviewResult struct {
	Preview           []string `json:"preview"`
	TotalPreviewLines int      `json:"total_preview_lines"`
	HeaderDetection
}

// NormalizeResult is the SQL Safety Normalizer's output. OriginalText always
// retains the unmodified generator output for audit.
type NormalizeResult struct {
	SafeSQL      string   `json:"safe_sql"`
	Warnings     []string `json:"warnings"`
	OriginalText string   `json:"original_text"`
}

// QueryRunResult holds rows returned by the sink for a normalized query.
type QueryRunResult struct {
	Columns  []string         `json:"columns"`
	Rows     []map[string]any `json:"rows"`
	RowCount int              `json:"row_count"`
}

// SinkInfo identifies the database backing the service.
type SinkInfo struct {
	Version  string `json:"version"`
	Database string `json:"database"`
	User     string `json:"user"`
}

// TableInfo describes one materialized table for schema listings.
type TableInfo struct {
	Name     string `json:"name"`
	RowCount int64  `json:"row_count"`
}

// SchemaContext is the database schema description handed to the generator
// and to the SQL Safety Normalizer's rewrite rules.
type SchemaContext struct {
	// DDL is the textual CREATE TABLE rendition used in the prompt.
	DDL string
	// Tables maps table name -> column name -> type, for rewrite rules.
	Tables map[string]map[string]SQLType
	// NaturalKeys maps table name -> the natural key column to use in joins
	// instead of a surrogate id, for tables that have one.
	NaturalKeys map[string]string
}

// TableNames returns the known table names in no particular order.
func (s *SchemaContext) TableNames() []string {
	names := make([]string, 0, len(s.Tables))
	for name := range s.Tables {
		names = append(names, name)
	}
	return names
}
