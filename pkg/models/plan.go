package models

// ColumnMapping maps a source column of the uploaded file onto a destination
// column of the materialized table.
type ColumnMapping struct {
	Source      string `json:"source"`
	Destination string `json:"destination"`
}

// TableLoadPlan is the DDL/Load-Plan Synthesizer's output. It is immutable
// after creation and lives only for the duration of one upload request; the
// sink is the durable record.
type TableLoadPlan struct {
	TableName         string          `json:"table_name"`
	CreateDDL         string          `json:"create_sql"`
	ColumnMapping     []ColumnMapping `json:"column_mapping"`
	SyntheticKeyAdded bool            `json:"synthetic_key_added"`
}

// HeaderCandidate is the per-line score record of the Header Locator.
type HeaderCandidate struct {
	RowIndex    int      `json:"row_index"`
	Score       int      `json:"score"`
	Confidence  float64  `json:"confidence"`
	Reasons     []string `json:"reasons"`
	ColumnCount int      `json:"column_count"`
}

// HeaderDetection is the Header Locator's result.
type HeaderDetection struct {
	ChosenRow  int               `json:"detected_header_row"`
	Confidence float64           `json:"confidence"`
	SkipRows   []int             `json:"detected_skip_rows"`
	Reasoning  string            `json:"reasoning"`
	Candidates []HeaderCandidate `json:"candidates,omitempty"`
}
