package inference

import (
	"testing"
)

func TestSanitizeColumnName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Patient Name", "patient_name"},
		{"bill-id", "bill_id"},
		{"Amount ($)", "amount____"},
		{"2nd_opinion", "col_2nd_opinion"},
		{"select", "select_col"},
		{"from", "from_col"},
		{"already_clean", "already_clean"},
		{"", "col"},
		{"UPPER", "upper"},
	}

	for _, tt := range tests {
		if got := SanitizeColumnName(tt.input); got != tt.want {
			t.Errorf("SanitizeColumnName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestSanitizeColumnNameIdempotent(t *testing.T) {
	inputs := []string{
		"Patient Name", "2nd_opinion", "select", "order", "",
		"weird!!chars##", "already_fine", "123", "Amount ($)",
	}

	for _, input := range inputs {
		once := SanitizeColumnName(input)
		twice := SanitizeColumnName(once)
		if once != twice {
			t.Errorf("sanitize not idempotent for %q: first %q, second %q", input, once, twice)
		}
	}
}

func TestSanitizeTableName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"billing_2023.csv", "billing_2023"},
		{"Patient Data.csv", "patient_data"},
		{"2023-export.csv", "table_2023_export"},
		{"report", "report"},
		{"", "uploaded_table"},
	}

	for _, tt := range tests {
		if got := SanitizeTableName(tt.input); got != tt.want {
			t.Errorf("SanitizeTableName(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
