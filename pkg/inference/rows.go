package inference

import "github.com/StonerSensei/nlp-analytics/pkg/models"

// ConvertRows turns the frame's string cells into sink-ready values matching
// the profiled column types: nulls become nil, numeric and boolean cells
// become typed Go values, everything else stays a string. Row and column
// order follow the frame, which is the order the load plan's column mapping
// was built in.
func ConvertRows(frame *Frame, profiles []models.ColumnProfile) [][]any {
	rows := make([][]any, 0, len(frame.Rows))
	for _, raw := range frame.Rows {
		row := make([]any, len(profiles))
		for i, p := range profiles {
			if i >= len(raw) || isNullCell(raw[i]) {
				row[i] = nil
				continue
			}
			row[i] = convertValue(raw[i], p.SQLType)
		}
		rows = append(rows, row)
	}
	return rows
}

// SampleRows returns up to limit leading rows as JSON-shaped maps keyed by
// sanitized column name, with the same type conversion the loader uses.
func SampleRows(frame *Frame, profiles []models.ColumnProfile, limit int) []map[string]any {
	samples := make([]map[string]any, 0, limit)
	for _, raw := range frame.Rows {
		if len(samples) == limit {
			break
		}
		sample := make(map[string]any, len(profiles))
		for i, p := range profiles {
			if i >= len(raw) || isNullCell(raw[i]) {
				sample[p.Name] = nil
				continue
			}
			sample[p.Name] = convertValue(raw[i], p.SQLType)
		}
		samples = append(samples, sample)
	}
	return samples
}
