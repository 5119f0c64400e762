package inference

import (
	"encoding/csv"
	"strings"

	"github.com/StonerSensei/nlp-analytics/pkg/apperrors"
)

// Frame is a parsed tabular structure positioned at a chosen header row.
// Columns whose header is blank or auto-numbered ("Unnamed: 0") and columns
// that are entirely blank are dropped before profiling; they are spreadsheet
// artifacts, not data.
type Frame struct {
	Headers []string   // original header cells, artifact columns removed
	Rows    [][]string // data rows, each exactly len(Headers) wide
}

// ParseFrame decodes raw bytes as CSV and positions the frame at headerRow,
// excluding all prior rows plus any caller-supplied skipRows (absolute
// record indices). Ragged data rows are padded or truncated to the header
// width. Returns a ClassParse error when the content cannot be read as
// delimited text at all.
func ParseFrame(content []byte, headerRow int, skipRows []int) (*Frame, error) {
	text := strings.ToValidUTF8(string(content), "")

	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	records, err := r.ReadAll()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ClassParse, err, "cannot parse content as delimited text")
	}
	if headerRow < 0 || headerRow >= len(records) {
		return nil, apperrors.New(apperrors.ClassParse, "header row %d is out of range (file has %d rows)", headerRow, len(records))
	}

	headers := records[headerRow]
	width := len(headers)

	skip := make(map[int]bool, len(skipRows))
	for _, r := range skipRows {
		skip[r] = true
	}

	rows := make([][]string, 0, len(records)-headerRow-1)
	for offset, rec := range records[headerRow+1:] {
		if skip[headerRow+1+offset] {
			continue
		}
		if isBlankRecord(rec) {
			continue
		}
		row := make([]string, width)
		copy(row, rec)
		rows = append(rows, row)
	}

	frame := &Frame{Headers: headers, Rows: rows}
	frame.dropArtifactColumns()
	if len(frame.Headers) == 0 {
		return nil, apperrors.New(apperrors.ClassParse, "no usable columns found")
	}
	return frame, nil
}

// Column returns all values of column i in row order.
func (f *Frame) Column(i int) []string {
	values := make([]string, len(f.Rows))
	for r, row := range f.Rows {
		values[r] = row[i]
	}
	return values
}

// RowCount returns the number of data rows.
func (f *Frame) RowCount() int {
	return len(f.Rows)
}

// dropArtifactColumns removes columns with blank or auto-numbered headers
// and columns whose every cell is blank after trimming.
func (f *Frame) dropArtifactColumns() {
	keep := make([]int, 0, len(f.Headers))
	for i, h := range f.Headers {
		name := strings.TrimSpace(h)
		if name == "" || strings.HasPrefix(strings.ToLower(name), "unnamed") {
			continue
		}
		if f.columnIsBlank(i) {
			continue
		}
		keep = append(keep, i)
	}
	if len(keep) == len(f.Headers) {
		return
	}

	headers := make([]string, len(keep))
	for n, i := range keep {
		headers[n] = f.Headers[i]
	}
	rows := make([][]string, len(f.Rows))
	for r, row := range f.Rows {
		slim := make([]string, len(keep))
		for n, i := range keep {
			slim[n] = row[i]
		}
		rows[r] = slim
	}
	f.Headers = headers
	f.Rows = rows
}

func (f *Frame) columnIsBlank(i int) bool {
	if len(f.Rows) == 0 {
		return false
	}
	for _, row := range f.Rows {
		if strings.TrimSpace(row[i]) != "" {
			return false
		}
	}
	return true
}

func isBlankRecord(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
