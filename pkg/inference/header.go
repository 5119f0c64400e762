// Package inference implements the schema-inference engine: header
// detection, column type profiling, key inference, and DDL synthesis for
// messy CSV exports. Everything in this package is a pure function of its
// input; process-wide configuration (keyword lists, type ladder) is
// immutable, so concurrent requests share nothing mutable.
package inference

import (
	"encoding/csv"
	"fmt"
	"strings"

	"github.com/StonerSensei/nlp-analytics/pkg/models"
)

// headerKeywords are cell substrings that commonly appear in header rows of
// tabular exports. Each match contributes 2 points to a line's score.
var headerKeywords = []string{
	"id", "name", "date", "time", "patient", "study", "bill",
	"account", "number", "code", "type", "status", "value",
	"amount", "total", "count", "age", "gender", "address",
}

// maxPossibleScore is the theoretical maximum across all heuristics, used to
// scale raw scores into a 0-100 confidence percentage.
const maxPossibleScore = 15

// lookaheadLines is how many subsequent non-blank lines the structural
// consistency heuristic inspects.
const lookaheadLines = 4

// SplitLines decodes raw file bytes into text lines, truncated to limit.
// Invalid UTF-8 sequences are dropped rather than failing the whole file;
// trailing blank lines are not part of the preview.
func SplitLines(content []byte, limit int) []string {
	text := strings.ToValidUTF8(string(content), "")
	lines := strings.Split(text, "\n")
	if len(lines) > limit {
		lines = lines[:limit]
	}
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// LocateHeader scores each line as a header candidate and returns the best
// one. Lines beyond previewLimit are never inspected: bounded latency on
// arbitrarily large files matters more than completeness. When no line is
// eligible the result falls back to row 0 with 50% confidence; callers must
// treat that as low-confidence, not as a failure.
func LocateHeader(lines []string, previewLimit int) models.HeaderDetection {
	if len(lines) > previewLimit {
		lines = lines[:previewLimit]
	}

	var candidates []models.HeaderCandidate

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		row, err := splitDelimited(line)
		if err != nil || len(row) < 2 {
			continue
		}

		score := 0
		var reasons []string

		// Heuristic 1: cells containing known header keywords.
		keywordMatches := 0
		for _, cell := range row {
			lower := strings.ToLower(cell)
			for _, kw := range headerKeywords {
				if strings.Contains(lower, kw) {
					keywordMatches++
					break
				}
			}
		}
		if keywordMatches > 0 {
			score += keywordMatches * 2
			reasons = append(reasons, fmt.Sprintf("%d header keywords found", keywordMatches))
		}

		// Heuristic 2: headers are rarely all-numeric.
		allText := true
		for _, cell := range row {
			if isNumericToken(cell) {
				allText = false
				break
			}
		}
		if allText {
			score += 3
			reasons = append(reasons, "All columns are text (not numbers)")
		}

		// Heuristic 3: every cell has content.
		allFilled := true
		for _, cell := range row {
			if strings.TrimSpace(cell) == "" {
				allFilled = false
				break
			}
		}
		if allFilled {
			score += 2
			reasons = append(reasons, "No empty columns")
		}

		// Heuristic 4: snake_case is common in machine-written headers.
		underscoreCount := 0
		for _, cell := range row {
			if strings.Contains(cell, "_") {
				underscoreCount++
			}
		}
		if underscoreCount > 0 {
			score += underscoreCount
			reasons = append(reasons, fmt.Sprintf("%d columns with underscores", underscoreCount))
		}

		// Heuristic 5: headers precede structurally regular data.
		if consistent, total := lookaheadConsistency(lines, i, len(row)); total > 0 {
			if float64(consistent) >= float64(total)*0.8 {
				score += 3
				reasons = append(reasons, fmt.Sprintf("Consistent column count with next %d rows", consistent))
			}
		}

		// Heuristic 6: line 0 is often a metadata banner.
		if i == 0 {
			score--
		}

		confidence := float64(score) / maxPossibleScore * 100
		if confidence > 100 {
			confidence = 100
		}

		candidates = append(candidates, models.HeaderCandidate{
			RowIndex:    i,
			Score:       score,
			Confidence:  confidence,
			Reasons:     reasons,
			ColumnCount: len(row),
		})
	}

	if len(candidates) == 0 {
		return models.HeaderDetection{
			ChosenRow:  0,
			Confidence: 50,
			SkipRows:   []int{},
			Reasoning:  "No valid rows found, defaulting to row 0",
		}
	}

	// Highest score wins; ties go to the lowest row index because we only
	// replace on a strictly greater score.
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Score > best.Score {
			best = c
		}
	}

	skipRows := make([]int, 0, best.RowIndex)
	for r := 0; r < best.RowIndex; r++ {
		skipRows = append(skipRows, r)
	}

	return models.HeaderDetection{
		ChosenRow:  best.RowIndex,
		Confidence: best.Confidence,
		SkipRows:   skipRows,
		Reasoning:  fmt.Sprintf("Row %d: %s", best.RowIndex, strings.Join(best.Reasons, "; ")),
		Candidates: candidates,
	}
}

// lookaheadConsistency counts how many of the next non-blank lines parse to
// the same cell count as the candidate line.
func lookaheadConsistency(lines []string, index, want int) (consistent, total int) {
	for _, line := range lines[min(index+1, len(lines)):min(index+1+lookaheadLines, len(lines))] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		row, err := splitDelimited(line)
		if err != nil {
			continue
		}
		total++
		if len(row) == want {
			consistent++
		}
	}
	return consistent, total
}

// splitDelimited parses a single line as one CSV record.
func splitDelimited(line string) ([]string, error) {
	r := csv.NewReader(strings.NewReader(line))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	return r.Read()
}

// isNumericToken reports whether a cell looks like a plain integer or
// decimal token. Separators and signs are ignored so "1,234.56" and "-7"
// both count as numeric.
func isNumericToken(cell string) bool {
	s := strings.TrimSpace(cell)
	s = strings.NewReplacer(",", "", ".", "", "-", "").Replace(s)
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
