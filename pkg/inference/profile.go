package inference

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/StonerSensei/nlp-analytics/pkg/models"
)

// varcharLadder holds the rounded VARCHAR lengths, smallest first. Observed
// lengths round up to the next rung; anything past the last rung becomes
// TEXT so real data is never truncated.
var varcharLadder = []int{50, 100, 255, 500, 1000, 2000}

// int32Boundary is the 32-bit signed maximum; integral columns whose
// magnitude exceeds it become BIGINT.
const int32Boundary = 2147483647

// nullTokens are cell values treated as null after lowercasing and trimming.
var nullTokens = map[string]bool{
	"":     true,
	"nan":  true,
	"null": true,
	"none": true,
	"n/a":  true,
	"na":   true,
}

// dateLayouts are the formats the profiler attempts, most common first.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006/01/02",
	"01/02/2006",
	"1/2/2006",
	"02-Jan-2006",
	"Jan 2, 2006",
}

// ProfileColumns inspects every column of the frame and infers a canonical
// type plus nullability, uniqueness, and length bounds. Type detection uses
// up to sampleSize values per column; VARCHAR lengths are computed from the
// full column so the DDL never truncates. A column that matches no rule
// falls through to VARCHAR/TEXT - profiling never fails on a bad cell.
func ProfileColumns(frame *Frame, sampleSize int) []models.ColumnProfile {
	profiles := make([]models.ColumnProfile, 0, len(frame.Headers))

	for i, header := range frame.Headers {
		values := frame.Column(i)
		profiles = append(profiles, profileColumn(header, values, sampleSize))
	}

	return profiles
}

func profileColumn(header string, values []string, sampleSize int) models.ColumnProfile {
	total := len(values)

	// Normalize to null before any counting. Malformed numeric cells that
	// would parse to NaN or infinity are nulls too: non-finite values can
	// never appear in sample values or JSON output.
	nonNull := make([]string, 0, total)
	for _, v := range values {
		if isNullCell(v) {
			continue
		}
		nonNull = append(nonNull, strings.TrimSpace(v))
	}
	nullCount := total - len(nonNull)

	sample := nonNull
	if len(sample) > sampleSize {
		sample = sample[:sampleSize]
	}

	sqlType, maxLength := detectType(sample, nonNull)

	distinct := countDistinct(nonNull)
	isUnique := len(nonNull) > 0 && distinct == len(nonNull)

	return models.ColumnProfile{
		Name:          SanitizeColumnName(header),
		OriginalName:  header,
		SQLType:       sqlType,
		MaxLength:     maxLength,
		Nullable:      nullCount > 0,
		NullCount:     nullCount,
		NonNullCount:  len(nonNull),
		DistinctCount: distinct,
		IsUnique:      isUnique,
		SampleValues:  sampleValues(nonNull, sqlType),
	}
}

// detectType applies the detection ladder to the sample: BOOLEAN, then DATE,
// then numeric (INTEGER/BIGINT/FLOAT), then VARCHAR/TEXT as the universal
// fallback. maxLength is only set for VARCHAR.
func detectType(sample, full []string) (models.SQLType, int) {
	if len(sample) == 0 {
		return models.TypeText, 0
	}

	if allBoolean(sample) {
		return models.TypeBoolean, 0
	}
	if allDates(sample) {
		return models.TypeDate, 0
	}
	if sqlType, ok := numericType(sample); ok {
		return sqlType, 0
	}

	maxLen := 0
	for _, v := range full {
		if len(v) > maxLen {
			maxLen = len(v)
		}
	}
	if maxLen > varcharLadder[len(varcharLadder)-1] {
		return models.TypeText, 0
	}
	return models.TypeVarchar, RoundVarcharLength(maxLen)
}

// RoundVarcharLength rounds an observed maximum string length up to the
// next rung of the ladder. Monotonic: L1 < L2 implies round(L1) <= round(L2).
func RoundVarcharLength(length int) int {
	for _, rung := range varcharLadder {
		if length <= rung {
			return rung
		}
	}
	return varcharLadder[len(varcharLadder)-1]
}

func allBoolean(sample []string) bool {
	for _, v := range sample {
		switch strings.ToLower(v) {
		case "true", "false":
		default:
			return false
		}
	}
	return true
}

func allDates(sample []string) bool {
	for _, v := range sample {
		if !parsesAsDate(v) {
			return false
		}
	}
	return true
}

func parsesAsDate(v string) bool {
	for _, layout := range dateLayouts {
		if _, err := time.Parse(layout, v); err == nil {
			return true
		}
	}
	return false
}

// numericType reports the numeric classification of the sample, if all
// values parse as finite numbers: INTEGER when integral within the 32-bit
// signed boundary, BIGINT beyond it, FLOAT when any value is fractional.
func numericType(sample []string) (models.SQLType, bool) {
	allIntegral := true
	maxMagnitude := 0.0

	for _, v := range sample {
		cleaned := strings.ReplaceAll(v, ",", "")
		f, err := strconv.ParseFloat(cleaned, 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return "", false
		}
		if f != math.Trunc(f) {
			allIntegral = false
		}
		if math.Abs(f) > maxMagnitude {
			maxMagnitude = math.Abs(f)
		}
	}

	if !allIntegral {
		return models.TypeFloat, true
	}
	if maxMagnitude > int32Boundary {
		return models.TypeBigint, true
	}
	return models.TypeInteger, true
}

// sampleValues returns up to 3 non-null values converted to the inferred
// type so JSON output carries typed, finite values.
func sampleValues(nonNull []string, sqlType models.SQLType) []any {
	out := make([]any, 0, 3)
	for _, v := range nonNull {
		if len(out) == 3 {
			break
		}
		out = append(out, convertValue(v, sqlType))
	}
	return out
}

// convertValue coerces a raw cell into the Go value matching the column's
// inferred type, falling back to the raw string when parsing fails.
func convertValue(v string, sqlType models.SQLType) any {
	switch sqlType {
	case models.TypeInteger, models.TypeBigint:
		cleaned := strings.ReplaceAll(v, ",", "")
		if n, err := strconv.ParseInt(cleaned, 10, 64); err == nil {
			return n
		}
		// Integral values written with a decimal point ("3.0") still land here.
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return int64(f)
		}
	case models.TypeFloat:
		cleaned := strings.ReplaceAll(v, ",", "")
		if f, err := strconv.ParseFloat(cleaned, 64); err == nil && !math.IsNaN(f) && !math.IsInf(f, 0) {
			return f
		}
	case models.TypeBoolean:
		return strings.EqualFold(v, "true")
	}
	return v
}

// isNullCell reports whether a raw cell normalizes to null. Cells that
// parse to non-finite floats count as null so NaN and infinity never reach
// null accounting, uniqueness, or the wire.
func isNullCell(v string) bool {
	trimmed := strings.ToLower(strings.TrimSpace(v))
	if nullTokens[trimmed] {
		return true
	}
	if f, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return math.IsNaN(f) || math.IsInf(f, 0)
	}
	return false
}

func countDistinct(values []string) int {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
