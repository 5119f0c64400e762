package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StonerSensei/nlp-analytics/pkg/models"
)

func TestDetectTypeScenarios(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   models.SQLType
	}{
		{"small integers", []string{"1", "2", "3"}, models.TypeInteger},
		{"exceeds 32-bit boundary", []string{"1", "2", "3000000000"}, models.TypeBigint},
		{"fractional values", []string{"1.0", "2.5", "3"}, models.TypeFloat},
		{"iso dates", []string{"2023-01-01", "2023-02-15"}, models.TypeDate},
		{"booleans", []string{"true", "false", "True"}, models.TypeBoolean},
		{"plain text", []string{"alpha", "beta"}, models.TypeVarchar},
		{"mixed text and numbers", []string{"1", "two"}, models.TypeVarchar},
		{"negative at boundary", []string{"-2147483647"}, models.TypeInteger},
		{"just past boundary", []string{"2147483648"}, models.TypeBigint},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := detectType(tt.values, tt.values)
			if got != tt.want {
				t.Errorf("detectType(%v) = %s, want %s", tt.values, got, tt.want)
			}
		})
	}
}

func TestRoundVarcharLengthLadder(t *testing.T) {
	tests := []struct {
		length int
		want   int
	}{
		{0, 50},
		{50, 50},
		{51, 100},
		{100, 100},
		{101, 255},
		{255, 255},
		{256, 500},
		{500, 500},
		{501, 1000},
		{1001, 2000},
		{5000, 2000},
	}

	for _, tt := range tests {
		if got := RoundVarcharLength(tt.length); got != tt.want {
			t.Errorf("RoundVarcharLength(%d) = %d, want %d", tt.length, got, tt.want)
		}
	}
}

func TestRoundVarcharLengthMonotonic(t *testing.T) {
	prev := RoundVarcharLength(0)
	for l := 1; l <= 3000; l++ {
		cur := RoundVarcharLength(l)
		if cur < prev {
			t.Fatalf("ladder not monotonic: round(%d)=%d < round(%d)=%d", l, cur, l-1, prev)
		}
		prev = cur
	}
}

func TestProfileColumnNullAccounting(t *testing.T) {
	values := []string{"a", "", "b", "NaN", "c", "null"}

	p := profileColumn("label", values, 1000)

	require.Equal(t, 3, p.NullCount)
	require.Equal(t, 3, p.NonNullCount)
	assert.Equal(t, len(values), p.NullCount+p.NonNullCount,
		"null_count + non_null_count must equal total rows")
	assert.True(t, p.Nullable)
	assert.True(t, p.IsUnique, "three distinct non-null values")
}

func TestProfileColumnEmptyIsNeverUnique(t *testing.T) {
	p := profileColumn("ghost", []string{"", "NaN", ""}, 1000)

	if p.IsUnique {
		t.Error("a column with zero non-null values must not be unique")
	}
	if p.NonNullCount != 0 {
		t.Errorf("expected 0 non-null values, got %d", p.NonNullCount)
	}
}

func TestProfileColumnNonFiniteNeverLeaks(t *testing.T) {
	values := []string{"1.5", "inf", "-Infinity", "2.5", "nan"}

	p := profileColumn("reading", values, 1000)

	require.Equal(t, models.TypeFloat, p.SQLType)
	assert.Equal(t, 3, p.NullCount, "inf, -Infinity and nan all normalize to null")
	for _, v := range p.SampleValues {
		f, ok := v.(float64)
		require.True(t, ok, "sample value %v should be a float", v)
		assert.False(t, f != f, "NaN leaked into sample values")
	}
}

func TestProfileColumnSampleValues(t *testing.T) {
	p := profileColumn("qty", []string{"10", "20", "30", "40"}, 1000)

	require.Len(t, p.SampleValues, 3)
	assert.Equal(t, int64(10), p.SampleValues[0])
	assert.Equal(t, models.TypeInteger, p.SQLType)
}

func TestProfileColumnVarcharLengthFromFullColumn(t *testing.T) {
	// The sample only sees short values; the length bound must still come
	// from the full column so nothing is truncated.
	values := []string{"ab", "cd", "this is a deliberately longer value that pushes the rung past fifty characters total"}

	p := profileColumn("notes", values, 2)

	require.Equal(t, models.TypeVarchar, p.SQLType)
	assert.Equal(t, 100, p.MaxLength)
}

func TestProfileColumnsDropsArtifacts(t *testing.T) {
	content := []byte("id,Unnamed: 1,name,empty\n1,,alpha,\n2,,beta,\n")

	frame, err := ParseFrame(content, 0, nil)
	require.NoError(t, err)

	require.Equal(t, []string{"id", "name"}, frame.Headers)

	profiles := ProfileColumns(frame, 1000)
	require.Len(t, profiles, 2)
	assert.Equal(t, "id", profiles[0].Name)
	assert.Equal(t, "name", profiles[1].Name)
}
