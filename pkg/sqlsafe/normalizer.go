// Package sqlsafe post-processes generator-produced SQL text before it is
// allowed anywhere near the database: it strips formatting artifacts, enforces
// SELECT-only execution, rewrites known naming mistakes against the live
// schema, and bounds result-set size. The rewrite rules are textual heuristics
// isolated behind Normalizer so they can later be swapped for a real statement
// parser without changing callers.
package sqlsafe

import (
	"regexp"
	"strings"

	"github.com/StonerSensei/nlp-analytics/pkg/apperrors"
	"github.com/StonerSensei/nlp-analytics/pkg/models"
)

const defaultRowLimit = 100

// Normalizer turns raw generator output into a single bounded SELECT
// statement. It is stateless and safe for concurrent use.
type Normalizer struct {
	rowLimit int
}

// New creates a Normalizer that appends LIMIT rowLimit to unbounded queries.
// A non-positive rowLimit falls back to the default of 100.
func New(rowLimit int) *Normalizer {
	if rowLimit <= 0 {
		rowLimit = defaultRowLimit
	}
	return &Normalizer{rowLimit: rowLimit}
}

// Normalize reduces raw generator text to executable SQL. Each cleanup step is
// independently idempotent. The returned result always carries the unmodified
// input in OriginalText, and every schema-driven rewrite is reported as a
// warning so callers can show the user what changed.
//
// If no SELECT statement can be recovered the error is classified
// apperrors.ClassRejectedQuery and nothing executable is returned. This is a
// hard security boundary: only read-only statements pass.
func (n *Normalizer) Normalize(raw string, schema *models.SchemaContext) (models.NormalizeResult, error) {
	result := models.NormalizeResult{OriginalText: raw}

	text, removed := stripArtifacts(raw)
	text = reattachSelect(text, removed)
	text = stripTrailingSemicolon(text)
	text = preferSelectBlock(text)
	text = stripTrailingSemicolon(text)

	if !startsWithSelect(text) {
		return result, apperrors.New(apperrors.ClassRejectedQuery,
			"no SELECT statement recoverable from generator output: %q", truncate(raw, 200))
	}
	if hasSemicolonOutsideStrings(text) {
		return result, apperrors.New(apperrors.ClassRejectedQuery,
			"multiple SQL statements are not permitted: %q", truncate(raw, 200))
	}

	var warnings []string
	if schema != nil {
		text, warnings = repairJoins(text, schema, warnings)
		text, warnings = stripTextCasts(text, schema, warnings)
		text, warnings = repairPluralization(text, schema, warnings)
	}
	text, warnings = injectRowLimit(text, n.rowLimit, warnings)
	warnings = append(warnings, scanStringLiterals(text)...)

	result.SafeSQL = text
	result.Warnings = warnings
	return result, nil
}

// artifactPrefixes are descriptive lead-ins that text generators commonly
// prepend to the actual statement. The first pattern also swallows an echoed
// prompt seed ("SQL Query:\nSELECT\n"), which reattachSelect compensates for.
var artifactPrefixes = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^\s*(?:###\s*)?sql query:\s*select\s*\n+`),
	regexp.MustCompile(`(?i)^\s*here(?:'s| is)?(?: the| your)? sql(?: query)?:?\s*`),
	regexp.MustCompile(`(?i)^\s*(?:###\s*)?sql query:\s*`),
	regexp.MustCompile(`(?i)^\s*(?:sql|query|answer):\s*`),
}

var fencePattern = regexp.MustCompile("(?s)```(?:sql)?\\s*(.*?)\\s*```")

// stripArtifacts removes code fences and descriptive prefixes. It returns the
// cleaned text and everything that was stripped, so the caller can tell
// whether the leading SELECT keyword went with it.
func stripArtifacts(raw string) (text, removed string) {
	text = strings.TrimSpace(raw)

	if m := fencePattern.FindStringSubmatch(text); m != nil {
		text = m[1]
	} else if i := strings.Index(text, "```"); i >= 0 {
		// Unterminated fence: take what follows the marker.
		rest := text[i+3:]
		rest = strings.TrimPrefix(rest, "sql")
		text = strings.TrimSpace(rest)
	}

	for {
		stripped := false
		for _, p := range artifactPrefixes {
			if loc := p.FindStringIndex(text); loc != nil && loc[0] == 0 {
				removed += text[:loc[1]]
				text = text[loc[1]:]
				stripped = true
			}
		}
		if !stripped {
			break
		}
	}
	return strings.TrimSpace(text), removed
}

// reattachSelect restores the SELECT keyword when prefix stripping consumed it
// along with an echoed prompt seed. It never invents a SELECT that was absent
// from the original text.
func reattachSelect(text, removed string) string {
	if startsWithSelect(text) || text == "" {
		return text
	}
	if strings.Contains(strings.ToUpper(removed), "SELECT") {
		return "SELECT " + text
	}
	return text
}

// preferSelectBlock picks the blank-line-separated block that starts with
// SELECT, discarding commentary the generator appended around the statement.
var blankLinePattern = regexp.MustCompile(`\n\s*\n`)

func preferSelectBlock(text string) string {
	blocks := blankLinePattern.Split(text, -1)
	if len(blocks) < 2 {
		return text
	}
	for _, block := range blocks {
		if startsWithSelect(block) {
			return strings.TrimSpace(block)
		}
	}
	return text
}

var selectPattern = regexp.MustCompile(`(?i)^\s*select\b`)

func startsWithSelect(text string) bool {
	return selectPattern.MatchString(text)
}

// stripTrailingSemicolon removes one trailing semicolon plus surrounding
// whitespace. Any semicolon that survives marks a second statement.
func stripTrailingSemicolon(text string) string {
	text = strings.TrimRight(text, " \t\n\r")
	if strings.HasSuffix(text, ";") {
		text = strings.TrimRight(strings.TrimSuffix(text, ";"), " \t\n\r")
	}
	return text
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
