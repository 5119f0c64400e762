package sqlsafe

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/jinzhu/inflection"

	"github.com/StonerSensei/nlp-analytics/pkg/models"
)

// repairJoins rewrites join conditions that reference the surrogate id of a
// table known to carry a natural key. Generators routinely join on t.id even
// when the loaded data keys on something like t.patient_id.
func repairJoins(text string, schema *models.SchemaContext, warnings []string) (string, []string) {
	for _, table := range sortedKeys(schema.NaturalKeys) {
		natural := schema.NaturalKeys[table]
		if natural == "" || natural == "id" {
			continue
		}
		pat := regexp.MustCompile(`(?i)(^|[^\w"])"?` + regexp.QuoteMeta(table) + `"?\."?id"?\b`)
		if !pat.MatchString(text) {
			continue
		}
		text = pat.ReplaceAllString(text, `${1}"`+table+`"."`+natural+`"`)
		warnings = append(warnings, fmt.Sprintf(
			"rewrote join on %s.id to natural key %s.%s", table, table, natural))
	}
	return text, warnings
}

// stripTextCasts removes ::bigint / ::integer casts applied to columns the
// schema knows to be text-typed. Such casts fail outright on non-numeric data.
func stripTextCasts(text string, schema *models.SchemaContext, warnings []string) (string, []string) {
	seen := map[string]bool{}
	var textColumns []string
	for _, cols := range schema.Tables {
		for col, typ := range cols {
			if (typ == models.TypeText || typ == models.TypeVarchar) && !seen[col] {
				seen[col] = true
				textColumns = append(textColumns, col)
			}
		}
	}
	sort.Strings(textColumns)

	for _, col := range textColumns {
		pat := regexp.MustCompile(`(?i)(^|[^\w"])("?` + regexp.QuoteMeta(col) + `"?)::(?:bigint|integer|int)\b`)
		if !pat.MatchString(text) {
			continue
		}
		text = pat.ReplaceAllString(text, `${1}${2}`)
		warnings = append(warnings, fmt.Sprintf(
			"stripped numeric cast on text column %q", col))
	}
	return text, warnings
}

// repairPluralization rewrites references to a pluralized form of a known
// table back to the exact table name. Matches are whole words delimited by
// quotes, whitespace, or statement boundaries, so an alias that merely shares
// the prefix survives. The replacement is emitted quoted, which is how the
// tables were created.
func repairPluralization(text string, schema *models.SchemaContext, warnings []string) (string, []string) {
	for _, table := range sortedTableNames(schema) {
		for _, plural := range pluralForms(table) {
			if _, known := schema.Tables[plural]; known {
				continue
			}
			pat := regexp.MustCompile(`(?i)(^|[^\w"])"?` + regexp.QuoteMeta(plural) + `"?([^\w"]|$)`)
			if !pat.MatchString(text) {
				continue
			}
			// The trailing group consumes the delimiter, so adjacent
			// occurrences need another pass. The replacement never contains
			// the plural, so this terminates.
			for pat.MatchString(text) {
				text = pat.ReplaceAllString(text, `${1}"`+table+`"${2}`)
			}
			warnings = append(warnings, fmt.Sprintf(
				"rewrote %q to known table %q", plural, table))
		}
	}
	return text, warnings
}

// pluralForms returns the plural spellings a generator is likely to invent for
// a table name. The naive +s form is checked first since it is the dominant
// mistake; the inflected form covers irregulars like category/categories.
func pluralForms(table string) []string {
	forms := []string{table + "s"}
	if p := inflection.Plural(table); p != table && p != table+"s" {
		forms = append(forms, p)
	}
	return forms
}

var limitClausePattern = regexp.MustCompile(`(?i)\blimit\b`)

// injectRowLimit appends LIMIT n when no row-limit clause is present. The
// check is textual over the statement with string literals masked out, so a
// LIMIT inside a literal does not count as a bound. A bare column alias
// spelled "limit" would still suppress injection; the cap is advisory, not
// exact.
func injectRowLimit(text string, limit int, warnings []string) (string, []string) {
	masked, _ := maskStringLiterals(text)
	if limitClausePattern.MatchString(masked) {
		return text, warnings
	}
	text = fmt.Sprintf("%s LIMIT %d", text, limit)
	warnings = append(warnings, fmt.Sprintf("no row limit present; appended LIMIT %d", limit))
	return text, warnings
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sortedTableNames(schema *models.SchemaContext) []string {
	names := schema.TableNames()
	sort.Strings(names)
	return names
}
