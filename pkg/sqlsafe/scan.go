package sqlsafe

import (
	"fmt"
	"strings"

	libinjection "github.com/corazawaf/libinjection-go"
)

// maskStringLiterals walks the statement with a small quote-aware state
// machine and returns the text with the contents of single- and double-quoted
// regions blanked out, plus the collected single-quoted literal values.
// Handles both backslash escapes (\') and the SQL doubled-quote escape ('');
// the latter splits one literal into two collected pieces, which is fine for
// scanning purposes.
func maskStringLiterals(sqlText string) (string, []string) {
	const (
		stateNormal = iota
		stateSingleQuote
		stateDoubleQuote
	)

	var masked strings.Builder
	var literals []string
	var current strings.Builder
	state := stateNormal
	prev := rune(0)

	for _, ch := range sqlText {
		switch state {
		case stateNormal:
			masked.WriteRune(ch)
			switch ch {
			case '\'':
				state = stateSingleQuote
				current.Reset()
			case '"':
				state = stateDoubleQuote
			}
		case stateSingleQuote:
			if ch == '\'' && prev != '\\' {
				masked.WriteRune(ch)
				literals = append(literals, current.String())
				state = stateNormal
			} else {
				masked.WriteRune(' ')
				current.WriteRune(ch)
			}
		case stateDoubleQuote:
			if ch == '"' && prev != '\\' {
				masked.WriteRune(ch)
				state = stateNormal
			} else {
				masked.WriteRune(' ')
			}
		}
		prev = ch
	}

	return masked.String(), literals
}

// hasSemicolonOutsideStrings reports whether the statement contains a
// semicolon outside string literals. Since the trailing semicolon is stripped
// before this check, any hit means a second statement.
func hasSemicolonOutsideStrings(sqlText string) bool {
	masked, _ := maskStringLiterals(sqlText)
	return strings.ContainsRune(masked, ';')
}

// scanStringLiterals runs libinjection over every string literal in the final
// statement and reports a warning per suspicious value. The statement itself
// is already constrained to a single SELECT, so this is an advisory signal
// about data smuggled into literals, not a gate.
func scanStringLiterals(sqlText string) []string {
	_, literals := maskStringLiterals(sqlText)

	var warnings []string
	for _, lit := range literals {
		if lit == "" {
			continue
		}
		if isSQLi, fingerprint := libinjection.IsSQLi(lit); isSQLi {
			warnings = append(warnings, fmt.Sprintf(
				"string literal %q matches SQL injection fingerprint %s", truncate(lit, 60), fingerprint))
		}
	}
	return warnings
}
