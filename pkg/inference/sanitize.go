package inference

import (
	"regexp"
	"strings"
)

// nonWordPattern matches every character that is not a word character.
var nonWordPattern = regexp.MustCompile(`[^\w]`)

// reservedWords are SQL keywords that cannot stand alone as column names.
// A colliding name gets a "_col" suffix instead of being rejected.
var reservedWords = map[string]bool{
	"select": true,
	"from":   true,
	"where":  true,
	"table":  true,
	"order":  true,
	"group":  true,
}

// SanitizeColumnName converts an arbitrary header cell into a valid SQL
// identifier. The transformation is deterministic and idempotent:
// sanitizing an already-sanitized name is a no-op.
func SanitizeColumnName(name string) string {
	name = nonWordPattern.ReplaceAllString(name, "_")
	name = strings.ToLower(name)
	if name == "" {
		return "col"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "col_" + name
	}
	if reservedWords[name] {
		name = name + "_col"
	}
	return name
}

// SanitizeTableName converts a filename into a valid table name. The file
// extension (everything after the last dot) is dropped first.
func SanitizeTableName(filename string) string {
	name := filename
	if idx := strings.LastIndex(name, "."); idx > 0 {
		name = name[:idx]
	}
	name = nonWordPattern.ReplaceAllString(name, "_")
	name = strings.ToLower(name)
	if name == "" {
		return "uploaded_table"
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "table_" + name
	}
	return name
}
