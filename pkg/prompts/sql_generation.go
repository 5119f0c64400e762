// Package prompts builds the text-generation prompts for natural-language
// queries against uploaded tables.
package prompts

import (
	"fmt"
	"regexp"
	"strings"
)

// selectSeed is appended to the SQL generation prompt so the model continues
// an already-started statement instead of inventing preamble. SeedCompletion
// glues it back onto completions that honored the seed.
const selectSeed = "### SQL Query:\nSELECT"

var createTablePattern = regexp.MustCompile(`CREATE TABLE(?: IF NOT EXISTS)? "?(\w+)"?`)

// BuildSQLGenerationPrompt creates the prompt that converts a natural-language
// question into a PostgreSQL SELECT over the given schema DDL. Table names are
// called out explicitly with an anti-pluralization rule: small code models
// reliably invent "tables" from "table" unless told not to.
func BuildSQLGenerationPrompt(question, schemaDDL, additionalContext string) string {
	var prompt strings.Builder

	prompt.WriteString("### Instructions:\n")
	prompt.WriteString("Convert the question into a valid PostgreSQL SELECT query.\n\n")

	tableNames := extractTableNames(schemaDDL)
	if len(tableNames) > 0 {
		prompt.WriteString("CRITICAL - TABLE NAMES:\n")
		for _, name := range tableNames {
			prompt.WriteString(fmt.Sprintf("  - %q (EXACT name, do not add \"s\")\n", name))
		}
	}
	prompt.WriteString("RULES:\n")
	prompt.WriteString("1. Use EXACT table names listed above - NEVER add 's' to pluralize\n")
	prompt.WriteString("2. Always use double quotes: \"table_name\"\n")
	prompt.WriteString("3. Return ONLY the SQL query - no explanations or markdown\n")
	prompt.WriteString("4. Use table aliases for joins: FROM \"table1\" t1\n\n")

	prompt.WriteString("### Database Schema:\n")
	prompt.WriteString(schemaDDL)
	prompt.WriteString("\n\n### Question:\n")
	prompt.WriteString(question)
	prompt.WriteString("\n\n")

	if additionalContext != "" {
		prompt.WriteString("### Additional Context:\n")
		prompt.WriteString(additionalContext)
		prompt.WriteString("\n\n")
	}

	prompt.WriteString(selectSeed)
	return prompt.String()
}

// SeedCompletion reconstructs the full statement from a completion of the
// seeded prompt. A completion that contains no SELECT of its own is a
// continuation of the seed and gets it glued back; anything that already
// carries a SELECT is passed through for the normalizer to extract.
func SeedCompletion(completion string) string {
	if strings.Contains(strings.ToUpper(completion), "SELECT") {
		return completion
	}
	trimmed := strings.TrimSpace(completion)
	if trimmed == "" {
		return completion
	}
	return "SELECT " + trimmed
}

func extractTableNames(schemaDDL string) []string {
	matches := createTablePattern.FindAllStringSubmatch(schemaDDL, -1)
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return names
}
