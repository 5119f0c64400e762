package inference

import (
	"regexp"
	"strings"

	"github.com/StonerSensei/nlp-analytics/pkg/apperrors"
	"github.com/StonerSensei/nlp-analytics/pkg/models"
)

// foreignKeyPattern matches the <stem>_id naming convention.
var foreignKeyPattern = regexp.MustCompile(`^(\w+)_id$`)

// InferKeys produces the primary and foreign key decisions for a set of
// column profiles.
//
// An explicit override is honored verbatim after validating that the named
// column exists - the caller takes responsibility even for a column that is
// not provably unique. Without an override the heuristic ladder runs:
// a column named exactly "id" that is unique, then any unique non-null
// integer column, then any unique non-null column. When nothing qualifies
// the decision stays Unspecified and the synthesizer adds a surrogate key.
func InferKeys(profiles []models.ColumnProfile, override models.PrimaryKeyChoice) (models.KeyDecision, error) {
	decision := models.KeyDecision{
		ForeignKeys: inferForeignKeys(profiles),
	}

	if name, ok := override.Column(); ok {
		if !columnExists(profiles, name) {
			return models.KeyDecision{}, apperrors.New(apperrors.ClassValidation,
				"primary key column %q not found; valid columns: %s",
				name, strings.Join(columnNames(profiles), ", "))
		}
		decision.PrimaryKey = models.PKNamed(name)
		return decision, nil
	}
	if override.IsNone() {
		decision.PrimaryKey = models.PKNone()
		return decision, nil
	}

	if name, found := detectPrimaryKey(profiles); found {
		decision.PrimaryKey = models.PKNamed(name)
	} else {
		// No suitable column: leave Unspecified so the synthesizer
		// prepends a synthetic surrogate key.
		decision.PrimaryKey = models.PKUnspecified()
	}
	return decision, nil
}

func detectPrimaryKey(profiles []models.ColumnProfile) (string, bool) {
	for _, p := range profiles {
		if p.Name == "id" && p.IsUnique {
			return p.Name, true
		}
	}
	for _, p := range profiles {
		if p.IsUnique && !p.Nullable && (p.SQLType == models.TypeInteger || p.SQLType == models.TypeBigint) {
			return p.Name, true
		}
	}
	for _, p := range profiles {
		if p.IsUnique && !p.Nullable {
			return p.Name, true
		}
	}
	return "", false
}

// inferForeignKeys proposes a foreign key for every column matching the
// <stem>_id convention. This is a naming heuristic only: nothing here
// checks the referenced table exists; the sink rejects invalid references
// at execution time.
func inferForeignKeys(profiles []models.ColumnProfile) []models.ForeignKey {
	fks := make([]models.ForeignKey, 0)
	for _, p := range profiles {
		if p.Name == "id" {
			continue
		}
		m := foreignKeyPattern.FindStringSubmatch(p.Name)
		if m == nil {
			continue
		}
		fks = append(fks, models.ForeignKey{
			Column:           p.Name,
			ReferencesTable:  m[1],
			ReferencesColumn: "id",
		})
	}
	return fks
}

func columnExists(profiles []models.ColumnProfile, name string) bool {
	for _, p := range profiles {
		if p.Name == name {
			return true
		}
	}
	return false
}

func columnNames(profiles []models.ColumnProfile) []string {
	names := make([]string, len(profiles))
	for i, p := range profiles {
		names[i] = p.Name
	}
	return names
}
