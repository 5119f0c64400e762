package inference

import (
	"fmt"
	"strings"

	"github.com/StonerSensei/nlp-analytics/pkg/models"
)

// Synthesize combines column profiles and the key decision into a CREATE
// TABLE statement plus the load plan that maps source columns onto
// destination columns. Output is deterministic: identical inputs produce
// byte-identical DDL.
//
// PrimaryKey tri-state handling:
//   - Unspecified: a synthetic auto-incrementing "id" column is prepended
//     and SyntheticKeyAdded is set.
//   - ExplicitNone: no PRIMARY KEY clause is emitted anywhere.
//   - Named: that column's definition gains an inline PRIMARY KEY marker.
func Synthesize(tableName string, profiles []models.ColumnProfile, decision models.KeyDecision) models.TableLoadPlan {
	var defs []string
	mapping := make([]models.ColumnMapping, 0, len(profiles))

	syntheticKey := decision.PrimaryKey.IsUnspecified()
	if syntheticKey {
		defs = append(defs, fmt.Sprintf("    %s SERIAL PRIMARY KEY", quoteIdent(SurrogateKeyName(profiles))))
	}

	namedPK, _ := decision.PrimaryKey.Column()

	for _, p := range profiles {
		def := fmt.Sprintf("    %s %s", quoteIdent(p.Name), p.DDLType())
		if !p.Nullable {
			def += " NOT NULL"
		}
		if namedPK != "" && p.Name == namedPK {
			def += " PRIMARY KEY"
		}
		defs = append(defs, def)
		mapping = append(mapping, models.ColumnMapping{
			Source:      p.OriginalName,
			Destination: p.Name,
		})
	}

	// Constraint validity is the sink's problem: a FOREIGN KEY clause whose
	// target does not exist fails at execution time, not here.
	for _, fk := range decision.ForeignKeys {
		defs = append(defs, fmt.Sprintf("    FOREIGN KEY (%s) REFERENCES %s(%s)",
			quoteIdent(fk.Column), quoteIdent(fk.ReferencesTable), quoteIdent(fk.ReferencesColumn)))
	}

	ddl := fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (\n%s\n);",
		quoteIdent(tableName), strings.Join(defs, ",\n"))

	return models.TableLoadPlan{
		TableName:         tableName,
		CreateDDL:         ddl,
		ColumnMapping:     mapping,
		SyntheticKeyAdded: syntheticKey,
	}
}

// SurrogateKeyName returns "id" unless a source column already claimed it,
// in which case the surrogate falls back to "row_id".
func SurrogateKeyName(profiles []models.ColumnProfile) string {
	for _, p := range profiles {
		if p.Name == "id" {
			return "row_id"
		}
	}
	return "id"
}

// quoteIdent double-quotes a SQL identifier, escaping embedded quotes.
func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
