package inference

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/StonerSensei/nlp-analytics/pkg/apperrors"
	"github.com/StonerSensei/nlp-analytics/pkg/models"
)

func intProfile(name string, unique, nullable bool) models.ColumnProfile {
	return models.ColumnProfile{Name: name, OriginalName: name, SQLType: models.TypeInteger, IsUnique: unique, Nullable: nullable, NonNullCount: 10, DistinctCount: 10}
}

func textProfile(name string, unique, nullable bool) models.ColumnProfile {
	return models.ColumnProfile{Name: name, OriginalName: name, SQLType: models.TypeVarchar, MaxLength: 50, IsUnique: unique, Nullable: nullable, NonNullCount: 10, DistinctCount: 10}
}

func TestInferKeysPrefersIDColumn(t *testing.T) {
	profiles := []models.ColumnProfile{
		textProfile("code", true, false),
		intProfile("id", true, false),
	}

	decision, err := InferKeys(profiles, models.PKUnspecified())
	require.NoError(t, err)

	name, ok := decision.PrimaryKey.Column()
	require.True(t, ok)
	assert.Equal(t, "id", name)
}

func TestInferKeysFallsBackToUniqueInteger(t *testing.T) {
	profiles := []models.ColumnProfile{
		textProfile("label", true, false),
		intProfile("account_number", true, false),
	}

	decision, err := InferKeys(profiles, models.PKUnspecified())
	require.NoError(t, err)

	name, ok := decision.PrimaryKey.Column()
	require.True(t, ok)
	assert.Equal(t, "account_number", name, "unique non-null integer outranks unique text")
}

func TestInferKeysNoSuitableColumn(t *testing.T) {
	profiles := []models.ColumnProfile{
		textProfile("city", false, true),
		intProfile("count", false, false),
	}

	decision, err := InferKeys(profiles, models.PKUnspecified())
	require.NoError(t, err)

	assert.True(t, decision.PrimaryKey.IsUnspecified(),
		"no suitable column leaves the decision unspecified so a surrogate key gets added")
}

func TestInferKeysExplicitOverride(t *testing.T) {
	profiles := []models.ColumnProfile{
		textProfile("city", false, true), // not unique, caller takes responsibility
	}

	decision, err := InferKeys(profiles, models.PKNamed("city"))
	require.NoError(t, err)

	name, ok := decision.PrimaryKey.Column()
	require.True(t, ok)
	assert.Equal(t, "city", name)
}

func TestInferKeysOverrideUnknownColumn(t *testing.T) {
	profiles := []models.ColumnProfile{textProfile("city", true, false)}

	_, err := InferKeys(profiles, models.PKNamed("ghost"))
	require.Error(t, err)
	assert.True(t, apperrors.IsClass(err, apperrors.ClassValidation))
	assert.Contains(t, err.Error(), "city", "error should list valid alternatives")
}

func TestInferKeysExplicitNone(t *testing.T) {
	profiles := []models.ColumnProfile{intProfile("id", true, false)}

	decision, err := InferKeys(profiles, models.PKNone())
	require.NoError(t, err)

	assert.True(t, decision.PrimaryKey.IsNone(), "explicit none must never be upgraded to a detected key")
}

func TestInferForeignKeys(t *testing.T) {
	profiles := []models.ColumnProfile{
		intProfile("id", true, false),
		intProfile("patient_id", false, false),
		intProfile("study_id", false, true),
		textProfile("name", false, false),
	}

	decision, err := InferKeys(profiles, models.PKUnspecified())
	require.NoError(t, err)

	require.Len(t, decision.ForeignKeys, 2)
	assert.Equal(t, models.ForeignKey{Column: "patient_id", ReferencesTable: "patient", ReferencesColumn: "id"}, decision.ForeignKeys[0])
	assert.Equal(t, models.ForeignKey{Column: "study_id", ReferencesTable: "study", ReferencesColumn: "id"}, decision.ForeignKeys[1])
}

func TestPrimaryKeyOverrideParsing(t *testing.T) {
	absent := models.ParsePrimaryKeyOverride("", false)
	assert.True(t, absent.IsUnspecified())

	explicitNone := models.ParsePrimaryKeyOverride("", true)
	assert.True(t, explicitNone.IsNone())

	named := models.ParsePrimaryKeyOverride("bill_id", true)
	name, ok := named.Column()
	require.True(t, ok)
	assert.Equal(t, "bill_id", name)
}
