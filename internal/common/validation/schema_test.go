package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const applicantSchemaJSON = `{
	"type": "object",
	"required": ["dependents", "education", "cibil_score"],
	"properties": {
		"loan_id": {"type": "integer"},
		"dependents": {"type": "integer", "minimum": 0},
		"education": {"type": "string", "minLength": 1},
		"cibil_score": {"type": "integer"},
		"loan_amount": {"type": "number", "minimum": 0}
	}
}`

func decode(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	out := map[string]interface{}{}
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

func TestValidateInput_JSONDecodedNumbers(t *testing.T) {
	schema, err := GetSchemaFromJSON(applicantSchemaJSON)
	require.NoError(t, err)

	result := ValidateInput(decode(t, `{"loan_id": 17, "dependents": 2, "education": "Graduate", "cibil_score": 750, "loan_amount": 2.5e5}`), schema)
	assert.True(t, result.Valid, result.GetErrorMessages())
}

func TestValidateInput_Violations(t *testing.T) {
	schema, err := GetSchemaFromJSON(applicantSchemaJSON)
	require.NoError(t, err)

	result := ValidateInput(decode(t, `{"dependents": 1.5, "education": "", "loan_amount": -3, "colour": "red"}`), schema)
	require.False(t, result.Valid)

	assert.True(t, result.HasErrors("cibil_score"))
	assert.True(t, result.HasErrors("dependents"))
	assert.True(t, result.HasErrors("education"))
	assert.True(t, result.HasErrors("loan_amount"))
	assert.True(t, result.HasErrors("colour"))
	assert.Equal(t, "MINIMUM_VIOLATION", result.GetErrorsForField("loan_amount")[0].Code)
	assert.Equal(t, "INVALID_TYPE", result.GetErrorsForField("dependents")[0].Code)
	assert.Equal(t, "REQUIRED_FIELD_MISSING", result.GetErrorsForField("cibil_score")[0].Code)
	assert.Equal(t, "UNKNOWN_FIELD", result.GetErrorsForField("colour")[0].Code)
	assert.Equal(t, "MIN_LENGTH_VIOLATION", result.GetErrorsForField("education")[0].Code)
	assert.Len(t, result.GetErrorMessages(), len(result.Errors))
}

func TestValidateInput_NestedObject(t *testing.T) {
	schema := JSONSchema{
		Type:     "object",
		Required: []string{"applicant"},
		Properties: map[string]Property{
			"applicant": {
				Type:     "object",
				Required: []string{"education"},
				Properties: map[string]Property{
					"education": {Type: "string"},
				},
			},
		},
	}

	result := ValidateInput(decode(t, `{"applicant": {"dependents": 2}}`), schema)
	require.False(t, result.Valid)
	assert.True(t, result.HasErrors("applicant.education"))
	assert.Len(t, result.GetErrorsForField("applicant"), 1)
}

func TestValidateInput_Enum(t *testing.T) {
	schema := JSONSchema{
		Type:     "object",
		Required: []string{"loanStatus"},
		Properties: map[string]Property{
			"loanStatus": {Type: "string", Enum: []string{"Approved", "Rejected"}},
		},
	}

	assert.True(t, ValidateInput(map[string]interface{}{"loanStatus": "Approved"}, schema).Valid)

	result := ValidateInput(map[string]interface{}{"loanStatus": "Pending"}, schema)
	require.False(t, result.Valid)
	assert.Equal(t, "INVALID_ENUM_VALUE", result.Errors[0].Code)
	assert.Equal(t, "loanStatus", result.Errors[0].Field)
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("loan.reviewer@example.com"))
	assert.False(t, ValidateEmail("not-an-email"))
}
