// Package validation checks Zeebe job variables against the JSON schema each
// worker declares. Schemas are plain Go values so workers can build them
// inline; validation is delegated to gojsonschema.
package validation

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// JSONSchema is the top-level object schema of a worker's variables.
// AdditionalProperties false rejects variables the schema does not name.
type JSONSchema struct {
	Type                 string              `json:"type"`
	Properties           map[string]Property `json:"properties"`
	Required             []string            `json:"required,omitempty"`
	AdditionalProperties bool                `json:"additionalProperties,omitempty"`
	PatternProperties    map[string]Property `json:"patternProperties,omitempty"`
}

// Property is one field. Nested objects always accept unknown keys.
type Property struct {
	Type        string              `json:"type"`
	Description string              `json:"description,omitempty"`
	Default     interface{}         `json:"default,omitempty"`
	Minimum     *float64            `json:"minimum,omitempty"`
	Maximum     *float64            `json:"maximum,omitempty"`
	Enum        []string            `json:"enum,omitempty"`
	Pattern     *string             `json:"pattern,omitempty"`
	MinLength   *int                `json:"minLength,omitempty"`
	MaxLength   *int                `json:"maxLength,omitempty"`
	Items       *Property           `json:"items,omitempty"`
	Properties  map[string]Property `json:"properties,omitempty"`
	Required    []string            `json:"required,omitempty"`
}

type ValidationResult struct {
	Valid  bool              `json:"valid"`
	Errors []ValidationError `json:"errors,omitempty"`
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

var errorCodes = map[string]string{
	"required":                        "REQUIRED_FIELD_MISSING",
	"additional_property_not_allowed": "UNKNOWN_FIELD",
	"invalid_type":                    "INVALID_TYPE",
	"string_gte":                      "MIN_LENGTH_VIOLATION",
	"string_lte":                      "MAX_LENGTH_VIOLATION",
	"pattern":                         "PATTERN_MISMATCH",
	"enum":                            "INVALID_ENUM_VALUE",
	"number_gte":                      "MINIMUM_VIOLATION",
	"number_lte":                      "MAXIMUM_VIOLATION",
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateInput validates input against schema and reports every violation
// with a dotted field path.
func ValidateInput(input map[string]interface{}, schema JSONSchema) *ValidationResult {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema.document()))
	if err != nil {
		return invalid(ValidationError{Field: "(schema)", Message: err.Error(), Code: "INVALID_SCHEMA"})
	}

	result, err := compiled.Validate(gojsonschema.NewGoLoader(input))
	if err != nil {
		return invalid(ValidationError{Field: "(input)", Message: err.Error(), Code: "INVALID_INPUT"})
	}
	if result.Valid() {
		return &ValidationResult{Valid: true}
	}

	out := &ValidationResult{Errors: make([]ValidationError, 0, len(result.Errors()))}
	for _, re := range result.Errors() {
		out.Errors = append(out.Errors, fromResultError(re))
	}
	return out
}

func invalid(e ValidationError) *ValidationResult {
	return &ValidationResult{Errors: []ValidationError{e}}
}

func fromResultError(re gojsonschema.ResultError) ValidationError {
	field := re.Field()
	if field == gojsonschema.STRING_ROOT_SCHEMA_PROPERTY {
		field = ""
	}
	// required and additionalProperties errors sit on the parent object
	if prop, ok := re.Details()["property"].(string); ok {
		switch re.Type() {
		case "required", "additional_property_not_allowed":
			field = joinField(field, prop)
		}
	}

	code, ok := errorCodes[re.Type()]
	if !ok {
		code = "SCHEMA_VIOLATION"
	}
	return ValidationError{Field: field, Message: re.Description(), Code: code}
}

func joinField(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}

// document renders the schema in JSON Schema form.
func (s JSONSchema) document() map[string]interface{} {
	doc := map[string]interface{}{
		"additionalProperties": s.AdditionalProperties,
	}
	if s.Type != "" {
		doc["type"] = s.Type
	}
	if len(s.Properties) > 0 {
		doc["properties"] = propertyDocuments(s.Properties)
	}
	if len(s.PatternProperties) > 0 {
		doc["patternProperties"] = propertyDocuments(s.PatternProperties)
	}
	if len(s.Required) > 0 {
		doc["required"] = s.Required
	}
	return doc
}

func propertyDocuments(props map[string]Property) map[string]interface{} {
	out := make(map[string]interface{}, len(props))
	for name, p := range props {
		out[name] = p.document()
	}
	return out
}

func (p Property) document() map[string]interface{} {
	doc := map[string]interface{}{}
	if p.Type != "" {
		doc["type"] = p.Type
	}
	if p.Minimum != nil {
		doc["minimum"] = *p.Minimum
	}
	if p.Maximum != nil {
		doc["maximum"] = *p.Maximum
	}
	if len(p.Enum) > 0 {
		doc["enum"] = p.Enum
	}
	if p.Pattern != nil {
		doc["pattern"] = *p.Pattern
	}
	if p.MinLength != nil {
		doc["minLength"] = *p.MinLength
	}
	if p.MaxLength != nil {
		doc["maxLength"] = *p.MaxLength
	}
	if p.Items != nil {
		doc["items"] = p.Items.document()
	}
	if len(p.Properties) > 0 {
		doc["properties"] = propertyDocuments(p.Properties)
	}
	if len(p.Required) > 0 {
		doc["required"] = p.Required
	}
	return doc
}

func GetSchemaFromJSON(schemaJSON string) (JSONSchema, error) {
	var schema JSONSchema
	err := json.Unmarshal([]byte(schemaJSON), &schema)
	return schema, err
}

func (vr *ValidationResult) GetErrorMessages() []string {
	messages := make([]string, len(vr.Errors))
	for i, err := range vr.Errors {
		messages[i] = fmt.Sprintf("%s: %s", err.Field, err.Message)
	}
	return messages
}

func (vr *ValidationResult) HasErrors(field string) bool {
	for _, err := range vr.Errors {
		if err.Field == field {
			return true
		}
	}
	return false
}

// GetErrorsForField returns the errors on field and on anything nested under it.
func (vr *ValidationResult) GetErrorsForField(field string) []ValidationError {
	var fieldErrors []ValidationError
	for _, err := range vr.Errors {
		if err.Field == field || strings.HasPrefix(err.Field, field+".") {
			fieldErrors = append(fieldErrors, err)
		}
	}
	return fieldErrors
}

func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}
