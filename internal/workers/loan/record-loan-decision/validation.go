package recordloandecision

import "loan-approval/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"applicant", "loanStatus", "predictedLabel", "artifactDigest"},
		Properties: map[string]validation.Property{
			"applicant": {
				Type:     "object",
				Required: []string{"loan_id"},
				Properties: map[string]validation.Property{
					"loan_id": {Type: "integer"},
				},
			},
			"loanStatus": {
				Type: "string",
				Enum: []string{"Approved", "Rejected"},
			},
			"predictedLabel": {Type: "integer"},
			"artifactDigest": {Type: "string", MinLength: intPtr(1)},
			"features":       {Type: "object"},
		},
		AdditionalProperties: true,
	}
}

func intPtr(i int) *int {
	return &i
}
