package notifyloandecision

import "loan-approval/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"decisionId", "loanStatus", "applicant"},
		Properties: map[string]validation.Property{
			"decisionId": {Type: "string", MinLength: intPtr(1)},
			"loanStatus": {
				Type: "string",
				Enum: []string{"Approved", "Rejected"},
			},
			"applicant": {
				Type:     "object",
				Required: []string{"loan_id"},
				Properties: map[string]validation.Property{
					"loan_id": {Type: "integer"},
				},
			},
		},
		AdditionalProperties: true,
	}
}

func intPtr(i int) *int {
	return &i
}
