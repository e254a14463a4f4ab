package predictloanapproval

import "loan-approval/internal/common/validation"

// GetInputSchema checks shape only. Label sets and the CIBIL range are
// enforced by the feature assembler so its errors reach the process verbatim.
func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"applicant"},
		Properties: map[string]validation.Property{
			"applicant": {
				Type:        "object",
				Description: "Loan application as collected from the applicant",
				Required: []string{
					"dependents", "education", "self_employed", "annual_income",
					"loan_amount", "loan_term", "cibil_score", "residential_assets_value",
					"commercial_assets_value", "luxury_assets_value", "bank_asset_value",
				},
				Properties: map[string]validation.Property{
					"loan_id":                  {Type: "integer"},
					"dependents":               {Type: "integer"},
					"education":                {Type: "string", MinLength: intPtr(1)},
					"self_employed":            {Type: "string", MinLength: intPtr(1)},
					"annual_income":            {Type: "number"},
					"loan_amount":              {Type: "number"},
					"loan_term":                {Type: "number"},
					"cibil_score":              {Type: "integer"},
					"residential_assets_value": {Type: "number"},
					"commercial_assets_value":  {Type: "number"},
					"luxury_assets_value":      {Type: "number"},
					"bank_asset_value":         {Type: "number"},
				},
			},
		},
		AdditionalProperties: true,
	}
}

func intPtr(i int) *int {
	return &i
}
