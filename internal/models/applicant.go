// internal/models/applicant.go
package models

// ApplicantRecord is one loan application as collected from the applicant.
// LoanID is carried for display and audit only; it is never a model feature.
type ApplicantRecord struct {
	LoanID                 int64   `json:"loan_id"`
	Dependents             int     `json:"dependents"`
	Education              string  `json:"education" binding:"required"`
	SelfEmployed           string  `json:"self_employed" binding:"required"`
	AnnualIncome           float64 `json:"annual_income"`
	LoanAmount             float64 `json:"loan_amount"`
	LoanTerm               float64 `json:"loan_term"`
	CibilScore             int     `json:"cibil_score" binding:"required"`
	ResidentialAssetsValue float64 `json:"residential_assets_value"`
	CommercialAssetsValue  float64 `json:"commercial_assets_value"`
	LuxuryAssetsValue      float64 `json:"luxury_assets_value"`
	BankAssetValue         float64 `json:"bank_asset_value"`
}

// Verdict is the human-readable outcome of a prediction.
type Verdict string

const (
	VerdictApproved Verdict = "Approved"
	VerdictRejected Verdict = "Rejected"
)

func (v Verdict) Approved() bool {
	return v == VerdictApproved
}
