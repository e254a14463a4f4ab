package predictloanapproval

import "loan-approval/internal/models"

type Input struct {
	Applicant models.ApplicantRecord `json:"applicant"`
}

// Output is merged into the process variables. Applicant echoes the input so
// later tasks can show the reviewer exactly what was decided on.
type Output struct {
	LoanStatus     models.Verdict         `json:"loanStatus"`
	LoanApproved   bool                   `json:"loanApproved"`
	PredictedLabel int                    `json:"predictedLabel"`
	ArtifactDigest string                 `json:"artifactDigest"`
	Cached         bool                   `json:"cached"`
	Applicant      models.ApplicantRecord `json:"applicant"`
	Features       map[string]float64     `json:"features"`
}
