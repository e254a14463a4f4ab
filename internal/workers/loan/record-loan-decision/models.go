package recordloandecision

import (
	"time"

	"loan-approval/internal/models"
)

// Input is the output of predict-loan-approval as found in the process variables.
type Input struct {
	Applicant      models.ApplicantRecord `json:"applicant"`
	LoanStatus     models.Verdict         `json:"loanStatus"`
	PredictedLabel int                    `json:"predictedLabel"`
	ArtifactDigest string                 `json:"artifactDigest"`
	Features       map[string]float64     `json:"features,omitempty"`
}

type Output struct {
	DecisionID string    `json:"decisionId"`
	RecordedAt time.Time `json:"recordedAt"`
}
