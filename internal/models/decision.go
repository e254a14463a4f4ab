// internal/models/decision.go
package models

import "time"

// Decision is the echo returned to the presenter: the applicant exactly as
// submitted, the assembled (unscaled) features, and the verdict.
type Decision struct {
	ID             string             `json:"id,omitempty"`
	Applicant      ApplicantRecord    `json:"applicant"`
	Verdict        Verdict            `json:"verdict"`
	Label          int                `json:"label"`
	Features       map[string]float64 `json:"features,omitempty"`
	ArtifactDigest string             `json:"artifactDigest"`
	Cached         bool               `json:"cached"`
	DecidedAt      time.Time          `json:"decidedAt"`
}

// DecisionOptions advertises the closed label sets and bounds a collector may offer.
type DecisionOptions struct {
	Education    []string `json:"education"`
	SelfEmployed []string `json:"self_employed"`
	CibilMin     int      `json:"cibil_min"`
	CibilMax     int      `json:"cibil_max"`
	FeatureOrder []string `json:"feature_order"`
}
