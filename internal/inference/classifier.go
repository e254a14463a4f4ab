package inference

import (
	"loan-approval/internal/models"
)

// ApprovedLabel is the classifier label that means the loan is approved.
const ApprovedLabel = 1

// Classifier predicts a label for one scaled vector.
type Classifier interface {
	Predict(v ScaledVector) (int, error)
	Classes() []int
	NumFeatures() int
	Kind() string
}

// VerdictForLabel maps label 1 to Approved and every other label to Rejected.
func VerdictForLabel(label int) models.Verdict {
	if label == ApprovedLabel {
		return models.VerdictApproved
	}
	return models.VerdictRejected
}

// Predict classifies v and returns the verdict with the raw label.
// Classifier failures propagate unchanged.
func Predict(v ScaledVector, model Classifier) (models.Verdict, int, error) {
	label, err := model.Predict(v)
	if err != nil {
		return "", 0, err
	}
	return VerdictForLabel(label), label, nil
}
