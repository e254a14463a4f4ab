package inference

import "fmt"

// LogisticRegression is a binary linear classifier: classes[1] when
// coef·x + intercept > 0, otherwise classes[0].
type LogisticRegression struct {
	coef      []float64
	intercept float64
	classes   []int
}

func NewLogisticRegression(coef []float64, intercept float64, classes []int) (*LogisticRegression, error) {
	if len(classes) != 2 {
		return nil, fmt.Errorf("logistic regression needs exactly 2 classes, got %d", len(classes))
	}
	if len(coef) == 0 {
		return nil, fmt.Errorf("logistic regression has no coefficients")
	}
	return &LogisticRegression{
		coef:      append([]float64(nil), coef...),
		intercept: intercept,
		classes:   append([]int(nil), classes...),
	}, nil
}

func (lr *LogisticRegression) Kind() string     { return "logistic_regression" }
func (lr *LogisticRegression) NumFeatures() int { return len(lr.coef) }
func (lr *LogisticRegression) Classes() []int   { return append([]int(nil), lr.classes...) }

func (lr *LogisticRegression) Predict(v ScaledVector) (int, error) {
	if len(v) != len(lr.coef) {
		return 0, &DimensionMismatchError{Stage: "classifier", Got: len(v), Want: len(lr.coef)}
	}
	z := lr.intercept
	for i, x := range v {
		z += lr.coef[i] * x
	}
	if z > 0 {
		return lr.classes[1], nil
	}
	return lr.classes[0], nil
}
