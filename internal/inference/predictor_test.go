package inference_test

import (
	"errors"
	"testing"

	"loan-approval/internal/inference"
	"loan-approval/internal/inference/inferencetest"
	"loan-approval/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadFixturePredictor(t *testing.T) *inference.Predictor {
	t.Helper()
	a, err := inference.Load(inference.PathsInDir(fixtureDir))
	require.NoError(t, err)
	return inference.NewPredictor(a)
}

func TestPredictor_EndToEndApproved(t *testing.T) {
	p := loadFixturePredictor(t)

	eval, err := p.Evaluate(inferencetest.ApprovedRecord())
	require.NoError(t, err)

	assert.Equal(t, inference.FeatureVector{2, 0, 0, 500000, 200000, 360, 750, 100000, 50000, 20000, 30000}, eval.Features)
	assert.Len(t, eval.Scaled, inference.NumFeatures)
	assert.InDelta(t, (750-599.9)/172.4, eval.Scaled[6], 1e-9)
	assert.Equal(t, 1, eval.Label)
	assert.Equal(t, models.VerdictApproved, eval.Verdict)
}

func TestPredictor_LowestCibilRejected(t *testing.T) {
	p := loadFixturePredictor(t)

	eval, err := p.Evaluate(inferencetest.RejectedRecord())
	require.NoError(t, err)

	assert.Equal(t, 300.0, eval.Features[6])
	assert.Equal(t, 0, eval.Label)
	assert.Equal(t, models.VerdictRejected, eval.Verdict)
}

func TestPredictor_RepeatedEvaluationIsStable(t *testing.T) {
	p := inference.NewPredictor(inferencetest.NewArtifacts())
	record := inferencetest.ApprovedRecord()

	first, err := p.Evaluate(record)
	require.NoError(t, err)
	for i := 0; i < 5; i++ {
		again, err := p.Evaluate(record)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
}

func TestPredictor_ClassifyMatchesEvaluate(t *testing.T) {
	p := inference.NewPredictor(inferencetest.NewArtifacts())

	vec, err := p.Assemble(inferencetest.ApprovedRecord())
	require.NoError(t, err)
	verdict, label, err := p.Classify(vec)
	require.NoError(t, err)

	assert.Equal(t, models.VerdictApproved, verdict)
	assert.Equal(t, 1, label)
}

func TestPredictor_Options(t *testing.T) {
	p := inference.NewPredictor(inferencetest.NewArtifacts())
	opts := p.Options()

	assert.Equal(t, []string{"Graduate", "Not Graduate"}, opts.Education)
	assert.Equal(t, []string{"No", "Yes"}, opts.SelfEmployed)
	assert.Equal(t, 300, opts.CibilMin)
	assert.Equal(t, 900, opts.CibilMax)
	assert.Equal(t, inference.FeatureOrder, opts.FeatureOrder)

	opts.Education[0] = "mutated"
	assert.Equal(t, "Graduate", p.Options().Education[0])
}

func TestScale_DimensionMismatch(t *testing.T) {
	a := inferencetest.NewArtifacts()

	scaled, err := inference.Scale(inference.FeatureVector{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, a.Scaler)
	assert.Nil(t, scaled)

	var dimErr *inference.DimensionMismatchError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, 10, dimErr.Got)
	assert.Equal(t, 11, dimErr.Want)
}

func TestClassifier_DimensionMismatch(t *testing.T) {
	a := inferencetest.NewArtifacts()

	_, _, err := inference.Predict(inference.ScaledVector{0, 0, 0}, a.Model)
	var dimErr *inference.DimensionMismatchError
	require.True(t, errors.As(err, &dimErr))
	assert.Equal(t, "classifier", dimErr.Stage)
}

func TestVerdictForLabel(t *testing.T) {
	assert.Equal(t, models.VerdictApproved, inference.VerdictForLabel(1))
	assert.Equal(t, models.VerdictRejected, inference.VerdictForLabel(0))
	assert.Equal(t, models.VerdictRejected, inference.VerdictForLabel(-1))
}

func TestMinMaxScaler_Transform(t *testing.T) {
	s, err := inference.NewMinMaxScaler([]float64{0, 10}, []float64{10, 20})
	require.NoError(t, err)

	out, err := s.Transform(inference.FeatureVector{5, 20})
	require.NoError(t, err)
	assert.Equal(t, inference.ScaledVector{0.5, 1}, out)
}

func TestLogisticRegression_Predict(t *testing.T) {
	lr, err := inference.NewLogisticRegression([]float64{1, -1}, 0, []int{0, 1})
	require.NoError(t, err)

	label, err := lr.Predict(inference.ScaledVector{2, 1})
	require.NoError(t, err)
	assert.Equal(t, 1, label)

	label, err = lr.Predict(inference.ScaledVector{1, 2})
	require.NoError(t, err)
	assert.Equal(t, 0, label)
}
