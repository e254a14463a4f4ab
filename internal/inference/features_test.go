package inference_test

import (
	"errors"
	"math"
	"testing"

	"loan-approval/internal/inference"
	"loan-approval/internal/inference/inferencetest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssemble_OrderAndEncoding(t *testing.T) {
	a := inferencetest.NewArtifacts()

	vec, err := inference.Assemble(inferencetest.ApprovedRecord(), a.Education, a.SelfEmployed)
	require.NoError(t, err)
	require.Len(t, vec, inference.NumFeatures)

	assert.Equal(t, inference.FeatureVector{2, 0, 0, 500000, 200000, 360, 750, 100000, 50000, 20000, 30000}, vec)
}

func TestAssemble_Deterministic(t *testing.T) {
	a := inferencetest.NewArtifacts()
	record := inferencetest.ApprovedRecord()

	first, err := inference.Assemble(record, a.Education, a.SelfEmployed)
	require.NoError(t, err)
	second, err := inference.Assemble(record, a.Education, a.SelfEmployed)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestAssemble_IgnoresLoanID(t *testing.T) {
	a := inferencetest.NewArtifacts()
	r1 := inferencetest.ApprovedRecord()
	r2 := r1
	r2.LoanID = 987654

	v1, err := inference.Assemble(r1, a.Education, a.SelfEmployed)
	require.NoError(t, err)
	v2, err := inference.Assemble(r2, a.Education, a.SelfEmployed)
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
}

func TestAssemble_SwappedValuesChangeOnlyTheirPositions(t *testing.T) {
	a := inferencetest.NewArtifacts()
	r1 := inferencetest.ApprovedRecord()
	r1.Dependents = 3
	r1.CibilScore = 700
	r2 := r1
	r2.Dependents = 5
	r2.CibilScore = 650

	v1, err := inference.Assemble(r1, a.Education, a.SelfEmployed)
	require.NoError(t, err)
	v2, err := inference.Assemble(r2, a.Education, a.SelfEmployed)
	require.NoError(t, err)

	for i := range v1 {
		if i == 0 || i == 6 {
			assert.NotEqual(t, v1[i], v2[i], "position %d", i)
			continue
		}
		assert.Equal(t, v1[i], v2[i], "position %d", i)
	}
}

func TestAssemble_EncodesSecondClass(t *testing.T) {
	a := inferencetest.NewArtifacts()
	record := inferencetest.ApprovedRecord()
	record.Education = "Not Graduate"
	record.SelfEmployed = "Yes"

	vec, err := inference.Assemble(record, a.Education, a.SelfEmployed)
	require.NoError(t, err)

	assert.Equal(t, 1.0, vec[1])
	assert.Equal(t, 1.0, vec[2])
}

func TestAssemble_UnknownCategory(t *testing.T) {
	a := inferencetest.NewArtifacts()

	tests := []struct {
		name  string
		field string
		label string
	}{
		{name: "education", field: "education", label: "Unknown"},
		{name: "self employed", field: "self_employed", label: "Sometimes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := inferencetest.ApprovedRecord()
			if tt.field == "education" {
				record.Education = tt.label
			} else {
				record.SelfEmployed = tt.label
			}

			vec, err := inference.Assemble(record, a.Education, a.SelfEmployed)
			assert.Nil(t, vec)

			var catErr *inference.UnknownCategoryError
			require.True(t, errors.As(err, &catErr))
			assert.Equal(t, tt.field, catErr.Field)
			assert.Equal(t, tt.label, catErr.Label)
			assert.NotEmpty(t, catErr.Known)
		})
	}
}

func TestAssemble_CibilBounds(t *testing.T) {
	a := inferencetest.NewArtifacts()

	tests := []struct {
		score   int
		wantErr bool
	}{
		{score: 299, wantErr: true},
		{score: 300, wantErr: false},
		{score: 900, wantErr: false},
		{score: 901, wantErr: true},
	}

	for _, tt := range tests {
		record := inferencetest.ApprovedRecord()
		record.CibilScore = tt.score

		vec, err := inference.Assemble(record, a.Education, a.SelfEmployed)
		if !tt.wantErr {
			require.NoError(t, err)
			assert.Equal(t, float64(tt.score), vec[6], "boundary values are passed through unchanged")
			continue
		}
		var rangeErr *inference.FieldRangeError
		require.True(t, errors.As(err, &rangeErr), "score %d", tt.score)
		assert.Equal(t, "cibil_score", rangeErr.Field)
	}
}

func TestAssemble_RejectsNegativeAndNonFiniteAmounts(t *testing.T) {
	a := inferencetest.NewArtifacts()

	negative := inferencetest.ApprovedRecord()
	negative.LoanAmount = -1
	_, err := inference.Assemble(negative, a.Education, a.SelfEmployed)
	var rangeErr *inference.FieldRangeError
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, "loan_amount", rangeErr.Field)

	nan := inferencetest.ApprovedRecord()
	nan.BankAssetValue = math.NaN()
	_, err = inference.Assemble(nan, a.Education, a.SelfEmployed)
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, "bank_asset_value", rangeErr.Field)

	deps := inferencetest.ApprovedRecord()
	deps.Dependents = -2
	_, err = inference.Assemble(deps, a.Education, a.SelfEmployed)
	require.True(t, errors.As(err, &rangeErr))
	assert.Equal(t, "dependents", rangeErr.Field)
}

func TestFeatureVector_Named(t *testing.T) {
	vec := inference.FeatureVector{2, 0, 0, 500000, 200000, 360, 750, 100000, 50000, 20000, 30000}
	named := vec.Named()

	assert.Len(t, named, inference.NumFeatures)
	assert.Equal(t, 750.0, named["cibil_score"])
	assert.Equal(t, 2.0, named["no_of_dependents"])
}
