package inference

import (
	"math"

	"loan-approval/internal/models"
)

const (
	CibilMin = 300
	CibilMax = 900
)

// FeatureOrder is the column order the scaler and classifier were fitted on.
// Index i of every FeatureVector holds FeatureOrder[i].
var FeatureOrder = []string{
	"no_of_dependents",
	"education",
	"self_employed",
	"income_annum",
	"loan_amount",
	"loan_term",
	"cibil_score",
	"residential_assets_value",
	"commercial_assets_value",
	"luxury_assets_value",
	"bank_asset_value",
}

// NumFeatures is the width of the model contract.
var NumFeatures = len(FeatureOrder)

// FeatureVector holds the assembled, unscaled features in FeatureOrder.
type FeatureVector []float64

// ScaledVector holds a FeatureVector after the fitted scaler was applied.
type ScaledVector []float64

// Named returns the vector keyed by feature name.
func (v FeatureVector) Named() map[string]float64 {
	out := make(map[string]float64, len(v))
	for i, value := range v {
		if i < len(FeatureOrder) {
			out[FeatureOrder[i]] = value
		}
	}
	return out
}

// Assemble encodes the categorical fields and lays out all eleven features in
// FeatureOrder. It never guesses: unknown labels and out-of-range numbers fail.
func Assemble(record models.ApplicantRecord, education, selfEmployed *CategoryEncoder) (FeatureVector, error) {
	eduCode, err := education.Encode(record.Education)
	if err != nil {
		return nil, err
	}
	seCode, err := selfEmployed.Encode(record.SelfEmployed)
	if err != nil {
		return nil, err
	}

	if record.Dependents < 0 {
		return nil, &FieldRangeError{Field: "dependents", Value: float64(record.Dependents), Min: 0, Max: math.Inf(1)}
	}
	if record.CibilScore < CibilMin || record.CibilScore > CibilMax {
		return nil, &FieldRangeError{Field: "cibil_score", Value: float64(record.CibilScore), Min: CibilMin, Max: CibilMax}
	}

	amounts := []struct {
		field string
		value float64
	}{
		{"annual_income", record.AnnualIncome},
		{"loan_amount", record.LoanAmount},
		{"loan_term", record.LoanTerm},
		{"residential_assets_value", record.ResidentialAssetsValue},
		{"commercial_assets_value", record.CommercialAssetsValue},
		{"luxury_assets_value", record.LuxuryAssetsValue},
		{"bank_asset_value", record.BankAssetValue},
	}
	for _, a := range amounts {
		if a.value < 0 || math.IsNaN(a.value) || math.IsInf(a.value, 0) {
			return nil, &FieldRangeError{Field: a.field, Value: a.value, Min: 0, Max: math.MaxFloat64}
		}
	}

	return FeatureVector{
		float64(record.Dependents),
		float64(eduCode),
		float64(seCode),
		record.AnnualIncome,
		record.LoanAmount,
		record.LoanTerm,
		float64(record.CibilScore),
		record.ResidentialAssetsValue,
		record.CommercialAssetsValue,
		record.LuxuryAssetsValue,
		record.BankAssetValue,
	}, nil
}
