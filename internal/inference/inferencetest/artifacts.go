// Package inferencetest builds in-memory artifacts for tests of packages that
// sit on top of the inference pipeline.
package inferencetest

import (
	"loan-approval/internal/inference"
	"loan-approval/internal/models"
)

// Digest identifies the fixture artifacts in cache keys and stored decisions.
const Digest = "fixture-artifacts"

// NewArtifacts returns artifacts matching testdata/artifacts: a standard
// scaler and a tree that rejects below-average CIBIL scores and very large loans.
func NewArtifacts() *inference.Artifacts {
	education, err := inference.NewCategoryEncoder("education", []string{"Graduate", "Not Graduate"})
	if err != nil {
		panic(err)
	}
	selfEmployed, err := inference.NewCategoryEncoder("self_employed", []string{"No", "Yes"})
	if err != nil {
		panic(err)
	}
	scaler, err := inference.NewStandardScaler(
		[]float64{2.5, 0.5, 0.5, 5059124, 15133450, 10.9, 599.9, 7472617, 4973155, 15126305, 4976692},
		[]float64{1.7, 0.5, 0.5, 2806840, 9043363, 5.7, 172.4, 6503637, 4388966, 9103754, 3250185},
	)
	if err != nil {
		panic(err)
	}
	tree, err := inference.NewDecisionTree([]inference.TreeNode{
		{FeatureIdx: 6, Threshold: 0, LeftChild: 1, RightChild: 2},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: 0, IsLeaf: true},
		{FeatureIdx: 4, Threshold: 2, LeftChild: 3, RightChild: 4, ClassLabel: 1},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: 1, IsLeaf: true},
		{FeatureIdx: -1, LeftChild: -1, RightChild: -1, ClassLabel: 0, IsLeaf: true},
	}, []int{0, 1}, inference.NumFeatures)
	if err != nil {
		panic(err)
	}
	return &inference.Artifacts{
		Model:        tree,
		Scaler:       scaler,
		Education:    education,
		SelfEmployed: selfEmployed,
		Digest:       Digest,
	}
}

// ApprovedRecord is an applicant the fixture model approves.
func ApprovedRecord() models.ApplicantRecord {
	return models.ApplicantRecord{
		LoanID:                 1001,
		Dependents:             2,
		Education:              "Graduate",
		SelfEmployed:           "No",
		AnnualIncome:           500000,
		LoanAmount:             200000,
		LoanTerm:               360,
		CibilScore:             750,
		ResidentialAssetsValue: 100000,
		CommercialAssetsValue:  50000,
		LuxuryAssetsValue:      20000,
		BankAssetValue:         30000,
	}
}

// RejectedRecord is ApprovedRecord with the lowest admissible CIBIL score.
func RejectedRecord() models.ApplicantRecord {
	r := ApprovedRecord()
	r.CibilScore = 300
	return r
}
