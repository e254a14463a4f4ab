package inference

import (
	"loan-approval/internal/models"
)

// Evaluation is the full trace of one record through the pipeline.
type Evaluation struct {
	Features FeatureVector
	Scaled   ScaledVector
	Label    int
	Verdict  models.Verdict
}

// Predictor runs records through assemble, scale and predict over one set of
// artifacts. It holds no mutable state and is safe for concurrent use.
type Predictor struct {
	artifacts *Artifacts
}

func NewPredictor(artifacts *Artifacts) *Predictor {
	return &Predictor{artifacts: artifacts}
}

func (p *Predictor) Artifacts() *Artifacts {
	return p.artifacts
}

func (p *Predictor) Assemble(record models.ApplicantRecord) (FeatureVector, error) {
	return Assemble(record, p.artifacts.Education, p.artifacts.SelfEmployed)
}

// Classify scales an assembled vector and predicts its verdict.
func (p *Predictor) Classify(v FeatureVector) (models.Verdict, int, error) {
	scaled, err := Scale(v, p.artifacts.Scaler)
	if err != nil {
		return "", 0, err
	}
	return Predict(scaled, p.artifacts.Model)
}

func (p *Predictor) Evaluate(record models.ApplicantRecord) (*Evaluation, error) {
	features, err := p.Assemble(record)
	if err != nil {
		return nil, err
	}
	scaled, err := Scale(features, p.artifacts.Scaler)
	if err != nil {
		return nil, err
	}
	verdict, label, err := Predict(scaled, p.artifacts.Model)
	if err != nil {
		return nil, err
	}
	return &Evaluation{
		Features: features,
		Scaled:   scaled,
		Label:    label,
		Verdict:  verdict,
	}, nil
}

// Options lists the labels and bounds a collector may offer.
func (p *Predictor) Options() models.DecisionOptions {
	return models.DecisionOptions{
		Education:    p.artifacts.Education.Classes(),
		SelfEmployed: p.artifacts.SelfEmployed.Classes(),
		CibilMin:     CibilMin,
		CibilMax:     CibilMax,
		FeatureOrder: append([]string(nil), FeatureOrder...),
	}
}
