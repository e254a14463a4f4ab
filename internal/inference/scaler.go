package inference

import "fmt"

// Scaler applies the per-feature linear transform fitted at training time.
type Scaler interface {
	Transform(v FeatureVector) (ScaledVector, error)
	NumFeatures() int
	Kind() string
}

// StandardScaler computes (x - mean) / scale per feature.
type StandardScaler struct {
	mean  []float64
	scale []float64
}

func NewStandardScaler(mean, scale []float64) (*StandardScaler, error) {
	if len(mean) != len(scale) {
		return nil, fmt.Errorf("standard scaler: %d means but %d scales", len(mean), len(scale))
	}
	for i, s := range scale {
		if s == 0 {
			return nil, fmt.Errorf("standard scaler: zero scale for feature %d", i)
		}
	}
	return &StandardScaler{
		mean:  append([]float64(nil), mean...),
		scale: append([]float64(nil), scale...),
	}, nil
}

func (s *StandardScaler) Kind() string     { return "standard" }
func (s *StandardScaler) NumFeatures() int { return len(s.mean) }

func (s *StandardScaler) Transform(v FeatureVector) (ScaledVector, error) {
	if len(v) != len(s.mean) {
		return nil, &DimensionMismatchError{Stage: "scaler", Got: len(v), Want: len(s.mean)}
	}
	out := make(ScaledVector, len(v))
	for i, x := range v {
		out[i] = (x - s.mean[i]) / s.scale[i]
	}
	return out, nil
}

// MinMaxScaler computes (x - min) / (max - min) per feature.
type MinMaxScaler struct {
	min []float64
	max []float64
}

func NewMinMaxScaler(dataMin, dataMax []float64) (*MinMaxScaler, error) {
	if len(dataMin) != len(dataMax) {
		return nil, fmt.Errorf("minmax scaler: %d minimums but %d maximums", len(dataMin), len(dataMax))
	}
	for i := range dataMin {
		if dataMax[i] <= dataMin[i] {
			return nil, fmt.Errorf("minmax scaler: empty range for feature %d", i)
		}
	}
	return &MinMaxScaler{
		min: append([]float64(nil), dataMin...),
		max: append([]float64(nil), dataMax...),
	}, nil
}

func (s *MinMaxScaler) Kind() string     { return "minmax" }
func (s *MinMaxScaler) NumFeatures() int { return len(s.min) }

func (s *MinMaxScaler) Transform(v FeatureVector) (ScaledVector, error) {
	if len(v) != len(s.min) {
		return nil, &DimensionMismatchError{Stage: "scaler", Got: len(v), Want: len(s.min)}
	}
	out := make(ScaledVector, len(v))
	for i, x := range v {
		out[i] = (x - s.min[i]) / (s.max[i] - s.min[i])
	}
	return out, nil
}

// Scale applies scaler to v.
func Scale(v FeatureVector, scaler Scaler) (ScaledVector, error) {
	return scaler.Transform(v)
}
