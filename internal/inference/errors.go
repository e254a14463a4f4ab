package inference

import (
	"fmt"
	"strings"
)

// ArtifactLoadError reports a missing, unreadable or incompatible artifact.
// It is fatal at startup.
type ArtifactLoadError struct {
	Artifact string
	Path     string
	Err      error
}

func (e *ArtifactLoadError) Error() string {
	return fmt.Sprintf("load %s artifact %q: %v", e.Artifact, e.Path, e.Err)
}

func (e *ArtifactLoadError) Unwrap() error {
	return e.Err
}

// UnknownCategoryError reports a categorical label outside the encoder's fitted classes.
type UnknownCategoryError struct {
	Field string
	Label string
	Known []string
}

func (e *UnknownCategoryError) Error() string {
	return fmt.Sprintf("unknown %s category %q (known: %s)", e.Field, e.Label, strings.Join(e.Known, ", "))
}

// DimensionMismatchError reports a vector whose width differs from what the
// scaler or classifier was fitted on.
type DimensionMismatchError struct {
	Stage string
	Got   int
	Want  int
}

func (e *DimensionMismatchError) Error() string {
	return fmt.Sprintf("%s: feature vector has %d values, expected %d", e.Stage, e.Got, e.Want)
}

// FieldRangeError reports a numeric field outside its admissible range.
type FieldRangeError struct {
	Field string
	Value float64
	Min   float64
	Max   float64
}

func (e *FieldRangeError) Error() string {
	return fmt.Sprintf("%s=%v outside [%v, %v]", e.Field, e.Value, e.Min, e.Max)
}
