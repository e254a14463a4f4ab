package inference

import (
	"crypto/sha256"
	"embed"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schemas/*.json
var schemaFS embed.FS

const (
	ArtifactModel               = "model"
	ArtifactScaler              = "scaler"
	ArtifactEducationEncoder    = "education_encoder"
	ArtifactSelfEmployedEncoder = "self_employed_encoder"
)

// Paths locates the four pre-built artifacts.
type Paths struct {
	Model               string `mapstructure:"model"`
	Scaler              string `mapstructure:"scaler"`
	EducationEncoder    string `mapstructure:"education_encoder"`
	SelfEmployedEncoder string `mapstructure:"self_employed_encoder"`
}

// PathsInDir returns the conventional artifact file names under dir.
func PathsInDir(dir string) Paths {
	return Paths{
		Model:               filepath.Join(dir, "model.json"),
		Scaler:              filepath.Join(dir, "scaler.json"),
		EducationEncoder:    filepath.Join(dir, "education_encoder.json"),
		SelfEmployedEncoder: filepath.Join(dir, "self_employed_encoder.json"),
	}
}

// Artifacts is the immutable inference context built once at startup and
// shared read-only by every request.
type Artifacts struct {
	Model        Classifier
	Scaler       Scaler
	Education    *CategoryEncoder
	SelfEmployed *CategoryEncoder
	Digest       string
	Paths        Paths
	LoadedAt     time.Time
}

type encoderFile struct {
	Classes []string `json:"classes"`
}

type scalerFile struct {
	Kind         string    `json:"kind"`
	FeatureNames []string  `json:"feature_names"`
	Mean         []float64 `json:"mean"`
	Scale        []float64 `json:"scale"`
	DataMin      []float64 `json:"data_min"`
	DataMax      []float64 `json:"data_max"`
}

type modelFile struct {
	Kind      string     `json:"kind"`
	Classes   []int      `json:"classes"`
	Nodes     []TreeNode `json:"nodes"`
	Coef      []float64  `json:"coef"`
	Intercept float64    `json:"intercept"`
}

// Load reads, validates and cross-checks the artifacts. Any failure is an
// *ArtifactLoadError naming the offending artifact.
func Load(paths Paths) (*Artifacts, error) {
	digest := sha256.New()

	eduRaw, err := readArtifact(ArtifactEducationEncoder, paths.EducationEncoder, "encoder")
	if err != nil {
		return nil, err
	}
	education, err := decodeEncoder("education", eduRaw)
	if err != nil {
		return nil, &ArtifactLoadError{Artifact: ArtifactEducationEncoder, Path: paths.EducationEncoder, Err: err}
	}

	seRaw, err := readArtifact(ArtifactSelfEmployedEncoder, paths.SelfEmployedEncoder, "encoder")
	if err != nil {
		return nil, err
	}
	selfEmployed, err := decodeEncoder("self_employed", seRaw)
	if err != nil {
		return nil, &ArtifactLoadError{Artifact: ArtifactSelfEmployedEncoder, Path: paths.SelfEmployedEncoder, Err: err}
	}

	scalerRaw, err := readArtifact(ArtifactScaler, paths.Scaler, "scaler")
	if err != nil {
		return nil, err
	}
	scaler, err := decodeScaler(scalerRaw)
	if err != nil {
		return nil, &ArtifactLoadError{Artifact: ArtifactScaler, Path: paths.Scaler, Err: err}
	}

	modelRaw, err := readArtifact(ArtifactModel, paths.Model, "model")
	if err != nil {
		return nil, err
	}
	model, err := decodeModel(modelRaw)
	if err != nil {
		return nil, &ArtifactLoadError{Artifact: ArtifactModel, Path: paths.Model, Err: err}
	}

	for _, raw := range [][]byte{modelRaw, scalerRaw, eduRaw, seRaw} {
		digest.Write(raw)
	}

	return &Artifacts{
		Model:        model,
		Scaler:       scaler,
		Education:    education,
		SelfEmployed: selfEmployed,
		Digest:       hex.EncodeToString(digest.Sum(nil)),
		Paths:        paths,
		LoadedAt:     time.Now().UTC(),
	}, nil
}

func readArtifact(artifact, path, schemaName string) ([]byte, error) {
	if path == "" {
		return nil, &ArtifactLoadError{Artifact: artifact, Path: path, Err: errors.New("path not configured")}
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ArtifactLoadError{Artifact: artifact, Path: path, Err: err}
	}
	if err := validateAgainstSchema(schemaName, raw); err != nil {
		return nil, &ArtifactLoadError{Artifact: artifact, Path: path, Err: err}
	}
	return raw, nil
}

func validateAgainstSchema(name string, raw []byte) error {
	schema, err := schemaFS.ReadFile("schemas/" + name + ".schema.json")
	if err != nil {
		return fmt.Errorf("schema %s: %w", name, err)
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schema), gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return fmt.Errorf("validation error: %w", err)
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, desc := range result.Errors() {
			errs[i] = desc.String()
		}
		return fmt.Errorf("schema validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func decodeEncoder(field string, raw []byte) (*CategoryEncoder, error) {
	var f encoderFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	return NewCategoryEncoder(field, f.Classes)
}

func decodeScaler(raw []byte) (Scaler, error) {
	var f scalerFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}

	if len(f.FeatureNames) > 0 {
		if err := checkFeatureNames(f.FeatureNames); err != nil {
			return nil, err
		}
	}

	var (
		scaler Scaler
		err    error
	)
	switch f.Kind {
	case "standard":
		scaler, err = NewStandardScaler(f.Mean, f.Scale)
	case "minmax":
		scaler, err = NewMinMaxScaler(f.DataMin, f.DataMax)
	default:
		return nil, fmt.Errorf("unsupported scaler kind %q", f.Kind)
	}
	if err != nil {
		return nil, err
	}
	if scaler.NumFeatures() != NumFeatures {
		return nil, fmt.Errorf("scaler fitted on %d features, expected %d", scaler.NumFeatures(), NumFeatures)
	}
	return scaler, nil
}

// checkFeatureNames compares fit-time column names with FeatureOrder.
// Training frames carried stray leading spaces, so names are trimmed.
func checkFeatureNames(names []string) error {
	if len(names) != NumFeatures {
		return fmt.Errorf("scaler lists %d feature names, expected %d", len(names), NumFeatures)
	}
	for i, name := range names {
		if strings.TrimSpace(name) != FeatureOrder[i] {
			return fmt.Errorf("scaler feature %d is %q, expected %q", i, strings.TrimSpace(name), FeatureOrder[i])
		}
	}
	return nil
}

func decodeModel(raw []byte) (Classifier, error) {
	var f modelFile
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	if err := checkBinaryClasses(f.Classes); err != nil {
		return nil, err
	}

	var (
		model Classifier
		err   error
	)
	switch f.Kind {
	case "decision_tree":
		model, err = NewDecisionTree(f.Nodes, f.Classes, NumFeatures)
	case "logistic_regression":
		model, err = NewLogisticRegression(f.Coef, f.Intercept, f.Classes)
	default:
		return nil, fmt.Errorf("unsupported model kind %q", f.Kind)
	}
	if err != nil {
		return nil, err
	}
	if model.NumFeatures() != NumFeatures {
		return nil, fmt.Errorf("model fitted on %d features, expected %d", model.NumFeatures(), NumFeatures)
	}
	return model, nil
}

// checkBinaryClasses requires the label set to be exactly {0, 1}; label 1 is
// read as approval everywhere downstream.
func checkBinaryClasses(classes []int) error {
	sorted := append([]int(nil), classes...)
	sort.Ints(sorted)
	if len(sorted) != 2 || sorted[0] != 0 || sorted[1] != ApprovedLabel {
		return fmt.Errorf("model classes %v, expected [0 1]", classes)
	}
	return nil
}

// OnceLoader loads the artifacts on first use and returns the same result,
// success or failure, on every later call.
type OnceLoader struct {
	paths     Paths
	once      sync.Once
	artifacts *Artifacts
	err       error
}

func NewOnceLoader(paths Paths) *OnceLoader {
	return &OnceLoader{paths: paths}
}

func (l *OnceLoader) Get() (*Artifacts, error) {
	l.once.Do(func() {
		l.artifacts, l.err = Load(l.paths)
	})
	return l.artifacts, l.err
}
