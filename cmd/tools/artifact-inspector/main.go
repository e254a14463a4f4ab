// cmd/tools/artifact-inspector/main.go
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"loan-approval/internal/common/errors"
	"loan-approval/internal/decision"
	"loan-approval/internal/inference"
	"loan-approval/internal/models"
)

func main() {
	validateCmd := flag.NewFlagSet("validate", flag.ExitOnError)
	describeCmd := flag.NewFlagSet("describe", flag.ExitOnError)
	predictCmd := flag.NewFlagSet("predict", flag.ExitOnError)

	validateDir := validateCmd.String("dir", "artifacts", "Directory holding the model, scaler and encoder files")
	describeDir := describeCmd.String("dir", "artifacts", "Directory holding the model, scaler and encoder files")
	predictDir := predictCmd.String("dir", "artifacts", "Directory holding the model, scaler and encoder files")
	recordPath := predictCmd.String("record", "-", "Applicant record JSON file (- reads stdin)")

	if len(os.Args) < 2 {
		help()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "validate":
		validateCmd.Parse(os.Args[2:])
		artifacts := mustLoad(*validateDir)
		fmt.Printf("Artifacts valid: digest %s\n", artifacts.Digest)

	case "describe":
		describeCmd.Parse(os.Args[2:])
		artifacts := mustLoad(*describeDir)
		printJSON(describe(artifacts))

	case "predict":
		predictCmd.Parse(os.Args[2:])
		artifacts := mustLoad(*predictDir)
		record, err := readRecord(*recordPath)
		if err != nil {
			fmt.Printf("Error reading record: %v\n", err)
			os.Exit(1)
		}
		service := decision.NewService(artifacts, decision.Config{})
		d, err := service.Decide(context.Background(), record, decision.OriginCLI)
		if err != nil {
			stdErr := errors.FromInference(err)
			fmt.Printf("Error [%s]: %s\n", stdErr.Code, stdErr.Details)
			os.Exit(2)
		}
		printJSON(d)

	default:
		help()
		os.Exit(1)
	}
}

type description struct {
	Digest  string                 `json:"digest"`
	Model   string                 `json:"model"`
	Scaler  string                 `json:"scaler"`
	Classes []int                  `json:"classes"`
	Options models.DecisionOptions `json:"options"`
	Paths   inference.Paths        `json:"paths"`
}

func describe(a *inference.Artifacts) description {
	return description{
		Digest:  a.Digest,
		Model:   a.Model.Kind(),
		Scaler:  a.Scaler.Kind(),
		Classes: a.Model.Classes(),
		Options: inference.NewPredictor(a).Options(),
		Paths:   a.Paths,
	}
}

func mustLoad(dir string) *inference.Artifacts {
	artifacts, err := inference.Load(inference.PathsInDir(dir))
	if err != nil {
		fmt.Printf("Error loading artifacts: %v\n", err)
		os.Exit(1)
	}
	return artifacts
}

func readRecord(path string) (models.ApplicantRecord, error) {
	var record models.ApplicantRecord
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return record, err
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&record); err != nil {
		return record, fmt.Errorf("invalid applicant record: %w", err)
	}
	return record, nil
}

func printJSON(v interface{}) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Printf("Error encoding output: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(out))
}

func help() {
	fmt.Println("Usage: artifact-inspector <command> [options]")
	fmt.Println("Commands:")
	fmt.Println("  validate  -dir <path>                  Load and validate the artifact set")
	fmt.Println("  describe  -dir <path>                  Print model, scaler and label sets")
	fmt.Println("  predict   -dir <path> -record <file>   Decide one applicant record")
}
