// Package errors provides standardized error handling for BPMN workflow integration.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"loan-approval/internal/inference"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeArtifactLoadFailed       ErrorCode = "ARTIFACT_LOAD_FAILED"
	ErrCodeUnknownCategory          ErrorCode = "UNKNOWN_CATEGORY"
	ErrCodeFieldOutOfRange          ErrorCode = "FIELD_OUT_OF_RANGE"
	ErrCodeFeatureDimensionMismatch ErrorCode = "FEATURE_DIMENSION_MISMATCH"
	ErrCodePredictionFailed         ErrorCode = "PREDICTION_FAILED"

	ErrCodeInputParsingFailed          ErrorCode = "INPUT_PARSING_FAILED"
	ErrCodeApplicationValidationFailed ErrorCode = "APPLICATION_VALIDATION_FAILED"

	ErrCodeDatabaseConnectionFailed ErrorCode = "DATABASE_CONNECTION_FAILED"
	ErrCodeDatabaseInsertFailed     ErrorCode = "DATABASE_INSERT_FAILED"
	ErrCodeQueryExecutionFailed     ErrorCode = "QUERY_EXECUTION_FAILED"
	ErrCodeDecisionNotFound         ErrorCode = "DECISION_NOT_FOUND"

	ErrCodeSearchIndexFailed ErrorCode = "SEARCH_INDEX_FAILED"

	ErrCodeNotificationSendFailed ErrorCode = "NOTIFICATION_SEND_FAILED"

	ErrCodeWorkflowEngineUnavailable ErrorCode = "WORKFLOW_ENGINE_UNAVAILABLE"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

func (e *StandardError) Error() string {
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

func newError(code ErrorCode, message, details string, retryable bool) *StandardError {
	return &StandardError{
		Code:      code,
		Message:   message,
		Details:   details,
		Retryable: retryable,
		Timestamp: time.Now().UTC(),
	}
}

func NewArtifactLoadFailedError(err error) *StandardError {
	return newError(ErrCodeArtifactLoadFailed, "Model artifacts could not be loaded", err.Error(), false)
}

// NewUnknownCategoryError is raised when a categorical label was never seen at fit time.
func NewUnknownCategoryError(err error) *StandardError {
	return newError(ErrCodeUnknownCategory, "Unknown categorical value", err.Error(), false)
}

func NewFieldOutOfRangeError(err error) *StandardError {
	return newError(ErrCodeFieldOutOfRange, "Applicant field out of range", err.Error(), false)
}

// NewFeatureDimensionMismatchError signals a defect: the assembled vector does
// not match the fitted artifacts.
func NewFeatureDimensionMismatchError(err error) *StandardError {
	return newError(ErrCodeFeatureDimensionMismatch, "Feature vector does not match model", err.Error(), false)
}

func NewPredictionFailedError(err error) *StandardError {
	return newError(ErrCodePredictionFailed, "Classifier failed to predict", err.Error(), false)
}

func NewInputParsingFailedError(err error) *StandardError {
	return newError(ErrCodeInputParsingFailed, "Failed to parse input variables", err.Error(), false)
}

func NewApplicationValidationFailedError(details string) *StandardError {
	return newError(ErrCodeApplicationValidationFailed, "Application data validation failed", details, false)
}

func NewDatabaseConnectionFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseConnectionFailed, "Database connection error", err.Error(), true)
}

func NewDatabaseInsertFailedError(err error) *StandardError {
	return newError(ErrCodeDatabaseInsertFailed, "Database insert operation failed", err.Error(), true)
}

func NewQueryExecutionFailedError(queryType string, err error) *StandardError {
	return newError(ErrCodeQueryExecutionFailed, "Database query execution error",
		fmt.Sprintf("queryType: %s, error: %s", queryType, err.Error()), true)
}

func NewDecisionNotFoundError(decisionID string) *StandardError {
	return newError(ErrCodeDecisionNotFound, "Loan decision not found", fmt.Sprintf("decisionId: %s", decisionID), false)
}

func NewSearchIndexFailedError(index string, err error) *StandardError {
	return newError(ErrCodeSearchIndexFailed, "Search indexing failed",
		fmt.Sprintf("index: %s, error: %s", index, err.Error()), true)
}

func NewNotificationSendFailedError(channel string, err error) *StandardError {
	return newError(ErrCodeNotificationSendFailed, "Notification delivery failed",
		fmt.Sprintf("channel: %s, error: %s", channel, err.Error()), true)
}

func NewWorkflowEngineError(err error, retryable bool) *StandardError {
	return newError(ErrCodeWorkflowEngineUnavailable, "Workflow engine request failed", err.Error(), retryable)
}

func NewInternalError(err error) *StandardError {
	return newError(ErrCodeInternal, "Unexpected error", err.Error(), false)
}

// FromInference classifies an error coming out of the inference pipeline.
// Errors that are already a StandardError pass through unchanged; anything
// unrecognised is reported as a classifier failure.
func FromInference(err error) *StandardError {
	if err == nil {
		return nil
	}
	if stdErr := classify(err); stdErr != nil {
		return stdErr
	}
	return NewPredictionFailedError(err)
}

// Normalize is FromInference for errors of unknown origin: unrecognised
// errors become INTERNAL_ERROR.
func Normalize(err error) *StandardError {
	if err == nil {
		return nil
	}
	if stdErr := classify(err); stdErr != nil {
		return stdErr
	}
	return NewInternalError(err)
}

func classify(err error) *StandardError {
	var (
		stdErr   *StandardError
		loadErr  *inference.ArtifactLoadError
		catErr   *inference.UnknownCategoryError
		rangeErr *inference.FieldRangeError
		dimErr   *inference.DimensionMismatchError
	)
	switch {
	case stderrors.As(err, &stdErr):
		return stdErr
	case stderrors.As(err, &loadErr):
		return NewArtifactLoadFailedError(err)
	case stderrors.As(err, &catErr):
		e := NewUnknownCategoryError(err)
		e.Metadata = map[string]interface{}{"field": catErr.Field, "label": catErr.Label, "known": catErr.Known}
		return e
	case stderrors.As(err, &rangeErr):
		e := NewFieldOutOfRangeError(err)
		e.Metadata = map[string]interface{}{"field": rangeErr.Field}
		return e
	case stderrors.As(err, &dimErr):
		return NewFeatureDimensionMismatchError(err)
	}
	return nil
}

// IsCallerError reports whether err was caused by the submitted record rather
// than by the service.
func IsCallerError(err *StandardError) bool {
	switch err.Code {
	case ErrCodeUnknownCategory, ErrCodeFieldOutOfRange, ErrCodeApplicationValidationFailed, ErrCodeInputParsingFailed:
		return true
	}
	return false
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the error codes modelled in
// the loan approval process.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeArtifactLoadFailed:          "ARTIFACT_LOAD_FAILED",
	ErrCodeUnknownCategory:             "LOAN_INPUT_INVALID",
	ErrCodeFieldOutOfRange:             "LOAN_INPUT_INVALID",
	ErrCodeApplicationValidationFailed: "LOAN_INPUT_INVALID",
	ErrCodeInputParsingFailed:          "LOAN_INPUT_INVALID",
	ErrCodeFeatureDimensionMismatch:    "PREDICTION_FAILED",
	ErrCodePredictionFailed:            "PREDICTION_FAILED",
	ErrCodeDatabaseConnectionFailed:    "DATABASE_CONNECTION_FAILED",
	ErrCodeDatabaseInsertFailed:        "DATABASE_INSERT_FAILED",
	ErrCodeQueryExecutionFailed:        "QUERY_EXECUTION_FAILED",
	ErrCodeDecisionNotFound:            "DECISION_NOT_FOUND",
	ErrCodeSearchIndexFailed:           "SEARCH_INDEX_FAILED",
	ErrCodeNotificationSendFailed:      "NOTIFICATION_SEND_FAILED",
}

// GetRetryCount returns the recommended retry count for an error code.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeDatabaseConnectionFailed,
		ErrCodeDatabaseInsertFailed,
		ErrCodeQueryExecutionFailed,
		ErrCodeNotificationSendFailed:
		return 3

	case ErrCodeSearchIndexFailed:
		return 2

	default:
		return 0 // business errors and defects are never retried
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	vars := map[string]interface{}{
		"originalErrorCode": string(stdErr.Code),
		"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
	}
	if field, ok := stdErr.Metadata["field"]; ok {
		vars["errorField"] = field
	}

	return &BPMNError{
		Code:           bpmnCode,
		Message:        stdErr.Message,
		Details:        stdErr.Details,
		Retryable:      stdErr.Retryable,
		Retries:        retries,
		ErrorVariables: vars,
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "ARTIFACT") || strings.Contains(codeStr, "PREDICTION") || strings.Contains(codeStr, "DIMENSION"):
		return "MODEL"
	case strings.Contains(codeStr, "DATABASE") || strings.Contains(codeStr, "QUERY") || strings.Contains(codeStr, "DECISION"):
		return "DATABASE"
	case strings.Contains(codeStr, "SEARCH"):
		return "SEARCH"
	case strings.Contains(codeStr, "NOTIFICATION"):
		return "NOTIFICATION"
	case strings.Contains(codeStr, "CATEGORY") || strings.Contains(codeStr, "RANGE") ||
		strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "PARSING"):
		return "VALIDATION"
	default:
		return "OTHER"
	}
}
