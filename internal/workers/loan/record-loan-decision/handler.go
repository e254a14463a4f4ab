package recordloandecision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"loan-approval/internal/common/errors"
	"loan-approval/internal/common/logger"
	"loan-approval/internal/common/metrics"
	"loan-approval/internal/common/validation"
	"loan-approval/internal/models"
	"loan-approval/internal/store"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "record-loan-decision"

// Recorder is satisfied by *store.DecisionStore.
type Recorder interface {
	Save(ctx context.Context, d *models.Decision) (*store.Receipt, error)
}

type Handler struct {
	config       *Config
	recorder     Recorder
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, recorder Recorder, log logger.Logger) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if recorder == nil {
		return nil, fmt.Errorf("%s requires a decision store", TaskType)
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		recorder:     recorder,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	done := metrics.TrackJob(TaskType)

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Recording loan decision", map[string]interface{}{
		"jobKey":             job.GetKey(),
		"processInstanceKey": job.GetProcessInstanceKey(),
	})

	input, err := h.parseInput(job)
	if err != nil {
		done(string(h.errorHandler.HandleJobError(ctx, client, job, err).Code))
		return
	}

	output, err := h.execute(ctx, input)
	if err != nil {
		done(string(h.errorHandler.HandleJobError(ctx, client, job, err).Code))
		return
	}

	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err == nil {
		_, err = request.Send(ctx)
	}
	if err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		done(string(errors.ErrCodeWorkflowEngineUnavailable))
		return
	}
	done("")
}

func (h *Handler) parseInput(job entities.Job) (*Input, error) {
	variables, err := job.GetVariablesAsMap()
	if err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}

	result := validation.ValidateInput(variables, GetInputSchema())
	if !result.Valid {
		return nil, errors.NewApplicationValidationFailedError(strings.Join(result.GetErrorMessages(), "; "))
	}

	var input Input
	if err := json.Unmarshal([]byte(job.GetVariables()), &input); err != nil {
		return nil, errors.NewInputParsingFailedError(err)
	}
	return &input, nil
}

func (h *Handler) execute(ctx context.Context, input *Input) (*Output, error) {
	d := &models.Decision{
		Applicant:      input.Applicant,
		Verdict:        input.LoanStatus,
		Label:          input.PredictedLabel,
		Features:       input.Features,
		ArtifactDigest: input.ArtifactDigest,
	}

	receipt, err := h.recorder.Save(ctx, d)
	if err != nil {
		return nil, err
	}

	h.logger.Info("Loan decision recorded", map[string]interface{}{
		"decisionId": receipt.DecisionID,
		"loanId":     input.Applicant.LoanID,
		"loanStatus": input.LoanStatus,
	})
	return &Output{DecisionID: receipt.DecisionID, RecordedAt: receipt.RecordedAt}, nil
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
