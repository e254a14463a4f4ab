package predictloanapproval

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"loan-approval/internal/common/errors"
	"loan-approval/internal/common/logger"
	"loan-approval/internal/common/metrics"
	"loan-approval/internal/common/validation"
	"loan-approval/internal/decision"
	"loan-approval/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
)

const TaskType = "predict-loan-approval"

// Decider is satisfied by *decision.Service.
type Decider interface {
	Decide(ctx context.Context, record models.ApplicantRecord, origin decision.Origin) (*models.Decision, error)
}

type Handler struct {
	config       *Config
	decider      Decider
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

func NewHandler(config *Config, decider Decider, log logger.Logger) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		decider:      decider,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	done := metrics.TrackJob(TaskType)

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

	h.logger.Info("Processing loan approval prediction", map[string]interface{}{
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

	if err := h.completeJob(ctx, client, job, output); err != nil {
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
	d, err := h.decider.Decide(ctx, input.Applicant, decision.OriginWorker)
	if err != nil {
		return nil, err
	}
	return &Output{
		LoanStatus:     d.Verdict,
		LoanApproved:   d.Verdict.Approved(),
		PredictedLabel: d.Label,
		ArtifactDigest: d.ArtifactDigest,
		Cached:         d.Cached,
		Applicant:      d.Applicant,
		Features:       d.Features,
	}, nil
}

func (h *Handler) completeJob(ctx context.Context, client worker.JobClient, job entities.Job, output *Output) error {
	request, err := client.NewCompleteJobCommand().JobKey(job.GetKey()).VariablesFromObject(output)
	if err != nil {
		h.logger.Error("Failed to create complete job command", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return err
	}

	if _, err := request.Send(ctx); err != nil {
		h.logger.Error("Failed to complete job", map[string]interface{}{
			"jobKey": job.GetKey(),
			"error":  err.Error(),
		})
		return err
	}

	h.logger.Info("Loan approval prediction completed", map[string]interface{}{
		"jobKey":     job.GetKey(),
		"loanId":     output.Applicant.LoanID,
		"loanStatus": output.LoanStatus,
	})
	return nil
}

// Execute runs the prediction without a job, for callers that already hold an Input.
func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
