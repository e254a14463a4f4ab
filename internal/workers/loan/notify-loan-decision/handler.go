package notifyloandecision

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"loan-approval/internal/common/aws"
	"loan-approval/internal/common/errors"
	"loan-approval/internal/common/logger"
	"loan-approval/internal/common/metrics"
	"loan-approval/internal/common/validation"
	"loan-approval/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/google/uuid"
)

const TaskType = "notify-loan-decision"

type Handler struct {
	config       *Config
	publisher    Publisher
	mailer       Mailer
	errorHandler *errors.ErrorHandler
	logger       logger.Logger
}

// NewHandler wires the channels enabled in config. publisher and mailer may
// be nil when their channel is disabled.
func NewHandler(config *Config, publisher Publisher, mailer Mailer, log logger.Logger) (*Handler, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration for %s: %w", TaskType, err)
	}
	if config.SNSEnabled && publisher == nil {
		return nil, fmt.Errorf("%s: sns enabled without a publisher", TaskType)
	}
	if config.EmailEnabled && mailer == nil {
		return nil, fmt.Errorf("%s: email enabled without a mailer", TaskType)
	}
	log = log.WithFields(map[string]interface{}{"taskType": TaskType})
	return &Handler{
		config:       config,
		publisher:    publisher,
		mailer:       mailer,
		errorHandler: errors.NewErrorHandler(log),
		logger:       log,
	}, nil
}

func (h *Handler) Handle(client worker.JobClient, job entities.Job) {
	done := metrics.TrackJob(TaskType)

	ctx, cancel := context.WithTimeout(context.Background(), h.config.Timeout)
	defer cancel()

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
	if !h.config.SNSEnabled && !h.config.EmailEnabled {
		h.logger.Info("Notifications disabled by configuration", map[string]interface{}{
			"decisionId": input.DecisionID,
		})
		return &Output{Status: StatusDisabled}, nil
	}

	notification := models.DecisionNotification{
		ID:         uuid.New().String(),
		DecisionID: input.DecisionID,
		LoanID:     input.Applicant.LoanID,
		Verdict:    input.LoanStatus,
		Status:     StatusSent,
		SentAt:     time.Now().UTC().Format(time.RFC3339),
	}

	if h.config.SNSEnabled {
		notification.Channel = "sns"
		if err := h.publish(ctx, notification); err != nil {
			return nil, errors.NewNotificationSendFailedError("sns", err)
		}
	}

	if h.config.EmailEnabled {
		notification.Channel = "email"
		if err := h.email(ctx, notification); err != nil {
			return nil, errors.NewNotificationSendFailedError("email", err)
		}
	}

	h.logger.Info("Loan decision notification sent", map[string]interface{}{
		"notificationId": notification.ID,
		"decisionId":     input.DecisionID,
		"loanId":         input.Applicant.LoanID,
		"sns":            h.config.SNSEnabled,
		"email":          h.config.EmailEnabled,
	})
	return &Output{NotificationID: notification.ID, Status: StatusSent}, nil
}

func (h *Handler) publish(ctx context.Context, n models.DecisionNotification) error {
	body, err := json.Marshal(n)
	if err != nil {
		return err
	}
	eventType := "loan.decision." + strings.ToLower(string(n.Verdict))
	subject := fmt.Sprintf("Loan %d %s", n.LoanID, n.Verdict)
	_, err = h.publisher.Publish(ctx, aws.EventMessage(h.config.TopicARN, eventType, subject, string(body)))
	return err
}

func (h *Handler) email(ctx context.Context, n models.DecisionNotification) error {
	subject := fmt.Sprintf("Loan %d %s", n.LoanID, n.Verdict)
	body := fmt.Sprintf("Loan application %d was %s.\n\nDecision: %s\nDecided at: %s\n",
		n.LoanID, strings.ToLower(string(n.Verdict)), n.DecisionID, n.SentAt)
	_, err := h.mailer.SendEmail(ctx, aws.TextEmail(h.config.FromEmail, h.config.ReviewerEmail, subject, body))
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	return h.execute(ctx, input)
}
