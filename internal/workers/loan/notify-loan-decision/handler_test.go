package notifyloandecision

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"loan-approval/internal/common/camunda/camundatest"
	"loan-approval/internal/common/logger"
	"loan-approval/internal/inference/inferencetest"
	"loan-approval/internal/models"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*sns.PublishOutput), args.Error(1)
}

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*ses.SendEmailOutput), args.Error(1)
}

const topicARN = "arn:aws:sns:us-east-1:123456789012:loan-decisions"

func enabledConfig() *Config {
	cfg := DefaultConfig()
	cfg.SNSEnabled = true
	cfg.TopicARN = topicARN
	cfg.EmailEnabled = true
	cfg.FromEmail = "noreply@example.com"
	cfg.ReviewerEmail = "reviewer@example.com"
	return cfg
}

func recordedVariables() map[string]interface{} {
	return map[string]interface{}{
		"decisionId": "6f1c2a4e-8d2b-4c4f-9a53-2f8e1b7d3c10",
		"loanStatus": "Approved",
		"applicant":  inferencetest.ApprovedRecord(),
	}
}

func TestNewHandler_ConfigValidation(t *testing.T) {
	cfg := enabledConfig()
	cfg.ReviewerEmail = "not-an-email"
	_, err := NewHandler(cfg, &MockPublisher{}, &MockMailer{}, logger.NewNoOpLogger())
	assert.Error(t, err)

	_, err = NewHandler(enabledConfig(), nil, &MockMailer{}, logger.NewNoOpLogger())
	assert.Error(t, err)
}

func TestHandle_PublishesAndEmails(t *testing.T) {
	publisher := &MockPublisher{}
	mailer := &MockMailer{}
	h, err := NewHandler(enabledConfig(), publisher, mailer, logger.NewTestLogger(t))
	require.NoError(t, err)

	var published models.DecisionNotification
	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(in *sns.PublishInput) bool {
		return awssdk.ToString(in.TopicArn) == topicARN &&
			awssdk.ToString(in.MessageAttributes["eventType"].StringValue) == "loan.decision.approved"
	})).Run(func(args mock.Arguments) {
		in := args.Get(1).(*sns.PublishInput)
		_ = json.Unmarshal([]byte(awssdk.ToString(in.Message)), &published)
	}).Return(&sns.PublishOutput{MessageId: awssdk.String("msg-1")}, nil)

	mailer.On("SendEmail", mock.Anything, mock.MatchedBy(func(in *ses.SendEmailInput) bool {
		return in.Destination.ToAddresses[0] == "reviewer@example.com" &&
			awssdk.ToString(in.Message.Subject.Data) == "Loan 1001 Approved"
	})).Return(&ses.SendEmailOutput{MessageId: awssdk.String("mail-1")}, nil)

	client := camundatest.NewJobClient()
	h.Handle(client, camundatest.NewJob(1, TaskType, recordedVariables()))

	require.Len(t, client.Completed(), 1)
	vars, err := client.CompletedVariables(0)
	require.NoError(t, err)
	assert.Equal(t, StatusSent, vars["status"])
	assert.NotEmpty(t, vars["notificationId"])

	assert.Equal(t, vars["notificationId"], published.ID)
	assert.Equal(t, int64(1001), published.LoanID)
	assert.Equal(t, models.VerdictApproved, published.Verdict)
	publisher.AssertExpectations(t)
	mailer.AssertExpectations(t)
}

func TestHandle_Disabled(t *testing.T) {
	h, err := NewHandler(DefaultConfig(), nil, nil, logger.NewTestLogger(t))
	require.NoError(t, err)

	client := camundatest.NewJobClient()
	h.Handle(client, camundatest.NewJob(2, TaskType, recordedVariables()))

	require.Len(t, client.Completed(), 1)
	vars, err := client.CompletedVariables(0)
	require.NoError(t, err)
	assert.Equal(t, StatusDisabled, vars["status"])
	assert.Equal(t, "", vars["notificationId"])
}

func TestHandle_PublishFailureIsRetried(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SNSEnabled = true
	cfg.TopicARN = topicARN

	publisher := &MockPublisher{}
	h, err := NewHandler(cfg, publisher, nil, logger.NewTestLogger(t))
	require.NoError(t, err)

	publisher.On("Publish", mock.Anything, mock.Anything).Return(nil, errors.New("throttled"))

	client := camundatest.NewJobClient()
	h.Handle(client, camundatest.NewJob(3, TaskType, recordedVariables()))

	assert.Empty(t, client.Completed())
	require.Len(t, client.Failed(), 1)
	assert.Equal(t, int32(2), client.Failed()[0].Retries)
}

func TestHandle_MissingDecisionIDThrows(t *testing.T) {
	h, err := NewHandler(DefaultConfig(), nil, nil, logger.NewTestLogger(t))
	require.NoError(t, err)

	vars := recordedVariables()
	delete(vars, "decisionId")

	client := camundatest.NewJobClient()
	h.Handle(client, camundatest.NewJob(4, TaskType, vars))

	require.Len(t, client.Thrown(), 1)
	assert.Equal(t, "LOAN_INPUT_INVALID", client.Thrown()[0].ErrorCode)
}
