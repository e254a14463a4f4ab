package notifyloandecision

import (
	"context"

	"loan-approval/internal/models"

	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/aws/aws-sdk-go-v2/service/sns"
)

type Input struct {
	DecisionID string                 `json:"decisionId"`
	LoanStatus models.Verdict         `json:"loanStatus"`
	Applicant  models.ApplicantRecord `json:"applicant"`
}

const (
	StatusSent     = "sent"
	StatusDisabled = "disabled"
)

type Output struct {
	NotificationID string `json:"notificationId"`
	Status         string `json:"status"`
}

// Publisher is satisfied by *aws.SNSClient.
type Publisher interface {
	Publish(ctx context.Context, input *sns.PublishInput) (*sns.PublishOutput, error)
}

// Mailer is satisfied by *aws.SESClient.
type Mailer interface {
	SendEmail(ctx context.Context, input *ses.SendEmailInput) (*ses.SendEmailOutput, error)
}
