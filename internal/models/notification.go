// internal/models/notification.go
package models

// DecisionNotification is the event published when a loan decision is made.
type DecisionNotification struct {
	ID         string  `json:"id"`
	DecisionID string  `json:"decisionId,omitempty"`
	LoanID     int64   `json:"loanId"`
	Verdict    Verdict `json:"verdict"`
	Channel    string  `json:"channel"` // "sns", "email"
	Status     string  `json:"status"`  // "sent", "failed", "disabled"
	SentAt     string  `json:"sentAt"`
}
