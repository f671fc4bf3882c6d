package event

import (
	"context"
	"time"
)

type LoanEventPayload struct {
	LoanID               int64   `json:"loanId"`
	Name                 string  `json:"name"`
	Phone                string  `json:"phone"`
	LoanAmount           float64 `json:"loanAmount"`
	RemainingLoan        float64 `json:"remainingLoan"`
	TotalPaidLoan        float64 `json:"totalPaidLoan"`
	TotalDueInstallments int     `json:"totalDueInstallments"`
	Status               string  `json:"status"`
}

type LoanCreatedEvent struct {
	EventID   string           `json:"eventId"`
	Timestamp time.Time        `json:"timestamp"`
	Payload   LoanEventPayload `json:"payload"`
}

type InstallmentRecordedEvent struct {
	EventID        string    `json:"eventId"`
	Timestamp      time.Time `json:"timestamp"`
	LoanID         int64     `json:"loanId"`
	Amount         float64   `json:"amount"`
	RemainingAfter float64   `json:"remainingAfter"`
	LoanClosed     bool      `json:"loanClosed"`
}

type LoanRenewedEvent struct {
	EventID    string           `json:"eventId"`
	Timestamp  time.Time        `json:"timestamp"`
	FreshCycle bool             `json:"freshCycle"`
	Payload    LoanEventPayload `json:"payload"`
}

type EventPublisher interface {
	PublishLoanCreated(ctx context.Context, event LoanCreatedEvent) error
	PublishInstallmentRecorded(ctx context.Context, event InstallmentRecordedEvent) error
	PublishLoanRenewed(ctx context.Context, event LoanRenewedEvent) error
}

// NoopEventPublisher is used when RabbitMQ is disabled in configuration.
type NoopEventPublisher struct{}

func (NoopEventPublisher) PublishLoanCreated(context.Context, LoanCreatedEvent) error { return nil }

func (NoopEventPublisher) PublishInstallmentRecorded(context.Context, InstallmentRecordedEvent) error {
	return nil
}

func (NoopEventPublisher) PublishLoanRenewed(context.Context, LoanRenewedEvent) error { return nil }

var _ EventPublisher = (*NoopEventPublisher)(nil)
