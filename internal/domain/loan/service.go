package loan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"loanbook/internal/event"
	"loanbook/internal/infrastructure/monitoring"
	"loanbook/internal/pkg/apperrors"

	"github.com/google/uuid"
)

type LedgerService interface {
	CreateLoan(ctx context.Context, in NewLoanInput) (*Loan, error)

	ListLoans(ctx context.Context, filter ListFilter) ([]Loan, int64, error)

	GetLoan(ctx context.Context, loanID int64) (*Loan, error)

	UpdateLoan(ctx context.Context, loanID int64, in UpdateInput) (*Loan, error)

	DeleteLoan(ctx context.Context, loanID int64) error

	AddInstallment(ctx context.Context, loanID int64, amount Money) (*Loan, error)

	AddLoanForExistingCustomer(ctx context.Context, phone string, terms RenewalTerms) (*Loan, error)

	GetPaymentHistory(ctx context.Context, loanID int64) ([]Installment, error)
}

type ledgerServiceImpl struct {
	repo   Repository
	pub    event.EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

func NewLedgerService(r Repository, pub event.EventPublisher, logger *slog.Logger) LedgerService {
	if r == nil {
		panic("loan repository cannot be nil")
	}
	if pub == nil {
		pub = event.NoopEventPublisher{}
	}
	return &ledgerServiceImpl{
		repo:   r,
		pub:    pub,
		logger: logger.With("component", "LedgerService"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *ledgerServiceImpl) CreateLoan(ctx context.Context, in NewLoanInput) (*Loan, error) {
	s.logger.Info("Creating new loan", "phone", in.Phone)

	l, err := NewLoan(in, s.now())
	if err != nil {
		s.logger.Warn("Loan validation failed", slog.Any("error", err))
		return nil, err
	}

	created, err := s.repo.CreateLoan(ctx, l)
	if err != nil {
		s.logger.Error("Failed to save new loan", slog.Any("error", err))
		return nil, fmt.Errorf("failed to save new loan: %w", err)
	}
	s.logger.Info("Loan created successfully", "loanID", created.ID)

	s.publishLoanCreated(ctx, created)
	return created, nil
}

func (s *ledgerServiceImpl) ListLoans(ctx context.Context, filter ListFilter) ([]Loan, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}

	loans, err := s.repo.ListLoans(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to list loans", slog.Any("error", err))
		return nil, 0, fmt.Errorf("failed to list loans: %w", err)
	}

	total, err := s.repo.CountLoans(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to count loans", slog.Any("error", err))
		return nil, 0, fmt.Errorf("failed to count loans: %w", err)
	}

	return loans, total, nil
}

func (s *ledgerServiceImpl) GetLoan(ctx context.Context, loanID int64) (*Loan, error) {
	l, err := s.repo.GetLoanByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("Loan not found", "loanID", loanID)
			return nil, fmt.Errorf("%w: loan with ID %d not found", apperrors.ErrNotFound, loanID)
		}
		s.logger.Error("Failed to get loan", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get loan %d: %v", apperrors.ErrInternalServer, loanID, err)
	}
	return l, nil
}

func (s *ledgerServiceImpl) UpdateLoan(ctx context.Context, loanID int64, in UpdateInput) (*Loan, error) {
	s.logger.Info("Updating loan", "loanID", loanID)

	l, err := s.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}

	if err := l.ApplyUpdate(in, s.now()); err != nil {
		s.logger.Warn("Loan update validation failed", "loanID", loanID, slog.Any("error", err))
		return nil, err
	}

	if err := s.repo.SaveLoan(ctx, l); err != nil {
		s.logger.Error("Failed to save updated loan", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("failed to save updated loan: %w", err)
	}

	return l, nil
}

func (s *ledgerServiceImpl) DeleteLoan(ctx context.Context, loanID int64) error {
	s.logger.Info("Deleting loan", "loanID", loanID)
	err := s.repo.DeleteLoan(ctx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("Loan not found", "loanID", loanID)
			return fmt.Errorf("%w: loan with ID %d not found", apperrors.ErrNotFound, loanID)
		}
		s.logger.Error("Failed to delete loan", "loanID", loanID, slog.Any("error", err))
		return fmt.Errorf("failed to delete loan %d: %w", loanID, err)
	}
	return nil
}

// AddInstallment records a payment against the loan inside a transaction that
// holds a row lock, so two concurrent payments against the same loan cannot
// both read the same remaining balance.
func (s *ledgerServiceImpl) AddInstallment(ctx context.Context, loanID int64, amount Money) (l *Loan, err error) {
	s.logger.Info("Recording installment", "loanID", loanID, "amount", amount)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("Failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not begin transaction: %v", apperrors.ErrInternalServer, err)
	}

	defer func() {
		status := "success"
		switch {
		case errors.Is(err, apperrors.ErrInstallmentExceedsRemaining):
			status = "failure_amount"
		case errors.Is(err, apperrors.ErrValidation):
			status = "failure_validation"
		case errors.Is(err, apperrors.ErrNotFound):
			status = "failure_not_found"
		case err != nil:
			status = "failure_internal"
		}
		monitoring.RecordInstallment(status)

		if p := recover(); p != nil {
			s.logger.Error("Panic occurred during installment processing", "loanID", loanID, "error", p)
			_ = s.repo.RollbackTx(ctx, tx)
			panic(p)
		} else if err != nil {
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	l, err = s.repo.GetLoanByIDForUpdate(ctx, tx, loanID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("Loan not found", "loanID", loanID)
			return nil, fmt.Errorf("%w: loan with ID %d not found", apperrors.ErrNotFound, loanID)
		}
		s.logger.Error("Failed to lock loan for installment", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not load loan %d: %v", apperrors.ErrInternalServer, loanID, err)
	}

	inst, err := l.ApplyInstallment(amount, s.now())
	if err != nil {
		s.logger.Warn("Installment rejected", "loanID", loanID, "amount", amount, slog.Any("error", err))
		return nil, err
	}

	if err = s.repo.AddInstallmentInTx(ctx, tx, inst); err != nil {
		s.logger.Error("Failed to insert installment", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not insert installment: %v", apperrors.ErrInternalServer, err)
	}

	if err = s.repo.SaveLoanInTx(ctx, tx, l); err != nil {
		s.logger.Error("Failed to save loan totals", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not save loan totals: %v", apperrors.ErrInternalServer, err)
	}

	if err = s.repo.CommitTx(ctx, tx); err != nil {
		s.logger.Error("Failed to commit transaction", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not commit transaction: %v", apperrors.ErrInternalServer, err)
	}

	s.logger.Info("Installment recorded", "loanID", loanID, "amount", amount,
		"remainingLoan", l.RemainingLoan, "status", l.Status)

	s.publishInstallmentRecorded(ctx, l, inst)
	return l, nil
}

// AddLoanForExistingCustomer finds the most recent loan for the phone number
// and either starts a fresh cycle (Closed) or merges new principal on top
// (Open). It never creates a new customer record.
func (s *ledgerServiceImpl) AddLoanForExistingCustomer(ctx context.Context, phone string, terms RenewalTerms) (l *Loan, err error) {
	s.logger.Info("Adding loan for existing customer", "phone", phone)

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("Failed to begin transaction", slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not begin transaction: %v", apperrors.ErrInternalServer, err)
	}

	defer func() {
		if p := recover(); p != nil {
			s.logger.Error("Panic occurred during renewal processing", "phone", phone, "error", p)
			_ = s.repo.RollbackTx(ctx, tx)
			panic(p)
		} else if err != nil {
			_ = s.repo.RollbackTx(ctx, tx)
		}
	}()

	l, err = s.repo.FindLatestByPhoneForUpdate(ctx, tx, phone)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			s.logger.Warn("No loan found for phone", "phone", phone)
			return nil, fmt.Errorf("%w: no loan found for phone %s", apperrors.ErrNotFound, phone)
		}
		s.logger.Error("Failed to lock loan by phone", "phone", phone, slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not load loan for phone %s: %v", apperrors.ErrInternalServer, phone, err)
	}

	freshCycle := l.Status == StatusClosed

	if err = l.Renew(terms, s.now()); err != nil {
		s.logger.Warn("Renewal validation failed", "loanID", l.ID, slog.Any("error", err))
		return nil, err
	}

	if freshCycle {
		if err = s.repo.ClearInstallmentsInTx(ctx, tx, l.ID); err != nil {
			s.logger.Error("Failed to clear installment history", "loanID", l.ID, slog.Any("error", err))
			return nil, fmt.Errorf("%w: could not clear installment history: %v", apperrors.ErrInternalServer, err)
		}
	}

	if err = s.repo.SaveLoanInTx(ctx, tx, l); err != nil {
		s.logger.Error("Failed to save renewed loan", "loanID", l.ID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not save renewed loan: %v", apperrors.ErrInternalServer, err)
	}

	if err = s.repo.CommitTx(ctx, tx); err != nil {
		s.logger.Error("Failed to commit transaction", "loanID", l.ID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: could not commit transaction: %v", apperrors.ErrInternalServer, err)
	}

	s.logger.Info("Loan renewed", "loanID", l.ID, "freshCycle", freshCycle,
		"loanAmount", l.LoanAmount, "remainingLoan", l.RemainingLoan)

	s.publishLoanRenewed(ctx, l, freshCycle)
	return l, nil
}

func (s *ledgerServiceImpl) GetPaymentHistory(ctx context.Context, loanID int64) ([]Installment, error) {
	if _, err := s.GetLoan(ctx, loanID); err != nil {
		return nil, err
	}

	installments, err := s.repo.GetInstallments(ctx, loanID)
	if err != nil {
		s.logger.Error("Failed to get payment history", "loanID", loanID, slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to get payment history for loan %d: %v", apperrors.ErrInternalServer, loanID, err)
	}
	return installments, nil
}

func loanEventPayload(l *Loan) event.LoanEventPayload {
	return event.LoanEventPayload{
		LoanID:               l.ID,
		Name:                 l.Name,
		Phone:                l.Phone,
		LoanAmount:           l.LoanAmount,
		RemainingLoan:        l.RemainingLoan,
		TotalPaidLoan:        l.TotalPaidLoan,
		TotalDueInstallments: l.TotalDueInstallments,
		Status:               string(l.Status),
	}
}

func (s *ledgerServiceImpl) publishLoanCreated(ctx context.Context, l *Loan) {
	ev := event.LoanCreatedEvent{
		EventID:   uuid.NewString(),
		Timestamp: s.now(),
		Payload:   loanEventPayload(l),
	}
	if err := s.pub.PublishLoanCreated(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish loan created event", "loanID", l.ID, slog.Any("error", err))
	}
}

func (s *ledgerServiceImpl) publishInstallmentRecorded(ctx context.Context, l *Loan, inst *Installment) {
	ev := event.InstallmentRecordedEvent{
		EventID:        uuid.NewString(),
		Timestamp:      s.now(),
		LoanID:         l.ID,
		Amount:         inst.Amount,
		RemainingAfter: inst.RemainingAfter,
		LoanClosed:     l.Status == StatusClosed,
	}
	if err := s.pub.PublishInstallmentRecorded(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish installment recorded event", "loanID", l.ID, slog.Any("error", err))
	}
}

func (s *ledgerServiceImpl) publishLoanRenewed(ctx context.Context, l *Loan, freshCycle bool) {
	ev := event.LoanRenewedEvent{
		EventID:    uuid.NewString(),
		Timestamp:  s.now(),
		FreshCycle: freshCycle,
		Payload:    loanEventPayload(l),
	}
	if err := s.pub.PublishLoanRenewed(ctx, ev); err != nil {
		s.logger.ErrorContext(ctx, "Failed to publish loan renewed event", "loanID", l.ID, slog.Any("error", err))
	}
}
