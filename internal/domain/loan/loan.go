package loan

import (
	"fmt"
	"math"
	"strings"
	"time"

	"loanbook/internal/pkg/apperrors"
)

type Money = float64

type Status string

const (
	StatusOpen   Status = "Open"
	StatusClosed Status = "Closed"
)

// Installment is one recorded payment against a loan. RemainingAfter is the
// balance immediately after the payment, frozen at insert time.
type Installment struct {
	ID             int64
	LoanID         int64
	Amount         Money
	Date           time.Time
	RemainingAfter Money
}

type Loan struct {
	ID                    int64
	Name                  string
	Phone                 string
	LoanAmount            Money
	GivenAmount           Money
	PerDayCollection      Money
	DaysForLoan           int
	LoanStartDate         time.Time
	LoanEndDate           time.Time
	TotalDueInstallments  int
	TotalPaidInstallments int
	TotalPaidLoan         Money
	RemainingLoan         Money
	AdharCard             string
	PanCard               string
	ReferenceBy           string
	Status                Status
	CreatedAt             time.Time
	UpdatedAt             time.Time
	Installments          []Installment
}

type NewLoanInput struct {
	Name             string
	Phone            string
	LoanAmount       Money
	GivenAmount      Money
	PerDayCollection Money
	DaysForLoan      int
	AdharCard        string
	PanCard          string
	ReferenceBy      string
}

// UpdateInput is a sparse set of field overrides. Nil means "keep current".
// Identifier and timestamps are not overridable.
type UpdateInput struct {
	Name             *string
	Phone            *string
	LoanAmount       *Money
	GivenAmount      *Money
	PerDayCollection *Money
	DaysForLoan      *int
	AdharCard        *string
	PanCard          *string
	ReferenceBy      *string
}

// RenewalTerms are the terms of a follow-up loan for an existing customer.
type RenewalTerms struct {
	LoanAmount       Money
	GivenAmount      Money
	PerDayCollection Money
	DaysForLoan      int
}

func NewLoan(in NewLoanInput, now time.Time) (*Loan, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}
	if strings.TrimSpace(in.Phone) == "" {
		return nil, apperrors.NewValidationError("phone", "phone is required")
	}
	if in.LoanAmount <= 0 {
		return nil, apperrors.NewValidationError("loanAmount", "loanAmount must be greater than zero")
	}
	if in.GivenAmount < 0 {
		return nil, apperrors.NewValidationError("givenAmount", "givenAmount cannot be negative")
	}
	if in.PerDayCollection <= 0 {
		return nil, apperrors.NewValidationError("perDayCollection", "perDayCollection must be greater than zero")
	}
	if in.DaysForLoan <= 0 {
		return nil, apperrors.NewValidationError("daysForLoan", "daysForLoan must be positive")
	}

	l := &Loan{
		Name:                 strings.TrimSpace(in.Name),
		Phone:                strings.TrimSpace(in.Phone),
		LoanAmount:           in.LoanAmount,
		GivenAmount:          in.GivenAmount,
		PerDayCollection:     in.PerDayCollection,
		DaysForLoan:          in.DaysForLoan,
		LoanStartDate:        now,
		LoanEndDate:          now.AddDate(0, 0, in.DaysForLoan),
		RemainingLoan:        in.LoanAmount,
		TotalDueInstallments: dueInstallments(in.LoanAmount, in.PerDayCollection),
		AdharCard:            strings.TrimSpace(in.AdharCard),
		PanCard:              strings.TrimSpace(in.PanCard),
		ReferenceBy:          strings.TrimSpace(in.ReferenceBy),
		Status:               StatusOpen,
	}

	return l, nil
}

// ApplyUpdate applies sparse overrides. A full derived-field recompute runs
// only when loanAmount, perDayCollection or daysForLoan actually change;
// otherwise the overrides are applied as-is. LoanStartDate never moves.
func (l *Loan) ApplyUpdate(in UpdateInput, now time.Time) error {
	effLoanAmount := l.LoanAmount
	if in.LoanAmount != nil {
		effLoanAmount = *in.LoanAmount
	}
	effPerDay := l.PerDayCollection
	if in.PerDayCollection != nil {
		effPerDay = *in.PerDayCollection
	}
	effDays := l.DaysForLoan
	if in.DaysForLoan != nil {
		effDays = *in.DaysForLoan
	}

	if effLoanAmount <= 0 {
		return apperrors.NewValidationError("loanAmount", "loanAmount must be greater than zero")
	}
	if effPerDay <= 0 {
		return apperrors.NewValidationError("perDayCollection", "perDayCollection must be greater than zero")
	}
	if effDays <= 0 {
		return apperrors.NewValidationError("daysForLoan", "daysForLoan must be positive")
	}

	recompute := effLoanAmount != l.LoanAmount || effPerDay != l.PerDayCollection || effDays != l.DaysForLoan

	if in.Name != nil {
		l.Name = strings.TrimSpace(*in.Name)
	}
	if in.Phone != nil {
		l.Phone = strings.TrimSpace(*in.Phone)
	}
	if in.GivenAmount != nil {
		if *in.GivenAmount < 0 {
			return apperrors.NewValidationError("givenAmount", "givenAmount cannot be negative")
		}
		l.GivenAmount = *in.GivenAmount
	}
	if in.AdharCard != nil {
		l.AdharCard = strings.TrimSpace(*in.AdharCard)
	}
	if in.PanCard != nil {
		l.PanCard = strings.TrimSpace(*in.PanCard)
	}
	if in.ReferenceBy != nil {
		l.ReferenceBy = strings.TrimSpace(*in.ReferenceBy)
	}

	l.LoanAmount = effLoanAmount
	l.PerDayCollection = effPerDay
	l.DaysForLoan = effDays

	if recompute {
		l.RemainingLoan = math.Max(l.LoanAmount-l.TotalPaidLoan, 0)
		if l.RemainingLoan <= 0 {
			l.TotalDueInstallments = 0
			l.Status = StatusClosed
		} else {
			l.TotalDueInstallments = dueInstallments(l.RemainingLoan, l.PerDayCollection)
			l.Status = StatusOpen
		}
		l.LoanEndDate = l.LoanStartDate.AddDate(0, 0, l.DaysForLoan)
	}

	l.UpdatedAt = now
	return nil
}

// ApplyInstallment records a payment and recomputes the derived fields.
// Overpayment is rejected, not clamped.
func (l *Loan) ApplyInstallment(amount Money, now time.Time) (*Installment, error) {
	if amount <= 0 {
		return nil, apperrors.NewValidationError("amount", "installment amount must be greater than zero")
	}
	if amount > l.RemainingLoan {
		return nil, fmt.Errorf("%w: attempted %.2f, maximum allowed is %.2f",
			apperrors.ErrInstallmentExceedsRemaining, amount, l.RemainingLoan)
	}

	inst := Installment{
		LoanID:         l.ID,
		Amount:         amount,
		Date:           now,
		RemainingAfter: math.Max(l.RemainingLoan-amount, 0),
	}
	l.Installments = append(l.Installments, inst)

	l.TotalPaidLoan += amount
	l.RemainingLoan = math.Max(l.LoanAmount-l.TotalPaidLoan, 0)
	l.TotalPaidInstallments = len(l.Installments)

	if l.RemainingLoan <= 0 {
		l.TotalDueInstallments = 0
		l.Status = StatusClosed
	} else {
		l.TotalDueInstallments = dueInstallments(l.RemainingLoan, l.PerDayCollection)
	}

	l.UpdatedAt = now
	return &l.Installments[len(l.Installments)-1], nil
}

// Renew applies a follow-up loan for the same customer. A Closed loan starts a
// fresh cycle; an Open loan gets the new principal merged on top of the
// current one. The merge never shrinks the due-installment count mid-cycle.
func (l *Loan) Renew(t RenewalTerms, now time.Time) error {
	if t.LoanAmount <= 0 {
		return apperrors.NewValidationError("loanAmount", "loanAmount must be greater than zero")
	}
	if t.GivenAmount < 0 {
		return apperrors.NewValidationError("givenAmount", "givenAmount cannot be negative")
	}
	if t.PerDayCollection <= 0 {
		return apperrors.NewValidationError("perDayCollection", "perDayCollection must be greater than zero")
	}
	if t.DaysForLoan <= 0 {
		return apperrors.NewValidationError("daysForLoan", "daysForLoan must be positive")
	}

	if l.Status == StatusClosed {
		l.startNewCycle(t, now)
	} else {
		l.topUp(t, now)
	}

	l.UpdatedAt = now
	return nil
}

func (l *Loan) startNewCycle(t RenewalTerms, now time.Time) {
	l.LoanAmount = t.LoanAmount
	l.GivenAmount = t.GivenAmount
	l.PerDayCollection = t.PerDayCollection
	l.DaysForLoan = t.DaysForLoan
	l.LoanStartDate = now
	l.LoanEndDate = now.AddDate(0, 0, t.DaysForLoan)
	l.RemainingLoan = t.LoanAmount
	l.TotalPaidLoan = 0
	l.TotalPaidInstallments = 0
	l.TotalDueInstallments = dueInstallments(t.LoanAmount, t.PerDayCollection)
	l.Status = StatusOpen
	l.Installments = nil
}

func (l *Loan) topUp(t RenewalTerms, now time.Time) {
	l.LoanAmount += t.LoanAmount
	l.GivenAmount += t.GivenAmount
	l.RemainingLoan += t.LoanAmount
	l.DaysForLoan += t.DaysForLoan
	l.PerDayCollection = t.PerDayCollection
	l.LoanStartDate = now
	l.LoanEndDate = now.AddDate(0, 0, l.DaysForLoan)

	recomputed := dueInstallments(l.RemainingLoan, l.PerDayCollection)
	if recomputed > l.TotalDueInstallments {
		l.TotalDueInstallments = recomputed
	}
	// paid totals and installment history are preserved
}

func dueInstallments(remaining, perDay Money) int {
	return int(math.Ceil(remaining / perDay))
}
