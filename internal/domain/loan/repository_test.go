package loan

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type MockRepository struct {
	mock.Mock
}

func (_m *MockRepository) CreateLoan(ctx context.Context, l *Loan) (*Loan, error) {
	ret := _m.Called(ctx, l)

	var r0 *Loan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Loan)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) GetLoanByID(ctx context.Context, loanID int64) (*Loan, error) {
	ret := _m.Called(ctx, loanID)

	var r0 *Loan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Loan)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) ListLoans(ctx context.Context, filter ListFilter) ([]Loan, error) {
	ret := _m.Called(ctx, filter)

	var r0 []Loan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Loan)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) CountLoans(ctx context.Context, filter ListFilter) (int64, error) {
	ret := _m.Called(ctx, filter)
	return ret.Get(0).(int64), ret.Error(1)
}

func (_m *MockRepository) SaveLoan(ctx context.Context, l *Loan) error {
	ret := _m.Called(ctx, l)
	return ret.Error(0)
}

func (_m *MockRepository) DeleteLoan(ctx context.Context, loanID int64) error {
	ret := _m.Called(ctx, loanID)
	return ret.Error(0)
}

func (_m *MockRepository) GetInstallments(ctx context.Context, loanID int64) ([]Installment, error) {
	ret := _m.Called(ctx, loanID)

	var r0 []Installment
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Installment)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) ListAllLoans(ctx context.Context, from, to *time.Time) ([]Loan, error) {
	ret := _m.Called(ctx, from, to)

	var r0 []Loan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Loan)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) ListOpenOverdueLoans(ctx context.Context, asOf time.Time) ([]Loan, error) {
	ret := _m.Called(ctx, asOf)

	var r0 []Loan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).([]Loan)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	ret := _m.Called(ctx)

	var r0 pgx.Tx
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(pgx.Tx)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	ret := _m.Called(ctx, tx)
	return ret.Error(0)
}

func (_m *MockRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	ret := _m.Called(ctx, tx)
	return ret.Error(0)
}

func (_m *MockRepository) GetLoanByIDForUpdate(ctx context.Context, tx pgx.Tx, loanID int64) (*Loan, error) {
	ret := _m.Called(ctx, tx, loanID)

	var r0 *Loan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Loan)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) FindLatestByPhoneForUpdate(ctx context.Context, tx pgx.Tx, phone string) (*Loan, error) {
	ret := _m.Called(ctx, tx, phone)

	var r0 *Loan
	if ret.Get(0) != nil {
		r0 = ret.Get(0).(*Loan)
	}
	return r0, ret.Error(1)
}

func (_m *MockRepository) SaveLoanInTx(ctx context.Context, tx pgx.Tx, l *Loan) error {
	ret := _m.Called(ctx, tx, l)
	return ret.Error(0)
}

func (_m *MockRepository) AddInstallmentInTx(ctx context.Context, tx pgx.Tx, inst *Installment) error {
	ret := _m.Called(ctx, tx, inst)
	return ret.Error(0)
}

func (_m *MockRepository) ClearInstallmentsInTx(ctx context.Context, tx pgx.Tx, loanID int64) error {
	ret := _m.Called(ctx, tx, loanID)
	return ret.Error(0)
}

var _ Repository = (*MockRepository)(nil)
