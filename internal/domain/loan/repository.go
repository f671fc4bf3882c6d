package loan

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
)

// ListFilter is the query vocabulary for paginated loan listing. SearchKey is
// matched case-insensitively as a substring of name, phone or referenceBy.
// The date range is strict containment on the creation timestamp.
type ListFilter struct {
	SearchKey   string
	Status      Status
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	SortBy      string
	SortOrder   string
	Page        int
	PageSize    int
}

type Repository interface {
	CreateLoan(ctx context.Context, l *Loan) (*Loan, error)

	GetLoanByID(ctx context.Context, loanID int64) (*Loan, error)

	ListLoans(ctx context.Context, filter ListFilter) ([]Loan, error)

	CountLoans(ctx context.Context, filter ListFilter) (int64, error)

	// SaveLoan persists the derived fields of an in-memory mutated loan.
	SaveLoan(ctx context.Context, l *Loan) error

	DeleteLoan(ctx context.Context, loanID int64) error

	GetInstallments(ctx context.Context, loanID int64) ([]Installment, error)

	// ListAllLoans returns every loan, optionally restricted to a creation
	// timestamp range, ordered by creation time. Used by reports and exports.
	ListAllLoans(ctx context.Context, from, to *time.Time) ([]Loan, error)

	ListOpenOverdueLoans(ctx context.Context, asOf time.Time) ([]Loan, error)

	BeginTx(ctx context.Context) (pgx.Tx, error)

	CommitTx(ctx context.Context, tx pgx.Tx) error

	RollbackTx(ctx context.Context, tx pgx.Tx) error

	// GetLoanByIDForUpdate locks the loan row for the duration of the
	// transaction, serializing concurrent mutations per identifier.
	GetLoanByIDForUpdate(ctx context.Context, tx pgx.Tx, loanID int64) (*Loan, error)

	// FindLatestByPhoneForUpdate locks the most recently created loan for the
	// given phone number.
	FindLatestByPhoneForUpdate(ctx context.Context, tx pgx.Tx, phone string) (*Loan, error)

	SaveLoanInTx(ctx context.Context, tx pgx.Tx, l *Loan) error

	AddInstallmentInTx(ctx context.Context, tx pgx.Tx, inst *Installment) error

	ClearInstallmentsInTx(ctx context.Context, tx pgx.Tx, loanID int64) error
}
