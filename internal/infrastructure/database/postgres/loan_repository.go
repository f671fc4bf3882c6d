package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"loanbook/internal/domain/loan"
	"loanbook/internal/infrastructure/monitoring"
	"loanbook/internal/pkg/apperrors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pashagolub/pgxmock/v4"
)

type DBPool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Acquire(ctx context.Context) (*pgxpool.Conn, error)
	Close()
}

var _ DBPool = (*pgxpool.Pool)(nil)

var _ DBPool = (pgxmock.PgxPoolIface)(nil)

var errMsgFormat = "%w: %w"

// loan_installments rows are removed by ON DELETE CASCADE when the parent
// loan row is deleted.
const loanColumns = `id, name, phone, loan_amount, given_amount, per_day_collection, days_for_loan,
        loan_start_date, loan_end_date, total_due_installments, total_paid_installments,
        total_paid_loan, remaining_loan, adhar_card, pan_card, reference_by, status, created_at, updated_at`

const installmentColumns = `id, loan_id, amount, paid_at, remaining_after`

// Columns loan list requests may sort by, keyed by the API field name.
var sortColumns = map[string]string{
	"createdAt":     "created_at",
	"name":          "name",
	"phone":         "phone",
	"loanAmount":    "loan_amount",
	"remainingLoan": "remaining_loan",
	"loanStartDate": "loan_start_date",
	"loanEndDate":   "loan_end_date",
	"status":        "status",
}

type LoanRepository struct {
	db     DBPool
	logger *slog.Logger
}

func NewLoanRepository(db DBPool, logger *slog.Logger) *LoanRepository {
	return &LoanRepository{db: db, logger: logger.With("component", "LoanRepository")}
}

var _ loan.Repository = (*LoanRepository)(nil)

func (r *LoanRepository) BeginTx(ctx context.Context) (pgx.Tx, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to begin transaction", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return tx, nil
}

func (r *LoanRepository) CommitTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Commit(ctx)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to commit transaction", "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *LoanRepository) RollbackTx(ctx context.Context, tx pgx.Tx) error {
	err := tx.Rollback(ctx)

	if err != nil && !errors.Is(err, pgx.ErrTxClosed) {
		r.logger.ErrorContext(ctx, "Failed to rollback transaction", "error", err)

		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *LoanRepository) CreateLoan(ctx context.Context, l *loan.Loan) (*loan.Loan, error) {
	sql := `
        INSERT INTO loans (name, phone, loan_amount, given_amount, per_day_collection, days_for_loan,
            loan_start_date, loan_end_date, total_due_installments, total_paid_installments,
            total_paid_loan, remaining_loan, adhar_card, pan_card, reference_by, status, created_at, updated_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW(), NOW())
        RETURNING ` + loanColumns

	row := r.db.QueryRow(ctx, sql,
		l.Name, l.Phone, l.LoanAmount, l.GivenAmount, l.PerDayCollection, l.DaysForLoan,
		l.LoanStartDate, l.LoanEndDate, l.TotalDueInstallments, l.TotalPaidInstallments,
		l.TotalPaidLoan, l.RemainingLoan, l.AdharCard, l.PanCard, l.ReferenceBy, l.Status,
	)

	created, err := scanLoan(row)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert loan", "error", err)
		return nil, fmt.Errorf("%w: failed to insert loan: %w", apperrors.ErrDatabase, err)
	}
	r.logger.InfoContext(ctx, "Loan created in DB", "loan_id", created.ID)

	return created, nil
}

func (r *LoanRepository) GetLoanByID(ctx context.Context, loanID int64) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1`
	status := "success"
	startTime := time.Now()

	l, err := scanLoan(r.db.QueryRow(ctx, query, loanID))

	if err != nil {
		status = "error"
	}
	monitoring.RecordDBQuery("GetLoanByID", status, time.Since(startTime))

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found", "loan_id", loanID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to get loan by ID", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	installments, err := r.GetInstallments(ctx, loanID)
	if err != nil {
		return nil, err
	}
	l.Installments = installments

	return l, nil
}

func (r *LoanRepository) GetInstallments(ctx context.Context, loanID int64) ([]loan.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM loan_installments WHERE loan_id = $1 ORDER BY id ASC`

	rows, err := r.db.Query(ctx, query, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query installments", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	return collectInstallments(rows, r.logger, ctx, loanID)
}

func (r *LoanRepository) ListLoans(ctx context.Context, filter loan.ListFilter) ([]loan.Loan, error) {
	where, args := buildLoanFilter(filter)

	sortColumn, ok := sortColumns[filter.SortBy]
	if !ok {
		sortColumn = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(filter.SortOrder, "asc") {
		order = "ASC"
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}

	args = append(args, pageSize, (page-1)*pageSize)
	query := fmt.Sprintf(`SELECT %s FROM loans%s ORDER BY %s %s LIMIT $%d OFFSET $%d`,
		loanColumns, where, sortColumn, order, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query loans", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	return collectLoans(rows)
}

func (r *LoanRepository) CountLoans(ctx context.Context, filter loan.ListFilter) (int64, error) {
	where, args := buildLoanFilter(filter)
	query := `SELECT COUNT(*) FROM loans` + where

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		r.logger.ErrorContext(ctx, "Failed to count loans", "error", err)
		return 0, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return count, nil
}

func (r *LoanRepository) SaveLoan(ctx context.Context, l *loan.Loan) error {
	cmdTag, err := r.db.Exec(ctx, saveLoanSQL, saveLoanArgs(l)...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to save loan", "loan_id", l.ID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Loan save affected zero rows", "loan_id", l.ID)
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *LoanRepository) SaveLoanInTx(ctx context.Context, tx pgx.Tx, l *loan.Loan) error {
	cmdTag, err := tx.Exec(ctx, saveLoanSQL, saveLoanArgs(l)...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to save loan in tx", "loan_id", l.ID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Loan save affected zero rows", "loan_id", l.ID)
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *LoanRepository) DeleteLoan(ctx context.Context, loanID int64) error {
	cmdTag, err := r.db.Exec(ctx, `DELETE FROM loans WHERE id = $1`, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to delete loan", "loan_id", loanID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	if cmdTag.RowsAffected() == 0 {
		r.logger.WarnContext(ctx, "Loan delete affected zero rows", "loan_id", loanID)
		return apperrors.ErrNotFound
	}
	r.logger.InfoContext(ctx, "Loan deleted from DB", "loan_id", loanID)
	return nil
}

func (r *LoanRepository) ListAllLoans(ctx context.Context, from, to *time.Time) ([]loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans`
	args := make([]any, 0, 2)
	conds := make([]string, 0, 2)

	if from != nil {
		args = append(args, *from)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if to != nil {
		args = append(args, *to)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at ASC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query all loans", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	return collectLoans(rows)
}

func (r *LoanRepository) ListOpenOverdueLoans(ctx context.Context, asOf time.Time) ([]loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE status = $1 AND loan_end_date < $2 ORDER BY loan_end_date ASC`

	rows, err := r.db.Query(ctx, query, loan.StatusOpen, asOf)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query overdue loans", "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	return collectLoans(rows)
}

func (r *LoanRepository) GetLoanByIDForUpdate(ctx context.Context, tx pgx.Tx, loanID int64) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE id = $1 FOR UPDATE`

	l, err := scanLoan(tx.QueryRow(ctx, query, loanID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "Loan not found for update", "loan_id", loanID)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to lock loan row", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	installments, err := r.getInstallmentsInTx(ctx, tx, l.ID)
	if err != nil {
		return nil, err
	}
	l.Installments = installments

	return l, nil
}

func (r *LoanRepository) FindLatestByPhoneForUpdate(ctx context.Context, tx pgx.Tx, phone string) (*loan.Loan, error) {
	query := `SELECT ` + loanColumns + ` FROM loans WHERE phone = $1 ORDER BY created_at DESC LIMIT 1 FOR UPDATE`

	l, err := scanLoan(tx.QueryRow(ctx, query, phone))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.WarnContext(ctx, "No loan found for phone", "phone", phone)
			return nil, apperrors.ErrNotFound
		}
		r.logger.ErrorContext(ctx, "Failed to lock loan row by phone", "phone", phone, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	installments, err := r.getInstallmentsInTx(ctx, tx, l.ID)
	if err != nil {
		return nil, err
	}
	l.Installments = installments

	return l, nil
}

func (r *LoanRepository) AddInstallmentInTx(ctx context.Context, tx pgx.Tx, inst *loan.Installment) error {
	sql := `
        INSERT INTO loan_installments (loan_id, amount, paid_at, remaining_after)
        VALUES ($1, $2, $3, $4)
        RETURNING id`

	err := tx.QueryRow(ctx, sql, inst.LoanID, inst.Amount, inst.Date, inst.RemainingAfter).Scan(&inst.ID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to insert installment", "loan_id", inst.LoanID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *LoanRepository) ClearInstallmentsInTx(ctx context.Context, tx pgx.Tx, loanID int64) error {
	_, err := tx.Exec(ctx, `DELETE FROM loan_installments WHERE loan_id = $1`, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to clear installments", "loan_id", loanID, "error", err)
		return fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	return nil
}

func (r *LoanRepository) getInstallmentsInTx(ctx context.Context, tx pgx.Tx, loanID int64) ([]loan.Installment, error) {
	query := `SELECT ` + installmentColumns + ` FROM loan_installments WHERE loan_id = $1 ORDER BY id ASC`

	rows, err := tx.Query(ctx, query, loanID)
	if err != nil {
		r.logger.ErrorContext(ctx, "Failed to query installments in tx", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}
	defer rows.Close()

	return collectInstallments(rows, r.logger, ctx, loanID)
}

const saveLoanSQL = `
        UPDATE loans
        SET name = $1, phone = $2, loan_amount = $3, given_amount = $4, per_day_collection = $5,
            days_for_loan = $6, loan_start_date = $7, loan_end_date = $8, total_due_installments = $9,
            total_paid_installments = $10, total_paid_loan = $11, remaining_loan = $12,
            adhar_card = $13, pan_card = $14, reference_by = $15, status = $16, updated_at = NOW()
        WHERE id = $17`

func saveLoanArgs(l *loan.Loan) []any {
	return []any{
		l.Name, l.Phone, l.LoanAmount, l.GivenAmount, l.PerDayCollection,
		l.DaysForLoan, l.LoanStartDate, l.LoanEndDate, l.TotalDueInstallments,
		l.TotalPaidInstallments, l.TotalPaidLoan, l.RemainingLoan,
		l.AdharCard, l.PanCard, l.ReferenceBy, l.Status, l.ID,
	}
}

// buildLoanFilter renders the shared WHERE clause for ListLoans/CountLoans.
// SearchKey is a case-insensitive substring match across name, phone and
// reference_by; the date range is containment on created_at.
func buildLoanFilter(filter loan.ListFilter) (string, []any) {
	conds := make([]string, 0, 4)
	args := make([]any, 0, 4)

	if filter.SearchKey != "" {
		args = append(args, "%"+filter.SearchKey+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(name ILIKE $%d OR phone ILIKE $%d OR reference_by ILIKE $%d)", n, n, n))
	}
	if filter.Status != "" {
		args = append(args, filter.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.CreatedFrom != nil {
		args = append(args, *filter.CreatedFrom)
		conds = append(conds, fmt.Sprintf("created_at >= $%d", len(args)))
	}
	if filter.CreatedTo != nil {
		args = append(args, *filter.CreatedTo)
		conds = append(conds, fmt.Sprintf("created_at <= $%d", len(args)))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanLoan(row pgx.Row) (*loan.Loan, error) {
	var l loan.Loan
	err := row.Scan(
		&l.ID, &l.Name, &l.Phone, &l.LoanAmount, &l.GivenAmount, &l.PerDayCollection, &l.DaysForLoan,
		&l.LoanStartDate, &l.LoanEndDate, &l.TotalDueInstallments, &l.TotalPaidInstallments,
		&l.TotalPaidLoan, &l.RemainingLoan, &l.AdharCard, &l.PanCard, &l.ReferenceBy, &l.Status,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func collectLoans(rows pgx.Rows) ([]loan.Loan, error) {
	loans := make([]loan.Loan, 0)
	for rows.Next() {
		var l loan.Loan
		err := rows.Scan(
			&l.ID, &l.Name, &l.Phone, &l.LoanAmount, &l.GivenAmount, &l.PerDayCollection, &l.DaysForLoan,
			&l.LoanStartDate, &l.LoanEndDate, &l.TotalDueInstallments, &l.TotalPaidInstallments,
			&l.TotalPaidLoan, &l.RemainingLoan, &l.AdharCard, &l.PanCard, &l.ReferenceBy, &l.Status,
			&l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		loans = append(loans, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return loans, nil
}

func collectInstallments(rows pgx.Rows, logger *slog.Logger, ctx context.Context, loanID int64) ([]loan.Installment, error) {
	installments := make([]loan.Installment, 0)
	for rows.Next() {
		var inst loan.Installment
		err := rows.Scan(&inst.ID, &inst.LoanID, &inst.Amount, &inst.Date, &inst.RemainingAfter)
		if err != nil {
			logger.ErrorContext(ctx, "Failed to scan installment row", "loan_id", loanID, "error", err)
			return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
		}
		installments = append(installments, inst)
	}

	if err := rows.Err(); err != nil {
		logger.ErrorContext(ctx, "Error iterating installment rows", "loan_id", loanID, "error", err)
		return nil, fmt.Errorf(errMsgFormat, apperrors.ErrDatabase, err)
	}

	return installments, nil
}
