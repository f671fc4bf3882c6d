package batch_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"loanbook/internal/batch"
	"loanbook/internal/domain/loan"

	"github.com/stretchr/testify/assert"
)

// stubRepo satisfies loan.Repository through embedding; only the method the
// sweep job touches is implemented.
type stubRepo struct {
	loan.Repository
	loans []loan.Loan
	err   error
	asOf  time.Time
}

func (s *stubRepo) ListOpenOverdueLoans(ctx context.Context, asOf time.Time) ([]loan.Loan, error) {
	s.asOf = asOf
	if s.err != nil {
		return nil, s.err
	}
	return s.loans, nil
}

func TestOverdueSweepJobRun(t *testing.T) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("sweeps overdue loans", func(t *testing.T) {
		repo := &stubRepo{loans: []loan.Loan{
			{ID: 1, Phone: "9876543210", RemainingLoan: 4500, LoanEndDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)},
			{ID: 2, Phone: "9123456780", RemainingLoan: 1200, LoanEndDate: time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)},
		}}

		job := batch.NewOverdueSweepJob(repo, logger)
		err := job.Run(ctx)

		assert.NoError(t, err)
		assert.Equal(t, time.UTC, repo.asOf.Location(), "cutoff should be passed in UTC")
		assert.WithinDuration(t, time.Now().UTC(), repo.asOf, time.Minute)
	})

	t.Run("handles no overdue loans", func(t *testing.T) {
		repo := &stubRepo{loans: []loan.Loan{}}

		job := batch.NewOverdueSweepJob(repo, logger)
		err := job.Run(ctx)

		assert.NoError(t, err)
	})

	t.Run("returns error when listing fails", func(t *testing.T) {
		dbErr := errors.New("connection refused")
		repo := &stubRepo{err: dbErr}

		job := batch.NewOverdueSweepJob(repo, logger)
		err := job.Run(ctx)

		assert.Error(t, err)
		assert.ErrorIs(t, err, dbErr)
		assert.Contains(t, err.Error(), "cannot run sweep")
	})

	t.Run("panics on nil dependencies", func(t *testing.T) {
		assert.Panics(t, func() { batch.NewOverdueSweepJob(nil, logger) })
		assert.Panics(t, func() { batch.NewOverdueSweepJob(&stubRepo{}, nil) })
	})
}
