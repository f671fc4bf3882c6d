package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"loanbook/internal/domain/loan"
	"loanbook/internal/infrastructure/monitoring"
)

// OverdueSweepJob counts Open loans whose end date has passed and exports the
// result as a gauge. It changes no loan state; overdue loans stay Open until
// they are paid off or renewed.
type OverdueSweepJob struct {
	repo   loan.Repository
	logger *slog.Logger
}

func NewOverdueSweepJob(repo loan.Repository, logger *slog.Logger) *OverdueSweepJob {
	if repo == nil || logger == nil {
		panic("OverdueSweepJob dependencies cannot be nil")
	}
	return &OverdueSweepJob{
		repo:   repo,
		logger: logger.With("job", "OverdueSweep"),
	}
}

func (j *OverdueSweepJob) Run(ctx context.Context) error {
	startTime := time.Now()
	j.logger.InfoContext(ctx, "Starting overdue loan sweep.")

	overdue, err := j.repo.ListOpenOverdueLoans(ctx, time.Now().UTC())
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list overdue loans, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run sweep, failed to list overdue loans: %w", err)
	}

	var totalOutstanding loan.Money
	for _, l := range overdue {
		totalOutstanding += l.RemainingLoan
		j.logger.DebugContext(ctx, "Overdue loan",
			slog.Int64("loanID", l.ID),
			slog.String("phone", l.Phone),
			slog.Time("endDate", l.LoanEndDate),
			slog.Float64("remainingLoan", l.RemainingLoan),
		)
	}

	monitoring.SetOpenOverdueLoans(len(overdue))

	j.logger.InfoContext(ctx, "Overdue loan sweep finished.",
		slog.Duration("duration", time.Since(startTime)),
		slog.Int("overdue_loans", len(overdue)),
		slog.Float64("total_outstanding", totalOutstanding),
	)
	return nil
}
