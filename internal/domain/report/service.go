package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"loanbook/internal/domain/loan"
)

type ReportService interface {
	GetProfitSummary(ctx context.Context, from, to *time.Time) (*ProfitReport, error)

	GetExpenseSummary(ctx context.Context, from, to *time.Time) (*ExpenseReport, error)
}

type reportServiceImpl struct {
	repo   loan.Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewReportService(r loan.Repository, logger *slog.Logger) ReportService {
	if r == nil {
		panic("loan repository cannot be nil")
	}
	return &reportServiceImpl{
		repo:   r,
		logger: logger.With("component", "ReportService"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *reportServiceImpl) GetProfitSummary(ctx context.Context, from, to *time.Time) (*ProfitReport, error) {
	loans, err := s.repo.ListAllLoans(ctx, from, to)
	if err != nil {
		s.logger.Error("Failed to load loans for profit summary", slog.Any("error", err))
		return nil, fmt.Errorf("failed to load loans for profit summary: %w", err)
	}

	rep := BuildProfitReport(loans, s.now())
	s.logger.Info("Profit summary computed", "totalLoans", rep.TotalLoans, "buckets", len(rep.Daily))
	return &rep, nil
}

func (s *reportServiceImpl) GetExpenseSummary(ctx context.Context, from, to *time.Time) (*ExpenseReport, error) {
	loans, err := s.repo.ListAllLoans(ctx, from, to)
	if err != nil {
		s.logger.Error("Failed to load loans for expense summary", slog.Any("error", err))
		return nil, fmt.Errorf("failed to load loans for expense summary: %w", err)
	}

	rep := BuildExpenseReport(loans)
	s.logger.Info("Expense summary computed", "totalLoans", rep.TotalLoans, "buckets", len(rep.Daily))
	return &rep, nil
}
