package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"loanbook/internal/domain/loan"
	"loanbook/internal/domain/report"
	"loanbook/internal/infrastructure/monitoring"
	"loanbook/internal/pkg/apperrors"
)

type Format string

const (
	FormatExcel Format = "xlsx"
	FormatPDF   Format = "pdf"
)

func ParseFormat(s string) (Format, error) {
	switch s {
	case "xlsx", "excel", "":
		return FormatExcel, nil
	case "pdf":
		return FormatPDF, nil
	default:
		return "", fmt.Errorf("%w: unsupported export format %q (use xlsx or pdf)", apperrors.ErrInvalidArgument, s)
	}
}

func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// File is a rendered export ready to be sent as a download.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type ExportService interface {
	ExportLoans(ctx context.Context, format Format) (*File, error)

	ExportProfit(ctx context.Context, format Format, from, to *time.Time) (*File, error)

	ExportExpense(ctx context.Context, format Format, from, to *time.Time) (*File, error)
}

type exportServiceImpl struct {
	repo   loan.Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewExportService(r loan.Repository, logger *slog.Logger) ExportService {
	if r == nil {
		panic("loan repository cannot be nil")
	}
	return &exportServiceImpl{
		repo:   r,
		logger: logger.With("component", "ExportService"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *exportServiceImpl) ExportLoans(ctx context.Context, format Format) (*File, error) {
	loans, err := s.repo.ListAllLoans(ctx, nil, nil)
	if err != nil {
		s.logger.Error("Failed to load loans for export", slog.Any("error", err))
		return nil, fmt.Errorf("failed to load loans for export: %w", err)
	}

	file, err := s.render("loans", format, BuildLoanTable(loans), "loans.xlsx", "loan_collection.pdf")
	if err != nil {
		return nil, err
	}
	s.logger.Info("Loan export generated", "format", format, "loans", len(loans), "bytes", len(file.Data))
	return file, nil
}

func (s *exportServiceImpl) ExportProfit(ctx context.Context, format Format, from, to *time.Time) (*File, error) {
	loans, err := s.repo.ListAllLoans(ctx, from, to)
	if err != nil {
		s.logger.Error("Failed to load loans for profit export", slog.Any("error", err))
		return nil, fmt.Errorf("failed to load loans for profit export: %w", err)
	}

	rep := report.BuildProfitReport(loans, s.now())
	file, err := s.render("profit", format, BuildProfitTable(&rep), "profit_report.xlsx", "profit_report.pdf")
	if err != nil {
		return nil, err
	}
	s.logger.Info("Profit export generated", "format", format, "buckets", len(rep.Daily), "bytes", len(file.Data))
	return file, nil
}

func (s *exportServiceImpl) ExportExpense(ctx context.Context, format Format, from, to *time.Time) (*File, error) {
	loans, err := s.repo.ListAllLoans(ctx, from, to)
	if err != nil {
		s.logger.Error("Failed to load loans for expense export", slog.Any("error", err))
		return nil, fmt.Errorf("failed to load loans for expense export: %w", err)
	}

	rep := report.BuildExpenseReport(loans)
	file, err := s.render("expense", format, BuildExpenseTable(&rep), "expense_report.xlsx", "expense_report.pdf")
	if err != nil {
		return nil, err
	}
	s.logger.Info("Expense export generated", "format", format, "buckets", len(rep.Daily), "bytes", len(file.Data))
	return file, nil
}

func (s *exportServiceImpl) render(kind string, format Format, table Table, excelName, pdfName string) (*File, error) {
	var (
		data []byte
		name string
		err  error
	)

	switch format {
	case FormatPDF:
		data, err = RenderPDF(table)
		name = pdfName
	default:
		data, err = RenderExcel(table)
		name = excelName
	}
	if err != nil {
		s.logger.Error("Failed to render export", "kind", kind, "format", format, slog.Any("error", err))
		return nil, fmt.Errorf("%w: failed to render %s export: %v", apperrors.ErrInternalServer, kind, err)
	}

	monitoring.RecordExport(kind, string(format))
	return &File{Name: name, ContentType: format.ContentType(), Data: data}, nil
}
