package export_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"loanbook/internal/domain/loan"
	"loanbook/internal/export"
	"loanbook/internal/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRepo struct {
	loan.Repository
	loans []loan.Loan
	err   error
}

func (s *stubRepo) ListAllLoans(ctx context.Context, from, to *time.Time) ([]loan.Loan, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.loans, nil
}

func newService(repo *stubRepo) export.ExportService {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return export.NewExportService(repo, logger)
}

func TestParseFormat(t *testing.T) {
	cases := []struct {
		in      string
		want    export.Format
		wantErr bool
	}{
		{"xlsx", export.FormatExcel, false},
		{"excel", export.FormatExcel, false},
		{"", export.FormatExcel, false},
		{"pdf", export.FormatPDF, false},
		{"csv", "", true},
		{"PDF", "", true},
	}

	for _, tc := range cases {
		got, err := export.ParseFormat(tc.in)
		if tc.wantErr {
			assert.ErrorIs(t, err, apperrors.ErrInvalidArgument, "input %q", tc.in)
		} else {
			assert.NoError(t, err, "input %q", tc.in)
			assert.Equal(t, tc.want, got)
		}
	}
}

func TestFormatContentType(t *testing.T) {
	assert.Equal(t, "application/pdf", export.FormatPDF.ContentType())
	assert.Equal(t,
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		export.FormatExcel.ContentType())
}

func TestExportService_ExportLoans(t *testing.T) {
	ctx := context.Background()
	loans := []loan.Loan{
		{ID: 1, Name: "Ravi Kumar", Phone: "9876543210", LoanAmount: 10000, Status: loan.StatusOpen},
	}

	t.Run("xlsx", func(t *testing.T) {
		service := newService(&stubRepo{loans: loans})

		file, err := service.ExportLoans(ctx, export.FormatExcel)
		require.NoError(t, err)
		assert.Equal(t, "loans.xlsx", file.Name)
		assert.Equal(t, export.FormatExcel.ContentType(), file.ContentType)
		assert.NotEmpty(t, file.Data)
	})

	t.Run("pdf", func(t *testing.T) {
		service := newService(&stubRepo{loans: loans})

		file, err := service.ExportLoans(ctx, export.FormatPDF)
		require.NoError(t, err)
		assert.Equal(t, "loan_collection.pdf", file.Name)
		assert.Equal(t, "application/pdf", file.ContentType)
		assert.NotEmpty(t, file.Data)
	})

	t.Run("repository failure", func(t *testing.T) {
		service := newService(&stubRepo{err: errors.New("query failed")})

		file, err := service.ExportLoans(ctx, export.FormatExcel)
		assert.Error(t, err)
		assert.Nil(t, file)
	})
}

func TestExportService_ExportProfit(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	repo := &stubRepo{loans: []loan.Loan{
		{LoanAmount: 1000, GivenAmount: 900, CreatedAt: created},
	}}

	file, err := newService(repo).ExportProfit(ctx, export.FormatExcel, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "profit_report.xlsx", file.Name)
	assert.NotEmpty(t, file.Data)

	file, err = newService(repo).ExportProfit(ctx, export.FormatPDF, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "profit_report.pdf", file.Name)
}

func TestExportService_ExportExpense(t *testing.T) {
	ctx := context.Background()
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	repo := &stubRepo{loans: []loan.Loan{
		{LoanAmount: 1000, GivenAmount: 900, CreatedAt: created},
	}}

	file, err := newService(repo).ExportExpense(ctx, export.FormatExcel, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "expense_report.xlsx", file.Name)

	file, err = newService(repo).ExportExpense(ctx, export.FormatPDF, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "expense_report.pdf", file.Name)
}
