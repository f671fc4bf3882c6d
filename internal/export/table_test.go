package export

import (
	"testing"
	"time"

	"loanbook/internal/domain/loan"
	"loanbook/internal/domain/report"

	"github.com/stretchr/testify/assert"
)

func sampleLoans() []loan.Loan {
	created := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	return []loan.Loan{
		{
			ID:                    1,
			Name:                  "Ravi Kumar",
			Phone:                 "9876543210",
			LoanAmount:            10000,
			GivenAmount:           9000,
			PerDayCollection:      500,
			DaysForLoan:           20,
			TotalDueInstallments:  20,
			TotalPaidInstallments: 2,
			TotalPaidLoan:         1000,
			RemainingLoan:         9000,
			AdharCard:             "1234-5678-9012",
			Status:                loan.StatusOpen,
			CreatedAt:             created,
		},
		{
			ID:         2,
			Name:       "Meena Devi",
			Phone:      "9123456780",
			LoanAmount: 5000,
			Status:     loan.StatusClosed,
			CreatedAt:  created.AddDate(0, 0, 1),
		},
	}
}

func TestBuildLoanTable(t *testing.T) {
	table := BuildLoanTable(sampleLoans())

	assert.Equal(t, "Loan Collection Report", table.Title)
	assert.Len(t, table.Columns, 15)
	assert.Len(t, table.Rows, 2)
	assert.Nil(t, table.Summary)
	assert.NoError(t, table.validateRows())

	first := table.Rows[0]
	assert.Equal(t, "1", first[0])
	assert.Equal(t, "Ravi Kumar", first[1])
	assert.Equal(t, "10000.00", first[3])
	assert.Equal(t, "500.00", first[5])
	assert.Equal(t, "20", first[7])
	assert.Equal(t, "9000.00", first[10])
	assert.Equal(t, "Open", first[14])

	// blank optional fields render as a dash
	second := table.Rows[1]
	assert.Equal(t, "-", second[11])
	assert.Equal(t, "-", second[12])
	assert.Equal(t, "-", second[13])
	assert.Equal(t, "Closed", second[14])
}

func TestBuildProfitTable(t *testing.T) {
	rep := report.ProfitReport{
		Daily: []report.DailyPoint{
			{Date: "2025-03-10", Amount: 1100},
			{Date: "2025-03-11", Amount: 50},
		},
		TotalProfit: 1150,
		TotalLoans:  3,
	}

	table := BuildProfitTable(&rep)

	assert.Equal(t, "Daily Profit Report", table.Title)
	assert.Len(t, table.Columns, 3)
	assert.Len(t, table.Rows, 2)
	assert.Equal(t, []string{"1", "2025-03-10", "1100.00"}, table.Rows[0])
	assert.Equal(t, []string{"", "Total", "1150.00"}, table.Summary)
	assert.NoError(t, table.validateRows())
}

func TestBuildExpenseTable(t *testing.T) {
	rep := report.ExpenseReport{
		Daily:        []report.DailyPoint{{Date: "2025-03-10", Amount: 9000}},
		TotalExpense: 9000,
		TotalLoans:   1,
	}

	table := BuildExpenseTable(&rep)

	assert.Equal(t, "Daily Expense Report", table.Title)
	assert.Equal(t, []string{"1", "2025-03-10", "9000.00"}, table.Rows[0])
	assert.Equal(t, []string{"", "Total", "9000.00"}, table.Summary)
}

func TestTableValidateRows(t *testing.T) {
	table := Table{
		Columns: []Column{{Header: "A"}, {Header: "B"}},
		Rows:    [][]string{{"1"}},
	}
	assert.Error(t, table.validateRows())

	table.Rows = [][]string{{"1", "2"}}
	assert.NoError(t, table.validateRows())

	table.Summary = []string{"only one"}
	assert.Error(t, table.validateRows())
}
