package export

import (
	"fmt"
	"strconv"

	"loanbook/internal/domain/loan"
	"loanbook/internal/domain/report"

	"github.com/shopspring/decimal"
)

// Column carries a header label plus width hints for both sinks: Width in
// spreadsheet character units, PDFWidth in points.
type Column struct {
	Header   string
	Width    float64
	PDFWidth float64
}

// Table is the row model handed to a renderer. Summary, when present, is
// drawn as a trailing row.
type Table struct {
	Title   string
	Columns []Column
	Rows    [][]string
	Summary []string
}

var loanColumns = []Column{
	{Header: "#", Width: 5, PDFWidth: 25},
	{Header: "Name", Width: 20, PDFWidth: 80},
	{Header: "Phone", Width: 15, PDFWidth: 70},
	{Header: "Loan", Width: 12, PDFWidth: 53},
	{Header: "Given", Width: 12, PDFWidth: 40},
	{Header: "Per Day", Width: 12, PDFWidth: 40},
	{Header: "Days", Width: 10, PDFWidth: 30},
	{Header: "Due Inst.", Width: 12, PDFWidth: 50},
	{Header: "Paid Inst.", Width: 12, PDFWidth: 50},
	{Header: "Paid Loan", Width: 12, PDFWidth: 50},
	{Header: "Remaining", Width: 12, PDFWidth: 60},
	{Header: "Aadhaar", Width: 18, PDFWidth: 70},
	{Header: "PAN", Width: 18, PDFWidth: 60},
	{Header: "Reference", Width: 18, PDFWidth: 60},
	{Header: "Status", Width: 10, PDFWidth: 50},
}

func BuildLoanTable(loans []loan.Loan) Table {
	rows := make([][]string, 0, len(loans))
	for i, l := range loans {
		rows = append(rows, []string{
			strconv.Itoa(i + 1),
			orDash(l.Name),
			orDash(l.Phone),
			money(l.LoanAmount),
			money(l.GivenAmount),
			money(l.PerDayCollection),
			strconv.Itoa(l.DaysForLoan),
			strconv.Itoa(l.TotalDueInstallments),
			strconv.Itoa(l.TotalPaidInstallments),
			money(l.TotalPaidLoan),
			money(l.RemainingLoan),
			orDash(l.AdharCard),
			orDash(l.PanCard),
			orDash(l.ReferenceBy),
			string(l.Status),
		})
	}

	return Table{
		Title:   "Loan Collection Report",
		Columns: loanColumns,
		Rows:    rows,
	}
}

func BuildProfitTable(rep *report.ProfitReport) Table {
	rows := make([][]string, 0, len(rep.Daily))
	for i, p := range rep.Daily {
		rows = append(rows, []string{strconv.Itoa(i + 1), p.Date, money(p.Amount)})
	}

	return Table{
		Title: "Daily Profit Report",
		Columns: []Column{
			{Header: "#", Width: 5, PDFWidth: 40},
			{Header: "Date", Width: 15, PDFWidth: 120},
			{Header: "Profit", Width: 14, PDFWidth: 100},
		},
		Rows:    rows,
		Summary: []string{"", "Total", money(rep.TotalProfit)},
	}
}

func BuildExpenseTable(rep *report.ExpenseReport) Table {
	rows := make([][]string, 0, len(rep.Daily))
	for i, p := range rep.Daily {
		rows = append(rows, []string{strconv.Itoa(i + 1), p.Date, money(p.Amount)})
	}

	return Table{
		Title: "Daily Expense Report",
		Columns: []Column{
			{Header: "#", Width: 5, PDFWidth: 40},
			{Header: "Date", Width: 15, PDFWidth: 120},
			{Header: "Expense", Width: 14, PDFWidth: 100},
		},
		Rows:    rows,
		Summary: []string{"", "Total", money(rep.TotalExpense)},
	}
}

func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func (t Table) validateRows() error {
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("row %d has %d values, expected %d", i, len(row), len(t.Columns))
		}
	}
	if t.Summary != nil && len(t.Summary) != len(t.Columns) {
		return fmt.Errorf("summary row has %d values, expected %d", len(t.Summary), len(t.Columns))
	}
	return nil
}
