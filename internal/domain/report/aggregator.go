package report

import (
	"time"

	"loanbook/internal/domain/loan"
)

const dayFormat = "2006-01-02"

// DailyPoint is one calendar-day bucket. Date is the UTC day of the loans'
// creation timestamps.
type DailyPoint struct {
	Date   string
	Amount loan.Money
}

type ProfitReport struct {
	Daily           []DailyPoint
	TotalProfit     loan.Money
	LastMonthProfit loan.Money
	TotalLoans      int
}

type ExpenseReport struct {
	Daily        []DailyPoint
	TotalExpense loan.Money
	TotalLoans   int
}

// BuildProfitReport reduces a loan snapshot into per-day profit buckets.
// Profit per loan is loanAmount - givenAmount. Buckets appear in first-seen
// order of the input, not chronological order. LastMonthProfit covers the
// calendar month immediately preceding the month of now, in UTC.
func BuildProfitReport(loans []loan.Loan, now time.Time) ProfitReport {
	rep := ProfitReport{TotalLoans: len(loans)}

	monthStart, monthEnd := previousMonthWindow(now.UTC())

	index := make(map[string]int)
	for _, l := range loans {
		profit := l.LoanAmount - l.GivenAmount
		day := l.CreatedAt.UTC().Format(dayFormat)

		i, ok := index[day]
		if !ok {
			i = len(rep.Daily)
			index[day] = i
			rep.Daily = append(rep.Daily, DailyPoint{Date: day})
		}
		rep.Daily[i].Amount += profit
		rep.TotalProfit += profit

		created := l.CreatedAt.UTC()
		if !created.Before(monthStart) && created.Before(monthEnd) {
			rep.LastMonthProfit += profit
		}
	}

	return rep
}

// BuildExpenseReport uses the same bucketing with givenAmount per loan and no
// profit subtraction.
func BuildExpenseReport(loans []loan.Loan) ExpenseReport {
	rep := ExpenseReport{TotalLoans: len(loans)}

	index := make(map[string]int)
	for _, l := range loans {
		day := l.CreatedAt.UTC().Format(dayFormat)

		i, ok := index[day]
		if !ok {
			i = len(rep.Daily)
			index[day] = i
			rep.Daily = append(rep.Daily, DailyPoint{Date: day})
		}
		rep.Daily[i].Amount += l.GivenAmount
		rep.TotalExpense += l.GivenAmount
	}

	return rep
}

// previousMonthWindow returns [start, end) of the calendar month before the
// month containing now. Crossing the January boundary lands in December of
// the previous year.
func previousMonthWindow(now time.Time) (time.Time, time.Time) {
	end := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	start := end.AddDate(0, -1, 0)
	return start, end
}
