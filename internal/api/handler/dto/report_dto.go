package dto

import (
	"loanbook/internal/domain/report"
)

type DailyPointResponse struct {
	Date   string `json:"date"`
	Amount string `json:"amount"`
}

type ProfitSummaryResponse struct {
	Daily           []DailyPointResponse `json:"daily"`
	TotalProfit     string               `json:"totalProfit"`
	LastMonthProfit string               `json:"lastMonthProfit"`
	TotalLoans      int                  `json:"totalLoans"`
}

type ExpenseSummaryResponse struct {
	Daily        []DailyPointResponse `json:"daily"`
	TotalExpense string               `json:"totalExpense"`
	TotalLoans   int                  `json:"totalLoans"`
}

func newDailyPoints(points []report.DailyPoint) []DailyPointResponse {
	resp := make([]DailyPointResponse, len(points))
	for i, p := range points {
		resp[i] = DailyPointResponse{Date: p.Date, Amount: formatMoney(p.Amount)}
	}
	return resp
}

func NewProfitSummaryResponse(rep *report.ProfitReport) ProfitSummaryResponse {
	if rep == nil {
		return ProfitSummaryResponse{Daily: []DailyPointResponse{}}
	}
	return ProfitSummaryResponse{
		Daily:           newDailyPoints(rep.Daily),
		TotalProfit:     formatMoney(rep.TotalProfit),
		LastMonthProfit: formatMoney(rep.LastMonthProfit),
		TotalLoans:      rep.TotalLoans,
	}
}

func NewExpenseSummaryResponse(rep *report.ExpenseReport) ExpenseSummaryResponse {
	if rep == nil {
		return ExpenseSummaryResponse{Daily: []DailyPointResponse{}}
	}
	return ExpenseSummaryResponse{
		Daily:        newDailyPoints(rep.Daily),
		TotalExpense: formatMoney(rep.TotalExpense),
		TotalLoans:   rep.TotalLoans,
	}
}
