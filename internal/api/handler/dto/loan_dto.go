package dto

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"loanbook/internal/domain/loan"

	"github.com/shopspring/decimal"
)

type CreateLoanRequest struct {
	Name             string  `json:"name"`
	Phone            string  `json:"phone"`
	LoanAmount       float64 `json:"loanAmount"`
	GivenAmount      float64 `json:"givenAmount"`
	PerDayCollection float64 `json:"perDayCollection"`
	DaysForLoan      int     `json:"daysForLoan"`
	AdharCard        string  `json:"adharCard"`
	PanCard          string  `json:"panCard"`
	ReferenceBy      string  `json:"referenceBy"`
}

func (r *CreateLoanRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if strings.TrimSpace(r.Phone) == "" {
		return fmt.Errorf("phone cannot be empty")
	}
	if r.LoanAmount <= 0 {
		return fmt.Errorf("loanAmount must be a positive number")
	}
	if r.PerDayCollection <= 0 {
		return fmt.Errorf("perDayCollection must be a positive number")
	}
	if r.DaysForLoan <= 0 {
		return fmt.Errorf("daysForLoan must be a positive number")
	}
	return nil
}

func (r *CreateLoanRequest) ToInput() loan.NewLoanInput {
	return loan.NewLoanInput{
		Name:             r.Name,
		Phone:            r.Phone,
		LoanAmount:       r.LoanAmount,
		GivenAmount:      r.GivenAmount,
		PerDayCollection: r.PerDayCollection,
		DaysForLoan:      r.DaysForLoan,
		AdharCard:        r.AdharCard,
		PanCard:          r.PanCard,
		ReferenceBy:      r.ReferenceBy,
	}
}

// UpdateLoanRequest carries partial overrides. Absent fields keep their
// current values.
type UpdateLoanRequest struct {
	Name             *string  `json:"name"`
	Phone            *string  `json:"phone"`
	LoanAmount       *float64 `json:"loanAmount"`
	GivenAmount      *float64 `json:"givenAmount"`
	PerDayCollection *float64 `json:"perDayCollection"`
	DaysForLoan      *int     `json:"daysForLoan"`
	AdharCard        *string  `json:"adharCard"`
	PanCard          *string  `json:"panCard"`
	ReferenceBy      *string  `json:"referenceBy"`
}

func (r *UpdateLoanRequest) ToInput() loan.UpdateInput {
	return loan.UpdateInput{
		Name:             r.Name,
		Phone:            r.Phone,
		LoanAmount:       r.LoanAmount,
		GivenAmount:      r.GivenAmount,
		PerDayCollection: r.PerDayCollection,
		DaysForLoan:      r.DaysForLoan,
		AdharCard:        r.AdharCard,
		PanCard:          r.PanCard,
		ReferenceBy:      r.ReferenceBy,
	}
}

type AddInstallmentRequest struct {
	Amount string `json:"amount"`
}

func (r *AddInstallmentRequest) Validate() error {
	if strings.TrimSpace(r.Amount) == "" {
		return fmt.Errorf("amount cannot be empty")
	}
	return nil
}

type RenewLoanRequest struct {
	Phone            string  `json:"phone"`
	LoanAmount       float64 `json:"loanAmount"`
	GivenAmount      float64 `json:"givenAmount"`
	PerDayCollection float64 `json:"perDayCollection"`
	DaysForLoan      int     `json:"daysForLoan"`
}

func (r *RenewLoanRequest) Validate() error {
	if strings.TrimSpace(r.Phone) == "" {
		return fmt.Errorf("phone cannot be empty")
	}
	if r.LoanAmount <= 0 {
		return fmt.Errorf("loanAmount must be a positive number")
	}
	if r.PerDayCollection <= 0 {
		return fmt.Errorf("perDayCollection must be a positive number")
	}
	if r.DaysForLoan <= 0 {
		return fmt.Errorf("daysForLoan must be a positive number")
	}
	return nil
}

func (r *RenewLoanRequest) ToTerms() loan.RenewalTerms {
	return loan.RenewalTerms{
		LoanAmount:       r.LoanAmount,
		GivenAmount:      r.GivenAmount,
		PerDayCollection: r.PerDayCollection,
		DaysForLoan:      r.DaysForLoan,
	}
}

type TokenRequest struct {
	Username string `json:"username"`
}

type InstallmentResponse struct {
	ID             string    `json:"id"`
	Amount         string    `json:"amount"`
	Date           time.Time `json:"date"`
	RemainingAfter string    `json:"remainingAfter"`
}

type LoanResponse struct {
	LoanID                string                `json:"loanId"`
	Name                  string                `json:"name"`
	Phone                 string                `json:"phone"`
	LoanAmount            string                `json:"loanAmount"`
	GivenAmount           string                `json:"givenAmount"`
	PerDayCollection      string                `json:"perDayCollection"`
	DaysForLoan           int                   `json:"daysForLoan"`
	LoanStartDate         time.Time             `json:"loanStartDate"`
	LoanEndDate           time.Time             `json:"loanEndDate"`
	TotalDueInstallments  int                   `json:"totalDueInstallments"`
	TotalPaidInstallments int                   `json:"totalPaidInstallments"`
	TotalPaidLoan         string                `json:"totalPaidLoan"`
	RemainingLoan         string                `json:"remainingLoan"`
	AdharCard             string                `json:"adharCard,omitempty"`
	PanCard               string                `json:"panCard,omitempty"`
	ReferenceBy           string                `json:"referenceBy,omitempty"`
	Status                string                `json:"status"`
	CreatedAt             time.Time             `json:"createdAt"`
	UpdatedAt             time.Time             `json:"updatedAt"`
	Installments          []InstallmentResponse `json:"installments,omitempty"`
}

func formatMoney(v loan.Money) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

func NewInstallmentResponse(inst loan.Installment) InstallmentResponse {
	return InstallmentResponse{
		ID:             strconv.FormatInt(inst.ID, 10),
		Amount:         formatMoney(inst.Amount),
		Date:           inst.Date,
		RemainingAfter: formatMoney(inst.RemainingAfter),
	}
}

func NewLoanResponse(l *loan.Loan, includeInstallments bool) LoanResponse {
	if l == nil {
		return LoanResponse{}
	}

	resp := LoanResponse{
		LoanID:                strconv.FormatInt(l.ID, 10),
		Name:                  l.Name,
		Phone:                 l.Phone,
		LoanAmount:            formatMoney(l.LoanAmount),
		GivenAmount:           formatMoney(l.GivenAmount),
		PerDayCollection:      formatMoney(l.PerDayCollection),
		DaysForLoan:           l.DaysForLoan,
		LoanStartDate:         l.LoanStartDate,
		LoanEndDate:           l.LoanEndDate,
		TotalDueInstallments:  l.TotalDueInstallments,
		TotalPaidInstallments: l.TotalPaidInstallments,
		TotalPaidLoan:         formatMoney(l.TotalPaidLoan),
		RemainingLoan:         formatMoney(l.RemainingLoan),
		AdharCard:             l.AdharCard,
		PanCard:               l.PanCard,
		ReferenceBy:           l.ReferenceBy,
		Status:                string(l.Status),
		CreatedAt:             l.CreatedAt,
		UpdatedAt:             l.UpdatedAt,
	}

	if includeInstallments {
		resp.Installments = make([]InstallmentResponse, len(l.Installments))
		for i, inst := range l.Installments {
			resp.Installments[i] = NewInstallmentResponse(inst)
		}
	}
	return resp
}

type ListLoansResponse struct {
	Data     []LoanResponse `json:"data"`
	Total    int64          `json:"total"`
	Page     int            `json:"page"`
	PageSize int            `json:"pageSize"`
}

type ErrorDetail struct {
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}
