package models

import "github.com/shopspring/decimal"

// MonthlyStatement summarises one calendar month of a user's transactions.
type MonthlyStatement struct {
	Month            string          `json:"month"` // YYYY-MM
	TotalIncome      decimal.Decimal `json:"total_income"`
	TotalSpent       decimal.Decimal `json:"total_spent"`
	NetChange        decimal.Decimal `json:"net_change"`
	TransactionCount int             `json:"transaction_count"`
	IncomeCount      int             `json:"income_count"`
	ExpenseCount     int             `json:"expense_count"`
	TopCategory      string          `json:"top_category"`
}

// YearStatement holds the twelve monthly statements of a year plus totals.
type YearStatement struct {
	Year        int                `json:"year"`
	Months      []MonthlyStatement `json:"months"`
	TotalIncome decimal.Decimal    `json:"total_income"`
	TotalSpent  decimal.Decimal    `json:"total_spent"`
	NetChange   decimal.Decimal    `json:"net_change"`
}
