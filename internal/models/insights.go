package models

import "github.com/shopspring/decimal"

// Spending trend classifications
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
)

// NotAvailable is the placeholder name used when there is no expense to report.
const NotAvailable = "N/A"

// CategoryBreakdown is one expense category's share of total spending
type CategoryBreakdown struct {
	Category   string          `json:"category"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
}

// TopCategory names the category with the largest summed spend
type TopCategory struct {
	Category string          `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
}

// LargestExpense is the single biggest outflow. Amount is a magnitude.
type LargestExpense struct {
	Name     string          `json:"name"`
	Category string          `json:"category,omitempty"`
	Date     string          `json:"date,omitempty"`
	Amount   decimal.Decimal `json:"amount"`
}

// Insights is a derived snapshot of a transaction list. It is never stored.
type Insights struct {
	TotalSpent        decimal.Decimal     `json:"total_spent"`
	TotalIncome       decimal.Decimal     `json:"total_income"`
	TopCategory       TopCategory         `json:"top_category"`
	LargestExpense    LargestExpense      `json:"largest_expense"`
	AverageDaily      decimal.Decimal     `json:"average_daily"`
	CategoryBreakdown []CategoryBreakdown `json:"category_breakdown"`
	Trend             string              `json:"trend"`
	SavingsRate       float64             `json:"savings_rate"`
	TransactionCount  int                 `json:"transaction_count"`
}
