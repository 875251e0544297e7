package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateTransactionRequest is the manual-entry form. Amount is signed:
// negative for an expense, positive for income.
type CreateTransactionRequest struct {
	Date     string `json:"date" validate:"required,isodate"`
	Name     string `json:"name" validate:"required,notblank,max=255"`
	Amount   string `json:"amount" validate:"required,nonzero_amount"`
	Category string `json:"category" validate:"omitempty,max=50"`
}

// TransactionListQuery contains filtering and paging options for the listing
type TransactionListQuery struct {
	Category string `query:"category"`
	From     string `query:"from"`
	To       string `query:"to"`
	Source   string `query:"source"`
	Offset   int    `query:"offset"`
	Limit    int    `query:"limit"`
}

// TransactionResponse is a stored transaction plus its display amount
type TransactionResponse struct {
	ID            uuid.UUID `json:"id"`
	Date          string    `json:"date"`
	Name          string    `json:"name"`
	Category      string    `json:"category"`
	Amount        string    `json:"amount"`
	AmountDisplay string    `json:"amountDisplay"`
	Icon          string    `json:"icon"`
	Source        string    `json:"source"`
	CreatedAt     time.Time `json:"createdAt"`
}

// PaginationInfo contains pagination metadata
type PaginationInfo struct {
	Offset  int   `json:"offset"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"hasMore"`
}

// ListTransactionsResponse represents the response for listing transactions
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	Pagination   PaginationInfo        `json:"pagination"`
}

// ClearTransactionsResponse reports how many rows a bulk clear removed
type ClearTransactionsResponse struct {
	Deleted int64 `json:"deleted"`
}

// InsightsDisplay carries the currency-formatted headline figures
type InsightsDisplay struct {
	Currency       string `json:"currency"`
	TotalSpent     string `json:"totalSpent"`
	TotalIncome    string `json:"totalIncome"`
	AverageDaily   string `json:"averageDaily"`
	TopCategory    string `json:"topCategory"`
	LargestExpense string `json:"largestExpense"`
}

// CategoryOption is one entry of the manual-entry category picker
type CategoryOption struct {
	Name string `json:"name"`
	Icon string `json:"icon"`
}
