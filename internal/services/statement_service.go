package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pocket-budget/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	minStatementYear = 1970
	maxStatementYear = 2100
)

var ErrInvalidYear = errors.New("year must be between 1970 and 2100")

type statementService struct {
	transactions TransactionServiceInterface
	logger       *slog.Logger
	now          func() time.Time
}

func NewStatementService(transactions TransactionServiceInterface, logger *slog.Logger) StatementServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &statementService{
		transactions: transactions,
		logger:       logger,
		now:          time.Now,
	}
}

// GetYearStatement returns twelve monthly rows for year; 0 means the current
// year. Zero amounts are counted but contribute nothing to the sums.
func (s *statementService) GetYearStatement(ctx context.Context, userID uuid.UUID, year int) (*models.YearStatement, error) {
	if year == 0 {
		year = s.now().Year()
	}
	if err := validateYear(year); err != nil {
		return nil, err
	}

	txns, err := s.transactions.AllTransactions(ctx, userID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch transactions for statement",
			"user_id", userID,
			"error", err)
		return nil, fmt.Errorf("failed to fetch transactions: %w", err)
	}

	statement := buildYearStatement(year, txns)

	s.logger.InfoContext(ctx, "statement generated",
		"user_id", userID,
		"year", year,
		"net_change", statement.NetChange.String())

	return statement, nil
}

func validateYear(year int) error {
	if year < minStatementYear || year > maxStatementYear {
		return ErrInvalidYear
	}
	return nil
}

func buildYearStatement(year int, txns []models.Transaction) *models.YearStatement {
	buckets := make([][]models.Transaction, 12)
	prefix := fmt.Sprintf("%04d-", year)
	for i := range txns {
		date, err := txns[i].ParsedDate()
		if err != nil || txns[i].Date[:5] != prefix {
			continue
		}
		m := int(date.Month()) - 1
		buckets[m] = append(buckets[m], txns[i])
	}

	statement := &models.YearStatement{
		Year:   year,
		Months: make([]models.MonthlyStatement, 0, 12),
	}
	for m := 0; m < 12; m++ {
		month := calculateMonthSummary(buckets[m])
		month.Month = fmt.Sprintf("%04d-%02d", year, m+1)
		statement.Months = append(statement.Months, month)

		statement.TotalIncome = statement.TotalIncome.Add(month.TotalIncome)
		statement.TotalSpent = statement.TotalSpent.Add(month.TotalSpent)
	}
	statement.NetChange = statement.TotalIncome.Sub(statement.TotalSpent)
	return statement
}

func calculateMonthSummary(txns []models.Transaction) models.MonthlyStatement {
	summary := models.MonthlyStatement{
		TotalIncome: decimal.Zero,
		TotalSpent:  decimal.Zero,
	}

	var order []string
	byCategory := make(map[string]decimal.Decimal)

	for i := range txns {
		txn := &txns[i]
		summary.TransactionCount++

		switch {
		case txn.IsIncome():
			summary.TotalIncome = summary.TotalIncome.Add(txn.Amount)
			summary.IncomeCount++
		case txn.IsExpense():
			spent := txn.Amount.Abs()
			summary.TotalSpent = summary.TotalSpent.Add(spent)
			summary.ExpenseCount++
			if _, seen := byCategory[txn.Category]; !seen {
				order = append(order, txn.Category)
			}
			byCategory[txn.Category] = byCategory[txn.Category].Add(spent)
		}
	}

	best := decimal.Zero
	for _, category := range order {
		if byCategory[category].GreaterThan(best) {
			best = byCategory[category]
			summary.TopCategory = category
		}
	}

	summary.NetChange = summary.TotalIncome.Sub(summary.TotalSpent)
	return summary
}
