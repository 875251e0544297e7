package services

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"pocket-budget/internal/models"
	"pocket-budget/internal/repositories"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const (
	trendUpperRatio = 1.1
	trendLowerRatio = 0.9
)

var hundred = decimal.NewFromInt(100)

// CalculateInsights derives the analytics snapshot of a transaction list.
// It does not modify txns and returns identical output for identical input.
func CalculateInsights(txns []models.Transaction) *models.Insights {
	expenses, income := partitionTransactions(txns)

	totalSpent := decimal.Zero
	for i := range expenses {
		totalSpent = totalSpent.Add(expenses[i].Amount.Abs())
	}
	totalIncome := decimal.Zero
	for i := range income {
		totalIncome = totalIncome.Add(income[i].Amount)
	}

	breakdown := categoryBreakdown(expenses, totalSpent)

	top := models.TopCategory{Category: models.NotAvailable, Amount: decimal.Zero}
	if len(breakdown) > 0 {
		top = models.TopCategory{Category: breakdown[0].Category, Amount: breakdown[0].Amount}
	}

	return &models.Insights{
		TotalSpent:        totalSpent,
		TotalIncome:       totalIncome,
		TopCategory:       top,
		LargestExpense:    largestExpense(expenses),
		AverageDaily:      totalSpent.Div(decimal.NewFromInt(daySpan(txns))).Round(2),
		CategoryBreakdown: breakdown,
		Trend:             spendingTrend(expenses),
		SavingsRate:       savingsRate(totalIncome, totalSpent),
		TransactionCount:  len(txns),
	}
}

// partitionTransactions splits by sign. Zero amounts land in neither list.
func partitionTransactions(txns []models.Transaction) (expenses, income []models.Transaction) {
	for i := range txns {
		switch {
		case txns[i].Amount.IsNegative():
			expenses = append(expenses, txns[i])
		case txns[i].Amount.IsPositive():
			income = append(income, txns[i])
		}
	}
	return expenses, income
}

// categoryBreakdown groups expenses in first-appearance order, then sorts by
// amount descending. Equal amounts keep their first-appearance order.
func categoryBreakdown(expenses []models.Transaction, totalSpent decimal.Decimal) []models.CategoryBreakdown {
	index := make(map[string]int)
	breakdown := make([]models.CategoryBreakdown, 0)

	for i := range expenses {
		category := expenses[i].Category
		pos, ok := index[category]
		if !ok {
			pos = len(breakdown)
			index[category] = pos
			breakdown = append(breakdown, models.CategoryBreakdown{Category: category, Amount: decimal.Zero})
		}
		breakdown[pos].Amount = breakdown[pos].Amount.Add(expenses[i].Amount.Abs())
	}

	for i := range breakdown {
		if totalSpent.IsPositive() {
			pct, _ := breakdown[i].Amount.Div(totalSpent).Mul(hundred).Round(2).Float64()
			breakdown[i].Percentage = pct
		}
	}

	sort.SliceStable(breakdown, func(a, b int) bool {
		return breakdown[a].Amount.GreaterThan(breakdown[b].Amount)
	})

	return breakdown
}

// largestExpense keeps the first of several equal maxima.
func largestExpense(expenses []models.Transaction) models.LargestExpense {
	if len(expenses) == 0 {
		return models.LargestExpense{Name: models.NotAvailable, Amount: decimal.Zero}
	}

	best := &expenses[0]
	for i := 1; i < len(expenses); i++ {
		if expenses[i].Amount.Abs().GreaterThan(best.Amount.Abs()) {
			best = &expenses[i]
		}
	}

	return models.LargestExpense{
		Name:     best.Name,
		Category: best.Category,
		Date:     best.Date,
		Amount:   best.Amount.Abs(),
	}
}

// daySpan is the number of whole days between the earliest and latest date of
// all transactions, rounded up and never less than 1. Unparseable dates are ignored.
func daySpan(txns []models.Transaction) int64 {
	var minDate, maxDate time.Time
	found := false

	for i := range txns {
		d, err := txns[i].ParsedDate()
		if err != nil {
			continue
		}
		if !found || d.Before(minDate) {
			minDate = d
		}
		if !found || d.After(maxDate) {
			maxDate = d
		}
		found = true
	}

	if !found {
		return 1
	}

	days := int64(math.Ceil(maxDate.Sub(minDate).Hours() / 24))
	if days < 1 {
		return 1
	}
	return days
}

// spendingTrend compares the mean expense of the later half of the expenses
// (by date) with the earlier half.
func spendingTrend(expenses []models.Transaction) string {
	sorted := make([]models.Transaction, len(expenses))
	copy(sorted, expenses)
	sort.SliceStable(sorted, func(a, b int) bool {
		return sorted[a].Date < sorted[b].Date
	})

	mid := len(sorted) / 2
	firstAvg := meanAbs(sorted[:mid])
	secondAvg := meanAbs(sorted[mid:])

	switch {
	case secondAvg.GreaterThan(firstAvg.Mul(decimal.NewFromFloat(trendUpperRatio))):
		return models.TrendIncreasing
	case secondAvg.LessThan(firstAvg.Mul(decimal.NewFromFloat(trendLowerRatio))):
		return models.TrendDecreasing
	default:
		return models.TrendStable
	}
}

func meanAbs(txns []models.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for i := range txns {
		sum = sum.Add(txns[i].Amount.Abs())
	}
	count := int64(len(txns))
	if count < 1 {
		count = 1
	}
	return sum.Div(decimal.NewFromInt(count))
}

func savingsRate(totalIncome, totalSpent decimal.Decimal) float64 {
	if !totalIncome.IsPositive() {
		return 0
	}
	rate, _ := totalIncome.Sub(totalSpent).Div(totalIncome).Mul(hundred).Round(2).Float64()
	return rate
}

type insightsService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	metrics         MetricsRecorderInterface
	logger          *slog.Logger
}

// NewInsightsService creates the service that loads a user's transactions and
// recomputes insights on every call.
func NewInsightsService(
	transactionRepo repositories.TransactionRepositoryInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) InsightsServiceInterface {
	return &insightsService{
		transactionRepo: transactionRepo,
		metrics:         metrics,
		logger:          logger,
	}
}

func (s *insightsService) GetInsights(ctx context.Context, userID uuid.UUID, filters models.TransactionFilters) (*models.Insights, error) {
	start := time.Now()

	var (
		txns []models.Transaction
		err  error
	)
	if filters.IsZero() {
		txns, err = s.transactionRepo.ListAllByUser(ctx, userID)
	} else {
		filters.UserID = userID
		filters.Offset = 0
		filters.Limit = repositories.MaxListLimit
		txns, _, err = s.transactionRepo.List(ctx, filters)
	}
	if err != nil {
		s.logger.Error("failed to load transactions for insights",
			"user_id", userID,
			"error", err)
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}

	insights := CalculateInsights(txns)

	if s.metrics != nil {
		s.metrics.IncrementCounter("insights_computed", nil)
		s.metrics.RecordProcessingTime("insights", time.Since(start))
	}

	s.logger.Debug("insights computed",
		"user_id", userID,
		"transaction_count", insights.TransactionCount,
		"trend", insights.Trend)

	return insights, nil
}
