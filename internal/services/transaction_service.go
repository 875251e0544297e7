package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"pocket-budget/internal/dto"
	"pocket-budget/internal/models"
	"pocket-budget/internal/repositories"
	"pocket-budget/internal/validation"

	"github.com/google/uuid"
)

var (
	ErrInvalidAmount  = errors.New("amount must be a non-zero number")
	ErrInvalidDate    = errors.New("date must be an ISO calendar date (YYYY-MM-DD)")
	ErrNameRequired   = errors.New("name is required")
	ErrNothingToStore = errors.New("no transactions to store")
)

type transactionService struct {
	transactionRepo repositories.TransactionRepositoryInterface
	categories      CategoryServiceInterface
	audit           AuditLoggerInterface
	metrics         MetricsRecorderInterface
	logger          *slog.Logger
}

// NewTransactionService creates the per-user transaction store used by every page.
func NewTransactionService(
	transactionRepo repositories.TransactionRepositoryInterface,
	categories CategoryServiceInterface,
	audit AuditLoggerInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) TransactionServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &transactionService{
		transactionRepo: transactionRepo,
		categories:      categories,
		audit:           audit,
		metrics:         metrics,
		logger:          logger,
	}
}

func (s *transactionService) ListTransactions(ctx context.Context, userID uuid.UUID, filters models.TransactionFilters) ([]models.Transaction, int64, error) {
	filters.UserID = userID
	transactions, total, err := s.transactionRepo.List(ctx, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, total, nil
}

func (s *transactionService) AllTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	transactions, err := s.transactionRepo.ListAllByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return transactions, nil
}

// AddTransaction stores one manually entered transaction. An empty category
// is inferred from the name.
func (s *transactionService) AddTransaction(ctx context.Context, userID uuid.UUID, req *dto.CreateTransactionRequest) (*models.Transaction, error) {
	amount, err := validation.ParseAmount(req.Amount)
	if err != nil || amount.IsZero() || models.CheckAmountRange(amount) != nil {
		return nil, ErrInvalidAmount
	}

	date := strings.TrimSpace(req.Date)
	if !models.IsISODate(date) {
		return nil, ErrInvalidDate
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, ErrNameRequired
	}

	transaction := &models.Transaction{
		UserID:   userID,
		Date:     date,
		Name:     name,
		Category: strings.TrimSpace(req.Category),
		Amount:   amount.Round(2),
		Source:   models.TransactionSourceManual,
	}
	if s.categories != nil {
		s.categories.Categorize(transaction)
	}
	if transaction.Category == "" {
		transaction.Category = models.CategoryOther
	}
	transaction.Icon = models.IconForCategory(transaction.Category)

	if err := s.transactionRepo.Create(ctx, transaction); err != nil {
		s.logger.ErrorContext(ctx, "failed to store transaction",
			"user_id", userID,
			"error", err)
		return nil, fmt.Errorf("failed to add transaction: %w", err)
	}

	if s.metrics != nil {
		s.metrics.IncrementCounter("transaction_created", map[string]string{"source": transaction.Source})
	}

	return transaction, nil
}

func (s *transactionService) DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) error {
	if err := s.transactionRepo.DeleteForUser(ctx, userID, transactionID); err != nil {
		if errors.Is(err, repositories.ErrTransactionNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete transaction: %w", err)
	}

	if s.metrics != nil {
		s.metrics.IncrementCounter("transaction_deleted", map[string]string{"operation": "single"})
	}
	return nil
}

func (s *transactionService) ClearTransactions(ctx context.Context, userID uuid.UUID) (int64, error) {
	deleted, err := s.transactionRepo.DeleteAllForUser(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to clear transactions: %w", err)
	}

	if s.audit != nil {
		s.audit.LogTransactionsCleared(ctx, userID, deleted)
	}
	if s.metrics != nil {
		s.metrics.RecordGauge("transactions_deleted", float64(deleted), map[string]string{"operation": "clear"})
	}

	return deleted, nil
}

// AddImported stores parsed rows in a single database transaction. Rows are
// stamped with userID; missing categories and icons are filled in.
func (s *transactionService) AddImported(ctx context.Context, userID uuid.UUID, transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return ErrNothingToStore
	}

	for i := range transactions {
		transactions[i].UserID = userID
		if transactions[i].ID == uuid.Nil {
			transactions[i].ID = uuid.New()
		}
		if s.categories != nil {
			s.categories.Categorize(&transactions[i])
		}
	}

	if err := s.transactionRepo.CreateBatch(ctx, transactions); err != nil {
		s.logger.ErrorContext(ctx, "failed to store imported transactions",
			"user_id", userID,
			"count", len(transactions),
			"error", err)
		return fmt.Errorf("failed to store imported transactions: %w", err)
	}

	if s.metrics != nil {
		s.metrics.RecordGauge("transactions_created", float64(len(transactions)), map[string]string{"source": transactions[0].Source})
	}
	return nil
}
