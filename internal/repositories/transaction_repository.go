package repositories

import (
	"context"
	"errors"
	"fmt"

	"pocket-budget/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrTransactionNotFound = errors.New("transaction not found")
)

const (
	DefaultListLimit = 100
	MaxListLimit     = 500
	batchInsertSize  = 200
)

type transactionRepository struct {
	db *gorm.DB
}

// NewTransactionRepository creates a new transaction repository
func NewTransactionRepository(db *gorm.DB) TransactionRepositoryInterface {
	return &transactionRepository{db: db}
}

func (r *transactionRepository) Create(ctx context.Context, transaction *models.Transaction) error {
	if err := r.db.WithContext(ctx).Create(transaction).Error; err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

// CreateBatch inserts all rows in one database transaction; either every row
// lands or none does.
func (r *transactionRepository) CreateBatch(ctx context.Context, transactions []models.Transaction) error {
	if len(transactions) == 0 {
		return nil
	}

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.CreateInBatches(&transactions, batchInsertSize).Error; err != nil {
			return fmt.Errorf("failed to create batch transactions: %w", err)
		}
		return nil
	})
}

func (r *transactionRepository) GetByIDForUser(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error) {
	var transaction models.Transaction
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&transaction).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTransactionNotFound
		}
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return &transaction, nil
}

// List returns a page of the user's transactions, newest date first, and the
// total matching count.
func (r *transactionRepository) List(ctx context.Context, filters models.TransactionFilters) ([]models.Transaction, int64, error) {
	query := r.applyFilters(r.db.WithContext(ctx).Model(&models.Transaction{}), filters)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count transactions: %w", err)
	}

	limit := filters.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	var transactions []models.Transaction
	if err := query.
		Order("date DESC").Order("created_at DESC").
		Offset(filters.Offset).Limit(limit).
		Find(&transactions).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to list transactions: %w", err)
	}

	return transactions, total, nil
}

// ListAllByUser returns every transaction of the user in insertion order.
func (r *transactionRepository) ListAllByUser(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error) {
	var transactions []models.Transaction
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").Order("id ASC").
		Find(&transactions).Error; err != nil {
		return nil, fmt.Errorf("failed to list all transactions: %w", err)
	}
	return transactions, nil
}

func (r *transactionRepository) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Transaction{}).
		Where("user_id = ?", userID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count transactions: %w", err)
	}
	return count, nil
}

func (r *transactionRepository) DeleteForUser(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Transaction{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete transaction: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *transactionRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Delete(&models.Transaction{})
	if result.Error != nil {
		return 0, fmt.Errorf("failed to clear transactions: %w", result.Error)
	}
	return result.RowsAffected, nil
}

func (r *transactionRepository) applyFilters(query *gorm.DB, filters models.TransactionFilters) *gorm.DB {
	query = query.Where("user_id = ?", filters.UserID)

	if filters.Category != "" {
		query = query.Where("LOWER(category) = LOWER(?)", filters.Category)
	}
	if filters.FromDate != "" {
		query = query.Where("date >= ?", filters.FromDate)
	}
	if filters.ToDate != "" {
		query = query.Where("date <= ?", filters.ToDate)
	}
	if filters.Source != "" {
		query = query.Where("source = ?", filters.Source)
	}
	return query
}
