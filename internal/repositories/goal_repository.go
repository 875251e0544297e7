package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pocket-budget/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrGoalNotFound  = errors.New("goal not found")
	ErrGoalCompleted = errors.New("goal has already reached its target")
)

type goalRepository struct {
	db *gorm.DB
}

// NewGoalRepository creates a new goal repository
func NewGoalRepository(db *gorm.DB) GoalRepositoryInterface {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(ctx context.Context, goal *models.Goal) error {
	if err := r.db.WithContext(ctx).Create(goal).Error; err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

func (r *goalRepository) GetByIDForUser(ctx context.Context, userID, id uuid.UUID) (*models.Goal, error) {
	var goal models.Goal
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&goal).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGoalNotFound
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return &goal, nil
}

func (r *goalRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Goal, error) {
	var goals []models.Goal
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&goals).Error; err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	return goals, nil
}

// AddToCurrent increments the saved amount of a goal that is still short of
// its target. The conditional UPDATE serializes concurrent contributions, so
// completed is true for exactly one of them: the one that reaches the target.
func (r *goalRepository) AddToCurrent(ctx context.Context, userID, id uuid.UUID, amount decimal.Decimal) (*models.Goal, bool, error) {
	var (
		goal      models.Goal
		completed bool
	)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.Goal{}).
			Where("id = ? AND user_id = ? AND saved_amount < target", id, userID).
			Updates(map[string]interface{}{
				"saved_amount": gorm.Expr("saved_amount + ?", amount),
				"updated_at":   time.Now(),
			})
		if result.Error != nil {
			return fmt.Errorf("failed to add contribution: %w", result.Error)
		}
		if result.RowsAffected == 0 {
			err := tx.Where("id = ? AND user_id = ?", id, userID).First(&goal).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrGoalNotFound
			}
			if err != nil {
				return fmt.Errorf("failed to load goal: %w", err)
			}
			return ErrGoalCompleted
		}
		if err := tx.Where("id = ?", id).First(&goal).Error; err != nil {
			return fmt.Errorf("failed to reload goal: %w", err)
		}
		completed = goal.IsCompleted()
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return &goal, completed, nil
}

func (r *goalRepository) DeleteForUser(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Goal{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete goal: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrGoalNotFound
	}
	return nil
}
