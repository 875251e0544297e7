package repositories

import (
	"context"
	"errors"
	"fmt"

	"pocket-budget/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrBudgetProfileNotFound = errors.New("budget profile not found")
	ErrSubscriptionNotFound  = errors.New("subscription not found")
)

type budgetRepository struct {
	db *gorm.DB
}

// NewBudgetRepository creates a repository for budget profiles and subscriptions
func NewBudgetRepository(db *gorm.DB) BudgetRepositoryInterface {
	return &budgetRepository{db: db}
}

func (r *budgetRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*models.BudgetProfile, error) {
	var profile models.BudgetProfile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBudgetProfileNotFound
		}
		return nil, fmt.Errorf("failed to get budget profile: %w", err)
	}
	return &profile, nil
}

// SaveSetup upserts the profile and replaces the user's subscriptions with
// the given set, atomically.
func (r *budgetRepository) SaveSetup(ctx context.Context, profile *models.BudgetProfile, subscriptions []models.Subscription) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"monthly_income", "monthly_budget", "savings_target_percent", "updated_at"}),
		}).Create(profile).Error; err != nil {
			return fmt.Errorf("failed to save budget profile: %w", err)
		}

		if err := tx.Where("user_id = ?", profile.UserID).Delete(&models.Subscription{}).Error; err != nil {
			return fmt.Errorf("failed to clear subscriptions: %w", err)
		}

		if len(subscriptions) == 0 {
			return nil
		}
		if err := tx.Create(&subscriptions).Error; err != nil {
			return fmt.Errorf("failed to create subscriptions: %w", err)
		}
		return nil
	})
}

func (r *budgetRepository) ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error) {
	var subscriptions []models.Subscription
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("renewal_date ASC").Order("name ASC").
		Find(&subscriptions).Error; err != nil {
		return nil, fmt.Errorf("failed to list subscriptions: %w", err)
	}
	return subscriptions, nil
}

func (r *budgetRepository) DeleteSubscription(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Subscription{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete subscription: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrSubscriptionNotFound
	}
	return nil
}
