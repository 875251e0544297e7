package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"pocket-budget/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

// UserRepository handles database operations for users
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) UserRepositoryInterface {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if user == nil {
		return errors.New("user cannot be nil")
	}

	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		if isDuplicateKeyError(err) {
			return ErrUserAlreadyExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return &user, nil
}

// GetByEmail looks the user up case-insensitively.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).
		Where("LOWER(email) = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &user, nil
}

// UpdateFailedLoginAttempts persists the counter and lock state held on user.
func (r *UserRepository) UpdateFailedLoginAttempts(ctx context.Context, user *models.User) error {
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"failed_login_attempts": user.FailedLoginAttempts,
			"locked_at":             user.LockedAt,
			"updated_at":            time.Now(),
		})
	if result.Error != nil {
		return fmt.Errorf("failed to update failed login attempts: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// RecordSuccessfulLogin resets the failure counter and stamps last_login_at.
func (r *UserRepository) RecordSuccessfulLogin(ctx context.Context, userID uuid.UUID) error {
	now := time.Now()
	result := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", userID).
		Updates(map[string]interface{}{
			"failed_login_attempts": 0,
			"last_login_at":         now,
			"updated_at":            now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to record login: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

// MarkOnboarded stamps onboarded_at once; later calls keep the first value.
func (r *UserRepository) MarkOnboarded(ctx context.Context, userID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ? AND onboarded_at IS NULL", userID).
		Updates(map[string]interface{}{"onboarded_at": time.Now()}).Error; err != nil {
		return fmt.Errorf("failed to mark user onboarded: %w", err)
	}
	return nil
}

func isDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	errStr := err.Error()
	return strings.Contains(errStr, "duplicate key") ||
		strings.Contains(errStr, "UNIQUE constraint") ||
		strings.Contains(errStr, "23505")
}
