package repositories

import (
	"context"
	"fmt"
	"time"

	"pocket-budget/internal/models"

	"gorm.io/gorm"
)

type blacklistedTokenRepository struct {
	db *gorm.DB
}

// NewBlacklistedTokenRepository creates a new blacklisted token repository
func NewBlacklistedTokenRepository(db *gorm.DB) BlacklistedTokenRepositoryInterface {
	return &blacklistedTokenRepository{db: db}
}

// Create adds a token to the blacklist. Blacklisting the same JTI twice is a no-op.
func (r *blacklistedTokenRepository) Create(ctx context.Context, token *models.BlacklistedToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		if isDuplicateKeyError(err) {
			return nil
		}
		return fmt.Errorf("failed to blacklist token: %w", err)
	}
	return nil
}

func (r *blacklistedTokenRepository) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.BlacklistedToken{}).
		Where("jti = ?", jti).
		Count(&count).Error; err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}
	return count > 0, nil
}

func (r *blacklistedTokenRepository) DeleteExpired(ctx context.Context) (int64, error) {
	result := r.db.WithContext(ctx).Where("expires_at < ?", time.Now()).Delete(&models.BlacklistedToken{})
	return result.RowsAffected, result.Error
}
