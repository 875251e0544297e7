package repositories

import (
	"context"

	"pocket-budget/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionRepositoryInterface is the remote record store for transactions.
// Every read and delete is scoped to the owning user.
type TransactionRepositoryInterface interface {
	Create(ctx context.Context, transaction *models.Transaction) error
	CreateBatch(ctx context.Context, transactions []models.Transaction) error
	GetByIDForUser(ctx context.Context, userID, id uuid.UUID) (*models.Transaction, error)
	List(ctx context.Context, filters models.TransactionFilters) ([]models.Transaction, int64, error)
	ListAllByUser(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)
	CountByUser(ctx context.Context, userID uuid.UUID) (int64, error)
	DeleteForUser(ctx context.Context, userID, id uuid.UUID) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// GoalRepositoryInterface defines the contract for savings goal storage
type GoalRepositoryInterface interface {
	Create(ctx context.Context, goal *models.Goal) error
	GetByIDForUser(ctx context.Context, userID, id uuid.UUID) (*models.Goal, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Goal, error)
	AddToCurrent(ctx context.Context, userID, id uuid.UUID, amount decimal.Decimal) (*models.Goal, bool, error)
	DeleteForUser(ctx context.Context, userID, id uuid.UUID) error
}

// BudgetRepositoryInterface stores the budget profile and its subscriptions
type BudgetRepositoryInterface interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.BudgetProfile, error)
	SaveSetup(ctx context.Context, profile *models.BudgetProfile, subscriptions []models.Subscription) error
	ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error)
	DeleteSubscription(ctx context.Context, userID, id uuid.UUID) error
}

// UserRepositoryInterface defines the contract for user repository operations
type UserRepositoryInterface interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateFailedLoginAttempts(ctx context.Context, user *models.User) error
	RecordSuccessfulLogin(ctx context.Context, userID uuid.UUID) error
	MarkOnboarded(ctx context.Context, userID uuid.UUID) error
}

// AuditLogRepositoryInterface defines the contract for audit log repository operations
type AuditLogRepositoryInterface interface {
	Create(ctx context.Context, log *models.AuditLog) error
	ListByUser(ctx context.Context, userID uuid.UUID, offset, limit int) ([]models.AuditLog, int64, error)
}

// RefreshTokenRepositoryInterface defines the contract for refresh token storage
type RefreshTokenRepositoryInterface interface {
	Create(ctx context.Context, token *models.RefreshToken) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.RefreshToken, error)
	Revoke(ctx context.Context, tokenID uuid.UUID) error
	RevokeAllForUser(ctx context.Context, userID uuid.UUID) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// BlacklistedTokenRepositoryInterface defines the contract for blacklisted token repository operations
type BlacklistedTokenRepositoryInterface interface {
	Create(ctx context.Context, token *models.BlacklistedToken) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	DeleteExpired(ctx context.Context) (int64, error)
}
