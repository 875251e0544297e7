package services

import (
	"context"
	"time"

	"pocket-budget/internal/dto"
	"pocket-budget/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionServiceInterface is the per-user transaction store shared by every page
type TransactionServiceInterface interface {
	ListTransactions(ctx context.Context, userID uuid.UUID, filters models.TransactionFilters) ([]models.Transaction, int64, error)
	AllTransactions(ctx context.Context, userID uuid.UUID) ([]models.Transaction, error)
	AddTransaction(ctx context.Context, userID uuid.UUID, req *dto.CreateTransactionRequest) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, userID, transactionID uuid.UUID) error
	ClearTransactions(ctx context.Context, userID uuid.UUID) (int64, error)
	AddImported(ctx context.Context, userID uuid.UUID, transactions []models.Transaction) error
}

// InsightsServiceInterface derives analytics from the stored transaction list
type InsightsServiceInterface interface {
	GetInsights(ctx context.Context, userID uuid.UUID, filters models.TransactionFilters) (*models.Insights, error)
}

// ImportServiceInterface turns uploaded statements into stored transactions
type ImportServiceInterface interface {
	ImportCSV(ctx context.Context, userID uuid.UUID, content string) (*models.ImportResult, error)
	ImportOFX(ctx context.Context, userID uuid.UUID, content []byte) (*models.ImportResult, error)
	ImportFile(ctx context.Context, userID uuid.UUID, filename string, content []byte) (*models.ImportResult, error)
}

// RewardsServiceInterface evaluates achievements and the leaderboard
type RewardsServiceInterface interface {
	GetRewards(ctx context.Context, userID uuid.UUID) (*models.RewardsSummary, error)
	GetLeaderboard(ctx context.Context, userID uuid.UUID) (*models.Leaderboard, error)
}

// GoalServiceInterface manages savings goals
type GoalServiceInterface interface {
	Suggestions() []models.GoalTemplate
	ListGoals(ctx context.Context, userID uuid.UUID) ([]models.Goal, error)
	CreateGoal(ctx context.Context, userID uuid.UUID, req *dto.CreateGoalRequest) (*models.Goal, error)
	Contribute(ctx context.Context, userID, goalID uuid.UUID, amount decimal.Decimal) (*models.Goal, error)
	DeleteGoal(ctx context.Context, userID, goalID uuid.UUID) error
}

// BudgetServiceInterface backs the budget-setup form
type BudgetServiceInterface interface {
	Catalog() []models.SubscriptionCatalogItem
	SaveSetup(ctx context.Context, userID uuid.UUID, req *dto.BudgetSetupRequest) (*models.BudgetProfile, []models.Subscription, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.BudgetProfile, error)
	ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error)
	DeleteSubscription(ctx context.Context, userID, subscriptionID uuid.UUID) error
}

// OnboardingServiceInterface drives the intro flow
type OnboardingServiceInterface interface {
	Status(ctx context.Context, userID uuid.UUID) (*dto.OnboardingStatus, error)
	SeedDemoData(ctx context.Context, userID uuid.UUID) (int, error)
}

// StatementServiceInterface provides monthly statements for a calendar year
type StatementServiceInterface interface {
	GetYearStatement(ctx context.Context, userID uuid.UUID, year int) (*models.YearStatement, error)
}

// CategoryServiceInterface infers categories from transaction names
type CategoryServiceInterface interface {
	// CategorizeByName returns the category for a merchant or description
	CategorizeByName(name string) *models.CategorizationResult

	// FuzzyMatchMerchant returns the closest known merchant and its similarity score
	FuzzyMatchMerchant(input string) (string, float64)

	// Categorize fills Category and Icon on transactions that have no category
	Categorize(transaction *models.Transaction)
}

// TransactionGeneratorInterface generates realistic sample transactions
type TransactionGeneratorInterface interface {
	GenerateHistory(userID uuid.UUID, start, end time.Time, count int) []models.Transaction
	GenerateSalaries(userID uuid.UUID, start, end time.Time) []models.Transaction
	GenerateBills(userID uuid.UUID, start, end time.Time) []models.Transaction
	GenerateAmount(category string) decimal.Decimal
}

type MetricsRecorderInterface interface {
	IncrementCounter(name string, tags map[string]string)
	RecordProcessingTime(name string, duration time.Duration)
	RecordGauge(name string, value float64, tags map[string]string)
}

type AuthServiceInterface interface {
	Register(ctx context.Context, req *dto.RegisterRequest, ipAddress, userAgent string) (*models.User, error)
	Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*dto.TokenResponse, error)
	RefreshTokens(ctx context.Context, refreshToken, ipAddress, userAgent string) (*dto.TokenResponse, error)
	Logout(ctx context.Context, accessToken, ipAddress, userAgent string) error
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error)
}

type TokenServiceInterface interface {
	GenerateAccessToken(user *models.User) (string, time.Time, error)
	GenerateRefreshToken(userID uuid.UUID) (string, time.Time, error)
	ValidateAccessToken(tokenString string) (*models.CustomClaims, error)
	ValidateRefreshToken(tokenString string) (*models.CustomClaims, error)
	ExtractTokenFromHeader(authHeader string) (string, error)
	GetJTI(tokenString string) (string, error)
	GetTokenExpiry(tokenString string) (time.Time, error)
}

type PasswordServiceInterface interface {
	ValidatePassword(password string) error
	HashPassword(password string) (string, error)
	ComparePassword(password, hash string) bool
	PasswordStrength(password string) int
}

type AuditLoggerInterface interface {
	LogTransactionsImported(ctx context.Context, userID uuid.UUID, format string, successCount, errorCount int, durationMs int64)
	LogImportRejected(ctx context.Context, userID uuid.UUID, format, reason string)
	LogTransactionsCleared(ctx context.Context, userID uuid.UUID, deleted int64)
	LogDemoSeeded(ctx context.Context, userID uuid.UUID, created int)
	LogBudgetConfigured(ctx context.Context, userID uuid.UUID, subscriptions int)
	LogGoalCompleted(ctx context.Context, userID, goalID uuid.UUID, name string)
}
