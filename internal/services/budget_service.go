package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pocket-budget/internal/dto"
	"pocket-budget/internal/models"
	"pocket-budget/internal/repositories"
	"pocket-budget/internal/validation"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownSubscription = errors.New("unknown subscription in catalog selection")
	ErrInvalidBudgetAmount = errors.New("monthly income and budget must be non-negative amounts")
)

var subscriptionCatalog = []models.SubscriptionCatalogItem{
	{ID: "netflix", Name: "Netflix", Icon: "📺", Amount: decimal.NewFromInt(649)},
	{ID: "spotify", Name: "Spotify", Icon: "🎵", Amount: decimal.NewFromInt(119)},
	{ID: "amazon_prime", Name: "Amazon Prime", Icon: "📦", Amount: decimal.NewFromInt(299)},
	{ID: "youtube_premium", Name: "YouTube Premium", Icon: "▶️", Amount: decimal.NewFromInt(129)},
	{ID: "disney_hotstar", Name: "Disney+ Hotstar", Icon: "🏰", Amount: decimal.NewFromInt(299)},
	{ID: "gym", Name: "Gym", Icon: "💪", Amount: decimal.NewFromInt(1500)},
	{ID: "icloud", Name: "iCloud", Icon: "☁️", Amount: decimal.NewFromInt(75)},
}

type budgetService struct {
	repo   repositories.BudgetRepositoryInterface
	audit  AuditLoggerInterface
	logger *slog.Logger
	now    func() time.Time
}

// NewBudgetService creates the service behind the budget-setup form
func NewBudgetService(repo repositories.BudgetRepositoryInterface, audit AuditLoggerInterface, logger *slog.Logger) BudgetServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &budgetService{repo: repo, audit: audit, logger: logger, now: time.Now}
}

func (s *budgetService) Catalog() []models.SubscriptionCatalogItem {
	out := make([]models.SubscriptionCatalogItem, len(subscriptionCatalog))
	copy(out, subscriptionCatalog)
	return out
}

// SaveSetup upserts the profile and replaces the subscription list. Every
// selected subscription renews one month from today; duplicate ids count once.
func (s *budgetService) SaveSetup(ctx context.Context, userID uuid.UUID, req *dto.BudgetSetupRequest) (*models.BudgetProfile, []models.Subscription, error) {
	income, err := validation.ParseAmount(req.MonthlyIncome)
	if err != nil || income.IsNegative() {
		return nil, nil, ErrInvalidBudgetAmount
	}
	budget, err := validation.ParseAmount(req.MonthlyBudget)
	if err != nil || budget.IsNegative() {
		return nil, nil, ErrInvalidBudgetAmount
	}

	renewal := s.now().AddDate(0, 1, 0).Format(models.DateLayout)
	seen := make(map[string]bool, len(req.SubscriptionIDs))
	subscriptions := make([]models.Subscription, 0, len(req.SubscriptionIDs))
	for _, id := range req.SubscriptionIDs {
		if seen[id] {
			continue
		}
		item, ok := findCatalogItem(id)
		if !ok {
			return nil, nil, fmt.Errorf("%w: %s", ErrUnknownSubscription, id)
		}
		seen[id] = true
		subscriptions = append(subscriptions, models.Subscription{
			ID:          uuid.New(),
			UserID:      userID,
			Name:        item.Name,
			Icon:        item.Icon,
			Amount:      item.Amount,
			RenewalDate: renewal,
		})
	}

	profile := &models.BudgetProfile{
		UserID:               userID,
		MonthlyIncome:        income,
		MonthlyBudget:        budget,
		SavingsTargetPercent: req.SavingsTargetPercent,
	}

	if err := s.repo.SaveSetup(ctx, profile, subscriptions); err != nil {
		return nil, nil, err
	}

	if s.audit != nil {
		s.audit.LogBudgetConfigured(ctx, userID, len(subscriptions))
	}
	s.logger.InfoContext(ctx, "budget configured",
		"user_id", userID,
		"subscriptions", len(subscriptions),
		"planned_savings", profile.PlannedSavings().String())

	return profile, subscriptions, nil
}

func (s *budgetService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.BudgetProfile, error) {
	return s.repo.GetProfile(ctx, userID)
}

func (s *budgetService) ListSubscriptions(ctx context.Context, userID uuid.UUID) ([]models.Subscription, error) {
	return s.repo.ListSubscriptions(ctx, userID)
}

func (s *budgetService) DeleteSubscription(ctx context.Context, userID, subscriptionID uuid.UUID) error {
	return s.repo.DeleteSubscription(ctx, userID, subscriptionID)
}

func findCatalogItem(id string) (models.SubscriptionCatalogItem, bool) {
	for _, item := range subscriptionCatalog {
		if item.ID == id {
			return item, true
		}
	}
	return models.SubscriptionCatalogItem{}, false
}
