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

	"github.com/google/uuid"
)

const (
	demoHistoryDays  = 90
	demoExpenseCount = 45
)

type onboardingService struct {
	userRepo     repositories.UserRepositoryInterface
	txnRepo      repositories.TransactionRepositoryInterface
	goalRepo     repositories.GoalRepositoryInterface
	budgetRepo   repositories.BudgetRepositoryInterface
	transactions TransactionServiceInterface
	generator    TransactionGeneratorInterface
	audit        AuditLoggerInterface
	logger       *slog.Logger
	now          func() time.Time
	expenseCount int
}

// OnboardingOption customizes the onboarding service.
type OnboardingOption func(*onboardingService)

// WithDemoExpenseCount sets how many everyday expenses a demo seed adds on
// top of salaries and bills. Non-positive values keep the default.
func WithDemoExpenseCount(n int) OnboardingOption {
	return func(s *onboardingService) {
		if n > 0 {
			s.expenseCount = n
		}
	}
}

// NewOnboardingService creates the service behind the intro flow
func NewOnboardingService(
	userRepo repositories.UserRepositoryInterface,
	txnRepo repositories.TransactionRepositoryInterface,
	goalRepo repositories.GoalRepositoryInterface,
	budgetRepo repositories.BudgetRepositoryInterface,
	transactions TransactionServiceInterface,
	generator TransactionGeneratorInterface,
	audit AuditLoggerInterface,
	logger *slog.Logger,
	opts ...OnboardingOption,
) OnboardingServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	s := &onboardingService{
		userRepo:     userRepo,
		txnRepo:      txnRepo,
		goalRepo:     goalRepo,
		budgetRepo:   budgetRepo,
		transactions: transactions,
		generator:    generator,
		audit:        audit,
		logger:       logger,
		now:          time.Now,
		expenseCount: demoExpenseCount,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *onboardingService) Status(ctx context.Context, userID uuid.UUID) (*dto.OnboardingStatus, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := &dto.OnboardingStatus{Onboarded: user.IsOnboarded()}

	if _, err := s.budgetRepo.GetProfile(ctx, userID); err == nil {
		status.HasBudgetProfile = true
	} else if !errors.Is(err, repositories.ErrBudgetProfileNotFound) {
		return nil, fmt.Errorf("failed to load budget profile: %w", err)
	}

	if status.TransactionCount, err = s.txnRepo.CountByUser(ctx, userID); err != nil {
		return nil, err
	}

	goals, err := s.goalRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	status.GoalCount = len(goals)

	subscriptions, err := s.budgetRepo.ListSubscriptions(ctx, userID)
	if err != nil {
		return nil, err
	}
	status.SubscriptionCount = len(subscriptions)

	status.Steps = []dto.OnboardingStep{
		{ID: "budget", Title: "Set up your monthly budget", Done: status.HasBudgetProfile},
		{ID: "transactions", Title: "Add or import your first transactions", Done: status.TransactionCount > 0},
		{ID: "goal", Title: "Create a savings goal", Done: status.GoalCount > 0},
		{ID: "explore", Title: "Explore insights and rewards", Done: status.Onboarded},
	}
	return status, nil
}

// SeedDemoData fills the last three months with generated salaries, bills
// and everyday spending, then marks the user onboarded.
func (s *onboardingService) SeedDemoData(ctx context.Context, userID uuid.UUID) (int, error) {
	end := s.now().UTC()
	start := end.AddDate(0, 0, -demoHistoryDays)

	txns := s.generator.GenerateSalaries(userID, start, end)
	txns = append(txns, s.generator.GenerateBills(userID, start, end)...)
	txns = append(txns, s.generator.GenerateHistory(userID, start, end, s.expenseCount)...)

	for i := range txns {
		txns[i].Source = models.TransactionSourceDemo
	}

	if err := s.transactions.AddImported(ctx, userID, txns); err != nil {
		return 0, err
	}

	if err := s.userRepo.MarkOnboarded(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "failed to mark user onboarded",
			"user_id", userID,
			"error", err)
	}

	if s.audit != nil {
		s.audit.LogDemoSeeded(ctx, userID, len(txns))
	}
	s.logger.InfoContext(ctx, "demo data seeded",
		"user_id", userID,
		"created", len(txns))

	return len(txns), nil
}
