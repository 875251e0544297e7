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
	"github.com/shopspring/decimal"
)

var (
	ErrUnknownGoalTemplate  = errors.New("unknown goal template")
	ErrInvalidGoalAmount    = errors.New("goal amount must be greater than zero")
	ErrGoalAlreadyCompleted = repositories.ErrGoalCompleted
)

var goalTemplates = []models.GoalTemplate{
	{ID: "emergency_fund", Name: "Emergency Fund", Emoji: "🛡️", Target: decimal.NewFromInt(50000)},
	{ID: "vacation", Name: "Vacation", Emoji: "✈️", Target: decimal.NewFromInt(30000)},
	{ID: "new_phone", Name: "New Phone", Emoji: "📱", Target: decimal.NewFromInt(20000)},
	{ID: "laptop", Name: "Laptop", Emoji: "💻", Target: decimal.NewFromInt(60000)},
	{ID: "education", Name: "Education", Emoji: "🎓", Target: decimal.NewFromInt(100000)},
}

type goalService struct {
	repo    repositories.GoalRepositoryInterface
	audit   AuditLoggerInterface
	metrics MetricsRecorderInterface
	logger  *slog.Logger
}

// NewGoalService creates the savings goal service
func NewGoalService(
	repo repositories.GoalRepositoryInterface,
	audit AuditLoggerInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) GoalServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &goalService{repo: repo, audit: audit, metrics: metrics, logger: logger}
}

// Suggestions returns a copy of the suggested goal templates.
func (s *goalService) Suggestions() []models.GoalTemplate {
	out := make([]models.GoalTemplate, len(goalTemplates))
	copy(out, goalTemplates)
	return out
}

func (s *goalService) ListGoals(ctx context.Context, userID uuid.UUID) ([]models.Goal, error) {
	return s.repo.ListByUser(ctx, userID)
}

// CreateGoal builds a goal from a template or from the custom fields. Custom
// fields override the template's name, emoji and target when present.
func (s *goalService) CreateGoal(ctx context.Context, userID uuid.UUID, req *dto.CreateGoalRequest) (*models.Goal, error) {
	goal := &models.Goal{
		ID:       uuid.New(),
		UserID:   userID,
		Deadline: req.Deadline,
	}

	if req.TemplateID != "" {
		tmpl, ok := findGoalTemplate(req.TemplateID)
		if !ok {
			return nil, ErrUnknownGoalTemplate
		}
		goal.Name = tmpl.Name
		goal.Emoji = tmpl.Emoji
		goal.Target = tmpl.Target
	}

	if name := strings.TrimSpace(req.Name); name != "" {
		goal.Name = name
	}
	if req.Emoji != "" {
		goal.Emoji = req.Emoji
	}
	if req.Target != "" {
		target, err := validation.ParseAmount(req.Target)
		if err != nil || !target.IsPositive() {
			return nil, ErrInvalidGoalAmount
		}
		goal.Target = target
	}

	if goal.Name == "" {
		return nil, models.ErrGoalNameRequired
	}
	if !goal.Target.IsPositive() {
		return nil, ErrInvalidGoalAmount
	}
	if goal.Deadline != "" && !models.IsISODate(goal.Deadline) {
		return nil, models.ErrGoalDeadline
	}

	if err := s.repo.Create(ctx, goal); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "goal created",
		"user_id", userID,
		"goal_id", goal.ID,
		"template_id", req.TemplateID,
		"target", goal.Target.String())
	return goal, nil
}

// Contribute adds amount to a goal. Only the contribution that reaches the
// target emits the goal-completed audit event.
func (s *goalService) Contribute(ctx context.Context, userID, goalID uuid.UUID, amount decimal.Decimal) (*models.Goal, error) {
	if !amount.IsPositive() {
		return nil, ErrInvalidGoalAmount
	}

	updated, completed, err := s.repo.AddToCurrent(ctx, userID, goalID, amount)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.IncrementCounter("goal_contribution", nil)
	}

	if completed {
		if s.audit != nil {
			s.audit.LogGoalCompleted(ctx, userID, goalID, updated.Name)
		}
		if s.metrics != nil {
			s.metrics.IncrementCounter("goal_completed", nil)
		}
	}

	s.logger.InfoContext(ctx, "goal contribution recorded",
		"user_id", userID,
		"goal_id", goalID,
		"amount", amount.String(),
		"progress", updated.Progress())
	return updated, nil
}

func (s *goalService) DeleteGoal(ctx context.Context, userID, goalID uuid.UUID) error {
	if err := s.repo.DeleteForUser(ctx, userID, goalID); err != nil {
		if errors.Is(err, repositories.ErrGoalNotFound) {
			return err
		}
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	return nil
}

func findGoalTemplate(id string) (models.GoalTemplate, bool) {
	for _, tmpl := range goalTemplates {
		if tmpl.ID == id {
			return tmpl, true
		}
	}
	return models.GoalTemplate{}, false
}
