package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"pocket-budget/internal/models"
	"pocket-budget/internal/repositories"

	"github.com/google/uuid"
)

const youDisplayName = "You"

type rewardsService struct {
	transactions TransactionServiceInterface
	userRepo     repositories.UserRepositoryInterface
	metrics      MetricsRecorderInterface
	logger       *slog.Logger
	roster       []models.LeaderboardEntry
	now          func() time.Time
}

// NewRewardsService evaluates achievements and the leaderboard on demand.
func NewRewardsService(
	transactions TransactionServiceInterface,
	userRepo repositories.UserRepositoryInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) RewardsServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &rewardsService{
		transactions: transactions,
		userRepo:     userRepo,
		metrics:      metrics,
		logger:       logger,
		roster:       DefaultRoster(),
		now:          time.Now,
	}
}

func (s *rewardsService) GetRewards(ctx context.Context, userID uuid.UUID) (*models.RewardsSummary, error) {
	txns, err := s.transactions.AllTransactions(ctx, userID)
	if err != nil {
		return nil, err
	}

	summary := SummarizeRewards(EvaluateAchievements(txns, s.now()), FirstTransactionDate(txns))
	if s.metrics != nil {
		s.metrics.RecordGauge("achievement_score", float64(summary.Score), nil)
	}
	return summary, nil
}

func (s *rewardsService) GetLeaderboard(ctx context.Context, userID uuid.UUID) (*models.Leaderboard, error) {
	summary, err := s.GetRewards(ctx, userID)
	if err != nil {
		return nil, err
	}

	name := youDisplayName
	if s.userRepo != nil {
		user, err := s.userRepo.GetByID(ctx, userID)
		switch {
		case err == nil && user.DisplayName != "":
			name = user.DisplayName
		case err != nil && !errors.Is(err, repositories.ErrUserNotFound):
			return nil, fmt.Errorf("failed to load user: %w", err)
		}
	}

	entries, rank := RankLeaderboard(s.roster, models.LeaderboardEntry{
		Name:   name,
		Avatar: "⭐",
		Score:  summary.Score,
		Level:  summary.Level,
	})

	s.logger.DebugContext(ctx, "leaderboard ranked",
		"user_id", userID,
		"score", summary.Score,
		"rank", rank)

	return &models.Leaderboard{Entries: entries, YourRank: rank}, nil
}
