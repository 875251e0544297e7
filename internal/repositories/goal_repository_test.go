package repositories

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"pocket-budget/internal/database"
	"pocket-budget/internal/models"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

func TestGoalRepository(t *testing.T) {
	suite.Run(t, new(GoalRepositorySuite))
}

type GoalRepositorySuite struct {
	suite.Suite
	db   *database.DB
	repo GoalRepositoryInterface
	ctx  context.Context
	user *models.User
}

func (s *GoalRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewGoalRepository(s.db.DB)
	s.ctx = context.Background()
	s.user = database.CreateTestUser(s.T(), s.db, "saver@example.com")
}

func (s *GoalRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *GoalRepositorySuite) TestAddToCurrent_Accumulates() {
	goal := &models.Goal{UserID: s.user.ID, Name: "Vacation", Emoji: "✈️", Target: decimal.NewFromInt(30000)}
	s.Require().NoError(s.repo.Create(s.ctx, goal))

	_, completed, err := s.repo.AddToCurrent(s.ctx, s.user.ID, goal.ID, decimal.NewFromInt(5000))
	s.Require().NoError(err)
	s.False(completed)
	updated, completed, err := s.repo.AddToCurrent(s.ctx, s.user.ID, goal.ID, decimal.NewFromFloat(2500.50))
	s.Require().NoError(err)
	s.False(completed)

	s.True(decimal.NewFromFloat(7500.50).Equal(updated.Current), "got %s", updated.Current)
	s.Equal(25, updated.Progress())
}

func (s *GoalRepositorySuite) TestAddToCurrent_CompletesOnce() {
	goal := &models.Goal{UserID: s.user.ID, Name: "Phone", Target: decimal.NewFromInt(1000)}
	s.Require().NoError(s.repo.Create(s.ctx, goal))

	_, completed, err := s.repo.AddToCurrent(s.ctx, s.user.ID, goal.ID, decimal.NewFromInt(600))
	s.Require().NoError(err)
	s.False(completed)

	updated, completed, err := s.repo.AddToCurrent(s.ctx, s.user.ID, goal.ID, decimal.NewFromInt(600))
	s.Require().NoError(err)
	s.True(completed)
	s.True(decimal.NewFromInt(1200).Equal(updated.Current), "got %s", updated.Current)

	_, completed, err = s.repo.AddToCurrent(s.ctx, s.user.ID, goal.ID, decimal.NewFromInt(1))
	s.ErrorIs(err, ErrGoalCompleted)
	s.False(completed)
}

func (s *GoalRepositorySuite) TestAddToCurrent_ConcurrentContributionsCompleteOnce() {
	goal := &models.Goal{UserID: s.user.ID, Name: "Laptop", Target: decimal.NewFromInt(1000), Current: decimal.NewFromInt(500)}
	s.Require().NoError(s.repo.Create(s.ctx, goal))

	const workers = 4
	var (
		wg          sync.WaitGroup
		completions atomic.Int32
		rejected    atomic.Int32
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, completed, err := s.repo.AddToCurrent(s.ctx, s.user.ID, goal.ID, decimal.NewFromInt(600))
			switch {
			case errors.Is(err, ErrGoalCompleted):
				rejected.Add(1)
			case err == nil && completed:
				completions.Add(1)
			}
		}()
	}
	wg.Wait()

	s.Equal(int32(1), completions.Load())
	s.Equal(int32(workers-1), rejected.Load())
}

func (s *GoalRepositorySuite) TestAddToCurrent_UnknownGoal() {
	_, _, err := s.repo.AddToCurrent(s.ctx, s.user.ID, uuid.New(), decimal.NewFromInt(1))
	s.ErrorIs(err, ErrGoalNotFound)

	other := database.CreateTestUser(s.T(), s.db, "other@example.com")
	goal := &models.Goal{UserID: other.ID, Name: "Bike", Target: decimal.NewFromInt(100)}
	s.Require().NoError(s.repo.Create(s.ctx, goal))
	_, _, err = s.repo.AddToCurrent(s.ctx, s.user.ID, goal.ID, decimal.NewFromInt(1))
	s.ErrorIs(err, ErrGoalNotFound)
}

func (s *GoalRepositorySuite) TestListAndDelete() {
	first := &models.Goal{UserID: s.user.ID, Name: "Phone", Target: decimal.NewFromInt(20000)}
	second := &models.Goal{UserID: s.user.ID, Name: "Laptop", Target: decimal.NewFromInt(60000)}
	s.Require().NoError(s.repo.Create(s.ctx, first))
	s.Require().NoError(s.repo.Create(s.ctx, second))

	goals, err := s.repo.ListByUser(s.ctx, s.user.ID)
	s.Require().NoError(err)
	s.Len(goals, 2)

	s.NoError(s.repo.DeleteForUser(s.ctx, s.user.ID, first.ID))
	s.ErrorIs(s.repo.DeleteForUser(s.ctx, s.user.ID, first.ID), ErrGoalNotFound)

	_, err = s.repo.GetByIDForUser(s.ctx, s.user.ID, second.ID)
	s.NoError(err)
}
