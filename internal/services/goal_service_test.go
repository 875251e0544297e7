package services

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"pocket-budget/internal/dto"
	"pocket-budget/internal/models"
	"pocket-budget/internal/repositories"
	"pocket-budget/internal/repositories/repository_mocks"
	"pocket-budget/internal/services/service_mocks"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type GoalServiceTestSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	repo    *repository_mocks.MockGoalRepositoryInterface
	audit   *service_mocks.MockAuditLoggerInterface
	metrics *service_mocks.MockMetricsRecorderInterface
	service GoalServiceInterface
	userID  uuid.UUID
	ctx     context.Context
}

func TestGoalServiceSuite(t *testing.T) {
	suite.Run(t, new(GoalServiceTestSuite))
}

func (s *GoalServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.repo = repository_mocks.NewMockGoalRepositoryInterface(s.ctrl)
	s.audit = service_mocks.NewMockAuditLoggerInterface(s.ctrl)
	s.metrics = service_mocks.NewMockMetricsRecorderInterface(s.ctrl)
	s.service = NewGoalService(s.repo, s.audit, s.metrics, slog.New(slog.NewTextHandler(io.Discard, nil)))
	s.userID = uuid.New()
	s.ctx = context.Background()
}

func (s *GoalServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *GoalServiceTestSuite) goal(target, current string) *models.Goal {
	return &models.Goal{
		ID:      uuid.New(),
		UserID:  s.userID,
		Name:    gofakeit.Word(),
		Target:  decimal.RequireFromString(target),
		Current: decimal.RequireFromString(current),
	}
}

func (s *GoalServiceTestSuite) TestSuggestions() {
	suggestions := s.service.Suggestions()
	s.Len(suggestions, 5)
	s.Equal("Emergency Fund", suggestions[0].Name)
	s.True(suggestions[0].Target.Equal(decimal.NewFromInt(50000)))

	suggestions[0].Name = "changed"
	s.Equal("Emergency Fund", s.service.Suggestions()[0].Name)
}

func (s *GoalServiceTestSuite) TestCreateGoal_FromTemplate() {
	s.repo.EXPECT().Create(s.ctx, gomock.Any()).DoAndReturn(
		func(_ context.Context, g *models.Goal) error {
			s.Equal(s.userID, g.UserID)
			s.Equal("Laptop", g.Name)
			s.Equal("💻", g.Emoji)
			s.True(g.Target.Equal(decimal.NewFromInt(60000)))
			s.True(g.Current.IsZero())
			return nil
		})

	goal, err := s.service.CreateGoal(s.ctx, s.userID, &dto.CreateGoalRequest{TemplateID: "laptop"})
	s.Require().NoError(err)
	s.NotEqual(uuid.Nil, goal.ID)
}

func (s *GoalServiceTestSuite) TestCreateGoal_TemplateWithOverrides() {
	s.repo.EXPECT().Create(s.ctx, gomock.Any()).Return(nil)

	goal, err := s.service.CreateGoal(s.ctx, s.userID, &dto.CreateGoalRequest{
		TemplateID: "vacation",
		Name:       "Goa trip",
		Target:     "45,000",
		Deadline:   "2025-12-01",
	})
	s.Require().NoError(err)
	s.Equal("Goa trip", goal.Name)
	s.Equal("✈️", goal.Emoji)
	s.True(goal.Target.Equal(decimal.NewFromInt(45000)))
	s.Equal("2025-12-01", goal.Deadline)
}

func (s *GoalServiceTestSuite) TestCreateGoal_Custom() {
	s.repo.EXPECT().Create(s.ctx, gomock.Any()).Return(nil)

	goal, err := s.service.CreateGoal(s.ctx, s.userID, &dto.CreateGoalRequest{Name: " Bike ", Target: "15000.50"})
	s.Require().NoError(err)
	s.Equal("Bike", goal.Name)
	s.Empty(goal.Emoji, "default emoji is applied by the model hook")
}

func (s *GoalServiceTestSuite) TestCreateGoal_Rejections() {
	_, err := s.service.CreateGoal(s.ctx, s.userID, &dto.CreateGoalRequest{TemplateID: "yacht"})
	s.ErrorIs(err, ErrUnknownGoalTemplate)

	_, err = s.service.CreateGoal(s.ctx, s.userID, &dto.CreateGoalRequest{Name: "Bike", Target: "0"})
	s.ErrorIs(err, ErrInvalidGoalAmount)

	_, err = s.service.CreateGoal(s.ctx, s.userID, &dto.CreateGoalRequest{Name: "Bike", Target: "abc"})
	s.ErrorIs(err, ErrInvalidGoalAmount)

	_, err = s.service.CreateGoal(s.ctx, s.userID, &dto.CreateGoalRequest{Target: "100"})
	s.ErrorIs(err, models.ErrGoalNameRequired)

	_, err = s.service.CreateGoal(s.ctx, s.userID, &dto.CreateGoalRequest{Name: "Bike", Target: "100", Deadline: "next year"})
	s.ErrorIs(err, models.ErrGoalDeadline)
}

func (s *GoalServiceTestSuite) TestContribute_PartialProgress() {
	g := s.goal("1000", "100")
	updated := *g
	updated.Current = decimal.NewFromInt(400)

	s.repo.EXPECT().AddToCurrent(s.ctx, s.userID, g.ID, decimal.NewFromInt(300)).Return(&updated, false, nil)
	s.metrics.EXPECT().IncrementCounter("goal_contribution", gomock.Nil())

	got, err := s.service.Contribute(s.ctx, s.userID, g.ID, decimal.NewFromInt(300))
	s.Require().NoError(err)
	s.Equal(40, got.Progress())
	s.False(got.IsCompleted())
}

func (s *GoalServiceTestSuite) TestContribute_CompletesGoal() {
	g := s.goal("1000", "900")
	updated := *g
	updated.Current = decimal.NewFromInt(1200)

	s.repo.EXPECT().AddToCurrent(s.ctx, s.userID, g.ID, gomock.Any()).Return(&updated, true, nil)
	s.metrics.EXPECT().IncrementCounter("goal_contribution", gomock.Nil())
	s.metrics.EXPECT().IncrementCounter("goal_completed", gomock.Nil())
	s.audit.EXPECT().LogGoalCompleted(s.ctx, s.userID, g.ID, g.Name)

	got, err := s.service.Contribute(s.ctx, s.userID, g.ID, decimal.NewFromInt(300))
	s.Require().NoError(err)
	s.Equal(100, got.Progress())
	s.True(got.Remaining().IsZero())
}

func (s *GoalServiceTestSuite) TestContribute_CompletionReportedByStoreOnly() {
	g := s.goal("1000", "1000")
	updated := *g

	// the row is complete, but this contribution did not cross the target
	s.repo.EXPECT().AddToCurrent(s.ctx, s.userID, g.ID, gomock.Any()).Return(&updated, false, nil)
	s.metrics.EXPECT().IncrementCounter("goal_contribution", gomock.Nil())

	_, err := s.service.Contribute(s.ctx, s.userID, g.ID, decimal.NewFromInt(1))
	s.Require().NoError(err)
}

func (s *GoalServiceTestSuite) TestContribute_AlreadyCompleted() {
	g := s.goal("1000", "1000")
	s.repo.EXPECT().AddToCurrent(s.ctx, s.userID, g.ID, gomock.Any()).Return(nil, false, repositories.ErrGoalCompleted)

	_, err := s.service.Contribute(s.ctx, s.userID, g.ID, decimal.NewFromInt(1))
	s.ErrorIs(err, ErrGoalAlreadyCompleted)
}

func (s *GoalServiceTestSuite) TestContribute_InvalidAmount() {
	_, err := s.service.Contribute(s.ctx, s.userID, uuid.New(), decimal.Zero)
	s.ErrorIs(err, ErrInvalidGoalAmount)

	_, err = s.service.Contribute(s.ctx, s.userID, uuid.New(), decimal.NewFromInt(-5))
	s.ErrorIs(err, ErrInvalidGoalAmount)
}

func (s *GoalServiceTestSuite) TestContribute_NotFound() {
	id := uuid.New()
	s.repo.EXPECT().AddToCurrent(s.ctx, s.userID, id, gomock.Any()).Return(nil, false, repositories.ErrGoalNotFound)

	_, err := s.service.Contribute(s.ctx, s.userID, id, decimal.NewFromInt(10))
	s.ErrorIs(err, repositories.ErrGoalNotFound)
}

func (s *GoalServiceTestSuite) TestDeleteGoal() {
	id := uuid.New()
	s.repo.EXPECT().DeleteForUser(s.ctx, s.userID, id).Return(repositories.ErrGoalNotFound)
	s.ErrorIs(s.service.DeleteGoal(s.ctx, s.userID, id), repositories.ErrGoalNotFound)

	s.repo.EXPECT().DeleteForUser(s.ctx, s.userID, id).Return(nil)
	s.NoError(s.service.DeleteGoal(s.ctx, s.userID, id))
}
