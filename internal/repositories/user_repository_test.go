package repositories

import (
	"context"
	"testing"
	"time"

	"pocket-budget/internal/database"
	"pocket-budget/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

func TestUserRepository(t *testing.T) {
	suite.Run(t, new(UserRepositorySuite))
}

type UserRepositorySuite struct {
	suite.Suite
	db        *database.DB
	repo      UserRepositoryInterface
	tokens    RefreshTokenRepositoryInterface
	blacklist BlacklistedTokenRepositoryInterface
	auditLogs AuditLogRepositoryInterface
	ctx       context.Context
}

func (s *UserRepositorySuite) SetupTest() {
	s.db = database.SetupTestDB(s.T())
	s.repo = NewUserRepository(s.db.DB)
	s.tokens = NewRefreshTokenRepository(s.db.DB)
	s.blacklist = NewBlacklistedTokenRepository(s.db.DB)
	s.auditLogs = NewAuditLogRepository(s.db.DB)
	s.ctx = context.Background()
}

func (s *UserRepositorySuite) TearDownTest() {
	database.CleanupTestDB(s.T(), s.db)
}

func (s *UserRepositorySuite) newUser() *models.User {
	return &models.User{
		Email:        gofakeit.Email(),
		PasswordHash: "hashed_password",
		DisplayName:  gofakeit.FirstName(),
	}
}

func (s *UserRepositorySuite) TestCreate_NormalizesEmailAndRejectsDuplicates() {
	user := s.newUser()
	user.Email = "  Priya@Example.COM "
	s.Require().NoError(s.repo.Create(s.ctx, user))
	s.Equal("priya@example.com", user.Email)

	dup := s.newUser()
	dup.Email = "priya@example.com"
	s.ErrorIs(s.repo.Create(s.ctx, dup), ErrUserAlreadyExists)

	found, err := s.repo.GetByEmail(s.ctx, "PRIYA@example.com")
	s.Require().NoError(err)
	s.Equal(user.ID, found.ID)
}

func (s *UserRepositorySuite) TestGetByID_NotFound() {
	_, err := s.repo.GetByID(s.ctx, uuid.New())
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *UserRepositorySuite) TestFailedAttemptsAndLogin() {
	user := s.newUser()
	s.Require().NoError(s.repo.Create(s.ctx, user))

	user.Lock()
	s.Require().NoError(s.repo.UpdateFailedLoginAttempts(s.ctx, user))

	stored, err := s.repo.GetByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.True(stored.IsLocked())

	s.Require().NoError(s.repo.RecordSuccessfulLogin(s.ctx, user.ID))
	stored, err = s.repo.GetByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Zero(stored.FailedLoginAttempts)
	s.NotNil(stored.LastLoginAt)
}

func (s *UserRepositorySuite) TestMarkOnboarded_KeepsFirstTimestamp() {
	user := s.newUser()
	s.Require().NoError(s.repo.Create(s.ctx, user))

	s.Require().NoError(s.repo.MarkOnboarded(s.ctx, user.ID))
	first, err := s.repo.GetByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Require().NotNil(first.OnboardedAt)

	s.Require().NoError(s.repo.MarkOnboarded(s.ctx, user.ID))
	second, err := s.repo.GetByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.True(first.OnboardedAt.Equal(*second.OnboardedAt))
}

func (s *UserRepositorySuite) TestRefreshTokenLifecycle() {
	user := s.newUser()
	s.Require().NoError(s.repo.Create(s.ctx, user))

	token := &models.RefreshToken{UserID: user.ID, TokenHash: "abc123", ExpiresAt: time.Now().Add(time.Hour)}
	s.Require().NoError(s.tokens.Create(s.ctx, token))

	found, err := s.tokens.GetByTokenHash(s.ctx, "abc123")
	s.Require().NoError(err)
	s.True(found.IsUsable(time.Now()))

	s.NoError(s.tokens.Revoke(s.ctx, token.ID))
	s.ErrorIs(s.tokens.Revoke(s.ctx, token.ID), ErrRefreshTokenNotFound)

	found, err = s.tokens.GetByTokenHash(s.ctx, "abc123")
	s.Require().NoError(err)
	s.False(found.IsUsable(time.Now()))
}

func (s *UserRepositorySuite) TestBlacklist() {
	user := s.newUser()
	s.Require().NoError(s.repo.Create(s.ctx, user))

	entry := &models.BlacklistedToken{JTI: "jti-1", UserID: user.ID, ExpiresAt: time.Now().Add(-time.Minute)}
	s.Require().NoError(s.blacklist.Create(s.ctx, entry))
	s.NoError(s.blacklist.Create(s.ctx, &models.BlacklistedToken{JTI: "jti-1", UserID: user.ID, ExpiresAt: time.Now()}))

	listed, err := s.blacklist.IsBlacklisted(s.ctx, "jti-1")
	s.NoError(err)
	s.True(listed)

	removed, err := s.blacklist.DeleteExpired(s.ctx)
	s.NoError(err)
	s.Equal(int64(1), removed)
}

func (s *UserRepositorySuite) TestAuditLogListByUser() {
	user := s.newUser()
	s.Require().NoError(s.repo.Create(s.ctx, user))

	for _, action := range []string{models.AuditActionRegister, models.AuditActionLogin} {
		s.Require().NoError(s.auditLogs.Create(s.ctx, &models.AuditLog{UserID: &user.ID, Action: action, Resource: "user"}))
	}

	logs, total, err := s.auditLogs.ListByUser(s.ctx, user.ID, 0, 10)
	s.NoError(err)
	s.Equal(int64(2), total)
	s.Len(logs, 2)
}
