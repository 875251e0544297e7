package services

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"pocket-budget/internal/dto"
	"pocket-budget/internal/models"
	"pocket-budget/internal/repositories"
	"pocket-budget/internal/repositories/repository_mocks"
	"pocket-budget/internal/services/service_mocks"

	"github.com/golang-jwt/jwt/v5"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
)

type AuthServiceTestSuite struct {
	suite.Suite
	ctrl                 *gomock.Controller
	userRepo             *repository_mocks.MockUserRepositoryInterface
	refreshTokenRepo     *repository_mocks.MockRefreshTokenRepositoryInterface
	auditRepo            *repository_mocks.MockAuditLogRepositoryInterface
	blacklistedTokenRepo *repository_mocks.MockBlacklistedTokenRepositoryInterface
	passwordService      *service_mocks.MockPasswordServiceInterface
	tokenService         *service_mocks.MockTokenServiceInterface
	metrics              *service_mocks.MockMetricsRecorderInterface
	authService          *AuthService
	ctx                  context.Context
	now                  time.Time
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.userRepo = repository_mocks.NewMockUserRepositoryInterface(s.ctrl)
	s.refreshTokenRepo = repository_mocks.NewMockRefreshTokenRepositoryInterface(s.ctrl)
	s.auditRepo = repository_mocks.NewMockAuditLogRepositoryInterface(s.ctrl)
	s.blacklistedTokenRepo = repository_mocks.NewMockBlacklistedTokenRepositoryInterface(s.ctrl)
	s.passwordService = service_mocks.NewMockPasswordServiceInterface(s.ctrl)
	s.tokenService = service_mocks.NewMockTokenServiceInterface(s.ctrl)
	s.metrics = service_mocks.NewMockMetricsRecorderInterface(s.ctrl)

	s.authService = NewAuthService(
		s.userRepo,
		s.refreshTokenRepo,
		s.auditRepo,
		s.blacklistedTokenRepo,
		s.passwordService,
		s.tokenService,
		s.metrics,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
	).(*AuthService)

	s.now = time.Date(2024, 5, 10, 9, 0, 0, 0, time.UTC)
	s.authService.now = func() time.Time { return s.now }
	s.ctx = context.Background()
}

func (s *AuthServiceTestSuite) TearDownTest() {
	s.ctrl.Finish()
}

func TestAuthServiceSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}

func (s *AuthServiceTestSuite) expectEvent(eventType string) {
	s.metrics.EXPECT().IncrementCounter("authentication_event", map[string]string{"event_type": eventType})
}

func (s *AuthServiceTestSuite) expectAudit(action string) {
	s.auditRepo.EXPECT().Create(s.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, log *models.AuditLog) error {
		s.Equal(action, log.Action)
		return nil
	})
}

func (s *AuthServiceTestSuite) expectTokenPair(user *models.User) {
	s.tokenService.EXPECT().GenerateAccessToken(user).Return("access-token", s.now.Add(time.Hour), nil)
	s.tokenService.EXPECT().GenerateRefreshToken(user.ID).Return("refresh-token", s.now.Add(7*24*time.Hour), nil)
	s.refreshTokenRepo.EXPECT().Create(s.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, token *models.RefreshToken) error {
		s.Equal(user.ID, token.UserID)
		s.Equal(hashToken("refresh-token"), token.TokenHash)
		s.NotEqual("refresh-token", token.TokenHash)
		return nil
	})
}

func (s *AuthServiceTestSuite) newUser() *models.User {
	return &models.User{
		ID:           uuid.New(),
		Email:        "asha@example.com",
		PasswordHash: "hashed",
		DisplayName:  "Asha",
		Currency:     "INR",
		Role:         models.RoleMember,
	}
}

func (s *AuthServiceTestSuite) TestRegister_Success() {
	req := &dto.RegisterRequest{
		Email:       "  Asha@Example.com ",
		Password:    "budget2024",
		DisplayName: " Asha ",
	}

	s.userRepo.EXPECT().GetByEmail(s.ctx, "asha@example.com").Return(nil, repositories.ErrUserNotFound)
	s.passwordService.EXPECT().HashPassword("budget2024").Return("hashed_password", nil)
	s.userRepo.EXPECT().Create(s.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, u *models.User) error {
		u.ID = uuid.New()
		return nil
	})
	s.expectAudit(models.AuditActionRegister)
	s.expectEvent("register")

	user, err := s.authService.Register(s.ctx, req, "192.168.1.1", "Mozilla/5.0")
	s.Require().NoError(err)
	s.Equal("asha@example.com", user.Email)
	s.Equal("Asha", user.DisplayName)
	s.Equal("INR", user.Currency)
	s.Equal(models.RoleMember, user.Role)
	s.Equal("hashed_password", user.PasswordHash)
}

func (s *AuthServiceTestSuite) TestRegister_KeepsRequestedCurrency() {
	req := &dto.RegisterRequest{Email: "a@b.io", Password: "budget2024", DisplayName: "A", Currency: "usd"}

	s.userRepo.EXPECT().GetByEmail(s.ctx, "a@b.io").Return(nil, repositories.ErrUserNotFound)
	s.passwordService.EXPECT().HashPassword(gomock.Any()).Return("h", nil)
	s.userRepo.EXPECT().Create(s.ctx, gomock.Any()).Return(nil)
	s.auditRepo.EXPECT().Create(s.ctx, gomock.Any()).Return(nil)
	s.expectEvent("register")

	user, err := s.authService.Register(s.ctx, req, "", "")
	s.Require().NoError(err)
	s.Equal("USD", user.Currency)
}

func (s *AuthServiceTestSuite) TestRegister_DuplicateEmail() {
	req := &dto.RegisterRequest{Email: "asha@example.com", Password: "budget2024", DisplayName: "Asha"}

	s.userRepo.EXPECT().GetByEmail(s.ctx, "asha@example.com").Return(s.newUser(), nil)
	s.expectAudit(models.AuditActionRegister)
	s.expectEvent("register_conflict")

	user, err := s.authService.Register(s.ctx, req, "", "")
	s.ErrorIs(err, ErrUserAlreadyExists)
	s.Nil(user)
}

func (s *AuthServiceTestSuite) TestRegister_LostInsertRace() {
	req := &dto.RegisterRequest{Email: "asha@example.com", Password: "budget2024", DisplayName: "Asha"}

	s.userRepo.EXPECT().GetByEmail(s.ctx, gomock.Any()).Return(nil, repositories.ErrUserNotFound)
	s.passwordService.EXPECT().HashPassword(gomock.Any()).Return("h", nil)
	s.userRepo.EXPECT().Create(s.ctx, gomock.Any()).Return(repositories.ErrUserAlreadyExists)

	_, err := s.authService.Register(s.ctx, req, "", "")
	s.ErrorIs(err, ErrUserAlreadyExists)
}

func (s *AuthServiceTestSuite) TestRegister_WeakPassword() {
	req := &dto.RegisterRequest{Email: "asha@example.com", Password: "password", DisplayName: "Asha"}

	s.userRepo.EXPECT().GetByEmail(s.ctx, gomock.Any()).Return(nil, repositories.ErrUserNotFound)
	s.passwordService.EXPECT().HashPassword("password").Return("", ErrPasswordNoNumber)

	_, err := s.authService.Register(s.ctx, req, "", "")
	s.ErrorIs(err, ErrPasswordNoNumber)
}

func (s *AuthServiceTestSuite) TestRegister_LookupFailure() {
	req := &dto.RegisterRequest{Email: "asha@example.com", Password: "budget2024", DisplayName: "Asha"}
	s.userRepo.EXPECT().GetByEmail(s.ctx, gomock.Any()).Return(nil, errors.New("connection refused"))

	_, err := s.authService.Register(s.ctx, req, "", "")
	s.ErrorContains(err, "failed to check existing user")
}

func (s *AuthServiceTestSuite) TestLogin_Success() {
	user := s.newUser()
	req := &dto.LoginRequest{Email: "ASHA@example.com", Password: "budget2024"}

	s.userRepo.EXPECT().GetByEmail(s.ctx, "asha@example.com").Return(user, nil)
	s.passwordService.EXPECT().ComparePassword("budget2024", "hashed").Return(true)
	s.userRepo.EXPECT().RecordSuccessfulLogin(s.ctx, user.ID).Return(nil)
	s.expectTokenPair(user)
	s.expectAudit(models.AuditActionLogin)
	s.expectEvent("login")

	tokens, err := s.authService.Login(s.ctx, req, "10.0.0.1", "curl")
	s.Require().NoError(err)
	s.Equal("access-token", tokens.AccessToken)
	s.Equal("refresh-token", tokens.RefreshToken)
	s.Equal("Bearer", tokens.TokenType)
	s.Equal(s.now.Add(time.Hour), tokens.ExpiresAt)
}

func (s *AuthServiceTestSuite) TestLogin_UnknownEmail() {
	s.userRepo.EXPECT().GetByEmail(s.ctx, "ghost@example.com").Return(nil, repositories.ErrUserNotFound)
	s.expectAudit(models.AuditActionFailedLogin)
	s.expectEvent("failed_login")

	_, err := s.authService.Login(s.ctx, &dto.LoginRequest{Email: "ghost@example.com", Password: "x"}, "", "")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *AuthServiceTestSuite) TestLogin_WrongPasswordCountsAttempt() {
	user := s.newUser()

	s.userRepo.EXPECT().GetByEmail(s.ctx, gomock.Any()).Return(user, nil)
	s.passwordService.EXPECT().ComparePassword("wrong", "hashed").Return(false)
	s.userRepo.EXPECT().UpdateFailedLoginAttempts(s.ctx, user).Return(nil)
	s.expectAudit(models.AuditActionFailedLogin)
	s.expectEvent("failed_login")

	_, err := s.authService.Login(s.ctx, &dto.LoginRequest{Email: user.Email, Password: "wrong"}, "", "")
	s.ErrorIs(err, ErrInvalidCredentials)
	s.Equal(1, user.FailedLoginAttempts)
	s.False(user.IsLocked())
}

func (s *AuthServiceTestSuite) TestLogin_LocksAfterMaxAttempts() {
	user := s.newUser()
	user.FailedLoginAttempts = models.MaxFailedLoginAttempts - 1

	s.userRepo.EXPECT().GetByEmail(s.ctx, gomock.Any()).Return(user, nil)
	s.passwordService.EXPECT().ComparePassword(gomock.Any(), gomock.Any()).Return(false)
	s.userRepo.EXPECT().UpdateFailedLoginAttempts(s.ctx, user).Return(nil)
	gomock.InOrder(
		s.auditRepo.EXPECT().Create(s.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, log *models.AuditLog) error {
			s.Equal(models.AuditActionAccountLocked, log.Action)
			return nil
		}),
		s.auditRepo.EXPECT().Create(s.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, log *models.AuditLog) error {
			s.Equal(models.AuditActionFailedLogin, log.Action)
			s.Equal("invalid_password", log.Metadata["reason"])
			return nil
		}),
	)
	s.expectEvent("account_locked")
	s.expectEvent("failed_login")

	_, err := s.authService.Login(s.ctx, &dto.LoginRequest{Email: user.Email, Password: "wrong"}, "", "")
	s.ErrorIs(err, ErrInvalidCredentials)
	s.True(user.IsLocked())
}

func (s *AuthServiceTestSuite) TestLogin_LockedAccount() {
	user := s.newUser()
	user.Lock()

	s.userRepo.EXPECT().GetByEmail(s.ctx, gomock.Any()).Return(user, nil)
	s.expectAudit(models.AuditActionFailedLogin)
	s.expectEvent("failed_login")

	_, err := s.authService.Login(s.ctx, &dto.LoginRequest{Email: user.Email, Password: "budget2024"}, "", "")
	s.ErrorIs(err, ErrAccountLocked)
}

func (s *AuthServiceTestSuite) TestLogin_CounterWriteFailureStillRejects() {
	user := s.newUser()

	s.userRepo.EXPECT().GetByEmail(s.ctx, gomock.Any()).Return(user, nil)
	s.passwordService.EXPECT().ComparePassword(gomock.Any(), gomock.Any()).Return(false)
	s.userRepo.EXPECT().UpdateFailedLoginAttempts(s.ctx, user).Return(errors.New("db down"))
	s.auditRepo.EXPECT().Create(s.ctx, gomock.Any()).Return(errors.New("db down"))
	s.expectEvent("failed_login")

	_, err := s.authService.Login(s.ctx, &dto.LoginRequest{Email: user.Email, Password: "wrong"}, "", "")
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *AuthServiceTestSuite) TestRefreshTokens_Rotates() {
	user := s.newUser()
	stored := &models.RefreshToken{ID: uuid.New(), UserID: user.ID, ExpiresAt: s.now.Add(time.Hour)}

	s.tokenService.EXPECT().ValidateRefreshToken("old-refresh").Return(&models.CustomClaims{UserID: user.ID.String()}, nil)
	s.refreshTokenRepo.EXPECT().GetByTokenHash(s.ctx, hashToken("old-refresh")).Return(stored, nil)
	s.userRepo.EXPECT().GetByID(s.ctx, user.ID).Return(user, nil)
	s.refreshTokenRepo.EXPECT().Revoke(s.ctx, stored.ID).Return(nil)
	s.expectTokenPair(user)
	s.expectAudit(models.AuditActionTokenRefresh)
	s.expectEvent("token_refresh")

	tokens, err := s.authService.RefreshTokens(s.ctx, "old-refresh", "", "")
	s.Require().NoError(err)
	s.Equal("refresh-token", tokens.RefreshToken)
}

func (s *AuthServiceTestSuite) TestRefreshTokens_InvalidJWT() {
	s.tokenService.EXPECT().ValidateRefreshToken("junk").Return(nil, ErrInvalidToken)
	s.expectAudit(models.AuditActionTokenRefresh)
	s.expectEvent("refresh_rejected")

	_, err := s.authService.RefreshTokens(s.ctx, "junk", "", "")
	s.ErrorIs(err, ErrInvalidRefreshToken)
}

func (s *AuthServiceTestSuite) TestRefreshTokens_RevokedOrExpired() {
	user := s.newUser()
	revokedAt := s.now.Add(-time.Minute)
	cases := []*models.RefreshToken{
		{ID: uuid.New(), UserID: user.ID, ExpiresAt: s.now.Add(time.Hour), RevokedAt: &revokedAt},
		{ID: uuid.New(), UserID: user.ID, ExpiresAt: s.now.Add(-time.Second)},
		{ID: uuid.New(), UserID: uuid.New(), ExpiresAt: s.now.Add(time.Hour)},
	}

	for _, stored := range cases {
		s.tokenService.EXPECT().ValidateRefreshToken("refresh").Return(&models.CustomClaims{UserID: user.ID.String()}, nil)
		s.refreshTokenRepo.EXPECT().GetByTokenHash(s.ctx, gomock.Any()).Return(stored, nil)
		s.expectAudit(models.AuditActionTokenRefresh)
		s.expectEvent("refresh_rejected")

		_, err := s.authService.RefreshTokens(s.ctx, "refresh", "", "")
		s.ErrorIs(err, ErrInvalidRefreshToken)
	}
}

func (s *AuthServiceTestSuite) TestRefreshTokens_UnknownToken() {
	userID := uuid.New()
	s.tokenService.EXPECT().ValidateRefreshToken("refresh").Return(&models.CustomClaims{UserID: userID.String()}, nil)
	s.refreshTokenRepo.EXPECT().GetByTokenHash(s.ctx, gomock.Any()).Return(nil, errors.New("record not found"))
	s.expectAudit(models.AuditActionTokenRefresh)
	s.expectEvent("refresh_rejected")

	_, err := s.authService.RefreshTokens(s.ctx, "refresh", "", "")
	s.ErrorIs(err, ErrInvalidRefreshToken)
}

func (s *AuthServiceTestSuite) TestLogout_BlacklistsAndRevokes() {
	userID := uuid.New()
	expiry := s.now.Add(30 * time.Minute)
	claims := &models.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{ID: "jti-1", ExpiresAt: jwt.NewNumericDate(expiry)},
		UserID:           userID.String(),
	}

	s.tokenService.EXPECT().ValidateAccessToken("access").Return(claims, nil)
	s.blacklistedTokenRepo.EXPECT().Create(s.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, token *models.BlacklistedToken) error {
		s.Equal("jti-1", token.JTI)
		s.Equal(userID, token.UserID)
		s.Equal(expiry.Unix(), token.ExpiresAt.Unix())
		return nil
	})
	s.refreshTokenRepo.EXPECT().RevokeAllForUser(s.ctx, userID).Return(nil)
	s.expectAudit(models.AuditActionLogout)
	s.expectEvent("logout")

	s.NoError(s.authService.Logout(s.ctx, "access", "", ""))
}

func (s *AuthServiceTestSuite) TestLogout_ExpiredTokenStillBlacklisted() {
	s.tokenService.EXPECT().ValidateAccessToken("stale").Return(nil, ErrExpiredToken)
	s.tokenService.EXPECT().GetJTI("stale").Return("jti-stale", nil)
	s.blacklistedTokenRepo.EXPECT().Create(s.ctx, gomock.Any()).DoAndReturn(func(_ context.Context, token *models.BlacklistedToken) error {
		s.Equal("jti-stale", token.JTI)
		s.Equal(s.now.Add(fallbackBlacklistTTL), token.ExpiresAt)
		return nil
	})

	s.NoError(s.authService.Logout(s.ctx, "stale", "", ""))
}

func (s *AuthServiceTestSuite) TestLogout_GarbageToken() {
	s.tokenService.EXPECT().ValidateAccessToken("garbage").Return(nil, ErrInvalidToken)
	s.tokenService.EXPECT().GetJTI("garbage").Return("", ErrInvalidToken)

	s.NoError(s.authService.Logout(s.ctx, "garbage", "", ""))
}

func (s *AuthServiceTestSuite) TestGetProfile() {
	user := s.newUser()
	s.userRepo.EXPECT().GetByID(s.ctx, user.ID).Return(user, nil)

	got, err := s.authService.GetProfile(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Equal(user, got)

	missing := uuid.New()
	s.userRepo.EXPECT().GetByID(s.ctx, missing).Return(nil, repositories.ErrUserNotFound)
	_, err = s.authService.GetProfile(s.ctx, missing)
	s.ErrorIs(err, repositories.ErrUserNotFound)
}

func (s *AuthServiceTestSuite) TestHashToken_Deterministic() {
	s.Equal(hashToken("abc"), hashToken("abc"))
	s.NotEqual(hashToken("abc"), hashToken("abd"))
	s.Len(hashToken("abc"), 64)
}
