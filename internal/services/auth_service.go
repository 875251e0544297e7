package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"pocket-budget/internal/dto"
	"pocket-budget/internal/models"
	"pocket-budget/internal/repositories"

	"github.com/google/uuid"
)

var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrAccountLocked       = errors.New("account is locked due to too many failed attempts")
	ErrUserAlreadyExists   = errors.New("user with this email already exists")
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

// expired or unparseable tokens still get blacklisted for this long on logout
const fallbackBlacklistTTL = 24 * time.Hour

// AuthService handles authentication business logic
type AuthService struct {
	userRepo             repositories.UserRepositoryInterface
	refreshTokenRepo     repositories.RefreshTokenRepositoryInterface
	auditRepo            repositories.AuditLogRepositoryInterface
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface
	passwordService      PasswordServiceInterface
	tokenService         TokenServiceInterface
	metrics              MetricsRecorderInterface
	logger               *slog.Logger
	now                  func() time.Time
}

// NewAuthService creates a new authentication service
func NewAuthService(
	userRepo repositories.UserRepositoryInterface,
	refreshTokenRepo repositories.RefreshTokenRepositoryInterface,
	auditRepo repositories.AuditLogRepositoryInterface,
	blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface,
	passwordService PasswordServiceInterface,
	tokenService TokenServiceInterface,
	metrics MetricsRecorderInterface,
	logger *slog.Logger,
) AuthServiceInterface {
	if logger == nil {
		logger = slog.Default()
	}
	return &AuthService{
		userRepo:             userRepo,
		refreshTokenRepo:     refreshTokenRepo,
		auditRepo:            auditRepo,
		blacklistedTokenRepo: blacklistedTokenRepo,
		passwordService:      passwordService,
		tokenService:         tokenService,
		metrics:              metrics,
		logger:               logger,
		now:                  time.Now,
	}
}

// Register creates a new user. Emails are stored lower-cased and the
// currency defaults to INR.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest, ipAddress, userAgent string) (*models.User, error) {
	email := normalizeEmail(req.Email)

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existing != nil {
		s.audit(ctx, nil, models.AuditActionRegister, "", ipAddress, userAgent, map[string]interface{}{
			"email":  email,
			"reason": "email_already_exists",
		})
		s.countEvent("register_conflict")
		return nil, ErrUserAlreadyExists
	}

	hashed, err := s.passwordService.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = "INR"
	}

	user := &models.User{
		Email:        email,
		PasswordHash: hashed,
		DisplayName:  strings.TrimSpace(req.DisplayName),
		Currency:     currency,
		Role:         models.RoleMember,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return nil, ErrUserAlreadyExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.audit(ctx, &user.ID, models.AuditActionRegister, user.ID.String(), ipAddress, userAgent, nil)
	s.countEvent("register")
	s.logger.InfoContext(ctx, "user registered",
		"user_id", user.ID,
		"correlation_id", getCorrelationID(ctx))

	return user, nil
}

// Login authenticates a user and returns a fresh token pair. Unknown emails
// and wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest, ipAddress, userAgent string) (*dto.TokenResponse, error) {
	email := normalizeEmail(req.Email)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			s.auditFailedLogin(ctx, nil, email, ipAddress, userAgent, "user_not_found")
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	if user.IsLocked() {
		s.auditFailedLogin(ctx, &user.ID, email, ipAddress, userAgent, "account_locked")
		return nil, ErrAccountLocked
	}

	if !s.passwordService.ComparePassword(req.Password, user.PasswordHash) {
		user.IncrementFailedAttempts()
		if err := s.userRepo.UpdateFailedLoginAttempts(ctx, user); err != nil {
			s.logger.ErrorContext(ctx, "failed to update login attempts",
				"error", err,
				"user_id", user.ID)
		}

		if user.IsLocked() {
			s.audit(ctx, &user.ID, models.AuditActionAccountLocked, user.ID.String(), ipAddress, userAgent, nil)
			s.countEvent("account_locked")
		}

		s.auditFailedLogin(ctx, &user.ID, email, ipAddress, userAgent, "invalid_password")
		return nil, ErrInvalidCredentials
	}

	if err := s.userRepo.RecordSuccessfulLogin(ctx, user.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to record successful login",
			"error", err,
			"user_id", user.ID)
	}

	tokens, err := s.generateTokens(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate tokens: %w", err)
	}

	s.audit(ctx, &user.ID, models.AuditActionLogin, user.ID.String(), ipAddress, userAgent, nil)
	s.countEvent("login")

	return tokens, nil
}

// RefreshTokens rotates a refresh token: the presented token is revoked and
// a new pair is issued.
func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken, ipAddress, userAgent string) (*dto.TokenResponse, error) {
	claims, err := s.tokenService.ValidateRefreshToken(refreshToken)
	if err != nil {
		s.auditFailedRefresh(ctx, nil, ipAddress, userAgent, "invalid_token")
		return nil, ErrInvalidRefreshToken
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, ErrInvalidRefreshToken
	}

	stored, err := s.refreshTokenRepo.GetByTokenHash(ctx, hashToken(refreshToken))
	if err != nil {
		s.auditFailedRefresh(ctx, &userID, ipAddress, userAgent, "token_not_found")
		return nil, ErrInvalidRefreshToken
	}
	if stored.UserID != userID || !stored.IsUsable(s.now()) {
		s.auditFailedRefresh(ctx, &userID, ipAddress, userAgent, "token_expired_or_revoked")
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user.IsLocked() {
		return nil, ErrAccountLocked
	}

	if err := s.refreshTokenRepo.Revoke(ctx, stored.ID); err != nil {
		s.logger.WarnContext(ctx, "failed to revoke rotated refresh token",
			"error", err,
			"user_id", user.ID,
			"token_id", stored.ID)
	}

	tokens, err := s.generateTokens(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate new tokens: %w", err)
	}

	s.audit(ctx, &user.ID, models.AuditActionTokenRefresh, user.ID.String(), ipAddress, userAgent, nil)
	s.countEvent("token_refresh")

	return tokens, nil
}

// Logout blacklists the access token and revokes every refresh token of its
// owner. It never fails on a bad token; there is nothing left to invalidate.
func (s *AuthService) Logout(ctx context.Context, accessToken, ipAddress, userAgent string) error {
	claims, err := s.tokenService.ValidateAccessToken(accessToken)
	if err != nil {
		if jti, _ := s.tokenService.GetJTI(accessToken); jti != "" {
			if err := s.blacklistToken(ctx, jti, uuid.Nil, s.now().Add(fallbackBlacklistTTL)); err != nil {
				s.logger.ErrorContext(ctx, "failed to blacklist unverified token",
					"error", err,
					"jti", jti)
			}
		}
		return nil
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil
	}

	expiry := s.now().Add(fallbackBlacklistTTL)
	if claims.ExpiresAt != nil {
		expiry = claims.ExpiresAt.Time
	}
	if err := s.blacklistToken(ctx, claims.ID, userID, expiry); err != nil {
		s.logger.ErrorContext(ctx, "failed to blacklist token",
			"error", err,
			"jti", claims.ID,
			"user_id", userID)
	}

	if err := s.refreshTokenRepo.RevokeAllForUser(ctx, userID); err != nil {
		s.logger.WarnContext(ctx, "failed to revoke refresh tokens",
			"error", err,
			"user_id", userID)
	}

	s.audit(ctx, &userID, models.AuditActionLogout, userID.String(), ipAddress, userAgent, nil)
	s.countEvent("logout")

	return nil
}

func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return user, nil
}

func (s *AuthService) generateTokens(ctx context.Context, user *models.User) (*dto.TokenResponse, error) {
	accessToken, expiresAt, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, refreshExpiresAt, err := s.tokenService.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	if err := s.refreshTokenRepo.Create(ctx, &models.RefreshToken{
		UserID:    user.ID,
		TokenHash: hashToken(refreshToken),
		ExpiresAt: refreshExpiresAt,
	}); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &dto.TokenResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "Bearer",
		ExpiresAt:    expiresAt,
	}, nil
}

func (s *AuthService) blacklistToken(ctx context.Context, jti string, userID uuid.UUID, expiresAt time.Time) error {
	return s.blacklistedTokenRepo.Create(ctx, &models.BlacklistedToken{
		JTI:       jti,
		UserID:    userID,
		ExpiresAt: expiresAt,
	})
}

func (s *AuthService) auditFailedLogin(ctx context.Context, userID *uuid.UUID, email, ipAddress, userAgent, reason string) {
	s.audit(ctx, userID, models.AuditActionFailedLogin, "", ipAddress, userAgent, map[string]interface{}{
		"email":  email,
		"reason": reason,
	})
	s.countEvent("failed_login")
}

func (s *AuthService) auditFailedRefresh(ctx context.Context, userID *uuid.UUID, ipAddress, userAgent, reason string) {
	s.audit(ctx, userID, models.AuditActionTokenRefresh, "", ipAddress, userAgent, map[string]interface{}{
		"reason": reason,
	})
	s.countEvent("refresh_rejected")
}

// audit writes an auth event; a storage failure is logged and swallowed.
func (s *AuthService) audit(ctx context.Context, userID *uuid.UUID, action, resourceID, ipAddress, userAgent string, metadata map[string]interface{}) {
	entry := &models.AuditLog{
		UserID:     userID,
		Action:     action,
		Resource:   "user",
		ResourceID: resourceID,
		IPAddress:  ipAddress,
		UserAgent:  userAgent,
		Metadata:   models.JSONMap(metadata),
	}

	if err := s.auditRepo.Create(ctx, entry); err != nil {
		s.logger.ErrorContext(ctx, "failed to create audit log",
			"error", err,
			"action", action,
			"resource_id", resourceID)
	}
}

func (s *AuthService) countEvent(eventType string) {
	if s.metrics == nil {
		return
	}
	s.metrics.IncrementCounter("authentication_event", map[string]string{"event_type": eventType})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
