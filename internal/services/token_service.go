package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"pocket-budget/internal/config"
	"pocket-budget/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken      = errors.New("invalid token")
	ErrExpiredToken      = errors.New("token is expired")
	ErrInvalidIssuer     = errors.New("invalid issuer")
	ErrInvalidTokenType  = errors.New("invalid token type")
	ErrEmptyToken        = errors.New("empty token")
	ErrInvalidAuthHeader = errors.New("invalid authorization header format")
)

// TokenService signs and verifies RS256 JWTs
type TokenService struct {
	config.JWTConfig
	now func() time.Time
}

// NewTokenService creates a new token service from JWT configuration
func NewTokenService(jwtConfig *config.JWTConfig) TokenServiceInterface {
	return &TokenService{
		JWTConfig: *jwtConfig,
		now:       time.Now,
	}
}

// GenerateAccessToken issues an access token carrying the user's id, email,
// display name and role.
func (ts *TokenService) GenerateAccessToken(user *models.User) (string, time.Time, error) {
	if user == nil {
		return "", time.Time{}, errors.New("user cannot be nil")
	}

	issuedAt := ts.now()
	expiresAt := issuedAt.Add(ts.AccessTokenDuration)

	claims := ts.registeredClaims(user.ID, issuedAt, expiresAt)
	claims.Email = user.Email
	claims.DisplayName = user.DisplayName
	claims.Role = user.Role
	claims.TokenType = models.TokenTypeAccess

	signed, err := ts.sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign access token: %w", err)
	}
	return signed, expiresAt, nil
}

func (ts *TokenService) GenerateRefreshToken(userID uuid.UUID) (string, time.Time, error) {
	if userID == uuid.Nil {
		return "", time.Time{}, errors.New("user ID cannot be nil")
	}

	issuedAt := ts.now()
	expiresAt := issuedAt.Add(ts.RefreshTokenDuration)

	claims := ts.registeredClaims(userID, issuedAt, expiresAt)
	claims.TokenType = models.TokenTypeRefresh

	signed, err := ts.sign(claims)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign refresh token: %w", err)
	}
	return signed, expiresAt, nil
}

func (ts *TokenService) ValidateAccessToken(tokenString string) (*models.CustomClaims, error) {
	return ts.validateToken(tokenString, models.TokenTypeAccess)
}

func (ts *TokenService) ValidateRefreshToken(tokenString string) (*models.CustomClaims, error) {
	return ts.validateToken(tokenString, models.TokenTypeRefresh)
}

// ExtractTokenFromHeader returns the token of a "Bearer <token>" header; the
// scheme is case-insensitive.
func (ts *TokenService) ExtractTokenFromHeader(authHeader string) (string, error) {
	scheme, token, found := strings.Cut(strings.TrimSpace(authHeader), " ")
	if !found || !strings.EqualFold(scheme, "bearer") {
		return "", ErrInvalidAuthHeader
	}

	token = strings.TrimSpace(token)
	if token == "" {
		return "", ErrInvalidAuthHeader
	}
	return token, nil
}

// GetJTI reads the token id without verifying the signature.
func (ts *TokenService) GetJTI(tokenString string) (string, error) {
	claims, err := ts.extractUnverifiedClaims(tokenString)
	if err != nil {
		return "", err
	}
	return claims.ID, nil
}

func (ts *TokenService) GetTokenExpiry(tokenString string) (time.Time, error) {
	claims, err := ts.extractUnverifiedClaims(tokenString)
	if err != nil {
		return time.Time{}, err
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, ErrInvalidToken
	}
	return claims.ExpiresAt.Time, nil
}

func (ts *TokenService) registeredClaims(userID uuid.UUID, issuedAt, expiresAt time.Time) models.CustomClaims {
	return models.CustomClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    ts.Issuer,
			Subject:   userID.String(),
			ID:        uuid.New().String(),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			NotBefore: jwt.NewNumericDate(issuedAt),
		},
		UserID: userID.String(),
	}
}

func (ts *TokenService) sign(claims models.CustomClaims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(ts.PrivateKey)
}

func (ts *TokenService) validateToken(tokenString string, expectedType string) (*models.CustomClaims, error) {
	if tokenString == "" {
		return nil, ErrEmptyToken
	}

	token, err := jwt.ParseWithClaims(tokenString, &models.CustomClaims{}, ts.keyFunc,
		jwt.WithIssuer(ts.Issuer),
		jwt.WithTimeFunc(ts.now),
	)
	if err != nil {
		return nil, mapTokenError(err)
	}

	claims, ok := token.Claims.(*models.CustomClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.TokenType != expectedType {
		return nil, ErrInvalidTokenType
	}
	if _, err := uuid.Parse(claims.UserID); err != nil {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (ts *TokenService) keyFunc(token *jwt.Token) (interface{}, error) {
	if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
		return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
	}
	return ts.PublicKey, nil
}

func mapTokenError(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpiredToken
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrInvalidIssuer
	default:
		return fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
}

func (ts *TokenService) extractUnverifiedClaims(tokenString string) (*models.CustomClaims, error) {
	if tokenString == "" {
		return nil, ErrEmptyToken
	}

	token, _, err := jwt.NewParser().ParseUnverified(tokenString, &models.CustomClaims{})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*models.CustomClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
