package dto

import "time"

// Auth Request DTOs

// RegisterRequest contains user registration data
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=8"`
	DisplayName string `json:"displayName" validate:"required,notblank,max=100"`
	Currency    string `json:"currency" validate:"omitempty,currency_code"`
}

// LoginRequest contains login credentials
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// RefreshTokenRequest contains refresh token for renewal
type RefreshTokenRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// Auth Response DTOs

// TokenResponse contains authentication tokens
type TokenResponse struct {
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	TokenType    string    `json:"tokenType"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// UserProfileResponse represents the authenticated user's profile
type UserProfileResponse struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	DisplayName string     `json:"displayName"`
	Currency    string     `json:"currency"`
	Role        string     `json:"role"`
	OnboardedAt *time.Time `json:"onboardedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
}
