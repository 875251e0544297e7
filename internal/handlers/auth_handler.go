package handlers

import (
	stderrors "errors"
	"net/http"

	"pocket-budget/internal/dto"
	"pocket-budget/internal/errors"
	"pocket-budget/internal/models"
	"pocket-budget/internal/repositories"
	"pocket-budget/internal/services"

	"github.com/labstack/echo/v4"
)

var passwordRuleErrors = []error{
	services.ErrPasswordEmpty,
	services.ErrPasswordTooShort,
	services.ErrPasswordTooLong,
	services.ErrPasswordNoLetter,
	services.ErrPasswordNoNumber,
	services.ErrPasswordAllSpaces,
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	authService  services.AuthServiceInterface
	tokenService services.TokenServiceInterface
}

// NewAuthHandler creates a new authentication handler
func NewAuthHandler(authService services.AuthServiceInterface, tokenService services.TokenServiceInterface) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		tokenService: tokenService,
	}
}

// Register handles user registration
// @Summary Register a new user
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RegisterRequest true "Registration details"
// @Success 201 {object} SuccessResponse{data=dto.UserProfileResponse}
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001"
// @Failure 409 {object} errors.ErrorResponse "AUTH_007"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req dto.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), &req, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		if stderrors.Is(err, services.ErrUserAlreadyExists) {
			return SendError(c, errors.AuthEmailTaken)
		}
		for _, rule := range passwordRuleErrors {
			if stderrors.Is(err, rule) {
				return SendError(c, errors.ValidationGeneral, errors.WithDetails("password: "+rule.Error()))
			}
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{
		Data:    toUserProfileResponse(user),
		Message: "User registered successfully",
	})
}

// Login handles user authentication
// @Summary Login user
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.LoginRequest true "Login credentials"
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} errors.ErrorResponse "AUTH_001"
// @Failure 403 {object} errors.ErrorResponse "AUTH_006"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	tokens, err := h.authService.Login(c.Request().Context(), &req, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		switch {
		case stderrors.Is(err, services.ErrAccountLocked):
			return SendError(c, errors.AuthAccountLocked)
		case stderrors.Is(err, services.ErrInvalidCredentials):
			return SendError(c, errors.AuthInvalidCredentials)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, tokens)
}

// RefreshToken rotates a refresh token into a new token pair
// @Summary Refresh access token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body dto.RefreshTokenRequest true "Refresh token"
// @Success 200 {object} dto.TokenResponse
// @Failure 401 {object} errors.ErrorResponse "AUTH_004"
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshToken(c echo.Context) error {
	var req dto.RefreshTokenRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	tokens, err := h.authService.RefreshTokens(c.Request().Context(), req.RefreshToken, getClientIP(c), c.Request().UserAgent())
	if err != nil {
		switch {
		case stderrors.Is(err, services.ErrInvalidRefreshToken):
			return SendError(c, errors.AuthInvalidTokenFormat, errors.WithDetails("Invalid or expired refresh token"))
		case stderrors.Is(err, services.ErrAccountLocked):
			return SendError(c, errors.AuthAccountLocked)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, tokens)
}

// Logout invalidates the caller's access token and refresh tokens
// @Summary Logout user
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse
// @Failure 401 {object} errors.ErrorResponse "AUTH_002 or AUTH_004"
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return SendError(c, errors.AuthMissingToken)
	}

	accessToken, err := h.tokenService.ExtractTokenFromHeader(authHeader)
	if err != nil {
		return SendError(c, errors.AuthInvalidTokenFormat)
	}

	// Logout reports success even when nothing could be revoked.
	if err := h.authService.Logout(c.Request().Context(), accessToken, getClientIP(c), c.Request().UserAgent()); err != nil {
		c.Logger().Warnf("logout failed: %v", err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Message: "Logout successful",
	})
}

// Me returns the authenticated user's profile
// @Summary Current user
// @Tags Authentication
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=dto.UserProfileResponse}
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	user, err := h.authService.GetProfile(c.Request().Context(), userID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrUserNotFound) {
			return SendError(c, errors.AuthInvalidTokenFormat, errors.WithDetails("User no longer exists"))
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Data: toUserProfileResponse(user)})
}

func toUserProfileResponse(user *models.User) dto.UserProfileResponse {
	return dto.UserProfileResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Currency:    user.Currency,
		Role:        user.Role,
		OnboardedAt: user.OnboardedAt,
		CreatedAt:   user.CreatedAt,
	}
}
