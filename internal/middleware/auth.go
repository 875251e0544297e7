package middleware

import (
	stderrors "errors"

	"pocket-budget/internal/errors"
	"pocket-budget/internal/handlers"
	"pocket-budget/internal/models"
	"pocket-budget/internal/repositories"
	"pocket-budget/internal/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// RequireAuth accepts requests carrying a valid, non-revoked access token and
// stores the caller's identity on the context.
func RequireAuth(tokenService services.TokenServiceInterface, blacklistedTokenRepo repositories.BlacklistedTokenRepositoryInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if authHeader == "" {
				return handlers.SendError(c, errors.AuthMissingToken)
			}

			token, err := tokenService.ExtractTokenFromHeader(authHeader)
			if err != nil {
				return handlers.SendError(c, errors.AuthInvalidTokenFormat)
			}

			claims, err := tokenService.ValidateAccessToken(token)
			if err != nil {
				if stderrors.Is(err, services.ErrExpiredToken) {
					return handlers.SendError(c, errors.AuthExpiredToken)
				}
				return handlers.SendError(c, errors.AuthInvalidTokenFormat)
			}

			revoked, err := blacklistedTokenRepo.IsBlacklisted(c.Request().Context(), claims.ID)
			if err != nil {
				return handlers.SendSystemError(c, err)
			}
			if revoked {
				return handlers.SendError(c, errors.AuthInvalidTokenFormat, errors.WithDetails("Token has been revoked"))
			}

			userID, err := uuid.Parse(claims.UserID)
			if err != nil {
				return handlers.SendError(c, errors.AuthInvalidTokenFormat, errors.WithDetails("Invalid user ID in token"))
			}

			c.Set("user_id", userID)
			c.Set("user_email", claims.Email)
			c.Set("user_role", claims.Role)
			c.Set("token_jti", claims.ID)
			c.Set("is_admin", claims.Role == models.RoleAdmin)

			return next(c)
		}
	}
}

// RequireRole creates a middleware that requires one of the given roles
func RequireRole(requiredRoles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			userRole, ok := c.Get("user_role").(string)
			if !ok {
				return handlers.SendError(c, errors.AuthInvalidTokenFormat, errors.WithDetails("User role not found in token"))
			}

			for _, role := range requiredRoles {
				if userRole == role {
					return next(c)
				}
			}

			return handlers.SendError(c, errors.AuthInsufficientPermission)
		}
	}
}

// RequireAdmin is a convenience middleware that requires admin role
func RequireAdmin() echo.MiddlewareFunc {
	return RequireRole(models.RoleAdmin)
}
