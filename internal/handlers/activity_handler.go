package handlers

import (
	stderrors "errors"
	"net/http"

	"pocket-budget/internal/dto"
	"pocket-budget/internal/errors"
	"pocket-budget/internal/models"
	"pocket-budget/internal/repositories"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	defaultActivityLimit = 20
	maxActivityLimit     = 100
)

// ActivityHandler exposes the audit trail: members see their own, admins
// can look up anyone.
type ActivityHandler struct {
	userRepo  repositories.UserRepositoryInterface
	auditRepo repositories.AuditLogRepositoryInterface
}

// NewActivityHandler creates a new activity handler
func NewActivityHandler(userRepo repositories.UserRepositoryInterface, auditRepo repositories.AuditLogRepositoryInterface) *ActivityHandler {
	return &ActivityHandler{
		userRepo:  userRepo,
		auditRepo: auditRepo,
	}
}

// MyActivity lists the caller's audit trail, newest first
// @Summary Own activity
// @Tags Activity
// @Security BearerAuth
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Items per page (max 100)" default(20)
// @Success 200 {object} SuccessResponse{data=[]dto.ActivityEntry}
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_001"
// @Router /activity [get]
func (h *ActivityHandler) MyActivity(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}
	return h.listActivity(c, userID)
}

// GetUser returns one account with its lock state
// @Summary Get user (admin)
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param userId path string true "User ID (UUID)"
// @Success 200 {object} SuccessResponse{data=dto.AdminUserResponse}
// @Failure 400 {object} errors.ErrorResponse "VALIDATION_003"
// @Failure 403 {object} errors.ErrorResponse "AUTH_005"
// @Failure 404 {object} errors.ErrorResponse "SYSTEM_007"
// @Router /admin/users/{userId} [get]
func (h *ActivityHandler) GetUser(c echo.Context) error {
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("userId: must be a valid UUID"))
	}

	user, err := h.userRepo.GetByID(c.Request().Context(), userID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrUserNotFound) {
			return SendError(c, errors.SystemRouteNotFound, errors.WithDetails("User not found"))
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Data: toAdminUserResponse(user)})
}

// UserActivity lists another user's audit trail
// @Summary User activity (admin)
// @Tags Admin
// @Security BearerAuth
// @Produce json
// @Param userId path string true "User ID (UUID)"
// @Success 200 {object} SuccessResponse{data=[]dto.ActivityEntry}
// @Failure 403 {object} errors.ErrorResponse "AUTH_005"
// @Router /admin/users/{userId}/activity [get]
func (h *ActivityHandler) UserActivity(c echo.Context) error {
	userID, ok := parseUUIDParam(c, "userId")
	if !ok {
		return SendError(c, errors.ValidationInvalidFormat, errors.WithDetails("userId: must be a valid UUID"))
	}
	return h.listActivity(c, userID)
}

func (h *ActivityHandler) listActivity(c echo.Context, userID uuid.UUID) error {
	page := getIntParam(c, "page", 1)
	limit := getIntParam(c, "limit", defaultActivityLimit)

	if page < 1 {
		return SendError(c, errors.ValidationGeneral,
			errors.WithDetails("page: must be greater than 0"))
	}
	if limit < 1 || limit > maxActivityLimit {
		return SendError(c, errors.ValidationGeneral,
			errors.WithDetails("limit: must be between 1 and 100"))
	}

	logs, total, err := h.auditRepo.ListByUser(c.Request().Context(), userID, (page-1)*limit, limit)
	if err != nil {
		return SendSystemError(c, err)
	}

	entries := make([]dto.ActivityEntry, len(logs))
	for i, log := range logs {
		entries[i] = dto.ActivityEntry{
			ID:         log.ID,
			Action:     log.Action,
			Resource:   log.Resource,
			ResourceID: log.ResourceID,
			IPAddress:  log.IPAddress,
			Metadata:   log.Metadata,
			CreatedAt:  log.CreatedAt,
		}
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data: entries,
		Meta: map[string]interface{}{
			"total":       total,
			"page":        page,
			"limit":       limit,
			"total_pages": (total + int64(limit) - 1) / int64(limit),
		},
	})
}

func toAdminUserResponse(user *models.User) dto.AdminUserResponse {
	return dto.AdminUserResponse{
		ID:                  user.ID,
		Email:               user.Email,
		DisplayName:         user.DisplayName,
		Role:                user.Role,
		Currency:            user.Currency,
		FailedLoginAttempts: user.FailedLoginAttempts,
		LockedAt:            user.LockedAt,
		LastLoginAt:         user.LastLoginAt,
		OnboardedAt:         user.OnboardedAt,
		CreatedAt:           user.CreatedAt,
	}
}
