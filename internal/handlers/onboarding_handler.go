package handlers

import (
	stderrors "errors"
	"net/http"

	"pocket-budget/internal/dto"
	"pocket-budget/internal/errors"
	"pocket-budget/internal/repositories"
	"pocket-budget/internal/services"

	"github.com/labstack/echo/v4"
)

// OnboardingHandler serves the intro flow
type OnboardingHandler struct {
	onboarding services.OnboardingServiceInterface
}

func NewOnboardingHandler(onboarding services.OnboardingServiceInterface) *OnboardingHandler {
	return &OnboardingHandler{onboarding: onboarding}
}

// Status reports which intro steps the user has completed
// @Summary Onboarding status
// @Tags Onboarding
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=dto.OnboardingStatus}
// @Router /onboarding [get]
func (h *OnboardingHandler) Status(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	status, err := h.onboarding.Status(c.Request().Context(), userID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrUserNotFound) {
			return SendError(c, errors.AuthInvalidTokenFormat, errors.WithDetails("User no longer exists"))
		}
		return SendSystemError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: status})
}

// SeedDemo fills the account with generated sample transactions
// @Summary Seed demo data
// @Tags Onboarding
// @Security BearerAuth
// @Produce json
// @Success 201 {object} SuccessResponse{data=dto.SeedDemoResponse}
// @Router /onboarding/demo [post]
func (h *OnboardingHandler) SeedDemo(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	created, err := h.onboarding.SeedDemoData(c.Request().Context(), userID)
	if err != nil {
		return SendSystemError(c, err)
	}
	return c.JSON(http.StatusCreated, SuccessResponse{
		Data:    dto.SeedDemoResponse{Created: created},
		Message: "Sample transactions added",
	})
}
