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

// BudgetHandler serves the budget-setup form and the subscription list
type BudgetHandler struct {
	budget services.BudgetServiceInterface
}

func NewBudgetHandler(budget services.BudgetServiceInterface) *BudgetHandler {
	return &BudgetHandler{budget: budget}
}

type budgetSetupResponse struct {
	Profile        *models.BudgetProfile `json:"profile"`
	Subscriptions  []models.Subscription `json:"subscriptions"`
	PlannedSavings string                `json:"plannedSavings"`
}

// Catalog lists the subscriptions that can be picked during setup
// @Summary Subscription catalog
// @Tags Budget
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.SubscriptionCatalogItem}
// @Router /budget-setup/catalog [get]
func (h *BudgetHandler) Catalog(c echo.Context) error {
	return c.JSON(http.StatusOK, SuccessResponse{Data: h.budget.Catalog()})
}

// GetSetup returns the saved budget profile and subscriptions
// @Summary Budget setup
// @Tags Budget
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=budgetSetupResponse}
// @Failure 404 {object} errors.ErrorResponse "SUBSCRIPTION_004"
// @Router /budget-setup [get]
func (h *BudgetHandler) GetSetup(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	ctx := c.Request().Context()
	profile, err := h.budget.GetProfile(ctx, userID)
	if err != nil {
		if stderrors.Is(err, repositories.ErrBudgetProfileNotFound) {
			return SendError(c, errors.BudgetProfileNotFound)
		}
		return SendSystemError(c, err)
	}

	subscriptions, err := h.budget.ListSubscriptions(ctx, userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Data: newBudgetSetupResponse(profile, subscriptions)})
}

// SaveSetup stores the budget profile and creates the picked subscriptions
// @Summary Save budget setup
// @Tags Budget
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.BudgetSetupRequest true "Budget setup"
// @Success 200 {object} SuccessResponse{data=budgetSetupResponse}
// @Failure 422 {object} errors.ErrorResponse "SUBSCRIPTION_003"
// @Router /budget-setup [put]
func (h *BudgetHandler) SaveSetup(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.BudgetSetupRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	profile, subscriptions, err := h.budget.SaveSetup(c.Request().Context(), userID, &req)
	if err != nil {
		switch {
		case stderrors.Is(err, services.ErrUnknownSubscription):
			return SendError(c, errors.SubscriptionUnknownCatalog, errors.WithDetails(err.Error()))
		case stderrors.Is(err, services.ErrInvalidBudgetAmount):
			return SendError(c, errors.ValidationOutOfRange, errors.WithDetails(err.Error()))
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{
		Data:    newBudgetSetupResponse(profile, subscriptions),
		Message: "Budget saved",
	})
}

// ListSubscriptions returns the user's recurring subscriptions
// @Summary List subscriptions
// @Tags Budget
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.Subscription}
// @Router /subscriptions [get]
func (h *BudgetHandler) ListSubscriptions(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	subscriptions, err := h.budget.ListSubscriptions(c.Request().Context(), userID)
	if err != nil {
		return SendSystemError(c, err)
	}
	if subscriptions == nil {
		subscriptions = []models.Subscription{}
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: subscriptions})
}

// DeleteSubscription removes one subscription
// @Summary Delete subscription
// @Tags Budget
// @Security BearerAuth
// @Param id path string true "Subscription ID"
// @Success 204
// @Failure 404 {object} errors.ErrorResponse "SUBSCRIPTION_001"
// @Router /subscriptions/{id} [delete]
func (h *BudgetHandler) DeleteSubscription(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	subscriptionID, ok := parseUUIDParam(c, "id")
	if !ok {
		return SendError(c, errors.SubscriptionInvalidID)
	}

	if err := h.budget.DeleteSubscription(c.Request().Context(), userID, subscriptionID); err != nil {
		if stderrors.Is(err, repositories.ErrSubscriptionNotFound) {
			return SendError(c, errors.SubscriptionNotFound)
		}
		return SendSystemError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func newBudgetSetupResponse(profile *models.BudgetProfile, subscriptions []models.Subscription) budgetSetupResponse {
	if subscriptions == nil {
		subscriptions = []models.Subscription{}
	}
	return budgetSetupResponse{
		Profile:        profile,
		Subscriptions:  subscriptions,
		PlannedSavings: profile.PlannedSavings().StringFixed(2),
	}
}
