package handlers

import (
	"net/http"

	"pocket-budget/internal/errors"
	"pocket-budget/internal/services"

	"github.com/labstack/echo/v4"
)

// RewardsHandler serves achievements and the leaderboard
type RewardsHandler struct {
	rewards services.RewardsServiceInterface
}

func NewRewardsHandler(rewards services.RewardsServiceInterface) *RewardsHandler {
	return &RewardsHandler{rewards: rewards}
}

// GetRewards evaluates the achievement catalog for the user
// @Summary Rewards
// @Tags Rewards
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=models.RewardsSummary}
// @Router /rewards [get]
func (h *RewardsHandler) GetRewards(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	summary, err := h.rewards.GetRewards(c.Request().Context(), userID)
	if err != nil {
		return SendSystemError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: summary})
}

// GetLeaderboard ranks the user among the community roster
// @Summary Leaderboard
// @Tags Rewards
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=models.Leaderboard}
// @Router /rewards/leaderboard [get]
func (h *RewardsHandler) GetLeaderboard(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	board, err := h.rewards.GetLeaderboard(c.Request().Context(), userID)
	if err != nil {
		return SendSystemError(c, err)
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: board})
}
