package handlers

import (
	stderrors "errors"
	"net/http"

	"pocket-budget/internal/dto"
	"pocket-budget/internal/errors"
	"pocket-budget/internal/models"
	"pocket-budget/internal/repositories"
	"pocket-budget/internal/services"
	"pocket-budget/internal/validation"

	"github.com/labstack/echo/v4"
)

// GoalHandler serves the savings goals page
type GoalHandler struct {
	goals     services.GoalServiceInterface
	formatter *services.CurrencyFormatter
}

func NewGoalHandler(goals services.GoalServiceInterface, formatter *services.CurrencyFormatter) *GoalHandler {
	if formatter == nil {
		formatter = services.NewCurrencyFormatter(services.DefaultCurrency)
	}
	return &GoalHandler{goals: goals, formatter: formatter}
}

// ListGoals returns the user's goals with their progress
// @Summary List goals
// @Tags Goals
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]dto.GoalResponse}
// @Router /goals [get]
func (h *GoalHandler) ListGoals(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	goals, err := h.goals.ListGoals(c.Request().Context(), userID)
	if err != nil {
		return SendSystemError(c, err)
	}

	items := make([]dto.GoalResponse, 0, len(goals))
	for i := range goals {
		items = append(items, h.toGoalResponse(&goals[i]))
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: items})
}

// Suggestions lists the goal templates
// @Summary Suggested goals
// @Tags Goals
// @Security BearerAuth
// @Produce json
// @Success 200 {object} SuccessResponse{data=[]models.GoalTemplate}
// @Router /goals/suggestions [get]
func (h *GoalHandler) Suggestions(c echo.Context) error {
	return c.JSON(http.StatusOK, SuccessResponse{Data: h.goals.Suggestions()})
}

// CreateGoal creates a goal from a template or custom fields
// @Summary Create goal
// @Tags Goals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body dto.CreateGoalRequest true "Goal"
// @Success 201 {object} SuccessResponse{data=dto.GoalResponse}
// @Failure 422 {object} errors.ErrorResponse "GOAL_003"
// @Router /goals [post]
func (h *GoalHandler) CreateGoal(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	var req dto.CreateGoalRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	goal, err := h.goals.CreateGoal(c.Request().Context(), userID, &req)
	if err != nil {
		switch {
		case stderrors.Is(err, services.ErrUnknownGoalTemplate):
			return SendError(c, errors.GoalUnknownTemplate)
		case stderrors.Is(err, services.ErrInvalidGoalAmount):
			return SendError(c, errors.GoalInvalidAmount)
		case stderrors.Is(err, models.ErrGoalNameRequired):
			return SendError(c, errors.ValidationRequiredField, errors.WithDetails("name is required"))
		case stderrors.Is(err, models.ErrGoalDeadline):
			return SendError(c, errors.ValidationInvalidDate)
		}
		return SendSystemError(c, err)
	}

	return c.JSON(http.StatusCreated, SuccessResponse{
		Data:    h.toGoalResponse(goal),
		Message: "Goal created",
	})
}

// Contribute adds money to a goal
// @Summary Contribute to goal
// @Tags Goals
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path string true "Goal ID"
// @Param request body dto.ContributionRequest true "Contribution"
// @Success 200 {object} SuccessResponse{data=dto.GoalResponse}
// @Failure 404 {object} errors.ErrorResponse "GOAL_001"
// @Failure 409 {object} errors.ErrorResponse "GOAL_005"
// @Router /goals/{id}/contributions [post]
func (h *GoalHandler) Contribute(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	goalID, ok := parseUUIDParam(c, "id")
	if !ok {
		return SendError(c, errors.GoalInvalidID)
	}

	var req dto.ContributionRequest
	if err := c.Bind(&req); err != nil {
		return SendError(c, errors.ValidationGeneral, errors.WithDetails("Invalid request body"))
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	amount, err := validation.ParseAmount(req.Amount)
	if err != nil {
		return SendError(c, errors.GoalInvalidAmount)
	}

	goal, err := h.goals.Contribute(c.Request().Context(), userID, goalID, amount)
	if err != nil {
		switch {
		case stderrors.Is(err, repositories.ErrGoalNotFound):
			return SendError(c, errors.GoalNotFound)
		case stderrors.Is(err, services.ErrGoalAlreadyCompleted):
			return SendError(c, errors.GoalAlreadyCompleted)
		case stderrors.Is(err, services.ErrInvalidGoalAmount):
			return SendError(c, errors.GoalInvalidAmount)
		}
		return SendSystemError(c, err)
	}

	message := "Contribution added"
	if goal.IsCompleted() {
		message = "Goal reached!"
	}
	return c.JSON(http.StatusOK, SuccessResponse{Data: h.toGoalResponse(goal), Message: message})
}

// DeleteGoal removes a goal
// @Summary Delete goal
// @Tags Goals
// @Security BearerAuth
// @Param id path string true "Goal ID"
// @Success 204
// @Router /goals/{id} [delete]
func (h *GoalHandler) DeleteGoal(c echo.Context) error {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		return SendError(c, errors.AuthMissingToken)
	}

	goalID, ok := parseUUIDParam(c, "id")
	if !ok {
		return SendError(c, errors.GoalInvalidID)
	}

	if err := h.goals.DeleteGoal(c.Request().Context(), userID, goalID); err != nil {
		if stderrors.Is(err, repositories.ErrGoalNotFound) {
			return SendError(c, errors.GoalNotFound)
		}
		return SendSystemError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *GoalHandler) toGoalResponse(g *models.Goal) dto.GoalResponse {
	return dto.GoalResponse{
		ID:             g.ID,
		Name:           g.Name,
		Emoji:          g.Emoji,
		Target:         g.Target.StringFixed(2),
		Current:        g.Current.StringFixed(2),
		Remaining:      g.Remaining().StringFixed(2),
		TargetDisplay:  h.formatter.Format(g.Target, ""),
		CurrentDisplay: h.formatter.Format(g.Current, ""),
		Progress:       g.Progress(),
		Completed:      g.IsCompleted(),
		Deadline:       g.Deadline,
		CreatedAt:      g.CreatedAt,
	}
}
