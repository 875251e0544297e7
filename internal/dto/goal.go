package dto

import (
	"time"

	"github.com/google/uuid"
)

// CreateGoalRequest creates either a suggested goal (TemplateID) or a custom
// one (Name and Target). Deadline is optional.
type CreateGoalRequest struct {
	TemplateID string `json:"templateId" validate:"omitempty,max=50"`
	Name       string `json:"name" validate:"required_without=TemplateID,omitempty,notblank,max=100"`
	Emoji      string `json:"emoji" validate:"omitempty,max=16"`
	Target     string `json:"target" validate:"required_without=TemplateID,omitempty,positive_amount"`
	Deadline   string `json:"deadline" validate:"omitempty,isodate"`
}

// ContributionRequest adds money to a goal
type ContributionRequest struct {
	Amount string `json:"amount" validate:"required,positive_amount"`
}

// GoalResponse is a goal plus its derived progress
type GoalResponse struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Emoji          string    `json:"emoji"`
	Target         string    `json:"target"`
	Current        string    `json:"current"`
	Remaining      string    `json:"remaining"`
	TargetDisplay  string    `json:"targetDisplay"`
	CurrentDisplay string    `json:"currentDisplay"`
	Progress       int       `json:"progress"`
	Completed      bool      `json:"completed"`
	Deadline       string    `json:"deadline,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}
