package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AdminAction names a command accepted by the admin endpoint.
type AdminAction string

const (
	ActionCreatePlan       AdminAction = "create_plan"
	ActionSetBalance       AdminAction = "set_balance"
	ActionAssignPlan       AdminAction = "assign_plan"
	ActionCreateInvestment AdminAction = "create_investment"
)

// DefaultAssignmentDays applies when assign_plan omits duration_days.
const DefaultAssignmentDays = 60

// Admin grants console access to a user.
type Admin struct {
	UserID    uuid.UUID `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
}

type SetBalanceInput struct {
	UserID uuid.UUID       `json:"user_id"`
	Amount decimal.Decimal `json:"amount"`
}

type AssignPlanInput struct {
	UserID       uuid.UUID `json:"user_id"`
	PlanID       uuid.UUID `json:"plan_id"`
	DurationDays *int      `json:"duration_days"`
}

type CreateInvestmentInput struct {
	UserID uuid.UUID        `json:"user_id"`
	Title  string           `json:"title"`
	Amount decimal.Decimal  `json:"amount"`
	Status InvestmentStatus `json:"status"`
}

// CommandResult is the success body of an admin command.
type CommandResult struct {
	OK bool `json:"ok"`
}
