package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Balance is the withdrawable amount held for a user.
type Balance struct {
	UserID    uuid.UUID       `json:"userId"`
	Amount    decimal.Decimal `json:"amount"`
	UpdatedAt time.Time       `json:"updatedAt"`
}

// UserPlan assigns a plan to a user for a period.
type UserPlan struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	PlanID    uuid.UUID `json:"planId"`
	StartedAt time.Time `json:"startedAt"`
	EndsAt    time.Time `json:"endsAt"`
	IsActive  bool      `json:"isActive"`
}

// ActivePlan is a user's active assignment with its plan already normalized.
// Plan is nil when the related plan row no longer exists.
type ActivePlan struct {
	ID        uuid.UUID    `json:"id"`
	PlanID    uuid.UUID    `json:"planId"`
	StartedAt time.Time    `json:"startedAt"`
	EndsAt    time.Time    `json:"endsAt"`
	Plan      *PlanSummary `json:"plan"`
}

// InvestmentStatus represents the lifecycle of an investment
type InvestmentStatus string

const (
	InvestmentActive    InvestmentStatus = "active"
	InvestmentCompleted InvestmentStatus = "completed"
	InvestmentCancelled InvestmentStatus = "cancelled"
)

func (s InvestmentStatus) Valid() bool {
	switch s {
	case InvestmentActive, InvestmentCompleted, InvestmentCancelled:
		return true
	}
	return false
}

// Investment is a record of money a user put into a plan.
type Investment struct {
	ID        uuid.UUID        `json:"id"`
	UserID    uuid.UUID        `json:"userId"`
	Title     string           `json:"title"`
	Amount    decimal.Decimal  `json:"amount"`
	Status    InvestmentStatus `json:"status"`
	CreatedAt time.Time        `json:"createdAt"`
}
