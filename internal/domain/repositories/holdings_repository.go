package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"wealthline.backend/internal/domain/entities"
)

// BalanceRepository defines balance operations
type BalanceRepository interface {
	GetByUser(ctx context.Context, userID uuid.UUID) (*entities.Balance, error)
	// Set upserts the balance row and stamps updated_at.
	Set(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, at time.Time) error
	// EnsureExists creates a zero balance unless one is present.
	EnsureExists(ctx context.Context, userID uuid.UUID, at time.Time) error
}

// PlanRepository defines plan catalogue operations
type PlanRepository interface {
	Create(ctx context.Context, plan *entities.Plan) error
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Plan, error)
	ListByMinAmount(ctx context.Context) ([]*entities.Plan, error)
	ListNewest(ctx context.Context) ([]*entities.Plan, error)
}

// UserPlanRepository defines plan assignment operations
type UserPlanRepository interface {
	GetActiveByUser(ctx context.Context, userID uuid.UUID) (*entities.ActivePlan, error)
	// Activate makes up the only active assignment of its user in one transaction.
	Activate(ctx context.Context, up *entities.UserPlan) error
	DeactivateExpired(ctx context.Context, now time.Time) (int64, error)
}

// InvestmentRepository defines investment operations
type InvestmentRepository interface {
	Create(ctx context.Context, inv *entities.Investment) error
	// ListByUser returns newest first; limit <= 0 means all.
	ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Investment, error)
}

// AdminRepository answers membership questions about the admins relation.
type AdminRepository interface {
	Exists(ctx context.Context, userID uuid.UUID) (bool, error)
}
