package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"wealthline.backend/internal/domain/entities"
	"wealthline.backend/internal/infrastructure/models"
)

// PlanRepository implements plan catalogue operations
type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

func (r *PlanRepository) Create(ctx context.Context, plan *entities.Plan) error {
	if plan.CreatedAt.IsZero() {
		plan.CreatedAt = time.Now()
	}
	return GetDB(ctx, r.db).Create(r.toModel(plan)).Error
}

func (r *PlanRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Plan, error) {
	var m models.Plan
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return toPlanEntity(&m), nil
}

// ListByMinAmount lists plans cheapest first
func (r *PlanRepository) ListByMinAmount(ctx context.Context) ([]*entities.Plan, error) {
	return r.list(ctx, "min_amount ASC, name ASC")
}

// ListNewest lists plans most recently created first
func (r *PlanRepository) ListNewest(ctx context.Context) ([]*entities.Plan, error) {
	return r.list(ctx, "created_at DESC")
}

func (r *PlanRepository) list(ctx context.Context, order string) ([]*entities.Plan, error) {
	var ms []models.Plan
	if err := GetDB(ctx, r.db).Order(order).Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Plan, 0, len(ms))
	for i := range ms {
		out = append(out, toPlanEntity(&ms[i]))
	}
	return out, nil
}

func (r *PlanRepository) toModel(p *entities.Plan) *models.Plan {
	m := &models.Plan{
		ID:           p.ID,
		Name:         p.Name,
		ROIPercent:   p.ROIPercent,
		DurationDays: p.DurationDays,
		MinAmount:    p.MinAmount,
		CreatedAt:    p.CreatedAt,
	}
	if p.MaxAmount != nil {
		m.MaxAmount = decimal.NewNullDecimal(*p.MaxAmount)
	}
	return m
}

func toPlanEntity(m *models.Plan) *entities.Plan {
	p := &entities.Plan{
		ID:           m.ID,
		Name:         m.Name,
		ROIPercent:   m.ROIPercent,
		DurationDays: m.DurationDays,
		MinAmount:    m.MinAmount,
		CreatedAt:    m.CreatedAt,
	}
	if m.MaxAmount.Valid {
		v := m.MaxAmount.Decimal
		p.MaxAmount = &v
	}
	return p
}
