package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"wealthline.backend/internal/domain/entities"
	"wealthline.backend/internal/infrastructure/models"
)

// InvestmentRepository implements investment operations
type InvestmentRepository struct {
	db *gorm.DB
}

func NewInvestmentRepository(db *gorm.DB) *InvestmentRepository {
	return &InvestmentRepository{db: db}
}

func (r *InvestmentRepository) Create(ctx context.Context, inv *entities.Investment) error {
	if inv.CreatedAt.IsZero() {
		inv.CreatedAt = time.Now()
	}
	if inv.Status == "" {
		inv.Status = entities.InvestmentActive
	}
	m := &models.Investment{
		ID:        inv.ID,
		UserID:    inv.UserID,
		Title:     inv.Title,
		Amount:    inv.Amount,
		Status:    string(inv.Status),
		CreatedAt: inv.CreatedAt,
	}
	return GetDB(ctx, r.db).Create(m).Error
}

func (r *InvestmentRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Investment, error) {
	query := GetDB(ctx, r.db).Where("user_id = ?", userID).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	var ms []models.Investment
	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}
	out := make([]*entities.Investment, 0, len(ms))
	for _, m := range ms {
		out = append(out, &entities.Investment{
			ID:        m.ID,
			UserID:    m.UserID,
			Title:     m.Title,
			Amount:    m.Amount,
			Status:    entities.InvestmentStatus(m.Status),
			CreatedAt: m.CreatedAt,
		})
	}
	return out, nil
}
