package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"wealthline.backend/internal/domain/entities"
	"wealthline.backend/internal/infrastructure/models"
)

// BalanceRepository implements balance operations
type BalanceRepository struct {
	db *gorm.DB
}

func NewBalanceRepository(db *gorm.DB) *BalanceRepository {
	return &BalanceRepository{db: db}
}

// GetByUser returns ErrNotFound when the user has no balance row yet
func (r *BalanceRepository) GetByUser(ctx context.Context, userID uuid.UUID) (*entities.Balance, error) {
	var m models.Balance
	if err := GetDB(ctx, r.db).Where("user_id = ?", userID).First(&m).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return &entities.Balance{UserID: m.UserID, Amount: m.Amount, UpdatedAt: m.UpdatedAt}, nil
}

// Set upserts the amount for userID
func (r *BalanceRepository) Set(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, at time.Time) error {
	m := &models.Balance{UserID: userID, Amount: amount, UpdatedAt: at}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "updated_at"}),
	}).Create(m).Error
}

// EnsureExists inserts a zero balance and leaves an existing one alone
func (r *BalanceRepository) EnsureExists(ctx context.Context, userID uuid.UUID, at time.Time) error {
	m := &models.Balance{UserID: userID, Amount: decimal.Zero, UpdatedAt: at}
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{DoNothing: true}).Create(m).Error
}
