package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"wealthline.backend/internal/domain/entities"
	"wealthline.backend/internal/infrastructure/models"
)

// UserPlanRepository implements plan assignment operations
type UserPlanRepository struct {
	db *gorm.DB
}

func NewUserPlanRepository(db *gorm.DB) *UserPlanRepository {
	return &UserPlanRepository{db: db}
}

// GetActiveByUser returns the active assignment with its plan, or ErrNotFound
func (r *UserPlanRepository) GetActiveByUser(ctx context.Context, userID uuid.UUID) (*entities.ActivePlan, error) {
	var m models.UserPlan
	err := GetDB(ctx, r.db).
		Preload("Plan").
		Where("user_id = ? AND is_active = ?", userID, true).
		Order("started_at DESC").
		First(&m).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return toActivePlan(&m), nil
}

// toActivePlan is the only place a joined plan row becomes a PlanSummary.
func toActivePlan(m *models.UserPlan) *entities.ActivePlan {
	ap := &entities.ActivePlan{
		ID:        m.ID,
		PlanID:    m.PlanID,
		StartedAt: m.StartedAt,
		EndsAt:    m.EndsAt,
	}
	if m.Plan != nil && m.Plan.ID != uuid.Nil {
		ap.Plan = &entities.PlanSummary{
			Name:         m.Plan.Name,
			ROIPercent:   m.Plan.ROIPercent,
			DurationDays: m.Plan.DurationDays,
		}
	}
	return ap
}

// Activate deactivates the user's current assignments and inserts up as the
// active one, atomically. On postgres a per-user advisory lock serialises
// concurrent assignments; the partial unique index on active rows turns any
// remaining race into ErrConflict.
func (r *UserPlanRepository) Activate(ctx context.Context, up *entities.UserPlan) error {
	return GetDB(ctx, r.db).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", up.UserID.String()).Error; err != nil {
				return fmt.Errorf("lock user plans: %w", err)
			}
		}

		if err := tx.Model(&models.UserPlan{}).
			Where("user_id = ? AND is_active = ?", up.UserID, true).
			Update("is_active", false).Error; err != nil {
			return fmt.Errorf("deactivate user plans: %w", err)
		}

		up.IsActive = true
		m := &models.UserPlan{
			ID:        up.ID,
			UserID:    up.UserID,
			PlanID:    up.PlanID,
			StartedAt: up.StartedAt,
			EndsAt:    up.EndsAt,
			IsActive:  true,
		}
		if err := tx.Omit("Plan").Create(m).Error; err != nil {
			return fmt.Errorf("insert user plan: %w", mapDuplicate(err))
		}
		return nil
	})
}

// DeactivateExpired clears is_active on assignments whose period has ended
func (r *UserPlanRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	result := GetDB(ctx, r.db).Model(&models.UserPlan{}).
		Where("is_active = ? AND ends_at <= ?", true, now).
		Update("is_active", false)
	return result.RowsAffected, result.Error
}
