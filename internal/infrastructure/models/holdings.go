package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Balance struct {
	UserID    uuid.UUID       `gorm:"type:uuid;primaryKey"`
	Amount    decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0"`
	UpdatedAt time.Time
}

type Plan struct {
	ID           uuid.UUID           `gorm:"type:uuid;primaryKey"`
	Name         string              `gorm:"type:varchar(120);not null"`
	ROIPercent   decimal.Decimal     `gorm:"column:roi_percent;type:numeric(9,4);not null"`
	DurationDays int                 `gorm:"not null"`
	MinAmount    decimal.Decimal     `gorm:"type:numeric(18,2);not null"`
	MaxAmount    decimal.NullDecimal `gorm:"type:numeric(18,2)"`
	CreatedAt    time.Time
}

type UserPlan struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	PlanID    uuid.UUID `gorm:"type:uuid;not null"`
	StartedAt time.Time `gorm:"not null"`
	EndsAt    time.Time `gorm:"not null"`
	IsActive  bool      `gorm:"not null;default:true"`
	Plan      *Plan     `gorm:"foreignKey:PlanID"`
}

type Investment struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID       `gorm:"type:uuid;not null;index"`
	Title     string          `gorm:"type:varchar(200);not null"`
	Amount    decimal.Decimal `gorm:"type:numeric(18,2);not null"`
	Status    string          `gorm:"type:varchar(16);not null;default:'active'"`
	CreatedAt time.Time
}
