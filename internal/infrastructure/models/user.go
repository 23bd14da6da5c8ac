package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Email            string         `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash     sql.NullString `gorm:"type:varchar(255)"`
	EmailConfirmedAt sql.NullTime   `gorm:"type:timestamptz"`
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Admin marks a user as console operator.
type Admin struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time
}
