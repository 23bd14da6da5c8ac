package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"wealthline.backend/internal/domain/entities"
	domainerrors "wealthline.backend/internal/domain/errors"
	"wealthline.backend/internal/infrastructure/models"
)

// UserRepository implements identity store operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create creates a new user. Emails are stored lower-cased.
func (r *UserRepository) Create(ctx context.Context, user *entities.User) error {
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	user.Email = normalizeEmail(user.Email)

	m := &models.User{
		ID:               user.ID,
		Email:            user.Email,
		PasswordHash:     fromNullString(user.PasswordHash),
		EmailConfirmedAt: sql.NullTime{Time: user.EmailConfirmedAt.Time, Valid: user.EmailConfirmedAt.Valid},
		CreatedAt:        user.CreatedAt,
		UpdatedAt:        user.UpdatedAt,
	}
	if err := GetDB(ctx, r.db).Create(m).Error; err != nil {
		return fmt.Errorf("create user: %w", mapDuplicate(err))
	}
	return nil
}

// GetByID gets a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return r.toEntity(&m), nil
}

// GetByEmail gets a user by email, case-insensitively
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where("email = ?", normalizeEmail(email)).First(&m).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return r.toEntity(&m), nil
}

// UpdatePassword replaces the password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.update(ctx, id, map[string]interface{}{
		"password_hash": passwordHash,
		"updated_at":    time.Now(),
	})
}

// MarkEmailConfirmed stamps the first successful code verification
func (r *UserRepository) MarkEmailConfirmed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.update(ctx, id, map[string]interface{}{
		"email_confirmed_at": at,
		"updated_at":         time.Now(),
	})
}

func (r *UserRepository) update(ctx context.Context, id uuid.UUID, updates map[string]interface{}) error {
	result := GetDB(ctx, r.db).Model(&models.User{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

func (r *UserRepository) toEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:               m.ID,
		Email:            m.Email,
		PasswordHash:     toNullString(m.PasswordHash),
		EmailConfirmedAt: null.NewTime(m.EmailConfirmedAt.Time, m.EmailConfirmedAt.Valid),
		CreatedAt:        m.CreatedAt,
		UpdatedAt:        m.UpdatedAt,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// AdminRepository implements lookups against the admins relation
type AdminRepository struct {
	db *gorm.DB
}

func NewAdminRepository(db *gorm.DB) *AdminRepository {
	return &AdminRepository{db: db}
}

// Exists reports whether userID has an admins row
func (r *AdminRepository) Exists(ctx context.Context, userID uuid.UUID) (bool, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&models.Admin{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// Grant inserts an admins row; used by seeding and tests.
func (r *AdminRepository) Grant(ctx context.Context, userID uuid.UUID) error {
	return mapDuplicate(GetDB(ctx, r.db).Create(&models.Admin{UserID: userID, CreatedAt: time.Now()}).Error)
}
