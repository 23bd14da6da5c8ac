package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"wealthline.backend/internal/domain/entities"
	domainerrors "wealthline.backend/internal/domain/errors"
	"wealthline.backend/internal/infrastructure/models"
	"wealthline.backend/pkg/utils"
)

// ProfileRepository implements KYC profile operations
type ProfileRepository struct {
	db *gorm.DB
}

// NewProfileRepository creates a new profile repository
func NewProfileRepository(db *gorm.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

// GetByID gets the profile of a user
func (r *ProfileRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Profile, error) {
	var m models.Profile
	if err := GetDB(ctx, r.db).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, mapNotFound(err)
	}
	return r.toEntity(&m), nil
}

// Upsert writes the whole profile, keyed by id
func (r *ProfileRepository) Upsert(ctx context.Context, profile *entities.Profile) error {
	now := time.Now()
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = now
	}
	profile.UpdatedAt = now
	if profile.KYCStatus == "" {
		profile.KYCStatus = entities.KYCUnverified
	}

	m := r.toModel(profile)
	return GetDB(ctx, r.db).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"first_name", "last_name", "email", "country", "phone", "dob",
			"address_line1", "address_line2", "city", "state_region", "postal_code",
			"ssn_last4", "itin_last4", "tax_id_last4", "id_document_path", "kyc_status", "updated_at",
		}),
	}).Create(m).Error
}

// ApplyChanges updates the changed columns and the KYC status
func (r *ProfileRepository) ApplyChanges(ctx context.Context, id uuid.UUID, changes entities.ProfileChanges, status entities.KYCStatus) error {
	updates := make(map[string]interface{}, len(changes)+2)
	for col, value := range changes {
		updates[string(col)] = nullIfEmpty(value)
	}
	updates["kyc_status"] = string(status)
	updates["updated_at"] = time.Now()

	result := GetDB(ctx, r.db).Model(&models.Profile{}).Where("id = ?", id).Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrNotFound
	}
	return nil
}

// List returns profiles newest first
func (r *ProfileRepository) List(ctx context.Context, pagination utils.PaginationParams) ([]*entities.Profile, int64, error) {
	var total int64
	query := GetDB(ctx, r.db).Model(&models.Profile{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var ms []models.Profile
	if pagination.Limit > 0 {
		query = query.Limit(pagination.Limit).Offset(pagination.CalculateOffset())
	}
	if err := query.Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, 0, err
	}

	out := make([]*entities.Profile, 0, len(ms))
	for i := range ms {
		out = append(out, r.toEntity(&ms[i]))
	}
	return out, total, nil
}

func (r *ProfileRepository) toModel(p *entities.Profile) *models.Profile {
	return &models.Profile{
		ID:             p.ID,
		FirstName:      p.FirstName,
		LastName:       p.LastName,
		Email:          p.Email,
		Country:        fromNullString(p.Country),
		Phone:          fromNullString(p.Phone),
		DOB:            fromNullString(p.DOB),
		AddressLine1:   fromNullString(p.AddressLine1),
		AddressLine2:   fromNullString(p.AddressLine2),
		City:           fromNullString(p.City),
		StateRegion:    fromNullString(p.StateRegion),
		PostalCode:     fromNullString(p.PostalCode),
		SSNLast4:       fromNullString(p.SSNLast4),
		ITINLast4:      fromNullString(p.ITINLast4),
		TaxIDLast4:     fromNullString(p.TaxIDLast4),
		IDDocumentPath: fromNullString(p.IDDocumentPath),
		KYCStatus:      string(p.KYCStatus),
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func (r *ProfileRepository) toEntity(m *models.Profile) *entities.Profile {
	status := entities.KYCStatus(m.KYCStatus)
	if status == "" {
		status = entities.KYCUnverified
	}
	return &entities.Profile{
		ID:             m.ID,
		FirstName:      m.FirstName,
		LastName:       m.LastName,
		Email:          m.Email,
		Country:        toNullString(m.Country),
		Phone:          toNullString(m.Phone),
		DOB:            toNullString(m.DOB),
		AddressLine1:   toNullString(m.AddressLine1),
		AddressLine2:   toNullString(m.AddressLine2),
		City:           toNullString(m.City),
		StateRegion:    toNullString(m.StateRegion),
		PostalCode:     toNullString(m.PostalCode),
		SSNLast4:       toNullString(m.SSNLast4),
		ITINLast4:      toNullString(m.ITINLast4),
		TaxIDLast4:     toNullString(m.TaxIDLast4),
		IDDocumentPath: toNullString(m.IDDocumentPath),
		KYCStatus:      status,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}
