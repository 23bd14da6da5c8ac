package repositories

import (
	"context"

	"github.com/google/uuid"
	"wealthline.backend/internal/domain/entities"
	"wealthline.backend/pkg/utils"
)

// ProfileRepository defines KYC profile operations
type ProfileRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*entities.Profile, error)
	Upsert(ctx context.Context, profile *entities.Profile) error
	// ApplyChanges writes only the changed columns plus the resulting KYC status.
	ApplyChanges(ctx context.Context, id uuid.UUID, changes entities.ProfileChanges, status entities.KYCStatus) error
	List(ctx context.Context, pagination utils.PaginationParams) ([]*entities.Profile, int64, error)
}
