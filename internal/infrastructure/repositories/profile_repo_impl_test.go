package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"wealthline.backend/internal/domain/entities"
	domainerrors "wealthline.backend/internal/domain/errors"
	"wealthline.backend/pkg/utils"
)

func TestProfileRepository_UpsertGetApply(t *testing.T) {
	db := newTestDB(t)
	createProfileTable(t, db)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	id := uuid.New()
	p := &entities.Profile{
		ID:        id,
		FirstName: "Jane",
		LastName:  "Doe",
		Email:     "jane@mail.com",
		Country:   null.StringFrom("Canada"),
		City:      null.StringFrom("Toronto"),
	}
	require.NoError(t, repo.Upsert(ctx, p))

	got, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, entities.KYCUnverified, got.KYCStatus)
	assert.Equal(t, "Toronto", got.City.String)
	assert.False(t, got.Phone.Valid)

	p.KYCStatus = entities.KYCPending
	p.Phone = null.StringFrom("5551234")
	require.NoError(t, repo.Upsert(ctx, p))

	changes := entities.ProfileChanges{entities.ColCity: "Ottawa", entities.ColAddressLine2: ""}
	require.NoError(t, repo.ApplyChanges(ctx, id, changes, entities.KYCPending))

	got, err = repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Ottawa", got.City.String)
	assert.False(t, got.AddressLine2.Valid)
	assert.Equal(t, "5551234", got.Phone.String)
	assert.Equal(t, entities.KYCPending, got.KYCStatus)

	assert.ErrorIs(t, repo.ApplyChanges(ctx, uuid.New(), changes, entities.KYCPending), domainerrors.ErrNotFound)
	_, err = repo.GetByID(ctx, uuid.New())
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}

func TestProfileRepository_List(t *testing.T) {
	db := newTestDB(t)
	createProfileTable(t, db)
	repo := NewProfileRepository(db)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		require.NoError(t, repo.Upsert(ctx, &entities.Profile{ID: uuid.New(), FirstName: "U", LastName: "L", Email: "u@mail.com"}))
	}

	items, total, err := repo.List(ctx, utils.PaginationParams{Page: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Len(t, items, 2)

	items, _, err = repo.List(ctx, utils.PaginationParams{Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Len(t, items, 1)
}
