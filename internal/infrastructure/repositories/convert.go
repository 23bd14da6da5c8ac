package repositories

import (
	"database/sql"
	"errors"

	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	domainerrors "wealthline.backend/internal/domain/errors"
)

func toNullString(s sql.NullString) null.String {
	return null.NewString(s.String, s.Valid)
}

func fromNullString(s null.String) sql.NullString {
	return sql.NullString{String: s.String, Valid: s.Valid}
}

// nullIfEmpty stores empty form values as NULL.
func nullIfEmpty(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domainerrors.ErrNotFound
	}
	return err
}

func mapDuplicate(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return domainerrors.ErrConflict
	}
	return err
}
