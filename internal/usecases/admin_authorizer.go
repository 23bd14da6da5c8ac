package usecases

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wealthline.backend/internal/domain/repositories"
	"wealthline.backend/pkg/logger"
)

// AdminAuthorizer checks membership in the admins relation on every call.
type AdminAuthorizer struct {
	admins repositories.AdminRepository
}

func NewAdminAuthorizer(admins repositories.AdminRepository) *AdminAuthorizer {
	return &AdminAuthorizer{admins: admins}
}

// IsAdmin fails closed: lookup errors count as not an admin.
func (a *AdminAuthorizer) IsAdmin(ctx context.Context, userID uuid.UUID) bool {
	if userID == uuid.Nil {
		return false
	}
	ok, err := a.admins.Exists(ctx, userID)
	if err != nil {
		logger.Warn(ctx, "Admin lookup failed", zap.String("user_id", userID.String()), zap.Error(err))
		return false
	}
	return ok
}
