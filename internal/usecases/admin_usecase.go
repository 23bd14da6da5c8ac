package usecases

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wealthline.backend/internal/domain/entities"
	domainerrors "wealthline.backend/internal/domain/errors"
	"wealthline.backend/internal/domain/repositories"
	"wealthline.backend/internal/infrastructure/events"
	"wealthline.backend/pkg/logger"
	"wealthline.backend/pkg/utils"
)

// AdminRepositories groups the stores the admin console writes to.
type AdminRepositories struct {
	Plans       repositories.PlanRepository
	Balances    repositories.BalanceRepository
	UserPlans   repositories.UserPlanRepository
	Investments repositories.InvestmentRepository
	Profiles    repositories.ProfileRepository
}

// AdminCommandEvent is published after every successful command.
type AdminCommandEvent struct {
	Action   string          `json:"action"`
	CallerID string          `json:"caller_id"`
	Payload  json.RawMessage `json:"payload"`
	At       time.Time       `json:"at"`
}

// UserList is a page of user profiles for the admin console.
type UserList struct {
	Users []*entities.Profile  `json:"users"`
	Meta  utils.PaginationMeta `json:"meta"`
}

// AdminUsecase dispatches admin console commands
type AdminUsecase struct {
	AdminRepositories
	authz  AdminChecker
	events EventPublisher
	now    func() time.Time
}

func NewAdminUsecase(repos AdminRepositories, authz AdminChecker, publisher EventPublisher) *AdminUsecase {
	return &AdminUsecase{AdminRepositories: repos, authz: authz, events: publisher, now: time.Now}
}

// WithClock replaces the time source used for timestamps.
func (u *AdminUsecase) WithClock(now func() time.Time) *AdminUsecase {
	u.now = now
	return u
}

// Handle authorizes the caller, then runs action with payload. Authorization
// happens before the payload is looked at.
func (u *AdminUsecase) Handle(ctx context.Context, callerID uuid.UUID, action string, payload json.RawMessage) (*entities.CommandResult, error) {
	if err := u.Authorize(ctx, callerID); err != nil {
		return nil, err
	}

	var err error
	switch entities.AdminAction(action) {
	case entities.ActionCreatePlan:
		err = u.createPlan(ctx, payload)
	case entities.ActionSetBalance:
		err = u.setBalance(ctx, payload)
	case entities.ActionAssignPlan:
		err = u.assignPlan(ctx, payload)
	case entities.ActionCreateInvestment:
		err = u.createInvestment(ctx, payload)
	default:
		return nil, domainerrors.Validation("Unknown action")
	}
	if err != nil {
		return nil, storeError(err)
	}

	event := AdminCommandEvent{Action: action, CallerID: callerID.String(), Payload: payload, At: u.now().UTC()}
	if pubErr := u.events.Publish(ctx, events.AdminRoutingKey(action), event); pubErr != nil {
		logger.Warn(ctx, "Failed to publish admin event", zap.String("action", action), zap.Error(pubErr))
	}
	logger.Info(ctx, "Admin command applied", zap.String("action", action), zap.String("caller_id", callerID.String()))
	return &entities.CommandResult{OK: true}, nil
}

// ListPlans returns the catalogue newest first.
func (u *AdminUsecase) ListPlans(ctx context.Context, callerID uuid.UUID) ([]*entities.Plan, error) {
	if err := u.Authorize(ctx, callerID); err != nil {
		return nil, err
	}
	return u.Plans.ListNewest(ctx)
}

// ListUsers returns a page of profiles newest first.
func (u *AdminUsecase) ListUsers(ctx context.Context, callerID uuid.UUID, page, limit int) (*UserList, error) {
	if err := u.Authorize(ctx, callerID); err != nil {
		return nil, err
	}
	params := utils.GetPaginationParams(page, limit)
	users, total, err := u.Profiles.List(ctx, params)
	if err != nil {
		return nil, err
	}
	return &UserList{Users: users, Meta: utils.CalculateMeta(total, params.Page, params.Limit)}, nil
}

// Authorize fails with 401 for a missing caller and 403 for a non-admin.
func (u *AdminUsecase) Authorize(ctx context.Context, callerID uuid.UUID) error {
	if callerID == uuid.Nil {
		return domainerrors.Unauthenticated("Sign in to continue.")
	}
	if !u.authz.IsAdmin(ctx, callerID) {
		return domainerrors.Forbidden("Admins only.")
	}
	return nil
}

func (u *AdminUsecase) createPlan(ctx context.Context, payload json.RawMessage) error {
	var in entities.CreatePlanInput
	if err := decodePayload(payload, &in); err != nil {
		return err
	}
	in.Name = strings.TrimSpace(in.Name)

	switch {
	case in.Name == "":
		return domainerrors.Validation("Plan name is required.")
	case in.DurationDays <= 0:
		return domainerrors.Validation("duration_days must be greater than 0.")
	case in.ROIPercent.IsNegative():
		return domainerrors.Validation("roi_percent must not be negative.")
	case in.MinAmount.IsNegative():
		return domainerrors.Validation("min_amount must not be negative.")
	case in.MaxAmount != nil && in.MaxAmount.LessThan(in.MinAmount):
		return domainerrors.Validation("max_amount must not be below min_amount.")
	}

	return u.Plans.Create(ctx, &entities.Plan{
		ID:           utils.GenerateUUIDv7(),
		Name:         in.Name,
		ROIPercent:   in.ROIPercent,
		DurationDays: in.DurationDays,
		MinAmount:    in.MinAmount,
		MaxAmount:    in.MaxAmount,
		CreatedAt:    u.now().UTC(),
	})
}

func (u *AdminUsecase) setBalance(ctx context.Context, payload json.RawMessage) error {
	var in entities.SetBalanceInput
	if err := decodePayload(payload, &in); err != nil {
		return err
	}
	if in.UserID == uuid.Nil {
		return domainerrors.Validation("user_id is required.")
	}
	if in.Amount.IsNegative() {
		return domainerrors.Validation("amount must not be negative.")
	}
	return u.Balances.Set(ctx, in.UserID, in.Amount, u.now().UTC())
}

func (u *AdminUsecase) assignPlan(ctx context.Context, payload json.RawMessage) error {
	var in entities.AssignPlanInput
	if err := decodePayload(payload, &in); err != nil {
		return err
	}
	if in.UserID == uuid.Nil || in.PlanID == uuid.Nil {
		return domainerrors.Validation("user_id and plan_id are required.")
	}
	days := entities.DefaultAssignmentDays
	if in.DurationDays != nil {
		if *in.DurationDays <= 0 {
			return domainerrors.Validation("duration_days must be greater than 0.")
		}
		days = *in.DurationDays
	}

	if _, err := u.Plans.GetByID(ctx, in.PlanID); err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return domainerrors.NotFound("Plan not found.")
		}
		return err
	}

	now := u.now().UTC()
	return u.UserPlans.Activate(ctx, &entities.UserPlan{
		ID:        utils.GenerateUUIDv7(),
		UserID:    in.UserID,
		PlanID:    in.PlanID,
		StartedAt: now,
		EndsAt:    now.AddDate(0, 0, days),
		IsActive:  true,
	})
}

func (u *AdminUsecase) createInvestment(ctx context.Context, payload json.RawMessage) error {
	var in entities.CreateInvestmentInput
	if err := decodePayload(payload, &in); err != nil {
		return err
	}
	in.Title = strings.TrimSpace(in.Title)
	if in.Status == "" {
		in.Status = entities.InvestmentActive
	}

	switch {
	case in.UserID == uuid.Nil:
		return domainerrors.Validation("user_id is required.")
	case in.Title == "":
		return domainerrors.Validation("title is required.")
	case in.Amount.IsNegative():
		return domainerrors.Validation("amount must not be negative.")
	case !in.Status.Valid():
		return domainerrors.Validation("status must be active, completed or cancelled.")
	}

	return u.Investments.Create(ctx, &entities.Investment{
		ID:        utils.GenerateUUIDv7(),
		UserID:    in.UserID,
		Title:     in.Title,
		Amount:    in.Amount,
		Status:    in.Status,
		CreatedAt: u.now().UTC(),
	})
}

func decodePayload(payload json.RawMessage, dst any) error {
	if len(bytes.TrimSpace(payload)) == 0 {
		return domainerrors.Validation("Missing payload.")
	}
	if err := json.Unmarshal(payload, dst); err != nil {
		return domainerrors.Validation("Invalid payload: " + err.Error())
	}
	return nil
}

// storeError keeps taxonomy errors and reports anything else as a 500
// carrying the store's message.
func storeError(err error) error {
	var appErr *domainerrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, domainerrors.ErrNotFound) || errors.Is(err, domainerrors.ErrConflict) {
		return domainerrors.FromError(err)
	}
	return domainerrors.NewAppError(http.StatusInternalServerError, domainerrors.CodeInternalError, err.Error(), err)
}
