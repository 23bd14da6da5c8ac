package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"wealthline.backend/internal/domain/entities"
	domainerrors "wealthline.backend/internal/domain/errors"
	"wealthline.backend/internal/interfaces/http/middleware"
	"wealthline.backend/internal/interfaces/http/response"
	"wealthline.backend/internal/usecases"
)

type adminService interface {
	Authorize(ctx context.Context, callerID uuid.UUID) error
	Handle(ctx context.Context, callerID uuid.UUID, action string, payload json.RawMessage) (*entities.CommandResult, error)
	ListPlans(ctx context.Context, callerID uuid.UUID) ([]*entities.Plan, error)
	ListUsers(ctx context.Context, callerID uuid.UUID, page, limit int) (*usecases.UserList, error)
}

// AdminCommandRequest is the body of POST /api/admin.
type AdminCommandRequest struct {
	Action  string          `json:"action"`
	Payload json.RawMessage `json:"payload"`
}

// AdminHandler exposes the admin console endpoints
type AdminHandler struct {
	admin adminService
}

func NewAdminHandler(admin *usecases.AdminUsecase) *AdminHandler {
	return &AdminHandler{admin: admin}
}

// Command dispatches one admin action
// POST /api/admin, POST /api/v1/admin/commands
func (h *AdminHandler) Command(c *gin.Context) {
	callerID, _ := middleware.GetUserID(c)

	var req AdminCommandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		// authorization still comes first
		if authErr := h.admin.Authorize(c.Request.Context(), callerID); authErr != nil {
			response.Error(c, authErr)
			return
		}
		response.Error(c, domainerrors.Validation("Invalid request body."))
		return
	}

	result, err := h.admin.Handle(c.Request.Context(), callerID, req.Action, req.Payload)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, result)
}

// ListPlans returns all plans newest first
// GET /api/v1/admin/plans
func (h *AdminHandler) ListPlans(c *gin.Context) {
	callerID, _ := middleware.GetUserID(c)
	plans, err := h.admin.ListPlans(c.Request.Context(), callerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"plans": plans})
}

// ListUsers returns a page of user profiles
// GET /api/v1/admin/users?page=1&limit=20
func (h *AdminHandler) ListUsers(c *gin.Context) {
	callerID, _ := middleware.GetUserID(c)
	page, _ := strconv.Atoi(c.Query("page"))
	limit, _ := strconv.Atoi(c.Query("limit"))

	list, err := h.admin.ListUsers(c.Request.Context(), callerID, page, limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, list)
}
