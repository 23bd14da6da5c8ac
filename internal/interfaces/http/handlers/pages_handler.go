package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"wealthline.backend/internal/domain/entities"
	"wealthline.backend/internal/interfaces/http/middleware"
	"wealthline.backend/internal/interfaces/http/response"
	"wealthline.backend/internal/usecases"
)

type pagesService interface {
	Landing(ctx context.Context) (*usecases.LandingView, error)
	Dashboard(ctx context.Context, identity *entities.Identity) (*usecases.DashboardView, error)
	Invest(ctx context.Context, identity *entities.Identity) (*usecases.InvestView, error)
	InvestCreate(ctx context.Context, identity *entities.Identity) (*usecases.InvestCreateView, error)
	ProfilePage(ctx context.Context, identity *entities.Identity) (*usecases.ProfileView, error)
}

type withdrawSummaryService interface {
	Summary(ctx context.Context, identity *entities.Identity) (*usecases.WithdrawSummary, error)
}

type adminPlansService interface {
	ListPlans(ctx context.Context, callerID uuid.UUID) ([]*entities.Plan, error)
}

// PagesHandler serves the view models of the gated pages. The route gate
// has already run, so protected pages always have an identity.
type PagesHandler struct {
	pages       pagesService
	withdrawals withdrawSummaryService
	admin       adminPlansService
}

func NewPagesHandler(pages *usecases.PagesUsecase, withdrawals *usecases.WithdrawalUsecase, admin *usecases.AdminUsecase) *PagesHandler {
	return &PagesHandler{pages: pages, withdrawals: withdrawals, admin: admin}
}

// Landing GET /
func (h *PagesHandler) Landing(c *gin.Context) {
	view, err := h.pages.Landing(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Dashboard GET /dashboard
func (h *PagesHandler) Dashboard(c *gin.Context) {
	view, err := h.pages.Dashboard(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Invest GET /invest
func (h *PagesHandler) Invest(c *gin.Context) {
	view, err := h.pages.Invest(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// InvestCreate GET /invest/create
func (h *PagesHandler) InvestCreate(c *gin.Context) {
	view, err := h.pages.InvestCreate(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Withdraw GET /withdraw
func (h *PagesHandler) Withdraw(c *gin.Context) {
	view, err := h.withdrawals.Summary(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Profile GET /profile
func (h *PagesHandler) Profile(c *gin.Context) {
	view, err := h.pages.ProfilePage(c.Request.Context(), middleware.GetIdentity(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Admin GET /admin
func (h *PagesHandler) Admin(c *gin.Context) {
	callerID, _ := middleware.GetUserID(c)
	plans, err := h.admin.ListPlans(c.Request.Context(), callerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"plans": plans})
}

// Login GET /login
func (h *PagesHandler) Login(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"page": "login",
		"next": entities.SafeRedirect(c.Query("next")),
		"endpoints": gin.H{
			"password":    "POST /api/v1/auth/login",
			"requestCode": "POST /api/v1/auth/otp",
			"verifyCode":  "POST /api/v1/auth/otp/verify",
		},
	})
}

// Auth GET /auth
func (h *PagesHandler) Auth(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"page": "signup",
		"endpoints": gin.H{
			"requestCode": "POST /api/v1/auth/signup/code",
			"signup":      "POST /api/v1/auth/signup",
		},
		"countries": []string{entities.CountryUnitedStates, entities.CountryCanada},
	})
}

// ResetPassword GET /reset-password
func (h *PagesHandler) ResetPassword(c *gin.Context) {
	response.Success(c, http.StatusOK, gin.H{
		"page":     "reset-password",
		"hasToken": c.Query("token") != "",
		"endpoints": gin.H{
			"request": "POST /api/v1/auth/password/reset",
			"recover": "POST /api/v1/auth/password/recover",
		},
	})
}
