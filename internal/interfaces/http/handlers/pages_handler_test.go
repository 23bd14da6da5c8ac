package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wealthline.backend/internal/domain/entities"
	domainerrors "wealthline.backend/internal/domain/errors"
	"wealthline.backend/internal/usecases"
)

func pagesRouter(h *PagesHandler, userID uuid.UUID) *gin.Engine {
	r := gin.New()
	r.Use(asUser(userID, "ada@mail.com"))
	r.GET("/", h.Landing)
	r.GET("/dashboard", h.Dashboard)
	r.GET("/invest", h.Invest)
	r.GET("/invest/create", h.InvestCreate)
	r.GET("/withdraw", h.Withdraw)
	r.GET("/profile", h.Profile)
	r.GET("/admin", h.Admin)
	r.GET("/login", h.Login)
	r.GET("/auth", h.Auth)
	r.GET("/reset-password", h.ResetPassword)
	return r
}

func TestPagesHandler_Views(t *testing.T) {
	userID := uuid.New()
	pages := pagesServiceStub{
		landingFn: func(context.Context) (*usecases.LandingView, error) {
			return &usecases.LandingView{PlanCount: 2}, nil
		},
		dashboardFn: func(_ context.Context, identity *entities.Identity) (*usecases.DashboardView, error) {
			return &usecases.DashboardView{Email: identity.Email, Balance: decimal.NewFromInt(10)}, nil
		},
		investFn: func(context.Context, *entities.Identity) (*usecases.InvestView, error) {
			return &usecases.InvestView{ActiveCount: 1}, nil
		},
		investCreateFn: func(context.Context, *entities.Identity) (*usecases.InvestCreateView, error) {
			return nil, domainerrors.Upstream("Failed to load plans", errors.New("db down"))
		},
		profileFn: func(context.Context, *entities.Identity) (*usecases.ProfileView, error) {
			return &usecases.ProfileView{Initials: "AL"}, nil
		},
	}
	withdrawals := withdrawalServiceStub{summaryFn: func(context.Context, *entities.Identity) (*usecases.WithdrawSummary, error) {
		return &usecases.WithdrawSummary{Name: "Ada"}, nil
	}}
	admin := adminStub(userID)
	r := pagesRouter(&PagesHandler{pages: pages, withdrawals: withdrawals, admin: admin}, userID)

	rec := serve(r, httptestGet("/"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(2), decodeBody(t, rec)["planCount"])

	rec = serve(r, httptestGet("/dashboard"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ada@mail.com", decodeBody(t, rec)["email"])

	rec = serve(r, httptestGet("/invest"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, float64(1), decodeBody(t, rec)["activeCount"])

	rec = serve(r, httptestGet("/invest/create"))
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	assert.Equal(t, "Failed to load plans", decodeBody(t, rec)["message"])

	rec = serve(r, httptestGet("/withdraw"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Ada", decodeBody(t, rec)["name"])

	rec = serve(r, httptestGet("/profile"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AL", decodeBody(t, rec)["initials"])

	rec = serve(r, httptestGet("/admin"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody(t, rec)["plans"], 1)
}

func TestPagesHandler_AuthPages(t *testing.T) {
	r := pagesRouter(&PagesHandler{}, uuid.New())

	rec := serve(r, httptestGet("/login?next=/invest"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/invest", decodeBody(t, rec)["next"])

	rec = serve(r, httptestGet("/login?next=//evil.example"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "/dashboard", decodeBody(t, rec)["next"])

	rec = serve(r, httptestGet("/auth"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []any{"United States", "Canada"}, decodeBody(t, rec)["countries"])

	rec = serve(r, httptestGet("/reset-password?token=abc"))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, true, decodeBody(t, rec)["hasToken"])
}
