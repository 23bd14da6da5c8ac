package usecases_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"wealthline.backend/internal/domain/entities"
	"wealthline.backend/internal/usecases"
)

func TestRouteGate_StaticAssetsAlwaysAllowed(t *testing.T) {
	admin := uuid.New()
	gate := usecases.NewRouteGate(staticAdminChecker{admin: true})
	identities := []*entities.Identity{nil, {UserID: uuid.New()}, {UserID: admin}}
	paths := []string{
		"/static/app.css", "/assets/logo.svg", "/_next/static/chunk.js", "/_next/image?url=x",
		"/favicon.ico", "/robots.txt", "/dashboard/bundle.js", "/admin/logo.PNG", "/fonts/inter.woff2",
	}

	for _, id := range identities {
		for _, p := range paths {
			d := gate.Decide(context.Background(), p, id)
			assert.Equal(t, usecases.Allow, d.Kind, p)
		}
	}
}

func TestRouteGate_ProtectedWithoutIdentityRedirectsToLogin(t *testing.T) {
	gate := usecases.NewRouteGate(staticAdminChecker{})
	cases := map[string]string{
		"/dashboard":     "/login?next=%2Fdashboard",
		"/invest":        "/login?next=%2Finvest",
		"/invest/create": "/login?next=%2Finvest%2Fcreate",
		"/withdraw":      "/login?next=%2Fwithdraw",
		"/profile":       "/login?next=%2Fprofile",
		"/admin":         "/login?next=%2Fadmin",
		"/admin/users":   "/login?next=%2Fadmin%2Fusers",
	}
	for path, want := range cases {
		d := gate.Decide(context.Background(), path, nil)
		assert.Equal(t, usecases.RedirectLogin, d.Kind, path)
		assert.Equal(t, want, d.Location, path)
	}
}

func TestRouteGate_PublicPaths(t *testing.T) {
	gate := usecases.NewRouteGate(staticAdminChecker{})
	for _, p := range []string{"/", "/login", "/auth", "/reset-password", "/investors", "/dashboards", "/api/v1/auth/login"} {
		assert.Equal(t, usecases.Allow, gate.Decide(context.Background(), p, nil).Kind, p)
	}
}

func TestRouteGate_LandingWithIdentityGoesToDashboard(t *testing.T) {
	gate := usecases.NewRouteGate(staticAdminChecker{})
	d := gate.Decide(context.Background(), "/", &entities.Identity{UserID: uuid.New()})
	assert.Equal(t, usecases.RedirectDashboard, d.Kind)
	assert.Equal(t, "/dashboard", d.Location)
}

func TestRouteGate_AdminScope(t *testing.T) {
	admin := uuid.New()
	gate := usecases.NewRouteGate(staticAdminChecker{admin: true})

	d := gate.Decide(context.Background(), "/admin", &entities.Identity{UserID: uuid.New()})
	assert.Equal(t, usecases.RedirectDashboard, d.Kind)
	assert.Equal(t, "/dashboard", d.Location)

	assert.Equal(t, usecases.Allow, gate.Decide(context.Background(), "/admin", &entities.Identity{UserID: admin}).Kind)
	assert.Equal(t, usecases.Allow, gate.Decide(context.Background(), "/admin/plans", &entities.Identity{UserID: admin}).Kind)
	assert.Equal(t, usecases.Allow, gate.Decide(context.Background(), "/dashboard", &entities.Identity{UserID: uuid.New()}).Kind)
}

func TestRouteGate_AdminLookupErrorFailsClosed(t *testing.T) {
	userID := uuid.New()
	repo := new(MockAdminRepository)
	repo.On("Exists", mock.Anything, userID).Return(false, errors.New("relation does not exist"))
	gate := usecases.NewRouteGate(usecases.NewAdminAuthorizer(repo))

	d := gate.Decide(context.Background(), "/admin", &entities.Identity{UserID: userID})
	assert.Equal(t, usecases.RedirectDashboard, d.Kind)
	repo.AssertExpectations(t)
}

func TestAdminAuthorizer(t *testing.T) {
	admin := uuid.New()
	other := uuid.New()
	repo := new(MockAdminRepository)
	repo.On("Exists", mock.Anything, admin).Return(true, nil)
	repo.On("Exists", mock.Anything, other).Return(false, nil)
	authz := usecases.NewAdminAuthorizer(repo)

	assert.True(t, authz.IsAdmin(context.Background(), admin))
	assert.False(t, authz.IsAdmin(context.Background(), other))
	assert.False(t, authz.IsAdmin(context.Background(), uuid.Nil))
	repo.AssertNumberOfCalls(t, "Exists", 2)
}

func TestProtectedPathHelpers(t *testing.T) {
	assert.True(t, usecases.IsProtectedPath("/invest/create"))
	assert.False(t, usecases.IsProtectedPath("/investors"))
	assert.True(t, usecases.IsStaticAsset("/robots.txt"))
	assert.False(t, usecases.IsStaticAsset("/robots"))
	assert.Equal(t, "/login?next=%2Fwithdraw", usecases.LoginRedirect("/withdraw"))
	assert.Equal(t, "redirect_login", usecases.RedirectLogin.String())
}
