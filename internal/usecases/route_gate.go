package usecases

import (
	"context"
	"net/url"
	"strings"

	"wealthline.backend/internal/domain/entities"
)

// DecisionKind is the outcome of gating a request.
type DecisionKind int

const (
	Allow DecisionKind = iota
	RedirectLogin
	RedirectDashboard
)

func (k DecisionKind) String() string {
	switch k {
	case RedirectLogin:
		return "redirect_login"
	case RedirectDashboard:
		return "redirect_dashboard"
	default:
		return "allow"
	}
}

// Decision tells the HTTP layer whether to serve a path or where to send the client.
type Decision struct {
	Kind     DecisionKind
	Location string
}

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

var (
	assetPrefixes   = []string{"/static/", "/assets/", "/_next/static/", "/_next/image"}
	assetExact      = []string{"/favicon.ico", "/robots.txt"}
	assetSuffixes   = []string{".css", ".js", ".map", ".png", ".jpg", ".jpeg", ".gif", ".svg", ".ico", ".webp", ".woff", ".woff2"}
	protectedRoots  = []string{"/dashboard", "/invest", "/withdraw", "/profile", "/admin"}
	adminRoot       = "/admin"
	landingPagePath = "/"
)

// RouteGate decides, per request, whether a page may be served.
type RouteGate struct {
	admins AdminChecker
}

func NewRouteGate(admins AdminChecker) *RouteGate {
	return &RouteGate{admins: admins}
}

// Decide applies the gating rules in order. A nil identity means signed out.
func (g *RouteGate) Decide(ctx context.Context, path string, identity *entities.Identity) Decision {
	if IsStaticAsset(path) {
		return Decision{Kind: Allow}
	}
	if path == landingPagePath && identity != nil {
		return Decision{Kind: RedirectDashboard, Location: DashboardPath}
	}
	if !IsProtectedPath(path) {
		return Decision{Kind: Allow}
	}
	if identity == nil {
		return Decision{Kind: RedirectLogin, Location: LoginRedirect(path)}
	}
	if underRoot(path, adminRoot) && !g.admins.IsAdmin(ctx, identity.UserID) {
		return Decision{Kind: RedirectDashboard, Location: DashboardPath}
	}
	return Decision{Kind: Allow}
}

// LoginRedirect is the sign-in URL that returns to path afterwards.
func LoginRedirect(path string) string {
	return LoginPath + "?next=" + url.QueryEscape(path)
}

// IsStaticAsset reports whether path is served without any identity check.
func IsStaticAsset(path string) bool {
	for _, p := range assetPrefixes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	for _, p := range assetExact {
		if path == p {
			return true
		}
	}
	lower := strings.ToLower(path)
	for _, s := range assetSuffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

// IsProtectedPath matches whole segments: /invest/create is protected, /investors is not.
func IsProtectedPath(path string) bool {
	for _, root := range protectedRoots {
		if underRoot(path, root) {
			return true
		}
	}
	return false
}

func underRoot(path, root string) bool {
	return path == root || strings.HasPrefix(path, root+"/")
}
