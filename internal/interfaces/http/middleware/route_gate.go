package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"wealthline.backend/internal/domain/entities"
	"wealthline.backend/internal/usecases"
)

// RouteDecider decides whether a page request may proceed.
type RouteDecider interface {
	Decide(ctx context.Context, path string, identity *entities.Identity) usecases.Decision
}

// RouteGateMiddleware answers gate redirects with 302. It must run after
// SessionMiddleware so refreshed cookies are already on the response.
func RouteGateMiddleware(gate RouteDecider) gin.HandlerFunc {
	return func(c *gin.Context) {
		decision := gate.Decide(c.Request.Context(), c.Request.URL.Path, GetIdentity(c))
		if decision.Kind == usecases.Allow {
			c.Next()
			return
		}
		c.Redirect(http.StatusFound, decision.Location)
		c.Abort()
	}
}
