package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"wealthline.backend/internal/domain/entities"
	"wealthline.backend/pkg/logger"
)

const (
	// AccessCookie carries the short-lived access JWT
	AccessCookie = "wl_access"
	// SessionCookie carries the opaque Redis session id
	SessionCookie = "wl_session"

	// UserIDKey is the context key for user ID
	UserIDKey = "userId"
	// UserEmailKey is the context key for user email
	UserEmailKey = "userEmail"
	// IdentityKey holds the resolved *entities.Identity
	IdentityKey = "identity"
	// SessionIDKey holds the raw session cookie value
	SessionIDKey = "sessionId"
)

// SessionResolver turns cookie values into an identity.
type SessionResolver interface {
	ResolveSession(ctx context.Context, accessToken, sessionID string) (*entities.Identity, *entities.Session)
}

// SessionMiddleware resolves the caller from the session cookies. It never
// rejects a request: a missing or stale session leaves the identity unset.
// When the access token had to be refreshed the new cookie is attached to
// the response.
func SessionMiddleware(resolver SessionResolver, secure bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		access, _ := c.Cookie(AccessCookie)
		sessionID, _ := c.Cookie(SessionCookie)
		c.Set(SessionIDKey, sessionID)

		identity, refreshed := resolver.ResolveSession(c.Request.Context(), access, sessionID)
		if refreshed != nil {
			SetSessionCookies(c, refreshed, secure)
		}
		if identity != nil {
			c.Set(IdentityKey, identity)
			c.Set(UserIDKey, identity.UserID)
			c.Set(UserEmailKey, identity.Email)
			ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, identity.UserID.String())
			c.Request = c.Request.WithContext(ctx)
		}
		c.Next()
	}
}

// SetSessionCookies writes whichever cookie values s carries.
func SetSessionCookies(c *gin.Context, s *entities.Session, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	if s.AccessToken != "" {
		c.SetCookie(AccessCookie, s.AccessToken, int(s.AccessTTL.Seconds()), "/", "", secure, true)
	}
	if s.SessionID != "" && s.SessionTTL > 0 {
		c.SetCookie(SessionCookie, s.SessionID, int(s.SessionTTL.Seconds()), "/", "", secure, true)
	}
}

// ClearSessionCookies expires both session cookies.
func ClearSessionCookies(c *gin.Context, secure bool) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(AccessCookie, "", -1, "/", "", secure, true)
	c.SetCookie(SessionCookie, "", -1, "/", "", secure, true)
}

// GetIdentity returns the resolved identity or nil.
func GetIdentity(c *gin.Context) *entities.Identity {
	v, ok := c.Get(IdentityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*entities.Identity)
	return identity
}

// GetUserID gets the user ID from context
func GetUserID(c *gin.Context) (uuid.UUID, bool) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return uuid.Nil, false
	}
	id, ok := userID.(uuid.UUID)
	return id, ok
}

// GetSessionID returns the session cookie value seen on the request.
func GetSessionID(c *gin.Context) string {
	return c.GetString(SessionIDKey)
}
