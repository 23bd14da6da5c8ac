package middleware

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/csrf"

	domainerrors "wealthline.backend/internal/domain/errors"
)

// CSRFHeader exposes the token to clients that post forms.
const CSRFHeader = "X-CSRF-Token"

// CSRF protects form posts with gorilla/csrf. JSON requests are exempt since
// browsers cannot send them cross-site without CORS.
func CSRF(authKey []byte, secure bool, trustedOrigins []string) gin.HandlerFunc {
	protect := csrf.Protect(
		authKey,
		csrf.Secure(secure),
		csrf.Path("/"),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.RequestHeader(CSRFHeader),
		csrf.TrustedOrigins(trustedOrigins),
		csrf.ErrorHandler(http.HandlerFunc(csrfFailure)),
	)

	return func(c *gin.Context) {
		if strings.HasPrefix(c.GetHeader("Content-Type"), "application/json") {
			c.Next()
			return
		}

		passed := false
		protect(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			c.Request = r
			c.Header(CSRFHeader, csrf.Token(r))
			c.Next()
		})).ServeHTTP(c.Writer, c.Request)
		if !passed {
			c.Abort()
		}
	}
}

func csrfFailure(w http.ResponseWriter, r *http.Request) {
	message := "Invalid CSRF token"
	if reason := csrf.FailureReason(r); reason != nil {
		message = message + ": " + reason.Error()
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"code":    domainerrors.CodeForbidden,
		"message": message,
		"error":   message,
	})
}
