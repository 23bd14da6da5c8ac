package usecases

import (
	"context"
	"time"

	"github.com/google/uuid"

	"wealthline.backend/internal/infrastructure/mailer"
	redispkg "wealthline.backend/pkg/redis"
)

// SessionStore persists the server side of a wl_session cookie.
type SessionStore interface {
	CreateSession(ctx context.Context, sessionID string, data *redispkg.SessionData, expiration time.Duration) error
	GetSession(ctx context.Context, sessionID string) (*redispkg.SessionData, error)
	DeleteSession(ctx context.Context, sessionID string) error
}

// OTPStore issues and checks emailed one-time codes.
type OTPStore interface {
	Issue(ctx context.Context, email, code string, ttl time.Duration) error
	Verify(ctx context.Context, email, code string) error
}

// TokenStore holds single-use tokens such as password reset links.
type TokenStore interface {
	Save(ctx context.Context, token, value string, ttl time.Duration) error
	Consume(ctx context.Context, token string) (string, error)
}

// BlobStore holds uploaded KYC documents.
type BlobStore interface {
	Upload(ctx context.Context, bucket, path string, data []byte) error
	SignedURL(bucket, path string, ttl time.Duration) (string, error)
}

// Mailer sends transactional email.
type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}

// EventPublisher announces completed domain actions.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
}

// AdminChecker answers whether a user may use the admin console.
type AdminChecker interface {
	IsAdmin(ctx context.Context, userID uuid.UUID) bool
}
