package redis

import (
	"context"
	"errors"
	"time"
)

var ErrTokenNotFound = errors.New("token not found or already used")

// TokenStore keeps single-use tokens under a key prefix.
type TokenStore struct {
	prefix string
}

func NewTokenStore(prefix string) *TokenStore {
	return &TokenStore{prefix: prefix}
}

func (s *TokenStore) Save(ctx context.Context, token, value string, ttl time.Duration) error {
	return Set(ctx, s.prefix+token, value, ttl)
}

// Consume returns the stored value and deletes the token.
func (s *TokenStore) Consume(ctx context.Context, token string) (string, error) {
	v, err := GetDel(ctx, s.prefix+token)
	if IsNil(err) {
		return "", ErrTokenNotFound
	}
	return v, err
}
