package redis

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	ErrOTPNotFound        = errors.New("code expired or not requested")
	ErrOTPMismatch        = errors.New("invalid code")
	ErrOTPTooManyAttempts = errors.New("too many attempts")
)

// OTPStore keeps hashed one-time email codes with a TTL and an attempt budget.
type OTPStore struct {
	maxAttempts int
}

func NewOTPStore(maxAttempts int) *OTPStore {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	return &OTPStore{maxAttempts: maxAttempts}
}

func otpKey(email string) string {
	return "otp:" + strings.ToLower(strings.TrimSpace(email))
}

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Issue replaces any outstanding code for email.
func (s *OTPStore) Issue(ctx context.Context, email, code string, ttl time.Duration) error {
	key := otpKey(email)
	pipe := client.TxPipeline()
	pipe.Del(ctx, key)
	pipe.HSet(ctx, key, "hash", hashCode(code), "attempts", 0)
	pipe.Expire(ctx, key, ttl)
	_, err := pipe.Exec(ctx)
	return err
}

// verifyOTP burns one attempt before comparing, so concurrent guesses
// cannot share a budget read.
// Returns 1 match, 0 mismatch, -1 missing, -2 budget spent.
var verifyOTP = redis.NewScript(`
local stored = redis.call('HGET', KEYS[1], 'hash')
if not stored then
	return -1
end
local attempts = redis.call('HINCRBY', KEYS[1], 'attempts', 1)
if attempts > tonumber(ARGV[2]) then
	redis.call('DEL', KEYS[1])
	return -2
end
if stored == ARGV[1] then
	redis.call('DEL', KEYS[1])
	return 1
end
return 0
`)

// Verify consumes the code on success. Every check burns one attempt.
func (s *OTPStore) Verify(ctx context.Context, email, code string) error {
	res, err := verifyOTP.Run(ctx, client, []string{otpKey(email)}, hashCode(code), s.maxAttempts).Int()
	if err != nil {
		return err
	}
	switch res {
	case 1:
		return nil
	case -1:
		return ErrOTPNotFound
	case -2:
		return ErrOTPTooManyAttempts
	default:
		return ErrOTPMismatch
	}
}
