package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrOTPInvalid covers expired, unknown, and mismatched codes alike so the
// response does not reveal which one it was.
var ErrOTPInvalid = errors.New("invalid or expired code")

// OTPStore issues and verifies one-time login codes. Codes live in Redis
// under a per-email key with a TTL; only a SHA-256 of the code is stored.
// Verification consumes the code regardless of success, so a code cannot be
// brute-forced by repeated attempts.
type OTPStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOTPStore creates an OTP store.
func NewOTPStore(client *redis.Client, ttl time.Duration) *OTPStore {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &OTPStore{client: client, ttl: ttl}
}

func otpKey(email string) string { return "otp:" + email }

func hashCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

// Issue generates a fresh 6-digit code for the email, replacing any
// outstanding one, and returns it for delivery.
func (s *OTPStore) Issue(ctx context.Context, email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())
	if err := s.client.Set(ctx, otpKey(email), hashCode(code), s.ttl).Err(); err != nil {
		return "", err
	}
	return code, nil
}

// Verify checks and consumes the outstanding code for the email.
func (s *OTPStore) Verify(ctx context.Context, email, code string) error {
	stored, err := s.client.GetDel(ctx, otpKey(email)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrOTPInvalid
		}
		return err
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(hashCode(code))) != 1 {
		return ErrOTPInvalid
	}
	return nil
}
