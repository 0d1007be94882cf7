package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	appErrors "github.com/origenhr/advance-api/pkg/errors"
)

const (
	otpKeyPrefix      = "otp:code:"
	otpAttemptsPrefix = "otp:attempts:"
)

// OTPRepository stores hashed one-time codes in Redis. Codes are TTL-bound,
// single-use, and keyed by the requesting identity's email.
type OTPRepository struct {
	client *redis.Client
	ttl    time.Duration
}

// NewOTPRepository constructs an OTP repository.
func NewOTPRepository(client *redis.Client, ttl time.Duration) *OTPRepository {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &OTPRepository{client: client, ttl: ttl}
}

// Store persists the code hash, replacing any outstanding code for the email.
func (r *OTPRepository) Store(ctx context.Context, email, codeHash string) error {
	pipe := r.client.TxPipeline()
	pipe.Set(ctx, otpKeyPrefix+email, codeHash, r.ttl)
	pipe.Del(ctx, otpAttemptsPrefix+email)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store otp for %s: %w", email, err)
	}
	return nil
}

// Hash returns the stored code hash. ErrCodeExpired is returned when no code
// is outstanding for the email.
func (r *OTPRepository) Hash(ctx context.Context, email string) (string, error) {
	hash, err := r.client.Get(ctx, otpKeyPrefix+email).Result()
	if err != nil {
		if err == redis.Nil {
			return "", appErrors.ErrCodeExpired
		}
		return "", fmt.Errorf("get otp for %s: %w", email, err)
	}
	return hash, nil
}

// Consume deletes the outstanding code so it cannot be used twice.
func (r *OTPRepository) Consume(ctx context.Context, email string) error {
	pipe := r.client.TxPipeline()
	pipe.Del(ctx, otpKeyPrefix+email)
	pipe.Del(ctx, otpAttemptsPrefix+email)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("consume otp for %s: %w", email, err)
	}
	return nil
}

// RecordAttempt increments the failed-verification counter and returns the
// running total. The counter shares the code's lifetime.
func (r *OTPRepository) RecordAttempt(ctx context.Context, email string) (int64, error) {
	key := otpAttemptsPrefix + email
	attempts, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("record otp attempt for %s: %w", email, err)
	}
	if attempts == 1 {
		if err := r.client.Expire(ctx, key, r.ttl).Err(); err != nil {
			return attempts, fmt.Errorf("expire otp attempts for %s: %w", email, err)
		}
	}
	return attempts, nil
}
