// Package idempotency holds short-lived redis locks that keep concurrent
// requests from repeating the same external call.
package idempotency

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"freelance-backend/internal/services"
)

type IntentLock struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

var _ services.IntentLocker = (*IntentLock)(nil)

// NewIntentLock builds a lock whose keys expire after ttl, so a crashed
// holder never blocks a payment for longer than that.
func NewIntentLock(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *IntentLock {
	return &IntentLock{rdb: rdb, ttl: ttl, logger: logger}
}

// NewRedisClient parses a redis:// URL.
func NewRedisClient(url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis url: %w", err)
	}
	return redis.NewClient(opts), nil
}

func key(paymentID uuid.UUID) string {
	return "payment-intent-lock:" + paymentID.String()
}

// Acquire takes the lock for a payment. When redis is unreachable the lock
// is granted anyway; the processor idempotency key still prevents a second
// intent from being created.
func (l *IntentLock) Acquire(ctx context.Context, paymentID uuid.UUID) (func(), bool) {
	k := key(paymentID)
	token := uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, k, token, l.ttl).Result()
	if err != nil {
		l.logger.Warn("intent lock unavailable, proceeding without it",
			zap.String("payment_id", paymentID.String()),
			zap.Error(err),
		)
		return func() {}, true
	}
	if !ok {
		l.logger.Info("intent creation already in progress",
			zap.String("payment_id", paymentID.String()),
			zap.String("lock_key", k),
		)
		return func() {}, false
	}

	return func() { l.release(k, token) }, true
}

// only delete the key if we still own it
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func (l *IntentLock) release(k, token string) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := releaseScript.Run(ctx, l.rdb, []string{k}, token).Err(); err != nil {
		l.logger.Warn("failed to release intent lock", zap.String("lock_key", k), zap.Error(err))
	}
}
