package services_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/flinkapp/flink/internal/application/services"
	"github.com/flinkapp/flink/test/mocks"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRateLimiter_AllowsUpToBurst(t *testing.T) {
	windowStart := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	count := 0
	var gotPrefix string
	var gotTTL time.Duration
	repo := &mocks.RateLimitRepositoryMock{
		IncrementWindowFn: func(ctx context.Context, userID uuid.UUID, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
			count++
			gotPrefix, gotTTL = keyPrefix, ttl
			return count, windowStart, nil
		},
	}
	svc := services.NewRateLimiterService(repo, &services.RateLimiterConfig{RequestsPerMinute: 2, BurstMultiplier: 1.5}, nil)

	allowed, remaining, limit, reset, err := svc.Allow(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, 2, remaining)
	assert.Equal(t, 2, limit)
	assert.Equal(t, windowStart.Add(time.Minute), reset)
	assert.Equal(t, "ratelimit:user", gotPrefix)
	assert.Equal(t, 2*time.Minute, gotTTL)

	for i := 0; i < 2; i++ {
		allowed, _, _, _, err = svc.Allow(context.Background(), uuid.New())
		require.NoError(t, err)
		assert.True(t, allowed)
	}

	allowed, remaining, _, _, err = svc.Allow(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, allowed)
	assert.Equal(t, 0, remaining)
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	boom := errors.New("redis down")
	repo := &mocks.RateLimitRepositoryMock{
		IncrementWindowFn: func(ctx context.Context, userID uuid.UUID, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
			return 0, time.Time{}, boom
		},
	}
	svc := services.NewRateLimiterService(repo, nil, nil)

	allowed, remaining, limit, _, err := svc.Allow(context.Background(), uuid.New())
	assert.ErrorIs(t, err, boom)
	assert.True(t, allowed)
	assert.Equal(t, 30, limit)
	assert.Equal(t, 60, remaining)
}
