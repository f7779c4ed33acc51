package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/flinkapp/flink/internal/core/ports"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
)

// RateLimitRedisRepository keeps fixed-window request counters in Redis.
type RateLimitRedisRepository struct {
	r   redis.Cmdable
	now func() time.Time
}

func NewRateLimitRedisRepository(r redis.Cmdable) *RateLimitRedisRepository {
	return &RateLimitRedisRepository{r: r, now: time.Now}
}

// IncrementWindow increments the user's counter for the window containing now.
func (repo *RateLimitRedisRepository) IncrementWindow(ctx context.Context, userID uuid.UUID, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
	windowStart := repo.now().Truncate(window)
	key := fmt.Sprintf("%s:%s:%d", keyPrefix, userID.String(), windowStart.Unix())
	pipe := repo.r.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, windowStart, fmt.Errorf("rate limit increment: %w", err)
	}
	return int(incr.Val()), windowStart, nil
}

var _ ports.RateLimitRepository = (*RateLimitRedisRepository)(nil)
