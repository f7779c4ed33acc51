package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/flinkapp/flink/internal/application/cacheaside"
	"github.com/flinkapp/flink/internal/core/domain/profile"
	"github.com/flinkapp/flink/internal/core/ports"
	"github.com/google/uuid"
)

const profileHandleNamespace = "profile_handle"

// CachingProfileRepository caches the handle to user id resolution only.
// Profiles are written outside this service and their privacy flag decides
// what strangers see, so the profile row itself is always read from the
// store.
type CachingProfileRepository struct {
	inner ports.ProfileRepository
	cache ports.Cache
	ttl   time.Duration
}

func NewCachingProfileRepository(inner ports.ProfileRepository, cache ports.Cache, ttl time.Duration) *CachingProfileRepository {
	return &CachingProfileRepository{inner: inner, cache: cache, ttl: ttl}
}

func profileHandleKey(handle string) string {
	return profileHandleNamespace + ":" + strings.ToLower(handle)
}

func (c *CachingProfileRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	return c.inner.GetByUserID(ctx, userID)
}

// GetByHandle resolves the handle through the cache and then loads the row by
// id. A cached id whose row no longer carries the handle is dropped and the
// handle is resolved again.
func (c *CachingProfileRepository) GetByHandle(ctx context.Context, handle string) (*profile.Profile, error) {
	key := profileHandleKey(handle)
	if id, ok := cacheaside.Get[uuid.UUID](c.cache, ctx, profileHandleNamespace, key); ok {
		p, err := c.inner.GetByUserID(ctx, *id)
		if err == nil && strings.EqualFold(p.Handle, handle) {
			return p, nil
		}
		cacheaside.DeleteSilently(c.cache, ctx, key)
	}

	p, err := c.inner.GetByHandle(ctx, handle)
	if err != nil {
		return nil, err
	}
	cacheaside.SetSilently(c.cache, ctx, key, p.UserID, c.ttl)
	return p, nil
}

func (c *CachingProfileRepository) Search(ctx context.Context, query string, limit int) ([]*profile.Profile, error) {
	return c.inner.Search(ctx, query, limit)
}

var _ ports.ProfileRepository = (*CachingProfileRepository)(nil)
