package ports

import (
	"context"

	"github.com/flinkapp/flink/internal/core/domain/profile"
	"github.com/google/uuid"
)

// ProfileRepository reads the users and profiles tables. It never writes.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID uuid.UUID) (*profile.Profile, error)
	GetByHandle(ctx context.Context, handle string) (*profile.Profile, error)
	// Search is a case-insensitive substring match on handle or name.
	Search(ctx context.Context, query string, limit int) ([]*profile.Profile, error)
}
