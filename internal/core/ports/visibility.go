package ports

import (
	"context"

	"github.com/flinkapp/flink/internal/core/domain/profile"
	"github.com/flinkapp/flink/internal/core/domain/visibility"
	"github.com/google/uuid"
)

type VisibilityService interface {
	CanViewProfile(ctx context.Context, viewerID, ownerID uuid.UUID, isProfilePrivate bool) (*visibility.Decision, error)
	// ViewProfile loads the profile behind handle and applies the decision to it.
	ViewProfile(ctx context.Context, viewerID uuid.UUID, handle string) (*profile.PublicProfile, *visibility.Decision, error)
	SearchProfiles(ctx context.Context, query string, limit int) ([]*profile.PublicProfile, error)
}
