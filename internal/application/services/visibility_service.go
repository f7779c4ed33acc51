package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/flinkapp/flink/internal/core/domain/profile"
	"github.com/flinkapp/flink/internal/core/domain/visibility"
	"github.com/flinkapp/flink/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 50
)

// VisibilityService is the one place profile pages ask what a viewer may see.
type VisibilityService struct {
	mode        visibility.Mode
	connections ports.ConnectionService
	profiles    ports.ProfileRepository
	logger      *logrus.Logger
}

func NewVisibilityService(mode visibility.Mode, connections ports.ConnectionService, profiles ports.ProfileRepository, logger *logrus.Logger) *VisibilityService {
	if mode == "" {
		mode = visibility.ModePermissive
	}
	return &VisibilityService{mode: mode, connections: connections, profiles: profiles, logger: logger}
}

// CanViewProfile reads the connection between viewer and owner fresh from the
// store on every call. Self and anonymous views make no store call.
func (s *VisibilityService) CanViewProfile(ctx context.Context, viewerID, ownerID uuid.UUID, isProfilePrivate bool) (*visibility.Decision, error) {
	if viewerID == uuid.Nil || viewerID == ownerID {
		d := visibility.Evaluate(s.mode, viewerID, ownerID, isProfilePrivate, nil)
		return &d, nil
	}

	conn, err := s.connections.GetConnectionStatus(ctx, viewerID, ownerID)
	if err != nil {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"viewer_id": viewerID, "owner_id": ownerID}).WithError(err).Error("visibility: failed to load connection status")
		}
		return nil, fmt.Errorf("failed to evaluate visibility: %w", err)
	}

	d := visibility.Evaluate(s.mode, viewerID, ownerID, isProfilePrivate, conn)
	return &d, nil
}

// ViewProfile returns the profile behind handle as viewerID may see it. The
// returned profile is nil when the decision denies the page.
func (s *VisibilityService) ViewProfile(ctx context.Context, viewerID uuid.UUID, handle string) (*profile.PublicProfile, *visibility.Decision, error) {
	p, err := s.profiles.GetByHandle(ctx, handle)
	if err != nil {
		return nil, nil, err
	}

	d, err := s.CanViewProfile(ctx, viewerID, p.UserID, p.Private)
	if err != nil {
		return nil, nil, err
	}

	switch {
	case !d.CanView:
		return nil, d, nil
	case d.CanViewExtendedFields:
		return p.Public(), d, nil
	default:
		return p.Redacted(), d, nil
	}
}

// SearchProfiles never exposes extended fields of private profiles; results
// are a directory listing, not a viewer-specific page.
func (s *VisibilityService) SearchProfiles(ctx context.Context, query string, limit int) ([]*profile.PublicProfile, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []*profile.PublicProfile{}, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	if limit > maxSearchLimit {
		limit = maxSearchLimit
	}

	found, err := s.profiles.Search(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	out := make([]*profile.PublicProfile, 0, len(found))
	for _, p := range found {
		if visibility.ExtendedFieldsVisible(p.Private, nil) {
			out = append(out, p.Public())
		} else {
			out = append(out, p.Redacted())
		}
	}
	return out, nil
}

var _ ports.VisibilityService = (*VisibilityService)(nil)
