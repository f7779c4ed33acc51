package mocks

import (
	"context"
	"fmt"
	"time"

	"github.com/flinkapp/flink/internal/core/domain/auth"
	"github.com/flinkapp/flink/internal/core/domain/connection"
	"github.com/flinkapp/flink/internal/core/domain/profile"
	"github.com/flinkapp/flink/internal/core/domain/visibility"
	"github.com/google/uuid"
)

// ConnectionRepositoryMock is a lightweight mock for ConnectionRepository
type ConnectionRepositoryMock struct {
	CreateFn              func(ctx context.Context, c *connection.Connection) error
	GetByIDFn             func(ctx context.Context, id uuid.UUID) (*connection.Connection, error)
	GetByDirectionFn      func(ctx context.Context, senderID, receiverID uuid.UUID) (*connection.Connection, error)
	GetByPairFn           func(ctx context.Context, userID1, userID2 uuid.UUID) (*connection.Connection, error)
	UpdateStatusFn        func(ctx context.Context, id uuid.UUID, from, to connection.Status) (*connection.Connection, error)
	DeleteFn              func(ctx context.Context, id uuid.UUID) (*connection.Connection, error)
	ListAcceptedFn        func(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error)
	ListPendingReceivedFn func(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error)
	ListPendingSentFn     func(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error)
}

func (m *ConnectionRepositoryMock) Create(ctx context.Context, c *connection.Connection) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, c)
	}
	return nil
}
func (m *ConnectionRepositoryMock) GetByID(ctx context.Context, id uuid.UUID) (*connection.Connection, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}
	return nil, connection.ErrNotFound
}
func (m *ConnectionRepositoryMock) GetByDirection(ctx context.Context, senderID, receiverID uuid.UUID) (*connection.Connection, error) {
	if m.GetByDirectionFn != nil {
		return m.GetByDirectionFn(ctx, senderID, receiverID)
	}
	return nil, connection.ErrNotFound
}
func (m *ConnectionRepositoryMock) GetByPair(ctx context.Context, userID1, userID2 uuid.UUID) (*connection.Connection, error) {
	if m.GetByPairFn != nil {
		return m.GetByPairFn(ctx, userID1, userID2)
	}
	return nil, connection.ErrNotFound
}
func (m *ConnectionRepositoryMock) UpdateStatus(ctx context.Context, id uuid.UUID, from, to connection.Status) (*connection.Connection, error) {
	if m.UpdateStatusFn != nil {
		return m.UpdateStatusFn(ctx, id, from, to)
	}
	return nil, connection.ErrNotFound
}
func (m *ConnectionRepositoryMock) Delete(ctx context.Context, id uuid.UUID) (*connection.Connection, error) {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}
	return nil, connection.ErrNotFound
}
func (m *ConnectionRepositoryMock) ListAccepted(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error) {
	if m.ListAcceptedFn != nil {
		return m.ListAcceptedFn(ctx, userID)
	}
	return []*connection.ConnectionWithProfiles{}, nil
}
func (m *ConnectionRepositoryMock) ListPendingReceived(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error) {
	if m.ListPendingReceivedFn != nil {
		return m.ListPendingReceivedFn(ctx, userID)
	}
	return []*connection.ConnectionWithProfiles{}, nil
}
func (m *ConnectionRepositoryMock) ListPendingSent(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error) {
	if m.ListPendingSentFn != nil {
		return m.ListPendingSentFn(ctx, userID)
	}
	return []*connection.ConnectionWithProfiles{}, nil
}

// ProfileRepositoryMock
type ProfileRepositoryMock struct {
	GetByUserIDFn func(ctx context.Context, userID uuid.UUID) (*profile.Profile, error)
	GetByHandleFn func(ctx context.Context, handle string) (*profile.Profile, error)
	SearchFn      func(ctx context.Context, query string, limit int) ([]*profile.Profile, error)
}

func (m *ProfileRepositoryMock) GetByUserID(ctx context.Context, userID uuid.UUID) (*profile.Profile, error) {
	if m.GetByUserIDFn != nil {
		return m.GetByUserIDFn(ctx, userID)
	}
	return nil, profile.ErrNotFound
}
func (m *ProfileRepositoryMock) GetByHandle(ctx context.Context, handle string) (*profile.Profile, error) {
	if m.GetByHandleFn != nil {
		return m.GetByHandleFn(ctx, handle)
	}
	return nil, profile.ErrNotFound
}
func (m *ProfileRepositoryMock) Search(ctx context.Context, query string, limit int) ([]*profile.Profile, error) {
	if m.SearchFn != nil {
		return m.SearchFn(ctx, query, limit)
	}
	return []*profile.Profile{}, nil
}

// ConnectionServiceMock
type ConnectionServiceMock struct {
	SendFriendRequestFn   func(ctx context.Context, senderID, receiverID uuid.UUID, isReceiverProfilePrivate bool) (*connection.Connection, error)
	AcceptFriendRequestFn func(ctx context.Context, connectionID, actorID uuid.UUID) (*connection.Connection, error)
	RejectFriendRequestFn func(ctx context.Context, connectionID, actorID uuid.UUID) (*connection.Connection, error)
	RemoveConnectionFn    func(ctx context.Context, connectionID, actorID uuid.UUID) (*connection.Connection, error)
	GetUserConnectionsFn  func(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error)
	GetPendingRequestsFn  func(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error)
	GetSentRequestsFn     func(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error)
	GetConnectionStatusFn func(ctx context.Context, userID1, userID2 uuid.UUID) (*connection.Connection, error)
	GetConnectionStatsFn  func(ctx context.Context, userID uuid.UUID) (*connection.Stats, error)
}

func (m *ConnectionServiceMock) SendFriendRequest(ctx context.Context, senderID, receiverID uuid.UUID, isReceiverProfilePrivate bool) (*connection.Connection, error) {
	if m.SendFriendRequestFn != nil {
		return m.SendFriendRequestFn(ctx, senderID, receiverID, isReceiverProfilePrivate)
	}
	return nil, fmt.Errorf("not implemented")
}
func (m *ConnectionServiceMock) AcceptFriendRequest(ctx context.Context, connectionID, actorID uuid.UUID) (*connection.Connection, error) {
	if m.AcceptFriendRequestFn != nil {
		return m.AcceptFriendRequestFn(ctx, connectionID, actorID)
	}
	return nil, fmt.Errorf("not implemented")
}
func (m *ConnectionServiceMock) RejectFriendRequest(ctx context.Context, connectionID, actorID uuid.UUID) (*connection.Connection, error) {
	if m.RejectFriendRequestFn != nil {
		return m.RejectFriendRequestFn(ctx, connectionID, actorID)
	}
	return nil, fmt.Errorf("not implemented")
}
func (m *ConnectionServiceMock) RemoveConnection(ctx context.Context, connectionID, actorID uuid.UUID) (*connection.Connection, error) {
	if m.RemoveConnectionFn != nil {
		return m.RemoveConnectionFn(ctx, connectionID, actorID)
	}
	return nil, fmt.Errorf("not implemented")
}
func (m *ConnectionServiceMock) GetUserConnections(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error) {
	if m.GetUserConnectionsFn != nil {
		return m.GetUserConnectionsFn(ctx, userID)
	}
	return []*connection.ConnectionWithProfiles{}, nil
}
func (m *ConnectionServiceMock) GetPendingRequests(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error) {
	if m.GetPendingRequestsFn != nil {
		return m.GetPendingRequestsFn(ctx, userID)
	}
	return []*connection.ConnectionWithProfiles{}, nil
}
func (m *ConnectionServiceMock) GetSentRequests(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error) {
	if m.GetSentRequestsFn != nil {
		return m.GetSentRequestsFn(ctx, userID)
	}
	return []*connection.ConnectionWithProfiles{}, nil
}
func (m *ConnectionServiceMock) GetConnectionStatus(ctx context.Context, userID1, userID2 uuid.UUID) (*connection.Connection, error) {
	if m.GetConnectionStatusFn != nil {
		return m.GetConnectionStatusFn(ctx, userID1, userID2)
	}
	return nil, nil
}
func (m *ConnectionServiceMock) GetConnectionStats(ctx context.Context, userID uuid.UUID) (*connection.Stats, error) {
	if m.GetConnectionStatsFn != nil {
		return m.GetConnectionStatsFn(ctx, userID)
	}
	return &connection.Stats{}, nil
}

// VisibilityServiceMock
type VisibilityServiceMock struct {
	CanViewProfileFn func(ctx context.Context, viewerID, ownerID uuid.UUID, isProfilePrivate bool) (*visibility.Decision, error)
	ViewProfileFn    func(ctx context.Context, viewerID uuid.UUID, handle string) (*profile.PublicProfile, *visibility.Decision, error)
	SearchProfilesFn func(ctx context.Context, query string, limit int) ([]*profile.PublicProfile, error)
}

func (m *VisibilityServiceMock) CanViewProfile(ctx context.Context, viewerID, ownerID uuid.UUID, isProfilePrivate bool) (*visibility.Decision, error) {
	if m.CanViewProfileFn != nil {
		return m.CanViewProfileFn(ctx, viewerID, ownerID, isProfilePrivate)
	}
	return &visibility.Decision{CanView: true, CanViewCore: true, CanViewExtendedFields: !isProfilePrivate}, nil
}
func (m *VisibilityServiceMock) ViewProfile(ctx context.Context, viewerID uuid.UUID, handle string) (*profile.PublicProfile, *visibility.Decision, error) {
	if m.ViewProfileFn != nil {
		return m.ViewProfileFn(ctx, viewerID, handle)
	}
	return nil, nil, profile.ErrNotFound
}
func (m *VisibilityServiceMock) SearchProfiles(ctx context.Context, query string, limit int) ([]*profile.PublicProfile, error) {
	if m.SearchProfilesFn != nil {
		return m.SearchProfilesFn(ctx, query, limit)
	}
	return []*profile.PublicProfile{}, nil
}

// TokenVerifierMock
type TokenVerifierMock struct {
	ValidateTokenFn func(ctx context.Context, token string) (*auth.Claims, error)
}

func (m *TokenVerifierMock) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	if m.ValidateTokenFn != nil {
		return m.ValidateTokenFn(ctx, token)
	}
	return nil, fmt.Errorf("invalid token")
}

// RateLimitRepositoryMock
type RateLimitRepositoryMock struct {
	IncrementWindowFn func(ctx context.Context, userID uuid.UUID, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error)
}

func (m *RateLimitRepositoryMock) IncrementWindow(ctx context.Context, userID uuid.UUID, window time.Duration, keyPrefix string, ttl time.Duration) (int, time.Time, error) {
	if m.IncrementWindowFn != nil {
		return m.IncrementWindowFn(ctx, userID, window, keyPrefix, ttl)
	}
	return 1, time.Now().Truncate(window), nil
}

// RateLimiterServiceMock
type RateLimiterServiceMock struct {
	AllowFn func(ctx context.Context, userID uuid.UUID) (bool, int, int, time.Time, error)
}

func (m *RateLimiterServiceMock) Allow(ctx context.Context, userID uuid.UUID) (bool, int, int, time.Time, error) {
	if m.AllowFn != nil {
		return m.AllowFn(ctx, userID)
	}
	return true, 1, 1, time.Now().Add(time.Minute), nil
}

// HealthCheckerMock
type HealthCheckerMock struct {
	NameValue string
	Err       error
}

func (m *HealthCheckerMock) Name() string                    { return m.NameValue }
func (m *HealthCheckerMock) Check(ctx context.Context) error { return m.Err }
