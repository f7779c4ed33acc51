package ports

import (
	"context"

	"github.com/flinkapp/flink/internal/core/domain/connection"
	"github.com/google/uuid"
)

// ConnectionRepository is the remote connections table. Lookups that find
// nothing return connection.ErrNotFound.
type ConnectionRepository interface {
	Create(ctx context.Context, c *connection.Connection) error
	GetByID(ctx context.Context, id uuid.UUID) (*connection.Connection, error)
	// GetByDirection matches sender_id = senderID AND receiver_id = receiverID only.
	GetByDirection(ctx context.Context, senderID, receiverID uuid.UUID) (*connection.Connection, error)
	// GetByPair matches either direction.
	GetByPair(ctx context.Context, userID1, userID2 uuid.UUID) (*connection.Connection, error)
	// UpdateStatus moves the row from status from to status to and returns the
	// updated row. When no row with that id is still in from it returns
	// connection.ErrNotFound and changes nothing.
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to connection.Status) (*connection.Connection, error)
	// Delete removes the row and returns it as it was before deletion.
	Delete(ctx context.Context, id uuid.UUID) (*connection.Connection, error)
	ListAccepted(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error)
	ListPendingReceived(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error)
	ListPendingSent(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error)
}

// ConnectionService owns the connection lifecycle. Every write invalidates
// the cached lists of both participants before returning.
type ConnectionService interface {
	SendFriendRequest(ctx context.Context, senderID, receiverID uuid.UUID, isReceiverProfilePrivate bool) (*connection.Connection, error)
	AcceptFriendRequest(ctx context.Context, connectionID, actorID uuid.UUID) (*connection.Connection, error)
	RejectFriendRequest(ctx context.Context, connectionID, actorID uuid.UUID) (*connection.Connection, error)
	RemoveConnection(ctx context.Context, connectionID, actorID uuid.UUID) (*connection.Connection, error)

	GetUserConnections(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error)
	GetPendingRequests(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error)
	GetSentRequests(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error)
	GetConnectionStatus(ctx context.Context, userID1, userID2 uuid.UUID) (*connection.Connection, error)
	GetConnectionStats(ctx context.Context, userID uuid.UUID) (*connection.Stats, error)
}
