package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/flinkapp/flink/internal/application/cacheaside"
	"github.com/flinkapp/flink/internal/core/domain/connection"
	"github.com/flinkapp/flink/internal/core/ports"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

// Cache key namespaces for the connection list reads.
const (
	nsConnections = "connections"
	nsPending     = "pending"
	nsSent        = "sent"
)

func connectionsKey(userID uuid.UUID) string { return nsConnections + ":" + userID.String() }
func pendingKey(userID uuid.UUID) string     { return nsPending + ":" + userID.String() }
func sentKey(userID uuid.UUID) string        { return nsSent + ":" + userID.String() }

// ConnectionCacheTTLs sets how long each list read stays cached.
type ConnectionCacheTTLs struct {
	Connections time.Duration
	Pending     time.Duration
	Sent        time.Duration
}

// DefaultConnectionCacheTTLs are 120s for friend lists and 60s for requests.
func DefaultConnectionCacheTTLs() ConnectionCacheTTLs {
	return ConnectionCacheTTLs{
		Connections: 120 * time.Second,
		Pending:     60 * time.Second,
		Sent:        60 * time.Second,
	}
}

type ConnectionService struct {
	repo   ports.ConnectionRepository
	lists  *cacheaside.Loader
	ttls   ConnectionCacheTTLs
	logger *logrus.Logger
	now    func() time.Time
}

// NewConnectionService wires the store and the read cache. cache may be nil,
// in which case every read goes to the store.
func NewConnectionService(repo ports.ConnectionRepository, cache ports.Cache, ttls ConnectionCacheTTLs, logger *logrus.Logger) *ConnectionService {
	def := DefaultConnectionCacheTTLs()
	if ttls.Connections <= 0 {
		ttls.Connections = def.Connections
	}
	if ttls.Pending <= 0 {
		ttls.Pending = def.Pending
	}
	if ttls.Sent <= 0 {
		ttls.Sent = def.Sent
	}
	return &ConnectionService{repo: repo, lists: cacheaside.NewLoader(cache), ttls: ttls, logger: logger, now: time.Now}
}

func (s *ConnectionService) SendFriendRequest(ctx context.Context, senderID, receiverID uuid.UUID, isReceiverProfilePrivate bool) (*connection.Connection, error) {
	if senderID == uuid.Nil || receiverID == uuid.Nil {
		return nil, connection.ErrMissingParticipant
	}
	if senderID == receiverID {
		return nil, connection.ErrSelfConnection
	}

	existing, err := s.repo.GetByPair(ctx, senderID, receiverID)
	if err == nil && existing != nil {
		return nil, connection.NewExistsError(existing)
	}
	if err != nil && !errors.Is(err, connection.ErrNotFound) {
		return nil, fmt.Errorf("failed to check existing connection: %w", err)
	}

	now := s.now()
	c := &connection.Connection{
		ID:         uuid.New(),
		SenderID:   senderID,
		ReceiverID: receiverID,
		Status:     connection.InitialStatus(isReceiverProfilePrivate),
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		// Lost the race against a concurrent request for the same pair.
		if connection.HasCode(err, connection.CodeConnectionExists) {
			winner, lookupErr := s.repo.GetByPair(ctx, senderID, receiverID)
			if lookupErr != nil {
				winner = nil
			}
			return nil, connection.NewExistsError(winner)
		}
		return nil, err
	}

	s.invalidate(ctx, senderID, receiverID)
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"connection_id": c.ID, "sender_id": senderID, "receiver_id": receiverID, "status": c.Status}).Info("connection requested")
	}
	return c, nil
}

func (s *ConnectionService) AcceptFriendRequest(ctx context.Context, connectionID, actorID uuid.UUID) (*connection.Connection, error) {
	return s.respond(ctx, connectionID, actorID, connection.StatusAccepted)
}

func (s *ConnectionService) RejectFriendRequest(ctx context.Context, connectionID, actorID uuid.UUID) (*connection.Connection, error) {
	return s.respond(ctx, connectionID, actorID, connection.StatusRejected)
}

// respond moves a pending request to next. The pre-lookup supplies the
// participants for authorization and invalidation; when it finds nothing the
// update still runs and invalidation is skipped.
func (s *ConnectionService) respond(ctx context.Context, connectionID, actorID uuid.UUID, next connection.Status) (*connection.Connection, error) {
	current, err := s.lookupParticipants(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if current != nil {
		if current.ReceiverID != actorID {
			return nil, connection.ErrNotReceiver
		}
		if !current.Status.CanTransitionTo(next) {
			return nil, connection.NewInvalidTransitionError(current.Status, next)
		}
	}

	// only pending requests can be answered; the store re-checks that at write
	// time so a concurrent answer cannot overwrite this one
	updated, err := s.repo.UpdateStatus(ctx, connectionID, connection.StatusPending, next)
	if err != nil {
		if errors.Is(err, connection.ErrNotFound) {
			return nil, s.unappliedAnswer(ctx, connectionID, next)
		}
		return nil, err
	}

	if current != nil {
		s.invalidate(ctx, current.SenderID, current.ReceiverID)
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"connection_id": connectionID, "status": next, "actor_id": actorID}).Info("connection request answered")
	}
	return updated, nil
}

// unappliedAnswer explains a conditional update that matched no row: either
// the record is gone or it already left pending.
func (s *ConnectionService) unappliedAnswer(ctx context.Context, connectionID uuid.UUID, next connection.Status) error {
	latest, err := s.repo.GetByID(ctx, connectionID)
	switch {
	case err == nil:
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"connection_id": connectionID, "status": latest.Status, "requested": next}).Warn("connection answered concurrently; update not applied")
		}
		return connection.NewInvalidTransitionError(latest.Status, next)
	case errors.Is(err, connection.ErrNotFound):
		return connection.ErrNotFound
	default:
		return fmt.Errorf("failed to load connection: %w", err)
	}
}

// RemoveConnection hard-deletes a record in any status. Either participant may remove it.
func (s *ConnectionService) RemoveConnection(ctx context.Context, connectionID, actorID uuid.UUID) (*connection.Connection, error) {
	current, err := s.lookupParticipants(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if current != nil && !current.Involves(actorID) {
		return nil, connection.ErrNotParticipant
	}

	deleted, err := s.repo.Delete(ctx, connectionID)
	if err != nil {
		return nil, err
	}

	if current != nil {
		s.invalidate(ctx, current.SenderID, current.ReceiverID)
	}
	if s.logger != nil {
		s.logger.WithFields(logrus.Fields{"connection_id": connectionID, "actor_id": actorID}).Info("connection removed")
	}
	return deleted, nil
}

// lookupParticipants returns nil, nil when the record does not exist.
func (s *ConnectionService) lookupParticipants(ctx context.Context, connectionID uuid.UUID) (*connection.Connection, error) {
	c, err := s.repo.GetByID(ctx, connectionID)
	if err == nil {
		return c, nil
	}
	if errors.Is(err, connection.ErrNotFound) {
		if s.logger != nil {
			s.logger.WithFields(logrus.Fields{"connection_id": connectionID}).Warn("connection not found before write; cache invalidation skipped")
		}
		return nil, nil
	}
	return nil, fmt.Errorf("failed to load connection: %w", err)
}

// invalidate drops every cached list of both participants before the write returns.
func (s *ConnectionService) invalidate(ctx context.Context, userIDs ...uuid.UUID) {
	keys := make([]string, 0, 3*len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, connectionsKey(id), pendingKey(id), sentKey(id))
	}
	s.lists.Invalidate(ctx, keys...)
}

func (s *ConnectionService) GetUserConnections(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error) {
	return cacheaside.LoadList(s.lists, ctx, nsConnections, connectionsKey(userID), s.ttls.Connections, func() ([]*connection.ConnectionWithProfiles, error) {
		return s.repo.ListAccepted(ctx, userID)
	})
}

func (s *ConnectionService) GetPendingRequests(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error) {
	return cacheaside.LoadList(s.lists, ctx, nsPending, pendingKey(userID), s.ttls.Pending, func() ([]*connection.ConnectionWithProfiles, error) {
		return s.repo.ListPendingReceived(ctx, userID)
	})
}

func (s *ConnectionService) GetSentRequests(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error) {
	return cacheaside.LoadList(s.lists, ctx, nsSent, sentKey(userID), s.ttls.Sent, func() ([]*connection.ConnectionWithProfiles, error) {
		return s.repo.ListPendingSent(ctx, userID)
	})
}

// GetConnectionStatus checks (1->2) then (2->1) and is never cached. It
// returns nil, nil when the two users have no record.
func (s *ConnectionService) GetConnectionStatus(ctx context.Context, userID1, userID2 uuid.UUID) (*connection.Connection, error) {
	for _, dir := range [][2]uuid.UUID{{userID1, userID2}, {userID2, userID1}} {
		c, err := s.repo.GetByDirection(ctx, dir[0], dir[1])
		if err == nil {
			return c, nil
		}
		if !errors.Is(err, connection.ErrNotFound) {
			return nil, fmt.Errorf("failed to get connection status: %w", err)
		}
	}
	return nil, nil
}

// GetConnectionStats runs the three list reads concurrently and fails with
// the first error any of them reports.
func (s *ConnectionService) GetConnectionStats(ctx context.Context, userID uuid.UUID) (*connection.Stats, error) {
	var friends, pending, sent []*connection.ConnectionWithProfiles
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		friends, err = s.GetUserConnections(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		pending, err = s.GetPendingRequests(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		sent, err = s.GetSentRequests(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := &connection.Stats{
		FriendsCount:         len(friends),
		PendingReceivedCount: len(pending),
		PendingSentCount:     len(sent),
	}
	stats.TotalConnections = stats.FriendsCount + stats.PendingReceivedCount + stats.PendingSentCount
	return stats, nil
}

var _ ports.ConnectionService = (*ConnectionService)(nil)
