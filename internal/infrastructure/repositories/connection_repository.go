package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/flinkapp/flink/internal/core/domain/connection"
	"github.com/flinkapp/flink/internal/core/ports"
	"github.com/flinkapp/flink/internal/infrastructure/db"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// pairConstraint is the unique index over the unordered participant pair.
const pairConstraint = "connections_pair_key"

const connectionColumns = `id, sender_id, receiver_id, status, created_at, updated_at`

const connectionWithProfilesSelect = `
	SELECT c.id, c.sender_id, c.receiver_id, c.status, c.created_at, c.updated_at,
	       su.id AS "sender.user_id", su.name AS "sender.name",
	       su.profile_url AS "sender.profile_url", sp.handle AS "sender.handle",
	       ru.id AS "receiver.user_id", ru.name AS "receiver.name",
	       ru.profile_url AS "receiver.profile_url", rp.handle AS "receiver.handle"
	FROM connections c
	JOIN users su ON su.id = c.sender_id
	LEFT JOIN profiles sp ON sp.user_id = c.sender_id
	JOIN users ru ON ru.id = c.receiver_id
	LEFT JOIN profiles rp ON rp.user_id = c.receiver_id`

// ConnectionRepository implements ports.ConnectionRepository on Postgres.
type ConnectionRepository struct {
	db     *db.Database
	logger *logrus.Logger
	now    func() time.Time
}

// NewConnectionRepository creates a new connection repository
func NewConnectionRepository(database *db.Database, logger *logrus.Logger) *ConnectionRepository {
	return &ConnectionRepository{db: database, logger: logger, now: time.Now}
}

// Create inserts c. A second record for the same unordered pair is rejected by
// the pair index and reported as connection.ErrConnectionPresent.
func (r *ConnectionRepository) Create(ctx context.Context, c *connection.Connection) error {
	query := `
		INSERT INTO connections (id, sender_id, receiver_id, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.DB.ExecContext(ctx, query, c.ID, c.SenderID, c.ReceiverID, c.Status, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if db.IsUniqueViolation(err, pairConstraint) {
			if r.logger != nil {
				r.logger.WithFields(logrus.Fields{"sender_id": c.SenderID, "receiver_id": c.ReceiverID}).Debug("db: connection pair already exists")
			}
			return connection.ErrConnectionPresent
		}
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"sender_id": c.SenderID, "receiver_id": c.ReceiverID}).WithError(err).Error("db: failed to create connection")
		}
		return fmt.Errorf("failed to create connection: %w", err)
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"connection_id": c.ID, "status": c.Status}).Info("db: connection created")
	}
	return nil
}

func (r *ConnectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*connection.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE id = $1`
	return r.getOne(ctx, "get connection by ID", logrus.Fields{"connection_id": id}, query, id)
}

func (r *ConnectionRepository) GetByDirection(ctx context.Context, senderID, receiverID uuid.UUID) (*connection.Connection, error) {
	query := `SELECT ` + connectionColumns + ` FROM connections WHERE sender_id = $1 AND receiver_id = $2 LIMIT 1`
	return r.getOne(ctx, "get connection by direction", logrus.Fields{"sender_id": senderID, "receiver_id": receiverID}, query, senderID, receiverID)
}

func (r *ConnectionRepository) GetByPair(ctx context.Context, userID1, userID2 uuid.UUID) (*connection.Connection, error) {
	query := `
		SELECT ` + connectionColumns + `
		FROM connections
		WHERE (sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)
		LIMIT 1`
	return r.getOne(ctx, "get connection by pair", logrus.Fields{"user_id_1": userID1, "user_id_2": userID2}, query, userID1, userID2)
}

// UpdateStatus is a compare-and-set on status: two concurrent answers to the
// same request cannot both apply.
func (r *ConnectionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to connection.Status) (*connection.Connection, error) {
	query := `
		UPDATE connections
		SET status = $2, updated_at = $3
		WHERE id = $1 AND status = $4
		RETURNING ` + connectionColumns
	fields := logrus.Fields{"connection_id": id, "from": from, "status": to}
	c, err := r.getOne(ctx, "update connection status", fields, query, id, to, r.now(), from)
	if err != nil {
		return nil, err
	}
	if r.logger != nil {
		r.logger.WithFields(fields).Info("db: connection status updated")
	}
	return c, nil
}

func (r *ConnectionRepository) Delete(ctx context.Context, id uuid.UUID) (*connection.Connection, error) {
	query := `DELETE FROM connections WHERE id = $1 RETURNING ` + connectionColumns
	c, err := r.getOne(ctx, "delete connection", logrus.Fields{"connection_id": id}, query, id)
	if err != nil {
		return nil, err
	}
	if r.logger != nil {
		r.logger.WithFields(logrus.Fields{"connection_id": id}).Info("db: connection deleted")
	}
	return c, nil
}

// ListAccepted returns accepted connections on either side, newest first.
func (r *ConnectionRepository) ListAccepted(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error) {
	query := connectionWithProfilesSelect + `
	WHERE c.status = $2 AND (c.sender_id = $1 OR c.receiver_id = $1)
	ORDER BY c.created_at DESC`
	return r.list(ctx, "list accepted connections", userID, query, userID, connection.StatusAccepted)
}

// ListPendingReceived returns pending requests addressed to userID, newest first.
func (r *ConnectionRepository) ListPendingReceived(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error) {
	query := connectionWithProfilesSelect + `
	WHERE c.status = $2 AND c.receiver_id = $1
	ORDER BY c.created_at DESC`
	return r.list(ctx, "list pending requests", userID, query, userID, connection.StatusPending)
}

// ListPendingSent returns pending requests sent by userID, newest first.
func (r *ConnectionRepository) ListPendingSent(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error) {
	query := connectionWithProfilesSelect + `
	WHERE c.status = $2 AND c.sender_id = $1
	ORDER BY c.created_at DESC`
	return r.list(ctx, "list sent requests", userID, query, userID, connection.StatusPending)
}

func (r *ConnectionRepository) getOne(ctx context.Context, op string, fields logrus.Fields, query string, args ...any) (*connection.Connection, error) {
	var c connection.Connection
	if err := r.db.DB.GetContext(ctx, &c, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			if r.logger != nil {
				r.logger.WithFields(fields).Debug("db: " + op + ": not found")
			}
			return nil, connection.ErrNotFound
		}
		if r.logger != nil {
			r.logger.WithFields(fields).WithError(err).Error("db: failed to " + op)
		}
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return &c, nil
}

func (r *ConnectionRepository) list(ctx context.Context, op string, userID uuid.UUID, query string, args ...any) ([]*connection.ConnectionWithProfiles, error) {
	rows := []*connection.ConnectionWithProfiles{}
	if err := r.db.DB.SelectContext(ctx, &rows, query, args...); err != nil {
		if r.logger != nil {
			r.logger.WithFields(logrus.Fields{"user_id": userID}).WithError(err).Error("db: failed to " + op)
		}
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}
	return rows, nil
}

var _ ports.ConnectionRepository = (*ConnectionRepository)(nil)
