package repositories

import (
	"context"
	"database/sql/driver"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/flinkapp/flink/internal/core/domain/connection"
	"github.com/flinkapp/flink/internal/infrastructure/db"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*db.Database, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = raw.Close() })
	return db.Wrap(sqlx.NewDb(raw, "postgres")), mock
}

var connCols = []string{"id", "sender_id", "receiver_id", "status", "created_at", "updated_at"}

func connRow(c *connection.Connection) []driver.Value {
	return []driver.Value{c.ID.String(), c.SenderID.String(), c.ReceiverID.String(), string(c.Status), c.CreatedAt, c.UpdatedAt}
}

func sampleConnection(status connection.Status) *connection.Connection {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	return &connection.Connection{
		ID:         uuid.New(),
		SenderID:   uuid.New(),
		ReceiverID: uuid.New(),
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func TestConnectionRepository_Create(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewConnectionRepository(database, nil)
	c := sampleConnection(connection.StatusPending)

	mock.ExpectExec("INSERT INTO connections").
		WithArgs(c.ID, c.SenderID, c.ReceiverID, c.Status, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), c))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionRepository_CreatePairConflict(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewConnectionRepository(database, nil)
	c := sampleConnection(connection.StatusPending)

	mock.ExpectExec("INSERT INTO connections").
		WillReturnError(&pq.Error{Code: "23505", Constraint: pairConstraint})

	err := repo.Create(context.Background(), c)
	require.Error(t, err)
	assert.True(t, connection.HasCode(err, connection.CodeConnectionExists))
}

func TestConnectionRepository_CreateOtherErrorIsOpaque(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewConnectionRepository(database, nil)

	mock.ExpectExec("INSERT INTO connections").WillReturnError(errors.New("connection reset"))

	err := repo.Create(context.Background(), sampleConnection(connection.StatusAccepted))
	require.Error(t, err)
	assert.Equal(t, connection.ErrorCode(""), connection.CodeOf(err))
}

func TestConnectionRepository_GetByIDNotFound(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewConnectionRepository(database, nil)
	id := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("FROM connections WHERE id = $1")).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(connCols))

	_, err := repo.GetByID(context.Background(), id)
	assert.True(t, errors.Is(err, connection.ErrNotFound))
}

func TestConnectionRepository_GetByPair(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewConnectionRepository(database, nil)
	c := sampleConnection(connection.StatusAccepted)

	mock.ExpectQuery(regexp.QuoteMeta("(sender_id = $1 AND receiver_id = $2) OR (sender_id = $2 AND receiver_id = $1)")).
		WithArgs(c.ReceiverID, c.SenderID).
		WillReturnRows(sqlmock.NewRows(connCols).AddRow(connRow(c)...))

	got, err := repo.GetByPair(context.Background(), c.ReceiverID, c.SenderID)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
	assert.Equal(t, connection.StatusAccepted, got.Status)
}

func TestConnectionRepository_GetByDirection(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewConnectionRepository(database, nil)
	c := sampleConnection(connection.StatusPending)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE sender_id = $1 AND receiver_id = $2 LIMIT 1")).
		WithArgs(c.SenderID, c.ReceiverID).
		WillReturnRows(sqlmock.NewRows(connCols).AddRow(connRow(c)...))

	got, err := repo.GetByDirection(context.Background(), c.SenderID, c.ReceiverID)
	require.NoError(t, err)
	assert.Equal(t, c.SenderID, got.SenderID)
}

func TestConnectionRepository_UpdateStatus(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewConnectionRepository(database, nil)
	fixed := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	c := sampleConnection(connection.StatusAccepted)
	c.UpdatedAt = fixed

	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND status = $4")).
		WithArgs(c.ID, connection.StatusAccepted, fixed, connection.StatusPending).
		WillReturnRows(sqlmock.NewRows(connCols).AddRow(connRow(c)...))

	got, err := repo.UpdateStatus(context.Background(), c.ID, connection.StatusPending, connection.StatusAccepted)
	require.NoError(t, err)
	assert.Equal(t, fixed, got.UpdatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionRepository_UpdateStatusMissingRow(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewConnectionRepository(database, nil)

	mock.ExpectQuery(regexp.QuoteMeta("UPDATE connections")).WillReturnRows(sqlmock.NewRows(connCols))

	_, err := repo.UpdateStatus(context.Background(), uuid.New(), connection.StatusPending, connection.StatusRejected)
	assert.True(t, connection.HasCode(err, connection.CodeNotFound))
}

func TestConnectionRepository_UpdateStatusAlreadyAnswered(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewConnectionRepository(database, nil)
	id := uuid.New()

	// the row exists but is no longer pending, so the guarded update matches nothing
	mock.ExpectQuery(regexp.QuoteMeta("WHERE id = $1 AND status = $4")).
		WithArgs(id, connection.StatusRejected, sqlmock.AnyArg(), connection.StatusPending).
		WillReturnRows(sqlmock.NewRows(connCols))

	_, err := repo.UpdateStatus(context.Background(), id, connection.StatusPending, connection.StatusRejected)
	assert.True(t, connection.HasCode(err, connection.CodeNotFound))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestConnectionRepository_DeleteReturnsRecord(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewConnectionRepository(database, nil)
	c := sampleConnection(connection.StatusRejected)

	mock.ExpectQuery(regexp.QuoteMeta("DELETE FROM connections WHERE id = $1 RETURNING")).
		WithArgs(c.ID).
		WillReturnRows(sqlmock.NewRows(connCols).AddRow(connRow(c)...))

	got, err := repo.Delete(context.Background(), c.ID)
	require.NoError(t, err)
	assert.Equal(t, connection.StatusRejected, got.Status)
}

func TestConnectionRepository_ListAcceptedJoinsProfiles(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewConnectionRepository(database, nil)
	c := sampleConnection(connection.StatusAccepted)

	cols := append(append([]string{}, connCols...),
		"sender.user_id", "sender.name", "sender.profile_url", "sender.handle",
		"receiver.user_id", "receiver.name", "receiver.profile_url", "receiver.handle")
	row := append(connRow(c),
		c.SenderID.String(), "Ada", "https://cdn.flink.app/ada.png", "ada",
		c.ReceiverID.String(), "Grace", nil, nil)

	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.status = $2 AND (c.sender_id = $1 OR c.receiver_id = $1)")).
		WithArgs(c.SenderID, connection.StatusAccepted).
		WillReturnRows(sqlmock.NewRows(cols).AddRow(row...))

	got, err := repo.ListAccepted(context.Background(), c.SenderID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, c.ID, got[0].ID)
	assert.Equal(t, "Ada", got[0].Sender.Name)
	require.NotNil(t, got[0].Sender.Handle)
	assert.Equal(t, "ada", *got[0].Sender.Handle)
	assert.Equal(t, "Grace", got[0].Receiver.Name)
	assert.Nil(t, got[0].Receiver.Handle)
}

func TestConnectionRepository_ListPendingEmpty(t *testing.T) {
	database, mock := newMockDB(t)
	repo := NewConnectionRepository(database, nil)
	userID := uuid.New()

	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.status = $2 AND c.receiver_id = $1")).
		WithArgs(userID, connection.StatusPending).
		WillReturnRows(sqlmock.NewRows(connCols))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE c.status = $2 AND c.sender_id = $1")).
		WithArgs(userID, connection.StatusPending).
		WillReturnError(errors.New("timeout"))

	got, err := repo.ListPendingReceived(context.Background(), userID)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)

	_, err = repo.ListPendingSent(context.Background(), userID)
	require.Error(t, err)
}
