package mocks

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/flinkapp/flink/internal/core/domain/connection"
	"github.com/google/uuid"
)

// FakeConnectionRepository is an in-memory ConnectionRepository that enforces
// the unordered pair uniqueness the Postgres index provides. It counts calls
// so tests can tell cache hits from store reads.
type FakeConnectionRepository struct {
	mu      sync.Mutex
	rows    map[uuid.UUID]*fakeRow
	seq     int
	names   map[uuid.UUID]string
	ListErr error

	Calls map[string]int
}

type fakeRow struct {
	conn connection.Connection
	seq  int
}

func NewFakeConnectionRepository() *FakeConnectionRepository {
	return &FakeConnectionRepository{
		rows:  map[uuid.UUID]*fakeRow{},
		names: map[uuid.UUID]string{},
		Calls: map[string]int{},
	}
}

// SetName gives userID a display name in joined list results.
func (f *FakeConnectionRepository) SetName(userID uuid.UUID, name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.names[userID] = name
}

// CallCount returns how many times op was called.
func (f *FakeConnectionRepository) CallCount(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[op]
}

// Len returns the number of stored records.
func (f *FakeConnectionRepository) Len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

func (f *FakeConnectionRepository) Create(ctx context.Context, c *connection.Connection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["Create"]++
	if f.findPair(c.SenderID, c.ReceiverID) != nil {
		return connection.ErrConnectionPresent
	}
	f.seq++
	f.rows[c.ID] = &fakeRow{conn: *c, seq: f.seq}
	return nil
}

func (f *FakeConnectionRepository) GetByID(ctx context.Context, id uuid.UUID) (*connection.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["GetByID"]++
	r, ok := f.rows[id]
	if !ok {
		return nil, connection.ErrNotFound
	}
	c := r.conn
	return &c, nil
}

func (f *FakeConnectionRepository) GetByDirection(ctx context.Context, senderID, receiverID uuid.UUID) (*connection.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["GetByDirection"]++
	for _, r := range f.rows {
		if r.conn.SenderID == senderID && r.conn.ReceiverID == receiverID {
			c := r.conn
			return &c, nil
		}
	}
	return nil, connection.ErrNotFound
}

func (f *FakeConnectionRepository) GetByPair(ctx context.Context, userID1, userID2 uuid.UUID) (*connection.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["GetByPair"]++
	if c := f.findPair(userID1, userID2); c != nil {
		return c, nil
	}
	return nil, connection.ErrNotFound
}

func (f *FakeConnectionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to connection.Status) (*connection.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["UpdateStatus"]++
	r, ok := f.rows[id]
	if !ok || r.conn.Status != from {
		return nil, connection.ErrNotFound
	}
	r.conn.Status = to
	r.conn.UpdatedAt = time.Now()
	c := r.conn
	return &c, nil
}

func (f *FakeConnectionRepository) Delete(ctx context.Context, id uuid.UUID) (*connection.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls["Delete"]++
	r, ok := f.rows[id]
	if !ok {
		return nil, connection.ErrNotFound
	}
	delete(f.rows, id)
	c := r.conn
	return &c, nil
}

func (f *FakeConnectionRepository) ListAccepted(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error) {
	return f.list("ListAccepted", func(c connection.Connection) bool {
		return c.Status == connection.StatusAccepted && c.Involves(userID)
	})
}

func (f *FakeConnectionRepository) ListPendingReceived(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error) {
	return f.list("ListPendingReceived", func(c connection.Connection) bool {
		return c.Status == connection.StatusPending && c.ReceiverID == userID
	})
}

func (f *FakeConnectionRepository) ListPendingSent(ctx context.Context, userID uuid.UUID) ([]*connection.ConnectionWithProfiles, error) {
	return f.list("ListPendingSent", func(c connection.Connection) bool {
		return c.Status == connection.StatusPending && c.SenderID == userID
	})
}

func (f *FakeConnectionRepository) list(op string, keep func(connection.Connection) bool) ([]*connection.ConnectionWithProfiles, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls[op]++
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	matched := []*fakeRow{}
	for _, r := range f.rows {
		if keep(r.conn) {
			matched = append(matched, r)
		}
	}
	// newest first
	sort.Slice(matched, func(i, j int) bool { return matched[i].seq > matched[j].seq })

	out := make([]*connection.ConnectionWithProfiles, 0, len(matched))
	for _, r := range matched {
		out = append(out, &connection.ConnectionWithProfiles{
			Connection: r.conn,
			Sender:     connection.ProfileSummary{UserID: r.conn.SenderID, Name: f.names[r.conn.SenderID]},
			Receiver:   connection.ProfileSummary{UserID: r.conn.ReceiverID, Name: f.names[r.conn.ReceiverID]},
		})
	}
	return out, nil
}

func (f *FakeConnectionRepository) findPair(a, b uuid.UUID) *connection.Connection {
	for _, r := range f.rows {
		if (r.conn.SenderID == a && r.conn.ReceiverID == b) || (r.conn.SenderID == b && r.conn.ReceiverID == a) {
			c := r.conn
			return &c
		}
	}
	return nil
}
