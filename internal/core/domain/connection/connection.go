package connection

import (
	"time"

	"github.com/google/uuid"
)

// Connection is a directional relationship record between two users.
// SenderID initiated it; only ReceiverID may accept or reject it.
type Connection struct {
	ID         uuid.UUID `json:"id" db:"id"`
	SenderID   uuid.UUID `json:"sender_id" db:"sender_id"`
	ReceiverID uuid.UUID `json:"receiver_id" db:"receiver_id"`
	Status     Status    `json:"status" db:"status"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" db:"updated_at"`
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusAccepted Status = "accepted"
	StatusRejected Status = "rejected"
	// StatusBlocked is part of the stored taxonomy but no operation produces it yet.
	StatusBlocked Status = "blocked"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusBlocked:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether an update from s to next is allowed.
// Deletion is always allowed and is not modelled as a status.
func (s Status) CanTransitionTo(next Status) bool {
	if s != StatusPending {
		return false
	}
	return next == StatusAccepted || next == StatusRejected
}

// InitialStatus returns the status a new request starts in. Public profiles
// are followed immediately; private ones need an explicit accept.
func InitialStatus(receiverPrivate bool) Status {
	if receiverPrivate {
		return StatusPending
	}
	return StatusAccepted
}

// Involves reports whether userID is one of the two participants.
func (c *Connection) Involves(userID uuid.UUID) bool {
	return c.SenderID == userID || c.ReceiverID == userID
}

// OtherParticipant returns the participant that is not userID.
func (c *Connection) OtherParticipant(userID uuid.UUID) uuid.UUID {
	if c.SenderID == userID {
		return c.ReceiverID
	}
	return c.SenderID
}

func (c *Connection) IsAccepted() bool {
	return c != nil && c.Status == StatusAccepted
}

// ProfileSummary is the slice of users/profiles joined into list results.
type ProfileSummary struct {
	UserID     uuid.UUID `json:"user_id" db:"user_id"`
	Name       string    `json:"name" db:"name"`
	ProfileURL *string   `json:"profile_url" db:"profile_url"`
	Handle     *string   `json:"handle" db:"handle"`
}

// ConnectionWithProfiles is a Connection with both participants' summaries.
type ConnectionWithProfiles struct {
	Connection
	Sender   ProfileSummary `json:"sender" db:"sender"`
	Receiver ProfileSummary `json:"receiver" db:"receiver"`
}

// Stats aggregates a user's connection counts.
type Stats struct {
	FriendsCount         int `json:"friends_count"`
	PendingReceivedCount int `json:"pending_received_count"`
	PendingSentCount     int `json:"pending_sent_count"`
	TotalConnections     int `json:"total_connections"`
}

// SendRequest is the body of a new connection request.
type SendRequest struct {
	ReceiverID string `json:"receiver_id" validate:"required,uuid"`
}
