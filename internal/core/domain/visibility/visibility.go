package visibility

import (
	"fmt"
	"strings"

	"github.com/flinkapp/flink/internal/core/domain/connection"
	"github.com/google/uuid"
)

// Mode selects how CanView treats private profiles.
type Mode string

const (
	// ModePermissive grants CanView to every viewer. Privacy enforcement on
	// this gate is switched off until the product decides on the rule; the
	// extended-fields gate still applies.
	ModePermissive Mode = "permissive"
	// ModeEnforced denies CanView on private profiles unless the viewer is
	// the owner or holds an accepted connection with them.
	ModeEnforced Mode = "enforced"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModePermissive:
		return ModePermissive, nil
	case ModeEnforced:
		return ModeEnforced, nil
	default:
		return "", fmt.Errorf("unknown privacy mode %q", s)
	}
}

// Decision is the single result every profile-rendering path consumes.
type Decision struct {
	// CanView is the page-level gate.
	CanView bool `json:"can_view"`
	// CanViewCore mirrors CanView; name, photo, handle and bio.
	CanViewCore bool `json:"can_view_core"`
	// CanViewExtendedFields gates location, website and social links.
	CanViewExtendedFields bool                   `json:"can_view_extended_fields"`
	Connection            *connection.Connection `json:"connection"`
}

// Evaluate decides what viewerID may see of ownerID's profile. conn is the
// current record between the two, or nil. A nil viewerID is an anonymous viewer.
func Evaluate(mode Mode, viewerID, ownerID uuid.UUID, isPrivate bool, conn *connection.Connection) Decision {
	if viewerID != uuid.Nil && viewerID == ownerID {
		return Decision{CanView: true, CanViewCore: true, CanViewExtendedFields: true}
	}

	canView := true
	if mode == ModeEnforced {
		canView = !isPrivate || conn.IsAccepted()
	}

	return Decision{
		CanView:               canView,
		CanViewCore:           canView,
		CanViewExtendedFields: ExtendedFieldsVisible(isPrivate, conn),
		Connection:            conn,
	}
}

// ExtendedFieldsVisible is the display gate: private profiles hide their
// extended fields from anyone without an accepted connection.
func ExtendedFieldsVisible(isPrivate bool, conn *connection.Connection) bool {
	hidden := isPrivate && !conn.IsAccepted()
	return !hidden
}
