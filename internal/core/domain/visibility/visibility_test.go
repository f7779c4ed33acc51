package visibility

import (
	"testing"

	"github.com/flinkapp/flink/internal/core/domain/connection"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func conn(status connection.Status) *connection.Connection {
	return &connection.Connection{ID: uuid.New(), SenderID: uuid.New(), ReceiverID: uuid.New(), Status: status}
}

func TestEvaluate_SelfViewSeesEverything(t *testing.T) {
	a := uuid.New()
	for _, mode := range []Mode{ModePermissive, ModeEnforced} {
		d := Evaluate(mode, a, a, true, nil)
		assert.Equal(t, Decision{CanView: true, CanViewCore: true, CanViewExtendedFields: true}, d)
		assert.Nil(t, d.Connection)
	}
}

// Permissive mode grants the page to every viewer on purpose: privacy
// enforcement on CanView is switched off until the product settles the rule.
// Do not "fix" these expectations without changing the default mode.
func TestEvaluate_PermissiveCanViewIsAlwaysTrue(t *testing.T) {
	viewer, owner := uuid.New(), uuid.New()
	for _, c := range []*connection.Connection{
		nil,
		conn(connection.StatusPending),
		conn(connection.StatusRejected),
		conn(connection.StatusBlocked),
		conn(connection.StatusAccepted),
	} {
		for _, private := range []bool{false, true} {
			d := Evaluate(ModePermissive, viewer, owner, private, c)
			assert.True(t, d.CanView)
			assert.True(t, d.CanViewCore)
			assert.Equal(t, c, d.Connection)
		}
	}
}

func TestEvaluate_EnforcedDeniesPrivateWithoutAcceptedConnection(t *testing.T) {
	viewer, owner := uuid.New(), uuid.New()
	tests := []struct {
		name    string
		private bool
		conn    *connection.Connection
		want    bool
	}{
		{"public, no connection", false, nil, true},
		{"private, no connection", true, nil, false},
		{"private, pending", true, conn(connection.StatusPending), false},
		{"private, rejected", true, conn(connection.StatusRejected), false},
		{"private, accepted", true, conn(connection.StatusAccepted), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Evaluate(ModeEnforced, viewer, owner, tt.private, tt.conn)
			assert.Equal(t, tt.want, d.CanView)
			assert.Equal(t, d.CanView, d.CanViewCore)
		})
	}
}

func TestEvaluate_AnonymousViewerIsNeverSelf(t *testing.T) {
	d := Evaluate(ModeEnforced, uuid.Nil, uuid.Nil, true, nil)
	assert.False(t, d.CanView)
	assert.False(t, d.CanViewExtendedFields)
}

// The display gate is independent of CanView. In permissive mode a private
// profile is viewable while its extended fields stay hidden.
func TestEvaluate_ExtendedFieldsGateIsSeparate(t *testing.T) {
	viewer, owner := uuid.New(), uuid.New()

	d := Evaluate(ModePermissive, viewer, owner, true, conn(connection.StatusPending))
	assert.True(t, d.CanView)
	assert.False(t, d.CanViewExtendedFields)

	d = Evaluate(ModePermissive, viewer, owner, true, conn(connection.StatusAccepted))
	assert.True(t, d.CanViewExtendedFields)

	d = Evaluate(ModeEnforced, viewer, owner, false, nil)
	assert.True(t, d.CanViewExtendedFields)
}

func TestExtendedFieldsVisible(t *testing.T) {
	assert.True(t, ExtendedFieldsVisible(false, nil))
	assert.True(t, ExtendedFieldsVisible(false, conn(connection.StatusRejected)))
	assert.False(t, ExtendedFieldsVisible(true, nil))
	assert.False(t, ExtendedFieldsVisible(true, conn(connection.StatusPending)))
	assert.True(t, ExtendedFieldsVisible(true, conn(connection.StatusAccepted)))
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("")
	require.NoError(t, err)
	assert.Equal(t, ModePermissive, m)

	m, err = ParseMode(" Enforced ")
	require.NoError(t, err)
	assert.Equal(t, ModeEnforced, m)

	_, err = ParseMode("strict")
	assert.Error(t, err)
}
