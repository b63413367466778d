package arrangement

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var (
	author = Actor{ID: "1", Name: "author"}
	alice  = Actor{ID: "2", Name: "alice"}
	bob    = Actor{ID: "3", Name: "bob"}
)

func newPending(t *testing.T, now time.Time) *Arrangement {
	t.Helper()
	return New(uuid.New(), 42, author, "Ballas", "Vagos", now.Add(time.Hour), Topic{Business: "capt"}, now)
}

func TestAccept(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 20, 30, 0, 0, time.UTC)
	a := newPending(t, now)

	require.NoError(t, Apply(a, Action{Kind: ActionAccept, Actor: alice, Size: Size3x3}, now))
	require.Equal(t, StateAccepted, a.State)
	require.Equal(t, alice, *a.DecidedBy)
	require.Equal(t, Size3x3, a.Size)
	require.Equal(t, now, a.DecidedAt)
	require.NoError(t, a.Validate())
}

func TestAcceptTwiceKeepsFirstDecision(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 20, 30, 0, 0, time.UTC)
	a := newPending(t, now)

	require.NoError(t, Apply(a, Action{Kind: ActionAccept, Actor: alice, Size: Size3x3}, now))
	err := Apply(a, Action{Kind: ActionAccept, Actor: bob, Size: Size5x5}, now.Add(time.Minute))
	require.ErrorIs(t, err, ErrWrongState)
	require.Equal(t, alice, *a.DecidedBy)
	require.Equal(t, Size3x3, a.Size)
}

func TestAcceptRejections(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 20, 30, 0, 0, time.UTC)

	tests := []struct {
		name    string
		size    Size
		at      time.Time
		prepare func(a *Arrangement)
		wantErr error
	}{
		{name: "unknown size", size: "6x6", at: now, wantErr: ErrInvalidSize},
		{name: "empty size", size: SizeUnset, at: now, wantErr: ErrInvalidSize},
		{name: "at scheduled instant", size: Size2x2, at: now.Add(time.Hour), wantErr: ErrAlreadyStarted},
		{name: "after scheduled instant", size: Size2x2, at: now.Add(2 * time.Hour), wantErr: ErrAlreadyStarted},
		{
			name: "rejected arrangement",
			size: Size2x2,
			at:   now,
			prepare: func(a *Arrangement) {
				require.NoError(t, Apply(a, Action{Kind: ActionReject, Actor: bob}, now))
			},
			wantErr: ErrWrongState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newPending(t, now)
			if tt.prepare != nil {
				tt.prepare(a)
			}
			before := a.Clone()

			err := Apply(a, Action{Kind: ActionAccept, Actor: alice, Size: tt.size}, tt.at)
			require.ErrorIs(t, err, tt.wantErr)
			require.Equal(t, before, a)
		})
	}
}

func TestReject(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 20, 30, 0, 0, time.UTC)
	a := newPending(t, now)

	require.ErrorIs(t, Apply(a, Action{Kind: ActionReject, Actor: bob}, a.ScheduledAt), ErrAlreadyStarted)
	require.NoError(t, Apply(a, Action{Kind: ActionReject, Actor: bob}, now))
	require.Equal(t, StateRejected, a.State)
	require.Equal(t, bob, *a.DecidedBy)
	require.Equal(t, SizeUnset, a.Size)
	require.ErrorIs(t, Apply(a, Action{Kind: ActionReject, Actor: alice}, now), ErrWrongState)
}

func TestRollbackPermissions(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 20, 30, 0, 0, time.UTC)

	a := newPending(t, now)
	require.ErrorIs(t, Apply(a, Action{Kind: ActionRollback, Actor: author}, now), ErrWrongState)

	require.NoError(t, Apply(a, Action{Kind: ActionAccept, Actor: alice, Size: Size4x4}, now))
	before := a.Clone()
	require.ErrorIs(t, Apply(a, Action{Kind: ActionRollback, Actor: bob}, now), ErrForbidden)
	require.Equal(t, before, a)

	// The decider may undo their own decision.
	require.NoError(t, Apply(a, Action{Kind: ActionRollback, Actor: alice}, now))
	require.Equal(t, StatePending, a.State)
	require.Nil(t, a.DecidedBy)
	require.Equal(t, SizeUnset, a.Size)
	require.True(t, a.DecidedAt.IsZero())
	require.NoError(t, a.Validate())
}

func TestRollbackAfterStart(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 20, 30, 0, 0, time.UTC)
	a := newPending(t, now)
	require.NoError(t, Apply(a, Action{Kind: ActionAccept, Actor: alice, Size: Size2x2}, now))

	require.NoError(t, Apply(a, Action{Kind: ActionRollback, Actor: author}, a.ScheduledAt.Add(time.Hour)))
	require.Equal(t, StatePending, a.State)
}

func TestAcceptRollbackReject(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 20, 30, 0, 0, time.UTC)
	a := newPending(t, now)

	require.NoError(t, Apply(a, Action{Kind: ActionAccept, Actor: alice, Size: Size3x3}, now))
	require.NoError(t, Apply(a, Action{Kind: ActionRollback, Actor: author}, now))
	require.NoError(t, Apply(a, Action{Kind: ActionReject, Actor: bob}, now))

	require.Equal(t, StateRejected, a.State)
	require.Equal(t, bob, *a.DecidedBy)
	require.Equal(t, SizeUnset, a.Size)
}

func TestRoster(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 10, 19, 20, 30, 0, 0, time.UTC)
	a := newPending(t, now)

	require.NoError(t, Apply(a, Action{Kind: ActionJoin, Actor: alice}, now))
	require.NoError(t, Apply(a, Action{Kind: ActionJoin, Actor: alice}, now))
	require.NoError(t, Apply(a, Action{Kind: ActionJoin, Actor: bob}, now))
	require.Equal(t, []Actor{alice, bob}, a.Participants)

	require.NoError(t, Apply(a, Action{Kind: ActionLeave, Actor: alice}, now))
	require.NoError(t, Apply(a, Action{Kind: ActionLeave, Actor: author}, now))
	require.Equal(t, []Actor{bob}, a.Participants)

	// Roster changes never touch the decision fields.
	require.Equal(t, StatePending, a.State)
	require.ErrorIs(t, Apply(a, Action{Kind: ActionJoin, Actor: author}, a.ScheduledAt), ErrAlreadyStarted)
}

func TestUnknownAction(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a := newPending(t, now)
	require.ErrorIs(t, Apply(a, Action{Kind: "kick", Actor: alice}, now), ErrUnknownAction)
}

func TestCloneIsDeep(t *testing.T) {
	t.Parallel()

	now := time.Now()
	a := newPending(t, now)
	require.NoError(t, Apply(a, Action{Kind: ActionAccept, Actor: alice, Size: Size2x2}, now))
	require.NoError(t, Apply(a, Action{Kind: ActionJoin, Actor: bob}, now))

	c := a.Clone()
	require.Equal(t, a, c)
	require.NotSame(t, a.DecidedBy, c.DecidedBy)

	c.Participants[0].Name = "changed"
	require.Equal(t, "bob", a.Participants[0].Name)
	require.Nil(t, (*Arrangement)(nil).Clone())
}
