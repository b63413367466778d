package arrangement

import (
	"fmt"
	"time"
)

// ActionKind names a human action submitted against an arrangement.
type ActionKind string

const (
	ActionAccept   ActionKind = "accept"
	ActionReject   ActionKind = "reject"
	ActionRollback ActionKind = "rollback"
	ActionJoin     ActionKind = "join"
	ActionLeave    ActionKind = "leave"
)

// Action is a single request from an actor. Size is only read for ActionAccept.
type Action struct {
	Kind  ActionKind
	Actor Actor
	Size  Size
}

// Apply runs the transition table against a. It mutates a only when it returns nil.
func Apply(a *Arrangement, act Action, now time.Time) error {
	switch act.Kind {
	case ActionAccept:
		return accept(a, act.Actor, act.Size, now)
	case ActionReject:
		return reject(a, act.Actor, now)
	case ActionRollback:
		return rollback(a, act.Actor)
	case ActionJoin:
		return join(a, act.Actor, now)
	case ActionLeave:
		return leave(a, act.Actor, now)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, act.Kind)
	}
}

func accept(a *Arrangement, actor Actor, size Size, now time.Time) error {
	if !size.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidSize, size)
	}
	if !now.Before(a.ScheduledAt) {
		return ErrAlreadyStarted
	}
	if a.State != StatePending {
		return fmt.Errorf("%w: arrangement is %s", ErrWrongState, a.State)
	}

	decidedBy := actor
	a.State = StateAccepted
	a.DecidedBy = &decidedBy
	a.Size = size
	a.DecidedAt = now
	return nil
}

func reject(a *Arrangement, actor Actor, now time.Time) error {
	if !now.Before(a.ScheduledAt) {
		return ErrAlreadyStarted
	}
	if a.State != StatePending {
		return fmt.Errorf("%w: arrangement is %s", ErrWrongState, a.State)
	}

	decidedBy := actor
	a.State = StateRejected
	a.DecidedBy = &decidedBy
	a.DecidedAt = now
	return nil
}

// rollback is not time-gated: a permitted actor may reopen the negotiation even after the start.
func rollback(a *Arrangement, actor Actor) error {
	permitted := actor.ID == a.Author.ID || (a.DecidedBy != nil && actor.ID == a.DecidedBy.ID)
	if !permitted {
		return ErrForbidden
	}
	if a.State == StatePending {
		return fmt.Errorf("%w: arrangement is already %s", ErrWrongState, a.State)
	}

	a.State = StatePending
	a.DecidedBy = nil
	a.Size = SizeUnset
	a.DecidedAt = time.Time{}
	return nil
}

func join(a *Arrangement, actor Actor, now time.Time) error {
	if !now.Before(a.ScheduledAt) {
		return ErrAlreadyStarted
	}
	if !a.HasParticipant(actor.ID) {
		a.Participants = append(a.Participants, actor)
	}
	return nil
}

func leave(a *Arrangement, actor Actor, now time.Time) error {
	if !now.Before(a.ScheduledAt) {
		return ErrAlreadyStarted
	}
	if i := a.participantIndex(actor.ID); i >= 0 {
		a.Participants = append(a.Participants[:i], a.Participants[i+1:]...)
	}
	return nil
}
