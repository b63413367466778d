// internal/domain/arrangement/arrangement.go
package arrangement

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// State is the negotiation state of an arrangement.
type State string

const (
	StatePending  State = "PENDING"
	StateAccepted State = "ACCEPTED"
	StateRejected State = "REJECTED"
)

// Size is the commitment token chosen on acceptance (e.g. 3x3).
type Size string

const (
	SizeUnset Size = ""
	Size2x2   Size = "2x2"
	Size3x3   Size = "3x3"
	Size4x4   Size = "4x4"
	Size5x5   Size = "5x5"
)

// AllowedSizes lists the commitment tokens in display order.
var AllowedSizes = []Size{Size2x2, Size3x3, Size4x4, Size5x5}

// Valid reports whether s is one of the allowed commitment tokens.
func (s Size) Valid() bool {
	for _, allowed := range AllowedSizes {
		if s == allowed {
			return true
		}
	}
	return false
}

// Actor identifies a participant of the chat.
type Actor struct {
	ID   string // stable identity, compared for permissions
	Name string // display name or mention, never interpreted
}

// Topic holds free-text descriptive attributes. Display only.
type Topic struct {
	Place    string
	Means    string
	Business string
}

// Arrangement is the authoritative record of one negotiation.
type Arrangement struct {
	ID              uuid.UUID
	ChatID          int64 // surface binding, opaque to the core
	Author          Actor
	InitiatingParty string
	RespondingParty string
	ScheduledAt     time.Time
	Topic           Topic

	State        State
	DecidedBy    *Actor // nil while pending
	Size         Size
	DecidedAt    time.Time
	Notified     bool
	Participants []Actor

	Version   uint64 // incremented on every committed mutation
	CreatedAt time.Time
}

// New builds a pending arrangement.
func New(id uuid.UUID, chatID int64, author Actor, initiating, responding string, scheduledAt time.Time, topic Topic, now time.Time) *Arrangement {
	return &Arrangement{
		ID:              id,
		ChatID:          chatID,
		Author:          author,
		InitiatingParty: initiating,
		RespondingParty: responding,
		ScheduledAt:     scheduledAt,
		Topic:           topic,
		State:           StatePending,
		CreatedAt:       now,
	}
}

// Clone returns a deep copy so callers never share mutable state with the store.
func (a *Arrangement) Clone() *Arrangement {
	if a == nil {
		return nil
	}
	cloned := *a
	if a.DecidedBy != nil {
		decidedBy := *a.DecidedBy
		cloned.DecidedBy = &decidedBy
	}
	if a.Participants != nil {
		cloned.Participants = append([]Actor(nil), a.Participants...)
	}
	return &cloned
}

// Remaining returns the time left until the scheduled instant.
func (a *Arrangement) Remaining(now time.Time) time.Duration {
	return a.ScheduledAt.Sub(now)
}

// HasParticipant reports whether the actor is on the roster.
func (a *Arrangement) HasParticipant(actorID string) bool {
	return a.participantIndex(actorID) >= 0
}

func (a *Arrangement) participantIndex(actorID string) int {
	for i, p := range a.Participants {
		if p.ID == actorID {
			return i
		}
	}
	return -1
}

// Validate checks the record invariants. The store refuses to commit a record that fails it.
func (a *Arrangement) Validate() error {
	switch a.State {
	case StatePending:
		if a.DecidedBy != nil || a.Size != SizeUnset {
			return fmt.Errorf("pending arrangement %s carries a decision", a.ID)
		}
	case StateAccepted:
		if a.DecidedBy == nil || !a.Size.Valid() {
			return fmt.Errorf("accepted arrangement %s lacks decider or size", a.ID)
		}
	case StateRejected:
		if a.DecidedBy == nil || a.Size != SizeUnset {
			return fmt.Errorf("rejected arrangement %s has inconsistent decision", a.ID)
		}
	default:
		return fmt.Errorf("arrangement %s has unknown state %q", a.ID, a.State)
	}
	return nil
}
