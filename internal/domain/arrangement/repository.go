// internal/domain/arrangement/repository.go
package arrangement

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the single owner of arrangement state.
type Repository interface {
	Create(ctx context.Context, a *Arrangement) error
	// Get returns a read-only snapshot.
	Get(ctx context.Context, id uuid.UUID) (*Arrangement, error)
	// WithLock runs fn against an exclusively held working copy and commits it when fn
	// returns nil. Invocations for the same id never overlap. The committed snapshot is returned.
	WithLock(ctx context.Context, id uuid.UUID, fn func(a *Arrangement) error) (*Arrangement, error)
	List(ctx context.Context) ([]*Arrangement, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
