// internal/infra/storage/memory_arrangement_repository.go
package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"arrangement_bot/internal/domain/arrangement"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
)

var ErrDuplicateID = errors.New("arrangement with this id already exists")

// slot guards one arrangement. The weighted semaphore of size one is a mutex that can be
// abandoned while waiting, which a sync.Mutex cannot.
type slot struct {
	lock    *semaphore.Weighted
	current *arrangement.Arrangement
	deleted bool
}

// MemoryArrangementRepository keeps arrangements in process memory with per-id exclusion.
// The map lock only protects membership; it is never held while a slot is locked.
type MemoryArrangementRepository struct {
	mu    sync.RWMutex
	slots map[uuid.UUID]*slot
}

func NewMemoryArrangementRepository() *MemoryArrangementRepository {
	return &MemoryArrangementRepository{slots: make(map[uuid.UUID]*slot)}
}

func (r *MemoryArrangementRepository) Create(_ context.Context, a *arrangement.Arrangement) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("refusing to store arrangement: %w", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.slots[a.ID]; exists {
		return ErrDuplicateID
	}

	stored := a.Clone()
	stored.Version = 1
	a.Version = stored.Version
	r.slots[a.ID] = &slot{lock: semaphore.NewWeighted(1), current: stored}
	return nil
}

func (r *MemoryArrangementRepository) lookup(id uuid.UUID) (*slot, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.slots[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", arrangement.ErrNotFound, id)
	}
	return s, nil
}

// acquire locks the slot for id and re-checks that it was not evicted while waiting.
func (r *MemoryArrangementRepository) acquire(ctx context.Context, id uuid.UUID) (*slot, error) {
	s, err := r.lookup(id)
	if err != nil {
		return nil, err
	}
	if err := s.lock.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("waiting for arrangement %s: %w", id, err)
	}
	if s.deleted {
		s.lock.Release(1)
		return nil, fmt.Errorf("%w: %s", arrangement.ErrNotFound, id)
	}
	return s, nil
}

func (r *MemoryArrangementRepository) Get(ctx context.Context, id uuid.UUID) (*arrangement.Arrangement, error) {
	s, err := r.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.lock.Release(1)

	return s.current.Clone(), nil
}

func (r *MemoryArrangementRepository) WithLock(ctx context.Context, id uuid.UUID, fn func(a *arrangement.Arrangement) error) (*arrangement.Arrangement, error) {
	s, err := r.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer s.lock.Release(1)

	working := s.current.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}

	// Identity and schedule are immutable whatever fn did.
	working.ID = s.current.ID
	working.ScheduledAt = s.current.ScheduledAt
	if err := working.Validate(); err != nil {
		return nil, fmt.Errorf("refusing to commit arrangement: %w", err)
	}

	working.Version = s.current.Version + 1
	s.current = working
	return working.Clone(), nil
}

// List returns snapshots ordered by scheduled time.
func (r *MemoryArrangementRepository) List(ctx context.Context) ([]*arrangement.Arrangement, error) {
	r.mu.RLock()
	ids := make([]uuid.UUID, 0, len(r.slots))
	for id := range r.slots {
		ids = append(ids, id)
	}
	r.mu.RUnlock()

	result := make([]*arrangement.Arrangement, 0, len(ids))
	for _, id := range ids {
		a, err := r.Get(ctx, id)
		if errors.Is(err, arrangement.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, a)
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].ScheduledAt.Before(result[j].ScheduledAt)
	})
	return result, nil
}

// Delete waits for any in-flight WithLock on id to finish before evicting it.
func (r *MemoryArrangementRepository) Delete(ctx context.Context, id uuid.UUID) error {
	s, err := r.acquire(ctx, id)
	if err != nil {
		return err
	}
	s.deleted = true
	s.lock.Release(1)

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.slots[id] == s {
		delete(r.slots, id)
	}
	return nil
}
