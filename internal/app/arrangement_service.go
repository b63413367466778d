// internal/app/arrangement_service.go
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"arrangement_bot/internal/domain/announcement"
	"arrangement_bot/internal/domain/arrangement"
	"arrangement_bot/internal/domain/schedule"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

var ErrPartyRequired = errors.New("both parties must be named")

// ArrangementService is the entry point used by whatever UI collects user intent.
type ArrangementService interface {
	CreateArrangement(ctx context.Context, req CreateRequest) (*arrangement.Arrangement, error)
	SubmitAction(ctx context.Context, id uuid.UUID, action arrangement.Action) (*arrangement.Arrangement, error)
	Get(ctx context.Context, id uuid.UUID) (*arrangement.Arrangement, error)
	// Refresh re-renders the current snapshot without mutating it.
	Refresh(ctx context.Context, id uuid.UUID) (*arrangement.Arrangement, error)
}

// CountdownStarter launches the background countdown bound to one arrangement.
type CountdownStarter interface {
	Start(id uuid.UUID)
}

// CreateRequest carries the raw creation input.
type CreateRequest struct {
	ChatID          int64
	Author          arrangement.Actor
	InitiatingParty string
	RespondingParty string
	ScheduledText   string
	Topic           arrangement.Topic
}

type ArrangementServiceImpl struct {
	repo      arrangement.Repository
	resolver  *schedule.Resolver
	renderer  announcement.Renderer
	countdown CountdownStarter
	clock     clockwork.Clock
	logger    *logrus.Entry
}

func NewArrangementServiceImpl(
	repo arrangement.Repository,
	resolver *schedule.Resolver,
	renderer announcement.Renderer,
	countdown CountdownStarter,
	clock clockwork.Clock,
	logger *logrus.Entry,
) *ArrangementServiceImpl {
	return &ArrangementServiceImpl{
		repo:      repo,
		resolver:  resolver,
		renderer:  renderer,
		countdown: countdown,
		clock:     clock,
		logger:    logger.WithField("component", "arrangement_service"),
	}
}

// CreateArrangement resolves the schedule, stores a pending arrangement, renders it and
// starts its countdown.
func (s *ArrangementServiceImpl) CreateArrangement(ctx context.Context, req CreateRequest) (*arrangement.Arrangement, error) {
	initiating := strings.TrimSpace(req.InitiatingParty)
	responding := strings.TrimSpace(req.RespondingParty)
	if initiating == "" || responding == "" {
		return nil, ErrPartyRequired
	}

	now := s.clock.Now()
	scheduledAt, err := s.resolver.Resolve(req.ScheduledText, now)
	if err != nil {
		return nil, err
	}

	a := arrangement.New(uuid.New(), req.ChatID, req.Author, initiating, responding, scheduledAt, req.Topic, now)
	if err := s.repo.Create(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to store arrangement: %w", err)
	}

	logCtx := s.logger.WithField("arrangement_id", a.ID).WithField("author_id", a.Author.ID)
	logCtx.WithField("scheduled_at", scheduledAt).Info("Arrangement created")

	s.render(ctx, a, logCtx)
	s.countdown.Start(a.ID)
	return a, nil
}

// SubmitAction applies one human action under the store lock, then renders the committed snapshot.
func (s *ArrangementServiceImpl) SubmitAction(ctx context.Context, id uuid.UUID, action arrangement.Action) (*arrangement.Arrangement, error) {
	logCtx := s.logger.WithField("arrangement_id", id).
		WithField("actor_id", action.Actor.ID).
		WithField("action", action.Kind)

	updated, err := s.repo.WithLock(ctx, id, func(a *arrangement.Arrangement) error {
		return arrangement.Apply(a, action, s.clock.Now())
	})
	if err != nil {
		logCtx.WithError(err).Info("Action refused")
		return nil, err
	}
	logCtx.WithField("state", updated.State).WithField("version", updated.Version).Info("Action applied")

	s.render(ctx, updated, logCtx)
	return updated, nil
}

func (s *ArrangementServiceImpl) Get(ctx context.Context, id uuid.UUID) (*arrangement.Arrangement, error) {
	return s.repo.Get(ctx, id)
}

func (s *ArrangementServiceImpl) Refresh(ctx context.Context, id uuid.UUID) (*arrangement.Arrangement, error) {
	a, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	s.render(ctx, a, s.logger.WithField("arrangement_id", id))
	return a, nil
}

// render failures are cosmetic: the committed state stands and the next tick repaints.
func (s *ArrangementServiceImpl) render(ctx context.Context, a *arrangement.Arrangement, logCtx *logrus.Entry) {
	remaining := s.renderer.FormatRemaining(a.Remaining(s.clock.Now()))
	if err := s.renderer.Render(ctx, a, remaining); err != nil {
		logCtx.WithError(err).Warn("Failed to render arrangement")
	}
}
