package scheduler

import (
	"context"
	"fmt"
	"time"

	"arrangement_bot/internal/domain/arrangement"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// RetentionJanitor evicts arrangements that finished long enough ago. Until then a finished
// arrangement stays readable, so late button presses are answered with ErrAlreadyStarted
// instead of ErrNotFound.
type RetentionJanitor struct {
	cronEngine *cron.Cron
	repo       arrangement.Repository
	clock      clockwork.Clock
	retention  time.Duration
	cronSpec   string
	onEvict    func(id uuid.UUID)
	logger     *logrus.Entry
}

func NewRetentionJanitor(
	repo arrangement.Repository,
	clock clockwork.Clock,
	loc *time.Location,
	retention time.Duration,
	cronSpec string, // e.g., "*/10 * * * *" (every 10 minutes)
	onEvict func(id uuid.UUID),
	logger *logrus.Entry,
) *RetentionJanitor {
	return &RetentionJanitor{
		cronEngine: cron.New(cron.WithLocation(loc)),
		repo:       repo,
		clock:      clock,
		retention:  retention,
		cronSpec:   cronSpec,
		onEvict:    onEvict,
		logger:     logger.WithField("component", "retention_janitor"),
	}
}

func (j *RetentionJanitor) Start() error {
	j.logger.Info("Starting retention janitor...")

	_, err := j.cronEngine.AddFunc(j.cronSpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := j.Sweep(ctx); err != nil {
			j.logger.WithError(err).Error("Retention sweep failed")
		}
	})
	if err != nil {
		return fmt.Errorf("could not add retention sweep job %q: %w", j.cronSpec, err)
	}

	j.cronEngine.Start()
	j.logger.WithField("cron_spec", j.cronSpec).Info("Retention janitor started.")
	return nil
}

// Sweep evicts every arrangement whose scheduled time is more than the retention ago.
func (j *RetentionJanitor) Sweep(ctx context.Context) (int, error) {
	all, err := j.repo.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list arrangements: %w", err)
	}

	cutoff := j.clock.Now().Add(-j.retention)
	evicted := 0
	for _, a := range all {
		if !a.ScheduledAt.Before(cutoff) {
			continue
		}
		if err := j.repo.Delete(ctx, a.ID); err != nil {
			j.logger.WithError(err).WithField("arrangement_id", a.ID).Warn("Failed to evict arrangement")
			continue
		}
		if j.onEvict != nil {
			j.onEvict(a.ID)
		}
		evicted++
	}

	if evicted > 0 {
		j.logger.WithField("evicted", evicted).Info("Evicted finished arrangements")
	}
	return evicted, nil
}

func (j *RetentionJanitor) Stop() {
	j.logger.Info("Stopping retention janitor...")
	ctx := j.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	j.logger.Info("Retention janitor gracefully stopped.")
}
