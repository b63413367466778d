// internal/infra/scheduler/countdown.go
package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"arrangement_bot/internal/app"
	"arrangement_bot/internal/domain/announcement"
	"arrangement_bot/internal/domain/arrangement"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
)

// DefaultPollInterval is how often a countdown repaints the remaining time.
const DefaultPollInterval = 60 * time.Second

var (
	errNotAccepted     = errors.New("arrangement is not accepted")
	errAlreadyNotified = errors.New("due notification already sent")
)

// Countdown runs one goroutine per arrangement until it reaches a terminal outcome:
// either the due notification fired or the scheduled time passed without acceptance.
type Countdown struct {
	repo       arrangement.Repository
	renderer   announcement.Renderer
	notifier   app.Notifier
	clock      clockwork.Clock
	interval   time.Duration
	newBackOff func() backoff.BackOff
	logger     *logrus.Entry

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewCountdown(
	repo arrangement.Repository,
	renderer announcement.Renderer,
	notifier app.Notifier,
	clock clockwork.Clock,
	interval time.Duration,
	maxNotifyRetries uint64,
	logger *logrus.Entry,
) *Countdown {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Countdown{
		repo:     repo,
		renderer: renderer,
		notifier: notifier,
		clock:    clock,
		interval: interval,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 2 * time.Second
			b.MaxElapsedTime = 0
			return backoff.WithMaxRetries(b, maxNotifyRetries)
		},
		logger: logger.WithField("component", "countdown"),
		ctx:    ctx,
		cancel: cancel,
	}
}

// Start launches the countdown for id. Starting twice for the same id is harmless: the
// notified flag guarantees a single notification.
func (c *Countdown) Start(id uuid.UUID) {
	c.wg.Add(1)
	go c.run(id)
}

// Wait blocks until every running countdown has finished.
func (c *Countdown) Wait() {
	c.wg.Wait()
}

// Stop cancels all countdowns and waits for them. A store mutation already under way completes.
func (c *Countdown) Stop() {
	c.logger.Info("Stopping countdowns...")
	c.cancel()
	c.wg.Wait()
	c.logger.Info("Countdowns stopped.")
}

func (c *Countdown) run(id uuid.UUID) {
	defer c.wg.Done()
	logCtx := c.logger.WithField("arrangement_id", id)
	logCtx.Debug("Countdown started")

	for {
		// Sampled before the read: any action committed after it was checked against a later instant.
		now := c.clock.Now()
		a, err := c.repo.Get(c.ctx, id)
		if err != nil {
			if c.ctx.Err() == nil {
				logCtx.WithError(err).Warn("Countdown stopped: arrangement unavailable")
			}
			return
		}

		remaining := a.Remaining(now)
		if remaining <= 0 {
			c.expire(id, logCtx)
			return
		}

		if err := c.renderer.Render(c.ctx, a, c.renderer.FormatRemaining(remaining)); err != nil {
			logCtx.WithError(err).Warn("Countdown render failed")
		}

		wait := c.interval
		if remaining < wait {
			wait = remaining
		}
		select {
		case <-c.ctx.Done():
			logCtx.Debug("Countdown cancelled")
			return
		case <-c.clock.After(wait):
		}
	}
}

// expire decides the outcome under the lock only; the snapshot read by the loop may predate
// an action that committed just before the scheduled instant.
func (c *Countdown) expire(id uuid.UUID, logCtx *logrus.Entry) {
	due, err := c.repo.WithLock(c.ctx, id, func(w *arrangement.Arrangement) error {
		if w.State != arrangement.StateAccepted {
			return errNotAccepted
		}
		if w.Notified {
			return errAlreadyNotified
		}
		w.Notified = true
		return nil
	})
	switch {
	case errors.Is(err, errNotAccepted):
		logCtx.Info("Arrangement expired without acceptance")
		return
	case errors.Is(err, errAlreadyNotified):
		logCtx.Debug("Due notification already sent elsewhere")
		return
	case err != nil:
		logCtx.WithError(err).Error("Failed to mark arrangement as notified")
		return
	}

	notify := func() error {
		return c.notifier.Notify(c.ctx, due)
	}
	onRetry := func(err error, next time.Duration) {
		logCtx.WithError(err).WithField("retry_in", next).Warn("Due notification failed, retrying")
	}
	if err := backoff.RetryNotify(notify, backoff.WithContext(c.newBackOff(), c.ctx), onRetry); err != nil {
		logCtx.WithError(err).Error("Due notification permanently failed")
		return
	}
	logCtx.Info("Countdown finished with due notification")
}
