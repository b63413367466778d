// internal/app/notification_dispatcher.go
package app

import (
	"context"
	"fmt"
	"strings"

	"arrangement_bot/internal/domain/announcement"
	"arrangement_bot/internal/domain/arrangement"

	"github.com/sirupsen/logrus"
)

// Notifier sends the "arrangement is now due" broadcast. It keeps no state: callers guarantee
// that it runs at most once per arrangement.
type Notifier interface {
	Notify(ctx context.Context, a *arrangement.Arrangement) error
}

type NotificationDispatcher struct {
	channel announcement.Channel
	targets announcement.TargetResolver
	logger  *logrus.Entry
}

func NewNotificationDispatcher(channel announcement.Channel, targets announcement.TargetResolver, logger *logrus.Entry) *NotificationDispatcher {
	return &NotificationDispatcher{
		channel: channel,
		targets: targets,
		logger:  logger.WithField("component", "notification_dispatcher"),
	}
}

func (d *NotificationDispatcher) Notify(ctx context.Context, a *arrangement.Arrangement) error {
	content := DueMessage(a)
	targets := d.collectTargets(a)

	logCtx := d.logger.WithField("arrangement_id", a.ID).WithField("targets", len(targets))
	if err := d.channel.Send(ctx, a.ChatID, content, targets); err != nil {
		logCtx.WithError(err).Warn("Failed to send due notification")
		return fmt.Errorf("send due notification for %s: %w", a.ID, err)
	}
	logCtx.Info("Due notification sent")
	return nil
}

// collectTargets returns the author followed by both parties' groups, without duplicates.
func (d *NotificationDispatcher) collectTargets(a *arrangement.Arrangement) []string {
	var targets []string
	seen := make(map[string]bool)
	add := func(items ...string) {
		for _, item := range items {
			if item == "" || seen[item] {
				continue
			}
			seen[item] = true
			targets = append(targets, item)
		}
	}

	add(a.Author.Name)
	if d.targets != nil {
		add(d.targets.ResolveTargets(a.InitiatingParty)...)
		add(d.targets.ResolveTargets(a.RespondingParty)...)
	}
	return targets
}

// DueMessage builds the broadcast text for an arrangement whose time has come.
func DueMessage(a *arrangement.Arrangement) string {
	var b strings.Builder
	b.WriteString("⚔️ Время забива!\n")
	fmt.Fprintf(&b, "%s против %s\n", a.InitiatingParty, a.RespondingParty)
	if a.Topic.Business != "" {
		fmt.Fprintf(&b, "Дело: %s\n", a.Topic.Business)
	}
	if a.Topic.Place != "" {
		fmt.Fprintf(&b, "Место: %s\n", a.Topic.Place)
	}
	if a.Size != arrangement.SizeUnset {
		fmt.Fprintf(&b, "Формат: %s\n", a.Size)
	}
	if a.DecidedBy != nil {
		fmt.Fprintf(&b, "Принял: %s\n", a.DecidedBy.Name)
	}
	fmt.Fprintf(&b, "Автор: %s", a.Author.Name)
	return b.String()
}
