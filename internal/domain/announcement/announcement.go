// Package announcement declares the collaborators the core renders and notifies through.
package announcement

import (
	"context"
	"time"

	"arrangement_bot/internal/domain/arrangement"
)

// Renderer projects a snapshot onto the visible surface. It must not mutate the arrangement.
type Renderer interface {
	// FormatRemaining returns a display string, distinct for every whole minute.
	FormatRemaining(d time.Duration) string
	Render(ctx context.Context, a *arrangement.Arrangement, remaining string) error
}

// TargetResolver maps a free-text party label to opaque mention targets.
type TargetResolver interface {
	ResolveTargets(partyLabel string) []string
}

// Channel delivers broadcast content to the chat an arrangement lives in.
type Channel interface {
	Send(ctx context.Context, chatID int64, content string, targets []string) error
}
