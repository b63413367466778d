// internal/infra/telegram/surface.go
package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"arrangement_bot/internal/domain/arrangement"
	domainTelegram "arrangement_bot/internal/domain/telegram"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

// Callback endpoints. Button data is "<arrangement id>[|<size>]".
const (
	uniqueAccept   = "accept"
	uniqueReject   = "reject"
	uniqueRollback = "rollback"
	uniqueJoin     = "join"
	uniqueLeave    = "leave"
)

// post is the message an arrangement is rendered into.
type post struct {
	mu      sync.Mutex
	msg     *telebot.StoredMessage
	version uint64
}

// Surface renders arrangements as one editable chat message each and delivers due broadcasts.
type Surface struct {
	client domainTelegram.Client
	loc    *time.Location
	logger *logrus.Entry

	mu    sync.Mutex
	posts map[uuid.UUID]*post
}

func NewSurface(client domainTelegram.Client, loc *time.Location, logger *logrus.Entry) *Surface {
	return &Surface{
		client: client,
		loc:    loc,
		logger: logger.WithField("component", "telegram_surface"),
		posts:  make(map[uuid.UUID]*post),
	}
}

// FormatRemaining rounds up to whole minutes, so "0" is only shown once the time has come.
func (s *Surface) FormatRemaining(d time.Duration) string {
	if d <= 0 {
		return "уже начался"
	}
	minutes := int((d + time.Minute - 1) / time.Minute)
	hours, minutes := minutes/60, minutes%60
	if hours == 0 {
		return fmt.Sprintf("%d мин", minutes)
	}
	return fmt.Sprintf("%d ч %02d мин", hours, minutes)
}

// Render posts the arrangement on first use and edits that message afterwards. A snapshot older
// than the last rendered one is dropped so a slow tick cannot overwrite a newer decision.
func (s *Surface) Render(_ context.Context, a *arrangement.Arrangement, remaining string) error {
	p := s.postFor(a.ID)
	p.mu.Lock()
	defer p.mu.Unlock()

	if a.Version < p.version {
		s.logger.WithField("arrangement_id", a.ID).
			WithField("version", a.Version).
			WithField("rendered_version", p.version).
			Debug("Skipping stale render")
		return nil
	}

	text := s.renderText(a, remaining)
	options := &telebot.SendOptions{ReplyMarkup: renderKeyboard(a), ParseMode: telebot.ModeDefault}

	if p.msg == nil {
		msg, err := s.client.SendMessage(a.ChatID, text, options)
		if err != nil {
			return fmt.Errorf("failed to post arrangement %s: %w", a.ID, err)
		}
		p.msg = &telebot.StoredMessage{MessageID: strconv.Itoa(msg.ID), ChatID: a.ChatID}
	} else if err := s.client.EditMessage(p.msg, text, options); err != nil && !isNotModified(err) {
		return fmt.Errorf("failed to edit arrangement %s: %w", a.ID, err)
	}

	p.version = a.Version
	return nil
}

// Send delivers broadcast content, appending the mention targets.
func (s *Surface) Send(_ context.Context, chatID int64, content string, targets []string) error {
	text := content
	if len(targets) > 0 {
		text += "\n\n" + strings.Join(targets, " ")
	}
	_, err := s.client.SendMessage(chatID, text, &telebot.SendOptions{ParseMode: telebot.ModeDefault})
	return err
}

// Forget drops the message binding of an evicted arrangement.
func (s *Surface) Forget(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.posts, id)
}

func (s *Surface) postFor(id uuid.UUID) *post {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.posts[id]
	if !ok {
		p = &post{}
		s.posts[id] = p
	}
	return p
}

func (s *Surface) renderText(a *arrangement.Arrangement, remaining string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "⚔️ Забив: %s против %s\n", a.InitiatingParty, a.RespondingParty)
	fmt.Fprintf(&b, "⏰ Время: %s (%s)\n", a.ScheduledAt.In(s.loc).Format("15:04 02.01.2006"), remaining)
	if a.Topic.Place != "" {
		fmt.Fprintf(&b, "📍 Место: %s\n", a.Topic.Place)
	}
	if a.Topic.Means != "" {
		fmt.Fprintf(&b, "🚗 Средство: %s\n", a.Topic.Means)
	}
	if a.Topic.Business != "" {
		fmt.Fprintf(&b, "💼 Дело: %s\n", a.Topic.Business)
	}

	switch a.State {
	case arrangement.StateAccepted:
		fmt.Fprintf(&b, "📋 Статус: ✅ принят %s (%s) в %s\n", a.DecidedBy.Name, a.Size, a.DecidedAt.In(s.loc).Format("15:04"))
	case arrangement.StateRejected:
		fmt.Fprintf(&b, "📋 Статус: ❌ отклонён %s в %s\n", a.DecidedBy.Name, a.DecidedAt.In(s.loc).Format("15:04"))
	default:
		b.WriteString("📋 Статус: ожидает ответа\n")
	}

	if len(a.Participants) == 0 {
		b.WriteString("👥 Участники: никто не записался\n")
	} else {
		names := make([]string, 0, len(a.Participants))
		for _, p := range a.Participants {
			names = append(names, p.Name)
		}
		fmt.Fprintf(&b, "👥 Участники (%d): %s\n", len(names), strings.Join(names, ", "))
	}

	fmt.Fprintf(&b, "Автор: %s", a.Author.Name)
	return b.String()
}

func renderKeyboard(a *arrangement.Arrangement) *telebot.ReplyMarkup {
	markup := &telebot.ReplyMarkup{}
	id := a.ID.String()

	var rows []telebot.Row
	if a.State == arrangement.StatePending {
		sizes := make([]telebot.Btn, 0, len(arrangement.AllowedSizes))
		for _, size := range arrangement.AllowedSizes {
			sizes = append(sizes, markup.Data("✅ "+string(size), uniqueAccept, id, string(size)))
		}
		rows = append(rows, markup.Row(sizes...), markup.Row(markup.Data("❌ Отказ", uniqueReject, id)))
	} else {
		rows = append(rows, markup.Row(markup.Data("↩️ Откатить", uniqueRollback, id)))
	}
	rows = append(rows, markup.Row(
		markup.Data("➕ Записаться", uniqueJoin, id),
		markup.Data("➖ Отписаться", uniqueLeave, id),
	))

	markup.Inline(rows...)
	return markup
}

func isNotModified(err error) bool {
	return strings.Contains(err.Error(), "message is not modified")
}
