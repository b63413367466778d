package app

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"arrangement_bot/internal/domain/arrangement"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

type sentMessage struct {
	chatID  int64
	content string
	targets []string
}

type fakeChannel struct {
	sent []sentMessage
	err  error
}

func (c *fakeChannel) Send(_ context.Context, chatID int64, content string, targets []string) error {
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, sentMessage{chatID: chatID, content: content, targets: targets})
	return nil
}

type mapTargets map[string][]string

func (m mapTargets) ResolveTargets(label string) []string {
	return m[label]
}

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func acceptedArrangement(t *testing.T) *arrangement.Arrangement {
	t.Helper()

	now := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)
	a := arrangement.New(uuid.New(), -100500, arrangement.Actor{ID: "1", Name: "@boss"}, "Ballas", "Vagos", now.Add(time.Hour),
		arrangement.Topic{Place: "Grove Street", Business: "capt"}, now)
	require.NoError(t, arrangement.Apply(a, arrangement.Action{
		Kind:  arrangement.ActionAccept,
		Actor: arrangement.Actor{ID: "2", Name: "@rival"},
		Size:  arrangement.Size4x4,
	}, now))
	return a
}

func TestNotificationDispatcherNotify(t *testing.T) {
	t.Parallel()

	channel := &fakeChannel{}
	targets := mapTargets{
		"Ballas": {"@ballas_lead", "@boss"},
		"Vagos":  {"@vagos_lead"},
	}
	d := NewNotificationDispatcher(channel, targets, testLogger())
	a := acceptedArrangement(t)

	require.NoError(t, d.Notify(context.Background(), a))
	require.Len(t, channel.sent, 1)

	msg := channel.sent[0]
	require.Equal(t, a.ChatID, msg.chatID)
	require.Equal(t, []string{"@boss", "@ballas_lead", "@vagos_lead"}, msg.targets)
	require.Contains(t, msg.content, "Ballas против Vagos")
	require.Contains(t, msg.content, "Дело: capt")
	require.Contains(t, msg.content, "Место: Grove Street")
	require.Contains(t, msg.content, "Формат: 4x4")
	require.Contains(t, msg.content, "Принял: @rival")
}

func TestNotificationDispatcherWithoutTopicOrResolver(t *testing.T) {
	t.Parallel()

	channel := &fakeChannel{}
	d := NewNotificationDispatcher(channel, nil, testLogger())
	a := acceptedArrangement(t)
	a.Topic = arrangement.Topic{}

	require.NoError(t, d.Notify(context.Background(), a))
	require.Equal(t, []string{"@boss"}, channel.sent[0].targets)
	require.NotContains(t, channel.sent[0].content, "Дело:")
}

func TestNotificationDispatcherPropagatesFailure(t *testing.T) {
	t.Parallel()

	errDown := errors.New("down")
	d := NewNotificationDispatcher(&fakeChannel{err: errDown}, nil, testLogger())

	require.ErrorIs(t, d.Notify(context.Background(), acceptedArrangement(t)), errDown)
}
