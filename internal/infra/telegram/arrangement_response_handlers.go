// internal/infra/telegram/arrangement_response_handlers.go
package telegram

import (
	"context"
	"fmt"

	"arrangement_bot/internal/app"
	"arrangement_bot/internal/domain/arrangement"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

var actionAnswers = map[arrangement.ActionKind]string{
	arrangement.ActionAccept:   "Забив принят!",
	arrangement.ActionReject:   "Забив отклонён.",
	arrangement.ActionRollback: "Решение отменено.",
	arrangement.ActionJoin:     "Вы записались.",
	arrangement.ActionLeave:    "Вы отписались.",
}

// RegisterArrangementResponseHandlers wires the inline buttons rendered by Surface.
func RegisterArrangementResponseHandlers(ctx context.Context, b *telebot.Bot, arrangementService app.ArrangementService, baseLogger *logrus.Entry) {
	handlerLogger := baseLogger.WithField("handler_group", "arrangement_callbacks")

	endpoints := map[string]arrangement.ActionKind{
		uniqueAccept:   arrangement.ActionAccept,
		uniqueReject:   arrangement.ActionReject,
		uniqueRollback: arrangement.ActionRollback,
		uniqueJoin:     arrangement.ActionJoin,
		uniqueLeave:    arrangement.ActionLeave,
	}

	for unique, kind := range endpoints {
		kind := kind
		b.Handle("\f"+unique, func(c telebot.Context) error {
			args := c.Args() // <id>[|<size>]
			logCtx := handlerLogger.WithField("action", kind).WithField("sender_id", c.Sender().ID)

			action, id, err := parseActionCallback(kind, args, actorFromUser(c.Sender()))
			if err != nil {
				c.Bot().OnError(fmt.Errorf("invalid callback data %q: %w", c.Callback().Data, err), c)
				return c.Respond(&telebot.CallbackResponse{Text: "Ошибка обработки ответа."})
			}

			if _, err := arrangementService.SubmitAction(ctx, id, action); err != nil {
				logCtx.WithError(err).WithField("arrangement_id", id).Info("Callback action refused")
				return c.Respond(&telebot.CallbackResponse{Text: describeError(err), ShowAlert: true})
			}
			return c.Respond(&telebot.CallbackResponse{Text: actionAnswers[kind]})
		})
	}
}

func parseActionCallback(kind arrangement.ActionKind, args []string, actor arrangement.Actor) (arrangement.Action, uuid.UUID, error) {
	wantArgs := 1
	if kind == arrangement.ActionAccept {
		wantArgs = 2
	}
	if len(args) != wantArgs {
		return arrangement.Action{}, uuid.Nil, fmt.Errorf("expected %d arguments, got %d", wantArgs, len(args))
	}

	id, err := uuid.Parse(args[0])
	if err != nil {
		return arrangement.Action{}, uuid.Nil, fmt.Errorf("invalid arrangement id: %w", err)
	}

	action := arrangement.Action{Kind: kind, Actor: actor}
	if kind == arrangement.ActionAccept {
		// Validated again by the state machine; button data is user controlled.
		action.Size = arrangement.Size(args[1])
		if !action.Size.Valid() {
			return arrangement.Action{}, uuid.Nil, fmt.Errorf("%w: %q", arrangement.ErrInvalidSize, args[1])
		}
	}
	return action, id, nil
}
