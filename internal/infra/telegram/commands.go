package telegram

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"arrangement_bot/internal/app"
	"arrangement_bot/internal/domain/arrangement"

	"gopkg.in/telebot.v3"
)

var errArrangeUsage = errors.New("usage: /arrange <initiator> <responder> <time> [| place | means | business]")

const arrangeUsage = "Формат: `/arrange <кто> <против кого> <время> [| место | средство | дело]`\n" +
	"Время: `HH:MM`, `DD.MM.YYYY HH:MM` или `HH:MM DD.MM.YYYY`.\n" +
	"Пример: `/arrange Ballas Vagos 21:10 | Грув-стрит | пешком | капт`"

// timeFormatReply echoes user input, so it is sent without any parse mode.
func timeFormatReply(text string) (string, *telebot.SendOptions) {
	reply := fmt.Sprintf("Не понял время %q.\nВремя: HH:MM, DD.MM.YYYY HH:MM или HH:MM DD.MM.YYYY.\n"+
		"Пример: /arrange Ballas Vagos 21:10 | Грув-стрит | пешком | капт", text)
	return reply, &telebot.SendOptions{ParseMode: telebot.ModeDefault}
}

// parseArrangeCommand splits the /arrange payload. Everything after the two party labels and
// before the first "|" is the time expression.
func parseArrangeCommand(payload string) (app.CreateRequest, error) {
	segments := strings.Split(payload, "|")
	head := strings.Fields(segments[0])
	if len(head) < 3 {
		return app.CreateRequest{}, errArrangeUsage
	}

	req := app.CreateRequest{
		InitiatingParty: head[0],
		RespondingParty: head[1],
		ScheduledText:   strings.Join(head[2:], " "),
	}

	topic := make([]string, 3)
	for i, segment := range segments[1:] {
		if i >= len(topic) {
			return app.CreateRequest{}, errArrangeUsage
		}
		topic[i] = strings.TrimSpace(segment)
	}
	req.Topic = arrangement.Topic{Place: topic[0], Means: topic[1], Business: topic[2]}
	return req, nil
}

// actorFromUser prefers the @username as display name since it doubles as a mention.
func actorFromUser(u *telebot.User) arrangement.Actor {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if u.Username != "" {
		name = "@" + u.Username
	}
	if name == "" {
		name = strconv.FormatInt(u.ID, 10)
	}
	return arrangement.Actor{ID: strconv.FormatInt(u.ID, 10), Name: name}
}

// describeError maps action errors to callback answers.
func describeError(err error) string {
	switch {
	case errors.Is(err, arrangement.ErrWrongState):
		return "Это действие уже неактуально."
	case errors.Is(err, arrangement.ErrForbidden):
		return "Откатить может только автор или тот, кто принял решение."
	case errors.Is(err, arrangement.ErrInvalidSize):
		return "Неизвестный формат."
	case errors.Is(err, arrangement.ErrAlreadyStarted):
		return "Забив уже начался."
	case errors.Is(err, arrangement.ErrNotFound):
		return "Забив не найден или уже завершён."
	default:
		return "Произошла ошибка."
	}
}
