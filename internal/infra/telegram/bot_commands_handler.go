// internal/infra/telegram/bot_commands_handler.go
package telegram

import (
	"context"
	"errors"
	"strings"

	"arrangement_bot/internal/app"
	"arrangement_bot/internal/domain/schedule"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/telebot.v3"
)

func RegisterBotCommands(
	ctx context.Context,
	b *telebot.Bot,
	arrangementService app.ArrangementService,
	baseLogger *logrus.Entry,
) {
	commandLogger := baseLogger.WithField("handler_group", "commands")

	b.Handle("/start", func(c telebot.Context) error {
		commandLogger.WithField("command", "/start").WithField("sender_id", c.Sender().ID).Info("Processing /start command")
		return c.Send("Привет! Я помогаю договариваться о забивах. Используйте /help для списка команд.")
	})

	b.Handle("/help", func(c telebot.Context) error {
		commandLogger.WithField("command", "/help").WithField("sender_id", c.Sender().ID).Info("Processing /help command")

		var helpText strings.Builder
		helpText.WriteString("Доступные команды:\n\n")
		helpText.WriteString(arrangeUsage)
		helpText.WriteString("\n - Предложить забив. Под сообщением появятся кнопки: принять с форматом, отказаться, откатить решение, записаться.\n\n")
		helpText.WriteString("`/status <id>`\n - Обновить сообщение забива.\n\n")
		helpText.WriteString("`/help`\n - Показать это справочное сообщение.")
		return c.Send(helpText.String(), &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
	})

	arrange := func(c telebot.Context) error {
		logCtx := commandLogger.WithField("command", "/arrange").
			WithField("sender_id", c.Sender().ID).
			WithField("chat_id", c.Chat().ID)
		logCtx.Info("Processing /arrange command")

		req, err := parseArrangeCommand(c.Message().Payload)
		if err != nil {
			logCtx.WithError(err).Info("Invalid /arrange payload")
			return c.Send(arrangeUsage, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
		}
		req.ChatID = c.Chat().ID
		req.Author = actorFromUser(c.Sender())

		a, err := arrangementService.CreateArrangement(ctx, req)
		switch {
		case errors.Is(err, schedule.ErrTimeFormat):
			text, options := timeFormatReply(req.ScheduledText)
			return c.Send(text, options)
		case errors.Is(err, app.ErrPartyRequired):
			return c.Send(arrangeUsage, &telebot.SendOptions{ParseMode: telebot.ModeMarkdown})
		case err != nil:
			logCtx.WithError(err).Error("Failed to create arrangement")
			return c.Send("Не удалось создать забив. Попробуйте позже.")
		}

		logCtx.WithField("arrangement_id", a.ID).Info("Arrangement announced")
		return nil
	}
	b.Handle("/arrange", arrange)
	b.Handle("/zabiv", arrange)

	b.Handle("/status", func(c telebot.Context) error {
		logCtx := commandLogger.WithField("command", "/status").WithField("sender_id", c.Sender().ID)

		args := c.Args()
		if len(args) != 1 {
			return c.Send("Использование: /status <id>")
		}
		id, err := uuid.Parse(args[0])
		if err != nil {
			return c.Send("Некорректный идентификатор забива.")
		}

		if _, err := arrangementService.Refresh(ctx, id); err != nil {
			logCtx.WithError(err).WithField("arrangement_id", id).Info("Refresh refused")
			return c.Send(describeError(err))
		}
		return nil
	})
}
