package telegram

import "gopkg.in/telebot.v3"

// Client defines an interface for sending and editing messages via a Telegram bot.
// This helps in decoupling the surface from the specific bot library.
type Client interface {
	SendMessage(chatID int64, text string, options *telebot.SendOptions) (*telebot.Message, error)
	EditMessage(msg telebot.Editable, text string, options *telebot.SendOptions) error
}
