package telegram

// Client defines an interface for sending plain-text messages via a Telegram bot.
// This keeps the scheduler independent of the bot library.
type Client interface {
	SendMessage(recipientChatID int64, text string) error
}
