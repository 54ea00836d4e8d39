package notifier

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog/log"
)

// Subscriptions stores which chats receive alerts
type Subscriptions interface {
	Subscribe(ctx context.Context, chatID, userID int64) error
	Unsubscribe(ctx context.Context, chatID int64) (bool, error)
}

const (
	replyStarted       = "✅ Subscribed. You will receive pre-explosion alerts in this chat.\nSend /stop to unsubscribe."
	replyStopped       = "🔕 Unsubscribed. Send /start to resume alerts."
	replyNotSubscribed = "This chat is not subscribed. Send /start to receive alerts."
	replyUnavailable   = "⚠️ Subscriptions are unavailable right now, please try again later."
	replyHelp          = "Commands:\n/start - receive pre-explosion alerts\n/stop - stop alerts"
)

// HandleCommand applies a bot command and returns the reply. Non-command messages get no reply.
func HandleCommand(ctx context.Context, subs Subscriptions, msg *tgbotapi.Message) string {
	if msg == nil || !msg.IsCommand() || msg.Chat == nil {
		return ""
	}

	chatID := msg.Chat.ID
	logger := log.With().Str("component", "bot").Int64("chat_id", chatID).Logger()

	switch msg.Command() {
	case "start":
		var userID int64
		if msg.From != nil {
			userID = msg.From.ID
		}
		if err := subs.Subscribe(ctx, chatID, userID); err != nil {
			logger.Error().Err(err).Msg("Subscribe failed")
			return replyUnavailable
		}
		logger.Info().Int64("user_id", userID).Msg("Chat subscribed")
		return replyStarted

	case "stop":
		removed, err := subs.Unsubscribe(ctx, chatID)
		if err != nil {
			logger.Error().Err(err).Msg("Unsubscribe failed")
			return replyUnavailable
		}
		if !removed {
			return replyNotSubscribed
		}
		logger.Info().Msg("Chat unsubscribed")
		return replyStopped

	default:
		return replyHelp
	}
}
