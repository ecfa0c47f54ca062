// Package notifier delivers typed notifications to Telegram chats and,
// for admin-level events, to any configured shoutrrr channels. Delivery
// failures are logged, never propagated.
package notifier

import (
	"context"
	"log/slog"

	"github.com/containrrr/shoutrrr"
	tgbot "github.com/go-telegram/bot"
)

// Kind classifies a notification.
type Kind string

// Notification kinds.
const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
	KindAdmin   Kind = "admin"
)

func (k Kind) prefix() string {
	switch k {
	case KindSuccess:
		return "✅ "
	case KindWarning:
		return "⚠️ "
	case KindError:
		return "❌ "
	case KindAdmin:
		return "🔔 "
	default:
		return "ℹ️ "
	}
}

// Notification is the message envelope handed to the dispatcher.
type Notification struct {
	Kind        Kind
	Message     string
	ChatIDs     []int64
	NotifyAdmin bool
}

// Notifier dispatches notifications through the Telegram bot and optional
// shoutrrr URLs.
type Notifier struct {
	logger       *slog.Logger
	bot          *tgbot.Bot
	adminChatID  int64
	shoutrrrURLs []string
}

// New builds a dispatcher. adminChatID may be zero to disable admin copies;
// shoutrrrURLs may be empty.
func New(logger *slog.Logger, bot *tgbot.Bot, adminChatID int64, shoutrrrURLs []string) *Notifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Notifier{
		logger:       logger.With("component", "notifier"),
		bot:          bot,
		adminChatID:  adminChatID,
		shoutrrrURLs: shoutrrrURLs,
	}
}

// Send delivers one notification to its target chats, the admin chat when
// requested, and the external channels for admin-level events.
func (n *Notifier) Send(ctx context.Context, notification Notification) {
	text := notification.Kind.prefix() + notification.Message

	for _, chatID := range notification.ChatIDs {
		n.sendToChat(ctx, chatID, text)
	}

	if (notification.NotifyAdmin || notification.Kind == KindAdmin) && n.adminChatID != 0 {
		n.sendToChat(ctx, n.adminChatID, text)
		n.sendExternal(text)
	}
}

// NotifyAdmin is a shorthand for an admin-only notification.
func (n *Notifier) NotifyAdmin(ctx context.Context, message string) {
	n.Send(ctx, Notification{Kind: KindAdmin, Message: message})
}

func (n *Notifier) sendToChat(ctx context.Context, chatID int64, text string) {
	if n.bot == nil {
		return
	}

	// Notifications carry arbitrary user-supplied titles, so they go out as
	// plain text rather than markup.
	_, err := n.bot.SendMessage(ctx, &tgbot.SendMessageParams{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		n.logger.Error("Failed to send notification", "chat_id", chatID, "error", err)
	}
}

func (n *Notifier) sendExternal(text string) {
	for _, url := range n.shoutrrrURLs {
		if err := shoutrrr.Send(url, text); err != nil {
			n.logger.Error("Failed to send external notification", "error", err)
		}
	}
}
