package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

const recentRequestsLimit = 20

// NewRequestsHandler returns a handler for the admin /requests command, which
// lists the most recent media requests issued through the bot.
func NewRequestsHandler(deps HandlerDeps) bot.HandlerFunc {
	return requestsHandler{deps}.Handle
}

type requestsHandler struct {
	deps HandlerDeps
}

func (h requestsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "requests")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Requests handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	requests, err := h.deps.Store.RecentRequests(ctx, recentRequestsLimit)
	if err != nil {
		log.ErrorContext(ctx, "Failed to load recent requests", "error", err)
		if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "❌ Could not load the request history."}); err != nil {
			log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
		}
		return
	}

	if len(requests) == 0 {
		if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "No media requests recorded yet."}); err != nil {
			log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
		}
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📜 *Last %d requests*\n\n", len(requests))
	for _, r := range requests {
		fmt.Fprintf(&sb, "• %s %q by user %d, %s\n", r.Kind, r.Title, r.UserID, humanize.Time(r.RequestedAt))
	}

	_, err = b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      sb.String(),
		ParseMode: models.ParseModeMarkdownV1,
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send request history", "error", err, "chat_id", chatID)
	}
}
