package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewAuthHandler returns a handler for the /auth command. A correct password
// persists the chat as authorized so every member may use media commands.
func NewAuthHandler(deps HandlerDeps) bot.HandlerFunc {
	return authHandler{deps}.Handle
}

type authHandler struct {
	deps HandlerDeps
}

func (h authHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "auth")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Auth handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	chatID := update.Message.Chat.ID
	userID := update.Message.From.ID

	reply := func(text string) {
		if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text}); err != nil {
			log.ErrorContext(ctx, "Failed to send auth reply", "error", err, "chat_id", chatID)
		}
	}

	if h.deps.Config.Telegram.ChatPassword == "" {
		reply("No chat password is configured. This chat does not need authorization.")
		return
	}

	authorized, err := h.deps.Store.IsChatAuthorized(ctx, chatID)
	if err != nil {
		log.ErrorContext(ctx, "Failed to check chat authorization", "error", err, "chat_id", chatID)
	}
	if authorized {
		reply("✅ This chat is already authorized.")
		return
	}

	parts := strings.Fields(update.Message.Text)
	if len(parts) < 2 {
		reply("Usage: /auth <password>")
		return
	}

	if parts[1] != h.deps.Config.Telegram.ChatPassword {
		log.WarnContext(ctx, "Wrong chat password", "chat_id", chatID, "user_id", userID)
		reply("❌ Wrong password.")
		return
	}

	name := update.Message.Chat.Title
	if name == "" {
		name = update.Message.Chat.Username
	}
	if err := h.deps.Store.AuthorizeChat(ctx, chatID, name); err != nil {
		log.ErrorContext(ctx, "Failed to persist chat authorization", "error", err, "chat_id", chatID)
		reply("❌ Something went wrong while authorizing this chat. Please try again.")
		return
	}

	log.InfoContext(ctx, "Chat authorized", "chat_id", chatID, "user_id", userID)
	reply("🔓 Chat authorized. You can now use the media commands, see /help.")
	h.deps.Notifier.NotifyAdmin(ctx, fmt.Sprintf("Chat %d (%s) was authorized by user %d.", chatID, name, userID))
}
