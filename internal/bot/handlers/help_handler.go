package handlers

import (
	"context"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewHelpHandler returns a handler for the /help command.
func NewHelpHandler(deps HandlerDeps) bot.HandlerFunc {
	return helpHandler{deps}.Handle
}

// helpHandler processes the /help command using injected dependencies.
type helpHandler struct {
	deps HandlerDeps
}

func (h helpHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "help")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Help handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	log.InfoContext(ctx, "Handling /help command", "chat_id", update.Message.Chat.ID, "user_id", update.Message.From.ID)

	var sb strings.Builder
	sb.WriteString("🤖 Available commands:\n\n")
	if h.deps.Media.MoviesEnabled() {
		sb.WriteString("/movie <title> - search and add a movie\n")
		sb.WriteString("/allmovies - list managed movies\n")
	}
	if h.deps.Media.SeriesEnabled() {
		sb.WriteString("/series <title> - search and add a series\n")
		sb.WriteString("/allseries - list managed series\n")
	}
	if h.deps.Media.MusicEnabled() {
		sb.WriteString("/music <artist> - search and add an artist\n")
		sb.WriteString("/allmusic - list managed artists\n")
	}
	sb.WriteString("/delete - remove media from the library\n")
	if h.deps.Transmission != nil {
		sb.WriteString("/transmission - toggle Transmission alternative speed\n")
	}
	if h.deps.SABnzbd != nil {
		sb.WriteString("/sabnzbd - manage the SABnzbd download queue\n")
	}
	sb.WriteString("/status - system status report\n")
	if update.Message.From.ID == h.deps.Config.Telegram.AdminUserID {
		sb.WriteString("/requests - recent media requests\n")
		sb.WriteString("/settings - toggle service availability\n")
	}
	if h.deps.Config.Telegram.ChatPassword != "" {
		sb.WriteString("/auth <password> - authorize this chat\n")
	}
	sb.WriteString("/help - this message")

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: update.Message.Chat.ID, Text: sb.String()})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send help message", "error", err, "chat_id", update.Message.Chat.ID)
	}
}
