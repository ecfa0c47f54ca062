package handlers

import (
	"context"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/telearr/telearr/internal/status"
)

// NewStatusHandler returns a handler for the /status command.
func NewStatusHandler(deps HandlerDeps) bot.HandlerFunc {
	return statusHandler{deps}.Handle
}

// NewStatusCallbackHandler returns the callback query handler for the status
// refresh button (data prefixed with "status:").
func NewStatusCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return statusHandler{deps}.HandleCallback
}

type statusHandler struct {
	deps HandlerDeps
}

func statusKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{{
		{Text: "🔄 Refresh", CallbackData: "status:refresh"},
	}}}
}

func (h statusHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "status")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Status handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	text, ok := h.deps.Status.Render()
	if !ok {
		if _, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: status.ErrorNotice}); err != nil {
			log.ErrorContext(ctx, "Failed to send status error notice", "error", err, "chat_id", chatID)
		}
		return
	}

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        text,
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: statusKeyboard(),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send status report", "error", err, "chat_id", chatID)
	}
}

func (h statusHandler) HandleCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "status_callback")

	q := update.CallbackQuery
	if q == nil {
		return
	}
	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: q.ID}); err != nil {
		log.WarnContext(ctx, "Failed to answer callback query", "error", err)
	}
	if q.Message.Message == nil {
		return
	}
	chatID := q.Message.Message.Chat.ID
	messageID := q.Message.Message.ID

	// Each refresh renders independently; a failure here must not disturb
	// the previously shown report beyond the error notice.
	text, ok := h.deps.Status.Render()
	if !ok {
		text = status.ErrorNotice
		if _, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{ChatID: chatID, MessageID: messageID, Text: text}); err != nil {
			log.ErrorContext(ctx, "Failed to edit status message", "error", err, "chat_id", chatID)
		}
		return
	}

	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        text,
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: statusKeyboard(),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to edit status report", "error", err, "chat_id", chatID)
	}
}
