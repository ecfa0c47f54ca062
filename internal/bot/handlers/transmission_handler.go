package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewTransmissionHandler returns a handler for the /transmission command.
// It reports the client state and offers alternative speed toggles.
func NewTransmissionHandler(deps HandlerDeps) bot.HandlerFunc {
	return transmissionHandler{deps}.Handle
}

// NewTransmissionCallbackHandler returns the callback query handler for the
// alternative speed buttons (data prefixed with "tm:").
func NewTransmissionCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return transmissionHandler{deps}.HandleCallback
}

type transmissionHandler struct {
	deps HandlerDeps
}

func (h transmissionHandler) statusText(ctx context.Context) string {
	st := h.deps.Transmission.Status(ctx)

	var sb strings.Builder
	sb.WriteString("🚦 *Transmission*\n\n")
	if !st.Connected {
		sb.WriteString("❌ Not reachable")
		if st.Error != "" {
			fmt.Fprintf(&sb, ": %s", st.Error)
		}
		return sb.String()
	}

	fmt.Fprintf(&sb, "Version: %s\n", st.Version)
	if st.AltSpeedEnabled {
		sb.WriteString("Alternative speed: 🐢 enabled")
	} else {
		sb.WriteString("Alternative speed: 🚀 disabled")
	}
	return sb.String()
}

func transmissionKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{{
		{Text: "🐢 Slow mode", CallbackData: "tm:alt:on"},
		{Text: "🚀 Normal mode", CallbackData: "tm:alt:off"},
	}}}
}

func (h transmissionHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "transmission")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Transmission handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	if h.deps.Transmission == nil {
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "Transmission is not enabled on this bot."})
		if err != nil {
			log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
		}
		return
	}

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        h.statusText(ctx),
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: transmissionKeyboard(),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send Transmission status", "error", err, "chat_id", chatID)
	}
}

func (h transmissionHandler) HandleCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "transmission_callback")

	q := update.CallbackQuery
	if q == nil {
		return
	}
	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: q.ID}); err != nil {
		log.WarnContext(ctx, "Failed to answer callback query", "error", err)
	}
	if q.Message.Message == nil || h.deps.Transmission == nil {
		return
	}
	chatID := q.Message.Message.Chat.ID
	messageID := q.Message.Message.ID

	var (
		enabled bool
		label   string
	)
	switch q.Data {
	case "tm:alt:on":
		enabled, label = true, "🐢 Alternative speed enabled."
	case "tm:alt:off":
		enabled, label = false, "🚀 Alternative speed disabled."
	default:
		log.WarnContext(ctx, "Unknown callback data", "data", q.Data)
		return
	}

	if !h.deps.Transmission.SetAltSpeed(ctx, enabled) {
		label = "❌ Could not change the Transmission speed mode."
	}

	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        h.statusText(ctx) + "\n\n" + label,
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: transmissionKeyboard(),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to edit Transmission status", "error", err, "chat_id", chatID)
	}
}
