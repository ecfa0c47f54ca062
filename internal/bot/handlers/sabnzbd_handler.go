package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// NewSABnzbdHandler returns a handler for the /sabnzbd command. It shows the
// download queue and offers pause/resume and speed limit presets.
func NewSABnzbdHandler(deps HandlerDeps) bot.HandlerFunc {
	return sabnzbdHandler{deps}.Handle
}

// NewSABnzbdCallbackHandler returns the callback query handler for the queue
// control buttons (data prefixed with "sab:").
func NewSABnzbdCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return sabnzbdHandler{deps}.HandleCallback
}

type sabnzbdHandler struct {
	deps HandlerDeps
}

func (h sabnzbdHandler) queueText(ctx context.Context) string {
	queue := h.deps.SABnzbd.Queue(ctx)

	var sb strings.Builder
	sb.WriteString("📥 *SABnzbd queue*\n\n")
	fmt.Fprintf(&sb, "Active downloads: %d\n", queue.Active)
	fmt.Fprintf(&sb, "Queued items: %d\n", queue.Queued)
	fmt.Fprintf(&sb, "Speed: %s\n", queue.Speed)
	fmt.Fprintf(&sb, "Remaining: %s", queue.Size)
	return sb.String()
}

func sabnzbdKeyboard() *models.InlineKeyboardMarkup {
	return &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{
		{
			{Text: "⏸ Pause", CallbackData: "sab:pause"},
			{Text: "▶️ Resume", CallbackData: "sab:resume"},
		},
		{
			{Text: "25%", CallbackData: "sab:speed:25"},
			{Text: "50%", CallbackData: "sab:speed:50"},
			{Text: "100%", CallbackData: "sab:speed:100"},
		},
	}}
}

func (h sabnzbdHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "sabnzbd")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "SABnzbd handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	if h.deps.SABnzbd == nil {
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: "SABnzbd is not enabled on this bot."})
		if err != nil {
			log.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
		}
		return
	}

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        h.queueText(ctx),
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: sabnzbdKeyboard(),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send SABnzbd queue", "error", err, "chat_id", chatID)
	}
}

func (h sabnzbdHandler) HandleCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "sabnzbd_callback")

	q := update.CallbackQuery
	if q == nil {
		return
	}
	if _, err := b.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: q.ID}); err != nil {
		log.WarnContext(ctx, "Failed to answer callback query", "error", err)
	}
	if q.Message.Message == nil || h.deps.SABnzbd == nil {
		return
	}
	chatID := q.Message.Message.Chat.ID
	messageID := q.Message.Message.ID

	var (
		ok    bool
		label string
	)
	switch {
	case q.Data == "sab:pause":
		ok = h.deps.SABnzbd.PauseQueue(ctx)
		label = "⏸ Queue paused."
	case q.Data == "sab:resume":
		ok = h.deps.SABnzbd.ResumeQueue(ctx)
		label = "▶️ Queue resumed."
	case strings.HasPrefix(q.Data, "sab:speed:"):
		percent, err := strconv.Atoi(strings.TrimPrefix(q.Data, "sab:speed:"))
		if err != nil {
			return
		}
		ok = h.deps.SABnzbd.SetSpeedLimit(ctx, percent)
		label = fmt.Sprintf("🚦 Speed limit set to %d%%.", percent)
	default:
		log.WarnContext(ctx, "Unknown callback data", "data", q.Data)
		return
	}

	if !ok {
		label = "❌ SABnzbd did not accept the command."
	}

	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        h.queueText(ctx) + "\n\n" + label,
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: sabnzbdKeyboard(),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to edit SABnzbd queue", "error", err, "chat_id", chatID)
	}
}
