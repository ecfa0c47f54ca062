package handlers

import (
	"context"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/telearr/telearr/internal/library"
	"github.com/telearr/telearr/internal/media"
)

// settingsKinds fixes the display order of the toggleable services.
var settingsKinds = []struct {
	Kind    media.Kind
	Service string
	Emoji   string
}{
	{media.KindMovie, "Radarr", "🎬"},
	{media.KindSeries, "Sonarr", "📺"},
	{media.KindArtist, "Lidarr", "🎵"},
}

// NewSettingsHandler returns a handler for the admin /settings command.
func NewSettingsHandler(deps HandlerDeps) bot.HandlerFunc {
	return settingsHandler{deps}.Handle
}

// NewSettingsCallbackHandler returns the callback query handler for the
// settings toggle buttons (data prefixed with "set:").
func NewSettingsCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return settingsHandler{deps}.HandleCallback
}

type settingsHandler struct {
	deps HandlerDeps
}

// settingsText lists each service with its configuration and runtime state.
func settingsText(svc *library.Service) string {
	var sb strings.Builder
	sb.WriteString("⚙️ *Settings*\n\n")

	for _, entry := range settingsKinds {
		sb.WriteString(entry.Emoji + " " + entry.Service + ": ")
		switch {
		case !svc.Configured(entry.Kind):
			sb.WriteString("not configured\n")
		case svc.Enabled(entry.Kind):
			sb.WriteString("enabled\n")
		default:
			sb.WriteString("disabled\n")
		}
	}

	sb.WriteString("\nToggles apply immediately and survive restarts.")
	return sb.String()
}

// settingsKeyboard offers one toggle button per configured service.
func settingsKeyboard(svc *library.Service) *models.InlineKeyboardMarkup {
	var rows [][]models.InlineKeyboardButton
	for _, entry := range settingsKinds {
		if !svc.Configured(entry.Kind) {
			continue
		}
		label := "Disable " + entry.Service
		if !svc.Enabled(entry.Kind) {
			label = "Enable " + entry.Service
		}
		rows = append(rows, []models.InlineKeyboardButton{
			{Text: label, CallbackData: "set:toggle:" + string(entry.Kind)},
		})
	}
	if len(rows) == 0 {
		return nil
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}

func (h settingsHandler) Handle(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "settings")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Settings handler received update with nil message or sender", "update_id", update.ID)
		return
	}

	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      update.Message.Chat.ID,
		Text:        settingsText(h.deps.Media),
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: settingsKeyboard(h.deps.Media),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send settings", "error", err, "chat_id", update.Message.Chat.ID)
	}
}

func (h settingsHandler) HandleCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "settings_callback")

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

	kindName, ok := strings.CutPrefix(q.Data, "set:toggle:")
	if !ok {
		return
	}
	kind := media.Kind(kindName)
	if !h.deps.Media.Configured(kind) {
		log.WarnContext(ctx, "Toggle requested for unconfigured service", "kind", kindName)
		return
	}

	enabled := !h.deps.Media.Enabled(kind)
	h.deps.Media.SetKindEnabled(kind, enabled)
	if err := h.deps.Store.SetSetting(ctx, library.SettingKey(kind), strconv.FormatBool(enabled)); err != nil {
		log.ErrorContext(ctx, "Failed to persist setting", "kind", kindName, "error", err)
	}
	log.InfoContext(ctx, "Service availability toggled", "kind", kindName, "enabled", enabled, "user_id", q.From.ID)

	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        settingsText(h.deps.Media),
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: settingsKeyboard(h.deps.Media),
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to edit settings message", "error", err, "chat_id", chatID)
	}
}
