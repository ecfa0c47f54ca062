package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/telearr/telearr/internal/media"
)

const libraryPageSize = 25

// NewLibraryHandler returns a handler listing everything one service manages
// (/allmovies, /allseries, /allmusic). Long libraries are paginated with
// inline navigation.
func NewLibraryHandler(deps HandlerDeps, kind media.Kind) bot.HandlerFunc {
	return libraryHandler{deps}.handleCommand(kind)
}

// NewLibraryCallbackHandler returns the callback query handler for library
// pagination (data prefixed with "lib:").
func NewLibraryCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return libraryHandler{deps}.HandleCallback
}

type libraryHandler struct {
	deps HandlerDeps
}

func (h libraryHandler) handleCommand(kind media.Kind) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := h.deps.Logger.With("handler", "library", "kind", kind)

		if update.Message == nil || update.Message.From == nil {
			log.WarnContext(ctx, "Library handler received update with nil message or sender", "update_id", update.ID)
			return
		}
		chatID := update.Message.Chat.ID

		text, markup := h.renderPage(ctx, kind, 0)
		_, err := b.SendMessage(ctx, &bot.SendMessageParams{
			ChatID:      chatID,
			Text:        text,
			ParseMode:   models.ParseModeMarkdownV1,
			ReplyMarkup: markup,
		})
		if err != nil {
			log.ErrorContext(ctx, "Failed to send library page", "error", err, "chat_id", chatID)
		}
	}
}

// HandleCallback flips library pages in place.
func (h libraryHandler) HandleCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "library_callback")

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

	// Data layout: lib:<kind>:<page>
	parts := strings.Split(q.Data, ":")
	if len(parts) != 3 {
		return
	}
	kind := media.Kind(parts[1])
	page, err := strconv.Atoi(parts[2])
	if err != nil || page < 0 {
		return
	}

	text, markup := h.renderPage(ctx, kind, page)
	params := &bot.EditMessageTextParams{
		ChatID:    q.Message.Message.Chat.ID,
		MessageID: q.Message.Message.ID,
		Text:      text,
		ParseMode: models.ParseModeMarkdownV1,
	}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := b.EditMessageText(ctx, params); err != nil {
		log.ErrorContext(ctx, "Failed to edit library page", "error", err)
	}
}

func (h libraryHandler) renderPage(ctx context.Context, kind media.Kind, page int) (string, *models.InlineKeyboardMarkup) {
	items := h.deps.Media.Library(ctx, kind)
	if len(items) == 0 {
		return fmt.Sprintf("The %s library is empty or unavailable right now.", strings.ToLower(kind.Label())), nil
	}

	pages := (len(items) + libraryPageSize - 1) / libraryPageSize
	if page >= pages {
		page = pages - 1
	}
	start := page * libraryPageSize
	end := start + libraryPageSize
	if end > len(items) {
		end = len(items)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "📚 *%s library* (%d items, page %d/%d)\n\n", kind.Label(), len(items), page+1, pages)
	for _, item := range items[start:end] {
		if item.Year > 0 {
			fmt.Fprintf(&sb, "• %s (%d)\n", item.Title, item.Year)
		} else {
			fmt.Fprintf(&sb, "• %s\n", item.Title)
		}
	}

	if pages == 1 {
		return sb.String(), nil
	}

	var nav []models.InlineKeyboardButton
	if page > 0 {
		nav = append(nav, models.InlineKeyboardButton{
			Text:         "⬅️ Previous",
			CallbackData: fmt.Sprintf("lib:%s:%d", kind, page-1),
		})
	}
	if page < pages-1 {
		nav = append(nav, models.InlineKeyboardButton{
			Text:         "Next ➡️",
			CallbackData: fmt.Sprintf("lib:%s:%d", kind, page+1),
		})
	}
	return sb.String(), &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{nav}}
}
