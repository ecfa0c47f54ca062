package handlers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/telearr/telearr/internal/database"
	"github.com/telearr/telearr/internal/media"
)

const maxOverviewLen = 400

// truncateOverview caps an overview at maxOverviewLen runes. Cutting on a
// byte offset could split a multi-byte rune, and the Telegram API rejects
// invalid UTF-8.
func truncateOverview(overview string) string {
	runes := []rune(overview)
	if len(runes) <= maxOverviewLen {
		return overview
	}
	return string(runes[:maxOverviewLen]) + "…"
}

// NewMediaSearchHandler returns a handler starting the add conversation for
// one media kind (/movie, /series, /music). A search term may follow the
// command; without one the bot asks for it and waits for the next message.
func NewMediaSearchHandler(deps HandlerDeps, kind media.Kind) bot.HandlerFunc {
	return mediaHandler{deps}.handleSearchCommand(kind)
}

// NewConversationHandler returns the default message handler. It feeds free
// text into the chat's pending conversation, if any, and ignores everything
// else.
func NewConversationHandler(deps HandlerDeps) bot.HandlerFunc {
	return mediaHandler{deps}.HandleConversation
}

// NewMediaCallbackHandler returns the callback query handler for the media
// conversation keyboards (data prefixed with "media:").
func NewMediaCallbackHandler(deps HandlerDeps) bot.HandlerFunc {
	return mediaHandler{deps}.HandleCallback
}

// NewDeleteHandler returns a handler for the /delete command.
func NewDeleteHandler(deps HandlerDeps) bot.HandlerFunc {
	return mediaHandler{deps}.HandleDelete
}

type mediaHandler struct {
	deps HandlerDeps
}

func (h mediaHandler) kindEnabled(kind media.Kind) bool {
	switch kind {
	case media.KindMovie:
		return h.deps.Media.MoviesEnabled()
	case media.KindSeries:
		return h.deps.Media.SeriesEnabled()
	case media.KindArtist:
		return h.deps.Media.MusicEnabled()
	}
	return false
}

func (h mediaHandler) send(ctx context.Context, b *bot.Bot, chatID int64, text string) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{ChatID: chatID, Text: text})
	if err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send message", "error", err, "chat_id", chatID)
	}
}

func (h mediaHandler) handleSearchCommand(kind media.Kind) bot.HandlerFunc {
	return func(ctx context.Context, b *bot.Bot, update *models.Update) {
		log := h.deps.Logger.With("handler", "media_search", "kind", kind)

		if update.Message == nil || update.Message.From == nil {
			log.WarnContext(ctx, "Search handler received update with nil message or sender", "update_id", update.ID)
			return
		}
		chatID := update.Message.Chat.ID

		if !h.kindEnabled(kind) {
			h.send(ctx, b, chatID, fmt.Sprintf("%s requests are not enabled on this bot.", kind.Label()))
			return
		}

		// Everything after "/movie" or "/movie@botname" is the search term.
		term := ""
		if fields := strings.Fields(update.Message.Text); len(fields) > 1 {
			term = strings.Join(fields[1:], " ")
		}

		if term == "" {
			h.deps.Sessions.Set(chatID, &Session{Action: "add", Kind: kind, Stage: StageAwaitingTerm})
			h.send(ctx, b, chatID, fmt.Sprintf("🔍 What %s would you like to add?", strings.ToLower(kind.Label())))
			return
		}

		h.runSearch(ctx, b, chatID, kind, term)
	}
}

// HandleConversation routes free text into a pending conversation.
func (h mediaHandler) HandleConversation(ctx context.Context, b *bot.Bot, update *models.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	text := strings.TrimSpace(update.Message.Text)
	if text == "" || strings.HasPrefix(text, "/") {
		return
	}
	chatID := update.Message.Chat.ID

	sess := h.deps.Sessions.Get(chatID)
	if sess == nil || sess.Stage != StageAwaitingTerm {
		return
	}

	if sess.Action == "delete" {
		h.runLibrarySearch(ctx, b, chatID, sess.Kind, text)
		return
	}
	h.runSearch(ctx, b, chatID, sess.Kind, text)
}

func (h mediaHandler) runSearch(ctx context.Context, b *bot.Bot, chatID int64, kind media.Kind, term string) {
	log := h.deps.Logger.With("handler", "media_search", "kind", kind)
	log.InfoContext(ctx, "Searching", "term", term, "chat_id", chatID)

	result := h.deps.Media.Search(ctx, kind, term)
	if result.Total == 0 {
		h.deps.Sessions.Clear(chatID)
		h.send(ctx, b, chatID, fmt.Sprintf("😕 No results for %q. Try a different title.", term))
		return
	}

	sess := &Session{Action: "add", Kind: kind, Stage: StageSelecting, Results: result.Items}
	h.deps.Sessions.Set(chatID, sess)
	h.sendResultCard(ctx, b, chatID, sess)
}

// runLibrarySearch matches a delete term against the managed library.
func (h mediaHandler) runLibrarySearch(ctx context.Context, b *bot.Bot, chatID int64, kind media.Kind, term string) {
	library := h.deps.Media.Library(ctx, kind)

	var matches []media.Item
	needle := strings.ToLower(term)
	for _, item := range library {
		if strings.Contains(strings.ToLower(item.Title), needle) {
			matches = append(matches, item)
		}
	}

	if len(matches) == 0 {
		h.deps.Sessions.Clear(chatID)
		h.send(ctx, b, chatID, fmt.Sprintf("😕 Nothing in the %s library matches %q.", strings.ToLower(kind.Label()), term))
		return
	}

	sess := &Session{Action: "delete", Kind: kind, Stage: StageSelecting, Results: matches}
	h.deps.Sessions.Set(chatID, sess)
	h.sendResultCard(ctx, b, chatID, sess)
}

func resultText(sess *Session) string {
	item := sess.Current()
	if item == nil {
		return "No result selected."
	}

	var sb strings.Builder
	title := item.Title
	if item.Year > 0 {
		title = fmt.Sprintf("%s (%d)", item.Title, item.Year)
	}
	fmt.Fprintf(&sb, "*%s*\n", title)
	fmt.Fprintf(&sb, "Result %d of %d\n", sess.Index+1, len(sess.Results))

	if item.Kind == media.KindSeries && item.SeasonCount > 0 {
		fmt.Fprintf(&sb, "Seasons: %d\n", item.SeasonCount)
	}
	if item.Kind == media.KindArtist && item.ArtistType != "" {
		fmt.Fprintf(&sb, "Type: %s\n", item.ArtistType)
	}

	if item.Overview != "" {
		sb.WriteString("\n" + truncateOverview(item.Overview) + "\n")
	}
	if item.PosterURL != "" {
		fmt.Fprintf(&sb, "\n[Poster](%s)", item.PosterURL)
	}
	return sb.String()
}

func resultKeyboard(sess *Session) *models.InlineKeyboardMarkup {
	var nav []models.InlineKeyboardButton
	if sess.Index > 0 {
		nav = append(nav, models.InlineKeyboardButton{Text: "⬅️ Previous", CallbackData: "media:prev"})
	}
	if sess.Index < len(sess.Results)-1 {
		nav = append(nav, models.InlineKeyboardButton{Text: "Next ➡️", CallbackData: "media:next"})
	}

	selectLabel := "✅ Add this"
	if sess.Action == "delete" {
		selectLabel = "🗑 Delete this"
	}

	keyboard := [][]models.InlineKeyboardButton{}
	if len(nav) > 0 {
		keyboard = append(keyboard, nav)
	}
	keyboard = append(keyboard,
		[]models.InlineKeyboardButton{{Text: selectLabel, CallbackData: "media:select"}},
		[]models.InlineKeyboardButton{{Text: "❌ Cancel", CallbackData: "media:cancel"}},
	)
	return &models.InlineKeyboardMarkup{InlineKeyboard: keyboard}
}

func (h mediaHandler) sendResultCard(ctx context.Context, b *bot.Bot, chatID int64, sess *Session) {
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        resultText(sess),
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: resultKeyboard(sess),
	})
	if err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to send result card", "error", err, "chat_id", chatID)
	}
}

func (h mediaHandler) editResultCard(ctx context.Context, b *bot.Bot, chatID int64, messageID int, sess *Session) {
	_, err := b.EditMessageText(ctx, &bot.EditMessageTextParams{
		ChatID:      chatID,
		MessageID:   messageID,
		Text:        resultText(sess),
		ParseMode:   models.ParseModeMarkdownV1,
		ReplyMarkup: resultKeyboard(sess),
	})
	if err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to edit result card", "error", err, "chat_id", chatID)
	}
}

func (h mediaHandler) edit(ctx context.Context, b *bot.Bot, chatID int64, messageID int, text string, markup *models.InlineKeyboardMarkup) {
	params := &bot.EditMessageTextParams{ChatID: chatID, MessageID: messageID, Text: text}
	if markup != nil {
		params.ReplyMarkup = markup
	}
	if _, err := b.EditMessageText(ctx, params); err != nil {
		h.deps.Logger.ErrorContext(ctx, "Failed to edit message", "error", err, "chat_id", chatID)
	}
}

// HandleDelete starts the delete conversation by asking which library to
// search.
func (h mediaHandler) HandleDelete(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "delete")

	if update.Message == nil || update.Message.From == nil {
		log.WarnContext(ctx, "Delete handler received update with nil message or sender", "update_id", update.ID)
		return
	}
	chatID := update.Message.Chat.ID

	var row []models.InlineKeyboardButton
	if h.deps.Media.MoviesEnabled() {
		row = append(row, models.InlineKeyboardButton{Text: "🎬 Movie", CallbackData: "media:delkind:movie"})
	}
	if h.deps.Media.SeriesEnabled() {
		row = append(row, models.InlineKeyboardButton{Text: "📺 Series", CallbackData: "media:delkind:series"})
	}
	if h.deps.Media.MusicEnabled() {
		row = append(row, models.InlineKeyboardButton{Text: "🎵 Artist", CallbackData: "media:delkind:artist"})
	}
	if len(row) == 0 {
		h.send(ctx, b, chatID, "No media services are enabled on this bot.")
		return
	}

	h.deps.Sessions.Set(chatID, &Session{Action: "delete"})
	_, err := b.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:      chatID,
		Text:        "🗑 What kind of media do you want to delete?",
		ReplyMarkup: &models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{row}},
	})
	if err != nil {
		log.ErrorContext(ctx, "Failed to send delete prompt", "error", err, "chat_id", chatID)
	}
}

// HandleCallback drives the conversation state machine from inline keyboard
// presses.
func (h mediaHandler) HandleCallback(ctx context.Context, b *bot.Bot, update *models.Update) {
	log := h.deps.Logger.With("handler", "media_callback")

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

	sess := h.deps.Sessions.Get(chatID)
	if sess == nil {
		h.edit(ctx, b, chatID, messageID, "This conversation has expired. Start again with a command.", nil)
		return
	}

	data := strings.TrimPrefix(q.Data, "media:")
	switch {
	case data == "cancel":
		h.deps.Sessions.Clear(chatID)
		h.edit(ctx, b, chatID, messageID, "👍 Cancelled.", nil)

	case data == "prev":
		if sess.Index > 0 {
			sess.Index--
		}
		h.editResultCard(ctx, b, chatID, messageID, sess)

	case data == "next":
		if sess.Index < len(sess.Results)-1 {
			sess.Index++
		}
		h.editResultCard(ctx, b, chatID, messageID, sess)

	case data == "select":
		item := sess.Current()
		if item == nil {
			h.deps.Sessions.Clear(chatID)
			h.edit(ctx, b, chatID, messageID, "This conversation has expired. Start again with a command.", nil)
			return
		}
		sess.Selected = item
		sess.UserID = q.From.ID
		if sess.Action == "delete" {
			sess.Stage = StageConfirmDelete
			h.edit(ctx, b, chatID, messageID,
				fmt.Sprintf("Really delete %q from the library?", item.Title),
				&models.InlineKeyboardMarkup{InlineKeyboard: [][]models.InlineKeyboardButton{{
					{Text: "🗑 Yes, delete", CallbackData: "media:confirmdel"},
					{Text: "❌ Cancel", CallbackData: "media:cancel"},
				}}})
			return
		}
		h.askQualityProfile(ctx, b, chatID, messageID, sess)

	case strings.HasPrefix(data, "profile:"):
		id, err := strconv.ParseInt(strings.TrimPrefix(data, "profile:"), 10, 64)
		if err != nil || sess.Stage != StageChoosingProfile {
			return
		}
		sess.ProfileID = id
		h.askRootFolder(ctx, b, chatID, messageID, sess)

	case strings.HasPrefix(data, "folder:"):
		idx, err := strconv.Atoi(strings.TrimPrefix(data, "folder:"))
		if err != nil || sess.Stage != StageChoosingFolder || idx < 0 || idx >= len(sess.Folders) {
			return
		}
		h.doAdd(ctx, b, chatID, messageID, sess, sess.Folders[idx].Path)

	case strings.HasPrefix(data, "delkind:"):
		kind := media.Kind(strings.TrimPrefix(data, "delkind:"))
		if sess.Action != "delete" || !h.kindEnabled(kind) {
			return
		}
		sess.Kind = kind
		sess.Stage = StageAwaitingTerm
		h.edit(ctx, b, chatID, messageID,
			fmt.Sprintf("🔍 Which %s do you want to delete?", strings.ToLower(kind.Label())), nil)

	case data == "confirmdel":
		h.doDelete(ctx, b, chatID, messageID, sess)

	default:
		log.WarnContext(ctx, "Unknown callback data", "data", q.Data, "chat_id", chatID)
	}
}

func (h mediaHandler) askQualityProfile(ctx context.Context, b *bot.Bot, chatID int64, messageID int, sess *Session) {
	profiles := h.deps.Media.QualityProfiles(ctx, sess.Kind)
	if len(profiles) == 0 {
		h.deps.Sessions.Clear(chatID)
		h.edit(ctx, b, chatID, messageID, "❌ Could not fetch quality profiles. Please try again later.", nil)
		return
	}

	sess.Stage = StageChoosingProfile
	if len(profiles) == 1 {
		sess.ProfileID = profiles[0].ID
		h.askRootFolder(ctx, b, chatID, messageID, sess)
		return
	}

	var keyboard [][]models.InlineKeyboardButton
	for _, p := range profiles {
		keyboard = append(keyboard, []models.InlineKeyboardButton{{
			Text:         p.Name,
			CallbackData: fmt.Sprintf("media:profile:%d", p.ID),
		}})
	}
	keyboard = append(keyboard, []models.InlineKeyboardButton{{Text: "❌ Cancel", CallbackData: "media:cancel"}})
	h.edit(ctx, b, chatID, messageID, "📊 Choose a quality profile:",
		&models.InlineKeyboardMarkup{InlineKeyboard: keyboard})
}

func (h mediaHandler) askRootFolder(ctx context.Context, b *bot.Bot, chatID int64, messageID int, sess *Session) {
	folders := h.deps.Media.RootFolders(ctx, sess.Kind)
	if len(folders) == 0 {
		h.deps.Sessions.Clear(chatID)
		h.edit(ctx, b, chatID, messageID, "❌ Could not fetch root folders. Please try again later.", nil)
		return
	}

	sess.Stage = StageChoosingFolder
	sess.Folders = folders
	if len(folders) == 1 {
		h.doAdd(ctx, b, chatID, messageID, sess, folders[0].Path)
		return
	}

	var keyboard [][]models.InlineKeyboardButton
	for i, f := range folders {
		label := f.Path
		if f.FreeSpace > 0 {
			label = fmt.Sprintf("%s (%s free)", f.Path, humanize.IBytes(uint64(f.FreeSpace)))
		}
		keyboard = append(keyboard, []models.InlineKeyboardButton{{
			Text:         label,
			CallbackData: fmt.Sprintf("media:folder:%d", i),
		}})
	}
	keyboard = append(keyboard, []models.InlineKeyboardButton{{Text: "❌ Cancel", CallbackData: "media:cancel"}})
	h.edit(ctx, b, chatID, messageID, "📁 Choose a root folder:",
		&models.InlineKeyboardMarkup{InlineKeyboard: keyboard})
}

func externalID(item *media.Item) string {
	switch item.Kind {
	case media.KindMovie:
		return strconv.FormatInt(item.TMDBID, 10)
	case media.KindSeries:
		return strconv.FormatInt(item.TVDBID, 10)
	case media.KindArtist:
		return item.ForeignArtistID
	}
	return ""
}

func (h mediaHandler) doAdd(ctx context.Context, b *bot.Bot, chatID int64, messageID int, sess *Session, rootFolder string) {
	log := h.deps.Logger.With("handler", "media_add", "kind", sess.Kind)
	item := sess.Selected
	h.deps.Sessions.Clear(chatID)
	if item == nil {
		h.edit(ctx, b, chatID, messageID, "This conversation has expired. Start again with a command.", nil)
		return
	}

	result := h.deps.Media.Add(ctx, *item, sess.ProfileID, rootFolder)
	switch {
	case result.OK:
		h.edit(ctx, b, chatID, messageID, "✅ "+result.Message, nil)

		err := h.deps.Store.RecordRequest(ctx, database.Request{
			UserID:      sess.UserID,
			ChatID:      chatID,
			Kind:        string(item.Kind),
			Title:       item.Title,
			ExternalID:  externalID(item),
			RequestedAt: time.Now().UTC(),
		})
		if err != nil {
			log.ErrorContext(ctx, "Failed to record request", "error", err, "title", item.Title)
		}
		h.deps.Notifier.NotifyAdmin(ctx, fmt.Sprintf("%s %q was requested by user %d.", item.Kind.Label(), item.Title, sess.UserID))

	case result.AlreadyExists:
		h.edit(ctx, b, chatID, messageID, "ℹ️ "+result.Message, nil)

	default:
		h.edit(ctx, b, chatID, messageID, "❌ "+result.Message, nil)
	}
}

func (h mediaHandler) doDelete(ctx context.Context, b *bot.Bot, chatID int64, messageID int, sess *Session) {
	item := sess.Selected
	h.deps.Sessions.Clear(chatID)
	if item == nil || sess.Stage != StageConfirmDelete {
		h.edit(ctx, b, chatID, messageID, "This conversation has expired. Start again with a command.", nil)
		return
	}

	if !h.deps.Media.Delete(ctx, item.Kind, item.ID) {
		h.edit(ctx, b, chatID, messageID, fmt.Sprintf("❌ Failed to delete %q.", item.Title), nil)
		return
	}

	h.edit(ctx, b, chatID, messageID, fmt.Sprintf("🗑 %q was removed from the library.", item.Title), nil)
	h.deps.Notifier.NotifyAdmin(ctx, fmt.Sprintf("%s %q was deleted by user %d.", item.Kind.Label(), item.Title, sess.UserID))
}
