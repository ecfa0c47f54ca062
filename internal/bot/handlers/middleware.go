// Package handlers contains Telegram bot command, message, and callback
// handlers, along with their registration logic and middleware.
package handlers

import (
	"context"

	tgbot "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// updateOrigin extracts the acting user and chat from a message or callback
// query update. ok is false when the update carries neither.
func updateOrigin(update *models.Update) (userID, chatID int64, ok bool) {
	switch {
	case update.Message != nil && update.Message.From != nil:
		return update.Message.From.ID, update.Message.Chat.ID, true
	case update.CallbackQuery != nil:
		if update.CallbackQuery.Message.Message != nil {
			return update.CallbackQuery.From.ID, update.CallbackQuery.Message.Message.Chat.ID, true
		}
		if update.CallbackQuery.Message.InaccessibleMessage != nil {
			return update.CallbackQuery.From.ID, update.CallbackQuery.Message.InaccessibleMessage.Chat.ID, true
		}
	}
	return 0, 0, false
}

// AdminOnly creates a middleware that checks if the sender is the configured
// admin user. If not, it sends a "Not Authorized" message and stops processing.
func AdminOnly(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			userID, chatID, ok := updateOrigin(update)
			if !ok {
				next(ctx, bot, update)
				return
			}

			if userID != deps.Config.Telegram.AdminUserID {
				log := deps.Logger.With("middleware", "AdminOnly")
				log.WarnContext(ctx, "Unauthorized access attempt", "user_id", userID, "chat_id", chatID)

				_, err := bot.SendMessage(ctx, &tgbot.SendMessageParams{
					ChatID: chatID,
					Text:   "⛔ This command is restricted to the bot administrator.",
				})
				if err != nil {
					log.ErrorContext(ctx, "Failed to send unauthorized message", "error", err, "chat_id", chatID)
				}
				return
			}

			next(ctx, bot, update)
		}
	}
}

// Authorized creates a middleware gating media and download commands. The
// admin always passes. Other users must be on the allow-list, and when a chat
// password is configured the chat itself must have been unlocked with /auth.
func Authorized(deps HandlerDeps) tgbot.Middleware {
	return func(next tgbot.HandlerFunc) tgbot.HandlerFunc {
		return func(ctx context.Context, bot *tgbot.Bot, update *models.Update) {
			userID, chatID, ok := updateOrigin(update)
			if !ok {
				next(ctx, bot, update)
				return
			}

			log := deps.Logger.With("middleware", "Authorized")

			if userID == deps.Config.Telegram.AdminUserID {
				next(ctx, bot, update)
				return
			}

			if !deps.Config.IsUserAllowed(userID) {
				log.WarnContext(ctx, "User not on allow-list", "user_id", userID, "chat_id", chatID)
				_, err := bot.SendMessage(ctx, &tgbot.SendMessageParams{
					ChatID: chatID,
					Text:   "⛔ You are not allowed to use this bot.",
				})
				if err != nil {
					log.ErrorContext(ctx, "Failed to send unauthorized message", "error", err, "chat_id", chatID)
				}
				return
			}

			if deps.Config.Telegram.ChatPassword != "" {
				authorized, err := deps.Store.IsChatAuthorized(ctx, chatID)
				if err != nil {
					log.ErrorContext(ctx, "Failed to check chat authorization", "error", err, "chat_id", chatID)
				}
				if !authorized {
					_, err := bot.SendMessage(ctx, &tgbot.SendMessageParams{
						ChatID: chatID,
						Text:   "🔒 This chat is not authorized yet. Unlock it with /auth <password>.",
					})
					if err != nil {
						log.ErrorContext(ctx, "Failed to send authorization prompt", "error", err, "chat_id", chatID)
					}
					return
				}
			}

			next(ctx, bot, update)
		}
	}
}
