package handlers

import (
	tgbot "github.com/go-telegram/bot"

	"github.com/telearr/telearr/internal/media"
)

// RegisteredHandler represents a command or callback handler with its
// registration pattern and middleware. It encapsulates all information needed
// to register and document a command.
type RegisteredHandler struct {
	HandlerType tgbot.HandlerType
	Pattern     string
	Handler     tgbot.HandlerFunc
	Middleware  []tgbot.Middleware
	MatchType   tgbot.MatchType
}

// RegisterAllCommands initializes and returns a map of all available bot
// commands and callback handlers, each configured with its middleware.
func RegisterAllCommands(deps HandlerDeps) map[string]RegisteredHandler {
	handlers := make(map[string]RegisteredHandler)

	handlers["/start"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "start",
		Handler:     NewStartHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers["/help"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "help",
		Handler:     NewHelpHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}
	handlers["/auth"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "auth",
		Handler:     NewAuthHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
	}

	authorized := []tgbot.Middleware{Authorized(deps)}

	handlers["/movie"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "movie",
		Handler:     NewMediaSearchHandler(deps, media.KindMovie),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  authorized,
	}
	handlers["/series"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "series",
		Handler:     NewMediaSearchHandler(deps, media.KindSeries),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  authorized,
	}
	handlers["/music"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "music",
		Handler:     NewMediaSearchHandler(deps, media.KindArtist),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  authorized,
	}
	handlers["/allmovies"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "allmovies",
		Handler:     NewLibraryHandler(deps, media.KindMovie),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  authorized,
	}
	handlers["/allseries"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "allseries",
		Handler:     NewLibraryHandler(deps, media.KindSeries),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  authorized,
	}
	handlers["/allmusic"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "allmusic",
		Handler:     NewLibraryHandler(deps, media.KindArtist),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  authorized,
	}
	handlers["/transmission"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "transmission",
		Handler:     NewTransmissionHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  authorized,
	}
	handlers["/sabnzbd"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "sabnzbd",
		Handler:     NewSABnzbdHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  authorized,
	}
	handlers["/status"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "status",
		Handler:     NewStatusHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  authorized,
	}

	adminOnly := []tgbot.Middleware{AdminOnly(deps)}

	handlers["/delete"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "delete",
		Handler:     NewDeleteHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  adminOnly,
	}
	handlers["/requests"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "requests",
		Handler:     NewRequestsHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  adminOnly,
	}
	handlers["/settings"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeMessageText,
		Pattern:     "settings",
		Handler:     NewSettingsHandler(deps),
		MatchType:   tgbot.MatchTypeCommandStartOnly,
		Middleware:  adminOnly,
	}

	handlers["cb:media"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     "media:",
		Handler:     NewMediaCallbackHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
		Middleware:  authorized,
	}
	handlers["cb:lib"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     "lib:",
		Handler:     NewLibraryCallbackHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
		Middleware:  authorized,
	}
	handlers["cb:tm"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     "tm:",
		Handler:     NewTransmissionCallbackHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
		Middleware:  authorized,
	}
	handlers["cb:sab"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     "sab:",
		Handler:     NewSABnzbdCallbackHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
		Middleware:  authorized,
	}
	handlers["cb:set"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     "set:",
		Handler:     NewSettingsCallbackHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
		Middleware:  adminOnly,
	}
	handlers["cb:status"] = RegisteredHandler{
		HandlerType: tgbot.HandlerTypeCallbackQueryData,
		Pattern:     "status:",
		Handler:     NewStatusCallbackHandler(deps),
		MatchType:   tgbot.MatchTypePrefix,
		Middleware:  authorized,
	}

	return handlers
}
