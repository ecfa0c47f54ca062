package handlers

import (
	"log/slog"

	"github.com/telearr/telearr/internal/config"
	"github.com/telearr/telearr/internal/database"
	"github.com/telearr/telearr/internal/library"
	"github.com/telearr/telearr/internal/notifier"
	"github.com/telearr/telearr/internal/sabnzbd"
	"github.com/telearr/telearr/internal/status"
	"github.com/telearr/telearr/internal/transmission"
)

// HandlerDeps provides dependencies for Telegram command handlers.
// SABnzbd and Transmission may be nil when the service is disabled.
type HandlerDeps struct {
	Logger       *slog.Logger
	Config       *config.Config
	Store        database.Store
	Media        *library.Service
	SABnzbd      *sabnzbd.Client
	Transmission *transmission.Client
	Status       *status.Aggregator
	Notifier     *notifier.Notifier
	Sessions     *SessionStore
}
