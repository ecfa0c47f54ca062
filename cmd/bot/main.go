// Package main contains the entrypoint for the Telearr Telegram bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbot "github.com/go-telegram/bot"
	"github.com/joho/godotenv"

	"github.com/telearr/telearr/internal/arr"
	"github.com/telearr/telearr/internal/bot"
	"github.com/telearr/telearr/internal/bot/handlers"
	"github.com/telearr/telearr/internal/bot/tasks"
	"github.com/telearr/telearr/internal/config"
	"github.com/telearr/telearr/internal/database"
	"github.com/telearr/telearr/internal/health"
	"github.com/telearr/telearr/internal/library"
	"github.com/telearr/telearr/internal/logger"
	"github.com/telearr/telearr/internal/notifier"
	"github.com/telearr/telearr/internal/sabnzbd"
	"github.com/telearr/telearr/internal/scheduler"
	"github.com/telearr/telearr/internal/status"
	"github.com/telearr/telearr/internal/telegram"
	"github.com/telearr/telearr/internal/transmission"

	_ "modernc.org/sqlite"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger, db,
// service clients, bot, scheduler), handles graceful shutdown, and returns an
// exit code (0 for success, 1 for failure).
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	// A missing .env file is not an error; it simply means all settings
	// come from config.yaml and the real environment.
	_ = godotenv.Load()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Log)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Log.Level, "json", cfg.Log.JSON)

	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to connect to database", "path", cfg.Database.Path, "error", err)
		return 1
	}
	defer database.CloseDB(db)
	store := database.NewStore(db, log)

	// A broken service configuration disables that service only; the bot
	// still runs with whatever remains.
	var probes []health.Probe

	var radarr *arr.Radarr
	if cfg.Radarr.Enabled {
		if radarr, err = arr.NewRadarr(cfg.Radarr, log); err != nil {
			log.Error("Radarr disabled", "error", err)
		} else {
			probes = append(probes, health.Probe{Name: "Radarr", Check: radarr.SystemStatus})
		}
	}
	var sonarr *arr.Sonarr
	if cfg.Sonarr.Enabled {
		if sonarr, err = arr.NewSonarr(cfg.Sonarr, log); err != nil {
			log.Error("Sonarr disabled", "error", err)
		} else {
			probes = append(probes, health.Probe{Name: "Sonarr", Check: sonarr.SystemStatus})
		}
	}
	var lidarr *arr.Lidarr
	if cfg.Lidarr.Enabled {
		if lidarr, err = arr.NewLidarr(cfg.Lidarr, log); err != nil {
			log.Error("Lidarr disabled", "error", err)
		} else {
			probes = append(probes, health.Probe{Name: "Lidarr", Check: lidarr.SystemStatus})
		}
	}

	var sab *sabnzbd.Client
	if cfg.SABnzbd.Enabled {
		if sab, err = sabnzbd.New(cfg.SABnzbd, log); err != nil {
			log.Error("SABnzbd disabled", "error", err)
		} else {
			probes = append(probes, health.Probe{Name: "SABnzbd", Check: sab.Version})
		}
	}
	var tm *transmission.Client
	if cfg.Transmission.Enabled {
		if tm, err = transmission.New(cfg.Transmission, log); err != nil {
			log.Error("Transmission disabled", "error", err)
		} else {
			probes = append(probes, health.Probe{Name: "Transmission", Check: tm.Version})
		}
	}

	mediaSvc := library.NewService(log, radarr, sonarr, lidarr)
	if overrides, err := store.Settings(ctx); err != nil {
		log.Warn("Failed to load stored settings", "error", err)
	} else {
		mediaSvc.ApplyOverrides(overrides)
	}
	monitor := health.NewMonitor(log, cfg.Health.Interval, probes)

	sched, err := scheduler.New(log)
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}
	statusAgg := status.New(log, monitor, sched)

	hDeps := handlers.HandlerDeps{
		Logger:       log,
		Config:       cfg,
		Store:        store,
		Media:        mediaSvc,
		SABnzbd:      sab,
		Transmission: tm,
		Status:       statusAgg,
		Sessions:     handlers.NewSessionStore(),
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log)),
		tgbot.WithDefaultHandler(handlers.NewConversationHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	adminNotifyID := cfg.Telegram.AdminNotifyID
	if adminNotifyID == 0 {
		adminNotifyID = cfg.Telegram.AdminUserID
	}
	hDeps.Notifier = notifier.New(log, tg, adminNotifyID, cfg.Notifier.URLs)

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	tDeps := tasks.TaskDeps{
		Logger:  log,
		Config:  cfg,
		Store:   store,
		Monitor: monitor,
	}
	if err := bot.RegisterTasks(log, sched, cfg.Scheduler, tasks.RegisterAllTasks(tDeps)); err != nil {
		log.Error("Failed to register scheduled tasks", "error", err)
		return 1
	}

	// Seed the health state so /status has data before the first cron tick.
	if err := monitor.RunChecks(ctx); err != nil {
		log.Warn("Initial health check failed", "error", err)
	}

	app := bot.NewBot(log, cfg, tg, sched, monitor)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)
	log.Info("Bot run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
