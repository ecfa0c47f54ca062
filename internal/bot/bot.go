// Package bot implements the core bot functionality, lifecycle management,
// and component orchestration for the Telearr Telegram bot.
package bot

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	tgbot "github.com/go-telegram/bot"
	"golang.org/x/sync/errgroup"

	"github.com/telearr/telearr/internal/bot/tasks"
	"github.com/telearr/telearr/internal/config"
	"github.com/telearr/telearr/internal/health"
	"github.com/telearr/telearr/internal/scheduler"
)

// Bot represents the main bot application and manages its components' lifecycle.
type Bot struct {
	logger    *slog.Logger
	cfg       *config.Config
	tgBot     *tgbot.Bot
	scheduler *scheduler.Scheduler
	monitor   *health.Monitor
}

// NewBot creates a new instance of the bot with all required dependencies.
func NewBot(
	logger *slog.Logger,
	cfg *config.Config,
	tgBot *tgbot.Bot,
	sched *scheduler.Scheduler,
	monitor *health.Monitor,
) *Bot {
	return &Bot{
		logger:    logger.With("component", "bot_orchestrator"),
		cfg:       cfg,
		tgBot:     tgBot,
		scheduler: sched,
		monitor:   monitor,
	}
}

// RegisterTasks adds every enabled configured task to the scheduler. Unknown
// task names in the configuration are rejected.
func RegisterTasks(logger *slog.Logger, sched *scheduler.Scheduler, cfg config.SchedulerConfig, taskFuncs map[string]tasks.ScheduledTaskFunc) error {
	log := logger.With("component", "task_registry")

	for name, taskCfg := range cfg.Tasks {
		if !taskCfg.Enabled {
			log.Info("Skipping disabled task", "task", name)
			continue
		}

		fn, ok := taskFuncs[name]
		if !ok {
			return fmt.Errorf("no task implementation registered for %q", name)
		}

		if err := sched.AddJob(name, taskCfg.Schedule, scheduler.Action(fn)); err != nil {
			return fmt.Errorf("failed to schedule task %q: %w", name, err)
		}
		log.Info("Scheduled task", "task", name, "schedule", taskCfg.Schedule)
	}

	return nil
}

// Run starts the bot and all its components, handling graceful shutdown on
// context cancellation. It returns an error if any component fails during
// startup or execution.
func (b *Bot) Run(ctx context.Context) error {
	b.logger.Info("Starting bot orchestrator...")

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		b.logger.Info("Starting Telegram bot listener...")

		b.tgBot.Start(gCtx)
		b.logger.Info("Telegram bot listener stopped.")

		if gCtx.Err() == nil {
			b.logger.Warn("Telegram bot listener stopped unexpectedly without context cancellation.")

			return fmt.Errorf("telegram listener stopped unexpectedly")
		}
		return nil
	})

	g.Go(func() error {
		b.logger.Info("Starting scheduler...")
		b.scheduler.Start()
		b.monitor.Start()

		<-gCtx.Done()
		b.logger.Info("Shutdown signal received, stopping scheduler...")

		b.monitor.Stop()
		if err := b.scheduler.Shutdown(); err != nil {
			b.logger.Error("Error shutting down scheduler", "error", err)
		}

		return nil
	})

	b.logger.Info("Bot orchestrator running. Waiting for shutdown signal or error...")
	err := g.Wait()

	if err != nil && !errors.Is(err, context.Canceled) {
		b.logger.Error("Bot orchestrator stopped due to error", "error", err)
		return err
	}

	b.logger.Info("Bot orchestrator stopped gracefully.")
	return nil
}
