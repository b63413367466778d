package cmd

import (
	"context"
	"fmt"
	"time"

	"arrangement_bot/internal/app"
	"arrangement_bot/internal/domain/schedule"
	"arrangement_bot/internal/infra/config"
	"arrangement_bot/internal/infra/logger"
	"arrangement_bot/internal/infra/scheduler"
	"arrangement_bot/internal/infra/storage"
	"arrangement_bot/internal/infra/targets"
	"arrangement_bot/internal/infra/telegram"

	"github.com/jonboulle/clockwork"
	"golang.org/x/sync/errgroup"
	"gopkg.in/telebot.v3"
)

func run(ctx context.Context, envFile, logLevel string) error {
	cfg, err := config.Load(envFile)
	if err != nil {
		return fmt.Errorf("could not load application configuration: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}
	logger.Init(cfg)
	mainLogger := logger.Component("main")

	mainLogger.WithField("environment", cfg.Environment).
		WithField("timezone", cfg.Timezone.String()).
		Info("Arrangement bot starting...")

	targetResolver, err := loadTargets(cfg)
	if err != nil {
		return err
	}

	pref := telebot.Settings{
		Token:  cfg.TelegramToken,
		Poller: &telebot.LongPoller{Timeout: 10 * time.Second},
		OnError: func(err error, c telebot.Context) {
			entry := logger.Component("telebot").WithError(err)
			if c != nil && c.Sender() != nil && c.Chat() != nil {
				entry = entry.WithField("sender_id", c.Sender().ID).WithField("chat_id", c.Chat().ID)
			}
			entry.Error("Unhandled bot error")
		},
	}
	bot, err := telebot.NewBot(pref)
	if err != nil {
		return fmt.Errorf("could not create Telegram bot: %w", err)
	}

	clock := clockwork.NewRealClock()
	repo := storage.NewMemoryArrangementRepository()
	surface := telegram.NewSurface(telegram.NewTelebotAdapter(bot), cfg.Timezone, logger.Component("telegram"))
	dispatcher := app.NewNotificationDispatcher(surface, targetResolver, logger.Component("app"))
	countdown := scheduler.NewCountdown(repo, surface, dispatcher, clock, cfg.CountdownInterval, cfg.NotifyMaxRetries, logger.Component("scheduler"))
	arrangementService := app.NewArrangementServiceImpl(
		repo,
		schedule.NewResolver(cfg.Timezone),
		surface,
		countdown,
		clock,
		logger.Component("app"),
	)

	janitor := scheduler.NewRetentionJanitor(
		repo,
		clock,
		cfg.Timezone,
		cfg.ArrangementRetention,
		cfg.CronSpecSweep,
		surface.Forget,
		logger.Component("scheduler"),
	)
	if err := janitor.Start(); err != nil {
		return fmt.Errorf("could not start retention janitor: %w", err)
	}

	telegram.RegisterBotCommands(ctx, bot, arrangementService, logger.Component("telegram"))
	telegram.RegisterArrangementResponseHandlers(ctx, bot, arrangementService, logger.Component("telegram"))
	mainLogger.Info("Application setup complete. Bot and janitor are running.")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		bot.Start()
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		mainLogger.Info("Shutting down application...")
		bot.Stop()
		return nil
	})
	err = g.Wait()

	janitor.Stop()
	countdown.Stop()
	mainLogger.Info("Application shut down gracefully.")
	return err
}

func loadTargets(cfg *config.AppConfig) (*targets.StaticResolver, error) {
	var fromFile map[string][]string
	if cfg.TargetGroupsFile != "" {
		var err error
		fromFile, err = targets.LoadFile(cfg.TargetGroupsFile)
		if err != nil {
			return nil, fmt.Errorf("could not load target groups: %w", err)
		}
	}
	inline, err := targets.ParseInline(cfg.TargetGroups)
	if err != nil {
		return nil, fmt.Errorf("invalid TARGET_GROUPS: %w", err)
	}
	return targets.NewStaticResolver(targets.Merge(fromFile, inline)), nil
}
