package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"ukm-ponja/internal/app"
	"ukm-ponja/internal/config"
	"ukm-ponja/internal/logging"
	"ukm-ponja/internal/render"
	"ukm-ponja/internal/scheduler"
	"ukm-ponja/internal/telegram"
	"ukm-ponja/internal/web"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg, err := config.New()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("failed to build services", zap.Error(err))
	}
	renderer := render.NewRenderer()

	deps := web.Deps{
		Settings: a.Settings,
		Gallery:  a.Gallery,
		Admins:   a.Admins,
		Tokens:   a.Tokens,
		Renderer: renderer,
		Cache:    a.Cache,
		Metrics:  a.Metrics,
		Log:      logger.Named("web"),

		ExportTimeout: cfg.ExportTimeout,
	}
	// typed nils must not reach the interfaces
	if a.Pipeline != nil {
		deps.Exporter = a.Pipeline
	}
	if a.Insight != nil {
		deps.Insight = a.Insight
	}
	srv := web.NewServer(deps)

	var bot *telegram.Bot
	if cfg.TelegramBotToken != "" {
		tdeps := telegram.Deps{
			Auth:      a.Admins,
			Settings:  a.Settings,
			Renderer:  renderer,
			Recorder:  a.Recorder,
			AdminIDs:  cfg.TelegramAdminIDs,
			ParseMode: cfg.MessageParseMode,
			Log:       logger.Named("telegram"),

			ExportTimeout: cfg.ExportTimeout,
		}
		if a.Pipeline != nil {
			tdeps.Exporter = a.Pipeline
		}
		bot, err = telegram.New(cfg.TelegramBotToken, tdeps)
		if err != nil {
			logger.Error("telegram bot disabled", zap.Error(err))
		} else {
			go bot.Start(ctx)
		}
	}

	sched := scheduler.New(logger.Named("scheduler"))
	if bot != nil {
		sched.SetReportFunction(bot.ReportToAdmins)
	}
	if a.Pipeline != nil {
		sched.SetSnapshotFunction(cfg.ExportSchedule, func(ctx context.Context) error {
			res, err := a.SnapshotExport(ctx)
			if bot != nil {
				bot.NotifyExport(res, err)
			}
			return err
		})
	}
	if err := sched.Start(); err != nil {
		logger.Fatal("failed to start scheduler", zap.Error(err))
	}
	defer sched.Stop()

	go func() {
		<-ctx.Done()
		if err := srv.Stop(); err != nil {
			logger.Warn("web server shutdown", zap.Error(err))
		}
	}()
	if err := srv.Start(cfg.HTTPAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("web server failed", zap.Error(err))
	}
	logger.Info("portal stopped")
}
