package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/KotFed0t/bond_etf_tracker/config"
	"github.com/KotFed0t/bond_etf_tracker/data"
	"github.com/KotFed0t/bond_etf_tracker/data/session"
	"github.com/KotFed0t/bond_etf_tracker/internal/cache"
	"github.com/KotFed0t/bond_etf_tracker/internal/externalApi/cloudStorageApi/googleDriveApi"
	"github.com/KotFed0t/bond_etf_tracker/internal/externalApi/newsApi"
	"github.com/KotFed0t/bond_etf_tracker/internal/externalApi/yahooApi"
	"github.com/KotFed0t/bond_etf_tracker/internal/gateway/marketGateway"
	"github.com/KotFed0t/bond_etf_tracker/internal/gateway/newsGateway"
	"github.com/KotFed0t/bond_etf_tracker/internal/model"
	"github.com/KotFed0t/bond_etf_tracker/internal/reportGenerator/xslsxGenerator"
	"github.com/KotFed0t/bond_etf_tracker/internal/scheduler"
	"github.com/KotFed0t/bond_etf_tracker/internal/service/dashboardService"
	"github.com/KotFed0t/bond_etf_tracker/internal/tgbot"
	"github.com/KotFed0t/bond_etf_tracker/internal/tracker"
	"github.com/KotFed0t/bond_etf_tracker/internal/transport/telegram"
)

func main() {
	cfg := config.MustLoad()

	setupLogger(cfg)

	slog.Debug("config", slog.Any("cfg", cfg))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	redisClient := data.NewRedisClient(cfg)
	defer redisClient.Close()

	redisSession := session.NewRedisSession(redisClient, cfg)

	tr, err := tracker.New(model.DefaultTargets)
	if err != nil {
		slog.Error("invalid allocation targets", slog.String("err", err.Error()))
		os.Exit(1)
	}

	// один кэш на процесс, общий для всех чатов
	dataCache := cache.New()

	marketGw := marketGateway.New(cfg, yahooApi.New(cfg), dataCache)
	newsGw := newsGateway.New(cfg, newsApi.New(cfg), dataCache)

	reportGenerator := xslsxGenerator.New()

	var (
		cloudStorage dashboardService.CloudStorage
		googleDrive  *googleDriveApi.GoogleDriveApi
	)
	if cfg.GoogleDrive.CredentialsFile != "" {
		googleDrive, err = googleDriveApi.New(ctx, cfg)
		if err != nil {
			slog.Error("failed to init google drive, oversized reports will be rejected", slog.String("err", err.Error()))
		} else {
			cloudStorage = googleDrive
		}
	}

	dashboardSrv := dashboardService.New(cfg, tr, marketGw, newsGw, reportGenerator, cloudStorage)

	sched := scheduler.New()
	if err = sched.NewIntervalJob("warm cache", dashboardSrv.WarmCache, cfg.Jobs.WarmCacheInterval, true); err != nil {
		slog.Error("failed to create warm cache job", slog.String("err", err.Error()))
	}
	if googleDrive != nil {
		if err = sched.NewCrontabJob("delete old report files", googleDrive.DeleteOldFiles, cfg.Jobs.DeleteOldFilesCrontab, false); err != nil {
			slog.Error("failed to create delete old report files job", slog.String("err", err.Error()))
		}
	}
	sched.Start()
	defer sched.Stop()

	tgController := telegram.NewController(dashboardSrv, redisSession)

	tgBot := tgbot.New(cfg, tgController, redisSession)
	tgBot.Start()
	defer tgBot.Stop()

	// Waiting interruption signal
	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM, syscall.SIGINT)
	<-interrupt
}

func setupLogger(cfg *config.Config) {
	var logLevel slog.Level

	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warning":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(log)
}
