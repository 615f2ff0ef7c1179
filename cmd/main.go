package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"grain-analyzer/config"
	telegram "grain-analyzer/internal/api"
	app "grain-analyzer/internal/application"
	"grain-analyzer/internal/container"
	"grain-analyzer/internal/infrastructure/imageio"
	"grain-analyzer/internal/infrastructure/report"
	"grain-analyzer/internal/infrastructure/storage"
	"grain-analyzer/internal/infrastructure/vision"
	"grain-analyzer/internal/logger"
)

const component = "main"

// reportRows ограничивает таблицу, чтобы сообщение уложилось в лимит Telegram.
const reportRows = 40

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.NewConsoleLogger(zerolog.InfoLevel).Error(component, err, nil)
		os.Exit(1)
	}

	level, err := logger.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.NewConsoleLogger(zerolog.InfoLevel).Error(component, err, nil)
		os.Exit(1)
	}
	log := logger.NewConsoleLogger(level)

	if cfg.TelegramToken == "" {
		log.Error(component, errors.New("TELEGRAM_TOKEN is required"), nil)
		os.Exit(1)
	}

	// Создаём хранилище пользователей
	userRepo := storage.NewMemoryUserRepository()

	// Собираем сервисы приложения
	appContainer := container.New(
		userRepo,
		vision.NewEngine(log),
		imageio.NewCodec(),
		report.NewTableFormatter(reportRows),
		imageio.NewDirMaskSource(cfg.MaskRoot, uint8(cfg.MaskThreshold)),
		app.Options{Defaults: cfg.Analysis, Workers: cfg.Workers, Log: log},
	)

	// Создаём бота
	bot, err := telegram.NewBot(cfg.TelegramToken, appContainer, log)
	if err != nil {
		log.Error(component, err, nil)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info(component, "bot is running", logger.Fields{"workers": cfg.Workers})
	if err := bot.Run(ctx); err != nil {
		log.Error(component, err, nil)
		os.Exit(1)
	}
	log.Info(component, "bot stopped", nil)
}
