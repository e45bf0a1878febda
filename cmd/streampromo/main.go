// Package main запускает telegram-бота продвижения стримов.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/mmeshcher/streampromo-bot/internal/bot"
	"github.com/mmeshcher/streampromo-bot/internal/config"
	"github.com/mmeshcher/streampromo-bot/internal/cryptopay"
	"github.com/mmeshcher/streampromo-bot/internal/dialog"
	"github.com/mmeshcher/streampromo-bot/internal/handler"
	"github.com/mmeshcher/streampromo-bot/internal/service"
	"github.com/mmeshcher/streampromo-bot/internal/store"
)

const (
	dialogTTL         = 30 * time.Minute
	sweepInterval     = 5 * time.Minute
	keepAliveInterval = 15 * time.Minute
)

func main() {
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	sugar := logger.Sugar()

	cfg, err := config.Parse()
	if err != nil {
		sugar.Fatalw("configuration error", "error", err.Error())
	}

	st, err := store.Open(cfg.StateFile, cfg.AdminIDs)
	if err != nil {
		sugar.Fatalw("store initialization error", "error", err.Error())
	}

	api, err := tgbotapi.NewBotAPI(cfg.TelegramBotToken)
	if err != nil {
		sugar.Fatalw("telegram initialization error", "error", err.Error())
	}

	notifier := bot.NewNotifier(api)
	provider := cryptopay.NewClient(cfg.CryptoBotAPIURL, cfg.CryptoBotToken, cfg.PaidButtonURL)

	svc := service.NewService(st, provider, notifier, logger)
	defer svc.Close()

	dialogs := dialog.NewManager(dialogTTL)

	b := bot.New(api, svc, dialogs, logger)

	h := handler.NewHandler(logger)
	server := &http.Server{
		Addr:    cfg.RunAddress,
		Handler: h.SetupRouter(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	dialogs.StartSweeper(ctx, sweepInterval)
	svc.StartKeepAlive(ctx, keepAliveInterval)

	// Запуск цикла обработки telegram-обновлений
	g.Go(func() error {
		sugar.Infow("starting bot", "account", api.Self.UserName)
		return b.Run(ctx)
	})

	// Запуск keep-alive HTTP-сервера
	g.Go(func() error {
		sugar.Infow("starting keep-alive server", "addr", cfg.RunAddress)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	// Graceful shutdown при отмене контекста (сигнал или ошибка в другой горутине)
	g.Go(func() error {
		<-ctx.Done()
		sugar.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown error: %w", err)
		}

		if err := st.Persist(); err != nil {
			return fmt.Errorf("persist state: %w", err)
		}

		sugar.Info("stopped gracefully")
		return nil
	})

	if err := g.Wait(); err != nil {
		sugar.Fatalw("application terminated with error", "error", err)
	}
}
