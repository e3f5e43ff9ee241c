package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"poscalc-service/internal/config"
	"poscalc-service/internal/logging"
	"poscalc-service/internal/metrics"
	"poscalc-service/internal/notify"
	"poscalc-service/internal/payment"
	"poscalc-service/internal/rate"
	"poscalc-service/internal/server"
)

func main() {
	cfg := config.MustLoadConfig(".")

	logger := logging.GetLogger(cfg.Logs)
	slog.SetDefault(logger)

	metrics.Setup(cfg.Metrics)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store := rate.NewStore(buildFeed(cfg.RateFeed, logger), logger)
	go store.Run(ctx, time.Duration(cfg.RateFeed.RefreshIntervalMs)*time.Millisecond)

	notifier := notify.NewCenter(time.Duration(cfg.Notification.AutoDismissMs) * time.Millisecond)
	defer notifier.Close()

	reader := payment.NewReader(cfg.CardReader.URL, time.Duration(cfg.CardReader.TimeoutMs)*time.Millisecond, logger)
	flow := payment.NewFlow(reader, notifier, logger, cfg.CardReader.TerminalSlot, cfg.CardReader.TransactionType)

	handler := server.New(store, flow, reader, notifier, logger)

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: handler.Routes(),
	}

	go func() {
		logger.Info("Server running", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", "error", err)
	}
}

func buildFeed(cfg config.RateFeed, logger *slog.Logger) rate.Feed {
	if cfg.URL == "" {
		logger.Info("No rate feed URL configured, using static rates")
		return rate.NewStaticFeed()
	}
	return rate.NewClient(cfg.URL, time.Duration(cfg.TimeoutMs)*time.Millisecond, logger)
}
