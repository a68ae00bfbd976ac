package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"signal-systemv1/config"
	"signal-systemv1/internal/logger"
	"signal-systemv1/internal/marketdata/ws"
	"signal-systemv1/internal/sigengine"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds | log.Lshortfile)
	logger.Init("sigengine", slog.LevelInfo)

	// .env is optional; real deployments set the environment directly.
	if err := godotenv.Load(); err == nil {
		log.Printf("[sigengine] loaded .env")
	}

	feedCfg := config.Load()
	cfg := sigengine.LoadConfig()
	log.Printf("[sigengine] symbols: %v, history: %d, feed: %s",
		cfg.Symbols, cfg.HistoryLen, feedCfg.FeedWSURL)

	svc, err := sigengine.New(cfg)
	if err != nil {
		log.Fatalf("[sigengine] init failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	ingest := ws.New(ws.IngestConfig{
		URL:        feedCfg.FeedWSURL,
		Symbols:    feedCfg.ParseSymbols(),
		APIKey:     feedCfg.FeedAPIKey,
		ClientCode: feedCfg.FeedClientCode,
		TOTPSecret: feedCfg.FeedTOTPSecret,
	})
	ingest.OnReconnect = func() { svc.Metrics().WSReconnects.Inc() }
	ingest.OnConnected = func(up bool) { svc.Health().SetWSConnected(up) }

	go func() {
		if err := ingest.Run(ctx, svc.PushTick); err != nil && ctx.Err() == nil {
			log.Printf("[sigengine] ingest stopped: %v", err)
			cancel()
		}
	}()

	if err := svc.Run(ctx); err != nil {
		log.Fatalf("[sigengine] fatal: %v", err)
	}
}
