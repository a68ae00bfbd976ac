package sigengine

import (
	"context"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"signal-systemv1/internal/bus"
	"signal-systemv1/internal/cvd"
	"signal-systemv1/internal/logger"
	"signal-systemv1/internal/metrics"
	"signal-systemv1/internal/model"
	"signal-systemv1/internal/notification"
	"signal-systemv1/internal/ringbuf"
	redisstore "signal-systemv1/internal/store/redis"
	sqlitestore "signal-systemv1/internal/store/sqlite"
	"signal-systemv1/internal/strategy"
	"signal-systemv1/internal/trend"
)

// Service is the top-level orchestrator for the signal engine.
// It wires all dependencies, manages lifecycle, and coordinates goroutines.
type Service struct {
	cfg Config

	pipeline *Pipeline
	provider *strategy.MemoryProvider
	history  *trend.History

	ring        *ringbuf.Ring
	sigCh       chan model.Signal
	fanout      *bus.FanOut
	redisWriter *redisstore.Writer
	configStore *redisstore.ConfigStore
	sqlWriter   *sqlitestore.Writer
	sqlReader   *sqlitestore.Reader
	notifier    notification.Notifier

	prom   *metrics.Metrics
	health *metrics.HealthStatus
}

// New creates a Service from the given Config.
// Redis and SQLite failures degrade the service rather than aborting it:
// the evaluation pipeline keeps running with whatever sinks are available.
func New(cfg Config) (*Service, error) {
	svc := &Service{
		cfg:      cfg,
		provider: strategy.NewMemoryProvider(),
		history:  trend.NewHistory(time.Duration(cfg.SnapshotHorizonS) * time.Second),
		ring:     ringbuf.New(cfg.TickRingSize),
		sigCh:    make(chan model.Signal, 256),
		fanout:   bus.New(256),
		prom:     metrics.NewMetrics(),
		health:   metrics.NewHealthStatus(),
	}
	svc.pipeline = NewPipeline(cfg.HistoryLen, cvd.NewStore(cfg.CVDMaxLen), svc.provider, svc.history)
	svc.health.SetSymbols(cfg.Symbols)

	// ---- Connect to Redis ----
	var err error
	svc.redisWriter, err = redisstore.New(redisstore.WriterConfig{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err != nil {
		log.Printf("[sigengine] WARNING: redis init failed: %v (continuing without redis)", err)
	} else {
		svc.configStore = redisstore.NewConfigStore(svc.provider, svc.redisWriter.Client())
		svc.health.SetRedisConnected(true)
	}

	// ---- Open SQLite ----
	os.MkdirAll(filepath.Dir(cfg.SQLitePath), 0o755)
	svc.sqlWriter, err = sqlitestore.New(sqlitestore.WriterConfig{DBPath: cfg.SQLitePath})
	if err != nil {
		log.Printf("[sigengine] WARNING: sqlite writer init failed: %v", err)
	} else {
		svc.health.SetSQLiteOK(true)
	}
	svc.sqlReader, err = sqlitestore.NewReader(cfg.SQLitePath)
	if err != nil {
		log.Printf("[sigengine] WARNING: sqlite reader init failed: %v (recent-signal API disabled)", err)
	}

	// ---- Notification backends ----
	var backends notification.Multi
	if cfg.WebhookURL != "" {
		backends = append(backends, notification.NewWebhookNotifier(cfg.WebhookURL))
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		backends = append(backends, notification.NewTelegramNotifier(cfg.TelegramBotToken, cfg.TelegramChatID))
	}
	if len(backends) == 0 {
		svc.notifier = notification.NewLogNotifier()
	} else {
		svc.notifier = backends
	}

	return svc, nil
}

// PushTick enqueues a tick for evaluation. Non-blocking; returns false and
// counts a drop when the ring is full.
func (svc *Service) PushTick(t model.Tick) bool {
	svc.prom.TicksTotal.Inc()
	svc.health.SetLastTickTime(t.TickTS)
	if !svc.ring.Push(t) {
		svc.prom.DroppedTicks.Inc()
		svc.prom.RingBufOverflow.Inc()
		return false
	}
	return true
}

// Provider exposes the strategy config provider (for the API layer).
func (svc *Service) Provider() *strategy.MemoryProvider { return svc.provider }

// Metrics exposes the Prometheus collectors so the feed layer can count
// reconnects alongside the engine's own counters.
func (svc *Service) Metrics() *metrics.Metrics { return svc.prom }

// Health exposes the liveness status for the feed layer to flip WS state.
func (svc *Service) Health() *metrics.HealthStatus { return svc.health }

// Run starts all subsystems and blocks until ctx is cancelled.
func (svc *Service) Run(ctx context.Context) error {
	log.Println("[sigengine] starting signal engine...")

	// ---- Restore strategy config overrides ----
	if svc.configStore != nil {
		svc.configStore.Load(ctx)
	}

	// ---- Metrics & health ----
	metricsSrv := metrics.NewServer(svc.cfg.MetricsAddr, svc.health)
	metricsSrv.Start()
	if svc.redisWriter != nil && svc.sqlWriter != nil {
		svc.health.StartLivenessChecker(ctx, svc.redisWriter.Client(), svc.sqlWriter.DB(), 15*time.Second)
	}

	// ---- Snapshot retention sweep ----
	svc.history.StartPurger(ctx, time.Duration(svc.cfg.PurgeIntervalS)*time.Second)

	// ---- Signal fan-out to sinks ----
	svc.fanout.OnDrop = func(sink string) {
		svc.prom.SinkDropsTotal.WithLabelValues(sink).Inc()
	}
	if svc.redisWriter != nil {
		ch := svc.fanout.Subscribe("redis")
		go svc.redisWriter.Run(ctx, ch)
	}
	if svc.sqlWriter != nil {
		ch := svc.fanout.Subscribe("sqlite")
		go svc.sqlWriter.Run(ctx, ch)
	}
	notifyCh := svc.fanout.Subscribe("notify")
	go svc.notifyLoop(ctx, notifyCh)
	go svc.fanout.Run(ctx, svc.sigCh)

	// ---- Diagnostics API ----
	svc.StartHTTP(ctx, svc.cfg.HTTPAddr)

	// ---- Evaluation loop ----
	go svc.evalLoop(ctx)

	log.Printf("[sigengine] running: %d symbols, history=%d, cvd cap=%d",
		len(svc.cfg.Symbols), svc.cfg.HistoryLen, svc.cfg.CVDMaxLen)

	<-ctx.Done()
	svc.shutdown()
	return nil
}

// evalLoop drains the tick ring and runs each tick through the pipeline.
// Single consumer: tick processing within a symbol is strictly sequential.
func (svc *Service) evalLoop(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}
		tick, ok := svc.ring.Pop()
		if !ok {
			time.Sleep(500 * time.Microsecond)
			continue
		}

		start := time.Now()
		snap, signals := svc.pipeline.Process(tick)
		svc.prom.EvalDur.Observe(time.Since(start).Seconds())
		svc.prom.SnapshotsTotal.Inc()
		svc.prom.TrackedSymbols.Set(float64(svc.pipeline.SymbolCount()))

		if svc.redisWriter != nil {
			svc.redisWriter.WriteSnapshot(ctx, snap)
		}

		for _, sig := range signals {
			svc.prom.SignalsTotal.WithLabelValues(sig.Strategy).Inc()
			slog.Info("signal triggered",
				"trace_id", logger.GenerateTraceID(sig.Symbol, sig.TS),
				"symbol", sig.Symbol,
				"strategy", sig.Strategy,
				"entry", sig.Entry,
				"take_profit", sig.TakeProfit,
				"stop_loss", sig.StopLoss,
			)
			select {
			case svc.sigCh <- sig:
			default:
				svc.prom.SinkDropsTotal.WithLabelValues("fanout").Inc()
			}
		}
	}
}

// notifyLoop delivers signals to the configured notifier.
func (svc *Service) notifyLoop(ctx context.Context, ch <-chan model.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-ch:
			if !ok {
				return
			}
			if err := svc.notifier.Send(ctx, sig); err != nil {
				log.Printf("[sigengine] notify error: %v", err)
			}
		}
	}
}

// shutdown closes sinks in dependency order.
func (svc *Service) shutdown() {
	log.Println("[sigengine] shutdown signal received...")

	if svc.sqlReader != nil {
		svc.sqlReader.Close()
	}
	if svc.sqlWriter != nil {
		svc.sqlWriter.Close()
	}
	if svc.redisWriter != nil {
		svc.redisWriter.Close()
	}

	log.Println("[sigengine] shutdown complete.")
}
