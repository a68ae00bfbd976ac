// Package redis persists triggered signals and latest indicator snapshots to
// Redis, and stores the active strategy configuration.
package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"signal-systemv1/internal/model"
)

const (
	// Stream trimming: enough to back-fill a UI session without unbounded growth.
	signalStreamMaxLen = 10000
	signalStreamKey    = "signals"
	snapshotKeyPrefix  = "snapshot:"
	defaultLatestTTL   = 30 * time.Minute
)

// WriterConfig configures the Redis writer.
type WriterConfig struct {
	Addr     string // Redis address, e.g. "localhost:6379"
	Password string
	DB       int
}

// Writer writes signals and snapshots to Redis behind a circuit breaker.
type Writer struct {
	client  *goredis.Client
	breaker *Breaker
}

var (
	_ model.SignalWriter   = (*Writer)(nil)
	_ model.SnapshotWriter = (*Writer)(nil)
)

// Client returns the underlying Redis client for health checks.
func (w *Writer) Client() *goredis.Client { return w.client }

// New creates a new Redis Writer and pings the server.
func New(cfg WriterConfig) (*Writer, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	breaker := NewBreaker(5, 10*time.Second)
	breaker.OnStateChange = func(from, to BreakerState) {
		log.Printf("[redis] circuit breaker %s → %s", from, to)
	}

	log.Printf("[redis] connected to %s", cfg.Addr)
	return &Writer{client: client, breaker: breaker}, nil
}

// Run reads signals from sigCh and writes them to the signal stream.
// Blocks until ctx is cancelled or sigCh is closed.
func (w *Writer) Run(ctx context.Context, sigCh <-chan model.Signal) {
	for {
		select {
		case <-ctx.Done():
			return
		case sig, ok := <-sigCh:
			if !ok {
				return
			}
			w.writeSignal(ctx, sig)
		}
	}
}

// writeSignal appends one signal to the capped signal stream.
func (w *Writer) writeSignal(ctx context.Context, sig model.Signal) {
	err := w.breaker.Execute(func() error {
		return w.client.XAdd(ctx, &goredis.XAddArgs{
			Stream: signalStreamKey,
			MaxLen: signalStreamMaxLen,
			Approx: true,
			Values: map[string]interface{}{
				"symbol":   sig.Symbol,
				"strategy": sig.Strategy,
				"ts":       sig.TS.UnixMilli(),
				"payload":  string(sig.JSON()),
			},
		}).Err()
	})
	if err != nil && err != ErrCircuitOpen {
		log.Printf("[redis] signal write error: %v", err)
	}
}

// WriteSnapshot stores the latest snapshot for a symbol with a TTL,
// so a restarted UI can render current state without replaying the stream.
func (w *Writer) WriteSnapshot(ctx context.Context, snap model.IndicatorSnapshot) {
	err := w.breaker.Execute(func() error {
		return w.client.Set(ctx, snapshotKeyPrefix+snap.Symbol, snap.JSON(), defaultLatestTTL).Err()
	})
	if err != nil && err != ErrCircuitOpen {
		log.Printf("[redis] snapshot write error: %v", err)
	}
}

// Close releases the Redis connection.
func (w *Writer) Close() error {
	return w.client.Close()
}
