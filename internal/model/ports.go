package model

import "context"

// ── Sink Port Interfaces ──
// These interfaces decouple the evaluation pipeline from concrete sink
// implementations (Redis, SQLite, webhooks). The pipeline hands a Signal
// off once per trigger; delivery guarantees beyond that belong to the sink.

// SignalWriter consumes triggered signals and persists or forwards them.
type SignalWriter interface {
	// Run reads signals from sigCh and writes them.
	// Blocks until ctx is cancelled or sigCh is closed.
	Run(ctx context.Context, sigCh <-chan Signal)

	// Close releases underlying resources.
	Close() error
}

// SignalReader reads persisted signals for diagnostics and UI backfill.
type SignalReader interface {
	// ReadRecent returns up to limit most recent signals, newest first.
	ReadRecent(ctx context.Context, limit int) ([]Signal, error)

	// Close releases underlying resources.
	Close() error
}

// SnapshotWriter publishes the latest indicator snapshot per symbol.
type SnapshotWriter interface {
	// WriteSnapshot stores the most recent snapshot for a symbol.
	WriteSnapshot(ctx context.Context, snap IndicatorSnapshot)

	// Close releases underlying resources.
	Close() error
}
