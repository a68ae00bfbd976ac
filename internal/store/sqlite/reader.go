package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"signal-systemv1/internal/model"

	_ "github.com/mattn/go-sqlite3"
)

// Reader reads persisted signals for diagnostics and UI backfill.
type Reader struct {
	db *sql.DB
}

var _ model.SignalReader = (*Reader)(nil)

// NewReader opens the signals database read-only.
func NewReader(dbPath string) (*Reader, error) {
	db, err := sql.Open("sqlite3", dbPath+"?mode=ro&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("sqlite open: %w", err)
	}
	return &Reader{db: db}, nil
}

// ReadRecent returns up to limit most recent signals, newest first.
func (r *Reader) ReadRecent(ctx context.Context, limit int) ([]model.Signal, error) {
	if limit <= 0 {
		limit = 100
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT symbol, strategy, ts, entry, take_profit, stop_loss, snapshot, conditions
		FROM signals ORDER BY ts DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	var signals []model.Signal
	for rows.Next() {
		var (
			sig      model.Signal
			tsMilli  int64
			snapJSON string
			condJSON string
		)
		if err := rows.Scan(
			&sig.Symbol, &sig.Strategy, &tsMilli,
			&sig.Entry, &sig.TakeProfit, &sig.StopLoss,
			&snapJSON, &condJSON,
		); err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		sig.TS = time.UnixMilli(tsMilli).UTC()
		json.Unmarshal([]byte(snapJSON), &sig.Snapshot)
		json.Unmarshal([]byte(condJSON), &sig.Conditions)
		signals = append(signals, sig)
	}
	return signals, rows.Err()
}

// Close releases the database handle.
func (r *Reader) Close() error {
	return r.db.Close()
}
