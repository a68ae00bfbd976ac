// Package notification delivers triggered signals to external channels
// (webhooks, Telegram, logs).
package notification

import (
	"context"
	"log"

	"signal-systemv1/internal/model"
)

// Notifier is the interface for all notification backends.
type Notifier interface {
	// Send delivers one signal. Returns error if delivery fails.
	Send(ctx context.Context, sig model.Signal) error
}

// LogNotifier logs signals instead of delivering them (useful for development).
type LogNotifier struct{}

// NewLogNotifier creates a log-based notifier.
func NewLogNotifier() *LogNotifier {
	return &LogNotifier{}
}

func (n *LogNotifier) Send(ctx context.Context, sig model.Signal) error {
	log.Printf("[notify] %s %s entry=%.6f tp=%.6f sl=%.6f",
		sig.Symbol, sig.Strategy, sig.Entry, sig.TakeProfit, sig.StopLoss)
	return nil
}

// Multi fans one signal out to several backends. Each backend gets its own
// delivery attempt; the first error is returned after all attempts.
type Multi []Notifier

func (m Multi) Send(ctx context.Context, sig model.Signal) error {
	var first error
	for _, n := range m {
		if err := n.Send(ctx, sig); err != nil && first == nil {
			first = err
		}
	}
	return first
}
