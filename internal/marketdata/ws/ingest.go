// Package ws connects to the market data WebSocket feed and pushes normalized
// ticks into the engine. Reconnection, backoff, and session auth live here —
// the evaluation pipeline never sees transport concerns.
package ws

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/gorilla/websocket"
	"github.com/pquerna/otp/totp"

	"signal-systemv1/internal/model"
)

// IngestConfig holds configuration for the WS ingest.
type IngestConfig struct {
	URL     string
	Symbols []string

	// Feed session auth. When TOTPSecret is set, a login frame carrying a
	// fresh TOTP code is sent before subscribing (broker-style feeds).
	APIKey     string
	ClientCode string
	TOTPSecret string
}

// Ingest maintains the feed connection and pushes ticks into the engine.
type Ingest struct {
	cfg IngestConfig

	// Optional hooks
	OnReconnect func()
	OnConnected func(bool)
}

// New creates a new Ingest instance.
func New(cfg IngestConfig) *Ingest {
	return &Ingest{cfg: cfg}
}

// tickMsg is the wire shape of one tick.
type tickMsg struct {
	Symbol string    `json:"symbol"`
	Price  float64   `json:"price"`
	Volume float64   `json:"volume"`
	TickTS time.Time `json:"tick_ts"`
}

// authMsg is the login frame for feeds requiring session auth.
type authMsg struct {
	Op         string `json:"op"`
	APIKey     string `json:"api_key,omitempty"`
	ClientCode string `json:"client_code,omitempty"`
	TOTP       string `json:"totp,omitempty"`
}

// subscribeMsg requests tick delivery for a symbol set.
type subscribeMsg struct {
	Op      string   `json:"op"`
	Symbols []string `json:"symbols"`
}

// Run connects and consumes ticks until ctx is cancelled, reconnecting with
// exponential backoff on any failure. push is called for every tick; a false
// return means the tick was dropped downstream (counted there, not here).
func (in *Ingest) Run(ctx context.Context, push func(model.Tick) bool) error {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = time.Second
	bo.MaxInterval = 30 * time.Second
	bo.MaxElapsedTime = 0 // retry forever

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := in.consume(ctx, push)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if in.OnConnected != nil {
			in.OnConnected(false)
		}
		if in.OnReconnect != nil {
			in.OnReconnect()
		}

		wait := bo.NextBackOff()
		log.Printf("[ws] connection lost: %v — reconnecting in %v", err, wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
}

// consume runs one connection lifetime: dial, auth, subscribe, read loop.
func (in *Ingest) consume(ctx context.Context, push func(model.Tick) bool) error {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, _, err := websocket.DefaultDialer.DialContext(dialCtx, in.cfg.URL, nil)
	cancel()
	if err != nil {
		return fmt.Errorf("dial %s: %w", in.cfg.URL, err)
	}
	defer conn.Close()

	if err := in.authenticate(conn); err != nil {
		return err
	}

	sub := subscribeMsg{Op: "subscribe", Symbols: in.cfg.Symbols}
	if err := conn.WriteJSON(sub); err != nil {
		return fmt.Errorf("subscribe: %w", err)
	}

	log.Printf("[ws] connected to %s, subscribed to %d symbols", in.cfg.URL, len(in.cfg.Symbols))
	if in.OnConnected != nil {
		in.OnConnected(true)
	}

	// Close the connection when ctx is cancelled so ReadMessage unblocks.
	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read: %w", err)
		}

		var msg tickMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			log.Printf("[ws] skipping malformed frame: %v", err)
			continue
		}
		if msg.Symbol == "" {
			continue // control frame
		}

		ts := msg.TickTS
		if ts.IsZero() {
			ts = time.Now().UTC()
		}
		push(model.Tick{
			Symbol: msg.Symbol,
			Price:  msg.Price,
			Volume: msg.Volume,
			TickTS: ts,
		})
	}
}

// authenticate sends the login frame when the feed requires session auth.
func (in *Ingest) authenticate(conn *websocket.Conn) error {
	if in.cfg.TOTPSecret == "" {
		return nil
	}

	code, err := totp.GenerateCode(in.cfg.TOTPSecret, time.Now())
	if err != nil {
		return fmt.Errorf("totp generate: %w", err)
	}
	auth := authMsg{
		Op:         "auth",
		APIKey:     in.cfg.APIKey,
		ClientCode: in.cfg.ClientCode,
		TOTP:       code,
	}
	if err := conn.WriteJSON(auth); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	return nil
}
