package notification

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"signal-systemv1/internal/model"
)

// WebhookNotifier POSTs signal JSON to a generic HTTP endpoint.
// Sends are rate-limited so a misconfigured strategy flapping between armed
// and triggered cannot flood the receiver.
type WebhookNotifier struct {
	url     string
	client  *http.Client
	limiter *rate.Limiter
}

// NewWebhookNotifier creates a webhook notifier.
// url: the HTTP endpoint to POST signals to.
func NewWebhookNotifier(url string) *WebhookNotifier {
	return &WebhookNotifier{
		url: url,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
		// 1 req/s sustained, bursts of 5
		limiter: rate.NewLimiter(rate.Every(time.Second), 5),
	}
}

func (w *WebhookNotifier) Send(ctx context.Context, sig model.Signal) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("webhook: rate wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(sig.JSON()))
	if err != nil {
		return fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook: send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook: unexpected status %d", resp.StatusCode)
	}
	return nil
}
