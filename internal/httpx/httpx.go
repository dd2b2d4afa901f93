// Package httpx pushes serialized particle snapshots to an optional
// external renderer webhook, retrying transient failures with exponential
// backoff.
package httpx

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/cenkalti/backoff/v5"

	"github.com/onnwee/nbody-core/internal/config"
	"github.com/onnwee/nbody-core/internal/logger"
)

// Observer callback to report attempt telemetry.
type AttemptInfo struct {
	Attempt int
	Status  int
	Err     error
}

type Observer func(info AttemptInfo)

// PushSnapshot POSTs payload to cfg.WebhookURL, retrying on network errors
// and 429/5xx responses with exponential backoff up to cfg.WebhookMaxRetries
// attempts. It is a no-op if no webhook URL is configured.
func PushSnapshot(ctx context.Context, client *http.Client, payload []byte, obs Observer) error {
	cfg := config.Load()
	if cfg.WebhookURL == "" {
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = cfg.WebhookRetryBase

	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.WebhookURL, bytes.NewReader(payload))
		if err != nil {
			return struct{}{}, err
		}
		req.Header.Set("Content-Type", "application/octet-stream")

		resp, err := client.Do(req)
		if err != nil {
			if obs != nil {
				obs(AttemptInfo{Attempt: attempt, Err: err})
			}
			return struct{}{}, err
		}
		defer resp.Body.Close()

		if obs != nil {
			obs(AttemptInfo{Attempt: attempt, Status: resp.StatusCode})
		}

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return struct{}{}, fmt.Errorf("webhook push: status %d", resp.StatusCode)
		}
		if resp.StatusCode >= 400 {
			return struct{}{}, backoff.Permanent(fmt.Errorf("webhook push: status %d", resp.StatusCode))
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(maxTries(cfg.WebhookMaxRetries))),
	)

	if err != nil {
		logger.Get().Warn("webhook push failed", "url", cfg.WebhookURL, "attempts", attempt, "error", err)
	}
	return err
}

func maxTries(retries int) int {
	if retries < 1 {
		return 1
	}
	return retries
}
