package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"basesignals/internal/model"
	"basesignals/internal/retry"
)

// APISink POSTs signal bundles to a remote attest endpoint. Transient
// failures are retried with backoff before the error reaches the dispatcher.
type APISink struct {
	url    string
	hc     *http.Client
	policy retry.Policy
}

func NewAPISink(baseURL string, timeout time.Duration) *APISink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &APISink{
		url: strings.TrimRight(baseURL, "/") + "/attest",
		hc:  &http.Client{Timeout: timeout},
		policy: retry.Policy{
			MaxAttempts: 3,
			BaseDelay:   200 * time.Millisecond,
			MaxDelay:    2 * time.Second,
			Jitter:      100 * time.Millisecond,
		},
	}
}

func (s *APISink) Name() string { return "api" }

func (s *APISink) Deliver(ctx context.Context, signals model.UserSignals) error {
	payload, err := json.Marshal(map[string]any{
		"address": signals.Address,
		"signals": signals.Signals,
		"intent":  signals.PrimaryIntent,
	})
	if err != nil {
		return err
	}
	return retry.Do(ctx, s.policy, func(ctx context.Context) error {
		return s.post(ctx, payload)
	})
}

func (s *APISink) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := s.hc.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 400 {
		return fmt.Errorf("attest status=%d", resp.StatusCode)
	}
	return nil
}
