package rpc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/glhive/hive/internal/hive"
)

// retryBackoff is the pause before the single retry of a transport-level
// failure. Authorization failures are terminal and never retried; only
// timeouts and refused connections qualify.
const retryBackoff = 200 * time.Millisecond

// client is the shared JSON round-trip machinery under the typed service
// clients. Every call forwards the original caller's bearer header unchanged
// so the callee can independently re-authenticate the request chain.
type client struct {
	serviceName string
	baseURL     string
	httpClient  *http.Client
}

func newClient(serviceName, baseURL string, timeout time.Duration) *client {
	return &client{
		serviceName: serviceName,
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: timeout},
	}
}

func (c *client) get(ctx context.Context, path, bearer string, out any) error {
	return c.do(ctx, http.MethodGet, path, bearer, nil, out)
}

func (c *client) post(ctx context.Context, path, bearer string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, bearer, body, out)
}

// do performs one JSON round trip. A non-2xx response is decoded into the
// remote's declared error and re-raised locally with the same status; a
// transport failure is retried once, then surfaced as UpstreamUnavailable.
func (c *client) do(ctx context.Context, method, path, bearer string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encoding request body: %w", err)
		}
	}

	var resp *http.Response
	for attempt := 0; ; attempt++ {
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("building request: %w", err)
		}
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		if bearer != "" {
			req.Header.Set("Authorization", bearer)
		}

		resp, err = c.httpClient.Do(req)
		if err == nil {
			break
		}
		if attempt > 0 || ctx.Err() != nil {
			return hive.UpstreamUnavailable("%s is unavailable: %v", c.serviceName, err)
		}
		slog.Warn("cross-service call failed, retrying once",
			"service", c.serviceName, "path", path, "error", err)
		time.Sleep(retryBackoff)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return hive.Decode(resp.StatusCode, resp.Body)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", c.serviceName, err)
	}
	return nil
}
