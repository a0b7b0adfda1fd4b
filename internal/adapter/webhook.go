package adapter

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/felixgeelhaar/plansched/internal/errors"
	"github.com/felixgeelhaar/plansched/internal/plan"
)

// DefaultWebhookTimeout bounds a single delivery.
const DefaultWebhookTimeout = 10 * time.Second

// WebhookAdapter POSTs every committed plan as JSON to a URL.
type WebhookAdapter struct {
	url     string
	headers map[string]string
	client  *http.Client
}

// WebhookOption configures a WebhookAdapter.
type WebhookOption func(*WebhookAdapter)

// WithHeader sets a request header on every delivery.
func WithHeader(key, value string) WebhookOption {
	return func(a *WebhookAdapter) { a.headers[key] = value }
}

// WithHTTPClient replaces the HTTP client.
func WithHTTPClient(c *http.Client) WebhookOption {
	return func(a *WebhookAdapter) { a.client = c }
}

// NewWebhookAdapter creates a WebhookAdapter delivering to url.
func NewWebhookAdapter(url string, opts ...WebhookOption) *WebhookAdapter {
	a := &WebhookAdapter{
		url:     url,
		headers: make(map[string]string),
		client:  &http.Client{Timeout: DefaultWebhookTimeout},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name implements the adapter label.
func (a *WebhookAdapter) Name() string { return "webhook" }

// URL returns the delivery endpoint.
func (a *WebhookAdapter) URL() string { return a.url }

// PlanChanged delivers p. Any non-2xx response is an error.
func (a *WebhookAdapter) PlanChanged(ctx context.Context, p plan.Plan) error {
	payload, err := json.Marshal(p)
	if err != nil {
		return errors.Wrap(errors.ErrCodeFileMarshal, "failed to marshal plan", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(payload))
	if err != nil {
		return errors.Wrap(errors.ErrCodeRequestFailed, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Plan-ID", p.ID)
	for k, v := range a.headers {
		req.Header.Set(k, v)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRequestFailed, "webhook request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewBadStatusError(a.url, resp.StatusCode)
	}
	return nil
}
