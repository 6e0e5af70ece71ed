package notifiers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/samvad-hq/streamer-sales-catalog/pkg/httpclient"
)

const (
	headerLevel  = "X-Notification-Level"
	headerSource = "X-Notification-Source"
	headerTime   = "X-Notification-Time"
)

// httpNotifier posts each notification as JSON to a webhook.
type httpNotifier struct {
	id      string
	url     string
	headers map[string]string
	client  httpclient.Client
}

func newHTTPNotifier(_ context.Context, cfg NotifierConfig, _ Logger) (Notifier, error) {
	if cfg.HTTP == nil {
		return nil, fmt.Errorf("notifier %q missing http configuration", cfg.ID)
	}

	return &httpNotifier{
		id:      cfg.ID,
		url:     cfg.HTTP.URL,
		headers: cfg.HTTP.Headers,
		client:  httpclient.NewRestyClient(time.Duration(cfg.HTTP.TimeoutSeconds) * time.Second),
	}, nil
}

func (h *httpNotifier) ID() string   { return h.id }
func (h *httpNotifier) Type() string { return TypeHTTP }

func (h *httpNotifier) Notify(ctx context.Context, n Notification) error {
	resp, err := h.client.Post(ctx, h.url, h.requestHeaders(n), n)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	if status := resp.StatusCode(); status < http.StatusOK || status >= http.StatusMultipleChoices {
		return fmt.Errorf("http response status %d: %s", status, readBodySnippet(resp.Body()))
	}
	return nil
}

// requestHeaders merges the configured headers with per-notification metadata so
// receivers can route on level and source without decoding the body.
func (h *httpNotifier) requestHeaders(n Notification) map[string]string {
	out := make(map[string]string, len(h.headers)+3)
	for k, v := range h.headers {
		out[k] = v
	}
	if n.Level != "" {
		out[headerLevel] = n.Level
	}
	if n.Source != "" {
		out[headerSource] = n.Source
	}
	if !n.OccurredAt.IsZero() {
		out[headerTime] = n.OccurredAt.UTC().Format(time.RFC3339)
	}
	return out
}

func readBodySnippet(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	if len(body) > 512 {
		body = body[:512]
	}
	return strings.TrimSpace(string(body))
}
