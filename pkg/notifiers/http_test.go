package notifiers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"
)

func TestHTTPNotifierSuccess(t *testing.T) {
	var got Notification
	var header http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		header = r.Header.Clone()
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n, err := newHTTPNotifier(context.Background(), NotifierConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPNotifierConfig{
			URL:            srv.URL,
			Headers:        map[string]string{"X-Test": "1"},
			TimeoutSeconds: 2,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPNotifier: %v", err)
	}

	sent := NewNotification(LevelError, "catalog", "product interface error")
	if err := n.Notify(context.Background(), sent); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	if got.Message != "product interface error" || got.Level != LevelError {
		t.Fatalf("server received %+v", got)
	}
	if h := header.Get("X-Test"); h != "1" {
		t.Fatalf("configured header missing, got %q", h)
	}
	if h := header.Get("Content-Type"); h != "application/json" {
		t.Fatalf("Content-Type = %q", h)
	}
	if h := header.Get(headerLevel); h != LevelError {
		t.Fatalf("%s = %q", headerLevel, h)
	}
	if h := header.Get(headerSource); h != "catalog" {
		t.Fatalf("%s = %q", headerSource, h)
	}
	ts, err := time.Parse(time.RFC3339, header.Get(headerTime))
	if err != nil {
		t.Fatalf("%s not RFC3339: %v", headerTime, err)
	}
	if !ts.Equal(sent.OccurredAt.Truncate(time.Second)) {
		t.Fatalf("%s = %s, want %s", headerTime, ts, sent.OccurredAt)
	}
}

func TestHTTPNotifierOmitsEmptyMetadataHeaders(t *testing.T) {
	h := &httpNotifier{headers: map[string]string{"X-Test": "1"}}
	got := h.requestHeaders(Notification{Message: "bare"})
	if len(got) != 1 || got["X-Test"] != "1" {
		t.Fatalf("unexpected headers %v", got)
	}
	if len(h.headers) != 1 {
		t.Fatalf("configured headers must not be mutated: %v", h.headers)
	}
}

func TestHTTPNotifierErrorOnNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusBadRequest)
	}))
	defer srv.Close()

	n, err := newHTTPNotifier(context.Background(), NotifierConfig{
		ID:   "hook",
		Type: TypeHTTP,
		HTTP: &HTTPNotifierConfig{
			URL:            srv.URL,
			TimeoutSeconds: 1,
		},
	}, nil)
	if err != nil {
		t.Fatalf("newHTTPNotifier: %v", err)
	}

	if err := n.Notify(context.Background(), Notification{}); err == nil {
		t.Fatalf("expected error on non-2xx response")
	}
}

func TestHTTPNotifierMinLevelSkipsWarnings(t *testing.T) {
	var hits atomic.Int32
	var lastLevel atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		lastLevel.Store(r.Header.Get(headerLevel))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	n, err := Build(context.Background(), sanitizeNotifierConfig(NotifierConfig{
		ID:       "user-hook",
		Type:     TypeHTTP,
		MinLevel: "ERROR",
		HTTP:     &HTTPNotifierConfig{URL: srv.URL},
	}), nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if err := n.Notify(context.Background(), NewNotification(LevelWarn, "catalog", "product list fetch failed")); err != nil {
		t.Fatalf("Notify warn: %v", err)
	}
	if hits.Load() != 0 {
		t.Fatalf("warn notification must not reach an error-only webhook")
	}

	if err := n.Notify(context.Background(), NewNotification(LevelError, "catalog", "product interface error")); err != nil {
		t.Fatalf("Notify error: %v", err)
	}
	if hits.Load() != 1 || lastLevel.Load() != LevelError {
		t.Fatalf("expected one error delivery, hits=%d level=%v", hits.Load(), lastLevel.Load())
	}
}
