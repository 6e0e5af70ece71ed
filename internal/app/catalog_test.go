package app

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/samvad-hq/streamer-sales-catalog/internal/config"
	"github.com/samvad-hq/streamer-sales-catalog/internal/domain"
	"github.com/samvad-hq/streamer-sales-catalog/pkg/notifiers"
	"github.com/samvad-hq/streamer-sales-catalog/pkg/productlist"
)

type capturingNotifier struct {
	mu       sync.Mutex
	received []notifiers.Notification
}

func (c *capturingNotifier) ID() string   { return "capture" }
func (c *capturingNotifier) Type() string { return notifiers.TypeLog }
func (c *capturingNotifier) Notify(_ context.Context, n notifiers.Notification) error {
	c.mu.Lock()
	c.received = append(c.received, n)
	c.mu.Unlock()
	return nil
}

// backend serves totalSize products, failing with state when failState is non-zero.
func backend(t *testing.T, totalSize, failState int) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products/list" {
			http.NotFound(w, r)
			return
		}
		var req domain.ProductListRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if failState != 0 {
			_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "state": failState, "message": "boom"})
			return
		}

		var items []domain.ProductRecord
		for i := (req.CurrentPage - 1) * req.PageSize; i < req.CurrentPage*req.PageSize && i < totalSize; i++ {
			items = append(items, domain.ProductRecord{Name: "product", RequestID: string(rune('a' + i))})
		}
		_ = json.NewEncoder(w).Encode(domain.ProductListResponse{
			Success: true,
			Data: domain.ProductPage{
				Items:       items,
				CurrentPage: req.CurrentPage,
				PageSize:    req.PageSize,
				TotalSize:   totalSize,
			},
		})
	}))
}

func testConfig(t *testing.T, baseURL string) *config.Config {
	t.Helper()
	return &config.Config{
		AppName:                "catalog-test",
		APIBaseURL:             baseURL,
		ProductListPath:        productlist.DefaultPath,
		RequestTimeout:         2 * time.Second,
		CurrentPage:            1,
		PageSize:               2,
		StorageType:            "bbolt",
		BBoltPath:              filepath.Join(t.TempDir(), "products.db"),
		StorageTTL:             time.Hour,
		StorageCleanupInterval: time.Hour,
	}
}

func TestCatalogFetchAllSnapshotsEveryPage(t *testing.T) {
	srv := backend(t, 5, 0)
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	cfg.FetchAll = true
	catalog, err := NewCatalogWithDeps(context.Background(), cfg, nil, Deps{Notifiers: []notifiers.Notifier{&capturingNotifier{}}})
	if err != nil {
		t.Fatalf("NewCatalogWithDeps: %v", err)
	}
	defer catalog.Close()

	if err := catalog.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := catalog.Result().Data.CurrentPage; got != 3 {
		t.Fatalf("expected last page 3, got %d", got)
	}

	for page := 1; page <= 3; page++ {
		catalog.Session().SetPage(page)
		snap, found, err := catalog.Cached()
		if err != nil || !found {
			t.Fatalf("page %d snapshot missing: found=%v err=%v", page, found, err)
		}
		if snap.Data.CurrentPage != page {
			t.Fatalf("page %d snapshot holds page %d", page, snap.Data.CurrentPage)
		}
	}
}

func TestCatalogRunReportsInterfaceError(t *testing.T) {
	srv := backend(t, 5, 2)
	defer srv.Close()

	capture := &capturingNotifier{}
	catalog, err := NewCatalogWithDeps(context.Background(), testConfig(t, srv.URL), nil, Deps{Notifiers: []notifiers.Notifier{capture}})
	if err != nil {
		t.Fatalf("NewCatalogWithDeps: %v", err)
	}
	defer catalog.Close()

	err = catalog.Run(context.Background())
	if !errors.Is(err, productlist.ErrInterface) {
		t.Fatalf("expected interface error, got %v", err)
	}
	if catalog.Session().HasResult() {
		t.Fatalf("result must stay empty on failure")
	}
	if len(capture.received) != 1 || capture.received[0].Message != productlist.InterfaceErrorMessage {
		t.Fatalf("unexpected notifications %+v", capture.received)
	}
	if capture.received[0].Source != "catalog-test" {
		t.Fatalf("notification source = %q", capture.received[0].Source)
	}
}

func TestCatalogPollLoopStopsOnCancel(t *testing.T) {
	srv := backend(t, 1, 0)
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	cfg.StorageType = "none"
	cfg.PollInterval = 10 * time.Millisecond
	catalog, err := NewCatalog(context.Background(), cfg, nil)
	if err != nil {
		t.Fatalf("NewCatalog: %v", err)
	}
	defer catalog.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := catalog.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !catalog.Session().HasResult() {
		t.Fatalf("expected at least one accepted fetch")
	}
}

func TestCatalogPollLoopWarnsOnTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	cfg.StorageType = "none"
	cfg.PollInterval = 10 * time.Millisecond
	capture := &capturingNotifier{}
	catalog, err := NewCatalogWithDeps(context.Background(), cfg, nil, Deps{Notifiers: []notifiers.Notifier{capture}})
	if err != nil {
		t.Fatalf("NewCatalogWithDeps: %v", err)
	}
	defer catalog.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := catalog.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	capture.mu.Lock()
	defer capture.mu.Unlock()
	if len(capture.received) == 0 {
		t.Fatalf("expected warn notifications for failed polls")
	}
	for _, n := range capture.received {
		if n.Level != notifiers.LevelWarn {
			t.Fatalf("transport failure must notify at warn level, got %+v", n)
		}
	}
}

func TestCatalogPollLoopDoesNotWarnOnInterfaceError(t *testing.T) {
	srv := backend(t, 5, 3)
	defer srv.Close()

	cfg := testConfig(t, srv.URL)
	cfg.StorageType = "none"
	cfg.PollInterval = 10 * time.Millisecond
	capture := &capturingNotifier{}
	catalog, err := NewCatalogWithDeps(context.Background(), cfg, nil, Deps{Notifiers: []notifiers.Notifier{capture}})
	if err != nil {
		t.Fatalf("NewCatalogWithDeps: %v", err)
	}
	defer catalog.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := catalog.Run(ctx); err != nil {
		t.Fatalf("Run: %v", err)
	}

	capture.mu.Lock()
	defer capture.mu.Unlock()
	if len(capture.received) == 0 {
		t.Fatalf("expected interface error notifications")
	}
	for _, n := range capture.received {
		if n.Level != notifiers.LevelError || n.Message != productlist.InterfaceErrorMessage {
			t.Fatalf("unexpected notification %+v", n)
		}
	}
}

func TestNewCatalogRejectsMissingNotifiersFile(t *testing.T) {
	cfg := testConfig(t, "http://localhost")
	cfg.NotifiersFile = filepath.Join(t.TempDir(), "missing.yaml")
	if _, err := NewCatalog(context.Background(), cfg, nil); err == nil {
		t.Fatalf("expected error for missing notifiers file")
	}
}
