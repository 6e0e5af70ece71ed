package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/streamer-sales-catalog/internal/config"
	"github.com/samvad-hq/streamer-sales-catalog/internal/domain"
	"github.com/samvad-hq/streamer-sales-catalog/internal/logger"
	"github.com/samvad-hq/streamer-sales-catalog/internal/storage"
	"github.com/samvad-hq/streamer-sales-catalog/pkg/httpclient"
	"github.com/samvad-hq/streamer-sales-catalog/pkg/notifiers"
	"github.com/samvad-hq/streamer-sales-catalog/pkg/productlist"
)

// Catalog is the product list runtime. It owns the session, the client, the
// notification fan-out and the snapshot store, and drives fetch passes.
type Catalog struct {
	cfg          *config.Config
	session      *productlist.Session
	client       *productlist.Client
	fanout       *notifiers.Fanout
	sink         *notifiers.Sink
	store        storage.Store
	pollInterval time.Duration
	log          logger.Logger
}

// Deps lets callers replace the HTTP transport and notifiers; nil fields use config.
type Deps struct {
	HTTP      httpclient.Client
	Notifiers []notifiers.Notifier
}

// NewCatalog builds a catalog runtime from config.
func NewCatalog(ctx context.Context, cfg *config.Config, log logger.Logger) (*Catalog, error) {
	return NewCatalogWithDeps(ctx, cfg, log, Deps{})
}

// NewCatalogWithDeps is NewCatalog with injectable transport and notifiers.
func NewCatalogWithDeps(ctx context.Context, cfg *config.Config, log logger.Logger, deps Deps) (*Catalog, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config must not be nil")
	}
	if log == nil {
		log = &logger.NopLogger{}
	}
	if ctx == nil {
		ctx = context.Background()
	}

	fanout, err := buildFanout(ctx, cfg, log, deps.Notifiers)
	if err != nil {
		return nil, err
	}

	transport := deps.HTTP
	if transport == nil {
		transport = httpclient.NewRestyClient(cfg.RequestTimeout)
	}

	session := productlist.NewSession(domain.QueryParameters{
		CurrentPage: cfg.CurrentPage,
		PageSize:    cfg.PageSize,
	})
	sink := notifiers.NewSink(fanout, cfg.AppName, log)
	client, err := productlist.NewClient(productlist.Options{
		HTTP:     transport,
		URL:      cfg.ProductListURL(),
		Session:  session,
		Notifier: sink,
		Log:      log,
	})
	if err != nil {
		return nil, fmt.Errorf("init product list client: %w", err)
	}

	store, err := storage.NewStore(cfg.StorageType, cfg.BBoltPath, storage.Options{
		PageTTL:         cfg.StorageTTL,
		CleanupInterval: cfg.StorageCleanupInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	log.InfoObj("storage initialized", "storage_config", map[string]any{
		"type":                     cfg.StorageType,
		"path":                     cfg.BBoltPath,
		"page_ttl_seconds":         int(cfg.StorageTTL.Seconds()),
		"cleanup_interval_seconds": int(cfg.StorageCleanupInterval.Seconds()),
	})

	return &Catalog{
		cfg:          cfg,
		session:      session,
		client:       client,
		fanout:       fanout,
		sink:         sink,
		store:        store,
		pollInterval: cfg.PollInterval,
		log:          log,
	}, nil
}

func buildFanout(ctx context.Context, cfg *config.Config, log logger.Logger, injected []notifiers.Notifier) (*notifiers.Fanout, error) {
	if len(injected) > 0 {
		return notifiers.NewFanout(injected), nil
	}

	reg := notifiers.LogOnlyRegistry()
	if path := strings.TrimSpace(cfg.NotifiersFile); path != "" {
		loaded, err := notifiers.LoadRegistry(path)
		if err != nil {
			return nil, fmt.Errorf("load notifiers registry: %w", err)
		}
		reg = loaded
	}

	enabled := reg.Enabled()
	built, err := notifiers.BuildAll(ctx, enabled, log)
	if err != nil {
		return nil, fmt.Errorf("build notifiers: %w", err)
	}

	summaries := make([]map[string]string, 0, len(enabled))
	for _, n := range enabled {
		summaries = append(summaries, map[string]string{"id": n.ID, "type": n.Type, "min_level": n.MinLevel})
	}
	log.InfoObj("notifiers registry loaded", "notifiers_meta", map[string]any{
		"count":     len(summaries),
		"notifiers": summaries,
	})
	return notifiers.NewFanout(built), nil
}

// Session exposes the shared query state.
func (c *Catalog) Session() *productlist.Session { return c.session }

// Result returns the last accepted envelope.
func (c *Catalog) Result() domain.ProductListResponse { return c.session.Result() }

// Cached returns the stored snapshot for the session's current query without network access.
func (c *Catalog) Cached() (domain.ProductListResponse, bool, error) {
	return c.store.LoadPage(c.session.Query())
}

// Run performs a fetch pass, then repeats every poll interval until ctx is cancelled.
// With no poll interval it returns the first pass's error.
func (c *Catalog) Run(ctx context.Context) error {
	if c == nil || c.client == nil {
		return fmt.Errorf("catalog is not initialized")
	}

	err := c.runOnce(ctx)
	if c.pollInterval <= 0 {
		return err
	}
	if err != nil {
		c.log.ErrorObj("initial fetch failed", "error", err)
		c.reportFailure(ctx, err)
	}

	c.log.InfoObj("catalog poll loop starting", "catalog_state", map[string]any{
		"poll_interval": c.pollInterval.String(),
		"fetch_all":     c.cfg.FetchAll,
		"notifiers":     c.fanout.Size(),
	})

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.InfoObj("catalog poll loop exiting", "reason", ctx.Err())
			return nil
		case <-ticker.C:
			if err := c.runOnce(ctx); err != nil {
				c.log.ErrorObj("scheduled fetch failed", "error", err)
				c.reportFailure(ctx, err)
			}
		}
	}
}

// reportFailure raises a warn notification for poll failures the client did not
// already surface. Interface errors have been notified at error level.
func (c *Catalog) reportFailure(ctx context.Context, err error) {
	if errors.Is(err, productlist.ErrInterface) || ctx.Err() != nil {
		return
	}
	c.sink.Warn(ctx, fmt.Sprintf("product list fetch failed: %v", err))
}

// runOnce fetches the configured page, or every page with fetch_all, snapshotting each accepted page.
func (c *Catalog) runOnce(ctx context.Context) error {
	start := time.Now()
	pages := 0

	var err error
	if c.cfg.FetchAll {
		err = c.client.FetchAll(ctx, func(resp domain.ProductListResponse) error {
			pages++
			return c.snapshot(resp)
		})
	} else {
		if err = c.client.FetchProductList(ctx); err == nil {
			pages++
			err = c.snapshot(c.session.Result())
		}
	}
	if err != nil {
		return err
	}

	resp := c.session.Result()
	c.log.InfoObj("product list fetched", "fetch_meta", map[string]any{
		"pages":       pages,
		"last_page":   resp.Data.CurrentPage,
		"total_size":  resp.Data.TotalSize,
		"total_pages": resp.Data.TotalPages(),
		"elapsed_ms":  time.Since(start).Milliseconds(),
	})
	return nil
}

// snapshot stores resp under the query that produced it.
func (c *Catalog) snapshot(resp domain.ProductListResponse) error {
	if err := c.store.SavePage(c.session.Query(), resp); err != nil {
		return fmt.Errorf("save page snapshot: %w", err)
	}
	return nil
}

// Close releases the store and notifier connections.
func (c *Catalog) Close() error {
	if c == nil {
		return nil
	}
	var errs []error
	if c.store != nil {
		if err := c.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close storage: %w", err))
		}
	}
	if err := c.fanout.Close(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}
