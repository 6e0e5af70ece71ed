package storage

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/streamer-sales-catalog/internal/domain"
)

// Package storage keeps snapshots of accepted product list pages.

// Store persists accepted product list responses keyed by query.
type Store interface {
	Close() error
	SavePage(q domain.QueryParameters, resp domain.ProductListResponse) error
	LoadPage(q domain.QueryParameters) (domain.ProductListResponse, bool, error)
}

// Options controls retention characteristics for concrete store implementations.
type Options struct {
	PageTTL         time.Duration
	CleanupInterval time.Duration
}

const (
	defaultPageTTL         = 24 * time.Hour
	defaultCleanupInterval = 6 * time.Hour
)

// NewStore creates the configured storage backend.
func NewStore(typ, path string, opts Options) (Store, error) {
	typ = strings.TrimSpace(strings.ToLower(typ))
	opts = normalizeOptions(opts)

	switch typ {
	case "", "none", "disabled":
		return noopStore{}, nil
	case "bbolt":
		if strings.TrimSpace(path) == "" {
			return nil, fmt.Errorf("bbolt storage requires a path")
		}
		return openBolt(path, opts)
	default:
		return nil, fmt.Errorf("unsupported storage type %q", typ)
	}
}

func normalizeOptions(opts Options) Options {
	if opts.PageTTL <= 0 {
		opts.PageTTL = defaultPageTTL
	}
	if opts.CleanupInterval <= 0 {
		opts.CleanupInterval = defaultCleanupInterval
	}
	return opts
}

// pageKey identifies a snapshot by page number and page size.
func pageKey(q domain.QueryParameters) []byte {
	return []byte(fmt.Sprintf("page:%d:size:%d", q.CurrentPage, q.PageSize))
}

type noopStore struct{}

func (noopStore) Close() error                                                      { return nil }
func (noopStore) SavePage(domain.QueryParameters, domain.ProductListResponse) error { return nil }
func (noopStore) LoadPage(domain.QueryParameters) (domain.ProductListResponse, bool, error) {
	return domain.ProductListResponse{}, false, nil
}
