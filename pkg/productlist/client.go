// Package productlist fetches pages of the streamer-sales product list and
// keeps the last accepted page in a Session.
package productlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/samvad-hq/streamer-sales-catalog/internal/domain"
	"github.com/samvad-hq/streamer-sales-catalog/pkg/httpclient"
)

// DefaultPath is the product list endpoint path.
const DefaultPath = "/products/list"

const requestIDHeader = "X-Request-ID"

// Notifier surfaces user-facing errors. Calls are fire-and-forget.
type Notifier interface {
	Error(ctx context.Context, message string)
}

// Options configures a Client. Only URL is required.
type Options struct {
	HTTP     httpclient.Client
	URL      string
	Session  *Session
	Notifier Notifier
	Log      Logger
}

// Client posts the session's query to the product list endpoint.
type Client struct {
	http     httpclient.Client
	url      string
	session  *Session
	notifier Notifier
	log      Logger
	validate *validator.Validate
	newID    func() string
}

// NewClient builds a Client, filling unset options with defaults.
func NewClient(opts Options) (*Client, error) {
	url := strings.TrimSpace(opts.URL)
	if url == "" {
		return nil, errors.New("product list url is empty")
	}
	if opts.HTTP == nil {
		opts.HTTP = httpclient.NewRestyClient(httpclient.DefaultTimeout)
	}
	if opts.Session == nil {
		opts.Session = NewDefaultSession()
	}
	if opts.Notifier == nil {
		opts.Notifier = noopNotifier{}
	}

	return &Client{
		http:     opts.HTTP,
		url:      url,
		session:  opts.Session,
		notifier: opts.Notifier,
		log:      ensureLogger(opts.Log),
		validate: validator.New(),
		newID:    uuid.NewString,
	}, nil
}

// Session returns the state object this client reads from and writes to.
func (c *Client) Session() *Session { return c.session }

// FetchProductList posts the current query and stores the envelope when its state is 0.
// A non-zero, missing or null state notifies the user and returns *InterfaceError; transport failures
// return *TransportError. The session result is left untouched on any error.
func (c *Client) FetchProductList(ctx context.Context) error {
	query := c.session.Query()
	if err := c.validate.Struct(query); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, err)
	}

	requestID := c.newID()
	wire, err := c.send(ctx, query, requestID)
	if err != nil {
		c.log.WarnObj("product list request failed", "product_list_error", map[string]any{
			"request_id": requestID,
			"query":      query,
			"error":      err.Error(),
		})
		return err
	}

	if !wire.ok() {
		ierr := wire.interfaceError()
		c.log.WarnObj("product list rejected", "product_list_state", map[string]any{
			"request_id":    requestID,
			"state":         ierr.State,
			"state_missing": ierr.MissingState,
			"message":       ierr.ServerMessage,
		})
		c.notifier.Error(ctx, InterfaceErrorMessage)
		return ierr
	}

	resp, err := wire.decode()
	if err != nil {
		terr := &TransportError{Op: "decode", URL: c.url, Err: err}
		c.log.WarnObj("product list payload undecodable", "product_list_error", map[string]any{
			"request_id": requestID,
			"error":      terr.Error(),
		})
		return terr
	}

	c.session.store(resp)
	c.log.DebugObj("product list stored", "product_list_result", map[string]any{
		"request_id": requestID,
		"page":       resp.Data.CurrentPage,
		"page_size":  resp.Data.PageSize,
		"total_size": resp.Data.TotalSize,
		"items":      len(resp.Data.Items),
	})
	return nil
}

// FetchPage moves the session to page and fetches it.
func (c *Client) FetchPage(ctx context.Context, page int) error {
	c.session.SetPage(page)
	return c.FetchProductList(ctx)
}

// FetchAll walks every page from 1 until TotalPages, calling visit with each accepted
// envelope. It assumes nothing else drives the session meanwhile and stops at the first error.
func (c *Client) FetchAll(ctx context.Context, visit func(domain.ProductListResponse) error) error {
	page := 1
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := c.FetchPage(ctx, page); err != nil {
			return fmt.Errorf("fetch page %d: %w", page, err)
		}

		resp := c.session.Result()
		if visit != nil {
			if err := visit(resp); err != nil {
				return err
			}
		}
		if page >= resp.Data.TotalPages() || len(resp.Data.Items) == 0 {
			return nil
		}
		page++
	}
}

// wireEnvelope holds a response before its state is trusted. Data stays raw so a
// failure envelope with an unexpected payload still surfaces as an InterfaceError.
type wireEnvelope struct {
	Success bool            `json:"success"`
	State   *int            `json:"state"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

// ok is true only for an explicit state of 0; a missing or null state is a failure.
func (w wireEnvelope) ok() bool { return w.State != nil && *w.State == 0 }

func (w wireEnvelope) interfaceError() *InterfaceError {
	if w.State == nil {
		return &InterfaceError{MissingState: true, ServerMessage: w.Message}
	}
	return &InterfaceError{State: *w.State, ServerMessage: w.Message}
}

// decode builds the typed envelope. An absent or null data field yields an empty page.
func (w wireEnvelope) decode() (domain.ProductListResponse, error) {
	out := domain.ProductListResponse{
		Success: w.Success,
		State:   *w.State,
		Message: w.Message,
	}
	if len(w.Data) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(w.Data, &out.Data); err != nil {
		return domain.ProductListResponse{}, fmt.Errorf("decode product page: %w", err)
	}
	return out, nil
}

func (c *Client) send(ctx context.Context, query domain.QueryParameters, requestID string) (wireEnvelope, error) {
	var out wireEnvelope

	headers := map[string]string{requestIDHeader: requestID}
	raw, err := c.http.Post(ctx, c.url, headers, domain.NewProductListRequest(query))
	if err != nil {
		return out, &TransportError{Op: http.MethodPost, URL: c.url, Err: err}
	}

	body := raw.Body()
	if status := raw.StatusCode(); status < http.StatusOK || status >= http.StatusMultipleChoices {
		return out, &TransportError{
			Op:     http.MethodPost,
			URL:    c.url,
			Status: status,
			Err:    fmt.Errorf("unexpected response: %s", responseSnippet(body)),
		}
	}

	if err := json.Unmarshal(body, &out); err != nil {
		return wireEnvelope{}, &TransportError{Op: "decode", URL: c.url, Err: err}
	}
	return out, nil
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}

type noopNotifier struct{}

func (noopNotifier) Error(context.Context, string) {}
