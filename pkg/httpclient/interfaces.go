package httpclient

import "context"

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client abstracts HTTP calls so callers can inject mocks or different transports.
// Both the product list endpoint and webhook sinks only ever POST.
type Client interface {
	// Post sends body encoded as JSON.
	Post(ctx context.Context, url string, headers map[string]string, body any) (Response, error)
}
