package productlist

import (
	"sync"
	"sync/atomic"

	"github.com/samvad-hq/streamer-sales-catalog/internal/domain"
)

// Session owns the query parameters for the next fetch and the last accepted result.
// A Session is shared by reference between the client and whoever drives it.
type Session struct {
	mu     sync.RWMutex
	query  domain.QueryParameters
	result atomic.Pointer[domain.ProductListResponse]
}

// NewSession starts a session with the given parameters and an empty result.
func NewSession(q domain.QueryParameters) *Session {
	return &Session{query: q}
}

// NewDefaultSession starts at page 1 with 10 items per page.
func NewDefaultSession() *Session {
	return NewSession(domain.DefaultQueryParameters())
}

// Query returns the parameters the next fetch will use.
func (s *Session) Query() domain.QueryParameters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.query
}

// SetQuery replaces the parameters for subsequent fetches.
func (s *Session) SetQuery(q domain.QueryParameters) {
	s.mu.Lock()
	s.query = q
	s.mu.Unlock()
}

// SetPage changes only the current page.
func (s *Session) SetPage(page int) {
	s.mu.Lock()
	s.query.CurrentPage = page
	s.mu.Unlock()
}

// Result returns the last accepted envelope, or the zero envelope before the first success.
// The returned value shares its item slice with the session and must not be mutated.
func (s *Session) Result() domain.ProductListResponse {
	if r := s.result.Load(); r != nil {
		return *r
	}
	return domain.ProductListResponse{}
}

// HasResult reports whether any fetch has been accepted.
func (s *Session) HasResult() bool {
	return s.result.Load() != nil
}

// store swaps in a whole envelope. Concurrent stores race; the last one wins.
func (s *Session) store(resp domain.ProductListResponse) {
	s.result.Store(&resp)
}
