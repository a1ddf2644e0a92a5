package ytcomments

import (
	"context"
	"fmt"
)

// Request describes one outbound HTTP exchange.
type Request struct {
	Method string
	URL    string
	Header map[string]string
	Body   []byte

	// Egress optionally routes the request through a specific egress
	// handle (a proxy URL). Empty means direct.
	Egress string
}

// Response is the raw outcome of a completed exchange. Transports return a
// Response for any status code; interpreting non-2xx statuses is the
// caller's job.
type Response struct {
	StatusCode int
	Body       []byte
}

// Transport performs HTTP exchanges. Implementations own connection
// handling, per-request timeouts and egress routing.
type Transport interface {
	// Fetch executes the request. It returns an error only when no
	// response was obtained at all (DNS, dial, timeout); HTTP-level
	// failures come back as a Response with the upstream status code.
	Fetch(ctx context.Context, req *Request) (*Response, error)

	// Close releases transport resources.
	Close() error
}

// EgressProvider hands out egress handles (proxy URLs) for routing
// requests. A batch runner asks for one handle per video so that no two
// concurrent extractions share an egress identity.
type EgressProvider interface {
	NextEgress() (string, error)
}

// HTTPError represents a non-success status returned by the upstream.
type HTTPError struct {
	StatusCode int
	URL        string
}

// Error implements the error interface.
func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d for %s", e.StatusCode, e.URL)
}
