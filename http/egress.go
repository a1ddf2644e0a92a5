package http

import (
	"sync"

	"github.com/krysczajkowski/ytcomments"
)

// Ensure ProxyRing implements ytcomments.EgressProvider.
var _ ytcomments.EgressProvider = (*ProxyRing)(nil)

// ProxyRing hands out proxy URLs round-robin. An empty ring hands out
// the empty handle, which the transport treats as a direct connection.
type ProxyRing struct {
	mu      sync.Mutex
	proxies []string
	next    int
}

// NewProxyRing creates a ProxyRing over the given proxy URLs.
func NewProxyRing(proxies []string) *ProxyRing {
	return &ProxyRing{proxies: proxies}
}

// NextEgress returns the next proxy URL in rotation.
func (r *ProxyRing) NextEgress() (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.proxies) == 0 {
		return "", nil
	}

	handle := r.proxies[r.next%len(r.proxies)]
	r.next++
	return handle, nil
}
