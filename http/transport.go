// Package http provides the net/http implementation of
// ytcomments.Transport, with optional per-request proxy egress.
package http

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/krysczajkowski/ytcomments"
	"golang.org/x/net/proxy"
)

// DefaultTimeout is the default per-request timeout.
const DefaultTimeout = 30 * time.Second

// Ensure Transport implements ytcomments.Transport at compile time.
var _ ytcomments.Transport = (*Transport)(nil)

// Transport issues HTTP requests, optionally through the proxy named by
// the request's egress handle. Clients are cached per handle so that
// connection pools survive across requests pinned to the same egress.
type Transport struct {
	timeout time.Duration

	mu      sync.Mutex
	clients map[string]*http.Client
}

// Option configures a Transport.
type Option func(*Transport)

// WithTimeout sets the per-request timeout.
// Defaults to DefaultTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(t *Transport) {
		t.timeout = d
	}
}

// NewTransport creates a new Transport.
func NewTransport(opts ...Option) *Transport {
	t := &Transport{
		timeout: DefaultTimeout,
		clients: make(map[string]*http.Client),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Fetch performs the request and returns the response for any status
// code. Status handling is the caller's concern; only transport-level
// failures return an error.
func (t *Transport) Fetch(ctx context.Context, req *ytcomments.Request) (*ytcomments.Response, error) {
	client, err := t.client(req.Egress)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, body)
	if err != nil {
		return nil, err
	}
	for key, value := range req.Header {
		httpReq.Header.Set(key, value)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &ytcomments.Response{
		StatusCode: resp.StatusCode,
		Body:       respBody,
	}, nil
}

// Close releases all cached clients and their idle connections.
func (t *Transport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	for _, client := range t.clients {
		client.CloseIdleConnections()
	}
	t.clients = make(map[string]*http.Client)
	return nil
}

// client returns the cached client for an egress handle, creating it on
// first use. The empty handle is the direct connection.
func (t *Transport) client(egress string) (*http.Client, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if client, ok := t.clients[egress]; ok {
		return client, nil
	}

	transport, err := roundTripper(egress)
	if err != nil {
		return nil, err
	}

	client := &http.Client{
		Timeout:   t.timeout,
		Transport: transport,
	}
	t.clients[egress] = client
	return client, nil
}

// roundTripper builds the transport for an egress handle. Handles are
// proxy URLs: http, https and socks5 schemes are supported.
func roundTripper(egress string) (http.RoundTripper, error) {
	if egress == "" {
		return http.DefaultTransport.(*http.Transport).Clone(), nil
	}

	proxyURL, err := url.Parse(egress)
	if err != nil {
		return nil, ytcomments.Errorf(ytcomments.EINVALID, "invalid proxy url %q: %v", egress, err)
	}

	switch proxyURL.Scheme {
	case "http", "https":
		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		return transport, nil
	case "socks5", "socks5h":
		var auth *proxy.Auth
		if user := proxyURL.User; user != nil {
			password, _ := user.Password()
			auth = &proxy.Auth{User: user.Username(), Password: password}
		}
		dialer, err := proxy.SOCKS5("tcp", proxyURL.Host, auth, proxy.Direct)
		if err != nil {
			return nil, fmt.Errorf("socks5 dialer for %s: %w", proxyURL.Host, err)
		}

		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = nil
		transport.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
			if contextDialer, ok := dialer.(proxy.ContextDialer); ok {
				return contextDialer.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		}
		return transport, nil
	default:
		return nil, ytcomments.Errorf(ytcomments.EINVALID, "unsupported proxy scheme %q", proxyURL.Scheme)
	}
}
