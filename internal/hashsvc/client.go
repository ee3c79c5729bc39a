// Package hashsvc is the boundary to the hash-generation service:
// GET <endpoint>?url=<image url> answers with a bare BlurHash string.
// It holds the client used by the CLI and a handler that serves the same
// contract.
package hashsvc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rodgetech/blurhash-demo/internal/blurhash"
)

var (
	// ErrNetwork wraps transport failures and non-2xx responses.
	ErrNetwork = errors.New("hashsvc: network error")
	// ErrEmptyURL is returned before any request is made.
	ErrEmptyURL = errors.New("hashsvc: empty image url")
	// ErrUndecodable is returned when a fetched body is not an image.
	ErrUndecodable = errors.New("hashsvc: undecodable image")
)

// maxHashBody bounds the response read; the longest valid hash is 166 bytes.
const maxHashBody = 1 << 10

// Client calls a hash-generation endpoint.
type Client struct {
	Endpoint string
	HTTP     *http.Client
	Logger   *slog.Logger

	inflight atomic.Int32
}

// NewClient returns a client with its own HTTP timeout.
func NewClient(endpoint string, timeout time.Duration) *Client {
	return &Client{
		Endpoint: endpoint,
		HTTP:     &http.Client{Timeout: timeout},
	}
}

// Busy reports whether a Generate call is in flight. Overlapping calls
// are allowed; Busy exists so a front end can discourage them.
func (c *Client) Busy() bool {
	return c.inflight.Load() > 0
}

// Generate asks the service for the hash of imageURL. The response body
// must be a well-formed hash; anything else is an error.
func (c *Client) Generate(ctx context.Context, imageURL string) (string, error) {
	imageURL = strings.TrimSpace(imageURL)
	if imageURL == "" {
		return "", ErrEmptyURL
	}
	c.inflight.Add(1)
	defer c.inflight.Add(-1)

	endpoint, err := url.Parse(c.Endpoint)
	if err != nil {
		return "", fmt.Errorf("parse endpoint: %w", err)
	}
	q := endpoint.Query()
	q.Set("url", imageURL)
	endpoint.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	httpc := c.HTTP
	if httpc == nil {
		httpc = http.DefaultClient
	}

	start := time.Now()
	resp, err := httpc.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxHashBody))
	if err != nil {
		return "", fmt.Errorf("%w: read body: %w", ErrNetwork, err)
	}
	c.logger().Debug("hash service responded",
		"status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: %s", ErrNetwork, resp.Status)
	}

	hash := strings.TrimRight(string(body), "\r\n")
	if err := blurhash.Validate(hash); err != nil {
		return "", fmt.Errorf("service returned invalid hash %q: %w", hash, err)
	}
	return hash, nil
}

func (c *Client) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return discardLogger
}

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// Latest holds the most recent successfully generated hash. Concurrent
// refreshes resolve last-response-wins; failures leave it untouched.
type Latest struct {
	mu   sync.RWMutex
	hash string
}

// NewLatest starts with initial, which may be empty.
func NewLatest(initial string) *Latest {
	return &Latest{hash: initial}
}

// Get returns the current hash.
func (l *Latest) Get() string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.hash
}

// Refresh generates a hash for imageURL and stores it on success.
func (l *Latest) Refresh(ctx context.Context, c *Client, imageURL string) (string, error) {
	hash, err := c.Generate(ctx, imageURL)
	if err != nil {
		return l.Get(), err
	}
	l.mu.Lock()
	l.hash = hash
	l.mu.Unlock()
	return hash, nil
}
