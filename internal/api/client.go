// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/promptlab-tui/internal/offline"
)

// Configuration constants for the backend API client.
const (
	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 30 * time.Second

	// DefaultCooldown is the rate-limit backoff used when a 429 response
	// carries neither a Retry-After header nor a retryAfter body field.
	DefaultCooldown = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024 // 10MB limit
)

// sharedTransport pools connections for all backend requests.
var sharedTransport = &http.Transport{
	MaxIdleConns:        100,
	MaxIdleConnsPerHost: 10,
	IdleConnTimeout:     90 * time.Second,
	TLSHandshakeTimeout: 10 * time.Second,
}

// =============================================================================
// CLIENT
// =============================================================================

// Client is the resilient HTTP client for the PromptLab backend.
// Construct one per application instance with NewClient and release it
// with Close; Close cancels any parked waiters and pending cooldown
// timers.
//
// The With* setters are safe to call while requests are in flight, so a
// config reload can retune a live client.
type Client struct {
	baseURL string
	monitor *offline.Monitor

	// mu guards the fields the With* setters replace at runtime.
	mu              sync.RWMutex
	httpClient      *http.Client
	notifier        Notifier
	limiter         *rate.Limiter
	queue           *pendingQueue
	defaultCooldown time.Duration

	cooldown *cooldownMarker

	closed    chan struct{}
	closeOnce sync.Once
}

// NewClient creates a client for the given base endpoint. The monitor
// supplies the reachability signal; on every offline-to-online transition
// the client drains its pending queue in the background.
func NewClient(baseURL string, monitor *offline.Monitor) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Transport: sharedTransport,
			Timeout:   DefaultTimeout,
		},
		monitor:         monitor,
		notifier:        noopNotifier{},
		queue:           newPendingQueue(0),
		cooldown:        &cooldownMarker{},
		defaultCooldown: DefaultCooldown,
		closed:          make(chan struct{}),
	}

	monitor.Subscribe(func(online bool) {
		if online {
			go c.drainPending()
		}
	})

	return c
}

// WithTimeout sets the per-request timeout. The underlying http.Client
// is replaced rather than mutated, since in-flight requests hold a
// reference to the old one.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.mu.Lock()
	c.httpClient = &http.Client{
		Transport: sharedTransport,
		Timeout:   timeout,
	}
	c.mu.Unlock()
	return c
}

// WithNotifier sets the notifier used for cooldown notifications.
func (c *Client) WithNotifier(n Notifier) *Client {
	if n != nil {
		c.mu.Lock()
		c.notifier = n
		c.mu.Unlock()
	}
	return c
}

// WithRateLimit throttles outbound requests to rps with the given burst.
// Zero rps disables the throttle.
func (c *Client) WithRateLimit(rps float64, burst int) *Client {
	c.mu.Lock()
	if rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	} else {
		c.limiter = nil
	}
	c.mu.Unlock()
	return c
}

// WithDefaultCooldown overrides the fallback rate-limit backoff.
func (c *Client) WithDefaultCooldown(d time.Duration) *Client {
	if d > 0 {
		c.mu.Lock()
		c.defaultCooldown = d
		c.mu.Unlock()
	}
	return c
}

// WithMaxPending resizes the offline queue capacity. Entries parked on
// the old queue stay owned by it and still settle on the next drain.
func (c *Client) WithMaxPending(n int) *Client {
	c.mu.Lock()
	c.queue = newPendingQueue(n)
	c.mu.Unlock()
	return c
}

// Snapshot accessors for the reconfigurable fields.

func (c *Client) web() *http.Client {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.httpClient
}

func (c *Client) throttle() *rate.Limiter {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.limiter
}

func (c *Client) pending() *pendingQueue {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.queue
}

func (c *Client) notify() Notifier {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.notifier
}

func (c *Client) fallbackCooldown() time.Duration {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defaultCooldown
}

// BaseURL returns the configured base endpoint.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// PendingCount returns the number of requests parked while offline.
func (c *Client) PendingCount() int {
	return c.pending().size()
}

// CoolingDown reports whether a rate-limit window is currently open.
func (c *Client) CoolingDown() bool {
	return c.cooldown.isActive()
}

// Close releases the client. Parked waiters fail with ErrClientClosed
// and any pending cooldown retry is abandoned.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.closed)
	})
}

// =============================================================================
// CONVENIENCE VERBS
// =============================================================================

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, NewRequest(http.MethodGet, path).WithQuery(query))
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, NewRequest(http.MethodPost, path).WithBody(body))
}

// Put performs a PUT request with an optional JSON body.
func (c *Client) Put(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, NewRequest(http.MethodPut, path).WithBody(body))
}

// Patch performs a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body any) (*Response, error) {
	return c.Do(ctx, NewRequest(http.MethodPatch, path).WithBody(body))
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, NewRequest(http.MethodDelete, path))
}

// =============================================================================
// DISPATCH
// =============================================================================

// Do routes a request descriptor through the resilience layer: requests
// issued while offline (or failing in transit while offline) are parked
// and replayed on reconnect; 429 responses wait out the server cooldown
// and retry once. Every other failure propagates unchanged.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	select {
	case <-c.closed:
		return nil, ErrClientClosed
	default:
	}

	if limiter := c.throttle(); limiter != nil {
		if err := limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	if !c.monitor.Online() {
		return c.park(ctx, req)
	}

	resp, err := c.send(ctx, req)
	if err != nil && isTransportError(err) && !c.monitor.Online() {
		// The request died in transit and reachability is gone: park it
		// like any request issued while offline.
		return c.park(ctx, req)
	}
	return resp, err
}

// send dispatches once and applies the 429 cooldown path. Both the drain
// loop and the deferred retry come back through here, so a replayed
// request that hits a rate limit follows the 429 path rather than being
// re-queued as offline.
func (c *Client) send(ctx context.Context, req *Request) (*Response, error) {
	resp, err := c.dispatch(ctx, req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return c.retryAfterCooldown(ctx, req, resp)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, parseError(resp)
	}

	return resp, nil
}

// dispatch performs the raw HTTP round trip with JSON content negotiation.
func (c *Client) dispatch(ctx context.Context, req *Request) (*Response, error) {
	requestURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		requestURL += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, requestURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "promptlab/0.1.0")
	for key, values := range req.Header {
		for _, v := range values {
			httpReq.Header.Add(key, v)
		}
	}

	c.logRequest(httpReq)

	start := time.Now()
	httpResp, err := c.web().Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer httpResp.Body.Close()

	body, err := readBody(httpResp)
	if err != nil {
		return nil, err
	}

	c.logResponse(httpResp, time.Since(start))

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}, nil
}

// readBody reads the response body with a size limit.
func readBody(resp *http.Response) ([]byte, error) {
	limited := io.LimitReader(resp.Body, MaxResponseSize)
	body, err := io.ReadAll(limited)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) == MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// =============================================================================
// OFFLINE QUEUEING
// =============================================================================

// park defers the request until reachability returns, blocking the caller
// until the replay settles it. Context cancellation abandons the wait and
// marks the entry so the drain loop skips it.
func (c *Client) park(ctx context.Context, req *Request) (*Response, error) {
	queue := c.pending()
	entry, err := queue.push(ctx, req)
	if err != nil {
		return nil, err
	}

	log.Printf("offline: queued %s %s (%d pending)", req.Method, req.Path, queue.size())

	select {
	case out := <-entry.done:
		return out.resp, out.err
	case <-ctx.Done():
		entry.cancel()
		return nil, ctx.Err()
	case <-c.closed:
		entry.cancel()
		return nil, ErrClientClosed
	}
}

// drainPending replays the parked requests in submission order. The batch
// is taken atomically, so a second reconnect event drains a fresh (empty)
// queue instead of double-replaying this one. Replay failures settle the
// owning caller only; they are not retried here.
func (c *Client) drainPending() {
	batch := c.pending().swap()
	if len(batch) == 0 {
		return
	}

	log.Printf("online: replaying %d pending request(s)", len(batch))

	for _, entry := range batch {
		if entry.canceled.Load() {
			continue
		}
		if err := entry.ctx.Err(); err != nil {
			entry.settle(nil, err)
			continue
		}
		resp, err := c.send(entry.ctx, entry.req)
		entry.settle(resp, err)
	}
}

// =============================================================================
// RATE-LIMIT HANDLING
// =============================================================================

// retryAfterCooldown waits out the server-specified cooldown and retries
// the original request once, settling the caller with the retry's
// outcome. The cooldown marker guarantees a single notification per
// window no matter how many requests hit the limit meanwhile.
func (c *Client) retryAfterCooldown(ctx context.Context, req *Request, resp *Response) (*Response, error) {
	delay := retryDelay(resp, c.fallbackCooldown())

	c.cooldown.begin(delay, func() func() {
		message := fmt.Sprintf("Too many requests. Retrying in %d seconds.", int(delay.Seconds()))
		return c.notify().Notify(message, delay)
	})

	timer := time.NewTimer(delay)
	defer timer.Stop()

	// An abandoned cooldown surfaces the 429 itself, wrapped so callers
	// can still match the context or close cause.
	select {
	case <-ctx.Done():
		c.cooldown.settle()
		return nil, fmt.Errorf("%w (%w)", parseError(resp), ctx.Err())
	case <-c.closed:
		c.cooldown.settle()
		return nil, fmt.Errorf("%w (%w)", parseError(resp), ErrClientClosed)
	case <-timer.C:
	}

	// A second 429 here re-enters this path, extending the existing
	// window instead of opening another notification.
	out, err := c.send(ctx, req)
	c.cooldown.settle()
	return out, err
}

// =============================================================================
// HELPERS
// =============================================================================

// isTransportError distinguishes network failures from HTTP status errors
// and context cancellation.
func isTransportError(err error) bool {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true
}

// logRequest logs an API request without exposing the body.
func (c *Client) logRequest(req *http.Request) {
	log.Printf("API Request: %s %s", req.Method, req.URL.Path)
}

// logResponse logs an API response with duration.
func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	log.Printf("API Response: %d %s (%v)", resp.StatusCode, resp.Status, duration)
}
