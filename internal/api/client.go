// Copyright (c) 2026 Joury. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package api implements the typed HTTP client for the Joury backend.

It turns a logical request (endpoint, method, query, optional body) into a
decoded payload or a typed [*Error], centralizing the concerns call sites
must never re-implement:

  - URL composition against the versioned API root.
  - Bearer authorization, injected from a [TokenSource] port — call sites
    cannot forget it and cannot bypass it.
  - Envelope unwrapping ({success, data, message, error}).
  - A closed error taxonomy covering transport, HTTP, and envelope failures.
  - Retry, restricted to idempotent methods and transient failures.
  - Optional client-side throttling via golang.org/x/time/rate.

On a 401 the client notifies the injected [AuthExpiryNotifier] port — an
explicit contract rather than a hidden call into the session layer — and the
request fails with [Unauthorized].

Caching is deliberately absent here: read-mostly callers compose this client
with the cache package themselves.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/joury-go/internal/platform/config"
	"github.com/taibuivan/joury-go/internal/platform/ctxutil"
)

// # Ports

// TokenSource supplies the current bearer token, when one exists.
//
// Implemented by the session manager. Must be non-blocking and safe for
// concurrent use: it is consulted on every outgoing request.
type TokenSource interface {
	CurrentAccessToken() (token string, ok bool)
}

// AuthExpiryNotifier is told when the backend rejects the current credentials
// outright (HTTP 401). Implemented by the session manager, which reacts by
// discarding the local session.
type AuthExpiryNotifier interface {
	AuthExpired(ctx context.Context)
}

// # Client

// Client executes requests against the Joury backend.
//
// Construct once and share; the client is safe for concurrent use. Auth
// ports are bound after construction (see [Client.BindAuth]) because the
// session manager itself needs a client.
type Client struct {
	baseURL          string
	http             *http.Client
	log              *slog.Logger
	debug            bool
	requestTimeout   time.Duration
	maxRetryAttempts int
	retryDelay       time.Duration
	limiter          *rate.Limiter

	mu         sync.RWMutex
	tokens     TokenSource
	authExpiry AuthExpiryNotifier
}

// NewClient builds a [Client] from configuration.
//
// The underlying [http.Client] timeout is the resource timeout (total
// transfer budget); each attempt additionally carries the per-request
// timeout as a context deadline.
func NewClient(cfg *config.Config, log *slog.Logger) *Client {

	client := &Client{
		baseURL:          cfg.APIBaseURL(),
		http:             &http.Client{Timeout: cfg.ResourceTimeout()},
		log:              log,
		debug:            cfg.Debug,
		requestTimeout:   cfg.RequestTimeout,
		maxRetryAttempts: cfg.MaxRetryAttempts,
		retryDelay:       cfg.RetryDelay,
	}

	if cfg.RequestsPerSecond > 0 {
		client.limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return client
}

// BindAuth attaches the session-layer ports. Requests made before binding
// simply go out unauthenticated; requests after a nil-notifier 401 still
// fail with [Unauthorized].
func (client *Client) BindAuth(tokens TokenSource, notifier AuthExpiryNotifier) {
	client.mu.Lock()
	defer client.mu.Unlock()
	client.tokens = tokens
	client.authExpiry = notifier
}

// # Requests

// Request describes one logical call against the API.
type Request struct {
	// Endpoint is the path below the versioned API root, e.g. "/auth/me".
	Endpoint string
	// Method is the HTTP method; defaults to GET when empty.
	Method string
	// Query holds optional URL query parameters.
	Query url.Values
	// Body is JSON-serialized when non-nil.
	Body any
	// Header holds optional extra headers; authorization cannot be set here.
	Header http.Header
}

/*
Do executes the request and decodes the envelope's data payload into T.

Description: The request is retried up to the configured attempt budget, but
only when the method is idempotent and the failure is transient (connectivity,
timeout, 5xx). Deterministic failures — auth, validation, decode — surface
immediately.

Parameters:
  - ctx: context.Context
  - client: *Client
  - request: Request

Returns:
  - T: The decoded data payload
  - error: A [*Error] classifying the failure
*/
func Do[T any](ctx context.Context, client *Client, request Request) (T, error) {
	var zero T

	method := request.Method
	if method == "" {
		method = http.MethodGet
	}

	target, err := client.buildURL(request.Endpoint, request.Query)
	if err != nil {
		return zero, InvalidURL(err)
	}

	// Serialize once; every retry reuses the same bytes.
	var body []byte
	if request.Body != nil {
		body, err = json.Marshal(request.Body)
		if err != nil {
			return zero, Encoding(err)
		}
	}

	var lastErr *Error
	for attempt := 1; ; attempt++ {

		if client.limiter != nil {
			if err := client.limiter.Wait(ctx); err != nil {
				return zero, mapTransportError(err)
			}
		}

		value, attemptErr := attemptOnce[T](ctx, client, method, target, body, request.Header)
		if attemptErr == nil {
			return value, nil
		}
		lastErr = attemptErr

		if attempt > client.maxRetryAttempts || !client.shouldRetry(method, attemptErr) {
			break
		}

		client.log.Debug("retrying request",
			slog.String("method", method),
			slog.String("url", target),
			slog.Int("attempt", attempt),
			slog.String("kind", string(attemptErr.Kind)),
		)

		select {
		case <-ctx.Done():
			return zero, mapTransportError(ctx.Err())
		case <-time.After(client.retryDelay):
		}
	}

	return zero, lastErr
}

// # Convenience Wrappers

// Get executes a GET request.
func Get[T any](ctx context.Context, client *Client, endpoint string, query url.Values) (T, error) {
	return Do[T](ctx, client, Request{Endpoint: endpoint, Method: http.MethodGet, Query: query})
}

// Post executes a POST request with a JSON body.
func Post[T any](ctx context.Context, client *Client, endpoint string, body any) (T, error) {
	return Do[T](ctx, client, Request{Endpoint: endpoint, Method: http.MethodPost, Body: body})
}

// Put executes a PUT request with a JSON body.
func Put[T any](ctx context.Context, client *Client, endpoint string, body any) (T, error) {
	return Do[T](ctx, client, Request{Endpoint: endpoint, Method: http.MethodPut, Body: body})
}

// Delete executes a DELETE request.
func Delete[T any](ctx context.Context, client *Client, endpoint string) (T, error) {
	return Do[T](ctx, client, Request{Endpoint: endpoint, Method: http.MethodDelete})
}

// # Single Attempt

// attemptOnce performs one HTTP exchange and maps every outcome onto the
// error taxonomy.
func attemptOnce[T any](ctx context.Context, client *Client, method, target string, body []byte, extra http.Header) (T, *Error) {
	var zero T

	attemptCtx, cancel := context.WithTimeout(ctx, client.requestTimeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(attemptCtx, method, target, reader)
	if err != nil {
		return zero, InvalidURL(err)
	}

	// Defaults first, then caller headers, then authorization — so the
	// bearer header can never be overridden from a call site.
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for key, values := range extra {
		for _, value := range values {
			httpReq.Header.Add(key, value)
		}
	}
	if token, ok := client.currentToken(); ok {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	if client.debug {
		client.logRequest(ctx, httpReq, body)
	}

	resp, err := client.http.Do(httpReq)
	if err != nil {
		return zero, mapTransportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, mapTransportError(err)
	}

	if client.debug {
		client.logResponse(ctx, resp, payload)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode <= 299:
		// Fall through to the envelope decode below.
	case resp.StatusCode == http.StatusUnauthorized:
		// Unrecoverable for this request: the session layer decides what
		// happens to the stored credentials.
		client.notifyAuthExpired(ctx)
		return zero, Unauthorized()
	case resp.StatusCode == http.StatusForbidden:
		return zero, Forbidden()
	case resp.StatusCode == http.StatusNotFound:
		return zero, NotFound()
	case resp.StatusCode >= 500 && resp.StatusCode <= 599:
		return zero, ServerError(resp.StatusCode)
	default:
		return zero, HTTPError(resp.StatusCode, http.StatusText(resp.StatusCode))
	}

	if len(payload) == 0 {
		return zero, NoData()
	}

	var env envelope[T]
	if err := json.Unmarshal(payload, &env); err != nil {
		return zero, Decoding(err)
	}

	if env.Success && env.Data != nil {
		return *env.Data, nil
	}

	// The backend reported failure inside a 2xx; code 0 marks it as an
	// application-level rather than transport-level error.
	return zero, HTTPError(0, env.failureMessage())
}

// # Helpers

// buildURL composes the absolute request URL from the versioned API root.
func (client *Client) buildURL(endpoint string, query url.Values) (string, error) {

	full := client.baseURL + "/" + strings.TrimLeft(endpoint, "/")

	parsed, err := url.Parse(full)
	if err != nil {
		return "", err
	}

	if len(query) > 0 {
		parsed.RawQuery = query.Encode()
	}

	return parsed.String(), nil
}

// shouldRetry restricts automatic retry to idempotent methods with transient
// failures. POST is never replayed: the backend may have applied it.
func (client *Client) shouldRetry(method string, apiErr *Error) bool {
	if !apiErr.Transient() {
		return false
	}

	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPut, http.MethodDelete:
		return true
	default:
		return false
	}
}

// currentToken reads the bound token source, if any.
func (client *Client) currentToken() (string, bool) {
	client.mu.RLock()
	tokens := client.tokens
	client.mu.RUnlock()

	if tokens == nil {
		return "", false
	}
	return tokens.CurrentAccessToken()
}

// notifyAuthExpired informs the bound notifier of a 401, synchronously, so
// the session state is already settled when the caller sees [Unauthorized].
func (client *Client) notifyAuthExpired(ctx context.Context) {
	client.mu.RLock()
	notifier := client.authExpiry
	client.mu.RUnlock()

	if notifier != nil {
		notifier.AuthExpired(ctx)
	}
}

// mapTransportError classifies a failure that happened below HTTP.
func mapTransportError(err error) *Error {

	if errors.Is(err, context.DeadlineExceeded) {
		return Timeout(err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return Timeout(err)
	}

	var opErr *net.OpError
	var dnsErr *net.DNSError
	if errors.As(err, &opErr) || errors.As(err, &dnsErr) || errors.Is(err, io.ErrUnexpectedEOF) {
		return NetworkUnavailable(err)
	}

	return Unknown(err)
}

// logRequest emits the outgoing request at debug level.
func (client *Client) logRequest(ctx context.Context, httpReq *http.Request, body []byte) {
	logger := ctxutil.GetLogger(ctx)
	if logger == slog.Default() {
		logger = client.log
	}

	attrs := []any{
		slog.String("method", httpReq.Method),
		slog.String("url", httpReq.URL.String()),
	}
	if len(body) > 0 {
		attrs = append(attrs, slog.Int("body_bytes", len(body)))
	}
	if id := ctxutil.GetRequestID(ctx); id != "" {
		attrs = append(attrs, slog.String("request_id", id))
	}

	logger.Debug("api request", attrs...)
}

// logResponse emits the response status and size at debug level.
func (client *Client) logResponse(ctx context.Context, resp *http.Response, payload []byte) {
	logger := ctxutil.GetLogger(ctx)
	if logger == slog.Default() {
		logger = client.log
	}

	logger.Debug("api response",
		slog.Int("status", resp.StatusCode),
		slog.Int("body_bytes", len(payload)),
	)
}
