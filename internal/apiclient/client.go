// Package apiclient is the single HTTP gateway to the ride-booking REST API.
// Every other component issues its requests through a *Client.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/example/rideflow/internal/observability"
)

const DefaultBaseURL = "https://rider-booking.onrender.com/api"

// maxErrorBody bounds how much of a failed response is read for a message.
const maxErrorBody = 64 << 10

type Client struct {
	baseURL string
	http    *http.Client
	logger  *slog.Logger

	mu    sync.RWMutex
	token string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option { return func(c *Client) { c.http = hc } }

func WithLogger(l *slog.Logger) Option { return func(c *Client) { c.logger = l } }

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
		logger:  slog.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) BaseURL() string { return c.baseURL }

// SetToken attaches token to every subsequent request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// ClearToken stops sending an Authorization header.
func (c *Client) ClearToken() { c.SetToken("") }

func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

// validator is implemented by response envelopes that check their own shape.
type validator interface {
	Validate() error
}

// pruner is implemented by list envelopes. Malformed rows are dropped and
// reported instead of failing the whole list.
type pruner interface {
	Prune() []error
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	route := routeLabel(path)
	start := time.Now()
	outcome := "ok"
	defer func() {
		observability.APIRequestsTotal.WithLabelValues(method, route, outcome).Inc()
		observability.APIRequestDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
	}()

	fail := func(e *Error) error {
		outcome = e.Kind.String()
		e.Method, e.Path = method, path
		c.logger.Debug("api_request_failed", "method", method, "route", route, "status", e.Status, "kind", e.Kind.String(), "error", e.Err)
		return e
	}

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fail(&Error{Kind: KindMalformed, Err: err})
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/"+strings.TrimLeft(path, "/"), reader)
	if err != nil {
		return fail(&Error{Kind: KindNetwork, Err: err})
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-ID", uuid.NewString())
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fail(&Error{Kind: KindNetwork, Err: err})
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return fail(&Error{Kind: kindForStatus(resp.StatusCode), Status: resp.StatusCode, Message: serverMessage(raw)})
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(&Error{Kind: KindNetwork, Status: resp.StatusCode, Err: err})
	}
	c.logger.Debug("api_request", "method", method, "route", route, "status", resp.StatusCode, "duration_ms", time.Since(start).Milliseconds())
	if out == nil {
		return nil
	}
	// an empty body still has to satisfy the envelope's shape check
	if len(bytes.TrimSpace(raw)) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return fail(&Error{Kind: KindMalformed, Status: resp.StatusCode, Err: err})
		}
	}
	if p, ok := out.(pruner); ok {
		for _, err := range p.Prune() {
			c.logger.Warn("dropping malformed row", "method", method, "route", route, "error", err)
		}
	}
	if v, ok := out.(validator); ok {
		if err := v.Validate(); err != nil {
			return fail(&Error{Kind: KindMalformed, Status: resp.StatusCode, Err: err})
		}
	}
	return nil
}

// serverMessage extracts {"message": ...} (or {"error": ...}) from a failed
// response body.
func serverMessage(raw []byte) string {
	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Error
}

// routeLabel collapses id-like path segments so metrics stay low-cardinality.
func routeLabel(path string) string {
	path = strings.SplitN(path, "?", 2)[0]
	parts := strings.Split(strings.Trim(path, "/"), "/")
	for i, p := range parts {
		if strings.IndexFunc(p, unicode.IsDigit) >= 0 {
			parts[i] = ":id"
		}
	}
	return "/" + strings.Join(parts, "/")
}

// errMissing builds the shape error for an envelope without its payload.
func errMissing(field string) error {
	return errors.New("response missing " + field)
}
