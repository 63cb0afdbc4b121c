package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrymomot/sitekit/pkg/logger"
	"github.com/dmitrymomot/sitekit/pkg/session"
)

// maxBodySize caps how much of a response body is read.
const maxBodySize = 10 << 20

// Client executes request descriptors against one backend origin.
// It is safe for concurrent use.
type Client struct {
	origin    *url.URL
	http      *http.Client
	anon      *http.Client
	logger    *slog.Logger
	observer  Observer
	userAgent string
	timeout   time.Duration
	mode      session.Mode
}

// Response is a successful backend response.
type Response struct {
	Header     http.Header
	Body       []byte
	Status     int
	expectBody bool
}

// New creates a client for the given origin. Only scheme and host of
// origin are kept; paths are appended per request.
//
// Example:
//
//	c, err := apiclient.New("https://api.example.com",
//	    apiclient.WithTimeout(15*time.Second),
//	    apiclient.WithLogger(log),
//	)
func New(origin string, opts ...Option) (*Client, error) {
	u, err := ParseOrigin(origin)
	if err != nil {
		return nil, err
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}

	hc := &http.Client{}
	if o.httpClient != nil {
		copied := *o.httpClient
		hc = &copied
	}

	if o.mode == session.ClientContext {
		jar := o.jar
		if jar == nil {
			if jar, err = session.NewJar(); err != nil {
				return nil, err
			}
		}
		hc.Jar = jar
	} else {
		// Server context never carries cookies between calls.
		hc.Jar = nil
	}

	// Anonymous calls never read or write the jar, in either context.
	anon := hc
	if hc.Jar != nil {
		copied := *hc
		copied.Jar = nil
		anon = &copied
	}

	l := o.logger
	if l == nil {
		l = logger.NewNope()
	}

	return &Client{
		origin:    u,
		http:      hc,
		anon:      anon,
		logger:    l,
		observer:  o.observer,
		userAgent: o.userAgent,
		timeout:   o.timeout,
		mode:      o.mode,
	}, nil
}

// ParseOrigin validates raw as an absolute http(s) URL and returns its origin.
func ParseOrigin(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, errors.Join(ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, errors.Join(ErrInvalidBaseURL, errors.New("expected an absolute http(s) URL, got "+strconv.Quote(raw)))
	}
	return &url.URL{Scheme: u.Scheme, Host: u.Host}, nil
}

// Origin returns the backend origin ("https://api.example.com").
func (c *Client) Origin() string {
	return c.origin.String()
}

// Mode returns the execution context the client was built for.
func (c *Client) Mode() session.Mode {
	return c.mode
}

// Timeout returns the per-call timeout.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// URL resolves a logical path and query against the origin.
// Absolute http(s) paths are returned unchanged apart from the query.
func (c *Client) URL(path string, q *Query) string {
	var target string
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		target = path
	} else {
		if !strings.HasPrefix(path, "/") {
			path = "/" + path
		}
		target = c.origin.String() + path
	}

	if encoded := q.Encode(); encoded != "" {
		sep := "?"
		if strings.Contains(target, "?") {
			sep = "&"
		}
		target += sep + encoded
	}
	return target
}

// Do executes req and decodes a JSON body into out.
// out may be nil. 204 responses, empty bodies and requests built with
// WithoutResponseBody leave out untouched.
func (c *Client) Do(ctx context.Context, req *Request, out any) error {
	resp, err := c.Send(ctx, req)
	if err != nil {
		return err
	}
	return resp.Decode(out)
}

// Send executes req and returns the raw response.
// Non-2xx statuses return *Error; missing responses return *NetworkError.
func (c *Client) Send(ctx context.Context, req *Request) (*Response, error) {
	if req == nil {
		return nil, ErrInvalidRequest
	}
	if err := c.mode.Permit(req.credential); err != nil {
		return nil, err
	}

	target := c.URL(req.path, req.query)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	hreq, err := http.NewRequestWithContext(ctx, req.method, target, req.bodyReader())
	if err != nil {
		return nil, errors.Join(ErrInvalidRequest, err)
	}
	req.applyHeaders(hreq.Header)
	req.credential.Apply(hreq)
	if hreq.Header.Get("User-Agent") == "" {
		hreq.Header.Set("User-Agent", c.userAgent)
	}

	hc := c.http
	if req.credential.IsAnonymous() {
		hc = c.anon
	}

	start := time.Now()
	resp, err := hc.Do(hreq)
	if err != nil {
		nerr := &NetworkError{Method: req.method, URL: redact(target), Err: err}
		c.observe(req.method, 0, time.Since(start))
		c.logger.WarnContext(ctx, "backend request failed",
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.Bool("timeout", nerr.Timeout()),
			slog.Any("credential", req.credential),
			slog.Any("error", err),
		)
		return nil, nerr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		c.observe(req.method, 0, time.Since(start))
		return nil, &NetworkError{Method: req.method, URL: redact(target), Err: err}
	}

	elapsed := time.Since(start)
	c.observe(req.method, resp.StatusCode, elapsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newError(resp.StatusCode, statusText(resp), body)
		level := slog.LevelWarn
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusNotFound {
			level = slog.LevelDebug
		}
		c.logger.Log(ctx, level, "backend request rejected",
			slog.String("method", req.method),
			slog.String("path", req.path),
			slog.Int("status", resp.StatusCode),
			slog.String("message", apiErr.Message),
			slog.Duration("duration", elapsed),
		)
		return nil, apiErr
	}

	c.logger.DebugContext(ctx, "backend request",
		slog.String("method", req.method),
		slog.String("path", req.path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", elapsed),
	)

	return &Response{
		Status:     resp.StatusCode,
		Header:     resp.Header.Clone(),
		Body:       body,
		expectBody: req.ExpectsBody(),
	}, nil
}

// Empty reports whether the response carries no parseable body.
func (r *Response) Empty() bool {
	return !r.expectBody || r.Status == http.StatusNoContent || len(bytes.TrimSpace(r.Body)) == 0
}

// Decode unmarshals the body into out unless the response is empty.
func (r *Response) Decode(out any) error {
	if out == nil || r.Empty() {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return errors.Join(ErrDecodeResponse, err)
	}
	return nil
}

func (c *Client) observe(method string, status int, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveRequest(method, status, d)
	}
}

// statusText strips the numeric prefix from resp.Status ("404 Not Found").
func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}

// redact drops the query string so filters and tokens stay out of logs and errors.
func redact(target string) string {
	if i := strings.IndexByte(target, '?'); i >= 0 {
		return target[:i]
	}
	return target
}
