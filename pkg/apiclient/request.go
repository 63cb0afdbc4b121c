package apiclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/dmitrymomot/sitekit/pkg/session"
)

// Content types.
const (
	ContentTypeJSON = "application/json"
	ContentTypeForm = "application/x-www-form-urlencoded"
)

// Request is an immutable description of one backend call.
// Build it with NewRequest; it is consumed by Client.Do or Client.Send.
type Request struct {
	err        error
	query      *Query
	header     http.Header
	raw        io.Reader
	credential session.Credential
	method     string
	path       string
	body       []byte
	hasBody    bool
	rawBody    bool
	skipBody   bool
}

// RequestOption configures a Request.
type RequestOption func(*Request)

// NewRequest builds a request descriptor for method and path.
// path is either relative to the client's origin ("/api/admin/sites")
// or an absolute http(s) URL that is used unchanged.
func NewRequest(method, path string, opts ...RequestOption) (*Request, error) {
	method = strings.ToUpper(strings.TrimSpace(method))
	if method == "" {
		return nil, errors.Join(ErrInvalidRequest, errors.New("method is required"))
	}
	if strings.TrimSpace(path) == "" {
		return nil, errors.Join(ErrInvalidRequest, errors.New("path is required"))
	}

	r := &Request{
		method: method,
		path:   path,
		header: make(http.Header),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.err != nil {
		return nil, r.err
	}
	return r, nil
}

// WithQuery sets the query parameters. The query is copied.
func WithQuery(q *Query) RequestOption {
	return func(r *Request) {
		if q != nil {
			r.query = q.Clone()
		}
	}
}

// WithBody sets the request body.
//   - nil: no body
//   - io.Reader and []byte: passed through unchanged as raw binary
//   - json.RawMessage: sent as prepared JSON
//   - string: sent as text; an empty string means no body
//   - anything else: JSON encoded
func WithBody(v any) RequestOption {
	return func(r *Request) {
		switch b := v.(type) {
		case nil:
		case json.RawMessage:
			r.setBody(b, false)
		case []byte:
			r.setBody(b, true)
		case io.Reader:
			r.raw = b
			r.hasBody = true
			r.rawBody = true
		case string:
			if b != "" {
				r.setBody([]byte(b), false)
			}
		default:
			data, err := json.Marshal(v)
			if err != nil {
				r.err = errors.Join(ErrEncodeBody, err)
				return
			}
			r.setBody(data, false)
		}
	}
}

// WithRawBody sets a pass-through body (file upload, multipart form).
// contentType is applied when non-empty; no JSON content type is ever added.
func WithRawBody(body io.Reader, contentType string) RequestOption {
	return func(r *Request) {
		r.raw = body
		r.hasBody = body != nil
		r.rawBody = true
		if contentType != "" {
			r.header.Set("Content-Type", contentType)
		}
	}
}

// WithForm sends url-encoded form data as a raw body.
func WithForm(values url.Values) RequestOption {
	return WithRawBody(strings.NewReader(values.Encode()), ContentTypeForm)
}

// WithHeader sets a request header.
func WithHeader(key, value string) RequestOption {
	return func(r *Request) {
		r.header.Set(key, value)
	}
}

// WithCredential sets how the call authenticates.
func WithCredential(c session.Credential) RequestOption {
	return func(r *Request) {
		r.credential = c
	}
}

// WithoutResponseBody marks the call as returning no body.
// The response is never parsed, whatever the status.
func WithoutResponseBody() RequestOption {
	return func(r *Request) {
		r.skipBody = true
	}
}

// Method returns the HTTP method.
func (r *Request) Method() string { return r.method }

// Path returns the logical path.
func (r *Request) Path() string { return r.path }

// Query returns a copy of the query parameters.
func (r *Request) Query() *Query { return r.query.Clone() }

// Credential returns the credential directive.
func (r *Request) Credential() session.Credential { return r.credential }

// ExpectsBody reports whether the response body should be parsed.
func (r *Request) ExpectsBody() bool { return !r.skipBody }

// Header returns a copy of the explicit request headers.
func (r *Request) Header() http.Header { return r.header.Clone() }

func (r *Request) setBody(data []byte, raw bool) {
	r.body = data
	r.hasBody = true
	r.rawBody = raw
}

// bodyReader returns a fresh reader over the body.
func (r *Request) bodyReader() io.Reader {
	switch {
	case !r.hasBody:
		return nil
	case r.raw != nil:
		return r.raw
	default:
		return bytes.NewReader(r.body)
	}
}

// applyHeaders writes the descriptor's headers onto an outbound header set.
func (r *Request) applyHeaders(h http.Header) {
	for k, v := range r.header {
		h[k] = append([]string(nil), v...)
	}
	h.Set("Accept", ContentTypeJSON)
	if r.hasBody && !r.rawBody && h.Get("Content-Type") == "" {
		h.Set("Content-Type", ContentTypeJSON)
	}
}
