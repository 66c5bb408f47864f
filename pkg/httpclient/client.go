package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"
	"golang.org/x/net/http/httpguts"
)

// ErrInvalidRequest reports a request that could not be built from the given method, URI or headers.
var ErrInvalidRequest = errors.New("invalid request")

// Client issues single synchronous requests over resty and normalizes every
// network outcome into a Response. It holds no per-request state.
type Client struct {
	client       *resty.Client
	defaults     http.Header
	log          Logger
	transportLog resty.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the structured logger used for request diagnostics.
func WithLogger(log Logger) Option {
	return func(c *Client) { c.log = log }
}

// WithTransportLogger routes resty's own warnings and debug output to l.
func WithTransportLogger(l resty.Logger) Option {
	return func(c *Client) { c.transportLog = l }
}

// WithDefaultHeader adds a header sent ahead of caller-supplied headers on every request.
func WithDefaultHeader(name, value string) Option {
	return func(c *Client) { c.defaults.Add(name, value) }
}

// WithRestyClient uses rc instead of a freshly created resty.Client.
// New installs its own pre-request hook on rc, replacing any existing one.
func WithRestyClient(rc *resty.Client) Option {
	return func(c *Client) { c.client = rc }
}

// New creates a Client. Timeouts, retries, TLS and redirects keep the transport defaults.
func New(opts ...Option) *Client {
	c := &Client{defaults: make(http.Header)}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.client == nil {
		c.client = resty.New()
	}
	if c.transportLog != nil {
		c.client.SetLogger(c.transportLog)
	}
	c.client.SetPreRequestHook(attachRawBody)
	c.log = ensureLogger(c.log)
	return c
}

// Request performs one request. Only the first data value is used: for GET it is
// appended to uri as the query string, for every other method it is sent verbatim
// as the body.
//
// HTTP error statuses and transport failures are reported through the returned
// Response. The error is non-nil only when the request cannot be built.
func (c *Client) Request(ctx context.Context, method, uri string, headers map[string]string, data ...string) (*Response, error) {
	return c.do(ctx, method, uri, headers, "", data...)
}

// RequestForm encodes form as application/x-www-form-urlencoded and sends it the
// way Request sends a string. Non-GET requests get the form content type unless
// headers already carry one.
func (c *Client) RequestForm(ctx context.Context, method, uri string, headers map[string]string, form Form) (*Response, error) {
	return c.do(ctx, method, uri, headers, formContentType, EncodeForm(form))
}

// Get is Request with the GET method and no extra headers.
func (c *Client) Get(ctx context.Context, uri string, data ...string) (*Response, error) {
	return c.Request(ctx, http.MethodGet, uri, nil, data...)
}

// Post is Request with the POST method and no extra headers.
func (c *Client) Post(ctx context.Context, uri string, data ...string) (*Response, error) {
	return c.Request(ctx, http.MethodPost, uri, nil, data...)
}

// GetForm sends form as the query string of a GET request.
func (c *Client) GetForm(ctx context.Context, uri string, form Form) (*Response, error) {
	return c.RequestForm(ctx, http.MethodGet, uri, nil, form)
}

// PostForm sends form as the body of a POST request.
func (c *Client) PostForm(ctx context.Context, uri string, form Form) (*Response, error) {
	return c.RequestForm(ctx, http.MethodPost, uri, nil, form)
}

func (c *Client) do(ctx context.Context, method, uri string, headers map[string]string, contentType string, data ...string) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	method = strings.ToUpper(method)
	if err := validateMethod(method); err != nil {
		return nil, err
	}

	effective := uri
	if method == http.MethodGet && len(data) > 0 {
		effective = fmt.Sprintf("%s?%s", uri, data[0])
	}
	if err := validateURI(effective); err != nil {
		return nil, err
	}

	header, err := c.buildHeader(headers)
	if err != nil {
		return nil, err
	}

	if method != http.MethodGet && len(data) > 0 {
		if contentType == "" {
			contentType = plainContentType
		}
		if header.Get("Content-Type") == "" {
			header.Set("Content-Type", contentType)
		}
	}

	var body *string
	if len(data) > 0 {
		switch method {
		case http.MethodGet:
		case http.MethodHead:
			return nil, fmt.Errorf("%w: HEAD request cannot carry data", ErrInvalidRequest)
		case http.MethodOptions:
			// resty drops OPTIONS payloads; attachRawBody restores it on the wire.
			ctx = context.WithValue(ctx, rawBodyKey{}, data[0])
		default:
			body = &data[0]
		}
	}

	req := c.client.R().SetContext(ctx)
	req.Header = header
	if body != nil {
		req.SetBody(*body)
	}

	c.log.DebugObj("http request dispatched", "http_request", map[string]any{
		"method": method,
		"uri":    effective,
	})

	resp, err := req.Execute(method, effective)
	out := normalize(effective, resp, err)
	if out.outcome != OutcomeResponse {
		c.log.WarnObj("http request failed in transport", "http_error", map[string]any{
			"method":  method,
			"uri":     effective,
			"outcome": out.outcome.String(),
			"error":   out.err.Error(),
		})
	}
	return out, nil
}

// rawBodyKey carries a body for methods resty sends without payload.
type rawBodyKey struct{}

const plainContentType = "text/plain; charset=utf-8"

// attachRawBody sets the request body stored under rawBodyKey, if any.
func attachRawBody(_ *resty.Client, req *http.Request) error {
	body, ok := req.Context().Value(rawBodyKey{}).(string)
	if !ok {
		return nil
	}
	req.Body = io.NopCloser(strings.NewReader(body))
	req.ContentLength = int64(len(body))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(body)), nil
	}
	return nil
}

// buildHeader adds default headers first and caller headers after them, so a
// name present in both carries both values.
func (c *Client) buildHeader(headers map[string]string) (http.Header, error) {
	header := c.defaults.Clone()
	for k, v := range headers {
		header.Add(k, v)
	}
	for k, vals := range header {
		if !httpguts.ValidHeaderFieldName(k) {
			return nil, fmt.Errorf("%w: header name %q", ErrInvalidRequest, k)
		}
		for _, v := range vals {
			if !httpguts.ValidHeaderFieldValue(v) {
				return nil, fmt.Errorf("%w: value of header %q", ErrInvalidRequest, k)
			}
		}
	}
	return header, nil
}

func normalize(uri string, resp *resty.Response, err error) *Response {
	var raw *http.Response
	if resp != nil {
		raw = resp.RawResponse
	}

	switch {
	case raw == nil:
		if err == nil {
			err = errors.New("transport returned no response")
		}
		return noResponse(uri, err)
	case err == nil:
		return &Response{
			statusCode: resp.StatusCode(),
			uri:        uri,
			body:       resp.Body(),
			headers:    resp.Header(),
			outcome:    OutcomeResponse,
		}
	default:
		body := resp.Body()
		if rest := drain(raw); len(body) == 0 {
			body = rest
		}
		return &Response{
			statusCode: raw.StatusCode,
			uri:        uri,
			body:       body,
			headers:    raw.Header,
			outcome:    OutcomePartial,
			err:        err,
		}
	}
}

// drain reads whatever is left of a response body the transport gave up on and closes it.
func drain(raw *http.Response) []byte {
	if raw.Body == nil {
		return nil
	}
	defer raw.Body.Close()
	b, _ := io.ReadAll(raw.Body)
	return b
}

func validateMethod(method string) error {
	if method == "" {
		return fmt.Errorf("%w: empty method", ErrInvalidRequest)
	}
	if strings.IndexFunc(method, func(r rune) bool { return !httpguts.IsTokenRune(r) }) != -1 {
		return fmt.Errorf("%w: method %q", ErrInvalidRequest, method)
	}
	return nil
}

func validateURI(uri string) error {
	u, err := url.Parse(uri)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: uri %q is not an absolute http(s) uri", ErrInvalidRequest, uri)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: uri %q has no host", ErrInvalidRequest, uri)
	}
	return nil
}
