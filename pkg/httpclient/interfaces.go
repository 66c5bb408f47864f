package httpclient

import "context"

// Requester abstracts request execution so callers can inject fakes or a shared client.
type Requester interface {
	Request(ctx context.Context, method, uri string, headers map[string]string, data ...string) (*Response, error)
	RequestForm(ctx context.Context, method, uri string, headers map[string]string, form Form) (*Response, error)
}

var _ Requester = (*Client)(nil)
