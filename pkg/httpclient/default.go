package httpclient

import "context"

// defaultClient backs the package-level helpers, the same way http.Get uses http.DefaultClient.
var defaultClient = New()

// Request performs a request with the default client. See Client.Request.
func Request(ctx context.Context, method, uri string, headers map[string]string, data ...string) (*Response, error) {
	return defaultClient.Request(ctx, method, uri, headers, data...)
}

// RequestForm performs a form request with the default client. See Client.RequestForm.
func RequestForm(ctx context.Context, method, uri string, headers map[string]string, form Form) (*Response, error) {
	return defaultClient.RequestForm(ctx, method, uri, headers, form)
}

// Get issues a GET with the default client.
func Get(ctx context.Context, uri string, data ...string) (*Response, error) {
	return defaultClient.Get(ctx, uri, data...)
}

// Post issues a POST with the default client.
func Post(ctx context.Context, uri string, data ...string) (*Response, error) {
	return defaultClient.Post(ctx, uri, data...)
}

// GetForm issues a GET carrying form as its query string with the default client.
func GetForm(ctx context.Context, uri string, form Form) (*Response, error) {
	return defaultClient.GetForm(ctx, uri, form)
}

// PostForm issues a POST carrying form as its body with the default client.
func PostForm(ctx context.Context, uri string, form Form) (*Response, error) {
	return defaultClient.PostForm(ctx, uri, form)
}
