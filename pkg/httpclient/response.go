package httpclient

import (
	"bytes"
	"net/http"
)

// NoResponseStatus is the status reported when nothing at all came back from the server.
// It is synthesized locally and never read off the wire.
const NoResponseStatus = http.StatusInternalServerError

const noResponsePrefix = "No response from the server: "

// Outcome tells how a Response was obtained.
type Outcome int

const (
	// OutcomeResponse means the server answered and the full body was read, whatever the status.
	OutcomeResponse Outcome = iota
	// OutcomePartial means the transport failed after a response object was received.
	OutcomePartial
	// OutcomeNoResponse means no response was obtained; StatusCode is NoResponseStatus.
	OutcomeNoResponse
)

func (o Outcome) String() string {
	switch o {
	case OutcomeResponse:
		return "response"
	case OutcomePartial:
		return "partial"
	case OutcomeNoResponse:
		return "no_response"
	default:
		return "unknown"
	}
}

// Response is the normalized result of a single request. It is read-only once built.
type Response struct {
	statusCode int
	uri        string
	body       []byte
	headers    http.Header
	outcome    Outcome
	err        error
}

// StatusCode returns the server status, or NoResponseStatus when nothing was received.
func (r *Response) StatusCode() int { return r.statusCode }

// URI returns the effective URI, including any query string appended for GET data.
func (r *Response) URI() string { return r.uri }

// Body returns a copy of the response body bytes.
func (r *Response) Body() []byte { return bytes.Clone(r.body) }

// Data returns the body as text, or a description of the failure when no response was obtained.
func (r *Response) Data() string { return string(r.body) }

// Headers returns a copy of the response headers. It is nil when no response was obtained.
func (r *Response) Headers() http.Header { return r.headers.Clone() }

// Outcome reports how the response was obtained.
func (r *Response) Outcome() Outcome { return r.outcome }

// Err returns the transport error behind a partial or missing response.
func (r *Response) Err() error { return r.err }

// IsSuccess reports a 2xx status obtained from the server.
func (r *Response) IsSuccess() bool {
	return r.outcome != OutcomeNoResponse && r.statusCode >= 200 && r.statusCode < 300
}

func noResponse(uri string, err error) *Response {
	return &Response{
		statusCode: NoResponseStatus,
		uri:        uri,
		body:       []byte(noResponsePrefix + err.Error()),
		outcome:    OutcomeNoResponse,
		err:        err,
	}
}
