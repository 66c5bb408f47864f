package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// recorded captures what the test server saw.
type recorded struct {
	mu      sync.Mutex
	method  string
	query   string
	body    string
	headers http.Header
}

func (r *recorded) snapshot() (string, string, string, http.Header) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.method, r.query, r.body, r.headers
}

func newEchoServer(t *testing.T) (*httptest.Server, *recorded) {
	t.Helper()
	rec := &recorded{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			t.Errorf("read body: %v", err)
		}
		rec.mu.Lock()
		rec.method = r.Method
		rec.query = r.URL.RawQuery
		rec.body = string(body)
		rec.headers = r.Header.Clone()
		rec.mu.Unlock()

		w.Header().Set("X-Echo", "1")
		io.WriteString(w, "results for "+r.URL.Query().Get("q"))
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestRequestNormalizesMethodCase(t *testing.T) {
	srv, rec := newEchoServer(t)
	client := New()

	for _, method := range []string{"get", "Get", "GET"} {
		resp, err := client.Request(context.Background(), method, srv.URL, nil, "q=avocado")
		if err != nil {
			t.Fatalf("Request(%s): %v", method, err)
		}
		gotMethod, gotQuery, _, _ := rec.snapshot()
		if gotMethod != http.MethodGet {
			t.Fatalf("method %s sent as %s", method, gotMethod)
		}
		if gotQuery != "q=avocado" {
			t.Fatalf("method %s: query = %q", method, gotQuery)
		}
		if resp.URI() != srv.URL+"?q=avocado" {
			t.Fatalf("method %s: uri = %q", method, resp.URI())
		}
	}
}

func TestGetAppendsDataToQueryString(t *testing.T) {
	srv, rec := newEchoServer(t)

	resp, err := New().Get(context.Background(), srv.URL+"/search.json", "q=avocado")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode())
	}
	if resp.URI() != srv.URL+"/search.json?q=avocado" {
		t.Fatalf("uri = %q", resp.URI())
	}
	if !strings.Contains(resp.Data(), "avocado") {
		t.Fatalf("data = %q", resp.Data())
	}
	if resp.Outcome() != OutcomeResponse || resp.Err() != nil {
		t.Fatalf("unexpected outcome %s err %v", resp.Outcome(), resp.Err())
	}
	if got := resp.Headers().Get("X-Echo"); got != "1" {
		t.Fatalf("response header X-Echo = %q", got)
	}
	if _, _, body, _ := rec.snapshot(); body != "" {
		t.Fatalf("GET carried a body: %q", body)
	}
}

func TestPostWritesDataVerbatim(t *testing.T) {
	srv, rec := newEchoServer(t)

	resp, err := New().Post(context.Background(), srv.URL, "q=avocado")
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	method, query, body, _ := rec.snapshot()
	if method != http.MethodPost {
		t.Fatalf("method = %s", method)
	}
	if body != "q=avocado" {
		t.Fatalf("body = %q", body)
	}
	if query != "" {
		t.Fatalf("POST mutated the query string: %q", query)
	}
	if resp.URI() != srv.URL {
		t.Fatalf("uri = %q", resp.URI())
	}
}

func TestRequestSendsDataAsBodyForNonGetMethods(t *testing.T) {
	srv, rec := newEchoServer(t)
	client := New()

	cases := []struct {
		method string
		want   string
	}{
		{method: "PUT", want: http.MethodPut},
		{method: "DELETE", want: http.MethodDelete},
		{method: "PATCH", want: http.MethodPatch},
		{method: "OPTIONS", want: http.MethodOptions},
		{method: "options", want: http.MethodOptions},
		{method: "PROPFIND", want: "PROPFIND"},
	}
	for _, tc := range cases {
		t.Run(tc.method, func(t *testing.T) {
			resp, err := client.Request(context.Background(), tc.method, srv.URL, nil, "q=avocado")
			if err != nil {
				t.Fatalf("Request: %v", err)
			}
			if resp.StatusCode() != http.StatusOK {
				t.Fatalf("status = %d", resp.StatusCode())
			}
			method, query, body, headers := rec.snapshot()
			if method != tc.want {
				t.Fatalf("method = %s, want %s", method, tc.want)
			}
			if body != "q=avocado" {
				t.Fatalf("body = %q", body)
			}
			if query != "" {
				t.Fatalf("%s mutated the query string: %q", tc.method, query)
			}
			if got := headers.Get("Content-Type"); got != "text/plain; charset=utf-8" {
				t.Fatalf("Content-Type = %q", got)
			}
		})
	}
}

func TestOptionsFormCarriesBody(t *testing.T) {
	srv, rec := newEchoServer(t)

	if _, err := New().RequestForm(context.Background(), "OPTIONS", srv.URL, nil, Form{"q": "avocado"}); err != nil {
		t.Fatalf("RequestForm: %v", err)
	}
	_, _, body, headers := rec.snapshot()
	if body != "q=avocado" {
		t.Fatalf("body = %q", body)
	}
	if got := headers.Get("Content-Type"); got != formContentType {
		t.Fatalf("Content-Type = %q", got)
	}
}

func TestHeadWithoutData(t *testing.T) {
	srv, rec := newEchoServer(t)

	resp, err := New().Request(context.Background(), "head", srv.URL, nil)
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if resp.StatusCode() != http.StatusOK || resp.Data() != "" {
		t.Fatalf("unexpected HEAD response %d %q", resp.StatusCode(), resp.Data())
	}
	if method, _, _, _ := rec.snapshot(); method != http.MethodHead {
		t.Fatalf("method = %s", method)
	}
}

func TestRequestUsesOnlyFirstDataValue(t *testing.T) {
	srv, rec := newEchoServer(t)
	client := New()

	if _, err := client.Post(context.Background(), srv.URL, "first", "second"); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if _, _, body, _ := rec.snapshot(); body != "first" {
		t.Fatalf("body = %q", body)
	}

	resp, err := client.Get(context.Background(), srv.URL, "q=1", "q=2")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.URI() != srv.URL+"?q=1" {
		t.Fatalf("uri = %q", resp.URI())
	}
}

func TestGetAndPostWithoutData(t *testing.T) {
	srv, rec := newEchoServer(t)
	client := New()

	resp, err := client.Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if method, query, _, _ := rec.snapshot(); method != http.MethodGet || query != "" {
		t.Fatalf("Get sent %s with query %q", method, query)
	}
	if resp.URI() != srv.URL {
		t.Fatalf("uri = %q", resp.URI())
	}

	resp, err = client.Post(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Post: %v", err)
	}
	if method, _, body, _ := rec.snapshot(); method != http.MethodPost || body != "" {
		t.Fatalf("Post sent %s with body %q", method, body)
	}
	if resp.StatusCode() != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode())
	}
}

func TestRequestReturnsHTTPErrorStatusAsResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		io.WriteString(w, "no such page")
	}))
	defer srv.Close()

	resp, err := New().Get(context.Background(), srv.URL+"/missing")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode() != http.StatusNotFound {
		t.Fatalf("status = %d", resp.StatusCode())
	}
	if resp.Data() != "no such page" {
		t.Fatalf("data = %q", resp.Data())
	}
	if resp.Outcome() != OutcomeResponse {
		t.Fatalf("outcome = %s", resp.Outcome())
	}
	if resp.IsSuccess() {
		t.Fatalf("404 reported as success")
	}
}

func TestRequestWithoutServerReturnsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	uri := srv.URL
	srv.Close()

	resp, err := New().Get(context.Background(), uri, "q=avocado")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.StatusCode() != NoResponseStatus {
		t.Fatalf("status = %d", resp.StatusCode())
	}
	if !strings.HasPrefix(resp.Data(), "No response from the server: ") {
		t.Fatalf("data = %q", resp.Data())
	}
	if resp.Headers() != nil {
		t.Fatalf("expected nil headers, got %v", resp.Headers())
	}
	if resp.Outcome() != OutcomeNoResponse || resp.Err() == nil {
		t.Fatalf("outcome = %s err = %v", resp.Outcome(), resp.Err())
	}
	if resp.URI() != uri+"?q=avocado" {
		t.Fatalf("uri = %q", resp.URI())
	}
}

func TestRequestReportsPartialResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hj, ok := w.(http.Hijacker)
		if !ok {
			t.Errorf("response writer cannot hijack")
			return
		}
		conn, buf, err := hj.Hijack()
		if err != nil {
			t.Errorf("hijack: %v", err)
			return
		}
		defer conn.Close()
		buf.WriteString("HTTP/1.1 200 OK\r\nContent-Length: 100\r\nX-Partial: yes\r\n\r\nhello")
		buf.Flush()
	}))
	defer srv.Close()

	resp, err := New().Get(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.Outcome() != OutcomePartial {
		t.Fatalf("outcome = %s", resp.Outcome())
	}
	if resp.StatusCode() != http.StatusOK {
		t.Fatalf("status = %d", resp.StatusCode())
	}
	if resp.Err() == nil {
		t.Fatalf("expected transport error on partial response")
	}
	if got := resp.Headers().Get("X-Partial"); got != "yes" {
		t.Fatalf("X-Partial = %q", got)
	}
	if resp.Data() != "hello" {
		t.Fatalf("partial body = %q, want %q", resp.Data(), "hello")
	}
}

func TestRequestAppendsCallerHeadersAfterDefaults(t *testing.T) {
	srv, rec := newEchoServer(t)
	client := New(WithDefaultHeader("X-Trace", "default"))

	_, err := client.Request(context.Background(), "get", srv.URL, map[string]string{
		"X-Trace":        "caller",
		"Accept-Charset": "ISO-8859-1,utf-8;q=0.7,*;q=0.3",
	})
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	_, _, _, headers := rec.snapshot()
	got := headers.Values("X-Trace")
	if len(got) != 2 || got[0] != "default" || got[1] != "caller" {
		t.Fatalf("X-Trace values = %v", got)
	}
	if headers.Get("Accept-Charset") != "ISO-8859-1,utf-8;q=0.7,*;q=0.3" {
		t.Fatalf("Accept-Charset = %q", headers.Get("Accept-Charset"))
	}
}

func TestRequestRejectsInvalidInput(t *testing.T) {
	client := New()
	cases := []struct {
		name    string
		method  string
		uri     string
		headers map[string]string
		data    []string
	}{
		{name: "empty method", method: "", uri: "http://example.com"},
		{name: "method with space", method: "GE T", uri: "http://example.com"},
		{name: "relative uri", method: "GET", uri: "/search"},
		{name: "unsupported scheme", method: "GET", uri: "ftp://example.com/file"},
		{name: "missing host", method: "GET", uri: "http:///path"},
		{name: "control character", method: "GET", uri: "http://example.com/\x7f"},
		{name: "bad header name", method: "GET", uri: "http://example.com", headers: map[string]string{"Bad Header": "x"}},
		{name: "bad header value", method: "GET", uri: "http://example.com", headers: map[string]string{"X-Bad": "a\nb"}},
		{name: "head with data", method: "HEAD", uri: "http://example.com", data: []string{"q=avocado"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := client.Request(context.Background(), tc.method, tc.uri, tc.headers, tc.data...)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
			if resp != nil {
				t.Fatalf("expected nil response, got %#v", resp)
			}
		})
	}
}

func TestGetFormEncodesQueryString(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, r.URL.Query().Get("keyword"))
	}))
	defer srv.Close()

	resp, err := New().GetForm(context.Background(), srv.URL, Form{
		"keyword":       "アボカドパスタ",
		"utf8":          "✓",
		"order_by_date": "検索",
	})
	if err != nil {
		t.Fatalf("GetForm: %v", err)
	}
	if strings.Contains(resp.URI(), "検索") {
		t.Fatalf("uri carries raw non-ASCII text: %q", resp.URI())
	}
	if !strings.Contains(resp.URI(), "order_by_date=%E6%A4%9C%E7%B4%A2") {
		t.Fatalf("uri = %q", resp.URI())
	}
	if resp.Data() != "アボカドパスタ" {
		t.Fatalf("data = %q", resp.Data())
	}
}

func TestPostFormSetsContentTypeAndBody(t *testing.T) {
	srv, rec := newEchoServer(t)

	if _, err := New().PostForm(context.Background(), srv.URL, Form{"a": "1", "b": "2"}); err != nil {
		t.Fatalf("PostForm: %v", err)
	}
	_, _, body, headers := rec.snapshot()
	if body != "a=1&b=2" {
		t.Fatalf("body = %q", body)
	}
	if ct := headers.Get("Content-Type"); ct != formContentType {
		t.Fatalf("Content-Type = %q", ct)
	}
}

func TestRequestFormKeepsCallerContentType(t *testing.T) {
	srv, rec := newEchoServer(t)

	_, err := New().RequestForm(context.Background(), "put", srv.URL, map[string]string{
		"Content-Type": "text/plain",
	}, Form{"q": "avocado"})
	if err != nil {
		t.Fatalf("RequestForm: %v", err)
	}
	method, _, body, headers := rec.snapshot()
	if method != http.MethodPut || body != "q=avocado" {
		t.Fatalf("got %s %q", method, body)
	}
	if got := headers.Values("Content-Type"); len(got) != 1 || got[0] != "text/plain" {
		t.Fatalf("Content-Type values = %v", got)
	}
}

func TestPackageHelpersUseDefaultClient(t *testing.T) {
	srv, rec := newEchoServer(t)

	resp, err := Get(context.Background(), srv.URL, "q=avocado")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if resp.Data() != "results for avocado" {
		t.Fatalf("data = %q", resp.Data())
	}

	if _, err := Post(context.Background(), srv.URL, "payload"); err != nil {
		t.Fatalf("Post: %v", err)
	}
	if method, _, body, _ := rec.snapshot(); method != http.MethodPost || body != "payload" {
		t.Fatalf("got %s %q", method, body)
	}
}
