package main

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/fatih/color"

	"github.com/samvad-hq/churl/internal/domain"
	"github.com/samvad-hq/churl/internal/runner"
	"github.com/samvad-hq/churl/pkg/httpclient"
)

// renderer writes command output.
type renderer struct {
	w io.Writer
}

func newRenderer(w io.Writer) *renderer {
	return &renderer{w: w}
}

// result prints the status line, optional headers, then the body or selected text.
func (r *renderer) result(res runner.Result, include bool) {
	resp := res.Response
	if resp == nil {
		return
	}

	fmt.Fprintln(r.w, statusLine(resp.StatusCode(), resp.Outcome()))
	if include {
		r.headers(resp.Headers())
	}
	fmt.Fprintln(r.w)

	if res.Definition.Select != "" && resp.Outcome() != httpclient.OutcomeNoResponse {
		for _, text := range res.Selected {
			fmt.Fprintln(r.w, text)
		}
		return
	}

	data := resp.Data()
	fmt.Fprint(r.w, data)
	if data != "" && !strings.HasSuffix(data, "\n") {
		fmt.Fprintln(r.w)
	}
}

func (r *renderer) headers(h http.Header) {
	names := make([]string, 0, len(h))
	for name := range h {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		for _, v := range h[name] {
			fmt.Fprintf(r.w, "%s: %s\n", color.CyanString(name), v)
		}
	}
}

func (r *renderer) heading(id string) {
	fmt.Fprintln(r.w, color.New(color.Bold).Sprintf("== %s", id))
}

func (r *renderer) separator() {
	fmt.Fprintln(r.w)
}

// history prints one line per exchange.
func (r *renderer) history(exchanges []domain.Exchange) {
	if len(exchanges) == 0 {
		fmt.Fprintln(r.w, "No exchanges recorded")
		return
	}
	for _, ex := range exchanges {
		name := ex.Name
		if name == "" {
			name = "-"
		}
		fmt.Fprintf(r.w, "%s  %s  %-7s %s  %5dms  %s\n",
			ex.RecordedAt.Local().Format("2006-01-02 15:04:05"),
			statusColor(ex.StatusCode).Sprintf("%3d", ex.StatusCode),
			ex.Method,
			name,
			ex.ElapsedMs,
			ex.URI,
		)
	}
}

// statusLine formats "200 OK", suffixed with the outcome when the body may be incomplete.
func statusLine(code int, outcome httpclient.Outcome) string {
	line := fmt.Sprintf("%d %s", code, http.StatusText(code))
	line = strings.TrimSpace(line)
	if outcome != httpclient.OutcomeResponse {
		line += " (" + strings.ReplaceAll(outcome.String(), "_", " ") + ")"
	}
	if outcome == httpclient.OutcomeNoResponse {
		return color.RedString(line)
	}
	return statusColor(code).Sprint(line)
}

func statusColor(code int) *color.Color {
	switch {
	case code >= 500:
		return color.New(color.FgRed)
	case code >= 400:
		return color.New(color.FgYellow)
	case code >= 300:
		return color.New(color.FgCyan)
	case code >= 200:
		return color.New(color.FgGreen)
	default:
		return color.New(color.Reset)
	}
}
