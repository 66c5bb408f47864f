package main

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/churl/pkg/httpclient"
	"github.com/samvad-hq/churl/pkg/requests"
)

// requestFlags holds the options shared by request, get and post.
type requestFlags struct {
	headers []string
	form    []string
	sel     string
	include bool
}

func (f *requestFlags) bind(cmd *cobra.Command) {
	cmd.Flags().StringArrayVarP(&f.headers, "header", "H", nil, "Request header as 'Name: value' (repeatable; a repeated name keeps the last value)")
	cmd.Flags().StringArrayVarP(&f.form, "form", "f", nil, "Form field as key=value, sent url-encoded (repeatable)")
	cmd.Flags().StringVar(&f.sel, "select", "", "Print only the text of nodes matching this CSS selector")
	cmd.Flags().BoolVarP(&f.include, "include", "i", false, "Print response headers")
}

// definition turns positional arguments and flags into a request definition.
func (f *requestFlags) definition(method, uri string, data []string) (requests.Definition, error) {
	headers, err := parseHeaders(f.headers)
	if err != nil {
		return requests.Definition{}, err
	}
	form, err := parseForm(f.form)
	if err != nil {
		return requests.Definition{}, err
	}
	if form != nil && len(data) > 0 {
		return requests.Definition{}, fmt.Errorf("%w: data argument and --form are mutually exclusive", httpclient.ErrInvalidRequest)
	}

	def := requests.Definition{
		Method:  method,
		URI:     uri,
		Headers: headers,
		Form:    form,
		Select:  strings.TrimSpace(f.sel),
	}
	if len(data) > 0 {
		d := data[0]
		def.Data = &d
	}
	return def, nil
}

func (c *cli) requestCmd() *cobra.Command {
	var flags requestFlags
	cmd := &cobra.Command{
		Use:   "request METHOD URI [DATA]",
		Short: "Send a request with any method",
		Long: `Send a request with any method.

For GET, DATA is appended to the URI as its query string. For other methods
DATA is sent verbatim as the request body.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := flags.definition(args[0], args[1], args[2:])
			if err != nil {
				return err
			}
			return c.execute(cmd, def, flags.include)
		},
	}
	flags.bind(cmd)
	return cmd
}

func (c *cli) methodCmd(name, method string) *cobra.Command {
	var flags requestFlags
	cmd := &cobra.Command{
		Use:   name + " URI [DATA]",
		Short: "Send a " + method + " request",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			def, err := flags.definition(method, args[0], args[1:])
			if err != nil {
				return err
			}
			return c.execute(cmd, def, flags.include)
		},
	}
	flags.bind(cmd)
	return cmd
}

func (c *cli) execute(cmd *cobra.Command, def requests.Definition, include bool) error {
	res, err := c.app.Runner().Execute(cmd.Context(), def)
	if err != nil {
		return err
	}
	newRenderer(cmd.OutOrStdout()).result(res, include)
	if res.Response.Outcome() == httpclient.OutcomeNoResponse {
		return errNoResponse
	}
	return nil
}

// parseHeaders reads 'Name: value' pairs. Names are canonicalized, so a repeated
// name in any case keeps the last value.
func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		name = http.CanonicalHeaderKey(strings.TrimSpace(name))
		if !ok || name == "" {
			return nil, fmt.Errorf("%w: header %q must look like 'Name: value'", httpclient.ErrInvalidRequest, h)
		}
		out[name] = strings.TrimSpace(value)
	}
	return out, nil
}

// parseForm reads key=value pairs into form data.
func parseForm(raw []string) (map[string]any, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	out := make(map[string]any, len(raw))
	for _, kv := range raw {
		key, value, ok := strings.Cut(kv, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: form field %q must look like key=value", httpclient.ErrInvalidRequest, kv)
		}
		out[key] = value
	}
	return out, nil
}
