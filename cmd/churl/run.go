package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/churl/internal/runner"
	"github.com/samvad-hq/churl/pkg/httpclient"
	"github.com/samvad-hq/churl/pkg/requests"
)

func (c *cli) runCmd() *cobra.Command {
	var (
		id      string
		include bool
	)
	cmd := &cobra.Command{
		Use:   "run FILE",
		Short: "Execute request definitions from a YAML or JSON file",
		Long: `Execute request definitions from a YAML or JSON file.

Enabled definitions run in file order. --id runs a single definition,
even when it is disabled in the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := requests.LoadFile(args[0])
			if err != nil {
				return err
			}

			defs := reg.Enabled()
			if id != "" {
				def, ok := reg.ByID(id)
				if !ok {
					return fmt.Errorf("request %q not found in %s", id, args[0])
				}
				defs = []requests.Definition{def}
			}

			results, runErr := c.app.Runner().RunAll(cmd.Context(), defs)
			r := newRenderer(cmd.OutOrStdout())
			for i, res := range results {
				if i > 0 {
					r.separator()
				}
				r.heading(res.Definition.ID)
				r.result(res, include)
			}

			if runErr != nil {
				return runErr
			}
			if anyNoResponse(results) {
				return errNoResponse
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&id, "id", "", "Run only the definition with this id")
	cmd.Flags().BoolVarP(&include, "include", "i", false, "Print response headers")
	return cmd
}

func anyNoResponse(results []runner.Result) bool {
	for _, res := range results {
		if res.Response != nil && res.Response.Outcome() == httpclient.OutcomeNoResponse {
			return true
		}
	}
	return false
}
