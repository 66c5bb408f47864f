package main

import (
	"github.com/spf13/cobra"
)

func (c *cli) historyCmd() *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recently recorded exchanges",
		Long:  "Show recently recorded exchanges, newest first. Requires STORAGE_TYPE=bbolt.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			exchanges, err := c.app.History(limit)
			if err != nil {
				return err
			}
			newRenderer(cmd.OutOrStdout()).history(exchanges)
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of exchanges to show (0 for all)")
	return cmd
}
