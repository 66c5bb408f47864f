// Package main provides the churl CLI entrypoint.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/samvad-hq/churl/internal/app"
	"github.com/samvad-hq/churl/internal/config"
	"github.com/samvad-hq/churl/internal/logger"
)

// errNoResponse marks a run where at least one request got nothing back from the server.
var errNoResponse = errors.New("no response from the server")

// cli carries the runtime shared by subcommands.
type cli struct {
	app *app.App
}

func main() {
	if err := run(os.Args[1:]); err != nil {
		if !errors.Is(err, errNoResponse) {
			fmt.Fprintf(os.Stderr, "churl: %v\n", err)
		}
		os.Exit(1)
	}
}

func run(args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c := &cli{}
	defer c.close()

	root := c.rootCmd()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "churl",
		Short: "Issue HTTP requests and inspect the responses",
		Long: `churl sends one HTTP request per call and prints what came back.

A request that reaches the server always yields a status and body, whatever the
status. When nothing comes back, churl reports status 500 with a
"No response from the server" body and exits non-zero.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return c.init(cmd.Context())
		},
	}

	root.AddCommand(
		c.requestCmd(),
		c.methodCmd("get", "GET"),
		c.methodCmd("post", "POST"),
		c.runCmd(),
		c.historyCmd(),
	)
	return root
}

func (c *cli) init(ctx context.Context) error {
	if c.app != nil {
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if _, err := logger.Init(cfg); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	logger.DebugObj("churl starting", "config", cfg)

	a, err := app.New(ctx, cfg, logger.Global())
	if err != nil {
		logger.ErrorObj("failed to initialize app", "error", err.Error())
		return err
	}
	c.app = a
	return nil
}

func (c *cli) close() {
	if c.app != nil {
		if err := c.app.Close(); err != nil {
			logger.ErrorObj("shutdown failed", "error", err.Error())
		}
	}
	_ = logger.Close()
}
