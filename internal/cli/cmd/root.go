// Package cmd provides Cobra CLI commands for pagekit.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bnema/pagekit/internal/cli"
	"github.com/bnema/pagekit/internal/domain/build"
)

var (
	app       *cli.App
	buildInfo build.Info
	rootCmd   = &cobra.Command{
		Use:   "pagekit",
		Short: "Favicon discovery and download disposition for web pages",
		Long: `pagekit fetches the icons a page declares and decides how a browser
would treat a response: render it inline or save it to disk.

Examples:
  pagekit favicon https://example.com https://go.dev
  pagekit resolve https://example.com/report.pdf
  pagekit get https://example.com/archive.zip`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			switch cmd.Name() {
			case "help", "completion", "version":
				return nil
			}

			var err error
			app, err = cli.NewApp()
			if err != nil {
				return fmt.Errorf("initialize app: %w", err)
			}
			app.BuildInfo = buildInfo
			return nil
		},
		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if app != nil {
				_ = app.Close()
			}
		},
	}
)

// Execute runs the root command. SIGINT and SIGTERM cancel the command context.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// GetApp returns the initialized app (for use by subcommands).
func GetApp() *cli.App {
	return app
}

// SetBuildInfo sets the build information (called from main.go before Execute).
func SetBuildInfo(info build.Info) {
	buildInfo = info
}

// commandContext merges the cobra context with the app logger.
func commandContext(cmd *cobra.Command) (context.Context, error) {
	if app == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return app.Logger().WithContext(ctx), nil
}
