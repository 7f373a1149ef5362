// Package cmd defines and implements the CLI commands for the swotd executable.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JakeFAU/site-swot/internal/app"
	"github.com/JakeFAU/site-swot/internal/config"
	"github.com/JakeFAU/site-swot/internal/service"
)

// appKeyType is the key for storing the App in the context.
type appKeyType string

const appKey appKeyType = "app"

// App is what subcommands need from the service container. Tests swap in a fake.
type App interface {
	Close()
	Config() config.Config
	Logger() *zap.Logger
	Analyzer() *service.Analyzer
}

// newApp is the application factory; a variable so tests can replace it.
var newApp = func(ctx context.Context, cfgPath string) (App, error) {
	return app.New(ctx, cfgPath)
}

// newRootCmd creates and configures the root command.
func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:   "swotd",
		Short: "Rule-based SWOT analysis of a web page",
		Long: `swotd fetches a web page and derives a canned SWOT report
(strengths, weaknesses, opportunities, threats) from shallow inspection
of its markup. Run it as an HTTP service or analyze a single URL.`,
		SilenceUsage: true,

		// Builds the services once and stores them in the context for subcommands.
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			appInstance, err := newApp(cmd.Context(), cfgFile)
			if err != nil {
				return fmt.Errorf("failed to initialize application services: %w", err)
			}
			cmd.SetContext(context.WithValue(cmd.Context(), appKey, appInstance))
			return nil
		},

		PersistentPostRun: func(cmd *cobra.Command, _ []string) {
			if appInstance, ok := cmd.Context().Value(appKey).(App); ok && appInstance != nil {
				appInstance.Close()
			}
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML); env vars prefixed SWOT_ override it")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newAnalyzeCmd())

	return cmd
}

// Execute is the main entry point.
func Execute() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func resolveApp(ctx context.Context) (App, error) {
	appInstance, ok := ctx.Value(appKey).(App)
	if !ok || appInstance == nil {
		return nil, errors.New("application services not initialized")
	}
	return appInstance, nil
}
