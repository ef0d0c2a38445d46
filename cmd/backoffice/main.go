package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"go.uber.org/fx"

	"github.com/brizzai/backoffice/internal/config"
	"github.com/brizzai/backoffice/internal/logger"
	"github.com/brizzai/backoffice/internal/normalize"
	"github.com/brizzai/backoffice/internal/requester"
	"github.com/brizzai/backoffice/internal/session"
)

func main() {
	Execute()
}

var cfg *config.Config

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "backoffice",
	Short: "A command line client for the agency back-office API",
	Long: `backoffice talks to the agency back-office API with your staff account.
It keeps the session between runs, refreshes expired access tokens on its own,
and lists, browses and exports any list endpoint.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	// Place version check in PreRun to ensure flags are parsed first
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		versionFlag, _ := cmd.Flags().GetBool("version")
		if versionFlag {
			pterm.Info.Println(config.GetVersionInfo())
			os.Exit(0)
		}

		var err error
		cfg, err = config.Load(cmd.Flags())
		if err != nil {
			return err
		}
		return logger.InitLogger(&cfg.Logging)
	}
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	_ = logger.Sync()
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func init() {
	config.InitFlags(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show version information")

	rootCmd.AddCommand(
		newLoginCmd(),
		newLogoutCmd(),
		newStatusCmd(),
		newListCmd(),
		newExportCmd(),
		newBrowseCmd(),
	)
}

// clientDeps is what the commands need from the dependency graph
type clientDeps struct {
	client *requester.HTTPRequester
	store  session.Store
}

// buildClient wires the requester and its session store from cfg
func buildClient() (*clientDeps, error) {
	var deps clientDeps
	app := fx.New(
		fx.Supply(cfg),
		config.Module,
		session.Module,
		normalize.Module,
		requester.Module,
		fx.Populate(&deps.client, &deps.store),
		fx.NopLogger,
	)
	if err := app.Err(); err != nil {
		return nil, fmt.Errorf("failed to initialize client: %w", err)
	}
	return &deps, nil
}
