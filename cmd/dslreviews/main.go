package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/pevans/dslreviews/config"
	"github.com/pevans/dslreviews/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app carries the state shared by all subcommands.
type app struct {
	configPath string
	dsn        string
	verbose    bool

	cfg *config.Config
	log zerolog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{log: zerolog.Nop()}

	root := &cobra.Command{
		Use:   "dslreviews",
		Short: "Extract ISP review records from DSL Reports review pages",
		Long: `dslreviews reads review pages (saved HTML files or single URLs), pulls
out one record per review, and writes them as CSV, JSON or a table, or
stores them in a SQLite database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
	}

	root.PersistentFlags().StringVar(&a.configPath, "config", "", "Config file (default ~/.dslreviews/config.yaml)")
	root.PersistentFlags().StringVar(&a.dsn, "dsn", "", "Path to review database ("+config.EnvDSN+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false, "Log fields that could not be extracted")

	root.AddCommand(
		newExtractCmd(a),
		newResolveCmd(a),
		newImportCmd(a),
		newListCmd(a),
	)

	return root
}

// setup resolves configuration and builds the logger.
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	if a.dsn != "" {
		cfg.DSN = a.dsn
	}
	if a.verbose {
		cfg.LogLevel = "debug"
	}

	log, err := logging.New(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogPretty)
	if err != nil {
		return err
	}

	a.cfg = cfg
	a.log = log
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
