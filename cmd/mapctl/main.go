package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lintang-b-s/synthmap/pkg/config"
	"github.com/lintang-b-s/synthmap/pkg/logger"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app is the state shared by all subcommands, filled in before any of them runs.
type app struct {
	cfg config.Config
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
	)
	a := &app{}

	root := &cobra.Command{
		Use:          "mapctl",
		Short:        "mapctl prepares synthetic maps for the map builder",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg

			level, err := logger.ParseLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			if verbose {
				level = log.DebugLevel
			}
			cmd.SetContext(logger.WithContext(cmd.Context(), logger.New(cmd.ErrOrStderr(), level)))
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "TOML config file (default $SYNTHMAP_CONFIG or synthmap.toml)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newIngestCmd(a))
	root.AddCommand(newDistributeCmd(a))
	root.AddCommand(newExportCmd(a))
	root.AddCommand(newImportCmd(a))
	root.AddCommand(newOSMCmd(a))
	return root
}
