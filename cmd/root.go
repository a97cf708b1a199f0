// Package cmd wires the processes of the queue system into one binary:
// serve runs the API server, while admin, display, and kiosk run the
// respective station surfaces against it.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ibher16/antrian-lab-ibsi/internal/config"
	"github.com/ibher16/antrian-lab-ibsi/internal/logging"
)

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.NewViper())
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}
	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	rootCmd := &cobra.Command{
		Use:           "antrian",
		Short:         "Walk-in queue system for the Ibnu Sina lab",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		newServeCmd(ctx, cfg, logger),
		newAdminCmd(ctx, cfg, logger),
		newDisplayCmd(ctx, cfg, logger),
		newKioskCmd(ctx, cfg, logger),
	)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", zap.Error(err))
		os.Exit(1)
	}
}
