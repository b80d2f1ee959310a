package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/somanole/bmicalc/internal/config"
	"github.com/somanole/bmicalc/internal/logging"
	"github.com/somanole/bmicalc/internal/server"
	"github.com/somanole/bmicalc/internal/telemetry"
)

func newServeCmd() *cobra.Command {
	var (
		configPath string
		addr       string
		verbose    bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the calculator page and JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			if verbose {
				cfg.Logging.Level = "debug"
			}
			if err := config.Validate(cfg); err != nil {
				return fmt.Errorf("invalid config: %w", err)
			}

			logger, err := logging.New(cfg.Logging)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			tp, err := telemetry.NewProvider(ctx, telemetry.Config{
				Enabled:  cfg.Telemetry.Enabled,
				Endpoint: cfg.Telemetry.Endpoint,
				Protocol: cfg.Telemetry.Protocol,
				Service:  cfg.Telemetry.Service,
				Version:  version,
			}, logger)
			if err != nil {
				return fmt.Errorf("init telemetry: %w", err)
			}
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				tp.Shutdown(flushCtx)
			}()

			logger.Info("starting bmicalc",
				zap.String("version", version),
				zap.String("addr", cfg.Server.Addr),
				zap.String("config", configPath),
			)

			srv := server.New(cfg, logger, tp)
			if err := srv.Run(ctx); err != nil {
				return err
			}
			logger.Info("bmicalc stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "bmicalc.yaml", "path to config file")
	cmd.Flags().StringVar(&addr, "addr", "", "HTTP listen address (overrides config)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	return cmd
}
