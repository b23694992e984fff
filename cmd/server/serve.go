package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		srv, err := NewServer(cfg)
		if err != nil {
			return err
		}

		srv.infra.Logger.Info(
			"statecheck starting",
			"version", cfg.Version,
			"addr", cfg.Server.Addr(),
			"env", cfg.Env(),
		)

		if err := srv.Start(); err != nil {
			srv.Shutdown(cfg.ShutdownTimeoutDuration())
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		<-ctx.Done()

		if err := srv.Shutdown(cfg.ShutdownTimeoutDuration()); err != nil {
			return err
		}

		srv.infra.Logger.Info("statecheck stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
