package main

import (
	"os"
	"os/signal"
	"syscall"

	"petmarket/catalog/internal/container"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the breed catalog API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		log.Info("Starting breed catalog server...")

		app, err := container.New(ctx, cfg)
		if err != nil {
			return err
		}
		defer app.Close()

		if err := app.Run(ctx); err != nil {
			return err
		}

		log.Info("Server finished successfully")
		return nil
	},
}
