package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/evcraddock/newsroom/internal/api"
	"github.com/evcraddock/newsroom/internal/config"
	"github.com/evcraddock/newsroom/internal/db"
	"github.com/evcraddock/newsroom/internal/logging"
)

func newServeCmd() *cobra.Command {
	var (
		addr    string
		devMode bool
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the comment API server",
		Long:  "Start an HTTP server exposing GET, PUT and DELETE on /comments/{id}.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.FromEnv()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}
			if cmd.Flags().Changed("dev") {
				cfg.DevMode = devMode
			}
			if cmd.Flags().Changed("cors-origin") {
				cfg.CORSOrigins = origins
			}
			if flagDB != "" {
				cfg.DBPath = flagDB
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "address to listen on (env NR_ADDR)")
	cmd.Flags().BoolVar(&devMode, "dev", false, "human-readable debug logging (env NR_DEV_MODE)")
	cmd.Flags().StringSliceVar(&origins, "cors-origin", nil, "allowed CORS origin, repeatable (env NR_CORS_ORIGINS)")

	return cmd
}

func runServe(ctx context.Context, cfg config.Server) error {
	logging.Setup(cfg.DevMode)

	database, err := db.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer closeDB(database)

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	slog.Info("database ready", "path", cfg.DBPath)

	srv := api.NewServer(database, api.Options{CORSOrigins: cfg.CORSOrigins})
	return srv.ListenAndServe(ctx, cfg.Addr)
}
