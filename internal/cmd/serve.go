package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/datahub/backend/internal/catalog"
	"github.com/datahub/backend/internal/database"
	"github.com/datahub/backend/internal/handlers"
	"github.com/datahub/backend/internal/middleware"
	"github.com/datahub/backend/internal/storage"
	"github.com/datahub/backend/pkg/logger"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}

		db, err := database.Connect(cfg.DB)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer func() {
			_ = database.Close(db)
		}()

		uploads, err := storage.New(ctx, cfg)
		if err != nil {
			return err
		}

		svc := catalog.NewService(db, uploads)
		app := handlers.NewApp(svc, middleware.NewAuthMiddleware(db), handlers.AppOptions{
			FrontendURL: cfg.Server.FrontendURL,
			BodyLimitMB: cfg.Server.BodyLimitMB,
		})

		listenAddr := fmt.Sprintf(":%s", cfg.Server.Port)

		logger.Info("server_starting", map[string]interface{}{
			"port":          cfg.Server.Port,
			"address":       listenAddr,
			"db_driver":     cfg.DB.Driver,
			"storage":       uploads.Name(),
			"body_limit_mb": cfg.Server.BodyLimitMB,
			"version":       handlers.Version,
		})

		errCh := make(chan error, 1)
		go func() {
			errCh <- app.Listen(listenAddr)
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("server_shutting_down", map[string]interface{}{
				"signal": sig.String(),
			})
			shutdownDone := make(chan struct{})
			go func() {
				_ = app.Shutdown()
				close(shutdownDone)
			}()
			select {
			case <-shutdownDone:
			case <-time.After(shutdownTimeout):
				logger.Warn("server_forced_shutdown", map[string]interface{}{
					"timeout": shutdownTimeout.String(),
				})
			}
			return nil
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
