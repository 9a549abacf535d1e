package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/mataroo/mataroo/internal/interfaces/cli/bootstrap"
	"github.com/mataroo/mataroo/internal/shared/goroutine"
	"github.com/mataroo/mataroo/internal/shared/logger"
)

const shutdownTimeout = 30 * time.Second

func NewCommand(flags *bootstrap.Flags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the local dashboard server",
		Long:  `Serve the dashboard API, the payment checkout page and the OAuth return landing on the configured address.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			app, err := bootstrap.Load(ctx, flags, bootstrap.WithURLPrinter(func(url string) {
				fmt.Fprintf(cmd.ErrOrStderr(), "Open %s\n", url)
			}))
			if err != nil {
				return err
			}
			defer app.Close()

			return Serve(ctx, app)
		},
	}
}

// Serve runs the dashboard server until ctx is cancelled, then shuts it
// down gracefully.
func Serve(ctx context.Context, app *bootstrap.App) error {
	gin.DefaultWriter = io.Discard
	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {}

	router := app.Router()
	addr := app.Config.Server.GetAddr()

	srv := &http.Server{
		Addr:              addr,
		Handler:           router.GetEngine(),
		ReadHeaderTimeout: 15 * time.Second,
		// no write timeout: payment verification is never cut short
		IdleTimeout: 60 * time.Second,
	}

	errCh := make(chan error, 1)
	goroutine.SafeGo(app.Logger, "dashboard-server", func() {
		app.Logger.Infow("dashboard server starting",
			"address", addr,
			"base_url", app.Config.Server.GetBaseURL(),
			"mode", app.Config.Server.Mode)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	})

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		return err
	}

	logger.Info("server exited gracefully")
	return nil
}
