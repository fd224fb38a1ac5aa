package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/spf13/cobra"

	"github.com/atlekbai/sqlrender/internal/hsql"
	"github.com/atlekbai/sqlrender/internal/middleware"
	"github.com/atlekbai/sqlrender/internal/server"
	"github.com/atlekbai/sqlrender/internal/service"
)

const shutdownTimeout = 10 * time.Second

var servePort string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the render service",
	Example: `  # Serve PostgreSQL rendering with $n placeholders on :9090
  SQLRENDER_DIALECT=postgres SQLRENDER_PLACEHOLDER=dollar sqlrender serve --port 9090`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort != "" {
			cfg.Port = servePort
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		interceptors := []connect.Interceptor{
			server.LoggingInterceptor(logger),
		}

		services := []server.ConnectService{
			service.NewRenderService(hsql.DefaultConfig(), cfg.Defaults()),
		}

		mux := server.Mux(services, interceptors...)
		srv := &http.Server{
			Addr:              cfg.Addr(),
			Handler:           middleware.Chain(mux, middleware.Recovery(logger), middleware.Logging(logger)),
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			<-ctx.Done()
			logger.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Error("shutdown", "error", err)
			}
		}()

		logger.Info("listening", "addr", cfg.Addr(), "dialect", cfg.DialectTag().String(), "placeholder", cfg.Placeholder)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "listen port (overrides config)")
}
