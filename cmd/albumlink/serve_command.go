package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/sydlexius/albumlink/internal/api"
	"github.com/sydlexius/albumlink/internal/config"
	"github.com/sydlexius/albumlink/internal/logging"
	"github.com/sydlexius/albumlink/internal/version"
	"github.com/sydlexius/albumlink/internal/watcher"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var port int
	var origins []string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve the detect, search and identify endpoints over HTTP.

When a config file is in use it is watched, and logging changes in it are
applied without a restart.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if port != 0 {
				cfg.Server.Port = port
			}

			logManager, logger := logging.NewManagerWithWriter(ctx.logConfig(cfg), cmd.ErrOrStderr())
			defer logManager.Close() //nolint:errcheck
			slog.SetDefault(logger)

			logger.Info("albumlink starting",
				slog.String("version", version.Version),
				slog.String("commit", version.Commit),
				slog.String("logging", logManager.Config().String()))

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			svc := newServices(cfg, logger)
			router := api.NewRouter(api.RouterDeps{
				Identifier:     svc.identify,
				LogManager:     logManager,
				Logger:         logger,
				BasePath:       cfg.Server.BasePath,
				RateLimit:      cfg.Server.RequestsPerSecond,
				RateBurst:      cfg.Server.Burst,
				AllowedOrigins: origins,
			})

			if path := ctx.configPath(); path != "" {
				w := watcher.NewService(path, reloadLogging(path, logManager, logger), logger)
				go w.Start(runCtx)
			}

			addr := fmt.Sprintf(":%d", cfg.Server.Port)
			srv := &http.Server{
				Addr:              addr,
				Handler:           router.Handler(runCtx),
				ReadHeaderTimeout: 10 * time.Second,
				ReadTimeout:       15 * time.Second,
				WriteTimeout:      60 * time.Second,
				IdleTimeout:       60 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logger.Info("server starting", slog.String("addr", addr), slog.String("base_path", cfg.Server.BasePath))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server: %w", err)
				}
				return nil
			case <-runCtx.Done():
			}
			logger.Info("shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (overrides config)")
	cmd.Flags().StringSliceVar(&origins, "allow-origin", nil, `Origins allowed to call the API from a browser ("*" for any)`)
	return cmd
}

// reloadLogging re-reads the config file and applies its logging section.
// Other sections need a restart.
func reloadLogging(path string, mgr *logging.Manager, logger *slog.Logger) watcher.ReloadFunc {
	return func(context.Context) error {
		cfg, err := config.Load(path)
		if err != nil {
			return err
		}
		if cfg.Logging == mgr.Config() {
			return nil
		}
		mgr.Reconfigure(cfg.Logging)
		logger.Info("logging reconfigured from file", slog.String("config", cfg.Logging.String()))
		return nil
	}
}
