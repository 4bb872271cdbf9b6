package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openfoodfacts-mcp/backend/config"
	httpDelivery "github.com/openfoodfacts-mcp/backend/internal/delivery/http"
	mcpDelivery "github.com/openfoodfacts-mcp/backend/internal/delivery/mcp"
	"github.com/openfoodfacts-mcp/backend/internal/infrastructure/off"
	"github.com/openfoodfacts-mcp/backend/internal/knowledge"
	"github.com/openfoodfacts-mcp/backend/internal/metrics"
	"github.com/openfoodfacts-mcp/backend/internal/usecase"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

var (
	transportFlag string
	portFlag      int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the MCP server",
	Long: `Run the MCP server over the configured transport. With --transport=http
the server also exposes /health, /api/v1 introspection and prometheus metrics.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&transportFlag, "transport", "", "transport to serve: stdio or http (overrides config)")
	serveCmd.Flags().IntVar(&portFlag, "port", 0, "HTTP listen port (overrides config)")
}

// app is the wired object graph shared by the serve and tools commands.
type app struct {
	metrics    *metrics.Registry
	registry   *usecase.Registry
	dispatcher *usecase.Dispatcher
	knowledge  *knowledge.Provider
	mcp        *mcpDelivery.Server
}

func newApp(cfg *config.Config, logger *zerolog.Logger) (*app, error) {
	m := metrics.NewRegistry()

	client := off.NewClient(off.Config{
		ProductBaseURL:  cfg.Upstream.ProductBaseURL,
		SearchBaseURL:   cfg.Upstream.SearchBaseURL,
		PricesBaseURL:   cfg.Upstream.PricesBaseURL,
		RobotoffBaseURL: cfg.Upstream.RobotoffBaseURL,
		UserAgent:       cfg.Upstream.UserAgent,
		Timeout:         cfg.Upstream.Timeout,
	}, logger, m)

	registry, err := usecase.NewRegistry(usecase.NewService(client, logger, m))
	if err != nil {
		return nil, fmt.Errorf("build capability registry: %w", err)
	}
	docs, err := knowledge.New()
	if err != nil {
		return nil, fmt.Errorf("load knowledge documents: %w", err)
	}
	dispatcher := usecase.NewDispatcher(registry, logger, m)

	return &app{
		metrics:    m,
		registry:   registry,
		dispatcher: dispatcher,
		knowledge:  docs,
		mcp:        mcpDelivery.NewServer(dispatcher, usecase.NewPromptTable(), docs, logger),
	}, nil
}

func runServe(cmd *cobra.Command, args []string) error {
	if transportFlag != "" {
		cfg.Server.Transport = transportFlag
	}
	if portFlag != 0 {
		cfg.Server.Port = portFlag
	}
	if cfg.Server.Transport != config.TransportStdio && cfg.Server.Transport != config.TransportHTTP {
		return fmt.Errorf("unknown transport %q", cfg.Server.Transport)
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info().
		Str("version", mcpDelivery.ServerVersion).
		Str("transport", cfg.Server.Transport).
		Str("environment", cfg.Server.Environment).
		Int("tools", len(a.registry.Capabilities())).
		Msg("Starting Open Food Facts MCP server")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.Server.Transport == config.TransportStdio {
		if err := a.mcp.RunStdio(ctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("stdio transport: %w", err)
		}
		logger.Info().Msg("Server exited")
		return nil
	}
	return serveHTTP(ctx, a)
}

func serveHTTP(ctx context.Context, a *app) error {
	handler := httpDelivery.NewHandler(a.registry, a.knowledge, mcpDelivery.ServerVersion)
	router := httpDelivery.SetupRouter(cfg, handler, a.mcp.HTTPHandler(), a.metrics, logger)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", addr).Str("mcp", httpDelivery.MCPPath).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen on %s: %w", addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Server forced to shutdown")
			return err
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("Server exited")
	return nil
}
