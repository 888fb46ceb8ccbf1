package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	httpAdapter "github.com/aretw0/formstate/pkg/adapters/http"
	"github.com/aretw0/formstate/pkg/adapters/mcp"
	"github.com/aretw0/formstate/pkg/observability"
	"github.com/aretw0/formstate/pkg/registry"
	"github.com/aretw0/formstate/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ShutdownTimeout bounds the graceful shutdown of the servers.
const ShutdownTimeout = 5 * time.Second

// instrumentedManager builds a session manager whose forms log and count
// every transition on the given registry.
func instrumentedManager(b *Backend, logger *slog.Logger, reg prometheus.Registerer) *session.Manager {
	metrics := observability.NewMetrics(reg)
	hooks := observability.Combine(observability.LoggingHooks(logger), metrics.Hooks())
	return session.NewManager(b.Store, managerOptions(b, logger, hooks)...)
}

// LoadDefinitions loads the named definitions served to clients. An empty dir
// yields nil. With watch, the registry is reloaded whenever a file changes
// until ctx is cancelled.
func LoadDefinitions(ctx context.Context, dir string, watch bool, logger *slog.Logger) (*registry.Registry, error) {
	if dir == "" {
		return nil, nil
	}
	reg, loader, err := registry.LoadDir(ctx, dir)
	if err != nil {
		return nil, err
	}
	logger.Info("definitions loaded", "dir", dir, "count", len(reg.Names()))

	if watch {
		go func() {
			if err := reg.Watch(ctx, loader, logger); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("definitions watcher stopped", "err", err)
			}
		}()
	}
	return reg, nil
}

// RunServe serves the HTTP JSON API until ctx is cancelled. A nil registry
// disables the /definitions routes.
func RunServe(ctx context.Context, b *Backend, addr string, reg *registry.Registry, logger *slog.Logger) error {
	promReg := prometheus.NewRegistry()
	promReg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := []httpAdapter.Option{
		httpAdapter.WithLogger(logger),
		httpAdapter.WithMetricsHandler(promhttp.HandlerFor(promReg, promhttp.HandlerOpts{})),
	}
	if reg != nil {
		opts = append(opts, httpAdapter.WithRegistry(reg))
	}
	handler := httpAdapter.NewHandler(instrumentedManager(b, logger, promReg), opts...)

	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting formstate server", "address", srv.Addr)
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		logger.Info("Start shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			_ = srv.Close()
			return fmt.Errorf("graceful shutdown did not complete in %v: %w", ShutdownTimeout, err)
		}
		logger.Info("formstate server stopped gracefully")
		return nil
	}
}

// RunMCP serves the MCP tools over stdio or SSE.
func RunMCP(ctx context.Context, b *Backend, transport string, port int, reg *registry.Registry, logger *slog.Logger) error {
	manager := instrumentedManager(b, logger, prometheus.NewRegistry())
	opts := []mcp.Option{mcp.WithLogger(logger)}
	if reg != nil {
		opts = append(opts, mcp.WithRegistry(reg))
	}
	srv := mcp.NewServer(manager, opts...)

	switch transport {
	case "stdio", "":
		logger.Info("Starting formstate MCP Server (Stdio)")
		return srv.ServeStdio()
	case "sse":
		logger.Info("Starting formstate MCP Server (SSE)", "port", port)
		if err := srv.ServeSSE(ctx, port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("MCP Server stopped gracefully")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio, sse)", transport)
	}
}
