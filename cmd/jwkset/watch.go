package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/vyrodovalexey/jwkset/internal/config"
	"github.com/vyrodovalexey/jwkset/internal/health"
	"github.com/vyrodovalexey/jwkset/internal/jwk"
	"github.com/vyrodovalexey/jwkset/internal/keystore"
	"github.com/vyrodovalexey/jwkset/internal/observability"
)

// watch keeps the key set loaded until ctx is canceled.
func (a *app) watch(ctx context.Context) error {
	a.logger.Info("starting jwkset",
		observability.String("version", version),
		observability.String("jwks", a.cfg.KeySet.Path),
	)

	tracer, err := initTracer(a.cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize tracer: %w", err)
	}
	abort := func(err error) error {
		_ = tracer.Shutdown(context.Background())
		return err
	}

	registry := newRegistry(a.cfg.Metrics.Namespace)
	parseMetrics := jwk.NewMetrics(a.cfg.Metrics.Namespace)
	parseMetrics.Init()
	parseMetrics.MustRegister(registry)
	storeMetrics := keystore.NewMetrics(a.cfg.Metrics.Namespace)
	storeMetrics.MustRegister(registry)

	store := keystore.NewStore(
		keystore.WithLogger(a.logger),
		keystore.WithMetrics(storeMetrics),
		keystore.WithParseMetrics(parseMetrics),
		keystore.WithTracer(tracer.Tracer()),
	)

	var watcher *keystore.Watcher
	if a.cfg.KeySet.Watch {
		watcher, err = keystore.NewWatcher(a.cfg.KeySet.Path, store,
			keystore.WithWatcherLogger(a.logger),
			keystore.WithDebounceDelay(a.cfg.KeySet.Debounce.Duration()),
		)
		if err != nil {
			return abort(err)
		}
		if err := watcher.Start(ctx); err != nil {
			_ = watcher.Stop()
			return abort(err)
		}
	} else if _, err := store.LoadFile(ctx, a.cfg.KeySet.Path); err != nil {
		return abort(err)
	}

	var server *http.Server
	serverErr := make(chan error, 1)
	if a.cfg.Metrics.Enabled {
		server, err = startMetricsServer(a.cfg.Metrics, registry, store, a.logger, serverErr)
		if err != nil {
			if watcher != nil {
				_ = watcher.Stop()
			}
			return abort(err)
		}
	}

	select {
	case <-ctx.Done():
		a.logger.Info("received shutdown signal")
	case err = <-serverErr:
		a.logger.Error("metrics server error", observability.Error(err))
	}

	shutdown(a.cfg, watcher, server, tracer, a.logger)
	return err
}

// initTracer initializes the tracer.
func initTracer(cfg *config.Config) (*observability.Tracer, error) {
	return observability.NewTracer(observability.TracerConfig{
		ServiceName:  cfg.Tracing.ServiceName,
		OTLPEndpoint: cfg.Tracing.OTLPEndpoint,
		SamplingRate: cfg.Tracing.SamplingRate,
		Enabled:      cfg.Tracing.Enabled,
	})
}

// newRegistry returns a registry with the Go runtime and process collectors.
func newRegistry(namespace string) *prometheus.Registry {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{Namespace: namespace}),
	)
	return registry
}

// newMetricsHandler serves the registry and the health endpoints.
func newMetricsHandler(cfg config.MetricsConfig, registry *prometheus.Registry, store *keystore.Store) http.Handler {
	checker := health.NewChecker(version)
	checker.RegisterCheck("keyset", health.KeySetCheck(store.Current))

	mux := http.NewServeMux()
	mux.Handle(cfg.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
	mux.HandleFunc("/health", checker.HealthHandler())
	mux.HandleFunc("/ready", checker.ReadinessHandler())
	mux.HandleFunc("/live", checker.LivenessHandler())
	return mux
}

// startMetricsServer binds the metrics address and serves in the background.
func startMetricsServer(
	cfg config.MetricsConfig,
	registry *prometheus.Registry,
	store *keystore.Store,
	logger observability.Logger,
	errCh chan<- error,
) (*http.Server, error) {
	listener, err := net.Listen("tcp", cfg.Address)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", cfg.Address, err)
	}

	server := &http.Server{
		Handler:           newMetricsHandler(cfg, registry, store),
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      10 * time.Second,
	}

	logger.Info("starting metrics server",
		observability.String("address", listener.Addr().String()),
		observability.String("metrics_path", cfg.Path),
	)

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	return server, nil
}

// shutdown stops the watcher, the metrics server and the tracer.
func shutdown(
	cfg *config.Config,
	watcher *keystore.Watcher,
	server *http.Server,
	tracer *observability.Tracer,
	logger observability.Logger,
) {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Metrics.ShutdownTimeout.Duration())
	defer cancel()

	if watcher != nil {
		if err := watcher.Stop(); err != nil {
			logger.Error("failed to stop key set watcher", observability.Error(err))
		}
	}

	if server != nil {
		logger.Info("stopping metrics server")
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to stop metrics server gracefully", observability.Error(err))
		}
	}

	if err := tracer.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown tracer", observability.Error(err))
	}

	logger.Info("jwkset stopped")
}
