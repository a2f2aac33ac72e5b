package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/signalsfoundry/relay-router/core"
	"github.com/signalsfoundry/relay-router/internal/httpapi"
	"github.com/signalsfoundry/relay-router/internal/logging"
	"github.com/signalsfoundry/relay-router/internal/observability"
	"github.com/signalsfoundry/relay-router/timectrl"
)

func main() {
	listenAddr := flag.String("listen", ":8080", "TCP address the query API listens on")
	metricsAddr := flag.String("metrics-addr", ":9090", "HTTP address for Prometheus /metrics")
	input := flag.String("input", "", "constellation file to load at startup")
	tleAt := flag.String("tle-at", "", "RFC 3339 instant at which TLE records are evaluated (default: now)")
	flag.Parse()

	log := logging.NewFromEnv()
	ctx := context.Background()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfigFromEnv(), log)
	if err != nil {
		log.Error(ctx, "failed to initialise tracing", logging.String("error", err.Error()))
		os.Exit(1)
	}
	defer observability.ShutdownWithTimeout(context.Background(), shutdownTracing, log)

	collector, err := observability.NewRouterCollector(nil)
	if err != nil {
		log.Error(ctx, "failed to initialise metrics collector", logging.String("error", err.Error()))
		os.Exit(1)
	}

	net := core.NewNetwork(core.WithMetricsRecorder(collector))
	net.Subscribe(func(e core.Event) {
		log.Debug(ctx, "satellite connected",
			logging.String("id", e.Satellite),
			logging.Int("neighbours", len(e.Neighbours)),
		)
	})

	if err := loadConstellation(net, *input, *tleAt); err != nil {
		log.Error(ctx, "failed to load constellation", logging.String("error", err.Error()))
		os.Exit(1)
	}
	log.Info(ctx, "constellation loaded", logging.Int("satellites", net.Len()))

	metricsSrv := serveMetrics(ctx, *metricsAddr, collector, log)

	api := httpapi.NewServer(net, log, collector)
	apiSrv := &http.Server{
		Addr:    *listenAddr,
		Handler: api.Handler(),
	}

	log.Info(ctx, "starting route query API", logging.String("addr", *listenAddr))
	go func() {
		if err := apiSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error(ctx, "query API exited", logging.String("error", err.Error()))
		}
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	<-stopCtx.Done()

	log.Info(ctx, "shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = apiSrv.Shutdown(shutdownCtx)
	if metricsSrv != nil {
		_ = metricsSrv.Shutdown(shutdownCtx)
	}
}

func loadConstellation(net *core.Network, path, tleAt string) error {
	if path == "" {
		return fmt.Errorf("-input is required")
	}

	clock, err := timectrl.ParseInstant(tleAt)
	if err != nil {
		return fmt.Errorf("invalid -tle-at value %q: %w", tleAt, err)
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open constellation %q: %w", path, err)
	}
	defer f.Close()

	if _, err := core.LoadConstellation(net, f, clock.Now()); err != nil {
		return err
	}
	return nil
}

func serveMetrics(ctx context.Context, addr string, collector *observability.RouterCollector, log logging.Logger) *http.Server {
	if collector == nil {
		return nil
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", collector.Handler())

	srv := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Warn(ctx, "metrics server exited", logging.String("error", err.Error()))
		}
	}()

	log.Info(ctx, "serving Prometheus metrics", logging.String("addr", addr))
	return srv
}
