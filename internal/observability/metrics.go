package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterCollector bundles the Prometheus metrics for the relay router and
// provides helpers to wire them into HTTP handlers. It also satisfies
// core.MetricsRecorder so the Network can drive the constellation gauges
// directly from its mutators.
type RouterCollector struct {
	gatherer prometheus.Gatherer

	HTTPRequests  *prometheus.CounterVec
	HTTPDurations *prometheus.HistogramVec

	RouteComputations *prometheus.CounterVec
	RouteHops         prometheus.Histogram

	ConstellationSatellites prometheus.Gauge
	ConstellationLinks      prometheus.Gauge
}

// NewRouterCollector registers the router metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewRouterCollector(reg prometheus.Registerer) (*RouterCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	requests, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "router_requests_total",
		Help: "Total number of handled HTTP requests, labeled by route, method, and status code.",
	}, []string{"route", "method", "code"}), "router_requests_total")
	if err != nil {
		return nil, err
	}

	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "router_request_duration_seconds",
		Help:    "HTTP request latency in seconds.",
		Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"route", "method"}), "router_request_duration_seconds")
	if err != nil {
		return nil, err
	}

	computations, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "route_computations_total",
		Help: "Route computations by outcome: success, start_unreachable, finish_unreachable, no_path.",
	}, []string{"outcome"}), "route_computations_total")
	if err != nil {
		return nil, err
	}

	hops := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "route_hops",
		Help:    "Hop count of successfully computed routes.",
		Buckets: prometheus.LinearBuckets(0, 1, 12),
	})
	if err := reg.Register(hops); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			hops = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}

	satellites, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "constellation_satellites",
		Help: "Current number of satellites in the network.",
	}), "constellation_satellites")
	if err != nil {
		return nil, err
	}
	links, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "constellation_links",
		Help: "Current number of undirected visibility edges in the network.",
	}), "constellation_links")
	if err != nil {
		return nil, err
	}

	return &RouterCollector{
		gatherer:                gatherer,
		HTTPRequests:            requests,
		HTTPDurations:           durations,
		RouteComputations:       computations,
		RouteHops:               hops,
		ConstellationSatellites: satellites,
		ConstellationLinks:      links,
	}, nil
}

// SetConstellationCounts satisfies core.MetricsRecorder.
func (c *RouterCollector) SetConstellationCounts(satellites, links int) {
	if c == nil {
		return
	}
	c.ConstellationSatellites.Set(float64(satellites))
	c.ConstellationLinks.Set(float64(links))
}

// ObserveRouteComputation records the outcome of one Route call. Hops are
// only meaningful on success and are ignored otherwise.
func (c *RouterCollector) ObserveRouteComputation(outcome string, hops int) {
	if c == nil {
		return
	}
	c.RouteComputations.WithLabelValues(outcome).Inc()
	if outcome == "success" {
		c.RouteHops.Observe(float64(hops))
	}
}

// Middleware records request counts and durations for an HTTP route. The
// route label is fixed per handler so cardinality stays bounded.
func (c *RouterCollector) Middleware(route string, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c == nil {
			next.ServeHTTP(w, r)
			return
		}
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		c.HTTPRequests.WithLabelValues(route, r.Method, strconv.Itoa(sw.status)).Inc()
		c.HTTPDurations.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}

// Handler exposes a ready-to-use /metrics handler.
func (c *RouterCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}
