package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestMiddlewareRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewRouterCollector(reg)
	if err != nil {
		t.Fatalf("NewRouterCollector: %v", err)
	}

	handler := collector.Middleware("/v1/route", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))

	req := httptest.NewRequest(http.MethodPost, "/v1/route", nil)
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)

	if got := testutil.ToFloat64(collector.HTTPRequests.WithLabelValues("/v1/route", "POST", "404")); got != 1 {
		t.Fatalf("router_requests_total = %v, want 1", got)
	}

	if count := histogramSampleCount(t, reg, "router_request_duration_seconds", map[string]string{
		"route":  "/v1/route",
		"method": "POST",
	}); count != 1 {
		t.Fatalf("router_request_duration_seconds sample_count = %d, want 1", count)
	}
}

func TestObserveRouteComputation(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewRouterCollector(reg)
	if err != nil {
		t.Fatalf("NewRouterCollector: %v", err)
	}

	collector.ObserveRouteComputation("success", 2)
	collector.ObserveRouteComputation("no_path", 0)

	if got := testutil.ToFloat64(collector.RouteComputations.WithLabelValues("success")); got != 1 {
		t.Fatalf("route_computations_total{outcome=success} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(collector.RouteComputations.WithLabelValues("no_path")); got != 1 {
		t.Fatalf("route_computations_total{outcome=no_path} = %v, want 1", got)
	}

	// Only successful computations contribute hop samples.
	if count := histogramSampleCount(t, reg, "route_hops", nil); count != 1 {
		t.Fatalf("route_hops sample_count = %d, want 1", count)
	}
}

func TestMetricsHandlerExposesConstellationGauges(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewRouterCollector(reg)
	if err != nil {
		t.Fatalf("NewRouterCollector: %v", err)
	}
	collector.SetConstellationCounts(7, 9)
	collector.ObserveRouteComputation("success", 1)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rr := httptest.NewRecorder()
	collector.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("/metrics status = %d, want 200", rr.Code)
	}
	body := rr.Body.String()
	for _, metric := range []string{
		"route_computations_total",
		"constellation_satellites",
		"constellation_links",
	} {
		if !strings.Contains(body, metric) {
			t.Fatalf("expected %q in /metrics output", metric)
		}
	}
	if !strings.Contains(body, "constellation_satellites 7") {
		t.Fatalf("/metrics output missing satellite gauge value: %s", body)
	}
	if !strings.Contains(body, "constellation_links 9") {
		t.Fatalf("/metrics output missing link gauge value: %s", body)
	}
}

func TestDuplicateRegistrationTolerated(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := NewRouterCollector(reg); err != nil {
		t.Fatalf("first NewRouterCollector: %v", err)
	}
	if _, err := NewRouterCollector(reg); err != nil {
		t.Fatalf("second NewRouterCollector on same registry: %v", err)
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
