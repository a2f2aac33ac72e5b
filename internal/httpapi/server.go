package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/signalsfoundry/relay-router/core"
	"github.com/signalsfoundry/relay-router/internal/logging"
	"github.com/signalsfoundry/relay-router/internal/observability"
	"github.com/signalsfoundry/relay-router/model"
)

// Server exposes route queries over a loaded network. The network is
// read-only from the server's point of view; concurrent queries are safe
// under the Network's own locking.
type Server struct {
	network   *core.Network
	log       logging.Logger
	collector *observability.RouterCollector
}

// NewServer wires the query surface. The collector may be nil, in which
// case no RED metrics are recorded.
func NewServer(network *core.Network, log logging.Logger, collector *observability.RouterCollector) *Server {
	if log == nil {
		log = logging.Noop()
	}
	return &Server{network: network, log: log, collector: collector}
}

// Handler returns the full route query surface with request-id, tracing,
// and metrics middleware applied per route.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/v1/route", s.instrument("/v1/route", http.HandlerFunc(s.handleRoute)))
	mux.Handle("/v1/satellites", s.instrument("/v1/satellites", http.HandlerFunc(s.handleSatellites)))
	mux.Handle("/healthz", s.instrument("/healthz", http.HandlerFunc(s.handleHealthz)))
	return mux
}

func (s *Server) instrument(route string, next http.Handler) http.Handler {
	h := TracingMiddleware(route, next)
	h = RequestIDMiddleware(h)
	if s.collector != nil {
		h = s.collector.Middleware(route, h)
	}
	return h
}

// routeResponse is the success payload of POST /v1/route.
type routeResponse struct {
	Path []string `json:"path"`
	Hops int      `json:"hops"`
}

// errorResponse carries a machine-readable reason alongside the message.
type errorResponse struct {
	Error  string `json:"error"`
	Reason string `json:"reason,omitempty"`
}

func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "POST required", "")
		return
	}

	var req model.RouteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error(), "bad_request")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), "bad_request")
		return
	}

	ctx := r.Context()
	log := s.log.With(logging.String("request_id", logging.RequestIDFromContext(ctx)))

	path, err := s.network.Route(req.Start, req.Finish)
	outcome := outcomeLabel(err)
	if s.collector != nil {
		s.collector.ObserveRouteComputation(outcome, len(path)-1)
	}
	if span := trace.SpanFromContext(ctx); span.SpanContext().IsValid() {
		span.SetAttributes(attribute.String("route.outcome", outcome))
	}

	if err != nil {
		var rnf *core.RouteNotFoundError
		if errors.As(err, &rnf) {
			log.Info(ctx, "route not found", logging.String("reason", outcome))
			writeError(w, http.StatusNotFound, rnf.Error(), outcome)
			return
		}
		log.Error(ctx, "route computation failed", logging.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "internal error", "")
		return
	}

	log.Info(ctx, "route computed", logging.Int("hops", len(path)-1))
	writeJSON(w, http.StatusOK, routeResponse{Path: core.PathIDs(path), Hops: len(path) - 1})
}

// satelliteInfo is one entry of GET /v1/satellites.
type satelliteInfo struct {
	ID         string                   `json:"id"`
	Coordinate model.GeodeticCoordinate `json:"coordinate"`
	Neighbors  []string                 `json:"neighbors"`
}

func (s *Server) handleSatellites(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "GET required", "")
		return
	}

	sats := s.network.Satellites()
	out := make([]satelliteInfo, 0, len(sats))
	for _, sat := range sats {
		out = append(out, satelliteInfo{
			ID:         sat.ID,
			Coordinate: sat.Coordinate,
			Neighbors:  sat.Neighbors(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// outcomeLabel maps a Route result to the metrics outcome label.
func outcomeLabel(err error) string {
	if err == nil {
		return "success"
	}
	var rnf *core.RouteNotFoundError
	if errors.As(err, &rnf) {
		switch rnf.Reason {
		case core.StartUnreachable:
			return "start_unreachable"
		case core.FinishUnreachable:
			return "finish_unreachable"
		default:
			return "no_path"
		}
	}
	return "error"
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, msg, reason string) {
	writeJSON(w, status, errorResponse{Error: msg, Reason: reason})
}
