package recorder

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drblury/netflight/gateway"
	"github.com/drblury/netflight/internal/jsoncodec"
	"github.com/drblury/netflight/sink"
)

// KindCounters counts the events committed for one kind.
type KindCounters struct {
	Committed uint64 `json:"committed"`
	Failed    uint64 `json:"failed"`
	Bytes     uint64 `json:"bytes"`
}

// Counters is a snapshot of the recorder counters.
type Counters struct {
	Kinds          map[string]KindCounters `json:"kinds"`
	SinkFailures   uint64                  `json:"sink_failures"`
	CommitFailures uint64                  `json:"commit_failures"`
}

// Counters returns a snapshot of the per-kind and failure counters.
func (r *Recorder) Counters() Counters {
	c := Counters{
		Kinds:          make(map[string]KindCounters, len(r.states)),
		SinkFailures:   r.sinkFailures.Load(),
		CommitFailures: gateway.CommitFailures(),
	}
	for _, k := range gateway.Kinds() {
		st := &r.states[k]
		c.Kinds[k.String()] = KindCounters{
			Committed: st.committed.Load(),
			Failed:    st.failed.Load(),
			Bytes:     st.bytes.Load(),
		}
	}
	return c
}

// SettingStatus is the JSON form of a Setting.
type SettingStatus struct {
	Enabled   bool   `json:"enabled"`
	Threshold string `json:"threshold"`
}

// RecentEvent is the JSON form of a retained Record.
type RecentEvent struct {
	Kind     string         `json:"kind"`
	Time     time.Time      `json:"time"`
	Endpoint string         `json:"endpoint"`
	Data     map[string]any `json:"data"`
}

// Status is the document served by StatusHandler.
type Status struct {
	Provider  string                   `json:"provider"`
	Origin    time.Time                `json:"origin"`
	Settings  map[string]SettingStatus `json:"settings"`
	Counters  Counters                 `json:"counters"`
	Resources ResourceUsage            `json:"resources"`
	Sink      *sink.Capabilities       `json:"sink,omitempty"`
	Recent    []RecentEvent            `json:"recent,omitempty"`
}

// StatusOptions configures StatusHandler.
type StatusOptions struct {
	// AllowedOrigins lists CORS origins; "*" allows any.
	AllowedOrigins []string
	// Recent, when set, adds its retained events to the document.
	Recent *Memory
	// SinkSystem, when set, adds the registered capabilities of that sink.
	SinkSystem string
	Logger     watermill.LoggerAdapter
}

// StatusHandler serves the recorder status as JSON.
type StatusHandler struct {
	rec       *Recorder
	opts      StatusOptions
	resources *usageSampler
}

// NewStatusHandler creates a StatusHandler for rec.
func NewStatusHandler(rec *Recorder, opts StatusOptions) *StatusHandler {
	if opts.Logger == nil {
		opts.Logger = watermill.NopLogger{}
	}
	return &StatusHandler{rec: rec, opts: opts, resources: newUsageSampler()}
}

// Status builds the current status document.
func (h *StatusHandler) Status() Status {
	settings := h.rec.Settings()
	st := Status{
		Provider:  h.rec.Name(),
		Origin:    h.rec.Origin(),
		Settings:  make(map[string]SettingStatus, len(settings)),
		Counters:  h.rec.Counters(),
		Resources: h.resources.Sample(),
	}
	if h.opts.SinkSystem != "" {
		caps := sink.GetCapabilities(h.opts.SinkSystem)
		st.Sink = &caps
	}
	for k, s := range settings {
		st.Settings[k.String()] = SettingStatus{Enabled: s.Enabled, Threshold: s.Threshold.String()}
	}
	if h.opts.Recent != nil {
		for _, r := range h.opts.Recent.Records() {
			st.Recent = append(st.Recent, RecentEvent{
				Kind:     r.Kind.String(),
				Time:     r.Time,
				Endpoint: r.Endpoint(),
				Data:     r.Data(),
			})
		}
	}
	return st
}

func (h *StatusHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	if len(h.opts.AllowedOrigins) > 0 {
		if allowed := h.allowedOrigin(r.Header.Get("Origin")); allowed != "" {
			w.Header().Set("Access-Control-Allow-Origin", allowed)
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
	}

	switch r.Method {
	case http.MethodOptions:
		w.WriteHeader(http.StatusNoContent)
		return
	case http.MethodGet, http.MethodHead:
	default:
		w.Header().Set("Allow", "GET, HEAD, OPTIONS")
		http.Error(w, "Method Not Allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := jsoncodec.Encode(w, h.Status()); err != nil {
		h.opts.Logger.Error("Failed to encode status", err, nil)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (h *StatusHandler) allowedOrigin(requestOrigin string) string {
	for _, allowed := range h.opts.AllowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if strings.EqualFold(allowed, requestOrigin) {
			return requestOrigin
		}
	}
	return ""
}

// StatusPath and MetricsPath are the routes registered by Server.
const (
	StatusPath  = "/api/status"
	MetricsPath = "/metrics"
)

// Server groups HTTP handlers by port and serves them.
type Server struct {
	logger watermill.LoggerAdapter

	mu      sync.Mutex
	muxes   map[int]*http.ServeMux
	servers []*http.Server
}

// NewServer creates an empty Server.
func NewServer(logger watermill.LoggerAdapter) *Server {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Server{logger: logger, muxes: make(map[int]*http.ServeMux)}
}

// Handle registers handler for pattern on port.
func (s *Server) Handle(port int, pattern string, handler http.Handler) {
	s.mu.Lock()
	defer s.mu.Unlock()

	mux, ok := s.muxes[port]
	if !ok {
		mux = http.NewServeMux()
		s.muxes[port] = mux
	}
	mux.Handle(pattern, handler)
}

// Handler returns the mux serving port, nil when nothing is registered on it.
func (s *Server) Handler(port int) http.Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mux, ok := s.muxes[port]; ok {
		return mux
	}
	return nil
}

// HandleStatus registers the status handler on port.
func (s *Server) HandleStatus(port int, h *StatusHandler) {
	s.Handle(port, StatusPath, h)
}

// HandleMetrics registers the Prometheus handler for gatherer on port. A nil
// gatherer serves the default registry.
func (s *Server) HandleMetrics(port int, gatherer prometheus.Gatherer) {
	if gatherer == nil {
		s.Handle(port, MetricsPath, promhttp.Handler())
		return
	}
	s.Handle(port, MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
}

// Start serves every registered port in the background.
func (s *Server) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for port, mux := range s.muxes {
		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		s.servers = append(s.servers, srv)
		s.logger.Info("Starting HTTP server", watermill.LogFields{"address": srv.Addr})
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				s.logger.Error("Failed to start HTTP server", err, watermill.LogFields{"address": srv.Addr})
			}
		}()
	}
}

// Shutdown gracefully stops every started server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	servers := s.servers
	s.servers = nil
	s.mu.Unlock()

	var errs []error
	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
