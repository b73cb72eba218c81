package runtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/drblury/netflight/gateway"
	"github.com/drblury/netflight/internal/config"
	nferrors "github.com/drblury/netflight/internal/errors"
	"github.com/drblury/netflight/internal/logging"
	"github.com/drblury/netflight/recorder"
)

// DefaultStatusPort is used when the status endpoint is enabled without a
// port.
const DefaultStatusPort = 8081

// ShutdownTimeout bounds how long Start waits for the HTTP servers to drain.
const ShutdownTimeout = 5 * time.Second

// ServiceDependencies holds the optional collaborators the Service can use.
// Leave fields nil for the process defaults.
type ServiceDependencies struct {
	// Locator receives the recorder binding. Nil binds the process locator
	// and marks the process booted.
	Locator *gateway.Locator
	// Sinks are added to the recorder after the configured ones. The service
	// closes them on shutdown and leaves them untouched when creation fails.
	Sinks []recorder.Sink
	// Gatherer is served on the metrics endpoint. Nil serves the default
	// Prometheus registry.
	Gatherer prometheus.Gatherer
}

// Service binds a recorder built from Conf and serves its endpoints.
type Service struct {
	Conf   *config.Config
	Logger logging.ServiceLogger

	recorder *recorder.Recorder
	locator  *gateway.Locator
	server   *recorder.Server
}

// NewService is TryNewService that panics on error.
func NewService(conf *config.Config, log logging.ServiceLogger, ctx context.Context, deps ServiceDependencies) *Service {
	s, err := TryNewService(conf, log, ctx, deps)
	if err != nil {
		panic(err)
	}
	return s
}

// TryNewService validates conf, builds the recorder and binds it.
func TryNewService(conf *config.Config, log logging.ServiceLogger, ctx context.Context, deps ServiceDependencies) (*Service, error) {
	if conf == nil {
		return nil, nferrors.ErrConfigRequired
	}
	if log == nil {
		log = logging.NewDiscardServiceLogger()
	}
	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log.Info("Creating netflight service", logging.LogFields{
		"sink":   conf.SinkSystem,
		"events": conf.Events,
		"config": conf,
	})
	gateway.SetLogger(log)
	wmLogger := logging.NewWatermillAdapter(log)

	rec, err := recorder.NewFromConfig(ctx, conf, wmLogger)
	if err != nil {
		return nil, err
	}
	locator := deps.Locator
	if locator == nil {
		locator = gateway.Default()
	}
	if err := locator.Install(gateway.NewBinding(rec.Name(), rec)); err != nil {
		_ = rec.Close()
		return nil, err
	}
	// deps sinks belong to the service only once it is bound
	for _, sk := range deps.Sinks {
		rec.AddSink(sk)
	}
	if deps.Locator == nil {
		gateway.Boot(conf)
	}

	s := &Service{
		Conf:     conf,
		Logger:   log,
		recorder: rec,
		locator:  locator,
		server:   recorder.NewServer(wmLogger),
	}
	s.registerEndpoints(deps.Gatherer)
	return s, nil
}

func (s *Service) registerEndpoints(gatherer prometheus.Gatherer) {
	if s.Conf.StatusEnabled {
		port := s.Conf.StatusPort
		if port == 0 {
			port = DefaultStatusPort
		}
		s.server.HandleStatus(port, recorder.NewStatusHandler(s.recorder, recorder.StatusOptions{
			AllowedOrigins: s.Conf.StatusCORSAllowedOrigins,
			Recent:         s.recorder.Recent(),
			SinkSystem:     s.Conf.SinkSystem,
			Logger:         logging.NewWatermillAdapter(s.Logger),
		}))
	}
	if s.Conf.MetricsEnabled && s.Conf.MetricsPort > 0 {
		s.server.HandleMetrics(s.Conf.MetricsPort, gatherer)
	}
}

// Recorder returns the bound recorder.
func (s *Service) Recorder() *recorder.Recorder { return s.recorder }

// Locator returns the locator the recorder is bound to.
func (s *Service) Locator() *gateway.Locator { return s.locator }

// RegisterHTTPHandler adds handler to the server started on port.
func (s *Service) RegisterHTTPHandler(port int, pattern string, handler http.Handler) {
	s.server.Handle(port, pattern, handler)
}

// Handler returns the mux registered for port, nil when there is none.
func (s *Service) Handler(port int) http.Handler { return s.server.Handler(port) }

// Start serves the registered endpoints until ctx is cancelled, then shuts
// them down and closes the recorder.
func (s *Service) Start(ctx context.Context) error {
	s.server.Start()
	<-ctx.Done()

	s.Logger.Info("Stopping netflight service", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()

	return errors.Join(
		s.server.Shutdown(shutdownCtx),
		s.recorder.Close(),
	)
}
