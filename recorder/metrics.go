package recorder

import (
	"errors"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is a sink exporting committed events as Prometheus collectors.
type Metrics struct {
	mu sync.Mutex

	eventsTotal *prometheus.CounterVec
	bytesTotal  *prometheus.CounterVec
	errorsTotal *prometheus.CounterVec
	duration    *prometheus.HistogramVec

	registerer prometheus.Registerer
	registered bool
}

// DurationBuckets are the histogram buckets in seconds, from 10µs to 10s.
var DurationBuckets = prometheus.ExponentialBuckets(0.00001, 4, 10)

func newCounterVec(name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "netflight",
			Subsystem: "io",
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

// NewMetrics creates the collectors. A nil registerer uses
// prometheus.DefaultRegisterer.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	if registerer == nil {
		registerer = prometheus.DefaultRegisterer
	}
	return &Metrics{
		registerer:  registerer,
		eventsTotal: newCounterVec("events_total", "Committed network events", []string{"kind"}),
		bytesTotal:  newCounterVec("bytes_total", "Bytes transferred by committed network events", []string{"kind"}),
		errorsTotal: newCounterVec("errors_total", "Committed network events that failed", []string{"kind"}),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "netflight",
				Subsystem: "io",
				Name:      "duration_seconds",
				Help:      "Duration of committed network operations",
				Buckets:   DurationBuckets,
			},
			[]string{"kind"},
		),
	}
}

// Register registers the collectors. Safe to call multiple times; collectors
// already registered by another Metrics are reused.
func (m *Metrics) Register() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registered {
		return nil
	}

	var err error
	if m.eventsTotal, err = register(m.registerer, m.eventsTotal); err != nil {
		return err
	}
	if m.bytesTotal, err = register(m.registerer, m.bytesTotal); err != nil {
		return err
	}
	if m.errorsTotal, err = register(m.registerer, m.errorsTotal); err != nil {
		return err
	}
	if m.duration, err = register(m.registerer, m.duration); err != nil {
		return err
	}

	m.registered = true
	return nil
}

func register[T prometheus.Collector](reg prometheus.Registerer, c T) (T, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(T); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Record implements Sink.
func (m *Metrics) Record(r Record) error {
	kind := r.Kind.String()
	m.eventsTotal.WithLabelValues(kind).Inc()
	if r.Event.Failed() {
		m.errorsTotal.WithLabelValues(kind).Inc()
	}
	m.bytesTotal.WithLabelValues(kind).Add(float64(r.Event.Bytes))
	m.duration.WithLabelValues(kind).Observe(r.Duration().Seconds())
	return nil
}

// Reset clears every collector.
func (m *Metrics) Reset() {
	m.eventsTotal.Reset()
	m.bytesTotal.Reset()
	m.errorsTotal.Reset()
	m.duration.Reset()
}
