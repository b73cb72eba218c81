package recorder

import (
	"runtime"
	"runtime/metrics"
	"sync"
	"time"
)

// ResourceUsage is a snapshot of process resources reported by the status
// endpoint.
type ResourceUsage struct {
	CPUPercent float64 `json:"cpu_percent"`
	HeapBytes  uint64  `json:"heap_bytes"`
	Goroutines int     `json:"goroutines"`
	GCCycles   uint64  `json:"gc_cycles"`
}

const (
	metricCPU        = "/cpu/classes/total:cpu-seconds"
	metricHeap       = "/memory/classes/heap/objects:bytes"
	metricGoroutines = "/sched/goroutines:goroutines"
	metricGCCycles   = "/gc/cycles/total:gc-cycles"
)

// usageSampler turns cumulative CPU time into a percentage between two
// calls. The first call reports 0%.
type usageSampler struct {
	mu      sync.Mutex
	samples []metrics.Sample
	prevCPU float64
	prevAt  time.Time
	cpus    float64
}

func newUsageSampler() *usageSampler {
	return &usageSampler{
		samples: []metrics.Sample{
			{Name: metricCPU},
			{Name: metricHeap},
			{Name: metricGoroutines},
			{Name: metricGCCycles},
		},
		cpus: float64(runtime.GOMAXPROCS(0)),
	}
}

// Sample reads the runtime metrics once.
func (s *usageSampler) Sample() ResourceUsage {
	if s == nil {
		return ResourceUsage{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	metrics.Read(s.samples)
	now := time.Now()

	usage := ResourceUsage{
		HeapBytes:  uint64Of(s.samples[1].Value),
		Goroutines: int(uint64Of(s.samples[2].Value)),
		GCCycles:   uint64Of(s.samples[3].Value),
	}
	if usage.Goroutines == 0 {
		usage.Goroutines = runtime.NumGoroutine()
	}

	cpu := s.samples[0].Value
	if cpu.Kind() != metrics.KindFloat64 {
		return usage
	}
	seconds := cpu.Float64()
	if !s.prevAt.IsZero() {
		if wall := now.Sub(s.prevAt).Seconds(); wall > 0 && s.cpus > 0 {
			usage.CPUPercent = (seconds - s.prevCPU) / wall / s.cpus * 100
		}
	}
	s.prevCPU, s.prevAt = seconds, now
	return usage
}

func uint64Of(v metrics.Value) uint64 {
	if v.Kind() == metrics.KindUint64 {
		return v.Uint64()
	}
	return 0
}
