package netio_test

import (
	"testing"

	"github.com/drblury/netflight/internal/overhead"
)

func BenchmarkWriteOverhead(b *testing.B) {
	payload := make([]byte, 64)
	for _, s := range overhead.Scenarios() {
		b.Run(s.Name, overhead.Benchmark(s, payload))
	}
}
