package telemetry

import (
	"context"
	"runtime"
)

const bytesPerMegabyte = 1 << 20

// readMemStats is swapped in tests.
var readMemStats = runtime.ReadMemStats

// SampleMemory reads the memory the Go runtime has obtained from the OS and
// records it as MemoryUsage.
func (s System) SampleMemory(ctx context.Context) {
	var ms runtime.MemStats
	readMemStats(&ms)
	s.MemoryUsage(ctx, float64(ms.Sys)/bytesPerMegabyte)
}
