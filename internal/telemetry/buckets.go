package telemetry

// LatencyBucketsMilliseconds defines histogram buckets for millisecond metrics
// recorded by the OpenTelemetry backend.
var LatencyBucketsMilliseconds = []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}

// LatencyBucketsSeconds is LatencyBucketsMilliseconds for second metrics.
var LatencyBucketsSeconds = []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}
