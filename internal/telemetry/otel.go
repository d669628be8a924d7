package telemetry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ErrNegativeCounter is returned when a Count submission would decrease an
// OpenTelemetry counter.
var ErrNegativeCounter = errors.New("telemetry: counter value must not be negative")

type instrumentKind int

const (
	kindCounter instrumentKind = iota
	kindHistogram
	kindGauge
)

func kindFor(u Unit) instrumentKind {
	switch u {
	case UnitCount:
		return kindCounter
	case UnitMilliseconds, UnitSeconds:
		return kindHistogram
	default:
		return kindGauge
	}
}

// OTelSubmitter records submissions on OpenTelemetry instruments. Count
// metrics become counters, time metrics histograms and everything else
// gauges. Instruments are created on first use and cached.
type OTelSubmitter struct {
	meter       metric.Meter
	mu          sync.Mutex
	instruments *cache.Cache
}

var _ Submitter = (*OTelSubmitter)(nil)

// NewOTelSubmitter returns a submitter that records on instruments from meter.
func NewOTelSubmitter(meter metric.Meter) *OTelSubmitter {
	return &OTelSubmitter{
		meter:       meter,
		instruments: cache.New(cache.NoExpiration, 0),
	}
}

// Submit records s. The submission timestamp is ignored; OpenTelemetry
// stamps data points at collection time.
func (o *OTelSubmitter) Submit(ctx context.Context, namespace string, s Submission) error {
	attrs := make([]attribute.KeyValue, 0, len(s.Dimensions))
	for _, d := range s.Dimensions {
		attrs = append(attrs, attribute.String(d.Name, d.Value))
	}
	opt := metric.WithAttributes(attrs...)

	kind := kindFor(s.Unit)
	if kind == kindCounter && s.Value < 0 {
		return fmt.Errorf("%w: %s=%v", ErrNegativeCounter, s.Name, s.Value)
	}

	inst, err := o.instrument(instrumentName(namespace, s.Name), s.Unit, kind)
	if err != nil {
		return fmt.Errorf("telemetry: create instrument %s: %w", s.Name, err)
	}
	switch i := inst.(type) {
	case metric.Float64Counter:
		i.Add(ctx, s.Value, opt)
	case metric.Float64Histogram:
		i.Record(ctx, s.Value, opt)
	case metric.Float64Gauge:
		i.Record(ctx, s.Value, opt)
	}
	return nil
}

func (o *OTelSubmitter) instrument(name string, unit Unit, kind instrumentKind) (any, error) {
	key := fmt.Sprintf("%s|%d", name, kind)

	o.mu.Lock()
	defer o.mu.Unlock()

	if inst, ok := o.instruments.Get(key); ok {
		return inst, nil
	}

	var (
		inst any
		err  error
	)
	switch kind {
	case kindCounter:
		inst, err = o.meter.Float64Counter(name, metric.WithUnit(otelUnit(unit)))
	case kindHistogram:
		buckets := LatencyBucketsMilliseconds
		if unit == UnitSeconds {
			buckets = LatencyBucketsSeconds
		}
		inst, err = o.meter.Float64Histogram(name, metric.WithUnit(otelUnit(unit)), metric.WithExplicitBucketBoundaries(buckets...))
	default:
		inst, err = o.meter.Float64Gauge(name, metric.WithUnit(otelUnit(unit)))
	}
	if err != nil {
		return nil, err
	}
	o.instruments.Set(key, inst, cache.NoExpiration)
	return inst, nil
}

func otelUnit(u Unit) string {
	switch u {
	case UnitMilliseconds:
		return "ms"
	case UnitSeconds:
		return "s"
	case UnitMegabytes:
		return "MBy"
	case UnitBytes:
		return "By"
	case UnitPercent:
		return "%"
	case UnitCount:
		return "{count}"
	default:
		return ""
	}
}

// instrumentName turns ("SkillScout", "APILatency") into
// "skillscout_api_latency".
func instrumentName(namespace, name string) string {
	ns := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return '_'
	}, namespace)
	if ns == "" {
		return snakeCase(name)
	}
	return ns + "_" + snakeCase(name)
}

func snakeCase(s string) string {
	runes := []rune(s)
	var b strings.Builder
	b.Grow(len(runes) + 4)
	for i, r := range runes {
		switch {
		case unicode.IsUpper(r):
			if i > 0 {
				prev := runes[i-1]
				nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && nextLower) {
					b.WriteByte('_')
				}
			}
			b.WriteRune(unicode.ToLower(r))
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		default:
			b.WriteByte('_')
		}
	}
	return b.String()
}
