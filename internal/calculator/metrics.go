package calculator

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metric instruments — initialized once via InitMetrics().
var (
	requestCounter    metric.Int64Counter
	unitsHistogram    metric.Int64Histogram
	durationHistogram metric.Float64Histogram
	speedupGauge      metric.Float64Gauge
	errorCounter      metric.Int64Counter
)

// InitMetrics registers custom OTel metric instruments for the calculate endpoint.
// Call this once at startup (after observability.InitMetrics).
func InitMetrics() error {
	meter := otel.Meter("calculator")

	var err error

	requestCounter, err = meter.Int64Counter("calculator.requests.total",
		metric.WithDescription("Total number of completed calculate requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return fmt.Errorf("creating request counter: %w", err)
	}

	unitsHistogram, err = meter.Int64Histogram("calculator.units",
		metric.WithDescription("Number of concurrent units per calculate request"),
		metric.WithUnit("{unit}"),
		metric.WithExplicitBucketBoundaries(1, 2, 5, 10, 50, 100, 500, 1000),
	)
	if err != nil {
		return fmt.Errorf("creating units histogram: %w", err)
	}

	durationHistogram, err = meter.Float64Histogram("calculator.total.duration",
		metric.WithDescription("Wall-clock time of the joined fan-out in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30),
	)
	if err != nil {
		return fmt.Errorf("creating duration histogram: %w", err)
	}

	speedupGauge, err = meter.Float64Gauge("calculator.speedup",
		metric.WithDescription("Sequential time divided by concurrent time for the last request"),
		metric.WithUnit("1"),
	)
	if err != nil {
		return fmt.Errorf("creating speedup gauge: %w", err)
	}

	errorCounter, err = meter.Int64Counter("calculator.errors.total",
		metric.WithDescription("Total number of failed calculate requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	return nil
}
