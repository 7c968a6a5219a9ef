package appeal

import (
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	savedCounter  metric.Int64Counter
	saveHistogram metric.Float64Histogram
	errorCounter  metric.Int64Counter
)

// InitMetrics registers the appeal instruments. Call it once at startup.
func InitMetrics() error {
	meter := otel.Meter("appeal")

	var err error

	savedCounter, err = meter.Int64Counter("appeal.saved.total",
		metric.WithDescription("Total number of appeals written to disk"),
		metric.WithUnit("{appeal}"),
	)
	if err != nil {
		return fmt.Errorf("creating saved counter: %w", err)
	}

	saveHistogram, err = meter.Float64Histogram("appeal.save.duration",
		metric.WithDescription("Time spent writing one appeal file in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(0.1, 0.5, 1, 5, 10, 50, 100),
	)
	if err != nil {
		return fmt.Errorf("creating save histogram: %w", err)
	}

	errorCounter, err = meter.Int64Counter("appeal.errors.total",
		metric.WithDescription("Total number of rejected or failed appeal requests"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return fmt.Errorf("creating error counter: %w", err)
	}

	return nil
}
