// Package fanout runs independent delayed squaring units concurrently and
// compares the joined wall-clock time with the sequential sum of the delays.
package fanout

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

var tracer = otel.Tracer("fanout")

var (
	ErrEmptyInput     = errors.New("numbers and delays must contain at least one element")
	ErrLengthMismatch = errors.New("numbers and delays must have the same length")
	ErrInvalidDelay   = errors.New("delay must be a finite non-negative number of seconds")
	ErrTooManyUnits   = errors.New("too many units in one request")
	ErrSquareOverflow = errors.New("square is not representable as a finite number")
	ErrUnitTimeout    = errors.New("unit exceeded its time budget")
)

// maxDelaySeconds is the largest delay that still fits in a time.Duration.
var maxDelaySeconds = float64(math.MaxInt64) / float64(time.Second)

// Options bounds a single Run. Zero values disable the corresponding limit.
type Options struct {
	// MaxUnits rejects requests with more pairs than this.
	MaxUnits int
	// MaxDelay rejects any delay longer than this.
	MaxDelay time.Duration
	// Parallelism caps the goroutines running units at once.
	Parallelism int
	// UnitTimeout is the deadline for one unit, delay included.
	UnitTimeout time.Duration
}

// Unit is the measured result of one (number, delay) pair.
type Unit struct {
	Number  float64
	Square  float64
	Delay   float64
	Elapsed time.Duration
}

// Outcome is the joined result of a Run. Durations are raw measurements.
type Outcome struct {
	Units []Unit
	Total time.Duration
	// SequentialSeconds is sum(delays): what one-at-a-time execution would take.
	SequentialSeconds float64
}

// ParallelFaster reports whether the concurrent run beat the sequential sum.
// It compares unrounded values.
func (o Outcome) ParallelFaster() bool {
	return o.Total.Seconds() < o.SequentialSeconds
}

// Validate checks the inputs in the order a client sees the errors: empty
// sequences first, then the length mismatch, then each delay, then the size cap.
func Validate(numbers, delays []float64, opts Options) error {
	if len(numbers) == 0 || len(delays) == 0 {
		return ErrEmptyInput
	}
	if len(numbers) != len(delays) {
		return fmt.Errorf("%w: %d numbers, %d delays", ErrLengthMismatch, len(numbers), len(delays))
	}
	for i, d := range delays {
		if math.IsNaN(d) || d < 0 || d > maxDelaySeconds {
			return fmt.Errorf("%w: delays[%d]=%g", ErrInvalidDelay, i, d)
		}
		if opts.MaxDelay > 0 && d > opts.MaxDelay.Seconds() {
			return fmt.Errorf("%w: delays[%d]=%g exceeds %s", ErrInvalidDelay, i, d, opts.MaxDelay)
		}
	}
	if opts.MaxUnits > 0 && len(numbers) > opts.MaxUnits {
		return fmt.Errorf("%w: %d > %d", ErrTooManyUnits, len(numbers), opts.MaxUnits)
	}
	return nil
}

// Run starts one goroutine per pair, waits for all of them and returns the
// units in input order. The first failing unit cancels its siblings and its
// error is returned; no partial outcome is ever produced.
func Run(ctx context.Context, numbers, delays []float64, opts Options) (Outcome, error) {
	if err := Validate(numbers, delays, opts); err != nil {
		return Outcome{}, err
	}

	units := make([]Unit, len(numbers))

	g, gctx := errgroup.WithContext(ctx)
	if opts.Parallelism > 0 {
		g.SetLimit(opts.Parallelism)
	}

	start := time.Now()
	for i := range numbers {
		g.Go(func() error {
			u, err := runUnit(gctx, i, numbers[i], delays[i], opts.UnitTimeout)
			if err != nil {
				return err
			}
			units[i] = u
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return Outcome{}, err
	}
	total := time.Since(start)

	var sequential float64
	for _, d := range delays {
		sequential += d
	}

	return Outcome{
		Units:             units,
		Total:             total,
		SequentialSeconds: sequential,
	}, nil
}

func runUnit(ctx context.Context, index int, number, delay float64, timeout time.Duration) (Unit, error) {
	ctx, span := tracer.Start(ctx, "fanout.unit",
		trace.WithAttributes(
			attribute.Int("fanout.unit.index", index),
			attribute.Float64("fanout.unit.number", number),
			attribute.Float64("fanout.unit.delay", delay),
		),
	)
	defer span.End()

	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeoutCause(ctx, timeout, ErrUnitTimeout)
		defer cancel()
	}

	start := time.Now()

	if err := sleep(ctx, Seconds(delay)); err != nil {
		err = fmt.Errorf("unit %d: %w", index, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "unit aborted")
		return Unit{}, err
	}

	square := number * number
	elapsed := time.Since(start)

	if math.IsInf(square, 0) || math.IsNaN(square) {
		err := fmt.Errorf("unit %d: %w: %g", index, ErrSquareOverflow, number)
		span.RecordError(err)
		span.SetStatus(codes.Error, "square overflow")
		return Unit{}, err
	}

	span.SetAttributes(attribute.Float64("fanout.unit.elapsed_seconds", elapsed.Seconds()))
	span.SetStatus(codes.Ok, "")

	return Unit{
		Number:  number,
		Square:  square,
		Delay:   delay,
		Elapsed: elapsed,
	}, nil
}

// sleep waits for d without holding anything but a timer, returning the
// context's cause if it ends first.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return context.Cause(ctx)
	}
}

// Seconds converts a delay in seconds to a time.Duration.
func Seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// Round2 rounds a duration to two decimal places of a second for display.
func Round2(d time.Duration) float64 {
	return math.Round(d.Seconds()*100) / 100
}
