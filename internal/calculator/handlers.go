package calculator

import (
	"context"
	"errors"
	"net/http"

	"fanout-api/internal/fanout"
	"fanout-api/internal/handlers"
	"fanout-api/internal/observability"
	"fanout-api/internal/validation"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const opName = "calculate"

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

var validate = validation.New()

// Handler serves POST /calculate/ with fixed fan-out limits.
type Handler struct {
	opts fanout.Options
}

func NewHandler(opts fanout.Options) *Handler {
	return &Handler{opts: opts}
}

// Calculate handles POST /calculate/: every (number, delay) pair runs as its
// own unit and the joined time is compared with sum(delays).
func (h *Handler) Calculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	// --- 1. Parent span; one child span per unit is started by fanout ---
	ctx, span := tracer.Start(ctx, "calculator.calculate",
		trace.WithAttributes(
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	// --- 2. Decode and validate the schema ---
	var req CalculateRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		h.fail(ctx, span, logger, err, w)
		return
	}
	if err := validation.Struct(validate, req); err != nil {
		h.fail(ctx, span, logger, err, w)
		return
	}

	span.SetAttributes(attribute.Int("calculator.units", len(req.Numbers)))

	// --- 3. Fan out and join ---
	outcome, err := fanout.Run(ctx, values(req.Numbers), values(req.Delays), h.opts)
	if err != nil {
		h.fail(ctx, span, logger, err, w)
		return
	}

	resp := newResponse(outcome)

	// --- 4. Metrics, span, log ---
	attrs := metric.WithAttributes(attribute.Bool("parallel_faster", resp.ParallelFasterThanSequential))
	requestCounter.Add(ctx, 1, attrs)
	unitsHistogram.Record(ctx, int64(len(outcome.Units)), attrs)
	durationHistogram.Record(ctx, outcome.Total.Seconds(), attrs)
	if outcome.Total > 0 {
		speedupGauge.Record(ctx, outcome.SequentialSeconds/outcome.Total.Seconds())
	}

	span.AddEvent("fanout.complete", trace.WithAttributes(
		attribute.Float64("total_seconds", outcome.Total.Seconds()),
		attribute.Float64("sequential_seconds", outcome.SequentialSeconds),
	))
	span.SetAttributes(attribute.Bool("calculator.parallel_faster", resp.ParallelFasterThanSequential))
	span.SetStatus(codes.Ok, "")

	logger.Info("calculate completed",
		zap.Int("units", len(outcome.Units)),
		zap.Duration("total", outcome.Total),
		zap.Float64("sequential_seconds", outcome.SequentialSeconds),
		zap.Bool("parallel_faster", resp.ParallelFasterThanSequential),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, resp)
}

// newResponse renders the payload. The boolean comes from the raw outcome,
// only the displayed times are rounded.
func newResponse(o fanout.Outcome) CalculateResponse {
	results := make([]ResultItem, len(o.Units))
	for i, u := range o.Units {
		results[i] = ResultItem{
			Number: u.Number,
			Square: u.Square,
			Delay:  u.Delay,
			Time:   fanout.Round2(u.Elapsed),
		}
	}

	return CalculateResponse{
		Results:                      results,
		TotalTime:                    fanout.Round2(o.Total),
		ParallelFasterThanSequential: o.ParallelFaster(),
	}
}

// fail maps an error to its status and records it.
func (h *Handler) fail(ctx context.Context, span trace.Span, logger *zap.Logger, err error, w http.ResponseWriter) {
	var schemaErr *validation.SchemaError
	if errors.As(err, &schemaErr) {
		observability.RecordValidationError(ctx, span, logger, errorCounter, opName, err, schemaErr.Violations, w)
		return
	}

	status, msg := classify(err)
	if status == http.StatusUnprocessableEntity {
		observability.RecordValidationError(ctx, span, logger, errorCounter, opName, err,
			[]validation.Violation{{Field: "body", Message: msg}}, w)
		return
	}
	observability.RecordError(ctx, span, logger, errorCounter, opName, msg, err, status, w)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, validation.ErrMalformedBody):
		return http.StatusBadRequest, "invalid request body"
	case errors.Is(err, fanout.ErrLengthMismatch):
		return http.StatusBadRequest, fanout.ErrLengthMismatch.Error()
	case errors.Is(err, fanout.ErrEmptyInput),
		errors.Is(err, fanout.ErrInvalidDelay),
		errors.Is(err, fanout.ErrTooManyUnits),
		errors.Is(err, fanout.ErrSquareOverflow):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, fanout.ErrUnitTimeout):
		return http.StatusGatewayTimeout, fanout.ErrUnitTimeout.Error()
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "request cancelled"
	default:
		return http.StatusInternalServerError, "calculation failed"
	}
}
