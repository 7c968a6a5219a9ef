package appeal

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"fanout-api/internal/handlers"
	"fanout-api/internal/observability"
	"fanout-api/internal/validation"
)

var tracer = otel.Tracer("appeal")

// Handler validates appeals and hands them to a Store.
type Handler struct {
	store    Store
	validate *validator.Validate
}

func NewHandler(store Store) *Handler {
	return &Handler{store: store, validate: newValidator()}
}

// Task1 handles POST /appeal/task1
func (h *Handler) Task1(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, "task1", PrefixTask1, &Appeal{})
}

// Task2 handles POST /appeal/task2
func (h *Handler) Task2(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, "task2", PrefixTask2, &ReasonAppeal{})
}

// Task3 handles POST /appeal/task3
func (h *Handler) Task3(w http.ResponseWriter, r *http.Request) {
	h.submit(w, r, "task3", PrefixTask3, &MultiReasonAppeal{})
}

// submit is shared by the three task endpoints: decode into doc, validate,
// normalise, persist, echo.
func (h *Handler) submit(w http.ResponseWriter, r *http.Request, opName, prefix string, doc submission) {
	ctx := r.Context()
	logger := observability.LoggerWithTrace(ctx)
	requestID := observability.RequestIDFromContext(ctx)

	ctx, span := tracer.Start(ctx, fmt.Sprintf("appeal.%s", opName),
		trace.WithAttributes(
			attribute.String("appeal.kind", opName),
			attribute.String("request.id", requestID),
		),
	)
	defer span.End()

	if err := validation.DecodeJSON(r.Body, doc); err != nil {
		var schemaErr *validation.SchemaError
		if errors.As(err, &schemaErr) {
			observability.RecordValidationError(ctx, span, logger, errorCounter, opName, err, schemaErr.Violations, w)
			return
		}
		observability.RecordError(ctx, span, logger, errorCounter, opName, "invalid request body", err, http.StatusBadRequest, w)
		return
	}

	doc.trim()

	if err := validation.Struct(h.validate, doc); err != nil {
		var schemaErr *validation.SchemaError
		if errors.As(err, &schemaErr) {
			observability.RecordValidationError(ctx, span, logger, errorCounter, opName, err, schemaErr.Violations, w)
			return
		}
		observability.RecordError(ctx, span, logger, errorCounter, opName, "validation error", err, http.StatusInternalServerError, w)
		return
	}

	doc.normalize()

	start := time.Now()
	rec, err := h.store.Save(ctx, prefix, doc)
	elapsed := float64(time.Since(start).Microseconds()) / 1000.0 // ms

	if err != nil {
		observability.RecordError(ctx, span, logger, errorCounter, opName, "failed to save appeal", err, http.StatusInternalServerError, w)
		return
	}

	attrs := metric.WithAttributes(attribute.String("kind", opName))
	savedCounter.Add(ctx, 1, attrs)
	saveHistogram.Record(ctx, elapsed, attrs)

	span.SetAttributes(attribute.String("appeal.id", rec.ID))
	span.SetStatus(codes.Ok, "")

	logger.Info("appeal saved",
		zap.String("kind", opName),
		zap.String("id", rec.ID),
		zap.String("file", rec.File),
		zap.Float64("duration_ms", elapsed),
		zap.String("request_id", requestID),
	)

	handlers.WriteJSON(w, http.StatusOK, SaveResponse{
		Status: "saved",
		File:   rec.File,
		Data:   doc,
	})
}

// List handles GET /appeal/
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracer.Start(r.Context(), "appeal.list")
	defer span.End()

	recs, err := h.store.List(ctx)
	if err != nil {
		observability.RecordError(ctx, span, observability.LoggerWithTrace(ctx), errorCounter, "list", "failed to list appeals", err, http.StatusInternalServerError, w)
		return
	}

	span.SetAttributes(attribute.Int("appeal.count", len(recs)))
	handlers.WriteJSON(w, http.StatusOK, ListResponse{Appeals: recs})
}

// Get handles GET /appeal/{id} and returns the stored document verbatim.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	ctx, span := tracer.Start(r.Context(), "appeal.get",
		trace.WithAttributes(attribute.String("appeal.id", id)),
	)
	defer span.End()

	logger := observability.LoggerWithTrace(ctx)

	data, err := h.store.Get(ctx, id)
	switch {
	case errors.Is(err, ErrInvalidID):
		observability.RecordError(ctx, span, logger, errorCounter, "get", "invalid appeal id", err, http.StatusBadRequest, w)
		return
	case errors.Is(err, ErrNotFound):
		observability.RecordError(ctx, span, logger, errorCounter, "get", "appeal not found", err, http.StatusNotFound, w)
		return
	case err != nil:
		observability.RecordError(ctx, span, logger, errorCounter, "get", "failed to read appeal", err, http.StatusInternalServerError, w)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}
