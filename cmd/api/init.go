package main

import (
	"context"
	"errors"

	"fanout-api/internal/appeal"
	"fanout-api/internal/calculator"
	"fanout-api/internal/config"
	"fanout-api/internal/observability"
)

type shutdownFunc func(context.Context) error

// initTelemetry starts the OTLP trace, log and metric pipelines when enabled
// and registers every domain's metric instruments. Add new domain InitMetrics
// calls here as the project grows.
func initTelemetry(ctx context.Context, cfg config.Config) (shutdownFunc, error) {
	var shutdowns []shutdownFunc

	shutdown := func(ctx context.Context) error {
		var errs []error
		for i := len(shutdowns) - 1; i >= 0; i-- {
			errs = append(errs, shutdowns[i](ctx))
		}
		return errors.Join(errs...)
	}

	if cfg.Telemetry {
		inits := []func(context.Context, string) (func(context.Context) error, error){
			observability.InitTracing,
			observability.InitLogging,
			observability.InitMetrics,
		}
		for _, start := range inits {
			fn, err := start(ctx, cfg.ServiceName)
			if err != nil {
				return nil, errors.Join(err, shutdown(ctx))
			}
			shutdowns = append(shutdowns, fn)
		}
	}

	if err := calculator.InitMetrics(); err != nil {
		return nil, errors.Join(err, shutdown(ctx))
	}
	if err := appeal.InitMetrics(); err != nil {
		return nil, errors.Join(err, shutdown(ctx))
	}

	return shutdown, nil
}
