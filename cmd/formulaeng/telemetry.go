package main

import (
	"context"
	"os"

	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/solverlab/formula"
)

// telemetryOptions wires a stdout trace exporter and a stdout metric reader
// when --telemetry is set, so solve_from's spans (internal/engine.Manager)
// and its recompute counter land on stderr instead of vanishing into no-op
// instruments. It always returns a non-nil shutdown func; callers must call
// it once they're done with the session so buffered telemetry flushes.
func telemetryOptions() ([]formula.Option, func(), error) {
	if !flagTelemetry {
		return nil, func() {}, nil
	}

	traceExp, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, func() {}, err
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExp))

	metricExp, err := stdoutmetric.New(stdoutmetric.WithWriter(os.Stderr))
	if err != nil {
		return nil, func() {}, err
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp)))

	shutdown := func() {
		ctx := context.Background()
		_ = tp.Shutdown(ctx)
		_ = mp.Shutdown(ctx)
	}
	return []formula.Option{formula.WithTracerProvider(tp), formula.WithMeterProvider(mp)}, shutdown, nil
}
