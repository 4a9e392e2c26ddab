// Package telemetry provides helpers for wrapping the extraction phases
// (prepare, reduce, present, emit) in OpenTelemetry spans; package
// extractor does not call them itself. Adapted from the span-per-phase
// style implied by src/compute/compute_engine_default.go's
// DefaultComputeEngine.PostProcess pipeline stages.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "quantatomai/feature-engine"

// Phase names the four extraction stages an extractor walks through.
type Phase string

const (
	PhasePrepare Phase = "prepare"
	PhaseReduce  Phase = "reduce"
	PhasePresent Phase = "present"
	PhaseEmit    Phase = "emit"
)

// Span starts a span named after phase, tagged with the feature set's
// record count, and returns the function the caller must defer to end it.
func Span(ctx context.Context, phase Phase, recordCount int) (context.Context, func()) {
	tracer := otel.Tracer(tracerName)
	ctx, span := tracer.Start(ctx, "feature_engine."+string(phase),
		trace.WithAttributes(attribute.Int("feature_engine.record_count", recordCount)))
	return ctx, func() { span.End() }
}

// RecordError records err as an error event on the span in ctx (if any);
// it does not change the span's status.
func RecordError(ctx context.Context, err error) {
	if err == nil {
		return
	}
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
}
