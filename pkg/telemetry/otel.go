package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// otelRecorder reports through the standard otel metrics API. Errors
// obtaining instruments from the provider are swallowed: telemetry
// must never be able to fail an inference call, matching the original
// allocator counters' behavior of being best-effort bookkeeping rather
// than load-bearing state.
type otelRecorder struct {
	allocBytes    metric.Int64UpDownCounter
	inferenceDur  metric.Float64Histogram
	neuronCount   metric.Int64Histogram
	loadCount     metric.Int64Counter
	loadFailCount metric.Int64Counter
}

// NewOtel builds a Recorder backed by the given MeterProvider, using a
// meter named "microinfer".
func NewOtel(provider metric.MeterProvider) Recorder {
	meter := provider.Meter("microinfer")

	allocBytes, _ := meter.Int64UpDownCounter(
		"microinfer.allocated_bytes",
		metric.WithDescription("Live bytes allocated by model arenas and scratch buffers"),
		metric.WithUnit("By"),
	)
	inferenceDur, _ := meter.Float64Histogram(
		"microinfer.inference.duration",
		metric.WithDescription("Wall-clock duration of a single inference call"),
		metric.WithUnit("ms"),
	)
	neuronCount, _ := meter.Int64Histogram(
		"microinfer.inference.neuron_count",
		metric.WithDescription("Neuron count of the model used for an inference call"),
	)
	loadCount, _ := meter.Int64Counter(
		"microinfer.loads",
		metric.WithDescription("Number of model load attempts"),
	)
	loadFailCount, _ := meter.Int64Counter(
		"microinfer.loads.failed",
		metric.WithDescription("Number of model load attempts that returned an error"),
	)

	return &otelRecorder{
		allocBytes:    allocBytes,
		inferenceDur:  inferenceDur,
		neuronCount:   neuronCount,
		loadCount:     loadCount,
		loadFailCount: loadFailCount,
	}
}

func (r *otelRecorder) RecordAlloc(ctx context.Context, component string, size int64) {
	if r.allocBytes == nil {
		return
	}
	r.allocBytes.Add(ctx, size, metric.WithAttributes(attribute.String("component", component)))
}

func (r *otelRecorder) RecordFree(ctx context.Context, component string, size int64) {
	if r.allocBytes == nil {
		return
	}
	r.allocBytes.Add(ctx, -size, metric.WithAttributes(attribute.String("component", component)))
}

func (r *otelRecorder) RecordInference(ctx context.Context, quantization string, neuronCount int, d time.Duration) {
	attrs := metric.WithAttributes(attribute.String("quantization", quantization))
	if r.inferenceDur != nil {
		r.inferenceDur.Record(ctx, float64(d.Microseconds())/1000.0, attrs)
	}
	if r.neuronCount != nil {
		r.neuronCount.Record(ctx, int64(neuronCount), attrs)
	}
}

func (r *otelRecorder) RecordLoad(ctx context.Context, mapped bool, err error) {
	attrs := metric.WithAttributes(attribute.Bool("mapped", mapped))
	if r.loadCount != nil {
		r.loadCount.Add(ctx, 1, attrs)
	}
	if err != nil && r.loadFailCount != nil {
		r.loadFailCount.Add(ctx, 1, attrs)
	}
}
