// Package telemetry provides the pluggable instrumentation collaborator
// injected into pkg/codec and pkg/kernel, replacing the original
// implementation's process-global allocation counters
// (NBytesAllocated/NBytesAllocatedTotal) and adding inference timing.
//
// Example Usage:
//
//	rec := telemetry.NewOtel(meterProvider)
//	m, err := codec.Load(src, false, rec)
//	err = kernel.Run(ctx, m, input, rec)
package telemetry

import (
	"context"
	"time"
)

// Recorder is the collaborator pkg/codec and pkg/kernel report through.
// codec.Load and kernel.Run accept a nil Recorder and substitute Noop(),
// so every call site inside them can invoke these methods
// unconditionally.
type Recorder interface {
	// RecordAlloc records a live allocation of size bytes, tagged with
	// a short component label ("arena", "scratch", ...).
	RecordAlloc(ctx context.Context, component string, size int64)

	// RecordFree records the release of a previously recorded
	// allocation of size bytes.
	RecordFree(ctx context.Context, component string, size int64)

	// RecordInference records one inference call's wall-clock latency
	// and the neuron count of the model that produced it.
	RecordInference(ctx context.Context, quantization string, neuronCount int, d time.Duration)

	// RecordLoad records one model load, successful or not.
	RecordLoad(ctx context.Context, mapped bool, err error)
}

type noopRecorder struct{}

func (noopRecorder) RecordAlloc(context.Context, string, int64)                       {}
func (noopRecorder) RecordFree(context.Context, string, int64)                        {}
func (noopRecorder) RecordInference(context.Context, string, int, time.Duration)      {}
func (noopRecorder) RecordLoad(context.Context, bool, error)                          {}

// Noop returns a Recorder whose methods do nothing, the default used
// whenever a caller does not supply one.
func Noop() Recorder { return noopRecorder{} }
