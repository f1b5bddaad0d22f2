package telemetry

import (
	"context"
	"sync"
	"time"
)

// MemoryRecorder accumulates calls in memory for assertions in tests
// that care about what was recorded, without requiring an otel
// exporter.
type MemoryRecorder struct {
	mu sync.Mutex

	Allocated   map[string]int64
	Inferences  []InferenceRecord
	Loads       int
	FailedLoads int
}

// InferenceRecord captures one RecordInference call.
type InferenceRecord struct {
	Quantization string
	NeuronCount  int
	Duration     time.Duration
}

// NewMemoryRecorder returns a ready-to-use MemoryRecorder.
func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{Allocated: make(map[string]int64)}
}

func (r *MemoryRecorder) RecordAlloc(_ context.Context, component string, size int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Allocated[component] += size
}

func (r *MemoryRecorder) RecordFree(_ context.Context, component string, size int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Allocated[component] -= size
}

func (r *MemoryRecorder) RecordInference(_ context.Context, quantization string, neuronCount int, d time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Inferences = append(r.Inferences, InferenceRecord{quantization, neuronCount, d})
}

func (r *MemoryRecorder) RecordLoad(_ context.Context, _ bool, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.Loads++
	if err != nil {
		r.FailedLoads++
	}
}
