// Package pool reduces allocation churn for repeated inference calls
// against the same model: sample input buffers, output buffers, and
// raw byte scratch for chunked file reads. pkg/codec and pkg/dataset
// allocate their own read buffers and do not draw from these pools.
//
// Pooling is most valuable for a host running inference in a tight
// loop (a gesture classifier polling a sensor, a batch dataset
// evaluation) where allocating a fresh []float32 per call would
// otherwise dominate GC pressure.
//
// Example Usage:
//
//	buf := pool.GetSampleBuffer(int(m.InputsDim))
//	defer pool.PutSampleBuffer(buf)
//	m.NormalizeSample(buf)
package pool

import (
	"log"
	"sync"
)

// PoolConfig configures pooling behavior globally.
type PoolConfig struct {
	// Enabled controls whether Get/Put reuse objects at all; disabling
	// it is useful when chasing a memory-correctness bug, since every
	// Get then allocates fresh and every Put is a no-op.
	Enabled bool

	// MaxSize caps the slice capacity eligible for reuse. A Put of a
	// larger buffer than this is dropped so the pool cannot "trap" one
	// dataset's unusually large sample indefinitely.
	MaxSize int
}

var globalConfig = PoolConfig{
	Enabled: true,
	MaxSize: 4096,
}

// Configure replaces the global pool configuration. Call it once
// during startup, before the first Get — changing MaxSize after pools
// are in use does not retroactively evict oversized entries already
// held by sync.Pool.
func Configure(config PoolConfig) {
	globalConfig = config
	initPools()
	log.Printf("[POOL] reconfigured: enabled=%v maxSize=%d", config.Enabled, config.MaxSize)
}

func initPools() {
	sampleBufferPool = sync.Pool{
		New: func() any { return make([]float32, 0, 64) },
	}
	outputBufferPool = sync.Pool{
		New: func() any { return make([]float32, 0, 16) },
	}
	byteBufferPool = sync.Pool{
		New: func() any { return make([]byte, 0, 4096) },
	}
}

// IsEnabled reports whether pooling is currently active.
func IsEnabled() bool {
	return globalConfig.Enabled
}

var sampleBufferPool = sync.Pool{
	New: func() any { return make([]float32, 0, 64) },
}

// GetSampleBuffer returns a []float32 with length n, zeroed, suitable
// for model.NormalizeSample's in-place clamping. When pooling is
// disabled this always allocates.
func GetSampleBuffer(n int) []float32 {
	if !globalConfig.Enabled {
		return make([]float32, n)
	}
	buf := sampleBufferPool.Get().([]float32)
	if cap(buf) < n {
		return make([]float32, n)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

// PutSampleBuffer returns buf to the pool. Buffers larger than
// PoolConfig.MaxSize are dropped rather than retained.
func PutSampleBuffer(buf []float32) {
	if !globalConfig.Enabled || cap(buf) == 0 {
		return
	}
	if cap(buf) > globalConfig.MaxSize {
		log.Printf("[POOL] ⚠️ dropping oversized sample buffer: cap=%d maxSize=%d", cap(buf), globalConfig.MaxSize)
		return
	}
	sampleBufferPool.Put(buf[:0])
}

var outputBufferPool = sync.Pool{
	New: func() any { return make([]float32, 0, 16) },
}

// GetOutputBuffer returns a zeroed []float32 of length n for a
// model's denormalized result, separate from sampleBufferPool since
// output vectors are typically much smaller than input vectors.
func GetOutputBuffer(n int) []float32 {
	if !globalConfig.Enabled {
		return make([]float32, n)
	}
	buf := outputBufferPool.Get().([]float32)
	if cap(buf) < n {
		return make([]float32, n)
	}
	buf = buf[:n]
	for i := range buf {
		buf[i] = 0
	}
	return buf
}

// PutOutputBuffer returns buf to the pool.
func PutOutputBuffer(buf []float32) {
	if !globalConfig.Enabled || cap(buf) == 0 || cap(buf) > globalConfig.MaxSize {
		return
	}
	outputBufferPool.Put(buf[:0])
}

var byteBufferPool = sync.Pool{
	New: func() any { return make([]byte, 0, 4096) },
}

// GetByteBuffer returns a []byte with length n for chunked reads
// (checksum walks, sample vectors).
func GetByteBuffer(n int) []byte {
	if !globalConfig.Enabled {
		return make([]byte, n)
	}
	buf := byteBufferPool.Get().([]byte)
	if cap(buf) < n {
		return make([]byte, n)
	}
	return buf[:n]
}

// PutByteBuffer returns buf to the pool.
func PutByteBuffer(buf []byte) {
	if !globalConfig.Enabled || cap(buf) == 0 || cap(buf) > globalConfig.MaxSize {
		return
	}
	byteBufferPool.Put(buf[:0])
}
