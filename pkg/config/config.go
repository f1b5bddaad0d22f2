// Package config holds process-wide runtime toggles, following the
// IsXEnabled()/WithXEnabled() idiom used elsewhere in this codebase's
// lineage (see pkg/inference/heimdall_qc.go's
// config.IsAutoTLPLLMQCEnabled()): each toggle is seeded from an
// environment variable at process start and can be overridden in-
// process, without a rebuild, by a test or a CLI flag.
//
// Example Usage:
//
//	if !config.IsValidationCacheEnabled() {
//		return codec.Load(src, copy, rec)
//	}
//	return codec.LoadCached(src, copy, rec, sharedCache)
package config

import (
	"os"
	"strconv"
	"sync/atomic"
)

var (
	q16Enabled   atomic.Bool
	q32Enabled   atomic.Bool
	cacheEnabled atomic.Bool
	stdioEnabled atomic.Bool
)

func init() {
	q16Enabled.Store(boolEnv("MICROINFER_Q16_ENABLED", true))
	q32Enabled.Store(boolEnv("MICROINFER_Q32_ENABLED", true))
	cacheEnabled.Store(boolEnv("MICROINFER_VALIDATION_CACHE_ENABLED", true))
	stdioEnabled.Store(boolEnv("MICROINFER_STDIO_ENABLED", true))
}

func boolEnv(name string, def bool) bool {
	v, ok := os.LookupEnv(name)
	if !ok {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return def
	}
	return b
}

// IsQ16Enabled reports whether a host should accept Q16 models at
// runtime. This is independent of the noq16 build tag: a build that
// compiles the Q16 kernel in can still be told, via this toggle, to
// reject Q16 models for policy reasons.
func IsQ16Enabled() bool { return q16Enabled.Load() }

// WithQ16Enabled sets the Q16 runtime toggle.
func WithQ16Enabled(enabled bool) { q16Enabled.Store(enabled) }

// IsQ32Enabled reports whether a host should accept Q32 models at
// runtime.
func IsQ32Enabled() bool { return q32Enabled.Load() }

// WithQ32Enabled sets the Q32 runtime toggle.
func WithQ32Enabled(enabled bool) { q32Enabled.Store(enabled) }

// IsValidationCacheEnabled reports whether pkg/codec's checksum
// validation cache should be consulted on load.
func IsValidationCacheEnabled() bool { return cacheEnabled.Load() }

// WithValidationCacheEnabled sets the validation-cache toggle.
func WithValidationCacheEnabled(enabled bool) { cacheEnabled.Store(enabled) }

// IsStdioEnabled reports whether file-backed byte sources
// (pkg/bytesource.OpenFile) may be used, as opposed to buffer-only
// sources — the runtime analogue of the nostdio build tag.
func IsStdioEnabled() bool { return stdioEnabled.Load() }

// WithStdioEnabled sets the stdio toggle.
func WithStdioEnabled(enabled bool) { stdioEnabled.Store(enabled) }
