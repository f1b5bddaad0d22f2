package main

import (
	"fmt"

	"github.com/orneryd/microinfer/pkg/bytesource"
	"github.com/orneryd/microinfer/pkg/codec"
	"github.com/orneryd/microinfer/pkg/config"
	"github.com/orneryd/microinfer/pkg/model"
	"github.com/orneryd/microinfer/pkg/security"
	"github.com/orneryd/microinfer/pkg/telemetry"
)

// validationCache is handed to codec.LoadCached while the
// validation-cache toggle is on. loadModelFile reads through a
// file-backed source, which exposes no raw buffer, so codec does not
// consult the cache for these loads and every load runs the full
// CRC-32C walk. A fresh process starts with an empty cache; nothing is
// persisted.
var validationCache = config.DefaultBuildProfile().NewValidationCache()

func loadModelFile(path string) (*model.Model, error) {
	if !config.IsStdioEnabled() {
		return nil, fmt.Errorf("file-backed byte sources are disabled by the active build profile")
	}
	if err := security.ValidateModelPath(path); err != nil {
		return nil, fmt.Errorf("reject model path: %w", err)
	}

	src, err := bytesource.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer src.Close()

	rec := telemetry.Noop()
	var m *model.Model
	if !config.IsValidationCacheEnabled() {
		m, err = codec.Load(src, true, rec)
	} else {
		m, err = codec.LoadCached(src, true, rec, validationCache)
	}
	if err != nil {
		return nil, err
	}
	if (m.Quantization == model.Q16 && !config.IsQ16Enabled()) || (m.Quantization == model.Q32 && !config.IsQ32Enabled()) {
		return nil, codec.NewError(codec.ErrFeatureNotSupported,
			fmt.Sprintf("quantization %s disabled by the active build profile", m.Quantization), nil)
	}
	return m, nil
}
