package config

import (
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/orneryd/microinfer/pkg/cache"
)

// BuildProfile is the YAML-configurable runtime analogue of the
// engine's compile-time byte-source/kernel flags: a deployment picks a
// profile file instead of recompiling the demo CLI for a different
// combination of enabled kernels.
type BuildProfile struct {
	Name string `yaml:"name"`

	Q16Enabled   bool `yaml:"q16_enabled"`
	Q32Enabled   bool `yaml:"q32_enabled"`
	StdioEnabled bool `yaml:"stdio_enabled"`

	ValidationCacheEnabled    bool `yaml:"validation_cache_enabled"`
	ValidationCacheMaxEntries int  `yaml:"validation_cache_max_entries"`
	ValidationCacheTTLSeconds int  `yaml:"validation_cache_ttl_seconds"`
}

// DefaultBuildProfile matches this package's env-var defaults.
func DefaultBuildProfile() BuildProfile {
	return BuildProfile{
		Name:                      "default",
		Q16Enabled:                true,
		Q32Enabled:                true,
		StdioEnabled:              true,
		ValidationCacheEnabled:    true,
		ValidationCacheMaxEntries: 64,
		ValidationCacheTTLSeconds: 300,
	}
}

// LoadBuildProfile parses a microinfer.yaml document from r.
func LoadBuildProfile(r io.Reader) (BuildProfile, error) {
	p := DefaultBuildProfile()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&p); err != nil && err != io.EOF {
		return BuildProfile{}, err
	}
	return p, nil
}

// LoadBuildProfileFile opens path and parses it as a BuildProfile.
func LoadBuildProfileFile(path string) (BuildProfile, error) {
	f, err := os.Open(path)
	if err != nil {
		return BuildProfile{}, err
	}
	defer f.Close()
	return LoadBuildProfile(f)
}

// Apply pushes the profile's settings into this package's runtime
// toggles, the same ones IsQ16Enabled/IsStdioEnabled/etc. read.
func (p BuildProfile) Apply() {
	WithQ16Enabled(p.Q16Enabled)
	WithQ32Enabled(p.Q32Enabled)
	WithStdioEnabled(p.StdioEnabled)
	WithValidationCacheEnabled(p.ValidationCacheEnabled)
}

// NewValidationCache builds a pkg/cache.ValidationCache sized and
// timed out per the profile.
func (p BuildProfile) NewValidationCache() *cache.ValidationCache {
	return cache.NewValidationCache(p.ValidationCacheMaxEntries, time.Duration(p.ValidationCacheTTLSeconds)*time.Second)
}
