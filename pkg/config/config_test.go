package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithQ16EnabledOverridesAtRuntime(t *testing.T) {
	defer WithQ16Enabled(true)

	WithQ16Enabled(false)
	assert.False(t, IsQ16Enabled())

	WithQ16Enabled(true)
	assert.True(t, IsQ16Enabled())
}

func TestBoolEnvFallsBackOnUnsetOrInvalid(t *testing.T) {
	assert.True(t, boolEnv("MICROINFER_TEST_UNSET_VAR", true))

	t.Setenv("MICROINFER_TEST_INVALID_VAR", "not-a-bool")
	assert.False(t, boolEnv("MICROINFER_TEST_INVALID_VAR", false))

	t.Setenv("MICROINFER_TEST_VALID_VAR", "false")
	assert.False(t, boolEnv("MICROINFER_TEST_VALID_VAR", true))
}
