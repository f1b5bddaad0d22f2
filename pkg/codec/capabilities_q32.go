//go:build !noq32

package codec

const q32Enabled = true
