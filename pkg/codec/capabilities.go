//go:build !noq16

package codec

const q16Enabled = true
