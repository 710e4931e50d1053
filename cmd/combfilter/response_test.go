package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	combfilter "github.com/tphakala/go-audio-combfilter"
)

func TestResponse_FIRNotches(t *testing.T) {
	stdout, _, err := runCommand(t, "response",
		"--type", "fir", "--gain", "-1", "--delay", "0.001",
		"--rate", "48000", "--length", "4800", "--points", "8")
	require.NoError(t, err)

	assert.Contains(t, stdout, "fir comb, gain -1.000, delay 0.0010s at 48000 Hz")
	assert.Contains(t, stdout, "Peak:  6.02 dB at")
	assert.Contains(t, stdout, "Notch: -240.00 dB at 0.0 Hz")

	// Header, 8 or 9 rows, peak and notch lines.
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	assert.GreaterOrEqual(t, len(lines), 12)
}

func TestResponse_IIR(t *testing.T) {
	stdout, _, err := runCommand(t, "response",
		"--type", "iir", "--gain", "0.5", "--delay", "0.01", "--rate", "1000", "--length", "1000")
	require.NoError(t, err)
	assert.Contains(t, stdout, "iir comb")
	assert.Contains(t, stdout, "Peak:  6.02 dB at")
}

func TestResponse_Errors(t *testing.T) {
	_, _, err := runCommand(t, "response", "--points", "0")
	require.ErrorIs(t, err, combfilter.ErrInvalidArgument)

	_, _, err = runCommand(t, "response", "--length", "0")
	require.ErrorIs(t, err, combfilter.ErrInvalidArgument)

	_, _, err = runCommand(t, "response", "--rate", "0")
	require.ErrorIs(t, err, combfilter.ErrInvalidArgument)

	_, _, err = runCommand(t, "response", "extra")
	require.Error(t, err)
}
