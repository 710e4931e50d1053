package main

import (
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var discardLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

// writeTestWAV writes interleaved 16-bit samples to a new WAV file.
func writeTestWAV(t *testing.T, path string, sampleRate, channels int, data []int) {
	t.Helper()
	f, err := os.Create(path)
	require.NoError(t, err)

	enc := wav.NewEncoder(f, sampleRate, bitsPerSample16, channels, wavFormatPCM)
	require.NoError(t, enc.Write(&audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: channels},
		SourceBitDepth: bitsPerSample16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, f.Close())
}

// readTestWAV decodes a whole WAV file.
func readTestWAV(t *testing.T, path string) *audio.IntBuffer {
	t.Helper()
	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())
	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	return buf
}

// sineInts returns interleaved 16-bit sine samples, channel ch shifted by ch
// quarter periods.
func sineInts(freq, sampleRate float64, amplitude float64, channels, frames int) []int {
	data := make([]int, frames*channels)
	for i := range frames {
		for ch := range channels {
			phase := float64(ch) * math.Pi / 2
			v := amplitude * math.Sin(2*math.Pi*freq*float64(i)/sampleRate+phase)
			data[i*channels+ch] = int(math.Round(v * maxInt16))
		}
	}
	return data
}

func TestOpenWAVInput_FileNotFound(t *testing.T) {
	_, err := openWAVInput("/nonexistent/file.wav", discardLogger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to open input file")
}

func TestOpenWAVInput_InvalidWAV(t *testing.T) {
	invalidFile := filepath.Join(t.TempDir(), "invalid.wav")
	require.NoError(t, os.WriteFile(invalidFile, []byte("not a wav file"), 0o644))

	_, err := openWAVInput(invalidFile, discardLogger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid WAV file")
}

func TestOpenWAVInput_Format(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.wav")
	writeTestWAV(t, path, 22050, 2, sineInts(440, 22050, 0.5, 2, 2205))

	input, err := openWAVInput(path, discardLogger)
	require.NoError(t, err)
	defer func() { _ = input.Close() }()

	assert.Equal(t, 22050, input.rate)
	assert.Equal(t, 2, input.channels)
	assert.Equal(t, bitsPerSample16, input.bitDepth)
}

func TestCreateWAVOutput_InvalidDirectory(t *testing.T) {
	_, err := createWAVOutput("/nonexistent/dir/output.wav", 44100, 16, 2)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create output file")
}

func TestCreateWAVOutput_Roundtrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.wav")
	out, err := createWAVOutput(path, 48000, 16, 2)
	require.NoError(t, err)

	samples := []int{0, 1, -1, 100, 32767, -32768}
	require.NoError(t, out.WriteSamples(samples[:4]))
	require.NoError(t, out.WriteSamples(samples[4:]))
	require.NoError(t, out.Close())

	buf := readTestWAV(t, path)
	assert.Equal(t, 48000, buf.Format.SampleRate)
	assert.Equal(t, 2, buf.Format.NumChannels)
	assert.Equal(t, samples, buf.Data)
}

func TestGetMaxValue(t *testing.T) {
	assert.InDelta(t, maxInt16, getMaxValue(16), 0)
	assert.InDelta(t, maxInt24, getMaxValue(24), 0)
	assert.InDelta(t, maxInt32, getMaxValue(32), 0)
	assert.InDelta(t, maxInt16, getMaxValue(8), 0)
}

func TestDeinterleaveInto(t *testing.T) {
	data := []int{32767, -32767, 0, 16384, 99, 99}
	bufs := [][]float64{make([]float64, 4), make([]float64, 4)}

	deinterleaveInto(data, bufs, 2, 1.0/maxInt16)

	assert.InDeltaSlice(t, []float64{1, 0}, bufs[0][:2], 1e-12)
	assert.InDeltaSlice(t, []float64{-1, 16384.0 / maxInt16}, bufs[1][:2], 1e-12)
	// Frames beyond the count are untouched.
	assert.Zero(t, bufs[0][2])
}

func TestInterleaveInto(t *testing.T) {
	bufs := [][]float32{{0.5, 2, 0}, {-0.5, -2, 0}}
	dst := make([]int, 6)

	n := interleaveInto(bufs, 2, dst, maxInt16)
	require.Equal(t, 4, n)
	assert.Equal(t, []int{16384, -16384, 32767, -32767, 0, 0}, dst)

	assert.Zero(t, interleaveInto(bufs, 3, make([]int, 5), maxInt16))
	assert.Zero(t, interleaveInto([][]float32{}, 3, dst, maxInt16))
}

// Every 16-bit value must survive int -> float -> int unchanged.
func TestPCMRoundTrip_16Bit(t *testing.T) {
	data := make([]int, 0, 2*int(maxInt16)+1)
	for v := -int(maxInt16); v <= int(maxInt16); v++ {
		data = append(data, v)
	}

	t.Run("float32", func(t *testing.T) {
		assertPCMRoundTrip[float32](t, data)
	})
	t.Run("float64", func(t *testing.T) {
		assertPCMRoundTrip[float64](t, data)
	})
}

func assertPCMRoundTrip[F float32 | float64](t *testing.T, data []int) {
	t.Helper()
	bufs := [][]F{make([]F, len(data))}
	deinterleaveInto(data, bufs, len(data), 1.0/maxInt16)

	out := make([]int, len(data))
	require.Equal(t, len(data), interleaveInto(bufs, len(data), out, maxInt16))
	for i := range data {
		require.Equal(t, data[i], out[i], "sample %d", i)
	}
}
