package main

import (
	"fmt"
	"log/slog"
	"math"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	combfilter "github.com/tphakala/go-audio-combfilter"
	"github.com/tphakala/go-audio-combfilter/internal/simdops"
)

const (
	// Sample format constants
	bitsPerSample16 = 16
	bitsPerSample24 = 24
	bitsPerSample32 = 32

	// Conversion constants
	maxInt16 = 32767.0
	maxInt24 = 8388607.0
	maxInt32 = 2147483647.0

	// wavFormatPCM is the WAVE_FORMAT_PCM audio format tag.
	wavFormatPCM = 1
)

// wavInputInfo holds validated input file information.
type wavInputInfo struct {
	file        *os.File
	decoder     *wav.Decoder
	rate        int
	channels    int
	bitDepth    int
	totalFrames int64
	format      *audio.Format
}

// openWAVInput opens and validates a WAV file, returning format information.
func openWAVInput(path string, logger *slog.Logger) (*wavInputInfo, error) {
	inputFile, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}

	decoder := wav.NewDecoder(inputFile)
	if !decoder.IsValidFile() {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s", path)
	}

	format := decoder.Format()
	bitDepth := int(decoder.BitDepth)
	if format.NumChannels < 1 {
		_ = inputFile.Close()
		return nil, fmt.Errorf("invalid WAV file: %s has no channels", path)
	}

	logger.Debug("input format",
		"rate", format.SampleRate,
		"channels", format.NumChannels,
		"bit_depth", bitDepth)

	// Duration is only used for progress reporting
	duration, err := decoder.Duration()
	if err != nil {
		duration = 0
	}

	return &wavInputInfo{
		file:        inputFile,
		decoder:     decoder,
		rate:        format.SampleRate,
		channels:    format.NumChannels,
		bitDepth:    bitDepth,
		totalFrames: int64(duration.Seconds() * float64(format.SampleRate)),
		format:      format,
	}, nil
}

// Close closes the input file.
func (w *wavInputInfo) Close() error {
	return w.file.Close()
}

// wavOutputWriter wraps the output file and its encoder.
type wavOutputWriter struct {
	file    *os.File
	encoder *wav.Encoder
	buf     *audio.IntBuffer
}

// createWAVOutput creates the output file and a PCM encoder for it.
func createWAVOutput(path string, sampleRate, bitDepth, channels int) (*wavOutputWriter, error) {
	outputFile, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	return &wavOutputWriter{
		file:    outputFile,
		encoder: wav.NewEncoder(outputFile, sampleRate, bitDepth, channels, wavFormatPCM),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{SampleRate: sampleRate, NumChannels: channels},
			SourceBitDepth: bitDepth,
		},
	}, nil
}

// WriteSamples writes interleaved samples to the output file.
func (w *wavOutputWriter) WriteSamples(samples []int) error {
	w.buf.Data = samples
	return w.encoder.Write(w.buf)
}

// Close finalizes the WAV header and closes the file.
func (w *wavOutputWriter) Close() error {
	if err := w.encoder.Close(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

// getMaxValue returns the maximum sample value for the given bit depth.
func getMaxValue(bitDepth int) float64 {
	switch bitDepth {
	case bitsPerSample16:
		return maxInt16
	case bitsPerSample24:
		return maxInt24
	case bitsPerSample32:
		return maxInt32
	default:
		return maxInt16
	}
}

// deinterleaveInto converts interleaved int samples into preallocated
// per-channel buffers normalized to [-1, 1].
func deinterleaveInto[F combfilter.Float](data []int, channelBufs [][]F, frames int, invMaxVal float64) {
	numChannels := len(channelBufs)
	for ch := range numChannels {
		buf := channelBufs[ch][:frames]
		for i := range buf {
			buf[i] = F(data[i*numChannels+ch])
		}
		simdops.ScaleInPlace(buf, F(invMaxVal))
	}
}

// interleaveInto converts per-channel float buffers into dst, clamping to
// [-1, 1] and rounding to the nearest integer. It returns the number of
// elements written.
func interleaveInto[F combfilter.Float](channelBufs [][]F, frames int, dst []int, maxVal float64) int {
	numChannels := len(channelBufs)
	totalLen := frames * numChannels
	if numChannels == 0 || len(dst) < totalLen {
		return 0
	}

	for ch, buf := range channelBufs {
		for i, s := range buf[:frames] {
			sample := min(max(float64(s), -1.0), 1.0)
			dst[i*numChannels+ch] = int(math.Round(sample * maxVal))
		}
	}
	return totalLen
}
