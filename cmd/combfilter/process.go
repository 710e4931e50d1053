package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"strconv"
	"time"

	"github.com/go-audio/audio"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	combfilter "github.com/tphakala/go-audio-combfilter"
	"github.com/tphakala/go-audio-combfilter/internal/simdops"
)

const (
	keyParallel  = "process.parallel"
	keyFast      = "process.fast"
	keyBlockSize = "process.block_size"

	progressInterval = 10 // Log progress every N%
	percentScale     = 100

	// Positional arguments after input and output
	argType  = 0
	argGain  = 1
	argDelay = 2
)

func newProcessCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "process input.wav output.wav [fir|iir] [gain] [delay]",
		Short: "Filter a WAV file",
		Long: `Filter every channel of a WAV file with its own comb filter and write the
result with the input's sample rate, channel count and bit depth.

Filter type, gain and delay may be given as trailing arguments or as flags.
Put "--" before the arguments when the gain is negative.`,
		Args: cobra.RangeArgs(2, 5),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := applyPositionalSettings(v, args[2:]); err != nil {
				return err
			}
			settings, err := loadFilterSettings(v)
			if err != nil {
				return err
			}

			opts := processOptions{
				inputPath:  args[0],
				outputPath: args[1],
				filter:     settings,
				blockSize:  v.GetInt(keyBlockSize),
				parallel:   v.GetBool(keyParallel),
			}
			if opts.blockSize < 1 {
				return fmt.Errorf("%w: block size must be positive", combfilter.ErrInvalidArgument)
			}

			logger := newLogger(cmd.ErrOrStderr(), v.GetBool(keyVerbose))
			logger.Debug("processing",
				"input", opts.inputPath,
				"output", opts.outputPath,
				"filter", settings,
				"block_size", opts.blockSize,
				"parallel", opts.parallel,
				"fast", v.GetBool(keyFast),
				"simd", simdops.Info())

			start := time.Now()
			var stats *processStats
			if v.GetBool(keyFast) {
				stats, err = processWAVGeneric[float32](opts, logger)
			} else {
				stats, err = processWAVGeneric[float64](opts, logger)
			}
			if err != nil {
				return err
			}
			printProcessSummary(cmd.OutOrStdout(), opts, stats, time.Since(start))
			return nil
		},
	}

	cmd.Flags().Bool("parallel", true, "Process channels concurrently")
	cmd.Flags().Bool("fast", false, "Use float32 precision")
	cmd.Flags().Int("block-size", combfilter.DefaultBlockSize, "Frames per processing block")
	bindFlags(v, cmd, map[string]string{
		keyParallel:  "parallel",
		keyFast:      "fast",
		keyBlockSize: "block-size",
	})

	return cmd
}

// applyPositionalSettings stores trailing type, gain and delay arguments in
// v, where they take precedence over flags and config.
func applyPositionalSettings(v *viper.Viper, args []string) error {
	if len(args) > argType {
		v.Set(keyType, args[argType])
	}
	if len(args) > argGain {
		gain, err := strconv.ParseFloat(args[argGain], 64)
		if err != nil {
			return fmt.Errorf("%w: gain %q is not a number", combfilter.ErrInvalidArgument, args[argGain])
		}
		v.Set(keyGain, gain)
	}
	if len(args) > argDelay {
		delay, err := strconv.ParseFloat(args[argDelay], 64)
		if err != nil {
			return fmt.Errorf("%w: delay %q is not a number", combfilter.ErrInvalidArgument, args[argDelay])
		}
		v.Set(keyDelay, delay)
	}
	return nil
}

type processOptions struct {
	inputPath  string
	outputPath string
	filter     filterSettings
	blockSize  int
	parallel   bool
}

type processStats struct {
	sampleRate int
	channels   int
	bitDepth   int
	frames     int64
	energy     float64
}

// rmsDB returns the output RMS level in dBFS.
func (s *processStats) rmsDB() float64 {
	n := float64(s.frames) * float64(s.channels)
	if n == 0 || s.energy == 0 {
		return math.Inf(-1)
	}
	return 10 * math.Log10(s.energy/n)
}

// processBuffers holds all preallocated buffers for one block.
type processBuffers[F combfilter.Float] struct {
	intBuffer    *audio.IntBuffer
	channelBufs  [][]F
	outputIntBuf []int
	invMaxVal    float64
	maxVal       float64
}

func newProcessBuffers[F combfilter.Float](channels, blockSize, bitDepth int, format *audio.Format) *processBuffers[F] {
	channelBufs := make([][]F, channels)
	for ch := range channels {
		channelBufs[ch] = make([]F, blockSize)
	}

	maxVal := getMaxValue(bitDepth)
	return &processBuffers[F]{
		intBuffer: &audio.IntBuffer{
			Data:   make([]int, blockSize*channels),
			Format: format,
		},
		channelBufs:  channelBufs,
		outputIntBuf: make([]int, blockSize*channels),
		invMaxVal:    1.0 / maxVal,
		maxVal:       maxVal,
	}
}

// progressTracker handles progress reporting.
type progressTracker struct {
	totalFrames  int64
	lastProgress int
	logger       *slog.Logger
}

func newProgressTracker(totalFrames int64, logger *slog.Logger) *progressTracker {
	return &progressTracker{totalFrames: totalFrames, logger: logger}
}

// reportIfNeeded logs progress when another interval has been crossed.
func (p *progressTracker) reportIfNeeded(currentFrames int64) {
	if p.totalFrames == 0 {
		return
	}

	progress := int(float64(currentFrames) / float64(p.totalFrames) * percentScale)
	if progress >= p.lastProgress+progressInterval {
		p.logger.Debug("progress", "percent", progress)
		p.lastProgress = progress
	}
}

func processWAVGeneric[F combfilter.Float](opts processOptions, logger *slog.Logger) (stats *processStats, err error) {
	// 1. Open and validate input
	input, err := openWAVInput(opts.inputPath, logger)
	if err != nil {
		return nil, err
	}
	defer func() { _ = input.Close() }()

	// 2. One filter per channel
	cfg := opts.filter.config(float64(input.rate), input.channels)
	cfg.EnableParallel = opts.parallel
	bank, err := combfilter.NewMultiChannel[F](cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create filters: %w", err)
	}
	defer bank.Reset()

	// 3. Create output writer
	output, err := createWAVOutput(opts.outputPath, input.rate, input.bitDepth, input.channels)
	if err != nil {
		return nil, err
	}
	// Close output, capturing close errors on success path (the WAV header is written on close)
	defer func() {
		if closeErr := output.Close(); err == nil && closeErr != nil {
			stats, err = nil, fmt.Errorf("failed to finalize output file: %w", closeErr)
		}
	}()

	buffers := newProcessBuffers[F](input.channels, opts.blockSize, input.bitDepth, input.format)
	stats = &processStats{
		sampleRate: input.rate,
		channels:   input.channels,
		bitDepth:   input.bitDepth,
	}
	progress := newProgressTracker(input.totalFrames, logger)

	// 4. Main processing loop
	for {
		n, err := input.decoder.PCMBuffer(buffers.intBuffer)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read audio data: %w", err)
		}
		// n counts interleaved samples
		frames := n / input.channels
		if frames == 0 {
			break
		}

		deinterleaveInto(buffers.intBuffer.Data[:n], buffers.channelBufs, frames, buffers.invMaxVal)

		if err := bank.Process(buffers.channelBufs, buffers.channelBufs, frames); err != nil {
			return nil, fmt.Errorf("filtering failed: %w", err)
		}
		for _, buf := range buffers.channelBufs {
			stats.energy += float64(simdops.Energy(buf[:frames]))
		}

		outputLen := interleaveInto(buffers.channelBufs, frames, buffers.outputIntBuf, buffers.maxVal)
		if err := output.WriteSamples(buffers.outputIntBuf[:outputLen]); err != nil {
			return nil, fmt.Errorf("failed to write audio data: %w", err)
		}

		stats.frames += int64(frames)
		progress.reportIfNeeded(stats.frames)
	}

	return stats, nil
}

func printProcessSummary(w io.Writer, opts processOptions, stats *processStats, elapsed time.Duration) {
	_, _ = fmt.Fprintf(w, "Filtered %s -> %s\n", filepath.Base(opts.inputPath), filepath.Base(opts.outputPath))
	_, _ = fmt.Fprintf(w, "  %s comb, gain %.3f, delay %.4fs\n", opts.filter.Type, opts.filter.Gain, opts.filter.DelaySeconds)
	_, _ = fmt.Fprintf(w, "  %d Hz, %d channels, %d-bit, %d frames\n",
		stats.sampleRate, stats.channels, stats.bitDepth, stats.frames)
	_, _ = fmt.Fprintf(w, "  Output level: %.1f dBFS RMS\n", stats.rmsDB())

	if secs := elapsed.Seconds(); secs > 0 && stats.sampleRate > 0 {
		_, _ = fmt.Fprintf(w, "  Duration: %.2fs, Speed: %.1fx realtime\n",
			secs, float64(stats.frames)/float64(stats.sampleRate)/secs)
	}
}
