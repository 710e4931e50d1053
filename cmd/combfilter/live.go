package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gen2brain/malgo"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	combfilter "github.com/tphakala/go-audio-combfilter"
	"github.com/tphakala/go-audio-combfilter/internal/host"
)

const (
	keyLiveRate           = "live.rate"
	keyLiveInputChannels  = "live.input_channels"
	keyLiveOutputChannels = "live.output_channels"
	keyLiveDuration       = "live.duration"
	keyLiveState          = "live.state"
	keyLiveSaveState      = "live.save_state"

	defaultLiveRate = combfilter.RateDAT

	// initialPeriodFrames is the preallocated callback size; larger periods grow the buffers once.
	initialPeriodFrames = 4096

	bytesPerFloat32 = 4
)

func newLiveCommand(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "live",
		Short: "Filter the default capture device to the default playback device",
		Long: `Open a duplex audio device and filter the input in real time.

The live host limits delay to [0.01, 0.1] seconds and gain magnitude to
[0, 1]; a negative gain sets the invert flag. A state file saved with
--save-state can be restored with --state.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadFilterSettings(v)
			if err != nil {
				return err
			}
			opts := liveOptions{
				sampleRate:     v.GetInt(keyLiveRate),
				inputChannels:  v.GetInt(keyLiveInputChannels),
				outputChannels: v.GetInt(keyLiveOutputChannels),
				duration:       v.GetDuration(keyLiveDuration),
				statePath:      v.GetString(keyLiveState),
				saveStatePath:  v.GetString(keyLiveSaveState),
			}
			if opts.sampleRate < 1 {
				return fmt.Errorf("%w: sample rate must be positive", combfilter.ErrInvalidArgument)
			}
			if opts.outputChannels < opts.inputChannels {
				return fmt.Errorf("%w: output channels (%d) must not be fewer than input channels (%d)",
					combfilter.ErrInvalidArgument, opts.outputChannels, opts.inputChannels)
			}

			proc := host.NewProcessor()
			applyHostSettings(proc, settings)
			if opts.statePath != "" {
				if err := loadStateFile(proc, opts.statePath); err != nil {
					return err
				}
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			logger := newLogger(cmd.ErrOrStderr(), v.GetBool(keyVerbose))
			if err := runLive(ctx, proc, opts, logger); err != nil {
				return err
			}

			if opts.saveStatePath != "" {
				return saveStateFile(proc, opts.saveStatePath)
			}
			return nil
		},
	}

	cmd.Flags().Int("rate", defaultLiveRate, "Device sample rate in Hz")
	cmd.Flags().Int("input-channels", 1, "Capture channels")
	cmd.Flags().Int("output-channels", 2, "Playback channels; extra channels copy channel 0")
	cmd.Flags().Duration("duration", 0, "Stop after this long (0 runs until interrupted)")
	cmd.Flags().String("state", "", "Load host parameters from a YAML state file")
	cmd.Flags().String("save-state", "", "Save host parameters to a YAML state file on exit")
	bindFlags(v, cmd, map[string]string{
		keyLiveRate:           "rate",
		keyLiveInputChannels:  "input-channels",
		keyLiveOutputChannels: "output-channels",
		keyLiveDuration:       "duration",
		keyLiveState:          "state",
		keyLiveSaveState:      "save-state",
	})

	return cmd
}

type liveOptions struct {
	sampleRate     int
	inputChannels  int
	outputChannels int
	duration       time.Duration
	statePath      string
	saveStatePath  string
}

// applyHostSettings maps the command-line filter settings onto the host
// parameters. Values outside the host ranges are clamped.
func applyHostSettings(proc *host.Processor, s filterSettings) {
	proc.Param(host.ParamDelay).Set(s.DelaySeconds)
	proc.Param(host.ParamGain).Set(math.Abs(s.Gain))
	proc.Param(host.ParamInvertGain).Set(boolToFloat(s.Gain < 0))
	proc.Param(host.ParamType).Set(boolToFloat(s.Type == combfilter.FilterIIR))
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func loadStateFile(proc *host.Processor, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open state file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return proc.LoadState(f)
}

func saveStateFile(proc *host.Processor, path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create state file: %w", err)
	}
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	return proc.SaveState(f)
}

// runLive streams the default duplex device through proc until ctx is done
// or the duration elapses.
func runLive(ctx context.Context, proc *host.Processor, opts liveOptions, logger *slog.Logger) error {
	mctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		logger.Debug("malgo", "message", strings.TrimSpace(msg))
	})
	if err != nil {
		return fmt.Errorf("failed to initialize audio context: %w", err)
	}
	defer func() { _ = mctx.Uninit() }()

	if err := proc.Prepare(float64(opts.sampleRate), opts.inputChannels); err != nil {
		return err
	}
	defer proc.Release()

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Duplex)
	deviceConfig.Capture.Format = malgo.FormatF32
	deviceConfig.Capture.Channels = uint32(opts.inputChannels)
	deviceConfig.Playback.Format = malgo.FormatF32
	deviceConfig.Playback.Channels = uint32(opts.outputChannels)
	deviceConfig.SampleRate = uint32(opts.sampleRate)
	deviceConfig.Alsa.NoMMap = 1

	duplex := newDuplexProcessor(proc, opts.inputChannels, opts.outputChannels, initialPeriodFrames)
	device, err := malgo.InitDevice(mctx.Context, deviceConfig, malgo.DeviceCallbacks{
		Data: duplex.onData,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize audio device: %w", err)
	}
	defer device.Uninit()

	if err := device.Start(); err != nil {
		return fmt.Errorf("failed to start audio device: %w", err)
	}
	logger.Info("live filtering started",
		"rate", opts.sampleRate,
		"input_channels", opts.inputChannels,
		"output_channels", opts.outputChannels,
		"delay", proc.Param(host.ParamDelay).Value(),
		"gain", proc.Gain())

	if opts.duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.duration)
		defer cancel()
	}
	<-ctx.Done()

	if err := device.Stop(); err != nil {
		return fmt.Errorf("failed to stop audio device: %w", err)
	}

	logger.Info("live filtering stopped",
		"blocks", duplex.blocks.Load(),
		"errors", duplex.errors.Load())
	return nil
}

// duplexProcessor converts interleaved float32 device buffers to planar
// blocks for the host processor and back.
type duplexProcessor struct {
	proc           *host.Processor
	inputChannels  int
	outputChannels int

	in, out         [][]float32
	inView, outView [][]float32

	blocks atomic.Int64
	errors atomic.Int64
}

func newDuplexProcessor(proc *host.Processor, inputChannels, outputChannels, frames int) *duplexProcessor {
	d := &duplexProcessor{
		proc:           proc,
		inputChannels:  inputChannels,
		outputChannels: outputChannels,
		inView:         make([][]float32, inputChannels),
		outView:        make([][]float32, outputChannels),
	}
	d.grow(frames)
	return d
}

func (d *duplexProcessor) grow(frames int) {
	d.in = make([][]float32, d.inputChannels)
	for ch := range d.in {
		d.in[ch] = make([]float32, frames)
	}
	d.out = make([][]float32, d.outputChannels)
	for ch := range d.out {
		d.out[ch] = make([]float32, frames)
	}
}

// onData is the device data callback. On any failure the output is silenced.
func (d *duplexProcessor) onData(pOutput, pInput []byte, framecount uint32) {
	frames := int(framecount)
	if len(pInput) < frames*d.inputChannels*bytesPerFloat32 ||
		len(pOutput) < frames*d.outputChannels*bytesPerFloat32 {
		d.errors.Add(1)
		clear(pOutput)
		return
	}
	if frames > len(d.in[0]) {
		d.grow(frames)
	}

	for ch := range d.inputChannels {
		buf := d.in[ch][:frames]
		for i := range buf {
			off := (i*d.inputChannels + ch) * bytesPerFloat32
			buf[i] = math.Float32frombits(binary.LittleEndian.Uint32(pInput[off:]))
		}
		d.inView[ch] = buf
	}
	for ch := range d.outputChannels {
		d.outView[ch] = d.out[ch][:frames]
	}

	if err := d.proc.ProcessBlock(d.inView, d.outView); err != nil {
		d.errors.Add(1)
		clear(pOutput)
		return
	}
	d.blocks.Add(1)

	for ch, buf := range d.outView {
		for i, s := range buf {
			off := (i*d.outputChannels + ch) * bytesPerFloat32
			binary.LittleEndian.PutUint32(pOutput[off:], math.Float32bits(s))
		}
	}
}
