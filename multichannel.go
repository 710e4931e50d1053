package combfilter

import (
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Config describes a multi-channel filter bank with identical settings on
// every channel.
type Config struct {
	// SampleRate is the sample rate of the audio in Hz.
	SampleRate float64

	// Channels is the number of independent channels.
	Channels int

	// FilterType selects FIR or IIR for all channels.
	FilterType FilterType

	// Gain is applied to every channel, in [-1, 1].
	Gain float64

	// DelaySeconds is applied to every channel, in [0, MaxDelaySeconds].
	DelaySeconds float64

	// MaxDelaySeconds sizes the delay lines.
	// Set to 0 to use DefaultMaxDelaySeconds.
	MaxDelaySeconds float64

	// EnableParallel processes channels concurrently, one goroutine per
	// channel. Each channel owns its filter, so results are identical to
	// sequential processing.
	EnableParallel bool
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !(c.SampleRate > 0) {
		return fmt.Errorf("%w: sample rate must be positive", ErrInvalidArgument)
	}

	if c.Channels < 1 {
		return fmt.Errorf("%w: channels must be at least 1", ErrInvalidArgument)
	}

	if c.Channels > maxChannels {
		return fmt.Errorf("%w: too many channels (max %d)", ErrInvalidArgument, maxChannels)
	}

	if !c.FilterType.Valid() {
		return fmt.Errorf("%w: unknown filter type %d", ErrInvalidArgument, int(c.FilterType))
	}

	if c.MaxDelaySeconds < 0 {
		return fmt.Errorf("%w: max delay must be non-negative", ErrInvalidArgument)
	}

	if !inRange(c.Gain, minGain, maxGain) {
		return fmt.Errorf("%w: gain must be in [%v, %v]", ErrInvalidArgument, minGain, maxGain)
	}

	if !inRange(c.DelaySeconds, minDelaySeconds, c.maxDelay()) {
		return fmt.Errorf("%w: delay must be in [%v, %v] seconds", ErrInvalidArgument, minDelaySeconds, c.maxDelay())
	}

	return nil
}

func (c *Config) maxDelay() float64 {
	if c.MaxDelaySeconds == 0 {
		return DefaultMaxDelaySeconds
	}
	return c.MaxDelaySeconds
}

// MultiChannel holds one Filter per channel.
type MultiChannel[F Float] struct {
	config  Config
	filters []*Filter[F]
}

// NewMultiChannel creates and initializes one filter per channel and applies
// the configured gain and delay.
func NewMultiChannel[F Float](config *Config) (*MultiChannel[F], error) {
	if config == nil {
		return nil, fmt.Errorf("%w: config is nil", ErrInvalidArgument)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	m := &MultiChannel[F]{
		config:  *config,
		filters: make([]*Filter[F], config.Channels),
	}
	m.config.MaxDelaySeconds = config.maxDelay()

	for ch := range m.filters {
		f := New[F]()
		if err := f.Init(config.FilterType, config.SampleRate, m.config.MaxDelaySeconds); err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
		if err := f.SetParam(ParamGain, config.Gain); err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
		if err := f.SetParam(ParamDelayInSec, config.DelaySeconds); err != nil {
			return nil, fmt.Errorf("channel %d: %w", ch, err)
		}
		m.filters[ch] = f
	}

	return m, nil
}

// Channels returns the number of channels.
func (m *MultiChannel[F]) Channels() int {
	return len(m.filters)
}

// Channel returns the filter of channel ch, or nil if ch is out of range.
func (m *MultiChannel[F]) Channel(ch int) *Filter[F] {
	if ch < 0 || ch >= len(m.filters) {
		return nil
	}
	return m.filters[ch]
}

// SetParam applies a parameter to every channel. It stops at the first
// failing channel; since all channels share one configuration, a value
// rejected by one is rejected by all.
func (m *MultiChannel[F]) SetParam(p Param, value float64) error {
	for ch, f := range m.filters {
		if err := f.SetParam(p, value); err != nil {
			return fmt.Errorf("channel %d: %w", ch, err)
		}
	}
	return nil
}

// SetFilterType switches the filter type of every channel.
func (m *MultiChannel[F]) SetFilterType(t FilterType) error {
	for ch, f := range m.filters {
		if err := f.SetFilterType(t); err != nil {
			return fmt.Errorf("channel %d: %w", ch, err)
		}
	}
	return nil
}

// Process filters numSamples samples of every channel.
// When EnableParallel is true in config, channels are processed concurrently.
// Otherwise, channels are processed sequentially.
func (m *MultiChannel[F]) Process(input, output [][]F, numSamples int) error {
	if len(input) != len(m.filters) || len(output) != len(m.filters) {
		return fmt.Errorf("%w: expected %d channels, got %d in / %d out",
			ErrInvalidArgument, len(m.filters), len(input), len(output))
	}

	// Sequential processing (default or when parallel disabled)
	if !m.config.EnableParallel || len(input) <= 1 {
		for ch, f := range m.filters {
			if err := f.Process(input[ch], output[ch], numSamples); err != nil {
				return fmt.Errorf("channel %d: %w", ch, err)
			}
		}
		return nil
	}

	// Parallel processing: one goroutine per channel, first error wins
	var g errgroup.Group
	for ch, f := range m.filters {
		g.Go(func() error {
			if err := f.Process(input[ch], output[ch], numSamples); err != nil {
				return fmt.Errorf("channel %d: %w", ch, err)
			}
			return nil
		})
	}
	return g.Wait()
}

// Reset resets every channel. The bank cannot be used afterwards.
func (m *MultiChannel[F]) Reset() {
	for _, f := range m.filters {
		_ = f.Reset()
	}
}
