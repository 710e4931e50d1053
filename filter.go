package combfilter

import (
	"fmt"
	"math"

	"github.com/tphakala/go-audio-combfilter/internal/engine"
	"github.com/tphakala/go-audio-combfilter/internal/simdops"
)

// Float is the type constraint for supported sample types.
type Float interface {
	float32 | float64
}

// Filter is a single-channel comb filter with validated parameters.
//
// A Filter starts uninitialized. Init allocates the delay line and makes the
// filter usable; Reset releases it and restores default parameters. Every
// operation except Init, Reset, GetParam and FilterType returns
// ErrNotInitialized while the filter is uninitialized.
//
// A Filter is not safe for concurrent use. SetParam, SetFilterType and
// Process do not allocate, so they may be called from a real-time audio
// callback.
type Filter[F Float] struct {
	initialized     bool
	sampleRate      float64
	maxDelaySeconds float64
	filterType      FilterType
	params          [numParams]float64

	// core is the active entry of cores. All cores share one delay line.
	core  engine.Core[F]
	cores [numFilterTypes]engine.Core[F]
}

// New returns an uninitialized filter.
func New[F Float]() *Filter[F] {
	f := &Filter[F]{}
	f.restoreDefaults()
	return f
}

// Init allocates a filter of the given type for sampleRate, able to delay up
// to maxDelaySeconds. Calling Init on an initialized filter resets it first.
// On error the filter is left unchanged.
func (f *Filter[F]) Init(filterType FilterType, sampleRate, maxDelaySeconds float64) error {
	if !(sampleRate > 0) || math.IsInf(sampleRate, 0) {
		return fmt.Errorf("%w: sample rate must be positive, got %v", ErrInvalidArgument, sampleRate)
	}
	if !(maxDelaySeconds >= 0) || math.IsInf(maxDelaySeconds, 0) {
		return fmt.Errorf("%w: max delay must be non-negative, got %v", ErrInvalidArgument, maxDelaySeconds)
	}
	if !filterType.Valid() {
		return fmt.Errorf("%w: unknown filter type %d", ErrInvalidArgument, int(filterType))
	}
	if maxDelaySeconds*sampleRate >= maxDelayLineSamples {
		return fmt.Errorf("%w: max delay of %v s at %v Hz exceeds %d samples",
			ErrInvalidArgument, maxDelaySeconds, sampleRate, maxDelayLineSamples)
	}

	capacity := SecondsToSamples(maxDelaySeconds, sampleRate) + delayLineGuardSamples
	core, err := engine.NewCore[F](engine.Kind(filterType), capacity)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
	}

	var cores [numFilterTypes]engine.Core[F]
	cores[filterType] = core
	for t := range numFilterTypes {
		if cores[t] != nil {
			continue
		}
		if cores[t], err = engine.NewCoreOn(engine.Kind(t), core.DelayLine()); err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidArgument, err)
		}
	}

	_ = f.Reset()

	f.sampleRate = sampleRate
	f.maxDelaySeconds = maxDelaySeconds
	f.filterType = filterType
	f.core = core
	f.cores = cores
	f.initialized = true
	return nil
}

// InitDefault is Init with DefaultMaxDelaySeconds.
func (f *Filter[F]) InitDefault(filterType FilterType, sampleRate float64) error {
	return f.Init(filterType, sampleRate, DefaultMaxDelaySeconds)
}

// Reset releases the delay line and restores default parameters. It is
// idempotent and always returns nil.
func (f *Filter[F]) Reset() error {
	if !f.initialized {
		return nil
	}
	f.core = nil
	f.cores = [numFilterTypes]engine.Core[F]{}
	f.initialized = false
	f.restoreDefaults()
	return nil
}

func (f *Filter[F]) restoreDefaults() {
	for p := range numParams {
		f.params[p] = paramTable[p].def
	}
	f.filterType = FilterFIR
	f.sampleRate = 0
	f.maxDelaySeconds = 0
}

// SetParam validates and applies a parameter value. Out-of-range values are
// rejected with ErrInvalidArgument and leave the stored value unchanged.
// A delay change repositions the write cursor relative to the read cursor
// and takes effect at the next processed sample.
func (f *Filter[F]) SetParam(p Param, value float64) error {
	if !f.initialized {
		return ErrNotInitialized
	}
	lo, hi, ok := f.Range(p)
	if !ok {
		return fmt.Errorf("%w: unknown parameter %d", ErrInvalidArgument, int(p))
	}
	if !inRange(value, lo, hi) {
		return fmt.Errorf("%w: %s=%v outside [%v, %v]", ErrInvalidArgument, p, value, lo, hi)
	}

	switch p {
	case ParamGain:
		f.core.SetGain(F(value))
	case ParamDelayInSec:
		f.core.SetDelaySamples(SecondsToSamples(value, f.sampleRate))
	}
	f.params[p] = value
	return nil
}

// GetParam returns the last accepted value of p, or 0 when the filter is
// uninitialized or p is unknown.
func (f *Filter[F]) GetParam(p Param) float64 {
	if !f.initialized || !p.Valid() {
		return 0
	}
	return f.params[p]
}

// Range returns the accepted [lo, hi] range of p for this filter. The delay
// maximum is the one passed to Init.
func (f *Filter[F]) Range(p Param) (lo, hi float64, ok bool) {
	lo, hi, ok = ParamRange(p)
	if ok && p == ParamDelayInSec && f.initialized {
		hi = f.maxDelaySeconds
	}
	return lo, hi, ok
}

// SetFilterType switches the recurrence. Selecting the active type is a
// no-op. Selecting the other type clears the delay line and activates the
// core of that type, while gain and delay keep their values. Nothing is
// allocated.
func (f *Filter[F]) SetFilterType(t FilterType) error {
	if !f.initialized {
		return ErrNotInitialized
	}
	if !t.Valid() {
		return fmt.Errorf("%w: unknown filter type %d", ErrInvalidArgument, int(t))
	}
	if t == f.filterType {
		return nil
	}

	core := f.cores[t]
	core.DelayLine().Clear()
	core.SetGain(F(f.params[ParamGain]))
	core.SetDelaySamples(SecondsToSamples(f.params[ParamDelayInSec], f.sampleRate))

	f.core = core
	f.filterType = t
	return nil
}

// FilterType returns the active filter type (FilterFIR when uninitialized).
func (f *Filter[F]) FilterType() FilterType {
	return f.filterType
}

// Process filters the first numSamples samples of input into output.
// input and output may be the same slice. On error nothing is written.
func (f *Filter[F]) Process(input, output []F, numSamples int) error {
	if !f.initialized {
		return ErrNotInitialized
	}
	if input == nil || output == nil {
		return ErrMemory
	}
	if numSamples < 0 {
		return fmt.Errorf("%w: negative sample count %d", ErrInvalidArgument, numSamples)
	}
	if len(input) < numSamples || len(output) < numSamples {
		return fmt.Errorf("%w: %d samples requested, buffers hold %d in / %d out",
			ErrInvalidArgument, numSamples, len(input), len(output))
	}

	f.core.Process(input[:numSamples], output[:numSamples])
	return nil
}

// IsInitialized reports whether Init has succeeded since the last Reset.
func (f *Filter[F]) IsInitialized() bool {
	return f.initialized
}

// SampleRate returns the sample rate passed to Init, or 0.
func (f *Filter[F]) SampleRate() float64 {
	return f.sampleRate
}

// MaxDelaySeconds returns the maximum delay passed to Init, or 0.
func (f *Filter[F]) MaxDelaySeconds() float64 {
	return f.maxDelaySeconds
}

// DelaySamples returns the current delay in samples, or 0.
func (f *Filter[F]) DelaySamples() int {
	if !f.initialized {
		return 0
	}
	return f.core.DelaySamples()
}

// Info describes an initialized filter.
type Info struct {
	// FilterType is the active recurrence.
	FilterType FilterType

	// SampleRate is the rate passed to Init.
	SampleRate float64

	// Gain is the multiplier applied to the delayed sample.
	Gain float64

	// DelaySamples is the current delay in samples.
	DelaySamples int

	// CapacitySamples is the size of the delay line.
	CapacitySamples int

	// MemoryUsage is the approximate delay line size in bytes.
	MemoryUsage int64

	// SIMDType describes the vector instruction set used by the helpers.
	SIMDType string
}

// GetInfo returns information about the filter. The zero Info is returned
// for an uninitialized filter.
func (f *Filter[F]) GetInfo() Info {
	if !f.initialized {
		return Info{}
	}
	return Info{
		FilterType:      f.filterType,
		SampleRate:      f.sampleRate,
		Gain:            float64(f.core.Gain()),
		DelaySamples:    f.core.DelaySamples(),
		CapacitySamples: f.core.DelayLine().Capacity(),
		MemoryUsage:     f.core.MemoryUsage(),
		SIMDType:        simdops.Info(),
	}
}
