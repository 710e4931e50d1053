package combfilter

import (
	"github.com/tphakala/go-audio-combfilter/internal/simdops"
)

// Common sample rates.
const (
	// RateCD is the CD quality sample rate (Red Book standard).
	RateCD = 44100

	// RateDAT is the DAT/DVD sample rate.
	RateDAT = 48000

	// RateHiRes96 is the high-resolution 2x DAT sample rate.
	RateHiRes96 = 96000
)

// NewFIR returns a feedforward filter initialized with the default maximum
// delay and the given gain and delay applied.
func NewFIR[F Float](sampleRate, gain, delaySeconds float64) (*Filter[F], error) {
	return newConfigured[F](FilterFIR, sampleRate, gain, delaySeconds)
}

// NewIIR returns a feedback filter initialized with the default maximum
// delay and the given gain and delay applied.
func NewIIR[F Float](sampleRate, gain, delaySeconds float64) (*Filter[F], error) {
	return newConfigured[F](FilterIIR, sampleRate, gain, delaySeconds)
}

func newConfigured[F Float](t FilterType, sampleRate, gain, delaySeconds float64) (*Filter[F], error) {
	f := New[F]()
	if err := f.InitDefault(t, sampleRate); err != nil {
		return nil, err
	}
	if err := f.SetParam(ParamGain, gain); err != nil {
		return nil, err
	}
	if err := f.SetParam(ParamDelayInSec, delaySeconds); err != nil {
		return nil, err
	}
	return f, nil
}

// ApplyMono is a convenience function for one-shot mono filtering.
// It creates a filter, processes the whole input and returns a new slice.
func ApplyMono[F Float](input []F, t FilterType, sampleRate, gain, delaySeconds float64) ([]F, error) {
	f, err := newConfigured[F](t, sampleRate, gain, delaySeconds)
	if err != nil {
		return nil, err
	}

	output := make([]F, len(input))
	if err := f.Process(input, output, len(input)); err != nil {
		return nil, err
	}
	return output, nil
}

// ApplyStereo is a convenience function for one-shot stereo filtering.
// Each channel gets its own filter with identical settings.
func ApplyStereo[F Float](left, right []F, t FilterType, sampleRate, gain, delaySeconds float64) (leftOut, rightOut []F, err error) {
	leftOut, err = ApplyMono(left, t, sampleRate, gain, delaySeconds)
	if err != nil {
		return nil, nil, err
	}

	rightOut, err = ApplyMono(right, t, sampleRate, gain, delaySeconds)
	if err != nil {
		return nil, nil, err
	}

	return leftOut, rightOut, nil
}

// InterleaveToStereo converts two mono channels to interleaved stereo.
// Output format: [L0, R0, L1, R1, L2, R2, ...]
func InterleaveToStereo[F Float](left, right []F) []F {
	minLen := min(len(left), len(right))
	result := make([]F, minLen*stereoChannels)
	if minLen > 0 {
		simdops.For[F]().Interleave2(result, left[:minLen], right[:minLen])
	}
	return result
}

// DeinterleaveFromStereo converts interleaved stereo to two mono channels.
// Input format: [L0, R0, L1, R1, L2, R2, ...]
func DeinterleaveFromStereo[F Float](interleaved []F) (left, right []F) {
	numSamples := len(interleaved) / stereoChannels
	left = make([]F, numSamples)
	right = make([]F, numSamples)
	for i := range numSamples {
		left[i] = interleaved[i*stereoChannels]
		right[i] = interleaved[i*stereoChannels+1]
	}
	return left, right
}
