// Package signal synthesizes test signals for the comb filter: sines,
// DC-offset sines, impulses and silence.
package signal

import (
	"math"

	"github.com/tphakala/go-audio-combfilter/internal/simdops"
)

// Sine returns n samples of amplitude*sin(2*pi*freq*t) at sampleRate.
func Sine[F simdops.Float](freq, sampleRate, amplitude float64, n int) []F {
	out := make([]F, n)
	if n == 0 {
		return out
	}

	omega := 2 * math.Pi * freq / sampleRate
	for i := range out {
		out[i] = F(math.Sin(omega * float64(i)))
	}
	if amplitude != 1 {
		simdops.ScaleInPlace(out, F(amplitude))
	}
	return out
}

// OffsetSine returns a sine shifted by offset, e.g. offset >= amplitude
// gives a strictly non-negative signal.
func OffsetSine[F simdops.Float](freq, sampleRate, amplitude, offset float64, n int) []F {
	out := Sine[F](freq, sampleRate, amplitude, n)
	for i := range out {
		out[i] += F(offset)
	}
	return out
}

// Impulse returns a unit impulse of length n (1 at index 0).
func Impulse[F simdops.Float](n int) []F {
	out := make([]F, n)
	if n > 0 {
		out[0] = 1
	}
	return out
}

// Zeros returns n samples of silence.
func Zeros[F simdops.Float](n int) []F {
	return make([]F, n)
}

// PeriodSamples returns the period of freq at sampleRate in whole samples,
// rounded to nearest.
func PeriodSamples(freq, sampleRate float64) int {
	return int(math.Round(sampleRate / freq))
}
