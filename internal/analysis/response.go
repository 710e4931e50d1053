// Package analysis measures the frequency response of configured comb
// filters.
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/floats"

	combfilter "github.com/tphakala/go-audio-combfilter"
	"github.com/tphakala/go-audio-combfilter/internal/signal"
	"github.com/tphakala/go-audio-combfilter/internal/simdops"
)

// minMagnitude floors magnitudes before conversion to dB.
const minMagnitude = 1e-12

// Settings describes the filter under analysis.
type Settings struct {
	FilterType   combfilter.FilterType
	SampleRate   float64
	Gain         float64
	DelaySeconds float64
}

// ImpulseResponse runs a unit impulse of length samples through a freshly
// initialized filter with the default maximum delay.
func ImpulseResponse(s Settings, length int) ([]float64, error) {
	if length < 1 {
		return nil, fmt.Errorf("%w: impulse length must be positive", combfilter.ErrInvalidArgument)
	}

	f := combfilter.New[float64]()
	if err := f.InitDefault(s.FilterType, s.SampleRate); err != nil {
		return nil, err
	}
	if err := f.SetParam(combfilter.ParamGain, s.Gain); err != nil {
		return nil, err
	}
	if err := f.SetParam(combfilter.ParamDelayInSec, s.DelaySeconds); err != nil {
		return nil, err
	}

	impulse := signal.Impulse[float64](length)
	if err := f.Process(impulse, impulse, length); err != nil {
		return nil, err
	}
	return impulse, nil
}

// Response is a sampled magnitude response from DC to Nyquist.
type Response struct {
	// Frequencies holds the bin centers in Hz.
	Frequencies []float64

	// Magnitude holds the linear magnitude per bin.
	Magnitude []float64
}

// MagnitudeResponse computes the magnitude spectrum of an impulse response.
func MagnitudeResponse(impulse []float64, sampleRate float64) (Response, error) {
	if len(impulse) == 0 {
		return Response{}, fmt.Errorf("%w: empty impulse response", combfilter.ErrInvalidArgument)
	}
	if !(sampleRate > 0) {
		return Response{}, fmt.Errorf("%w: sample rate must be positive", combfilter.ErrInvalidArgument)
	}

	fft := fourier.NewFFT(len(impulse))
	coeffs := fft.Coefficients(nil, impulse)

	r := Response{
		Frequencies: make([]float64, len(coeffs)),
		Magnitude:   make([]float64, len(coeffs)),
	}
	for i, c := range coeffs {
		r.Frequencies[i] = fft.Freq(i) * sampleRate
		r.Magnitude[i] = cmplx.Abs(c)
	}
	return r, nil
}

// Measure is ImpulseResponse followed by MagnitudeResponse.
func Measure(s Settings, length int) (Response, error) {
	ir, err := ImpulseResponse(s, length)
	if err != nil {
		return Response{}, err
	}
	return MagnitudeResponse(ir, s.SampleRate)
}

// MagnitudeDB returns the magnitude in decibels.
func (r Response) MagnitudeDB() []float64 {
	db := make([]float64, len(r.Magnitude))
	for i, m := range r.Magnitude {
		db[i] = ToDB(m)
	}
	return db
}

// ToDB converts a linear magnitude to decibels, flooring near-zero values.
func ToDB(mag float64) float64 {
	return 20 * math.Log10(max(mag, minMagnitude))
}

// Peak returns the frequency and magnitude of the largest bin.
func (r Response) Peak() (freq, mag float64) {
	if len(r.Magnitude) == 0 {
		return 0, 0
	}
	i := floats.MaxIdx(r.Magnitude)
	return r.Frequencies[i], r.Magnitude[i]
}

// Notch returns the frequency and magnitude of the smallest bin.
func (r Response) Notch() (freq, mag float64) {
	if len(r.Magnitude) == 0 {
		return 0, 0
	}
	i := floats.MinIdx(r.Magnitude)
	return r.Frequencies[i], r.Magnitude[i]
}

// At returns the magnitude of the bin nearest to freq.
func (r Response) At(freq float64) float64 {
	if len(r.Frequencies) < 2 {
		if len(r.Magnitude) == 1 {
			return r.Magnitude[0]
		}
		return 0
	}
	step := r.Frequencies[1] - r.Frequencies[0]
	i := int(math.Round(freq / step))
	i = min(max(i, 0), len(r.Magnitude)-1)
	return r.Magnitude[i]
}

// Theoretical returns the ideal magnitude of the comb at freq Hz:
// |1 + g*z^-D| for FIR and 1/|1 - g*z^-D| for IIR, with z = e^(j*2*pi*freq/fs).
func Theoretical(s Settings, freq float64) float64 {
	d := float64(combfilter.SecondsToSamples(s.DelaySeconds, s.SampleRate))
	zd := cmplx.Exp(complex(0, -2*math.Pi*freq*d/s.SampleRate))
	g := complex(s.Gain, 0)

	if s.FilterType == combfilter.FilterIIR {
		den := cmplx.Abs(1 - g*zd)
		if den == 0 {
			return math.Inf(1)
		}
		return 1 / den
	}
	return cmplx.Abs(1 + g*zd)
}

// Energy returns the energy of an impulse response.
func Energy(impulse []float64) float64 {
	return simdops.Energy(impulse)
}
