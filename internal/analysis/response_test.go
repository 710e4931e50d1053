package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	combfilter "github.com/tphakala/go-audio-combfilter"
	"github.com/tphakala/go-audio-combfilter/internal/testutil"
)

const (
	testRate   = 1000.0
	testDelay  = 0.01 // 10 samples
	testLength = 1000 // 1 Hz bins
)

func TestImpulseResponse_FIR(t *testing.T) {
	ir, err := ImpulseResponse(Settings{
		FilterType:   combfilter.FilterFIR,
		SampleRate:   testRate,
		Gain:         -0.5,
		DelaySeconds: testDelay,
	}, 32)
	require.NoError(t, err)

	want := make([]float64, 32)
	want[0] = 1
	want[10] = -0.5
	assert.InDeltaSlice(t, want, ir, 0)
}

func TestImpulseResponse_Errors(t *testing.T) {
	_, err := ImpulseResponse(Settings{SampleRate: testRate}, 0)
	require.ErrorIs(t, err, combfilter.ErrInvalidArgument)

	_, err = ImpulseResponse(Settings{SampleRate: 0}, 16)
	require.ErrorIs(t, err, combfilter.ErrInvalidArgument)

	_, err = ImpulseResponse(Settings{SampleRate: testRate, Gain: 1.5}, 16)
	require.ErrorIs(t, err, combfilter.ErrInvalidArgument)

	_, err = ImpulseResponse(Settings{SampleRate: testRate, DelaySeconds: 20}, 16)
	require.ErrorIs(t, err, combfilter.ErrInvalidArgument)

	_, err = MagnitudeResponse(nil, testRate)
	require.ErrorIs(t, err, combfilter.ErrInvalidArgument)

	_, err = MagnitudeResponse([]float64{1}, 0)
	require.ErrorIs(t, err, combfilter.ErrInvalidArgument)
}

// TestFIR_Notches verifies that a negative-gain feedforward comb has notches
// at multiples of fs/D and peaks halfway between.
func TestFIR_Notches(t *testing.T) {
	s := Settings{
		FilterType:   combfilter.FilterFIR,
		SampleRate:   testRate,
		Gain:         -1,
		DelaySeconds: testDelay,
	}
	r, err := Measure(s, testLength)
	require.NoError(t, err)
	require.Len(t, r.Magnitude, testLength/2+1)
	assert.InDelta(t, 1.0, r.Frequencies[1], 1e-12)
	assert.InDelta(t, testRate/2, r.Frequencies[len(r.Frequencies)-1], 1e-9)

	for _, f := range []float64{0, 100, 200, 300, 400, 500} {
		assert.InDelta(t, 0.0, r.At(f), 1e-9, "notch at %v Hz", f)
	}
	for _, f := range []float64{50, 150, 250, 350, 450} {
		assert.InDelta(t, 2.0, r.At(f), 1e-9, "peak at %v Hz", f)
	}

	freq, mag := r.Peak()
	assert.InDelta(t, 2.0, mag, 1e-9)
	assert.InDelta(t, 0.0, math.Remainder(freq-50, 100), 1e-9)

	freq, mag = r.Notch()
	assert.InDelta(t, 0.0, mag, 1e-9)
	assert.InDelta(t, 0.0, math.Remainder(freq, 100), 1e-9)

	assert.InDelta(t, 2.0, Energy([]float64{1, 0, -1}), 0)
}

func TestMeasure_MatchesTheory(t *testing.T) {
	tests := []struct {
		name string
		s    Settings
	}{
		{"fir positive", Settings{combfilter.FilterFIR, testRate, 0.7, testDelay}},
		{"fir negative", Settings{combfilter.FilterFIR, testRate, -0.3, 0.025}},
		{"iir positive", Settings{combfilter.FilterIIR, testRate, 0.5, testDelay}},
		{"iir negative", Settings{combfilter.FilterIIR, testRate, -0.6, 0.02}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := Measure(tt.s, testLength)
			require.NoError(t, err)
			for i, f := range r.Frequencies {
				require.InDelta(t, Theoretical(tt.s, f), r.Magnitude[i], 1e-6, "bin %d (%v Hz)", i, f)
			}
		})
	}
}

func TestIIR_PeakAndNotch(t *testing.T) {
	s := Settings{
		FilterType:   combfilter.FilterIIR,
		SampleRate:   testRate,
		Gain:         0.5,
		DelaySeconds: testDelay,
	}
	r, err := Measure(s, testLength)
	require.NoError(t, err)

	freq, mag := r.Peak()
	testutil.AssertInRange(t, freq, 0, testRate/2)
	assert.InDelta(t, 0.0, math.Remainder(freq, 100), 1e-9)
	testutil.AssertRelativeError(t, 2.0, mag, 1e-6)

	freq, mag = r.Notch()
	testutil.AssertInRange(t, freq, 0, testRate/2)
	assert.InDelta(t, 0.0, math.Remainder(freq-50, 100), 1e-9)
	testutil.AssertRelativeError(t, 1/1.5, mag, 1e-6)
}

// TestTheoretical_RoundsDelayLikeFilter uses a delay between two whole
// samples: the ideal response and the measured one must agree on where it
// lands.
func TestTheoretical_RoundsDelayLikeFilter(t *testing.T) {
	for _, seconds := range []float64{0.0104, 0.0106} {
		s := Settings{FilterType: combfilter.FilterFIR, SampleRate: testRate, Gain: 0.8, DelaySeconds: seconds}
		whole := s
		whole.DelaySeconds = float64(combfilter.SecondsToSamples(seconds, testRate)) / testRate

		r, err := Measure(s, testLength)
		require.NoError(t, err)
		for _, f := range []float64{37, 120, 333} {
			assert.InDelta(t, Theoretical(whole, f), Theoretical(s, f), 1e-12, "%v s at %v Hz", seconds, f)
			assert.InDelta(t, Theoretical(s, f), r.At(f), 1e-6, "%v s at %v Hz", seconds, f)
		}
	}
}

func TestTheoretical_UnityFeedback(t *testing.T) {
	s := Settings{FilterType: combfilter.FilterIIR, SampleRate: testRate, Gain: 1, DelaySeconds: testDelay}
	assert.True(t, math.IsInf(Theoretical(s, 0), 1))
}

func TestMagnitudeDB(t *testing.T) {
	r := Response{
		Frequencies: []float64{0, 1, 2},
		Magnitude:   []float64{1, 2, 0},
	}
	db := r.MagnitudeDB()
	assert.InDelta(t, 0.0, db[0], 1e-12)
	assert.InDelta(t, 6.0206, db[1], 1e-4)
	assert.InDelta(t, -240.0, db[2], 1e-9)
}

func TestResponse_Empty(t *testing.T) {
	var r Response
	f, m := r.Peak()
	assert.Zero(t, f)
	assert.Zero(t, m)
	f, m = r.Notch()
	assert.Zero(t, f)
	assert.Zero(t, m)
	assert.Zero(t, r.At(100))

	single := Response{Frequencies: []float64{0}, Magnitude: []float64{3}}
	assert.InDelta(t, 3.0, single.At(100), 0)
}
