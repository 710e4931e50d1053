package combfilter

import (
	"fmt"
	"math"
	"strings"

	"github.com/tphakala/go-audio-combfilter/internal/engine"
)

// FilterType selects the comb filter variant.
type FilterType int

const (
	// FilterFIR is the feedforward comb: y[n] = x[n] + g*x[n-D].
	FilterFIR = FilterType(engine.KindFIR)

	// FilterIIR is the feedback comb: y[n] = x[n] + g*y[n-D].
	FilterIIR = FilterType(engine.KindIIR)

	numFilterTypes = FilterIIR + 1
)

// Valid reports whether t is FilterFIR or FilterIIR.
func (t FilterType) Valid() bool {
	return engine.Kind(t).Valid()
}

// String returns "fir" or "iir".
func (t FilterType) String() string {
	return engine.Kind(t).String()
}

// ParseFilterType parses "fir" or "iir" (case-insensitive).
func ParseFilterType(s string) (FilterType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "fir", "feedforward":
		return FilterFIR, nil
	case "iir", "feedback":
		return FilterIIR, nil
	default:
		return FilterFIR, fmt.Errorf("%w: unknown filter type %q", ErrInvalidArgument, s)
	}
}

// Param identifies a filter parameter.
type Param int

const (
	// ParamGain is the multiplier applied to the delayed sample, in [-1, 1].
	ParamGain Param = iota

	// ParamDelayInSec is the delay in seconds, in [0, max delay]. A delay
	// that rounds to 0 samples reads the oldest sample in the delay line,
	// so it behaves as a delay of the full line capacity.
	ParamDelayInSec

	numParams
)

// paramLimits describes one parameter: its name, range and reset value.
type paramLimits struct {
	name string
	min  float64
	max  float64
	def  float64
}

// paramTable is the single source of parameter ranges. The delay maximum is
// the default; a Filter substitutes the maximum it was initialized with.
var paramTable = [numParams]paramLimits{
	ParamGain:       {name: "gain", min: minGain, max: maxGain, def: 0},
	ParamDelayInSec: {name: "delayInSec", min: minDelaySeconds, max: DefaultMaxDelaySeconds, def: 0},
}

// Valid reports whether p is a known parameter.
func (p Param) Valid() bool {
	return p >= 0 && p < numParams
}

// String returns the parameter name.
func (p Param) String() string {
	if !p.Valid() {
		return fmt.Sprintf("param(%d)", int(p))
	}
	return paramTable[p].name
}

// ParamRange returns the declared [min, max] range of p with the default
// maximum delay. ok is false for unknown parameters.
func ParamRange(p Param) (lo, hi float64, ok bool) {
	if !p.Valid() {
		return 0, 0, false
	}
	return paramTable[p].min, paramTable[p].max, true
}

// ParamDefault returns the value p takes after Reset.
func ParamDefault(p Param) float64 {
	if !p.Valid() {
		return 0
	}
	return paramTable[p].def
}

// inRange reports lo <= v <= hi. NaN is never in range.
func inRange(v, lo, hi float64) bool {
	return lo <= v && v <= hi
}

// SecondsToSamples converts a duration to whole samples by rounding to the
// nearest integer, halves away from zero. Filters derive every delay and
// delay line length through it.
func SecondsToSamples(seconds, sampleRate float64) int {
	return int(math.Round(seconds * sampleRate))
}
