package host

import (
	"fmt"
	"math"
	"sync/atomic"
)

// ParamID identifies a host parameter.
type ParamID int

const (
	// ParamDelay is the delay in seconds.
	ParamDelay ParamID = iota

	// ParamGain is the gain magnitude; its sign comes from ParamInvertGain.
	ParamGain

	// ParamType selects the recurrence: 0 for FIR, 1 for IIR.
	ParamType

	// ParamInvertGain negates the gain when on.
	ParamInvertGain

	numParams
)

// Host parameter ranges and defaults.
const (
	minDelaySeconds     = 0.01
	maxDelaySeconds     = 0.1
	defaultDelaySeconds = 0.05

	minGain     = 0.0
	maxGain     = 1.0
	defaultGain = 0.5

	// boolThreshold splits a normalized switch into off and on.
	boolThreshold = 0.5
)

// Parameter is a host-automatable value with a fixed range. The value is
// stored atomically, so a control thread may set it while the audio thread
// reads it.
type Parameter struct {
	ID        ParamID
	Name      string
	Unit      string
	Min       float64
	Max       float64
	Default   float64
	StepCount int

	// value holds the float64 bits of the plain value.
	value atomic.Uint64
}

func newParameter(id ParamID, name, unit string, lo, hi, def float64, steps int) *Parameter {
	p := &Parameter{
		ID:        id,
		Name:      name,
		Unit:      unit,
		Min:       lo,
		Max:       hi,
		Default:   def,
		StepCount: steps,
	}
	p.value.Store(math.Float64bits(def))
	return p
}

// Value returns the current plain value.
func (p *Parameter) Value() float64 {
	return math.Float64frombits(p.value.Load())
}

// Set stores a plain value, clamped to [Min, Max] and snapped to a step for
// discrete parameters. NaN is ignored.
func (p *Parameter) Set(v float64) {
	if math.IsNaN(v) {
		return
	}
	v = min(max(v, p.Min), p.Max)
	if p.StepCount > 0 {
		step := (p.Max - p.Min) / float64(p.StepCount)
		v = p.Min + math.Round((v-p.Min)/step)*step
	}
	p.value.Store(math.Float64bits(v))
}

// Normalized returns the value mapped to [0, 1].
func (p *Parameter) Normalized() float64 {
	if p.Max <= p.Min {
		return 0
	}
	return (p.Value() - p.Min) / (p.Max - p.Min)
}

// SetNormalized sets the value from a [0, 1] fraction of the range.
func (p *Parameter) SetNormalized(n float64) {
	n = min(max(n, 0), 1)
	p.Set(p.Min + n*(p.Max-p.Min))
}

// Bool reports whether a switch parameter is on.
func (p *Parameter) Bool() bool {
	return p.Normalized() >= boolThreshold
}

// Reset restores the default value.
func (p *Parameter) Reset() {
	p.value.Store(math.Float64bits(p.Default))
}

// String formats the value with its unit.
func (p *Parameter) String() string {
	if p.StepCount > 0 {
		return fmt.Sprintf("%s=%.0f%s", p.Name, p.Value(), p.Unit)
	}
	return fmt.Sprintf("%s=%.3f%s", p.Name, p.Value(), p.Unit)
}

// newParameterSet builds the host parameters in ParamID order.
func newParameterSet() [numParams]*Parameter {
	return [numParams]*Parameter{
		ParamDelay:      newParameter(ParamDelay, "delay", "s", minDelaySeconds, maxDelaySeconds, defaultDelaySeconds, 0),
		ParamGain:       newParameter(ParamGain, "gain", "", minGain, maxGain, defaultGain, 0),
		ParamType:       newParameter(ParamType, "type", "", 0, 1, 0, 1),
		ParamInvertGain: newParameter(ParamInvertGain, "invert gain", "", 0, 1, 0, 1),
	}
}
