// Package host adapts comb filters to a real-time audio host: parameters are
// written from any goroutine and applied to the filters at the start of each
// processed block.
package host

import (
	"errors"
	"fmt"

	combfilter "github.com/tphakala/go-audio-combfilter"
)

// ErrNotPrepared is returned by ProcessBlock before Prepare or after Release.
var ErrNotPrepared = errors.New("processor not prepared")

// maxInputChannels bounds the channel count accepted by Prepare.
const maxInputChannels = 64

// Processor runs one comb filter per input channel with shared host
// parameters. Output channels beyond the input count receive a copy of
// output channel 0.
//
// Prepare, Release and ProcessBlock must be called from the same goroutine
// (the audio thread). Parameters may be changed concurrently.
type Processor struct {
	params  [numParams]*Parameter
	filters []*combfilter.Filter[float32]

	sampleRate float64
}

// NewProcessor returns an unprepared processor with default parameters.
func NewProcessor() *Processor {
	return &Processor{params: newParameterSet()}
}

// Param returns the parameter with the given id, or nil.
func (p *Processor) Param(id ParamID) *Parameter {
	if id < 0 || id >= numParams {
		return nil
	}
	return p.params[id]
}

// Params returns all parameters in id order.
func (p *Processor) Params() []*Parameter {
	return p.params[:]
}

// Prepare allocates one filter per input channel for sampleRate. The delay
// lines are sized for the largest delay the delay parameter accepts.
// Preparing an already prepared processor replaces its filters.
func (p *Processor) Prepare(sampleRate float64, inputChannels int) error {
	if inputChannels < 1 || inputChannels > maxInputChannels {
		return fmt.Errorf("%w: input channels must be in [1, %d], got %d",
			combfilter.ErrInvalidArgument, maxInputChannels, inputChannels)
	}

	filters := make([]*combfilter.Filter[float32], inputChannels)
	for ch := range filters {
		f := combfilter.New[float32]()
		if err := f.Init(p.filterType(), sampleRate, maxDelaySeconds); err != nil {
			return fmt.Errorf("channel %d: %w", ch, err)
		}
		filters[ch] = f
	}

	p.filters = filters
	p.sampleRate = sampleRate
	return p.applyParams()
}

// Release frees the filters. The processor can be prepared again.
func (p *Processor) Release() {
	for _, f := range p.filters {
		_ = f.Reset()
	}
	p.filters = nil
	p.sampleRate = 0
}

// Prepared reports whether the processor has filters.
func (p *Processor) Prepared() bool {
	return p.filters != nil
}

// SampleRate returns the rate passed to Prepare, or 0.
func (p *Processor) SampleRate() float64 {
	return p.sampleRate
}

// InputChannels returns the number of filtered channels, or 0.
func (p *Processor) InputChannels() int {
	return len(p.filters)
}

// ProcessBlock applies the current parameters and filters in into out.
// in and out hold one slice per channel; every out channel must be at least
// as long as out[0], which sets the block length. in may alias out.
func (p *Processor) ProcessBlock(in, out [][]float32) error {
	if !p.Prepared() {
		return ErrNotPrepared
	}
	if len(in) == 0 || len(in) > len(p.filters) {
		return fmt.Errorf("%w: %d input channels, prepared for %d",
			combfilter.ErrInvalidArgument, len(in), len(p.filters))
	}
	if len(out) < len(in) {
		return fmt.Errorf("%w: %d output channels for %d inputs",
			combfilter.ErrInvalidArgument, len(out), len(in))
	}

	n := len(out[0])
	for ch := 1; ch < len(out); ch++ {
		if len(out[ch]) < n {
			return fmt.Errorf("%w: output channel %d holds %d samples, need %d",
				combfilter.ErrInvalidArgument, ch, len(out[ch]), n)
		}
	}

	if err := p.applyParams(); err != nil {
		return err
	}

	for ch := range in {
		if err := p.filters[ch].Process(in[ch], out[ch], n); err != nil {
			return fmt.Errorf("channel %d: %w", ch, err)
		}
	}
	for ch := len(in); ch < len(out); ch++ {
		copy(out[ch][:n], out[0][:n])
	}
	return nil
}

// Gain returns the signed gain the filters receive.
func (p *Processor) Gain() float64 {
	g := p.params[ParamGain].Value()
	if p.params[ParamInvertGain].Bool() {
		return -g
	}
	return g
}

func (p *Processor) filterType() combfilter.FilterType {
	if p.params[ParamType].Bool() {
		return combfilter.FilterIIR
	}
	return combfilter.FilterFIR
}

// applyParams pushes a snapshot of the parameters into every filter.
func (p *Processor) applyParams() error {
	delay := p.params[ParamDelay].Value()
	gain := p.Gain()
	ft := p.filterType()

	for ch, f := range p.filters {
		if err := f.SetFilterType(ft); err != nil {
			return fmt.Errorf("channel %d: %w", ch, err)
		}
		if err := f.SetParam(combfilter.ParamDelayInSec, delay); err != nil {
			return fmt.Errorf("channel %d: %w", ch, err)
		}
		if err := f.SetParam(combfilter.ParamGain, gain); err != nil {
			return fmt.Errorf("channel %d: %w", ch, err)
		}
	}
	return nil
}
