package host

import (
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	combfilter "github.com/tphakala/go-audio-combfilter"
)

// State is the persisted parameter set.
type State struct {
	Delay      float64 `yaml:"delay"`
	Gain       float64 `yaml:"gain"`
	Type       string  `yaml:"type"`
	InvertGain bool    `yaml:"invert_gain"`
}

// State captures the current parameter values.
func (p *Processor) State() State {
	return State{
		Delay:      p.params[ParamDelay].Value(),
		Gain:       p.params[ParamGain].Value(),
		Type:       p.filterType().String(),
		InvertGain: p.params[ParamInvertGain].Bool(),
	}
}

// ApplyState sets every parameter from s. Numeric values are clamped to
// their ranges; an unknown type is rejected and nothing is changed.
func (p *Processor) ApplyState(s State) error {
	ft, err := combfilter.ParseFilterType(s.Type)
	if err != nil {
		return err
	}

	p.params[ParamDelay].Set(s.Delay)
	p.params[ParamGain].Set(s.Gain)
	p.params[ParamType].Set(float64(ft))
	p.params[ParamInvertGain].Set(boolValue(s.InvertGain))
	return nil
}

// SaveState writes the parameters as YAML.
func (p *Processor) SaveState(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	if err := enc.Encode(p.State()); err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode state: %w", err)
	}
	return nil
}

// LoadState reads parameters written by SaveState. Missing keys keep their
// current values.
func (p *Processor) LoadState(r io.Reader) error {
	s := p.State()
	if err := yaml.NewDecoder(r).Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("failed to decode state: %w", err)
	}
	return p.ApplyState(s)
}

// ResetParams restores every parameter to its default.
func (p *Processor) ResetParams() {
	for _, param := range p.params {
		param.Reset()
	}
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
