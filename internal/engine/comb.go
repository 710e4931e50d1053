// Package engine implements the feedforward (FIR) and feedback (IIR) comb
// filter recurrences on top of a delay line.
package engine

import (
	"fmt"

	"github.com/tphakala/go-audio-combfilter/internal/delayline"
	"github.com/tphakala/go-audio-combfilter/internal/simdops"
)

// Kind selects the comb filter recurrence.
type Kind int

const (
	// KindFIR feeds the delay line from the input: y[n] = x[n] + g*x[n-D].
	KindFIR Kind = iota

	// KindIIR feeds the delay line from the output: y[n] = x[n] + g*y[n-D].
	KindIIR

	numKinds
)

// Valid reports whether k names one of the supported recurrences.
func (k Kind) Valid() bool {
	return k >= KindFIR && k < numKinds
}

// String returns the short lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindFIR:
		return "fir"
	case KindIIR:
		return "iir"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Core is a comb filter with a fixed recurrence. Exactly two implementations
// exist, selected by NewCore.
//
// A Core is not safe for concurrent use. Process, SetGain and
// SetDelaySamples never allocate.
type Core[F simdops.Float] interface {
	// Kind returns the recurrence implemented by this core.
	Kind() Kind

	// Process filters len(input) samples into output. output must be at
	// least as long as input and may alias it. State carries over between
	// calls, so splitting a signal into consecutive blocks produces the
	// same result as a single call.
	Process(input, output []F)

	// SetGain sets the multiplier applied to the delayed sample.
	SetGain(g F)

	// Gain returns the current gain.
	Gain() F

	// SetDelaySamples repositions the write cursor n samples ahead of the
	// read cursor. n must be below the delay line capacity. The delay line
	// contents are left untouched.
	SetDelaySamples(n int)

	// DelaySamples returns the distance between the write and read cursors.
	DelaySamples() int

	// DelayLine exposes the underlying delay line, which may be shared with
	// a core of the other kind.
	DelayLine() *delayline.DelayLine[F]

	// MemoryUsage returns the approximate size of the delay line in bytes.
	MemoryUsage() int64
}

// NewCore creates a core of the given kind with a zeroed delay line of
// capacity samples.
func NewCore[F simdops.Float](kind Kind, capacity int) (Core[F], error) {
	line, err := delayline.New[F](capacity)
	if err != nil {
		return nil, err
	}
	return NewCoreOn(kind, line)
}

// NewCoreOn creates a core of the given kind around an existing delay line.
// Contents and cursors are left as they are. Two cores may share one line as
// long as only one of them processes at a time.
func NewCoreOn[F simdops.Float](kind Kind, line *delayline.DelayLine[F]) (Core[F], error) {
	if line == nil {
		return nil, fmt.Errorf("nil delay line for %v core", kind)
	}

	base := comb[F]{line: line}
	switch kind {
	case KindFIR:
		return &firCore[F]{comb: base}, nil
	case KindIIR:
		return &iirCore[F]{comb: base}, nil
	default:
		return nil, fmt.Errorf("unsupported comb filter kind: %v", kind)
	}
}

// comb holds the state shared by both recurrences.
type comb[F simdops.Float] struct {
	line *delayline.DelayLine[F]
	gain F
}

func (c *comb[F]) SetGain(g F) {
	c.gain = g
}

func (c *comb[F]) Gain() F {
	return c.gain
}

func (c *comb[F]) SetDelaySamples(n int) {
	c.line.SetWriteCursor(c.line.ReadCursor() + n)
}

// The cursor distance equals the delay since both cursors advance once per
// sample.
func (c *comb[F]) DelaySamples() int {
	return c.line.Distance()
}

func (c *comb[F]) DelayLine() *delayline.DelayLine[F] {
	return c.line
}

func (c *comb[F]) MemoryUsage() int64 {
	var zero F
	bytesPerElement := int64(bytesPerFloat32)
	if _, ok := any(zero).(float64); ok {
		bytesPerElement = bytesPerFloat64
	}
	return int64(c.line.Capacity()) * bytesPerElement
}

// firCore writes the input sample back into the delay line.
type firCore[F simdops.Float] struct {
	comb[F]
}

func (c *firCore[F]) Kind() Kind {
	return KindFIR
}

func (c *firCore[F]) Process(input, output []F) {
	g := c.gain
	line := c.line
	output = output[:len(input)]
	for i, x := range input {
		output[i] = x + g*line.ReadAndAdvance()
		line.WriteAndAdvance(x)
	}
}

// iirCore writes the output sample back into the delay line.
type iirCore[F simdops.Float] struct {
	comb[F]
}

func (c *iirCore[F]) Kind() Kind {
	return KindIIR
}

func (c *iirCore[F]) Process(input, output []F) {
	g := c.gain
	line := c.line
	output = output[:len(input)]
	for i, x := range input {
		y := x + g*line.ReadAndAdvance()
		output[i] = y
		line.WriteAndAdvance(y)
	}
}
