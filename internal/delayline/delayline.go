// Package delayline implements the fixed-capacity circular sample store used by
// the comb filter cores.
//
// Unlike a FIFO, the read and write cursors are independent: the distance
// between them is the delay in samples, and it can be changed at any time by
// repositioning the write cursor. The buffer is never reallocated.
package delayline

import (
	"errors"
	"fmt"

	"github.com/tphakala/go-audio-combfilter/internal/simdops"
)

// ErrInvalidCapacity is returned by New for a non-positive capacity.
var ErrInvalidCapacity = errors.New("delay line capacity must be positive")

// DelayLine is a circular buffer of samples with post-incrementing read and
// write cursors. It is not safe for concurrent use.
type DelayLine[F simdops.Float] struct {
	data     []F
	readPos  int
	writePos int
}

// New creates a zero-filled delay line holding capacity samples with both
// cursors at position 0.
func New[F simdops.Float](capacity int) (*DelayLine[F], error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}

	return &DelayLine[F]{
		data: make([]F, capacity),
	}, nil
}

// ReadAndAdvance returns the sample under the read cursor and moves the
// cursor one position forward.
func (d *DelayLine[F]) ReadAndAdvance() F {
	v := d.data[d.readPos]
	d.readPos++
	if d.readPos == len(d.data) {
		d.readPos = 0
	}
	return v
}

// WriteAndAdvance stores v under the write cursor and moves the cursor one
// position forward.
func (d *DelayLine[F]) WriteAndAdvance(v F) {
	d.data[d.writePos] = v
	d.writePos++
	if d.writePos == len(d.data) {
		d.writePos = 0
	}
}

// SetWriteCursor moves the write cursor to pos modulo the capacity.
// Negative positions wrap from the end of the buffer.
func (d *DelayLine[F]) SetWriteCursor(pos int) {
	d.writePos = d.wrap(pos)
}

// ReadCursor returns the current read position.
func (d *DelayLine[F]) ReadCursor() int {
	return d.readPos
}

// Distance returns how many samples the write cursor leads the read cursor.
func (d *DelayLine[F]) Distance() int {
	return d.wrap(d.writePos - d.readPos)
}

// Capacity returns the fixed buffer size in samples.
func (d *DelayLine[F]) Capacity() int {
	return len(d.data)
}

// Clear zeroes the contents and resets both cursors.
func (d *DelayLine[F]) Clear() {
	clear(d.data)
	d.readPos = 0
	d.writePos = 0
}

func (d *DelayLine[F]) wrap(pos int) int {
	n := len(d.data)
	pos %= n
	if pos < 0 {
		pos += n
	}
	return pos
}
