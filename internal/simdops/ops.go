// Package simdops provides generic SIMD vector operations for float32 and
// float64 sample buffers.
//
// The comb filter recurrence itself is sample-serial and stays scalar; these
// helpers cover the block-wise work around it, such as PCM normalization
// and stereo interleaving.
package simdops

import (
	"github.com/tphakala/simd/cpu"
	"github.com/tphakala/simd/f32"
	"github.com/tphakala/simd/f64"
)

// Float is the type constraint for supported floating-point types.
type Float interface {
	float32 | float64
}

// Ops provides SIMD-accelerated operations for type F.
// Function pointers let generic code delegate to the type-specific kernels.
type Ops[F Float] struct {
	// DotProductUnsafe computes the dot product without bounds checking.
	// Use only when slices are guaranteed to have equal length.
	DotProductUnsafe func(a, b []F) F

	// Interleave2 interleaves two slices: dst[0]=a[0], dst[1]=b[0], dst[2]=a[1], ...
	Interleave2 func(dst, a, b []F)

	// Scale multiplies each element by scalar s: dst[i] = a[i] * s
	Scale func(dst, a []F, s F)
}

var (
	ops32 = Ops[float32]{
		DotProductUnsafe: f32.DotProductUnsafe,
		Interleave2:      f32.Interleave2,
		Scale:            f32.Scale,
	}
	ops64 = Ops[float64]{
		DotProductUnsafe: f64.DotProductUnsafe,
		Interleave2:      f64.Interleave2,
		Scale:            f64.Scale,
	}
)

// For returns the Ops instance for type F.
// The type switch happens at instantiation time, not in hot paths.
func For[F Float]() *Ops[F] {
	var zero F
	switch any(zero).(type) {
	case float32:
		ops, ok := any(&ops32).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float32")
		}
		return ops
	case float64:
		ops, ok := any(&ops64).(*Ops[F])
		if !ok {
			panic("simdops: type assertion failed for float64")
		}
		return ops
	default:
		panic("simdops: unsupported float type")
	}
}

// Energy returns the sum of squares of a.
func Energy[F Float](a []F) F {
	if len(a) == 0 {
		return 0
	}
	return For[F]().DotProductUnsafe(a, a)
}

// ScaleInPlace multiplies every element of a by s.
func ScaleInPlace[F Float](a []F, s F) {
	if len(a) == 0 {
		return
	}
	For[F]().Scale(a, a, s)
}

// Info reports the SIMD instruction set detected at runtime.
func Info() string {
	return cpu.Info()
}
