package simdops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/tphakala/simd/f32"
)

func TestFor_ReturnsTypedOps(t *testing.T) {
	assert.Same(t, &ops32, For[float32]())
	assert.Same(t, &ops64, For[float64]())
	assert.Same(t, For[float64](), For[float64]())
}

func TestScaleInPlace(t *testing.T) {
	a := []float64{1, -2, 3, -4, 5}
	ScaleInPlace(a, -0.5)
	assert.InDeltaSlice(t, []float64{-0.5, 1, -1.5, 2, -2.5}, a, 1e-15)

	// Empty input is a no-op.
	ScaleInPlace([]float32{}, 2)
}

func TestEnergy(t *testing.T) {
	assert.InDelta(t, 25.0, float64(Energy([]float32{3, 4})), 1e-6)
	assert.InDelta(t, 14.0, Energy([]float64{1, -2, 3}), 1e-12)
	assert.Zero(t, Energy([]float64{}))
}

func TestInterleave2(t *testing.T) {
	left := []float32{1, 2, 3}
	right := []float32{-1, -2, -3}
	dst := make([]float32, 6)

	For[float32]().Interleave2(dst, left, right)
	assert.Equal(t, []float32{1, -1, 2, -2, 3, -3}, dst)
}

func TestInfo(t *testing.T) {
	assert.NotPanics(t, func() { _ = Info() })
}

// BenchmarkDirectF32Scale measures direct SIMD call overhead.
func BenchmarkDirectF32Scale(b *testing.B) {
	a := make([]float32, 1023)
	for i := range a {
		a[i] = float32(i) * 0.01
	}

	b.ReportAllocs()
	for b.Loop() {
		f32.Scale(a, a, 0.999)
	}
}

// BenchmarkIndirectF32Scale measures indirect call through the Ops struct.
func BenchmarkIndirectF32Scale(b *testing.B) {
	ops := For[float32]()
	a := make([]float32, 1023)
	for i := range a {
		a[i] = float32(i) * 0.01
	}

	b.ReportAllocs()
	for b.Loop() {
		ops.Scale(a, a, 0.999)
	}
}
