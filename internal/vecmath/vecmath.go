// Package vecmath holds the small vector helpers shared by the palette and
// the scoring code.
package vecmath

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// MinNorm is the floor applied to the divisor in Normalize.
const MinNorm = 1e-8

// Normalize returns v scaled to unit L2 norm. Vectors whose norm is below
// MinNorm are divided by MinNorm instead, so the zero vector stays zero.
func Normalize(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	floats.Scale(1/math.Max(floats.Norm(v, 2), MinNorm), out)
	return out
}

// Dot returns the inner product of a and b. It panics on length mismatch.
func Dot(a, b []float64) float64 {
	return floats.Dot(a, b)
}

// Widen converts a float32 embedding to float64.
func Widen(v []float32) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out
}

// Narrow converts v to float32.
func Narrow(v []float64) []float32 {
	out := make([]float32, len(v))
	for i, x := range v {
		out[i] = float32(x)
	}
	return out
}

// MinMax returns the smallest and largest element of v.
// It panics if v is empty.
func MinMax(v []float64) (lo, hi float64) {
	return floats.Min(v), floats.Max(v)
}

// ArgMax returns the index of the first maximal element of v.
func ArgMax(v []float64) int {
	return floats.MaxIdx(v)
}
