package sampleset

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/floats"
)

// GenerateX returns n evenly spaced measured values starting at start
func GenerateX(n int, start, step float64) []float64 {
	x := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		x = append(x, start+step*float64(i))
	}
	return x
}

type Series []float64

func (s Series) Add(src Series) Series {
	floats.Add(s, src)
	return s
}

// SetAt overwrites the values at the given indices, out of range indices are ignored
func (s Series) SetAt(val float64, idxs ...int) Series {
	for _, idx := range idxs {
		if idx < 0 || idx >= len(s) {
			continue
		}
		s[idx] = val
	}
	return s
}

func GenerateConstY(n int, val float64) Series {
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, val)
	}
	return Series(y)
}

// GeneratePolyY evaluates the polynomial with coefficients ordered by increasing power at x
func GeneratePolyY(x []float64, coef []float64) Series {
	y := make([]float64, 0, len(x))
	for _, v := range x {
		var val float64
		for i := len(coef) - 1; i >= 0; i-- {
			val = val*v + coef[i]
		}
		y = append(y, val)
	}
	return Series(y)
}

// GenerateNoise returns normally distributed noise with the given standard deviation
func GenerateNoise(n int, scale float64, rng *rand.Rand) Series {
	norm := rand.NormFloat64
	if rng != nil {
		norm = rng.NormFloat64
	}
	y := make([]float64, 0, n)
	for i := 0; i < n; i++ {
		y = append(y, norm()*scale)
	}
	return Series(y)
}
