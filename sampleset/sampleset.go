package sampleset

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

var (
	ErrNoSamples          = errors.New("no samples")
	ErrSampleLenMismatch  = errors.New("measured values have a different length than true values")
	ErrSampleOutOfBounds  = errors.New("sample index is out of bounds")
	ErrAllSamplesExcluded = errors.New("all samples excluded")
)

// SampleSet stores paired measured (X) and true (Y) values. Both must be of the same length.
type SampleSet struct {
	X []float64 `json:"x"`
	Y []float64 `json:"y"`
}

// New returns a SampleSet holding copies of the measured and true values
func New(x, y []float64) (*SampleSet, error) {
	if len(x) != len(y) {
		return nil, fmt.Errorf(
			"measured values have length of %d, but true values have a length of %d, %w",
			len(x), len(y), ErrSampleLenMismatch,
		)
	}
	if len(x) == 0 {
		return nil, ErrNoSamples
	}

	xs := make([]float64, len(x))
	ys := make([]float64, len(y))
	copy(xs, x)
	copy(ys, y)
	return &SampleSet{
		X: xs,
		Y: ys,
	}, nil
}

// Len returns the number of samples
func (s *SampleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.X)
}

func (s *SampleSet) Copy() *SampleSet {
	xs := make([]float64, len(s.X))
	ys := make([]float64, len(s.Y))
	copy(xs, s.X)
	copy(ys, s.Y)
	return &SampleSet{
		X: xs,
		Y: ys,
	}
}

// Append adds a single sample to the end of the set
func (s *SampleSet) Append(x, y float64) {
	s.X = append(s.X, x)
	s.Y = append(s.Y, y)
}

// Without returns a new SampleSet excluding the provided sample indices
func (s *SampleSet) Without(idxs []int) (*SampleSet, error) {
	excluded := make(map[int]struct{}, len(idxs))
	for _, idx := range idxs {
		if idx < 0 || idx >= s.Len() {
			return nil, fmt.Errorf("index %d with %d samples, %w", idx, s.Len(), ErrSampleOutOfBounds)
		}
		excluded[idx] = struct{}{}
	}

	res := &SampleSet{
		X: make([]float64, 0, s.Len()-len(excluded)),
		Y: make([]float64, 0, s.Len()-len(excluded)),
	}
	for i := 0; i < s.Len(); i++ {
		if _, exists := excluded[i]; exists {
			continue
		}
		res.Append(s.X[i], s.Y[i])
	}
	if res.Len() == 0 {
		return nil, ErrAllSamplesExcluded
	}
	return res, nil
}

// DropNaN returns a new SampleSet removing any pair where either value is NaN
func (s *SampleSet) DropNaN() (*SampleSet, error) {
	var nanIdxs []int
	for i := 0; i < s.Len(); i++ {
		if math.IsNaN(s.X[i]) || math.IsNaN(s.Y[i]) {
			nanIdxs = append(nanIdxs, i)
		}
	}
	return s.Without(nanIdxs)
}

// Range returns the smallest and largest measured value
func (s *SampleSet) Range() (float64, float64, error) {
	if s.Len() == 0 {
		return 0, 0, ErrNoSamples
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, x := range s.X {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi, nil
}

// Sorted returns a copy of the set ordered by measured value. Ties keep their original order.
func (s *SampleSet) Sorted() *SampleSet {
	res := s.Copy()
	sort.Stable(byMeasured{res})
	return res
}

type byMeasured struct {
	s *SampleSet
}

func (b byMeasured) Len() int           { return b.s.Len() }
func (b byMeasured) Less(i, j int) bool { return b.s.X[i] < b.s.X[j] }
func (b byMeasured) Swap(i, j int) {
	b.s.X[i], b.s.X[j] = b.s.X[j], b.s.X[i]
	b.s.Y[i], b.s.Y[j] = b.s.Y[j], b.s.Y[i]
}
