package normal

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

func TestMoments(t *testing.T) {
	x := []float64{1, 2, 3}
	y := []float64{2, 0, 1}

	xSums, xySums, err := Moments(x, y, 2)
	require.Nil(t, err)
	assert.Equal(t, []float64{3, 6, 14, 36, 98}, xSums)
	assert.Equal(t, []float64{3, 5, 11}, xySums)

	xSums, xySums, err = Moments(x, y, 0)
	require.Nil(t, err)
	assert.Equal(t, []float64{3}, xSums)
	assert.Equal(t, []float64{3}, xySums)
}

func TestMomentsInvalid(t *testing.T) {
	testData := map[string]struct {
		x      []float64
		y      []float64
		degree int
		err    error
	}{
		"shape mismatch": {
			x:      []float64{1, 2},
			y:      []float64{1},
			degree: 1,
			err:    ErrShapeMismatch,
		},
		"empty": {
			degree: 1,
			err:    ErrEmptyInput,
		},
		"negative degree": {
			x:      []float64{1, 2},
			y:      []float64{1, 2},
			degree: -1,
			err:    ErrNegativeDegree,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			xSums, xySums, err := Moments(td.x, td.y, td.degree)
			assert.ErrorIs(t, err, td.err)
			assert.Nil(t, xSums)
			assert.Nil(t, xySums)
		})
	}
}

func TestNewSystem(t *testing.T) {
	testData := map[string]struct {
		x      []float64
		y      []float64
		degree int
		err    error
	}{
		"shape mismatch": {
			x:      []float64{1, 2},
			y:      []float64{1},
			degree: 1,
			err:    ErrShapeMismatch,
		},
		"empty": {
			x:      []float64{},
			y:      []float64{},
			degree: 0,
			err:    ErrEmptyInput,
		},
		"nil": {
			degree: 0,
			err:    ErrEmptyInput,
		},
		"negative degree": {
			x:      []float64{1},
			y:      []float64{1},
			degree: -1,
			err:    ErrNegativeDegree,
		},
		"valid": {
			x:      []float64{1, 2, 3},
			y:      []float64{2, 0, 1},
			degree: 2,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			sys, err := NewSystem(td.x, td.y, td.degree)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.Equal(t, td.degree, sys.Degree())

			aug := sys.Augmented()
			m, n := aug.Dims()
			assert.Equal(t, td.degree+1, m)
			assert.Equal(t, td.degree+2, n)
			assert.Equal(t, []float64{3, 6, 14, 3}, mat.Row(nil, 0, aug))
			assert.Equal(t, []float64{6, 14, 36, 5}, mat.Row(nil, 1, aug))
			assert.Equal(t, []float64{14, 36, 98, 11}, mat.Row(nil, 2, aug))
		})
	}
}

func TestSolve(t *testing.T) {
	testData := map[string]struct {
		x        []float64
		y        []float64
		degree   int
		eps      float64
		expected []float64
		err      error
	}{
		"constant is mean": {
			x:        []float64{4, 8, 1, 3},
			y:        []float64{1, 2, 3, 6},
			degree:   0,
			eps:      DefaultEpsilon,
			expected: []float64{3},
		},
		"exact line": {
			x:        []float64{0, 1, 2, 3},
			y:        []float64{1, 3, 5, 7},
			degree:   1,
			eps:      DefaultEpsilon,
			expected: []float64{1, 2},
		},
		"exact quadratic through three points": {
			x:        []float64{-1, 0, 2},
			y:        []float64{6, 3, 9},
			degree:   2,
			eps:      DefaultEpsilon,
			expected: []float64{3, -1, 2},
		},
		"constant measured values": {
			x:      []float64{2, 2, 2},
			y:      []float64{1, 2, 3},
			degree: 1,
			eps:    DefaultEpsilon,
			err:    ErrSingular,
		},
		"underdetermined": {
			x:      []float64{1, 2},
			y:      []float64{1, 2},
			degree: 2,
			eps:    DefaultEpsilon,
			err:    ErrSingular,
		},
		"all zero measured values": {
			x:      []float64{0, 0, 0},
			y:      []float64{1, 2, 3},
			degree: 1,
			eps:    0,
			err:    ErrSingular,
		},
		"large epsilon rejects well posed system": {
			x:      []float64{0, 1, 2, 3},
			y:      []float64{1, 3, 5, 7},
			degree: 1,
			eps:    1e6,
			err:    ErrSingular,
		},
		"negative epsilon": {
			x:      []float64{0, 1},
			y:      []float64{0, 1},
			degree: 1,
			eps:    -1,
			err:    ErrInvalidEpsilon,
		},
		"nan epsilon": {
			x:      []float64{0, 1},
			y:      []float64{0, 1},
			degree: 1,
			eps:    math.NaN(),
			err:    ErrInvalidEpsilon,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			sys, err := NewSystem(td.x, td.y, td.degree)
			require.Nil(t, err)

			coef, err := sys.Solve(td.eps)
			if td.err != nil {
				require.ErrorIs(t, err, td.err)
				return
			}
			require.Nil(t, err)
			assert.InDeltaSlice(t, td.expected, coef, 1e-9)
		})
	}
}

func TestSolveLeavesSystemIntact(t *testing.T) {
	sys, err := NewSystem([]float64{0, 1, 2, 3}, []float64{1, 3, 5, 7}, 1)
	require.Nil(t, err)

	before := sys.Augmented()
	first, err := sys.Solve(DefaultEpsilon)
	require.Nil(t, err)
	assert.True(t, mat.Equal(before, sys.Augmented()))

	second, err := sys.Solve(DefaultEpsilon)
	require.Nil(t, err)
	assert.Equal(t, first, second)
}

func TestEliminatePartialPivoting(t *testing.T) {
	// a zero on the leading diagonal needs a row swap to proceed
	b := mat.NewDense(2, 3, []float64{
		0, 1, 2,
		1, 1, 3,
	})
	require.Nil(t, eliminate(b, DefaultEpsilon))
	assert.Equal(t, []float64{1, 1, 3}, mat.Row(nil, 0, b))
	assert.Equal(t, []float64{0, 1, 2}, mat.Row(nil, 1, b))
	assert.Equal(t, []float64{1, 2}, backSubstitute(b))

	// ties keep the first row encountered
	b = mat.NewDense(2, 3, []float64{
		2, 1, 5,
		-2, 3, 3,
	})
	require.Nil(t, eliminate(b, DefaultEpsilon))
	assert.Equal(t, []float64{2, 1, 5}, mat.Row(nil, 0, b))
	assert.Equal(t, []float64{0, 4, 8}, mat.Row(nil, 1, b))
	assert.Equal(t, []float64{1.5, 2}, backSubstitute(b))
}
