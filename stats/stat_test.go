package stats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectOutliers(t *testing.T) {
	testData := map[string]struct {
		y        []float64
		lower    float64
		upper    float64
		tukey    float64
		expected []int
	}{
		"no values": {
			y:     nil,
			lower: 0.25,
			upper: 0.75,
			tukey: 1.5,
		},
		"single spike": {
			y:        []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 100},
			lower:    0.25,
			upper:    0.75,
			tukey:    1.5,
			expected: []int{9},
		},
		"spike in both directions": {
			y:        []float64{-100, 2, 3, 4, 5, 6, 7, 8, 9, 100},
			lower:    0.25,
			upper:    0.75,
			tukey:    1.5,
			expected: []int{0, 9},
		},
		"full range clamps percentiles": {
			y:     []float64{1, 2, 3, 100},
			lower: -1,
			upper: 2,
			tukey: 0,
		},
		"nan ignored": {
			y:        []float64{1, 2, math.NaN(), 3, 4, 5, 6, 7, 8, 9, 100},
			lower:    0.25,
			upper:    0.75,
			tukey:    1.5,
			expected: []int{10},
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			res := DetectOutliers(td.y, td.lower, td.upper, td.tukey)
			assert.Equal(t, td.expected, res)
		})
	}
}

func TestNewScores(t *testing.T) {
	predicted := []float64{1, 2, 3, 4}
	actual := []float64{1, 2, 3, 6}

	scores, err := NewScores(predicted, actual)
	require.Nil(t, err)
	assert.InDelta(t, 1.0, scores.MSE, 1e-12)
	assert.InDelta(t, (2.0/6.0)/4.0, scores.MAPE, 1e-12)
	// mean 3, total sum of squares 14, residual sum of squares 4
	assert.InDelta(t, 1.0-4.0/14.0, scores.R2, 1e-12)

	scores, err = NewScores(actual, actual)
	require.Nil(t, err)
	assert.Equal(t, 0.0, scores.MSE)
	assert.Equal(t, 0.0, scores.MAPE)
	assert.InDelta(t, 1.0, scores.R2, 1e-12)

	_, err = NewScores([]float64{1}, actual)
	assert.ErrorIs(t, err, ErrResLenMismatch)

	_, err = NewScores(nil, nil)
	assert.ErrorIs(t, err, ErrNoValues)
}

func TestMAPESkipsZeroActual(t *testing.T) {
	mape, err := MAPE([]float64{1, 2}, []float64{0, 4})
	require.Nil(t, err)
	assert.InDelta(t, 0.25, mape, 1e-12)
}
