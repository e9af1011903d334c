package stats

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

var (
	ErrResLenMismatch = errors.New("predicted and actual have different lengths")
	ErrNoValues       = errors.New("no values to score")
)

// DetectOutliers returns the indices of values falling outside the percentile range widened
// by the tukey factor times the inner range. NaN values are never reported.
func DetectOutliers(y []float64, lowerPerc, upperPerc, tukeyFactor float64) []int {
	lowerPerc = math.Max(lowerPerc, 0.0)
	upperPerc = math.Min(upperPerc, 1.0)
	tukeyFactor = math.Max(tukeyFactor, 0.0)

	yCopy := make([]float64, 0, len(y))
	for _, v := range y {
		if math.IsNaN(v) {
			continue
		}
		yCopy = append(yCopy, v)
	}
	if len(yCopy) == 0 {
		return nil
	}
	sort.Float64s(yCopy)

	last := len(yCopy) - 1
	lowerIdx := min(int(math.Floor(float64(len(yCopy))*lowerPerc)), last)
	upperIdx := min(int(math.Ceil(float64(len(yCopy))*upperPerc)), last)

	lower := yCopy[lowerIdx]
	upper := yCopy[upperIdx]
	innerRange := upper - lower
	lower -= innerRange * tukeyFactor
	upper += innerRange * tukeyFactor

	var outlierIdx []int
	for i := 0; i < len(y); i++ {
		if y[i] > upper || y[i] < lower {
			outlierIdx = append(outlierIdx, i)
		}
	}
	return outlierIdx
}

// Scores summarizes how well predicted values match the actual values
type Scores struct {
	MSE  float64 `json:"mse"`  // mean squared error
	MAPE float64 `json:"mape"` // mean average percent error
	R2   float64 `json:"r2"`   // coefficient of determination
}

func NewScores(predicted, actual []float64) (*Scores, error) {
	mse, err := MSE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean squared error, %w", err)
	}
	mape, err := MAPE(predicted, actual)
	if err != nil {
		return nil, fmt.Errorf("unable to compute mean average percent error, %w", err)
	}
	return &Scores{
		MSE:  mse,
		MAPE: mape,
		R2:   stat.RSquaredFrom(predicted, actual, nil),
	}, nil
}

func MSE(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, ErrResLenMismatch
	}
	if len(actual) == 0 {
		return 0, ErrNoValues
	}

	mse := 0.0
	for i := 0; i < len(actual); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) {
			continue
		}
		mse += math.Pow(actual[i]-predicted[i], 2.0)
	}
	mse /= float64(len(actual))
	return mse, nil
}

func MAPE(predicted, actual []float64) (float64, error) {
	if len(predicted) != len(actual) {
		return 0, ErrResLenMismatch
	}
	if len(actual) == 0 {
		return 0, ErrNoValues
	}

	mape := 0.0
	for i := 0; i < len(actual); i++ {
		if math.IsNaN(actual[i]) || math.IsNaN(predicted[i]) || actual[i] == 0 {
			continue
		}
		mape += math.Abs((actual[i] - predicted[i]) / actual[i])
	}
	mape /= float64(len(actual))
	return mape, nil
}
