package polyfit

import (
	"fmt"
	"math"

	"github.com/aouyang1/go-polyfit/normal"
)

// OutlierOptions configures the iterative removal of samples whose residual falls outside
// a widened percentile range
type OutlierOptions struct {
	NumPasses       int     `json:"num_passes"`
	UpperPercentile float64 `json:"upper_percentile"`
	LowerPercentile float64 `json:"lower_percentile"`
	TukeyFactor     float64 `json:"tukey_factor"`
}

func NewOutlierOptions() *OutlierOptions {
	return &OutlierOptions{
		NumPasses:       3,
		UpperPercentile: 0.9,
		LowerPercentile: 0.1,
		TukeyFactor:     1.0,
	}
}

// Method selects how the least squares system is solved
type Method string

const (
	// MethodNormal solves the normal equations built from power sums with Gaussian elimination
	MethodNormal Method = "normal"

	// MethodQR solves the Vandermonde least squares problem with a QR factorization
	MethodQR Method = "qr"
)

// Options configures a Polynomial fit
type Options struct {
	// Method defaults to MethodNormal when empty
	Method Method `json:"method,omitempty"`

	// Epsilon is the smallest pivot magnitude accepted during elimination, or the smallest
	// diagonal of R with MethodQR. Anything below is reported as a singular system.
	Epsilon float64 `json:"epsilon"`

	// OutlierOptions enables outlier removal in FitWithOutliers. A nil value fits once.
	OutlierOptions *OutlierOptions `json:"outlier_options,omitempty"`
}

// NewDefaultOptions returns options using the default singularity epsilon and no outlier removal
func NewDefaultOptions() *Options {
	return &Options{
		Epsilon: normal.DefaultEpsilon,
	}
}

// Validate runs basic validation on the options. A nil receiver returns the defaults.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if o.Epsilon < 0 || math.IsNaN(o.Epsilon) {
		return nil, fmt.Errorf("got epsilon %f, %w", o.Epsilon, ErrInvalidEpsilon)
	}
	switch o.Method {
	case "", MethodNormal, MethodQR:
	default:
		return nil, fmt.Errorf("got method %q, %w", o.Method, ErrUnknownMethod)
	}
	if oo := o.OutlierOptions; oo != nil {
		if oo.NumPasses < 0 {
			return nil, fmt.Errorf("got %d outlier passes, %w", oo.NumPasses, ErrInvalidOutlierOptions)
		}
		if oo.LowerPercentile > oo.UpperPercentile {
			return nil, fmt.Errorf(
				"lower percentile %.3f above upper percentile %.3f, %w",
				oo.LowerPercentile, oo.UpperPercentile, ErrInvalidOutlierOptions,
			)
		}
	}
	return o, nil
}
