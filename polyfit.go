// Package polyfit fits a polynomial to paired measured and true values in the least squares
// sense. A typical use is sensor calibration where a device reports a measured value and the
// fitted polynomial maps it back to the true value.
//
// A Polynomial is not safe for concurrent use while Fit is running. Once fit, any number of
// goroutines may call Evaluate, Predict and Coefficients.
package polyfit

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/aouyang1/go-polyfit/floatsunrolled"
	"github.com/aouyang1/go-polyfit/linearmodel"
	"github.com/aouyang1/go-polyfit/normal"
	"github.com/aouyang1/go-polyfit/sampleset"
	"github.com/aouyang1/go-polyfit/stats"
)

// Polynomial fits and evaluates a polynomial of a fixed degree
type Polynomial struct {
	opt *Options

	coef   []float64
	fitted bool

	trainingData *sampleset.SampleSet
	residual     []float64
	outliers     []int
}

// New creates a new Polynomial using the provided options. If no options are provided
// a default is used.
func New(opt *Options) (*Polynomial, error) {
	opt, err := opt.Validate()
	if err != nil {
		return nil, fmt.Errorf("unable to initialize polynomial, %w", err)
	}
	return &Polynomial{
		opt: opt,
	}, nil
}

// Fit computes the least squares coefficients of a polynomial with the given degree
// mapping x onto y. The returned coefficients are ordered by increasing power. A failed
// fit leaves any previous fit untouched.
func (p *Polynomial) Fit(x, y []float64, degree int) ([]float64, error) {
	coef, err := p.solve(x, y, degree)
	if err != nil {
		return nil, err
	}

	td, err := sampleset.New(x, y)
	if err != nil {
		return nil, fmt.Errorf("unable to create training sample set, %w", err)
	}
	p.resolve(coef, td, nil)
	return p.Coefficients()
}

// FitSamples fits the polynomial against a sample set
func (p *Polynomial) FitSamples(s *sampleset.SampleSet, degree int) ([]float64, error) {
	if s == nil {
		return nil, ErrNoSampleSet
	}
	return p.Fit(s.X, s.Y, degree)
}

// FitWithOutliers fits the polynomial and then repeatedly drops samples whose residual is
// an outlier according to the OutlierOptions, refitting after each pass. Without outlier
// options this is the same as Fit.
func (p *Polynomial) FitWithOutliers(x, y []float64, degree int) ([]float64, error) {
	oo := p.opt.OutlierOptions
	if oo == nil {
		return p.Fit(x, y, degree)
	}

	coef, err := p.solve(x, y, degree)
	if err != nil {
		return nil, err
	}
	td, err := sampleset.New(x, y)
	if err != nil {
		return nil, fmt.Errorf("unable to create training sample set, %w", err)
	}

	// kept maps indices of the current sample set back to the training data
	kept := make([]int, td.Len())
	for i := range kept {
		kept[i] = i
	}
	curr := td

	for pass := 0; pass < oo.NumPasses; pass++ {
		residual := floatsunrolled.SubTo(nil, curr.Y, predict(coef, curr.X))
		outlierIdxs := stats.DetectOutliers(residual, oo.LowerPercentile, oo.UpperPercentile, oo.TukeyFactor)

		// no more outliers detected with outlier options so break early
		if len(outlierIdxs) == 0 {
			break
		}
		if curr.Len()-len(outlierIdxs) < degree+1 {
			slog.Warn("stopping outlier removal, too few samples would remain",
				"pass", pass, "samples", curr.Len(), "outliers", len(outlierIdxs), "degree", degree)
			break
		}

		next, err := curr.Without(outlierIdxs)
		if err != nil {
			return nil, fmt.Errorf("unable to remove outliers on pass %d, %w", pass, err)
		}
		nextCoef, err := p.solve(next.X, next.Y, degree)
		if err != nil {
			slog.Warn("stopping outlier removal, refit failed", "pass", pass, "error", err.Error())
			break
		}

		excluded := make(map[int]struct{}, len(outlierIdxs))
		for _, idx := range outlierIdxs {
			excluded[idx] = struct{}{}
		}
		nextKept := make([]int, 0, next.Len())
		for i, idx := range kept {
			if _, exists := excluded[i]; !exists {
				nextKept = append(nextKept, idx)
			}
		}

		kept = nextKept
		curr = next
		coef = nextCoef
	}

	p.resolve(coef, td, kept)
	return p.Coefficients()
}

func (p *Polynomial) solve(x, y []float64, degree int) ([]float64, error) {
	if p.opt.Method == MethodQR {
		return p.solveQR(x, y, degree)
	}

	sys, err := normal.NewSystem(x, y, degree)
	if err != nil {
		return nil, fmt.Errorf("unable to build normal equations, %w", err)
	}
	coef, err := sys.Solve(p.opt.Epsilon)
	if err != nil {
		return nil, fmt.Errorf("unable to fit degree %d polynomial, %w", degree, err)
	}
	return coef, nil
}

func (p *Polynomial) solveQR(x, y []float64, degree int) ([]float64, error) {
	// validate up front so both methods report the same errors
	if _, err := sampleset.New(x, y); err != nil {
		switch {
		case errors.Is(err, sampleset.ErrSampleLenMismatch):
			return nil, fmt.Errorf("%w, %w", ErrShapeMismatch, err)
		case errors.Is(err, sampleset.ErrNoSamples):
			return nil, fmt.Errorf("%w, %w", ErrEmptyInput, err)
		}
		return nil, err
	}
	if degree < 0 {
		return nil, fmt.Errorf("got degree %d, %w", degree, ErrNegativeDegree)
	}

	coef, err := linearmodel.OLSPolynomial(x, y, degree, p.opt.Epsilon)
	if errors.Is(err, linearmodel.ErrRankDeficient) {
		return nil, fmt.Errorf("unable to fit degree %d polynomial, %w, %w", degree, ErrSingularSystem, err)
	}
	if err != nil {
		return nil, fmt.Errorf("unable to fit degree %d polynomial, %w", degree, err)
	}
	return coef, nil
}

// resolve stores a successful fit. kept lists the training indices used by the final
// fit, nil meaning all of them.
func (p *Polynomial) resolve(coef []float64, td *sampleset.SampleSet, kept []int) {
	p.coef = coef
	p.fitted = true
	p.trainingData = td
	p.residual = floatsunrolled.SubTo(nil, td.Y, predict(coef, td.X))

	p.outliers = nil
	if kept == nil {
		return
	}
	var j int
	for i := 0; i < td.Len(); i++ {
		if j < len(kept) && kept[j] == i {
			j++
			continue
		}
		p.outliers = append(p.outliers, i)
	}
}

// Evaluate returns the fitted polynomial evaluated at value
func (p *Polynomial) Evaluate(value float64) (float64, error) {
	if !p.fitted {
		return 0, ErrNotFitted
	}
	return evaluate(p.coef, value), nil
}

// Predict evaluates the fitted polynomial at every value of x
func (p *Polynomial) Predict(x []float64) ([]float64, error) {
	if !p.fitted {
		return nil, ErrNotFitted
	}
	return predict(p.coef, x), nil
}

// Coefficients returns a copy of the fitted coefficients ordered by increasing power
func (p *Polynomial) Coefficients() ([]float64, error) {
	if !p.fitted {
		return nil, ErrNotFitted
	}
	c := make([]float64, len(p.coef))
	copy(c, p.coef)
	return c, nil
}

// Degree returns the degree of the fitted polynomial or -1 if not fit
func (p *Polynomial) Degree() int {
	if !p.fitted {
		return -1
	}
	return len(p.coef) - 1
}

// Residuals returns the difference between the training data and the fitted values
func (p *Polynomial) Residuals() []float64 {
	if p.residual == nil {
		return nil
	}
	r := make([]float64, len(p.residual))
	copy(r, p.residual)
	return r
}

// Outliers returns a copy of the training indices excluded by FitWithOutliers
func (p *Polynomial) Outliers() []int {
	if p.outliers == nil {
		return nil
	}
	o := make([]int, len(p.outliers))
	copy(o, p.outliers)
	return o
}

// TrainingData returns a copy of the samples used for the current fit
func (p *Polynomial) TrainingData() *sampleset.SampleSet {
	if p.trainingData == nil {
		return nil
	}
	return p.trainingData.Copy()
}

// Score computes the fit scores of the polynomial against the provided samples
func (p *Polynomial) Score(x, y []float64) (*stats.Scores, error) {
	if !p.fitted {
		return nil, ErrNotFitted
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("measured has %d samples and true has %d samples, %w", len(x), len(y), ErrShapeMismatch)
	}
	if len(x) == 0 {
		return nil, ErrEmptyInput
	}
	return stats.NewScores(predict(p.coef, x), y)
}

// ModelEq returns a string representation of the fit polynomial represented as
// y ~ a0 + a1*x^1 + a2*x^2 ...
func (p *Polynomial) ModelEq() (string, error) {
	if !p.fitted {
		return "", ErrNotFitted
	}
	return modelEq(p.coef), nil
}

func evaluate(coef []float64, value float64) float64 {
	var res float64
	for i := len(coef) - 1; i >= 0; i-- {
		res = res*value + coef[i]
	}
	return res
}

func predict(coef []float64, x []float64) []float64 {
	res := make([]float64, len(x))
	for i, v := range x {
		res[i] = evaluate(coef, v)
	}
	return res
}

func modelEq(coef []float64) string {
	eq := "y ~ "
	for i, c := range coef {
		if i == 0 {
			eq += fmt.Sprintf("%g", c)
			continue
		}
		if c == 0 {
			continue
		}
		eq += fmt.Sprintf("%+g*x^%d", c, i)
	}
	return eq
}
