// Package normal builds and solves the normal equations of a one dimensional polynomial
// least squares fit. The system is assembled from power sum moments of the samples and
// solved with Gaussian elimination using partial pivoting.
package normal

import (
	"errors"
	"fmt"
	"math"

	mat_ "github.com/aouyang1/go-polyfit/mat"

	"github.com/aouyang1/go-polyfit/floatsunrolled"
	"gonum.org/v1/gonum/mat"
)

// DefaultEpsilon is the smallest pivot magnitude accepted before a system is considered singular
const DefaultEpsilon = 1e-12

var (
	ErrShapeMismatch  = errors.New("measured and true sample lengths differ")
	ErrEmptyInput     = errors.New("no samples provided")
	ErrNegativeDegree = errors.New("polynomial degree must be non-negative")
	ErrSingular       = errors.New("singular system, no unique least squares solution")
	ErrInvalidEpsilon = errors.New("singularity epsilon must be a non-negative number")
)

// Moments returns the power sums of x up to twice the degree along with the
// cross moments sum(x^i * y) up to the degree.
func Moments(x, y []float64, degree int) ([]float64, []float64, error) {
	if err := validate(x, y, degree); err != nil {
		return nil, nil, err
	}

	pow := make([]float64, len(x))
	for i := range pow {
		pow[i] = 1.0
	}

	xSums := make([]float64, 2*degree+1)
	xySums := make([]float64, degree+1)
	for k := range xSums {
		xSums[k] = floatsunrolled.Sum(pow)
		if k <= degree {
			xySums[k] = floatsunrolled.Dot(pow, y)
		}
		floatsunrolled.MulTo(pow, pow, x)
	}
	return xSums, xySums, nil
}

func validate(x, y []float64, degree int) error {
	if len(x) != len(y) {
		return fmt.Errorf("measured has %d samples and true has %d samples, %w", len(x), len(y), ErrShapeMismatch)
	}
	if len(x) == 0 {
		return ErrEmptyInput
	}
	if degree < 0 {
		return fmt.Errorf("got degree %d, %w", degree, ErrNegativeDegree)
	}
	return nil
}

// System is the augmented normal equations matrix of a polynomial fit
type System struct {
	degree int
	aug    *mat.Dense
}

// NewSystem validates the samples and assembles the (degree+1) x (degree+2) augmented matrix
func NewSystem(x, y []float64, degree int) (*System, error) {
	xSums, xySums, err := Moments(x, y, degree)
	if err != nil {
		return nil, err
	}

	n := degree + 1
	coef := make([][]float64, n)
	for i := 0; i < n; i++ {
		coef[i] = xSums[i : i+n : i+n]
	}
	aug, err := mat_.NewAugmented(coef, xySums)
	if err != nil {
		return nil, fmt.Errorf("unable to build augmented matrix, %w", err)
	}
	return &System{
		degree: degree,
		aug:    aug,
	}, nil
}

// Degree returns the polynomial degree the system was built for
func (s *System) Degree() int {
	return s.degree
}

// Augmented returns a copy of the augmented matrix
func (s *System) Augmented() *mat.Dense {
	return mat.DenseCopyOf(s.aug)
}

// Solve returns the polynomial coefficients ordered by increasing power. The stored
// system is left untouched so Solve can be called repeatedly with different epsilons.
func (s *System) Solve(eps float64) ([]float64, error) {
	if eps < 0 || math.IsNaN(eps) {
		return nil, fmt.Errorf("got %f, %w", eps, ErrInvalidEpsilon)
	}

	work := mat.DenseCopyOf(s.aug)
	if err := eliminate(work, eps); err != nil {
		return nil, err
	}
	return backSubstitute(work), nil
}

func eliminate(b *mat.Dense, eps float64) error {
	n, _ := b.Dims()
	for i := 0; i < n; i++ {
		// first row with the largest magnitude wins ties
		pivotRow := i
		best := math.Abs(b.At(i, i))
		for k := i + 1; k < n; k++ {
			if v := math.Abs(b.At(k, i)); v > best {
				pivotRow = k
				best = v
			}
		}
		if !(best >= eps) || best == 0 {
			return fmt.Errorf("pivot column %d has magnitude %g, %w", i, best, ErrSingular)
		}
		if err := mat_.SwapRows(b, i, pivotRow); err != nil {
			return err
		}

		ri := b.RawRowView(i)
		for k := i + 1; k < n; k++ {
			rk := b.RawRowView(k)
			t := rk[i] / ri[i]
			if t == 0 {
				continue
			}
			rk[i] = 0
			for j := i + 1; j < len(rk); j++ {
				rk[j] -= t * ri[j]
			}
		}
	}
	return nil
}

func backSubstitute(b *mat.Dense) []float64 {
	n, cols := b.Dims()
	rhs := cols - 1

	a := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		row := b.RawRowView(i)
		a[i] = row[rhs]
		for j := 0; j < n; j++ {
			if j != i {
				a[i] -= row[j] * a[j]
			}
		}
		a[i] /= row[i]
	}
	return a
}
