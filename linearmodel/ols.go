// Package linearmodel solves the polynomial least squares problem directly on the
// Vandermonde design matrix with a QR factorization. It avoids squaring the condition
// number the way the normal equations do and is used to cross check them.
package linearmodel

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrTargetLenMismatch = errors.New("target length does not match training rows")
	ErrNoTrainingData    = errors.New("no training data")
	ErrNegativeDegree    = errors.New("polynomial degree must be non-negative")
	ErrRankDeficient     = errors.New("design matrix is rank deficient")
)

// Vandermonde returns the design matrix with columns x^0, x^1, ... x^degree
func Vandermonde(x []float64, degree int) (*mat.Dense, error) {
	if len(x) == 0 {
		return nil, ErrNoTrainingData
	}
	if degree < 0 {
		return nil, fmt.Errorf("got degree %d, %w", degree, ErrNegativeDegree)
	}
	m := len(x)
	n := degree + 1
	data := make([]float64, m*n)
	for i, v := range x {
		pow := 1.0
		for j := 0; j < n; j++ {
			data[i*n+j] = pow
			pow *= v
		}
	}
	return mat.NewDense(m, n, data), nil
}

// OLSPolynomial computes the ordinary least squares polynomial coefficients using QR
// factorization of the Vandermonde matrix. Coefficients are ordered by increasing power.
// A diagonal entry of R below eps in magnitude is reported as rank deficient.
func OLSPolynomial(x, y []float64, degree int, eps float64) ([]float64, error) {
	if len(x) == 0 {
		return nil, ErrNoTrainingData
	}
	if len(x) != len(y) {
		return nil, fmt.Errorf("training data has %d rows and target has %d row, %w", len(x), len(y), ErrTargetLenMismatch)
	}
	if degree < 0 {
		return nil, fmt.Errorf("got degree %d, %w", degree, ErrNegativeDegree)
	}
	n := degree + 1
	if len(x) < n {
		return nil, fmt.Errorf("%d rows for %d coefficients, %w", len(x), n, ErrRankDeficient)
	}

	design, err := Vandermonde(x, degree)
	if err != nil {
		return nil, err
	}
	yT := mat.NewDense(1, len(y), y)

	qr := new(mat.QR)
	qr.Factorize(design)

	q := new(mat.Dense)
	r := new(mat.Dense)

	qr.QTo(q)
	qr.RTo(r)
	yq := new(mat.Dense)
	yq.Mul(yT, q)

	c := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		diag := r.At(i, i)
		if math.Abs(diag) < eps || diag == 0 {
			return nil, fmt.Errorf("column %d has magnitude %g, %w", i, math.Abs(diag), ErrRankDeficient)
		}
		c[i] = yq.At(0, i)
		for j := i + 1; j < n; j++ {
			c[i] -= c[j] * r.At(i, j)
		}
		c[i] /= diag
	}
	return c, nil
}
