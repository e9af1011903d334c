package mat

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/mat"
)

var (
	ErrColMismatch     = errors.New("column size mismatch")
	ErrRowMismatch     = errors.New("row size mismatch")
	ErrRowOutOfBounds  = errors.New("row is out of bounds")
	ErrEmptyDimensions = errors.New("matrix must have at least one row and column")
)

func deriveShape(x [][]float64) (int, int, error) {
	m := len(x)

	n := -1
	for i, row := range x {
		if n >= 0 && len(row) != n {
			return 0, 0, fmt.Errorf("at row %d, %w", i, ErrColMismatch)
		}
		if n < 0 {
			n = len(row)
		}
	}
	if n < 0 {
		n = 0
	}
	if m == 0 || n == 0 {
		return 0, 0, ErrEmptyDimensions
	}
	return m, n, nil
}

// NewAugmented builds the augmented matrix [a | b] where b becomes the last column
func NewAugmented(a [][]float64, b []float64) (*mat.Dense, error) {
	m, n, err := deriveShape(a)
	if err != nil {
		return nil, err
	}
	if len(b) != m {
		return nil, fmt.Errorf("coefficient rows %d, right hand side rows %d, %w", m, len(b), ErrRowMismatch)
	}

	data := make([]float64, 0, m*(n+1))
	for i, row := range a {
		data = append(data, row...)
		data = append(data, b[i])
	}
	return mat.NewDense(m, n+1, data), nil
}

// SwapRows exchanges rows i and j of mx in place
func SwapRows(mx *mat.Dense, i, j int) error {
	m, _ := mx.Dims()
	if i < 0 || i >= m {
		return fmt.Errorf("row %d, %w", i, ErrRowOutOfBounds)
	}
	if j < 0 || j >= m {
		return fmt.Errorf("row %d, %w", j, ErrRowOutOfBounds)
	}
	if i == j {
		return nil
	}

	ri := mx.RawRowView(i)
	rj := mx.RawRowView(j)
	for k := range ri {
		ri[k], rj[k] = rj[k], ri[k]
	}
	return nil
}
