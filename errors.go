package polyfit

import (
	"errors"

	"github.com/aouyang1/go-polyfit/normal"
)

var (
	ErrShapeMismatch         = normal.ErrShapeMismatch
	ErrEmptyInput            = normal.ErrEmptyInput
	ErrNegativeDegree        = normal.ErrNegativeDegree
	ErrSingularSystem        = normal.ErrSingular
	ErrInvalidEpsilon        = normal.ErrInvalidEpsilon
	ErrNotFitted             = errors.New("polynomial has not been fit")
	ErrInvalidOutlierOptions = errors.New("invalid outlier options")
	ErrUnknownMethod         = errors.New("unknown solver method")
	ErrNoSampleSet           = errors.New("no sample set or uninitialized")
	ErrNoCoefficientsInModel = errors.New("no coefficients in model")
	ErrCannotInferRange      = errors.New("cannot infer plot range from training data")
)
