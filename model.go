package polyfit

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/aouyang1/go-polyfit/stats"
	"github.com/goccy/go-json"
)

// Model represents a serializeable format of a fit polynomial storing the fit options,
// coefficients and training scores
type Model struct {
	Options      *Options      `json:"options"`
	Degree       int           `json:"degree"`
	Coefficients []float64     `json:"coefficients"`
	Scores       *stats.Scores `json:"scores,omitempty"`
}

// Model generates a serializeable representation of the fit. This can be used to
// initialize a new Polynomial for immediate evaluation skipping the fit.
func (p *Polynomial) Model() (Model, error) {
	coef, err := p.Coefficients()
	if err != nil {
		return Model{}, err
	}

	opt := *p.opt
	if p.opt.OutlierOptions != nil {
		oo := *p.opt.OutlierOptions
		opt.OutlierOptions = &oo
	}
	m := Model{
		Options:      &opt,
		Degree:       len(coef) - 1,
		Coefficients: coef,
	}
	if td := p.trainingData; td != nil {
		scores, err := stats.NewScores(predict(coef, td.X), td.Y)
		if err != nil {
			return Model{}, fmt.Errorf("unable to score training data, %w", err)
		}
		m.Scores = scores
	}
	return m, nil
}

// NewFromModel creates a fitted Polynomial from a pre-existing model. This should be generated
// from a previous call to Model().
func NewFromModel(m Model) (*Polynomial, error) {
	if len(m.Coefficients) == 0 {
		return nil, ErrNoCoefficientsInModel
	}
	if m.Degree != len(m.Coefficients)-1 {
		return nil, fmt.Errorf(
			"model degree %d with %d coefficients, %w",
			m.Degree, len(m.Coefficients), ErrShapeMismatch,
		)
	}

	p, err := New(m.Options)
	if err != nil {
		return nil, err
	}
	coef := make([]float64, len(m.Coefficients))
	copy(coef, m.Coefficients)
	p.coef = coef
	p.fitted = true
	return p, nil
}

// LoadModel decodes a json model from r
func LoadModel(r io.Reader) (Model, error) {
	var m Model
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return Model{}, fmt.Errorf("unable to decode model, %w", err)
	}
	return m, nil
}

// Write encodes the model as indented json
func (m Model) Write(w io.Writer) error {
	bytes, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return err
	}
	_, err = w.Write(append(bytes, '\n'))
	return err
}

// TablePrint writes a human readable summary of the model
func (m Model) TablePrint(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "Polynomial:\n  Degree: %d\n", m.Degree); err != nil {
		return err
	}
	if m.Options != nil {
		if _, err := fmt.Fprintf(w, "  Epsilon: %g\n", m.Options.Epsilon); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintf(w, "  Equation: %s\n", modelEq(m.Coefficients)); err != nil {
		return err
	}

	if m.Scores != nil {
		if _, err := fmt.Fprintf(w, "Scores:\n  MAPE: %.3f    MSE: %.3f    R2: %.3f\n",
			m.Scores.MAPE,
			m.Scores.MSE,
			m.Scores.R2,
		); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "Coefficients:\n"); err != nil {
		return err
	}
	tbl := tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
	if _, err := fmt.Fprintf(tbl, "  Power\tValue\t\n"); err != nil {
		return err
	}
	for i, c := range m.Coefficients {
		if _, err := fmt.Fprintf(tbl, "  %d\t%.6g\t\n", i, c); err != nil {
			return err
		}
	}
	return tbl.Flush()
}
