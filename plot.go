package polyfit

import (
	"fmt"
	"io"
	"math"

	"github.com/aouyang1/go-polyfit/floatsunrolled"
	"github.com/aouyang1/go-polyfit/sampleset"
	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// PlotOpts sets the range of measured values the fitted curve is drawn over. By default the
// curve spans the training data range using 100 points.
type PlotOpts struct {
	Min       float64
	Max       float64
	NumPoints int
}

// LineXY generates an echart multi-line chart for a set of series sharing the same measured
// values. NaN values are skipped.
func LineXY(title string, seriesName []string, x []float64, y [][]float64) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(
			opts.Title{
				Title: title,
			},
		),
	)

	xLabels := make([]string, 0, len(x))
	for _, v := range x {
		xLabels = append(xLabels, fmt.Sprintf("%.4g", v))
	}

	line = line.SetXAxis(xLabels)
	for i, series := range seriesName {
		lineData := make([]opts.LineData, 0, len(y[i]))
		for _, v := range y[i] {
			if math.IsNaN(v) {
				lineData = append(lineData, opts.LineData{Value: "-"})
				continue
			}
			lineData = append(lineData, opts.LineData{Value: v})
		}
		line = line.AddSeries(series, lineData)
	}
	return line
}

// PlotFit uses the Apache Echarts library to generate an html page showing the fitted curve,
// the training samples against their fitted values, and the fit residual. Without options the
// curve spans the training data. A polynomial without training data, such as one loaded from a
// Model, needs explicit options and only renders the fitted curve.
func (p *Polynomial) PlotFit(w io.Writer, opt *PlotOpts) error {
	if !p.fitted {
		return ErrNotFitted
	}

	var sorted *sampleset.SampleSet
	if td := p.trainingData; td != nil && td.Len() > 0 {
		sorted = td.Sorted()
	}

	numPoints := 100
	var lo, hi float64
	switch {
	case opt != nil:
		lo, hi = opt.Min, opt.Max
		if opt.NumPoints > 1 {
			numPoints = opt.NumPoints
		}
	case sorted != nil:
		var err error
		lo, hi, err = sorted.Range()
		if err != nil {
			return fmt.Errorf("%w, %w", ErrCannotInferRange, err)
		}
	default:
		return ErrCannotInferRange
	}
	if hi < lo {
		return fmt.Errorf("min %f greater than max %f, %w", lo, hi, ErrCannotInferRange)
	}

	grid := make([]float64, numPoints)
	step := (hi - lo) / float64(numPoints-1)
	for i := range grid {
		grid[i] = lo + step*float64(i)
	}

	page := components.NewPage()
	page.AddCharts(
		LineXY(
			"Polynomial Fit",
			[]string{"Fit"},
			grid,
			[][]float64{predict(p.coef, grid)},
		),
	)

	if sorted != nil {
		fitted := predict(p.coef, sorted.X)
		residual := floatsunrolled.SubTo(nil, sorted.Y, fitted)
		page.AddCharts(
			LineXY(
				"Training Samples",
				[]string{"Actual", "Fitted"},
				sorted.X,
				[][]float64{sorted.Y, fitted},
			),
			LineXY(
				"Fit Residual",
				[]string{"Residual"},
				sorted.X,
				[][]float64{residual},
			),
		)
	}
	return page.Render(w)
}
