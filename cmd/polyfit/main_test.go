package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/aouyang1/go-polyfit"
	"github.com/aouyang1/go-polyfit/sampleset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseValues(t *testing.T) {
	vals, err := parseValues("")
	require.Nil(t, err)
	assert.Nil(t, vals)

	vals, err = parseValues("34.5, 35,-1e2")
	require.Nil(t, err)
	assert.Equal(t, []float64{34.5, 35, -100}, vals)

	_, err = parseValues("1,x")
	assert.Error(t, err)
}

func TestLoadConfig(t *testing.T) {
	cfg, err := loadConfig("")
	require.Nil(t, err)
	assert.Equal(t, NewDefaultConfig(), cfg)

	path := filepath.Join(t.TempDir(), "config.json")
	require.Nil(t, os.WriteFile(path, []byte(`{"degree":2,"options":{"epsilon":1e-9},"separator":";"}`), 0o644))

	cfg, err = loadConfig(path)
	require.Nil(t, err)
	assert.Equal(t, 2, cfg.Degree)
	assert.Equal(t, 1e-9, cfg.Options.Epsilon)

	opt, err := cfg.streamOptions()
	require.Nil(t, err)
	assert.Equal(t, byte(';'), opt.Separator)
	assert.Equal(t, byte('\n'), opt.End)

	cfg.End = "\r\n"
	_, err = cfg.streamOptions()
	assert.ErrorIs(t, err, ErrInvalidDelimiter)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestFitPolynomialFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.csv")
	data := "# measured,true\n35.13,36.6\n35.56,36.7\n34.18,36.3\n34.38,36.4\n" +
		"34.33,36.4\n35.04,36.6\n33.99,36.3\n32.65,36.0\n"
	require.Nil(t, os.WriteFile(path, []byte(data), 0o644))

	cfg := NewDefaultConfig()
	streamOpt, err := cfg.streamOptions()
	require.Nil(t, err)

	p, err := fitPolynomial(cfg, path, streamOpt)
	require.Nil(t, err)

	val, err := p.Evaluate(34.5)
	require.Nil(t, err)
	assert.InDelta(t, 36.4, val, 0.1)

	modelPath := filepath.Join(t.TempDir(), "model.json")
	m, err := p.Model()
	require.Nil(t, err)
	require.Nil(t, writeFile(modelPath, m.Write))

	restored, err := loadPolynomial(modelPath)
	require.Nil(t, err)
	restoredVal, err := restored.Evaluate(34.5)
	require.Nil(t, err)
	assert.Equal(t, val, restoredVal)
}

func TestFitPolynomialDropsNaN(t *testing.T) {
	path := filepath.Join(t.TempDir(), "samples.csv")
	data := "0,1\n1,3\nNaN,4\n2,5\n3,NaN\n3,7\n"
	require.Nil(t, os.WriteFile(path, []byte(data), 0o644))

	cfg := NewDefaultConfig()
	cfg.Degree = 1
	streamOpt, err := cfg.streamOptions()
	require.Nil(t, err)

	p, err := fitPolynomial(cfg, path, streamOpt)
	require.Nil(t, err)

	coef, err := p.Coefficients()
	require.Nil(t, err)
	assert.InDeltaSlice(t, []float64{1, 2}, coef, 1e-9)
	assert.Equal(t, 4, p.TrainingData().Len())

	require.Nil(t, os.WriteFile(path, []byte("NaN,1\n2,NaN\n"), 0o644))
	_, err = fitPolynomial(cfg, path, streamOpt)
	assert.ErrorIs(t, err, sampleset.ErrAllSamplesExcluded)
}

func TestPlotOptions(t *testing.T) {
	fit, err := polyfit.New(nil)
	require.Nil(t, err)
	_, err = fit.Fit([]float64{0, 1, 2}, []float64{1, 3, 5}, 1)
	require.Nil(t, err)

	m, err := fit.Model()
	require.Nil(t, err)
	loaded, err := polyfit.NewFromModel(m)
	require.Nil(t, err)

	testData := map[string]struct {
		p        *polyfit.Polynomial
		lo       float64
		hi       float64
		points   []float64
		expected *polyfit.PlotOpts
	}{
		"explicit range": {
			p:        loaded,
			lo:       1,
			hi:       4,
			expected: &polyfit.PlotOpts{Min: 1, Max: 4},
		},
		"training range": {
			p:      fit,
			points: []float64{10, 20},
		},
		"evaluation points range": {
			p:        loaded,
			points:   []float64{3, -1, 7},
			expected: &polyfit.PlotOpts{Min: -1, Max: 7},
		},
		"no range": {
			p: loaded,
		},
	}

	for name, td := range testData {
		t.Run(name, func(t *testing.T) {
			assert.Equal(t, td.expected, plotOptions(td.p, td.lo, td.hi, td.points))
		})
	}

	var buf bytes.Buffer
	require.Nil(t, loaded.PlotFit(&buf, plotOptions(loaded, 0, 0, []float64{3, -1, 7})))
	assert.Contains(t, buf.String(), "Polynomial Fit")
}
