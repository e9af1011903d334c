// Command polyfit fits a calibration polynomial to measured,true samples read from a file
// or stdin and evaluates it at the requested points.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/aouyang1/go-polyfit"
	"github.com/aouyang1/go-polyfit/stream"
	"github.com/goccy/go-json"
	"github.com/pkg/profile"
)

var ErrInvalidDelimiter = errors.New("delimiter must be a single byte")

// Config mirrors the command line flags and can be loaded from a json file
type Config struct {
	Degree    int              `json:"degree"`
	Options   *polyfit.Options `json:"options"`
	Outliers  bool             `json:"outliers"`
	Separator string           `json:"separator"`
	End       string           `json:"end"`
}

func NewDefaultConfig() *Config {
	return &Config{
		Degree:    3,
		Options:   polyfit.NewDefaultOptions(),
		Separator: ",",
		End:       "\n",
	}
}

func loadConfig(path string) (*Config, error) {
	cfg := NewDefaultConfig()
	if path == "" {
		return cfg, nil
	}
	bytes, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(bytes, cfg); err != nil {
		return nil, fmt.Errorf("unable to parse config %s, %w", path, err)
	}
	return cfg, nil
}

func (c *Config) streamOptions() (*stream.Options, error) {
	opt := stream.NewDefaultOptions()
	if len(c.Separator) != 1 {
		return nil, fmt.Errorf("separator %q, %w", c.Separator, ErrInvalidDelimiter)
	}
	if len(c.End) != 1 {
		return nil, fmt.Errorf("end %q, %w", c.End, ErrInvalidDelimiter)
	}
	opt.Separator = c.Separator[0]
	opt.End = c.End[0]
	return opt.Validate()
}

func parseValues(s string) ([]float64, error) {
	if s == "" {
		return nil, nil
	}
	fields := strings.Split(s, ",")
	vals := make([]float64, 0, len(fields))
	for _, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil {
			return nil, fmt.Errorf("unable to parse evaluation point %q, %w", f, err)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func openInput(path string) (io.ReadCloser, error) {
	if path == "" || path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func run() error {
	var (
		configPath = flag.String("config", "", "json config file, flags override its values")
		samples    = flag.String("samples", "-", "sample stream of measured,true records, - for stdin")
		degree     = flag.Int("degree", -1, "polynomial degree, defaults to the config or 3")
		epsilon    = flag.Float64("epsilon", -1, "singular pivot threshold, defaults to the config or 1e-12")
		outliers   = flag.Bool("outliers", false, "iteratively remove outlier samples before the final fit")
		eval       = flag.String("eval", "", "comma separated measured values to evaluate")
		modelIn    = flag.String("model-in", "", "load a fitted model instead of reading samples")
		modelOut   = flag.String("model-out", "", "write the fitted model as json")
		plot       = flag.String("plot", "", "write an html plot of the fit")
		plotMin    = flag.Float64("plot-min", 0, "smallest measured value of the plotted curve")
		plotMax    = flag.Float64("plot-max", 0, "largest measured value of the plotted curve, the training range is used when not above plot-min")
		cpuProfile = flag.Bool("profile", false, "write a cpu profile to the current directory")
	)
	flag.Parse()

	if *cpuProfile {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		return err
	}
	if *degree >= 0 {
		cfg.Degree = *degree
	}
	if cfg.Options == nil {
		cfg.Options = polyfit.NewDefaultOptions()
	}
	if *epsilon >= 0 {
		cfg.Options.Epsilon = *epsilon
	}
	if *outliers {
		cfg.Outliers = true
	}
	if cfg.Outliers && cfg.Options.OutlierOptions == nil {
		cfg.Options.OutlierOptions = polyfit.NewOutlierOptions()
	}

	streamOpt, err := cfg.streamOptions()
	if err != nil {
		return err
	}
	points, err := parseValues(*eval)
	if err != nil {
		return err
	}

	var p *polyfit.Polynomial
	if *modelIn != "" {
		p, err = loadPolynomial(*modelIn)
	} else {
		p, err = fitPolynomial(cfg, *samples, streamOpt)
	}
	if err != nil {
		return err
	}

	m, err := p.Model()
	if err != nil {
		return err
	}
	if err := m.TablePrint(os.Stderr); err != nil {
		return err
	}

	if *modelOut != "" {
		if err := writeFile(*modelOut, m.Write); err != nil {
			return fmt.Errorf("unable to write model, %w", err)
		}
	}
	if *plot != "" {
		plotOpt := plotOptions(p, *plotMin, *plotMax, points)
		if err := writeFile(*plot, func(w io.Writer) error { return p.PlotFit(w, plotOpt) }); err != nil {
			return fmt.Errorf("unable to write plot, %w", err)
		}
	}

	w, err := stream.NewWriter(os.Stdout, streamOpt)
	if err != nil {
		return err
	}
	for _, v := range points {
		res, err := p.Evaluate(v)
		if err != nil {
			return err
		}
		if err := w.Write(v, res); err != nil {
			return err
		}
	}
	return nil
}

// plotOptions returns the explicit plot range if one was given. A polynomial without training
// data falls back to the range of the evaluation points.
func plotOptions(p *polyfit.Polynomial, lo, hi float64, points []float64) *polyfit.PlotOpts {
	if hi > lo {
		return &polyfit.PlotOpts{Min: lo, Max: hi}
	}
	if p.TrainingData() != nil || len(points) == 0 {
		return nil
	}
	opt := &polyfit.PlotOpts{Min: points[0], Max: points[0]}
	for _, v := range points[1:] {
		opt.Min = math.Min(opt.Min, v)
		opt.Max = math.Max(opt.Max, v)
	}
	return opt
}

func loadPolynomial(path string) (*polyfit.Polynomial, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	m, err := polyfit.LoadModel(f)
	if err != nil {
		return nil, err
	}
	return polyfit.NewFromModel(m)
}

func fitPolynomial(cfg *Config, samples string, streamOpt *stream.Options) (*polyfit.Polynomial, error) {
	in, err := openInput(samples)
	if err != nil {
		return nil, err
	}
	defer in.Close()

	r, err := stream.NewReader(in, streamOpt)
	if err != nil {
		return nil, err
	}
	s, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("unable to read samples, %w", err)
	}
	numRead := s.Len()
	s, err = s.DropNaN()
	if err != nil {
		return nil, fmt.Errorf("unable to drop NaN samples, %w", err)
	}
	if dropped := numRead - s.Len(); dropped > 0 {
		slog.Warn("dropped samples with NaN values", "dropped", dropped, "remaining", s.Len())
	}
	slog.Info("read samples", "count", s.Len(), "degree", cfg.Degree)

	p, err := polyfit.New(cfg.Options)
	if err != nil {
		return nil, err
	}
	if _, err := p.FitWithOutliers(s.X, s.Y, cfg.Degree); err != nil {
		return nil, err
	}
	if outliers := p.Outliers(); len(outliers) > 0 {
		slog.Warn("excluded outlier samples", "indices", outliers)
	}
	return p, nil
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func main() {
	if err := run(); err != nil {
		slog.Error("polyfit failed", "error", err.Error())
		os.Exit(1)
	}
}
