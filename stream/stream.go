// Package stream reads calibration samples from and writes evaluated values to a generic byte
// stream such as a serial device. Records are delimited by an end byte and hold two fields
// split by a separator byte, e.g. "35.13,36.6\n".
package stream

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/aouyang1/go-polyfit/sampleset"
)

var (
	ErrMalformedRecord = errors.New("malformed record")
	ErrInvalidOptions  = errors.New("separator, end and comment bytes must be distinct")
	ErrNoReader        = errors.New("no reader")
	ErrNoWriter        = errors.New("no writer")
)

// Options describes the record framing of the stream
type Options struct {
	Separator byte `json:"separator"`
	End       byte `json:"end"`
	Comment   byte `json:"comment"`
}

func NewDefaultOptions() *Options {
	return &Options{
		Separator: ',',
		End:       '\n',
		Comment:   '#',
	}
}

// Validate runs basic validation on the options. A nil receiver returns the defaults.
func (o *Options) Validate() (*Options, error) {
	if o == nil {
		return NewDefaultOptions(), nil
	}
	if o.Separator == o.End || o.Separator == o.Comment || o.End == o.Comment {
		return nil, ErrInvalidOptions
	}
	return o, nil
}

// Sample is a single measured and true value pair
type Sample struct {
	X float64
	Y float64
}

// Reader parses samples from a byte stream
type Reader struct {
	opt  *Options
	r    *bufio.Reader
	line int
}

func NewReader(r io.Reader, opt *Options) (*Reader, error) {
	if r == nil {
		return nil, ErrNoReader
	}
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Reader{
		opt: opt,
		r:   bufio.NewReader(r),
	}, nil
}

// Next returns the next sample skipping blank and comment records. io.EOF is returned once
// the stream is exhausted. A trailing record without an end byte is still parsed.
func (r *Reader) Next() (Sample, error) {
	for {
		record, readErr := r.r.ReadBytes(r.opt.End)
		if readErr != nil && !errors.Is(readErr, io.EOF) {
			return Sample{}, readErr
		}
		if len(record) == 0 && readErr != nil {
			return Sample{}, io.EOF
		}
		r.line++

		record = bytes.TrimSuffix(record, []byte{r.opt.End})
		record = bytes.TrimSpace(record)
		if len(record) == 0 || record[0] == r.opt.Comment {
			if readErr != nil {
				return Sample{}, io.EOF
			}
			continue
		}
		return r.parse(record)
	}
}

func (r *Reader) parse(record []byte) (Sample, error) {
	fields := bytes.Split(record, []byte{r.opt.Separator})
	if len(fields) != 2 {
		return Sample{}, fmt.Errorf("line %d has %d fields, %w", r.line, len(fields), ErrMalformedRecord)
	}

	x, err := strconv.ParseFloat(string(bytes.TrimSpace(fields[0])), 64)
	if err != nil {
		return Sample{}, fmt.Errorf("line %d measured value, %w, %w", r.line, ErrMalformedRecord, err)
	}
	y, err := strconv.ParseFloat(string(bytes.TrimSpace(fields[1])), 64)
	if err != nil {
		return Sample{}, fmt.Errorf("line %d true value, %w, %w", r.line, ErrMalformedRecord, err)
	}
	return Sample{X: x, Y: y}, nil
}

// ReadAll consumes the stream and returns every sample as a sample set
func (r *Reader) ReadAll() (*sampleset.SampleSet, error) {
	s := new(sampleset.SampleSet)
	for {
		sample, err := r.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		s.Append(sample.X, sample.Y)
	}
	if s.Len() == 0 {
		return nil, sampleset.ErrNoSamples
	}
	return s, nil
}

// Writer emits evaluated values as records
type Writer struct {
	opt *Options
	w   *bufio.Writer
}

func NewWriter(w io.Writer, opt *Options) (*Writer, error) {
	if w == nil {
		return nil, ErrNoWriter
	}
	opt, err := opt.Validate()
	if err != nil {
		return nil, err
	}
	return &Writer{
		opt: opt,
		w:   bufio.NewWriter(w),
	}, nil
}

// Write emits a single measured value and its evaluated result and flushes the record
func (w *Writer) Write(value, result float64) error {
	buf := make([]byte, 0, 48)
	buf = strconv.AppendFloat(buf, value, 'g', -1, 64)
	buf = append(buf, w.opt.Separator)
	buf = strconv.AppendFloat(buf, result, 'g', -1, 64)
	buf = append(buf, w.opt.End)
	if _, err := w.w.Write(buf); err != nil {
		return err
	}
	return w.w.Flush()
}
