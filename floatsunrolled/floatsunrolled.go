// floatsunrolled is inspired by the SIMD blog post
// https://github.com/camdencheek/simd_blog/blob/main/main.go
//
// Unlike gonum's floats package the kernels here accept any slice length. The
// bulk of each slice is processed in batches of UnrollBatch and the remainder
// is handled element by element.
package floatsunrolled

import (
	"errors"
)

const UnrollBatch = 4

var (
	ErrSliceLengthMismatch       = errors.New("slices must have equal lengths")
	ErrOutputSliceLengthMismatch = errors.New("output slice length not the same as input")
)

// batched returns the length of the prefix that can be processed in full batches
func batched(n int) int {
	return n - n%UnrollBatch
}

// Sum adds up all values of s
func Sum(s []float64) float64 {
	end := batched(len(s))

	var sum float64
	for i := 0; i < end; i += UnrollBatch {
		sTmp := s[i : i+UnrollBatch : i+UnrollBatch]
		sum += sTmp[0] + sTmp[1] + sTmp[2] + sTmp[3]
	}
	for i := end; i < len(s); i++ {
		sum += s[i]
	}
	return sum
}

// Dot computes the inner product of a and b
func Dot(a, b []float64) float64 {
	if len(a) != len(b) {
		panic(ErrSliceLengthMismatch)
	}
	end := batched(len(a))

	var sum float64
	for i := 0; i < end; i += UnrollBatch {
		aTmp := a[i : i+UnrollBatch : i+UnrollBatch]
		bTmp := b[i : i+UnrollBatch : i+UnrollBatch]
		s0 := aTmp[0] * bTmp[0]
		s1 := aTmp[1] * bTmp[1]
		s2 := aTmp[2] * bTmp[2]
		s3 := aTmp[3] * bTmp[3]
		sum += s0 + s1 + s2 + s3
	}
	for i := end; i < len(a); i++ {
		sum += a[i] * b[i]
	}
	return sum
}

// MulTo stores the element-wise product of s and t into dst. dst may alias s or t.
// A nil dst allocates a new slice.
func MulTo(dst, s, t []float64) []float64 {
	if len(s) != len(t) {
		panic(ErrSliceLengthMismatch)
	}

	if dst == nil {
		dst = make([]float64, len(s))
	} else if len(dst) != len(s) {
		panic(ErrOutputSliceLengthMismatch)
	}
	end := batched(len(s))

	for i := 0; i < end; i += UnrollBatch {
		dstTmp := dst[i : i+UnrollBatch : i+UnrollBatch]
		sTmp := s[i : i+UnrollBatch : i+UnrollBatch]
		tTmp := t[i : i+UnrollBatch : i+UnrollBatch]
		dstTmp[0] = sTmp[0] * tTmp[0]
		dstTmp[1] = sTmp[1] * tTmp[1]
		dstTmp[2] = sTmp[2] * tTmp[2]
		dstTmp[3] = sTmp[3] * tTmp[3]
	}
	for i := end; i < len(s); i++ {
		dst[i] = s[i] * t[i]
	}
	return dst
}

// SubTo stores s - t into dst. A nil dst allocates a new slice.
func SubTo(dst, s, t []float64) []float64 {
	if len(s) != len(t) {
		panic(ErrSliceLengthMismatch)
	}

	if dst == nil {
		dst = make([]float64, len(s))
	} else if len(dst) != len(s) {
		panic(ErrOutputSliceLengthMismatch)
	}
	end := batched(len(s))

	for i := 0; i < end; i += UnrollBatch {
		dstTmp := dst[i : i+UnrollBatch : i+UnrollBatch]
		sTmp := s[i : i+UnrollBatch : i+UnrollBatch]
		tTmp := t[i : i+UnrollBatch : i+UnrollBatch]
		dstTmp[0] = sTmp[0] - tTmp[0]
		dstTmp[1] = sTmp[1] - tTmp[1]
		dstTmp[2] = sTmp[2] - tTmp[2]
		dstTmp[3] = sTmp[3] - tTmp[3]
	}
	for i := end; i < len(s); i++ {
		dst[i] = s[i] - t[i]
	}
	return dst
}
