package flac

import (
	"math"
	mathbits "math/bits"
)

// fixedCoeffs is the fixed prediction coefficient table, keyed by predictor
// order and ordered oldest sample first.
//
// ref: https://www.rfc-editor.org/rfc/rfc9639#section-9.2.2
var fixedCoeffs = [5][]int32{
	0: {},
	1: {1},
	2: {-1, 2},
	3: {1, -3, 3},
	4: {-1, 4, -6, 4},
}

// silog2 returns the number of bits needed to represent v as a signed
// integer, i.e. floor(log2(|v|)) + 2 for magnitudes above one.
func silog2(v int64) uint32 {
	switch v {
	case 0:
		return 0
	case -1:
		return 2
	case math.MinInt64:
		return 64
	}
	if v < 0 {
		v = -v
	}
	// Highest set bit position plus the sign bit.
	return uint32(64-mathbits.LeadingZeros64(uint64(v))) + 1
}

// maxPredictionBeforeShift returns the maximum magnitude the prediction sum
// can reach before the quantization shift: the maximum sample magnitude at
// the given depth times the sum of coefficient magnitudes.
func maxPredictionBeforeShift(depth uint32, coefs []int32) uint64 {
	maxSample := uint64(1) << (depth - 1)
	var absSum uint64
	for _, c := range coefs {
		if c < 0 {
			absSum += uint64(-c)
		} else {
			absSum += uint64(c)
		}
	}
	return maxSample * absSum
}

// canUse32BitLPC reports whether linear prediction restoration at the given
// sample depth, coefficient set and quantization shift fits 32-bit
// accumulator arithmetic: both the prediction sum before the shift and the
// restored sample must fit a signed 32-bit integer. When it does not, the
// 64-bit kernel must be used.
func canUse32BitLPC(depth uint32, coefs []int32, shift uint) bool {
	maxPred := maxPredictionBeforeShift(depth, coefs)
	predBits := silog2(int64(maxPred))
	// Round the shifted prediction magnitude up, like the arithmetic shift
	// of a negative sum does.
	maxPredShifted := uint64(-((-int64(maxPred)) >> shift))
	residualBits := silog2(int64(uint64(1)<<(depth-1) + maxPredShifted))
	return predBits <= 32 && residualBits <= 32
}

// restoreLPC32 converts residuals to samples in place using 32-bit
// accumulator arithmetic. buf holds len(coefs) warm-up samples followed by
// residuals; coefs are ordered oldest sample first. Safe only when
// canUse32BitLPC holds for the subframe parameters.
func restoreLPC32(buf []int32, coefs []int32, shift uint) {
	order := len(coefs)
	n := len(buf) - order
	for i := 0; i < n; i++ {
		var sum int32
		for j, c := range coefs {
			sum += buf[i+j] * c
		}
		buf[i+order] += sum >> shift
	}
}

// restoreLPC64 converts residuals to samples in place using 64-bit
// accumulator arithmetic. Slower than restoreLPC32 but safe for every valid
// stream, including high resolution audio.
func restoreLPC64(buf []int32, coefs []int32, shift uint) {
	order := len(coefs)
	n := len(buf) - order
	for i := 0; i < n; i++ {
		var sum int64
		for j, c := range coefs {
			sum += int64(buf[i+j]) * int64(c)
		}
		buf[i+order] += int32(sum >> shift)
	}
}
