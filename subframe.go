package flac

// Subframe types.
//
//	000000: constant.
//	000001: verbatim.
//	001ooo: fixed prediction, order ooo (0-4).
//	1ooooo: LPC, order ooooo + 1 (1-32).
//
// Everything else is reserved.
//
// ref: https://www.rfc-editor.org/rfc/rfc9639#section-9.2

// decodeSubframes decodes one subframe per channel of the current frame into
// the planar workspace and undoes inter-channel decorrelation. For the
// stereo decorrelation modes the side channel is decoded at one extra bit of
// depth.
func (d *Decoder) decodeSubframes() error {
	blockSize := int(d.blockSize)
	depth := d.frameDepth
	switch assign := d.chanAssign; {
	case assign <= 7:
		// Independent channels; assignment encodes (channel count) - 1.
		offset := 0
		for i := 0; i <= int(assign); i++ {
			if err := d.decodeSubframe(depth, offset); err != nil {
				return err
			}
			offset += blockSize
		}
	case assign <= 10:
		// Stereo decorrelation; the side channel carries the extra bit.
		depth0, depth1 := depth, depth+1
		if assign == 9 {
			// side/right.
			depth0, depth1 = depth+1, depth
		}
		if err := d.decodeSubframe(depth0, 0); err != nil {
			return err
		}
		if err := d.decodeSubframe(depth1, blockSize); err != nil {
			return err
		}
		decorrelate(int(assign), d.samples[:blockSize], d.samples[blockSize:2*blockSize])
	default:
		return ErrReservedChannelAssignment
	}
	return nil
}

// decorrelate transforms the stereo decorrelation modes back into plain
// left/right samples in place.
//
// ref: https://www.rfc-editor.org/rfc/rfc9639#section-4.1
func decorrelate(assign int, ch0, ch1 []int32) {
	switch assign {
	case 8:
		// left/side: R = L - side.
		for i := range ch1 {
			ch1[i] = ch0[i] - ch1[i]
		}
	case 9:
		// side/right: L = side + R.
		for i := range ch0 {
			ch0[i] += ch1[i]
		}
	case 10:
		// mid/side; the arithmetic right shift handles odd side values.
		for i := range ch0 {
			side := ch1[i]
			right := ch0[i] - side>>1
			ch1[i] = right
			ch0[i] = right + side
		}
	}
}

// decodeSubframe decodes one channel's samples into the workspace at the
// given channel offset.
func (d *Decoder) decodeSubframe(depth uint32, offset int) error {
	buf := d.samples[offset : offset+int(d.blockSize)]

	// 1 bit: zero padding, to prevent sync-fooling strings of 1s.
	d.br.readUint(1)

	// 6 bits: subframe type.
	typ := d.br.readUint(6)

	// 1 bit: wasted bits-per-sample flag, followed by a unary count when
	// set. Samples are coded at a reduced depth and shifted back up after
	// decoding.
	wasted := d.br.readUint(1)
	if wasted == 1 {
		for d.br.readUint(1) == 0 {
			wasted++
			if d.br.outOfData {
				return ErrOutOfData
			}
		}
	}
	if wasted >= depth {
		// A subframe must keep at least one bit of sample resolution.
		return ErrBadSampleDepth
	}
	depth -= wasted

	switch {
	case typ == 0:
		// Constant.
		v := d.br.readSint(uint(depth)) << wasted
		for i := range buf {
			buf[i] = v
		}
	case typ == 1:
		// Verbatim.
		for i := range buf {
			buf[i] = d.br.readSint(uint(depth)) << wasted
		}
	case 8 <= typ && typ <= 12:
		// Fixed prediction of order type-8.
		if err := d.decodeFixedSubframe(buf, typ-8, depth); err != nil {
			return err
		}
		shiftWasted(buf, wasted)
	case 32 <= typ && typ <= 63:
		// LPC of order type-31.
		if err := d.decodeLPCSubframe(buf, typ-31, depth); err != nil {
			return err
		}
		shiftWasted(buf, wasted)
	default:
		return ErrReservedSubframeType
	}
	return nil
}

// shiftWasted shifts decoded samples back up by the wasted bits-per-sample
// count of the subframe.
func shiftWasted(buf []int32, wasted uint32) {
	if wasted == 0 {
		return
	}
	for i := range buf {
		buf[i] <<= wasted
	}
}

// decodeFixedSubframe decodes a fixed prediction subframe: order warm-up
// samples followed by Rice-coded residuals, restored with the fixed
// coefficient table. The quantization shift of fixed prediction is 0.
func (d *Decoder) decodeFixedSubframe(buf []int32, order, depth uint32) error {
	if order > 4 {
		return ErrBadFixedPredictionOrder
	}

	// Warm-up samples.
	for i := 0; i < int(order); i++ {
		buf[i] = d.br.readSint(uint(depth))
	}
	if err := d.decodeResiduals(buf, int(order)); err != nil {
		return err
	}

	coefs := fixedCoeffs[order]
	if canUse32BitLPC(depth, coefs, 0) {
		restoreLPC32(buf, coefs, 0)
	} else {
		restoreLPC64(buf, coefs, 0)
	}
	return nil
}

// decodeLPCSubframe decodes a linear predictive coding subframe: order
// warm-up samples, the quantized coefficient block, and Rice-coded
// residuals.
func (d *Decoder) decodeLPCSubframe(buf []int32, order, depth uint32) error {
	// Warm-up samples.
	for i := 0; i < int(order); i++ {
		buf[i] = d.br.readSint(uint(depth))
	}

	// 4 bits: (coefficient precision in bits) - 1.
	precision := d.br.readUint(4) + 1

	// 5 bits: quantization shift.
	shift := d.br.readSint(5)
	if shift < 0 {
		// Negative shifts are forbidden by the format; the reference decoder
		// treats them as zero.
		shift = 0
	}

	// order * precision bits: coefficients, stored newest sample first. The
	// restoration kernels multiply oldest first, so store them reversed.
	coefs := d.coefs[:order]
	for i := 0; i < int(order); i++ {
		coefs[int(order)-1-i] = d.br.readSint(uint(precision))
	}

	if err := d.decodeResiduals(buf, int(order)); err != nil {
		return err
	}

	if canUse32BitLPC(depth, coefs, uint(shift)) {
		restoreLPC32(buf, coefs, uint(shift))
	} else {
		restoreLPC64(buf, coefs, uint(shift))
	}
	return nil
}

// decodeResiduals decodes len(buf)-warmUp residual samples into buf starting
// at index warmUp.
//
// Residual format (pseudo code):
//
//	type RESIDUAL struct {
//	   coding_method   uint2 // 0: 4-bit Rice parameter, 1: 5-bit.
//	   partition_order uint4
//	   partitions      [2^partition_order]partition
//	}
//
//	type partition struct {
//	   parameter uint4/uint5
//	   // parameter < escape: Rice-coded residuals.
//	   // parameter = escape: 5 bit width, then raw residuals of that
//	   // width; width 0 means all zero.
//	}
//
// ref: https://www.rfc-editor.org/rfc/rfc9639#section-9.2.7
func (d *Decoder) decodeResiduals(buf []int32, warmUp int) error {
	method := d.br.readUint(2)
	if method >= 2 {
		return ErrReservedResidualCodingMethod
	}
	paramBits, escape := uint(4), uint32(0x0F)
	if method == 1 {
		paramBits, escape = 5, 0x1F
	}

	partOrder := d.br.readUint(4)
	nparts := 1 << partOrder
	blockSize := len(buf)
	if blockSize%nparts != 0 {
		return ErrBlockSizeNotDivisible
	}
	if blockSize>>partOrder < warmUp {
		// The first partition must be able to hold the warm-up samples.
		return ErrBlockSizeNotDivisible
	}

	pos := warmUp
	for i := 0; i < nparts; i++ {
		count := blockSize >> partOrder
		if i == 0 {
			count -= warmUp
		}
		param := d.br.readUint(paramBits)
		if param < escape {
			for j := 0; j < count; j++ {
				buf[pos] = d.br.readRiceSint(uint(param))
				pos++
			}
			continue
		}
		// Escaped partition: raw residuals of fixed width.
		width := d.br.readUint(5)
		if width == 0 {
			for j := 0; j < count; j++ {
				buf[pos] = 0
				pos++
			}
			continue
		}
		for j := 0; j < count; j++ {
			buf[pos] = d.br.readSint(uint(width))
			pos++
		}
	}
	return nil
}
