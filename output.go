package flac

import (
	"encoding/binary"
)

// writeSamples packs the decoded planar workspace of the current frame into
// out as interleaved little-endian samples.
//
// In native packing mode each sample occupies the smallest whole number of
// bytes that holds the sample depth; depths that are not a multiple of 8
// are shifted up so the meaningful bits sit at the top of the container,
// and 8-bit samples are biased by +128 into the unsigned domain. In 32-bit
// mode every sample is a 4-byte signed integer, MSB-aligned.
//
// The common depth and channel layouts get their own loops; everything else
// goes through the general path.
func (d *Decoder) writeSamples(out []byte) {
	blockSize := int(d.blockSize)
	nchannels := int(d.info.NChannels)
	depth := d.frameDepth

	if d.out32 {
		shift := 32 - depth
		switch nchannels {
		case 2:
			d.writeSamples32BitStereo(out, blockSize, shift)
		case 1:
			d.writeSamples32BitMono(out, blockSize, shift)
		default:
			d.writeSamples32BitGeneral(out, blockSize, shift)
		}
		return
	}

	bytesPerSample := int(depth+7) / 8
	shift := uint32(0)
	if depth%8 != 0 {
		shift = 8 - depth%8
	}
	switch {
	case depth == 16 && nchannels == 2:
		d.writeSamples16BitStereo(out, blockSize)
	case depth == 16 && nchannels == 1:
		d.writeSamples16BitMono(out, blockSize)
	case depth == 24 && nchannels == 2:
		d.writeSamples24BitStereo(out, blockSize)
	default:
		d.writeSamplesGeneral(out, blockSize, bytesPerSample, shift, depth)
	}
}

// writeSamples16BitStereo is the 16-bit stereo fast path.
func (d *Decoder) writeSamples16BitStereo(out []byte, blockSize int) {
	left := d.samples[:blockSize]
	right := d.samples[blockSize : 2*blockSize]
	for i := 0; i < blockSize; i++ {
		binary.LittleEndian.PutUint16(out[4*i:], uint16(left[i]))
		binary.LittleEndian.PutUint16(out[4*i+2:], uint16(right[i]))
	}
}

// writeSamples16BitMono is the 16-bit mono fast path.
func (d *Decoder) writeSamples16BitMono(out []byte, blockSize int) {
	for i := 0; i < blockSize; i++ {
		binary.LittleEndian.PutUint16(out[2*i:], uint16(d.samples[i]))
	}
}

// writeSamples24BitStereo is the 24-bit stereo fast path.
func (d *Decoder) writeSamples24BitStereo(out []byte, blockSize int) {
	left := d.samples[:blockSize]
	right := d.samples[blockSize : 2*blockSize]
	pos := 0
	for i := 0; i < blockSize; i++ {
		l, r := left[i], right[i]
		out[pos] = byte(l)
		out[pos+1] = byte(l >> 8)
		out[pos+2] = byte(l >> 16)
		out[pos+3] = byte(r)
		out[pos+4] = byte(r >> 8)
		out[pos+5] = byte(r >> 16)
		pos += 6
	}
}

// writeSamplesGeneral serves every remaining depth and channel layout in
// native packing mode.
func (d *Decoder) writeSamplesGeneral(out []byte, blockSize, bytesPerSample int, shift, depth uint32) {
	nchannels := int(d.info.NChannels)
	pos := 0
	for i := 0; i < blockSize; i++ {
		for ch := 0; ch < nchannels; ch++ {
			sample := d.samples[ch*blockSize+i]
			if depth == 8 {
				// Unsigned 8-bit PCM.
				sample += 128
			}
			if shift > 0 {
				sample <<= shift
			}
			for b := 0; b < bytesPerSample; b++ {
				out[pos] = byte(sample >> (8 * b))
				pos++
			}
		}
	}
}

// writeSamples32BitStereo is the stereo fast path of 32-bit output mode.
func (d *Decoder) writeSamples32BitStereo(out []byte, blockSize int, shift uint32) {
	left := d.samples[:blockSize]
	right := d.samples[blockSize : 2*blockSize]
	for i := 0; i < blockSize; i++ {
		binary.LittleEndian.PutUint32(out[8*i:], uint32(left[i])<<shift)
		binary.LittleEndian.PutUint32(out[8*i+4:], uint32(right[i])<<shift)
	}
}

// writeSamples32BitMono is the mono fast path of 32-bit output mode.
func (d *Decoder) writeSamples32BitMono(out []byte, blockSize int, shift uint32) {
	for i := 0; i < blockSize; i++ {
		binary.LittleEndian.PutUint32(out[4*i:], uint32(d.samples[i])<<shift)
	}
}

// writeSamples32BitGeneral serves three or more channels in 32-bit output
// mode.
func (d *Decoder) writeSamples32BitGeneral(out []byte, blockSize int, shift uint32) {
	nchannels := int(d.info.NChannels)
	pos := 0
	for i := 0; i < blockSize; i++ {
		for ch := 0; ch < nchannels; ch++ {
			binary.LittleEndian.PutUint32(out[pos:], uint32(d.samples[ch*blockSize+i])<<shift)
			pos += 4
		}
	}
}
