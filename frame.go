package flac

import (
	"github.com/mewkiz/pkg/hashutil/crc16"
	"github.com/mewkiz/pkg/hashutil/crc8"
)

// sampleRates maps sample rate codes 1 through 11 to their rate in Hz.
var sampleRates = [...]uint32{88200, 176400, 192000, 8000, 16000, 22050, 24000, 32000, 44100, 48000, 96000}

// DecodeFrame decodes the next audio frame from the given buffer and packs
// its interleaved samples into out. It returns the number of samples per
// channel decoded, n, with n*NumChannels() samples written to out.
//
// An empty buffer yields ErrNoMoreFrames; the stream ended cleanly. A
// buffer which ends mid-frame yields ErrOutOfData with no bytes consumed,
// so the caller may grow or refill the buffer and retry the same frame. On
// any other error the frame's partial output must be regarded as undefined.
func (d *Decoder) DecodeFrame(data, out []byte) (n int, err error) {
	if !d.headerDone {
		return 0, ErrBadHeader
	}
	d.br.reset(data)
	d.consumed = 0

	if d.samples == nil {
		d.samples = make([]int32, d.OutputBufferSize())
	}
	if len(data) == 0 {
		return 0, ErrNoMoreFrames
	}

	if err := d.decodeFrameHeader(); err != nil {
		return 0, err
	}

	// The workspace is sized from StreamInfo; a frame claiming more would
	// write out of bounds, in particular after a parse error.
	if d.blockSize > uint32(d.info.BlockSizeMax) {
		return 0, ErrBlockSizeOutOfRange
	}
	if len(out) < int(d.blockSize)*int(d.info.NChannels)*d.OutputBytesPerSample() {
		return 0, ErrOutputBufferTooSmall
	}

	if err := d.decodeSubframes(); err != nil {
		return 0, err
	}
	if d.br.outOfData {
		return 0, ErrOutOfData
	}

	// Frame footer CRC-16, covering every byte from the first sync byte up
	// to but not including the checksum itself.
	d.br.alignToByte()
	if int(d.br.n/8)+d.br.bytesLeft() < 2 {
		return 0, ErrOutOfData
	}
	frameEnd := d.br.pos - int(d.br.n/8)
	want := uint16(d.br.readUint(16))
	if d.crcCheck && frameEnd > d.frameStart {
		got := crc16.ChecksumIBM(data[d.frameStart:frameEnd])
		if got != want {
			return 0, ErrCRCMismatch
		}
	}

	d.writeSamples(out)

	d.br.rewind()
	d.consumed = d.br.pos
	return int(d.blockSize), nil
}

// findFrameSync consumes bytes until it finds the frame sync pattern: a
// 0xFF byte followed by a byte whose top 7 bits are 0b1111100. When a 0xFF
// is followed by a second 0xFF, the second one is kept as a candidate first
// sync byte. On success the second sync byte is returned and frameStart
// records the offset of the first.
func (d *Decoder) findFrameSync() (sync1 byte, err error) {
	d.br.alignToByte()

	read := 0
	secondFF := false
	for {
		var b uint32
		if secondFF {
			b = 0xFF
			secondFF = false
		} else {
			b = d.br.readAlignedByte()
			read++
		}
		if b == 0xFF {
			b = d.br.readAlignedByte()
			read++
			if b == 0xFF {
				secondFF = true
			} else if b>>1 == 0x7C {
				d.frameStart = read - 2
				return byte(b), nil
			}
		}
		if d.br.outOfData {
			return 0, ErrSyncNotFound
		}
	}
}

// decodeFrameHeader locates the next frame sync code, parses the frame
// header, validates its CRC-8, and checks the frame parameters against
// StreamInfo; mid-stream parameter changes are rejected.
//
// Frame header format (pseudo code):
//
//	type FRAME_HEADER struct {
//	   sync_code          uint14 // 11111111111110
//	   _                  uint1
//	   blocking_strategy  uint1
//	   block_size         uint4
//	   sample_rate        uint4
//	   channel_assignment uint4
//	   sample_size        uint3
//	   _                  uint1
//	   coded_number       [1-7]byte // "UTF-8" coded frame/sample number.
//	   // optional 8/16 bit block size, per block_size.
//	   // optional 8/16 bit sample rate, per sample_rate.
//	   crc8               uint8
//	}
//
// ref: https://www.rfc-editor.org/rfc/rfc9639#section-9.1
func (d *Decoder) decodeFrameHeader() error {
	// Raw header bytes, covered by the trailing CRC-8. At most 4 fixed + 7
	// coded number + 2 block size + 2 sample rate = 15 bytes.
	var raw [16]byte
	rawLen := 0

	sync1, err := d.findFrameSync()
	if err != nil {
		return err
	}
	raw[0] = 0xFF
	raw[1] = sync1
	rawLen = 2

	// A sync byte cannot occur inside a frame header; running into one means
	// the original sync was a false positive.
	b := d.br.readAlignedByte()
	if d.br.outOfData {
		return ErrOutOfData
	}
	if b == 0xFF {
		return ErrSyncNotFound
	}
	raw[rawLen] = byte(b)
	rawLen++

	// 4 bits: block size code.
	//    0000:      reserved.
	//    0001:      192 samples.
	//    0010-0101: 576 * 2^(code-2) samples.
	//    0110:      8 bit (block size - 1) at end of header.
	//    0111:      16 bit (block size - 1) at end of header.
	//    1000-1111: 256 * 2^(code-8) samples.
	blockSizeCode := raw[2] >> 4
	switch {
	case blockSizeCode == 0:
		return ErrBadBlockSizeCode
	case blockSizeCode == 1:
		d.blockSize = 192
	case blockSizeCode <= 5:
		d.blockSize = 576 << (blockSizeCode - 2)
	case blockSizeCode <= 7:
		// Parsed after the coded number.
	default:
		d.blockSize = 256 << (blockSizeCode - 8)
	}

	// 4 bits: sample rate code; uncommon rates are parsed after the coded
	// number.
	sampleRateCode := raw[2] & 0x0F

	b = d.br.readAlignedByte()
	if d.br.outOfData {
		return ErrOutOfData
	}
	if b == 0xFF {
		return ErrSyncNotFound
	}
	raw[rawLen] = byte(b)
	rawLen++

	// 4 bits: channel assignment.
	//    0000-0111: (number of independent channels) - 1.
	//    1000:      left/side stereo.
	//    1001:      side/right stereo.
	//    1010:      mid/side stereo.
	//    1011-1111: reserved.
	d.chanAssign = uint32(raw[3] >> 4)

	// 3 bits: sample size code.
	depthCode := raw[3] & 0x0E >> 1
	switch depthCode {
	case 0:
		// Inherited from StreamInfo.
		d.frameDepth = uint32(d.info.BitsPerSample)
	case 1:
		d.frameDepth = 8
	case 2:
		d.frameDepth = 12
	case 3:
		return ErrBadSampleDepth
	case 4:
		d.frameDepth = 16
	case 5:
		d.frameDepth = 20
	case 6:
		d.frameDepth = 24
	case 7:
		d.frameDepth = 32
	}

	// 1 bit: reserved. Deliberately not checked; encoders in the wild emit
	// a 1 here.

	// Coded number: a "UTF-8" style variable length integer of 1 to 7
	// bytes. Without seeking support only its length matters.
	next := d.br.readAlignedByte()
	raw[rawLen] = byte(next)
	rawLen++
	for next >= 0xC0 {
		cont := d.br.readAlignedByte()
		raw[rawLen] = byte(cont)
		rawLen++
		next = next << 1 & 0xFF
	}
	if d.br.outOfData {
		return ErrOutOfData
	}

	// Uncommon block size.
	switch blockSizeCode {
	case 6:
		b := d.br.readAlignedByte()
		raw[rawLen] = byte(b)
		rawLen++
		d.blockSize = b + 1
	case 7:
		b1 := d.br.readAlignedByte()
		raw[rawLen] = byte(b1)
		rawLen++
		b2 := d.br.readAlignedByte()
		raw[rawLen] = byte(b2)
		rawLen++
		d.blockSize = (b1<<8 | b2) + 1
	}

	// Uncommon sample rate.
	var frameRate uint32
	switch {
	case sampleRateCode == 0:
		// Inherited from StreamInfo.
		frameRate = d.info.SampleRate
	case sampleRateCode <= 11:
		frameRate = sampleRates[sampleRateCode-1]
	case sampleRateCode == 12:
		// 8 bit sample rate in kHz.
		b := d.br.readAlignedByte()
		raw[rawLen] = byte(b)
		rawLen++
		frameRate = b * 1000
	case sampleRateCode == 13:
		// 16 bit sample rate in Hz.
		b1 := d.br.readAlignedByte()
		raw[rawLen] = byte(b1)
		rawLen++
		b2 := d.br.readAlignedByte()
		raw[rawLen] = byte(b2)
		rawLen++
		frameRate = b1<<8 | b2
	case sampleRateCode == 14:
		// 16 bit sample rate in tens of Hz.
		b1 := d.br.readAlignedByte()
		raw[rawLen] = byte(b1)
		rawLen++
		b2 := d.br.readAlignedByte()
		raw[rawLen] = byte(b2)
		rawLen++
		frameRate = (b1<<8 | b2) * 10
	default:
		// 1111: invalid, to prevent sync-fooling strings of 1s.
		return ErrBadHeader
	}

	if d.br.outOfData {
		return ErrOutOfData
	}

	// 8 bits: CRC-8 of the raw header bytes, from the sync code up to but
	// not including the checksum itself.
	want := byte(d.br.readUint(8))
	if d.br.outOfData {
		return ErrOutOfData
	}
	if d.crcCheck {
		got := crc8.ChecksumATM(raw[:rawLen])
		if got != want {
			return ErrCRCMismatch
		}
	}

	// The decoder does not support mid-stream changes of channel count,
	// sample depth or sample rate; such frames are rejected.
	frameChannels := uint32(d.info.NChannels)
	switch {
	case d.chanAssign <= 7:
		frameChannels = d.chanAssign + 1
	case d.chanAssign <= 10:
		// Stereo decorrelation modes.
		frameChannels = 2
	default:
		// Reserved; reported by decodeSubframes.
	}
	if frameChannels != uint32(d.info.NChannels) {
		return ErrBadHeader
	}
	if depthCode != 0 && d.frameDepth != uint32(d.info.BitsPerSample) {
		return ErrBadHeader
	}
	if frameRate != d.info.SampleRate {
		return ErrBadHeader
	}
	return nil
}
