package flac

import (
	"bytes"
	"testing"

	"github.com/icza/bitio"
	"github.com/mewkiz/pkg/hashutil/crc16"
	"github.com/mewkiz/pkg/hashutil/crc8"

	"github.com/pcmkit/flac/meta"
)

// --- test stream builders ---
//
// The tests hand-assemble FLAC bitstreams: metadata blocks as raw bytes and
// frame bodies through a bitio.Writer, with checksums computed over the
// assembled bytes.

// streamConfig holds the StreamInfo fields the builders care about.
type streamConfig struct {
	blockSizeMin uint16
	blockSizeMax uint16
	sampleRate   uint32
	nchannels    uint8
	bps          uint8
	nsamples     uint64
}

func writeBits(t *testing.T, bw *bitio.Writer, v uint64, n uint8) {
	t.Helper()
	if err := bw.WriteBits(v, n); err != nil {
		t.Fatal(err)
	}
}

// writeSintBits writes v as an n-bit two's complement field.
func writeSintBits(t *testing.T, bw *bitio.Writer, v int32, n uint8) {
	t.Helper()
	writeBits(t, bw, uint64(uint32(v))&(1<<n-1), n)
}

// blockHeader returns the 4 byte metadata block header.
func blockHeader(last bool, typ uint8, length int) []byte {
	b0 := typ
	if last {
		b0 |= 0x80
	}
	return []byte{b0, byte(length >> 16), byte(length >> 8), byte(length)}
}

// buildStreamInfoBody returns the 34 byte StreamInfo block body.
func buildStreamInfoBody(t *testing.T, cfg streamConfig) []byte {
	t.Helper()
	buf := new(bytes.Buffer)
	bw := bitio.NewWriter(buf)
	writeBits(t, bw, uint64(cfg.blockSizeMin), 16)
	writeBits(t, bw, uint64(cfg.blockSizeMax), 16)
	writeBits(t, bw, 0, 24) // min frame size (unknown)
	writeBits(t, bw, 0, 24) // max frame size (unknown)
	writeBits(t, bw, uint64(cfg.sampleRate), 20)
	writeBits(t, bw, uint64(cfg.nchannels-1), 3)
	writeBits(t, bw, uint64(cfg.bps-1), 5)
	writeBits(t, bw, cfg.nsamples, 36)
	if _, err := bw.Write(make([]byte, 16)); err != nil { // md5 (all zero)
		t.Fatal(err)
	}
	if err := bw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// rawBlock is a non-StreamInfo metadata block to append to a test header.
type rawBlock struct {
	typ  uint8
	data []byte
}

// buildHeader returns "fLaC", a StreamInfo block and the given extra blocks.
func buildHeader(t *testing.T, cfg streamConfig, blocks ...rawBlock) []byte {
	t.Helper()
	var out bytes.Buffer
	out.WriteString(signature)
	body := buildStreamInfoBody(t, cfg)
	out.Write(blockHeader(len(blocks) == 0, 0, len(body)))
	out.Write(body)
	for i, b := range blocks {
		out.Write(blockHeader(i == len(blocks)-1, b.typ, len(b.data)))
		out.Write(b.data)
	}
	return out.Bytes()
}

// frameConfig holds the frame header fields the builders care about.
type frameConfig struct {
	blockSizeCode   uint8
	blockSizeBytes  []byte
	sampleRateCode  uint8
	sampleRateBytes []byte
	chanAssign      uint8
	depthCode       uint8
}

// depthCodes maps sample depths to their frame header code.
var depthCodes = map[uint8]uint8{8: 1, 12: 2, 16: 4, 20: 5, 24: 6, 32: 7}

// frame16 returns a frameConfig for a 16 sample frame at the given depth.
func frame16(chanAssign, depth uint8) frameConfig {
	return frameConfig{
		blockSizeCode:  6,
		blockSizeBytes: []byte{15}, // block size - 1
		sampleRateCode: 4,          // 8 kHz
		chanAssign:     chanAssign,
		depthCode:      depthCodes[depth],
	}
}

// cfg16 returns a streamConfig matching frame16 frames.
func cfg16(nchannels, bps uint8) streamConfig {
	return streamConfig{
		blockSizeMin: 16,
		blockSizeMax: 16,
		sampleRate:   8000,
		nchannels:    nchannels,
		bps:          bps,
		nsamples:     16,
	}
}

// buildFrame assembles one frame: the raw header bytes followed by their
// CRC-8, the bit-level body, and the frame CRC-16.
func buildFrame(t *testing.T, fc frameConfig, writeBody func(bw *bitio.Writer)) []byte {
	t.Helper()
	hdr := []byte{
		0xFF, 0xF8,
		fc.blockSizeCode<<4 | fc.sampleRateCode,
		fc.chanAssign<<4 | fc.depthCode<<1,
		0x00, // coded number (frame 0)
	}
	hdr = append(hdr, fc.blockSizeBytes...)
	hdr = append(hdr, fc.sampleRateBytes...)

	body := new(bytes.Buffer)
	bw := bitio.NewWriter(body)
	writeBody(bw)
	if err := bw.Close(); err != nil {
		t.Fatal(err)
	}

	var frame bytes.Buffer
	frame.Write(hdr)
	frame.WriteByte(crc8.ChecksumATM(hdr))
	frame.Write(body.Bytes())
	crc := crc16.ChecksumIBM(frame.Bytes())
	frame.WriteByte(byte(crc >> 8))
	frame.WriteByte(byte(crc))
	return frame.Bytes()
}

// writeSubframeHeader writes the subframe preamble: zero bit, type, and a
// cleared wasted bits flag.
func writeSubframeHeader(t *testing.T, bw *bitio.Writer, typ uint8) {
	t.Helper()
	writeBits(t, bw, 0, 1)
	writeBits(t, bw, uint64(typ), 6)
	writeBits(t, bw, 0, 1)
}

// writeRiceResiduals writes a single-partition residual section with the
// given Rice parameter.
func writeRiceResiduals(t *testing.T, bw *bitio.Writer, residuals []int32, param uint8) {
	t.Helper()
	writeBits(t, bw, 0, 2)               // coding method 0: 4-bit parameters
	writeBits(t, bw, 0, 4)               // partition order 0
	writeBits(t, bw, uint64(param), 4)   // Rice parameter
	for _, r := range residuals {
		writeRice(t, bw, r, param)
	}
}

// readHeader parses the stream header and returns the remaining input.
func readHeader(t *testing.T, d *Decoder, stream []byte) []byte {
	t.Helper()
	if err := d.ReadHeader(stream); err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	return stream[d.BytesConsumed():]
}

// --- end-to-end decode tests ---

func TestDecodeConstantFrame(t *testing.T) {
	// Minimal valid stream: 8 kHz mono 8-bit StreamInfo plus one silent
	// constant frame.
	stream := buildHeader(t, cfg16(1, 8))
	stream = append(stream, buildFrame(t, frame16(0, 8), func(bw *bitio.Writer) {
		writeSubframeHeader(t, bw, 0)
		writeSintBits(t, bw, 0, 8)
	})...)

	d := NewDecoder()
	rest := readHeader(t, d, stream)
	if d.SampleRate() != 8000 || d.NumChannels() != 1 || d.SampleDepth() != 8 {
		t.Fatalf("stream info mismatch; got %d Hz, %d channels, %d bits", d.SampleRate(), d.NumChannels(), d.SampleDepth())
	}

	out := make([]byte, d.OutputBufferSizeBytes())
	n, err := d.DecodeFrame(rest, out)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if n != 16 {
		t.Fatalf("sample count mismatch; expected 16, got %d", n)
	}
	for i := 0; i < 16; i++ {
		// 8-bit output is biased into the unsigned domain.
		if out[i] != 0x80 {
			t.Fatalf("sample mismatch at %d; expected 0x80, got %#x", i, out[i])
		}
	}

	// The whole frame must have been consumed.
	if d.BytesConsumed() != len(rest) {
		t.Errorf("consumed mismatch; expected %d, got %d", len(rest), d.BytesConsumed())
	}

	// And the input is now exhausted at a frame boundary.
	if _, err := d.DecodeFrame(rest[d.BytesConsumed():], out); err != ErrNoMoreFrames {
		t.Errorf("expected ErrNoMoreFrames at end of stream; got %v", err)
	}
}

func TestDecodeVerbatimFrame(t *testing.T) {
	samples := []int32{0, 1, -1, 2, -2, 100, -100, 1000, -1000, 32767, -32768, 5, -5, 9, -9, 0}
	stream := buildHeader(t, cfg16(1, 16))
	stream = append(stream, buildFrame(t, frame16(0, 16), func(bw *bitio.Writer) {
		writeSubframeHeader(t, bw, 1)
		for _, s := range samples {
			writeSintBits(t, bw, s, 16)
		}
	})...)

	d := NewDecoder()
	rest := readHeader(t, d, stream)
	out := make([]byte, d.OutputBufferSizeBytes())
	n, err := d.DecodeFrame(rest, out)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if n != 16 {
		t.Fatalf("sample count mismatch; expected 16, got %d", n)
	}
	for i, want := range samples {
		got := int32(int16(uint16(out[2*i]) | uint16(out[2*i+1])<<8))
		if got != want {
			t.Fatalf("sample mismatch at %d; expected %d, got %d", i, want, got)
		}
	}
}

func TestDecodeFixedFrame(t *testing.T) {
	// Fixed prediction of order 2 with Rice-coded residuals.
	warmUp := []int32{100, 110}
	residuals := []int32{3, -2, 0, 7, -7, 1, 2, -3, 4, 0, -1, 5, -4, 2}
	stream := buildHeader(t, cfg16(1, 16))
	stream = append(stream, buildFrame(t, frame16(0, 16), func(bw *bitio.Writer) {
		writeSubframeHeader(t, bw, 8+2)
		for _, s := range warmUp {
			writeSintBits(t, bw, s, 16)
		}
		writeRiceResiduals(t, bw, residuals, 3)
	})...)

	// Reference restoration: s[i] = r[i] + 2*s[i-1] - s[i-2].
	want := append([]int32{}, warmUp...)
	for _, r := range residuals {
		n := len(want)
		want = append(want, r+2*want[n-1]-want[n-2])
	}

	d := NewDecoder()
	rest := readHeader(t, d, stream)
	out := make([]byte, d.OutputBufferSizeBytes())
	if _, err := d.DecodeFrame(rest, out); err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	for i, w := range want {
		got := int32(int16(uint16(out[2*i]) | uint16(out[2*i+1])<<8))
		if got != w {
			t.Fatalf("sample mismatch at %d; expected %d, got %d", i, w, got)
		}
	}
}

func TestDecodeLPCFrame(t *testing.T) {
	// LPC of order 1, coefficient 3, precision 5, shift 2:
	// s[i] = r[i] + (3*s[i-1] >> 2).
	warmUp := []int32{200}
	residuals := []int32{5, -5, 12, 0, -3, 8, 1, -1, 6, -6, 2, 9, -9, 4, 3}
	stream := buildHeader(t, cfg16(1, 16))
	stream = append(stream, buildFrame(t, frame16(0, 16), func(bw *bitio.Writer) {
		writeSubframeHeader(t, bw, 32+0) // LPC order 1
		for _, s := range warmUp {
			writeSintBits(t, bw, s, 16)
		}
		writeBits(t, bw, 5-1, 4)      // precision
		writeSintBits(t, bw, 2, 5)    // shift
		writeSintBits(t, bw, 3, 5)    // coefficient
		writeRiceResiduals(t, bw, residuals, 3)
	})...)

	want := append([]int32{}, warmUp...)
	for _, r := range residuals {
		prev := want[len(want)-1]
		want = append(want, r+(3*prev>>2))
	}

	d := NewDecoder()
	rest := readHeader(t, d, stream)
	out := make([]byte, d.OutputBufferSizeBytes())
	if _, err := d.DecodeFrame(rest, out); err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	for i, w := range want {
		got := int32(int16(uint16(out[2*i]) | uint16(out[2*i+1])<<8))
		if got != w {
			t.Fatalf("sample mismatch at %d; expected %d, got %d", i, w, got)
		}
	}
}

func TestDecodeMidSideFrame(t *testing.T) {
	left := []int32{5, -5, 1000, -1000, 0, 1, -1, 32000, -32000, 7, 13, -13, 2, -2, 500, -500}
	right := []int32{2, 5, -1000, 999, -1, 0, 1, -32000, 31999, -7, 14, 13, -2, 3, -499, 500}
	stream := buildHeader(t, cfg16(2, 16))
	stream = append(stream, buildFrame(t, frame16(10, 16), func(bw *bitio.Writer) {
		// Mid channel at 16 bits.
		writeSubframeHeader(t, bw, 1)
		for i := range left {
			writeSintBits(t, bw, (left[i]+right[i])>>1, 16)
		}
		// Side channel at 17 bits.
		writeSubframeHeader(t, bw, 1)
		for i := range left {
			writeSintBits(t, bw, left[i]-right[i], 17)
		}
	})...)

	d := NewDecoder()
	rest := readHeader(t, d, stream)
	out := make([]byte, d.OutputBufferSizeBytes())
	if _, err := d.DecodeFrame(rest, out); err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	for i := range left {
		gotL := int32(int16(uint16(out[4*i]) | uint16(out[4*i+1])<<8))
		gotR := int32(int16(uint16(out[4*i+2]) | uint16(out[4*i+3])<<8))
		if gotL != left[i] || gotR != right[i] {
			t.Fatalf("sample mismatch at %d; expected (%d, %d), got (%d, %d)", i, left[i], right[i], gotL, gotR)
		}
	}
}

func TestDecodeEscapedPartition(t *testing.T) {
	// Fixed order 0 with an escaped partition of width 0 decodes to
	// silence.
	stream := buildHeader(t, cfg16(1, 16))
	stream = append(stream, buildFrame(t, frame16(0, 16), func(bw *bitio.Writer) {
		writeSubframeHeader(t, bw, 8) // fixed, order 0
		writeBits(t, bw, 0, 2)        // coding method 0
		writeBits(t, bw, 0, 4)        // partition order 0
		writeBits(t, bw, 0x0F, 4)     // escape code
		writeBits(t, bw, 0, 5)        // width 0: all zero
	})...)

	d := NewDecoder()
	rest := readHeader(t, d, stream)
	out := make([]byte, d.OutputBufferSizeBytes())
	n, err := d.DecodeFrame(rest, out)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	for i := 0; i < n*2; i++ {
		if out[i] != 0 {
			t.Fatalf("expected silence; got %#x at byte %d", out[i], i)
		}
	}
}

func TestWastedBits(t *testing.T) {
	// One wasted bit: samples are coded at 15 bits and shifted up after
	// decoding, so every decoded sample is even.
	samples := []int32{2, -2, 4, -4, 100, -100, 2000, -2000, 0, 2, 4, 6, 8, -8, 10, -10}
	stream := buildHeader(t, cfg16(1, 16))
	stream = append(stream, buildFrame(t, frame16(0, 16), func(bw *bitio.Writer) {
		writeBits(t, bw, 0, 1) // zero bit
		writeBits(t, bw, 1, 6) // verbatim
		writeBits(t, bw, 1, 1) // wasted bits flag; unary count 1 follows
		writeBits(t, bw, 1, 1) // unary terminator: count = 1
		for _, s := range samples {
			writeSintBits(t, bw, s>>1, 15)
		}
	})...)

	d := NewDecoder()
	rest := readHeader(t, d, stream)
	out := make([]byte, d.OutputBufferSizeBytes())
	if _, err := d.DecodeFrame(rest, out); err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	for i, want := range samples {
		got := int32(int16(uint16(out[2*i]) | uint16(out[2*i+1])<<8))
		if got != want {
			t.Fatalf("sample mismatch at %d; expected %d, got %d", i, want, got)
		}
	}
}

func TestCRCEmptySpan(t *testing.T) {
	// Both checksums start at 0 and stay there over an empty span.
	if got := crc8.ChecksumATM(nil); got != 0 {
		t.Errorf("CRC-8 of empty span; expected 0, got %#x", got)
	}
	if got := crc16.ChecksumIBM(nil); got != 0 {
		t.Errorf("CRC-16 of empty span; expected 0, got %#x", got)
	}
}

// --- error path tests ---

func TestBadMagicNumber(t *testing.T) {
	d := NewDecoder()
	if err := d.ReadHeader([]byte("fLaX....")); err != ErrBadMagicNumber {
		t.Errorf("expected ErrBadMagicNumber; got %v", err)
	}
}

func TestSampleRateChangeRejected(t *testing.T) {
	// StreamInfo declares 44100 Hz; the frame header encodes 48 kHz through
	// sample rate code 12. Mid-stream parameter changes are rejected.
	cfg := cfg16(1, 16)
	cfg.sampleRate = 44100
	fc := frame16(0, 16)
	fc.sampleRateCode = 12
	fc.sampleRateBytes = []byte{48}
	stream := buildHeader(t, cfg)
	stream = append(stream, buildFrame(t, fc, func(bw *bitio.Writer) {
		writeSubframeHeader(t, bw, 0)
		writeSintBits(t, bw, 0, 16)
	})...)

	d := NewDecoder()
	rest := readHeader(t, d, stream)
	out := make([]byte, d.OutputBufferSizeBytes())
	if _, err := d.DecodeFrame(rest, out); err != ErrBadHeader {
		t.Errorf("expected ErrBadHeader; got %v", err)
	}
}

func TestReservedChannelAssignment(t *testing.T) {
	stream := buildHeader(t, cfg16(2, 16))
	stream = append(stream, buildFrame(t, frame16(11, 16), func(bw *bitio.Writer) {})...)

	d := NewDecoder()
	rest := readHeader(t, d, stream)
	out := make([]byte, d.OutputBufferSizeBytes())
	if _, err := d.DecodeFrame(rest, out); err != ErrReservedChannelAssignment {
		t.Errorf("expected ErrReservedChannelAssignment; got %v", err)
	}
}

func TestReservedSubframeType(t *testing.T) {
	stream := buildHeader(t, cfg16(1, 16))
	stream = append(stream, buildFrame(t, frame16(0, 16), func(bw *bitio.Writer) {
		writeBits(t, bw, 0, 1)
		writeBits(t, bw, 2, 6) // reserved type
		writeBits(t, bw, 0, 1)
	})...)

	d := NewDecoder()
	rest := readHeader(t, d, stream)
	out := make([]byte, d.OutputBufferSizeBytes())
	if _, err := d.DecodeFrame(rest, out); err != ErrReservedSubframeType {
		t.Errorf("expected ErrReservedSubframeType; got %v", err)
	}
}

func TestFrameCRCMismatch(t *testing.T) {
	stream := buildHeader(t, cfg16(1, 8))
	frame := buildFrame(t, frame16(0, 8), func(bw *bitio.Writer) {
		writeSubframeHeader(t, bw, 0)
		writeSintBits(t, bw, 0, 8)
	})
	// Corrupt the frame CRC-16.
	frame[len(frame)-1] ^= 0x01
	stream = append(stream, frame...)

	d := NewDecoder()
	rest := readHeader(t, d, stream)
	out := make([]byte, d.OutputBufferSizeBytes())
	if _, err := d.DecodeFrame(rest, out); err != ErrCRCMismatch {
		t.Errorf("expected ErrCRCMismatch; got %v", err)
	}

	// With CRC checking disabled the same frame decodes successfully.
	d = NewDecoder()
	d.SetCRCCheck(false)
	rest = readHeader(t, d, stream)
	if n, err := d.DecodeFrame(rest, out); err != nil || n != 16 {
		t.Errorf("expected successful decode with CRC checking disabled; got n=%d, err=%v", n, err)
	}
}

func TestHeaderCRCMismatch(t *testing.T) {
	stream := buildHeader(t, cfg16(1, 8))
	frame := buildFrame(t, frame16(0, 8), func(bw *bitio.Writer) {
		writeSubframeHeader(t, bw, 0)
		writeSintBits(t, bw, 0, 8)
	})
	// The CRC-8 sits right after the 6 header bytes.
	frame[6] ^= 0x55
	stream = append(stream, frame...)

	d := NewDecoder()
	rest := readHeader(t, d, stream)
	out := make([]byte, d.OutputBufferSizeBytes())
	if _, err := d.DecodeFrame(rest, out); err != ErrCRCMismatch {
		t.Errorf("expected ErrCRCMismatch; got %v", err)
	}
}

func TestBlockSizeOutOfRange(t *testing.T) {
	// Frame claims 256 samples against a StreamInfo maximum of 16.
	fc := frame16(0, 16)
	fc.blockSizeCode = 8 // 256 samples
	fc.blockSizeBytes = nil
	stream := buildHeader(t, cfg16(1, 16))
	stream = append(stream, buildFrame(t, fc, func(bw *bitio.Writer) {})...)

	d := NewDecoder()
	rest := readHeader(t, d, stream)
	out := make([]byte, 4096)
	if _, err := d.DecodeFrame(rest, out); err != ErrBlockSizeOutOfRange {
		t.Errorf("expected ErrBlockSizeOutOfRange; got %v", err)
	}
}

func TestSyncNotFound(t *testing.T) {
	stream := buildHeader(t, cfg16(1, 16))
	d := NewDecoder()
	readHeader(t, d, stream)
	out := make([]byte, d.OutputBufferSizeBytes())
	if _, err := d.DecodeFrame(make([]byte, 64), out); err != ErrSyncNotFound {
		t.Errorf("expected ErrSyncNotFound; got %v", err)
	}
}

func TestDecodeFrameBeforeHeader(t *testing.T) {
	d := NewDecoder()
	if _, err := d.DecodeFrame([]byte{0xFF, 0xF8}, make([]byte, 64)); err != ErrBadHeader {
		t.Errorf("expected ErrBadHeader before ReadHeader; got %v", err)
	}
}

func TestOutOfDataRewinds(t *testing.T) {
	stream := buildHeader(t, cfg16(1, 16))
	frame := buildFrame(t, frame16(0, 16), func(bw *bitio.Writer) {
		writeSubframeHeader(t, bw, 1)
		for i := int32(0); i < 16; i++ {
			writeSintBits(t, bw, i, 16)
		}
	})

	d := NewDecoder()
	readHeader(t, d, stream)
	out := make([]byte, d.OutputBufferSizeBytes())

	// A truncated frame reports ErrOutOfData and consumes nothing, so the
	// retry with the full frame succeeds.
	if _, err := d.DecodeFrame(frame[:len(frame)-4], out); err != ErrOutOfData {
		t.Fatalf("expected ErrOutOfData on truncated frame; got %v", err)
	}
	if d.BytesConsumed() != 0 {
		t.Fatalf("expected no bytes consumed on ErrOutOfData; got %d", d.BytesConsumed())
	}
	if n, err := d.DecodeFrame(frame, out); err != nil || n != 16 {
		t.Fatalf("expected successful retry; got n=%d, err=%v", n, err)
	}
}

// --- chunked decoding tests ---

func TestHeaderResumption(t *testing.T) {
	// A picture block delivered in small chunks forces repeated
	// ErrNeedMoreData returns with resumption in between.
	picture := make([]byte, 2000)
	for i := range picture {
		picture[i] = byte(i * 7)
	}
	stream := buildHeader(t, cfg16(1, 16), rawBlock{typ: 6, data: picture})

	d := NewDecoder()
	d.SetMaxMetadataSize(6, 256*1024)

	var buf []byte
	resumed := 0
	for pos := 0; ; {
		err := d.ReadHeader(buf)
		buf = buf[d.BytesConsumed():]
		if err == nil {
			break
		}
		if err != ErrNeedMoreData {
			t.Fatalf("ReadHeader: %v", err)
		}
		resumed++
		if pos == len(stream) {
			t.Fatal("header parse did not complete")
		}
		n := 57
		if pos+n > len(stream) {
			n = len(stream) - pos
		}
		buf = append(buf, stream[pos:pos+n]...)
		pos += n
	}
	if resumed < 10 {
		t.Errorf("expected many resumptions; got %d", resumed)
	}

	block := d.MetadataBlock(6)
	if block == nil {
		t.Fatal("picture block not retained")
	}
	if block.Length != uint32(len(picture)) || !bytes.Equal(block.Data, picture) {
		t.Fatal("picture block data mismatch")
	}
}

func TestMetadataSkippedWhenTooLarge(t *testing.T) {
	picture := make([]byte, 2000)
	stream := buildHeader(t, cfg16(1, 16), rawBlock{typ: 6, data: picture})

	// Default picture limit is 0: the block is skipped silently.
	d := NewDecoder()
	readHeader(t, d, stream)
	if block := d.MetadataBlock(6); block != nil {
		t.Error("expected picture block to be skipped")
	}
}

func TestVorbisCommentRetainedByDefault(t *testing.T) {
	// A small Vorbis comment block falls within the default retention
	// limit.
	comment := []byte{
		4, 0, 0, 0, 't', 'e', 's', 't', // vendor
		1, 0, 0, 0, // one entry
		4, 0, 0, 0, 'a', '=', 'b', 'c',
	}
	stream := buildHeader(t, cfg16(1, 16), rawBlock{typ: 4, data: comment})

	d := NewDecoder()
	readHeader(t, d, stream)
	block := d.MetadataBlock(4)
	if block == nil {
		t.Fatal("vorbis comment block not retained")
	}
	body, err := block.Parse()
	if err != nil {
		t.Fatal(err)
	}
	vc, ok := body.(*meta.VorbisComment)
	if !ok {
		t.Fatalf("body type mismatch; expected *meta.VorbisComment, got %T", body)
	}
	if vc.Vendor != "test" || len(vc.Entries) != 1 || vc.Entries[0].Name != "a" || vc.Entries[0].Value != "bc" {
		t.Fatalf("vorbis comment mismatch; got %+v", vc)
	}
}

func TestChunkedEquivalence(t *testing.T) {
	// Decoding through arbitrarily small buffer windows must produce the
	// same PCM as decoding from one contiguous buffer.
	stream := buildHeader(t, cfg16(1, 16))
	stream = append(stream, buildFrame(t, frame16(0, 16), func(bw *bitio.Writer) {
		writeSubframeHeader(t, bw, 0)
		writeSintBits(t, bw, 1234, 16)
	})...)
	stream = append(stream, buildFrame(t, frame16(0, 16), func(bw *bitio.Writer) {
		writeSubframeHeader(t, bw, 1)
		for i := int32(0); i < 16; i++ {
			writeSintBits(t, bw, i*i-100, 16)
		}
	})...)
	stream = append(stream, buildFrame(t, frame16(0, 16), func(bw *bitio.Writer) {
		writeSubframeHeader(t, bw, 8+1)
		writeSintBits(t, bw, 50, 16)
		writeRiceResiduals(t, bw, []int32{1, -1, 2, -2, 3, -3, 4, -4, 5, -5, 6, -6, 7, -7, 8}, 2)
	})...)

	// Whole-buffer decode.
	whole := NewDecoder()
	rest := readHeader(t, whole, stream)
	out := make([]byte, whole.OutputBufferSizeBytes())
	var wantPCM []byte
	for {
		n, err := whole.DecodeFrame(rest, out)
		if err == ErrNoMoreFrames {
			break
		}
		if err != nil {
			t.Fatalf("DecodeFrame: %v", err)
		}
		wantPCM = append(wantPCM, out[:2*n]...)
		rest = rest[whole.BytesConsumed():]
	}

	// Windowed decode: grow the window one byte at a time until the decoder
	// makes progress.
	chunked := NewDecoder()
	rest = readHeader(t, chunked, stream)
	var gotPCM []byte
	avail := 1
	for len(rest) > 0 {
		if avail > len(rest) {
			avail = len(rest)
		}
		n, err := chunked.DecodeFrame(rest[:avail], out)
		switch err {
		case nil:
			gotPCM = append(gotPCM, out[:2*n]...)
			rest = rest[chunked.BytesConsumed():]
			avail = 1
		case ErrOutOfData, ErrSyncNotFound:
			if avail == len(rest) {
				t.Fatal("decoder made no progress with all input available")
			}
			avail++
		default:
			t.Fatalf("DecodeFrame: %v", err)
		}
	}
	if !bytes.Equal(wantPCM, gotPCM) {
		t.Fatal("chunked decode differs from whole-buffer decode")
	}
}

func TestOutput32BitMode(t *testing.T) {
	stream := buildHeader(t, cfg16(1, 16))
	stream = append(stream, buildFrame(t, frame16(0, 16), func(bw *bitio.Writer) {
		writeSubframeHeader(t, bw, 0)
		writeSintBits(t, bw, 1000, 16)
	})...)

	d := NewDecoder()
	d.SetOutput32BitSamples(true)
	rest := readHeader(t, d, stream)
	if d.OutputBytesPerSample() != 4 {
		t.Fatalf("expected 4 output bytes per sample; got %d", d.OutputBytesPerSample())
	}
	out := make([]byte, d.OutputBufferSizeBytes())
	n, err := d.DecodeFrame(rest, out)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	want := uint32(1000) << 16
	for i := 0; i < n; i++ {
		got := uint32(out[4*i]) | uint32(out[4*i+1])<<8 | uint32(out[4*i+2])<<16 | uint32(out[4*i+3])<<24
		if got != want {
			t.Fatalf("sample mismatch at %d; expected %#x, got %#x", i, want, got)
		}
	}
}
