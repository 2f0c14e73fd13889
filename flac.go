// Package flac provides a streaming decoder for FLAC (Free Lossless Audio
// Codec) bitstreams, producing interleaved PCM samples. [1]
//
// The basic structure of a FLAC bitstream is:
//   - The four byte string signature "fLaC".
//   - The StreamInfo metadata block.
//   - Zero or more other metadata blocks.
//   - One or more audio frames.
//
// The Decoder consumes an external byte buffer incrementally, so a caller
// with limited memory may feed small chunks rather than the whole file:
// ReadHeader is called until it stops returning ErrNeedMoreData, after which
// DecodeFrame decodes one frame per call. BytesConsumed reports how far the
// caller may compact its buffer between calls. Reader wraps this protocol
// around an io.Reader for callers that do not need to manage buffers
// themselves.
//
// [1]: https://www.rfc-editor.org/rfc/rfc9639
package flac

import (
	"github.com/pcmkit/flac/meta"
)

// signature is present at the beginning of each FLAC stream.
const signature = "fLaC"

// Default per-type metadata retention limits. Blocks whose declared length
// exceeds the limit of their type are skipped rather than stored; a limit of
// 0 skips the type entirely. The defaults are conservative so that
// memory-constrained callers do not pay for metadata they never asked for;
// only Vorbis comments (tags) are retained out of the box.
const (
	DefaultMaxPaddingSize       = 0
	DefaultMaxApplicationSize   = 0
	DefaultMaxSeekTableSize     = 0
	DefaultMaxVorbisCommentSize = 2 * 1024
	DefaultMaxCueSheetSize      = 0
	DefaultMaxPictureSize       = 0
	DefaultMaxUnknownSize       = 0
)

// metaSizeLimits is the number of per-type retention limit slots; types 0-6
// plus one shared slot for reserved types.
const metaSizeLimits = 8

// partialHeader is the resumable header-parse state. When ReadHeader runs
// out of input mid-block it records how far it got, so the next call picks
// up where the previous one stopped.
type partialHeader struct {
	// Set once the stream signature has been consumed; the header parse is
	// in progress and must not restart.
	reading bool
	// Set when the current metadata block is the last one.
	last bool
	// Type of the current metadata block.
	typ uint8
	// Declared body length of the current metadata block.
	length uint32
	// Body bytes consumed so far.
	read uint32
	// Accumulated body bytes of a retained block.
	data []byte
}

// A Decoder decodes a FLAC bitstream fed to it as byte chunks. The zero
// value is not usable; create decoders with NewDecoder.
//
// A Decoder is created empty; ReadHeader is called one or more times until
// it reports success, after which the stream parameters are fixed and
// DecodeFrame may be called any number of times. Configuration must happen
// before ReadHeader. A Decoder must not be used from multiple goroutines
// concurrently.
type Decoder struct {
	// Bit cursor over the caller's buffer.
	br bitCursor

	// Stream properties; valid once headerDone is set.
	info       meta.StreamInfo
	headerDone bool

	// Resumable header parse state and retained metadata blocks.
	partial partialHeader
	blocks  []meta.Block

	// Current frame state.
	frameStart int // byte offset of the frame sync code, for the CRC-16 span
	blockSize  uint32
	chanAssign uint32
	frameDepth uint32

	// Planar decode workspace of shape blockSizeMax x nchannels, stored
	// channel-major. Allocated once, on the first DecodeFrame.
	samples []int32
	// LPC coefficient scratch space, oldest sample first.
	coefs [32]int32

	// Input bytes consumed by the last call.
	consumed int

	// Configuration.
	maxMetaSize [metaSizeLimits]uint32
	crcCheck    bool
	out32       bool
}

// NewDecoder returns a new FLAC decoder with CRC checking enabled, native
// sample packing and default metadata retention limits.
func NewDecoder() *Decoder {
	d := &Decoder{crcCheck: true}
	d.maxMetaSize[meta.TypeVorbisComment] = DefaultMaxVorbisCommentSize
	return d
}

// metaSizeIndex returns the retention limit slot of the given raw block
// type; reserved types share a single slot.
func metaSizeIndex(typ uint8) int {
	if typ <= uint8(meta.TypePicture) {
		return int(typ)
	}
	return metaSizeLimits - 1
}

// SetMaxMetadataSize configures the retention limit of the given metadata
// block type. Blocks longer than the limit are skipped during ReadHeader; a
// limit of 0 skips the type entirely. StreamInfo is always parsed and is not
// subject to a limit. Must be called before ReadHeader.
func (d *Decoder) SetMaxMetadataSize(typ meta.Type, max uint32) {
	if typ == meta.TypeStreamInfo {
		return
	}
	d.maxMetaSize[metaSizeIndex(uint8(typ))] = max
}

// MaxMetadataSize returns the retention limit of the given metadata block
// type.
func (d *Decoder) MaxMetadataSize(typ meta.Type) uint32 {
	return d.maxMetaSize[metaSizeIndex(uint8(typ))]
}

// SetCRCCheck enables or disables validation of frame header CRC-8 and
// frame CRC-16 checksums. Checking is enabled by default; disabling it
// trades integrity detection for speed.
func (d *Decoder) SetCRCCheck(enabled bool) {
	d.crcCheck = enabled
}

// CRCCheck reports whether CRC validation is enabled.
func (d *Decoder) CRCCheck() bool {
	return d.crcCheck
}

// SetOutput32BitSamples switches the output packer between native packing
// (the default) and 32-bit mode, in which every sample is emitted as a
// 4-byte little-endian signed integer, left-shifted so that the most
// significant bit of the sample lands in the most significant bit of the
// container.
func (d *Decoder) SetOutput32BitSamples(enabled bool) {
	d.out32 = enabled
}

// Output32BitSamples reports whether 32-bit output mode is enabled.
func (d *Decoder) Output32BitSamples() bool {
	return d.out32
}

// StreamInfo returns the stream properties parsed from the StreamInfo
// metadata block. Valid once ReadHeader has reported success.
func (d *Decoder) StreamInfo() meta.StreamInfo {
	return d.info
}

// SampleRate returns the sample rate in Hz.
func (d *Decoder) SampleRate() int {
	return int(d.info.SampleRate)
}

// NumChannels returns the number of audio channels.
func (d *Decoder) NumChannels() int {
	return int(d.info.NChannels)
}

// SampleDepth returns the bits-per-sample of the stream.
func (d *Decoder) SampleDepth() int {
	return int(d.info.BitsPerSample)
}

// MinBlockSize returns the minimum block size in samples.
func (d *Decoder) MinBlockSize() int {
	return int(d.info.BlockSizeMin)
}

// MaxBlockSize returns the maximum block size in samples.
func (d *Decoder) MaxBlockSize() int {
	return int(d.info.BlockSizeMax)
}

// NumSamples returns the total number of inter-channel samples in the
// stream, or 0 when unknown.
func (d *Decoder) NumSamples() uint64 {
	return d.info.NSamples
}

// MD5Signature returns the MD5 checksum of the unencoded audio data as
// declared by the stream. Validating decoded output against it is the
// caller's responsibility.
func (d *Decoder) MD5Signature() [16]byte {
	return d.info.MD5sum
}

// OutputBytesPerSample returns the number of bytes one packed sample
// occupies in the output buffer; 4 when 32-bit output mode is enabled.
func (d *Decoder) OutputBytesPerSample() int {
	if d.out32 {
		return 4
	}
	return (int(d.info.BitsPerSample) + 7) / 8
}

// OutputBufferSize returns the required output buffer size in samples,
// counting all channels.
func (d *Decoder) OutputBufferSize() int {
	return int(d.info.BlockSizeMax) * int(d.info.NChannels)
}

// OutputBufferSizeBytes returns the required output buffer size in bytes.
func (d *Decoder) OutputBufferSizeBytes() int {
	return d.OutputBufferSize() * d.OutputBytesPerSample()
}

// BytesConsumed returns how many bytes of the input buffer were consumed by
// the last ReadHeader or DecodeFrame call; the caller compacts its buffer by
// that amount before the next call.
func (d *Decoder) BytesConsumed() int {
	return d.consumed
}

// MetadataBlocks returns the metadata blocks retained during ReadHeader, in
// stream order. The returned slice is owned by the decoder.
func (d *Decoder) MetadataBlocks() []meta.Block {
	return d.blocks
}

// MetadataBlock returns the first retained metadata block of the given type,
// or nil if none was retained.
func (d *Decoder) MetadataBlock(typ meta.Type) *meta.Block {
	for i := range d.blocks {
		if d.blocks[i].Type == typ {
			return &d.blocks[i]
		}
	}
	return nil
}
