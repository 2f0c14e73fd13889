package meta

import (
	"bytes"
	"io"

	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

// StreamInfo contains the basic properties of the FLAC audio stream, such as
// its sample rate and channel count. It must be present as the first metadata
// block of a FLAC stream.
//
// ref: https://www.rfc-editor.org/rfc/rfc9639#section-8.2
type StreamInfo struct {
	// Minimum block size (in samples) used in the stream; between 16 and
	// 65535 samples.
	BlockSizeMin uint16
	// Maximum block size (in samples) used in the stream; between 16 and
	// 65535 samples.
	BlockSizeMax uint16
	// Minimum frame size in bytes; a 0 value implies unknown.
	FrameSizeMin uint32
	// Maximum frame size in bytes; a 0 value implies unknown.
	FrameSizeMax uint32
	// Sample rate in Hz; between 1 and 1048575 Hz.
	SampleRate uint32
	// Number of channels; between 1 and 8 channels.
	NChannels uint8
	// Sample size in bits-per-sample; between 4 and 32 bits.
	BitsPerSample uint8
	// Total number of inter-channel samples in the stream. One inter-channel
	// sample is one sample for all channels. A 0 value implies unknown.
	NSamples uint64
	// MD5 checksum of the unencoded audio data.
	MD5sum [16]byte
}

// streamInfoLen is the fixed body length of a StreamInfo metadata block.
const streamInfoLen = 34

// ParseStreamInfo parses and returns a new StreamInfo metadata block from the
// given block body.
//
// StreamInfo format (pseudo code):
//
//	type METADATA_BLOCK_STREAMINFO struct {
//	   block_size_min  uint16
//	   block_size_max  uint16
//	   frame_size_min  uint24
//	   frame_size_max  uint24
//	   sample_rate     uint20
//	   nchannels       uint3 // (number of channels) - 1.
//	   bits_per_sample uint5 // (bits-per-sample) - 1.
//	   nsamples        uint36
//	   md5sum          [16]byte
//	}
//
// ref: https://www.rfc-editor.org/rfc/rfc9639#section-8.2
func ParseStreamInfo(data []byte) (si *StreamInfo, err error) {
	if len(data) < streamInfoLen {
		return nil, errors.Errorf("meta.ParseStreamInfo: invalid body length; expected >= %d, got %d", streamInfoLen, len(data))
	}
	br := bitio.NewReader(bytes.NewReader(data))

	// 16 bits: BlockSizeMin.
	si = new(StreamInfo)
	si.BlockSizeMin = uint16(br.TryReadBits(16))

	// 16 bits: BlockSizeMax.
	si.BlockSizeMax = uint16(br.TryReadBits(16))

	// 24 bits: FrameSizeMin.
	si.FrameSizeMin = uint32(br.TryReadBits(24))

	// 24 bits: FrameSizeMax.
	si.FrameSizeMax = uint32(br.TryReadBits(24))

	// 20 bits: SampleRate.
	si.SampleRate = uint32(br.TryReadBits(20))

	// 3 bits: NChannels; stored as (number of channels) - 1.
	si.NChannels = uint8(br.TryReadBits(3)) + 1

	// 5 bits: BitsPerSample; stored as (bits-per-sample) - 1.
	si.BitsPerSample = uint8(br.TryReadBits(5)) + 1

	// 36 bits: NSamples.
	si.NSamples = br.TryReadBits(36)

	// 16 bytes: MD5sum.
	if _, err := io.ReadFull(br, si.MD5sum[:]); err != nil {
		return nil, errors.WithStack(err)
	}
	if br.TryError != nil {
		return nil, errors.WithStack(br.TryError)
	}
	return si, nil
}
