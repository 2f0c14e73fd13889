package flac

import "errors"

// Sentinel conditions which are expected during streaming use and are not
// decode failures. Callers test for them with errors.Is or plain comparison.
var (
	// ErrNeedMoreData is returned by Decoder.ReadHeader when the input buffer
	// was exhausted at a resumable boundary. Refill the buffer and call
	// ReadHeader again to continue.
	ErrNeedMoreData = errors.New("flac: need more data to complete header")
	// ErrNoMoreFrames is returned by Decoder.DecodeFrame when the input is
	// exhausted at a frame boundary; the stream ended cleanly.
	ErrNoMoreFrames = errors.New("flac: no more frames")
)

// Decode failures. All failures are terminal for the current call; the
// caller chooses whether to retry or abandon the stream.
var (
	// ErrOutOfData is returned when the input is exhausted mid-frame. The
	// decoder state is rewound to the frame start, so retrying with a larger
	// buffer is meaningful.
	ErrOutOfData = errors.New("flac: out of data mid-frame")
	// ErrBadMagicNumber is returned when the stream does not start with the
	// "fLaC" signature.
	ErrBadMagicNumber = errors.New("flac: invalid magic number")
	// ErrSyncNotFound is returned when the frame sync search ran off the end
	// of the input.
	ErrSyncNotFound = errors.New("flac: frame sync code not found")
	// ErrBadBlockSizeCode is returned for the reserved block size code.
	ErrBadBlockSizeCode = errors.New("flac: reserved block size code in frame header")
	// ErrBadSampleDepth is returned for reserved sample size codes.
	ErrBadSampleDepth = errors.New("flac: reserved sample size code in frame header")
	// ErrBadHeader is returned when StreamInfo fails its invariants, or when
	// frame parameters disagree with StreamInfo; mid-stream parameter changes
	// are not supported.
	ErrBadHeader = errors.New("flac: bad header")
	// ErrReservedChannelAssignment is returned for channel assignments 11-15.
	ErrReservedChannelAssignment = errors.New("flac: reserved channel assignment")
	// ErrReservedSubframeType is returned for subframe types outside
	// {0, 1, 8..12, 32..63}.
	ErrReservedSubframeType = errors.New("flac: reserved subframe type")
	// ErrBadFixedPredictionOrder is returned for fixed prediction orders
	// above 4.
	ErrBadFixedPredictionOrder = errors.New("flac: bad fixed prediction order")
	// ErrReservedResidualCodingMethod is returned for residual coding methods
	// 2 and 3.
	ErrReservedResidualCodingMethod = errors.New("flac: reserved residual coding method")
	// ErrBlockSizeNotDivisible is returned when the block size is not evenly
	// divisible by the Rice partition count.
	ErrBlockSizeNotDivisible = errors.New("flac: block size not divisible by rice partition count")
	// ErrBlockSizeOutOfRange is returned when a frame declares a block size
	// above the StreamInfo maximum.
	ErrBlockSizeOutOfRange = errors.New("flac: block size exceeds stream maximum")
	// ErrCRCMismatch is returned when the frame header CRC-8 or the frame
	// CRC-16 check failed.
	ErrCRCMismatch = errors.New("flac: checksum mismatch")
	// ErrOutputBufferTooSmall is returned by DecodeFrame when the output
	// slice cannot hold one fully decoded frame; size it with
	// OutputBufferSizeBytes.
	ErrOutputBufferTooSmall = errors.New("flac: output buffer too small")
)
