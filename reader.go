package flac

import (
	"io"

	"github.com/pkg/errors"

	"github.com/pcmkit/flac/meta"
)

// defaultChunkSize is the initial size of a Reader's input chunk buffer. It
// grows when a frame turns out larger than the buffer.
const defaultChunkSize = 64 * 1024

// A Reader drives the chunked Decoder protocol from an io.Reader: it
// refills its chunk buffer from the source, feeds the decoder, and compacts
// the buffer by the number of bytes consumed. Callers that manage their own
// buffers use the Decoder directly instead.
type Reader struct {
	dec *Decoder
	r   io.Reader
	// Input chunk buffer; buf[:n] holds unconsumed input.
	buf []byte
	n   int
	eof bool
	// Frame output buffer, reused between NextFrame calls.
	pcm []byte
}

// NewReader parses the FLAC stream header from r and returns a Reader
// positioned at the first audio frame, using a decoder with default
// configuration.
func NewReader(r io.Reader) (*Reader, error) {
	return NewReaderDecoder(r, NewDecoder())
}

// NewReaderDecoder is like NewReader but decodes with the provided,
// caller-configured decoder. The decoder must be fresh: configured but not
// yet fed any input.
func NewReaderDecoder(r io.Reader, dec *Decoder) (*Reader, error) {
	fr := &Reader{
		dec: dec,
		r:   r,
		buf: make([]byte, defaultChunkSize),
	}
	for {
		if err := fr.fill(); err != nil {
			return nil, err
		}
		err := dec.ReadHeader(fr.buf[:fr.n])
		fr.compact(dec.BytesConsumed())
		switch {
		case err == nil:
			fr.pcm = make([]byte, dec.OutputBufferSizeBytes())
			return fr, nil
		case err == ErrNeedMoreData:
			if fr.eof {
				return nil, errors.WithStack(io.ErrUnexpectedEOF)
			}
		default:
			return nil, errors.Wrap(err, "flac.NewReader: parsing stream header")
		}
	}
}

// StreamInfo returns the stream properties of the source.
func (fr *Reader) StreamInfo() meta.StreamInfo {
	return fr.dec.StreamInfo()
}

// Decoder returns the underlying decoder, giving access to stream getters
// and retained metadata blocks.
func (fr *Reader) Decoder() *Decoder {
	return fr.dec
}

// NextFrame decodes the next audio frame and returns its interleaved PCM
// bytes. The returned slice is valid until the next NextFrame call. At the
// end of the stream NextFrame returns io.EOF.
func (fr *Reader) NextFrame() ([]byte, error) {
	for {
		if err := fr.fill(); err != nil {
			return nil, err
		}
		n, err := fr.dec.DecodeFrame(fr.buf[:fr.n], fr.pcm)
		switch err {
		case nil:
			fr.compact(fr.dec.BytesConsumed())
			nbytes := n * fr.dec.NumChannels() * fr.dec.OutputBytesPerSample()
			return fr.pcm[:nbytes], nil
		case ErrNoMoreFrames:
			return nil, io.EOF
		case ErrOutOfData, ErrSyncNotFound:
			// The frame continues beyond the buffered input.
			if fr.eof {
				if err == ErrSyncNotFound {
					return nil, err
				}
				return nil, errors.WithStack(io.ErrUnexpectedEOF)
			}
			if fr.n == len(fr.buf) {
				// The frame is larger than the chunk buffer; grow it.
				grown := make([]byte, 2*len(fr.buf))
				copy(grown, fr.buf[:fr.n])
				fr.buf = grown
			}
		default:
			return nil, err
		}
	}
}

// fill tops the chunk buffer up from the source.
func (fr *Reader) fill() error {
	if fr.eof || fr.n == len(fr.buf) {
		return nil
	}
	n, err := io.ReadFull(fr.r, fr.buf[fr.n:])
	fr.n += n
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		fr.eof = true
		return nil
	}
	return errors.WithStack(err)
}

// compact drops the first n consumed bytes of the chunk buffer.
func (fr *Reader) compact(n int) {
	if n == 0 {
		return
	}
	copy(fr.buf, fr.buf[n:fr.n])
	fr.n -= n
}
