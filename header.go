package flac

import (
	"github.com/pcmkit/flac/meta"
)

// ReadHeader validates the "fLaC" signature and parses the metadata section
// of the stream from the given buffer. It must be called, until it reports
// success, before the first DecodeFrame.
//
// Metadata block format (pseudo code):
//
//	type METADATA_BLOCK struct {
//	   is_last bool
//	   type    uint7
//	   length  uint24
//	   body    [length]byte
//	}
//
// Parsing is resumable: when the buffer runs dry, ReadHeader returns
// ErrNeedMoreData and records its position, so the caller may compact the
// buffer by BytesConsumed, refill it and call again. Any other error is
// terminal for the stream.
//
// The StreamInfo block is always parsed into fields. Every other block is
// either retained raw (available through MetadataBlocks) or skipped,
// depending on the per-type limits configured with SetMaxMetadataSize.
//
// ref: https://www.rfc-editor.org/rfc/rfc9639#section-8
func (d *Decoder) ReadHeader(data []byte) error {
	d.br.reset(data)
	d.consumed = 0

	if !d.partial.reading {
		d.blocks = d.blocks[:0]

		// Verify "fLaC" signature (size: 4 bytes).
		if len(data) < len(signature) {
			return ErrNeedMoreData
		}
		if string(data[:len(signature)]) != signature {
			return ErrBadMagicNumber
		}
		d.br.pos = len(signature)
	}

	for !d.partial.last || d.partial.length > 0 {
		if d.partial.length == 0 {
			// At a metadata block boundary; the 32-bit block header must be
			// available in full before the parse position moves.
			if d.br.bytesLeft() < 4 {
				d.partial.reading = true
				d.consumed = d.br.pos
				return ErrNeedMoreData
			}

			// 1 bit: is_last.
			d.partial.last = d.br.readUint(1) != 0

			// 7 bits: type.
			d.partial.typ = uint8(d.br.readUint(7))

			// 24 bits: length.
			d.partial.length = d.br.readUint(24)
			d.partial.read = 0
			d.partial.data = d.partial.data[:0]
		}

		// Retention policy: StreamInfo is always parsed into fields; any
		// other block is skipped when empty or longer than the limit of its
		// type.
		skip := false
		if d.partial.typ != uint8(meta.TypeStreamInfo) {
			skip = d.partial.length == 0 || d.partial.length > d.maxMetaSize[metaSizeIndex(d.partial.typ)]
		}

		// The block header read above leaves the cursor empty and
		// byte-aligned, so body bytes come straight off the buffer.
		n := int(d.partial.length - d.partial.read)
		if left := d.br.bytesLeft(); n > left {
			n = left
		}
		if !skip {
			d.partial.data = append(d.partial.data, d.br.data[d.br.pos:d.br.pos+n]...)
		}
		d.br.pos += n
		d.partial.read += uint32(n)

		if d.partial.read < d.partial.length {
			d.partial.reading = true
			d.consumed = d.br.pos
			return ErrNeedMoreData
		}

		// Block complete.
		if d.partial.typ == uint8(meta.TypeStreamInfo) {
			si, err := meta.ParseStreamInfo(d.partial.data)
			if err != nil {
				return ErrBadHeader
			}
			d.info = *si
		} else if !skip {
			d.blocks = append(d.blocks, meta.Block{
				Type:   meta.Type(d.partial.typ),
				Length: d.partial.length,
				Data:   append([]byte(nil), d.partial.data...),
			})
		}
		d.partial.length = 0
		d.partial.read = 0
		d.partial.data = d.partial.data[:0]
	}

	// The terminal block has been read; the stream parameters must now hold.
	if d.info.SampleRate == 0 || d.info.NChannels == 0 || d.info.BitsPerSample == 0 || d.info.BlockSizeMax == 0 {
		return ErrBadHeader
	}
	if d.info.BlockSizeMin < 16 || d.info.BlockSizeMin > d.info.BlockSizeMax {
		return ErrBadHeader
	}

	d.headerDone = true
	d.partial.reading = true // the signature is consumed; never re-verify
	d.consumed = d.br.pos
	return nil
}
