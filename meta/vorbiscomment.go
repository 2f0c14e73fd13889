package meta

import (
	"encoding/binary"
	"strings"

	"github.com/pkg/errors"
)

// A VorbisComment metadata block is for storing a list of human-readable
// name/value pairs. Values are encoded using UTF-8. It is an implementation
// of the Vorbis comment specification (without the framing bit). This is the
// only officially supported tagging mechanism in FLAC. There may be only one
// VORBIS_COMMENT block in a stream. In some external documentation, Vorbis
// comments are called FLAC tags to lessen confusion.
type VorbisComment struct {
	Vendor  string
	Entries []VorbisEntry
}

// A VorbisEntry is a name/value pair.
type VorbisEntry struct {
	Name  string
	Value string
}

// ParseVorbisComment parses and returns a new VorbisComment metadata block
// from the given block body.
//
// Vorbis comment format (pseudo code):
//
//	type METADATA_BLOCK_VORBIS_COMMENT struct {
//	   vendor_length uint32
//	   vendor_string [vendor_length]byte
//	   comment_count uint32
//	   comments      [comment_count]comment
//	}
//
//	type comment struct {
//	   vector_length uint32
//	   // vector_string is a name/value pair. Example: "NAME=value".
//	   vector_string [vector_length]byte
//	}
//
// Note that unlike the rest of FLAC, Vorbis comment lengths are little-endian.
//
// ref: https://www.rfc-editor.org/rfc/rfc9639#section-8.6
func ParseVorbisComment(data []byte) (vc *VorbisComment, err error) {
	// Vendor length and vendor string.
	vendor, data, err := vorbisString(data)
	if err != nil {
		return nil, err
	}
	vc = &VorbisComment{Vendor: vendor}

	// Comment count.
	if len(data) < 4 {
		return nil, errors.New("meta.ParseVorbisComment: short body; missing comment count")
	}
	count := binary.LittleEndian.Uint32(data)
	data = data[4:]

	// Comments.
	vc.Entries = make([]VorbisEntry, count)
	for i := range vc.Entries {
		// Vector string of the form "NAME=value".
		var vector string
		vector, data, err = vorbisString(data)
		if err != nil {
			return nil, err
		}
		pos := strings.Index(vector, "=")
		if pos == -1 {
			return nil, errors.Errorf("meta.ParseVorbisComment: invalid comment vector; no '=' present in: %s", vector)
		}
		vc.Entries[i] = VorbisEntry{
			Name:  vector[:pos],
			Value: vector[pos+1:],
		}
	}
	return vc, nil
}

// vorbisString reads a length-prefixed Vorbis string and returns it along
// with the remainder of the body.
func vorbisString(data []byte) (s string, rest []byte, err error) {
	if len(data) < 4 {
		return "", nil, errors.New("meta.vorbisString: short body; missing string length")
	}
	n := binary.LittleEndian.Uint32(data)
	data = data[4:]
	if uint64(len(data)) < uint64(n) {
		return "", nil, errors.Errorf("meta.vorbisString: invalid string length; expected <= %d, got %d", len(data), n)
	}
	return string(data[:n]), data[n:], nil
}
