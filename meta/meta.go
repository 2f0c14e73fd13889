// Package meta implements parsing of FLAC metadata blocks.
//
// The decoder core retains metadata blocks as raw bytes, subject to the
// per-type retention limits configured on the decoder. This package gives
// those raw blocks their typed form.
package meta

import (
	"github.com/pkg/errors"
)

// Type is the metadata block type.
type Type uint8

// Metadata block types.
//
// ref: https://www.rfc-editor.org/rfc/rfc9639#section-8.1
const (
	TypeStreamInfo    Type = 0
	TypePadding       Type = 1
	TypeApplication   Type = 2
	TypeSeekTable     Type = 3
	TypeVorbisComment Type = 4
	TypeCueSheet      Type = 5
	TypePicture       Type = 6
	// 7-126 are reserved.

	// TypeInvalid is forbidden in streams, to avoid confusion with a frame
	// sync code.
	TypeInvalid Type = 127
)

// typeName is a map from Type to name.
var typeName = map[Type]string{
	TypeStreamInfo:    "stream info",
	TypePadding:       "padding",
	TypeApplication:   "application",
	TypeSeekTable:     "seek table",
	TypeVorbisComment: "vorbis comment",
	TypeCueSheet:      "cue sheet",
	TypePicture:       "picture",
	TypeInvalid:       "invalid",
}

func (t Type) String() string {
	if s, ok := typeName[t]; ok {
		return s
	}
	return "reserved"
}

// A Block is a metadata block retained by the decoder, consisting of the
// block header fields and the raw block body.
type Block struct {
	// Block type.
	Type Type
	// Length in bytes of the metadata body, as declared by the block header.
	Length uint32
	// Raw metadata block body.
	Data []byte
}

// Parse parses the raw body of the block and returns its typed form:
// *StreamInfo, *Application, *SeekTable, *VorbisComment, *CueSheet or
// *Picture. Padding blocks are verified to contain only zeros and parse to
// nil. Reserved block types are rejected.
func (block *Block) Parse() (body interface{}, err error) {
	switch block.Type {
	case TypeStreamInfo:
		return ParseStreamInfo(block.Data)
	case TypePadding:
		return nil, block.verifyPadding()
	case TypeApplication:
		return ParseApplication(block.Data)
	case TypeSeekTable:
		return ParseSeekTable(block.Data)
	case TypeVorbisComment:
		return ParseVorbisComment(block.Data)
	case TypeCueSheet:
		return ParseCueSheet(block.Data)
	case TypePicture:
		return ParsePicture(block.Data)
	default:
		return nil, errors.Errorf("meta.Block.Parse: block type %d not supported", block.Type)
	}
}
