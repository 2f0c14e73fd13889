package meta

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// SeekTable contains one or more pre-calculated audio frame seek points.
//
// ref: https://www.rfc-editor.org/rfc/rfc9639#section-8.5
type SeekTable struct {
	// One or more seek points.
	Points []SeekPoint
}

// PlaceholderPoint is the sample number of placeholder seek points.
const PlaceholderPoint = 0xFFFFFFFFFFFFFFFF

// A SeekPoint specifies the byte offset and initial sample number of a given
// target frame.
//
// ref: https://www.rfc-editor.org/rfc/rfc9639#section-8.5.1
type SeekPoint struct {
	// Sample number of the first sample in the target frame, or
	// PlaceholderPoint for a placeholder point.
	SampleNum uint64
	// Offset in bytes from the first byte of the first frame header to the
	// first byte of the target frame's header.
	Offset uint64
	// Number of samples in the target frame.
	NSamples uint16
}

// seekPointLen is the encoded size of one seek point.
const seekPointLen = 18

// ParseSeekTable parses and returns a new SeekTable metadata block from the
// given block body. The number of seek points is derived from the body
// length, which must be an integer multiple of the 18 byte seek point size.
func ParseSeekTable(data []byte) (table *SeekTable, err error) {
	if len(data)%seekPointLen != 0 {
		return nil, errors.Errorf("meta.ParseSeekTable: invalid body length %d; expected a multiple of %d", len(data), seekPointLen)
	}
	n := len(data) / seekPointLen
	if n < 1 {
		return nil, errors.New("meta.ParseSeekTable: at least one seek point is required")
	}
	table = &SeekTable{Points: make([]SeekPoint, n)}
	for i := range table.Points {
		p := data[i*seekPointLen:]
		table.Points[i] = SeekPoint{
			SampleNum: binary.BigEndian.Uint64(p),
			Offset:    binary.BigEndian.Uint64(p[8:]),
			NSamples:  binary.BigEndian.Uint16(p[16:]),
		}
	}
	return table, nil
}
