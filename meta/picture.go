package meta

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// A Picture metadata block is for storing pictures associated with the file,
// most commonly cover art from CDs. There may be more than one Picture block
// in a file.
type Picture struct {
	// The picture type according to the ID3v2 APIC frame:
	//    0 - Other
	//    1 - 32x32 pixels 'file icon' (PNG only)
	//    2 - Other file icon
	//    3 - Cover (front)
	//    4 - Cover (back)
	//    5 - Leaflet page
	//    6 - Media (e.g. label side of CD)
	//    7 - Lead artist/lead performer/soloist
	//    8 - Artist/performer
	//    9 - Conductor
	//    10 - Band/Orchestra
	//    11 - Composer
	//    12 - Lyricist/text writer
	//    13 - Recording Location
	//    14 - During recording
	//    15 - During performance
	//    16 - Movie/video screen capture
	//    17 - A bright coloured fish
	//    18 - Illustration
	//    19 - Band/artist logotype
	//    20 - Publisher/Studio logotype
	Type uint32
	// The MIME type string, in printable ASCII characters 0x20-0x7e. The MIME
	// type may also be "-->" to signify that the data part is a URL of the
	// picture instead of the picture data itself.
	MIME string
	// The description of the picture, in UTF-8.
	Desc string
	// The width of the picture in pixels.
	Width uint32
	// The height of the picture in pixels.
	Height uint32
	// The color depth of the picture in bits-per-pixel.
	Depth uint32
	// For indexed-color pictures (e.g. GIF), the number of colors used, or 0
	// for non-indexed pictures.
	NPalColors uint32
	// The binary picture data.
	Data []byte
}

// ParsePicture parses and returns a new Picture metadata block from the
// given block body.
//
// Picture format (pseudo code):
//
//	type METADATA_BLOCK_PICTURE struct {
//	   type        uint32
//	   mime_length uint32
//	   mime_string [mime_length]byte
//	   desc_length uint32
//	   desc_string [desc_length]byte
//	   width       uint32
//	   height      uint32
//	   color_depth uint32
//	   color_count uint32
//	   data_length uint32
//	   data        [data_length]byte
//	}
//
// ref: https://www.rfc-editor.org/rfc/rfc9639#section-8.8
func ParsePicture(data []byte) (pic *Picture, err error) {
	// Type.
	if len(data) < 8 {
		return nil, errors.Errorf("meta.ParsePicture: invalid body length; expected >= 8, got %d", len(data))
	}
	pic = new(Picture)
	pic.Type = binary.BigEndian.Uint32(data)
	if pic.Type > 20 {
		return nil, errors.Errorf("meta.ParsePicture: reserved picture type: %d", pic.Type)
	}
	data = data[4:]

	// MIME type.
	mime, data, err := pictureString(data)
	if err != nil {
		return nil, err
	}
	pic.MIME = mime
	for _, r := range pic.MIME {
		if r < 0x20 || r > 0x7E {
			return nil, errors.Errorf("meta.ParsePicture: invalid character in MIME type; expected >= 0x20 and <= 0x7E, got 0x%02X", r)
		}
	}

	// Description.
	desc, data, err := pictureString(data)
	if err != nil {
		return nil, err
	}
	pic.Desc = desc

	// Width, height, color depth, color count.
	if len(data) < 16 {
		return nil, errors.Errorf("meta.ParsePicture: short body; missing picture dimensions")
	}
	pic.Width = binary.BigEndian.Uint32(data)
	pic.Height = binary.BigEndian.Uint32(data[4:])
	pic.Depth = binary.BigEndian.Uint32(data[8:])
	pic.NPalColors = binary.BigEndian.Uint32(data[12:])
	data = data[16:]

	// Data.
	if len(data) < 4 {
		return nil, errors.Errorf("meta.ParsePicture: short body; missing data length")
	}
	dataLen := binary.BigEndian.Uint32(data)
	data = data[4:]
	if uint64(len(data)) != uint64(dataLen) {
		return nil, errors.Errorf("meta.ParsePicture: invalid data length; expected %d, got %d", dataLen, len(data))
	}
	pic.Data = data
	return pic, nil
}

// pictureString reads a length-prefixed (big-endian) picture string and
// returns it along with the remainder of the body.
func pictureString(data []byte) (s string, rest []byte, err error) {
	if len(data) < 4 {
		return "", nil, errors.New("meta.pictureString: short body; missing string length")
	}
	n := binary.BigEndian.Uint32(data)
	data = data[4:]
	if uint64(len(data)) < uint64(n) {
		return "", nil, errors.Errorf("meta.pictureString: invalid string length; expected <= %d, got %d", len(data), n)
	}
	return string(data[:n]), data[n:], nil
}
