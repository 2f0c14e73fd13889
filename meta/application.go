package meta

import (
	"fmt"

	"github.com/pkg/errors"
)

// registeredApplications maps from a registered application ID to a
// description.
//
// ref: https://xiph.org/flac/id.html
var registeredApplications = map[ID]string{
	"ATCH": "FlacFile",
	"BSOL": "beSolo",
	"BUGS": "Bugs Player",
	"Cues": "GoldWave cue points (specification)",
	"Fica": "CUE Splitter",
	"Ftol": "flac-tools",
	"MOTB": "MOTB MetaCzar",
	"MPSE": "MP3 Stream Editor",
	"MuML": "MusicML: Music Metadata Language",
	"RIFF": "Sound Devices RIFF chunk storage",
	"SFFL": "Sound Font FLAC",
	"SONY": "Sony Creative Software",
	"SQEZ": "flacsqueeze",
	"TtWv": "TwistedWave",
	"UITS": "UITS Embedding tools",
	"aiff": "FLAC AIFF chunk storage",
	"imag": "flac-image application for storing arbitrary files in APPLICATION metadata blocks",
	"peem": "Parseable Embedded Extensible Metadata (specification)",
	"qfst": "QFLAC Studio",
	"riff": "FLAC RIFF chunk storage",
	"tune": "TagTuner",
	"xbat": "XBAT",
	"xmcd": "xmcd",
}

// An ID is a 4 byte identifier of a registered application.
type ID string

func (id ID) String() string {
	if s, ok := registeredApplications[id]; ok {
		return s
	}
	return fmt.Sprintf("<unregistered ID: %q>", string(id))
}

// An Application metadata block is used by third-party applications. The only
// mandatory field is a 32-bit identifier. The remainder of the block is
// defined by the registered application.
type Application struct {
	// Registered application ID.
	ID ID
	// Application data.
	Data []byte
}

// ParseApplication parses and returns a new Application metadata block from
// the given block body. Unregistered application IDs occur in the wild and
// are not rejected.
//
// Application format (pseudo code):
//
//	type METADATA_BLOCK_APPLICATION struct {
//	   ID   uint32
//	   Data [length-4]byte
//	}
//
// ref: https://www.rfc-editor.org/rfc/rfc9639#section-8.4
func ParseApplication(data []byte) (app *Application, err error) {
	// Application ID (size: 4 bytes).
	if len(data) < 4 {
		return nil, errors.Errorf("meta.ParseApplication: invalid body length; expected >= 4, got %d", len(data))
	}
	app = &Application{ID: ID(data[:4])}

	// Data.
	app.Data = data[4:]
	return app, nil
}
