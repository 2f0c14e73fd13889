package meta

import (
	"bytes"
	"io"

	"github.com/icza/bitio"
	"github.com/pkg/errors"
)

// A CueSheet metadata block is for storing various information that can be
// used in a cue sheet. It supports track and index points, compatible with
// Red Book CD digital audio discs, as well as other CD-DA metadata such as
// media catalog number and track ISRCs.
type CueSheet struct {
	// Media catalog number, in ASCII printable characters 0x20-0x7e. For
	// CD-DA this is a thirteen digit number; unused characters are
	// right-padded with NUL characters.
	MCN string
	// The number of lead-in samples. Meaningful only for CD-DA cuesheets; for
	// other uses it should be 0.
	NLeadInSamples uint64
	// Specifies if the cue sheet corresponds to a Compact Disc.
	IsCompactDisc bool
	// One or more tracks. A cue sheet is required to have a lead-out track; it
	// is always the last track of the cue sheet.
	Tracks []CueSheetTrack
}

// A CueSheetTrack contains information about a track within a cue sheet.
type CueSheetTrack struct {
	// Track offset in samples, relative to the beginning of the FLAC audio
	// stream.
	Offset uint64
	// Track number; never 0, and at most 99 for CD-DA. The lead-out track
	// number is 170 for CD-DA and 255 otherwise.
	Num uint8
	// Track ISRC; a 12-digit alphanumeric code, or empty when absent.
	ISRC string
	// The track type: true for audio, false for non-audio.
	IsAudio bool
	// Specifies if the track samples have pre-emphasis.
	HasPreEmphasis bool
	// Every track has one or more track index points, except for the lead-out
	// track, which has zero.
	Indices []CueSheetTrackIndex
}

// A CueSheetTrackIndex contains information about an index point in a track.
type CueSheetTrackIndex struct {
	// Offset in samples, relative to the track offset, of the index point.
	Offset uint64
	// The index point number; subsequent index numbers within a track
	// increase by 1.
	Num uint8
}

// ParseCueSheet parses and returns a new CueSheet metadata block from the
// given block body.
//
// Cue sheet format (pseudo code):
//
//	type METADATA_BLOCK_CUESHEET struct {
//	   mcn               [128]byte
//	   nlead_in_samples  uint64
//	   is_compact_disc   bool
//	   _                 uint7
//	   _                 [258]byte
//	   ntracks           uint8
//	   tracks            [ntracks]track
//	}
//
//	type track struct {
//	   offset           uint64
//	   num              uint8
//	   isrc             [12]byte
//	   is_audio         bool
//	   has_pre_emphasis bool
//	   _                uint6
//	   _                [13]byte
//	   nindices         uint8
//	   indices          [nindices]index
//	}
//
//	type index struct {
//	   offset uint64
//	   num    uint8
//	   _      [3]byte
//	}
//
// ref: https://www.rfc-editor.org/rfc/rfc9639#section-8.7
func ParseCueSheet(data []byte) (cs *CueSheet, err error) {
	br := bitio.NewReader(bytes.NewReader(data))

	// 128 bytes: MCN.
	buf := make([]byte, 258)
	if _, err := io.ReadFull(br, buf[:128]); err != nil {
		return nil, errors.WithStack(err)
	}
	cs = new(CueSheet)
	cs.MCN = stringFromSZ(buf[:128])
	for _, r := range cs.MCN {
		if r < 0x20 || r > 0x7E {
			return nil, errors.Errorf("meta.ParseCueSheet: invalid character in media catalog number; expected >= 0x20 and <= 0x7E, got 0x%02X", r)
		}
	}

	// 64 bits: NLeadInSamples.
	cs.NLeadInSamples = br.TryReadBits(64)

	// 1 bit: IsCompactDisc.
	cs.IsCompactDisc = br.TryReadBool()

	// 7 bits and 258 bytes: reserved.
	br.TryReadBits(7)
	if _, err := io.ReadFull(br, buf[:258]); err != nil {
		return nil, errors.WithStack(err)
	}

	// 8 bits: (number of tracks).
	ntracks := br.TryReadBits(8)
	if br.TryError != nil {
		return nil, errors.WithStack(br.TryError)
	}
	if ntracks < 1 {
		return nil, errors.New("meta.ParseCueSheet: at least one track (the lead-out track) is required")
	}

	cs.Tracks = make([]CueSheetTrack, ntracks)
	for i := range cs.Tracks {
		track := &cs.Tracks[i]

		// 64 bits: Offset.
		track.Offset = br.TryReadBits(64)

		// 8 bits: Num.
		track.Num = uint8(br.TryReadBits(8))
		if track.Num == 0 {
			return nil, errors.New("meta.ParseCueSheet: track number 0 is reserved for the CD-DA lead-in")
		}

		// 12 bytes: ISRC.
		if _, err := io.ReadFull(br, buf[:12]); err != nil {
			return nil, errors.WithStack(err)
		}
		track.ISRC = stringFromSZ(buf[:12])

		// 1 bit: IsAudio; stored inverted (0 means audio).
		track.IsAudio = !br.TryReadBool()

		// 1 bit: HasPreEmphasis.
		track.HasPreEmphasis = br.TryReadBool()

		// 6 bits and 13 bytes: reserved.
		br.TryReadBits(6)
		if _, err := io.ReadFull(br, buf[:13]); err != nil {
			return nil, errors.WithStack(err)
		}

		// 8 bits: (number of indices).
		nindices := br.TryReadBits(8)
		if br.TryError != nil {
			return nil, errors.WithStack(br.TryError)
		}
		if nindices == 0 {
			// Lead-out track.
			continue
		}

		track.Indices = make([]CueSheetTrackIndex, nindices)
		for j := range track.Indices {
			index := &track.Indices[j]

			// 64 bits: Offset.
			index.Offset = br.TryReadBits(64)

			// 8 bits: Num.
			index.Num = uint8(br.TryReadBits(8))

			// 3 bytes: reserved.
			br.TryReadBits(24)
		}
		if br.TryError != nil {
			return nil, errors.WithStack(br.TryError)
		}
	}
	return cs, nil
}

// stringFromSZ converts the provided byte slice to a string after
// terminating it at the first occurrence of a NUL character.
func stringFromSZ(buf []byte) string {
	pos := bytes.IndexByte(buf, 0)
	if pos == -1 {
		return string(buf)
	}
	return string(buf[:pos])
}
