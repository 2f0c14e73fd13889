// flac2wav is a tool which converts FLAC files to WAV files.
package main

import (
	"encoding/binary"
	"flag"
	"io"
	"log"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/mewkiz/pkg/osutil"
	"github.com/mewkiz/pkg/pathutil"
	"github.com/pkg/errors"

	"github.com/pcmkit/flac"
)

func main() {
	// Parse command line arguments.
	var (
		// force overwrite WAV file if already present.
		force bool
	)
	flag.BoolVar(&force, "f", false, "force overwrite")
	flag.Parse()
	for _, flacPath := range flag.Args() {
		if err := flac2wav(flacPath, force); err != nil {
			log.Fatalf("%+v", err)
		}
	}
}

// flac2wav converts the provided FLAC file to a WAV file.
func flac2wav(flacPath string, force bool) error {
	// Open FLAC stream.
	r, err := os.Open(flacPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer r.Close()
	stream, err := flac.NewReader(r)
	if err != nil {
		return errors.WithStack(err)
	}
	dec := stream.Decoder()

	// Create WAV encoder.
	wavPath := pathutil.TrimExt(flacPath) + ".wav"
	if !force && osutil.Exists(wavPath) {
		return errors.Errorf("WAV file %q already present; use -f flag to force overwrite", wavPath)
	}
	w, err := os.Create(wavPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer w.Close()
	bps := dec.OutputBytesPerSample()
	enc := wav.NewEncoder(w, dec.SampleRate(), 8*bps, dec.NumChannels(), 1)
	defer enc.Close()

	// Decode FLAC audio frames and encode WAV audio samples.
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: dec.NumChannels(),
			SampleRate:  dec.SampleRate(),
		},
		SourceBitDepth: dec.SampleDepth(),
	}
	for {
		pcm, err := stream.NextFrame()
		if err != nil {
			if err == io.EOF {
				break
			}
			return errors.WithStack(err)
		}
		n := len(pcm) / bps
		if cap(buf.Data) < n {
			buf.Data = make([]int, n)
		}
		buf.Data = buf.Data[:n]
		for i := 0; i < n; i++ {
			buf.Data[i] = sampleInt(pcm[i*bps:], bps)
		}
		if err := enc.Write(buf); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// sampleInt returns the sample stored at p in the decoder's native packing:
// little-endian containers of bps bytes, with 8-bit samples already biased
// into the unsigned domain as WAV expects.
func sampleInt(p []byte, bps int) int {
	switch bps {
	case 1:
		return int(p[0])
	case 2:
		return int(int16(binary.LittleEndian.Uint16(p)))
	case 3:
		v := uint32(p[0]) | uint32(p[1])<<8 | uint32(p[2])<<16
		return int(int32(v<<8) >> 8)
	default:
		return int(int32(binary.LittleEndian.Uint32(p)))
	}
}
