// flacmeta is a tool which lists the metadata blocks of FLAC files.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/pkg/errors"

	"github.com/pcmkit/flac"
	"github.com/pcmkit/flac/meta"
)

func main() {
	// Parse command line arguments.
	var (
		// maximum size in bytes of metadata blocks to load.
		max uint
	)
	flag.UintVar(&max, "max", 16*1024*1024, "maximum metadata block size to load")
	flag.Parse()
	for _, path := range flag.Args() {
		if err := list(path, uint32(max)); err != nil {
			log.Fatalf("%+v", err)
		}
	}
}

// list prints the metadata blocks of the given FLAC file.
func list(path string, max uint32) error {
	r, err := os.Open(path)
	if err != nil {
		return errors.WithStack(err)
	}
	defer r.Close()

	// Retain every metadata type up to the size cap.
	dec := flac.NewDecoder()
	for _, typ := range []meta.Type{meta.TypePadding, meta.TypeApplication, meta.TypeSeekTable, meta.TypeVorbisComment, meta.TypeCueSheet, meta.TypePicture} {
		dec.SetMaxMetadataSize(typ, max)
	}
	stream, err := flac.NewReaderDecoder(r, dec)
	if err != nil {
		return errors.WithStack(err)
	}

	si := stream.StreamInfo()
	fmt.Println("METADATA block #0")
	fmt.Println("  type: 0 (STREAMINFO)")
	fmt.Println("  length: 34")
	fmt.Println("  minimum blocksize:", si.BlockSizeMin, "samples")
	fmt.Println("  maximum blocksize:", si.BlockSizeMax, "samples")
	fmt.Println("  minimum framesize:", si.FrameSizeMin, "bytes")
	fmt.Println("  maximum framesize:", si.FrameSizeMax, "bytes")
	fmt.Println("  sample_rate:", si.SampleRate, "Hz")
	fmt.Println("  channels:", si.NChannels)
	fmt.Println("  bits-per-sample:", si.BitsPerSample)
	fmt.Println("  total samples:", si.NSamples)
	fmt.Printf("  MD5 signature: %032x\n", si.MD5sum)

	for i, block := range dec.MetadataBlocks() {
		fmt.Printf("METADATA block #%d\n", i+1)
		fmt.Printf("  type: %d (%s)\n", block.Type, block.Type)
		fmt.Println("  length:", block.Length)
		body, err := block.Parse()
		if err != nil {
			return errors.WithStack(err)
		}
		switch body := body.(type) {
		case *meta.Application:
			fmt.Println("  application:", body.ID)
		case *meta.SeekTable:
			fmt.Println("  seek points:", len(body.Points))
			for j, point := range body.Points {
				if point.SampleNum == meta.PlaceholderPoint {
					fmt.Printf("    point %d: PLACEHOLDER\n", j)
					continue
				}
				fmt.Printf("    point %d: sample_number=%d, stream_offset=%d, frame_samples=%d\n", j, point.SampleNum, point.Offset, point.NSamples)
			}
		case *meta.VorbisComment:
			fmt.Println("  vendor string:", body.Vendor)
			fmt.Println("  comments:", len(body.Entries))
			for j, entry := range body.Entries {
				fmt.Printf("    comment[%d]: %s=%s\n", j, entry.Name, entry.Value)
			}
		case *meta.CueSheet:
			fmt.Println("  media catalog number:", body.MCN)
			fmt.Println("  lead-in:", body.NLeadInSamples)
			fmt.Println("  is CD:", body.IsCompactDisc)
			fmt.Println("  number of tracks:", len(body.Tracks))
		case *meta.Picture:
			fmt.Println("  picture type:", body.Type)
			fmt.Println("  MIME type:", body.MIME)
			fmt.Println("  description:", body.Desc)
			fmt.Printf("  dimensions: %dx%d\n", body.Width, body.Height)
			fmt.Println("  data length:", len(body.Data))
		}
	}
	return nil
}
