package flac

import (
	"bytes"
	"testing"
)

// newPackerDecoder returns a decoder primed with decoded planar samples, as
// writeSamples expects to find them after subframe decoding.
func newPackerDecoder(depth uint32, channels [][]int32) *Decoder {
	d := NewDecoder()
	d.info.NChannels = uint8(len(channels))
	d.info.BitsPerSample = uint8(depth)
	d.frameDepth = depth
	d.blockSize = uint32(len(channels[0]))
	for _, ch := range channels {
		d.samples = append(d.samples, ch...)
	}
	return d
}

func TestPack8BitBias(t *testing.T) {
	d := newPackerDecoder(8, [][]int32{{0, -128, 127, 1}})
	out := make([]byte, 4)
	d.writeSamples(out)
	want := []byte{0x80, 0x00, 0xFF, 0x81}
	if !bytes.Equal(out, want) {
		t.Errorf("packed bytes mismatch; expected % X, got % X", want, out)
	}
}

func TestPack12BitShift(t *testing.T) {
	// 12-bit samples occupy two bytes with the meaningful bits at the top
	// and zero LSB padding.
	d := newPackerDecoder(12, [][]int32{{1, -1, 2047, -2048}})
	out := make([]byte, 8)
	d.writeSamples(out)
	want := []byte{
		0x10, 0x00, // 1 << 4
		0xF0, 0xFF, // -1 << 4 = -16
		0xF0, 0x7F, // 2047 << 4 = 32752
		0x00, 0x80, // -2048 << 4 = -32768
	}
	if !bytes.Equal(out, want) {
		t.Errorf("packed bytes mismatch; expected % X, got % X", want, out)
	}
}

func TestPack16BitStereo(t *testing.T) {
	d := newPackerDecoder(16, [][]int32{
		{1, -1, 300},
		{-300, 2, -2},
	})
	out := make([]byte, 12)
	d.writeSamples(out)
	want := []byte{
		0x01, 0x00, 0xD4, 0xFE, // 1, -300
		0xFF, 0xFF, 0x02, 0x00, // -1, 2
		0x2C, 0x01, 0xFE, 0xFF, // 300, -2
	}
	if !bytes.Equal(out, want) {
		t.Errorf("packed bytes mismatch; expected % X, got % X", want, out)
	}
}

func TestPack24BitStereo(t *testing.T) {
	d := newPackerDecoder(24, [][]int32{
		{0x123456, -1},
		{-0x123456, 1},
	})
	out := make([]byte, 12)
	d.writeSamples(out)
	want := []byte{
		0x56, 0x34, 0x12, // 0x123456
		0xAA, 0xCB, 0xED, // -0x123456
		0xFF, 0xFF, 0xFF, // -1
		0x01, 0x00, 0x00, // 1
	}
	if !bytes.Equal(out, want) {
		t.Errorf("packed bytes mismatch; expected % X, got % X", want, out)
	}
}

func TestPack20BitGeneral(t *testing.T) {
	// 20-bit samples occupy three bytes, shifted up by 4.
	d := newPackerDecoder(20, [][]int32{{1, -1}})
	out := make([]byte, 6)
	d.writeSamples(out)
	want := []byte{
		0x10, 0x00, 0x00, // 1 << 4
		0xF0, 0xFF, 0xFF, // -1 << 4
	}
	if !bytes.Equal(out, want) {
		t.Errorf("packed bytes mismatch; expected % X, got % X", want, out)
	}
}

func TestPack32BitModeStereo(t *testing.T) {
	d := newPackerDecoder(16, [][]int32{
		{1, -1},
		{-2, 2},
	})
	d.SetOutput32BitSamples(true)
	out := make([]byte, 16)
	d.writeSamples(out)
	want := []byte{
		0x00, 0x00, 0x01, 0x00, // 1 << 16
		0x00, 0x00, 0xFE, 0xFF, // -2 << 16
		0x00, 0x00, 0xFF, 0xFF, // -1 << 16
		0x00, 0x00, 0x02, 0x00, // 2 << 16
	}
	if !bytes.Equal(out, want) {
		t.Errorf("packed bytes mismatch; expected % X, got % X", want, out)
	}
}

func TestPack32BitModeGeneral(t *testing.T) {
	// Three channels take the general 32-bit path.
	d := newPackerDecoder(24, [][]int32{
		{1},
		{2},
		{-1},
	})
	d.SetOutput32BitSamples(true)
	out := make([]byte, 12)
	d.writeSamples(out)
	want := []byte{
		0x00, 0x01, 0x00, 0x00, // 1 << 8
		0x00, 0x02, 0x00, 0x00, // 2 << 8
		0x00, 0xFF, 0xFF, 0xFF, // -1 << 8
	}
	if !bytes.Equal(out, want) {
		t.Errorf("packed bytes mismatch; expected % X, got % X", want, out)
	}
}
