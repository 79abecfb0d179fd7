package htj2kcodec_test

import (
	"math/rand"
	"testing"

	"github.com/cocosip/htj2k-core/codec"
	"github.com/cocosip/htj2k-core/htj2kcodec"
)

func init() {
	htj2kcodec.RegisterCodecs()
}

func TestRegistryListsAllThreeCodecs(t *testing.T) {
	want := map[string]bool{
		htj2kcodec.UIDLossless:     false,
		htj2kcodec.UIDLosslessRPCL: false,
		htj2kcodec.UIDLossy:        false,
	}
	for _, c := range codec.List() {
		if _, ok := want[c.UID()]; ok {
			want[c.UID()] = true
		}
	}
	for uid, found := range want {
		if !found {
			t.Errorf("registry missing codec %q", uid)
		}
	}
}

func TestLosslessCodecEncodeDecodeRoundTrip(t *testing.T) {
	c, err := codec.Get(htj2kcodec.UIDLossless)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}

	width, height := 16, 16
	pixelData := make([]byte, width*height)
	rng := rand.New(rand.NewSource(11))
	rng.Read(pixelData)

	params := codec.EncodeParams{
		PixelData:  pixelData,
		Width:      width,
		Height:     height,
		Components: 1,
		BitDepth:   8,
	}
	compressed, err := c.Encode(params)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	result, err := c.Decode(compressed)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if result.Width != width || result.Height != height {
		t.Fatalf("dimensions mismatch: got %dx%d want %dx%d", result.Width, result.Height, width, height)
	}
	if len(result.PixelData) != len(pixelData) {
		t.Fatalf("pixel data length mismatch: got %d want %d", len(result.PixelData), len(pixelData))
	}
	for i := range pixelData {
		if result.PixelData[i] != pixelData[i] {
			t.Fatalf("lossless mismatch at %d: got %d want %d", i, result.PixelData[i], pixelData[i])
		}
	}
}
