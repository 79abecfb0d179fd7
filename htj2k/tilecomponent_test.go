package htj2k

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestTileComponentEncodeDecodeRoundTripReversible(t *testing.T) {
	width, height := 16, 16
	levels := 2
	tc := &TileComponent{
		Index: 0, X0: 0, Y0: 0, X1: width, Y1: height,
		BitDepth: 8, Signed: true,
		DecompositionLevels: levels, Reversible: true,
		CodeBlockWidth: 8, CodeBlockHeight: 8,
		GuardBits: 2,
		Quant:     make([]SubbandQuant, 1+3*levels),
	}

	rng := rand.New(rand.NewSource(7))
	samples := make([]int32, width*height)
	for i := range samples {
		samples[i] = int32(rng.Intn(255) - 128)
	}
	original := append([]int32(nil), samples...)
	if err := tc.SetSamples(samples); err != nil {
		t.Fatalf("SetSamples: %v", err)
	}

	if err := tc.Encode(); err != nil {
		t.Fatalf("Encode: %v", err)
	}

	// Simulate the decode path by handing the same Resolutions (with
	// their coded Segments) to a fresh TileComponent, mirroring what
	// Codestream.parseTileParts does after reading packets back.
	dec := &TileComponent{
		Index: 0, X0: 0, Y0: 0, X1: width, Y1: height,
		BitDepth: 8, Signed: true,
		DecompositionLevels: levels, Reversible: true,
		Resolutions: tc.Resolutions,
	}
	if err := dec.Decode(); err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if !reflect.DeepEqual(dec.Samples(), original) {
		t.Fatalf("lossless round trip mismatch:\ngot  %v\nwant %v", dec.Samples(), original)
	}
}
