package htj2k

import (
	"math/rand"
	"reflect"
	"testing"
)

func TestDecomposeReconstructRoundTripReversible(t *testing.T) {
	width, height := 16, 12
	levels := 2
	rng := rand.New(rand.NewSource(1))
	samples := make([]int32, width*height)
	for i := range samples {
		samples[i] = int32(rng.Intn(511) - 255)
	}
	original := append([]int32(nil), samples...)

	resolutions := decompose(samples, width, height, levels, 0, 0, true, 8, 8)
	if len(resolutions) != levels+1 {
		t.Fatalf("expected %d resolutions, got %d", levels+1, len(resolutions))
	}

	got := reconstruct(resolutions, width, height, levels, 0, 0, true)
	if !reflect.DeepEqual(got, original) {
		t.Fatalf("reversible round trip mismatch")
	}
}

func TestDecomposeResolutionZeroIsLLOnly(t *testing.T) {
	width, height := 8, 8
	samples := make([]int32, width*height)
	for i := range samples {
		samples[i] = int32(i)
	}
	resolutions := decompose(samples, width, height, 1, 0, 0, true, 4, 4)
	if len(resolutions[0].Subbands) != 1 || resolutions[0].Subbands[0].Type != SubbandLL {
		t.Fatalf("resolution 0 must hold only LL")
	}
	if len(resolutions[1].Subbands) != 3 {
		t.Fatalf("resolution 1 must hold HL,LH,HH")
	}
}
