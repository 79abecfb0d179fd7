package colorspace

import "testing"

func TestRCTRoundTrip(t *testing.T) {
	cases := [][3]int32{
		{0, 0, 0},
		{255, 255, 255},
		{-128, 0, 127},
		{12, 200, 57},
	}
	for _, c := range cases {
		y, cb, cr := ForwardRCT(c[0], c[1], c[2])
		r, g, b := InverseRCT(y, cb, cr)
		if r != c[0] || g != c[1] || b != c[2] {
			t.Fatalf("RCT round trip failed for %v: got (%d,%d,%d)", c, r, g, b)
		}
	}
}

func TestRCTComponentsRoundTrip(t *testing.T) {
	r := []int32{10, 20, 30, 40}
	g := []int32{1, 2, 3, 4}
	b := []int32{100, 90, 80, 70}

	y, cb, cr := ForwardRCTComponents(r, g, b)
	r2, g2, b2 := InverseRCTComponents(y, cb, cr)

	for i := range r {
		if r2[i] != r[i] || g2[i] != g[i] || b2[i] != b[i] {
			t.Fatalf("component %d mismatch: got (%d,%d,%d) want (%d,%d,%d)",
				i, r2[i], g2[i], b2[i], r[i], g[i], b[i])
		}
	}
}

func TestICTApproximatelyInvertible(t *testing.T) {
	// ICT is lossy under quantization but the bare forward/inverse matrix
	// pair (no quantization step in between) must reconstruct closely.
	cases := [][3]int32{
		{0, 0, 0},
		{255, 128, 64},
		{-100, 50, 10},
	}
	for _, c := range cases {
		y, cb, cr := ForwardICT(c[0], c[1], c[2])
		r, g, b := InverseICT(y, cb, cr)
		if absDiff(r, c[0]) > 1 || absDiff(g, c[1]) > 1 || absDiff(b, c[2]) > 1 {
			t.Fatalf("ICT round trip drift too large for %v: got (%d,%d,%d)", c, r, g, b)
		}
	}
}

func absDiff(a, b int32) int32 {
	if a > b {
		return a - b
	}
	return b - a
}
