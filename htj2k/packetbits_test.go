package htj2k

import "testing"

func TestNumPassesRoundTrip(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 6, 20, 36, 37, 38, 100, 163} {
		w := newForwardMarkerBitWriter()
		if err := writeNumPasses(w, n); err != nil {
			t.Fatalf("writeNumPasses(%d): %v", n, err)
		}
		data := w.flush()

		r := newForwardMarkerBitReader(data)
		got, err := readNumPasses(r)
		if err != nil {
			t.Fatalf("readNumPasses after writeNumPasses(%d): %v", n, err)
		}
		if got != n {
			t.Fatalf("round trip mismatch: wrote %d, read back %d", n, got)
		}
	}
}

func TestNumPassesSequenceRoundTrip(t *testing.T) {
	values := []int{1, 2, 4, 6, 37, 1, 3, 36}
	w := newForwardMarkerBitWriter()
	for _, n := range values {
		if err := writeNumPasses(w, n); err != nil {
			t.Fatalf("writeNumPasses(%d): %v", n, err)
		}
	}
	data := w.flush()

	r := newForwardMarkerBitReader(data)
	for i, want := range values {
		got, err := readNumPasses(r)
		if err != nil {
			t.Fatalf("readNumPasses[%d]: %v", i, err)
		}
		if got != want {
			t.Fatalf("value %d: got %d want %d", i, got, want)
		}
	}
}

func TestSegmentLengthRoundTrip(t *testing.T) {
	for _, n := range []int{0, 1, 255, 4096, 1 << 20} {
		w := newForwardMarkerBitWriter()
		if err := writeSegmentLength(w, n); err != nil {
			t.Fatalf("writeSegmentLength(%d): %v", n, err)
		}
		r := newForwardMarkerBitReader(w.flush())
		got, err := readSegmentLength(r)
		if err != nil {
			t.Fatalf("readSegmentLength: %v", err)
		}
		if got != n {
			t.Fatalf("mismatch: wrote %d read %d", n, got)
		}
	}
}
