package tagtree

import "testing"

// bitPipe connects an Encode call's writeBit output directly to a
// Decode call's readBit input, simulating a packet-header bitstream.
type bitPipe struct {
	bits []int
	pos  int
}

func (p *bitPipe) write(bit int) error {
	p.bits = append(p.bits, bit)
	return nil
}

func (p *bitPipe) read() (int, error) {
	if p.pos >= len(p.bits) {
		return 0, errEOF
	}
	b := p.bits[p.pos]
	p.pos++
	return b, nil
}

var errEOF = fmtErrorf("bitpipe: out of bits")

func fmtErrorf(msg string) error { return &simpleErr{msg} }

type simpleErr struct{ msg string }

func (e *simpleErr) Error() string { return e.msg }

func TestInclusionRoundTrip(t *testing.T) {
	width, height := 3, 2
	inclLayer := [][]int{
		{0, 2, 1},
		{3, 0, 2},
	}

	enc := New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			enc.SetValue(x, y, inclLayer[y][x])
		}
	}

	dec := New(width, height)

	for layer := 0; layer < 4; layer++ {
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				pipe := &bitPipe{}
				if err := enc.Encode(x, y, layer+1, pipe.write); err != nil {
					t.Fatalf("encode (%d,%d) layer %d: %v", x, y, layer, err)
				}

				wantIncluded := inclLayer[y][x] <= layer
				included, firstLayer, err := dec.DecodeInclusion(x, y, layer, pipe.read)
				if err != nil {
					t.Fatalf("decode (%d,%d) layer %d: %v", x, y, layer, err)
				}
				if included != wantIncluded {
					t.Fatalf("(%d,%d) layer %d: included=%v want %v", x, y, layer, included, wantIncluded)
				}
				if included && firstLayer != inclLayer[y][x] {
					t.Fatalf("(%d,%d) layer %d: firstLayer=%d want %d", x, y, layer, firstLayer, inclLayer[y][x])
				}
			}
		}
	}
}

func TestZeroBitPlanesRoundTrip(t *testing.T) {
	width, height := 2, 2
	zbp := [][]int{
		{0, 5},
		{3, 12},
	}

	enc := New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			enc.SetValue(x, y, zbp[y][x])
		}
	}

	dec := New(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			pipe := &bitPipe{}
			if err := enc.Encode(x, y, unboundedThreshold, pipe.write); err != nil {
				t.Fatalf("encode (%d,%d): %v", x, y, err)
			}

			got, err := dec.DecodeZeroBitPlanes(x, y, pipe.read)
			if err != nil {
				t.Fatalf("decode (%d,%d): %v", x, y, err)
			}
			if got != zbp[y][x] {
				t.Fatalf("(%d,%d): got %d want %d", x, y, got, zbp[y][x])
			}
		}
	}
}

func TestEmptyTreeIsNoOp(t *testing.T) {
	tr := New(0, 0)
	pipe := &bitPipe{}
	if err := tr.Encode(0, 0, 1, pipe.write); err == nil && len(pipe.bits) != 0 {
		t.Fatalf("expected no bits written for empty tree")
	}
	value, complete, err := tr.Decode(0, 0, 1, pipe.read)
	if err != nil || !complete || value != 0 {
		t.Fatalf("empty tree decode = (%d,%v,%v)", value, complete, err)
	}
}
