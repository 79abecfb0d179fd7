// Package tagtree implements the quad-tree (tag-tree) coding used by
// packet headers for code-block inclusion and missing-MSB signalling,
// ISO/IEC 15444-1 Annex B.10.2. Unlike a single flat level, a tag tree
// has one level per halving of the code-block grid, each node holding
// the minimum of its four children; decoding a leaf against a
// threshold walks the path from root to leaf, and a node whose value is
// already known to be >= threshold lets every descendant on that path
// skip its own bits entirely.
package tagtree

import "fmt"

const unboundedThreshold = 1 << 30

type node struct {
	low   int32
	value int32
	known bool
	set   bool
}

// TagTree is a quad-tree over a numCBX x numCBY grid of leaves (one per
// code-block in a subband/precinct). It supports both decoding (reading
// bits to discover node values against a threshold, the JPEG2000 wire
// format) and encoding (precomputing known values bottom-up, then
// emitting the bits a decoder would consume).
type TagTree struct {
	width, height int
	levelWidths   []int
	levelHeights  []int
	levelOffsets  []int
	nodes         []node
}

// New builds a tag tree over a width x height leaf grid. width and
// height of zero produce an empty tree whose Decode/Encode calls are
// no-ops, matching precincts with no code-blocks.
func New(width, height int) *TagTree {
	t := &TagTree{width: width, height: height}
	if width <= 0 || height <= 0 {
		return t
	}

	w, h, offset := width, height, 0
	for {
		t.levelWidths = append(t.levelWidths, w)
		t.levelHeights = append(t.levelHeights, h)
		t.levelOffsets = append(t.levelOffsets, offset)
		offset += w * h
		if w == 1 && h == 1 {
			break
		}
		w = (w + 1) / 2
		h = (h + 1) / 2
	}
	t.nodes = make([]node, offset)
	return t
}

func (t *TagTree) empty() bool { return t.width <= 0 || t.height <= 0 }

// Width returns the leaf-level grid width.
func (t *TagTree) Width() int { return t.width }

// Height returns the leaf-level grid height.
func (t *TagTree) Height() int { return t.height }

// Reset clears all decoder/encoder state, needed at the start of each
// new packet since tag trees persist their "low" bound across the
// layers of a single packet but not across packets.
func (t *TagTree) Reset() {
	for i := range t.nodes {
		t.nodes[i] = node{}
	}
}

func (t *TagTree) pathToRoot(x, y int) []int {
	path := make([]int, 0, len(t.levelWidths))
	cx, cy := x, y
	for level := 0; level < len(t.levelWidths); level++ {
		idx := t.levelOffsets[level] + cy*t.levelWidths[level] + cx
		path = append(path, idx)
		cx >>= 1
		cy >>= 1
	}
	return path
}

// Decode reads bits from readBit (MSB-first, one bit per call) to
// resolve the leaf at (x,y) against threshold. If the returned value is
// complete, it is the leaf's exact value; otherwise it is only a lower
// bound and the caller should retry with a larger threshold once more
// bits are available (e.g. in a later layer).
func (t *TagTree) Decode(x, y, threshold int, readBit func() (int, error)) (value int, complete bool, err error) {
	if t.empty() {
		return 0, true, nil
	}
	if x < 0 || x >= t.width || y < 0 || y >= t.height {
		return 0, false, fmt.Errorf("tagtree: leaf (%d,%d) out of range %dx%d", x, y, t.width, t.height)
	}

	path := t.pathToRoot(x, y)
	for i := len(path) - 1; i >= 0; i-- {
		n := &t.nodes[path[i]]
		if !n.known {
			for int(n.low) < threshold {
				bit, berr := readBit()
				if berr != nil {
					return int(n.low), false, berr
				}
				if bit != 0 {
					n.known = true
					break
				}
				n.low++
			}
		}
		if !n.known {
			return int(n.low), false, nil
		}
	}
	return int(t.nodes[path[0]].low), true, nil
}

// DecodeInclusion decodes the code-block inclusion tag tree: a
// code-block is included in layer currentLayer if its tag-tree value
// resolves to currentLayer or earlier.
func (t *TagTree) DecodeInclusion(x, y, currentLayer int, readBit func() (int, error)) (included bool, firstLayer int, err error) {
	value, complete, err := t.Decode(x, y, currentLayer+1, readBit)
	if err != nil {
		return false, -1, err
	}
	if complete && value <= currentLayer {
		return true, value, nil
	}
	return false, -1, nil
}

// DecodeZeroBitPlanes decodes the number of all-zero most-significant
// bit-planes for a code-block on its first inclusion, an unbounded
// decode that terminates only once a 1 bit is read.
func (t *TagTree) DecodeZeroBitPlanes(x, y int, readBit func() (int, error)) (int, error) {
	value, _, err := t.Decode(x, y, unboundedThreshold, readBit)
	return value, err
}

// SetValue records the known value for a leaf ahead of encoding. Call
// ResetEncoding first, SetValue for every leaf, then Encode per leaf in
// the same order a decoder will read them.
func (t *TagTree) SetValue(x, y, value int) {
	if t.empty() || x < 0 || x >= t.width || y < 0 || y >= t.height {
		return
	}
	t.nodes[y*t.width+x].value = int32(value)
	t.nodes[y*t.width+x].set = true
	t.propagateValue(x, y)
}

func (t *TagTree) propagateValue(x, y int) {
	cx, cy := x, y
	for level := 1; level < len(t.levelWidths); level++ {
		px, py := cx>>1, cy>>1
		pIdx := t.levelOffsets[level] + py*t.levelWidths[level] + px

		cw, ch := t.levelWidths[level-1], t.levelHeights[level-1]
		min := int32(unboundedThreshold)
		for dy := 0; dy < 2; dy++ {
			for dx := 0; dx < 2; dx++ {
				ccx, ccy := px*2+dx, py*2+dy
				if ccx >= cw || ccy >= ch {
					continue
				}
				cIdx := t.levelOffsets[level-1] + ccy*cw + ccx
				if t.nodes[cIdx].set && t.nodes[cIdx].value < min {
					min = t.nodes[cIdx].value
				}
			}
		}
		t.nodes[pIdx].value = min
		t.nodes[pIdx].set = true
		cx, cy = px, py
	}
}

// ResetEncoding clears every node, including the values recorded by
// SetValue, so SetValue must be called for every leaf again before the
// next Encode pass.
func (t *TagTree) ResetEncoding() {
	t.Reset()
}

// Encode writes the bits a Decode call with the same threshold would
// consume to arrive at each node's known value, emitting through
// writeBit (one bit per call, MSB-first).
func (t *TagTree) Encode(x, y, threshold int, writeBit func(bit int) error) error {
	if t.empty() {
		return nil
	}
	if x < 0 || x >= t.width || y < 0 || y >= t.height {
		return fmt.Errorf("tagtree: leaf (%d,%d) out of range %dx%d", x, y, t.width, t.height)
	}

	path := t.pathToRoot(x, y)
	for i := len(path) - 1; i >= 0; i-- {
		n := &t.nodes[path[i]]
		if !n.known {
			for int(n.low) < threshold && n.low < n.value {
				if err := writeBit(0); err != nil {
					return err
				}
				n.low++
			}
			if int(n.low) < threshold {
				n.known = true
				if err := writeBit(1); err != nil {
					return err
				}
			}
		}
		if !n.known {
			return nil
		}
	}
	return nil
}
