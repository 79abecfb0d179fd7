package htj2k

import (
	"fmt"

	"github.com/cocosip/htj2k-core/tagtree"
)

// Precinct groups, for one resolution level of one tile-component, the
// code-blocks of all its subbands that fall within one spatial
// partition, B.6. Packet headers are coded per precinct per layer.
type Precinct struct {
	Resolution int
	X, Y       int // precinct index within the resolution's precinct grid

	Subbands []*Subband // 1 for resolution 0 (LL only), 3 otherwise (HL,LH,HH)

	inclusion     *tagtree.TagTree // shared across subbands, B.10.2
	zeroBitPlanes *tagtree.TagTree

	leaves     []*CodeBlock // code-blocks in the order their (bx,by) was assigned
	blockIndex map[*CodeBlock][2]int
	gridWidth  int
	gridHeight int
}

// NewPrecinct builds the packet-header tag-trees over the code-block
// window each subband contributes to this precinct (windows[i] for
// subbands[i], in matching subband-grid index coordinates), flattened
// into one shared coordinate space as Annex B.10 requires (HL/LH/HH
// share one inclusion tree per precinct, not three). Each subband's
// window gets its own band of rows: a code-block's tag-tree coordinate
// is local to its window's origin, shifted down by i times the largest
// window height for subbands[i], so blocks of different subbands never
// share a leaf.
func NewPrecinct(resolution, x, y int, subbands []*Subband, windows []blockWindow) *Precinct {
	p := &Precinct{Resolution: resolution, X: x, Y: y, Subbands: subbands, blockIndex: map[*CodeBlock][2]int{}}

	gw, gh := 0, 0
	for _, win := range windows {
		if w := win.bx1 - win.bx0; w > gw {
			gw = w
		}
		if h := win.by1 - win.by0; h > gh {
			gh = h
		}
	}
	if gw == 0 {
		gw, gh = 1, 1
	}
	p.gridWidth, p.gridHeight = gw, gh

	for i, sb := range subbands {
		win := windows[i]
		for by := win.by0; by < win.by1; by++ {
			row := sb.Blocks[by]
			for bx := win.bx0; bx < win.bx1; bx++ {
				cb := row[bx]
				p.blockIndex[cb] = [2]int{bx - win.bx0, by - win.by0 + i*gh}
				p.leaves = append(p.leaves, cb)
			}
		}
	}
	p.inclusion = tagtree.New(gw, gh*len(subbands))
	p.zeroBitPlanes = tagtree.New(gw, gh*len(subbands))
	return p
}

// packetLayer is the coded form of one precinct's contribution to one
// quality layer: a packet header plus the concatenated body bytes of
// every newly-included code-block, Sec. 7.
type packetLayer struct {
	header []byte
	body   []byte
}

const unincludedTagValue = 1 << 20

// EncodePacket builds the packet header and body for layer 0 of this
// precinct, including every code-block with nonempty coded data (this
// package's single-layer cleanup-pass-only coder has nothing left to
// signal in later layers, so every precinct is coded as exactly one
// packet).
func (p *Precinct) EncodePacket() (*packetLayer, error) {
	p.inclusion.ResetEncoding()
	p.zeroBitPlanes.ResetEncoding()

	for _, cb := range p.leaves {
		coord := p.blockIndex[cb]
		if cb.IsEmpty() {
			p.inclusion.SetValue(coord[0], coord[1], unincludedTagValue)
			continue
		}
		p.inclusion.SetValue(coord[0], coord[1], 0)
		p.zeroBitPlanes.SetValue(coord[0], coord[1], cb.ZeroBitPlanes)
	}

	hdr := newForwardMarkerBitWriter()
	var body []byte

	for _, cb := range p.leaves {
		coord := p.blockIndex[cb]
		bx, by := coord[0], coord[1]

		if cb.IsEmpty() {
			if err := p.inclusion.Encode(bx, by, 1, hdr.writeBit); err != nil {
				return nil, fmt.Errorf("htj2k: encoding inclusion bit: %w", err)
			}
			continue
		}
		if err := p.inclusion.Encode(bx, by, 1, hdr.writeBit); err != nil {
			return nil, fmt.Errorf("htj2k: encoding inclusion bit: %w", err)
		}

		if err := p.zeroBitPlanes.Encode(bx, by, unboundedTagThreshold, hdr.writeBit); err != nil {
			return nil, fmt.Errorf("htj2k: encoding zero-bit-plane count: %w", err)
		}
		if err := writeNumPasses(hdr, cb.NumPasses); err != nil {
			return nil, err
		}
		packed := packSegments(cb)
		if err := writeSegmentLength(hdr, len(packed)); err != nil {
			return nil, err
		}

		body = append(body, packed...)
	}

	return &packetLayer{header: hdr.flush(), body: body}, nil
}

const unboundedTagThreshold = 1 << 20

// DecodePacket is the inverse of EncodePacket: it consumes the header
// and body bytes and fills in each code-block's Segments (leaving
// IsEmpty blocks untouched so the subband gather step sees all zeros).
func (p *Precinct) DecodePacket(header, body []byte) error {
	p.inclusion.Reset()
	p.zeroBitPlanes.Reset()

	hdr := newForwardMarkerBitReader(header)
	offset := 0

	for _, cb := range p.leaves {
		coord := p.blockIndex[cb]
		bx, by := coord[0], coord[1]

		included, _, err := p.inclusion.DecodeInclusion(bx, by, 0, hdr.readBit)
		if err != nil {
			return fmt.Errorf("htj2k: decoding inclusion bit: %w", err)
		}
		if !included {
			continue
		}

		zbp, err := p.zeroBitPlanes.DecodeZeroBitPlanes(bx, by, hdr.readBit)
		if err != nil {
			return fmt.Errorf("htj2k: decoding zero-bit-plane count: %w", err)
		}
		cb.ZeroBitPlanes = zbp

		passes, err := readNumPasses(hdr)
		if err != nil {
			return err
		}
		cb.NumPasses = passes

		length, err := readSegmentLength(hdr)
		if err != nil {
			return err
		}
		if offset+length > len(body) {
			return fmt.Errorf("htj2k: packet body truncated: need %d bytes at offset %d, have %d", length, offset, len(body))
		}
		data := body[offset : offset+length]
		offset += length

		if err := splitSegments(cb, data); err != nil {
			return err
		}
	}
	return nil
}

// splitSegments installs one code-block's compressed data, already
// isolated from its neighbors in the packet body by the segment length
// the packet header carries (Sec. 7.3): block.Segments itself locates
// the MagSgn/MEL/VLC boundaries from the Scup trailer it contains.
func splitSegments(cb *CodeBlock, data []byte) error {
	cb.Segments.Data = append([]byte(nil), data...)
	return nil
}

// packSegments returns the code-block's compressed data exactly as
// block.EncodeCleanup produced it: one shared buffer with its own Scup
// trailer, not a separately length-prefixed triple.
func packSegments(cb *CodeBlock) []byte {
	return cb.Segments.Data
}
