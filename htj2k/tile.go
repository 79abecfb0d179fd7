package htj2k

import "fmt"

// Tile is one spatial partition of the reference grid, B.3. Each tile
// carries its own independently-coded set of TileComponents and is
// framed in the codestream by an SOT marker segment and one or more
// tile-parts terminated by SOD.
type Tile struct {
	Index int

	X0, Y0, X1, Y1 int

	Components []*TileComponent

	COD *CODSegment
	QCD *QCDSegment
}

func (t *Tile) width() int  { return t.X1 - t.X0 }
func (t *Tile) height() int { return t.Y1 - t.Y0 }

// NewTile builds a tile spanning [x0,x1) x [y0,y1) on the reference
// grid, with one TileComponent per entry in siz.Components clipped to
// its own component sub-sampling grid, B.3/B.4.
func NewTile(index int, x0, y0, x1, y1 int, siz *SIZSegment, cod *CODSegment, qcd *QCDSegment) (*Tile, error) {
	t := &Tile{Index: index, X0: x0, Y0: y0, X1: x1, Y1: y1, COD: cod, QCD: qcd}

	cbw, cbh := cod.CodeBlockSize()
	subbandCount := 1 + 3*int(cod.DecompositionLevels)
	quant := DecodeSPqcd(qcd.QuantizationStyle(), qcd.SPqcd, subbandCount)

	for i, c := range siz.Components {
		cx0 := ceilDivInt(x0, int(c.XRsiz))
		cy0 := ceilDivInt(y0, int(c.YRsiz))
		cx1 := ceilDivInt(x1, int(c.XRsiz))
		cy1 := ceilDivInt(y1, int(c.YRsiz))

		tc := &TileComponent{
			Index: i, X0: cx0, Y0: cy0, X1: cx1, Y1: cy1,
			BitDepth: c.BitDepth(), Signed: c.IsSigned(),
			DecompositionLevels: int(cod.DecompositionLevels),
			Reversible:          cod.Transformation == 1,
			CodeBlockWidth:      cbw, CodeBlockHeight: cbh,
			GuardBits:     qcd.GuardBits(),
			Quant:         quant,
			PrecinctSizes: cod.PrecinctSizes,
		}
		if tc.X1 < tc.X0 || tc.Y1 < tc.Y0 {
			return nil, fmt.Errorf("htj2k: tile %d component %d has degenerate extent", index, i)
		}
		t.Components = append(t.Components, tc)
	}
	return t, nil
}

func ceilDivInt(a, b int) int {
	if b <= 0 {
		b = 1
	}
	if a%b == 0 {
		return a / b
	}
	return a/b + 1
}

// Encode runs the wavelet transform, quantization and HT block coding
// over every component of this tile. The DC level shift and any color
// transform are not applied here: samples must already carry them
// (Codestream.Flush shifts the samples before calling Encode).
func (t *Tile) Encode() error {
	for _, tc := range t.Components {
		if err := tc.Encode(); err != nil {
			return fmt.Errorf("htj2k: tile %d: %w", t.Index, err)
		}
	}
	return nil
}

// Decode runs the inverse pipeline over every component's Resolutions.
func (t *Tile) Decode() error {
	for _, tc := range t.Components {
		if err := tc.Decode(); err != nil {
			return fmt.Errorf("htj2k: tile %d: %w", t.Index, err)
		}
	}
	return nil
}
