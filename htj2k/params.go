package htj2k

// EncodeParams collects the knobs a caller sets once before driving a
// Codestream through ExchangeLine/Flush, mirroring the parameter set
// the codestream's access_siz/access_cod/access_qcd views expose
// individually; it exists as a convenience constructor for the common
// case of encoding a whole in-memory image in one call.
type EncodeParams struct {
	Width, Height int
	Components    int
	BitDepth      int
	Signed        bool

	TileWidth, TileHeight int

	DecompositionLevels int
	Reversible          bool

	CodeBlockWidth, CodeBlockHeight int
	PrecinctWidthExp, PrecinctHeightExp int

	Progression ProgressionOrder
	EnableMCT   bool
	UseSOP      bool // emit an SOP marker segment before every packet, A.7.1
	UseEPH      bool // emit an EPH marker segment after every packet header, A.7.2

	GuardBits int
	Quant     []SubbandQuant // per-subband; nil selects defaults (QuantNone when Reversible, else expounded entries with Exponent = BitDepth)

	Profile Profile
}

// DefaultEncodeParams returns a parameter set matching the common
// lossless single-tile case: 5/3 reversible transform, 5 decomposition
// levels, 64x64 code-blocks, one tile covering the whole image, LRCP
// progression, no color transform.
func DefaultEncodeParams(width, height, components, bitDepth int) EncodeParams {
	return EncodeParams{
		Width: width, Height: height, Components: components, BitDepth: bitDepth,
		TileWidth: width, TileHeight: height,
		DecompositionLevels: 5, Reversible: true,
		CodeBlockWidth: 64, CodeBlockHeight: 64,
		PrecinctWidthExp: 15, PrecinctHeightExp: 15,
		Progression: ProgressionLRCP,
		GuardBits:   2,
	}
}

// NewCodestreamFromParams builds a Codestream with SIZ/COD/QCD
// populated from p, ready for ExchangeLine once the caller has
// allocated its input buffers.
func NewCodestreamFromParams(p EncodeParams) *Codestream {
	cs := NewCodestream()

	siz := cs.AccessSIZ()
	siz.Rsiz = 0
	siz.Xsiz = uint32(p.Width)
	siz.Ysiz = uint32(p.Height)
	siz.XTsiz = uint32(p.TileWidth)
	siz.YTsiz = uint32(p.TileHeight)
	siz.Csiz = uint16(p.Components)
	siz.Components = make([]ComponentSize, p.Components)
	for i := range siz.Components {
		ssiz := uint8(p.BitDepth - 1)
		if p.Signed {
			ssiz |= 0x80
		}
		siz.Components[i] = ComponentSize{Ssiz: ssiz, XRsiz: 1, YRsiz: 1}
	}

	cod := cs.AccessCOD()
	cod.Scod = 0x1 // explicit precinct sizes
	if p.UseSOP {
		cod.Scod |= 0x2
	}
	if p.UseEPH {
		cod.Scod |= 0x4
	}
	cod.Progression = p.Progression
	cod.NumLayers = 1
	if p.EnableMCT {
		cod.MultiComponent = 1
	}
	cod.DecompositionLevels = uint8(p.DecompositionLevels)
	cod.CodeBlockWidthExp = exponentOf(p.CodeBlockWidth) - 2
	cod.CodeBlockHeightExp = exponentOf(p.CodeBlockHeight) - 2
	cod.CodeBlockStyle = 0x40 // HT block coding, T.814 Table 7.1
	if p.Reversible {
		cod.Transformation = 1
	}
	cod.PrecinctSizes = make([]PrecinctSize, p.DecompositionLevels+1)
	for i := range cod.PrecinctSizes {
		cod.PrecinctSizes[i] = PrecinctSize{PPx: uint8(p.PrecinctWidthExp), PPy: uint8(p.PrecinctHeightExp)}
	}

	qcd := cs.AccessQCD()
	qcd.Sqcd = uint8(p.GuardBits)<<5 | QuantNone
	if !p.Reversible {
		qcd.Sqcd = uint8(p.GuardBits)<<5 | QuantScalarExpounded
	}
	if p.Quant != nil {
		qcd.SPqcd = EncodeSPqcd(p.Quant)
	} else {
		subbandCount := 1 + 3*p.DecompositionLevels
		quant := make([]SubbandQuant, subbandCount)
		if !p.Reversible {
			for i := range quant {
				quant[i] = SubbandQuant{Exponent: uint8(p.BitDepth)}
			}
			qcd.SPqcd = EncodeSPqcd(quant)
		} else {
			qcd.SPqcd = make([]byte, subbandCount)
			for i := range qcd.SPqcd {
				qcd.SPqcd[i] = uint8(p.BitDepth) << 3
			}
		}
	}

	cs.SetProfile(p.Profile)
	return cs
}

// exponentOf returns floor(log2(n)) for n >= 1, and 0 for n <= 1.
func exponentOf(n int) uint8 {
	var e uint8
	for n > 1 {
		n >>= 1
		e++
	}
	return e
}
