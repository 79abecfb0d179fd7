package htj2k

import "fmt"

// TileComponent is one component's samples within one tile, carried
// through DC level shifting, the wavelet transform, quantization and
// the resolution/subband/code-block hierarchy, Sec. 4.2-4.5.
type TileComponent struct {
	Index int

	X0, Y0, X1, Y1 int // extent on the reference grid, B.3

	BitDepth int
	Signed   bool

	DecompositionLevels int
	Reversible           bool
	CodeBlockWidth       int
	CodeBlockHeight      int

	GuardBits int
	Quant     []SubbandQuant // flattened, indexed by subbandFlatIndex

	// PrecinctSizes carries COD/COC's per-resolution-level PPx/PPy
	// exponents (index 0 = resolution 0, the LL-only level), A.6.1.
	PrecinctSizes []PrecinctSize

	Resolutions []*Resolution

	samples []int32 // row-major, populated by SetSamples ahead of Encode
}

func (tc *TileComponent) width() int  { return tc.X1 - tc.X0 }
func (tc *TileComponent) height() int { return tc.Y1 - tc.Y0 }

// SetSamples installs the (already DC-level-shifted) sample values for
// this tile-component ahead of Encode.
func (tc *TileComponent) SetSamples(samples []int32) error {
	if len(samples) != tc.width()*tc.height() {
		return fmt.Errorf("htj2k: tile-component %d expects %d samples, got %d", tc.Index, tc.width()*tc.height(), len(samples))
	}
	tc.samples = samples
	return nil
}

// DCLevelShift applies the forward offset of Sec. 3.4 (subtracting
// 2^(bitDepth-1) from unsigned samples so the transform sees a
// roughly-zero-mean signal).
func DCLevelShift(samples []int32, bitDepth int, signed bool) {
	if signed {
		return
	}
	offset := int32(1) << uint(bitDepth-1)
	for i := range samples {
		samples[i] -= offset
	}
}

// InverseDCLevelShift undoes DCLevelShift and clamps to the valid
// range for the component's bit depth.
func InverseDCLevelShift(samples []int32, bitDepth int, signed bool) {
	if !signed {
		offset := int32(1) << uint(bitDepth-1)
		for i := range samples {
			samples[i] += offset
		}
	}
	var lo, hi int32
	if signed {
		hi = 1<<uint(bitDepth-1) - 1
		lo = -(1 << uint(bitDepth-1))
	} else {
		lo = 0
		hi = 1<<uint(bitDepth) - 1
	}
	for i, v := range samples {
		if v < lo {
			samples[i] = lo
		} else if v > hi {
			samples[i] = hi
		}
	}
}

// Encode runs the forward wavelet transform, quantizes every subband,
// and populates Resolutions down to their code-block Segments.
func (tc *TileComponent) Encode() error {
	if tc.samples == nil {
		return fmt.Errorf("htj2k: tile-component %d has no samples set", tc.Index)
	}

	resolutions := decompose(append([]int32(nil), tc.samples...), tc.width(), tc.height(), tc.DecompositionLevels, tc.X0, tc.Y0, tc.Reversible, tc.CodeBlockWidth, tc.CodeBlockHeight)

	for _, res := range resolutions {
		for _, sb := range res.Subbands {
			q := tc.quantFor(res.Level, sb.Type)
			sb.Quant = q
			sb.Kmax = Kmax(rangeBitsFor(tc.BitDepth, res.Level, tc.DecompositionLevels), tc.GuardBits, q.Exponent)
			if !tc.Reversible {
				quantizeSubbandInPlace(sb, q)
			}
			if err := sb.DistributeCoefficients(); err != nil {
				return fmt.Errorf("htj2k: tile-component %d: %w", tc.Index, err)
			}
			if err := sb.EncodeBlocks(); err != nil {
				return fmt.Errorf("htj2k: tile-component %d: %w", tc.Index, err)
			}
		}
		res.PrecinctWidthExp, res.PrecinctHeightExp = precinctExpFor(tc.PrecinctSizes, res.Level)
		res.BuildPrecincts()
	}

	tc.Resolutions = resolutions
	return nil
}

// Decode is the inverse of Encode: it decodes every code-block,
// dequantizes, and runs the inverse wavelet transform to recover
// tc.samples.
func (tc *TileComponent) Decode() error {
	for _, res := range tc.Resolutions {
		for _, sb := range res.Subbands {
			if err := sb.DecodeBlocks(); err != nil {
				return fmt.Errorf("htj2k: tile-component %d: %w", tc.Index, err)
			}
			sb.GatherCoefficients()
			if !tc.Reversible {
				dequantizeSubbandInPlace(sb, sb.Quant)
			}
		}
	}

	tc.samples = reconstruct(tc.Resolutions, tc.width(), tc.height(), tc.DecompositionLevels, tc.X0, tc.Y0, tc.Reversible)
	return nil
}

// Samples returns the samples last set (pre-encode) or reconstructed
// (post-decode).
func (tc *TileComponent) Samples() []int32 { return tc.samples }

func (tc *TileComponent) quantFor(level int, t SubbandType) SubbandQuant {
	idx := subbandFlatIndex(level, t, tc.DecompositionLevels)
	if idx < len(tc.Quant) {
		return tc.Quant[idx]
	}
	return SubbandQuant{}
}

// subbandFlatIndex orders subbands LL, then (HL,LH,HH) per level from
// coarsest to finest, matching the SPqcd/SPqcc expounded layout of
// Table A.30.
func subbandFlatIndex(level int, t SubbandType, levels int) int {
	if level == 0 {
		return 0
	}
	base := 1 + (level-1)*3
	switch t {
	case SubbandHL:
		return base
	case SubbandLH:
		return base + 1
	case SubbandHH:
		return base + 2
	default:
		return base
	}
}

// rangeBitsFor returns the nominal dynamic range Rb of Equation E-1
// for a subband at the given decomposition level.
func rangeBitsFor(bitDepth, level, totalLevels int) int {
	if level == 0 {
		return bitDepth
	}
	return bitDepth + 1
}

func quantizeSubbandInPlace(sb *Subband, q SubbandQuant) {
	step := q.StepSize(sb.Kmax)
	for i, v := range sb.Coefficients {
		sb.Coefficients[i] = Quantize(float64(v), step)
	}
}

func dequantizeSubbandInPlace(sb *Subband, q SubbandQuant) {
	step := q.StepSize(sb.Kmax)
	for i, v := range sb.Coefficients {
		sb.Coefficients[i] = int32(Dequantize(v, step))
	}
}
