package htj2k

import "github.com/cocosip/htj2k-core/wavelet"

// Resolution is one level of the tile-component's wavelet
// decomposition: resolution 0 holds the final LL subband and the
// coarsest approximation; each subsequent resolution adds the HL/LH/HH
// detail subbands needed to reconstruct the next-finer image, Sec. 4.4.
type Resolution struct {
	Level int // 0 = coarsest (LL-only), NumLevels = finest

	X0, Y0, X1, Y1 int // extent on the reference grid, B.5

	Subbands []*Subband // [LL] at level 0, [HL,LH,HH] otherwise

	PrecinctWidthExp, PrecinctHeightExp int
	Precincts                          []*Precinct
}

func (r *Resolution) width() int  { return r.X1 - r.X0 }
func (r *Resolution) height() int { return r.Y1 - r.Y0 }

// precinctExpFor returns the PPx/PPy exponent pair COD/COC declares for
// a resolution level, defaulting to 15 (a precinct wider than any
// resolution this package handles, i.e. no subdivision) when the
// segment carries no explicit precinct sizes, A.6.1.
func precinctExpFor(sizes []PrecinctSize, level int) (int, int) {
	if level < len(sizes) {
		return int(sizes[level].PPx), int(sizes[level].PPy)
	}
	return 15, 15
}

// blockWindow is a code-block index rectangle [bx0,bx1) x [by0,by1)
// within one subband's Blocks grid.
type blockWindow struct{ bx0, by0, bx1, by1 int }

func (w blockWindow) empty() bool { return w.bx1 <= w.bx0 || w.by1 <= w.by0 }

// subbandBlockWindow splits sb's code-block grid into nx x ny pieces
// (the resolution's precinct grid, shared across every subband it
// holds) and returns the piece belonging to precinct (px,py). Dividing
// each subband's own block count by the same nx/ny keeps the precinct
// count uniform across HL/LH/HH even though their block grids differ
// in size.
func subbandBlockWindow(sb *Subband, px, py, nx, ny int) blockWindow {
	nby := len(sb.Blocks)
	if nby == 0 {
		return blockWindow{}
	}
	nbx := len(sb.Blocks[0])
	return blockWindow{
		bx0: px * nbx / nx, bx1: (px + 1) * nbx / nx,
		by0: py * nby / ny, by1: (py + 1) * nby / ny,
	}
}

// BuildPrecincts partitions this resolution's subbands into precincts
// on the grid implied by PrecinctWidthExp/PrecinctHeightExp, B.6: the
// resolution's sample extent is divided into a precinct grid of that
// size, and each subband contributes the code-blocks falling in the
// matching fraction of its own block grid.
func (r *Resolution) BuildPrecincts() {
	pw := 1 << uint(r.PrecinctWidthExp)
	ph := 1 << uint(r.PrecinctHeightExp)

	resWidth, resHeight := r.width(), r.height()
	if resWidth <= 0 {
		resWidth = 1
	}
	if resHeight <= 0 {
		resHeight = 1
	}

	nx := ceilDivInt(resWidth, pw)
	ny := ceilDivInt(resHeight, ph)
	if nx < 1 {
		nx = 1
	}
	if ny < 1 {
		ny = 1
	}

	r.Precincts = r.Precincts[:0]
	for py := 0; py < ny; py++ {
		for px := 0; px < nx; px++ {
			subbands := make([]*Subband, 0, len(r.Subbands))
			windows := make([]blockWindow, 0, len(r.Subbands))
			for _, sb := range r.Subbands {
				win := subbandBlockWindow(sb, px, py, nx, ny)
				if win.empty() {
					continue
				}
				subbands = append(subbands, sb)
				windows = append(windows, win)
			}
			if len(subbands) == 0 {
				continue
			}
			r.Precincts = append(r.Precincts, NewPrecinct(r.Level, px, py, subbands, windows))
		}
	}
}

// decompose runs an N-level 2D DWT over a width x height tile-component
// buffer (row-major, reversible selects the 5/3 transform, otherwise
// 9/7) and splits the deinterleaved-in-place result into per-level
// Subband objects, coarsest (LL) first. x0,y0 anchor the buffer's
// top-left sample on the reference grid, whose parity decides each
// level's even/odd lifting split, Sec. 4.3.1.
func decompose(samples []int32, width, height, levels, x0, y0 int, reversible bool, cbWidth, cbHeight int) []*Resolution {
	if reversible {
		wavelet.ForwardMultilevel53(samples, width, height, levels, x0, y0)
	} else {
		f64 := make([]float64, len(samples))
		for i, v := range samples {
			f64[i] = float64(v)
		}
		wavelet.ForwardMultilevel97(f64, width, height, levels, x0, y0)
		for i, v := range f64 {
			samples[i] = int32(v)
		}
	}
	return splitResolutions(samples, width, height, levels, x0, y0, cbWidth, cbHeight)
}

// reconstruct is the exact inverse of decompose: it reassembles the
// deinterleaved buffer from each Resolution's Subbands and runs the
// inverse multilevel transform in place.
func reconstruct(resolutions []*Resolution, width, height, levels, x0, y0 int, reversible bool) []int32 {
	samples := make([]int32, width*height)
	mergeResolutions(samples, width, resolutions)

	if reversible {
		wavelet.InverseMultilevel53(samples, width, height, levels, x0, y0)
	} else {
		f64 := make([]float64, len(samples))
		for i, v := range samples {
			f64[i] = float64(v)
		}
		wavelet.InverseMultilevel97(f64, width, height, levels, x0, y0)
		for i, v := range f64 {
			samples[i] = int32(v)
		}
	}
	return samples
}

// splitResolutions walks the same shrinking-LL-window sequence the
// multilevel transform used and slices out each level's subbands from
// the deinterleaved buffer.
func splitResolutions(data []int32, width, height, levels, x0, y0, cbWidth, cbHeight int) []*Resolution {
	type window struct{ w, h, x, y int }
	windows := make([]window, levels+1)
	windows[0] = window{width, height, x0, y0}
	for i := 1; i <= levels; i++ {
		nw, nh, nx, ny := wavelet.NextLowpassWindow(windows[i-1].w, windows[i-1].h, windows[i-1].x, windows[i-1].y)
		windows[i] = window{nw, nh, nx, ny}
	}

	out := make([]*Resolution, levels+1)

	llw := windows[levels]
	llSamples := extractRegion(data, width, 0, 0, llw.w, llw.h)
	llSubband := NewSubband(SubbandLL, 0, 0, 0, llw.w, llw.h, cbWidth, cbHeight)
	llSubband.Coefficients = llSamples
	out[0] = &Resolution{Level: 0, X1: llw.w, Y1: llw.h, Subbands: []*Subband{llSubband}}

	for level := 1; level <= levels; level++ {
		parent := windows[levels-level]
		loW, loH := windows[levels-level+1].w, windows[levels-level+1].h

		hl := extractRegion(data, width, loW, 0, parent.w-loW, loH)
		lh := extractRegion(data, width, 0, loH, loW, parent.h-loH)
		hh := extractRegion(data, width, loW, loH, parent.w-loW, parent.h-loH)

		sbHL := NewSubband(SubbandHL, level, loW, 0, parent.w-loW, loH, cbWidth, cbHeight)
		sbHL.Coefficients = hl
		sbLH := NewSubband(SubbandLH, level, 0, loH, loW, parent.h-loH, cbWidth, cbHeight)
		sbLH.Coefficients = lh
		sbHH := NewSubband(SubbandHH, level, loW, loH, parent.w-loW, parent.h-loH, cbWidth, cbHeight)
		sbHH.Coefficients = hh

		out[level] = &Resolution{Level: level, X1: parent.w, Y1: parent.h, Subbands: []*Subband{sbHL, sbLH, sbHH}}
	}

	return out
}

// mergeResolutions is the inverse of splitResolutions: it writes each
// subband's Coefficients back into its deinterleaved position.
func mergeResolutions(data []int32, width int, resolutions []*Resolution) {
	for _, res := range resolutions {
		for _, sb := range res.Subbands {
			writeRegion(data, width, sb.X, sb.Y, sb.Width, sb.Height, sb.Coefficients)
		}
	}
}

func extractRegion(data []int32, stride, x0, y0, width, height int) []int32 {
	out := make([]int32, width*height)
	for y := 0; y < height; y++ {
		copy(out[y*width:(y+1)*width], data[(y0+y)*stride+x0:(y0+y)*stride+x0+width])
	}
	return out
}

func writeRegion(data []int32, stride, x0, y0, width, height int, region []int32) {
	for y := 0; y < height; y++ {
		copy(data[(y0+y)*stride+x0:(y0+y)*stride+x0+width], region[y*width:(y+1)*width])
	}
}
