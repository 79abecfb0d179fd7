package wavelet

// 9/7 irreversible lifting coefficients (Cohen-Daubechies-Feauveau),
// ITU-T T.800 Annex F.4, shared by forward and inverse transforms.
const (
	alpha97 = -1.586134342
	beta97  = -0.052980118
	gamma97 = 0.882911075
	delta97 = 0.443506852

	k97    = 1.230174105
	invK97 = 1.0 / k97
)

// Forward97_1D performs the forward 9/7 irreversible wavelet transform on
// a 1D signal via four lifting steps (alpha, beta, gamma, delta) followed
// by the K/1-over-K rescale, deinterleaving into [low-pass | high-pass].
func Forward97_1D(data []float64, even bool) {
	width := len(data)
	if width <= 1 {
		return
	}

	var sn, dn int32
	if even {
		sn = int32((width + 1) >> 1)
	} else {
		sn = int32(width >> 1)
	}
	dn = int32(width) - sn

	var a, b int32
	if even {
		a, b = 0, 1
	} else {
		a, b = 1, 0
	}

	liftStep97(data, a, b+1, dn, min32(dn, sn-b), alpha97)
	liftStep97(data, b, a+1, sn, min32(sn, dn-a), beta97)
	liftStep97(data, a, b+1, dn, min32(dn, sn-b), gamma97)
	liftStep97(data, b, a+1, sn, min32(sn, dn-a), delta97)

	if a == 0 {
		scaleStep97(data, sn, dn, invK97, k97)
	} else {
		scaleStep97(data, dn, sn, k97, invK97)
	}

	deinterleave97(data, dn, sn, even)
}

// Inverse97_1D is the exact inverse of Forward97_1D.
func Inverse97_1D(data []float64, even bool) {
	width := len(data)
	if width <= 1 {
		return
	}

	var sn, dn int32
	if even {
		sn = int32((width + 1) >> 1)
	} else {
		sn = int32(width >> 1)
	}
	dn = int32(width) - sn

	var a, b int32
	if even {
		a, b = 0, 1
	} else {
		a, b = 1, 0
	}

	interleave97(data, dn, sn, even)

	if a == 0 {
		unscaleStep97(data, sn, dn, invK97, k97)
	} else {
		unscaleStep97(data, dn, sn, k97, invK97)
	}

	liftStep97(data, b, a+1, sn, min32(sn, dn-a), -delta97)
	liftStep97(data, a, b+1, dn, min32(dn, sn-b), -gamma97)
	liftStep97(data, b, a+1, sn, min32(sn, dn-a), -beta97)
	liftStep97(data, a, b+1, dn, min32(dn, sn-b), -alpha97)
}

// liftStep97 applies one lifting step: data[fw-1] += c*(data[fl]+data[fw])
// walking fl and fw forward two samples at a time, with the boundary case
// at the end doubling the last available low-pass sample (whole-sample
// symmetric extension).
func liftStep97(data []float64, flStart, fwStart, end, m int32, c float64) {
	imax := min32(end, m)

	if imax > 0 {
		fw := fwStart
		fl := flStart
		data[fw-1] += (data[fl] + data[fw]) * c
		fw += 2
		for i := int32(1); i < imax; i++ {
			data[fw-1] += (data[fw-2] + data[fw]) * c
			fw += 2
		}
	}

	if m < end {
		fw := fwStart + 2*m
		data[fw-1] += 2 * data[fw-2] * c
	}
}

func scaleStep97(data []float64, itersC1, itersC2 int32, c1, c2 float64) {
	itersCommon := min32(itersC1, itersC2)

	var i int32
	fw := int32(0)
	for i = 0; i < itersCommon; i++ {
		data[fw] *= c1
		data[fw+1] *= c2
		fw += 2
	}
	if i < itersC1 {
		data[fw] *= c1
	} else if i < itersC2 {
		data[fw+1] *= c2
	}
}

func unscaleStep97(data []float64, itersC1, itersC2 int32, c1, c2 float64) {
	itersCommon := min32(itersC1, itersC2)

	var i int32
	fw := int32(0)
	for i = 0; i < itersCommon; i++ {
		data[fw] /= c1
		data[fw+1] /= c2
		fw += 2
	}
	if i < itersC1 {
		data[fw] /= c1
	} else if i < itersC2 {
		data[fw+1] /= c2
	}
}

func deinterleave97(data []float64, dn, sn int32, even bool) {
	width := int(dn + sn)
	tmp := make([]float64, width)

	if even {
		for i := int32(0); i < sn; i++ {
			tmp[i] = data[2*i]
		}
		for i := int32(0); i < dn; i++ {
			tmp[sn+i] = data[2*i+1]
		}
	} else {
		for i := int32(0); i < sn; i++ {
			tmp[i] = data[2*i+1]
		}
		for i := int32(0); i < dn; i++ {
			tmp[sn+i] = data[2*i]
		}
	}

	copy(data, tmp)
}

func interleave97(data []float64, dn, sn int32, even bool) {
	width := int(dn + sn)
	tmp := make([]float64, width)

	if even {
		for i := int32(0); i < sn; i++ {
			tmp[2*i] = data[i]
		}
		for i := int32(0); i < dn; i++ {
			tmp[2*i+1] = data[sn+i]
		}
	} else {
		for i := int32(0); i < sn; i++ {
			tmp[2*i+1] = data[i]
		}
		for i := int32(0); i < dn; i++ {
			tmp[2*i] = data[sn+i]
		}
	}

	copy(data, tmp)
}

// Forward97_2D applies the forward 9/7 transform to a width x height
// window inside a stride-wide buffer, columns then rows.
func Forward97_2D(data []float64, width, height, stride int, evenRow, evenCol bool) {
	if width <= 1 && height <= 1 {
		return
	}

	if height > 1 {
		col := make([]float64, height)
		for x := 0; x < width; x++ {
			for y := 0; y < height; y++ {
				col[y] = data[y*stride+x]
			}
			Forward97_1D(col, evenCol)
			for y := 0; y < height; y++ {
				data[y*stride+x] = col[y]
			}
		}
	}

	if width > 1 {
		row := make([]float64, width)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				row[x] = data[y*stride+x]
			}
			Forward97_1D(row, evenRow)
			for x := 0; x < width; x++ {
				data[y*stride+x] = row[x]
			}
		}
	}
}

// Inverse97_2D is the exact inverse of Forward97_2D: rows then columns.
func Inverse97_2D(data []float64, width, height, stride int, evenRow, evenCol bool) {
	if width <= 1 && height <= 1 {
		return
	}

	if width > 1 {
		row := make([]float64, width)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				row[x] = data[y*stride+x]
			}
			Inverse97_1D(row, evenRow)
			for x := 0; x < width; x++ {
				data[y*stride+x] = row[x]
			}
		}
	}

	if height > 1 {
		col := make([]float64, height)
		for x := 0; x < width; x++ {
			for y := 0; y < height; y++ {
				col[y] = data[y*stride+x]
			}
			Inverse97_1D(col, evenCol)
			for y := 0; y < height; y++ {
				data[y*stride+x] = col[y]
			}
		}
	}
}

// ForwardMultilevel97 performs an N-level forward 9/7 decomposition.
func ForwardMultilevel97(data []float64, width, height, levels, x0, y0 int) {
	stride := width
	curWidth, curHeight, curX0, curY0 := width, height, x0, y0

	for level := 0; level < levels; level++ {
		if curWidth <= 1 && curHeight <= 1 {
			break
		}
		evenRow := isEven(curX0)
		evenCol := isEven(curY0)
		Forward97_2D(data, curWidth, curHeight, stride, evenRow, evenCol)
		curWidth, curHeight, curX0, curY0 = NextLowpassWindow(curWidth, curHeight, curX0, curY0)
	}
}

// InverseMultilevel97 is the exact inverse of ForwardMultilevel97.
func InverseMultilevel97(data []float64, width, height, levels, x0, y0 int) {
	stride := width

	widths := make([]int, levels+1)
	heights := make([]int, levels+1)
	xs := make([]int, levels+1)
	ys := make([]int, levels+1)
	widths[0], heights[0], xs[0], ys[0] = width, height, x0, y0

	for i := 1; i <= levels; i++ {
		widths[i], heights[i], xs[i], ys[i] = NextLowpassWindow(widths[i-1], heights[i-1], xs[i-1], ys[i-1])
	}

	for level := levels - 1; level >= 0; level-- {
		evenRow := isEven(xs[level])
		evenCol := isEven(ys[level])
		Inverse97_2D(data, widths[level], heights[level], stride, evenRow, evenCol)
	}
}
