// Package wavelet implements the one-line-at-a-time, lifting-based 5/3
// reversible and 9/7 irreversible discrete wavelet transforms used by the
// codestream's resolution hierarchy. The 1D/2D primitives here are pure
// functions over slices; the codestream package is responsible for
// driving them with its line-buffer ring and for tracking per-resolution
// parity.
package wavelet

// Forward53_1D performs the forward 5/3 reversible wavelet transform on a
// 1D signal, deinterleaving into [low-pass | high-pass] halves. even=true
// means the low-pass phase starts at index 0.
//
//	Predict: x[2n+1] -= floor((x[2n] + x[2n+2]) / 2)
//	Update:  x[2n]   += floor((x[2n-1] + x[2n+1] + 2) / 4)
func Forward53_1D(data []int32, even bool) {
	width := len(data)

	if even {
		if width <= 1 {
			return
		}
		sn := int32((width + 1) >> 1)
		dn := int32(width) - sn

		tmp := make([]int32, width)

		var i int32
		for i = 0; i < sn-1; i++ {
			tmp[sn+i] = data[2*i+1] - ((data[i*2] + data[(i+1)*2]) >> 1)
		}
		if width%2 == 0 {
			tmp[sn+i] = data[2*i+1] - data[i*2]
		}

		data[0] += (tmp[sn] + tmp[sn] + 2) >> 2
		for i = 1; i < dn; i++ {
			data[i] = data[2*i] + ((tmp[sn+(i-1)] + tmp[sn+i] + 2) >> 2)
		}
		if width%2 == 1 {
			data[i] = data[2*i] + ((tmp[sn+(i-1)] + tmp[sn+(i-1)] + 2) >> 2)
		}

		copy(data[sn:], tmp[sn:sn+dn])
		return
	}

	if width == 1 {
		data[0] *= 2
		return
	}
	sn := int32(width >> 1)
	dn := int32(width) - sn

	tmp := make([]int32, width)

	tmp[sn] = data[0] - data[1]
	var i int32
	for i = 1; i < sn; i++ {
		tmp[sn+i] = data[2*i] - ((data[2*i+1] + data[2*(i-1)+1]) >> 1)
	}
	if width%2 == 1 {
		tmp[sn+i] = data[2*i] - data[2*(i-1)+1]
	}

	for i = 0; i < dn-1; i++ {
		data[i] = data[2*i+1] + ((tmp[sn+i] + tmp[sn+i+1] + 2) >> 2)
	}
	if width%2 == 0 {
		data[i] = data[2*i+1] + ((tmp[sn+i] + tmp[sn+i] + 2) >> 2)
	}

	copy(data[sn:], tmp[sn:sn+dn])
}

// Inverse53_1D is the exact algebraic inverse of Forward53_1D.
func Inverse53_1D(data []int32, even bool) {
	width := len(data)

	if even {
		if width <= 1 {
			return
		}
		sn := int32((width + 1) >> 1)
		tmp := make([]int32, width)

		var d1c, d1n, s1n, s0c, s0n int32

		s1n = data[0]
		d1n = data[sn]
		s0n = s1n - ((d1n + 1) >> 1)

		var i, j int32
		for i, j = 0, 1; i < int32(width)-3; i, j = i+2, j+1 {
			d1c = d1n
			s0c = s0n

			s1n = data[j]
			d1n = data[sn+j]

			s0n = s1n - ((d1c + d1n + 2) >> 2)

			tmp[i] = s0c
			tmp[i+1] = d1c + ((s0c + s0n) >> 1)
		}

		tmp[i] = s0n

		if width&1 != 0 {
			tmp[width-1] = data[(width-1)/2] - ((d1n + 1) >> 1)
			tmp[width-2] = d1n + ((s0n + tmp[width-1]) >> 1)
		} else {
			tmp[width-1] = d1n + s0n
		}

		copy(data, tmp)
		return
	}

	if width == 1 {
		data[0] /= 2
		return
	}
	if width == 2 {
		out1 := data[0] - ((data[1] + 1) >> 1)
		out0 := data[1] + out1
		data[0] = out0
		data[1] = out1
		return
	}

	sn := int32(width >> 1)
	tmp := make([]int32, width)

	var s1, s2, dc, dn int32

	s1 = data[sn+1]
	dc = data[0] - ((data[sn] + s1 + 2) >> 2)
	tmp[0] = data[sn] + dc

	var i, j int32
	notOdd := int32(0)
	if width&1 == 0 {
		notOdd = 1
	}
	limit := int32(width) - 2 - notOdd

	for i, j = 1, 1; i < limit; i, j = i+2, j+1 {
		s2 = data[sn+j+1]

		dn = data[j] - ((s1 + s2 + 2) >> 2)
		tmp[i] = dc
		tmp[i+1] = s1 + ((dn + dc) >> 1)

		dc = dn
		s1 = s2
	}

	tmp[i] = dc

	if width&1 == 0 {
		dn = data[width/2-1] - ((s1 + 1) >> 1)
		tmp[width-2] = s1 + ((dn + dc) >> 1)
		tmp[width-1] = dn
	} else {
		tmp[width-1] = s1 + dc
	}

	copy(data, tmp)
}

// Forward53_2D applies the forward 5/3 transform to a width x height
// window inside a stride-wide buffer: columns (vertical) first, then rows
// (horizontal), matching the resolution hierarchy's vertical-then-
// horizontal split order.
func Forward53_2D(data []int32, width, height, stride int, evenRow, evenCol bool) {
	if width <= 1 && height <= 1 {
		return
	}

	if height > 1 {
		col := make([]int32, height)
		for x := 0; x < width; x++ {
			for y := 0; y < height; y++ {
				col[y] = data[y*stride+x]
			}
			Forward53_1D(col, evenCol)
			for y := 0; y < height; y++ {
				data[y*stride+x] = col[y]
			}
		}
	}

	if width > 1 {
		row := make([]int32, width)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				row[x] = data[y*stride+x]
			}
			Forward53_1D(row, evenRow)
			for x := 0; x < width; x++ {
				data[y*stride+x] = row[x]
			}
		}
	}
}

// Inverse53_2D is the exact inverse of Forward53_2D: rows (horizontal)
// first, then columns (vertical).
func Inverse53_2D(data []int32, width, height, stride int, evenRow, evenCol bool) {
	if width <= 1 && height <= 1 {
		return
	}

	if width > 1 {
		row := make([]int32, width)
		for y := 0; y < height; y++ {
			for x := 0; x < width; x++ {
				row[x] = data[y*stride+x]
			}
			Inverse53_1D(row, evenRow)
			for x := 0; x < width; x++ {
				data[y*stride+x] = row[x]
			}
		}
	}

	if height > 1 {
		col := make([]int32, height)
		for x := 0; x < width; x++ {
			for y := 0; y < height; y++ {
				col[y] = data[y*stride+x]
			}
			Inverse53_1D(col, evenCol)
			for y := 0; y < height; y++ {
				data[y*stride+x] = col[y]
			}
		}
	}
}

// ForwardMultilevel53 performs an N-level forward 5/3 decomposition,
// re-applying Forward53_2D to the shrinking LL window at the same
// stride. x0,y0 is the tile-component's reference-grid origin, whose
// parity decides each level's even/odd split.
func ForwardMultilevel53(data []int32, width, height, levels, x0, y0 int) {
	stride := width
	curWidth, curHeight, curX0, curY0 := width, height, x0, y0

	for level := 0; level < levels; level++ {
		if curWidth <= 1 && curHeight <= 1 {
			break
		}
		evenRow := isEven(curX0)
		evenCol := isEven(curY0)
		Forward53_2D(data, curWidth, curHeight, stride, evenRow, evenCol)
		curWidth, curHeight, curX0, curY0 = NextLowpassWindow(curWidth, curHeight, curX0, curY0)
	}
}

// InverseMultilevel53 is the exact inverse of ForwardMultilevel53.
func InverseMultilevel53(data []int32, width, height, levels, x0, y0 int) {
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
		Inverse53_2D(data, widths[level], heights[level], stride, evenRow, evenCol)
	}
}
