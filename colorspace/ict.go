package colorspace

import "math"

// ForwardICT applies the irreversible color transform (ICT): the
// floating-point YCbCr matrix used with the 9/7 wavelet. Round-half-away-
// from-zero on the output keeps it consistent with integer sample
// buffers carried through the rest of the pipeline.
func ForwardICT(r, g, b int32) (y, cb, cr int32) {
	rf, gf, bf := float64(r), float64(g), float64(b)
	y = int32(math.Round(0.299*rf + 0.587*gf + 0.114*bf))
	cb = int32(math.Round(-0.16875*rf - 0.33126*gf + 0.5*bf))
	cr = int32(math.Round(0.5*rf - 0.41869*gf - 0.08131*bf))
	return
}

// InverseICT is the algebraic inverse of ForwardICT.
func InverseICT(y, cb, cr int32) (r, g, b int32) {
	yf, cbf, crf := float64(y), float64(cb), float64(cr)
	r = int32(math.Round(yf + 1.402*crf))
	g = int32(math.Round(yf - 0.344136*cbf - 0.714136*crf))
	b = int32(math.Round(yf + 1.772*cbf))
	return
}

// ForwardICTComponents applies ForwardICT across whole component lines.
func ForwardICTComponents(r, g, b []int32) (y, cb, cr []int32) {
	n := len(r)
	y = make([]int32, n)
	cb = make([]int32, n)
	cr = make([]int32, n)
	for i := 0; i < n; i++ {
		y[i], cb[i], cr[i] = ForwardICT(r[i], g[i], b[i])
	}
	return
}

// InverseICTComponents applies InverseICT across whole component lines.
func InverseICTComponents(y, cb, cr []int32) (r, g, b []int32) {
	n := len(y)
	r = make([]int32, n)
	g = make([]int32, n)
	b = make([]int32, n)
	for i := 0; i < n; i++ {
		r[i], g[i], b[i] = InverseICT(y[i], cb[i], cr[i])
	}
	return
}
