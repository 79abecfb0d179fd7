// Package colorspace implements the reversible and irreversible
// multi-component color transforms applied across the first three
// components of a tile before the wavelet transform.
package colorspace

// ForwardRCT applies the reversible color transform (RCT) to one sample
// triple. It is exactly invertible over integers.
func ForwardRCT(r, g, b int32) (y, cb, cr int32) {
	y = (r + 2*g + b) >> 2
	cb = b - g
	cr = r - g
	return
}

// InverseRCT is the exact algebraic inverse of ForwardRCT.
func InverseRCT(y, cb, cr int32) (r, g, b int32) {
	g = y - ((cb + cr) >> 2)
	r = cr + g
	b = cb + g
	return
}

// ForwardRCTComponents applies ForwardRCT across whole component lines.
func ForwardRCTComponents(r, g, b []int32) (y, cb, cr []int32) {
	n := len(r)
	y = make([]int32, n)
	cb = make([]int32, n)
	cr = make([]int32, n)
	for i := 0; i < n; i++ {
		y[i], cb[i], cr[i] = ForwardRCT(r[i], g[i], b[i])
	}
	return
}

// InverseRCTComponents applies InverseRCT across whole component lines.
func InverseRCTComponents(y, cb, cr []int32) (r, g, b []int32) {
	n := len(y)
	r = make([]int32, n)
	g = make([]int32, n)
	b = make([]int32, n)
	for i := 0; i < n; i++ {
		r[i], g[i], b[i] = InverseRCT(y[i], cb[i], cr[i])
	}
	return
}
