package block

// sigMap tracks sample-level significance across the quads of a
// code-block so a quad's VLC context can be derived from its already
// decoded neighbors, ITU-T T.814 Clause 7.3.5. Quads are visited in
// raster order, two sample rows at a time, so only the row above and
// the quad to the left are ever queried.
type sigMap struct {
	width, height int
	sigma         []bool
}

func newSigMap(width, height int) *sigMap {
	return &sigMap{width: width, height: height, sigma: make([]bool, width*height)}
}

func (s *sigMap) at(x, y int) bool {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return false
	}
	return s.sigma[y*s.width+x]
}

func (s *sigMap) set(x, y int, v bool) {
	if x < 0 || x >= s.width || y < 0 || y >= s.height {
		return
	}
	s.sigma[y*s.width+x] = v
}

// setQuad records a quad's decoded significance pattern rho (bit 0 =
// top-left, bit 1 = top-right, bit 2 = bottom-left, bit 3 = bottom-right).
func (s *sigMap) setQuad(qx, qy int, rho uint8) {
	sx, sy := qx*2, qy*2
	s.set(sx, sy, rho&0x1 != 0)
	s.set(sx+1, sy, rho&0x2 != 0)
	s.set(sx, sy+1, rho&0x4 != 0)
	s.set(sx+1, sy+1, rho&0x8 != 0)
}

// context computes the quad VLC context, a 0-8 value: the significant
// samples in the left quad's right-hand column plus those in the upper
// quad's bottom row, saturated to 2, raised by one (up to 2) when a
// diagonal neighbor above-left or above-right is significant; that
// value times 3, plus the diagonal count saturated to 2.
func (s *sigMap) context(qx, qy int) int {
	sx, sy := qx*2, qy*2

	h := 0
	if s.at(sx-1, sy) {
		h++
	}
	if s.at(sx-1, sy+1) {
		h++
	}

	v := 0
	if s.at(sx, sy-1) {
		v++
	}
	if s.at(sx+1, sy-1) {
		v++
	}

	d := 0
	if s.at(sx-1, sy-1) {
		d++
	}
	if s.at(sx+2, sy-1) {
		d++
	}

	ctx := h + v
	if ctx > 2 {
		ctx = 2
	}
	if d > 0 && ctx < 2 {
		ctx++
	}
	return ctx*3 + minInt(d, 2)
}
