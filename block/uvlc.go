package block

// uvlcCodeword is the (prefix, suffix, extension) decomposition of an
// unsigned residual value u, ITU-T T.814 Clause 7.3.6, Table 3:
//
//	u == 0            -> no bits at all (ulf == 0)
//	u == 1            -> prefix "1"
//	u == 2            -> prefix "01"
//	3 <= u <= 4        -> prefix "001", 1-bit suffix
//	5 <= u <= 32       -> prefix "000", 5-bit suffix
//	u >= 33            -> prefix "000", 5-bit suffix (>=28), 4-bit extension
//
// u = u_pfx + u_sfx + 4*u_ext for the general case; the initial
// line-pair's shared-exponent case instead decodes u-2 through the
// same table (Equation 4 of the cited clause).
type uvlcCodeword struct {
	prefix, suffix, ext             uint32
	prefixLen, suffixLen, extLen int
}

func encodeUVLC(u uint32) uvlcCodeword {
	switch {
	case u == 0:
		return uvlcCodeword{}
	case u == 1:
		return uvlcCodeword{prefix: 1, prefixLen: 1}
	case u == 2:
		return uvlcCodeword{prefix: 0b01, prefixLen: 2}
	case u <= 4:
		return uvlcCodeword{prefix: 0b001, prefixLen: 3, suffix: u - 3, suffixLen: 1}
	case u <= 32:
		return uvlcCodeword{prefix: 0b000, prefixLen: 3, suffix: u - 5, suffixLen: 5}
	default:
		rest := u - 5
		return uvlcCodeword{
			prefix: 0b000, prefixLen: 3,
			suffix: 28 + (rest-28)%4, suffixLen: 5,
			ext: (rest - 28) / 4, extLen: 4,
		}
	}
}

// writeTo emits the codeword's bits through w in prefix, then suffix,
// then extension order. Prefix bits (the unary-ish leading code) go
// out MSB-first matching the table above; suffix and extension bits go
// out LSB-first per the cited clause's little-endian convention.
func (c uvlcCodeword) writeTo(w *reverseWriter) {
	for i := c.prefixLen - 1; i >= 0; i-- {
		w.WriteBit(int((c.prefix >> uint(i)) & 1))
	}
	w.WriteBits(c.suffix, c.suffixLen)
	w.WriteBits(c.ext, c.extLen)
}

// decodeUVLC reads one U-VLC codeword and returns its value u. Pass
// initialPair true for the first quad-pair of a code-block's first
// line pair when both quads have a non-zero residual flag, which folds
// in the shared +2 bias of Equation 4.
func decodeUVLC(r *reverseReader, initialPair bool) (uint32, error) {
	prefix, err := decodeUPrefix(r)
	if err != nil {
		return 0, err
	}
	suffix, err := decodeUSuffix(r, prefix)
	if err != nil {
		return 0, err
	}
	ext, err := decodeUExtension(r, suffix)
	if err != nil {
		return 0, err
	}

	u := prefix + suffix + 4*ext
	if initialPair {
		u += 2
	}
	return u, nil
}

func decodeUPrefix(r *reverseReader) (uint32, error) {
	bit, err := r.ReadBit()
	if err != nil {
		return 0, err
	}
	if bit == 1 {
		return 1, nil
	}
	bit, err = r.ReadBit()
	if err != nil {
		return 0, err
	}
	if bit == 1 {
		return 2, nil
	}
	bit, err = r.ReadBit()
	if err != nil {
		return 0, err
	}
	if bit == 1 {
		return 3, nil
	}
	return 5, nil
}

func decodeUSuffix(r *reverseReader, prefix uint32) (uint32, error) {
	if prefix < 3 {
		return 0, nil
	}
	val, err := r.ReadBit()
	if err != nil {
		return 0, err
	}
	v := uint32(val)
	if prefix == 3 {
		return v, nil
	}
	for i := 1; i < 5; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		v |= uint32(bit) << uint(i)
	}
	return v, nil
}

func decodeUExtension(r *reverseReader, suffix uint32) (uint32, error) {
	if suffix < 28 {
		return 0, nil
	}
	val, err := r.ReadBit()
	if err != nil {
		return 0, err
	}
	v := uint32(val)
	for i := 1; i < 4; i++ {
		bit, err := r.ReadBit()
		if err != nil {
			return 0, err
		}
		v |= uint32(bit) << uint(i)
	}
	return v, nil
}

// encodeUVLCInitialPair folds the Equation 4 bias into the table
// lookup for the first quad-pair of a code-block's first line-pair.
func encodeUVLCInitialPair(u uint32) uvlcCodeword {
	if u < 2 {
		return uvlcCodeword{}
	}
	return encodeUVLC(u - 2)
}
