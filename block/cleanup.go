package block

import "fmt"

// Segments holds one HT code-block's compressed cleanup-pass data as
// the single shared buffer ITU-T T.814 Clause 7.3 describes, rather
// than independently framed sub-streams: MagSgn grows forward from
// byte 0, MEL grows forward immediately behind it, and VLC (with UVLC
// suffixes interleaved) grows backward from the buffer's tail toward
// MEL. The trailing three bytes are not stream payload: the final
// byte's low nibble is a half-byte start marker and the two bytes
// before it hold Scup, the combined length of the MEL+VLC region plus
// this trailer. Scup is what lets a decoder that only knows the
// block's total length (Lcup, carried by the packet header's segment
// length field) find the boundary between the forward MagSgn region
// and the backward-growing MEL/VLC region.
type Segments struct {
	Data []byte
}

// IsEmpty reports whether the block carries no coded data at all.
func (s Segments) IsEmpty() bool { return len(s.Data) == 0 }

const scupMarker = 0xA   // half-byte start marker, low nibble of the last byte
const scupTrailer = 3    // 2 Scup bytes + 1 marker byte
const scupMax = 4079

// EncodeCleanup runs the cleanup pass over a width x height code-block
// of coefficients (sign-magnitude int32, as produced by quantization),
// processing 2x2 quads in raster order. For each quad, a context value
// derived from already-coded neighbors (sigMap.context) selects how
// its significance pattern rho reaches the bitstream: a zero context
// spends one MEL event first (0 means the quad is entirely
// insignificant; 1 means rho must still be read) before rho's
// context-dependent VLC codeword, while any other context reads rho's
// VLC codeword directly with no MEL event, since rho == 0 is itself a
// legal outcome there. A significant quad additionally carries a
// shared magnitude bit-width u (UVLC-coded) and, through MagSgn, each
// significant sample's u-bit magnitude and sign.
func EncodeCleanup(coeffs []int32, width, height int) (Segments, error) {
	if len(coeffs) != width*height {
		return Segments{}, fmt.Errorf("block: coeffs length %d does not match %dx%d", len(coeffs), width, height)
	}

	mel := newMELEncoder()
	magSgn := newMagSgnEncoder()
	vlcW := newReverseWriter()
	sig := newSigMap(width, height)

	qw := (width + 1) / 2
	qh := (height + 1) / 2

	anySignificant := false

	for qy := 0; qy < qh; qy++ {
		for qx := 0; qx < qw; qx++ {
			samples := quadSamples(coeffs, width, height, qx, qy)

			var rho uint8
			maxBits := 0
			for i, s := range samples {
				if s == nil {
					continue
				}
				mag := abs32(*s)
				if mag != 0 {
					rho |= 1 << uint(i)
					if n := bitLen32(mag); n > maxBits {
						maxBits = n
					}
				}
			}

			ctx := sig.context(qx, qy)
			if ctx == 0 {
				if rho == 0 {
					mel.EncodeSym(0)
					sig.setQuad(qx, qy, 0)
					continue
				}
				mel.EncodeSym(1)
				writeRho(vlcW, ctx, rho)
			} else {
				writeRho(vlcW, ctx, rho)
				if rho == 0 {
					sig.setQuad(qx, qy, 0)
					continue
				}
			}
			anySignificant = true

			encodeUVLC(uint32(maxBits)).writeTo(vlcW)

			for i, s := range samples {
				if s == nil || rho&(1<<uint(i)) == 0 {
					continue
				}
				mag := abs32(*s)
				sign := 0
				if *s < 0 {
					sign = 1
				}
				magSgn.EncodeSample(uint32(mag), sign, maxBits)
			}

			sig.setQuad(qx, qy, rho)
		}
	}

	if !anySignificant {
		return Segments{}, nil
	}

	return packSegments(magSgn.Flush(), mel.Flush(), vlcW.Flush())
}

// packSegments lays out the three sub-streams into one shared buffer
// with its Scup trailer, Clause 7.3.
func packSegments(magSgn, mel, vlc []byte) (Segments, error) {
	melVlcLen := len(mel) + len(vlc)
	scup := melVlcLen + scupTrailer
	if scup > scupMax {
		return Segments{}, fmt.Errorf("block: Scup %d exceeds the %d-byte maximum", scup, scupMax)
	}

	data := make([]byte, 0, len(magSgn)+melVlcLen+scupTrailer)
	data = append(data, magSgn...)
	data = append(data, mel...)
	data = append(data, vlc...)
	data = append(data, byte(scup>>8), byte(scup))
	data = append(data, scupMarker)
	return Segments{Data: data}, nil
}

// unpackSegments is the inverse of packSegments: it reads Scup from the
// trailer to split the shared buffer back into its MagSgn region and
// its MEL/VLC region (the latter handed to both a forward MEL reader
// and a backward VLC reader over the same bytes, since the two streams
// are only ever read from opposite ends toward each other and a
// correctly encoded buffer never lets them cross).
func unpackSegments(data []byte) (magSgn, melVlc []byte, err error) {
	lcup := len(data)
	if lcup < scupTrailer {
		return nil, nil, fmt.Errorf("block: code-block data too short for Scup trailer: %d bytes", lcup)
	}
	if marker := data[lcup-1] & 0x0F; marker != scupMarker {
		return nil, nil, fmt.Errorf("block: half-byte start marker mismatch: got %#x", marker)
	}
	scup := int(data[lcup-3])<<8 | int(data[lcup-2])
	if scup < scupTrailer || scup > lcup || scup > scupMax {
		return nil, nil, fmt.Errorf("block: Scup %d out of range for a %d-byte code-block", scup, lcup)
	}
	magSgnLen := lcup - scup
	return data[:magSgnLen], data[magSgnLen : lcup-scupTrailer], nil
}

// DecodeCleanup is the exact inverse of EncodeCleanup.
func DecodeCleanup(seg Segments, width, height int) ([]int32, error) {
	coeffs := make([]int32, width*height)
	if seg.IsEmpty() {
		return coeffs, nil
	}

	magSgnBytes, melVlcBytes, err := unpackSegments(seg.Data)
	if err != nil {
		return nil, err
	}

	mel := newMELDecoder(melVlcBytes)
	magSgn := newMagSgnDecoder(magSgnBytes)
	vlcR := newReverseReader(melVlcBytes)
	sig := newSigMap(width, height)

	qw := (width + 1) / 2
	qh := (height + 1) / 2

	for qy := 0; qy < qh; qy++ {
		for qx := 0; qx < qw; qx++ {
			ctx := sig.context(qx, qy)

			var rho uint8
			if ctx == 0 {
				sym, err := mel.DecodeSym()
				if err != nil {
					return nil, fmt.Errorf("block: MEL decode at quad (%d,%d): %w", qx, qy, err)
				}
				if sym == 0 {
					sig.setQuad(qx, qy, 0)
					continue
				}
				rho, err = readRho(vlcR, ctx)
				if err != nil {
					return nil, fmt.Errorf("block: rho decode at quad (%d,%d): %w", qx, qy, err)
				}
			} else {
				rho, err = readRho(vlcR, ctx)
				if err != nil {
					return nil, fmt.Errorf("block: rho decode at quad (%d,%d): %w", qx, qy, err)
				}
				if rho == 0 {
					sig.setQuad(qx, qy, 0)
					continue
				}
			}

			u, err := decodeUVLC(vlcR, false)
			if err != nil {
				return nil, fmt.Errorf("block: u decode at quad (%d,%d): %w", qx, qy, err)
			}
			maxBits := int(u)

			positions := quadPositions(width, height, qx, qy)
			for i, pos := range positions {
				if pos < 0 || rho&(1<<uint(i)) == 0 {
					continue
				}
				mag, sign, err := magSgn.DecodeSample(maxBits)
				if err != nil {
					return nil, fmt.Errorf("block: MagSgn decode at quad (%d,%d): %w", qx, qy, err)
				}
				v := int32(mag)
				if sign == 1 {
					v = -v
				}
				coeffs[pos] = v
			}

			sig.setQuad(qx, qy, rho)
		}
	}

	return coeffs, nil
}

// quadSamples returns pointers (nil at truncated edges) to the 4
// coefficients of the quad at quad-coordinate (qx,qy), in
// top-left/top-right/bottom-left/bottom-right order.
func quadSamples(coeffs []int32, width, height, qx, qy int) [4]*int32 {
	var out [4]*int32
	positions := quadPositions(width, height, qx, qy)
	for i, pos := range positions {
		if pos >= 0 {
			out[i] = &coeffs[pos]
		}
	}
	return out
}

func quadPositions(width, height, qx, qy int) [4]int {
	sx, sy := qx*2, qy*2
	idx := func(x, y int) int {
		if x >= width || y >= height {
			return -1
		}
		return y*width + x
	}
	return [4]int{
		idx(sx, sy),
		idx(sx+1, sy),
		idx(sx, sy+1),
		idx(sx+1, sy+1),
	}
}

func abs32(v int32) int32 {
	if v < 0 {
		return -v
	}
	return v
}

// bitLen32 returns the number of bits needed to represent v (0 for v == 0).
func bitLen32(v int32) int {
	n := 0
	for v > 0 {
		n++
		v >>= 1
	}
	return n
}
