package block

// melExponent is Table 2 of ISO/IEC 15444-15: the run-length exponent
// indexed by the adaptive state k.
var melExponent = [13]int{0, 0, 0, 1, 1, 1, 2, 2, 2, 3, 3, 4, 5}

// melDecoder implements the 13-state adaptive run-length machine
// (Clause 7.3.3) that signals, one symbol at a time, whether the next
// quad in raster order is entirely insignificant (symbol 0, part of a
// run) or contains at least one significant sample (symbol 1).
type melDecoder struct {
	r      *forwardReader
	k      int
	run    int
	oneRun bool
}

func newMELDecoder(data []byte) *melDecoder {
	return &melDecoder{r: newForwardReader(data)}
}

// DecodeSym returns the next MEL symbol: 0 to continue the current
// run of insignificant quads, 1 once a significant quad is reached.
func (m *melDecoder) DecodeSym() (int, error) {
	if m.run == 0 && !m.oneRun {
		eval := melExponent[m.k]
		bit, err := m.r.ReadBit()
		if err != nil {
			return 0, err
		}
		if bit == 1 {
			m.run = 1 << uint(eval)
			m.k = minInt(12, m.k+1)
		} else {
			m.run = 0
			for eval > 0 {
				bit, err = m.r.ReadBit()
				if err != nil {
					return 0, err
				}
				m.run = 2*m.run + bit
				eval--
			}
			m.k = maxInt(0, m.k-1)
			m.oneRun = true
		}
	}

	if m.run > 0 {
		m.run--
		return 0, nil
	}
	m.oneRun = false
	return 1, nil
}

// melEncoder is the exact algebraic inverse of melDecoder: callers
// push one symbol per quad in the same raster order a decoder will
// consume them, and Flush returns the packed, bit-stuffed segment.
type melEncoder struct {
	w      *forwardWriter
	k      int
	run    int
	oneRun bool
}

func newMELEncoder() *melEncoder {
	return &melEncoder{w: newForwardWriter()}
}

func (m *melEncoder) EncodeSym(sym int) {
	if sym == 0 {
		m.run++
		return
	}
	m.flushRun()
}

// flushRun emits the accumulated all-zero run followed by the
// terminating significant-quad event, mirroring decodeMELSym's state
// machine in reverse.
func (m *melEncoder) flushRun() {
	eval := melExponent[m.k]
	threshold := 1 << uint(eval)

	for m.run >= threshold {
		m.w.WriteBit(1)
		m.k = minInt(12, m.k+1)
		m.run -= threshold
		eval = melExponent[m.k]
		threshold = 1 << uint(eval)
	}

	m.w.WriteBit(0)
	for i := eval - 1; i >= 0; i-- {
		m.w.WriteBit((m.run >> uint(i)) & 1)
	}
	m.k = maxInt(0, m.k-1)
	m.run = 0
}

// Flush finalizes any trailing run (an all-zero tail with no
// terminating significant quad still needs its run length emitted so
// the decoder's sense of k stays in step) and returns the bytes.
func (m *melEncoder) Flush() []byte {
	for m.run > 0 {
		m.flushRun()
	}
	return m.w.Flush()
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
