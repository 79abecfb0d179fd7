package block

// magSgnEncoder packs the magnitude and sign bits of every significant
// sample, forward-growing from byte 0 of the code-block's compressed
// data, MSB-first with the same 0xFF bit-stuffing as the MEL segment.
type magSgnEncoder struct {
	w *forwardWriter
}

func newMagSgnEncoder() *magSgnEncoder {
	return &magSgnEncoder{w: newForwardWriter()}
}

// EncodeSample writes the low numBits bits of magnitude, most
// significant first and including its top bit, followed by one sign
// bit.
func (e *magSgnEncoder) EncodeSample(magnitude uint32, sign int, numBits int) {
	e.w.WriteBits(magnitude, numBits)
	e.w.WriteBit(sign)
}

func (e *magSgnEncoder) Flush() []byte { return e.w.Flush() }

// magSgnDecoder is the decoding counterpart of magSgnEncoder.
type magSgnDecoder struct {
	r *forwardReader
}

func newMagSgnDecoder(data []byte) *magSgnDecoder {
	return &magSgnDecoder{r: newForwardReader(data)}
}

func (d *magSgnDecoder) DecodeSample(numBits int) (magnitude uint32, sign int, err error) {
	magnitude, err = d.r.ReadBits(numBits)
	if err != nil {
		return 0, 0, err
	}
	bit, err := d.r.ReadBit()
	if err != nil {
		return magnitude, 0, err
	}
	return magnitude, bit, nil
}
