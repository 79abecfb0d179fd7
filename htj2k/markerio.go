package htj2k

import (
	"encoding/binary"
	"fmt"
)

// reader walks a codestream byte slice, tracking the offset used in
// error reporting.
type reader struct {
	data []byte
	pos  int64
}

func newReader(data []byte) *reader { return &reader{data: data} }

func (r *reader) remaining() int64 { return int64(len(r.data)) - r.pos }

func (r *reader) readUint16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, newError(ErrKindMalformed, 0, r.pos, "truncated uint16", nil)
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) readUint32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, newError(ErrKindMalformed, 0, r.pos, "truncated uint32", nil)
	}
	v := binary.BigEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) readByte() (byte, error) {
	if r.remaining() < 1 {
		return 0, newError(ErrKindMalformed, 0, r.pos, "truncated byte", nil)
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) readBytes(n int) ([]byte, error) {
	if r.remaining() < int64(n) {
		return nil, newError(ErrKindMalformed, 0, r.pos, "truncated segment", nil)
	}
	v := r.data[r.pos : r.pos+int64(n)]
	r.pos += int64(n)
	return v, nil
}

// readMarker reads the next 2-byte marker code and, if HasLength
// reports true for it, its length field and payload. The returned
// payload excludes the 2-byte length field itself, per A.2.
func (r *reader) readMarker() (marker uint16, payload []byte, err error) {
	start := r.pos
	marker, err = r.readUint16()
	if err != nil {
		return 0, nil, err
	}
	if marker&0xFF00 != 0xFF00 {
		return 0, nil, newError(ErrKindMalformed, marker, start, fmt.Sprintf("not a marker code: %#04x", marker), nil)
	}
	if !HasLength(marker) {
		return marker, nil, nil
	}
	length, err := r.readUint16()
	if err != nil {
		return 0, nil, err
	}
	if length < 2 {
		return 0, nil, newError(ErrKindMalformed, marker, start, "marker segment length < 2", nil)
	}
	payload, err = r.readBytes(int(length) - 2)
	if err != nil {
		return 0, nil, err
	}
	return marker, payload, nil
}

// writer accumulates codestream bytes.
type writer struct {
	buf []byte
}

func newWriter() *writer { return &writer{} }

func (w *writer) Bytes() []byte { return w.buf }

func (w *writer) writeUint16(v uint16) {
	w.buf = append(w.buf, byte(v>>8), byte(v))
}

func (w *writer) writeUint32(v uint32) {
	w.buf = append(w.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

func (w *writer) writeByte(v byte) {
	w.buf = append(w.buf, v)
}

func (w *writer) writeBytes(v []byte) {
	w.buf = append(w.buf, v...)
}

// writeMarkerSegment writes marker, then (if the marker carries one) a
// length field covering length-field-plus-payload, then payload.
func (w *writer) writeMarkerSegment(marker uint16, payload []byte) {
	w.writeUint16(marker)
	if !HasLength(marker) {
		return
	}
	w.writeUint16(uint16(len(payload) + 2))
	w.writeBytes(payload)
}

func readComponentCount(csiz uint16) int { return int(csiz) }

// ReadSIZ parses an SIZ marker segment payload (excluding marker and
// length field), A.5.1.
func ReadSIZ(payload []byte) (*SIZSegment, error) {
	r := newReader(payload)
	s := &SIZSegment{}
	var err error
	if s.Rsiz, err = r.readUint16(); err != nil {
		return nil, err
	}
	if s.Xsiz, err = r.readUint32(); err != nil {
		return nil, err
	}
	if s.Ysiz, err = r.readUint32(); err != nil {
		return nil, err
	}
	if s.XOsiz, err = r.readUint32(); err != nil {
		return nil, err
	}
	if s.YOsiz, err = r.readUint32(); err != nil {
		return nil, err
	}
	if s.XTsiz, err = r.readUint32(); err != nil {
		return nil, err
	}
	if s.YTsiz, err = r.readUint32(); err != nil {
		return nil, err
	}
	if s.XTOsiz, err = r.readUint32(); err != nil {
		return nil, err
	}
	if s.YTOsiz, err = r.readUint32(); err != nil {
		return nil, err
	}
	if s.Csiz, err = r.readUint16(); err != nil {
		return nil, err
	}
	n := readComponentCount(s.Csiz)
	s.Components = make([]ComponentSize, n)
	for i := 0; i < n; i++ {
		ssiz, err := r.readByte()
		if err != nil {
			return nil, err
		}
		xr, err := r.readByte()
		if err != nil {
			return nil, err
		}
		yr, err := r.readByte()
		if err != nil {
			return nil, err
		}
		s.Components[i] = ComponentSize{Ssiz: ssiz, XRsiz: xr, YRsiz: yr}
	}
	return s, nil
}

// WriteSIZ serializes s into an SIZ marker segment payload.
func WriteSIZ(s *SIZSegment) []byte {
	w := newWriter()
	w.writeUint16(s.Rsiz)
	w.writeUint32(s.Xsiz)
	w.writeUint32(s.Ysiz)
	w.writeUint32(s.XOsiz)
	w.writeUint32(s.YOsiz)
	w.writeUint32(s.XTsiz)
	w.writeUint32(s.YTsiz)
	w.writeUint32(s.XTOsiz)
	w.writeUint32(s.YTOsiz)
	w.writeUint16(uint16(len(s.Components)))
	for _, c := range s.Components {
		w.writeByte(c.Ssiz)
		w.writeByte(c.XRsiz)
		w.writeByte(c.YRsiz)
	}
	return w.Bytes()
}

func readPrecinctSizes(r *reader, n int) ([]PrecinctSize, error) {
	out := make([]PrecinctSize, n)
	for i := 0; i < n; i++ {
		b, err := r.readByte()
		if err != nil {
			return nil, err
		}
		out[i] = PrecinctSize{PPx: b & 0x0F, PPy: b >> 4}
	}
	return out, nil
}

func writePrecinctSizes(w *writer, sizes []PrecinctSize) {
	for _, p := range sizes {
		w.writeByte(p.PPx | p.PPy<<4)
	}
}

// ReadCOD parses a COD marker segment payload, A.6.1.
func ReadCOD(payload []byte) (*CODSegment, error) {
	r := newReader(payload)
	c := &CODSegment{}
	var err error
	if c.Scod, err = r.readByte(); err != nil {
		return nil, err
	}
	prog, err := r.readByte()
	if err != nil {
		return nil, err
	}
	c.Progression = ProgressionOrder(prog)
	if c.NumLayers, err = r.readUint16(); err != nil {
		return nil, err
	}
	if c.MultiComponent, err = r.readByte(); err != nil {
		return nil, err
	}
	if c.DecompositionLevels, err = r.readByte(); err != nil {
		return nil, err
	}
	if c.CodeBlockWidthExp, err = r.readByte(); err != nil {
		return nil, err
	}
	if c.CodeBlockHeightExp, err = r.readByte(); err != nil {
		return nil, err
	}
	if c.CodeBlockStyle, err = r.readByte(); err != nil {
		return nil, err
	}
	if c.Transformation, err = r.readByte(); err != nil {
		return nil, err
	}
	if c.HasExplicitPrecincts() {
		n := int(c.DecompositionLevels) + 1
		if c.PrecinctSizes, err = readPrecinctSizes(r, n); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// WriteCOD serializes c into a COD marker segment payload.
func WriteCOD(c *CODSegment) []byte {
	w := newWriter()
	w.writeByte(c.Scod)
	w.writeByte(uint8(c.Progression))
	w.writeUint16(c.NumLayers)
	w.writeByte(c.MultiComponent)
	w.writeByte(c.DecompositionLevels)
	w.writeByte(c.CodeBlockWidthExp)
	w.writeByte(c.CodeBlockHeightExp)
	w.writeByte(c.CodeBlockStyle)
	w.writeByte(c.Transformation)
	if c.HasExplicitPrecincts() {
		writePrecinctSizes(w, c.PrecinctSizes)
	}
	return w.Bytes()
}

// ReadQCD parses a QCD marker segment payload, A.6.4.
func ReadQCD(payload []byte) (*QCDSegment, error) {
	if len(payload) < 1 {
		return nil, newError(ErrKindMalformed, MarkerQCD, 0, "empty QCD payload", nil)
	}
	return &QCDSegment{Sqcd: payload[0], SPqcd: append([]byte(nil), payload[1:]...)}, nil
}

// WriteQCD serializes q into a QCD marker segment payload.
func WriteQCD(q *QCDSegment) []byte {
	buf := make([]byte, 0, 1+len(q.SPqcd))
	buf = append(buf, q.Sqcd)
	buf = append(buf, q.SPqcd...)
	return buf
}

// ReadCOM parses a COM marker segment payload, A.6.7.
func ReadCOM(payload []byte) (*COMSegment, error) {
	r := newReader(payload)
	rcom, err := r.readUint16()
	if err != nil {
		return nil, err
	}
	return &COMSegment{Rcom: rcom, Data: append([]byte(nil), payload[2:]...)}, nil
}

// WriteCOM serializes c into a COM marker segment payload.
func WriteCOM(c *COMSegment) []byte {
	w := newWriter()
	w.writeUint16(c.Rcom)
	w.writeBytes(c.Data)
	return w.Bytes()
}
