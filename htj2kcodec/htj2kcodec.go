// Package htj2kcodec adapts the htj2k package's Codestream to the
// codec.Codec interface, so it can be registered and driven like any
// other codec in this module.
package htj2kcodec

import (
	"encoding/binary"
	"fmt"

	"github.com/cocosip/htj2k-core/codec"
	"github.com/cocosip/htj2k-core/htj2k"
)

// DICOM Transfer Syntax UIDs for HTJ2K, PS3.5 Annex A.4.4.
const (
	UIDLossless     = "1.2.840.10008.1.2.4.201"
	UIDLosslessRPCL = "1.2.840.10008.1.2.4.202"
	UIDLossy        = "1.2.840.10008.1.2.4.203"
)

var (
	_ codec.Codec = (*Codec)(nil)
)

// Codec implements codec.Codec over htj2k.Codestream.
type Codec struct {
	uid      string
	name     string
	lossless bool
	rpcl     bool
}

// NewLosslessCodec returns the 5/3-reversible, LRCP-progression codec.
func NewLosslessCodec() *Codec {
	return &Codec{uid: UIDLossless, name: "HTJ2K Lossless", lossless: true}
}

// NewLosslessRPCLCodec returns the 5/3-reversible codec that signals
// RPCL progression in COD. Packets are still written component by
// component, then resolution, then precinct, as for every other
// progression setting; the signaled order does not change packet
// sequencing.
func NewLosslessRPCLCodec() *Codec {
	return &Codec{uid: UIDLosslessRPCL, name: "HTJ2K Lossless RPCL", lossless: true, rpcl: true}
}

// NewLossyCodec returns the 9/7-irreversible codec.
func NewLossyCodec() *Codec {
	return &Codec{uid: UIDLossy, name: "HTJ2K Lossy", lossless: false}
}

func (c *Codec) UID() string  { return c.uid }
func (c *Codec) Name() string { return c.name }

// Encode packs params.PixelData (8- or 16-bit samples, little-endian,
// component-interleaved) into int32 samples, drives one Codestream
// through ExchangeLine/Flush per component, and returns the concatenated
// header and tile-part bytes.
func (c *Codec) Encode(params codec.EncodeParams) ([]byte, error) {
	if params.Width <= 0 || params.Height <= 0 || params.Components <= 0 {
		return nil, fmt.Errorf("htj2kcodec: invalid dimensions %dx%d/%d", params.Width, params.Height, params.Components)
	}

	p := htj2k.DefaultEncodeParams(params.Width, params.Height, params.Components, params.BitDepth)
	p.Signed = params.Signed
	p.Reversible = c.lossless
	if c.rpcl {
		p.Progression = htj2k.ProgressionRPCL
	}
	if params.Components >= 3 {
		p.EnableMCT = true
	}
	if !c.lossless {
		if q, ok := params.Options.(*Options); ok && q.Quality > 0 {
			p.Quant = lossyQuant(params.BitDepth, p.DecompositionLevels, q.Quality)
		}
	}

	cs := htj2k.NewCodestreamFromParams(p)
	headers, err := cs.WriteHeaders()
	if err != nil {
		return nil, fmt.Errorf("htj2kcodec: write headers: %w", err)
	}
	if err := cs.Create(nil); err != nil {
		return nil, fmt.Errorf("htj2kcodec: create: %w", err)
	}

	samples, err := unpackSamples(params.PixelData, params.Width, params.Height, params.Components, params.BitDepth, params.Signed)
	if err != nil {
		return nil, err
	}

	if err := pushLines(cs, samples, params.Width, params.Height, params.Components); err != nil {
		return nil, err
	}
	if p.EnableMCT {
		if err := cs.ApplyColorTransform(c.lossless); err != nil {
			return nil, fmt.Errorf("htj2kcodec: color transform: %w", err)
		}
	}

	tail, err := cs.Flush()
	if err != nil {
		return nil, fmt.Errorf("htj2kcodec: flush: %w", err)
	}
	return append(headers, tail...), nil
}

// Decode parses a codestream produced by Encode and returns packed
// pixel data at the original bit depth.
func (c *Codec) Decode(data []byte) (*codec.DecodeResult, error) {
	cs := htj2k.NewCodestream()
	if _, err := cs.ReadHeaders(data); err != nil {
		return nil, fmt.Errorf("htj2kcodec: read headers: %w", err)
	}
	if err := cs.Create(data); err != nil {
		return nil, fmt.Errorf("htj2kcodec: create: %w", err)
	}

	siz := cs.AccessSIZ()
	width, height := int(siz.Xsiz), int(siz.Ysiz)
	components := int(siz.Csiz)
	bitDepth := siz.Components[0].BitDepth()
	signed := siz.Components[0].IsSigned()

	samples, err := pullLines(cs, width, height, components)
	if err != nil {
		return nil, err
	}

	packed, err := packSamples(samples, width, height, components, bitDepth, signed)
	if err != nil {
		return nil, err
	}

	return &codec.DecodeResult{
		PixelData:  packed,
		Width:      width,
		Height:     height,
		Components: components,
		BitDepth:   bitDepth,
		Signed:     signed,
	}, nil
}

func pushLines(cs *htj2k.Codestream, samples [][]int32, width, height, components int) error {
	buf, comp, err := cs.ExchangeLine(nil)
	rowCursor := make([]int, components)
	for buf != nil {
		if err != nil {
			return fmt.Errorf("htj2kcodec: exchange line: %w", err)
		}
		row := rowCursor[comp]
		copy(buf, samples[comp][row*width:(row+1)*width])
		rowCursor[comp]++
		buf, comp, err = cs.ExchangeLine(buf)
	}
	return err
}

func pullLines(cs *htj2k.Codestream, width, height, components int) ([][]int32, error) {
	samples := make([][]int32, components)
	for i := range samples {
		samples[i] = make([]int32, width*height)
	}
	rowCursor := make([]int, components)

	line, comp, err := cs.PullLine()
	for line != nil {
		if err != nil {
			return nil, fmt.Errorf("htj2kcodec: pull line: %w", err)
		}
		row := rowCursor[comp]
		copy(samples[comp][row*width:(row+1)*width], line)
		rowCursor[comp]++
		line, comp, err = cs.PullLine()
	}
	if err != nil {
		return nil, fmt.Errorf("htj2kcodec: pull line: %w", err)
	}
	return samples, nil
}

// Options carries lossy encoding knobs, mirroring codec.BaseOptions's
// Quality field but scoped to this codec.
type Options struct {
	Quality int // 1-100, higher is better; ignored for NewLosslessCodec
}

// Validate implements codec.Options.
func (o *Options) Validate() error {
	if o.Quality < 1 || o.Quality > 100 {
		return codec.ErrInvalidQuality
	}
	return nil
}

// lossyQuant derives per-subband quantization exponents from a 1-100
// quality factor: higher quality narrows the deadzone step by raising
// the exponent closer to the lossless bit depth.
func lossyQuant(bitDepth, levels int, quality int) []htj2k.SubbandQuant {
	subbandCount := 1 + 3*levels
	quant := make([]htj2k.SubbandQuant, subbandCount)
	backoff := uint8((100 - quality) / 10)
	for i := range quant {
		exp := uint8(bitDepth)
		if exp > backoff {
			exp -= backoff
		}
		quant[i] = htj2k.SubbandQuant{Exponent: exp}
	}
	return quant
}

// unpackSamples splits component-interleaved packed pixel data into one
// []int32 slice per component, widening 8- or 16-bit samples and
// sign-extending when signed is set.
func unpackSamples(data []byte, width, height, components, bitDepth int, signed bool) ([][]int32, error) {
	n := width * height
	samples := make([][]int32, components)
	for i := range samples {
		samples[i] = make([]int32, n)
	}

	if bitDepth <= 8 {
		if len(data) < n*components {
			return nil, fmt.Errorf("htj2kcodec: pixel data too short: got %d want %d", len(data), n*components)
		}
		for i := 0; i < n; i++ {
			for c := 0; c < components; c++ {
				v := int32(data[i*components+c])
				if signed {
					v = int32(int8(v))
				}
				samples[c][i] = v
			}
		}
		return samples, nil
	}

	if len(data) < n*components*2 {
		return nil, fmt.Errorf("htj2kcodec: pixel data too short: got %d want %d", len(data), n*components*2)
	}
	for i := 0; i < n; i++ {
		for c := 0; c < components; c++ {
			raw := binary.LittleEndian.Uint16(data[(i*components+c)*2:])
			v := int32(raw)
			if signed {
				v = int32(int16(raw))
			}
			samples[c][i] = v
		}
	}
	return samples, nil
}

// packSamples is the inverse of unpackSamples.
func packSamples(samples [][]int32, width, height, components, bitDepth int, signed bool) ([]byte, error) {
	n := width * height
	if bitDepth <= 8 {
		out := make([]byte, n*components)
		for i := 0; i < n; i++ {
			for c := 0; c < components; c++ {
				out[i*components+c] = byte(samples[c][i])
			}
		}
		return out, nil
	}

	out := make([]byte, n*components*2)
	for i := 0; i < n; i++ {
		for c := 0; c < components; c++ {
			binary.LittleEndian.PutUint16(out[(i*components+c)*2:], uint16(samples[c][i]))
		}
	}
	_ = signed // two's complement bit pattern is identical whether or not the field is signed
	return out, nil
}

// RegisterCodecs registers the lossless, lossless-RPCL, and lossy
// codecs with the default registry.
func RegisterCodecs() {
	codec.Register(NewLosslessCodec())
	codec.Register(NewLosslessRPCLCodec())
	codec.Register(NewLossyCodec())
}
