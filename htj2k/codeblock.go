package htj2k

import (
	"fmt"

	"github.com/cocosip/htj2k-core/block"
)

// CodeBlock is one HT code-block within a subband: a rectangular
// region of transform coefficients coded independently of its
// neighbors, Sec. 4.5.
type CodeBlock struct {
	X, Y          int // top-left, in subband-sample coordinates
	Width, Height int

	coeffs []int32 // nil until populated by the caller (forward) or Decode (inverse)

	// ZeroBitPlanes is the number of all-zero most-significant bit
	// planes signaled by the precinct's tag-tree, Sec. 7.3.
	ZeroBitPlanes int
	// NumPasses counts coding passes included for this code-block
	// across all layers seen so far; the cleanup-pass-only coder here
	// always contributes exactly one pass per inclusion.
	NumPasses int

	Segments block.Segments
}

// NewCodeBlock allocates a code-block covering the given subband
// rectangle.
func NewCodeBlock(x, y, width, height int) *CodeBlock {
	return &CodeBlock{X: x, Y: y, Width: width, Height: height}
}

// SetCoefficients installs the quantized coefficients this block
// covers, in row-major order, ahead of Encode.
func (cb *CodeBlock) SetCoefficients(coeffs []int32) error {
	if len(coeffs) != cb.Width*cb.Height {
		return fmt.Errorf("htj2k: code-block (%d,%d) expects %d coefficients, got %d", cb.X, cb.Y, cb.Width*cb.Height, len(coeffs))
	}
	cb.coeffs = coeffs
	return nil
}

// Coefficients returns the coefficients last set or decoded.
func (cb *CodeBlock) Coefficients() []int32 { return cb.coeffs }

// Encode runs the HT cleanup pass over the block's coefficients,
// populating Segments. A block with no significant coefficients
// produces an empty Segments and is omitted from the packet body by
// the precinct packer.
func (cb *CodeBlock) Encode() error {
	if cb.coeffs == nil {
		cb.coeffs = make([]int32, cb.Width*cb.Height)
	}
	seg, err := block.EncodeCleanup(cb.coeffs, cb.Width, cb.Height)
	if err != nil {
		return fmt.Errorf("htj2k: encoding code-block (%d,%d): %w", cb.X, cb.Y, err)
	}
	cb.Segments = seg
	cb.NumPasses = 1
	return nil
}

// Decode is the inverse of Encode, reconstructing coefficients from
// Segments.
func (cb *CodeBlock) Decode() error {
	coeffs, err := block.DecodeCleanup(cb.Segments, cb.Width, cb.Height)
	if err != nil {
		return fmt.Errorf("htj2k: decoding code-block (%d,%d): %w", cb.X, cb.Y, err)
	}
	cb.coeffs = coeffs
	cb.NumPasses = 1
	return nil
}

// IsEmpty reports whether the block carries no coded data, meaning it
// is omitted from the packet body.
func (cb *CodeBlock) IsEmpty() bool {
	return cb.Segments.IsEmpty()
}

// ByteLength returns the total coded-data length this block
// contributes to a packet body, Sec. 7.3.
func (cb *CodeBlock) ByteLength() int {
	return len(cb.Segments.Data)
}
