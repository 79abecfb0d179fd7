package htj2k

// ProgressionOrder enumerates the five progression orders of ITU-T
// T.800 Annex A.6.1, reused unchanged by T.814.
type ProgressionOrder uint8

const (
	ProgressionLRCP ProgressionOrder = iota
	ProgressionRLCP
	ProgressionRPCL
	ProgressionPCRL
	ProgressionCPRL
)

func (p ProgressionOrder) String() string {
	switch p {
	case ProgressionLRCP:
		return "LRCP"
	case ProgressionRLCP:
		return "RLCP"
	case ProgressionRPCL:
		return "RPCL"
	case ProgressionPCRL:
		return "PCRL"
	case ProgressionCPRL:
		return "CPRL"
	default:
		return "unknown"
	}
}

// SIZSegment is the image-and-tile-size marker segment, A.5.1.
type SIZSegment struct {
	Rsiz   uint16
	Xsiz   uint32
	Ysiz   uint32
	XOsiz  uint32
	YOsiz  uint32
	XTsiz  uint32
	YTsiz  uint32
	XTOsiz uint32
	YTOsiz uint32
	Csiz   uint16

	Components []ComponentSize
}

// ComponentSize is one SIZ component record.
type ComponentSize struct {
	Ssiz  uint8
	XRsiz uint8
	YRsiz uint8
}

func (c ComponentSize) BitDepth() int  { return int(c.Ssiz&0x7F) + 1 }
func (c ComponentSize) IsSigned() bool { return c.Ssiz&0x80 != 0 }

// NumTilesX and NumTilesY give the tile grid dimensions implied by the
// reference grid and tile-partition parameters, B.3.
func (s *SIZSegment) NumTilesX() int {
	return int(ceilDiv(int64(s.Xsiz)-int64(s.XTOsiz), int64(s.XTsiz)))
}

func (s *SIZSegment) NumTilesY() int {
	return int(ceilDiv(int64(s.Ysiz)-int64(s.YTOsiz), int64(s.YTsiz)))
}

func (s *SIZSegment) NumTiles() int { return s.NumTilesX() * s.NumTilesY() }

func ceilDiv(a, b int64) int64 {
	if b <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// PrecinctSize is one resolution level's precinct dimension exponent
// pair, PPx/PPy of A.6.1.
type PrecinctSize struct {
	PPx, PPy uint8
}

// CODSegment is the coding-style-default marker segment, A.6.1.
type CODSegment struct {
	Scod uint8

	Progression     ProgressionOrder
	NumLayers       uint16
	MultiComponent  uint8 // 0 = none, 1 = RCT/ICT

	DecompositionLevels uint8
	CodeBlockWidthExp   uint8 // actual width = 1 << (exp+2)
	CodeBlockHeightExp  uint8
	CodeBlockStyle      uint8
	Transformation      uint8 // 0 = 9/7 irreversible, 1 = 5/3 reversible

	PrecinctSizes []PrecinctSize
}

func (c *CODSegment) CodeBlockSize() (width, height int) {
	width = 1 << (c.CodeBlockWidthExp + 2)
	height = 1 << (c.CodeBlockHeightExp + 2)
	return
}

func (c *CODSegment) UsesSOP() bool { return c.Scod&0x2 != 0 }
func (c *CODSegment) UsesEPH() bool { return c.Scod&0x4 != 0 }
func (c *CODSegment) HasExplicitPrecincts() bool { return c.Scod&0x1 != 0 }

// IsHTBlockCoding reports whether the code-block style selects the
// HTJ2K HT block coder rather than classic EBCOT (T.814 Table 7.1:
// bit 6 of the code-block style byte).
func (c *CODSegment) IsHTBlockCoding() bool { return c.CodeBlockStyle&0x40 != 0 }

// COCSegment overrides coding style for a single component, A.6.2.
type COCSegment struct {
	Component           uint16
	Scoc                uint8
	DecompositionLevels uint8
	CodeBlockWidthExp   uint8
	CodeBlockHeightExp  uint8
	CodeBlockStyle      uint8
	Transformation      uint8
	PrecinctSizes       []PrecinctSize
}

// QCDSegment is the quantization-default marker segment, A.6.4.
type QCDSegment struct {
	Sqcd  uint8
	SPqcd []byte
}

func (q *QCDSegment) QuantizationStyle() int { return int(q.Sqcd & 0x1F) }
func (q *QCDSegment) GuardBits() int         { return int(q.Sqcd >> 5) }

// QCCSegment overrides quantization for a single component, A.6.5.
type QCCSegment struct {
	Component uint16
	Sqcc      uint8
	SPqcc     []byte
}

// COMSegment is the comment marker segment, A.6.7.
type COMSegment struct {
	Rcom uint16
	Data []byte
}
