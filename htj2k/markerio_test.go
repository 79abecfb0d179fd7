package htj2k

import "testing"

func TestSIZRoundTrip(t *testing.T) {
	siz := &SIZSegment{
		Rsiz: 0, Xsiz: 640, Ysiz: 480, XOsiz: 0, YOsiz: 0,
		XTsiz: 640, YTsiz: 480, XTOsiz: 0, YTOsiz: 0, Csiz: 3,
		Components: []ComponentSize{
			{Ssiz: 7, XRsiz: 1, YRsiz: 1},
			{Ssiz: 7, XRsiz: 1, YRsiz: 1},
			{Ssiz: 7, XRsiz: 1, YRsiz: 1},
		},
	}
	payload := WriteSIZ(siz)
	got, err := ReadSIZ(payload)
	if err != nil {
		t.Fatalf("ReadSIZ: %v", err)
	}
	if got.Xsiz != siz.Xsiz || got.Ysiz != siz.Ysiz || got.Csiz != siz.Csiz {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	if len(got.Components) != 3 || got.Components[0].BitDepth() != 8 {
		t.Fatalf("component round trip mismatch: %+v", got.Components)
	}
	if got.NumTilesX() != 1 || got.NumTilesY() != 1 {
		t.Fatalf("expected single tile, got %dx%d", got.NumTilesX(), got.NumTilesY())
	}
}

func TestCODRoundTrip(t *testing.T) {
	cod := &CODSegment{
		Scod: 0x1, Progression: ProgressionCPRL, NumLayers: 1, MultiComponent: 1,
		DecompositionLevels: 3, CodeBlockWidthExp: 4, CodeBlockHeightExp: 4,
		CodeBlockStyle: 0x40, Transformation: 1,
		PrecinctSizes: []PrecinctSize{{PPx: 7, PPy: 7}, {PPx: 8, PPy: 8}, {PPx: 8, PPy: 8}, {PPx: 8, PPy: 8}},
	}
	payload := WriteCOD(cod)
	got, err := ReadCOD(payload)
	if err != nil {
		t.Fatalf("ReadCOD: %v", err)
	}
	if got.Progression != ProgressionCPRL || got.DecompositionLevels != 3 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	w, h := got.CodeBlockSize()
	if w != 64 || h != 64 {
		t.Fatalf("code-block size mismatch: %dx%d", w, h)
	}
	if !got.IsHTBlockCoding() {
		t.Fatalf("expected HT block coding flag set")
	}
	if len(got.PrecinctSizes) != 4 {
		t.Fatalf("expected 4 precinct size entries, got %d", len(got.PrecinctSizes))
	}
}

func TestQCDRoundTrip(t *testing.T) {
	qcd := &QCDSegment{Sqcd: 2<<5 | QuantScalarExpounded, SPqcd: EncodeSPqcd([]SubbandQuant{{Exponent: 8, Mantissa: 100}})}
	payload := WriteQCD(qcd)
	got, err := ReadQCD(payload)
	if err != nil {
		t.Fatalf("ReadQCD: %v", err)
	}
	if got.QuantizationStyle() != QuantScalarExpounded || got.GuardBits() != 2 {
		t.Fatalf("round trip mismatch: %+v", got)
	}
	subbands := DecodeSPqcd(got.QuantizationStyle(), got.SPqcd, 1)
	if len(subbands) != 1 || subbands[0].Exponent != 8 || subbands[0].Mantissa != 100 {
		t.Fatalf("subband quant mismatch: %+v", subbands)
	}
}

func TestMarkerRoundTripViaReader(t *testing.T) {
	w := newWriter()
	w.writeMarkerSegment(MarkerSOC, nil)
	w.writeMarkerSegment(MarkerCOM, WriteCOM(&COMSegment{Rcom: 1, Data: []byte("hi")}))
	w.writeMarkerSegment(MarkerEOC, nil)

	r := newReader(w.Bytes())
	marker, _, err := r.readMarker()
	if err != nil || marker != MarkerSOC {
		t.Fatalf("expected SOC, got %v err=%v", marker, err)
	}
	marker, payload, err := r.readMarker()
	if err != nil || marker != MarkerCOM {
		t.Fatalf("expected COM, got %v err=%v", marker, err)
	}
	com, err := ReadCOM(payload)
	if err != nil || string(com.Data) != "hi" {
		t.Fatalf("COM payload mismatch: %+v err=%v", com, err)
	}
	marker, _, err = r.readMarker()
	if err != nil || marker != MarkerEOC {
		t.Fatalf("expected EOC, got %v err=%v", marker, err)
	}
}
