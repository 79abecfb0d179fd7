package htj2k

import (
	"math/rand"
	"testing"
)

func TestCodestreamEncodeDecodeRoundTripSingleComponentReversible(t *testing.T) {
	width, height := 16, 16
	params := DefaultEncodeParams(width, height, 1, 8)
	params.DecompositionLevels = 2
	params.CodeBlockWidth, params.CodeBlockHeight = 8, 8
	params.PrecinctWidthExp, params.PrecinctHeightExp = 15, 15
	params.Signed = true

	cs := NewCodestreamFromParams(params)
	headers, err := cs.WriteHeaders()
	if err != nil {
		t.Fatalf("WriteHeaders: %v", err)
	}
	if err := cs.Create(nil); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rng := rand.New(rand.NewSource(42))
	original := make([][]int32, height)
	for y := 0; y < height; y++ {
		row := make([]int32, width)
		for x := range row {
			row[x] = int32(rng.Intn(255) - 128)
		}
		original[y] = row
	}

	buf, comp, err := cs.ExchangeLine(nil)
	for buf != nil {
		if err != nil {
			t.Fatalf("ExchangeLine: %v", err)
		}
		buf, comp, err = cs.ExchangeLine(fillWith(buf, original, comp, cs))
	}
	if err != nil {
		t.Fatalf("ExchangeLine final: %v", err)
	}

	tail, err := cs.Flush()
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	data := append(append([]byte(nil), headers...), tail...)

	cs2 := NewCodestream()
	if _, err := cs2.ReadHeaders(data); err != nil {
		t.Fatalf("ReadHeaders: %v", err)
	}
	if err := cs2.Create(data); err != nil {
		t.Fatalf("Create (decode): %v", err)
	}

	var gotRows [][]int32
	line, _, err := cs2.PullLine()
	for line != nil {
		if err != nil {
			t.Fatalf("PullLine: %v", err)
		}
		gotRows = append(gotRows, line)
		line, _, err = cs2.PullLine()
	}
	if err != nil {
		t.Fatalf("PullLine final: %v", err)
	}

	if len(gotRows) != height {
		t.Fatalf("expected %d rows, got %d", height, len(gotRows))
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if gotRows[y][x] != original[y][x] {
				t.Fatalf("mismatch at (%d,%d): got %d want %d", x, y, gotRows[y][x], original[y][x])
			}
		}
	}
}

func TestCodestreamEncodeDecodeRoundTripSubdividedPrecincts(t *testing.T) {
	width, height := 32, 32
	params := DefaultEncodeParams(width, height, 1, 8)
	params.DecompositionLevels = 1
	params.CodeBlockWidth, params.CodeBlockHeight = 8, 8
	params.PrecinctWidthExp, params.PrecinctHeightExp = 4, 4 // 16x16, splits resolution 1 into a 2x2 precinct grid
	params.Signed = true

	cs := NewCodestreamFromParams(params)
	headers, err := cs.WriteHeaders()
	if err != nil {
		t.Fatalf("WriteHeaders: %v", err)
	}
	if err := cs.Create(nil); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rng := rand.New(rand.NewSource(7))
	original := make([][]int32, height)
	for y := 0; y < height; y++ {
		row := make([]int32, width)
		for x := range row {
			row[x] = int32(rng.Intn(255) - 128)
		}
		original[y] = row
	}

	buf, comp, err := cs.ExchangeLine(nil)
	for buf != nil {
		if err != nil {
			t.Fatalf("ExchangeLine: %v", err)
		}
		buf, comp, err = cs.ExchangeLine(fillWith(buf, original, comp, cs))
	}
	if err != nil {
		t.Fatalf("ExchangeLine final: %v", err)
	}

	tail, err := cs.Flush()
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	data := append(append([]byte(nil), headers...), tail...)

	res := cs.tiles[0].Components[0].Resolutions[1]
	if len(res.Precincts) != 4 {
		t.Fatalf("expected resolution 1 to split into 4 precincts, got %d", len(res.Precincts))
	}

	cs2 := NewCodestream()
	if _, err := cs2.ReadHeaders(data); err != nil {
		t.Fatalf("ReadHeaders: %v", err)
	}
	if err := cs2.Create(data); err != nil {
		t.Fatalf("Create (decode): %v", err)
	}

	var gotRows [][]int32
	line, _, err := cs2.PullLine()
	for line != nil {
		if err != nil {
			t.Fatalf("PullLine: %v", err)
		}
		gotRows = append(gotRows, line)
		line, _, err = cs2.PullLine()
	}
	if err != nil {
		t.Fatalf("PullLine final: %v", err)
	}

	if len(gotRows) != height {
		t.Fatalf("expected %d rows, got %d", height, len(gotRows))
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if gotRows[y][x] != original[y][x] {
				t.Fatalf("mismatch at (%d,%d): got %d want %d", x, y, gotRows[y][x], original[y][x])
			}
		}
	}
}

func TestCodestreamEncodeDecodeRoundTripWithSOPAndEPH(t *testing.T) {
	width, height := 32, 32
	params := DefaultEncodeParams(width, height, 1, 8)
	params.DecompositionLevels = 1
	params.CodeBlockWidth, params.CodeBlockHeight = 8, 8
	params.PrecinctWidthExp, params.PrecinctHeightExp = 4, 4
	params.Signed = true
	params.UseSOP = true
	params.UseEPH = true

	cs := NewCodestreamFromParams(params)
	headers, err := cs.WriteHeaders()
	if err != nil {
		t.Fatalf("WriteHeaders: %v", err)
	}
	if err := cs.Create(nil); err != nil {
		t.Fatalf("Create: %v", err)
	}

	rng := rand.New(rand.NewSource(11))
	original := make([][]int32, height)
	for y := 0; y < height; y++ {
		row := make([]int32, width)
		for x := range row {
			row[x] = int32(rng.Intn(255) - 128)
		}
		original[y] = row
	}

	buf, comp, err := cs.ExchangeLine(nil)
	for buf != nil {
		if err != nil {
			t.Fatalf("ExchangeLine: %v", err)
		}
		buf, comp, err = cs.ExchangeLine(fillWith(buf, original, comp, cs))
	}
	if err != nil {
		t.Fatalf("ExchangeLine final: %v", err)
	}

	tail, err := cs.Flush()
	if err != nil {
		t.Fatalf("Flush: %v", err)
	}
	data := append(append([]byte(nil), headers...), tail...)

	cs2 := NewCodestream()
	if _, err := cs2.ReadHeaders(data); err != nil {
		t.Fatalf("ReadHeaders: %v", err)
	}
	if !cs2.COD.UsesSOP() || !cs2.COD.UsesEPH() {
		t.Fatalf("expected decoded COD to report SOP and EPH enabled")
	}
	if err := cs2.Create(data); err != nil {
		t.Fatalf("Create (decode): %v", err)
	}

	var gotRows [][]int32
	line, _, err := cs2.PullLine()
	for line != nil {
		if err != nil {
			t.Fatalf("PullLine: %v", err)
		}
		gotRows = append(gotRows, line)
		line, _, err = cs2.PullLine()
	}
	if err != nil {
		t.Fatalf("PullLine final: %v", err)
	}

	if len(gotRows) != height {
		t.Fatalf("expected %d rows, got %d", height, len(gotRows))
	}
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if gotRows[y][x] != original[y][x] {
				t.Fatalf("mismatch at (%d,%d): got %d want %d", x, y, gotRows[y][x], original[y][x])
			}
		}
	}
}

// fillWith is a test-only helper that fills the buffer ExchangeLine
// just handed back with the next unsent row, using the codestream's
// own cursor bookkeeping to find which row that is.
func fillWith(buf []int32, original [][]int32, comp int, cs *Codestream) []int32 {
	cur := cs.cursors[cs.cursor]
	row := original[cur.nextRow]
	copy(buf, row)
	return buf
}
