package wavelet

import "testing"

const dwt97Tolerance = 1e-6

func nearlyEqual64(a, b []float64, tol float64) (int, bool) {
	for i := range a {
		d := a[i] - b[i]
		if d < 0 {
			d = -d
		}
		if d > tol {
			return i, false
		}
	}
	return -1, true
}

func TestForward97InverseRoundTrip1D(t *testing.T) {
	for _, width := range []int{1, 2, 3, 4, 7, 8, 17} {
		for _, even := range []bool{true, false} {
			orig := make([]float64, width)
			for i := range orig {
				orig[i] = float64(i)*3.5 - 2.0
			}
			data := append([]float64(nil), orig...)

			Forward97_1D(data, even)
			Inverse97_1D(data, even)

			if i, ok := nearlyEqual64(orig, data, dwt97Tolerance); !ok {
				t.Fatalf("width=%d even=%v: mismatch at %d: got %v want %v", width, even, i, data[i], orig[i])
			}
		}
	}
}

func TestForward97InverseRoundTrip2D(t *testing.T) {
	width, height := 9, 6
	orig := make([]float64, width*height)
	for i := range orig {
		orig[i] = float64((i*13+5)%97) - 40.0
	}

	for _, evenRow := range []bool{true, false} {
		for _, evenCol := range []bool{true, false} {
			data := append([]float64(nil), orig...)
			Forward97_2D(data, width, height, width, evenRow, evenCol)
			Inverse97_2D(data, width, height, width, evenRow, evenCol)

			if i, ok := nearlyEqual64(orig, data, dwt97Tolerance); !ok {
				t.Fatalf("evenRow=%v evenCol=%v: mismatch at %d: got %v want %v", evenRow, evenCol, i, data[i], orig[i])
			}
		}
	}
}

func TestMultilevel97RoundTrip(t *testing.T) {
	width, height, levels := 16, 16, 3
	orig := make([]float64, width*height)
	for i := range orig {
		orig[i] = float64((i*31+11)%255) - 128.0
	}

	data := append([]float64(nil), orig...)
	ForwardMultilevel97(data, width, height, levels, 0, 0)
	InverseMultilevel97(data, width, height, levels, 0, 0)

	if i, ok := nearlyEqual64(orig, data, dwt97Tolerance); !ok {
		t.Fatalf("mismatch at %d: got %v want %v", i, data[i], orig[i])
	}
}

func TestMultilevel97RoundTripOddOrigin(t *testing.T) {
	width, height, levels := 15, 13, 2
	orig := make([]float64, width*height)
	for i := range orig {
		orig[i] = float64((i*17+3)%200) - 64.0
	}

	data := append([]float64(nil), orig...)
	ForwardMultilevel97(data, width, height, levels, 1, 1)
	InverseMultilevel97(data, width, height, levels, 1, 1)

	if i, ok := nearlyEqual64(orig, data, dwt97Tolerance); !ok {
		t.Fatalf("mismatch at %d: got %v want %v", i, data[i], orig[i])
	}
}
