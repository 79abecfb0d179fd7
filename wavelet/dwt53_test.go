package wavelet

import "testing"

func TestForward53InverseRoundTrip1D(t *testing.T) {
	for _, width := range []int{1, 2, 3, 4, 7, 8, 17} {
		for _, even := range []bool{true, false} {
			orig := make([]int32, width)
			for i := range orig {
				orig[i] = int32(i*7 - 3)
			}
			data := append([]int32(nil), orig...)

			Forward53_1D(data, even)
			Inverse53_1D(data, even)

			for i := range orig {
				if data[i] != orig[i] {
					t.Fatalf("width=%d even=%v: mismatch at %d: got %d want %d", width, even, i, data[i], orig[i])
				}
			}
		}
	}
}

func TestForward53InverseRoundTrip2D(t *testing.T) {
	width, height := 9, 6
	orig := make([]int32, width*height)
	for i := range orig {
		orig[i] = int32((i*13 + 5) % 97)
	}

	for _, evenRow := range []bool{true, false} {
		for _, evenCol := range []bool{true, false} {
			data := append([]int32(nil), orig...)
			Forward53_2D(data, width, height, width, evenRow, evenCol)
			Inverse53_2D(data, width, height, width, evenRow, evenCol)

			for i := range orig {
				if data[i] != orig[i] {
					t.Fatalf("evenRow=%v evenCol=%v: mismatch at %d: got %d want %d", evenRow, evenCol, i, data[i], orig[i])
				}
			}
		}
	}
}

func TestMultilevel53RoundTrip(t *testing.T) {
	width, height, levels := 16, 16, 3
	orig := make([]int32, width*height)
	for i := range orig {
		orig[i] = int32((i*31 + 11) % 255)
	}

	data := append([]int32(nil), orig...)
	ForwardMultilevel53(data, width, height, levels, 0, 0)
	InverseMultilevel53(data, width, height, levels, 0, 0)

	for i := range orig {
		if data[i] != orig[i] {
			t.Fatalf("mismatch at %d: got %d want %d", i, data[i], orig[i])
		}
	}
}

func TestMultilevel53RoundTripOddOrigin(t *testing.T) {
	width, height, levels := 15, 13, 2
	orig := make([]int32, width*height)
	for i := range orig {
		orig[i] = int32((i*17 + 3) % 200)
	}

	data := append([]int32(nil), orig...)
	ForwardMultilevel53(data, width, height, levels, 1, 1)
	InverseMultilevel53(data, width, height, levels, 1, 1)

	for i := range orig {
		if data[i] != orig[i] {
			t.Fatalf("mismatch at %d: got %d want %d", i, data[i], orig[i])
		}
	}
}
