package wavelet

// LLDimensions returns the LL subband dimensions after a multilevel
// decomposition of a width x height signal whose origin sits at reference
// coordinate (x0,y0). Parity of the origin decides whether each axis
// starts its split on an even or odd sample, which is why it must be
// threaded through every level rather than assumed to be (0,0).
func LLDimensions(width, height, levels, x0, y0 int) (llWidth, llHeight int) {
	if width <= 0 || height <= 0 {
		return 0, 0
	}
	if levels <= 0 {
		return width, height
	}

	curWidth, curHeight, curX0, curY0 := width, height, x0, y0
	for level := 0; level < levels; level++ {
		if curWidth <= 1 && curHeight <= 1 {
			break
		}
		curWidth, curHeight, curX0, curY0 = NextLowpassWindow(curWidth, curHeight, curX0, curY0)
	}
	return curWidth, curHeight
}

// NextLowpassWindow computes the dimensions and origin of the LL subband
// produced by splitting one level of a width x height window whose
// top-left reference coordinate is (x0,y0).
func NextLowpassWindow(width, height, x0, y0 int) (nextWidth, nextHeight, nextX0, nextY0 int) {
	evenRow := isEven(x0)
	evenCol := isEven(y0)

	nextWidth = splitLengths(width, evenRow)
	nextHeight = splitLengths(height, evenCol)
	nextX0 = nextCoord(x0)
	nextY0 = nextCoord(y0)
	return
}
