package htj2k

import "sort"

// packetID names one (layer, resolution, component, precinct) tuple
// in a tile's packet sequence, Sec. 4.7. This single-layer core always
// has Layer == 0.
type packetID struct {
	Layer      int
	Resolution int
	Component  int
	PrecinctX  int
	PrecinctY  int
}

// PacketSequence returns every packet identifier for a tile in the
// order prescribed by the given progression order. Only one layer is
// supported, so LRCP and RLCP produce the same sequence; the
// remaining three orders choose which axis varies slowest.
func PacketSequence(order ProgressionOrder, numComponents, numResolutions int, precinctsPerComponentResolution func(component, resolution int) [][2]int) []packetID {
	var ids []packetID
	add := func(layer, resolution, component int, precincts [][2]int) {
		for _, xy := range precincts {
			ids = append(ids, packetID{Layer: layer, Resolution: resolution, Component: component, PrecinctX: xy[0], PrecinctY: xy[1]})
		}
	}

	switch order {
	case ProgressionLRCP, ProgressionRLCP:
		for r := 0; r < numResolutions; r++ {
			for c := 0; c < numComponents; c++ {
				add(0, r, c, precinctsPerComponentResolution(c, r))
			}
		}
	case ProgressionRPCL:
		for r := 0; r < numResolutions; r++ {
			for _, p := range allPrecinctPositions(numComponents, r, precinctsPerComponentResolution) {
				for c := 0; c < numComponents; c++ {
					if containsPrecinct(precinctsPerComponentResolution(c, r), p) {
						ids = append(ids, packetID{Layer: 0, Resolution: r, Component: c, PrecinctX: p[0], PrecinctY: p[1]})
					}
				}
			}
		}
	case ProgressionPCRL:
		maxRes := numResolutions
		for _, p := range allPrecinctPositionsAnyRes(numComponents, maxRes, precinctsPerComponentResolution) {
			for c := 0; c < numComponents; c++ {
				for r := 0; r < numResolutions; r++ {
					if containsPrecinct(precinctsPerComponentResolution(c, r), p) {
						ids = append(ids, packetID{Layer: 0, Resolution: r, Component: c, PrecinctX: p[0], PrecinctY: p[1]})
					}
				}
			}
		}
	case ProgressionCPRL:
		for c := 0; c < numComponents; c++ {
			for _, p := range allPrecinctPositionsForComponent(c, numResolutions, precinctsPerComponentResolution) {
				for r := 0; r < numResolutions; r++ {
					if containsPrecinct(precinctsPerComponentResolution(c, r), p) {
						ids = append(ids, packetID{Layer: 0, Resolution: r, Component: c, PrecinctX: p[0], PrecinctY: p[1]})
					}
				}
			}
		}
	}
	return ids
}

// precinct ordering within a (component, resolution) is by (y, x) in
// reference coordinates, Sec. 4.7; ties in PCRL break by component
// then resolution, which falls out naturally from the loop nesting
// above since precinct position is the outermost key there.
func sortByYX(positions [][2]int) {
	sort.Slice(positions, func(i, j int) bool {
		if positions[i][1] != positions[j][1] {
			return positions[i][1] < positions[j][1]
		}
		return positions[i][0] < positions[j][0]
	})
}

func allPrecinctPositions(numComponents, resolution int, get func(c, r int) [][2]int) [][2]int {
	seen := map[[2]int]bool{}
	var out [][2]int
	for c := 0; c < numComponents; c++ {
		for _, p := range get(c, resolution) {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	sortByYX(out)
	return out
}

func allPrecinctPositionsAnyRes(numComponents, numResolutions int, get func(c, r int) [][2]int) [][2]int {
	seen := map[[2]int]bool{}
	var out [][2]int
	for c := 0; c < numComponents; c++ {
		for r := 0; r < numResolutions; r++ {
			for _, p := range get(c, r) {
				if !seen[p] {
					seen[p] = true
					out = append(out, p)
				}
			}
		}
	}
	sortByYX(out)
	return out
}

func allPrecinctPositionsForComponent(component, numResolutions int, get func(c, r int) [][2]int) [][2]int {
	seen := map[[2]int]bool{}
	var out [][2]int
	for r := 0; r < numResolutions; r++ {
		for _, p := range get(component, r) {
			if !seen[p] {
				seen[p] = true
				out = append(out, p)
			}
		}
	}
	sortByYX(out)
	return out
}

func containsPrecinct(positions [][2]int, p [2]int) bool {
	for _, q := range positions {
		if q == p {
			return true
		}
	}
	return false
}
