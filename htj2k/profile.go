package htj2k

import "fmt"

// Profile selects a broadcast-application conformance profile that is
// checked at header-write time, Sec. 6.3.
type Profile int

const (
	ProfileNone Profile = iota
	ProfileBroadcast
	ProfileIMF
)

func (p Profile) String() string {
	switch p {
	case ProfileBroadcast:
		return "BROADCAST"
	case ProfileIMF:
		return "IMF"
	default:
		return "none"
	}
}

// profileLimits captures the fixed parameters a profile pins down.
type profileLimits struct {
	maxComponents   int
	minBitDepth     int
	maxBitDepth     int
	codeBlockWidth  int
	codeBlockHeight int
	precinctSizes   []PrecinctSize
	progression     ProgressionOrder
	requireTLM      bool
	requirePerTile  bool // one tile-part per component per tile
}

func limitsFor(p Profile) (profileLimits, bool) {
	switch p {
	case ProfileBroadcast:
		return profileLimits{
			maxComponents: 4, minBitDepth: 8, maxBitDepth: 12,
			codeBlockWidth: 32, codeBlockHeight: 32,
			precinctSizes: []PrecinctSize{{PPx: 7, PPy: 7}, {PPx: 8, PPy: 8}, {PPx: 8, PPy: 8}},
			progression:   ProgressionCPRL,
			requireTLM:    true, requirePerTile: true,
		}, true
	case ProfileIMF:
		return profileLimits{
			maxComponents: 3, minBitDepth: 8, maxBitDepth: 16,
			codeBlockWidth: 32, codeBlockHeight: 32,
			precinctSizes: []PrecinctSize{{PPx: 7, PPy: 7}, {PPx: 8, PPy: 8}, {PPx: 8, PPy: 8}},
			progression:   ProgressionCPRL,
			requireTLM:    true, requirePerTile: true,
		}, true
	default:
		return profileLimits{}, false
	}
}

// ValidateProfile checks siz, cod and whether a TLM segment will be
// present against the profile's fixed parameters, returning an
// ErrKindInvalidParameter Error describing the first violation found.
// p == ProfileNone always passes.
func ValidateProfile(p Profile, siz *SIZSegment, cod *CODSegment, tlmPresent bool) error {
	limits, ok := limitsFor(p)
	if !ok {
		return nil
	}

	if siz.XOsiz != 0 || siz.YOsiz != 0 || siz.XTOsiz != 0 || siz.YTOsiz != 0 {
		return profileErr(p, "image and tile offsets must be zero")
	}
	if len(siz.Components) > limits.maxComponents {
		return profileErr(p, fmt.Sprintf("component count %d exceeds profile limit %d", len(siz.Components), limits.maxComponents))
	}
	for i, c := range siz.Components {
		if c.IsSigned() {
			return profileErr(p, fmt.Sprintf("component %d must be unsigned", i))
		}
		bd := c.BitDepth()
		if bd < limits.minBitDepth || bd > limits.maxBitDepth {
			return profileErr(p, fmt.Sprintf("component %d bit depth %d outside [%d,%d]", i, bd, limits.minBitDepth, limits.maxBitDepth))
		}
	}

	cbw, cbh := cod.CodeBlockSize()
	if cbw != limits.codeBlockWidth || cbh != limits.codeBlockHeight {
		return profileErr(p, fmt.Sprintf("code-block size %dx%d does not match profile requirement %dx%d", cbw, cbh, limits.codeBlockWidth, limits.codeBlockHeight))
	}
	if cod.Progression != limits.progression {
		return profileErr(p, fmt.Sprintf("progression order %s does not match profile requirement %s", cod.Progression, limits.progression))
	}
	if !cod.HasExplicitPrecincts() {
		return profileErr(p, "profile requires explicit precinct sizes")
	}
	if limits.requireTLM && !tlmPresent {
		return profileErr(p, "profile requires a TLM marker segment")
	}
	return nil
}

func profileErr(p Profile, msg string) error {
	return newError(ErrKindInvalidParameter, 0, -1, fmt.Sprintf("%s profile violation: %s", p, msg), nil)
}
