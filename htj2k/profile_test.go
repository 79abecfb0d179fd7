package htj2k

import "testing"

func broadcastConformantParams() EncodeParams {
	p := DefaultEncodeParams(64, 64, 3, 8)
	p.Signed = false
	p.CodeBlockWidth, p.CodeBlockHeight = 32, 32
	p.PrecinctWidthExp, p.PrecinctHeightExp = 7, 7
	p.Progression = ProgressionCPRL
	p.Profile = ProfileBroadcast
	return p
}

func TestValidateProfileAcceptsConformantBroadcastParams(t *testing.T) {
	p := broadcastConformantParams()
	cs := NewCodestreamFromParams(p)
	if err := ValidateProfile(cs.profile, cs.SIZ, cs.COD, true); err != nil {
		t.Fatalf("expected conformant BROADCAST params to validate, got: %v", err)
	}
}

func TestValidateProfileRejectsWrongCodeBlockSize(t *testing.T) {
	p := broadcastConformantParams()
	p.CodeBlockWidth, p.CodeBlockHeight = 64, 64
	cs := NewCodestreamFromParams(p)
	if err := ValidateProfile(cs.profile, cs.SIZ, cs.COD, true); err == nil {
		t.Fatalf("expected a non-conformant code-block size to be rejected")
	}
}

func TestValidateProfileRejectsMissingTLM(t *testing.T) {
	p := broadcastConformantParams()
	cs := NewCodestreamFromParams(p)
	if err := ValidateProfile(cs.profile, cs.SIZ, cs.COD, false); err == nil {
		t.Fatalf("expected a missing TLM marker to be rejected for BROADCAST")
	}
}

func TestValidateProfileNoneAlwaysPasses(t *testing.T) {
	p := DefaultEncodeParams(16, 16, 1, 8)
	cs := NewCodestreamFromParams(p)
	if err := ValidateProfile(ProfileNone, cs.SIZ, cs.COD, false); err != nil {
		t.Fatalf("ProfileNone must never reject: %v", err)
	}
}
