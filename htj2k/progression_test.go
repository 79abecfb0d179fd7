package htj2k

import "testing"

func fakePrecincts(c, r int) [][2]int {
	return [][2]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}
}

func TestPacketSequenceLRCPOrdersByResolutionThenComponent(t *testing.T) {
	ids := PacketSequence(ProgressionLRCP, 2, 3, fakePrecincts)
	if len(ids) != 2*3*4 {
		t.Fatalf("expected %d packets, got %d", 2*3*4, len(ids))
	}
	// first 4 entries: resolution 0, component 0
	for _, id := range ids[:4] {
		if id.Resolution != 0 || id.Component != 0 {
			t.Fatalf("expected resolution 0 component 0 first, got %+v", id)
		}
	}
	// next 4: resolution 0, component 1
	for _, id := range ids[4:8] {
		if id.Resolution != 0 || id.Component != 1 {
			t.Fatalf("expected resolution 0 component 1 next, got %+v", id)
		}
	}
}

func TestPacketSequenceCPRLOutermostIsComponent(t *testing.T) {
	ids := PacketSequence(ProgressionCPRL, 2, 2, fakePrecincts)
	for _, id := range ids[:len(ids)/2] {
		if id.Component != 0 {
			t.Fatalf("expected component 0 throughout first half, got %+v", id)
		}
	}
	for _, id := range ids[len(ids)/2:] {
		if id.Component != 1 {
			t.Fatalf("expected component 1 throughout second half, got %+v", id)
		}
	}
}

func TestPacketSequenceRPCLOutermostIsResolution(t *testing.T) {
	ids := PacketSequence(ProgressionRPCL, 2, 2, fakePrecincts)
	for _, id := range ids[:len(ids)/2] {
		if id.Resolution != 0 {
			t.Fatalf("expected resolution 0 throughout first half, got %+v", id)
		}
	}
}

func TestPacketSequencePreservesCount(t *testing.T) {
	for _, order := range []ProgressionOrder{ProgressionLRCP, ProgressionRLCP, ProgressionRPCL, ProgressionPCRL, ProgressionCPRL} {
		ids := PacketSequence(order, 3, 2, fakePrecincts)
		if len(ids) != 3*2*4 {
			t.Fatalf("%s: expected %d packets, got %d", order, 3*2*4, len(ids))
		}
	}
}
