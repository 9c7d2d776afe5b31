package charlie

import (
	"math/bits"
	"testing"
)

func TestMasks_PrefixOfSetBits(t *testing.T) {
	for l := 0; l < NumLevels; l++ {
		m := Masks[l]
		if got := bits.OnesCount8(m); got != l {
			t.Fatalf("mask[%d]=%08b has %d bits set", l, m, got)
		}
		if want := uint8((1 << l) - 1); m != want {
			t.Fatalf("mask[%d]=%08b, want %08b", l, m, want)
		}
		if l > 0 && Masks[l-1]&^m != 0 {
			t.Fatalf("mask[%d] is not a superset of mask[%d]", l, l-1)
		}
	}
}

func TestTopology_AllOrderedPairs(t *testing.T) {
	seen := map[LED]bool{}
	for i, led := range Topology {
		if led.Anode == led.Cathode {
			t.Fatalf("LED%d: anode == cathode", i)
		}
		if bits.OnesCount8(uint8(led.Anode)) != 1 || bits.OnesCount8(uint8(led.Cathode)) != 1 {
			t.Fatalf("LED%d: pins must be single shared pins: %+v", i, led)
		}
		if led.Mask()&^AllPins != 0 {
			t.Fatalf("LED%d: pin outside shared set", i)
		}
		if seen[led] {
			t.Fatalf("LED%d: duplicate pair %+v", i, led)
		}
		seen[led] = true
	}
	pins := []PinMask{PinA, PinB, PinC}
	for _, a := range pins {
		for _, c := range pins {
			if a == c {
				continue
			}
			if !seen[LED{Anode: a, Cathode: c}] {
				t.Fatalf("missing pair %v->%v", a, c)
			}
		}
	}
	// Pairs share pins and swap polarity.
	for i := 0; i < NumLEDs; i += 2 {
		if Topology[i].Anode != Topology[i+1].Cathode || Topology[i].Cathode != Topology[i+1].Anode {
			t.Fatalf("LED%d/LED%d are not a mirrored pair", i, i+1)
		}
	}
}

func TestFrames_TriangularRamp(t *testing.T) {
	// 18 levels, each held three frames.
	want := []uint8{0, 0, 1, 2, 3, 4, 5, 6, 7, 8, 7, 6, 5, 4, 3, 2, 1, 0}
	for i, v := range Frames {
		if v > MaxLevel {
			t.Fatalf("frame %d out of range: %d", i, v)
		}
		if v != want[i/3] {
			t.Fatalf("frame %d = %d, want %d", i, v, want[i/3])
		}
	}
	if Frames[6] != 1 || Frames[7] != 1 || Frames[8] != 1 {
		t.Fatalf("frames 6..8 should hold level 1")
	}
}

func TestScanPeriodConstants(t *testing.T) {
	if SubFrameTicks != 9 || ScanPeriod != 54 {
		t.Fatalf("sub-frame=%d scan=%d", SubFrameTicks, ScanPeriod)
	}
	if AnimateEvery != 750 {
		t.Fatalf("AnimateEvery=%d", AnimateEvery)
	}
}
