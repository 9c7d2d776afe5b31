// Package platform implements charlie.Port on real and simulated pins and
// reads the reset cause on each target.
package platform

import (
	"math/bits"

	"pendant-go/charlie"
	"pendant-go/errcode"
)

// State is what one shared pin is doing.
type State int8

const (
	HiZ State = iota // input, floating
	Low
	High
)

func (s State) String() string {
	switch s {
	case Low:
		return "low"
	case High:
		return "high"
	default:
		return "hi-z"
	}
}

var pinBits = [charlie.NumPins]charlie.PinMask{charlie.PinA, charlie.PinB, charlie.PinC}

// PinState derives the state of pin i from the direction and output masks.
func PinState(dir, out charlie.PinMask, i int) State {
	b := pinBits[i]
	switch {
	case dir&b == 0:
		return HiZ
	case out&b != 0:
		return High
	default:
		return Low
	}
}

// shadow keeps the register pair and the state last applied to each pin,
// so a port only touches pins whose state changed.
type shadow struct {
	dir, out charlie.PinMask
	cur      [charlie.NumPins]State
	primed   bool
}

func (s *shadow) apply(set func(i int, st State)) {
	for i := range s.cur {
		st := PinState(s.dir, s.out, i)
		if s.primed && st == s.cur[i] {
			continue
		}
		s.cur[i] = st
		set(i, st)
	}
	s.primed = true
}

// Lit returns the LED a register pair lights, or -1.
func Lit(dir, out charlie.PinMask) int {
	dir &= charlie.AllPins
	if bits.OnesCount8(uint8(dir)) != 2 {
		return -1
	}
	a, c := dir&out, dir&^out
	for i, l := range charlie.Topology {
		if l.Anode == a && l.Cathode == c {
			return i
		}
	}
	return -1
}

// Valid reports whether a register pair is safe: at most one LED's pins
// are driven and at most one pin is high.
func Valid(dir, out charlie.PinMask) bool {
	if dir&^charlie.AllPins != 0 {
		return false
	}
	return bits.OnesCount8(uint8(dir)) <= 2 && bits.OnesCount8(uint8(dir&out)) <= 1
}

// CheckPins rejects out-of-range or repeated GPIO numbers.
func CheckPins(pins [charlie.NumPins]int, max int) error {
	for i, p := range pins {
		if p < 0 || p > max {
			return &errcode.E{C: errcode.UnknownPin, Op: "platform.pins", Msg: "pin out of range"}
		}
		for _, q := range pins[:i] {
			if p == q {
				return &errcode.E{C: errcode.PinInUse, Op: "platform.pins", Msg: "pin listed twice"}
			}
		}
	}
	return nil
}
