package charlie

import "pendant-go/x/mathx"

// Scanner multiplexes the LEDs, one tick at a time.
type Scanner struct {
	port Port
	led  uint8 // 0..NumLEDs-1
	bit  uint8 // 0..SubFrameTicks-1
}

// NewScanner returns a scanner with its cursor at (0,0).
func NewScanner(p Port) *Scanner {
	if p == nil {
		p = NopPort{}
	}
	return &Scanner{port: p}
}

// Cursor returns the LED and sub-frame bit the next Step will handle.
func (s *Scanner) Cursor() (led, bit uint8) { return s.led, s.bit }

// Lit reports whether led is on during sub-frame bit at the given level.
// Levels above MaxLevel saturate.
func Lit(level, bit uint8) bool {
	mask := Masks[mathx.Clamp(level, 0, MaxLevel)]
	return bit < 8 && mask&(1<<bit) != 0
}

// Step drives the LED under the cursor (or nothing) and advances the cursor.
// It reports whether an LED was lit.
func (s *Scanner) Step(levels *Levels) bool {
	on := Lit(levels[s.led], s.bit)
	if on {
		drive(s.port, Topology[s.led])
	} else {
		release(s.port)
	}

	s.bit++
	if s.bit >= SubFrameTicks {
		s.bit = 0
		s.led++
		if s.led >= NumLEDs {
			s.led = 0
		}
	}
	return on
}

// Off releases every pin without moving the cursor.
func (s *Scanner) Off() { release(s.port) }
