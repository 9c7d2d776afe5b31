// Package charlie drives six LEDs charlieplexed on three shared pins.
//
// One Engine.Tick lights at most one LED. Brightness comes from how many
// ticks of a sub-frame the LED is lit, and a slower pulse animation rewrites
// the brightness levels every AnimateEvery ticks.
package charlie

// -----------------------------------------------------------------------------
// Pins and topology
// -----------------------------------------------------------------------------

// PinMask is a bit set over the three shared pins, laid out like the
// direction and output registers of the original port.
type PinMask uint8

const (
	PinA PinMask = 0x01
	PinB PinMask = 0x02
	PinC PinMask = 0x04

	// AllPins covers every shared pin.
	AllPins = PinA | PinB | PinC
)

// LED is one anode/cathode pair. Current flows anode -> cathode.
type LED struct {
	Anode   PinMask
	Cathode PinMask
}

// Mask returns the pins that must be in output mode to light the LED.
func (l LED) Mask() PinMask { return l.Anode | l.Cathode }

const (
	NumLEDs = 6
	NumPins = 3
)

// Topology lists every LED by index. Each unordered pin pair is used twice
// with anode and cathode swapped.
var Topology = [NumLEDs]LED{
	{Anode: PinA, Cathode: PinB}, // LED0
	{Anode: PinB, Cathode: PinA}, // LED1
	{Anode: PinA, Cathode: PinC}, // LED2
	{Anode: PinC, Cathode: PinA}, // LED3
	{Anode: PinB, Cathode: PinC}, // LED4
	{Anode: PinC, Cathode: PinB}, // LED5
}

// -----------------------------------------------------------------------------
// Brightness
// -----------------------------------------------------------------------------

const (
	NumLevels = 9
	MaxLevel  = NumLevels - 1

	// SubFrameTicks is the number of ticks spent on one LED. It follows the
	// mask table length, so bit 8 (never set) gives every LED one dark tick.
	SubFrameTicks = NumLevels
	// ScanPeriod is the number of ticks for a full pass over all LEDs.
	ScanPeriod = NumLEDs * SubFrameTicks
)

// Masks maps a brightness level L to a mask with the low L bits set.
var Masks = [NumLevels]uint8{
	0b00000000,
	0b00000001,
	0b00000011,
	0b00000111,
	0b00001111,
	0b00011111,
	0b00111111,
	0b01111111,
	0b11111111,
}

// Levels holds one brightness level (0..MaxLevel) per LED.
type Levels [NumLEDs]uint8

// -----------------------------------------------------------------------------
// Animation
// -----------------------------------------------------------------------------

const (
	// AnimateEvery is the number of scanner ticks between animator runs.
	AnimateEvery = 15 * 50
	NumFrames    = 54

	// DefaultTickHz is the reference tick rate (about 185 Hz full scan).
	DefaultTickHz = 10000
)

// Frames is one period of the pulse: 0 up to 8 and back, each level held
// for three frames.
var Frames = [NumFrames]uint8{
	0, 0, 0,
	0, 0, 0,
	1, 1, 1,
	2, 2, 2,
	3, 3, 3,
	4, 4, 4,
	5, 5, 5,
	6, 6, 6,
	7, 7, 7,
	8, 8, 8,
	7, 7, 7,
	6, 6, 6,
	5, 5, 5,
	4, 4, 4,
	3, 3, 3,
	2, 2, 2,
	1, 1, 1,
	0, 0, 0,
}
