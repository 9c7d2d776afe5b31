package charlie

// Port is the register-style view of the three shared pins.
//
// Writes take effect immediately. A pin whose direction bit is clear is an
// undriven input; its output bit is ignored by the LEDs.
type Port interface {
	SetDirection(m PinMask)
	SetOutput(m PinMask)
}

// drive lights led. Everything is released first so no intermediate state
// drives two LEDs.
func drive(p Port, led LED) {
	p.SetDirection(0)
	p.SetOutput(0)

	p.SetOutput(led.Anode)
	p.SetDirection(led.Mask())
}

// release leaves every pin undriven.
func release(p Port) {
	p.SetDirection(0)
	p.SetOutput(0)
}

// NopPort discards writes.
type NopPort struct{}

func (NopPort) SetDirection(PinMask) {}
func (NopPort) SetOutput(PinMask)    {}
