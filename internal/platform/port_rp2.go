//go:build rp2040 || rp2350

package platform

import (
	"machine"

	"pendant-go/charlie"
)

const maxGPIO = 29

// RP2Port drives the shared pins with machine.Pin. It is called from the
// scan goroutine only.
type RP2Port struct {
	pins [charlie.NumPins]machine.Pin
	reg  shadow
}

// NewRP2Port takes GPIO numbers for pins A, B and C. Every pin starts
// floating.
func NewRP2Port(gpio [charlie.NumPins]int) (*RP2Port, error) {
	if err := CheckPins(gpio, maxGPIO); err != nil {
		return nil, err
	}
	p := &RP2Port{}
	for i, n := range gpio {
		p.pins[i] = machine.Pin(n)
	}
	p.reg.apply(p.set)
	return p, nil
}

func (p *RP2Port) SetDirection(m charlie.PinMask) {
	p.reg.dir = m
	p.reg.apply(p.set)
}

func (p *RP2Port) SetOutput(m charlie.PinMask) {
	p.reg.out = m
	p.reg.apply(p.set)
}

func (p *RP2Port) set(i int, st State) {
	pin := p.pins[i]
	switch st {
	case HiZ:
		pin.Configure(machine.PinConfig{Mode: machine.PinInput})
	case High:
		pin.Set(true)
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	default:
		pin.Set(false)
		pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}
}
