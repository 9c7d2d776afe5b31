//go:build !rp2040 && !rp2350

package platform

import (
	"sync"

	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"

	"pendant-go/charlie"
	"pendant-go/errcode"
)

// PeriphPort drives the shared pins through periph.io, for a pendant wired
// to a Linux board's header.
type PeriphPort struct {
	pins [charlie.NumPins]gpio.PinIO

	mu  sync.Mutex
	reg shadow
	err error
}

// NewPeriphPort takes pins A, B and C. Every pin starts floating.
func NewPeriphPort(pins [charlie.NumPins]gpio.PinIO) (*PeriphPort, error) {
	for i, p := range pins {
		if p == nil || p == gpio.INVALID {
			return nil, errors.Wrapf(errcode.UnknownPin, "pin %c", 'A'+i)
		}
	}
	p := &PeriphPort{pins: pins}
	p.mu.Lock()
	p.reg.apply(p.set)
	p.mu.Unlock()
	if err := p.Err(); err != nil {
		return nil, err
	}
	return p, nil
}

// OpenPeriphPort resolves pin names with gpioreg. host.Init must have run.
func OpenPeriphPort(names [charlie.NumPins]string) (*PeriphPort, error) {
	var pins [charlie.NumPins]gpio.PinIO
	for i, n := range names {
		p := gpioreg.ByName(n)
		if p == nil {
			return nil, errors.Wrapf(errcode.UnknownPin, "gpio %q", n)
		}
		pins[i] = p
	}
	return NewPeriphPort(pins)
}

func (p *PeriphPort) SetDirection(m charlie.PinMask) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reg.dir = m
	p.reg.apply(p.set)
}

func (p *PeriphPort) SetOutput(m charlie.PinMask) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.reg.out = m
	p.reg.apply(p.set)
}

func (p *PeriphPort) set(i int, st State) {
	var err error
	switch st {
	case HiZ:
		err = p.pins[i].In(gpio.PullNoChange, gpio.NoEdge)
	case High:
		err = p.pins[i].Out(gpio.High)
	default:
		err = p.pins[i].Out(gpio.Low)
	}
	if err != nil && p.err == nil {
		p.err = errors.Wrapf(err, "pin %s -> %s", p.pins[i], st)
	}
}

// Err returns the first pin error. The port keeps going after one.
func (p *PeriphPort) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Halt floats every pin.
func (p *PeriphPort) Halt() error {
	p.SetDirection(0)
	p.SetOutput(0)
	return p.Err()
}
