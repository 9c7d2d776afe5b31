//go:build rp2040 || rp2350

// Command pendant-selftest checks the bus, the engine and the wire codec on
// the board itself, then lights the charlieplex one LED at a time.
package main

import (
	"bytes"
	"machine"
	"time"

	"pendant-go/bus"
	"pendant-go/charlie"
	"pendant-go/internal/platform"
	"pendant-go/internal/platform/setups"
	"pendant-go/wire"
	"pendant-go/x/conv"
)

func expectOneOf(sub *bus.Subscription, want string, timeout time.Duration) bool {
	select {
	case got := <-sub.Channel():
		s, ok := got.Payload.(string)
		return ok && s == want
	case <-time.After(timeout):
		return false
	}
}

func expectNoMessage(sub *bus.Subscription, timeout time.Duration) bool {
	select {
	case <-sub.Channel():
		return false
	case <-time.After(timeout):
		return true
	}
}

func TestBusRetained() bool {
	b := bus.NewBus(4)
	c := b.NewConnection()
	c.Publish(c.NewMessage(bus.T("pendant", "state"), "running", true))
	return expectOneOf(c.Subscribe(bus.T("pendant", "+")), "running", 100*time.Millisecond)
}

func TestBusRetainedClear() bool {
	b := bus.NewBus(4)
	c := b.NewConnection()
	c.Publish(c.NewMessage(bus.T("pendant", "state"), "running", true))
	c.Publish(c.NewMessage(bus.T("pendant", "state"), nil, true))
	return expectNoMessage(c.Subscribe(bus.T("pendant", "#")), 60*time.Millisecond)
}

// TestEngineSafe runs two pulse periods on a memory port and checks that no
// register state ever drives two pins high.
func TestEngineSafe() bool {
	m := platform.NewMemPort(0)
	e := charlie.NewEngine(m, charlie.ProgramPulse)
	for i := 0; i < 2*charlie.NumFrames*charlie.AnimateEvery; i++ {
		e.Tick()
	}
	return m.Violations() == 0 && e.Animations() == 2*charlie.NumFrames
}

func TestWireRoundTrip() bool {
	var buf bytes.Buffer
	want := wire.FramePacket{Seq: 7, Index: 6, Levels: [6]uint8{1, 1, 1, 1, 1, 1}}
	if err := wire.WritePacket(&buf, want); err != nil {
		return false
	}
	got, err := wire.ReadPacket(&buf)
	return err == nil && got == want
}

type testFn struct {
	name string
	fn   func() bool
}

func main() {
	// Give the USB CDC time to enumerate so logs show up reliably.
	time.Sleep(250 * time.Millisecond)

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	led.High()

	tests := []testFn{
		{"TestBusRetained", TestBusRetained},
		{"TestBusRetainedClear", TestBusRetainedClear},
		{"TestEngineSafe", TestEngineSafe},
		{"TestWireRoundTrip", TestWireRoundTrip},
	}

	passed, failed := 0, 0
	println("== pendant self-test starting ==")
	for _, tc := range tests {
		if tc.fn() {
			println("[PASS]", tc.name)
			passed++
		} else {
			println("[FAIL]", tc.name)
			failed++
		}
		time.Sleep(10 * time.Millisecond)
	}
	println(conv.Line("== done:", "passed", passed, "failed", failed))

	// Walk the LEDs at full brightness so the wiring can be checked by eye.
	port, err := platform.NewRP2Port(setups.Selected.Pins)
	if err != nil {
		println("[FAIL] pins:", err.Error())
		failed++
	}

	for i := 0; ; i = (i + 1) % charlie.NumLEDs {
		if port != nil {
			l := charlie.Topology[i]
			port.SetDirection(0)
			port.SetOutput(l.Anode)
			port.SetDirection(l.Mask())
		}
		if failed == 0 {
			led.High()
			time.Sleep(500 * time.Millisecond)
		} else {
			led.High()
			time.Sleep(250 * time.Millisecond)
			led.Low()
			time.Sleep(250 * time.Millisecond)
		}
	}
}
