// Package setups lists the boards the pendant firmware can be built for.
// A setup is wiring and operating parameters only; no drivers are touched.
package setups

import "pendant-go/errcode"

// Plan wires the charlieplex and the telemetry link for one board.
type Plan struct {
	Name string
	// Pins are the GPIO numbers of shared pins A, B and C.
	Pins   [3]int
	TickHz uint32
	// UART is nil when the board has no telemetry link.
	UART *UARTPlan
}

type UARTPlan struct {
	ID   string // "uart0" or "uart1"
	TX   int    // GPIO number
	RX   int    // GPIO number
	Baud uint32
}

var all = []Plan{PicoDefault, PicoBare}

// Lookup finds a plan by name.
func Lookup(name string) (Plan, error) {
	for _, p := range all {
		if p.Name == name {
			return p, nil
		}
	}
	return Plan{}, &errcode.E{C: errcode.UnknownBoard, Op: "setups.lookup", Msg: name}
}

// Names lists the known plans.
func Names() []string {
	out := make([]string, 0, len(all))
	for _, p := range all {
		out = append(out, p.Name)
	}
	return out
}
