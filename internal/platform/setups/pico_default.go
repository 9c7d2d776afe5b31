package setups

// PicoDefault drives the pendant from GP2..GP4 and streams telemetry on
// UART0 (GP0/GP1).
var PicoDefault = Plan{
	Name:   "pico_default",
	Pins:   [3]int{2, 3, 4},
	TickHz: 10000,
	UART:   &UARTPlan{ID: "uart0", TX: 0, RX: 1, Baud: 115200},
}

// PicoBare is the same wiring without the serial link.
var PicoBare = Plan{
	Name:   "pico_bare",
	Pins:   [3]int{2, 3, 4},
	TickHz: 10000,
}
