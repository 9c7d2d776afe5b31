//go:build rp2040 || rp2350

package platform

import (
	"io"
	"machine"

	uartx "github.com/jangala-dev/tinygo-uartx/uartx"

	"pendant-go/errcode"
	"pendant-go/internal/platform/setups"
)

// OpenUART configures the telemetry UART of a plan.
func OpenUART(p *setups.UARTPlan) (io.Writer, error) {
	if p == nil {
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "platform.uart", Msg: "no uart in setup"}
	}
	var hw *uartx.UART
	switch p.ID {
	case "uart0":
		hw = uartx.UART0
	case "uart1":
		hw = uartx.UART1
	default:
		return nil, &errcode.E{C: errcode.UnknownBus, Op: "platform.uart", Msg: p.ID}
	}
	if err := hw.Configure(uartx.UARTConfig{
		BaudRate: p.Baud,
		TX:       machine.Pin(p.TX),
		RX:       machine.Pin(p.RX),
	}); err != nil {
		return nil, errcode.Wrap(errcode.Error, "platform.uart", err)
	}
	return hw, nil
}
