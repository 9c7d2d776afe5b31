//go:build rp2040 || rp2350

package main

import (
	"context"
	"time"

	"pendant-go/bus"
	"pendant-go/charlie"
	"pendant-go/internal/platform"
	"pendant-go/internal/platform/setups"
	"pendant-go/services/scan"
	"pendant-go/services/telemetry"
	"pendant-go/types"
	"pendant-go/x/conv"
)

// Nothing survives a RUN-pin reset on the RP2 family, so the previous
// program always reads as 0.
const prevProgram = 0

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(1500 * time.Millisecond)

	plan := setups.Selected
	cause := platform.ResetCause()
	program := charlie.SelectProgram(prevProgram, cause)
	println(conv.Line("[main] boot", "setup", plan.Name, "reset", cause.String(), "program", program))

	port, err := platform.NewRP2Port(plan.Pins)
	if err != nil {
		println("[main] pins:", err.Error())
		halt()
	}
	eng := charlie.NewEngine(port, program)

	ctx := context.Background()
	b := bus.NewBus(4)

	if plan.UART != nil {
		w, err := platform.OpenUART(plan.UART)
		if err != nil {
			println("[main] telemetry disabled:", err.Error())
		} else {
			tel := telemetry.New(w)
			_ = tel.Start(ctx, b.NewConnection())
			tel.Log(conv.Line("boot", "reset", cause.String(), "program", program))
		}
	}

	svc := scan.New(eng, scan.Config{TickHz: plan.TickHz, Reset: cause})
	_ = svc.Start(ctx, b.NewConnection())

	// Stats every 128 animation steps (about 10 s at 10 kHz).
	sub := b.NewConnection().Subscribe(scan.TopicFrame)
	for m := range sub.Channel() {
		f, ok := m.Payload.(types.Frame)
		if !ok || f.Seq%128 != 0 {
			continue
		}
		println(conv.Line("[main] stats",
			"ticks", f.Ticks,
			"frames", f.Seq,
			"dropped", svc.Dropped()))
	}
	halt()
}

func halt() {
	for {
		time.Sleep(time.Hour)
	}
}
