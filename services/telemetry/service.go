// Package telemetry forwards pendant bus traffic to a byte sink as wire
// packets.
package telemetry

import (
	"context"
	"io"
	"sync"
	"sync/atomic"

	"pendant-go/bus"
	"pendant-go/services/scan"
	"pendant-go/types"
	"pendant-go/wire"
)

type Service struct {
	mu  sync.Mutex
	w   io.Writer
	buf []byte

	sent  atomic.Uint32
	errs  atomic.Uint32
	ready chan struct{}
}

// New returns a service writing to w. On the MCU w is the telemetry UART.
func New(w io.Writer) *Service {
	return &Service{w: w, buf: make([]byte, 0, 64), ready: make(chan struct{})}
}

// Ready is closed once Run has subscribed.
func (s *Service) Ready() <-chan struct{} { return s.ready }

// Sent returns the packets written.
func (s *Service) Sent() uint32 { return s.sent.Load() }

// Errors returns the failed writes.
func (s *Service) Errors() uint32 { return s.errs.Load() }

// Log sends a free-form line. Safe to call from any goroutine.
func (s *Service) Log(msg string) {
	if len(msg) > wire.MaxMessage {
		msg = msg[:wire.MaxMessage]
	}
	s.send(wire.LogPacket{Message: msg})
}

func (s *Service) send(p wire.Packet) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, err := wire.AppendPacket(s.buf[:0], p)
	if err == nil {
		s.buf = b[:0]
		_, err = s.w.Write(b)
	}
	if err != nil {
		if s.errs.Add(1) == 1 {
			println("[telemetry] write failed:", err.Error())
		}
		return
	}
	s.sent.Add(1)
}

// Start launches Run on its own goroutine.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.Run(ctx, conn)
	return nil
}

// Run waits for the retained info and sends it as a hello, then forwards
// every frame until ctx is cancelled. Frames published while waiting are
// queued and follow the hello.
func (s *Service) Run(ctx context.Context, conn *bus.Connection) {
	frameSub := conn.Subscribe(scan.TopicFrame)
	defer conn.Unsubscribe(frameSub)
	infoSub := conn.Subscribe(scan.TopicInfo)
	close(s.ready)

	info, ok := waitInfo(ctx, infoSub)
	conn.Unsubscribe(infoSub)
	if !ok {
		return
	}
	s.send(wire.HelloPacket{
		Program: info.Program,
		TickHz:  info.TickHz,
		NumLEDs: info.NumLEDs,
	})

	for {
		select {
		case <-ctx.Done():
			println("[telemetry] stopping, sent", s.Sent(), "errors", s.Errors())
			return
		case m, ok := <-frameSub.Channel():
			if !ok {
				return
			}
			if f, ok := m.Payload.(types.Frame); ok {
				s.send(wire.FramePacket{Seq: f.Seq, Index: f.Index, Levels: f.Levels})
			}
		}
	}
}

func waitInfo(ctx context.Context, sub *bus.Subscription) (types.ScanInfo, bool) {
	for {
		select {
		case <-ctx.Done():
			return types.ScanInfo{}, false
		case m, ok := <-sub.Channel():
			if !ok {
				return types.ScanInfo{}, false
			}
			if info, ok := m.Payload.(types.ScanInfo); ok {
				return info, true
			}
		}
	}
}
