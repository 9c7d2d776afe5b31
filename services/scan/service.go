// Package scan owns the pendant engine and calls its Tick at the
// configured rate from a single goroutine.
package scan

import (
	"context"
	"sync/atomic"
	"time"

	"pendant-go/bus"
	"pendant-go/charlie"
	"pendant-go/types"
	"pendant-go/x/mathx"
	"pendant-go/x/timex"
)

var (
	TopicInfo  = bus.T("pendant", "info")
	TopicFrame = bus.T("pendant", "frame")
	TopicState = bus.T("pendant", "state")
)

// Config controls the tick loop.
type Config struct {
	// TickHz is the scanner tick rate.
	TickHz uint32
	// Wake is how long the loop sleeps between batches.
	Wake time.Duration
	// MaxBatch caps the ticks run per wake; ticks beyond it are dropped.
	MaxBatch int
	// Reset is reported in the retained info message.
	Reset charlie.ResetCause
}

// WithDefaults fills zero fields.
func (c Config) WithDefaults() Config {
	if c.TickHz == 0 {
		c.TickHz = charlie.DefaultTickHz
	}
	if c.Wake <= 0 {
		c.Wake = timex.PeriodFromHz(c.TickHz)
	}
	if c.MaxBatch <= 0 {
		c.MaxBatch = 1
	}
	return c
}

type Service struct {
	eng  *charlie.Engine
	cfg  Config
	conn *bus.Connection

	dropped atomic.Uint64
	done    chan struct{}
}

func New(eng *charlie.Engine, cfg Config) *Service {
	return &Service{
		eng:  eng,
		cfg:  cfg.WithDefaults(),
		done: make(chan struct{}),
	}
}

// Config returns the effective configuration.
func (s *Service) Config() Config { return s.cfg }

// Dropped returns the ticks skipped because a wake came too late.
func (s *Service) Dropped() uint64 { return s.dropped.Load() }

// Done is closed when Run returns.
func (s *Service) Done() <-chan struct{} { return s.done }

// Info describes the engine for the retained info topic.
func (s *Service) Info() types.ScanInfo {
	info := types.ScanInfo{
		Program: s.eng.Program(),
		Reset:   s.cfg.Reset.String(),
		TickHz:  s.cfg.TickHz,
		NumLEDs: charlie.NumLEDs,
	}
	for _, l := range charlie.Topology {
		info.Topology = append(info.Topology, types.LED{Anode: uint8(l.Anode), Cathode: uint8(l.Cathode)})
	}
	return info
}

// Attach publishes the retained info and routes animation frames to conn.
// A nil conn detaches.
func (s *Service) Attach(conn *bus.Connection) {
	s.conn = conn
	if conn == nil {
		s.eng.OnAnimate(nil)
		return
	}
	conn.Publish(conn.NewMessage(TopicInfo, s.Info(), true))
	s.eng.OnAnimate(s.publishFrame)
}

func (s *Service) publishFrame(f charlie.Frame) {
	s.conn.Publish(s.conn.NewMessage(TopicFrame, types.Frame{
		Seq:    f.Seq,
		Index:  f.Index,
		Levels: f.Levels,
		Ticks:  f.Ticks,
		TS:     time.Now().UnixMilli(),
	}, true))
}

func (s *Service) publishState(st types.ScanState) {
	if s.conn != nil {
		s.conn.Publish(s.conn.NewMessage(TopicState, st, true))
	}
}

// RunTicks runs n ticks on the calling goroutine. It must not be used
// while Run is active.
func (s *Service) RunTicks(n uint64) {
	for ; n > 0; n-- {
		s.eng.Tick()
	}
}

// Start launches Run on its own goroutine.
func (s *Service) Start(ctx context.Context, conn *bus.Connection) error {
	go s.Run(ctx, conn)
	return nil
}

// Run ticks the engine until ctx is cancelled, then releases every pin.
func (s *Service) Run(ctx context.Context, conn *bus.Connection) {
	defer close(s.done)

	s.Attach(conn)
	s.publishState(types.StateRunning)
	println("[scan] running at", s.cfg.TickHz, "Hz, batch", s.cfg.MaxBatch)

	start := time.Now()
	var due uint64

	t := time.NewTimer(s.cfg.Wake)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			s.eng.Off()
			s.publishState(types.StateStopped)
			println("[scan] stopped after", s.eng.Ticks(), "ticks")
			return
		case <-t.C:
			target := timex.TicksIn(time.Since(start), s.cfg.TickHz)
			if target > due {
				n := target - due
				run := mathx.Min(n, uint64(s.cfg.MaxBatch))
				s.RunTicks(run)
				if n > run {
					s.dropped.Add(n - run)
				}
				due = target
			}
			// t.C was just received from, so the timer is drained.
			t.Reset(s.cfg.Wake)
		}
	}
}
