package scan

import (
	"context"
	"testing"
	"time"

	"pendant-go/bus"
	"pendant-go/charlie"
	"pendant-go/types"
)

type pins struct{ dir, out charlie.PinMask }

func (p *pins) SetDirection(m charlie.PinMask) { p.dir = m }
func (p *pins) SetOutput(m charlie.PinMask)    { p.out = m }

func TestConfigDefaults(t *testing.T) {
	c := Config{}.WithDefaults()
	if c.TickHz != charlie.DefaultTickHz || c.MaxBatch != 1 || c.Wake != 100*time.Microsecond {
		t.Fatalf("defaults: %+v", c)
	}
	c = Config{TickHz: 1000, Wake: time.Millisecond, MaxBatch: 4}.WithDefaults()
	if c.TickHz != 1000 || c.MaxBatch != 4 || c.Wake != time.Millisecond {
		t.Fatalf("explicit values overwritten: %+v", c)
	}
}

func TestAttach_PublishesInfo(t *testing.T) {
	b := bus.NewBus(4)
	conn := b.NewConnection()
	s := New(charlie.NewEngine(nil, charlie.ProgramPulse), Config{Reset: charlie.ResetExternal})
	s.Attach(conn)

	sub := conn.Subscribe(TopicInfo)
	m := <-sub.Channel()
	info, ok := m.Payload.(types.ScanInfo)
	if !ok {
		t.Fatalf("payload %T", m.Payload)
	}
	if info.TickHz != charlie.DefaultTickHz || info.NumLEDs != 6 || info.Reset != "external" || len(info.Topology) != 6 {
		t.Fatalf("info: %+v", info)
	}
	if info.Topology[3] != (types.LED{Anode: 0x04, Cathode: 0x01}) {
		t.Fatalf("LED3: %+v", info.Topology[3])
	}
}

func TestRunTicks_PublishesFrames(t *testing.T) {
	b := bus.NewBus(8)
	conn := b.NewConnection()
	sub := conn.Subscribe(TopicFrame)

	s := New(charlie.NewEngine(&pins{}, charlie.ProgramPulse), Config{})
	s.Attach(conn)
	s.RunTicks(7 * charlie.AnimateEvery)

	var last types.Frame
	for i := 0; i < 7; i++ {
		select {
		case m := <-sub.Channel():
			last = m.Payload.(types.Frame)
		case <-time.After(100 * time.Millisecond):
			t.Fatalf("frame %d missing", i)
		}
	}
	if last.Seq != 7 || last.Index != 6 || last.Ticks != 7*charlie.AnimateEvery {
		t.Fatalf("last frame: %+v", last)
	}
	if last.Levels != [6]uint8{1, 1, 1, 1, 1, 1} {
		t.Fatalf("levels: %v", last.Levels)
	}
}

func TestRun_StopsAndReleasesPins(t *testing.T) {
	b := bus.NewBus(8)
	conn := b.NewConnection()
	p := &pins{}
	eng := charlie.NewEngine(p, charlie.ProgramPulse)
	s := New(eng, Config{TickHz: 20000, Wake: time.Millisecond, MaxBatch: 64})

	ctx, cancel := context.WithCancel(context.Background())
	if err := s.Start(ctx, conn); err != nil {
		t.Fatal(err)
	}
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-s.Done():
	case <-time.After(time.Second):
		t.Fatal("service did not stop")
	}
	if eng.Ticks() == 0 {
		t.Fatalf("engine never ticked")
	}
	if p.dir != 0 || p.out != 0 {
		t.Fatalf("pins left driven: dir=%03b out=%03b", p.dir, p.out)
	}

	sub := conn.Subscribe(TopicState)
	m := <-sub.Channel()
	if m.Payload != types.StateStopped {
		t.Fatalf("state %v", m.Payload)
	}
}

func TestRun_DropsExcessTicks(t *testing.T) {
	eng := charlie.NewEngine(nil, charlie.ProgramPulse)
	s := New(eng, Config{TickHz: 100000, Wake: 5 * time.Millisecond, MaxBatch: 1})

	ctx, cancel := context.WithCancel(context.Background())
	go s.Run(ctx, nil)
	time.Sleep(40 * time.Millisecond)
	cancel()
	<-s.Done()

	if s.Dropped() == 0 {
		t.Fatalf("expected dropped ticks, ran %d", eng.Ticks())
	}
	// One tick per wake at most, and the timer keeps firing after the first.
	if eng.Ticks() < 2 {
		t.Fatalf("loop stopped waking: %d ticks", eng.Ticks())
	}
	if eng.Ticks() > 20 {
		t.Fatalf("batch cap ignored: %d ticks", eng.Ticks())
	}
}
