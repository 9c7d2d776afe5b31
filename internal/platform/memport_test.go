package platform

import (
	"testing"

	"pendant-go/charlie"
)

func TestMemPort_EngineNeverViolates(t *testing.T) {
	m := NewMemPort(64)
	e := charlie.NewEngine(m, charlie.ProgramPulse)
	for i := 0; i < 12*charlie.AnimateEvery; i++ {
		e.Tick()
	}
	if m.Violations() != 0 {
		t.Fatalf("%d unsafe register states", m.Violations())
	}
	if len(m.Log()) != 64 || m.Writes() <= 64 {
		t.Fatalf("log=%d writes=%d", len(m.Log()), m.Writes())
	}
	var lit uint64
	for _, n := range m.LitCounts() {
		lit += n
	}
	if lit == 0 {
		t.Fatalf("no LED ever lit")
	}
}

func TestMemPort_DriveSequence(t *testing.T) {
	m := NewMemPort(16)
	s := charlie.NewScanner(m)
	lv := charlie.Levels{8}
	s.Step(&lv)

	want := []Write{
		{RegDir, 0},
		{RegOut, 0},
		{RegOut, charlie.PinA},
		{RegDir, charlie.PinA | charlie.PinB},
	}
	got := m.Log()
	if len(got) != len(want) {
		t.Fatalf("log %v", got)
	}
	for i, w := range want {
		if got[i] != w {
			t.Fatalf("write %d = %+v, want %+v", i, got[i], w)
		}
	}
	if m.Lit() != 0 {
		t.Fatalf("lit %d", m.Lit())
	}
}

func TestMemPort_CountsViolations(t *testing.T) {
	m := NewMemPort(0)
	m.SetOutput(charlie.PinA | charlie.PinB)
	m.SetDirection(charlie.PinA | charlie.PinB)
	if m.Violations() != 1 {
		t.Fatalf("violations=%d", m.Violations())
	}
	if len(m.Log()) != 0 {
		t.Fatalf("limit 0 still logged")
	}
}
