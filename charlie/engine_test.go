package charlie

import (
	"image/color"
	"testing"
)

func TestEngine_StartsZeroed(t *testing.T) {
	p := &recPort{t: t}
	e := NewEngine(p, ProgramPulse)
	if e.Levels() != (Levels{}) || e.TickCount() != 0 || e.Ticks() != 0 || e.Animations() != 0 {
		t.Fatalf("engine not zeroed")
	}
	if led, bit := e.Cursor(); led != 0 || bit != 0 {
		t.Fatalf("cursor=(%d,%d)", led, bit)
	}
	if p.dir != 0 {
		t.Fatalf("pins driven after construction")
	}
}

func TestEngine_AnimatesEvery750Ticks(t *testing.T) {
	e := NewEngine(&recPort{t: t}, ProgramPulse)
	var frames []Frame
	e.OnAnimate(func(f Frame) { frames = append(frames, f) })

	for i := 1; i <= 3*AnimateEvery; i++ {
		e.Tick()
		if e.TickCount() >= AnimateEvery {
			t.Fatalf("tick counter escaped range: %d", e.TickCount())
		}
		if want := i / AnimateEvery; len(frames) != want {
			t.Fatalf("after %d ticks: %d animations, want %d", i, len(frames), want)
		}
	}
	for i, f := range frames {
		if f.Seq != uint32(i+1) {
			t.Fatalf("frame %d seq=%d", i, f.Seq)
		}
		if f.Ticks != uint64((i+1)*AnimateEvery) {
			t.Fatalf("frame %d ticks=%d", i, f.Ticks)
		}
		if f.Index != uint8(i) {
			t.Fatalf("frame %d index=%d", i, f.Index)
		}
	}
	if e.Animations() != 3 || e.Ticks() != 3*AnimateEvery {
		t.Fatalf("totals: anim=%d ticks=%d", e.Animations(), e.Ticks())
	}
}

func TestEngine_ReachesLevelOneAfterSevenSteps(t *testing.T) {
	e := NewEngine(&recPort{t: t}, ProgramPulse)
	var last Frame
	e.OnAnimate(func(f Frame) { last = f })
	for i := 0; i < 7*AnimateEvery; i++ {
		e.Tick()
	}
	if last.Index != 6 {
		t.Fatalf("seventh step index=%d", last.Index)
	}
	if e.Levels() != (Levels{1, 1, 1, 1, 1, 1}) {
		t.Fatalf("levels=%v", e.Levels())
	}
}

func TestEngine_FrameKeepsLastStep(t *testing.T) {
	e := NewEngine(&recPort{t: t}, ProgramPulse)
	if e.Frame() != (Frame{}) {
		t.Fatalf("frame before first step: %+v", e.Frame())
	}
	var hooked Frame
	e.OnAnimate(func(f Frame) { hooked = f })

	for i := 0; i < 7*AnimateEvery; i++ {
		e.Tick()
	}
	f := e.Frame()
	if f != hooked {
		t.Fatalf("Frame()=%+v, hook saw %+v", f, hooked)
	}
	if f.Seq != 7 || f.Index != 6 || f.Ticks != 7*AnimateEvery || f.Levels != e.Levels() {
		t.Fatalf("unexpected frame %+v", f)
	}

	// Ticks between steps leave the snapshot alone.
	for i := 0; i < AnimateEvery-1; i++ {
		e.Tick()
	}
	if e.Frame() != f {
		t.Fatalf("frame changed without an animation step")
	}
}

func TestEngine_UnknownProgramRunsPulse(t *testing.T) {
	e := NewEngine(nil, 7)
	if e.Program() != ProgramPulse {
		t.Fatalf("program=%d", e.Program())
	}
}

func TestEngine_ZeroLevelNeverDriven(t *testing.T) {
	p := &recPort{t: t}
	e := NewEngine(p, ProgramPulse)
	// Levels stay at 0 until the fifth animation step, which runs after the
	// scanner step of tick 5*AnimateEvery.
	for i := 0; i < 5*AnimateEvery; i++ {
		e.Tick()
		if p.lit() != -1 {
			t.Fatalf("tick %d: LED %d lit at level 0", i, p.lit())
		}
	}
}

type memDisplay struct {
	px      [NumLEDs]color.RGBA
	flushed int
}

func (d *memDisplay) Size() (int16, int16)               { return NumLEDs, 1 }
func (d *memDisplay) SetPixel(x, y int16, c color.RGBA) { d.px[x] = c }
func (d *memDisplay) Display() error                    { d.flushed++; return nil }

func TestDraw_RoundTripsLevels(t *testing.T) {
	d := &memDisplay{}
	lv := Levels{0, 1, 2, 4, 7, 8}
	if err := Draw(d, lv); err != nil {
		t.Fatal(err)
	}
	if d.flushed != 1 {
		t.Fatalf("display not flushed")
	}
	for i, c := range d.px {
		if got := ColorLevel(c); got != lv[i] {
			t.Fatalf("pixel %d: level %d, want %d (color %v)", i, got, lv[i], c)
		}
	}
	if LevelColor(0) != (color.RGBA{}) {
		t.Fatalf("level 0 must be black")
	}
}
