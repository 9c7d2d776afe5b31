package charlie

// Frame is a copy of the engine state taken right after an animation step.
type Frame struct {
	Seq    uint32 // animation steps so far, starting at 1
	Index  uint8  // frame table index shown on LEDs 4 and 5
	Levels Levels
	Ticks  uint64 // scanner ticks so far
}

// Engine is the whole timer callback: scanner, animator and their state.
//
// Engine is not safe for concurrent use. Tick and every accessor must be
// called from the goroutine that owns the engine.
type Engine struct {
	scan    *Scanner
	prog    Program
	program uint8

	levels Levels
	count  uint16 // ticks since the last animation step, < AnimateEvery

	ticks uint64
	steps uint32
	last  Frame

	onAnimate func(Frame)
}

// NewEngine returns an engine with all counters at zero and every pin
// released. Unknown program selectors run the pulse.
func NewEngine(p Port, program uint8) *Engine {
	if program >= NumPrograms {
		program = ProgramPulse
	}
	e := &Engine{
		scan:    NewScanner(p),
		prog:    newProgram(program),
		program: program,
	}
	e.scan.Off()
	return e
}

// OnAnimate registers fn to run inside Tick after every animation step.
// It replaces any previous hook; nil removes it.
func (e *Engine) OnAnimate(fn func(Frame)) { e.onAnimate = fn }

// Tick runs one timer period.
func (e *Engine) Tick() {
	e.scan.Step(&e.levels)
	e.ticks++

	e.count++
	if e.count >= AnimateEvery {
		e.count = 0
		e.animate()
	}
}

func (e *Engine) animate() {
	var idx uint8
	if p, ok := e.prog.(*Pulse); ok {
		idx = p.Index()
	}
	e.prog.Step(&e.levels)
	e.steps++

	e.last = Frame{
		Seq:    e.steps,
		Index:  idx,
		Levels: e.levels,
		Ticks:  e.ticks,
	}
	if e.onAnimate != nil {
		e.onAnimate(e.last)
	}
}

// Off releases every pin. The next Tick drives them again.
func (e *Engine) Off() { e.scan.Off() }

// Program returns the running program selector.
func (e *Engine) Program() uint8 { return e.program }

// Levels returns a copy of the brightness levels.
func (e *Engine) Levels() Levels { return e.levels }

// Frame returns the snapshot taken at the last animation step, or the zero
// Frame before the first one.
func (e *Engine) Frame() Frame { return e.last }

// Cursor returns the scanner cursor.
func (e *Engine) Cursor() (led, bit uint8) { return e.scan.Cursor() }

// TickCount returns the ticks since the last animation step.
func (e *Engine) TickCount() uint16 { return e.count }

// Ticks returns the total ticks run.
func (e *Engine) Ticks() uint64 { return e.ticks }

// Animations returns the total animation steps run.
func (e *Engine) Animations() uint32 { return e.steps }
