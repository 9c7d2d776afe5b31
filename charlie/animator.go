package charlie

// Program rewrites the brightness levels once per animation step.
type Program interface {
	Step(levels *Levels)
}

// Pulse sends a brightness wave around the three LED pairs. Each pair shows
// the frame one step ahead of the pair after it.
type Pulse struct {
	i uint8 // next frame index, 0..NumFrames-1
}

var _ Program = (*Pulse)(nil)

// Index returns the frame index the next Step will display on LEDs 4 and 5.
func (p *Pulse) Index() uint8 { return p.i }

// Step writes all six levels. Frame a is sampled before the cursor advances.
func (p *Pulse) Step(levels *Levels) {
	a := p.i
	if a >= NumFrames {
		a = 0
	}

	p.i++
	if p.i >= NumFrames {
		p.i = 0
	}

	b := next(a)
	c := next(b)

	levels[5], levels[4] = Frames[a], Frames[a]
	levels[3], levels[2] = Frames[b], Frames[b]
	levels[1], levels[0] = Frames[c], Frames[c]
}

func next(i uint8) uint8 {
	i++
	if i >= NumFrames {
		return 0
	}
	return i
}
