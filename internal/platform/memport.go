package platform

import (
	"sync"

	"pendant-go/charlie"
)

// Reg names a port register.
type Reg uint8

const (
	RegDir Reg = iota
	RegOut
)

// Write is one register write seen by a MemPort.
type Write struct {
	Reg  Reg
	Mask charlie.PinMask
}

// MemPort is a charlie.Port in memory. It keeps the live registers, the
// first Limit writes and a count of unsafe register states.
type MemPort struct {
	Limit int

	mu         sync.Mutex
	dir, out   charlie.PinMask
	log        []Write
	writes     uint64
	violations uint64
	litTicks   [charlie.NumLEDs]uint64
}

// NewMemPort keeps up to limit writes in its log.
func NewMemPort(limit int) *MemPort { return &MemPort{Limit: limit} }

func (m *MemPort) SetDirection(mask charlie.PinMask) { m.write(RegDir, mask) }
func (m *MemPort) SetOutput(mask charlie.PinMask)    { m.write(RegOut, mask) }

func (m *MemPort) write(r Reg, mask charlie.PinMask) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if r == RegDir {
		m.dir = mask
		// The LED lights once its direction bits are set; count that moment.
		if l := Lit(m.dir, m.out); l >= 0 {
			m.litTicks[l]++
		}
	} else {
		m.out = mask
	}
	m.writes++
	if len(m.log) < m.Limit {
		m.log = append(m.log, Write{Reg: r, Mask: mask})
	}
	if !Valid(m.dir, m.out) {
		m.violations++
	}
}

// Registers returns the live direction and output masks.
func (m *MemPort) Registers() (dir, out charlie.PinMask) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dir, m.out
}

// Lit returns the LED currently lit, or -1.
func (m *MemPort) Lit() int {
	dir, out := m.Registers()
	return Lit(dir, out)
}

// Log returns a copy of the recorded writes.
func (m *MemPort) Log() []Write {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Write(nil), m.log...)
}

// Writes returns the total writes, logged or not.
func (m *MemPort) Writes() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// Violations counts writes that left the port in an unsafe state.
func (m *MemPort) Violations() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.violations
}

// LitCounts returns how many times each LED was switched on.
func (m *MemPort) LitCounts() [charlie.NumLEDs]uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.litTicks
}
