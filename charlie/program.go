package charlie

// ResetCause is why the chip last came out of reset.
type ResetCause uint8

const (
	ResetUnknown ResetCause = iota
	ResetPowerOn
	ResetExternal
)

func (c ResetCause) String() string {
	switch c {
	case ResetPowerOn:
		return "power_on"
	case ResetExternal:
		return "external"
	default:
		return "unknown"
	}
}

// ParseResetCause accepts the names produced by String.
func ParseResetCause(s string) (ResetCause, bool) {
	switch s {
	case "power_on", "poweron", "cold":
		return ResetPowerOn, true
	case "external", "button", "warm":
		return ResetExternal, true
	case "unknown", "":
		return ResetUnknown, true
	}
	return ResetUnknown, false
}

// Program identifiers. Pulse is the only program.
const (
	ProgramPulse uint8 = iota

	NumPrograms
)

// SelectProgram picks the program after a reset. A cold boot starts over,
// the reset button steps to the next program.
func SelectProgram(prev uint8, cause ResetCause) uint8 {
	switch cause {
	case ResetPowerOn:
		return ProgramPulse
	case ResetExternal:
		prev++
	}
	if prev >= NumPrograms {
		return ProgramPulse
	}
	return prev
}

// newProgram dispatches a selector to its program. Unknown selectors fall
// back to the pulse.
func newProgram(id uint8) Program {
	switch id {
	case ProgramPulse:
		return &Pulse{}
	}
	return &Pulse{}
}
