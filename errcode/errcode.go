package errcode

// Code is a stable, log- and wire-facing error identifier.
// It is a string newtype, comparable, allocation-free, and implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK            Code = "ok"
	Unsupported   Code = "unsupported"
	InvalidParams Code = "invalid_params"
	Timeout       Code = "timeout"

	// Pins and boards.
	UnknownPin   Code = "unknown_pin"
	PinInUse     Code = "pin_in_use"
	UnknownBoard Code = "unknown_board"
	UnknownBus   Code = "unknown_bus"

	// Telemetry packets.
	ShortPacket      Code = "short_packet"
	UnknownPacket    Code = "unknown_packet"
	ChecksumMismatch Code = "checksum_mismatch"
	PacketTooLarge   Code = "packet_too_large"

	Error Code = "error" // generic fallback
)

// E keeps a code together with the failing operation and a cause.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap returns an *E for op with code c around err.
func Wrap(c Code, op string, err error) error {
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error chain, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	for err != nil {
		if c, ok := err.(Code); ok {
			return c
		}
		type coder interface{ Code() Code }
		if x, ok := err.(coder); ok {
			return x.Code()
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			break
		}
		err = u.Unwrap()
	}
	return Error
}
