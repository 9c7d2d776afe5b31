package types

// ---- Scan state (retained) ----

// ScanState is the lifecycle of the scan service.
type ScanState string

const (
	StateRunning ScanState = "running"
	StateStopped ScanState = "stopped"
)

// ---- Scan info (retained) ----

// LED names the pins of one charlieplexed LED, as bit masks.
type LED struct {
	Anode   uint8 `json:"anode"`
	Cathode uint8 `json:"cathode"`
}

// ScanInfo describes the running engine. Published once at start.
type ScanInfo struct {
	Program  uint8  `json:"program"`
	Reset    string `json:"reset,omitempty"`
	TickHz   uint32 `json:"tick_hz"`
	NumLEDs  uint8  `json:"num_leds"`
	Topology []LED  `json:"topology,omitempty"`
}

// ---- Frames ----

// Frame is the state right after one animation step.
type Frame struct {
	Seq    uint32   `json:"seq"`
	Index  uint8    `json:"index"`
	Levels [6]uint8 `json:"levels"`
	Ticks  uint64   `json:"ticks"`
	TS     int64    `json:"ts_ms,omitempty"`
}
