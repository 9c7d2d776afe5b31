package timex

import "time"

// PeriodFromHz returns the period of freqHz.
// freqHz==0 is coerced to 1 to avoid division by zero.
func PeriodFromHz(freqHz uint32) time.Duration {
	if freqHz == 0 {
		freqHz = 1
	}
	return time.Duration(uint64(time.Second) / uint64(freqHz))
}

// TicksIn returns how many whole periods of freqHz fit in d.
// Whole seconds and the remainder are scaled apart so d*freqHz never
// has to fit in 64 bits.
func TicksIn(d time.Duration, freqHz uint32) uint64 {
	if d <= 0 || freqHz == 0 {
		return 0
	}
	hz := uint64(freqHz)
	sec := uint64(d / time.Second)
	rem := uint64(d % time.Second)
	return sec*hz + rem*hz/uint64(time.Second)
}
