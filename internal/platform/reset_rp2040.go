//go:build rp2040

package platform

import (
	"runtime/volatile"
	"unsafe"

	"pendant-go/charlie"
)

// VREG_AND_CHIP_RESET.CHIP_RESET
const chipReset = 0x40064000 + 0x08

const (
	hadPOR = 1 << 8
	hadRun = 1 << 16
)

// ResetCause reads why the chip last came out of reset.
func ResetCause() charlie.ResetCause {
	r := (*volatile.Register32)(unsafe.Pointer(uintptr(chipReset))).Get()
	switch {
	case r&hadRun != 0:
		return charlie.ResetExternal
	case r&hadPOR != 0:
		return charlie.ResetPowerOn
	}
	return charlie.ResetUnknown
}
