//go:build !rp2040

package platform

import "pendant-go/charlie"

// ResetCause has no register to read here. Hosts report a cold boot and
// let configuration override it; RP2350 builds start the same way.
func ResetCause() charlie.ResetCause { return charlie.ResetPowerOn }
