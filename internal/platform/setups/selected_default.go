//go:build !pendant_bare

package setups

// Selected is the plan the firmware boots with.
var Selected = PicoDefault
