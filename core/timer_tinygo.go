//go:build tinygo

package core

import "runtime/volatile"

var systemTicksValue volatile.Register32

// getSystemTicks returns the current system ticks
func getSystemTicks() uint32 {
	return systemTicksValue.Get()
}

// setSystemTicks sets the system ticks
func setSystemTicks(ticks uint32) {
	systemTicksValue.Set(ticks)
}
