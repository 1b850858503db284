//go:build rp2040 || rp2350

package main

import (
	"runtime/volatile"
	"unsafe"

	"charlcd/core"
)

var timerRAWL = (*volatile.Register32)(unsafe.Pointer(uintptr(timerTIMERAWL)))

// GetHardwareTime reads the low 32 bits of the 1MHz hardware timer
func GetHardwareTime() uint32 {
	return timerRAWL.Get()
}

// UpdateSystemTime copies the hardware timer into the core clock
func UpdateSystemTime() {
	core.SetTime(GetHardwareTime())
}

// systemClock is the scheduler's time source
func systemClock() uint32 {
	UpdateSystemTime()
	return core.GetTime()
}
