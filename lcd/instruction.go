package lcd

import "time"

// HD44780 instruction opcodes used by the driver
const (
	CmdClearDisplay = 0x01
	CmdEntryModeSet = 0x06 // increment address, no display shift
	CmdDisplayOff   = 0x08
	CmdDisplayOn    = 0x0F // display, cursor and blink on
	CmdFunctionSet  = 0x28 // 4-bit interface, 2 lines, 5x8 font
	CmdSetDDRAMAddr = 0x80
	CharBlank       = 0x20
	CharReset       = '~'
	CharBackspace   = 0x08
	nibbleEightBit  = 0x3
	nibbleFourBit   = 0x2
	visibleColumns  = 16
	line1Start      = 0x00
	line1End        = line1Start + visibleColumns - 1
	line2Start      = 0x40
	line2End        = line2Start + visibleColumns - 1
)

// Controller execution times from the HD44780 datasheet (fosc = 270kHz).
// The configured margin is added on top of each.
const (
	ExecCommand = 39 * time.Microsecond
	ExecData    = 43 * time.Microsecond
	ExecClear   = 1530 * time.Microsecond
)

// Instruction is one byte for the controller plus the time it needs
// before the next one may be sent. Instructions are passed by value and
// never change once queued.
type Instruction struct {
	Opcode    uint8
	ExecDelay time.Duration
	IsData    bool
}

// High returns the nibble sent first
func (in Instruction) High() uint8 {
	return in.Opcode >> 4
}

// Low returns the nibble sent second
func (in Instruction) Low() uint8 {
	return in.Opcode & 0x0F
}

// command builds an instruction-register write
func command(op uint8, exec, margin time.Duration) Instruction {
	return Instruction{Opcode: op, ExecDelay: exec + margin}
}

// data builds a data-register write
func data(c uint8, margin time.Duration) Instruction {
	return Instruction{Opcode: c, ExecDelay: ExecData + margin, IsData: true}
}

// setDDRAM moves the controller's address counter
func setDDRAM(addr uint8, margin time.Duration) Instruction {
	return command(CmdSetDDRAMAddr|addr, ExecCommand, margin)
}
