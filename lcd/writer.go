package lcd

// WriteCharacter queues c for display at the cursor and moves the cursor.
//
//   - '~' clears the display and homes the cursor.
//   - backspace (0x08) blanks the previous cell and leaves the cursor on it;
//     at address 0 it does nothing.
//   - anything else is written at the cursor, which then advances, moving
//     from the end of line 1 to the start of line 2 and from the end of
//     line 2 back to address 0.
//
// The call returns as soon as the instructions are queued; it blocks only
// while the queue is full. All instructions for one character are queued
// together, so concurrent writers never interleave inside a character.
func (d *Driver) WriteCharacter(c byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	margin := d.cfg.WriteMargin
	switch c {
	case CharReset:
		d.queue.Enqueue(command(CmdClearDisplay, ExecClear, margin))
		d.cursor = line1Start
	case CharBackspace:
		if d.cursor == line1Start {
			break
		}
		d.cursor = prevAddress(d.cursor)
		d.queue.Enqueue(setDDRAM(d.cursor, margin))
		d.queue.Enqueue(data(CharBlank, margin))
		// the blank advanced the controller's address counter
		d.queue.Enqueue(setDDRAM(d.cursor, margin))
	default:
		d.queue.Enqueue(setDDRAM(d.cursor, margin))
		d.queue.Enqueue(data(c, margin))
		d.cursor = nextAddress(d.cursor)
	}
	d.machine.Advance()
}

// Write queues every byte of p through WriteCharacter
func (d *Driver) Write(p []byte) (int, error) {
	for _, c := range p {
		d.WriteCharacter(c)
	}
	return len(p), nil
}

// Cursor returns the DDRAM address the next character goes to
func (d *Driver) Cursor() uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cursor
}

// nextAddress steps a visible address forward, skipping the hidden
// DDRAM between the lines
func nextAddress(addr uint8) uint8 {
	addr++
	switch {
	case addr > line1End && addr < line2Start:
		return line2Start
	case addr > line2End:
		return line1Start
	}
	return addr
}

// prevAddress steps a visible address back, from the start of line 2 to
// the end of line 1. Address 0 stays put.
func prevAddress(addr uint8) uint8 {
	switch addr {
	case line1Start:
		return line1Start
	case line2Start:
		return line1End
	}
	return addr - 1
}
