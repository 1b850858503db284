package main

import (
	"io"

	"charlcd/lcd"
)

// keyDelete is what most terminals send for the backspace key
const keyDelete = 0x7F

// console reads keystrokes and maps DEL onto the display's backspace
type console struct {
	in      io.Reader
	restore func()
}

func (c *console) Read(p []byte) (int, error) {
	n, err := c.in.Read(p)
	for i := range p[:n] {
		if p[i] == keyDelete {
			p[i] = lcd.CharBackspace
		}
	}
	return n, err
}

// Restore puts the terminal back the way it was found
func (c *console) Restore() {
	if c.restore != nil {
		c.restore()
	}
}
