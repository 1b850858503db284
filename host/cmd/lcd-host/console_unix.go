//go:build linux || darwin || freebsd || netbsd || openbsd

package main

import (
	"os"

	"github.com/pkg/term/termios"
	"golang.org/x/sys/unix"
)

// openConsole switches f to cbreak mode so each keystroke arrives unbuffered
// and unechoed. Input that is not a terminal is read as is.
func openConsole(f *os.File) (*console, error) {
	var canAttr unix.Termios
	if err := termios.Tcgetattr(f.Fd(), &canAttr); err != nil {
		return &console{in: f}, nil
	}
	cbreakAttr := canAttr
	termios.Cfmakecbreak(&cbreakAttr)
	if err := termios.Tcsetattr(f.Fd(), termios.TCIFLUSH, &cbreakAttr); err != nil {
		return nil, err
	}
	return &console{
		in: f,
		restore: func() {
			termios.Tcsetattr(f.Fd(), termios.TCIFLUSH, &canAttr)
		},
	}, nil
}
