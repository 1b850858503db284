//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package main

import "os"

// openConsole reads f line-buffered where termios is unavailable
func openConsole(f *os.File) (*console, error) {
	return &console{in: f}, nil
}
