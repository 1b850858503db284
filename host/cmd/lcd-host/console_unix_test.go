//go:build linux || darwin || freebsd || netbsd || openbsd

package main

import (
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestOpenConsoleOnPlainFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "keys")
	if err := os.WriteFile(path, []byte{'h', 0x7F, 'i'}, 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	con, err := openConsole(f)
	if err != nil {
		t.Fatalf("openConsole on a non-terminal: %v", err)
	}
	defer con.Restore()

	got, err := io.ReadAll(con)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "h\bi" {
		t.Errorf("read %q, want %q", got, "h\bi")
	}
}
