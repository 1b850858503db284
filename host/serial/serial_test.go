//go:build !wasm && !tinygo

package serial

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig("/dev/ttyUSB0")
	if cfg.Device != "/dev/ttyUSB0" || cfg.Baud != 115200 || cfg.ReadTimeout != 100 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
}

func TestOpenErrors(t *testing.T) {
	if _, err := Open(nil); err == nil {
		t.Error("Open(nil) succeeded")
	}
	missing := filepath.Join(t.TempDir(), "no-such-tty")
	_, err := Open(DefaultConfig(missing))
	if err == nil {
		t.Fatalf("Open(%s) succeeded", missing)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Open(%s): got %v, want a wrapped not-exist error", missing, err)
	}
}

func TestNativePortIsInputOnly(t *testing.T) {
	var p Port = &NativePort{}
	if _, ok := p.(io.Writer); ok {
		t.Errorf("NativePort exposes Write; the console line is read-only")
	}
}
