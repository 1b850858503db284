package lcd

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"
)

// CharacterWriter accepts one character at a time
type CharacterWriter interface {
	WriteCharacter(c byte)
}

// Pump reads bytes from a serial line and hands each one over a channel
// to the goroutine owning the display.
type Pump struct {
	Reader io.Reader
	Out    chan<- byte
	Logger *slog.Logger

	// PollInterval is the pause after a read that returned nothing
	PollInterval time.Duration

	// StopAtEOF ends Run on io.EOF. Serial ports with a read timeout
	// report EOF when idle, so leave it unset for them.
	StopAtEOF bool
}

// DefaultPollInterval matches the 10ms tick of a typical serial reader task
const DefaultPollInterval = 10 * time.Millisecond

// Run copies bytes until ctx is done, the reader fails, or (with
// StopAtEOF) the reader is exhausted. NUL bytes are skipped.
func (p *Pump) Run(ctx context.Context) error {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	poll := p.PollInterval
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	buf := make([]byte, 64)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := p.Reader.Read(buf)
		for _, c := range buf[:n] {
			if c == 0 {
				continue
			}
			select {
			case p.Out <- c:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		switch {
		case errors.Is(err, io.EOF):
			if p.StopAtEOF {
				return nil
			}
		case err != nil:
			logger.Error("serial:read-failed", slog.Any("reason", err))
			return err
		}
		if n == 0 {
			time.Sleep(poll)
		}
	}
}

// Handler feeds characters from a channel to the display
type Handler struct {
	writer CharacterWriter
	keys   <-chan byte
	logger *slog.Logger
}

// NewHandler creates a handler writing keys to w
func NewHandler(w CharacterWriter, keys <-chan byte, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{writer: w, keys: keys, logger: logger}
}

// Run processes characters until the channel closes or ctx is done.
// Run should be called in a separate goroutine.
func (h *Handler) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case c, ok := <-h.keys:
			if !ok {
				return nil
			}
			h.logger.Debug("lcd:key", slog.Int("char", int(c)))
			h.writer.WriteCharacter(c)
		}
	}
}
