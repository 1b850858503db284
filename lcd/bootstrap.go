package lcd

import (
	"fmt"
	"log/slog"
	"time"
)

// Power-on handshake timing (HD44780 datasheet, figure 24)
const (
	powerOnDelay    = 15 * time.Millisecond
	firstRetryDelay = 4100 * time.Microsecond
	retryDelay      = 100 * time.Microsecond
	settleRetry     = 40 * time.Microsecond
	modeSwitchDelay = 40 * time.Microsecond
)

// bootstrap forces the controller from an unknown power-on state into
// 4-bit mode. The first phase blocks the caller with plain waits because
// the controller cannot be trusted to honor queued timing yet; the
// configuration instructions then go through the queue.
func (d *Driver) bootstrap() error {
	margin := d.cfg.Margin

	d.logger.Info("lcd:bootstrap", slog.Duration("margin", margin))
	d.cfg.Delay(powerOnDelay + margin)

	for i, wait := range []time.Duration{firstRetryDelay, retryDelay, settleRetry} {
		d.logger.Debug("lcd:bootstrap-nibble", slog.Int("attempt", i+1))
		if err := d.bus.SendNibble(nibbleEightBit, false); err != nil {
			return fmt.Errorf("bootstrap 8-bit nibble %d: %w", i+1, err)
		}
		d.cfg.Delay(wait + margin)
	}

	d.logger.Debug("lcd:bootstrap-4bit")
	if err := d.bus.SendNibble(nibbleFourBit, false); err != nil {
		return fmt.Errorf("bootstrap 4-bit switch: %w", err)
	}
	d.cfg.Delay(modeSwitchDelay + margin)

	for _, in := range []Instruction{
		command(CmdFunctionSet, ExecCommand, margin),
		command(CmdDisplayOff, ExecCommand, margin),
		command(CmdClearDisplay, ExecClear, margin),
		command(CmdEntryModeSet, ExecCommand, margin),
	} {
		d.queue.Enqueue(in)
	}
	d.machine.Advance()
	return d.machine.Err()
}
