// Command lcd-host drives a simulated 16x2 character display from a serial
// line or the local terminal and redraws the panel after every instruction.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"charlcd/core"
	"charlcd/host/config"
	"charlcd/host/serial"
	"charlcd/host/sim"
	"charlcd/lcd"
)

var (
	configPath = flag.String("config", "", "YAML configuration file")
	device     = flag.String("device", "", "Serial device path (overrides serial.device; empty reads the terminal)")
	trace      = flag.Bool("trace", false, "Dump the instruction timing ring on exit")
)

const (
	// bounds how late a timer can fire on the wall clock
	schedulerPoll = 50 * time.Microsecond
	drainTimeout  = 250 * time.Millisecond
)

func main() {
	flag.Parse()

	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.Log.SlogLevel(),
	}))
	slog.SetDefault(logger)

	if *trace {
		core.SetDebugWriter(func(s string) { fmt.Fprintln(os.Stderr, s) })
	}

	if err := run(cfg, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("host:exit", slog.Any("reason", err))
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfg := &config.Config{
		Display: config.DisplayConfig{
			Pins: config.PinsConfig{D4: 22, D5: 18, D6: 5, D7: 4, Enable: 19, RegisterSelect: 21},
		},
	}
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if *device != "" {
		cfg.Serial.Device = *device
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	config.Normalize(cfg)
	return cfg, nil
}

func run(cfg *config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := core.NewScheduler(core.MonotonicClock())
	stopScheduler := startScheduler(ctx, sched, schedulerPoll)
	defer stopScheduler()

	pins := cfg.Display.Pins.PinMap()
	ctrl := sim.NewController(sim.Wiring{
		D4:             pins.D4,
		D5:             pins.D5,
		D6:             pins.D6,
		D7:             pins.D7,
		Enable:         pins.Enable,
		RegisterSelect: pins.RegisterSelect,
	}, sched.Now)

	var drawMu sync.Mutex
	ctrl.OnChange(func() {
		drawMu.Lock()
		defer drawMu.Unlock()
		// home the cursor and redraw in place
		fmt.Print("\033[H\033[2J" + ctrl.Render())
	})

	drv, err := lcd.Open(ctrl, sched, cfg.LCD(logger))
	if err != nil {
		return err
	}
	defer func() {
		// the trace ring is only read once no timer can record into it
		stopScheduler()
		report(ctrl, logger)
	}()

	pump, closeInput, err := openInput(cfg, logger)
	if err != nil {
		return err
	}
	defer closeInput()

	keys := make(chan byte, 16)
	pump.Out = keys
	go func() {
		defer close(keys)
		if err := pump.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error("host:input-stopped", slog.Any("reason", err))
		}
	}()

	logger.Info("host:ready", slog.String("input", inputName(cfg)))
	err = lcd.NewHandler(drv, keys, logger).Run(ctx)
	if err == nil {
		drain(drv)
	}
	if drvErr := drv.Err(); drvErr != nil {
		return drvErr
	}
	return err
}

// startScheduler dispatches sched's timers on a goroutine. The returned
// function stops dispatching and waits for the goroutine to exit; it may
// be called more than once.
func startScheduler(ctx context.Context, sched *core.Scheduler, poll time.Duration) func() {
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	go func() {
		defer close(done)
		sched.Run(ctx, poll)
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			cancel()
			<-done
			sched.Stop()
		})
	}
}

// report logs timing violations seen by the model and dumps the trace ring
func report(ctrl *sim.Controller, logger *slog.Logger) {
	for _, v := range ctrl.Violations() {
		logger.Warn("sim:busy-violation",
			slog.String("opcode", core.Hex8(v.Opcode)),
			slog.Uint64("at_us", uint64(v.At)),
			slog.Uint64("busy_until_us", uint64(v.BusyUntil)))
	}
	if *trace {
		core.DumpTimingRing()
	}
}

// drain gives queued instructions time to reach the display once input ends
func drain(drv *lcd.Driver) {
	deadline := time.Now().Add(drainTimeout)
	for !drv.Idle() && drv.Err() == nil && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
}

// openInput returns a pump over the configured serial port, or over the
// terminal in cbreak mode when no device is set.
func openInput(cfg *config.Config, logger *slog.Logger) (*lcd.Pump, func(), error) {
	if sc := cfg.SerialPort(); sc != nil {
		port, err := serial.Open(sc)
		if err != nil {
			return nil, nil, err
		}
		if err := port.Flush(); err != nil {
			logger.Warn("serial:flush-failed", slog.Any("reason", err))
		}
		return &lcd.Pump{Reader: port, Logger: logger}, func() { port.Close() }, nil
	}

	con, err := openConsole(os.Stdin)
	if err != nil {
		return nil, nil, err
	}
	return &lcd.Pump{Reader: con, Logger: logger, StopAtEOF: true}, con.Restore, nil
}

func inputName(cfg *config.Config) string {
	if cfg.Serial.Device != "" {
		return cfg.Serial.Device
	}
	return "terminal"
}
