//go:build rp2040 || rp2350

package main

import (
	"context"
	"log/slog"
	"machine"
	"time"

	"charlcd/core"
	"charlcd/lcd"
)

// wiring selects how the display is attached. Override with
// -ldflags "-X main.wiring=backpack" for a PCF8574 I2C backpack.
var wiring = "direct"

// Direct-wired bus pins
const (
	pinRS = 21
	pinE  = 19
	pinD4 = 22
	pinD5 = 18
	pinD6 = 5
	pinD7 = 4
)

func ledBlink(count int) {
	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})
	for i := 0; i < count; i++ {
		led.High()
		time.Sleep(150 * time.Millisecond)
		led.Low()
		time.Sleep(150 * time.Millisecond)
	}
	time.Sleep(500 * time.Millisecond)
}

// halt reports a fatal error forever so a late serial monitor still sees it
func halt(logger *slog.Logger, msg string, err error) {
	for {
		logger.Error(msg, slog.Any("reason", err))
		ledBlink(3)
	}
}

func main() {
	logger := slog.New(slog.NewTextHandler(machine.Serial, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	UpdateSystemTime()
	core.SetDebugWriter(func(s string) { machine.Serial.Write([]byte(s + "\r\n")) })

	gpio, pins, err := openBus()
	if err != nil {
		halt(logger, "lcd:bus-init-failed", err)
	}

	ctx := context.Background()
	sched := core.NewScheduler(systemClock)
	go sched.Run(ctx, 20*time.Microsecond)

	cfg := lcd.DefaultConfig(pins)
	cfg.Logger = logger
	drv, err := lcd.Open(gpio, sched, cfg)
	if err != nil {
		halt(logger, "lcd:open-failed", err)
	}
	ledBlink(1)

	// Serial reader task feeds the display task over a small mailbox
	keys := make(chan byte, 16)
	go func() {
		pump := &lcd.Pump{Reader: machine.Serial, Out: keys, Logger: logger}
		if err := pump.Run(ctx); err != nil {
			logger.Error("serial:reader-stopped", slog.Any("reason", err))
		}
	}()

	if err := lcd.NewHandler(drv, keys, logger).Run(ctx); err != nil {
		halt(logger, "lcd:handler-stopped", err)
	}
	core.DumpTimingRing()
}

// openBus returns the GPIO driver and pin map for the selected wiring
func openBus() (core.GPIODriver, lcd.PinMap, error) {
	if wiring == "backpack" {
		err := machine.I2C0.Configure(machine.I2CConfig{
			SDA: machine.GP4,
			SCL: machine.GP5,
		})
		if err != nil {
			return nil, lcd.PinMap{}, err
		}
		exp := core.NewExpanderGPIO(machine.I2C0, core.PCF8574Address)
		if err := exp.SetBacklight(true); err != nil {
			return nil, lcd.PinMap{}, err
		}
		return exp, lcd.BackpackPins, nil
	}

	return NewRPGPIODriver(), lcd.PinMap{
		D4:             pinD4,
		D5:             pinD5,
		D6:             pinD6,
		D7:             pinD7,
		Enable:         pinE,
		RegisterSelect: pinRS,
	}, nil
}
