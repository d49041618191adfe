// Copyright (c) 2026 Sadra Hemmati
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package actuator

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/host/v3"

	"github.com/Sadra-Hemmati/voicedrive/internal/command"
)

// Driver is the motor-drive capability. The mapping from Command to pin
// state is total: every command variant produces exactly one electrical
// state, and Stop always means fully de-energized.
type Driver interface {
	// Drive asserts the electrical state for cmd. Idempotent; the
	// controller re-asserts the current command every cycle.
	Drive(cmd command.Command) error
	// Stop de-energizes the motor. Equivalent to Drive(command.Stop) but
	// kept separate so the pre-capture safety shutdown reads as what it is.
	Stop() error
	Close() error
}

type gpioDriver struct {
	left   gpio.PinIO
	right  gpio.PinIO
	enable gpio.PinIO
	duty   gpio.Duty
	freq   physic.Frequency
}

// NewGPIODriver initializes the H-bridge pins: two direction pins plus a PWM
// enable pin driven at the configured duty when energized.
func NewGPIODriver(leftPin, rightPin, enablePin string, dutyPercent int, pwmHz int) (Driver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("motor: periph host init: %w", err)
	}

	left := gpioreg.ByName(leftPin)
	if left == nil {
		return nil, fmt.Errorf("motor: left pin %q not found", leftPin)
	}
	right := gpioreg.ByName(rightPin)
	if right == nil {
		return nil, fmt.Errorf("motor: right pin %q not found", rightPin)
	}
	enable := gpioreg.ByName(enablePin)
	if enable == nil {
		return nil, fmt.Errorf("motor: enable pin %q not found", enablePin)
	}

	if dutyPercent < 0 || dutyPercent > 100 {
		return nil, fmt.Errorf("motor: duty must be 0-100%%, got %d", dutyPercent)
	}
	duty := gpio.Duty(int64(gpio.DutyMax) * int64(dutyPercent) / 100)

	d := &gpioDriver{
		left:   left,
		right:  right,
		enable: enable,
		duty:   duty,
		freq:   physic.Frequency(pwmHz) * physic.Hertz,
	}

	// Start de-energized.
	if err := d.Stop(); err != nil {
		return nil, err
	}
	log.Printf("motor: driver ready (left=%s right=%s enable=%s duty=%d%%)",
		leftPin, rightPin, enablePin, dutyPercent)
	return d, nil
}

func (d *gpioDriver) Drive(cmd command.Command) error {
	switch cmd {
	case command.Left:
		return d.energize(gpio.High, gpio.Low)
	case command.Right:
		return d.energize(gpio.Low, gpio.High)
	default:
		return d.Stop()
	}
}

func (d *gpioDriver) energize(left, right gpio.Level) error {
	if err := d.left.Out(left); err != nil {
		return fmt.Errorf("motor: left pin: %w", err)
	}
	if err := d.right.Out(right); err != nil {
		return fmt.Errorf("motor: right pin: %w", err)
	}
	if err := d.enable.PWM(d.duty, d.freq); err != nil {
		return fmt.Errorf("motor: enable PWM: %w", err)
	}
	return nil
}

func (d *gpioDriver) Stop() error {
	// Direction pins to a safe level before cutting the enable, so the
	// bridge never sees a partial-energized state.
	if err := d.left.Out(gpio.Low); err != nil {
		return fmt.Errorf("motor: left pin: %w", err)
	}
	if err := d.right.Out(gpio.Low); err != nil {
		return fmt.Errorf("motor: right pin: %w", err)
	}
	if err := d.enable.Out(gpio.Low); err != nil {
		return fmt.Errorf("motor: enable pin: %w", err)
	}
	return nil
}

func (d *gpioDriver) Close() error {
	return d.Stop()
}
