// Copyright (c) 2026 Sadra Hemmati
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package trigger

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// Trigger is the "start capture" gate, level-checked once per idle-loop
// iteration. Debouncing happens in hardware.
type Trigger interface {
	Pressed() (bool, error)
}

type gpioButton struct {
	pin gpio.PinIO
}

// NewGPIOButton configures the button pin as an input with the internal
// pull-up, so the button reads active-low.
func NewGPIOButton(pinName string) (Trigger, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("button: periph host init: %w", err)
	}

	pin := gpioreg.ByName(pinName)
	if pin == nil {
		return nil, fmt.Errorf("button: pin %q not found", pinName)
	}
	if err := pin.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return nil, fmt.Errorf("button: pin %q input mode: %w", pinName, err)
	}

	log.Printf("button: trigger ready on pin %s", pinName)
	return &gpioButton{pin: pin}, nil
}

func (b *gpioButton) Pressed() (bool, error) {
	return b.pin.Read() == gpio.Low, nil
}

// MockTrigger fires a fixed number of times, then reads released forever.
type MockTrigger struct {
	Remaining int
}

func (m *MockTrigger) Pressed() (bool, error) {
	if m.Remaining > 0 {
		m.Remaining--
		return true, nil
	}
	return false, nil
}
