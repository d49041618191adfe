// Copyright (c) 2026 Sadra Hemmati
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package analog

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/analog"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/devices/v3/ads1x15"
	"periph.io/x/host/v3"
)

// ADS1115Source reads the analog audio line through an ADS1115 I2C ADC and
// rescales each reading onto the configured raw range, so the sampler sees
// the same 0..RawMax scale regardless of the ADC behind it.
type ADS1115Source struct {
	pin    ads1x15.PinADC
	rawMax int
}

// NewADS1115Source opens the I2C bus and binds one single-ended channel at
// the given conversion rate. The rate should be at least the sampler's
// sample rate or reads will block longer than one sample interval.
func NewADS1115Source(busName string, channel int, rateHz int, rawMax int) (*ADS1115Source, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("adc: periph host init: %w", err)
	}

	bus, err := i2creg.Open(busName)
	if err != nil {
		return nil, fmt.Errorf("adc: I2C open: %w", err)
	}

	adc, err := ads1x15.NewADS1115(bus, &ads1x15.DefaultOpts)
	if err != nil {
		return nil, fmt.Errorf("adc: ADS1115 init: %w", err)
	}

	channels := []ads1x15.Channel{ads1x15.Channel0, ads1x15.Channel1, ads1x15.Channel2, ads1x15.Channel3}
	if channel < 0 || channel >= len(channels) {
		return nil, fmt.Errorf("adc: channel must be 0-3, got %d", channel)
	}

	pin, err := adc.PinForChannel(channels[channel], 3300*physic.MilliVolt,
		physic.Frequency(rateHz)*physic.Hertz, ads1x15.SaveEnergy)
	if err != nil {
		return nil, fmt.Errorf("adc: channel %d: %w", channel, err)
	}

	log.Printf("adc: ADS1115 ready (bus=%q channel=%d rate=%dHz)", busName, channel, rateHz)
	return &ADS1115Source{pin: pin, rawMax: rawMax}, nil
}

// Read returns one raw reading rescaled to [0, rawMax].
func (s *ADS1115Source) Read() (int, error) {
	sample, err := s.pin.Read()
	if err != nil {
		return 0, fmt.Errorf("adc: read: %w", err)
	}
	return rescale(sample, s.rawMax), nil
}

// rescale maps the ADS1115's single-ended 15-bit range onto [0, rawMax].
// Negative readings (line floating below ground reference) clamp to zero.
func rescale(sample analog.Sample, rawMax int) int {
	raw := int(sample.Raw) * (rawMax + 1) / 32768
	if raw < 0 {
		return 0
	}
	if raw > rawMax {
		return rawMax
	}
	return raw
}

func (s *ADS1115Source) Close() error {
	return s.pin.Halt()
}
