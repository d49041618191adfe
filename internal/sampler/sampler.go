// Copyright (c) 2026 Sadra Hemmati
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package sampler

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// ErrCapture wraps any reader failure during a capture run. A failed run
// produces no frame; partial frames are never returned.
var ErrCapture = errors.New("capture aborted")

// Frame is one full capture of quantized audio samples, the classifier's
// required input unit. Immutable once returned by Capture.
type Frame []int8

// Reader returns one raw analog reading in [0, RawMax] per call.
type Reader interface {
	Read() (int, error)
}

// Config holds the fixed acquisition parameters. These come from the config
// file at startup and never change at runtime.
type Config struct {
	SampleRate int           // Hz
	CutoffHz   int           // low-pass cutoff frequency
	Duration   time.Duration // length of one capture
	RawMax     int           // full-scale raw reading, e.g. 1023 for a 10-bit ADC
}

// SampleCount returns the number of samples in one frame. The controller
// checks this against the classifier's expected input length at startup;
// a mismatch is a configuration error, not something Capture can detect.
func (c Config) SampleCount() int {
	return int(c.Duration.Seconds() * float64(c.SampleRate))
}

// Interval returns the fixed inter-sample period. Holding this constant is
// part of the filter's contract: jitter shifts the effective cutoff.
func (c Config) Interval() time.Duration {
	return time.Duration(int64(time.Second) / int64(c.SampleRate))
}

// Alpha returns the low-pass coefficient derived via the bilinear transform:
// alpha = w/(w+1) with w = 2*pi*cutoff*dt. Always in (0, 1) for valid configs.
func (c Config) Alpha() float64 {
	dt := 1.0 / float64(c.SampleRate)
	w := 2 * math.Pi * float64(c.CutoffHz) * dt
	return w / (w + 1)
}

func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be positive, got %d", c.SampleRate)
	}
	if c.CutoffHz <= 0 {
		return fmt.Errorf("cutoff frequency must be positive, got %d", c.CutoffHz)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("capture duration must be positive, got %s", c.Duration)
	}
	if c.RawMax <= 0 {
		return fmt.Errorf("raw full-scale must be positive, got %d", c.RawMax)
	}
	// All-positive fields can still truncate to an empty frame when the
	// duration is shorter than one sample interval.
	if c.SampleCount() < 1 {
		return fmt.Errorf("duration %s at %d Hz yields no samples", c.Duration, c.SampleRate)
	}
	return nil
}

// quantize rescales a raw reading in [0, rawMax] to a signed 8-bit sample
// centered on zero.
func quantize(raw, rawMax int) int8 {
	mid := float64(rawMax+1) / 2
	q := math.Round((float64(raw) - mid) * 127 / mid)
	return clamp(q)
}

func clamp(v float64) int8 {
	if v > 127 {
		return 127
	}
	if v < -128 {
		return -128
	}
	return int8(v)
}

// Capture drives one full acquisition run: it reads sampleCount raw values at
// the fixed sample interval, quantizes each to signed 8-bit, and applies the
// exponential low-pass filter inline. The first sample seeds the filter state
// and is stored unfiltered; filter state does not outlive the run.
//
// Any reader error aborts the run and returns a wrapped ErrCapture.
func Capture(cfg Config, r Reader) (Frame, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	n := cfg.SampleCount()
	alpha := cfg.Alpha()
	frame := make(Frame, n)

	raw, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: sample 0: %v", ErrCapture, err)
	}
	prev := quantize(raw, cfg.RawMax)
	frame[0] = prev

	ticker := time.NewTicker(cfg.Interval())
	defer ticker.Stop()

	for i := 1; i < n; i++ {
		<-ticker.C

		raw, err := r.Read()
		if err != nil {
			return nil, fmt.Errorf("%w: sample %d: %v", ErrCapture, i, err)
		}
		q := quantize(raw, cfg.RawMax)
		filtered := clamp(math.Round(float64(q)*alpha + float64(prev)*(1-alpha)))
		frame[i] = filtered
		prev = filtered
	}

	return frame, nil
}
