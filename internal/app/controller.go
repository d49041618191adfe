// Copyright (c) 2026 Sadra Hemmati
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/Sadra-Hemmati/voicedrive/internal/actuator"
	"github.com/Sadra-Hemmati/voicedrive/internal/analog"
	"github.com/Sadra-Hemmati/voicedrive/internal/arbiter"
	"github.com/Sadra-Hemmati/voicedrive/internal/classifier"
	"github.com/Sadra-Hemmati/voicedrive/internal/command"
	"github.com/Sadra-Hemmati/voicedrive/internal/config"
	"github.com/Sadra-Hemmati/voicedrive/internal/sampler"
	"github.com/Sadra-Hemmati/voicedrive/internal/trigger"
)

// Controller owns the single command cycle: safety stop, capture, classify,
// arbitrate, drive. It is the only writer of the current command.
type Controller struct {
	SamplerCfg    sampler.Config
	Reader        sampler.Reader
	Classifier    classifier.Classifier
	Driver        actuator.Driver
	Excluded      arbiter.Exclusions
	MinConfidence float64

	current command.Command // starts at Stop
}

// Current returns the retained command.
func (c *Controller) Current() command.Command {
	return c.current
}

// RunCycle executes one full command cycle and returns its telemetry record.
// Error policy:
//   - capture failure: command unchanged, actuator restored to the command it
//     was driving before the pre-capture shutdown;
//   - classify failure: command unchanged, actuator left de-energized (the
//     pre-capture shutdown already applied the safe state);
//   - ambiguous result: not an error, previous command re-asserted.
func (c *Controller) RunCycle() command.Cycle {
	// Kill motor noise before sampling the audio line.
	if err := c.Driver.Stop(); err != nil {
		log.Printf("controller: safety stop error: %v", err)
	}

	start := time.Now()
	frame, err := sampler.Capture(c.SamplerCfg, c.Reader)
	if err != nil {
		// Restore the actuator to its pre-cycle state.
		if derr := c.Driver.Drive(c.current); derr != nil {
			log.Printf("controller: actuator restore error: %v", derr)
		}
		return command.Cycle{
			Command:   c.current.String(),
			CaptureMS: time.Since(start).Milliseconds(),
			Error:     err.Error(),
		}
	}
	captureMS := time.Since(start).Milliseconds()

	scores, err := c.Classifier.Classify(frame)
	if err != nil {
		// Motor stays de-energized; a failed classification must not
		// leave a stale energized state.
		return command.Cycle{
			Command:   c.current.String(),
			CaptureMS: captureMS,
			Error:     err.Error(),
		}
	}

	next, changed := arbiter.Decide(scores, c.current, c.Excluded, c.MinConfidence)
	c.current = next

	if err := c.Driver.Drive(c.current); err != nil {
		log.Printf("controller: drive error: %v", err)
	}

	cycle := command.Cycle{
		Command:   c.current.String(),
		Changed:   changed,
		CaptureMS: captureMS,
	}
	if win, ok := arbiter.Winner(scores, c.Excluded); ok {
		cycle.Label = win.Label
		cycle.Confidence = win.Confidence
	}
	return cycle
}

// RunController wires the hardware from config and runs the idle loop:
// poll the button, run one cycle per press, publish telemetry.
func RunController() error {
	log.Println("starting voicedrive controller")

	cfg := config.Get()

	samplerCfg := sampler.Config{
		SampleRate: cfg.SampleRate,
		CutoffHz:   cfg.CutoffFreq,
		Duration:   time.Duration(cfg.CaptureSeconds) * time.Second,
		RawMax:     cfg.ADCRawMax,
	}
	if err := samplerCfg.Validate(); err != nil {
		return fmt.Errorf("sampler config: %w", err)
	}

	// Hard precondition: the frame length must match the model's input
	// length. A mismatch is a configuration error, so the controller must
	// never enter its operating loop.
	if samplerCfg.SampleCount() != cfg.ClassifierInputLen {
		return fmt.Errorf("config: capture yields %d samples but classifier expects %d",
			samplerCfg.SampleCount(), cfg.ClassifierInputLen)
	}

	labels := splitLabels(cfg.ClassifierLabels)
	cls, err := classifier.NewHTTPClassifier(cfg.ClassifierURL, cfg.ClassifierInputLen,
		labels, time.Duration(cfg.ClassifierTimeoutMS)*time.Millisecond)
	if err != nil {
		return err
	}

	reader, err := newReader(cfg)
	if err != nil {
		return err
	}

	driver, err := actuator.NewGPIODriver(cfg.MotorLeftPin, cfg.MotorRightPin,
		cfg.MotorEnablePin, cfg.MotorDutyPct, cfg.MotorPWMFreq)
	if err != nil {
		return err
	}
	defer driver.Close()

	button, err := trigger.NewGPIOButton(cfg.ButtonPin)
	if err != nil {
		return err
	}

	// --- connect to MQTT ---
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.MQTTBroker).
		SetClientID(cfg.MQTTClientIDController)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("MQTT connect error: %w", token.Error())
	}
	defer client.Disconnect(250)

	ctrl := &Controller{
		SamplerCfg:    samplerCfg,
		Reader:        reader,
		Classifier:    cls,
		Driver:        driver,
		Excluded:      arbiter.ParseExclusions(cfg.ExcludedLabels),
		MinConfidence: cfg.MinConfidence,
	}

	// Announce readiness on the status topic, retained so late subscribers
	// see the operating parameters.
	status := command.Status{
		SampleRate:    cfg.SampleRate,
		FrameSamples:  samplerCfg.SampleCount(),
		Alpha:         samplerCfg.Alpha(),
		MinConfidence: cfg.MinConfidence,
		Source:        cfg.SampleSource,
	}
	if payload, err := json.Marshal(status); err == nil {
		if token := client.Publish(cfg.TopicStatus, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("controller: MQTT publish error (status): %v", token.Error())
		}
	}

	log.Printf("controller: ready (%d samples/frame, alpha=%.4f, min confidence %.2f)",
		samplerCfg.SampleCount(), samplerCfg.Alpha(), cfg.MinConfidence)

	ticker := time.NewTicker(time.Duration(cfg.IdlePollInterval) * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		pressed, err := button.Pressed()
		if err != nil {
			log.Printf("controller: button read error: %v", err)
			continue
		}
		if !pressed {
			continue
		}

		cycle := ctrl.RunCycle()
		if cycle.Error != "" {
			log.Printf("controller: cycle error: %s (command held at %s)", cycle.Error, cycle.Command)
		} else {
			log.Printf("controller: cycle: command=%s changed=%v label=%s conf=%.2f capture=%dms",
				cycle.Command, cycle.Changed, cycle.Label, cycle.Confidence, cycle.CaptureMS)
		}

		payload, err := json.Marshal(cycle)
		if err != nil {
			log.Printf("controller: cycle marshal error: %v", err)
			continue
		}
		if token := client.Publish(cfg.TopicCycle, 0, true, payload); token.Wait() && token.Error() != nil {
			log.Printf("controller: MQTT publish error (cycle): %v", token.Error())
		}
	}
	return nil
}

// newReader builds the configured sample source.
func newReader(cfg *config.Config) (sampler.Reader, error) {
	switch cfg.SampleSource {
	case "serial":
		return analog.NewSerialSource(cfg.SerialPort, uint(cfg.SerialBaudRate), cfg.ADCRawMax)
	default:
		return analog.NewADS1115Source(cfg.ADCI2CBus, cfg.ADCChannel, cfg.SampleRate, cfg.ADCRawMax)
	}
}

func splitLabels(s string) []string {
	var labels []string
	for _, l := range strings.Split(s, ",") {
		l = strings.TrimSpace(l)
		if l != "" {
			labels = append(labels, l)
		}
	}
	return labels
}
