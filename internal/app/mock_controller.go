// Copyright (c) 2026 Sadra Hemmati
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"fmt"
	"time"

	"github.com/Sadra-Hemmati/voicedrive/internal/actuator"
	"github.com/Sadra-Hemmati/voicedrive/internal/analog"
	"github.com/Sadra-Hemmati/voicedrive/internal/arbiter"
	"github.com/Sadra-Hemmati/voicedrive/internal/classifier"
	"github.com/Sadra-Hemmati/voicedrive/internal/command"
	"github.com/Sadra-Hemmati/voicedrive/internal/sampler"
)

// RunMockController runs the full pipeline against mock hardware: a scripted
// signal source, a scripted classifier and a recording motor driver. Lets
// the loop be exercised on a laptop without an ADC, a model or a broker.
func RunMockController() error {
	samplerCfg := sampler.Config{
		SampleRate: 2000,
		CutoffHz:   800,
		Duration:   100 * time.Millisecond,
		RawMax:     1023,
	}

	// One scripted score vector per button press.
	script := [][]command.LabelScore{
		{{Label: "left", Confidence: 0.81}, {Label: command.LabelNoise, Confidence: 0.10},
			{Label: "right", Confidence: 0.05}, {Label: "stop", Confidence: 0.02},
			{Label: command.LabelUnknown, Confidence: 0.02}},
		{{Label: "left", Confidence: 0.12}, {Label: command.LabelNoise, Confidence: 0.80},
			{Label: "right", Confidence: 0.04}, {Label: "stop", Confidence: 0.02},
			{Label: command.LabelUnknown, Confidence: 0.02}},
		{{Label: "left", Confidence: 0.05}, {Label: command.LabelNoise, Confidence: 0.08},
			{Label: "right", Confidence: 0.70}, {Label: "stop", Confidence: 0.12},
			{Label: command.LabelUnknown, Confidence: 0.05}},
		{{Label: "left", Confidence: 0.03}, {Label: command.LabelNoise, Confidence: 0.05},
			{Label: "right", Confidence: 0.04}, {Label: "stop", Confidence: 0.85},
			{Label: command.LabelUnknown, Confidence: 0.03}},
	}

	driver := actuator.NewMockDriver()
	ctrl := &Controller{
		SamplerCfg:    samplerCfg,
		Reader:        analog.NewMockSource(512, 700, 300, 512, 600, 400),
		Classifier:    classifier.NewMockClassifier(samplerCfg.SampleCount(), script...),
		Driver:        driver,
		Excluded:      arbiter.NewExclusions(command.LabelNoise, command.LabelUnknown),
		MinConfidence: 0.25,
	}

	for i := range script {
		cycle := ctrl.RunCycle()
		fmt.Printf(
			"press %d: cmd=%-5s changed=%-5v label=%-8s conf=%.2f capture=%dms motor=%s\n",
			i+1, cycle.Command, cycle.Changed, cycle.Label, cycle.Confidence,
			cycle.CaptureMS, driver.Last(),
		)
	}
	return nil
}
