// Copyright (c) 2026 Sadra Hemmati
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package command

// Command is the persisted motor-drive state. The zero value is Stop so a
// freshly started controller is always in the safe state.
type Command uint8

const (
	Stop Command = iota
	Left
	Right
)

// Reserved classifier labels that can never become a command.
const (
	LabelNoise   = "noise"
	LabelUnknown = "unknown"
)

func (c Command) String() string {
	switch c {
	case Stop:
		return "stop"
	case Left:
		return "left"
	case Right:
		return "right"
	}
	return "unsupported"
}

// FromLabel maps a classifier label to a Command. The second return value is
// false for any label that is not one of the three command labels.
func FromLabel(label string) (Command, bool) {
	switch label {
	case "stop":
		return Stop, true
	case "left":
		return Left, true
	case "right":
		return Right, true
	}
	return Stop, false
}

// LabelScore is one element of the classifier's output vector.
type LabelScore struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"` // [0.0, 1.0]
}

// Status is the retained record the controller publishes at startup with
// its operating parameters.
type Status struct {
	SampleRate    int     `json:"sample_rate"`
	FrameSamples  int     `json:"frame_samples"`
	Alpha         float64 `json:"alpha"`
	MinConfidence float64 `json:"min_confidence"`
	Source        string  `json:"source"`
}

// Cycle is the telemetry record published after each command cycle.
type Cycle struct {
	Command    string  `json:"command"`
	Changed    bool    `json:"changed"`
	Label      string  `json:"label,omitempty"` // winning non-excluded label
	Confidence float64 `json:"confidence"`
	CaptureMS  int64   `json:"capture_ms"`
	Error      string  `json:"error,omitempty"`
}
