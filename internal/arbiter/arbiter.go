// Copyright (c) 2026 Sadra Hemmati
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package arbiter turns one classifier score vector into a motor command.
// Its one rule worth stating: ambiguous input never blanks the state. If no
// non-excluded label clears the confidence threshold, the previous command
// stands, so the device always has a last-known-good command to drive.
package arbiter

import (
	"strings"

	"github.com/Sadra-Hemmati/voicedrive/internal/command"
)

// Exclusions is the set of labels that can never become a command,
// regardless of confidence. Keyed by label name, never by vector position.
type Exclusions map[string]bool

// NewExclusions builds an exclusion set from label names. Empty names are
// ignored so a config value like "noise,unknown," parses cleanly.
func NewExclusions(labels ...string) Exclusions {
	e := make(Exclusions, len(labels))
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		e[l] = true
	}
	return e
}

// ParseExclusions builds an exclusion set from a comma-separated config value.
func ParseExclusions(s string) Exclusions {
	return NewExclusions(strings.Split(s, ",")...)
}

// Decide scans the score vector for the most confident non-excluded label.
// Ties resolve to the first label in scan order: the comparison is strictly
// greater-than, so later equal scores never overwrite the winner.
//
// The winning label becomes the new command only if its confidence is at
// least minConfidence and it names one of the three command labels.
// Otherwise current is returned unchanged with changed=false.
func Decide(scores []command.LabelScore, current command.Command, excluded Exclusions, minConfidence float64) (command.Command, bool) {
	best := -1
	for i, s := range scores {
		if excluded[s.Label] {
			continue
		}
		if best < 0 || s.Confidence > scores[best].Confidence {
			best = i
		}
	}

	if best < 0 || scores[best].Confidence < minConfidence {
		return current, false
	}

	cmd, ok := command.FromLabel(scores[best].Label)
	if !ok {
		return current, false
	}
	if cmd == current {
		return current, false
	}
	return cmd, true
}

// Winner returns the most confident non-excluded score for telemetry.
// The boolean is false when every label is excluded.
func Winner(scores []command.LabelScore, excluded Exclusions) (command.LabelScore, bool) {
	best := -1
	for i, s := range scores {
		if excluded[s.Label] {
			continue
		}
		if best < 0 || s.Confidence > scores[best].Confidence {
			best = i
		}
	}
	if best < 0 {
		return command.LabelScore{}, false
	}
	return scores[best], true
}
