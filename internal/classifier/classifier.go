// Copyright (c) 2026 Sadra Hemmati
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package classifier defines the external classifier capability. The model
// itself runs out of process; this package only carries frames to it and
// validates what comes back.
package classifier

import (
	"errors"

	"github.com/Sadra-Hemmati/voicedrive/internal/command"
	"github.com/Sadra-Hemmati/voicedrive/internal/sampler"
)

// ErrClassify wraps any adapter failure: transport errors, non-success
// status, or a malformed score vector. A failure is always reported, never
// substituted with zero-confidence scores.
var ErrClassify = errors.New("classification failed")

// Classifier scores one frame against the fixed label set.
type Classifier interface {
	// InputLength is the frame length the model expects. Checked against
	// the sampler config once at startup.
	InputLength() int
	// Classify returns one score per known label, in a deterministic
	// order, with confidences in [0.0, 1.0].
	Classify(frame sampler.Frame) ([]command.LabelScore, error)
}
