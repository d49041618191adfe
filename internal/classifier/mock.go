package classifier

import (
	"github.com/Sadra-Hemmati/voicedrive/internal/command"
	"github.com/Sadra-Hemmati/voicedrive/internal/sampler"
)

// MockClassifier replays scripted score vectors, one per Classify call.
// When the script runs out it repeats the last vector.
type MockClassifier struct {
	inputLength int
	script      [][]command.LabelScore
	pos         int
	// Err, when set, is returned by every Classify call.
	Err error
}

// NewMockClassifier creates a scripted classifier.
func NewMockClassifier(inputLength int, script ...[]command.LabelScore) *MockClassifier {
	return &MockClassifier{inputLength: inputLength, script: script}
}

func (m *MockClassifier) InputLength() int {
	return m.inputLength
}

func (m *MockClassifier) Classify(_ sampler.Frame) ([]command.LabelScore, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.script) == 0 {
		return nil, ErrClassify
	}
	scores := m.script[m.pos]
	if m.pos < len(m.script)-1 {
		m.pos++
	}
	return scores, nil
}
