package analog

import "errors"

// MockSource replays a scripted sequence of raw readings. When the script is
// exhausted it repeats the last value, so a one-element script acts as a
// constant signal.
type MockSource struct {
	script []int
	pos    int
	// FailAt aborts the run with an error at the given read index (0-based).
	// Negative means never fail.
	FailAt int
	reads  int
}

// NewMockSource creates a mock reader from a script of raw values.
func NewMockSource(script ...int) *MockSource {
	return &MockSource{script: script, FailAt: -1}
}

func (m *MockSource) Read() (int, error) {
	if m.FailAt >= 0 && m.reads == m.FailAt {
		return 0, errors.New("mock read failure")
	}
	m.reads++

	if len(m.script) == 0 {
		return 0, errors.New("mock source: empty script")
	}
	v := m.script[m.pos]
	if m.pos < len(m.script)-1 {
		m.pos++
	}
	return v, nil
}

// Reset rewinds the script so the same source can back another run.
func (m *MockSource) Reset() {
	m.pos = 0
	m.reads = 0
}
