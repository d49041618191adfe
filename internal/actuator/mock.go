package actuator

import (
	"sync"

	"github.com/Sadra-Hemmati/voicedrive/internal/command"
)

// MockDriver records every drive call. Used by tests and the mock
// controller binary.
type MockDriver struct {
	mu     sync.Mutex
	Drives []command.Command
	Stops  int
}

// NewMockDriver creates a mock motor driver.
func NewMockDriver() *MockDriver {
	return &MockDriver{}
}

func (m *MockDriver) Drive(cmd command.Command) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Drives = append(m.Drives, cmd)
	return nil
}

func (m *MockDriver) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Stops++
	return nil
}

func (m *MockDriver) Close() error { return nil }

// Last returns the most recently driven command, or Stop if none.
func (m *MockDriver) Last() command.Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Drives) == 0 {
		return command.Stop
	}
	return m.Drives[len(m.Drives)-1]
}
