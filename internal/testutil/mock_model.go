package testutil

import (
	"context"
	"sync"
)

// ModelStep is one scripted Generate outcome.
type ModelStep struct {
	Reply string
	Err   error
}

// MockModel is a scripted stand-in for the model client. Each Generate
// call consumes the next step of the script; when the script runs out
// the last step repeats. Recorded prompts allow assertions on context
// assembly.
type MockModel struct {
	mu      sync.Mutex
	Script  []ModelStep
	prompts []string
}

func (m *MockModel) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := len(m.prompts)
	m.prompts = append(m.prompts, prompt)

	if len(m.Script) == 0 {
		return "ok", nil
	}
	if idx >= len(m.Script) {
		idx = len(m.Script) - 1
	}
	return m.Script[idx].Reply, m.Script[idx].Err
}

func (m *MockModel) Name() string {
	return "mock"
}

// Prompts returns a copy of all recorded prompts.
func (m *MockModel) Prompts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.prompts))
	copy(out, m.prompts)
	return out
}

// CallCount returns how many times Generate was invoked.
func (m *MockModel) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.prompts)
}

// Reset clears the script and recorded prompts.
func (m *MockModel) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Script = nil
	m.prompts = nil
}
