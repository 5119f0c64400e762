package llm

import "context"

// MockGenerator is a test double for Generator. Configure either a canned
// completion or an error; calls are counted for assertion.
type MockGenerator struct {
	Completion *Completion
	Err        error
	PingErr    error
	ModelName  string

	Calls   int
	Prompts []string
}

// Generate returns the configured completion or error.
func (m *MockGenerator) Generate(_ context.Context, prompt string) (*Completion, error) {
	m.Calls++
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Completion, nil
}

// Ping returns the configured ping error.
func (m *MockGenerator) Ping(context.Context) error {
	return m.PingErr
}

// Model returns the configured model name.
func (m *MockGenerator) Model() string {
	if m.ModelName == "" {
		return "mock"
	}
	return m.ModelName
}
