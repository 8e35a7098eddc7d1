package runtime

import (
	"context"
	"sync"
)

// MockCompose is a mock implementation of Compose for testing.
type MockCompose struct {
	mu sync.Mutex

	// Errors maps an operation ("pull", "up", "down", "ps", "passthrough", "run")
	// to the error it should return.
	Errors map[string]error

	// PsOutput is returned by Ps.
	PsOutput string

	// CallLog records all method calls for verification.
	CallLog []MockCall
}

// MockCall represents a recorded method call.
type MockCall struct {
	Method string
	Target Target
	Args   []string
	Down   DownOptions
}

// NewMockCompose creates a new mock.
func NewMockCompose() *MockCompose {
	return &MockCompose{Errors: make(map[string]error)}
}

func (m *MockCompose) record(call MockCall) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.CallLog = append(m.CallLog, call)
	return m.Errors[call.Method]
}

// SetError makes an operation fail.
func (m *MockCompose) SetError(method string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Errors[method] = err
}

// Methods returns the recorded method names in call order.
func (m *MockCompose) Methods() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.CallLog))
	for i, c := range m.CallLog {
		out[i] = c.Method
	}
	return out
}

// LastCall returns the most recent call.
func (m *MockCompose) LastCall() (MockCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.CallLog) == 0 {
		return MockCall{}, false
	}
	return m.CallLog[len(m.CallLog)-1], true
}

func (m *MockCompose) Name() string { return "mock" }

func (m *MockCompose) Pull(_ context.Context, t Target) error {
	return m.record(MockCall{Method: "pull", Target: t})
}

func (m *MockCompose) Up(_ context.Context, t Target) error {
	return m.record(MockCall{Method: "up", Target: t})
}

func (m *MockCompose) Down(_ context.Context, t Target, opts DownOptions) error {
	return m.record(MockCall{Method: "down", Target: t, Down: opts})
}

func (m *MockCompose) Ps(_ context.Context, t Target) (string, error) {
	if err := m.record(MockCall{Method: "ps", Target: t}); err != nil {
		return "", err
	}
	return m.PsOutput, nil
}

func (m *MockCompose) Passthrough(_ context.Context, t Target, args []string) error {
	return m.record(MockCall{Method: "passthrough", Target: t, Args: args})
}

func (m *MockCompose) Run(_ context.Context, args []string) error {
	return m.record(MockCall{Method: "run", Args: args})
}

// MockContainers is a mock implementation of Containers.
type MockContainers struct {
	// Projects maps compose project names to their containers.
	Projects map[string][]Container
	Err      error
	Closed   bool
}

func (m *MockContainers) List(_ context.Context, composeName string) ([]Container, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Projects[composeName], nil
}

func (m *MockContainers) Close() error {
	m.Closed = true
	return nil
}
