package generation

import (
	"context"
	"fmt"
	"sync"
)

// ResponseFunc decides the outcome of the call-th request, counting from zero.
type ResponseFunc func(call int, req Request) (string, error)

// MockGenerator is a scripted Generator for tests. It records
// every request it receives.
type MockGenerator struct {
	mu      sync.Mutex
	respond ResponseFunc
	calls   []Request
}

// NewMockGenerator creates a mock. A nil respond returns "generated text N".
func NewMockGenerator(respond ResponseFunc) *MockGenerator {
	if respond == nil {
		respond = func(call int, _ Request) (string, error) {
			return fmt.Sprintf("generated text %d", call+1), nil
		}
	}
	return &MockGenerator{respond: respond}
}

func (m *MockGenerator) Generate(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	call := len(m.calls)
	m.calls = append(m.calls, req)
	m.mu.Unlock()

	return m.respond(call, req)
}

// Calls returns a copy of the recorded requests.
func (m *MockGenerator) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Request, len(m.calls))
	copy(out, m.calls)
	return out
}

func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// FailFirst fails the first n calls with err and then returns text.
func FailFirst(n int, err error, text string) ResponseFunc {
	return func(call int, _ Request) (string, error) {
		if call < n {
			return "", err
		}
		return text, nil
	}
}
