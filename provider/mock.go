package provider

import (
	"context"
	"sync"
)

type mockStep struct {
	resp *Response
	err  error
}

// Mock is a scripted Provider for tests and offline runs. Steps are consumed
// in order on successive Generate calls; when the script is exhausted the
// last step repeats. An unscripted Mock echoes a canned reply.
type Mock struct {
	mu       sync.Mutex
	script   []mockStep
	calls    int
	requests []*Request
}

// NewMock creates a Mock that replies with the given contents in order.
func NewMock(contents ...string) *Mock {
	m := &Mock{}
	for _, c := range contents {
		m.script = append(m.script, mockStep{resp: &Response{Content: c, Model: "mock"}})
	}
	return m
}

// FailWith appends a failing step to the script.
func (m *Mock) FailWith(err error) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockStep{err: err})
	return m
}

// Reply appends a successful step to the script.
func (m *Mock) Reply(content string) *Mock {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.script = append(m.script, mockStep{resp: &Response{Content: content, Model: "mock"}})
	return m
}

// Calls returns how many Generate calls the mock has served.
func (m *Mock) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// LastRequest returns the most recent request, or nil.
func (m *Mock) LastRequest() *Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.requests) == 0 {
		return nil
	}
	return m.requests[len(m.requests)-1]
}

func (m *Mock) Name() string { return BackendMock }

func (m *Mock) Generate(ctx context.Context, req *Request) (*Response, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	i := m.calls
	m.calls++
	m.requests = append(m.requests, req)

	if len(m.script) == 0 {
		return &Response{Content: "mock response", Model: "mock"}, nil
	}
	if i >= len(m.script) {
		i = len(m.script) - 1
	}

	step := m.script[i]
	if step.err != nil {
		return nil, step.err
	}
	return step.resp, nil
}
