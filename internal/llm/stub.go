package llm

import (
	"context"
	"sync"
)

// Call records one prompt sent to a Stub
type Call struct {
	System string
	User   string
}

// Stub is a scripted Generator for tests and dry runs.
// Responses are returned in order; the last one repeats once exhausted.
type Stub struct {
	mu        sync.Mutex
	responses []string
	err       error
	calls     []Call
}

// NewStub creates a stub that answers with the given responses
func NewStub(responses ...string) *Stub {
	return &Stub{responses: responses}
}

// NewFailingStub creates a stub whose every call fails with err
func NewFailingStub(err error) *Stub {
	return &Stub{err: err}
}

// Name identifies the stub provider
func (s *Stub) Name() string {
	return "stub"
}

// Generate returns the next scripted response
func (s *Stub) Generate(ctx context.Context, system, user string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.calls = append(s.calls, Call{System: system, User: user})
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.err != nil {
		return "", s.err
	}
	if len(s.responses) == 0 {
		return "", ErrEmptyResponse
	}

	resp := s.responses[0]
	if len(s.responses) > 1 {
		s.responses = s.responses[1:]
	}
	return resp, nil
}

// Calls returns the prompts received so far
func (s *Stub) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()

	return append([]Call(nil), s.calls...)
}
