package command

import "strings"

// MockResponse is a scripted response for a mocked command.
type MockResponse struct {
	Stdout string
	Err    error
}

// MockCall records a single Run invocation for later assertions.
type MockCall struct {
	WorkDir string
	Command string
	Args    []string
}

// MockRunner implements Runner with scripted responses. Responses are keyed
// by "program args..." with the bare program name and "*" as fallbacks.
type MockRunner struct {
	Responses       map[string]MockResponse
	DefaultResponse MockResponse
	Calls           []MockCall
}

// NewMockRunner creates a MockRunner with an initialized response map.
func NewMockRunner() *MockRunner {
	return &MockRunner{
		Responses: make(map[string]MockResponse),
	}
}

// responseSetter allows OnCommand(...).Return(...) style setup.
type responseSetter struct {
	runner *MockRunner
	key    string
}

// Return sets the scripted response for the matched command.
func (s responseSetter) Return(stdout string, err error) {
	s.runner.Responses[s.key] = MockResponse{Stdout: stdout, Err: err}
}

// OnCommand scripts a response for an exact program+args match.
func (m *MockRunner) OnCommand(program string, args ...string) responseSetter {
	return responseSetter{runner: m, key: mockKey(program, args)}
}

// OnAnyCommand scripts a wildcard response used when nothing else matches.
func (m *MockRunner) OnAnyCommand() responseSetter {
	return responseSetter{runner: m, key: "*"}
}

// Run records the call and returns the first matching scripted response:
// exact program+args, then bare program, then wildcard, then default.
func (m *MockRunner) Run(dir, program string, args ...string) (string, error) {
	m.Calls = append(m.Calls, MockCall{WorkDir: dir, Command: program, Args: args})

	if resp, ok := m.Responses[mockKey(program, args)]; ok {
		return resp.Stdout, resp.Err
	}
	if resp, ok := m.Responses[program]; ok {
		return resp.Stdout, resp.Err
	}
	if resp, ok := m.Responses["*"]; ok {
		return resp.Stdout, resp.Err
	}
	return m.DefaultResponse.Stdout, m.DefaultResponse.Err
}

// WasCalled reports whether a command with the given program and argument
// prefix was run.
func (m *MockRunner) WasCalled(program string, argPrefix ...string) bool {
	for _, call := range m.Calls {
		if call.Command != program {
			continue
		}
		if len(argPrefix) > len(call.Args) {
			continue
		}
		if argsMatch(call.Args[:len(argPrefix)], argPrefix) {
			return true
		}
	}
	return false
}

// CallCount returns the number of times a program was run.
func (m *MockRunner) CallCount(program string) int {
	count := 0
	for _, call := range m.Calls {
		if call.Command == program {
			count++
		}
	}
	return count
}

func mockKey(program string, args []string) string {
	if len(args) == 0 {
		return program
	}
	return program + " " + strings.Join(args, " ")
}

func argsMatch(actual, expected []string) bool {
	if len(actual) != len(expected) {
		return false
	}
	for i := range actual {
		if actual[i] != expected[i] {
			return false
		}
	}
	return true
}
