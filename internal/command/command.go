package command

import (
	"strings"
)

// Invocation describes an external tool invocation: executable name,
// argument list, and working directory. Tasks carry these instead of shell
// command strings.
type Invocation struct {
	Program string
	Args    []string
	Dir     string
}

// String renders the invocation for log lines.
func (i Invocation) String() string {
	if len(i.Args) == 0 {
		return i.Program
	}
	return i.Program + " " + strings.Join(i.Args, " ")
}

// Runner executes external commands.
// Implementations: ExecRunner (real execution) and MockRunner (testing).
type Runner interface {
	Run(dir, program string, args ...string) (string, error)
}

// CommandError wraps a failed command execution with its output.
type CommandError struct {
	Command string
	Args    []string
	Output  string
	Err     error
}

func (e *CommandError) Error() string {
	if e.Output != "" {
		return e.Output
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "command failed"
}

func (e *CommandError) Unwrap() error {
	return e.Err
}
