package command

import (
	"errors"
	"os/exec"
	"strings"
)

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner creates a runner that executes real commands.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run executes the program in dir and returns its combined output with
// surrounding whitespace trimmed. On failure the returned error is a
// *CommandError carrying the output and the underlying exec error.
func (r *ExecRunner) Run(dir, program string, args ...string) (string, error) {
	cmd := exec.Command(program, args...)
	if dir != "" {
		cmd.Dir = dir
	}

	out, err := cmd.CombinedOutput()
	output := strings.TrimSpace(string(out))
	if err != nil {
		return output, &CommandError{
			Command: program,
			Args:    args,
			Output:  output,
			Err:     err,
		}
	}
	return output, nil
}

// HasExitCode reports whether the error chain carries an external tool's
// exit status, i.e. the tool ran and exited non-zero.
func HasExitCode(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}

// ExitCode extracts the external tool's exit status from an error chain.
// Exit codes pass through to the invoker unmodified; a failure that never
// produced an exit status (e.g. executable not found) reports fallback.
func ExitCode(err error, fallback int) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return fallback
}
