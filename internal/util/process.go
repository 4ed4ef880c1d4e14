package util

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"

	"dotverify/internal/common"
)

// ProcessSpec describes one synchronous run of an external program.
type ProcessSpec struct {
	Executable string
	Args       []string
	Dir        string   // working directory, empty for the current one
	Env        []string // appended to the parent environment

	Stdout io.Writer // nil discards the child's stdout
	Stderr io.Writer // optional live copy; stderr is always captured too
}

// ProcessResult is what is left of a finished child.
type ProcessResult struct {
	// ExitCode is -1 when the child was killed by a signal.
	ExitCode int
	Stderr   string
}

// Success reports a zero exit status.
func (r *ProcessResult) Success() bool {
	return r.ExitCode == 0
}

// RunProcess starts the program and blocks until it exits. There is no
// timeout and no cancellation: a child that never exits blocks the caller.
//
// A non-zero exit is not an error; it is reported through ExitCode. An error
// is returned only when the program could not be started (wrapping
// common.ErrProgramMissing) or waiting on it failed.
func RunProcess(spec ProcessSpec) (*ProcessResult, error) {
	cmd := exec.Command(spec.Executable, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = append(os.Environ(), spec.Env...)
	cmd.Stdout = spec.Stdout

	var stderr bytes.Buffer
	if spec.Stderr != nil {
		cmd.Stderr = io.MultiWriter(&stderr, spec.Stderr)
	} else {
		cmd.Stderr = &stderr
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrProgramMissing, spec.Executable, err)
	}

	err := cmd.Wait()
	result := &ProcessResult{
		ExitCode: cmd.ProcessState.ExitCode(),
		Stderr:   stderr.String(),
	}
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return result, fmt.Errorf("failed waiting for %s: %w", spec.Executable, err)
		}
	}
	return result, nil
}
