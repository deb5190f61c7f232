// Copyright © 2022-2025 Obol Labs Inc. Licensed under the terms of a Business Source License 1.1

package depositcli

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"

	"github.com/obolnetwork/wagyu/app/errors"
	"github.com/obolnetwork/wagyu/app/z"
)

// Command is a single process execution.
type Command struct {
	Path string
	Args []string
	// Env is the complete process environment, nil inherits the current environment.
	Env []string
}

// Result is the outcome of a process that ran to completion.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Success returns true if the process exited with status 0.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// JSON unmarshals stdout into v.
func (r Result) JSON(v any) error {
	if err := json.Unmarshal([]byte(r.Stdout), v); err != nil {
		return errors.Wrap(err, "unmarshal stdout")
	}

	return nil
}

// Runner runs a command to completion and collects its output.
// A process that started and exited with a non-zero status is not an error.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// NewExecRunner returns a Runner backed by os/exec.
func NewExecRunner() Runner {
	return execRunner{}
}

type execRunner struct{}

// Run starts the process and waits for it to exit. Processes are never killed once started,
// cancelling ctx has no effect on a running command.
func (execRunner) Run(ctx context.Context, c Command) (Result, error) {
	cmd := exec.CommandContext(context.WithoutCancel(ctx), c.Path, c.Args...)
	if c.Env != nil {
		cmd.Env = c.Env
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return Result{
			Stdout:   stdout.String(),
			Stderr:   stderr.String(),
			ExitCode: exitErr.ExitCode(),
		}, nil
	} else if err != nil {
		return Result{}, errors.Wrap(err, "run process", z.Str("path", c.Path))
	}

	return Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}, nil
}
