// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package hooktool

import (
	"bytes"
	"os/exec"
	"strings"

	"github.com/juju/errors"
	"github.com/kballard/go-shellquote"
)

// Runner executes a named hook tool with the given arguments, optionally
// feeding it stdin, and returns whatever the tool wrote to stdout.
//
// The real implementation execs the tools the unit agent symlinks into the
// hook environment; tests substitute a recording fake.
type Runner interface {
	RunTool(tool string, args []string, stdin []byte) ([]byte, error)
}

// NewExecRunner returns a Runner that execs hook tools from $PATH, as set
// up by the unit agent for the duration of the hook.
func NewExecRunner() Runner {
	return execRunner{}
}

type execRunner struct{}

// RunTool is part of the Runner interface.
func (execRunner) RunTool(tool string, args []string, stdin []byte) ([]byte, error) {
	command := exec.Command(tool, args...)
	if stdin != nil {
		command.Stdin = bytes.NewReader(stdin)
	}
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr
	if err := command.Run(); err != nil {
		line := shellquote.Join(append([]string{tool}, args...)...)
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, errors.Annotatef(err, "running %s: %s", line, msg)
		}
		return nil, errors.Annotatef(err, "running %s", line)
	}
	return stdout.Bytes(), nil
}
