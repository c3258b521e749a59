// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package hooktool

import (
	"fmt"

	"github.com/juju/loggo/v2"
)

// logWriter forwards loggo records through juju-log, so everything the
// charm logs lands in the model log under the unit's context.
type logWriter struct {
	ctx *Context
}

// NewLogWriter returns a loggo Writer backed by the juju-log hook tool.
func NewLogWriter(ctx *Context) loggo.Writer {
	return &logWriter{ctx: ctx}
}

// Write is part of the loggo.Writer interface. Failures to reach juju-log
// are swallowed: logging must never take the hook down.
func (w *logWriter) Write(entry loggo.Entry) {
	message := fmt.Sprintf("%s: %s", entry.Module, entry.Message)
	_ = w.ctx.JujuLog(entry.Level.String(), message)
}

// InstallLogWriter routes the default loggo writer through juju-log and
// returns a function restoring the previous writer.
func InstallLogWriter(ctx *Context) (func(), error) {
	previous, err := loggo.ReplaceDefaultWriter(NewLogWriter(ctx))
	if err != nil {
		return nil, err
	}
	return func() {
		_, _ = loggo.ReplaceDefaultWriter(previous)
	}, nil
}
