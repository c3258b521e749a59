// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// The traefik-route binary is the charm's dispatch entrypoint. The unit
// agent execs it for every hook with the hook name in the environment; it
// talks back to the agent through the hook tools on $PATH.
package main

import (
	"fmt"
	"os"

	"github.com/juju/cmd/v4"
	"github.com/juju/errors"
	"github.com/juju/gnuflag"

	"github.com/canonical/traefik-route-k8s-operator/internal/charm"
	"github.com/canonical/traefik-route-k8s-operator/internal/hooktool"
)

type dispatchCommand struct {
	cmd.CommandBase
	hook string
}

// Info is part of the cmd.Command interface.
func (c *dispatchCommand) Info() *cmd.Info {
	return &cmd.Info{
		Name:    "traefik-route",
		Args:    "[<hook>]",
		Purpose: "run a traefik-route charm hook",
		Doc: `
Runs the hook named in JUJU_HOOK_NAME (or JUJU_DISPATCH_PATH). A hook name
given as an argument overrides the environment, which is occasionally useful
when poking at a live unit with juju exec.
`,
	}
}

// SetFlags is part of the cmd.Command interface.
func (c *dispatchCommand) SetFlags(f *gnuflag.FlagSet) {}

// Init is part of the cmd.Command interface.
func (c *dispatchCommand) Init(args []string) error {
	if len(args) > 0 {
		c.hook = args[0]
		args = args[1:]
	}
	return cmd.CheckEmpty(args)
}

// Run is part of the cmd.Command interface.
func (c *dispatchCommand) Run(ctx *cmd.Context) error {
	env, err := hooktool.ReadEnv()
	if err != nil {
		return errors.Trace(err)
	}
	if c.hook != "" {
		env.HookName = c.hook
	}
	tools := hooktool.NewContext(hooktool.NewExecRunner())
	restore, err := hooktool.InstallLogWriter(tools)
	if err != nil {
		return errors.Trace(err)
	}
	defer restore()
	return errors.Trace(charm.New(tools, env).RunHook())
}

func main() {
	ctx, err := cmd.DefaultContext()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}
	os.Exit(cmd.Main(&dispatchCommand{}, ctx, os.Args[1:]))
}
