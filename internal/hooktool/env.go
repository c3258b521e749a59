// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package hooktool

import (
	"os"
	"path"

	"github.com/juju/errors"
	"github.com/juju/names/v5"
)

// HookEnv carries the JUJU_* environment the unit agent sets up for a
// dispatch invocation.
type HookEnv struct {
	UnitName        string
	ApplicationName string
	ModelName       string
	HookName        string
	RelationID      RelationID
	RemoteUnit      string
	RemoteApp       string
	CharmDir        string
	JujuVersion     string
}

// ReadEnv captures the hook environment of the current process.
func ReadEnv() (HookEnv, error) {
	env := HookEnv{
		UnitName:    os.Getenv("JUJU_UNIT_NAME"),
		ModelName:   os.Getenv("JUJU_MODEL_NAME"),
		HookName:    os.Getenv("JUJU_HOOK_NAME"),
		RelationID:  RelationID(os.Getenv("JUJU_RELATION_ID")),
		RemoteUnit:  os.Getenv("JUJU_REMOTE_UNIT"),
		RemoteApp:   os.Getenv("JUJU_REMOTE_APP"),
		CharmDir:    os.Getenv("JUJU_CHARM_DIR"),
		JujuVersion: os.Getenv("JUJU_VERSION"),
	}
	if !names.IsValidUnit(env.UnitName) {
		return HookEnv{}, errors.NotValidf("JUJU_UNIT_NAME %q", env.UnitName)
	}
	app, err := names.UnitApplication(env.UnitName)
	if err != nil {
		return HookEnv{}, errors.Trace(err)
	}
	env.ApplicationName = app
	if env.HookName == "" {
		// Older agents only set JUJU_DISPATCH_PATH, e.g. "hooks/config-changed".
		env.HookName = path.Base(os.Getenv("JUJU_DISPATCH_PATH"))
	}
	if env.HookName == "" || env.HookName == "." {
		return HookEnv{}, errors.New("cannot determine hook name from environment")
	}
	return env, nil
}
