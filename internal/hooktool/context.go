// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package hooktool wraps the hook tools the unit agent exposes to a charm
// process (config-get, relation-get, status-set and friends) behind a typed
// API. All exchanges with the agent use --format=json on stdout; bulk
// settings travel as YAML via --file on stdin.
package hooktool

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/juju/errors"
	"gopkg.in/yaml.v3"

	"github.com/canonical/traefik-route-k8s-operator/core/status"
)

// RelationID identifies an established relation in the endpoint:number
// form the hook tools print and accept, e.g. "traefik-route:0".
type RelationID string

// String returns the tool-facing form of the id.
func (r RelationID) String() string {
	return string(r)
}

// Endpoint returns the local endpoint name of the relation.
func (r RelationID) Endpoint() string {
	if i := strings.Index(string(r), ":"); i >= 0 {
		return string(r)[:i]
	}
	return string(r)
}

// Context exposes the hook tools available inside a dispatch invocation.
type Context struct {
	runner Runner
}

// NewContext returns a Context backed by the given runner.
func NewContext(runner Runner) *Context {
	return &Context{runner: runner}
}

func (ctx *Context) runJSON(result interface{}, tool string, args ...string) error {
	out, err := ctx.runner.RunTool(tool, append([]string{"--format=json"}, args...), nil)
	if err != nil {
		return errors.Trace(err)
	}
	// Tools print "null" rather than nothing when there is no data.
	if result == nil || len(bytes.TrimSpace(out)) == 0 {
		return nil
	}
	if err := json.Unmarshal(out, result); err != nil {
		return errors.Annotatef(err, "cannot parse %s output", tool)
	}
	return nil
}

// ConfigSettings returns the charm configuration, as config-get reports it.
// Unset options without defaults are absent from the result.
func (ctx *Context) ConfigSettings() (map[string]interface{}, error) {
	var settings map[string]interface{}
	if err := ctx.runJSON(&settings, "config-get"); err != nil {
		return nil, errors.Trace(err)
	}
	if settings == nil {
		settings = map[string]interface{}{}
	}
	return settings, nil
}

// ConfigString returns the named config option coerced to a string, with
// absent and null both mapping to "".
func (ctx *Context) ConfigString(key string) (string, error) {
	settings, err := ctx.ConfigSettings()
	if err != nil {
		return "", errors.Trace(err)
	}
	value, ok := settings[key]
	if !ok || value == nil {
		return "", nil
	}
	s, ok := value.(string)
	if !ok {
		return "", errors.Errorf("config option %q is not a string", key)
	}
	return s, nil
}

// IsLeader reports whether the local unit holds application leadership.
func (ctx *Context) IsLeader() (bool, error) {
	var leader bool
	if err := ctx.runJSON(&leader, "is-leader"); err != nil {
		return false, errors.Annotate(err, "leadership status unknown")
	}
	return leader, nil
}

// RelationIds lists the established relations on the given endpoint,
// sorted for stable iteration.
func (ctx *Context) RelationIds(endpoint string) ([]RelationID, error) {
	var raw []string
	if err := ctx.runJSON(&raw, "relation-ids", endpoint); err != nil {
		return nil, errors.Trace(err)
	}
	sort.Strings(raw)
	ids := make([]RelationID, len(raw))
	for i, id := range raw {
		ids[i] = RelationID(id)
	}
	return ids, nil
}

// RelationList lists the remote units present on the given relation.
func (ctx *Context) RelationList(id RelationID) ([]string, error) {
	var units []string
	if err := ctx.runJSON(&units, "relation-list", "-r", id.String()); err != nil {
		return nil, errors.Trace(err)
	}
	sort.Strings(units)
	return units, nil
}

// RelationGet returns the unit databag the named remote unit published on
// the given relation. A unit that has published nothing yields an empty map.
func (ctx *Context) RelationGet(id RelationID, unit string) (map[string]string, error) {
	var settings map[string]string
	err := ctx.runJSON(&settings, "relation-get", "-r", id.String(), "-", unit)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if settings == nil {
		settings = map[string]string{}
	}
	return settings, nil
}

// RelationGetApp returns the application databag the named remote
// application published on the given relation.
func (ctx *Context) RelationGetApp(id RelationID, app string) (map[string]string, error) {
	var settings map[string]string
	err := ctx.runJSON(&settings, "relation-get", "-r", id.String(), "--app", "-", app)
	if err != nil {
		return nil, errors.Trace(err)
	}
	if settings == nil {
		settings = map[string]string{}
	}
	return settings, nil
}

// RelationSetApp writes settings into the local application databag on the
// given relation. Only the leader may call this; the agent enforces it.
// Settings are passed as a YAML file on stdin so values may safely contain
// newlines and shell metacharacters.
func (ctx *Context) RelationSetApp(id RelationID, settings map[string]string) error {
	payload, err := yaml.Marshal(settings)
	if err != nil {
		return errors.Trace(err)
	}
	args := []string{"-r", id.String(), "--app", "--file", "-"}
	if _, err := ctx.runner.RunTool("relation-set", args, payload); err != nil {
		return errors.Trace(err)
	}
	return nil
}

// SetUnitStatus reports workload status for the local unit.
func (ctx *Context) SetUnitStatus(info status.StatusInfo) error {
	if !info.Status.KnownWorkloadStatus() {
		return errors.NotValidf("workload status %q", info.Status)
	}
	args := []string{info.Status.String()}
	if info.Message != "" {
		args = append(args, info.Message)
	}
	if _, err := ctx.runner.RunTool("status-set", args, nil); err != nil {
		return errors.Trace(err)
	}
	return nil
}

// ApplicationVersionSet records the version of the software the charm
// manages, shown in juju status.
func (ctx *Context) ApplicationVersionSet(version string) error {
	if _, err := ctx.runner.RunTool("application-version-set", []string{version}, nil); err != nil {
		return errors.Trace(err)
	}
	return nil
}

// JujuLog writes a message to the model log at the given level.
func (ctx *Context) JujuLog(level, message string) error {
	args := []string{"--log-level", level, message}
	if _, err := ctx.runner.RunTool("juju-log", args, nil); err != nil {
		return errors.Trace(err)
	}
	return nil
}
