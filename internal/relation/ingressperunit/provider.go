// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package ingressperunit implements the provider side of the
// ingress_per_unit relation interface. Each remote unit requesting ingress
// publishes its connection facts in its unit databag; the provider answers
// with a per-unit URL map in the application databag.
package ingressperunit

import (
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/names/v5"
	"github.com/juju/schema"
	"gopkg.in/yaml.v3"

	"github.com/canonical/traefik-route-k8s-operator/internal/hooktool"
)

var logger = loggo.GetLogger("traefik-route.ingressperunit")

// Interface is the relation interface name, as declared in metadata.yaml.
const Interface = "ingress_per_unit"

// UnitData holds the connection facts one routed unit shares when
// requesting ingress.
type UnitData struct {
	Model       string
	Name        string
	Host        string
	Port        int
	StripPrefix bool
}

var unitDataChecker = schema.FieldMap(
	schema.Fields{
		"model":        schema.NonEmptyString("model"),
		"name":         schema.NonEmptyString("name"),
		"host":         schema.NonEmptyString("host"),
		"port":         schema.ForceInt(),
		"strip-prefix": schema.Bool(),
	},
	schema.Defaults{
		"strip-prefix": schema.Omit,
	},
)

// ParseUnitData validates and coerces a requirer unit databag. A databag
// that does not yet carry all required facts is simply not ready; the error
// says which fact is missing or malformed.
func ParseUnitData(settings map[string]string) (UnitData, error) {
	input := make(map[string]interface{}, len(settings))
	for k, v := range settings {
		input[k] = v
	}
	coerced, err := unitDataChecker.Coerce(input, nil)
	if err != nil {
		return UnitData{}, errors.Trace(err)
	}
	fields := coerced.(map[string]interface{})
	data := UnitData{
		Model: fields["model"].(string),
		Name:  fields["name"].(string),
		Host:  fields["host"].(string),
		Port:  fields["port"].(int),
	}
	if strip, ok := fields["strip-prefix"]; ok {
		data.StripPrefix = strip.(bool)
	}
	if !names.IsValidUnit(data.Name) {
		return UnitData{}, errors.NotValidf("remote unit name %q", data.Name)
	}
	return data, nil
}

// RelationContext is the slice of the hook tool API this package consumes.
type RelationContext interface {
	RelationList(hooktool.RelationID) ([]string, error)
	RelationGet(hooktool.RelationID, string) (map[string]string, error)
	RelationSetApp(hooktool.RelationID, map[string]string) error
}

// CollectUnitData gathers the databags of all remote units on the relation
// and returns the ones that are ready. Units that have not yet published
// complete data are skipped with a debug log, never an error.
func CollectUnitData(ctx RelationContext, id hooktool.RelationID) ([]UnitData, error) {
	units, err := ctx.RelationList(id)
	if err != nil {
		return nil, errors.Trace(err)
	}
	var ready []UnitData
	for _, unit := range units {
		settings, err := ctx.RelationGet(id, unit)
		if err != nil {
			return nil, errors.Trace(err)
		}
		data, err := ParseUnitData(settings)
		if err != nil {
			logger.Debugf("unit %s is not ready: %v", unit, err)
			continue
		}
		ready = append(ready, data)
	}
	return ready, nil
}

// PublishURLs writes the externally-reachable URL of each routed unit into
// the provider application databag, under the interface's "ingress" key.
func PublishURLs(ctx RelationContext, id hooktool.RelationID, urls map[string]string) error {
	ingress := make(map[string]map[string]string, len(urls))
	for unit, url := range urls {
		ingress[unit] = map[string]string{"url": url}
	}
	payload, err := yaml.Marshal(ingress)
	if err != nil {
		return errors.Trace(err)
	}
	err = ctx.RelationSetApp(id, map[string]string{"ingress": string(payload)})
	return errors.Trace(err)
}
