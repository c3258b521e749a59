// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package traefikroute implements the traefik_route relation interface.
// The requirer (this charm) publishes a Traefik dynamic configuration blob
// under the "config" key of its application databag; the provider (Traefik)
// answers with an "ingress" map once it is routing.
package traefikroute

import (
	"encoding/json"

	"github.com/juju/errors"

	"github.com/canonical/traefik-route-k8s-operator/internal/hooktool"
	"github.com/canonical/traefik-route-k8s-operator/internal/traefik"
)

// Interface is the relation interface name, as declared in metadata.yaml.
const Interface = "traefik_route"

// ConfigKey is the application databag key carrying the dynamic config.
const ConfigKey = "config"

// IngressKey is the application databag key Traefik answers on.
const IngressKey = "ingress"

// ConfigWriter writes the requirer application databag.
type ConfigWriter interface {
	RelationSetApp(hooktool.RelationID, map[string]string) error
}

// IngressReader reads the provider application databag.
type IngressReader interface {
	RelationGetApp(hooktool.RelationID, string) (map[string]string, error)
}

// SubmitConfig publishes the merged Traefik configuration to the provider.
// Leader only; the agent rejects application databag writes from followers.
func SubmitConfig(ctx ConfigWriter, id hooktool.RelationID, config traefik.Config) error {
	blob, err := config.MarshalIndent()
	if err != nil {
		return errors.Trace(err)
	}
	err = ctx.RelationSetApp(id, map[string]string{ConfigKey: blob})
	return errors.Trace(err)
}

// IngressData is Traefik's answer for one routed unit.
type IngressData struct {
	URL string `json:"url"`
}

// Ingress reads back the ingress map the provider published, keyed by unit
// name. It returns nil when Traefik has not answered yet.
func Ingress(ctx IngressReader, id hooktool.RelationID, remoteApp string) (map[string]IngressData, error) {
	settings, err := ctx.RelationGetApp(id, remoteApp)
	if err != nil {
		return nil, errors.Trace(err)
	}
	raw := settings[IngressKey]
	if raw == "" {
		return nil, nil
	}
	var ingress map[string]IngressData
	if err := json.Unmarshal([]byte(raw), &ingress); err != nil {
		return nil, errors.Annotate(err, "cannot parse ingress data")
	}
	return ingress, nil
}

// IsReady reports whether a requirer application databag carries a config,
// from the provider's point of view. Kept alongside the requirer because
// both ends of the interface live in this package, mirroring the interface
// library this charm descends from; the mock provider in the tests uses it.
func IsReady(appData map[string]string) bool {
	_, ok := appData[ConfigKey]
	return ok
}

// Config returns the raw config blob a requirer published, or "".
func Config(appData map[string]string) string {
	return appData[ConfigKey]
}
