// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package charm holds the traefik-route reconciler: every hook funnels into
// one idempotent pass that reads the routed units' connection facts, renders
// the configured rule and root_url templates against them, forwards the
// merged Traefik configuration upstream and hands each unit its URL back.
package charm

import (
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	"github.com/juju/names/v5"

	"github.com/canonical/traefik-route-k8s-operator/core/status"
	"github.com/canonical/traefik-route-k8s-operator/internal/hooktool"
	"github.com/canonical/traefik-route-k8s-operator/internal/relation/ingressperunit"
	"github.com/canonical/traefik-route-k8s-operator/internal/relation/traefikroute"
	"github.com/canonical/traefik-route-k8s-operator/internal/routeconfig"
	"github.com/canonical/traefik-route-k8s-operator/internal/traefik"
)

var logger = loggo.GetLogger("traefik-route")

// Relation endpoint names, as declared in metadata.yaml.
const (
	IngressRelationName = "ingress-per-unit"
	RouteRelationName   = "traefik-route"
)

// Version is reported through application-version-set on install.
const Version = "0.1"

// HookContext is the slice of the hook tool API the reconciler consumes.
// *hooktool.Context implements it.
type HookContext interface {
	ConfigString(key string) (string, error)
	IsLeader() (bool, error)
	RelationIds(endpoint string) ([]hooktool.RelationID, error)
	RelationList(id hooktool.RelationID) ([]string, error)
	RelationGet(id hooktool.RelationID, unit string) (map[string]string, error)
	RelationSetApp(id hooktool.RelationID, settings map[string]string) error
	SetUnitStatus(info status.StatusInfo) error
	ApplicationVersionSet(version string) error
}

// Charm is the traefik-route operator.
type Charm struct {
	ctx HookContext
	env hooktool.HookEnv
}

// New returns a Charm for one dispatch invocation.
func New(ctx HookContext, env hooktool.HookEnv) *Charm {
	return &Charm{ctx: ctx, env: env}
}

// RunHook handles the named hook. All lifecycle and relation hooks resolve
// to the same reconcile pass; hooks this charm has no business with are
// logged and ignored.
func (c *Charm) RunHook() error {
	logger.Debugf("dispatching %q for %s", c.env.HookName, c.env.UnitName)
	switch c.env.HookName {
	case "install":
		if err := c.ctx.ApplicationVersionSet(Version); err != nil {
			return errors.Trace(err)
		}
	case "stop", "remove":
		// Nothing to tear down: all state lives in relation data, which
		// the controller clears when the relations go.
		return nil
	}
	return errors.Trace(c.reconcile())
}

func (c *Charm) blocked(message string) error {
	err := c.ctx.SetUnitStatus(status.StatusInfo{Status: status.Blocked, Message: message})
	return errors.Trace(err)
}

// relation returns the single relation established on the given endpoint.
// Both endpoints carry limit 1; should the agent hand us more anyway, the
// first is used and the rest are warned about.
func (c *Charm) relation(endpoint string) (hooktool.RelationID, bool, error) {
	ids, err := c.ctx.RelationIds(endpoint)
	if err != nil {
		return "", false, errors.Trace(err)
	}
	if len(ids) == 0 {
		logger.Infof("no relations yet for %s", endpoint)
		return "", false, nil
	}
	if len(ids) > 1 {
		logger.Warningf("more than one relation for %s; using %s", endpoint, ids[0])
	}
	return ids[0], true, nil
}

func (c *Charm) config() (routeconfig.Config, error) {
	rule, err := c.ctx.ConfigString("rule")
	if err != nil {
		return routeconfig.Config{}, errors.Trace(err)
	}
	rootURL, err := c.ctx.ConfigString("root_url")
	if err != nil {
		return routeconfig.Config{}, errors.Trace(err)
	}
	return routeconfig.Config{Rule: rule, RootURL: rootURL}, nil
}

// reconcile performs one full pass. Validation and readiness problems are
// reported as unit status and never fail the hook; only genuine hook tool
// failures surface as errors.
func (c *Charm) reconcile() error {
	leader, err := c.ctx.IsLeader()
	if err != nil {
		return errors.Trace(err)
	}
	if !leader {
		logger.Errorf("%s was initialized without leadership", c.env.UnitName)
		return c.blocked("Traefik-Route cannot be scaled > n1.")
	}

	config, err := c.config()
	if err != nil {
		return errors.Trace(err)
	}
	if err := config.Validate(); err != nil {
		logger.Errorf("%v", err)
		return c.blocked("bad config; see logs for more")
	}

	ingressRel, ok, err := c.relation(IngressRelationName)
	if err != nil {
		return errors.Trace(err)
	}
	if !ok {
		return c.blocked("Awaiting to be related via ingress-per-unit.")
	}
	routedUnits, err := ingressperunit.CollectUnitData(c.ctx, ingressRel)
	if err != nil {
		return errors.Trace(err)
	}
	if len(routedUnits) == 0 {
		return c.blocked("ingress-per-unit relation is not ready.")
	}

	routeRel, ok, err := c.relation(RouteRelationName)
	if err != nil {
		return errors.Trace(err)
	}
	if !ok {
		return c.blocked("traefik-route is not available yet. Relate traefik-route to traefik.")
	}

	urls := make(map[string]string, len(routedUnits))
	unitConfigs := make([]traefik.UnitConfig, 0, len(routedUnits))
	for _, unit := range routedUnits {
		appName, err := names.UnitApplication(unit.Name)
		if err != nil {
			return errors.Trace(err)
		}
		route, err := config.Render(unit.Model, unit.Name, appName, unit.StripPrefix)
		if err != nil {
			// Validate probed the templates already, so this is unexpected;
			// leave the unit out rather than fail the whole pass.
			logger.Errorf("cannot render route for %s: %v", unit.Name, err)
			continue
		}
		if !route.Consistent() {
			logger.Warningf(
				"rendered rule %q does not contain the root url host of %q; "+
					"the advertised url may not be routable", route.Rule, route.RootURL,
			)
		}
		logger.Infof("publishing to %s: %s", unit.Name, route.RootURL)
		urls[unit.Name] = route.RootURL
		unitConfigs = append(unitConfigs, traefik.NewUnitConfig(route))
	}

	// The URL is published to the routed units right away, even though this
	// may race with Traefik loading the config: the units do not need
	// Traefik to know their URL, but Traefik needs the config to route.
	if err := ingressperunit.PublishURLs(c.ctx, ingressRel, urls); err != nil {
		return errors.Trace(err)
	}
	if err := traefikroute.SubmitConfig(c.ctx, routeRel, traefik.Merge(unitConfigs)); err != nil {
		return errors.Trace(err)
	}
	return errors.Trace(c.ctx.SetUnitStatus(status.StatusInfo{Status: status.Active}))
}
