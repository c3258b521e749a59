// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm_test

import (
	jc "github.com/juju/testing/checkers"
	gc "gopkg.in/check.v1"
	"gopkg.in/yaml.v3"

	"github.com/canonical/traefik-route-k8s-operator/core/status"
	"github.com/canonical/traefik-route-k8s-operator/internal/charm"
	"github.com/canonical/traefik-route-k8s-operator/internal/hooktool"
)

const (
	sampleRule = "Host(`foo.bar/{{juju_model}}-{{juju_unit}}`)"
	sampleURL  = "http://foo.bar/{{juju_model}}-{{juju_unit}}"
)

// fakeHookContext implements charm.HookContext against in-memory state.
type fakeHookContext struct {
	leader   bool
	config   map[string]string
	relIDs   map[string][]hooktool.RelationID
	units    map[hooktool.RelationID][]string
	databags map[hooktool.RelationID]map[string]map[string]string

	appSets  map[hooktool.RelationID][]map[string]string
	statuses []status.StatusInfo
	versions []string
}

func newFakeHookContext() *fakeHookContext {
	return &fakeHookContext{
		config:   map[string]string{},
		relIDs:   map[string][]hooktool.RelationID{},
		units:    map[hooktool.RelationID][]string{},
		databags: map[hooktool.RelationID]map[string]map[string]string{},
		appSets:  map[hooktool.RelationID][]map[string]string{},
	}
}

func (f *fakeHookContext) ConfigString(key string) (string, error) {
	return f.config[key], nil
}

func (f *fakeHookContext) IsLeader() (bool, error) {
	return f.leader, nil
}

func (f *fakeHookContext) RelationIds(endpoint string) ([]hooktool.RelationID, error) {
	return f.relIDs[endpoint], nil
}

func (f *fakeHookContext) RelationList(id hooktool.RelationID) ([]string, error) {
	return f.units[id], nil
}

func (f *fakeHookContext) RelationGet(id hooktool.RelationID, unit string) (map[string]string, error) {
	return f.databags[id][unit], nil
}

func (f *fakeHookContext) RelationSetApp(id hooktool.RelationID, settings map[string]string) error {
	f.appSets[id] = append(f.appSets[id], settings)
	return nil
}

func (f *fakeHookContext) SetUnitStatus(info status.StatusInfo) error {
	f.statuses = append(f.statuses, info)
	return nil
}

func (f *fakeHookContext) ApplicationVersionSet(version string) error {
	f.versions = append(f.versions, version)
	return nil
}

func (f *fakeHookContext) lastStatus(c *gc.C) status.StatusInfo {
	c.Assert(f.statuses, gc.Not(gc.HasLen), 0)
	return f.statuses[len(f.statuses)-1]
}

type charmSuite struct {
	ctx *fakeHookContext
	env hooktool.HookEnv
}

var _ = gc.Suite(&charmSuite{})

func (s *charmSuite) SetUpTest(c *gc.C) {
	s.ctx = newFakeHookContext()
	s.ctx.leader = true
	s.env = hooktool.HookEnv{
		UnitName:        "traefik-route-k8s/0",
		ApplicationName: "traefik-route-k8s",
		ModelName:       "cos",
		HookName:        "config-changed",
	}
}

func (s *charmSuite) run(c *gc.C) {
	err := charm.New(s.ctx, s.env).RunHook()
	c.Assert(err, jc.ErrorIsNil)
}

func (s *charmSuite) addConfig() {
	s.ctx.config["rule"] = sampleRule
	s.ctx.config["root_url"] = sampleURL
}

func (s *charmSuite) addIngressRelation(databag map[string]string) hooktool.RelationID {
	id := hooktool.RelationID("ingress-per-unit:0")
	s.ctx.relIDs[charm.IngressRelationName] = []hooktool.RelationID{id}
	s.ctx.units[id] = []string{"remote/0"}
	if databag != nil {
		s.ctx.databags[id] = map[string]map[string]string{"remote/0": databag}
	}
	return id
}

func (s *charmSuite) addRouteRelation() hooktool.RelationID {
	id := hooktool.RelationID("traefik-route:1")
	s.ctx.relIDs[charm.RouteRelationName] = []hooktool.RelationID{id}
	s.ctx.units[id] = []string{"traefik/0"}
	return id
}

func sampleIngressData() map[string]string {
	return map[string]string{
		"model": "model",
		"name":  "remote/0",
		"host":  "foo",
		"port":  "42",
	}
}

func (s *charmSuite) TestNonLeaderBlocked(c *gc.C) {
	s.ctx.leader = false
	s.addConfig()
	s.run(c)
	c.Assert(s.ctx.lastStatus(c), gc.DeepEquals, status.StatusInfo{
		Status:  status.Blocked,
		Message: "Traefik-Route cannot be scaled > n1.",
	})
	c.Assert(s.ctx.appSets, gc.HasLen, 0)
}

func (s *charmSuite) TestDefaultConfigBlocked(c *gc.C) {
	s.run(c)
	c.Assert(s.ctx.lastStatus(c), gc.DeepEquals, status.StatusInfo{
		Status:  status.Blocked,
		Message: "bad config; see logs for more",
	})
}

func (s *charmSuite) TestPaddedConfigBlocked(c *gc.C) {
	s.ctx.config["root_url"] = " http://foo.com"
	s.run(c)
	c.Assert(s.ctx.lastStatus(c).Message, gc.Equals, "bad config; see logs for more")
}

func (s *charmSuite) TestUnknownPlaceholderBlocked(c *gc.C) {
	s.ctx.config["root_url"] = "http://{{kadoodle}}.com"
	s.run(c)
	c.Assert(s.ctx.lastStatus(c).Message, gc.Equals, "bad config; see logs for more")
}

func (s *charmSuite) TestNoIngressRelationBlocked(c *gc.C) {
	s.addConfig()
	s.run(c)
	c.Assert(s.ctx.lastStatus(c), gc.DeepEquals, status.StatusInfo{
		Status:  status.Blocked,
		Message: "Awaiting to be related via ingress-per-unit.",
	})
}

func (s *charmSuite) TestIngressRelationNotReadyBlocked(c *gc.C) {
	s.addConfig()
	s.addIngressRelation(nil)
	s.addRouteRelation()
	s.run(c)
	c.Assert(s.ctx.lastStatus(c), gc.DeepEquals, status.StatusInfo{
		Status:  status.Blocked,
		Message: "ingress-per-unit relation is not ready.",
	})
}

func (s *charmSuite) TestNoRouteRelationBlocked(c *gc.C) {
	s.addConfig()
	s.addIngressRelation(sampleIngressData())
	s.run(c)
	c.Assert(s.ctx.lastStatus(c), gc.DeepEquals, status.StatusInfo{
		Status:  status.Blocked,
		Message: "traefik-route is not available yet. Relate traefik-route to traefik.",
	})
}

func (s *charmSuite) TestHappyPathRelaysConfig(c *gc.C) {
	s.addConfig()
	ingressID := s.addIngressRelation(sampleIngressData())
	routeID := s.addRouteRelation()
	s.run(c)

	c.Assert(s.ctx.lastStatus(c), gc.DeepEquals, status.StatusInfo{Status: status.Active})

	// The routed unit got its URL back.
	c.Assert(s.ctx.appSets[ingressID], gc.HasLen, 1)
	var ingress map[string]map[string]string
	err := yaml.Unmarshal([]byte(s.ctx.appSets[ingressID][0]["ingress"]), &ingress)
	c.Assert(err, jc.ErrorIsNil)
	c.Assert(ingress, gc.DeepEquals, map[string]map[string]string{
		"remote/0": {"url": "http://foo.bar/model-remote-0"},
	})

	// Traefik got the merged dynamic config.
	c.Assert(s.ctx.appSets[routeID], gc.HasLen, 1)
	c.Assert(s.ctx.appSets[routeID][0]["config"], jc.JSONEquals, map[string]interface{}{
		"http": map[string]interface{}{
			"routers": map[string]interface{}{
				"juju-remote-0-model-router": map[string]interface{}{
					"rule":        "Host(`foo.bar/model-remote-0`)",
					"service":     "juju-remote-0-model-service",
					"entryPoints": []interface{}{"web"},
				},
			},
			"services": map[string]interface{}{
				"juju-remote-0-model-service": map[string]interface{}{
					"loadBalancer": map[string]interface{}{
						"servers": []interface{}{
							map[string]interface{}{"url": "http://foo.bar/model-remote-0"},
						},
					},
				},
			},
		},
	})
}

func (s *charmSuite) TestStripPrefixProducesMiddleware(c *gc.C) {
	s.addConfig()
	databag := sampleIngressData()
	databag["strip-prefix"] = "true"
	s.addIngressRelation(databag)
	routeID := s.addRouteRelation()
	s.run(c)

	blob := s.ctx.appSets[routeID][0]["config"]
	c.Assert(blob, jc.Contains, "juju-sidecar-noprefix-remote-0-model")
	c.Assert(blob, jc.Contains, "stripPrefix")
}

func (s *charmSuite) TestDerivedRuleWhenUnset(c *gc.C) {
	s.ctx.config["root_url"] = "http://{{juju_unit}}.example.com"
	s.addIngressRelation(sampleIngressData())
	routeID := s.addRouteRelation()
	s.run(c)

	blob := s.ctx.appSets[routeID][0]["config"]
	c.Assert(blob, jc.Contains, "Host(`remote-0.example.com`)")
	c.Assert(s.ctx.lastStatus(c).Status, gc.Equals, status.Active)
}

func (s *charmSuite) TestInstallSetsApplicationVersion(c *gc.C) {
	s.env.HookName = "install"
	s.addConfig()
	s.run(c)
	c.Assert(s.ctx.versions, gc.DeepEquals, []string{charm.Version})
}

func (s *charmSuite) TestStopDoesNotReconcile(c *gc.C) {
	s.env.HookName = "stop"
	s.run(c)
	c.Assert(s.ctx.statuses, gc.HasLen, 0)
	c.Assert(s.ctx.appSets, gc.HasLen, 0)
}

func (s *charmSuite) TestUpdateStatusReconciles(c *gc.C) {
	s.env.HookName = "update-status"
	s.addConfig()
	s.addIngressRelation(sampleIngressData())
	s.addRouteRelation()
	s.run(c)
	c.Assert(s.ctx.lastStatus(c).Status, gc.Equals, status.Active)
}

func (s *charmSuite) TestMultipleRelationsFirstWins(c *gc.C) {
	s.addConfig()
	first := s.addIngressRelation(sampleIngressData())
	second := hooktool.RelationID("ingress-per-unit:9")
	s.ctx.relIDs[charm.IngressRelationName] = append(
		s.ctx.relIDs[charm.IngressRelationName], second,
	)
	s.addRouteRelation()
	s.run(c)

	c.Assert(s.ctx.appSets[first], gc.HasLen, 1)
	c.Assert(s.ctx.appSets[second], gc.HasLen, 0)
}
