// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package traefik models the slice of Traefik dynamic configuration this
// charm produces: one router and one service per routed unit, plus an
// optional strip-prefix middleware, merged into a single http block.
package traefik

import (
	"encoding/json"

	"github.com/juju/collections/set"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"

	"github.com/canonical/traefik-route-k8s-operator/internal/routeconfig"
)

var logger = loggo.GetLogger("traefik-route.traefik")

// Router is a Traefik http router definition.
type Router struct {
	Rule        string   `json:"rule"`
	Service     string   `json:"service"`
	EntryPoints []string `json:"entryPoints"`
	Middlewares []string `json:"middlewares,omitempty"`
}

// Server is a single load-balancer backend.
type Server struct {
	URL string `json:"url"`
}

// LoadBalancer lists the servers behind a service.
type LoadBalancer struct {
	Servers []Server `json:"servers"`
}

// Service is a Traefik http service definition.
type Service struct {
	LoadBalancer LoadBalancer `json:"loadBalancer"`
}

// StripPrefix is the stripPrefix middleware body.
type StripPrefix struct {
	Prefixes   []string `json:"prefixes"`
	ForceSlash bool     `json:"forceSlash"`
}

// Middleware is a Traefik http middleware definition. Only stripPrefix is
// ever produced here.
type Middleware struct {
	StripPrefix *StripPrefix `json:"stripPrefix,omitempty"`
}

// HTTPConfig is the http section of a dynamic configuration.
type HTTPConfig struct {
	Routers     map[string]Router     `json:"routers"`
	Services    map[string]Service    `json:"services"`
	Middlewares map[string]Middleware `json:"middlewares,omitempty"`
}

// Config is the dynamic configuration blob submitted to Traefik.
type Config struct {
	HTTP HTTPConfig `json:"http"`
}

// MarshalIndent renders the config as the two-space-indented JSON published
// over the traefik-route relation; the indent keeps the databag readable in
// juju show-unit output.
func (c Config) MarshalIndent() (string, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return "", errors.Trace(err)
	}
	return string(data), nil
}

// UnitConfig is the routing configuration generated for one routed unit.
type UnitConfig struct {
	RouterName     string
	Router         Router
	ServiceName    string
	Service        Service
	MiddlewareName string
	Middleware     *Middleware
}

// NewUnitConfig derives the Traefik router, service and (when the unit asked
// for prefix stripping) middleware for a rendered route.
func NewUnitConfig(route routeconfig.Route) UnitConfig {
	routerName := "juju-" + route.ServiceID + "-router"
	serviceName := "juju-" + route.ServiceID + "-service"

	unit := UnitConfig{
		RouterName: routerName,
		Router: Router{
			Rule:        route.Rule,
			Service:     serviceName,
			EntryPoints: []string{"web"},
		},
		ServiceName: serviceName,
		Service: Service{
			LoadBalancer: LoadBalancer{
				Servers: []Server{{URL: route.RootURL}},
			},
		},
	}
	if route.StripPrefix {
		unit.MiddlewareName = "juju-sidecar-noprefix-" + route.ServiceID
		unit.Middleware = &Middleware{
			StripPrefix: &StripPrefix{
				Prefixes:   []string{"/" + route.ServiceID},
				ForceSlash: false,
			},
		}
		unit.Router.Middlewares = []string{unit.MiddlewareName}
	}
	return unit
}

// Merge folds per-unit configs into one dynamic configuration. Name
// collisions should not happen while service ids embed the unit name;
// when they do the last writer wins and a warning is logged.
func Merge(units []UnitConfig) Config {
	config := Config{
		HTTP: HTTPConfig{
			Routers:  map[string]Router{},
			Services: map[string]Service{},
		},
	}
	seen := set.NewStrings()
	for _, unit := range units {
		if seen.Contains(unit.RouterName) {
			logger.Warningf("duplicate router name %q; overwriting previous definition", unit.RouterName)
		}
		seen.Add(unit.RouterName)
		config.HTTP.Routers[unit.RouterName] = unit.Router
		config.HTTP.Services[unit.ServiceName] = unit.Service
		if unit.Middleware != nil {
			if config.HTTP.Middlewares == nil {
				config.HTTP.Middlewares = map[string]Middleware{}
			}
			config.HTTP.Middlewares[unit.MiddlewareName] = *unit.Middleware
		}
	}
	return config
}
