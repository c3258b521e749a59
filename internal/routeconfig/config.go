// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package routeconfig renders the rule and root_url charm config templates
// against the facts a routed unit provides, and validates the result.
package routeconfig

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/juju/errors"
)

// Template placeholders recognised in rule and root_url.
const (
	placeholderModel       = "juju_model"
	placeholderApplication = "juju_application"
	placeholderUnit        = "juju_unit"
)

// Config holds the raw rule and root_url templates from charm config.
type Config struct {
	Rule    string
	RootURL string
}

// Route is a rendered route: the rule and root URL with all placeholders
// substituted, plus the identifier used to name the Traefik router and
// service for the routed unit.
type Route struct {
	Rule        string
	RootURL     string
	ServiceID   string
	StripPrefix bool
}

// Validate reports whether the configured templates can produce a route.
// root_url is always required; rule may be left empty, in which case it is
// derived from the rendered root URL. The returned error carries an
// operator-actionable message.
func (c Config) Validate() error {
	if err := checkVar(c.RootURL, "root_url"); err != nil {
		return errors.Trace(err)
	}
	if c.Rule != "" {
		if err := checkVar(c.Rule, "rule"); err != nil {
			return errors.Trace(err)
		}
	}
	// A probe render against dummy values catches unknown placeholders
	// and root URLs no rule can be derived from.
	if _, err := c.Render("foo", "bar/0", "baz", false); err != nil {
		return errors.Trace(err)
	}
	return nil
}

func checkVar(value, name string) error {
	if strings.TrimSpace(value) == "" {
		return errors.Errorf(
			"`%s` not configured; run `juju config <traefik-route-charm> %s=<%s>`",
			name, name, strings.ToUpper(name),
		)
	}
	if stripped := strings.TrimSpace(value); value != stripped {
		return errors.Errorf(
			"%s %q starts or ends with whitespace; it should be %q", name, value, stripped,
		)
	}
	return nil
}

// Render fills in the template blanks for one routed unit. Any slash in the
// unit identifier becomes a dash before substitution, so rendered values are
// safe to embed in hostnames and Traefik resource names.
func (c Config) Render(modelName, unitName, appName string, stripPrefix bool) (Route, error) {
	dashedUnit := strings.ReplaceAll(unitName, "/", "-")
	vars := map[string]string{
		placeholderModel:       modelName,
		placeholderApplication: appName,
		placeholderUnit:        dashedUnit,
	}

	rootURL, err := renderTemplate(c.RootURL, vars)
	if err != nil {
		return Route{}, errors.Trace(err)
	}
	var rule string
	if c.Rule == "" {
		if rule, err = deriveRuleFromURL(rootURL); err != nil {
			return Route{}, errors.Trace(err)
		}
	} else {
		if rule, err = renderTemplate(c.Rule, vars); err != nil {
			return Route{}, errors.Trace(err)
		}
	}

	return Route{
		Rule:    rule,
		RootURL: rootURL,
		// An easily recognisable id for the Traefik resources.
		ServiceID:   dashedUnit + "-" + modelName,
		StripPrefix: stripPrefix,
	}, nil
}

// Consistent reports whether the rendered rule mentions the root URL's
// hostname. This is a best-effort containment check: a mismatch is worth a
// warning, not a refusal to forward.
func (r Route) Consistent() bool {
	host := hostname(r.RootURL)
	if host == "" {
		return true
	}
	return strings.Contains(r.Rule, host)
}

func hostname(rawURL string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return parsed.Hostname()
}

// deriveRuleFromURL derives a Traefik Host rule from the URL's hostname.
func deriveRuleFromURL(rawURL string) (string, error) {
	host := hostname(rawURL)
	if host == "" {
		return "", errors.Errorf("unable to derive rule from %q; ensure that the url is valid", rawURL)
	}
	return fmt.Sprintf("Host(`%s`)", host), nil
}
