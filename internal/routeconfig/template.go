// Copyright 2026 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package routeconfig

import (
	"strings"

	"github.com/juju/errors"
)

// renderTemplate substitutes {{var}} placeholders in tmpl with values from
// vars. Placeholders are strict: an unclosed or empty expression, or a
// variable not present in vars, is an error rather than silently passing
// through to the rendered rule.
func renderTemplate(tmpl string, vars map[string]string) (string, error) {
	var out strings.Builder
	rest := tmpl
	for {
		start := strings.Index(rest, "{{")
		if start == -1 {
			out.WriteString(rest)
			return out.String(), nil
		}
		out.WriteString(rest[:start])
		rest = rest[start+2:]

		end := strings.Index(rest, "}}")
		if end == -1 {
			return "", errors.Errorf("unclosed placeholder in template %q", tmpl)
		}
		key := strings.TrimSpace(rest[:end])
		if key == "" {
			return "", errors.Errorf("empty placeholder in template %q", tmpl)
		}
		value, ok := vars[key]
		if !ok {
			return "", errors.Errorf(
				"cannot render template %q: %q unknown; expected one of juju_model, juju_application, juju_unit",
				tmpl, key,
			)
		}
		out.WriteString(value)
		rest = rest[end+2:]
	}
}
