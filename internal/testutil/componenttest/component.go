// SPDX-License-Identifier: MPL-2.0

package componenttest

import (
	"maps"
	"path/filepath"
	"slices"

	"cabar-cli/pkg/component"
	"cabar-cli/pkg/version"
)

type (
	// Option configures a test component.
	Option func(*component.Component)
)

// NewTestComponent creates an enabled component with base directory
// /opt/<name>/<version>. The version must be valid.
//
// Usage:
//
//	a := componenttest.NewTestComponent("A", "1.0", componenttest.WithRequires("B/>= 1.0"))
//	b := componenttest.NewTestComponent("B", "2.0", componenttest.WithEnv("B_HOME", "/opt/b"))
func NewTestComponent(name, ver string, opts ...Option) *component.Component {
	c := component.New(name, version.MustParse(ver), filepath.Join("/opt", name, ver))
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithBaseDir replaces the base directory. It resets the component, so it
// must be the first option.
func WithBaseDir(dir string) Option {
	return func(c *component.Component) {
		*c = *component.New(c.Name(), c.Version(), dir)
	}
}

// WithRequires attaches one dependency edge per constraint spec.
func WithRequires(specs ...string) Option {
	return func(c *component.Component) {
		for _, spec := range specs {
			rc, err := component.ParseRequiredComponent(spec)
			if err != nil {
				panic(err)
			}
			mustAttach(c, rc)
		}
	}
}

// WithPath attaches a path facet for envVar.
func WithPath(envVar string, paths ...string) Option {
	return func(c *component.Component) {
		mustAttach(c, component.NewPathFacet(envVar, paths...))
	}
}

// WithEnv attaches a scalar environment facet.
func WithEnv(name, value string) Option {
	return func(c *component.Component) {
		mustAttach(c, component.NewEnvVarFacet(name, value))
	}
}

// WithAction attaches an action facet holding a single action.
func WithAction(name, command string) Option {
	return func(c *component.Component) {
		mustAttach(c, component.NewActionFacet(map[string]string{name: command}))
	}
}

// WithAttributes sets free-form attributes.
func WithAttributes(attrs map[string]string) Option {
	return func(c *component.Component) {
		for _, k := range slices.Sorted(maps.Keys(attrs)) {
			c.SetAttribute(k, attrs[k])
		}
	}
}

// Disabled marks the component disabled.
func Disabled() Option {
	return func(c *component.Component) { c.SetEnabled(false) }
}

// NewSet builds a component set.
func NewSet(cs ...*component.Component) *component.Set {
	return component.NewSet(cs...)
}

// Strings renders components as "name/version".
func Strings(cs []*component.Component) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}

func mustAttach(c *component.Component, f component.Facet) {
	if err := c.AttachFacet(f); err != nil {
		panic(err)
	}
}
