// SPDX-License-Identifier: MPL-2.0

package render

import (
	"strings"

	"cabar-cli/pkg/component"
	"cabar-cli/pkg/resolver"
)

type (
	// Document is the serializable view of a resolution.
	Document struct {
		TopLevel    []string                   `yaml:"top_level" toml:"top_level"`
		Components  []ComponentDoc             `yaml:"components" toml:"components"`
		Environment []EnvDoc                   `yaml:"environment,omitempty" toml:"environment,omitempty"`
		Unresolved  []resolver.UnresolvedEntry `yaml:"unresolved,omitempty" toml:"unresolved,omitempty"`
	}

	// ComponentDoc describes one required component.
	ComponentDoc struct {
		Name       string            `yaml:"name" toml:"name"`
		Version    string            `yaml:"version" toml:"version"`
		Type       string            `yaml:"type" toml:"type"`
		BaseDir    string            `yaml:"base_dir" toml:"base_dir"`
		Requires   []EdgeDoc         `yaml:"requires,omitempty" toml:"requires,omitempty"`
		Dependents []string          `yaml:"dependents,omitempty" toml:"dependents,omitempty"`
		Facets     []FacetDoc        `yaml:"facets,omitempty" toml:"facets,omitempty"`
		Actions    map[string]string `yaml:"actions,omitempty" toml:"actions,omitempty"`
	}

	// EdgeDoc is a dependency and the component it resolved to.
	EdgeDoc struct {
		Constraint string `yaml:"constraint" toml:"constraint"`
		Resolved   string `yaml:"resolved,omitempty" toml:"resolved,omitempty"`
	}

	// FacetDoc is a provided facet.
	FacetDoc struct {
		Key   string `yaml:"key" toml:"key"`
		Value string `yaml:"value" toml:"value"`
	}

	// EnvDoc is a composed environment variable with its contributors.
	EnvDoc struct {
		Name    string   `yaml:"name" toml:"name"`
		Value   string   `yaml:"value" toml:"value"`
		Sources []string `yaml:"sources" toml:"sources"`
	}
)

// NewDocument builds a Document from a finished resolution. Components are
// listed dependencies first. m may be nil to omit facets and environment.
func NewDocument(r *resolver.Resolver, m *resolver.FacetMap) (*Document, error) {
	order, err := r.RequiredOrder()
	if err != nil {
		return nil, err
	}

	doc := &Document{
		TopLevel:   componentNames(r.TopLevel()),
		Components: make([]ComponentDoc, 0, len(order)),
		Unresolved: r.Unresolved().All(),
	}
	for _, c := range order {
		doc.Components = append(doc.Components, newComponentDoc(c, m))
	}
	if m == nil {
		return doc, nil
	}
	for _, f := range m.Facets() {
		eb, ok := f.(component.EnvBacked)
		if !ok {
			continue
		}
		doc.Environment = append(doc.Environment, EnvDoc{
			Name:    eb.EnvVar(),
			Value:   f.RenderValue(),
			Sources: strings.Split(f.Source(), ", "),
		})
	}
	return doc, nil
}

func newComponentDoc(c *component.Component, m *resolver.FacetMap) ComponentDoc {
	cd := ComponentDoc{
		Name:       c.Name(),
		Version:    c.Version().String(),
		Type:       c.Type(),
		BaseDir:    c.BaseDir(),
		Dependents: componentNames(c.Dependents()),
	}
	for _, rc := range c.Requires() {
		edge := EdgeDoc{Constraint: rc.String()}
		if target := rc.Resolved(); target != nil {
			edge.Resolved = target.String()
		}
		cd.Requires = append(cd.Requires, edge)
	}
	for _, f := range c.Provides() {
		if !f.Enabled() {
			continue
		}
		cd.Facets = append(cd.Facets, FacetDoc{Key: f.CompositionKey(), Value: f.RenderValue()})
	}
	if m != nil {
		if actions := m.Actions(c); len(actions) > 0 {
			cd.Actions = actions
		}
	}
	return cd
}

func componentNames(cs []*component.Component) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.String()
	}
	return out
}
