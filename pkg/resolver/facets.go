// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"strings"

	"cabar-cli/pkg/component"
)

// PrependPrefix marks the variable whose entries go ahead of the composed
// value of a path facet, e.g. PRE_PATH for PATH.
const PrependPrefix = "PRE_"

type (
	// FacetMap is the composition result: composable facets merged by
	// composition key, and the remaining facets kept per component.
	FacetMap struct {
		keys         []string
		composed     map[string]component.Facet
		components   []*component.Component
		perComponent map[*component.Component][]component.Facet
	}

	// EnvAssignment is one NAME=value pair produced by an env-backed facet.
	EnvAssignment struct {
		Name  string
		Value string
	}
)

// ComposeFacets walks the required components dependencies-first, merging
// their composable facets. Unless disabled, the environment is merged last so
// externally set values obey the same composition and conflict rules.
func (r *Resolver) ComposeFacets() (*FacetMap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	order, err := r.requiredOrder()
	if err != nil {
		return nil, err
	}

	m := &FacetMap{
		composed:     map[string]component.Facet{},
		components:   order,
		perComponent: map[*component.Component][]component.Facet{},
	}
	for _, c := range order {
		for _, f := range c.Provides() {
			if !f.Enabled() {
				continue
			}
			if !f.Composable() {
				m.perComponent[c] = append(m.perComponent[c], f)
				continue
			}
			if err := m.compose(f); err != nil {
				return nil, err
			}
		}
	}

	if r.environ != nil {
		if err := m.overlayEnvironment(environMap(r.environ())); err != nil {
			return nil, err
		}
	}
	r.logger.Debug("composed facets", "keys", len(m.keys), "components", len(order))
	return m, nil
}

func (m *FacetMap) compose(f component.Facet) error {
	key := f.CompositionKey()
	existing, ok := m.composed[key]
	if !ok {
		m.keys = append(m.keys, key)
		m.composed[key] = component.Normalize(f)
		return nil
	}
	merged, err := component.Compose(existing, f)
	if err != nil {
		return err
	}
	m.composed[key] = merged
	return nil
}

// overlayEnvironment merges the current value of every composed env-backed
// variable after the component contributions, and for path facets puts the
// PRE_ variable ahead of them.
func (m *FacetMap) overlayEnvironment(env map[string]string) error {
	for _, key := range slices.Clone(m.keys) {
		switch f := m.composed[key].(type) {
		case *component.PathFacet:
			name := f.EnvVar()
			merged := component.Facet(f)
			if pre := splitList(env[PrependPrefix+name]); len(pre) > 0 {
				var err error
				merged, err = component.Compose(component.NewEnvironmentPathFacet(component.SourceEnvironment, name, pre...), merged)
				if err != nil {
					return err
				}
			}
			if current := splitList(env[name]); len(current) > 0 {
				var err error
				merged, err = component.Compose(merged, component.NewEnvironmentPathFacet(component.SourceEnvironment, name, current...))
				if err != nil {
					return err
				}
			}
			m.composed[key] = merged
		case *component.EnvVarFacet:
			current, ok := env[f.EnvVar()]
			if !ok {
				continue
			}
			merged, err := component.Compose(f, component.NewEnvironmentEnvVarFacet(component.SourceEnvironment, f.EnvVar(), current))
			if err != nil {
				return err
			}
			m.composed[key] = merged
		}
	}
	return nil
}

// Keys returns the composition keys in first-contribution order.
func (m *FacetMap) Keys() []string { return slices.Clone(m.keys) }

// Get returns the composed facet for a composition key.
func (m *FacetMap) Get(key string) (component.Facet, bool) {
	f, ok := m.composed[key]
	return f, ok
}

// Facets returns the composed facets in key order.
func (m *FacetMap) Facets() []component.Facet {
	out := make([]component.Facet, len(m.keys))
	for i, key := range m.keys {
		out[i] = m.composed[key]
	}
	return out
}

// Components returns the required components in dependency order.
func (m *FacetMap) Components() []*component.Component {
	return slices.Clone(m.components)
}

// ComponentFacets returns the non-composable facets provided by c.
func (m *FacetMap) ComponentFacets(c *component.Component) []component.Facet {
	return slices.Clone(m.perComponent[c])
}

// Actions merges the action facets of c into one table.
func (m *FacetMap) Actions(c *component.Component) map[string]string {
	out := map[string]string{}
	for _, f := range m.perComponent[c] {
		if a, ok := f.(*component.ActionFacet); ok {
			maps.Copy(out, a.Actions())
		}
	}
	return out
}

// Environment returns one assignment per composed env-backed facet.
func (m *FacetMap) Environment() []EnvAssignment {
	var out []EnvAssignment
	for _, f := range m.Facets() {
		if eb, ok := f.(component.EnvBacked); ok {
			out = append(out, EnvAssignment{Name: eb.EnvVar(), Value: f.RenderValue()})
		}
	}
	return out
}

// String renders the assignment as NAME=value without quoting.
func (a EnvAssignment) String() string {
	return fmt.Sprintf("%s=%s", a.Name, a.Value)
}

func environMap(environ []string) map[string]string {
	env := make(map[string]string, len(environ))
	for _, kv := range environ {
		if name, value, ok := strings.Cut(kv, "="); ok && name != "" {
			env[name] = value
		}
	}
	return env
}

func splitList(value string) []string {
	var out []string
	for _, p := range strings.Split(value, string(os.PathListSeparator)) {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
