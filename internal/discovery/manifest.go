// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	_ "embed"
	"fmt"
	"path/filepath"
	"sort"

	"cabar-cli/pkg/component"
	"cabar-cli/pkg/constraint"
	"cabar-cli/pkg/cueutil"
	"cabar-cli/pkg/version"
)

// ManifestFileName is the file discovery looks for.
const ManifestFileName = "cabar.cue"

var (
	//go:embed manifest_schema.cue
	manifestSchema []byte

	schema = cueutil.MustCompileSchema(manifestSchema, "#Component")
)

type (
	// Manifest is the decoded form of a cabar.cue file.
	Manifest struct {
		Name        string            `json:"name,omitempty"`
		Version     string            `json:"version,omitempty"`
		Type        string            `json:"type,omitempty"`
		Enabled     *bool             `json:"enabled,omitempty"`
		Description string            `json:"description,omitempty"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		Requires    []string          `json:"requires,omitempty"`
		Provides    Provides          `json:"provides"`
		Components  []string          `json:"components,omitempty"`
		Config      map[string]any    `json:"config,omitempty"`
	}

	// Provides lists the facets a manifest declares.
	Provides struct {
		Path    map[string][]string `json:"path,omitempty"`
		Env     map[string]string   `json:"env,omitempty"`
		Actions map[string]string   `json:"actions,omitempty"`
	}
)

// ParseManifest decodes the manifest at path.
func ParseManifest(path string) (*Manifest, error) {
	result, err := cueutil.DecodeFile[Manifest](schema, path)
	if err != nil {
		return nil, err
	}
	return result.Value, nil
}

// Build creates the component described by m, rooted at dir. Missing names
// and versions come from the <name>/<version> directory layout.
func (m *Manifest) Build(dir string) (*component.Component, error) {
	name := m.Name
	if name == "" {
		name = filepath.Base(filepath.Dir(dir))
	}
	text := m.Version
	if text == "" {
		text = filepath.Base(dir)
	}
	v, err := version.Parse(text)
	if err != nil {
		return nil, fmt.Errorf("component %s: %w", name, err)
	}

	c := component.New(name, v, dir)
	for key, value := range m.Attributes {
		c.SetAttribute(key, value)
	}
	if m.Type != "" {
		c.SetAttribute(constraint.AttrType, m.Type)
	}
	if m.Description != "" {
		c.SetAttribute("description", m.Description)
	}
	if m.Enabled != nil {
		c.SetEnabled(*m.Enabled)
	}
	c.MergeConfig(m.Config)

	for _, spec := range m.Requires {
		edge, err := component.ParseRequiredComponent(spec)
		if err != nil {
			return nil, fmt.Errorf("component %s: requires: %w", c, err)
		}
		if err := c.AttachFacet(edge); err != nil {
			return nil, err
		}
	}

	facets := make([]component.Facet, 0, len(m.Provides.Path)+len(m.Provides.Env)+2)
	for _, envVar := range sortedKeys(m.Provides.Path) {
		facets = append(facets, component.NewPathFacet(envVar, m.Provides.Path[envVar]...))
	}
	for _, name := range sortedKeys(m.Provides.Env) {
		facets = append(facets, component.NewEnvVarFacet(name, m.Provides.Env[name]))
	}
	if len(m.Provides.Actions) > 0 {
		facets = append(facets, component.NewActionFacet(m.Provides.Actions))
	}
	if len(m.Components) > 0 {
		facets = append(facets, component.NewComponentGroupFacet(m.Components...))
	}
	for _, f := range facets {
		if err := c.AttachFacet(f); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
