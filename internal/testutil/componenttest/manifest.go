// SPDX-License-Identifier: MPL-2.0

package componenttest

import (
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"
)

type (
	// ManifestOption configures a test manifest.
	ManifestOption func(*manifest)

	manifest struct {
		fields     []string
		requires   []string
		paths      map[string][]string
		env        map[string]string
		actions    map[string]string
		components []string
	}
)

// WriteManifest renders a cabar.cue file into dir, creating it, and
// returns the file path. Without options the manifest is empty and the
// name and version come from the directory layout.
//
//	componenttest.WriteManifest(t, filepath.Join(root, "ruby", "1.9.3"),
//	    componenttest.Requires("zlib/>= 1.2"),
//	    componenttest.ProvidesPath("PATH", "bin"),
//	)
func WriteManifest(t testing.TB, dir string, opts ...ManifestOption) string {
	t.Helper()

	m := &manifest{
		paths:   map[string][]string{},
		env:     map[string]string{},
		actions: map[string]string{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return WriteRawManifest(t, dir, m.render())
}

// WriteRawManifest writes content verbatim as dir/cabar.cue.
func WriteRawManifest(t testing.TB, dir, content string) string {
	t.Helper()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	path := filepath.Join(dir, "cabar.cue")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

// Named sets the manifest name.
func Named(name string) ManifestOption {
	return field("name", fmt.Sprintf("%q", name))
}

// Versioned sets the manifest version.
func Versioned(v string) ManifestOption {
	return field("version", fmt.Sprintf("%q", v))
}

// Typed sets the component type.
func Typed(typ string) ManifestOption {
	return field("type", fmt.Sprintf("%q", typ))
}

// DisabledManifest marks the component disabled.
func DisabledManifest() ManifestOption {
	return field("enabled", "false")
}

// Requires appends dependency constraints.
func Requires(specs ...string) ManifestOption {
	return func(m *manifest) {
		m.requires = append(m.requires, specs...)
	}
}

// ProvidesPath adds a path facet.
func ProvidesPath(envVar string, paths ...string) ManifestOption {
	return func(m *manifest) {
		m.paths[envVar] = append(m.paths[envVar], paths...)
	}
}

// ProvidesEnv adds a scalar environment facet.
func ProvidesEnv(name, value string) ManifestOption {
	return func(m *manifest) {
		m.env[name] = value
	}
}

// ProvidesAction adds a named action.
func ProvidesAction(name, command string) ManifestOption {
	return func(m *manifest) {
		m.actions[name] = command
	}
}

// Group adds nested component directories.
func Group(dirs ...string) ManifestOption {
	return func(m *manifest) {
		m.components = append(m.components, dirs...)
	}
}

func field(key, value string) ManifestOption {
	return func(m *manifest) {
		m.fields = append(m.fields, key+": "+value)
	}
}

func (m *manifest) render() string {
	var sb strings.Builder
	for _, f := range m.fields {
		sb.WriteString(f + "\n")
	}
	if len(m.requires) > 0 {
		sb.WriteString("requires: " + quoteList(m.requires) + "\n")
	}
	if len(m.components) > 0 {
		sb.WriteString("components: " + quoteList(m.components) + "\n")
	}
	if len(m.paths)+len(m.env)+len(m.actions) > 0 {
		sb.WriteString("provides: {\n")
		writeBlock(&sb, "path", m.paths, quoteList)
		writeBlock(&sb, "env", m.env, func(v string) string { return fmt.Sprintf("%q", v) })
		writeBlock(&sb, "actions", m.actions, func(v string) string { return fmt.Sprintf("%q", v) })
		sb.WriteString("}\n")
	}
	return sb.String()
}

func writeBlock[V any](sb *strings.Builder, name string, values map[string]V, render func(V) string) {
	if len(values) == 0 {
		return
	}
	sb.WriteString("\t" + name + ": {\n")
	for _, key := range slices.Sorted(maps.Keys(values)) {
		fmt.Fprintf(sb, "\t\t%q: %s\n", key, render(values[key]))
	}
	sb.WriteString("\t}\n")
}

func quoteList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return "[" + strings.Join(quoted, ", ") + "]"
}
