// SPDX-License-Identifier: MPL-2.0

package component

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

const (
	// KindPath is the key of PathFacet.
	KindPath Kind = "path"
	// KindEnvVar is the key of EnvVarFacet.
	KindEnvVar Kind = "env-scalar"
	// KindAction is the key of ActionFacet.
	KindAction Kind = "action"
	// KindComponentGroup is the key of ComponentGroupFacet.
	KindComponentGroup Kind = "components"
	// KindRequired is the key of RequiredComponent.
	KindRequired Kind = "required-component"

	// SourceEnvironment names facets synthesized from the process environment.
	SourceEnvironment = "environment"
)

var (
	// ErrNotComposable is returned when Compose is given facets that cannot merge.
	ErrNotComposable = errors.New("facets are not composable")

	// ErrEnvVarConflict is the sentinel error wrapped by EnvVarConflictError.
	ErrEnvVarConflict = errors.New("environment variable conflict")
)

type (
	// Kind identifies a facet kind.
	Kind string

	// Facet is a typed aspect of a component. The set of implementations is
	// closed; switch on the concrete type to reach the payload.
	Facet interface {
		// Key returns the facet kind.
		Key() Kind
		// CompositionKey is the identity under which composable facets merge.
		CompositionKey() string
		// Composable reports whether facets sharing a composition key merge.
		Composable() bool
		// Owner returns the owning component, nil for synthesized facets.
		Owner() *Component
		// Source names the contributor(s) for diagnostics.
		Source() string
		Enabled() bool
		// RenderValue is the facet as a single string for renderers.
		RenderValue() string

		base() *facetBase
	}

	// EnvBacked is implemented by facets bound to an environment variable.
	EnvBacked interface {
		EnvVar() string
	}

	facetBase struct {
		owner    *Component
		sources  []string
		disabled bool
	}

	// PathFacet contributes an ordered search-path list to an environment
	// variable such as PATH. Relative entries resolve against the owner's
	// base directory.
	PathFacet struct {
		facetBase
		envVar string
		paths  []string
	}

	// EnvVarFacet sets one scalar environment variable.
	EnvVarFacet struct {
		facetBase
		name  string
		value string
	}

	// ActionFacet maps action names to shell commands. Never composed.
	ActionFacet struct {
		facetBase
		actions map[string]string
	}

	// ComponentGroupFacet lists nested component directories relative to the
	// owner's base directory.
	ComponentGroupFacet struct {
		facetBase
		dirs []string
	}

	// EnvVarConflictError is returned when two contributors set one variable to
	// different values. It wraps ErrEnvVarConflict for errors.Is() compatibility.
	EnvVarConflictError struct {
		Var         string
		First       string
		FirstValue  string
		Second      string
		SecondValue string
	}
)

// Error implements the error interface.
func (e *EnvVarConflictError) Error() string {
	return fmt.Sprintf("environment variable %s: %s sets %q but %s sets %q",
		e.Var, e.First, e.FirstValue, e.Second, e.SecondValue)
}

// Unwrap returns ErrEnvVarConflict so callers can use errors.Is for programmatic detection.
func (e *EnvVarConflictError) Unwrap() error { return ErrEnvVarConflict }

func (b *facetBase) base() *facetBase { return b }

// Owner returns the owning component.
func (b *facetBase) Owner() *Component { return b.owner }

// Enabled reports whether the facet takes part in composition.
func (b *facetBase) Enabled() bool { return !b.disabled }

// SetEnabled toggles the facet.
func (b *facetBase) SetEnabled(enabled bool) { b.disabled = !enabled }

// Source returns the owner or the recorded contributors.
func (b *facetBase) Source() string {
	if len(b.sources) > 0 {
		return strings.Join(b.sources, ", ")
	}
	if b.owner != nil {
		return b.owner.String()
	}
	return "<unowned>"
}

func (b *facetBase) contributors() []string {
	if len(b.sources) > 0 {
		return b.sources
	}
	return []string{b.Source()}
}

// NewPathFacet creates a path facet for envVar.
func NewPathFacet(envVar string, paths ...string) *PathFacet {
	return &PathFacet{envVar: envVar, paths: slices.Clone(paths)}
}

// NewEnvironmentPathFacet creates an unowned path facet attributed to source.
func NewEnvironmentPathFacet(source, envVar string, paths ...string) *PathFacet {
	f := NewPathFacet(envVar, paths...)
	f.sources = []string{source}
	return f
}

// Key implements Facet.
func (f *PathFacet) Key() Kind { return KindPath }

// CompositionKey implements Facet.
func (f *PathFacet) CompositionKey() string { return string(KindPath) + ":" + f.envVar }

// Composable implements Facet.
func (f *PathFacet) Composable() bool { return true }

// EnvVar implements EnvBacked.
func (f *PathFacet) EnvVar() string { return f.envVar }

// Paths returns the declared entries.
func (f *PathFacet) Paths() []string { return slices.Clone(f.paths) }

// AbsPaths returns the entries with relative ones joined to the owner's base directory.
func (f *PathFacet) AbsPaths() []string {
	out := make([]string, len(f.paths))
	for i, p := range f.paths {
		if f.owner != nil && f.owner.baseDir != "" && !filepath.IsAbs(p) {
			p = filepath.Join(f.owner.baseDir, p)
		}
		out[i] = p
	}
	return out
}

// RenderValue joins the absolute entries with the platform list separator.
func (f *PathFacet) RenderValue() string {
	return strings.Join(f.AbsPaths(), string(os.PathListSeparator))
}

// Configure implements Configurer.
func (f *PathFacet) Configure(overlay map[string]any) {
	overlay[f.envVar] = f.AbsPaths()
}

// NewEnvVarFacet creates a scalar facet.
func NewEnvVarFacet(name, value string) *EnvVarFacet {
	return &EnvVarFacet{name: name, value: value}
}

// NewEnvironmentEnvVarFacet creates an unowned scalar facet attributed to source.
func NewEnvironmentEnvVarFacet(source, name, value string) *EnvVarFacet {
	f := NewEnvVarFacet(name, value)
	f.sources = []string{source}
	return f
}

// Key implements Facet.
func (f *EnvVarFacet) Key() Kind { return KindEnvVar }

// CompositionKey implements Facet.
func (f *EnvVarFacet) CompositionKey() string { return string(KindEnvVar) + ":" + f.name }

// Composable implements Facet.
func (f *EnvVarFacet) Composable() bool { return true }

// EnvVar implements EnvBacked.
func (f *EnvVarFacet) EnvVar() string { return f.name }

// Value returns the scalar value.
func (f *EnvVarFacet) Value() string { return f.value }

// RenderValue implements Facet.
func (f *EnvVarFacet) RenderValue() string { return f.value }

// Configure implements Configurer.
func (f *EnvVarFacet) Configure(overlay map[string]any) {
	overlay[f.name] = f.value
}

// NewActionFacet creates an action facet from name -> command pairs.
func NewActionFacet(actions map[string]string) *ActionFacet {
	return &ActionFacet{actions: maps.Clone(actions)}
}

// Key implements Facet.
func (f *ActionFacet) Key() Kind { return KindAction }

// CompositionKey implements Facet.
func (f *ActionFacet) CompositionKey() string { return string(KindAction) }

// Composable implements Facet.
func (f *ActionFacet) Composable() bool { return false }

// Names returns the action names sorted.
func (f *ActionFacet) Names() []string {
	return slices.Sorted(maps.Keys(f.actions))
}

// Command returns the command for an action name.
func (f *ActionFacet) Command(name string) (string, bool) {
	cmd, ok := f.actions[name]
	return cmd, ok
}

// Actions returns a copy of the action table.
func (f *ActionFacet) Actions() map[string]string { return maps.Clone(f.actions) }

// RenderValue lists the action names separated by spaces.
func (f *ActionFacet) RenderValue() string { return strings.Join(f.Names(), " ") }

// NewComponentGroupFacet creates a group facet over nested directories.
func NewComponentGroupFacet(dirs ...string) *ComponentGroupFacet {
	return &ComponentGroupFacet{dirs: slices.Clone(dirs)}
}

// Key implements Facet.
func (f *ComponentGroupFacet) Key() Kind { return KindComponentGroup }

// CompositionKey implements Facet.
func (f *ComponentGroupFacet) CompositionKey() string { return string(KindComponentGroup) }

// Composable implements Facet.
func (f *ComponentGroupFacet) Composable() bool { return false }

// Dirs returns the nested directories resolved against the owner's base directory.
func (f *ComponentGroupFacet) Dirs() []string {
	out := make([]string, len(f.dirs))
	for i, d := range f.dirs {
		if f.owner != nil && !filepath.IsAbs(d) {
			d = filepath.Join(f.owner.baseDir, d)
		}
		out[i] = d
	}
	return out
}

// RenderValue implements Facet.
func (f *ComponentGroupFacet) RenderValue() string {
	return strings.Join(f.Dirs(), string(os.PathListSeparator))
}

// Compose merges incoming into existing. Path facets concatenate and keep the
// last occurrence of each entry. Scalar facets keep the first value and fail
// on a differing second one. Neither argument is modified.
func Compose(existing, incoming Facet) (Facet, error) {
	if !existing.Composable() || !incoming.Composable() || existing.CompositionKey() != incoming.CompositionKey() {
		return nil, fmt.Errorf("%s and %s: %w", existing.CompositionKey(), incoming.CompositionKey(), ErrNotComposable)
	}

	switch e := existing.(type) {
	case *PathFacet:
		in, ok := incoming.(*PathFacet)
		if !ok {
			break
		}
		merged := &PathFacet{
			envVar: e.envVar,
			paths:  UniqLastmost(slices.Concat(e.AbsPaths(), in.AbsPaths())),
		}
		merged.sources = mergeSources(e.contributors(), in.contributors())
		return merged, nil
	case *EnvVarFacet:
		in, ok := incoming.(*EnvVarFacet)
		if !ok {
			break
		}
		if e.value != in.value {
			return nil, &EnvVarConflictError{
				Var:         e.name,
				First:       e.Source(),
				FirstValue:  e.value,
				Second:      in.Source(),
				SecondValue: in.value,
			}
		}
		merged := &EnvVarFacet{name: e.name, value: e.value}
		merged.sources = mergeSources(e.contributors(), in.contributors())
		return merged, nil
	}
	return nil, fmt.Errorf("%T and %T: %w", existing, incoming, ErrNotComposable)
}

// Normalize returns f in the form Compose produces, so a facet stored alone
// under its composition key renders like a merged one. Path facets get their
// absolute entries deduplicated; other facets are returned as is.
func Normalize(f Facet) Facet {
	p, ok := f.(*PathFacet)
	if !ok {
		return f
	}
	n := &PathFacet{envVar: p.envVar, paths: UniqLastmost(p.AbsPaths())}
	n.sources = slices.Clone(p.contributors())
	return n
}

// UniqLastmost removes duplicates keeping the last occurrence of each entry.
//
//	UniqLastmost([a b a c]) == [b a c]
func UniqLastmost[T comparable](items []T) []T {
	seen := make(map[T]bool, len(items))
	out := make([]T, 0, len(items))
	for i := len(items) - 1; i >= 0; i-- {
		if seen[items[i]] {
			continue
		}
		seen[items[i]] = true
		out = append(out, items[i])
	}
	slices.Reverse(out)
	return out
}

func mergeSources(a, b []string) []string {
	out := slices.Clone(a)
	for _, s := range b {
		if !slices.Contains(out, s) {
			out = append(out, s)
		}
	}
	return out
}
