// SPDX-License-Identifier: MPL-2.0

package component

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"strconv"

	"cabar-cli/pkg/constraint"
	"cabar-cli/pkg/version"
)

const (
	// DefaultType is the type attribute of components that do not declare one.
	DefaultType = "cabar"

	// AttrBaseDir exposes the component base directory to constraints.
	AttrBaseDir = "base_dir"
	// AttrEnabled exposes the enabled flag ("true"/"false") to constraints.
	AttrEnabled = "enabled"
)

var (
	// ErrDuplicateFacet is returned when a facet is attached to the same component twice.
	ErrDuplicateFacet = errors.New("facet already attached")

	// ErrFacetOwned is returned when a facet already belongs to another component.
	ErrFacetOwned = errors.New("facet owned by another component")

	// ErrUnresolvedEdge is the sentinel error wrapped by UnresolvedEdgeError.
	ErrUnresolvedEdge = errors.New("unresolved dependency edge")
)

type (
	// Component is a named, versioned unit that provides facets and requires
	// other components. Identity is the (name, version) pair; a Component is
	// never copied during a resolution run.
	Component struct {
		name       string
		version    version.Version
		baseDir    string
		attrs      map[string]string
		enabled    bool
		facets     []Facet
		dependents []*Component
		config     map[string]any
	}

	// Configurer is implemented by facets that contribute to the owning
	// component's configuration overlay when attached.
	Configurer interface {
		Configure(overlay map[string]any)
	}

	// UnresolvedEdgeError reports a dependency edge without a resolved target.
	// It wraps ErrUnresolvedEdge for errors.Is() compatibility.
	UnresolvedEdgeError struct {
		Component string
		Edge      string
	}
)

// Error implements the error interface.
func (e *UnresolvedEdgeError) Error() string {
	return fmt.Sprintf("component %s: requirement %s is not resolved", e.Component, e.Edge)
}

// Unwrap returns ErrUnresolvedEdge so callers can use errors.Is for programmatic detection.
func (e *UnresolvedEdgeError) Unwrap() error { return ErrUnresolvedEdge }

// New creates an enabled component with no facets.
func New(name string, v version.Version, baseDir string) *Component {
	return &Component{
		name:    name,
		version: v,
		baseDir: baseDir,
		attrs:   map[string]string{},
		enabled: true,
		config:  map[string]any{},
	}
}

// Name returns the component name.
func (c *Component) Name() string { return c.name }

// Version returns the component version.
func (c *Component) Version() version.Version { return c.version }

// BaseDir returns the directory relative facet paths are resolved against.
func (c *Component) BaseDir() string { return c.baseDir }

// Type returns the "type" attribute, DefaultType when unset.
func (c *Component) Type() string {
	if t := c.attrs[constraint.AttrType]; t != "" {
		return t
	}
	return DefaultType
}

// Enabled reports whether the component participates in resolution.
func (c *Component) Enabled() bool { return c.enabled }

// SetEnabled toggles the enabled flag.
func (c *Component) SetEnabled(enabled bool) { c.enabled = enabled }

// SetAttribute sets a free-form attribute matched by constraint clauses.
func (c *Component) SetAttribute(key, value string) { c.attrs[key] = value }

// Attribute implements constraint.Subject. Besides declared attributes it
// answers "name", "version", "type", "base_dir" and "enabled".
func (c *Component) Attribute(key string) (string, bool) {
	switch key {
	case "name":
		return c.name, true
	case "version":
		return c.version.String(), true
	case constraint.AttrType:
		return c.Type(), true
	case AttrBaseDir:
		return c.baseDir, true
	case AttrEnabled:
		return strconv.FormatBool(c.enabled), true
	}
	v, ok := c.attrs[key]
	return v, ok
}

// Attributes returns a copy of the declared attributes.
func (c *Component) Attributes() map[string]string {
	return maps.Clone(c.attrs)
}

// AttachFacet makes c the owner of f. A facet can be attached once.
func (c *Component) AttachFacet(f Facet) error {
	b := f.base()
	switch {
	case b.owner == c:
		return fmt.Errorf("%s: %s: %w", c, f.Key(), ErrDuplicateFacet)
	case b.owner != nil:
		return fmt.Errorf("%s: %s owned by %s: %w", c, f.Key(), b.owner, ErrFacetOwned)
	}
	b.owner = c
	c.facets = append(c.facets, f)
	if cfg, ok := f.(Configurer); ok {
		cfg.Configure(c.config)
	}
	return nil
}

// Facets returns every owned facet in attachment order.
func (c *Component) Facets() []Facet {
	return slices.Clone(c.facets)
}

// Provides returns the owned facets that are not dependency edges.
func (c *Component) Provides() []Facet {
	var out []Facet
	for _, f := range c.facets {
		if _, edge := f.(*RequiredComponent); !edge {
			out = append(out, f)
		}
	}
	return out
}

// Requires returns the dependency edges in attachment order.
func (c *Component) Requires() []*RequiredComponent {
	var out []*RequiredComponent
	for _, f := range c.facets {
		if rc, ok := f.(*RequiredComponent); ok {
			out = append(out, rc)
		}
	}
	return out
}

// RequiredComponents returns the resolved targets of c's edges.
func (c *Component) RequiredComponents() []*Component {
	var out []*Component
	for _, rc := range c.Requires() {
		if target := rc.Resolved(); target != nil && !slices.Contains(out, target) {
			out = append(out, target)
		}
	}
	return out
}

// Dependents returns the components whose edges resolved to c.
func (c *Component) Dependents() []*Component {
	return slices.Clone(c.dependents)
}

// AddDependent records that d requires c. Repeated calls are ignored.
func (c *Component) AddDependent(d *Component) {
	if d == nil || d == c || slices.Contains(c.dependents, d) {
		return
	}
	c.dependents = append(c.dependents, d)
}

// ResetResolution clears the state a resolution run leaves on c: its
// dependents and the state and target of each of its edges.
func (c *Component) ResetResolution() {
	c.dependents = nil
	for _, rc := range c.Requires() {
		rc.Reset()
	}
}

// Config returns a copy of the configuration overlay.
func (c *Component) Config() map[string]any {
	return maps.Clone(c.config)
}

// MergeConfig copies values into the configuration overlay, replacing
// existing keys.
func (c *Component) MergeConfig(values map[string]any) {
	maps.Copy(c.config, values)
}

// Validate checks that every dependency edge has a resolved target.
func (c *Component) Validate() error {
	var errs []error
	for _, rc := range c.Requires() {
		if rc.Enabled() && rc.Resolved() == nil {
			errs = append(errs, &UnresolvedEdgeError{Component: c.String(), Edge: rc.String()})
		}
	}
	return errors.Join(errs...)
}

// String returns "name/version".
func (c *Component) String() string {
	if c == nil {
		return "<nil>"
	}
	return c.name + "/" + c.version.String()
}

// SameIdentity reports whether a and b share name and version.
func SameIdentity(a, b *Component) bool {
	return a.name == b.name && a.version.Equal(b.version)
}
