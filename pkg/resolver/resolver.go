// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/log"

	"cabar-cli/internal/dag"
	"cabar-cli/pkg/component"
	"cabar-cli/pkg/constraint"
	"cabar-cli/pkg/version"
)

// ErrCycleDetected is returned by RequiredOrder when required components
// depend on each other.
var ErrCycleDetected = errors.New("dependency cycle detected")

type (
	// Resolver owns the candidate pool and the required set of one resolution
	// run. All methods are serialized; narrowing order is significant, so a
	// Resolver never narrows concurrently.
	Resolver struct {
		mu sync.Mutex

		available  *component.Set
		selected   *component.Set
		required   *component.Set
		topLevel   []*component.RequiredComponent
		unresolved *UnresolvedReport

		defaults     map[string]*version.Requirement
		unresolvedOK bool
		environ      func() []string
		logger       *log.Logger
	}

	// Option configures a Resolver.
	Option func(*Resolver)
)

// WithLogger sets the logger used for resolution tracing.
func WithLogger(logger *log.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithDefaultVersions sets per-name version preferences applied when an edge
// still has several candidates in the require pass. A preference that would
// leave no candidate is ignored.
//
// An edge whose name pattern matches several names takes its target from the
// first of them in discovery order, so only that name's preference applies.
func WithDefaultVersions(defaults map[string]*version.Requirement) Option {
	return func(r *Resolver) {
		for name, req := range defaults {
			r.defaults[name] = req
		}
	}
}

// WithUnresolvedOK makes Require report unresolved components through
// Unresolved instead of failing.
func WithUnresolvedOK(ok bool) Option {
	return func(r *Resolver) { r.unresolvedOK = ok }
}

// WithEnviron sets the environment source for facet composition.
func WithEnviron(environ func() []string) Option {
	return func(r *Resolver) { r.environ = environ }
}

// WithoutEnvironment disables the environment overlay in ComposeFacets.
func WithoutEnvironment() Option {
	return func(r *Resolver) { r.environ = nil }
}

// New creates a resolver over the available components. Disabled components
// never become candidates.
//
// Edge state lives on the components themselves, so New resets the state any
// earlier resolver left on the set. A set serves one resolver at a time.
func New(available *component.Set, opts ...Option) *Resolver {
	if available == nil {
		available = component.NewSet()
	}
	r := &Resolver{
		available:  available,
		selected:   component.NewSet(),
		required:   component.NewSet(),
		unresolved: newUnresolvedReport(),
		defaults:   map[string]*version.Requirement{},
		environ:    os.Environ,
		logger:     log.New(io.Discard),
	}
	for _, c := range available.All() {
		c.ResetResolution()
		if c.Enabled() {
			r.selected.Add(c)
		}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Select narrows the candidate pool by each constraint spec without
// requiring anything.
func (r *Resolver) Select(specs ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, spec := range specs {
		c, err := constraint.Compile(spec)
		if err != nil {
			return err
		}
		r.selected.Reduce(c)
		r.logger.Debug("pre-selected", "constraint", c, "remaining", r.selected.Len())
	}
	return nil
}

// Require compiles each spec and resolves it as a top-level request.
func (r *Resolver) Require(specs ...string) error {
	cs := make([]*constraint.Constraint, 0, len(specs))
	for _, spec := range specs {
		c, err := constraint.Compile(spec)
		if err != nil {
			return err
		}
		cs = append(cs, c)
	}
	return r.RequireConstraint(cs...)
}

// RequireConstraint adds one top-level edge per constraint, runs the
// resolution passes to a fixed point and validates the result.
//
// It returns an *UnresolvedComponentError when any edge found no candidate,
// unless the resolver was built WithUnresolvedOK.
func (r *Resolver) RequireConstraint(cs ...*constraint.Constraint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, c := range cs {
		r.topLevel = append(r.topLevel, component.NewRequiredComponentFor(c))
	}
	if err := r.run(); err != nil {
		return err
	}

	if !r.unresolved.IsEmpty() {
		if r.unresolvedOK {
			r.logger.Warn("unresolved components", "names", r.unresolved.Names())
			return nil
		}
		return &UnresolvedComponentError{Report: r.unresolved.clone()}
	}

	var errs []error
	for _, c := range r.required.All() {
		if err := c.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Available returns a copy of the input component set.
func (r *Resolver) Available() *component.Set {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.available.Clone()
}

// Selected returns a copy of the narrowed candidate pool.
func (r *Resolver) Selected() *component.Set {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.selected.Clone()
}

// Required returns a copy of the required set in the order components were
// required.
func (r *Resolver) Required() *component.Set {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.required.Clone()
}

// TopLevel returns the components bound to top-level requests, in request
// order. Unresolved requests are skipped.
func (r *Resolver) TopLevel() []*component.Component {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []*component.Component
	for _, rc := range r.topLevel {
		if c := rc.Resolved(); c != nil {
			out = append(out, c)
		}
	}
	return out
}

// Unresolved returns a snapshot of the unresolved-components report.
func (r *Resolver) Unresolved() *UnresolvedReport {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unresolved.clone()
}

// RequiredOrder returns the required components with every component ahead
// of the components that depend on it.
func (r *Resolver) RequiredOrder() ([]*component.Component, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.requiredOrder()
}

func (r *Resolver) requiredOrder() ([]*component.Component, error) {
	order, err := dag.Sort(r.required.All(), (*component.Component).Dependents)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCycleDetected, err)
	}
	return order, nil
}
