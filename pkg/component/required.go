// SPDX-License-Identifier: MPL-2.0

package component

import (
	"fmt"
	"maps"

	"cabar-cli/pkg/constraint"
	"cabar-cli/pkg/version"
)

// Edge states, in the only order an edge may pass through them.
const (
	EdgeUnvisited EdgeState = iota
	EdgeSelecting
	EdgeResolving
	EdgeRequiring
	EdgeDone
)

type (
	// EdgeState is the progress of a RequiredComponent through one resolution run.
	EdgeState int

	// RequiredComponent is a dependency edge from its owner to whichever
	// component the resolver picks for its constraint. Once resolved the
	// target never changes.
	RequiredComponent struct {
		facetBase
		name        string
		requirement *version.Requirement
		attrs       map[string]string

		compiled   *constraint.Constraint
		compileErr error

		state    EdgeState
		resolved *Component
	}
)

// String returns the state name.
func (s EdgeState) String() string {
	switch s {
	case EdgeUnvisited:
		return "unvisited"
	case EdgeSelecting:
		return "selecting"
	case EdgeResolving:
		return "resolving"
	case EdgeRequiring:
		return "requiring"
	case EdgeDone:
		return "done"
	default:
		return fmt.Sprintf("EdgeState(%d)", int(s))
	}
}

// NewRequiredComponent creates an edge to name (literal, glob or /regex/)
// restricted by req (nil accepts any version) and attribute matchers.
func NewRequiredComponent(name string, req *version.Requirement, attrs map[string]string) *RequiredComponent {
	return &RequiredComponent{name: name, requirement: req, attrs: maps.Clone(attrs)}
}

// ParseRequiredComponent creates an edge from constraint syntax, e.g. "ruby/~> 1.8".
func ParseRequiredComponent(spec string) (*RequiredComponent, error) {
	c, err := constraint.Compile(spec)
	if err != nil {
		return nil, err
	}
	return NewRequiredComponentFor(c), nil
}

// NewRequiredComponentFor creates an edge from an already compiled constraint.
func NewRequiredComponentFor(c *constraint.Constraint) *RequiredComponent {
	return &RequiredComponent{
		name:        c.Name(),
		requirement: c.Requirement(),
		attrs:       c.Attributes(),
		compiled:    c,
	}
}

// Key implements Facet.
func (rc *RequiredComponent) Key() Kind { return KindRequired }

// CompositionKey implements Facet.
func (rc *RequiredComponent) CompositionKey() string { return string(KindRequired) + ":" + rc.name }

// Composable implements Facet.
func (rc *RequiredComponent) Composable() bool { return false }

// RenderValue implements Facet.
func (rc *RequiredComponent) RenderValue() string { return rc.String() }

// Name returns the target name matcher.
func (rc *RequiredComponent) Name() string { return rc.name }

// Requirement returns the version requirement, nil when unconstrained.
func (rc *RequiredComponent) Requirement() *version.Requirement { return rc.requirement }

// Requester returns the owner, or "top-level" for edges requested directly.
func (rc *RequiredComponent) Requester() string {
	if rc.owner == nil {
		return "top-level"
	}
	return rc.owner.String()
}

// Constraint compiles the edge's constraint on first use and returns the same
// result afterwards.
func (rc *RequiredComponent) Constraint() (*constraint.Constraint, error) {
	if rc.compiled == nil && rc.compileErr == nil {
		rc.compiled, rc.compileErr = constraint.New(constraint.Spec{
			Name:        rc.name,
			Requirement: rc.requirement,
			Attributes:  rc.attrs,
		})
	}
	return rc.compiled, rc.compileErr
}

// State returns the current edge state.
func (rc *RequiredComponent) State() EdgeState { return rc.state }

// Transition advances the edge to next. It succeeds only when next directly
// follows the current state, so every step runs at most once per edge.
func (rc *RequiredComponent) Transition(next EdgeState) bool {
	var ok bool
	switch rc.state {
	case EdgeUnvisited:
		ok = next == EdgeSelecting
	case EdgeSelecting:
		ok = next == EdgeResolving
	case EdgeResolving:
		ok = next == EdgeRequiring
	case EdgeRequiring:
		ok = next == EdgeDone
	case EdgeDone:
		ok = false
	}
	if ok {
		rc.state = next
	}
	return ok
}

// Resolved returns the target, nil while unresolved.
func (rc *RequiredComponent) Resolved() *Component { return rc.resolved }

// Resolve sets the target and registers the owner as a dependent of it. It
// reports false, leaving the edge untouched, when a target is already set.
func (rc *RequiredComponent) Resolve(target *Component) bool {
	if rc.resolved != nil || target == nil {
		return false
	}
	rc.resolved = target
	target.AddDependent(rc.owner)
	return true
}

// Reset returns the edge to EdgeUnvisited without a target, ready for a new
// resolution run. The target keeps its dependents; see Component.ResetResolution.
func (rc *RequiredComponent) Reset() {
	rc.state = EdgeUnvisited
	rc.resolved = nil
}

// String renders the edge in constraint syntax.
func (rc *RequiredComponent) String() string {
	c, err := rc.Constraint()
	if err != nil {
		return rc.name
	}
	return c.String()
}
