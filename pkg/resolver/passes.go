// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"fmt"

	"cabar-cli/pkg/component"
	"cabar-cli/pkg/constraint"
	"cabar-cli/pkg/version"
)

// run repeats the select, resolve and require passes over every pending edge
// until a round requires no new component. Narrowing must settle for all
// edges before any edge commits to a version, hence whole passes rather than
// one edge at a time.
func (r *Resolver) run() error {
	for round := 1; ; round++ {
		before := r.required.Len()
		edges := r.pendingEdges()

		for _, e := range edges {
			if err := r.selectEdge(e); err != nil {
				return err
			}
		}
		for _, e := range edges {
			if err := r.resolveEdge(e); err != nil {
				return err
			}
		}
		for _, e := range edges {
			if err := r.requireEdge(e); err != nil {
				return err
			}
		}

		r.logger.Debug("resolution round", "round", round, "edges", len(edges), "required", r.required.Len())
		if r.required.Len() == before {
			return nil
		}
	}
}

// pendingEdges returns the top-level edges followed by the edges of every
// required component.
func (r *Resolver) pendingEdges() []*component.RequiredComponent {
	edges := append([]*component.RequiredComponent(nil), r.topLevel...)
	for _, c := range r.required.All() {
		edges = append(edges, c.Requires()...)
	}
	return edges
}

// selectEdge narrows the pool by the edge's constraint. A constraint that
// leaves exactly one candidate binds and requires it immediately.
func (r *Resolver) selectEdge(e *component.RequiredComponent) error {
	if !e.Enabled() || !e.Transition(component.EdgeSelecting) {
		return nil
	}
	c, err := e.Constraint()
	if err != nil {
		return fmt.Errorf("requirement of %s: %w", e.Requester(), err)
	}

	r.selected.Reduce(c)
	matches := r.selected.Select(c)
	r.logger.Debug("narrowed", "constraint", c, "requested_by", e.Requester(), "candidates", matches.Len())

	if e.Resolved() != nil || matches.Len() != 1 {
		return nil
	}
	target := matches.First()
	e.Resolve(target)
	r.logger.Debug("eager require", "component", target, "constraint", c)
	return r.requireComponent(target)
}

// resolveEdge binds an edge whose pool now holds a single candidate and
// propagates narrowing through that candidate's own edges.
func (r *Resolver) resolveEdge(e *component.RequiredComponent) error {
	if !e.Transition(component.EdgeResolving) || e.Resolved() != nil {
		return nil
	}
	c, err := e.Constraint()
	if err != nil {
		return err
	}
	matches := r.selected.Select(c)
	if matches.Len() != 1 {
		return nil
	}

	target := matches.First()
	e.Resolve(target)
	r.logger.Debug("resolved", "component", target, "constraint", c)
	return r.selectEdges(target)
}

// requireEdge commits the edge. An unbound edge takes the highest remaining
// candidate of the first matching name, after applying that name's default
// version when it still leaves a candidate. An empty pool is recorded as
// unresolved.
func (r *Resolver) requireEdge(e *component.RequiredComponent) error {
	if !e.Transition(component.EdgeRequiring) {
		return nil
	}
	defer e.Transition(component.EdgeDone)

	if target := e.Resolved(); target != nil {
		return r.requireComponent(target)
	}
	c, err := e.Constraint()
	if err != nil {
		return err
	}

	matches := r.selected.Select(c)
	if matches.Len() == 0 {
		r.recordUnresolved(e, c)
		return nil
	}
	matches = r.preferDefault(matches)

	target := matches.First()
	if matches.Len() > 1 {
		r.logger.Debug("ambiguous selection, taking latest", "constraint", c, "candidates", matches.Len(), "component", target)
	}
	r.pin(target)
	e.Resolve(target)
	return r.requireComponent(target)
}

// requireComponent adds c to the required set and narrows by its edges.
func (r *Resolver) requireComponent(c *component.Component) error {
	if r.required.Contains(c) || !r.required.Add(c) {
		return nil
	}
	r.logger.Debug("required", "component", c)
	return r.selectEdges(c)
}

func (r *Resolver) selectEdges(c *component.Component) error {
	for _, e := range c.Requires() {
		if err := r.selectEdge(e); err != nil {
			return err
		}
	}
	return nil
}

// pin narrows the pool for c's name to c's exact version, so later edges on
// the same name agree with the choice or end up unresolved.
func (r *Resolver) pin(c *component.Component) {
	exact, err := constraint.New(constraint.Spec{
		Name:        c.Name(),
		Requirement: version.NewRequirement(version.Pair{Op: version.OpEqual, Version: c.Version()}),
	})
	if err != nil {
		r.logger.Warn("cannot pin component", "component", c, "error", err)
		return
	}
	r.selected.Reduce(exact)
}

func (r *Resolver) recordUnresolved(e *component.RequiredComponent, c *constraint.Constraint) {
	entry := UnresolvedEntry{
		Name:        c.Name(),
		RequestedBy: e.Requester(),
		Chain:       requestChain(e.Owner()),
		Constraint:  c.String(),
	}

	names := []string{}
	for _, name := range r.available.Names() {
		if c.MatchesName(name) {
			names = append(names, name)
		}
	}
	for _, name := range names {
		for _, v := range r.available.Versions(name) {
			entry.AvailableVersions = append(entry.AvailableVersions, v.String())
		}
	}
	if c.HasLiteralName() && len(names) == 0 {
		names = append(names, c.Name())
	}
	for _, name := range names {
		for _, h := range r.selected.History(name) {
			entry.History = append(entry.History, h.String())
		}
	}

	r.unresolved.add(entry)
	r.logger.Debug("unresolved", "constraint", c, "requested_by", entry.RequestedBy, "available", entry.AvailableVersions)
}

// preferDefault narrows matches to the default version of the name the
// target is taken from, the first name group. Other names' groups are dropped
// with it so a preference never moves the choice to another name.
func (r *Resolver) preferDefault(matches *component.Set) *component.Set {
	name := matches.First().Name()
	pref, ok := r.defaults[name]
	if !ok {
		return matches
	}
	if preferred := filterRequirement(component.NewSet(matches.ByName(name)...), pref); preferred.Len() > 0 {
		return preferred
	}
	return matches
}

func filterRequirement(s *component.Set, req *version.Requirement) *component.Set {
	out := component.NewSet()
	for _, c := range s.All() {
		if req.SatisfiedBy(c.Version()) {
			out.Add(c)
		}
	}
	return out
}

// requestChain walks first dependents up from c, returning the path from the
// outermost requester down to c.
func requestChain(c *component.Component) []string {
	var chain []string
	seen := map[*component.Component]bool{}
	for c != nil && !seen[c] {
		seen[c] = true
		chain = append([]string{c.String()}, chain...)
		deps := c.Dependents()
		if len(deps) == 0 {
			break
		}
		c = deps[0]
	}
	return chain
}
