// SPDX-License-Identifier: MPL-2.0

package component

import (
	"slices"

	"cabar-cli/pkg/constraint"
	"cabar-cli/pkg/version"
)

type (
	// Set is an insertion-ordered collection of components grouped by name.
	// Within a group components sort by version, highest first, with ties kept
	// in insertion order, so the first member of a group is its latest.
	// A Set is not safe for concurrent use.
	Set struct {
		items   []*Component
		history map[string][]*constraint.Constraint

		// index is built on demand and dropped on every mutation.
		index map[string][]*Component
		names []string
	}
)

// NewSet creates a set holding cs. Duplicates are dropped as in Add.
func NewSet(cs ...*Component) *Set {
	s := &Set{history: map[string][]*constraint.Constraint{}}
	for _, c := range cs {
		s.Add(c)
	}
	return s
}

// Add inserts c unless the set already holds it or another component with
// the same name and version. It reports whether c was inserted.
func (s *Set) Add(c *Component) bool {
	if c == nil || s.Find(c.Name(), c.Version()) != nil {
		return false
	}
	s.items = append(s.items, c)
	s.invalidate()
	return true
}

// Find returns the member with the given identity.
func (s *Set) Find(name string, v version.Version) *Component {
	for _, c := range s.byName()[name] {
		if c.Version().Equal(v) {
			return c
		}
	}
	return nil
}

// Contains reports whether c itself is a member.
func (s *Set) Contains(c *Component) bool {
	return slices.Contains(s.items, c)
}

// Len returns the number of members.
func (s *Set) Len() int { return len(s.items) }

// All returns the members in insertion order.
func (s *Set) All() []*Component { return slices.Clone(s.items) }

// Names returns the distinct names in order of first insertion.
func (s *Set) Names() []string {
	s.byName()
	return slices.Clone(s.names)
}

// ByName returns the members called name, latest first.
func (s *Set) ByName(name string) []*Component {
	return slices.Clone(s.byName()[name])
}

// Versions returns the versions available for name, highest first.
func (s *Set) Versions(name string) []version.Version {
	group := s.byName()[name]
	out := make([]version.Version, len(group))
	for i, c := range group {
		out[i] = c.Version()
	}
	return out
}

// Select returns a new set of the members matching c. The receiver and its
// history are left untouched.
func (s *Set) Select(c *constraint.Constraint) *Set {
	out := NewSet()
	for _, comp := range s.items {
		if c.Match(comp) {
			out.items = append(out.items, comp)
		}
	}
	return out
}

// Reduce narrows, in place, every name group whose name c matches to the
// members c accepts, and appends c to the history of those names. Groups of
// other names are kept. Reducing twice by the same constraint leaves the same
// members as reducing once.
func (s *Set) Reduce(c *constraint.Constraint) {
	matched := map[string]bool{}
	for _, name := range s.Names() {
		if c.MatchesName(name) {
			matched[name] = true
		}
	}
	if c.HasLiteralName() {
		matched[c.Name()] = true
	}
	if len(matched) == 0 {
		return
	}

	kept := s.items[:0:0]
	for _, comp := range s.items {
		if !matched[comp.Name()] || c.Match(comp) {
			kept = append(kept, comp)
		}
	}
	if len(kept) != len(s.items) {
		s.items = kept
		s.invalidate()
	}
	if s.history == nil {
		s.history = map[string][]*constraint.Constraint{}
	}
	for name := range matched {
		s.history[name] = append(s.history[name], c)
	}
}

// History returns the constraints that reduced the name group, oldest first.
func (s *Set) History(name string) []*constraint.Constraint {
	return slices.Clone(s.history[name])
}

// First returns the latest member of the first name group, nil when empty.
func (s *Set) First() *Component {
	if len(s.items) == 0 {
		return nil
	}
	return s.byName()[s.names[0]][0]
}

// Latest returns the highest version called name, nil when absent.
func (s *Set) Latest(name string) *Component {
	if group := s.byName()[name]; len(group) > 0 {
		return group[0]
	}
	return nil
}

// Clone returns an independent copy, history included.
func (s *Set) Clone() *Set {
	out := &Set{
		items:   slices.Clone(s.items),
		history: make(map[string][]*constraint.Constraint, len(s.history)),
	}
	for name, h := range s.history {
		out.history[name] = slices.Clone(h)
	}
	return out
}

func (s *Set) byName() map[string][]*Component {
	if s.index != nil {
		return s.index
	}
	s.index = map[string][]*Component{}
	s.names = nil
	for _, c := range s.items {
		if _, seen := s.index[c.Name()]; !seen {
			s.names = append(s.names, c.Name())
		}
		s.index[c.Name()] = append(s.index[c.Name()], c)
	}
	for _, group := range s.index {
		slices.SortStableFunc(group, func(a, b *Component) int {
			return version.Compare(b.Version(), a.Version())
		})
	}
	return s.index
}

func (s *Set) invalidate() {
	s.index = nil
	s.names = nil
}
