// SPDX-License-Identifier: MPL-2.0

package resolver

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// ErrUnresolvedComponent is the sentinel error wrapped by UnresolvedComponentError.
var ErrUnresolvedComponent = errors.New("unresolved component")

type (
	// UnresolvedEntry records one edge that found no candidate.
	UnresolvedEntry struct {
		// Name is the name matcher of the failing constraint.
		Name string `json:"name" yaml:"name" toml:"name"`
		// RequestedBy is the owning component, or "top-level".
		RequestedBy string `json:"requested_by" yaml:"requested_by" toml:"requested_by"`
		// Chain leads from the outermost requester to RequestedBy.
		Chain []string `json:"chain,omitempty" yaml:"chain,omitempty" toml:"chain,omitempty"`
		// Constraint is the failing constraint.
		Constraint string `json:"constraint" yaml:"constraint" toml:"constraint"`
		// AvailableVersions lists every discovered version with a matching name.
		AvailableVersions []string `json:"available_versions" yaml:"available_versions" toml:"available_versions"`
		// History lists the constraints that narrowed the pool for the name.
		History []string `json:"history,omitempty" yaml:"history,omitempty" toml:"history,omitempty"`
	}

	// UnresolvedReport groups unresolved entries by name, in the order names
	// first failed.
	UnresolvedReport struct {
		names   []string
		entries map[string][]UnresolvedEntry
	}

	// UnresolvedComponentError is returned when resolution leaves edges
	// without a candidate. It wraps ErrUnresolvedComponent for errors.Is()
	// compatibility.
	UnresolvedComponentError struct {
		Report *UnresolvedReport
	}
)

// Error implements the error interface.
func (e *UnresolvedComponentError) Error() string {
	var sb strings.Builder
	sb.WriteString("unresolved components:")
	for _, entry := range e.Report.All() {
		fmt.Fprintf(&sb, "\n  %s requested by %s (available: [%s])",
			entry.Constraint, entry.RequestedBy, strings.Join(entry.AvailableVersions, ", "))
	}
	return sb.String()
}

// Unwrap returns ErrUnresolvedComponent so callers can use errors.Is for programmatic detection.
func (e *UnresolvedComponentError) Unwrap() error { return ErrUnresolvedComponent }

func newUnresolvedReport() *UnresolvedReport {
	return &UnresolvedReport{entries: map[string][]UnresolvedEntry{}}
}

func (r *UnresolvedReport) add(entry UnresolvedEntry) {
	if _, ok := r.entries[entry.Name]; !ok {
		r.names = append(r.names, entry.Name)
	}
	r.entries[entry.Name] = append(r.entries[entry.Name], entry)
}

// IsEmpty reports whether nothing is unresolved.
func (r *UnresolvedReport) IsEmpty() bool { return len(r.names) == 0 }

// Len returns the number of unresolved names.
func (r *UnresolvedReport) Len() int { return len(r.names) }

// Names returns the unresolved names.
func (r *UnresolvedReport) Names() []string { return slices.Clone(r.names) }

// Entries returns the entries recorded for name.
func (r *UnresolvedReport) Entries(name string) []UnresolvedEntry {
	return slices.Clone(r.entries[name])
}

// All returns every entry grouped by name.
func (r *UnresolvedReport) All() []UnresolvedEntry {
	var out []UnresolvedEntry
	for _, name := range r.names {
		out = append(out, r.entries[name]...)
	}
	return out
}

func (r *UnresolvedReport) clone() *UnresolvedReport {
	out := newUnresolvedReport()
	for _, entry := range r.All() {
		out.add(entry)
	}
	return out
}
