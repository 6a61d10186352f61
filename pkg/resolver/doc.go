// SPDX-License-Identifier: MPL-2.0

// Package resolver picks one version of every component reachable from a set
// of top-level constraints and composes the facets of the result.
//
// Resolution is a fixed point over three passes. Every pending dependency
// edge is first used to narrow the shared candidate pool (select), then edges
// whose pool holds exactly one candidate are bound (resolve), and finally the
// remaining edges commit to the highest remaining version (require). The
// passes repeat until no new component is required. There is no backtracking:
// an edge whose pool becomes empty is reported as unresolved.
package resolver
