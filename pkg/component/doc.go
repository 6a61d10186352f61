// SPDX-License-Identifier: MPL-2.0

// Package component models versioned components, the facets they provide and
// the dependency edges they declare.
//
// Facets form a closed set of kinds: PathFacet, EnvVarFacet, ActionFacet,
// ComponentGroupFacet and RequiredComponent. Composable kinds are merged across
// components with Compose; the rest are kept per component.
//
// Set is the by-name grouped candidate pool narrowed during resolution.
package component
