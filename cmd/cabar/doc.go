// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the cabar command line interface.
//
// Every command follows the same flow: load the configuration, discover
// component manifests on the search path, pre-narrow with the configured
// select constraints, require the top-level constraints and render the
// result. Commands share one App holding the injected dependencies.
package cmd
