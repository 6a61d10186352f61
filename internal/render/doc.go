// SPDX-License-Identifier: MPL-2.0

// Package render writes resolution results: shell environment assignments
// and YAML or TOML documents describing the required components.
package render
