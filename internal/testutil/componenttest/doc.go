// SPDX-License-Identifier: MPL-2.0

// Package componenttest builds components, component sets and cabar.cue
// manifests for tests.
package componenttest
