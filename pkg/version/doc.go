// SPDX-License-Identifier: MPL-2.0

// Package version provides the totally-ordered version value type used to
// identify component releases, and the Requirement type a version is tested
// against.
//
// Versions follow a Debian-like shape:
//
//	[epoch:]upstream[-revision]
//
// The upstream and revision parts are split into alternating non-digit and
// digit runs. Runs are compared element-wise: non-digit runs as strings, digit
// runs as integers of arbitrary size. A missing digit run sorts below any
// present one, so "1.2" < "1.2.0" < "1.2.1".
//
// A Requirement is a conjunction of (operator, version) pairs:
//
//	">= 1.0, < 2.0"
//	"~> 1.2"        // >= 1.2 and < 1.3
//	"1.4"           // shorthand for "= 1.4"
//	">"             // shorthand for "> 0"
package version
