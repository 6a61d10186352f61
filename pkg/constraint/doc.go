// SPDX-License-Identifier: MPL-2.0

// Package constraint compiles loose component specifications into a single
// predicate over name, version and arbitrary attributes.
//
// Name and attribute matchers accept literals, globs ("foo*", "b?r") and
// regular expressions written as "/pattern/flags". A constraint never fails at
// match time: a subject without a constrained attribute simply does not match.
package constraint
