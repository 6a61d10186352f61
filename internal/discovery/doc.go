// SPDX-License-Identifier: MPL-2.0

// Package discovery finds cabar.cue component manifests on the search path
// and turns them into components with their facets attached.
//
// Each search directory is scanned at three depths: the directory itself,
// its children and its grandchildren, so both flat trees and the
// <name>/<version>/cabar.cue layout are found. A manifest may declare
// component groups whose directories are scanned the same way.
package discovery
