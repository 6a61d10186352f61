// SPDX-License-Identifier: MPL-2.0

// Package dag orders dependency graphs. It is used by the resolver to walk
// required components dependencies-first when composing facets.
package dag

import (
	"fmt"
	"slices"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle, preventing topological ordering.
	CycleError struct {
		// Cycle lists the nodes of one cycle, starting and ending with the same node.
		Cycle []string
	}

	item[T comparable] struct {
		elem  T
		depth int
	}
)

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(e.Cycle, " -> "))
}

// Sort orders elements so that every element comes before its dependents.
//
// Each element gets a depth of 1 + the largest depth of anything it is a
// dependent of, propagated through a worklist seeded with every element at
// depth 1. The result is sorted by depth, then by input position, so elements
// of equal depth keep their input order. Dependents that are not in elements
// are ignored.
//
// A depth above len(elements) is only reachable through a cycle; Sort then
// returns a *CycleError.
func Sort[T comparable](elements []T, dependentsOf func(T) []T) ([]T, error) {
	if len(elements) == 0 {
		return nil, nil
	}

	position := make(map[T]int, len(elements))
	for i, e := range elements {
		if _, dup := position[e]; !dup {
			position[e] = i
		}
	}

	depth := make(map[T]int, len(position))
	queue := make([]item[T], 0, len(elements))
	for _, e := range elements {
		queue = append(queue, item[T]{elem: e, depth: 1})
	}

	limit := len(position)
	for len(queue) > 0 {
		it := queue[0]
		queue = queue[1:]
		if it.depth <= depth[it.elem] {
			continue
		}
		if it.depth > limit {
			return nil, &CycleError{Cycle: findCycle(elements, position, dependentsOf)}
		}
		depth[it.elem] = it.depth
		for _, d := range dependentsOf(it.elem) {
			if _, ok := position[d]; ok && depth[d] < it.depth+1 {
				queue = append(queue, item[T]{elem: d, depth: it.depth + 1})
			}
		}
	}

	order := make([]T, 0, len(position))
	for e := range position {
		order = append(order, e)
	}
	slices.SortStableFunc(order, func(a, b T) int {
		if depth[a] != depth[b] {
			return depth[a] - depth[b]
		}
		return position[a] - position[b]
	})
	return order, nil
}

// findCycle returns the first cycle a depth-first walk over elements meets.
func findCycle[T comparable](elements []T, position map[T]int, dependentsOf func(T) []T) []string {
	const (
		white = iota
		grey
		black
	)
	color := make(map[T]int, len(position))
	var stack []T

	var visit func(T) []string
	visit = func(e T) []string {
		color[e] = grey
		stack = append(stack, e)
		for _, d := range dependentsOf(e) {
			if _, ok := position[d]; !ok {
				continue
			}
			switch color[d] {
			case grey:
				start := slices.Index(stack, d)
				cycle := make([]string, 0, len(stack)-start+1)
				for _, n := range stack[start:] {
					cycle = append(cycle, fmt.Sprint(n))
				}
				return append(cycle, fmt.Sprint(d))
			case white:
				if c := visit(d); c != nil {
					return c
				}
			}
		}
		stack = stack[:len(stack)-1]
		color[e] = black
		return nil
	}

	for _, e := range elements {
		if color[e] == white {
			if c := visit(e); c != nil {
				return c
			}
		}
	}
	return nil
}
