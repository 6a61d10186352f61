// SPDX-License-Identifier: MPL-2.0

package component

import (
	"errors"
	"slices"
	"testing"

	"cabar-cli/pkg/constraint"
	"cabar-cli/pkg/version"
)

func TestRequiredComponent_Transition(t *testing.T) {
	t.Parallel()

	rc := NewRequiredComponent("lib", nil, nil)
	if rc.State() != EdgeUnvisited {
		t.Fatalf("initial state = %s", rc.State())
	}
	if rc.Transition(EdgeResolving) {
		t.Error("skipping a state must be rejected")
	}

	steps := []EdgeState{EdgeSelecting, EdgeResolving, EdgeRequiring, EdgeDone}
	for _, next := range steps {
		if !rc.Transition(next) {
			t.Fatalf("Transition(%s) from %s rejected", next, rc.State())
		}
		if rc.Transition(next) {
			t.Errorf("repeated Transition(%s) accepted", next)
		}
	}
	if rc.Transition(EdgeDone + 1) {
		t.Error("transition past done accepted")
	}
}

func TestRequiredComponent_TransitionTable(t *testing.T) {
	t.Parallel()

	states := []EdgeState{EdgeUnvisited, EdgeSelecting, EdgeResolving, EdgeRequiring, EdgeDone}
	legal := map[EdgeState]EdgeState{
		EdgeUnvisited: EdgeSelecting,
		EdgeSelecting: EdgeResolving,
		EdgeResolving: EdgeRequiring,
		EdgeRequiring: EdgeDone,
	}
	for i, from := range states {
		for _, next := range append(slices.Clone(states), EdgeState(-1), EdgeDone+1) {
			t.Run(from.String()+"->"+next.String(), func(t *testing.T) {
				t.Parallel()
				rc := NewRequiredComponent("lib", nil, nil)
				for _, step := range states[1 : i+1] {
					if !rc.Transition(step) {
						t.Fatalf("setup Transition(%s) rejected", step)
					}
				}
				want, ok := legal[from]
				wantOK := ok && next == want
				if got := rc.Transition(next); got != wantOK {
					t.Errorf("Transition(%s) from %s = %v, want %v", next, from, got, wantOK)
				}
				if wantOK && rc.State() != next {
					t.Errorf("State() = %s, want %s", rc.State(), next)
				}
				if !wantOK && rc.State() != from {
					t.Errorf("rejected transition changed state to %s", rc.State())
				}
			})
		}
	}
}

func TestComponent_ResetResolution(t *testing.T) {
	t.Parallel()

	owner := newTestComponent("app", "1.0")
	rc := NewRequiredComponent("lib", nil, nil)
	if err := owner.AttachFacet(rc); err != nil {
		t.Fatal(err)
	}
	target := newTestComponent("lib", "2.0")
	rc.Transition(EdgeSelecting)
	rc.Resolve(target)
	if len(target.Dependents()) != 1 {
		t.Fatalf("Dependents() = %v, want [app/1.0]", target.Dependents())
	}

	owner.ResetResolution()
	target.ResetResolution()

	if rc.State() != EdgeUnvisited || rc.Resolved() != nil {
		t.Errorf("edge after reset: state %s, target %s", rc.State(), rc.Resolved())
	}
	if len(target.Dependents()) != 0 {
		t.Errorf("Dependents() after reset = %v", target.Dependents())
	}
	other := newTestComponent("lib", "1.0")
	if !rc.Resolve(other) || rc.Resolved() != other {
		t.Error("edge must accept a new target after reset")
	}
}

func TestRequiredComponent_ResolveIsOneShot(t *testing.T) {
	t.Parallel()

	owner := newTestComponent("app", "1.0")
	rc := NewRequiredComponent("lib", version.MustParseRequirement(">= 1.0"), nil)
	if err := owner.AttachFacet(rc); err != nil {
		t.Fatal(err)
	}
	first := newTestComponent("lib", "1.0")
	second := newTestComponent("lib", "2.0")

	if !rc.Resolve(first) {
		t.Fatal("first Resolve() rejected")
	}
	if rc.Resolve(second) {
		t.Error("second Resolve() accepted")
	}
	if rc.Resolved() != first {
		t.Errorf("Resolved() = %s, want lib/1.0", rc.Resolved())
	}
	if len(second.Dependents()) != 0 {
		t.Error("rejected target must not record a dependent")
	}
	if rc.Requester() != "app/1.0" {
		t.Errorf("Requester() = %q", rc.Requester())
	}
}

func TestRequiredComponent_Constraint(t *testing.T) {
	t.Parallel()

	rc := NewRequiredComponent("lib*", version.MustParseRequirement("~> 1.2"), map[string]string{"arch": "x86"})
	c, err := rc.Constraint()
	if err != nil {
		t.Fatalf("Constraint() error: %v", err)
	}
	again, _ := rc.Constraint()
	if c != again {
		t.Error("Constraint() must be memoized")
	}

	lib := newTestComponent("libfoo", "1.2.7")
	lib.SetAttribute("arch", "x86")
	if !c.Match(lib) {
		t.Error("expected libfoo/1.2.7 arch=x86 to match")
	}
	if rc.String() != "lib*/~> 1.2,arch=x86" {
		t.Errorf("String() = %q", rc.String())
	}

	bad := NewRequiredComponent("/(/", nil, nil)
	if _, err := bad.Constraint(); !errors.Is(err, constraint.ErrMalformedConstraint) {
		t.Errorf("Constraint() error = %v, want ErrMalformedConstraint", err)
	}
	if bad.Requester() != "top-level" {
		t.Errorf("Requester() = %q", bad.Requester())
	}
}

func TestParseRequiredComponent(t *testing.T) {
	t.Parallel()

	rc, err := ParseRequiredComponent("ruby/>= 1.8, < 2")
	if err != nil {
		t.Fatalf("ParseRequiredComponent() error: %v", err)
	}
	if rc.Name() != "ruby" {
		t.Errorf("Name() = %q", rc.Name())
	}
	if !rc.Requirement().SatisfiedBy(version.MustParse("1.9")) {
		t.Error("expected 1.9 to satisfy the parsed requirement")
	}
	if _, err := ParseRequiredComponent("ruby/>= x y"); err == nil {
		t.Error("expected malformed requirement error")
	}
}
