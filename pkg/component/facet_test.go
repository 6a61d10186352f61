// SPDX-License-Identifier: MPL-2.0

package component

import (
	"errors"
	"os"
	"slices"
	"strings"
	"testing"
)

func TestUniqLastmost(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{name: "empty", in: nil, want: []string{}},
		{name: "no duplicates", in: []string{"a", "b"}, want: []string{"a", "b"}},
		{name: "keeps last occurrence", in: []string{"a", "b", "a", "c"}, want: []string{"b", "a", "c"}},
		{name: "all equal", in: []string{"x", "x", "x"}, want: []string{"x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := UniqLastmost(tt.in); !slices.Equal(got, tt.want) {
				t.Errorf("UniqLastmost(%v) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestCompose_PathDeduplicatesByLastOccurrence(t *testing.T) {
	t.Parallel()

	first := NewPathFacet("PATH", "/a", "/b", "/a", "/c")
	second := NewPathFacet("PATH", "/d", "/a")
	if err := newTestComponent("one", "1").AttachFacet(first); err != nil {
		t.Fatal(err)
	}
	if err := newTestComponent("two", "1").AttachFacet(second); err != nil {
		t.Fatal(err)
	}

	merged, err := Compose(first, second)
	if err != nil {
		t.Fatalf("Compose() error: %v", err)
	}
	path, ok := merged.(*PathFacet)
	if !ok {
		t.Fatalf("Compose() returned %T", merged)
	}
	if want := []string{"/b", "/c", "/d", "/a"}; !slices.Equal(path.Paths(), want) {
		t.Errorf("Paths() = %v, want %v", path.Paths(), want)
	}
	if merged.Source() != "one/1, two/1" {
		t.Errorf("Source() = %q", merged.Source())
	}
	if merged.Owner() != nil {
		t.Error("composed facet must not have an owner")
	}
	if got := first.Paths(); len(got) != 4 {
		t.Errorf("Compose mutated its input: %v", got)
	}
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	path := NewPathFacet("PATH", "bin", "/usr/bin", "bin")
	if err := newTestComponent("one", "1").AttachFacet(path); err != nil {
		t.Fatal(err)
	}
	got, ok := Normalize(path).(*PathFacet)
	if !ok {
		t.Fatalf("Normalize() returned %T", Normalize(path))
	}
	if want := []string{"/usr/bin", "/opt/one/1/bin"}; !slices.Equal(got.Paths(), want) {
		t.Errorf("Paths() = %v, want %v", got.Paths(), want)
	}
	if got.Source() != "one/1" {
		t.Errorf("Source() = %q", got.Source())
	}
	if len(path.Paths()) != 3 {
		t.Errorf("Normalize mutated its input: %v", path.Paths())
	}

	env := NewEnvVarFacet("HOME", "/home")
	if Normalize(env) != Facet(env) {
		t.Error("Normalize must return non-path facets unchanged")
	}
}

func TestPathFacet_RelativeToBaseDir(t *testing.T) {
	t.Parallel()

	f := NewPathFacet("PATH", "bin", "/usr/bin")
	if err := newTestComponent("ruby", "1.9").AttachFacet(f); err != nil {
		t.Fatal(err)
	}
	want := []string{"/opt/ruby/1.9/bin", "/usr/bin"}
	if !slices.Equal(f.AbsPaths(), want) {
		t.Errorf("AbsPaths() = %v, want %v", f.AbsPaths(), want)
	}
	if got := f.RenderValue(); got != strings.Join(want, string(os.PathListSeparator)) {
		t.Errorf("RenderValue() = %q", got)
	}
}

func TestCompose_EnvVar(t *testing.T) {
	t.Parallel()

	a := newTestComponent("A", "1.0")
	b := newTestComponent("B", "1.0")
	c := newTestComponent("C", "1.0")
	x1 := NewEnvVarFacet("X", "1")
	x2 := NewEnvVarFacet("X", "2")
	x1again := NewEnvVarFacet("X", "1")
	for comp, f := range map[*Component]*EnvVarFacet{a: x1, b: x2, c: x1again} {
		if err := comp.AttachFacet(f); err != nil {
			t.Fatal(err)
		}
	}

	_, err := Compose(x1, x2)
	if !errors.Is(err, ErrEnvVarConflict) {
		t.Fatalf("Compose(X=1, X=2) error = %v, want ErrEnvVarConflict", err)
	}
	var conflict *EnvVarConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("expected *EnvVarConflictError, got %T", err)
	}
	if conflict.First != "A/1.0" || conflict.Second != "B/1.0" || conflict.FirstValue != "1" || conflict.SecondValue != "2" {
		t.Errorf("unexpected conflict details: %+v", conflict)
	}

	merged, err := Compose(x1, x1again)
	if err != nil {
		t.Fatalf("Compose(X=1, X=1) error: %v", err)
	}
	if merged.RenderValue() != "1" {
		t.Errorf("RenderValue() = %q, want 1", merged.RenderValue())
	}
}

func TestCompose_NotComposable(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		existing Facet
		incoming Facet
	}{
		{
			name:     "actions",
			existing: NewActionFacet(map[string]string{"a": "true"}),
			incoming: NewActionFacet(map[string]string{"b": "true"}),
		},
		{
			name:     "different variables",
			existing: NewPathFacet("PATH", "/a"),
			incoming: NewPathFacet("MANPATH", "/a"),
		},
		{
			name:     "path and scalar",
			existing: NewPathFacet("X", "/a"),
			incoming: NewEnvVarFacet("X", "/a"),
		},
		{
			name:     "edges",
			existing: NewRequiredComponent("a", nil, nil),
			incoming: NewRequiredComponent("a", nil, nil),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if _, err := Compose(tt.existing, tt.incoming); !errors.Is(err, ErrNotComposable) {
				t.Errorf("Compose() error = %v, want ErrNotComposable", err)
			}
		})
	}
}

func TestActionFacet(t *testing.T) {
	t.Parallel()

	f := NewActionFacet(map[string]string{"test": "make test", "build": "make"})
	if got := f.Names(); !slices.Equal(got, []string{"build", "test"}) {
		t.Errorf("Names() = %v", got)
	}
	if cmd, ok := f.Command("build"); !ok || cmd != "make" {
		t.Errorf("Command(build) = (%q, %v)", cmd, ok)
	}
	if f.Composable() {
		t.Error("action facets must not be composable")
	}
}

func TestEnvironmentFacetSource(t *testing.T) {
	t.Parallel()

	f := NewEnvironmentEnvVarFacet(SourceEnvironment, "HOME", "/root")
	if f.Source() != SourceEnvironment {
		t.Errorf("Source() = %q", f.Source())
	}
	if f.Owner() != nil {
		t.Error("environment facets have no owner")
	}
}
