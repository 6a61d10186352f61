// SPDX-License-Identifier: MPL-2.0

package render

import (
	"bytes"
	"errors"
	"slices"
	"strings"
	"testing"

	"cabar-cli/internal/testutil/componenttest"
	"cabar-cli/pkg/component"
	"cabar-cli/pkg/resolver"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

func resolved(t *testing.T, environ []string, cs ...*component.Component) (*resolver.Resolver, *resolver.FacetMap) {
	t.Helper()

	opts := []resolver.Option{resolver.WithUnresolvedOK(true), resolver.WithoutEnvironment()}
	if environ != nil {
		opts = []resolver.Option{resolver.WithUnresolvedOK(true), resolver.WithEnviron(func() []string { return environ })}
	}
	r := resolver.New(componenttest.NewSet(cs...), opts...)
	if err := r.Require(cs[0].Name()); err != nil {
		t.Fatalf("Require() error: %v", err)
	}
	m, err := r.ComposeFacets()
	if err != nil {
		t.Fatalf("ComposeFacets() error: %v", err)
	}
	return r, m
}

func sample(t *testing.T) (*resolver.Resolver, *resolver.FacetMap) {
	t.Helper()
	return resolved(t, nil,
		componenttest.NewTestComponent("app", "1.0",
			componenttest.WithRequires("lib/>= 2", "missing"),
			componenttest.WithEnv("GREETING", "hello world"),
			componenttest.WithAction("run", "bin/app"),
		),
		componenttest.NewTestComponent("lib", "2.1",
			componenttest.WithEnv("LIB_HOME", "/opt/lib/2.1"),
		),
	)
}

func TestEnv_Formats(t *testing.T) {
	t.Parallel()

	_, m := sample(t)

	tests := []struct {
		format EnvFormat
		want   []string
	}{
		{format: EnvFormatShell, want: []string{"export LIB_HOME=/opt/lib/2.1", "export GREETING='hello world'"}},
		{format: "", want: []string{"export LIB_HOME=/opt/lib/2.1", "export GREETING='hello world'"}},
		{format: EnvFormatDotenv, want: []string{"LIB_HOME=/opt/lib/2.1", "GREETING='hello world'"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if err := Env(&buf, m, EnvOptions{Format: tt.format}); err != nil {
				t.Fatalf("Env() error: %v", err)
			}
			got := strings.Split(strings.TrimSpace(buf.String()), "\n")
			if !slices.Equal(got, tt.want) {
				t.Errorf("Env() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestEnv_Errors(t *testing.T) {
	t.Parallel()

	_, m := sample(t)
	if err := Env(&bytes.Buffer{}, m, EnvOptions{Format: "fish"}); !errors.Is(err, ErrInvalidEnvFormat) {
		t.Errorf("error = %v, want ErrInvalidEnvFormat", err)
	}

	if _, err := assignment(resolver.EnvAssignment{Name: "1BAD", Value: "x"}); !errors.Is(err, ErrInvalidEnvName) {
		t.Errorf("error = %v, want ErrInvalidEnvName", err)
	}
}

func TestEnv_Overlay(t *testing.T) {
	t.Parallel()

	_, m := resolved(t, []string{"LIB_MODE=fast"},
		componenttest.NewTestComponent("lib", "2.1", componenttest.WithEnv("LIB_MODE", "fast")),
	)
	var buf bytes.Buffer
	if err := Env(&buf, m, EnvOptions{}); err != nil {
		t.Fatalf("Env() error: %v", err)
	}
	if got := strings.TrimSpace(buf.String()); got != "export LIB_MODE=fast" {
		t.Errorf("Env() = %q", got)
	}
}

func TestNewDocument(t *testing.T) {
	t.Parallel()

	r, m := sample(t)
	doc, err := NewDocument(r, m)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}

	if !slices.Equal(doc.TopLevel, []string{"app/1.0"}) {
		t.Errorf("TopLevel = %v", doc.TopLevel)
	}
	if len(doc.Components) != 2 || doc.Components[0].Name != "lib" || doc.Components[1].Name != "app" {
		t.Fatalf("Components = %+v", doc.Components)
	}
	app := doc.Components[1]
	wantEdges := []EdgeDoc{{Constraint: "lib/>= 2", Resolved: "lib/2.1"}, {Constraint: "missing"}}
	if !slices.Equal(app.Requires, wantEdges) {
		t.Errorf("app.Requires = %+v", app.Requires)
	}
	if app.Actions["run"] != "bin/app" {
		t.Errorf("app.Actions = %v", app.Actions)
	}
	if lib := doc.Components[0]; !slices.Equal(lib.Dependents, []string{"app/1.0"}) {
		t.Errorf("lib.Dependents = %v", lib.Dependents)
	}
	if len(doc.Environment) != 2 || doc.Environment[0].Sources[0] != "lib/2.1" {
		t.Errorf("Environment = %+v", doc.Environment)
	}
	if len(doc.Unresolved) != 1 || doc.Unresolved[0].Name != "missing" || doc.Unresolved[0].RequestedBy != "app/1.0" {
		t.Errorf("Unresolved = %+v", doc.Unresolved)
	}
}

func TestWrite_Formats(t *testing.T) {
	t.Parallel()

	r, m := sample(t)
	doc, err := NewDocument(r, m)
	if err != nil {
		t.Fatalf("NewDocument() error: %v", err)
	}

	decoders := map[Format]func([]byte, any) error{
		FormatYAML: yaml.Unmarshal,
		FormatTOML: toml.Unmarshal,
	}
	for format, decode := range decoders {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			if err := Write(&buf, doc, format); err != nil {
				t.Fatalf("Write() error: %v", err)
			}
			if !strings.Contains(buf.String(), "top_level") || !strings.Contains(buf.String(), "base_dir") {
				t.Errorf("output lacks snake_case keys:\n%s", buf.String())
			}
			var back Document
			if err := decode(buf.Bytes(), &back); err != nil {
				t.Fatalf("decode: %v\n%s", err, buf.String())
			}
			if len(back.Components) != 2 || back.Components[1].Requires[0].Resolved != "lib/2.1" {
				t.Errorf("decoded components = %+v", back.Components)
			}
		})
	}

	if err := Write(&bytes.Buffer{}, doc, "json"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("error = %v, want ErrInvalidFormat", err)
	}
}
