// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"cabar-cli/internal/testutil/componenttest"
	"cabar-cli/pkg/component"
	"cabar-cli/pkg/cueutil"
)

func identities(set *component.Set) []string {
	return componenttest.Strings(set.All())
}

func diagnosticCodes(diags []Diagnostic) []string {
	codes := make([]string, len(diags))
	for i, d := range diags {
		codes[i] = d.Code
	}
	return codes
}

func TestDiscover_Layouts(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	componenttest.WriteManifest(t, root, componenttest.Named("site"), componenttest.Versioned("1"))
	componenttest.WriteManifest(t, filepath.Join(root, "make"), componenttest.Named("make"), componenttest.Versioned("4.3"))
	componenttest.WriteManifest(t, filepath.Join(root, "ruby", "1.9.3"))
	componenttest.WriteManifest(t, filepath.Join(root, "ruby", "1.8.7"))
	// Too deep to be found.
	componenttest.WriteManifest(t, filepath.Join(root, "a", "b", "c"), componenttest.Named("deep"), componenttest.Versioned("1"))
	componenttest.WriteManifest(t, filepath.Join(root, ".hidden", "x"), componenttest.Named("hidden"), componenttest.Versioned("1"))

	result, err := New([]string{root}).Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	want := []string{"site/1", "make/4.3", "ruby/1.8.7", "ruby/1.9.3"}
	if got := identities(result.Components); !slices.Equal(got, want) {
		t.Errorf("components = %v, want %v", got, want)
	}
	if len(result.Diagnostics) != 0 {
		t.Errorf("unexpected diagnostics: %v", result.Diagnostics)
	}
	if result.Components.Latest("ruby").Version().String() != "1.9.3" {
		t.Error("latest ruby should be 1.9.3")
	}
}

func TestDiscover_ManifestFacets(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	dir := filepath.Join(root, "ruby", "1.9.3")
	componenttest.WriteManifest(t, dir,
		componenttest.Typed("lang"),
		componenttest.Requires("zlib/>= 1.2", "lib:openssl*"),
		componenttest.ProvidesPath("PATH", "bin"),
		componenttest.ProvidesPath("MANPATH", "share/man", "/usr/share/man"),
		componenttest.ProvidesEnv("RUBY_HOME", "/opt/ruby"),
		componenttest.ProvidesAction("irb", "bin/irb"),
	)

	result, err := New([]string{root}).Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	ruby := result.Components.Latest("ruby")
	if ruby == nil {
		t.Fatal("ruby not discovered")
	}
	if ruby.Type() != "lang" || ruby.BaseDir() != dir {
		t.Errorf("type/base dir = %q / %q", ruby.Type(), ruby.BaseDir())
	}

	var edges []string
	for _, rc := range ruby.Requires() {
		edges = append(edges, rc.String())
	}
	if !slices.Equal(edges, []string{"zlib/>= 1.2", "openssl*,type=lib"}) {
		t.Errorf("requires = %v", edges)
	}

	var keys []string
	for _, f := range ruby.Provides() {
		keys = append(keys, f.CompositionKey())
	}
	wantKeys := []string{"path:MANPATH", "path:PATH", "env-scalar:RUBY_HOME", "action"}
	if !slices.Equal(keys, wantKeys) {
		t.Errorf("provides = %v, want %v", keys, wantKeys)
	}

	man := ruby.Provides()[0].(*component.PathFacet)
	if got := man.AbsPaths(); !slices.Equal(got, []string{filepath.Join(dir, "share/man"), "/usr/share/man"}) {
		t.Errorf("MANPATH = %v", got)
	}
}

func TestDiscover_ComponentGroups(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	outside := t.TempDir()
	componenttest.WriteManifest(t, filepath.Join(root, "toolchain", "2024"),
		componenttest.Group("vendor", filepath.Join(outside, "missing")),
	)
	componenttest.WriteManifest(t, filepath.Join(root, "toolchain", "2024", "vendor", "gcc", "13.2"))

	result, err := New([]string{root}).Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if result.Components.Latest("gcc") == nil {
		t.Fatalf("grouped component not found: %v", identities(result.Components))
	}

	var fromGroup *DiscoveredFile
	for _, f := range result.Files {
		if f.Component != nil && f.Component.Name() == "gcc" {
			fromGroup = f
		}
	}
	if fromGroup == nil || fromGroup.Source != SourceGroup {
		t.Errorf("gcc should come from a component group, got %+v", fromGroup)
	}
	if codes := diagnosticCodes(result.Diagnostics); !slices.Equal(codes, []string{CodeGroupMissing}) {
		t.Errorf("diagnostics = %v", codes)
	}
}

func TestDiscover_DuplicatesFirstWins(t *testing.T) {
	t.Parallel()

	first := t.TempDir()
	second := t.TempDir()
	firstPath := componenttest.WriteManifest(t, filepath.Join(first, "zlib", "1.2"))
	componenttest.WriteManifest(t, filepath.Join(second, "zlib", "1.2"),
		componenttest.ProvidesEnv("ZLIB", "second"))
	componenttest.WriteManifest(t, filepath.Join(second, "zlib", "1.02"))

	result, err := New([]string{first, second}).Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if result.Components.Len() != 1 {
		t.Fatalf("components = %v, want one zlib", identities(result.Components))
	}
	if result.Components.First().BaseDir() != filepath.Dir(firstPath) {
		t.Error("first search path entry should win")
	}
	if codes := diagnosticCodes(result.Diagnostics); !slices.Equal(codes, []string{CodeDuplicateComponent, CodeDuplicateComponent}) {
		t.Errorf("diagnostics = %v", codes)
	}
}

func TestDiscover_InvalidManifests(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	componenttest.WriteRawManifest(t, filepath.Join(root, "broken", "1"), `name: "broken`)
	componenttest.WriteRawManifest(t, filepath.Join(root, "badname", "1"), `name: "bad name"`)
	componenttest.WriteRawManifest(t, filepath.Join(root, "badreq", "1"), `requires: ["x/=> 1"]`)
	componenttest.WriteManifest(t, filepath.Join(root, "good", "1"))

	result, err := New([]string{root, filepath.Join(root, "nope")}).Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if got := identities(result.Components); !slices.Equal(got, []string{"good/1"}) {
		t.Errorf("components = %v", got)
	}

	codes := diagnosticCodes(result.Diagnostics)
	slices.Sort(codes)
	want := []string{CodeManifestSkipped, CodeManifestSkipped, CodeManifestSkipped, CodeSearchPathMissing}
	if !slices.Equal(codes, want) {
		t.Errorf("diagnostics = %v, want %v", codes, want)
	}
	for _, d := range result.Diagnostics {
		if d.Code == CodeManifestSkipped && d.Cause == nil {
			t.Errorf("skipped manifest without cause: %v", d)
		}
	}

	var parseFailures int
	for _, f := range result.Files {
		if errors.Is(f.Error, cueutil.ErrInvalidDocument) {
			parseFailures++
		}
	}
	if parseFailures != 2 {
		t.Errorf("schema failures = %d, want 2", parseFailures)
	}
}

func TestDiscover_DisabledComponent(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	componenttest.WriteManifest(t, filepath.Join(root, "legacy", "0.9"), componenttest.DisabledManifest())

	result, err := New([]string{root}).Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover() error: %v", err)
	}
	if c := result.Components.First(); c == nil || c.Enabled() {
		t.Errorf("expected a disabled legacy component, got %v", c)
	}
}

func TestDiscover_Errors(t *testing.T) {
	t.Parallel()

	if _, err := New(nil).Discover(context.Background()); !errors.Is(err, ErrNoSearchPath) {
		t.Errorf("error = %v, want ErrNoSearchPath", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New([]string{t.TempDir()}).Discover(ctx); !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestDiagnostic_String(t *testing.T) {
	t.Parallel()

	d := warning(CodeManifestSkipped, "/x/cabar.cue", "manifest skipped", errors.New("boom"))
	if got := d.String(); got != "/x/cabar.cue: manifest skipped: boom" {
		t.Errorf("String() = %q", got)
	}
	if SourceGroup.String() != "component group" || Source(9).String() != "unknown" {
		t.Error("Source.String mismatch")
	}
}
