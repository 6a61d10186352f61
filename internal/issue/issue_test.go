// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestValues_OrderedAndComplete(t *testing.T) {
	t.Parallel()

	values := Values()
	if len(values) != len(Catalog()) {
		t.Fatalf("Values() has %d entries, catalog has %d", len(values), len(Catalog()))
	}
	for i, issue := range values {
		if want := Id(i + 1); issue.Id() != want {
			t.Errorf("Values()[%d].Id() = %d, want %d", i, issue.Id(), want)
		}
		if strings.TrimSpace(string(issue.MarkdownMsg())) == "" {
			t.Errorf("issue %d has an empty message", issue.Id())
		}
	}
}

func TestGet(t *testing.T) {
	t.Parallel()

	if Get(UnresolvedComponentId) == nil {
		t.Fatal("Get(UnresolvedComponentId) returned nil")
	}
	if !strings.Contains(string(Get(EnvVarConflictId).MarkdownMsg()), "--no-env") {
		t.Error("env conflict guidance should mention --no-env")
	}
	if Get(Id(999)) != nil {
		t.Error("Get(999) should return nil")
	}
}

//nolint:paralleltest // swaps the package-level renderer
func TestIssue_Render(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()
	render = func(in string, _ string) (string, error) { return in, nil }

	issue := &Issue{
		id:       DependencyCycleId,
		mdMsg:    "# Cycle",
		docLinks: []HttpLink{"https://example.invalid/docs"},
	}
	rendered, err := issue.Render("")
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if !strings.HasPrefix(rendered, "# Cycle") || !strings.Contains(rendered, "See also") {
		t.Errorf("Render() = %q", rendered)
	}
	links := issue.DocLinks()
	links[0] = "modified"
	if issue.DocLinks()[0] == "modified" {
		t.Error("DocLinks() should return a clone")
	}
}
