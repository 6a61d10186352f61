// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

const (
	ConfigLoadFailedId Id = iota + 1
	ManifestParseErrorId
	NoComponentsFoundId
	MalformedConstraintId
	UnresolvedComponentId
	EnvVarConflictId
	DependencyCycleId
	ComponentNotFoundId
)

type (
	Id int

	MarkdownMsg string

	HttpLink string

	// Issue is a catalog entry with Markdown remediation text.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

var (
	render = glamour.Render

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load the configuration!

The configuration file could not be read or does not match the schema.

## Search locations (in order of precedence):
1. The file given with ` + "`--config`" + `
2. ` + "`$XDG_CONFIG_HOME/cabar/config.cue`" + ` (or the platform equivalent)
3. ` + "`cabar.config.cue`" + ` in the current directory

## Things you can try:
- Print the effective configuration:
~~~
$ cabar config show
~~~

- Compare your file with this minimal example:
~~~cue
search_path: ["/opt/cabar"]
require: ["ruby/~> 1.9"]
default_versions: {ruby: "< 2.0"}
~~~`,
	}

	manifestParseErrorIssue = &Issue{
		id: ManifestParseErrorId,
		mdMsg: `
# Failed to parse a component manifest!

A ` + "`cabar.cue`" + ` file contains invalid CUE or fields the schema does not accept.

## Common issues:
- Missing ` + "`name`" + ` or ` + "`version`" + `
- A version that is not of the form ` + "`[epoch:]upstream[-revision]`" + `
- A requirement with an unknown operator (use = != > < >= <= ~>)

## Example manifest:
~~~cue
name:    "ruby"
version: "1.9.3"
requires: ["zlib/>= 1.2", "openssl"]
provides: {
	path: {PATH: ["bin"], MANPATH: ["share/man"]}
	env: {RUBY_ROOT: "."}
	actions: {test: "make test"}
}
~~~`,
	}

	noComponentsFoundIssue = &Issue{
		id: NoComponentsFoundId,
		mdMsg: `
# No components found!

None of the search path directories contained a ` + "`cabar.cue`" + ` manifest.

## Things you can try:
- Point cabar at your component tree:
~~~
$ cabar --path /opt/cabar list
$ export CABAR_PATH=/opt/cabar
~~~

- Add ` + "`search_path`" + ` to your configuration file`,
	}

	malformedConstraintIssue = &Issue{
		id: MalformedConstraintId,
		mdMsg: `
# Malformed constraint!

Constraints have the form ` + "`[type:]name[/requirement][,key=value...]`" + `.

## Examples:
~~~
ruby
ruby/~> 1.9
ruby/>= 1.8, < 2.0
lib:z*/>= 1.2,arch=x86_64
/^ruby(gems)?$/i
~~~`,
	}

	unresolvedComponentIssue = &Issue{
		id: UnresolvedComponentId,
		mdMsg: `
# Unresolved components!

Some requirements had no candidate left after narrowing. The report above
lists, per component, who asked for it, the available versions and every
constraint that narrowed the candidates.

## Things you can try:
- Relax one of the conflicting constraints
- Install a version that satisfies all of them
- Inspect the partial result anyway:
~~~
$ cabar --unresolved-ok show
~~~`,
	}

	envVarConflictIssue = &Issue{
		id: EnvVarConflictId,
		mdMsg: `
# Conflicting environment variable!

Two contributors set the same variable to different values. cabar refuses to
pick one.

## Things you can try:
- Remove the variable from one of the component manifests
- If the second contributor is ` + "`environment`" + `, unset the variable or ignore the environment:
~~~
$ cabar --no-env env ruby
~~~`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected!

The required components depend on each other, so no composition order exists.

## Things you can try:
- Break the cycle by moving the shared facets into a separate component
- Check the ` + "`requires`" + ` lists of the components named in the error`,
	}

	componentNotFoundIssue = &Issue{
		id: ComponentNotFoundId,
		mdMsg: `
# Component not found!

The component is not part of the resolved set.

## Things you can try:
- List the resolved components:
~~~
$ cabar resolve
~~~

- Use the ` + "`name/version`" + ` form shown there`,
	}

	issues = map[Id]*Issue{
		configLoadFailedIssue.Id():    configLoadFailedIssue,
		manifestParseErrorIssue.Id():  manifestParseErrorIssue,
		noComponentsFoundIssue.Id():   noComponentsFoundIssue,
		malformedConstraintIssue.Id(): malformedConstraintIssue,
		unresolvedComponentIssue.Id(): unresolvedComponentIssue,
		envVarConflictIssue.Id():      envVarConflictIssue,
		dependencyCycleIssue.Id():     dependencyCycleIssue,
		componentNotFoundIssue.Id():   componentNotFoundIssue,
	}
)

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

// Render renders the Markdown message with the given glamour style.
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also:\n")
		for _, link := range append(i.DocLinks(), i.extLinks...) {
			md.WriteString("- [" + string(link) + "](" + string(link) + ")\n")
		}
	}
	return render(md.String(), stylePath)
}

// Values returns every catalog entry ordered by id.
func Values() []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, id := range ids() {
		out = append(out, issues[id])
	}
	return out
}

// Catalog returns a copy of the catalog keyed by id.
func Catalog() map[Id]*Issue {
	return maps.Clone(issues)
}

// Get returns the catalog entry for id, nil when unknown.
func Get(id Id) *Issue {
	return issues[id]
}

func ids() []Id {
	all := make([]Id, 0, len(issues))
	for id := range issues {
		all = append(all, id)
	}
	slices.Sort(all)
	return all
}
