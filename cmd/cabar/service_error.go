// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"cabar-cli/internal/config"
	"cabar-cli/internal/issue"
	"cabar-cli/pkg/component"
	"cabar-cli/pkg/constraint"
	"cabar-cli/pkg/resolver"
	"cabar-cli/pkg/version"
)

var (
	errNoComponents    = errors.New("no components found on the search path")
	errNothingRequired = errors.New("nothing to resolve")
)

// classify maps an error to its exit code and catalog entry. An issue
// attached through an ErrorContext takes precedence over the sentinel mapping.
func classify(err error) (ExitCode, issue.Id) {
	code, id := ExitFailure, issue.Id(0)
	switch {
	case errors.Is(err, resolver.ErrUnresolvedComponent):
		code, id = ExitUnresolved, issue.UnresolvedComponentId
	case errors.Is(err, resolver.ErrCycleDetected):
		code, id = ExitCycle, issue.DependencyCycleId
	case errors.Is(err, component.ErrEnvVarConflict):
		code, id = ExitEnvConflict, issue.EnvVarConflictId
	case errors.Is(err, constraint.ErrMalformedConstraint),
		errors.Is(err, version.ErrMalformedRequirement),
		errors.Is(err, config.ErrInvalidConfig):
		id = issue.MalformedConstraintId
	}
	if attached := issue.IssueOf(err); attached != 0 {
		id = attached
	}
	return code, id
}

// fail renders err on stderr and returns the ExitError that carries its exit
// code. Verbose mode adds the error chain and the catalog entry.
func (a *App) fail(cmd *cobra.Command, verbose bool, err error) error {
	if err == nil {
		return nil
	}
	code, id := classify(err)

	var actionable *issue.ActionableError
	if errors.As(err, &actionable) {
		fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+actionable.Format(verbose))
	} else {
		fmt.Fprintln(a.stderr, ErrorStyle.Render("Error: ")+err.Error())
	}

	if verbose {
		renderIssue(a.stderr, id, a.issueStyle)
	}

	cmd.SilenceErrors = true
	cmd.SilenceUsage = true
	return &ExitError{Code: code, Err: err}
}

// renderIssue prints the catalog entry for id, if any, in the given glamour style.
func renderIssue(w io.Writer, id issue.Id, style string) {
	if id == 0 {
		return
	}
	entry := issue.Get(id)
	if entry == nil {
		return
	}
	rendered, err := entry.Render(style)
	if err != nil {
		fmt.Fprintln(w, WarningStyle.Render("failed to render issue help: "+err.Error()))
		return
	}
	fmt.Fprint(w, rendered)
}

// writeUnresolved lists every failing constraint with the versions that were
// available for its name.
func writeUnresolved(w io.Writer, report *resolver.UnresolvedReport) {
	if report.IsEmpty() {
		return
	}
	fmt.Fprintln(w, WarningStyle.Render("Unresolved:"))
	for _, entry := range report.All() {
		fmt.Fprintf(w, "  %s %s\n", entry.Constraint, VerboseStyle.Render("(requested by "+entry.RequestedBy+")"))
		if len(entry.AvailableVersions) == 0 {
			fmt.Fprintln(w, "    available: none")
			continue
		}
		fmt.Fprintf(w, "    available: %s\n", joinComma(entry.AvailableVersions))
	}
}
