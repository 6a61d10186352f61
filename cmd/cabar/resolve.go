// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"slices"

	"github.com/spf13/cobra"

	"cabar-cli/pkg/component"
	"cabar-cli/pkg/resolver"
)

func newResolveCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [constraint...]",
		Short: "Resolve constraints to a dependency-ordered component list",
		Long: `Resolve the configured and given constraints against the available
components and print the required components, dependencies first.

Top-level components are marked with '*'.`,
		Example: `  cabar resolve ruby
  cabar resolve 'ruby/>= 1.8, < 2.0' 'lib:openssl*'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), flags)
			if err != nil {
				return app.fail(cmd, flags.verbose, err)
			}
			r, err := app.resolve(s, flags, args)
			if err != nil {
				return app.fail(cmd, s.verbose, err)
			}
			order, err := r.RequiredOrder()
			if err != nil {
				return app.fail(cmd, s.verbose, err)
			}
			warnUnresolved(s, r)
			writeResolution(app.stdout, r, order)
			return nil
		},
	}
}

// writeResolution prints one line per required component followed by any
// unresolved constraints.
func writeResolution(w io.Writer, r *resolver.Resolver, order []*component.Component) {
	topLevel := r.TopLevel()
	for _, c := range order {
		marker := " "
		if slices.Contains(topLevel, c) {
			marker = SuccessStyle.Render("*")
		}
		fmt.Fprintf(w, "%s %s %s  %s\n", marker, TitleStyle.Render(c.Name()), CmdStyle.Render(c.Version().String()), VerboseStyle.Render(c.BaseDir()))
	}
	writeUnresolved(w, r.Unresolved())
}
