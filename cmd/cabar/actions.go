// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"cabar-cli/internal/issue"
	"cabar-cli/pkg/component"
	"cabar-cli/pkg/constraint"
	"cabar-cli/pkg/resolver"
)

func newActionsCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "actions <component>",
		Short: "List the actions a component provides",
		Long: `Resolve the component and list the named actions its manifest provides.
Actions are listed only; cabar never runs them.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := constraint.Compile(args[0])
			if err != nil {
				return app.fail(cmd, flags.verbose, err)
			}
			s, r, m, err := app.compose(cmd.Context(), flags, args)
			if err != nil {
				return app.fail(cmd, s.isVerbose(flags), err)
			}
			order, err := r.RequiredOrder()
			if err != nil {
				return app.fail(cmd, s.isVerbose(flags), err)
			}

			matched := slices.DeleteFunc(order, func(rc *component.Component) bool { return !c.Match(rc) })
			if len(matched) == 0 {
				return app.fail(cmd, s.isVerbose(flags), issue.NewErrorContext().
					WithOperation("list actions").
					WithResource(args[0]).
					WithSuggestion("Run 'cabar list' to see the available components").
					WithIssue(issue.ComponentNotFoundId).
					Wrap(resolver.ErrUnresolvedComponent).
					BuildError())
			}
			for _, rc := range matched {
				writeActions(app.stdout, rc, m)
			}
			return nil
		},
	}
}

func writeActions(w io.Writer, c *component.Component, m *resolver.FacetMap) {
	fmt.Fprintf(w, "%s %s\n", TitleStyle.Render(c.Name()), CmdStyle.Render(c.Version().String()))
	actions := m.Actions(c)
	if len(actions) == 0 {
		fmt.Fprintln(w, SubtitleStyle.Render("  no actions"))
		return
	}
	for _, name := range slices.Sorted(maps.Keys(actions)) {
		fmt.Fprintf(w, "  %s: %s\n", CmdStyle.Render(name), actions[name])
	}
}
