// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"cabar-cli/pkg/component"
	"cabar-cli/pkg/constraint"
)

func newListCommand(app *App, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "list [constraint...]",
		Short: "List the components available on the search path",
		Long: `List every discovered component grouped by name, highest version first.
With constraints, only components matching at least one of them are listed.`,
		Example: `  cabar list
  cabar list 'ruby/>= 1.9' 'lib:*'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.open(cmd.Context(), flags)
			if err != nil {
				return app.fail(cmd, flags.verbose, err)
			}
			available, err := filterAvailable(s.available, args)
			if err != nil {
				return app.fail(cmd, s.verbose, err)
			}
			writeAvailable(app.stdout, available)
			return nil
		},
	}
}

// filterAvailable keeps the components matching any of specs. No specs keeps all.
func filterAvailable(available *component.Set, specs []string) (*component.Set, error) {
	if len(specs) == 0 {
		return available, nil
	}
	out := component.NewSet()
	for _, spec := range specs {
		c, err := constraint.Compile(spec)
		if err != nil {
			return nil, err
		}
		for _, match := range available.Select(c).All() {
			out.Add(match)
		}
	}
	return out, nil
}

func writeAvailable(w io.Writer, available *component.Set) {
	for _, name := range available.Names() {
		fmt.Fprintln(w, TitleStyle.Render(name))
		for _, c := range available.ByName(name) {
			line := fmt.Sprintf("  %s  %s", CmdStyle.Render(c.Version().String()), VerboseStyle.Render(c.BaseDir()))
			if t := c.Type(); t != component.DefaultType {
				line += "  " + SubtitleStyle.Render("type="+t)
			}
			if !c.Enabled() {
				line += "  " + WarningStyle.Render("(disabled)")
			}
			fmt.Fprintln(w, line)
		}
	}
}
