// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"cabar-cli/internal/render"
)

func newShowCommand(app *App, flags *rootFlags) *cobra.Command {
	var format string

	showCmd := &cobra.Command{
		Use:   "show [constraint...]",
		Short: "Describe the resolution as a YAML or TOML document",
		Long: `Resolve the constraints and print the required components with their
edges, facets and actions, followed by the composed environment and any
unresolved constraints.`,
		Example: `  cabar show ruby
  cabar show --format toml 'ruby/~> 1.9'`,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, r, m, err := app.compose(cmd.Context(), flags, args)
			if err != nil {
				return app.fail(cmd, s.isVerbose(flags), err)
			}
			doc, err := render.NewDocument(r, m)
			if err != nil {
				return app.fail(cmd, s.isVerbose(flags), err)
			}
			if err := render.Write(app.stdout, doc, render.Format(format)); err != nil {
				return app.fail(cmd, s.isVerbose(flags), err)
			}
			return nil
		},
	}

	showCmd.Flags().StringVarP(&format, "format", "f", string(render.FormatYAML), "output format: yaml or toml")
	return showCmd
}
