package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tasktree/internal/tasklist"
)

// newLintCmd creates the lint command.
func newLintCmd(provider *AppProvider) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "lint",
		Short: "Check completion consistency and dependencies",
		Long: `Report completed parents with unfinished children, parents whose children
are all completed, dependencies on unknown ids and dependency cycles.

Lint is advisory and exits successfully unless --strict is given and there
are warnings.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			s, err := app.Store.Load(cmd.Context())
			if err != nil {
				return err
			}
			res := tasklist.Lint(s)

			if app.JSON {
				if err := app.printJSON(res); err != nil {
					return err
				}
			} else {
				printLint(app, res)
			}

			if strict && len(res.Warnings) > 0 {
				return fmt.Errorf("lint found %d warning(s)", len(res.Warnings))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Exit with an error when there are warnings")

	return cmd
}

func printLint(app *App, res tasklist.LintResult) {
	if res.Clean() {
		fmt.Fprintf(app.Out, "%s No problems found\n", app.SuccessColor("✓"))
		return
	}
	for _, w := range res.Warnings {
		fmt.Fprintf(app.Out, "%s %s\n", app.WarnColor("warning:"), w)
	}
	for _, s := range res.Suggestions {
		fmt.Fprintf(app.Out, "%s %s\n", app.MutedColor("suggestion:"), s)
	}
	fmt.Fprintf(app.Out, "\n%d warning(s), %d suggestion(s)\n", len(res.Warnings), len(res.Suggestions))
}
