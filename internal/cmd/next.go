package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tasktree/internal/tasklist"
)

// newNextCmd creates the next command.
func newNextCmd(provider *AppProvider) *cobra.Command {
	var level string

	cmd := &cobra.Command{
		Use:   "next",
		Short: "Show the most urgent ready item",
		Long: `Show the pending or in-progress item with the highest priority whose
dependencies are all completed. Without --level, deeper items win ties, so a
subtask is suggested before its task.

Examples:
  tt next
  tt next --level task --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			var kind tasklist.Kind
			if level != "" {
				if kind, err = parseKind(level); err != nil {
					return err
				}
			}

			s, err := app.Store.Load(cmd.Context())
			if err != nil {
				return err
			}
			res := tasklist.GetNext(s, kind)

			if app.JSON {
				return app.printJSON(res)
			}
			printNext(app, res)
			return nil
		},
	}

	cmd.Flags().StringVarP(&level, "level", "l", "", "Only consider epic, task or subtask")

	return cmd
}

func printNext(app *App, res tasklist.NextResult) {
	if res.Item == nil {
		fmt.Fprint(app.Out, "Nothing ready")
		if res.BlockedByDeps > 0 {
			fmt.Fprintf(app.Out, " (%d waiting on dependencies)", res.BlockedByDeps)
		}
		fmt.Fprintln(app.Out)
		return
	}
	it := res.Item
	fmt.Fprintf(app.Out, "%s %s %s %s (P%d)\n", app.SuccessColor("→"), app.IDColor(it.ID), app.MutedColor("["+string(it.Kind)+"]"), it.Content, it.Priority)
	if loc := location(*it); loc != "" {
		fmt.Fprintf(app.Out, "  in %s\n", loc)
	}
	fmt.Fprintf(app.Out, "  %d ready, %d waiting on dependencies\n", res.QueueDepth, res.BlockedByDeps)
}
