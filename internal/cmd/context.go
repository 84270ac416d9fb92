package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tasktree/internal/tasklist"
)

// newContextCmd creates the context command.
func newContextCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Summarize progress, active work and the next item",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			s, err := app.Store.Load(cmd.Context())
			if err != nil {
				return err
			}
			c := tasklist.GetContext(s)

			if app.JSON {
				return app.printJSON(c)
			}

			w := app.Out
			fmt.Fprintf(w, "Epics:    %d/%d completed\n", c.Epics.Completed, c.Epics.Total)
			fmt.Fprintf(w, "Tasks:    %d/%d completed\n", c.Tasks.Completed, c.Tasks.Total)
			fmt.Fprintf(w, "Subtasks: %d/%d completed\n", c.Subtasks.Completed, c.Subtasks.Total)
			printGroup(app, "In progress", c.InProgress)
			printGroup(app, "Blocked", c.Blocked)
			fmt.Fprintln(w)
			printNext(app, c.Next)
			return nil
		},
	}

	return cmd
}

func printGroup(app *App, title string, items []tasklist.FlatItem) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(app.Out, "\n%s (%d):\n", title, len(items))
	for _, it := range items {
		fmt.Fprintf(app.Out, "  %s %s %-7s %s\n", app.StatusColor(it.Status, statusIcon(it.Status)), app.IDColor(it.ID), it.Kind, it.Content)
	}
}
