package cmd

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"

	"tasktree/internal/tasklist"
)

// newListCmd creates the list command.
func newListCmd(provider *AppProvider) *cobra.Command {
	var (
		statuses   []string
		priorities []int
		types      []string
		epic       string
		task       string
		search     string
		all        bool
	)

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List items",
		Long: `List epics, tasks and subtasks in document order.

Completed items are hidden unless --all or --status is given. Filters are
combined; --epic and --task match a parent id or a substring of its content.

Examples:
  tt list
  tt list --type task --status in_progress
  tt list --epic billing -p 1,2
  tt list --search pdf --all --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			f := tasklist.Filter{
				Priorities: priorities,
				Epic:       epic,
				Task:       task,
				Search:     search,
			}
			if f.Statuses, err = parseStatuses(statuses); err != nil {
				return err
			}
			if f.Kinds, err = parseKinds(types); err != nil {
				return err
			}
			if len(f.Statuses) == 0 && !all {
				f.Statuses = []tasklist.Status{tasklist.StatusPending, tasklist.StatusInProgress, tasklist.StatusBlocked}
			}

			s, err := app.Store.Load(cmd.Context())
			if err != nil {
				return err
			}
			items := tasklist.FilterItems(tasklist.Flatten(s), f)

			if app.JSON {
				if items == nil {
					items = []tasklist.FlatItem{}
				}
				return app.printJSON(items)
			}

			if len(items) == 0 {
				fmt.Fprintln(app.Out, "No items found")
				return nil
			}
			renderTable(app, items)
			return nil
		},
	}

	cmd.Flags().StringSliceVarP(&statuses, "status", "s", nil, "Filter by status (can repeat)")
	cmd.Flags().IntSliceVarP(&priorities, "priority", "p", nil, "Filter by priority (can repeat)")
	cmd.Flags().StringSliceVarP(&types, "type", "t", nil, "Filter by type: epic, task, subtask (can repeat)")
	cmd.Flags().StringVarP(&epic, "epic", "e", "", "Only items under this epic (id or content)")
	cmd.Flags().StringVar(&task, "task", "", "Only subtasks of this task (id or content)")
	cmd.Flags().StringVarP(&search, "search", "q", "", "Only items whose content contains this text")
	cmd.Flags().BoolVarP(&all, "all", "a", false, "Include completed items")

	return cmd
}

func renderTable(app *App, items []tasklist.FlatItem) {
	tw := table.NewWriter()
	tw.SetOutputMirror(app.Out)
	tw.SetStyle(table.StyleLight)
	tw.Style().Format.Footer = text.FormatDefault
	tw.AppendHeader(table.Row{"ID", "Type", "Status", "Pri", "Content", "Parent", "Done"})
	for _, it := range items {
		parent := it.EpicID
		if it.Kind == tasklist.KindSubtask {
			parent = it.TaskID
		}
		tw.AppendRow(table.Row{
			app.IDColor(it.ID),
			it.Kind,
			app.StatusColor(it.Status, string(it.Status)),
			it.Priority,
			it.Content,
			parent,
			progress(it),
		})
	}
	tw.AppendFooter(table.Row{"", "", "", "", fmt.Sprintf("%d item(s)", len(items))})
	tw.Render()
}
