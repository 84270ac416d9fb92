package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"tasktree/internal/tasklist"
)

// newAddCmd creates the add command with one subcommand per level.
func newAddCmd(provider *AppProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an epic, task or subtask",
		Long: `Add a new pending item.

Epics group tasks, tasks may belong to an epic or stand alone, and subtasks
always belong to a task. Content must be at least 10 characters.`,
	}

	cmd.AddCommand(newAddItemCmd(provider, tasklist.KindEpic))
	cmd.AddCommand(newAddItemCmd(provider, tasklist.KindTask))
	cmd.AddCommand(newAddItemCmd(provider, tasklist.KindSubtask))

	return cmd
}

var addExamples = map[tasklist.Kind]string{
	tasklist.KindEpic: `  tt add epic "Ship the billing system" -p 1`,
	tasklist.KindTask: `  tt add task "Build invoice generator" --epic tt-a1b2c3
  tt add task "Tidy up the README file" --note "low effort"`,
	tasklist.KindSubtask: `  tt add subtask "Write PDF rendering code" --task tt-d4e5f6
  tt add subtask "Add currency formatting" --task invoice --dep tt-g7h8i9`,
}

func newAddItemCmd(provider *AppProvider, kind tasklist.Kind) *cobra.Command {
	var (
		priority int
		notes    []string
		deps     []string
		epicRef  string
		taskRef  string
	)

	cmd := &cobra.Command{
		Use:     string(kind) + " <content>",
		Short:   "Add a new " + string(kind),
		Example: addExamples[kind],
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			in := tasklist.NewItem{
				Content:  args[0],
				Priority: priority,
				Notes:    notes,
				Deps:     deps,
			}
			if !cmd.Flags().Changed("priority") {
				in.Priority = app.defaultPriority()
			}

			var created *tasklist.FlatItem
			err = app.modify(cmd.Context(), func(ed *tasklist.Editor, s *tasklist.State) (*tasklist.State, error) {
				out, id, err := addItem(ed, s, kind, epicRef, taskRef, in)
				if err != nil {
					return nil, err
				}
				created = tasklist.FindByID(out, id)
				return out, nil
			})
			if err != nil {
				return fmt.Errorf("adding %s: %w", kind, err)
			}
			app.logger().Debug("added item", "id", created.ID, "kind", kind)

			if app.JSON {
				return app.printJSON(created)
			}

			fmt.Fprintf(app.Out, "%s Created %s %s\n", app.SuccessColor("✓"), kind, app.IDColor(created.ID))
			fmt.Fprintf(app.Out, "  Content:  %s\n", created.Content)
			fmt.Fprintf(app.Out, "  Priority: %d\n", created.Priority)
			if loc := location(*created); loc != "" {
				fmt.Fprintf(app.Out, "  In:       %s\n", loc)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "Priority from 1 (highest) to 5 (default: defaults.priority)")
	cmd.Flags().StringArrayVarP(&notes, "note", "n", nil, "Add a note (can repeat)")
	cmd.Flags().StringSliceVarP(&deps, "dep", "d", nil, "Sibling id this depends on (can repeat)")
	switch kind {
	case tasklist.KindTask:
		cmd.Flags().StringVarP(&epicRef, "epic", "e", "", "Parent epic id or content (default: standalone task)")
	case tasklist.KindSubtask:
		cmd.Flags().StringVarP(&taskRef, "task", "t", "", "Parent task id or content (required)")
		cmd.Flags().StringVarP(&epicRef, "epic", "e", "", "Epic of the parent task (default: looked up from --task)")
	}

	return cmd
}

// addItem resolves the parent references and dispatches to the editor.
func addItem(ed *tasklist.Editor, s *tasklist.State, kind tasklist.Kind, epicRef, taskRef string, in tasklist.NewItem) (*tasklist.State, string, error) {
	epicID := ""
	if epicRef != "" {
		epic, err := resolveRef(s, epicRef, tasklist.KindEpic)
		if err != nil {
			return nil, "", err
		}
		epicID = epic.ID
	}

	switch kind {
	case tasklist.KindEpic:
		out, epic, err := ed.AddEpic(s, in)
		return out, epic.ID, err
	case tasklist.KindTask:
		out, task, err := ed.AddTask(s, epicID, in)
		return out, task.ID, err
	default:
		taskID := ""
		if taskRef != "" {
			task, err := resolveRef(s, taskRef, tasklist.KindTask)
			if err != nil {
				return nil, "", err
			}
			taskID = task.ID
			if epicRef == "" {
				epicID = task.EpicID
			}
		}
		out, sub, err := ed.AddSubtask(s, epicID, taskID, in)
		return out, sub.ID, err
	}
}
