package cmd

import (
	"errors"
	"fmt"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"tasktree/internal/tasklist"
)

var updateFieldFlags = []string{"content", "priority", "status", "note", "clear-notes", "deps", "add-dep", "implementation"}

// newUpdateCmd creates the update command.
func newUpdateCmd(provider *AppProvider) *cobra.Command {
	var (
		content        string
		priority       int
		status         string
		notes          []string
		clearNotes     bool
		deps           []string
		addDeps        []string
		implementation string
	)

	cmd := &cobra.Command{
		Use:   "update <id>",
		Short: "Update an epic, task or subtask",
		Long: `Update fields of an existing item. Only the flags you pass are changed;
--note appends to the existing notes and --deps replaces the dependency list.

Examples:
  tt update tt-a1b2c3 --status in_progress
  tt update tt-a1b2c3 -p 1 --note "customer escalation"
  tt update tt-a1b2c3 --deps tt-d4e5f6,tt-g7h8i9
  tt update tt-a1b2c3 --implementation "done in commit 4f2e1a"`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}

			flags := cmd.Flags()
			fields := changedFields(flags)
			if len(fields) == 0 {
				return errors.New("nothing to update: pass at least one of --content, --priority, --status, --note, --clear-notes, --deps, --add-dep, --implementation")
			}
			app.logger().Debug("updating item", "id", args[0], "fields", fields)

			build := func(it tasklist.FlatItem) tasklist.Patch {
				var p tasklist.Patch
				if flags.Changed("content") {
					p.Content = &content
				}
				if flags.Changed("priority") {
					p.Priority = &priority
				}
				if flags.Changed("status") {
					st := tasklist.Status(status)
					p.Status = &st
				}
				if flags.Changed("note") || clearNotes {
					n := []string{}
					if !clearNotes {
						n = append(n, it.Notes...)
					}
					n = append(n, notes...)
					p.Notes = &n
				}
				if flags.Changed("deps") || flags.Changed("add-dep") {
					d := []string{}
					if flags.Changed("deps") {
						d = append(d, deps...)
					} else {
						d = append(d, it.Deps...)
					}
					d = append(d, addDeps...)
					p.Deps = &d
				}
				if flags.Changed("implementation") {
					p.Implementation = &implementation
				}
				return p
			}

			updated, err := updateItem(cmd, app, args[0], build)
			if err != nil {
				return err
			}
			return reportUpdate(app, "Updated", updated)
		},
	}

	cmd.Flags().StringVar(&content, "content", "", "New content (at least 10 characters)")
	cmd.Flags().IntVarP(&priority, "priority", "p", 0, "New priority from 1 (highest) to 5")
	cmd.Flags().StringVarP(&status, "status", "s", "", "New status (pending, in_progress, completed, blocked)")
	cmd.Flags().StringArrayVarP(&notes, "note", "n", nil, "Append a note (can repeat)")
	cmd.Flags().BoolVar(&clearNotes, "clear-notes", false, "Remove existing notes before appending")
	cmd.Flags().StringSliceVar(&deps, "deps", nil, "Replace dependencies (comma-separated, empty to clear)")
	cmd.Flags().StringSliceVar(&addDeps, "add-dep", nil, "Add a dependency (can repeat)")
	cmd.Flags().StringVar(&implementation, "implementation", "", "Record how the item was implemented")

	return cmd
}

// changedFields returns the field flags that were set on the command line.
func changedFields(flags *pflag.FlagSet) []string {
	var names []string
	flags.Visit(func(f *pflag.Flag) {
		if slices.Contains(updateFieldFlags, f.Name) {
			names = append(names, f.Name)
		}
	})
	return names
}

// newStartCmd creates the start command.
func newStartCmd(provider *AppProvider) *cobra.Command {
	return newStatusCmd(provider, "start", "Started", tasklist.StatusInProgress, "Mark an item as in progress")
}

// newBlockCmd creates the block command.
func newBlockCmd(provider *AppProvider) *cobra.Command {
	return newStatusCmd(provider, "block", "Blocked", tasklist.StatusBlocked, "Mark an item as blocked")
}

func newStatusCmd(provider *AppProvider, use, verb string, status tasklist.Status, short string) *cobra.Command {
	var note string

	cmd := &cobra.Command{
		Use:   use + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := provider.Get()
			if err != nil {
				return err
			}
			updated, err := updateItem(cmd, app, args[0], func(it tasklist.FlatItem) tasklist.Patch {
				p := tasklist.StatusPatch(status)
				if note != "" {
					n := append(slices.Clone(it.Notes), note)
					p.Notes = &n
				}
				return p
			})
			if err != nil {
				return err
			}
			return reportUpdate(app, verb, updated)
		},
	}

	cmd.Flags().StringVarP(&note, "note", "n", "", "Append a note explaining the change")

	return cmd
}

// updateItem locates id, builds a patch from the current item and applies
// it under the store lock. It returns the item as saved.
func updateItem(cmd *cobra.Command, app *App, id string, build func(tasklist.FlatItem) tasklist.Patch) (tasklist.FlatItem, error) {
	var updated tasklist.FlatItem
	err := app.modify(cmd.Context(), func(ed *tasklist.Editor, s *tasklist.State) (*tasklist.State, error) {
		it, err := findItem(s, id)
		if err != nil {
			return nil, err
		}
		out, err := applyPatch(ed, s, it, build(it))
		if err != nil {
			return nil, err
		}
		if updated, err = findItem(out, id); err != nil {
			return nil, err
		}
		return out, nil
	})
	if err != nil {
		return tasklist.FlatItem{}, fmt.Errorf("updating %s: %w", id, err)
	}
	app.logger().Debug("updated item", "id", id, "kind", updated.Kind, "status", updated.Status)
	return updated, nil
}

func reportUpdate(app *App, verb string, it tasklist.FlatItem) error {
	if app.JSON {
		return app.printJSON(it)
	}
	fmt.Fprintf(app.Out, "%s %s %s %s: %s\n", app.SuccessColor("✓"), verb, it.Kind, app.IDColor(it.ID), it.Content)
	fmt.Fprintf(app.Out, "  Status:   %s\n", app.StatusColor(it.Status, string(it.Status)))
	fmt.Fprintf(app.Out, "  Priority: %d\n", it.Priority)
	return nil
}
