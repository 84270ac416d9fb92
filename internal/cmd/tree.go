package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"tasktree/internal/tasklist"
)

// newTreeCmd creates the tree command.
func newTreeCmd(provider *AppProvider) *cobra.Command {
	var open bool

	cmd := &cobra.Command{
		Use:   "tree",
		Short: "Print the whole hierarchy",
		Long: `Print epics, tasks and subtasks as a tree, followed by standalone tasks.
With --json the stored document is printed as-is.`,
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

			if app.JSON {
				return app.printJSON(s)
			}
			if len(s.Epics) == 0 && len(s.Tasks) == 0 {
				fmt.Fprintln(app.Out, "No items yet (try tt add epic)")
				return nil
			}

			fmt.Fprint(app.Out, renderTree(app, buildTree(s, open)))
			return nil
		},
	}

	cmd.Flags().BoolVar(&open, "open", false, "Hide completed items")

	return cmd
}

type treeNode struct {
	item     tasklist.FlatItem
	label    string // used instead of item for grouping nodes
	children []*treeNode
}

// buildTree arranges the flat projection back into a forest. Standalone
// tasks hang off a synthetic "Standalone tasks" node.
func buildTree(s *tasklist.State, open bool) []*treeNode {
	var roots []*treeNode
	var standalone *treeNode
	byID := make(map[string]*treeNode)

	for _, it := range tasklist.Flatten(s) {
		if open && it.Status == tasklist.StatusCompleted {
			continue
		}
		n := &treeNode{item: it}
		byID[it.ID] = n
		switch {
		case it.Kind == tasklist.KindEpic:
			roots = append(roots, n)
		case it.Kind == tasklist.KindTask && it.EpicID != "":
			if p := byID[it.EpicID]; p != nil {
				p.children = append(p.children, n)
			}
		case it.Kind == tasklist.KindTask:
			if standalone == nil {
				standalone = &treeNode{label: "Standalone tasks"}
			}
			standalone.children = append(standalone.children, n)
		default:
			if p := byID[it.TaskID]; p != nil {
				p.children = append(p.children, n)
			}
		}
	}
	if standalone != nil {
		roots = append(roots, standalone)
	}
	return roots
}

func renderTree(app *App, roots []*treeNode) string {
	var b strings.Builder
	for _, r := range roots {
		writeNode(app, &b, r, "", true, true)
	}
	return b.String()
}

// writeNode prints a node with ASCII connectors, then its children.
func writeNode(app *App, b *strings.Builder, n *treeNode, prefix string, isLast, isRoot bool) {
	connector := "├── "
	if isLast {
		connector = "└── "
	}
	if isRoot {
		connector = ""
	}

	if n.label != "" {
		fmt.Fprintf(b, "%s%s%s\n", prefix, connector, app.Bold(n.label))
	} else {
		it := n.item
		line := fmt.Sprintf("%s %s %s", app.StatusColor(it.Status, statusIcon(it.Status)), it.Content, app.MutedColor("("+it.ID+", P"+fmt.Sprint(it.Priority)+")"))
		if p := progress(it); p != "" {
			line += " " + p
		}
		fmt.Fprintf(b, "%s%s%s\n", prefix, connector, line)
	}

	childPrefix := prefix
	if !isRoot {
		if isLast {
			childPrefix += "    "
		} else {
			childPrefix += "│   "
		}
	}
	for i, c := range n.children {
		writeNode(app, b, c, childPrefix, i == len(n.children)-1, false)
	}
}
