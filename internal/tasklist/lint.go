package tasklist

import (
	"fmt"
	"strings"

	"tasktree/internal/graph"
)

// LintResult holds advisory findings. Warnings flag inconsistencies;
// suggestions point at items that could be completed.
type LintResult struct {
	Warnings    []string `json:"warnings"`
	Suggestions []string `json:"suggestions"`
}

// Clean reports whether lint found nothing at all.
func (r LintResult) Clean() bool {
	return len(r.Warnings) == 0 && len(r.Suggestions) == 0
}

// Lint checks completion consistency and dependency validity. It never fails.
//
// Dependency scopes: epics depend on epics, tasks on tasks of the same epic,
// standalone tasks on other standalone tasks, subtasks on subtasks of the
// same task.
func Lint(s *State) LintResult {
	l := &linter{res: LintResult{Warnings: []string{}, Suggestions: []string{}}}
	if s == nil {
		return l.res
	}

	epics := make([]Item, len(s.Epics))
	for i, e := range s.Epics {
		epics[i] = e.Item
		l.checkEpicCompletion(e)
		l.checkTasks(e.Tasks, fmt.Sprintf("epic %s", e.ID))
	}
	l.checkDeps(KindEpic, epics, "epics")
	l.checkTasks(s.Tasks, "standalone tasks")
	return l.res
}

type linter struct {
	res LintResult
}

func (l *linter) warn(format string, args ...any) {
	l.res.Warnings = append(l.res.Warnings, fmt.Sprintf(format, args...))
}

func (l *linter) suggest(format string, args ...any) {
	l.res.Suggestions = append(l.res.Suggestions, fmt.Sprintf(format, args...))
}

func (l *linter) checkEpicCompletion(e Epic) {
	if e.Status == StatusCompleted {
		for _, t := range e.Tasks {
			if t.Status != StatusCompleted {
				l.warn("epic %s is completed but task %s is %s", e.ID, t.ID, t.Status)
			}
		}
		return
	}
	if len(e.Tasks) > 0 && allTasksCompleted(e.Tasks) {
		l.suggest("epic %s has all %d tasks completed; mark it completed", e.ID, len(e.Tasks))
	}
}

func (l *linter) checkTasks(tasks []Task, scope string) {
	items := make([]Item, len(tasks))
	for i, t := range tasks {
		items[i] = t.Item
		l.checkTaskCompletion(t)

		subs := make([]Item, len(t.Subtasks))
		for j, st := range t.Subtasks {
			subs[j] = st.Item
		}
		l.checkDeps(KindSubtask, subs, fmt.Sprintf("task %s", t.ID))
	}
	l.checkDeps(KindTask, items, scope)
}

func (l *linter) checkTaskCompletion(t Task) {
	if t.Status == StatusCompleted {
		for _, st := range t.Subtasks {
			if st.Status != StatusCompleted {
				l.warn("task %s is completed but subtask %s is %s", t.ID, st.ID, st.Status)
			}
		}
		return
	}
	if len(t.Subtasks) > 0 && allSubtasksCompleted(t.Subtasks) {
		l.suggest("task %s has all %d subtasks completed; mark it completed", t.ID, len(t.Subtasks))
	}
}

// checkDeps validates the dependency edges among one set of siblings.
func (l *linter) checkDeps(kind Kind, siblings []Item, scope string) {
	if len(siblings) == 0 {
		return
	}
	ids := make([]string, len(siblings))
	inScope := make(map[string]bool, len(siblings))
	edges := make(map[string][]string, len(siblings))
	for i, it := range siblings {
		ids[i] = it.ID
		inScope[it.ID] = true
		edges[it.ID] = it.Deps
	}

	for _, it := range siblings {
		for _, dep := range it.Deps {
			if dep == it.ID {
				l.warn("%s %s depends on itself", kind, it.ID)
				break
			}
		}
		for _, dep := range graph.Dangling(it.ID, it.Deps, inScope) {
			l.warn("%s %s has invalid dep %q (no %s with that id in %s)", kind, it.ID, dep, kind, scope)
		}
	}

	if _, acyclic := graph.TopologicalOrder(ids, edges); acyclic {
		return
	}
	for _, cycle := range graph.FindCycles(ids, edges) {
		l.warn("circular dependency in %s: %s", scope, strings.Join(cycle, " -> "))
	}
}
