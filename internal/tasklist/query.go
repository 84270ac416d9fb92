package tasklist

import (
	"slices"
	"sort"
	"strings"

	"tasktree/internal/graph"
)

// FlatItem is a read-only projection of any entity with its parent context.
// It is recomputed on every query and never persisted.
type FlatItem struct {
	Kind Kind `json:"type"`
	Item
	EpicID              string `json:"epic_id,omitempty"`
	EpicContent         string `json:"epic_content,omitempty"`
	TaskID              string `json:"task_id,omitempty"`
	TaskContent         string `json:"task_content,omitempty"`
	Depth               int    `json:"depth"`
	HasChildren         bool   `json:"has_children"`
	ChildCount          int    `json:"child_count"`
	CompletedChildCount int    `json:"completed_child_count"`
}

// Flatten walks epics, their tasks and subtasks, then standalone tasks and
// their subtasks, in document order.
func Flatten(s *State) []FlatItem {
	if s == nil {
		return nil
	}
	var items []FlatItem
	for _, e := range s.Epics {
		items = append(items, FlatItem{
			Kind:                KindEpic,
			Item:                e.Item.clone(),
			HasChildren:         len(e.Tasks) > 0,
			ChildCount:          len(e.Tasks),
			CompletedChildCount: countCompletedTasks(e.Tasks),
		})
		for _, t := range e.Tasks {
			items = appendTask(items, t, e.ID, e.Content, 1)
		}
	}
	for _, t := range s.Tasks {
		items = appendTask(items, t, "", "", 0)
	}
	return items
}

func appendTask(items []FlatItem, t Task, epicID, epicContent string, depth int) []FlatItem {
	completed := 0
	for _, st := range t.Subtasks {
		if st.Status == StatusCompleted {
			completed++
		}
	}
	items = append(items, FlatItem{
		Kind:                KindTask,
		Item:                t.Item.clone(),
		EpicID:              epicID,
		EpicContent:         epicContent,
		Depth:               depth,
		HasChildren:         len(t.Subtasks) > 0,
		ChildCount:          len(t.Subtasks),
		CompletedChildCount: completed,
	})
	for _, st := range t.Subtasks {
		items = append(items, FlatItem{
			Kind:        KindSubtask,
			Item:        st.Item.clone(),
			EpicID:      epicID,
			EpicContent: epicContent,
			TaskID:      t.ID,
			TaskContent: t.Content,
			Depth:       depth + 1,
		})
	}
	return items
}

func countCompletedTasks(tasks []Task) int {
	n := 0
	for _, t := range tasks {
		if t.Status == StatusCompleted {
			n++
		}
	}
	return n
}

// NextResult is the outcome of GetNext.
type NextResult struct {
	Item          *FlatItem `json:"item"`
	QueueDepth    int       `json:"queue_depth"`
	BlockedByDeps int       `json:"blocked_by_deps"`
}

// GetNext picks the most urgent ready item. level restricts the candidates
// to one kind; the empty Kind leaves them unrestricted, in which case deeper
// items win ties on priority.
func GetNext(s *State, level Kind) NextResult {
	all := Flatten(s)
	completed := make(map[string]bool)
	for _, it := range all {
		if it.Status == StatusCompleted {
			completed[it.ID] = true
		}
	}

	var ready []FlatItem
	blocked := 0
	for _, it := range all {
		if !it.Status.IsActionable() {
			continue
		}
		if level != "" && it.Kind != level {
			continue
		}
		if !graph.Ready(it.Deps, completed) {
			blocked++
			continue
		}
		ready = append(ready, it)
	}

	sort.SliceStable(ready, func(i, j int) bool {
		if ready[i].Priority != ready[j].Priority {
			return ready[i].Priority < ready[j].Priority
		}
		if level == "" {
			return ready[i].Depth > ready[j].Depth
		}
		return false
	})

	res := NextResult{QueueDepth: len(ready), BlockedByDeps: blocked}
	if len(ready) > 0 {
		res.Item = &ready[0]
	}
	return res
}

// Counts is a total/completed pair for one level.
type Counts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
}

// Context summarises the whole document.
type Context struct {
	Epics      Counts     `json:"epics"`
	Tasks      Counts     `json:"tasks"`
	Subtasks   Counts     `json:"subtasks"`
	InProgress []FlatItem `json:"in_progress"`
	Blocked    []FlatItem `json:"blocked"`
	Next       NextResult `json:"next"`
}

// CountByKind tallies items per level.
func CountByKind(items []FlatItem) map[Kind]Counts {
	out := make(map[Kind]Counts, len(Kinds))
	for _, it := range items {
		c := out[it.Kind]
		c.Total++
		if it.Status == StatusCompleted {
			c.Completed++
		}
		out[it.Kind] = c
	}
	return out
}

// GetContext returns per-level counts, the in-progress and blocked items
// and the unrestricted next item.
func GetContext(s *State) Context {
	items := Flatten(s)
	counts := CountByKind(items)
	ctx := Context{
		Epics:      counts[KindEpic],
		Tasks:      counts[KindTask],
		Subtasks:   counts[KindSubtask],
		InProgress: []FlatItem{},
		Blocked:    []FlatItem{},
	}
	for _, it := range items {
		switch it.Status {
		case StatusInProgress:
			ctx.InProgress = append(ctx.InProgress, it)
		case StatusBlocked:
			ctx.Blocked = append(ctx.Blocked, it)
		}
	}
	ctx.Next = GetNext(s, "")
	return ctx
}

// Filter selects items. Empty fields match everything; populated fields
// are intersected.
type Filter struct {
	Statuses   []Status
	Priorities []int
	Kinds      []Kind
	Epic       string // parent epic id, or case-insensitive substring of its content
	Task       string // parent task id, or case-insensitive substring of its content
	Search     string // case-insensitive substring of content
}

// FilterItems applies f to items. Parent scopes are applied first.
func FilterItems(items []FlatItem, f Filter) []FlatItem {
	out := items
	if f.Epic != "" {
		out = keep(out, func(it FlatItem) bool { return matchesParent(it.EpicID, it.EpicContent, f.Epic) })
	}
	if f.Task != "" {
		out = keep(out, func(it FlatItem) bool { return matchesParent(it.TaskID, it.TaskContent, f.Task) })
	}
	if len(f.Statuses) > 0 {
		out = keep(out, func(it FlatItem) bool { return slices.Contains(f.Statuses, it.Status) })
	}
	if len(f.Priorities) > 0 {
		out = keep(out, func(it FlatItem) bool { return slices.Contains(f.Priorities, it.Priority) })
	}
	if len(f.Kinds) > 0 {
		out = keep(out, func(it FlatItem) bool { return slices.Contains(f.Kinds, it.Kind) })
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		out = keep(out, func(it FlatItem) bool { return strings.Contains(strings.ToLower(it.Content), q) })
	}
	return out
}

func matchesParent(id, content, query string) bool {
	if id == "" {
		return false
	}
	return id == query || strings.Contains(strings.ToLower(content), strings.ToLower(query))
}

func keep(items []FlatItem, fn func(FlatItem) bool) []FlatItem {
	out := make([]FlatItem, 0, len(items))
	for _, it := range items {
		if fn(it) {
			out = append(out, it)
		}
	}
	return out
}

// ListEpics returns the epics matching f.
func ListEpics(s *State, f Filter) []FlatItem {
	f.Kinds = []Kind{KindEpic}
	return FilterItems(Flatten(s), f)
}

// ListTasks returns the tasks matching f, optionally scoped to an epic.
func ListTasks(s *State, epic string, f Filter) []FlatItem {
	f.Kinds = []Kind{KindTask}
	if epic != "" {
		f.Epic = epic
	}
	return FilterItems(Flatten(s), f)
}

// ListSubtasks returns the subtasks matching f, optionally scoped to a task.
func ListSubtasks(s *State, task string, f Filter) []FlatItem {
	f.Kinds = []Kind{KindSubtask}
	if task != "" {
		f.Task = task
	}
	return FilterItems(Flatten(s), f)
}

// FindByID returns the item with exactly this id, or nil.
func FindByID(s *State, id string) *FlatItem {
	for _, it := range Flatten(s) {
		if it.ID == id {
			return &it
		}
	}
	return nil
}

// FuzzyFind returns the single item whose id equals query, or else every
// item whose content contains query, case-insensitively. Callers must treat
// zero, one and several matches as distinct outcomes.
func FuzzyFind(s *State, query string) []FlatItem {
	if it := FindByID(s, query); it != nil {
		return []FlatItem{*it}
	}
	if query == "" {
		return nil
	}
	return FilterItems(Flatten(s), Filter{Search: query})
}
